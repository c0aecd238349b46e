package domain

import "github.com/cskr/pubsub"

// Config holds the full application configuration: discovery/collection
// tunables plus the ambient HTTP/auth/logging surface. Every field here is
// backed by a CGTRACE_-prefixed env var or a YAML key of the same dotted
// shape (see services/config), and validated via struct tags before the
// orchestrator ever sees it.
type Config struct {
	Version string `json:"version"`

	// RootfsMountPath is where the host root filesystem is bind-mounted
	// when cgtrace itself runs containerized (ROOTFS_MOUNT_PATH).
	RootfsMountPath string `json:"rootfs_mount_path" validate:"required"`
	// ContainerdSocket is the containerd control socket path.
	ContainerdSocket string `json:"containerd_socket" validate:"required"`
	// DatabaseURL is the MySQL DSN (DATABASE_URL).
	DatabaseURL string `json:"database_url" validate:"required"`

	// TickIntervalSeconds is how often the Registry is sampled.
	TickIntervalSeconds int `json:"tick_interval_seconds" validate:"min=1"`
	// StatsQueueCapacity bounds the channel between the sampling
	// goroutine and the stats persistence worker.
	StatsQueueCapacity int `json:"stats_queue_capacity" validate:"min=1"`
	// MetadataQueueCapacity bounds the channel between the Discoverer and
	// the metadata persistence worker.
	MetadataQueueCapacity int `json:"metadata_queue_capacity" validate:"min=1"`

	HTTPServer HTTPConfig `json:"http_server"`
	Auth       AuthConfig `json:"auth"`
	Logging    LogConfig  `json:"logging"`
}

// HTTPConfig configures the read-only query surface.
type HTTPConfig struct {
	Enabled          bool   `json:"enabled"`
	Host             string `json:"host"`
	Port             int    `json:"port" validate:"min=1,max=65535"`
	WebSocketEnabled bool   `json:"websocket_enabled"`
}

// AuthConfig configures the query surface's optional auth layer.
type AuthConfig struct {
	Enabled     bool   `json:"enabled"`
	APIKey      string `json:"api_key,omitempty"`
	JWTSecret   string `json:"jwt_secret,omitempty"`
	TokenExpiry string `json:"token_expiry"`
}

// LogConfig holds the logging settings. They are validated and printed by
// `config show`; neither the console writer nor the rotating file sink set
// up in cgtrace.go reads them.
type LogConfig struct {
	Level      string `json:"level" validate:"oneof=debug info warn error fatal"`
	File       string `json:"file"`
	MaxSize    int    `json:"max_size" validate:"min=0"`
	MaxBackups int    `json:"max_backups" validate:"min=0"`
	MaxAge     int    `json:"max_age" validate:"min=0"`
}

// DefaultConfig returns a configuration with sensible defaults; services/config
// overlays file/env values on top of this before validating.
func DefaultConfig() Config {
	return Config{
		Version:               "unknown",
		RootfsMountPath:       "/rootfs",
		ContainerdSocket:      "/var/run/containerd/containerd.sock",
		TickIntervalSeconds:   1,
		StatsQueueCapacity:    10,
		MetadataQueueCapacity: 15,
		HTTPServer: HTTPConfig{
			Enabled:          true,
			Host:             "0.0.0.0",
			Port:             34600,
			WebSocketEnabled: true,
		},
		Auth: AuthConfig{
			Enabled:     false,
			TokenExpiry: "24h",
		},
		Logging: LogConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// Context is the root object threaded through every CLI subcommand: the
// resolved configuration plus the in-process event hub the pipeline
// publishes lifecycle events on and the query surface's websocket handler
// subscribes to.
type Context struct {
	Config Config
	Hub    *pubsub.PubSub
}
