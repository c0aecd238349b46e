// Package config is a viper-backed configuration service, grounded on
// daemon/services/config/viper_config.go: search-path/env-prefix setup,
// defaults, and file-watch hot reload are kept exactly as the teacher does
// them; the legacy-INI fallback and the hardware-monitoring keys aren't
// reproduced since nothing in this domain reads them, and a
// github.com/go-playground/validator/v10 pass replaces the teacher's
// hand-rolled ValidateConfig range-checks with struct-tag validation
// against domain.Config directly.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/domalab/cgtrace/daemon/domain"
	"github.com/domalab/cgtrace/daemon/logger"
)

// EnvPrefix is the prefix every environment variable override uses, e.g.
// CGTRACE_DATABASE_URL for database_url.
const EnvPrefix = "CGTRACE"

// Service loads, validates, and hot-reloads the application configuration.
type Service struct {
	viper    *viper.Viper
	validate *validator.Validate
	onChange func(domain.Config)
}

// New builds a Service with the teacher's search-path/env-var conventions
// adapted to this binary's name.
func New() *Service {
	v := viper.New()
	v.SetConfigName("cgtrace")
	v.SetConfigType("yaml")
	for _, path := range []string{".", "/etc/cgtrace", "$HOME/.cgtrace"} {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	// The rootfs path and database URL are also read from their bare env
	// var names; the CGTRACE_-prefixed form takes precedence when both are set.
	_ = v.BindEnv("rootfs_mount_path", EnvPrefix+"_ROOTFS_MOUNT_PATH", "ROOTFS_MOUNT_PATH")
	_ = v.BindEnv("database_url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")

	s := &Service{viper: v, validate: validator.New()}
	s.setDefaults()
	return s
}

func (s *Service) setDefaults() {
	defaults := domain.DefaultConfig()

	s.viper.SetDefault("rootfs_mount_path", defaults.RootfsMountPath)
	s.viper.SetDefault("containerd_socket", defaults.ContainerdSocket)
	s.viper.SetDefault("database_url", defaults.DatabaseURL)
	s.viper.SetDefault("tick_interval_seconds", defaults.TickIntervalSeconds)
	s.viper.SetDefault("stats_queue_capacity", defaults.StatsQueueCapacity)
	s.viper.SetDefault("metadata_queue_capacity", defaults.MetadataQueueCapacity)

	s.viper.SetDefault("http_server.enabled", defaults.HTTPServer.Enabled)
	s.viper.SetDefault("http_server.host", defaults.HTTPServer.Host)
	s.viper.SetDefault("http_server.port", defaults.HTTPServer.Port)
	s.viper.SetDefault("http_server.websocket_enabled", defaults.HTTPServer.WebSocketEnabled)

	s.viper.SetDefault("auth.enabled", defaults.Auth.Enabled)
	s.viper.SetDefault("auth.api_key", defaults.Auth.APIKey)
	s.viper.SetDefault("auth.jwt_secret", defaults.Auth.JWTSecret)
	s.viper.SetDefault("auth.token_expiry", defaults.Auth.TokenExpiry)

	s.viper.SetDefault("logging.level", defaults.Logging.Level)
	s.viper.SetDefault("logging.file", defaults.Logging.File)
	s.viper.SetDefault("logging.max_size", defaults.Logging.MaxSize)
	s.viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	s.viper.SetDefault("logging.max_age", defaults.Logging.MaxAge)
}

// Load reads the config file (if any), decodes it into a domain.Config,
// validates the result, and starts watching for file changes. A missing
// config file is not an error — defaults and env vars still apply — but a
// validation failure is, since that indicates a genuinely broken
// deployment rather than an absent optional file.
func (s *Service) Load() (domain.Config, error) {
	if err := s.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Info("no config file found, using defaults and environment variables")
		} else {
			logger.Warn("error reading config file: %v", err)
		}
	} else {
		logger.LogConfigLoad(s.viper.ConfigFileUsed(), true, "")
	}

	cfg, err := s.decode()
	if err != nil {
		logger.LogConfigLoad(s.viper.ConfigFileUsed(), false, err.Error())
		return domain.Config{}, err
	}

	s.viper.WatchConfig()
	s.viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("config file changed: %s", e.Name)
		if reloaded, err := s.decode(); err != nil {
			logger.Warn("reloaded config failed validation, keeping previous config: %v", err)
		} else if s.onChange != nil {
			s.onChange(reloaded)
		}
	})

	return cfg, nil
}

// OnChange registers fn to be called with the newly validated config
// whenever the watched file changes. Only one callback is kept; a later
// call replaces the earlier one.
func (s *Service) OnChange(fn func(domain.Config)) {
	s.onChange = fn
}

func (s *Service) decode() (domain.Config, error) {
	cfg := domain.DefaultConfig()
	if err := s.viper.Unmarshal(&cfg); err != nil {
		return domain.Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := s.validate.Struct(cfg); err != nil {
		return domain.Config{}, fmt.Errorf("configuration failed validation: %w", err)
	}
	return cfg, nil
}

// Viper exposes the underlying instance for callers (the config CLI
// subcommands) that need raw get/set access beyond the typed Config.
func (s *Service) Viper() *viper.Viper {
	return s.viper
}
