package cmd

import (
	"fmt"

	"github.com/domalab/cgtrace/daemon/domain"
	"github.com/domalab/cgtrace/daemon/services/config"
	"github.com/domalab/cgtrace/daemon/services/query"
)

// ConfigCmd handles configuration management commands.
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" help:"Show current configuration"`
	Set      ConfigSetCmd      `cmd:"" help:"Set configuration values"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate configuration values"`
}

// ConfigShowCmd shows the resolved configuration (defaults, file, and
// environment overrides all merged).
type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(appCtx *domain.Context) error {
	cfg := appCtx.Config

	fmt.Printf("cgtrace configuration:\n")
	fmt.Printf("  Version: %s\n", cfg.Version)
	fmt.Printf("\n")
	fmt.Printf("Collection:\n")
	fmt.Printf("  Rootfs mount path: %s\n", cfg.RootfsMountPath)
	fmt.Printf("  Containerd socket: %s\n", cfg.ContainerdSocket)
	fmt.Printf("  Tick interval: %ds\n", cfg.TickIntervalSeconds)
	fmt.Printf("\n")
	fmt.Printf("HTTP Server:\n")
	fmt.Printf("  Enabled: %t\n", cfg.HTTPServer.Enabled)
	fmt.Printf("  Host: %s\n", cfg.HTTPServer.Host)
	fmt.Printf("  Port: %d\n", cfg.HTTPServer.Port)
	fmt.Printf("  WebSocket: %t\n", cfg.HTTPServer.WebSocketEnabled)
	fmt.Printf("\n")
	fmt.Printf("Authentication:\n")
	fmt.Printf("  Enabled: %t\n", cfg.Auth.Enabled)
	if cfg.Auth.APIKey != "" && len(cfg.Auth.APIKey) > 8 {
		fmt.Printf("  API Key: %s...\n", cfg.Auth.APIKey[:8])
	} else {
		fmt.Printf("  API Key: (not set)\n")
	}
	fmt.Printf("\n")
	fmt.Printf("Logging:\n")
	fmt.Printf("  Level: %s\n", cfg.Logging.Level)
	fmt.Printf("  Max Size: %d MB\n", cfg.Logging.MaxSize)
	fmt.Printf("  Max Backups: %d\n", cfg.Logging.MaxBackups)
	fmt.Printf("  Max Age: %d days\n", cfg.Logging.MaxAge)

	return nil
}

// ConfigSetCmd writes configuration overrides to the config file, creating
// one if none was found on the search path.
type ConfigSetCmd struct {
	HTTPEnabled *bool   `help:"Enable/disable HTTP server"`
	Port        *int    `name:"port" help:"Set HTTP server port"`
	AuthEnabled *bool   `help:"Enable/disable authentication"`
	APIKey      *string `help:"Set API key"`
	LogLevel    *string `help:"Set log level"`
}

func (c *ConfigSetCmd) Run(appCtx *domain.Context) error {
	svc := config.New()
	if _, err := svc.Load(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	v := svc.Viper()
	changed := false

	if c.HTTPEnabled != nil {
		v.Set("http_server.enabled", *c.HTTPEnabled)
		changed = true
		fmt.Printf("HTTP server enabled: %t\n", *c.HTTPEnabled)
	}

	if c.Port != nil {
		if *c.Port <= 0 || *c.Port > 65535 {
			return fmt.Errorf("invalid port number: %d", *c.Port)
		}
		v.Set("http_server.port", *c.Port)
		changed = true
		fmt.Printf("HTTP server port: %d\n", *c.Port)
	}

	if c.AuthEnabled != nil {
		v.Set("auth.enabled", *c.AuthEnabled)
		changed = true
		fmt.Printf("Authentication enabled: %t\n", *c.AuthEnabled)
	}

	if c.APIKey != nil {
		v.Set("auth.api_key", *c.APIKey)
		changed = true
		fmt.Printf("API key updated\n")
	}

	if c.LogLevel != nil {
		v.Set("logging.level", *c.LogLevel)
		changed = true
		fmt.Printf("Log level: %s\n", *c.LogLevel)
	}

	if !changed {
		return fmt.Errorf("no configuration changes specified")
	}

	path := v.ConfigFileUsed()
	if path == "" {
		path = "./cgtrace.yaml"
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Configuration saved to %s\n", path)
	return nil
}

// ConfigGenerateCmd generates configuration values.
type ConfigGenerateCmd struct {
	APIKey bool `help:"Generate a new API key"`
}

func (c *ConfigGenerateCmd) Run(appCtx *domain.Context) error {
	if c.APIKey {
		apiKey, err := query.GenerateAPIKey()
		if err != nil {
			return fmt.Errorf("failed to generate API key: %w", err)
		}

		fmt.Printf("Generated API key: %s\n", apiKey)
		fmt.Printf("\nTo set this as the active API key, run:\n")
		fmt.Printf("  cgtrace config set --api-key=%s\n", apiKey)
		return nil
	}

	return fmt.Errorf("no generation option specified")
}
