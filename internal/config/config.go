package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the runtime configuration of the service and CLI.
type Config struct {
	DataDir           string
	Transport         string
	Port              string
	LogMode           string
	LogLevel          string
	ExportDir         string
	ImportConcurrency int
}

// Load reads pattern-mcp.yaml (if any), PATTERN_MCP_* environment variables
// and the given flags, in increasing order of precedence. Flags are bound by
// their name with dashes turned into underscores.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("data_dir", "./data")
	v.SetDefault("transport", "stdio")
	v.SetDefault("port", "8081")
	v.SetDefault("log_mode", "dev")
	v.SetDefault("log_level", "")
	v.SetDefault("export_dir", ".")
	v.SetDefault("import_concurrency", 4)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("pattern-mcp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pattern-mcp")
	}

	v.SetEnvPrefix("PATTERN_MCP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DataDir:           v.GetString("data_dir"),
		Transport:         v.GetString("transport"),
		Port:              v.GetString("port"),
		LogMode:           v.GetString("log_mode"),
		LogLevel:          v.GetString("log_level"),
		ExportDir:         v.GetString("export_dir"),
		ImportConcurrency: v.GetInt("import_concurrency"),
	}

	if cfg.DataDir == "" {
		return nil, fmt.Errorf("data_dir must not be empty")
	}
	switch cfg.Transport {
	case "stdio", "http":
	default:
		return nil, fmt.Errorf("unknown transport: %s (use stdio or http)", cfg.Transport)
	}
	if cfg.ImportConcurrency < 1 {
		cfg.ImportConcurrency = 1
	}
	return cfg, nil
}
