// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for eventwiz.
type Config struct {
	APIURL   string        `mapstructure:"api_url" yaml:"api_url" validate:"required,url"`
	APIToken string        `mapstructure:"api_token" yaml:"api_token,omitempty"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	DataDir  string        `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	LogLevel string        `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogFile  string        `mapstructure:"log_file" yaml:"log_file"`

	// Notify publishes submission outcomes on the embedded NATS bus.
	Notify  bool   `mapstructure:"notify" yaml:"notify"`
	MCPAddr string `mapstructure:"mcp_addr" yaml:"mcp_addr"`
}

var keys = []string{"api_url", "api_token", "timeout", "data_dir", "log_level", "log_file", "notify", "mcp_addr"}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
//
// Flags are applied by the caller on top of the returned value.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("eventwiz")

	// api_url has no default - it's required
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("data_dir", ".eventwiz")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("notify", true)
	v.SetDefault("mcp_addr", "127.0.0.1:0")

	v.SetEnvPrefix("EVENTWIZ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit bindings so Unmarshal sees env-only keys.
	for _, key := range keys {
		if err := v.BindEnv(key, "EVENTWIZ_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

var checker = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	err := checker.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("invalid config: %w", err)
	}
	fe := verrs[0]
	switch fe.Field() {
	case "APIURL":
		if fe.Tag() == "required" {
			return errors.New("api_url is required (run 'eventwiz setup' or set EVENTWIZ_API_URL)")
		}
		return fmt.Errorf("api_url %q is not a valid URL", c.APIURL)
	case "Timeout":
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	case "DataDir":
		return errors.New("data_dir is required")
	case "LogLevel":
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return fmt.Errorf("invalid config: %w", err)
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/eventwiz/eventwiz.yml or $XDG_CONFIG_HOME/eventwiz/eventwiz.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "eventwiz", "eventwiz.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "eventwiz", "eventwiz.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "eventwiz.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	// The file may hold an API token.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
