package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable docreport reads.
const EnvPrefix = "DOCREPORT"

type Config struct {
	// Working directory that holds components/, app/ and public/.
	Dir string `mapstructure:"dir"`

	// Output file; relative paths resolve against Dir. Empty uses the
	// template's output name.
	Output string `mapstructure:"output"`

	// Report template; empty uses the built-in one.
	Template string `mapstructure:"template"`

	// Screenshot display width in inches; 0 uses the template's width.
	ImageWidth float64 `mapstructure:"image_width"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// Load reads configuration from, in increasing priority: defaults, the
// optional config file, a .env file in the working directory, and
// DOCREPORT_* environment variables. Bound flags on v take precedence
// over all of them.
func Load(v *viper.Viper, configPath string) (Config, error) {
	v.SetDefault("dir", ".")
	v.SetDefault("output", "")
	v.SetDefault("template", "")
	v.SetDefault("image_width", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("docreport")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Env lookups are lazy, so variables from .env are still picked up.
	if err := loadDotEnv(v.GetString("dir")); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// loadDotEnv loads dir/.env without overriding variables already set.
func loadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	info, err := os.Stat(c.Dir)
	if err != nil {
		return fmt.Errorf("working directory %s: %w", c.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("working directory %s is not a directory", c.Dir)
	}
	if c.Output != "" && filepath.Ext(c.Output) != ".docx" {
		return fmt.Errorf("output %q must have a .docx extension", c.Output)
	}
	if c.ImageWidth < 0 {
		return fmt.Errorf("image width must not be negative, got %v", c.ImageWidth)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// OutputPath resolves the output file against the working directory.
func (c Config) OutputPath(templateOutput string) string {
	out := c.Output
	if out == "" {
		out = templateOutput
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(c.Dir, out)
}
