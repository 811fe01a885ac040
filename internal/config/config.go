package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/mindtrack/internal/apperr"
	"github.com/julianstephens/mindtrack/internal/constants"
)

// Config is the effective runtime configuration.
type Config struct {
	DataDir      string   `yaml:"data_dir" mapstructure:"data_dir"`
	DatabaseFile string   `yaml:"database_file" mapstructure:"database_file"`
	Debug        bool     `yaml:"debug" mapstructure:"debug"`
	Locale       string   `yaml:"locale" mapstructure:"locale"`
	BackupKeep   int      `yaml:"backup_keep" mapstructure:"backup_keep"`
	DB           DBConfig `yaml:"db" mapstructure:"db"`
}

// DBConfig tunes the connection pool of the embedded store.
type DBConfig struct {
	MaxOpenConns int `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
}

// DatabasePath returns the path of the SQLite file.
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.DatabaseFile) {
		return c.DatabaseFile
	}
	return filepath.Join(c.DataDir, c.DatabaseFile)
}

// Validate checks the configuration for values the application cannot use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if strings.TrimSpace(c.DatabaseFile) == "" {
		return fmt.Errorf("database_file cannot be empty")
	}
	if c.Locale != apperr.LocaleEnglish && c.Locale != apperr.LocaleJapanese {
		return fmt.Errorf("unsupported locale %q (expected %q or %q)", c.Locale, apperr.LocaleEnglish, apperr.LocaleJapanese)
	}
	if c.BackupKeep < 0 {
		return fmt.Errorf("backup_keep cannot be negative")
	}
	if c.DB.MaxOpenConns < 1 {
		return fmt.Errorf("db.max_open_conns must be at least 1")
	}
	if c.DB.MaxIdleConns < 0 {
		return fmt.Errorf("db.max_idle_conns cannot be negative")
	}
	return nil
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(out), nil
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", constants.DefaultDataDir)
	v.SetDefault("database_file", constants.DefaultDBFile)
	v.SetDefault("debug", false)
	v.SetDefault("locale", apperr.LocaleEnglish)
	v.SetDefault("backup_keep", 14)
	v.SetDefault("db.max_open_conns", 4)
	v.SetDefault("db.max_idle_conns", 2)
}

// Load reads configuration from path (or mindtrack.yaml in the working
// directory when path is empty) and MINDTRACK_* environment variables.
// A missing default config file is not an error; a missing explicit one is.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(constants.DefaultConfigName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
