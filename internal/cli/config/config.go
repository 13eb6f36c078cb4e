package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/surfacegen/genapi/internal/errors"
)

// FileName is the base name of the project config file
const FileName = "genapi"

// EnvPrefix prefixes environment overrides, e.g. GENAPI_WRITER_FOR_COMPILATION
const EnvPrefix = "GENAPI"

// Config represents the genapi configuration
type Config struct {
	Input  string `mapstructure:"input" yaml:"input,omitempty"`
	Output string `mapstructure:"output" yaml:"output,omitempty"`
	// History is the emission database: a SQLite path or a postgres:// URL.
	// Empty disables recording.
	History string        `mapstructure:"history" yaml:"history,omitempty"`
	Writer  WriterConfig  `mapstructure:"writer" yaml:"writer"`
	Filter  FilterConfig  `mapstructure:"filter" yaml:"filter"`
	Format  FormatConfig  `mapstructure:"format" yaml:"format"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache,omitempty"`
	Preview PreviewConfig `mapstructure:"preview" yaml:"preview,omitempty"`
}

// WriterConfig controls how declarations are rendered
type WriterConfig struct {
	ForCompilation              bool   `mapstructure:"for_compilation" yaml:"for_compilation"`
	AlwaysIncludeBase           bool   `mapstructure:"always_include_base" yaml:"always_include_base"`
	IncludeFakeAttributes       bool   `mapstructure:"include_fake_attributes" yaml:"include_fake_attributes"`
	PlatformNotSupportedMessage string `mapstructure:"platform_not_supported_message" yaml:"platform_not_supported_message,omitempty"`
}

// FilterConfig selects and tunes the inclusion policy
type FilterConfig struct {
	IncludeForwardedTypes bool   `mapstructure:"include_forwarded_types" yaml:"include_forwarded_types"`
	ExcludeAttributes     bool   `mapstructure:"exclude_attributes" yaml:"exclude_attributes"`
	IncludeInternals      bool   `mapstructure:"include_internals" yaml:"include_internals"`
	ExcludeList           string `mapstructure:"exclude_list" yaml:"exclude_list,omitempty"`
}

// FormatConfig controls the textual sink
type FormatConfig struct {
	Indent string `mapstructure:"indent" yaml:"indent"`
	Color  bool   `mapstructure:"color" yaml:"color"`
}

// CacheConfig enables the shared render cache
type CacheConfig struct {
	// Redis is the host:port of the cache server; empty disables caching
	Redis    string        `mapstructure:"redis" yaml:"redis,omitempty"`
	Password string        `mapstructure:"password" yaml:"password,omitempty"`
	DB       int           `mapstructure:"db" yaml:"db,omitempty"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl,omitempty"`
}

// PreviewConfig controls the watch preview server
type PreviewConfig struct {
	// Secret enables token authentication; required when serving beyond loopback
	Secret string `mapstructure:"secret" yaml:"secret,omitempty"`
}

// LogConfig controls diagnostic logging
type LogConfig struct {
	Verbosity int  `mapstructure:"verbosity" yaml:"verbosity"`
	JSON      bool `mapstructure:"json" yaml:"json"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Writer: WriterConfig{ForCompilation: true},
		Filter: FilterConfig{ExcludeAttributes: true},
		Format: FormatConfig{Indent: "    "},
	}
}

// NewViper creates a viper instance with defaults, environment overrides and
// the config file applied. configFile may be empty to search the working
// directory for genapi.yml or genapi.yaml.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.NewReadConfig(configFile, err)
		}
		// Config file not found - use defaults
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("input", d.Input)
	v.SetDefault("output", d.Output)
	v.SetDefault("history", d.History)
	v.SetDefault("writer.for_compilation", d.Writer.ForCompilation)
	v.SetDefault("writer.always_include_base", d.Writer.AlwaysIncludeBase)
	v.SetDefault("writer.include_fake_attributes", d.Writer.IncludeFakeAttributes)
	v.SetDefault("writer.platform_not_supported_message", d.Writer.PlatformNotSupportedMessage)
	v.SetDefault("filter.include_forwarded_types", d.Filter.IncludeForwardedTypes)
	v.SetDefault("filter.exclude_attributes", d.Filter.ExcludeAttributes)
	v.SetDefault("filter.include_internals", d.Filter.IncludeInternals)
	v.SetDefault("filter.exclude_list", d.Filter.ExcludeList)
	v.SetDefault("format.indent", d.Format.Indent)
	v.SetDefault("format.color", d.Format.Color)
	v.SetDefault("log.verbosity", d.Log.Verbosity)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("cache.redis", d.Cache.Redis)
	v.SetDefault("cache.password", d.Cache.Password)
	v.SetDefault("cache.db", d.Cache.DB)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("preview.secret", d.Preview.Secret)
}

// Load loads the configuration from genapi.yml or the given file
func Load(configFile string) (*Config, error) {
	v, err := NewViper(configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper decodes and validates a populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewReadConfig(v.ConfigFileUsed(), fmt.Errorf("failed to unmarshal config: %w", err))
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Write saves cfg as YAML at path
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FindProjectRoot walks up from dir looking for genapi.yml or genapi.yaml
func FindProjectRoot(dir string) (string, error) {
	for {
		for _, ext := range []string{".yml", ".yaml"} {
			if _, err := os.Stat(filepath.Join(dir, FileName+ext)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s.yml found in %s or any parent directory", FileName, dir)
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	var list errors.DiagnosticList

	if strings.TrimSpace(cfg.Format.Indent) != "" {
		list = append(list, errors.NewInvalidConfig("format.indent", fmt.Sprintf("must contain only spaces or tabs, got %q", cfg.Format.Indent)))
	}
	if cfg.Log.Verbosity < 0 {
		list = append(list, errors.NewInvalidConfig("log.verbosity", fmt.Sprintf("must not be negative, got %d", cfg.Log.Verbosity)))
	}
	if cfg.Cache.TTL < 0 {
		list = append(list, errors.NewInvalidConfig("cache.ttl", fmt.Sprintf("must not be negative, got %s", cfg.Cache.TTL)))
	}
	if cfg.Input != "" && cfg.Output != "" && filepath.Clean(cfg.Input) == filepath.Clean(cfg.Output) {
		list = append(list, errors.NewInvalidConfig("output", "must not overwrite the input document"))
	}

	return list.Err()
}
