// =============================================================================
// Fraksjonsoversikt - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Values are merged from
// (highest precedence first):
//   1. Environment variables prefixed with ISEKK (ISEKK_OUTPUT_DIR,
//      ISEKK_FLAT_TEXT_DELIMITER, ...), optionally seeded from a .env file
//   2. The YAML config file (config.yaml)
//   3. Built-in defaults
//
// Command-line flags are applied on top by the cmd package.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "ISEKK"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for exports when no single file is given.
	// Default: "./input"
	InputDir string `mapstructure:"input_dir" yaml:"input_dir"`

	// OutputDir receives the generated workbooks and text files.
	// Default: "./output"
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// OutputNameFormat is the output file name without extension.
	// Placeholders:
	//   {original}  - Input file name without extension
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	// Default: "fraksjonsoversikt_{original}_{timestamp}"
	OutputNameFormat string `mapstructure:"output_name_format" yaml:"output_name_format"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of files processed at once.
	// Default: 4
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`

	// ContinueOnError keeps processing other files after a failure.
	// Default: true
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error"`

	// Units restricts every report to these unit columns. Empty means all.
	Units []string `mapstructure:"units" yaml:"units"`

	CSV      CSVSettings      `mapstructure:"csv" yaml:"csv"`
	FlatText FlatTextSettings `mapstructure:"flat_text" yaml:"flat_text"`
	Server   ServerSettings   `mapstructure:"server" yaml:"server"`
}

// CSVSettings controls how delimited text input is decoded.
type CSVSettings struct {
	// Delimiter is "auto" (sniffed from the header line), "tab", ";", ","
	// or "|".
	// Default: "auto"
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// Encoding is "auto" (UTF-8 with a Windows-1252 fallback) or a name
	// such as "utf-8", "windows-1252", "iso-8859-1", "utf-16le".
	// Default: "auto"
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
}

// FlatTextSettings holds the copy-paste text defaults.
type FlatTextSettings struct {
	// Enabled renders the flat text for every report.
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Delimiter is "tab", ";", "," or "|".
	// Default: "tab"
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// IncludeSum appends the SUM row.
	// Default: true
	IncludeSum bool `mapstructure:"include_sum" yaml:"include_sum"`

	// Decimals is the number of places non-whole values are rounded to.
	// Default: 0
	Decimals int `mapstructure:"decimals" yaml:"decimals"`
}

// ServerSettings configures the HTTP upload surface.
type ServerSettings struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `mapstructure:"addr" yaml:"addr"`

	// MaxUploadMB caps the size of one uploaded export.
	// Default: 32
	MaxUploadMB int64 `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	// CORSOrigins lists the allowed browser origins. Empty allows all.
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration.
//
// PARAMETERS:
//   - configPath: Path to a YAML config file. An empty path, or a path that
//     does not exist, falls back to defaults plus environment.
//   - envFile: Optional .env file. A missing file is ignored.
//
// RETURNS:
//   - The merged and validated configuration.
//   - An error if a file cannot be parsed or a value is invalid.
func Load(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.ContinueOnError = true
	cfg.FlatText.IncludeSum = true
	return cfg
}

// Marshal renders the configuration as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration as YAML.
func Save(cfg *Config, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input_dir", "./input")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("output_name_format", "fraksjonsoversikt_{original}_{timestamp}")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_concurrency", 4)
	v.SetDefault("continue_on_error", true)
	v.SetDefault("units", []string{})

	v.SetDefault("csv.delimiter", "auto")
	v.SetDefault("csv.encoding", "auto")

	v.SetDefault("flat_text.enabled", false)
	v.SetDefault("flat_text.delimiter", "tab")
	v.SetDefault("flat_text.include_sum", true)
	v.SetDefault("flat_text.decimals", 0)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.cors_origins", []string{})
}

// applyDefaults fills empty string and zero numeric settings. Booleans are
// defaulted through viper since false is a meaningful value.
func applyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "fraksjonsoversikt_{original}_{timestamp}"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = "auto"
	}
	if cfg.CSV.Encoding == "" {
		cfg.CSV.Encoding = "auto"
	}
	if cfg.FlatText.Delimiter == "" {
		cfg.FlatText.Delimiter = "tab"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 32
	}
}

func validate(cfg *Config) error {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be debug, info, warn or error", cfg.LogLevel)
	}
	if cfg.FlatText.Decimals < 0 {
		return fmt.Errorf("flat_text.decimals must not be negative")
	}
	switch strings.ToLower(cfg.FlatText.Delimiter) {
	case "\\t", "\t", "tab", ";", "semicolon", ",", "comma", "|", "pipe":
	default:
		return fmt.Errorf("flat_text.delimiter %q must be tab, semicolon, comma or pipe", cfg.FlatText.Delimiter)
	}
	switch strings.ToLower(cfg.CSV.Delimiter) {
	case "auto", "\\t", "\t", "tab", ";", "semicolon", ",", "comma", "|", "pipe":
	default:
		return fmt.Errorf("csv.delimiter %q must be auto, tab, semicolon, comma or pipe", cfg.CSV.Delimiter)
	}
	return nil
}
