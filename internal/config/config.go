// Package config provides configuration loading for the tabular extractor.
// Supports YAML files, .env files, environment variables, and programmatic
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service and CLI.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Ingest        IngestConfig        `yaml:"ingest"`
	OCR           OCRConfig           `yaml:"ocr"`
	Tables        TablesConfig        `yaml:"tables"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	GracefulShutdown  time.Duration `yaml:"graceful_shutdown"`
	MaxConcurrentJobs int           `yaml:"max_concurrent_jobs"`
	JobBacklog        int           `yaml:"job_backlog"` // requests allowed to wait for a free job slot
}

// IngestConfig holds upload acceptance settings.
type IngestConfig struct {
	AllowedExtensions []string `yaml:"allowed_extensions"`
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
	StrictKind        bool     `yaml:"strict_kind"`
	TempDir           string   `yaml:"temp_dir"`
}

// OCRConfig holds Tesseract and rasterization settings.
type OCRConfig struct {
	Language    string `yaml:"language"`
	PageSegMode int    `yaml:"page_seg_mode"`
	DPI         int    `yaml:"dpi"` // 0 keeps the rasterizer default
}

// TablesConfig holds table detection and formatting settings.
type TablesConfig struct {
	JavaPath   string        `yaml:"java_path"`
	JarPath    string        `yaml:"jar_path"`
	Timeout    time.Duration `yaml:"timeout"`
	Header     string        `yaml:"header"`      // first_row or none
	JSONOrient string        `yaml:"json_orient"` // columns or split
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
// An empty path skips the file and uses defaults.
func Load(path string) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	requestTimeout := 5 * time.Minute
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8501,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      requestTimeout + writeTimeoutMargin,
			IdleTimeout:       120 * time.Second,
			RequestTimeout:    requestTimeout,
			GracefulShutdown:  10 * time.Second,
			MaxConcurrentJobs: 1,
			JobBacklog:        16,
		},
		Ingest: IngestConfig{
			AllowedExtensions: []string{"pdf", "png", "jpg"},
			MaxUploadBytes:    32 << 20,
			StrictKind:        true,
			TempDir:           "",
		},
		OCR: OCRConfig{
			Language:    "eng",
			PageSegMode: 3,
			DPI:         0,
		},
		Tables: TablesConfig{
			JavaPath:   "java",
			JarPath:    "tabula.jar",
			Timeout:    2 * time.Minute,
			Header:     "first_row",
			JSONOrient: "columns",
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "console",
			ServiceName: "tabular-extractor",
		},
	}
}

// writeTimeoutMargin leaves room to write a response produced just before
// the request timeout fires.
const writeTimeoutMargin = 30 * time.Second

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.MaxConcurrentJobs < 1 {
		return fmt.Errorf("max_concurrent_jobs must be at least 1")
	}

	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= c.Server.RequestTimeout {
		return fmt.Errorf("write_timeout (%s) must exceed request_timeout (%s)", c.Server.WriteTimeout, c.Server.RequestTimeout)
	}

	if c.Server.JobBacklog < 0 {
		return fmt.Errorf("job_backlog cannot be negative")
	}

	if len(c.Ingest.AllowedExtensions) == 0 {
		return fmt.Errorf("allowed_extensions cannot be empty")
	}

	if c.Ingest.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	if c.OCR.Language == "" {
		return fmt.Errorf("ocr language cannot be empty")
	}

	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		return fmt.Errorf("invalid page_seg_mode: %d", c.OCR.PageSegMode)
	}

	if c.OCR.DPI < 0 {
		return fmt.Errorf("dpi cannot be negative")
	}

	if c.Tables.Header != "first_row" && c.Tables.Header != "none" {
		return fmt.Errorf("invalid tables header mode: %s", c.Tables.Header)
	}

	if c.Tables.JSONOrient != "columns" && c.Tables.JSONOrient != "split" {
		return fmt.Errorf("invalid json_orient: %s", c.Tables.JSONOrient)
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	if v := os.Getenv("OCR_LANGUAGE"); v != "" {
		cfg.OCR.Language = v
	}

	if v := os.Getenv("OCR_DPI"); v != "" {
		if dpi, err := strconv.Atoi(v); err == nil {
			cfg.OCR.DPI = dpi
		}
	}

	if v := os.Getenv("TABULA_JAR"); v != "" {
		cfg.Tables.JarPath = v
	}

	if v := os.Getenv("JAVA_PATH"); v != "" {
		cfg.Tables.JavaPath = v
	}

	if v := os.Getenv("TABLES_JSON_ORIENT"); v != "" {
		cfg.Tables.JSONOrient = strings.ToLower(v)
	}

	if v := os.Getenv("INGEST_STRICT_KIND"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Ingest.StrictKind = b
		}
	}

	if v := os.Getenv("INGEST_TEMP_DIR"); v != "" {
		cfg.Ingest.TempDir = v
	}
}
