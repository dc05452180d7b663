package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Model   ModelConfig   `yaml:"model"`
	Dataset DatasetConfig `yaml:"dataset"`
	Log     LogConfig     `yaml:"log"`
}

type HTTPConfig struct {
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

type ModelConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type DatasetConfig struct {
	Path          string `yaml:"path"`
	HistogramBins int    `yaml:"histogram_bins"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:    8501,
			Timeout: 30 * time.Second,
		},
		Model: ModelConfig{
			Path: "rfc.json",
		},
		Dataset: DatasetConfig{
			Path:          "diabetes.csv",
			HistogramBins: 10,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides (a .env file in the working directory is honoured).
// A missing config or .env file is not an error; an unreadable one is.
func Load(path string) (*Config, error) {
	config := Default()

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(config); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnv(config *Config) error {
	if v := os.Getenv("DIAG_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DIAG_HTTP_PORT: %w", err)
		}
		config.HTTP.Port = port
	}
	if v := os.Getenv("DIAG_MODEL_PATH"); v != "" {
		config.Model.Path = v
	}
	if v := os.Getenv("DIAG_DATASET_PATH"); v != "" {
		config.Dataset.Path = v
	}
	if v := os.Getenv("DIAG_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("DIAG_LOG_FILE"); v != "" {
		config.Log.File = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.HTTP.Port)
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if c.Model.Path == "" {
		return errors.New("model.path is required")
	}
	if c.Dataset.Path == "" {
		return errors.New("dataset.path is required")
	}
	if c.Dataset.HistogramBins <= 0 {
		return errors.New("dataset.histogram_bins must be positive")
	}
	return nil
}
