// Package config loads the service configuration from YAML and supports
// hot-reloading the training defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the full service configuration.
type Config struct {
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Storage struct {
		ModelDir  string `yaml:"model_dir"`
		UploadDir string `yaml:"upload_dir"`
		CacheSize int    `yaml:"cache_size"`
	} `yaml:"storage"`
	Training Training `yaml:"training"`
	Log      struct {
		Level      string `yaml:"level"`
		Path       string `yaml:"path"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
}

// Training holds the reloadable training defaults.
type Training struct {
	PositiveLabel string  `yaml:"positive_label"`
	TestFraction  float64 `yaml:"test_fraction"`
	Seed          int64   `yaml:"seed"`
	RiskThreshold float64 `yaml:"risk_threshold"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Http.Port = 8080
	cfg.Database.Path = "data/metadata.db"
	cfg.Storage.ModelDir = "storage/models"
	cfg.Storage.UploadDir = "storage/datasets"
	cfg.Storage.CacheSize = 16
	cfg.Training = Training{
		PositiveLabel: "Yes",
		TestFraction:  0.2,
		Seed:          42,
		RiskThreshold: 0.5,
	}
	cfg.Log.Level = "info"
	cfg.Log.Path = "logs/attrition.log"
	cfg.Log.MaxSizeMB = 50
	cfg.Log.MaxBackups = 5
	return cfg
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
