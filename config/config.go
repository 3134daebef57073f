// Package config loads the service configuration from yaml, .env and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"airpredict/features"
	"airpredict/ml"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"log"`
	Models Models `yaml:"models"`
}

// Models configures the encoding policy and the artifact files.
type Models struct {
	Policy         string              `yaml:"policy"`
	Dir            string              `yaml:"dir"`
	ClassifierType string              `yaml:"classifier_type"`
	Classifier     string              `yaml:"classifier"`
	Scaler         string              `yaml:"scaler"`
	FeatureNames   string              `yaml:"feature_names"`
	Vocabulary     string              `yaml:"vocabulary"`
	RegressorType  string              `yaml:"regressor_type"`
	Regressor      string              `yaml:"regressor"`
	Categories     map[string][]string `yaml:"categories"`
	DurationPolicy string              `yaml:"duration_policy"`
	Currency       string              `yaml:"currency"`
	CacheSize      int                 `yaml:"cache_size"`
	WatchArtifacts bool                `yaml:"watch_artifacts"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.Http.Port = 8080
	cfg.Http.Timeout = 30 * time.Second
	cfg.Http.AllowedOrigins = []string{"*"}
	cfg.Database.Path = "data/airpredict.db"
	cfg.Log.Level = "info"
	cfg.Log.MaxSizeMB = 10
	cfg.Log.MaxBackups = 3
	cfg.Log.MaxAgeDays = 28
	cfg.Log.Compress = true
	cfg.Models = Models{
		Policy:         string(features.PolicyLabel),
		Dir:            "models",
		ClassifierType: ml.ModelDecisionTree,
		Classifier:     "classifier.json",
		Scaler:         "scaler.json",
		FeatureNames:   "feature_names.json",
		Vocabulary:     "label_vocabulary.json",
		RegressorType:  ml.ModelTreeEnsemble,
		Regressor:      "flight_regressor.json",
		DurationPolicy: string(features.DurationPassthrough),
		Currency:       "Rs.",
		CacheSize:      512,
		WatchArtifacts: true,
	}
	return cfg
}

// Load reads path on top of Default, then applies .env and AIRPREDICT_*
// environment overrides. A missing yaml file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("AIRPREDICT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AIRPREDICT_PORT: %w", err)
		}
		c.Http.Port = port
	}
	if v := os.Getenv("AIRPREDICT_POLICY"); v != "" {
		c.Models.Policy = v
	}
	if v := os.Getenv("AIRPREDICT_MODELS_DIR"); v != "" {
		c.Models.Dir = v
	}
	if v := os.Getenv("AIRPREDICT_DURATION_POLICY"); v != "" {
		c.Models.DurationPolicy = v
	}
	if v := os.Getenv("AIRPREDICT_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("AIRPREDICT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := features.ParsePolicy(c.Models.Policy); err != nil {
		return err
	}
	if _, err := features.ParseDurationPolicy(c.Models.DurationPolicy); err != nil {
		return err
	}
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.Http.Port)
	}
	if c.Models.CacheSize < 0 {
		return errors.New("cache_size must not be negative")
	}
	return nil
}

// EncodingPolicy returns the validated survey encoding policy.
func (m Models) EncodingPolicy() features.Policy {
	p, _ := features.ParsePolicy(m.Policy)
	return p
}

func (m Models) Duration() features.DurationPolicy {
	p, _ := features.ParseDurationPolicy(m.DurationPolicy)
	return p
}

// ArtifactPaths resolves artifact file names against Dir.
func (m Models) ArtifactPaths() ml.ArtifactPaths {
	return ml.ArtifactPaths{
		ClassifierType: m.ClassifierType,
		Classifier:     m.resolve(m.Classifier),
		Scaler:         m.resolve(m.Scaler),
		FeatureNames:   m.resolve(m.FeatureNames),
		Vocabulary:     m.resolve(m.Vocabulary),
		RegressorType:  m.RegressorType,
		Regressor:      m.resolve(m.Regressor),
	}
}

func (m Models) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) || m.Dir == "" {
		return name
	}
	return filepath.Join(m.Dir, name)
}
