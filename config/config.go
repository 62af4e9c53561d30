// Package config - loads the parameter file and environment overrides of the command line.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/nvr-ai/go-camoxai/common"
	"github.com/nvr-ai/go-camoxai/controller"
	"github.com/nvr-ai/go-camoxai/logging"
	"github.com/nvr-ai/go-camoxai/models/postprocess"
	"github.com/nvr-ai/go-camoxai/pipeline"
	"github.com/nvr-ai/go-camoxai/policy"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvSensitivity = "CAMOXAI_SENSITIVITY"
	EnvBias        = "CAMOXAI_BIAS"
	EnvWorkers     = "CAMOXAI_WORKERS"
	EnvTimeout     = "CAMOXAI_TIMEOUT"
	EnvLogLevel    = "CAMOXAI_LOG_LEVEL"
	EnvLogFile     = "CAMOXAI_LOG_FILE"
)

// Config holds the camoxai configuration.
type Config struct {
	Threshold     ThresholdConfig                 `yaml:"threshold"`
	Consolidation postprocess.ConsolidationConfig `yaml:"consolidation"`
	Pipeline      PipelineConfig                  `yaml:"pipeline"`
	Batch         BatchConfig                     `yaml:"batch"`
	Logging       LoggingConfig                   `yaml:"logging"`

	// Top-level sensitivity and bias, as written by the desktop front end's parameter file.
	Sensitivity *float64 `yaml:"sensitivity,omitempty" validate:"-"`
	Bias        *float64 `yaml:"bias,omitempty" validate:"-"`
}

type ThresholdConfig struct {
	Sensitivity float64 `yaml:"sensitivity"`
	Bias        float64 `yaml:"bias"`
	Base        float64 `yaml:"base" validate:"gte=0,lte=1"`
}

type PipelineConfig struct {
	WeakLevel          float32 `yaml:"weak_level" validate:"gte=0,lte=1"`
	DetectorScoreFloor float32 `yaml:"detector_score_floor" validate:"gte=0,lte=1"`
	ResampleMaps       bool    `yaml:"resample_maps"`
	MaxNarrated        int     `yaml:"max_narrated" validate:"gte=1"`
	AdaptiveDistance   bool    `yaml:"adaptive_distance"`
}

type BatchConfig struct {
	Workers         int           `yaml:"workers" validate:"gte=1"`
	PerImageTimeout time.Duration `yaml:"per_image_timeout" validate:"gte=0"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=panic fatal error warn warning info debug trace"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Threshold: ThresholdConfig{
			Sensitivity: policy.DefaultSensitivity,
			Bias:        policy.DefaultBias,
			Base:        policy.DefaultBase,
		},
		Consolidation: postprocess.DefaultConsolidationConfig(),
		Pipeline: PipelineConfig{
			WeakLevel:          pipeline.DefaultWeakLevel,
			DetectorScoreFloor: pipeline.DefaultScoreFloor,
			MaxNarrated:        controller.DefaultMaxNarrated,
		},
		Batch: BatchConfig{
			Workers:         4,
			PerImageTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML (or JSON) file.
// If the file doesn't exist, it returns the default config and no error. Keys missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, common.InvalidConfiguration("parse %s: %v", path, err)
	}

	if cfg.Sensitivity != nil {
		cfg.Threshold.Sensitivity = *cfg.Sensitivity
		cfg.Sensitivity = nil
	}
	if cfg.Bias != nil {
		cfg.Threshold.Bias = *cfg.Bias
		cfg.Bias = nil
	}

	return cfg, nil
}

// ApplyEnv loads the given .env files, when they exist, and applies the CAMOXAI_* overrides.
func (c *Config) ApplyEnv(envFiles ...string) error {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "load env file %s", path)
		}
	}

	if err := envFloat(EnvSensitivity, &c.Threshold.Sensitivity); err != nil {
		return err
	}
	if err := envFloat(EnvBias, &c.Threshold.Bias); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return common.InvalidConfiguration("%s=%q: %v", EnvWorkers, v, err)
		}
		c.Batch.Workers = n
	}
	if v, ok := os.LookupEnv(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return common.InvalidConfiguration("%s=%q: %v", EnvTimeout, v, err)
		}
		c.Batch.PerImageTimeout = d
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		c.Logging.File = v
	}
	return nil
}

func envFloat(key string, dst *float64) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return common.InvalidConfiguration("%s=%q: %v", key, v, err)
	}
	*dst = f
	return nil
}

var validate = validator.New()

// Validate returns an error wrapping common.ErrInvalidConfiguration for the first invalid field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return common.InvalidConfiguration("%s=%v violates %s=%s", fe.Namespace(), fe.Value(), fe.Tag(), fe.Param())
	}
	return common.InvalidConfiguration("%v", err)
}

// Params returns the threshold policy parameters.
func (c *Config) Params() policy.Params {
	return policy.Params{Sensitivity: c.Threshold.Sensitivity, Bias: c.Threshold.Bias}
}

// PipelineOptions returns the pipeline options described by c.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Threshold:        c.Params(),
		Base:             c.Threshold.Base,
		Consolidation:    c.Consolidation,
		WeakLevel:        c.Pipeline.WeakLevel,
		ScoreFloor:       c.Pipeline.DetectorScoreFloor,
		MaxNarrated:      c.Pipeline.MaxNarrated,
		AdaptiveDistance: c.Pipeline.AdaptiveDistance,
		ResampleMaps:     c.Pipeline.ResampleMaps,
	}
}

// LoggingOptions returns the logger options described by c.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.Logging.Level, File: c.Logging.File}
}
