package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// TrainConfig holds the hyperparameters of a training run.
type TrainConfig struct {
	HSize        int     `json:"h_size"`
	SeqLen       int     `json:"seq_len"`
	WeightSD     float64 `json:"weight_sd"`
	LearningRate float64 `json:"learning_rate"`
	Momentum     float64 `json:"momentum"`
	Optimizer    string  `json:"optimizer"`
	Seed         int64   `json:"seed"`
	Workers      int     `json:"workers"`
	BatchSize    int     `json:"batch_size"`
	LogEvery     int     `json:"log_every"`
	SaveEvery    int     `json:"save_every"`
	WeightsFile  string  `json:"weights_file"`
	Port         int     `json:"port"`
}

// Validate checks if the configuration is valid, filling in defaults for
// optional fields left at zero.
func (c *TrainConfig) Validate() error {
	if c.HSize <= 0 {
		return fmt.Errorf("h_size must be positive, got %d", c.HSize)
	}
	if c.SeqLen <= 0 {
		return fmt.Errorf("seq_len must be positive, got %d", c.SeqLen)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %g", c.LearningRate)
	}
	switch c.Optimizer {
	case "":
		c.Optimizer = "adagrad"
	case "adagrad", "sgd":
	default:
		return fmt.Errorf("unknown optimizer %q", c.Optimizer)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return fmt.Errorf("momentum must be in [0, 1), got %g", c.Momentum)
	}
	if c.WeightsFile != "" && !strings.HasSuffix(c.WeightsFile, ".vanilla") {
		return fmt.Errorf("weights_file must end in .vanilla, got %s", c.WeightsFile)
	}
	if c.WeightSD <= 0 {
		c.WeightSD = 0.1
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 100
	}
	return nil
}

// Load loads configuration from a JSON file.
func Load(filename string) (*TrainConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// Default returns a default configuration.
func Default() *TrainConfig {
	return &TrainConfig{
		HSize:        100,
		SeqLen:       25,
		WeightSD:     0.1,
		LearningRate: 0.1,
		Momentum:     0.9,
		Optimizer:    "adagrad",
		Seed:         5,
		Workers:      1,
		BatchSize:    1,
		LogEvery:     100,
		SaveEvery:    1000,
		Port:         8085,
	}
}
