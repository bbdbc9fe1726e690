// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"dspgraph/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// DefaultDeviceID selects the host's default input/output device.
const DefaultDeviceID = -1

// Config is the top-level configuration surface for a runtime instance
// (spec §6): graph-wide render settings plus zero or more named FFT
// subgraph configurations.
type Config struct {
	Debug           bool                 `yaml:"debug"`
	LogLevel        string               `yaml:"log_level"`
	Command         string               `yaml:"command,omitempty"`
	DiagnosticsAddr string               `yaml:"diagnostics_addr,omitempty"`
	Graph           GraphConfig          `yaml:"graph"`
	FFT             map[string]FFTConfig `yaml:"fft,omitempty"`
}

// GraphConfig configures the top-level render/live surface.
type GraphConfig struct {
	SampleRate   float64 `yaml:"sample_rate"`
	BlockSize    int     `yaml:"block_size"`
	MaxBlockSize int     `yaml:"max_block_size"`
	Backend      string  `yaml:"backend"` // default, jack, alsa, wasapi
	Device       string  `yaml:"device"`  // default, index(n), name(substring)
}

// FFTConfig configures one FFT subgraph instance (spec §4.4, §6).
type FFTConfig struct {
	FFTLength      int    `yaml:"fft_length"`
	HopLength      int    `yaml:"hop_length"`
	WindowFunction string `yaml:"window_function"`
}

// LoadConfig loads configuration from path, or from a small set of
// candidate locations when path is empty, applying defaults first and
// environment overrides last. Returns the defaulted config unmodified
// if no file is found.
func LoadConfig(path string) (*Config, error) {
	cfg := Config{
		Debug:    false,
		LogLevel: "info",
		Graph: GraphConfig{
			SampleRate:   48000,
			BlockSize:    512,
			MaxBlockSize: 4096,
			Backend:      "default",
			Device:       "default",
		},
	}

	if path == "" {
		candidates := []string{"config.yaml", "dspgraph.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the structural invariants the runtime driver and FFT
// subgraph constructors require before allocation.
func (c *Config) Validate() error {
	if c.Graph.SampleRate <= 0 {
		return fmt.Errorf("graph.sample_rate must be positive, got %v", c.Graph.SampleRate)
	}
	if c.Graph.MaxBlockSize <= 0 {
		return fmt.Errorf("graph.max_block_size must be positive, got %d", c.Graph.MaxBlockSize)
	}
	if c.Graph.BlockSize <= 0 || c.Graph.BlockSize > c.Graph.MaxBlockSize {
		return fmt.Errorf("graph.block_size must be in (0, max_block_size], got %d", c.Graph.BlockSize)
	}
	switch c.Graph.Backend {
	case "default", "jack", "alsa", "wasapi":
	default:
		return fmt.Errorf("graph.backend %q is not one of default, jack, alsa, wasapi", c.Graph.Backend)
	}
	for name, fft := range c.FFT {
		if fft.FFTLength <= 0 || fft.HopLength <= 0 {
			return fmt.Errorf("fft %q: fft_length and hop_length must be positive", name)
		}
		if fft.FFTLength%fft.HopLength != 0 {
			return fmt.Errorf("fft %q: fft_length (%d) must be a multiple of hop_length (%d)", name, fft.FFTLength, fft.HopLength)
		}
		if !bitint.IsPowerOfTwo(fft.FFTLength) {
			return fmt.Errorf("fft %q: fft_length (%d) must be a power of two", name, fft.FFTLength)
		}
	}
	return nil
}

// applyEnvOverrides lets a small set of ENV_* variables override the
// loaded file, following the teacher's override-after-parse pattern.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(val)
	}
	if val, ok := os.LookupEnv("ENV_SAMPLE_RATE"); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.Graph.SampleRate = f
		}
	}
	if val, ok := os.LookupEnv("ENV_BLOCK_SIZE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Graph.BlockSize = n
		}
	}
	if val, ok := os.LookupEnv("ENV_BACKEND"); ok {
		c.Graph.Backend = val
	}
	if val, ok := os.LookupEnv("ENV_DEVICE"); ok {
		c.Graph.Device = val
	}
}
