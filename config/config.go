// Package config loads and saves sweep-plan configuration files.
//
// A plan describes the frequency range to cover, the per-step capture
// parameters and the detection tuning. Files are YAML; a missing file
// yields the defaults so tools run out of the box.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-sweep/detect"
	"github.com/cwbudde/algo-sweep/sweep"
)

// Config is one sweep plan.
type Config struct {
	FreqStartMHz float64 `yaml:"freq_start_mhz"`
	FreqStopMHz  float64 `yaml:"freq_stop_mhz"`
	StepMHz      float64 `yaml:"step_mhz"`

	SampleRate float64 `yaml:"sample_rate"`
	Bandwidth  float64 `yaml:"bandwidth"`

	FFTSize    int  `yaml:"fft_size"`
	FFTThreads int  `yaml:"fft_threads"`
	RawSamples bool `yaml:"raw_samples"` // disable streaming bias removal

	OffsetDB  float64 `yaml:"offset_db"`
	VGAGain   int     `yaml:"vga_gain"`
	LNAGain   int     `yaml:"lna_gain"`

	ThresholdDB   float64 `yaml:"threshold_db"`
	IgnoreLevelDB float64 `yaml:"ignore_level_dbm"`
	MinBins       int     `yaml:"min_bins"`
	StdDevMaxDB   float64 `yaml:"stddev_max_db"`
}

// Default returns the reference sweep plan: a full 50-6000 MHz scan in
// 5 MHz hops at 20 MS/s.
func Default() Config {
	return Config{
		FreqStartMHz:  50,
		FreqStopMHz:   6000,
		StepMHz:       5,
		SampleRate:    20e6,
		Bandwidth:     15e6,
		FFTSize:       256,
		FFTThreads:    1,
		OffsetDB:      sweep.DefaultOffsetDB,
		VGAGain:       20,
		LNAGain:       16,
		ThresholdDB:   10,
		IgnoreLevelDB: -100,
		MinBins:       3,
		StdDevMaxDB:   5,
	}
}

// Load reads a plan from path. A missing file returns the defaults; any
// other read or parse failure is an error. Fields absent from the file
// keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}

		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the plan to path as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}

	return nil
}

// Validate checks the plan for values no engine can be prepared with.
func (c Config) Validate() error {
	if c.FFTSize < 2 {
		return fmt.Errorf("config: fft_size must be >= 2: %d", c.FFTSize)
	}

	if c.StepMHz <= 0 {
		return fmt.Errorf("config: step_mhz must be > 0: %v", c.StepMHz)
	}

	if c.FreqStopMHz <= c.FreqStartMHz {
		return fmt.Errorf("config: freq_stop_mhz %v must exceed freq_start_mhz %v", c.FreqStopMHz, c.FreqStartMHz)
	}

	if c.SampleRate <= 0 {
		return fmt.Errorf("config: sample_rate must be > 0: %v", c.SampleRate)
	}

	return nil
}

// StepCount returns the number of hops covering the configured range.
func (c Config) StepCount() int {
	if c.StepMHz <= 0 {
		return 0
	}

	return int((c.FreqStopMHz - c.FreqStartMHz) / c.StepMHz)
}

// BinWidthHz returns the width of one spectral bin.
func (c Config) BinWidthHz() float64 {
	if c.FFTSize == 0 {
		return 0
	}

	return c.SampleRate / float64(c.FFTSize)
}

// EngineConfig maps the plan onto an engine configuration.
func (c Config) EngineConfig() sweep.Config {
	var cfg sweep.Config
	if c.RawSamples {
		cfg = sweep.RawConfig(c.FFTSize, c.StepCount())
	} else {
		cfg = sweep.DefaultConfig(c.FFTSize, c.StepCount())
		cfg.OffsetDB = c.OffsetDB
	}

	cfg.Threads = c.FFTThreads

	return cfg
}

// DetectConfig maps the plan onto a detector configuration.
func (c Config) DetectConfig() detect.Config {
	cfg := detect.DefaultConfig()
	cfg.ThresholdDB = c.ThresholdDB
	cfg.IgnoreLevelDB = c.IgnoreLevelDB
	cfg.MinBins = c.MinBins
	cfg.MaxStdDevDB = c.StdDevMaxDB

	return cfg
}
