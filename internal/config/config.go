// Package config loads harptabs settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/0xlemi/harptabs/internal/audio"
	"github.com/0xlemi/harptabs/internal/pitch"
	"github.com/0xlemi/harptabs/internal/practice"
	"gopkg.in/yaml.v3"
)

// Environment overrides
const (
	EnvDatabase = "HARPTABS_DB"
	EnvLogLevel = "HARPTABS_LOG_LEVEL"
)

// Detector names
const (
	DetectorAutocorrelation = "autocorrelation"
	DetectorFFT             = "fft"
)

// Defaults
const (
	DefaultLogLevel = "info"
	DefaultPort     = 8080
	appDir          = "harptabs"
	fileName        = "config.yaml"
	databaseName    = "harptabs.db"
	logName         = "harptabs.log"
)

var (
	ErrInvalidDetector   = errors.New("unknown pitch detector")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidBand       = errors.New("min frequency must be below max frequency")
)

// Audio configures capture and pitch detection
type Audio struct {
	SampleRate         int     `yaml:"sample_rate"`
	BufferBytes        int     `yaml:"buffer_bytes"`
	MinFrequency       float64 `yaml:"min_frequency"`
	MaxFrequency       float64 `yaml:"max_frequency"`
	AmplitudeThreshold float64 `yaml:"amplitude_threshold"`
	Detector           string  `yaml:"detector"`
}

// Server configures the HTTP API
type Server struct {
	Port int `yaml:"port"`
}

// Config is the full harptabs configuration
type Config struct {
	Database string           `yaml:"database"`
	LogLevel string           `yaml:"log_level"`
	LogFile  string           `yaml:"log_file"`
	Audio    Audio            `yaml:"audio"`
	Practice practice.Options `yaml:"practice"`
	Server   Server           `yaml:"server"`
}

// Default returns the built-in configuration rooted at dir
func Default(dir string) Config {
	return Config{
		Database: filepath.Join(dir, databaseName),
		LogLevel: DefaultLogLevel,
		LogFile:  filepath.Join(dir, logName),
		Audio: Audio{
			SampleRate:         audio.DefaultSampleRate,
			BufferBytes:        pitch.DefaultBufferBytes,
			MinFrequency:       pitch.DefaultMinFrequency,
			MaxFrequency:       pitch.DefaultMaxFrequency,
			AmplitudeThreshold: pitch.DefaultAmplitudeThreshold,
			Detector:           DetectorAutocorrelation,
		},
		Practice: practice.DefaultOptions(),
		Server:   Server{Port: DefaultPort},
	}
}

// Dir is the per-user harptabs directory
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, appDir)
}

// DefaultPath is where Load looks when no path is given
func DefaultPath() string {
	return filepath.Join(Dir(), fileName)
}

// Load reads path over the defaults and applies environment overrides.
// An empty path means DefaultPath; a missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default(Dir())

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the audio section
func (c Config) Validate() error {
	a := c.Audio
	if a.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	if a.MinFrequency <= 0 || a.MinFrequency >= a.MaxFrequency {
		return ErrInvalidBand
	}
	switch a.Detector {
	case DetectorAutocorrelation, DetectorFFT:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDetector, a.Detector)
	}
}

// NewDetector builds the configured pitch detector
func (a Audio) NewDetector() pitch.Detector {
	if a.Detector == DetectorFFT {
		return pitch.NewFFTDetector(a.SampleRate, a.MinFrequency, a.MaxFrequency, a.AmplitudeThreshold)
	}
	return &pitch.AutocorrelationDetector{
		SampleRate:         a.SampleRate,
		MinFrequency:       a.MinFrequency,
		MaxFrequency:       a.MaxFrequency,
		AmplitudeThreshold: a.AmplitudeThreshold,
	}
}

// Write saves c as YAML, creating the parent directory
func (c Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
