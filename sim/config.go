package sim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfig names the config file loaded by the registered backend.
const EnvConfig = "EDGE_SIM_CONFIG"

// Config configures the simulated SDK.
type Config struct {
	// Stream is the simulated live view source.
	Stream StreamConfig `toml:"stream" yaml:"stream"`

	// Media is the simulated dock media store.
	Media MediaConfig `toml:"media" yaml:"media"`

	// Cloud is the custom message transport.
	Cloud CloudConfig `toml:"cloud" yaml:"cloud"`

	// VerifyKeys makes Init reject key material that is not a DER encoded
	// RSA-2048 key pair.
	VerifyKeys bool `toml:"verify_keys" yaml:"verify_keys"`

	// InitDelay simulates the time the SDK takes to reach the aircraft.
	InitDelay time.Duration `toml:"init_delay" yaml:"init_delay"`
}

// StreamConfig configures the live view simulation.
type StreamConfig struct {
	// File is an Annex B H.264 file streamed NAL unit by NAL unit. Empty
	// selects a built-in synthetic stream.
	File string `toml:"file" yaml:"file"`

	// FrameInterval is the delay between NAL units.
	FrameInterval time.Duration `toml:"frame_interval" yaml:"frame_interval"`

	// StatusInterval is the period of stream status updates.
	StatusInterval time.Duration `toml:"status_interval" yaml:"status_interval"`

	// Loop restarts the file at EOF instead of ending the stream.
	Loop bool `toml:"loop" yaml:"loop"`

	// QueueSize bounds the NAL units buffered ahead of the callback.
	QueueSize int `toml:"queue_size" yaml:"queue_size"`
}

// MediaConfig configures the media store.
type MediaConfig struct {
	// Dir holds the dock's media files. Empty disables media access.
	Dir string `toml:"dir" yaml:"dir"`
}

// CloudConfig configures the cloud transport.
type CloudConfig struct {
	// URL is a ws:// or wss:// endpoint. Empty keeps messages local.
	URL string `toml:"url" yaml:"url"`

	// DialTimeout bounds the connection attempt made during Init.
	DialTimeout time.Duration `toml:"dial_timeout" yaml:"dial_timeout"`
}

// DefaultConfig returns the default simulation settings.
func DefaultConfig() *Config {
	return &Config{
		Stream: StreamConfig{
			FrameInterval:  30 * time.Millisecond,
			StatusInterval: 2 * time.Second,
			Loop:           true,
			QueueSize:      10,
		},
		Cloud: CloudConfig{
			DialTimeout: 5 * time.Second,
		},
		VerifyKeys: true,
	}
}

// LoadConfig reads a TOML or YAML config file chosen by extension. An
// empty path or a missing file yields the defaults. Environment overrides
// are applied last.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := decodeConfig(path, data, cfg); err != nil {
				return nil, err
			}
		}
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

func decodeConfig(path string, data []byte, cfg *Config) error {
	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err == nil {
			return nil
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config: unknown format")
		}
	}
	return nil
}

// ApplyEnvOverrides applies EDGE_SIM_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("EDGE_SIM_STREAM_FILE"); v != "" {
		c.Stream.File = v
	}
	if v := os.Getenv("EDGE_SIM_MEDIA_DIR"); v != "" {
		c.Media.Dir = v
	}
	if v := os.Getenv("EDGE_SIM_CLOUD_URL"); v != "" {
		c.Cloud.URL = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Stream.FrameInterval <= 0 {
		errs = append(errs, errors.New("stream.frame_interval must be positive"))
	}
	if c.Stream.StatusInterval <= 0 {
		errs = append(errs, errors.New("stream.status_interval must be positive"))
	}
	if c.Stream.QueueSize <= 0 {
		errs = append(errs, errors.New("stream.queue_size must be positive"))
	}
	if c.InitDelay < 0 {
		errs = append(errs, errors.New("init_delay must not be negative"))
	}
	if c.Media.Dir != "" {
		info, err := os.Stat(c.Media.Dir)
		if err != nil {
			errs = append(errs, fmt.Errorf("media.dir: %w", err))
		} else if !info.IsDir() {
			errs = append(errs, fmt.Errorf("media.dir: %s is not a directory", c.Media.Dir))
		}
	}
	return errors.Join(errs...)
}
