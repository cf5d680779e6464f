// Package linkcfg loads the link daemon's configuration file. The source
// read a bespoke text format with its own tokenizer (config.go); this
// reimplementation reads YAML via gopkg.in/yaml.v3 instead, keeping the
// same "read file, apply defaults, validate, report every problem before
// giving up" shape.
package linkcfg

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChannelConfig is one serial/radio channel's settings.
type ChannelConfig struct {
	Device    string `yaml:"device"`
	Baud      int    `yaml:"baud"`
	PTTChip   string `yaml:"ptt_chip"`
	PTTOffset int    `yaml:"ptt_offset"`
	PTTInvert bool   `yaml:"ptt_invert"`
	RigModel  int    `yaml:"rig_model"`
	RigDevice string `yaml:"rig_device"`
}

// LinkConfig is the top level of the configuration file.
type LinkConfig struct {
	Channels    []ChannelConfig `yaml:"channels"`
	KISSPort    int             `yaml:"kiss_port"`
	DNSSDName   string          `yaml:"dns_sd_name"`
	LogLevel    string          `yaml:"log_level"`
	RingSize    int             `yaml:"ring_size"`
	FrameMaxLen int             `yaml:"frame_max_len"`
}

const (
	defaultKISSPort   = 8001
	defaultRingSize   = 4096
	defaultFrameLen   = 1024
	defaultBaud       = 9600
)

// Load reads and validates path, filling in defaults for anything the file
// leaves at its zero value.
func Load(path string) (*LinkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("linkcfg: read %s: %w", path, err)
	}

	var cfg LinkConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("linkcfg: parse %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if errs := validate(&cfg); len(errs) > 0 {
		return nil, fmt.Errorf("linkcfg: %d invalid setting(s): %w", len(errs), errors.Join(errs...))
	}

	return &cfg, nil
}

func applyDefaults(cfg *LinkConfig) {
	if cfg.KISSPort == 0 {
		cfg.KISSPort = defaultKISSPort
	}
	if cfg.RingSize == 0 {
		cfg.RingSize = defaultRingSize
	}
	if cfg.FrameMaxLen == 0 {
		cfg.FrameMaxLen = defaultFrameLen
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	for i := range cfg.Channels {
		if cfg.Channels[i].Baud == 0 {
			cfg.Channels[i].Baud = defaultBaud
		}
	}
}

// validate collects every configuration problem rather than stopping at
// the first, the same way the source's config reader reported every bad
// line in one pass.
func validate(cfg *LinkConfig) []error {
	var errs []error
	if len(cfg.Channels) == 0 {
		errs = append(errs, fmt.Errorf("no channels configured"))
	}
	for i, ch := range cfg.Channels {
		if ch.Device == "" {
			errs = append(errs, fmt.Errorf("channel %d: device is required", i))
		}
	}
	return errs
}
