// Package config loads the optional installsplash.yaml settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"installsplash/internal/install"
	"installsplash/internal/splash"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file looked up in the working directory.
const FileName = "installsplash.yaml"

// Config mirrors installsplash.yaml.
type Config struct {
	Bundle  BundleConfig  `yaml:"bundle"`
	Splash  SplashConfig  `yaml:"splash"`
	Install InstallConfig `yaml:"install"`
}

// BundleConfig names the thing being installed.
type BundleConfig struct {
	Name string `yaml:"name,omitempty"`
}

// SplashConfig tunes the surface.
type SplashConfig struct {
	Headless        bool     `yaml:"headless,omitempty"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout,omitempty"`
	Background      string   `yaml:"background,omitempty"`
	Width           int      `yaml:"width,omitempty"`
}

// InstallConfig describes the simulated installation.
type InstallConfig struct {
	Steps     []string `yaml:"steps,omitempty"`
	StepDelay Duration `yaml:"step_delay,omitempty"`
}

// Duration is a time.Duration written as a Go duration string in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// LoadOptional reads path if present. A missing file yields an empty Config.
func LoadOptional(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolved holds the effective settings after defaults.
type Resolved struct {
	BundleName      string
	Headless        bool
	ShutdownTimeout time.Duration
	Background      string
	Width           int
	Plan            install.Plan
}

// Resolve fills defaults for anything the file left unset.
func (c *Config) Resolve() Resolved {
	r := Resolved{
		BundleName:      strings.TrimSpace(c.Bundle.Name),
		Headless:        c.Splash.Headless,
		ShutdownTimeout: time.Duration(c.Splash.ShutdownTimeout),
		Background:      c.Splash.Background,
		Width:           c.Splash.Width,
		Plan: install.Plan{
			Steps:     c.Install.Steps,
			StepDelay: time.Duration(c.Install.StepDelay),
		},
	}
	if r.ShutdownTimeout <= 0 {
		r.ShutdownTimeout = splash.ShutdownTimeout
	}
	if len(r.Plan.Steps) == 0 {
		r.Plan.Steps = install.DefaultSteps
	}
	if r.Plan.StepDelay <= 0 {
		r.Plan.StepDelay = 750 * time.Millisecond
	}
	return r
}
