package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

const defaultAddr = ":8080"

// Config is read from the yaml file given with --config. Flags set on the
// command line take precedence over the file.
type Config struct {
	Type  string `yaml:"type"`
	URL   string `yaml:"url"`
	Table string `yaml:"table"`
	Addr  string `yaml:"addr"`
	Debug bool   `yaml:"debug"`
}

func loadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %w", err)
	}
	return &cfg, nil
}

// override copies the fields of flags for which changed reports true.
func (c *Config) override(flags *Config, changed func(name string) bool) {
	if changed("type") {
		c.Type = flags.Type
	}
	if changed("url") {
		c.URL = flags.URL
	}
	if changed("table") {
		c.Table = flags.Table
	}
	if changed("addr") {
		c.Addr = flags.Addr
	}
	if changed("debug") {
		c.Debug = flags.Debug
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Type == "" {
		errs = append(errs, errors.New("missing endpoint type"))
	}
	if c.URL == "" {
		errs = append(errs, errors.New("missing endpoint url"))
	}
	if c.Addr == "" {
		c.Addr = defaultAddr
	}
	return errors.Join(errs...)
}

func (c *Config) endpointParams() *core.EndpointParams {
	return &core.EndpointParams{
		Name:  c.Table,
		Type:  c.Type,
		URL:   c.URL,
		Table: c.Table,
	}
}
