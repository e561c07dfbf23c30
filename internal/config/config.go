// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package config loads the optional microctl YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/platinasystems/microctl/internal/board"
	"github.com/platinasystems/microctl/internal/powerfail"
	"github.com/platinasystems/microctl/internal/supercap"
)

const File = "/etc/microctl.yaml"

type Config struct {
	// Compatible is the device-tree compatible file used to detect the
	// board.
	Compatible string      `yaml:"compatible"`
	Gpio       GpioConfig  `yaml:"gpio"`
	Reboot     []string    `yaml:"reboot"`
	Redis      RedisConfig `yaml:"redis"`
}

type GpioConfig struct {
	Backend powerfail.Backend `yaml:"backend"`
}

// RedisConfig enables status publishing when Address is set.
type RedisConfig struct {
	Network string `yaml:"network"`
	Address string `yaml:"address"`
	Hash    string `yaml:"hash"`
}

// Load, normalize and validate fn.  A missing default file is the default
// configuration; any other missing file is an error.
func Load(fn string) (*Config, error) {
	cfg := new(Config)
	b, err := os.ReadFile(fn)
	switch {
	case err == nil:
		if err = yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", fn, err)
		}
	case fn == File && errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}
	Normalize(cfg)
	if err = Validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return cfg, nil
}

// Normalize fills in defaults.
func Normalize(cfg *Config) {
	if cfg.Compatible == "" {
		cfg.Compatible = board.Compatible
	}
	if cfg.Gpio.Backend == "" {
		cfg.Gpio.Backend = powerfail.Cdev
	}
	if len(cfg.Reboot) == 0 {
		cfg.Reboot = append([]string(nil), supercap.DefaultReboot...)
	}
	if cfg.Redis.Address != "" && cfg.Redis.Network == "" {
		cfg.Redis.Network = "tcp"
	}
	if cfg.Redis.Hash == "" {
		cfg.Redis.Hash = "microctl"
	}
}

// Validate checks a normalized configuration without changing it.
func Validate(cfg *Config) error {
	switch cfg.Gpio.Backend {
	case powerfail.Cdev, powerfail.Sysfs:
	default:
		return fmt.Errorf("gpio.backend: %q: must be %q or %q",
			cfg.Gpio.Backend, powerfail.Cdev, powerfail.Sysfs)
	}
	if len(cfg.Reboot) == 0 || cfg.Reboot[0] == "" {
		return errors.New("reboot: empty command")
	}
	if cfg.Redis.Address != "" {
		switch cfg.Redis.Network {
		case "tcp", "unix":
		default:
			return fmt.Errorf("redis.network: %q: must be tcp or unix",
				cfg.Redis.Network)
		}
	}
	return nil
}
