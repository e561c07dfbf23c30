// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/platinasystems/microctl/internal/board"
	"github.com/platinasystems/microctl/internal/powerfail"
)

func write(t *testing.T, s string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "microctl.yaml")
	if err := os.WriteFile(fn, []byte(s), 0644); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestDefaults(t *testing.T) {
	cfg := new(Config)
	Normalize(cfg)
	want := &Config{
		Compatible: board.Compatible,
		Gpio:       GpioConfig{Backend: powerfail.Cdev},
		Reboot:     []string{"/sbin/reboot"},
		Redis:      RedisConfig{Hash: "microctl"},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("wrong: %+v", cfg)
	}
	if err := Validate(cfg); err != nil {
		t.Error(err)
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load(write(t, `
gpio:
  backend: sysfs
reboot: [/bin/systemctl, reboot]
redis:
  address: 127.0.0.1:6379
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gpio.Backend != powerfail.Sysfs {
		t.Error("wrong backend:", cfg.Gpio.Backend)
	}
	if !reflect.DeepEqual(cfg.Reboot, []string{"/bin/systemctl", "reboot"}) {
		t.Error("wrong reboot:", cfg.Reboot)
	}
	if cfg.Redis != (RedisConfig{"tcp", "127.0.0.1:6379", "microctl"}) {
		t.Errorf("wrong redis: %+v", cfg.Redis)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("missing explicit file accepted")
	}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		yaml, field string
	}{
		{"gpio: {backend: mmio}", "gpio.backend"},
		{"reboot: ['']", "reboot"},
		{"redis: {address: /run/redis.sock, network: udp}", "redis.network"},
	} {
		_, err := Load(write(t, tc.yaml))
		if err == nil || !strings.Contains(err.Error(), tc.field) {
			t.Errorf("%s: wrong: %v", tc.yaml, err)
		}
	}
}
