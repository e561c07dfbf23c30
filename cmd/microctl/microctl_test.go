// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package microctl

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	redigo "github.com/garyburd/redigo/redis"

	"github.com/platinasystems/microctl/external/log"
	"github.com/platinasystems/microctl/external/redis"
	"github.com/platinasystems/microctl/internal/board"
	"github.com/platinasystems/microctl/internal/micro"
	"github.com/platinasystems/microctl/internal/powerfail"
	"github.com/platinasystems/microctl/internal/supercap"
)

func TestMain(m *testing.M) {
	log.Exclusive(true)
	os.Exit(m.Run())
}

// bus serves reads from an image and records the register of each write.
type bus struct {
	image  map[uint16][]byte
	writes []uint16
}

func (b *bus) Tx(addr uint16, w, r []byte) error {
	reg := uint16(w[0])<<8 | uint16(w[1])
	if len(r) > 0 {
		copy(r, b.image[reg])
	} else {
		b.writes = append(b.writes, reg)
	}
	return nil
}

type rig struct {
	cmd    Command
	bus    *bus
	opened int
	stdout bytes.Buffer
	stderr bytes.Buffer
	config string
}

// newRig writes a config whose compatible file holds compatible, or is
// missing if compatible is empty.
func newRig(t *testing.T, compatible string) *rig {
	dir := t.TempDir()
	fn := filepath.Join(dir, "compatible")
	if len(compatible) > 0 {
		if err := os.WriteFile(fn, []byte(compatible+"\x00"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	r := &rig{
		bus:    &bus{image: map[uint16][]byte{micro.StatusFlags: {0}}},
		config: filepath.Join(dir, "microctl.yaml"),
	}
	if err := os.WriteFile(r.config, []byte("compatible: "+fn+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	r.cmd.Stdout = &r.stdout
	r.cmd.Stderr = &r.stderr
	r.cmd.open = func(bus, addr int) (*micro.Dev, error) {
		r.opened++
		return micro.New(r.bus, uint16(addr)), nil
	}
	r.cmd.reboot = func() error { return errors.New("unexpected reboot") }
	return r
}

func (r *rig) main(args ...string) error {
	return r.cmd.Main(append([]string{"--config", r.config}, args...)...)
}

func isUsage(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

func TestHelp(t *testing.T) {
	r := newRig(t, "technologic,ts7100")
	if err := r.main("--help"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(r.stdout.String(), "max: 950") {
		t.Error("wrong usage:", r.stdout.String())
	}
	if r.opened != 0 {
		t.Error("wrong: opened")
	}
}

func TestNoOptions(t *testing.T) {
	r := newRig(t, "technologic,ts7100")
	if err := r.main(); !isUsage(err) {
		t.Error("wrong:", err)
	}
	if !strings.HasPrefix(r.stderr.String(), "Usage:") {
		t.Error("wrong usage:", r.stderr.String())
	}
}

func TestRejectsBeforeOpen(t *testing.T) {
	for _, args := range [][]string{
		{"-c", "951"},
		{"--current", "-1"},
		{"-w", "101"},
		{"--daemon=abc"},
		{"-s", "4294968"},
		{"-e", "extra"},
	} {
		r := newRig(t, "technologic,ts7100")
		if err := r.main(args...); !isUsage(err) {
			t.Error(args, "wrong:", err)
		}
		if r.opened != 0 {
			t.Error(args, "wrong: opened")
		}
	}
}

func TestUnsupported(t *testing.T) {
	r := newRig(t, "acme,widget")
	if err := r.main("-i"); !errors.Is(err, board.ErrUnsupported) {
		t.Error("wrong:", err)
	}
}

func TestGenericSleepOnly(t *testing.T) {
	r := newRig(t, "")
	if err := r.main("-i"); !isUsage(err) {
		t.Error("wrong:", err)
	}
	if !strings.Contains(r.stderr.String(), "/sys is likely not mounted") {
		t.Error("wrong notice:", r.stderr.String())
	}
	r = newRig(t, "")
	if err := r.main("-s", "5"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.bus.writes, []uint16{micro.Cmd}) {
		t.Error("wrong writes:", r.bus.writes)
	}
}

func TestOrder(t *testing.T) {
	r := newRig(t, "technologic,ts7100")
	if err := r.main("-s", "1", "--current=500", "-e"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.bus.writes, []uint16{
		micro.StatusFlags,
		micro.ChargeCurrentDefault,
		micro.ChargeCurrent,
		micro.Cmd,
	}) {
		t.Error("wrong writes:", r.bus.writes)
	}
}

func TestInfo(t *testing.T) {
	r := newRig(t, "technologic,ts7800v2")
	if err := r.main("-i"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(r.stdout.String(), "micro_revision=0\n") {
		t.Error("wrong:", r.stdout.String())
	}
	if strings.Contains(r.stdout.String(), "power_fail") {
		t.Error("wrong: silo keys without silo")
	}
}

func TestDaemonWithoutSilo(t *testing.T) {
	r := newRig(t, "technologic,ts7800v2")
	if err := r.main("-b", "50"); err != nil {
		t.Error("wrong:", err)
	}
	if len(r.bus.writes) != 0 {
		t.Error("wrong writes:", r.bus.writes)
	}
}

func TestBadConfig(t *testing.T) {
	r := newRig(t, "technologic,ts7100")
	os.WriteFile(r.config, []byte("gpio: {backend: mmio}\n"), 0644)
	if err := r.main("-i"); err == nil || !strings.Contains(err.Error(), "gpio.backend") {
		t.Error("wrong:", err)
	}
}

type powerFail struct{ asserted bool }

func (p *powerFail) Asserted() (bool, error) { return p.asserted, nil }
func (p *powerFail) Close() error            { return nil }

func TestDaemonRebootNotHeldByRedis(t *testing.T) {
	r := newRig(t, "technologic,ts7100")
	b, err := os.ReadFile(r.config)
	if err != nil {
		t.Fatal(err)
	}
	b = append(b, "redis: {address: 192.0.2.1:6379}\n"...)
	if err = os.WriteFile(r.config, b, 0644); err != nil {
		t.Fatal(err)
	}
	save := redis.Dial
	redis.Dial = func(network, address string) (redigo.Conn, error) {
		time.Sleep(500 * time.Millisecond)
		return nil, errors.New("i/o timeout")
	}
	defer func() { redis.Dial = save }()

	r.bus.image[micro.StatusFlags] = []byte{byte(micro.ScapsEnable)}
	r.bus.image[micro.ADC8] = []byte{3700 >> 8, 3700 & 0xff}
	r.cmd.hw = supercap.Hardware{
		OpenPowerFail: func(powerfail.Pin, string) (supercap.PowerFail, error) {
			return &powerFail{asserted: true}, nil
		},
		Sleep: func(time.Duration) {},
	}
	var took time.Duration
	rebooted := false
	start := time.Now()
	r.cmd.reboot = func() error {
		took, rebooted = time.Since(start), true
		return nil
	}
	if err = r.main("-b", "20"); err != nil {
		t.Fatal(err)
	}
	if !rebooted {
		t.Fatal("wrong: no reboot")
	}
	if took > 250*time.Millisecond {
		t.Error("wrong: reboot held for", took)
	}
}
