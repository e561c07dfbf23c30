// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package powerfail

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type line struct {
	v      int
	err    error
	closed bool
}

func (l *line) Value() (int, error) { return l.v, l.err }
func (l *line) Close() error        { l.closed = true; return nil }

func TestAsserted(t *testing.T) {
	for _, tc := range []struct {
		active, v int
		want      bool
	}{
		{1, 1, true},
		{1, 0, false},
		{0, 0, true},
		{0, 1, false},
	} {
		pin := Pin{Bank: "20ac000.gpio", ActiveLevel: tc.active}
		got, err := NewMonitor(pin, &line{v: tc.v}).Asserted()
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("active %d value %d: wrong: %v",
				tc.active, tc.v, got)
		}
	}
}

func TestReadError(t *testing.T) {
	eio := errors.New("input/output error")
	pin := Pin{Bank: "20ac000.gpio", Offset: 3, ActiveLevel: 1}
	m := NewMonitor(pin, &line{err: eio})
	_, err := m.Asserted()
	var pe *Error
	if !errors.As(err, &pe) || pe.Op != "read" || !errors.Is(err, eio) {
		t.Fatal("wrong:", err)
	}
	if err.Error() != "power-fail 20ac000.gpio:3: read: input/output error" {
		t.Error("wrong:", err)
	}
	if _, err = NewMonitor(pin, &line{v: -1}).Asserted(); err == nil {
		t.Error("negative value accepted")
	}
}

func TestClose(t *testing.T) {
	l := new(line)
	NewMonitor(Pin{}, l).Close()
	if !l.closed {
		t.Error("line left open")
	}
}

func TestUnknownBackend(t *testing.T) {
	if _, err := Open(Pin{}, "test", "mmio"); err == nil {
		t.Error("accepted unknown backend")
	}
}

func TestChipBase(t *testing.T) {
	dir := t.TempDir()
	SetDebugPrefix(dir)
	defer SetDebugPrefix("")
	for name, attrs := range map[string][3]string{
		"gpiochip0":  {"209c000.gpio", "0", "32"},
		"gpiochip32": {"20a0000.gpio", "32", "32"},
		"gpiochip64": {"20ac000.gpio", "64", "32"},
	} {
		chip := filepath.Join(dir, "sys/class/gpio", name)
		if err := os.MkdirAll(chip, 0755); err != nil {
			t.Fatal(err)
		}
		for i, attr := range []string{"label", "base", "ngpio"} {
			err := os.WriteFile(filepath.Join(chip, attr),
				[]byte(attrs[i]+"\n"), 0644)
			if err != nil {
				t.Fatal(err)
			}
		}
	}
	base, n, err := ChipBase("20ac000.gpio")
	if err != nil {
		t.Fatal(err)
	}
	if base != 64 || n != 32 {
		t.Error("wrong:", base, n)
	}
	if _, _, err = ChipBase("nope.gpio"); err == nil {
		t.Error("found missing chip")
	}
}
