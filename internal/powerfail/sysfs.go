// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package powerfail

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// File prefix for testing w/o proper sysfs.
var prefix string

func SetDebugPrefix(p string) { prefix = p }

// ChipBase returns the global number of line 0 of the sysfs gpiochip with
// the given label and the chip's line count.
func ChipBase(label string) (base, ngpio int, err error) {
	chips, err := filepath.Glob(prefix + "/sys/class/gpio/gpiochip*")
	if err != nil {
		return
	}
	for _, dir := range chips {
		if readAttr(dir, "label") != label {
			continue
		}
		if base, err = strconv.Atoi(readAttr(dir, "base")); err != nil {
			return 0, 0, fmt.Errorf("%s: base: %w", dir, err)
		}
		if ngpio, err = strconv.Atoi(readAttr(dir, "ngpio")); err != nil {
			return 0, 0, fmt.Errorf("%s: ngpio: %w", dir, err)
		}
		return base, ngpio, nil
	}
	return 0, 0, errNoChip
}

func readAttr(dir, name string) string {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

type sysfsLine struct{ p gpio.PinIO }

func (l sysfsLine) Value() (int, error) {
	if l.p.Read() == gpio.High {
		return 1, nil
	}
	return 0, nil
}

func (l sysfsLine) Close() error { return l.p.Halt() }

func openSysfs(pin Pin) (Line, error) {
	base, n, err := ChipBase(pin.Bank)
	if err != nil {
		return nil, &Error{"open chip", pin, err}
	}
	if pin.Offset < 0 || pin.Offset >= n {
		return nil, &Error{"get line", pin,
			fmt.Errorf("chip has %d lines", n)}
	}
	if _, err = host.Init(); err != nil {
		return nil, &Error{"open chip", pin, err}
	}
	name := fmt.Sprint("GPIO", base+pin.Offset)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, &Error{"get line", pin, fmt.Errorf("%s: not found", name)}
	}
	if err = p.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, &Error{"request input", pin, err}
	}
	return sysfsLine{p}, nil
}
