// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package board describes the supported single board computers and picks
// the running one from its device-tree compatible string.
package board

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/platinasystems/microctl/internal/powerfail"
)

const Compatible = "/sys/firmware/devicetree/base/compatible"

// Profile is constant for the life of the process.
type Profile struct {
	Compatible string
	Bus        int
	Addr       int
	// HasSilo is true when the board carries the supercap backup.
	HasSilo   bool
	PowerFail powerfail.Pin
	// Charge current bounds in mA.
	MinCurrent, MaxCurrent int
	// Telemetry prints the board's own ADC channels after the generic info.
	Telemetry Telemetry
}

func (p *Profile) String() string {
	if p.Compatible == "" {
		return "generic"
	}
	return p.Compatible
}

// IsGeneric is the fallback used when the platform cannot be read; only
// the sleep command is safe on it.
func (p *Profile) IsGeneric() bool { return p == Generic }

// The micro is at 0x54 on bus 0 of every supported board, so the generic
// board can still reach it.
var Generic = &Profile{
	Bus:  0,
	Addr: 0x54,
}

var TS7100 = &Profile{
	Compatible: "technologic,ts7100",
	Bus:        0,
	Addr:       0x54,
	HasSilo:    true,
	PowerFail: powerfail.Pin{
		Bank:        "20ac000.gpio",
		Offset:      0,
		ActiveLevel: 1,
	},
	MaxCurrent: 950,
	Telemetry:  ts7100{},
}

var TS7180 = &Profile{
	Compatible: "technologic,ts7180",
	Bus:        0,
	Addr:       0x54,
	HasSilo:    true,
	PowerFail: powerfail.Pin{
		Bank:        "20ac000.gpio",
		Offset:      0,
		ActiveLevel: 1,
	},
	Telemetry: ts7180{},
}

var TS7800v2 = &Profile{
	Compatible: "technologic,ts7800v2",
	Bus:        0,
	Addr:       0x54,
}

var Boards = []*Profile{TS7100, TS7180, TS7800v2}

var ErrUnsupported = errors.New("Unsupported platform")

// ErrNoSys means the compatible file doesn't exist, typically because /sys
// isn't mounted this late in shutdown; Detect returns Generic with it.
var ErrNoSys = errors.New("platform could not be detected; " +
	"/sys is likely not mounted, only sleep is accepted")

// Detect matches each NUL separated entry of the compatible file against
// the board table.
func Detect(fn string) (*Profile, error) {
	b, err := os.ReadFile(fn)
	if errors.Is(err, os.ErrNotExist) {
		return Generic, ErrNoSys
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	for _, s := range bytes.Split(b, []byte{0}) {
		if len(s) == 0 {
			continue
		}
		for _, p := range Boards {
			if bytes.Contains(s, []byte(p.Compatible)) {
				return p, nil
			}
		}
	}
	return nil, ErrUnsupported
}
