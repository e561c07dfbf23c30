// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package info prints the micro's state as NAME=VALUE lines.
package info

import (
	"fmt"
	"io"

	"github.com/platinasystems/microctl/internal/board"
	"github.com/platinasystems/microctl/internal/micro"
	"github.com/platinasystems/microctl/internal/supercap"
)

// Print the generic information followed by the board's own telemetry.
func Print(w io.Writer, dev *micro.Dev, prof *board.Profile) error {
	if err := generic(w, dev, prof); err != nil {
		return err
	}
	if prof.Telemetry == nil {
		return nil
	}
	return prof.Telemetry.Print(w, dev)
}

func b2i(t bool) int {
	if t {
		return 1
	}
	return 0
}

func generic(w io.Writer, dev *micro.Dev, prof *board.Profile) error {
	rev, err := dev.Read8(micro.Revision)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "micro_revision=%d\n", rev)

	build, err := dev.Build()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "micro_build=\"%s\"\n", build)

	for _, t := range []struct {
		name string
		reg  uint16
	}{
		{"micro_startup_celcius", micro.ADC4},
		{"micro_celcius", micro.ADC10},
	} {
		v, err := dev.Read16Swap(t.reg)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s=%d\n", t.name, v)
	}

	status, err := dev.Status()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "usb_present=%d\n", b2i(status.UsbPresent()))

	if !prof.HasSilo {
		return nil
	}

	fmt.Fprintf(w, "power_fail=%d\n", b2i(status.PowerFail()))
	fmt.Fprintf(w, "scaps_enabled=%d\n", b2i(status.ScapsEnabled()))
	fmt.Fprintf(w, "scaps_met_min=%d\n", b2i(status.ScapsMetMin()))
	fmt.Fprintf(w, "scaps_charging=%d\n", b2i(status.ScapsCharging()))

	pct, err := supercap.ReadRemainingPct(dev)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "supercaps_remaining_pct=%d\n", pct)

	for _, t := range []struct {
		name string
		reg  uint16
	}{
		{"supercaps_charge_current_ma", micro.ChargeCurrent},
		{"supercaps_charge_current_default_ma", micro.ChargeCurrentDefault},
	} {
		v, err := dev.Read16Swap(t.reg)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s=%d\n", t.name, v)
	}
	return nil
}
