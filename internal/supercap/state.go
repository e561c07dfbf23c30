// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package supercap

import (
	"fmt"
	"time"
)

const (
	FastInterval = 100 * time.Millisecond
	SlowInterval = time.Second

	// Print every second while polling fast.
	fastPrintTicks = int(time.Second / FastInterval)
)

// State is the monitor daemon's memory between ticks.
type State struct {
	// PowerFail is the last acted upon power-fail reading.
	PowerFail bool
	// MonitorI2C samples the supercap voltage every tick when set;
	// otherwise Pct holds the last sample.
	MonitorI2C bool
	Interval   time.Duration
	// PrintEvery is the status line period in counted ticks.
	PrintEvery int
	// Suppress idles the daemon after power returned to full supercaps.
	Suppress bool
	Tick     int
	Pct      uint8

	RebootPct uint8
}

func NewState(rebootPct uint8) State {
	return State{
		MonitorI2C: true,
		Interval:   FastInterval,
		PrintEvery: fastPrintTicks,
		RebootPct:  rebootPct,
	}
}

// Effects are what the driver must do after a Step, in order: log, then
// either reboot or sleep.
type Effects struct {
	Log    []string
	Reboot bool
	// Sleep is zero to poll again at once.
	Sleep time.Duration
}

// Idle is true while nothing is sampled or logged.
func (s *State) Idle() bool {
	return s.Suppress && s.Pct == 100 && !s.PowerFail
}

// Step advances the monitor by one tick with this tick's power-fail
// reading.  It calls charge, at most once, when the supercaps must be
// sampled; an error from charge is returned as is and leaves the state
// otherwise unchanged.
func (s *State) Step(powerFail bool, charge func() (uint8, error)) (fx Effects, err error) {
	if powerFail && !s.PowerFail {
		s.PowerFail = true
		s.MonitorI2C = true
		s.Interval = FastInterval
		s.PrintEvery = fastPrintTicks
		s.Suppress = false
		fx.Log = append(fx.Log, "Power fail asserted")
		return
	}

	if s.Idle() {
		fx.Sleep = s.Interval
		return
	}

	if s.MonitorI2C {
		pct, err := charge()
		if err != nil {
			return fx, err
		}
		s.Pct = pct
	}

	if (s.PowerFail || s.Pct < 100) && s.Tick%s.PrintEvery == 0 {
		fx.Log = append(fx.Log, fmt.Sprintf(
			"Supercap Charge: %d%% (Reboot Threshold: %d%%) | Power Fail: %s",
			s.Pct, s.RebootPct, yesNo(powerFail)))
	}

	if powerFail && s.Pct < s.RebootPct {
		fx.Log = append(fx.Log, "Charge below threshold, rebooting...")
		fx.Reboot = true
		return
	}

	if !powerFail && s.PowerFail {
		s.PowerFail = false
		fx.Log = append(fx.Log, fmt.Sprintf(
			"Power restored. Supercap Charge: %d%%", s.Pct))
		if s.Pct == 100 {
			s.MonitorI2C = false
			s.Interval = SlowInterval
			s.PrintEvery = 1
			s.Suppress = true
		}
	}

	fx.Sleep = s.Interval
	if !s.Idle() {
		s.Tick++
	}
	return
}

func yesNo(t bool) string {
	if t {
		return "YES"
	}
	return "No"
}
