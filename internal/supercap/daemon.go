// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package supercap estimates supercap charge, waits for it, and watches it
// while main power is failing, rebooting before the backup runs dry.
package supercap

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/platinasystems/microctl/external/log"
	"github.com/platinasystems/microctl/internal/board"
	"github.com/platinasystems/microctl/internal/micro"
	"github.com/platinasystems/microctl/internal/powerfail"
)

var ErrNoSilo = errors.New("supercaps not present")

// PowerFail is an open power-fail input.
type PowerFail interface {
	Asserted() (bool, error)
	Close() error
}

// Hardware opens the power-fail line and waits between polls.  The zero
// value uses the GPIO character device and time.Sleep.
type Hardware struct {
	Backend powerfail.Backend
	// OpenPowerFail, if set, replaces powerfail.Open.
	OpenPowerFail func(pin powerfail.Pin, consumer string) (PowerFail, error)
	Sleep         func(time.Duration)
}

func (hw *Hardware) open(pin powerfail.Pin, consumer string) (PowerFail, error) {
	if hw.OpenPowerFail != nil {
		return hw.OpenPowerFail(pin, consumer)
	}
	return powerfail.Open(pin, consumer, hw.Backend)
}

func (hw *Hardware) sleep(d time.Duration) {
	if hw.Sleep != nil {
		hw.Sleep(d)
	} else {
		time.Sleep(d)
	}
}

func checkPct(pct uint8) error {
	if pct > 100 {
		return fmt.Errorf("%d%%: must be between 0 and 100", pct)
	}
	return nil
}

// Daemon monitors power-fail and reboots when the supercaps fall below the
// threshold while it is asserted.
type Daemon struct {
	Hardware
	// Reboot is called at most once; Run returns its result.
	Reboot func() error
	// Publish, if set, is given the state after every tick that doesn't
	// reboot.  It must not block.
	Publish func(State)
}

// Run returns nil right away if the board has no supercaps or they are
// disabled.  Otherwise it polls until a read fails or it reboots.
func (d *Daemon) Run(dev *micro.Dev, prof *board.Profile, rebootPct uint8) (err error) {
	if err = checkPct(rebootPct); err != nil {
		return
	}
	if !prof.HasSilo {
		log.Print("daemon", "info", "Supercaps not present, exiting.")
		return nil
	}
	status, err := dev.Status()
	if err != nil {
		log.Print("daemon", "err", "Failed to read status flags: ", err)
		return
	}
	if !status.ScapsEnabled() {
		log.Print("daemon", "info",
			"Supercaps not enabled, exiting and not monitoring charge")
		return nil
	}

	pf, err := d.open(prof.PowerFail, "microctl-daemon")
	if err != nil {
		log.Print("daemon", "err", err)
		return
	}
	defer func() {
		err = multierr.Append(err, pf.Close())
	}()

	charge := func() (uint8, error) { return ReadRemainingPct(dev) }
	s := NewState(rebootPct)
	for {
		asserted, rerr := pf.Asserted()
		if rerr != nil {
			log.Print("daemon", "err", rerr)
			return rerr
		}
		fx, serr := s.Step(asserted, charge)
		if serr != nil {
			log.Print("daemon", "err", "Failed to read supercap voltage: ",
				serr)
			return serr
		}
		for _, m := range fx.Log {
			log.Print("daemon", "info", m)
		}
		if fx.Reboot {
			return d.reboot()
		}
		if d.Publish != nil {
			d.Publish(s)
		}
		if fx.Sleep > 0 {
			d.sleep(fx.Sleep)
		}
	}
}

func (d *Daemon) reboot() error {
	if d.Reboot == nil {
		return RebootCommand(DefaultReboot...)()
	}
	return d.Reboot()
}
