// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package supercap

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"

	"github.com/platinasystems/microctl/internal/board"
	"github.com/platinasystems/microctl/internal/micro"
)

// Waiter enables charging and blocks until the supercaps reach a target
// with power-fail clear.  There is no timeout.
type Waiter struct {
	Hardware
	// Out gets a status line every second; default os.Stdout.
	Out io.Writer
}

func (w *Waiter) Run(dev *micro.Dev, prof *board.Profile, target uint8) (err error) {
	if err = checkPct(target); err != nil {
		return
	}
	if !prof.HasSilo {
		return ErrNoSilo
	}
	out := w.Out
	if out == nil {
		out = os.Stdout
	}
	if err = dev.EnableSupercaps(true); err != nil {
		return
	}
	pf, err := w.open(prof.PowerFail, "microctl-wait")
	if err != nil {
		return
	}
	defer func() {
		err = multierr.Append(err, pf.Close())
	}()

	for tick := 0; ; tick++ {
		asserted, err := pf.Asserted()
		if err != nil {
			return err
		}
		pct, err := ReadRemainingPct(dev)
		if err != nil {
			return err
		}
		if tick%fastPrintTicks == 0 {
			fmt.Fprintf(out,
				"Supercap Charge: %d%% (Target: %d%%) | Power Fail: %s\n",
				pct, target, yesNo(asserted))
		}
		if pct >= target && !asserted {
			return nil
		}
		w.sleep(FastInterval)
	}
}
