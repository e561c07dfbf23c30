// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package microctl is the embeddedTS supervisory microcontroller command.
package microctl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/multierr"

	"github.com/platinasystems/microctl/external/redis"
	"github.com/platinasystems/microctl/internal/board"
	"github.com/platinasystems/microctl/internal/config"
	"github.com/platinasystems/microctl/internal/flags"
	"github.com/platinasystems/microctl/internal/info"
	"github.com/platinasystems/microctl/internal/micro"
	"github.com/platinasystems/microctl/internal/parms"
	"github.com/platinasystems/microctl/internal/supercap"
)

const usage = `Usage: microctl [OPTION] ...
embeddedTS microcontroller utility

  -e, --enable             Enable charging
  -d, --disable            Disables any further charging
  -w, --wait-pct <percent> Enable charging and block until charged to a set percent
  -b, --daemon <percent>   Monitor power_fail# and issue "reboot" if the supercaps fall below percent
  -i, --info               Print current information about supercaps
  -c, --current <mA>       Permanently set max charging mA (default: 100, min: %d, max: %d)
  -s, --sleep <seconds>    Turns off power to everything for a specified number of seconds
  -h, --help               This message
      --config <file>      YAML configuration (default: ` + config.File + `)
`

// UsageError is returned for bad arguments, before any hardware access.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func usageErrorf(format string, args ...interface{}) error {
	return &UsageError{fmt.Sprintf(format, args...)}
}

type Command struct {
	Stdout, Stderr io.Writer

	open   func(bus, addr int) (*micro.Dev, error)
	hw     supercap.Hardware
	reboot func() error
}

func (Command) String() string { return "microctl" }

func (Command) Usage() string {
	return "microctl [-e] [-d] [-w PCT] [-b PCT] [-i] [-c MA] [-s SECONDS]"
}

func (Command) Apropos() string {
	return "embeddedTS microcontroller utility"
}

// options, in the order they are run
type options struct {
	enable, disable, info bool

	waitPct, daemonPct *uint8
	current            *uint16
	sleep              *uint32
}

func (o *options) nonSleep() bool {
	return o.enable || o.disable || o.info ||
		o.waitPct != nil || o.daemonPct != nil || o.current != nil
}

func (c *Command) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c *Command) stderr() io.Writer {
	if c.Stderr != nil {
		return c.Stderr
	}
	return os.Stderr
}

func (c *Command) Main(args ...string) (err error) {
	flag, args := flags.New(args,
		[]string{"-e", "--enable"},
		[]string{"-d", "--disable"},
		[]string{"-i", "--info"},
		[]string{"-h", "--help"})
	parm, args := parms.New(args,
		[]string{"-w", "--wait-pct"},
		[]string{"-b", "--daemon"},
		[]string{"-c", "--current"},
		[]string{"-s", "--sleep"},
		"--config")

	fn := parm["--config"]
	if len(fn) == 0 {
		fn = config.File
	}
	cfg, err := config.Load(fn)
	if err != nil {
		return err
	}

	prof, err := board.Detect(cfg.Compatible)
	if errors.Is(err, board.ErrNoSys) {
		fmt.Fprintf(c.stderr(), "\n%s\n\n", err)
	} else if err != nil {
		return err
	}
	printUsage := func(w io.Writer) {
		fmt.Fprintf(w, usage, prof.MinCurrent, prof.MaxCurrent)
	}

	if flag.ByName["-h"] {
		printUsage(c.stdout())
		return nil
	}
	if len(args) > 0 {
		printUsage(c.stderr())
		return usageErrorf("Unexpected %v", args)
	}
	opt, err := parse(flag, parm, prof)
	if err != nil {
		printUsage(c.stderr())
		return err
	}
	if !opt.nonSleep() && opt.sleep == nil {
		printUsage(c.stderr())
		return usageErrorf("no option given")
	}

	open := c.open
	if open == nil {
		open = micro.Open
	}
	dev, err := open(prof.Bus, prof.Addr)
	if err != nil {
		return err
	}
	return c.run(dev, prof, cfg, opt)
}

func parse(flag *flags.Flags, parm parms.Parm, prof *board.Profile) (*options, error) {
	opt := &options{
		enable:  flag.ByName["-e"],
		disable: flag.ByName["-d"],
		info:    flag.ByName["-i"],
	}
	pct := func(name string) (*uint8, error) {
		s := parm[name]
		if len(s) == 0 {
			return nil, nil
		}
		u, err := strconv.ParseUint(s, 10, 8)
		if err != nil || u > 100 {
			return nil, usageErrorf("%s: %q: percent must be between 0 and 100",
				name, s)
		}
		v := uint8(u)
		return &v, nil
	}
	var err error
	if opt.waitPct, err = pct("-w"); err != nil {
		return nil, err
	}
	if opt.daemonPct, err = pct("-b"); err != nil {
		return nil, err
	}
	if s := parm["-c"]; len(s) > 0 {
		u, err := strconv.ParseUint(s, 10, 16)
		if err != nil || u < uint64(prof.MinCurrent) ||
			u > uint64(prof.MaxCurrent) {
			return nil, usageErrorf("Current must be between %d mA and %d mA",
				prof.MinCurrent, prof.MaxCurrent)
		}
		v := uint16(u)
		opt.current = &v
	}
	if s := parm["-s"]; len(s) > 0 {
		u, err := strconv.ParseUint(s, 10, 32)
		if err != nil || u > micro.MaxSleepSeconds {
			return nil, usageErrorf("%s: sleep must be between 0 and %d seconds",
				s, micro.MaxSleepSeconds)
		}
		v := uint32(u)
		opt.sleep = &v
	}
	if prof.IsGeneric() && opt.nonSleep() {
		return nil, usageErrorf("Only -s/--sleep is allowed to be issued " +
			"when the platform is not able to correctly be recognized " +
			"due to /sys not being available or not able to be opened.")
	}
	return opt, nil
}

func (c *Command) run(dev *micro.Dev, prof *board.Profile, cfg *config.Config, opt *options) (err error) {
	hw := c.hw
	if len(hw.Backend) == 0 {
		hw.Backend = cfg.Gpio.Backend
	}
	if opt.enable {
		if err = dev.EnableSupercaps(true); err != nil {
			return
		}
	}
	if opt.disable {
		if err = dev.EnableSupercaps(false); err != nil {
			return
		}
	}
	if opt.waitPct != nil {
		w := &supercap.Waiter{Hardware: hw, Out: c.stdout()}
		if err = w.Run(dev, prof, *opt.waitPct); err != nil {
			return
		}
	}
	if opt.daemonPct != nil {
		d := &supercap.Daemon{
			Hardware: hw,
			Reboot:   c.reboot,
		}
		if d.Reboot == nil {
			d.Reboot = supercap.RebootCommand(cfg.Reboot...)
		}
		if len(cfg.Redis.Address) > 0 {
			pub := redis.New(cfg.Redis.Network, cfg.Redis.Address,
				cfg.Redis.Hash).Go(16)
			defer func() { err = multierr.Append(err, pub.Close()) }()
			d.Publish = func(s supercap.State) {
				pub.Update("supercap.charge.pct", s.Pct)
				pub.Update("supercap.reboot.pct", s.RebootPct)
				pub.Update("power_fail", s.PowerFail)
			}
		}
		if err = d.Run(dev, prof, *opt.daemonPct); err != nil {
			return
		}
	}
	if opt.info {
		if err = info.Print(c.stdout(), dev, prof); err != nil {
			return
		}
	}
	if opt.current != nil {
		if err = dev.SetChargeCurrent(*opt.current); err != nil {
			return
		}
	}
	if opt.sleep != nil {
		err = dev.Sleep(*opt.sleep)
	}
	return
}
