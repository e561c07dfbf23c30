// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package micro talks to the board's supervisory microcontroller through its
// 16-bit addressed register interface.
//
// Register addresses go out most significant byte first.  Payload bytes are
// sent as given; multi-byte telemetry is big-endian in the micro and the
// *Swap accessors convert it.
package micro

import (
	"fmt"
	"sync"

	"github.com/platinasystems/microctl/internal/i2c"
)

// MaxWrite is the largest payload of one write.  Some adapters are limited
// to 4KiB per ioctl message, which includes the 2 address bytes.
const MaxWrite = 4094

// Bus is an I2C adapter that does a combined write then read to one slave.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// Dev is the micro at one bus address.
type Dev struct {
	bus  Bus
	addr uint16
}

func New(bus Bus, addr uint16) *Dev {
	return &Dev{bus: bus, addr: addr}
}

func (d *Dev) Addr() uint16 { return d.addr }

var opened struct {
	sync.Mutex
	dev *Dev
}

// openBus opens the adapter; tests replace it.
var openBus = func(bus, addr int) (Bus, error) {
	b, err := i2c.Open(bus, addr)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Open the micro on /dev/i2c-BUS at ADDR.  The first successful Open wins;
// later calls return the same Dev whatever their arguments.
func Open(bus, addr int) (*Dev, error) {
	opened.Lock()
	defer opened.Unlock()
	if opened.dev != nil {
		return opened.dev, nil
	}
	b, err := openBus(bus, addr)
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}
	opened.dev = New(b, uint16(addr))
	return opened.dev, nil
}

// Error is a failed transfer.  The micro is either there and answering or
// the platform is broken, so callers don't retry.
type Error struct {
	Op  string
	Reg uint16
	Err error
}

func (e *Error) Error() string {
	if e.Op == "open" {
		return fmt.Sprint("micro: open: ", e.Err)
	}
	return fmt.Sprintf("micro: %s %d: %v", e.Op, e.Reg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func regBytes(reg uint16) [2]byte {
	return [2]byte{byte(reg >> 8), byte(reg)}
}

// Read len(p) bytes starting at reg.
func (d *Dev) Read(reg uint16, p []byte) error {
	a := regBytes(reg)
	if err := d.bus.Tx(d.addr, a[:], p); err != nil {
		return &Error{Op: "read", Reg: reg, Err: err}
	}
	return nil
}

// Write p starting at reg.  Writes longer than MaxWrite are a programming
// error and panic.
func (d *Dev) Write(reg uint16, p []byte) error {
	if len(p) > MaxWrite {
		panic(fmt.Errorf("micro: write %d: %d bytes exceeds %d",
			reg, len(p), MaxWrite))
	}
	a := regBytes(reg)
	buf := make([]byte, 0, len(a)+len(p))
	buf = append(buf, a[:]...)
	buf = append(buf, p...)
	if err := d.bus.Tx(d.addr, buf, nil); err != nil {
		return &Error{Op: "write", Reg: reg, Err: err}
	}
	return nil
}
