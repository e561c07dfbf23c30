// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package i2c does combined write-then-read transfers on a Linux I2C
// adapter through github.com/platinasystems/i2c.
package i2c

import (
	"fmt"

	"github.com/platinasystems/i2c"
)

// Sender is the I2C_RDWR half of an adapter.
type Sender interface {
	Send([]i2c.Message) error
}

// Bus is an open /dev/i2c-INDEX adapter.
type Bus struct {
	index int
	tx    Sender
	bus   *i2c.Bus
}

// Open the adapter and bind the given slave address.  The slave is forced
// since a kernel driver is typically attached; every transfer is an
// I2C_RDWR message carrying its own address.
func Open(index, address int) (*Bus, error) {
	bus := new(i2c.Bus)
	if err := bus.Open(index); err != nil {
		return nil, err
	}
	features, err := bus.GetFeatures()
	if err == nil && features&i2c.I2C == 0 {
		err = fmt.Errorf("adapter lacks plain i2c transfers")
	}
	if err == nil {
		err = bus.ForceSlaveAddress(address)
	}
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("/dev/i2c-%d: %#x: %w", index, address, err)
	}
	return &Bus{index: index, tx: bus, bus: bus}, nil
}

// New wraps an existing sender.
func New(index int, tx Sender) *Bus {
	return &Bus{index: index, tx: tx}
}

func (b *Bus) String() string { return fmt.Sprintf("i2c-%d", b.index) }

func (b *Bus) Close() error {
	if b.bus == nil {
		return nil
	}
	return b.bus.Close()
}

// Tx writes w then reads len(r) bytes from addr in one transfer with a
// single STOP.  Either may be empty but not both.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	msgs := make([]i2c.Message, 0, 2)
	if len(w) > 0 {
		msgs = append(msgs, i2c.Message{Address: addr, Data: w})
	}
	if len(r) > 0 {
		msgs = append(msgs, i2c.Message{
			Address: addr,
			Flags:   i2c.ReadData,
			Data:    r,
		})
	}
	if len(msgs) == 0 {
		return fmt.Errorf("%v: empty transfer", b)
	}
	for _, m := range msgs {
		if len(m.Data) > 0xffff {
			return fmt.Errorf("%v: %d bytes exceeds 16-bit length",
				b, len(m.Data))
		}
	}
	tag := "write"
	if len(r) > 0 {
		tag = "read"
	}
	if err := b.tx.Send(msgs); err != nil {
		return fmt.Errorf("%v: %s: %w", b, tag, err)
	}
	return nil
}
