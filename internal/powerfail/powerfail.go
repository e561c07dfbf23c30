// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package powerfail watches the board's power-fail input, which asserts
// shortly before main power is lost.
package powerfail

import (
	"fmt"
)

// Pin locates the power-fail input: line Offset of the GPIO chip labeled
// Bank, asserted when it reads ActiveLevel.
type Pin struct {
	Bank        string
	Offset      int
	ActiveLevel int
}

func (p Pin) String() string { return fmt.Sprintf("%s:%d", p.Bank, p.Offset) }

// Line is a requested input line.
type Line interface {
	Value() (int, error)
	Close() error
}

type Backend string

const (
	Cdev  Backend = "cdev"
	Sysfs Backend = "sysfs"
)

// Error is a failure to get or read the power-fail line.
type Error struct {
	Op  string
	Pin Pin
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("power-fail %v: %s: %v", e.Pin, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Monitor struct {
	pin  Pin
	line Line
}

// Open requests the pin as an input tagged with consumer.
func Open(pin Pin, consumer string, backend Backend) (*Monitor, error) {
	var (
		line Line
		err  error
	)
	switch backend {
	case Cdev, "":
		line, err = openCdev(pin, consumer)
	case Sysfs:
		line, err = openSysfs(pin)
	default:
		err = &Error{"open", pin, fmt.Errorf("%q: unknown backend", backend)}
	}
	if err != nil {
		return nil, err
	}
	return NewMonitor(pin, line), nil
}

func NewMonitor(pin Pin, line Line) *Monitor {
	return &Monitor{pin: pin, line: line}
}

// Asserted is true when the line reads the pin's active level.
func (m *Monitor) Asserted() (bool, error) {
	v, err := m.line.Value()
	if err != nil {
		return false, &Error{"read", m.pin, err}
	}
	if v < 0 {
		return false, &Error{"read", m.pin, fmt.Errorf("value %d", v)}
	}
	return v == m.pin.ActiveLevel, nil
}

// Close releases the line and its chip.
func (m *Monitor) Close() error { return m.line.Close() }
