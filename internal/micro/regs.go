// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package micro

// Register offsets in the supervisory microcontroller's address space.
const (
	ADC0 uint16 = 2 * iota
	ADC1
	ADC2
	ADC3
	ADC4
	ADC5
	ADC6
	ADC7
	ADC8
	ADC9
	ADC10
	StatusFlags
	ChargeCurrentDefault
	ChargeCurrent
)

const (
	Cmd         uint16 = 1024
	Revision    uint16 = 2048
	BuildString uint16 = 4096
)

// BuildStringLen is the size of the NUL padded build string region.
const BuildStringLen = 80

// Command codes written as the last byte of a Cmd record.
const (
	CmdSleep uint8 = 1 << 1
)

// Status is the StatusFlags register.
type Status uint8

const (
	PowerFail Status = 1 << iota
	ScapsEnable
	ScapsMetMin
	ScapsCharging
	UsbPresent
)

func (s Status) PowerFail() bool     { return s&PowerFail != 0 }
func (s Status) ScapsEnabled() bool  { return s&ScapsEnable != 0 }
func (s Status) ScapsMetMin() bool   { return s&ScapsMetMin != 0 }
func (s Status) ScapsCharging() bool { return s&ScapsCharging != 0 }
func (s Status) UsbPresent() bool    { return s&UsbPresent != 0 }
