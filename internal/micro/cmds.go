// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package micro

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// MaxSleepSeconds keeps seconds * 1000 within 32 bits.
const MaxSleepSeconds = math.MaxUint32 / 1000

// SleepTickMs is the micro's sleep counter resolution.
const SleepTickMs = 10

// EncodeSleep returns the Cmd record that powers everything off for the
// given seconds: a little-endian count of 10ms ticks, rounded up, followed
// by CmdSleep.
func EncodeSleep(seconds uint32) ([5]byte, error) {
	var buf [5]byte
	if seconds > MaxSleepSeconds {
		return buf, fmt.Errorf("sleep %d: must be between 0 and %d seconds",
			seconds, MaxSleepSeconds)
	}
	ms := seconds * 1000
	ticks := ms / SleepTickMs
	if ms%SleepTickMs != 0 {
		ticks++
	}
	binary.LittleEndian.PutUint32(buf[:4], ticks)
	buf[4] = CmdSleep
	return buf, nil
}

// Sleep turns off power to everything for the given seconds.  Nothing is
// written if seconds is out of range.
func (d *Dev) Sleep(seconds uint32) error {
	buf, err := EncodeSleep(seconds)
	if err != nil {
		return err
	}
	return d.WriteBuf(Cmd, buf[:])
}

// SetChargeCurrent writes both the persistent and the current supercap
// charge rate.  The caller checks the board's bounds.
func (d *Dev) SetChargeCurrent(ma uint16) error {
	if err := d.Write16Swap(ChargeCurrentDefault, ma); err != nil {
		return err
	}
	return d.Write16Swap(ChargeCurrent, ma)
}

// EnableSupercaps sets or clears supercap charging.  The met-minimum bit is
// cleared along with the enable bit.
func (d *Dev) EnableSupercaps(en bool) error {
	s, err := d.Status()
	if err != nil {
		return err
	}
	s &^= ScapsEnable | ScapsMetMin
	if en {
		s |= ScapsEnable
	}
	return d.Write8(StatusFlags, uint8(s))
}

// Build returns the micro's build string up to its first NUL.
func (d *Dev) Build() (string, error) {
	buf, err := d.ReadBuf(BuildString, BuildStringLen)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf), nil
}
