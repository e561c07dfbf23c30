// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package supercap

import "github.com/platinasystems/microctl/internal/micro"

// Supercap voltage at empty and full charge.
const (
	MinChargeMV = 3680
	MaxChargeMV = 4800
)

// VoltageReg holds the supercap millivolts.
const VoltageReg = micro.ADC8

// RemainingPct linearly maps mv onto 0-100% remaining charge, truncating.
func RemainingPct(mv uint16) uint8 {
	if mv <= MinChargeMV {
		return 0
	}
	n := uint32(mv) - MinChargeMV
	span := uint32(MaxChargeMV - MinChargeMV)
	if n >= span {
		return 100
	}
	return uint8(n * 100 / span)
}

// ReadRemainingPct samples the supercap voltage.
func ReadRemainingPct(dev *micro.Dev) (uint8, error) {
	mv, err := dev.Read16Swap(VoltageReg)
	if err != nil {
		return 0, err
	}
	return RemainingPct(mv), nil
}
