// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package board

import (
	"fmt"
	"io"

	"github.com/platinasystems/microctl/internal/micro"
)

// Telemetry prints a board's additional ADC channels as NAME=VALUE lines.
type Telemetry interface {
	Print(w io.Writer, dev *micro.Dev) error
}

// adc is a channel scaled by mul/div, truncated to 16 bits; div of 0 is raw.
type adc struct {
	name     string
	reg      uint16
	mul, div uint64
}

func printADCs(w io.Writer, dev *micro.Dev, adcs []adc) error {
	for _, a := range adcs {
		v, err := dev.Read16Swap(a.reg)
		if err != nil {
			return err
		}
		if a.div != 0 {
			v = uint16(uint64(v) * a.mul / a.div)
		}
		fmt.Fprintf(w, "%s=%d\n", a.name, v)
	}
	return nil
}

type ts7100 struct{}

func (ts7100) Print(w io.Writer, dev *micro.Dev) error {
	return printADCs(w, dev, []adc{
		{name: "adc_5v_a_mv", reg: micro.ADC0},
		{name: "an_sup_chrg", reg: micro.ADC1},
		{name: "adc_3p3v_mv", reg: micro.ADC2},
		{name: "adc_8v_48v_mv", reg: micro.ADC3},
		{name: "adc_an_sup_cap_1_mv", reg: micro.ADC7},
		{name: "adc_an_sup_cap_2_mv", reg: micro.ADC8},
	})
}

type ts7180 struct{}

// The divisors simplify (2500/1023) * ((R1 + R2)/R2) for each divider.
func (ts7180) Print(w io.Writer, dev *micro.Dev) error {
	return printADCs(w, dev, []adc{
		{"adc_5v_a_mv", micro.ADC0, 1197500, 215853},
		{"adc_an_chrg_mv", micro.ADC1, 867500, 150381},
		{"adc_3p3v_mv", micro.ADC2, 5000, 1023},
		{"adc_vin_mv", micro.ADC3, 5042500, 109461},
		{name: "adc_an_sup_cap_1_mv", reg: micro.ADC7},
		{name: "adc_an_sup_cap_2_mv", reg: micro.ADC8},
	})
}
