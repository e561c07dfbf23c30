// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// microctl manages the embeddedTS supervisory microcontroller: supercap
// charging and the power-fail monitor, board information, charge current
// and the power-off sleep.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/platinasystems/microctl/cmd/microctl"
	"github.com/platinasystems/microctl/external/log"
)

func main() {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Tee(os.Stderr)
	}
	if err := new(microctl.Command).Main(os.Args[1:]...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
