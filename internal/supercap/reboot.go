// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package supercap

import (
	"fmt"
	"os/exec"
	"strings"
)

// DefaultReboot lets init take the system down cleanly.
var DefaultReboot = []string{"/sbin/reboot"}

// RebootCommand returns a reboot function running argv.
func RebootCommand(argv ...string) func() error {
	return func() error {
		if len(argv) == 0 {
			return fmt.Errorf("reboot: no command")
		}
		out, err := exec.Command(argv[0], argv[1:]...).CombinedOutput()
		if err != nil {
			return fmt.Errorf("%s: %v: %s", strings.Join(argv, " "), err,
				strings.TrimSpace(string(out)))
		}
		return nil
	}
}
