// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package powerfail

import (
	"errors"

	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/multierr"
)

type cdevLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func (l *cdevLine) Value() (int, error) { return l.line.Value() }

func (l *cdevLine) Close() error {
	return multierr.Append(l.line.Close(), l.chip.Close())
}

func openCdev(pin Pin, consumer string) (Line, error) {
	chip, err := chipByLabel(pin.Bank)
	if err != nil {
		return nil, &Error{"open chip", pin, err}
	}
	line, err := chip.RequestLine(pin.Offset,
		gpiocdev.AsInput,
		gpiocdev.WithConsumer(consumer))
	if err != nil {
		chip.Close()
		return nil, &Error{"request input", pin, err}
	}
	return &cdevLine{chip: chip, line: line}, nil
}

var errNoChip = errors.New("no chip with that label")

func chipByLabel(label string) (*gpiocdev.Chip, error) {
	for _, name := range gpiocdev.Chips() {
		c, err := gpiocdev.NewChip(name)
		if err != nil {
			continue
		}
		if c.Label == label {
			return c, nil
		}
		c.Close()
	}
	return nil, errNoChip
}
