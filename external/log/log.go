// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package log sends messages through github.com/platinasystems/log once
// /dev/log or /dev/kmsg exists, holding a bounded number until then, and
// optionally tees them to a writer.
package log

import (
	"fmt"
	"io"
	"log/syslog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	plog "github.com/platinasystems/log"
)

// EarlyMax is the number of messages held while there is nowhere to log
// them; the oldest are dropped beyond that.
const EarlyMax = 256

var (
	tee   teeT
	early earlyT

	// sink delivers a message; ready is true once it has somewhere to go.
	sink  = plog.Print
	ready = func() bool { return exists(plog.DevLog) || exists(plog.DevKmsg) }
)

func exists(fn string) bool {
	_, err := os.Stat(fn)
	return err == nil
}

type teeT struct {
	sync.Mutex
	w io.Writer

	exclusive bool
}

type earlyT struct {
	sync.Mutex
	msgs    [][]interface{}
	dropped int
}

// Tee logged lines to Writer.  A nil Writer stops the tee.
func Tee(w io.Writer) {
	tee.Lock()
	defer tee.Unlock()
	tee.w = w
}

// Exclusive sends lines only to the Tee writer, if any.
func Exclusive(t bool) {
	tee.Lock()
	defer tee.Unlock()
	tee.exclusive = t
}

// The default level is: Debug, User. Upto the first two arguments may change
// this by name; e.g.
//
//	Print("daemon", ...)
//	Print("daemon", "err", ...)
//	Print("err", ...)
func Print(args ...interface{}) {
	if tee.print(args...) {
		return
	}
	if !ready() {
		early.hold(args)
		return
	}
	early.flush()
	sink(args...)
}

var cache struct {
	once sync.Once
	id   string
	pid  int
}

func id() string {
	cache.once.Do(func() {
		if cache.pid == 0 {
			cache.pid = os.Getpid()
		}
		cache.id = fmt.Sprintf("%s[%d]", filepath.Base(os.Args[0]),
			cache.pid)
	})
	return cache.id
}

func logArgs(args ...interface{}) (pri, fac syslog.Priority, a []interface{}) {
	pri = syslog.LOG_DEBUG
	fac = syslog.LOG_USER
	a = args
	for i := 0; len(a) > 0 && i < 2; i++ {
		s, ok := a[0].(string)
		if !ok {
			break
		}
		if v, found := plog.PriorityByName[s]; found {
			pri = v
			a = a[1:]
			continue
		}
		if v, found := plog.FacilityByName[s]; found {
			fac = v
			a = a[1:]
		}
	}
	return
}

// print to the tee and return true if that's the only place to log.
func (p *teeT) print(args ...interface{}) bool {
	p.Lock()
	defer p.Unlock()
	if p.w == nil {
		return p.exclusive
	}
	pri, fac, a := logArgs(args...)
	for _, s := range strings.Split(fmt.Sprint(a...), "\n") {
		fmt.Fprintf(p.w, "<%d>%s: %s\n", pri|fac, id(), s)
	}
	return p.exclusive
}

func (p *earlyT) hold(args []interface{}) {
	p.Lock()
	defer p.Unlock()
	if len(p.msgs) == EarlyMax {
		copy(p.msgs, p.msgs[1:])
		p.msgs = p.msgs[:EarlyMax-1]
		p.dropped++
	}
	p.msgs = append(p.msgs, args)
}

func (p *earlyT) flush() {
	p.Lock()
	defer p.Unlock()
	if p.dropped > 0 {
		sink("warn", "dropped ", p.dropped, " early messages")
		p.dropped = 0
	}
	for _, args := range p.msgs {
		sink(args...)
	}
	p.msgs = nil
}

// Limited passes at most N messages until Reset.
type Limited struct {
	sync.Mutex
	i, N uint32
}

// NewLimited returns a logger with the given iteration restriction.
func NewLimited(n uint32) *Limited { return &Limited{N: n} }

func (l *Limited) Print(args ...interface{}) {
	l.Lock()
	defer l.Unlock()
	if l.i < l.N {
		l.i++
		Print(args...)
	}
}

// Reset allows another N messages.
func (l *Limited) Reset() {
	l.Lock()
	defer l.Unlock()
	l.i = 0
}
