// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package log

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"testing"
)

func TestMain(m *testing.M) {
	cache.pid = 6789
	Exclusive(true)
	os.Exit(m.Run())
}

func TestPrint(t *testing.T) {
	defer expect(`
<15>log.test[6789]: a message with default facility/priority [fac/pri]
<31>log.test[6789]: a message with daemon fac and default pri
<30>log.test[6789]: a message with daemon fac and info pri
<27>log.test[6789]: a message with daemon fac and err pri
<15>log.test[6789]: a multi-
<15>log.test[6789]: line message with default fac/pri
`[1:]).results(t)

	Print("a message with default facility/priority [fac/pri]")
	Print("daemon", "a message with daemon fac and default pri")
	Print("daemon", "info", "a message with daemon fac and info pri")
	Print("err", "daemon", "a message with daemon fac and err pri")
	Print(`
a multi-
line message with default fac/pri`[1:])
}

func TestLimitedPrint(t *testing.T) {
	defer expect(`
<15>log.test[6789]: first message
<15>log.test[6789]: second message
<15>log.test[6789]: third message
<15>log.test[6789]: after reset
`[1:]).results(t)

	l := NewLimited(3)
	l.Print("first message")
	l.Print("second message")
	l.Print("third message")
	l.Print("fourth message should be dropped")
	l.Reset()
	l.Print("after reset")
}

func TestEarlyBounded(t *testing.T) {
	var got []string
	up := false
	saveSink, saveReady := sink, ready
	sink = func(args ...interface{}) { got = append(got, fmt.Sprint(args...)) }
	ready = func() bool { return up }
	Exclusive(false)
	Tee(nil)
	defer func() {
		sink, ready = saveSink, saveReady
		Exclusive(true)
	}()

	for i := 0; i < EarlyMax+5; i++ {
		Print("daemon", "info", "message ", i)
	}
	if len(got) != 0 {
		t.Fatal("wrong: delivered before ready", got)
	}
	if n := len(early.msgs); n != EarlyMax {
		t.Fatal("wrong: held", n)
	}
	up = true
	Print("daemon", "info", "now")
	if len(got) != EarlyMax+2 {
		t.Fatal("wrong: delivered", len(got))
	}
	want := []string{
		"warndropped 5 early messages",
		"daemoninfomessage 5",
	}
	if !reflect.DeepEqual(got[:2], want) {
		t.Error("wrong:", got[:2])
	}
	if got[len(got)-1] != "daemoninfonow" {
		t.Error("wrong:", got[len(got)-1])
	}
	if len(early.msgs) != 0 || early.dropped != 0 {
		t.Error("wrong: not flushed")
	}
}

func expect(s string) want {
	Tee(new(bytes.Buffer))
	return want(s)
}

type want string

func (s want) results(t *testing.T) {
	t.Helper()
	buf := tee.w.(*bytes.Buffer)
	got := buf.String()
	defer buf.Reset()
	if got != string(s) {
		t.Error("got:\n", got, "want:\n", string(s))
	} else if testing.Verbose() {
		os.Stdout.WriteString(got)
	}
}
