// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package redis publishes status fields to a redis hash and channel.
package redis

import (
	"fmt"
	"sync"
	"time"

	"github.com/garyburd/redigo/redis"

	"github.com/platinasystems/microctl/external/log"
)

const rdtimeout = 10 * time.Second
const wrtimeout = 500 * time.Millisecond

// Dial connects to the server; tests replace it.
var Dial = func(network, address string) (redis.Conn, error) {
	return redis.Dial(network, address,
		redis.DialConnectTimeout(wrtimeout),
		redis.DialReadTimeout(rdtimeout),
		redis.DialWriteTimeout(wrtimeout))
}

// Publisher sets hash fields and publishes "field: value" on the channel of
// the same name, but only when the value differs from the last published.
// The connection is made on first use and remade after an error.
type Publisher struct {
	sync.Mutex
	network, address, hash string

	conn redis.Conn
	last map[string]string
	errs *log.Limited
}

func New(network, address, hash string) *Publisher {
	return &Publisher{
		network: network,
		address: address,
		hash:    hash,
		last:    make(map[string]string),
		errs:    log.NewLimited(10),
	}
}

func (p *Publisher) String() string {
	return fmt.Sprintf("redis %s://%s %s", p.network, p.address, p.hash)
}

// Update publishes the given field if changed.  Errors are returned and also
// logged, a limited number of times.
func (p *Publisher) Update(field string, v interface{}) error {
	s := vstring(v)
	p.Lock()
	defer p.Unlock()
	if last, found := p.last[field]; found && last == s {
		return nil
	}
	if err := p.update(field, s); err != nil {
		p.errs.Print("daemon", "warn", p, ": ", field, ": ", err)
		return err
	}
	p.errs.Reset()
	p.last[field] = s
	return nil
}

func (p *Publisher) update(field, s string) error {
	if p.conn == nil {
		conn, err := Dial(p.network, p.address)
		if err != nil {
			return err
		}
		p.conn = conn
	}
	p.conn.Send("HSET", p.hash, field, s)
	p.conn.Send("PUBLISH", p.hash, field+": "+s)
	_, err := p.conn.Do("")
	if err != nil {
		p.conn.Close()
		p.conn = nil
	}
	return err
}

func (p *Publisher) Close() error {
	p.Lock()
	defer p.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func vstring(v interface{}) (s string) {
	switch t := v.(type) {
	case []byte:
		s = string(t)
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}
	return
}

type update struct {
	field string
	v     interface{}
}

// Async publishes from its own goroutine so that a slow or missing server
// never holds up the caller.
type Async struct {
	p    *Publisher
	ch   chan update
	done chan struct{}
}

// Go starts publishing through p with up to depth pending updates.
func (p *Publisher) Go(depth int) *Async {
	a := &Async{
		p:    p,
		ch:   make(chan update, depth),
		done: make(chan struct{}),
	}
	go func() {
		defer close(a.done)
		for u := range a.ch {
			p.Update(u.field, u.v)
		}
	}()
	return a
}

// Update queues the field, dropping it if the queue is full.
func (a *Async) Update(field string, v interface{}) {
	select {
	case a.ch <- update{field, v}:
	default:
	}
}

// Close drops what is still queued, waits for the update in progress, then
// closes the connection.
func (a *Async) Close() error {
	close(a.ch)
	for range a.ch {
	}
	<-a.done
	return a.p.Close()
}
