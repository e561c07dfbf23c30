// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package parms parses valued options from command arguments.
package parms

import (
	"errors"
	"strings"
)

var errNotFound = errors.New("not found")

// Parm maps each defined name to its value; a name that wasn't given has
// the empty value.
type Parm map[string]string

// Parses {NAME VALUE} and NAME=VALUE parameters from the given arguments.
// As with flags, a parameter may be defined with a string slice that
// includes aliases of the first entry, e.g.
//
//	parm, args := parms.New([]string{"--sleep=5"},
//		[]string{"-s", "--sleep"})
//
// results in
//
//	parm["-s"] == "5"
//	args == []string{}
//
// Parsing stops at "--", which is left in the list.
func New(args []string, parms ...interface{}) (Parm, []string) {
	parm := make(Parm)
	aliases := make(map[string]string)
	for _, v := range parms {
		switch t := v.(type) {
		case string:
			parm[t] = ""
		case []string:
			parm[t[0]] = ""
			for _, aka := range t[1:] {
				aliases[aka] = t[0]
			}
		}
	}
	name := func(s string) string {
		if k, found := aliases[s]; found {
			return k
		}
		return s
	}
	for i := 0; i < len(args); {
		if args[i] == "--" {
			break
		}
		if eq := strings.Index(args[i], "="); eq > 0 &&
			parm.Set(name(args[i][:eq]), args[i][eq+1:]) == nil {
			args = append(args[:i], args[i+1:]...)
		} else if i < len(args)-1 &&
			parm.Set(name(args[i]), args[i+1]) == nil {
			args = append(args[:i], args[i+2:]...)
		} else {
			i++
		}
	}
	return parm, args
}

// Set will concatenate a non empty parm
func (parm Parm) Set(name, value string) error {
	cur, found := parm[name]
	if !found {
		return errNotFound
	}
	if len(cur) > 0 && len(value) > 0 {
		parm[name] = cur + " " + value
	} else {
		parm[name] = value
	}
	return nil
}
