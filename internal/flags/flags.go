// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package flags parses boolean options from command arguments.
package flags

type Flags struct {
	ByName  ByName
	aliases Aliases
}

type ByName map[string]bool
type Aliases map[string]string

// Define and parse boolean flags from command arguments.
//
// If an argument has a leading hyphen ('-') followed by runes that all match
// '-?' flags, the respective flags are set and the argument is removed from
// the returned list, e.g.
//
//	flag, args := flags.New([]string{"-ei"}, "-e", "-d", "-i")
//
// results in
//
//	flag.ByName["-e"] == true
//	flag.ByName["-d"] == false
//	flag.ByName["-i"] == true
//	args == []string{}
//
// An argument with any rune that isn't a flag is left in the list.
//
// Flags may be defined with string slices that include aliases of the first
// entry, e.g.
//
//	flag, args := flags.New([]string{"--info"}, "-e",
//		[]string{"-i", "--info"})
//
// results in
//
//	flag.ByName["-i"] == true
//	args == []string{}
//
// Parsing stops at "--", which is left in the list.
func New(args []string, flags ...interface{}) (*Flags, []string) {
	p := &Flags{
		ByName:  make(ByName),
		aliases: make(Aliases),
	}
	for _, flag := range flags {
		switch t := flag.(type) {
		case string:
			p.ByName[t] = false
		case []string:
			p.ByName[t[0]] = false
			for _, aka := range t[1:] {
				p.aliases[aka] = t[0]
			}
		}
	}
	return p, p.Parse(args)
}

// Parse predefined flags from command arguments.
func (p *Flags) Parse(args []string) []string {
	for i := 0; i < len(args); {
		arg := args[i]
		if arg == "--" {
			break
		}
		var set []string
		if k, found := p.aliases[arg]; found {
			set = []string{k}
		} else if _, found := p.ByName[arg]; found {
			set = []string{arg}
		} else if len(arg) > 1 && arg[0] == '-' && arg[1] != '-' {
			for _, c := range arg[1:] {
				s := string([]rune{'-', c})
				if _, found := p.ByName[s]; !found {
					set = nil
					break
				}
				set = append(set, s)
			}
		}
		if len(set) == 0 {
			i++
			continue
		}
		for _, s := range set {
			p.ByName[s] = true
		}
		args = append(args[:i], args[i+1:]...)
	}
	return args
}
