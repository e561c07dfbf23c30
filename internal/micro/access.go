// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package micro

import "encoding/binary"

func Swap16(v uint16) uint16 { return v<<8 | v>>8 }

func Swap32(v uint32) uint32 {
	return v>>24&0x000000ff | v>>8&0x0000ff00 |
		v<<8&0x00ff0000 | v<<24&0xff000000
}

func (d *Dev) ReadBuf(reg uint16, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := d.Read(reg, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *Dev) WriteBuf(reg uint16, p []byte) error { return d.Write(reg, p) }

func (d *Dev) Read8(reg uint16) (uint8, error) {
	var b [1]byte
	err := d.Read(reg, b[:])
	return b[0], err
}

func (d *Dev) Write8(reg uint16, v uint8) error {
	return d.Write(reg, []byte{v})
}

// The host is little-endian; the raw value of a 16 or 32-bit register is its
// wire bytes read little-endian, and the swap turns that into the micro's
// big-endian value.

func (d *Dev) Read16Swap(reg uint16) (uint16, error) {
	var b [2]byte
	if err := d.Read(reg, b[:]); err != nil {
		return 0, err
	}
	return Swap16(binary.LittleEndian.Uint16(b[:])), nil
}

func (d *Dev) Write16Swap(reg uint16, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], Swap16(v))
	return d.Write(reg, b[:])
}

func (d *Dev) Read32Swap(reg uint16) (uint32, error) {
	var b [4]byte
	if err := d.Read(reg, b[:]); err != nil {
		return 0, err
	}
	return Swap32(binary.LittleEndian.Uint32(b[:])), nil
}

func (d *Dev) Write32Swap(reg uint16, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], Swap32(v))
	return d.Write(reg, b[:])
}

func (d *Dev) Status() (Status, error) {
	v, err := d.Read8(StatusFlags)
	return Status(v), err
}
