// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "encoding/binary"

// The Memory interface presents an interface to the CPU through which
// all memory accesses occur. Words are little-endian.
type Memory interface {
	// LoadByte loads a single byte from the address and returns it.
	LoadByte(addr uint32) byte

	// LoadWord loads a little-endian 32-bit word from the address and
	// returns it.
	LoadWord(addr uint32) uint32

	// LoadBytes loads multiple bytes from the address and stores them
	// into the buffer 'b'.
	LoadBytes(addr uint32, b []byte)

	// StoreByte stores a byte to the requested address.
	StoreByte(addr uint32, v byte)

	// StoreWord stores a little-endian 32-bit word to the requested
	// address.
	StoreWord(addr uint32, v uint32)

	// StoreBytes stores multiple bytes to the requested address.
	StoreBytes(addr uint32, b []byte)
}

// FlatMemory represents the emulated address space as a singular 64K
// buffer. Addresses wrap at the buffer size.
type FlatMemory struct {
	b [64 * 1024]byte
}

// NewFlatMemory creates a new flat 64K memory space.
func NewFlatMemory() *FlatMemory {
	return &FlatMemory{}
}

func (m *FlatMemory) mask(addr uint32) uint32 {
	return addr & uint32(len(m.b)-1)
}

// LoadByte loads a single byte from the address and returns it.
func (m *FlatMemory) LoadByte(addr uint32) byte {
	return m.b[m.mask(addr)]
}

// LoadWord loads a little-endian 32-bit word from the address and
// returns it.
func (m *FlatMemory) LoadWord(addr uint32) uint32 {
	var b [4]byte
	m.LoadBytes(addr, b[:])
	return binary.LittleEndian.Uint32(b[:])
}

// LoadBytes loads multiple bytes from the address and stores them into
// the buffer 'b'.
func (m *FlatMemory) LoadBytes(addr uint32, b []byte) {
	for i := range b {
		b[i] = m.b[m.mask(addr+uint32(i))]
	}
}

// StoreByte stores a byte at the requested address.
func (m *FlatMemory) StoreByte(addr uint32, v byte) {
	m.b[m.mask(addr)] = v
}

// StoreWord stores a little-endian 32-bit word at the requested
// address.
func (m *FlatMemory) StoreWord(addr uint32, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	m.StoreBytes(addr, b[:])
}

// StoreBytes stores multiple bytes at the requested address.
func (m *FlatMemory) StoreBytes(addr uint32, b []byte) {
	for i := range b {
		m.b[m.mask(addr+uint32(i))] = b[i]
	}
}
