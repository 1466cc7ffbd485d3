// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Registers contains the state of all RV32 registers.
type Registers struct {
	X  [32]uint32 // general-purpose registers; X[0] is hardwired to zero
	PC uint32     // program counter
}

// Init initializes all registers to their power-on state.
func (r *Registers) Init() {
	*r = Registers{}
}

// SetX stores a value into general-purpose register i. Writes to
// register 0 are discarded.
func (r *Registers) SetX(i int, v uint32) {
	if i != 0 {
		r.X[i] = v
	}
}

// RegisterNames holds the canonical ABI name of each of the 32
// general-purpose registers, indexed by register number.
var RegisterNames = [32]string{
	"zero", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

var registerIndex = func() map[string]int {
	m := make(map[string]int, len(RegisterNames)+1)
	for i, name := range RegisterNames {
		m[name] = i
	}
	m["fp"] = 8 // frame pointer alias for s0
	return m
}()

// RegisterIndex returns the register number for a canonical register
// name ("zero", "ra", "sp", ..., including the "fp" alias for "s0").
// The second return value reports whether the name was recognized.
func RegisterIndex(name string) (int, bool) {
	i, ok := registerIndex[name]
	return i, ok
}
