// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"io"
	"strings"
	"testing"

	"github.com/gorv32/gorv32/asm"
	"github.com/gorv32/gorv32/cpu"
)

func TestDisassemble(t *testing.T) {
	cases := []struct {
		word uint32
		line string
	}{
		{0x00500513, "addi a0, zero, 5"},
		{0xFFF50513, "addi a0, a0, -1"},
		{0x06453593, "sltiu a1, a0, 100"},
		{0x000280E7, "jalr ra, t0, 0"},
		{0x00B50633, "add a2, a0, a1"},
		{0x40B50633, "sub a2, a0, a1"},
		{0xFFC12503, "lw a0, -4(sp)"},
		{0x00A12423, "sw a0, 8(sp)"},
		{0x00B50463, "beq a0, a1, 8"},
		{0xFE000EE3, "beq zero, zero, -4"},
		{0x00C000EF, "jal ra, 12"},
		{0xFFDFF06F, "jal zero, -4"},
		{0x00001537, "lui a0, 1"},
		{0x00001517, "auipc a0, 1"},
		{0xFFFFF537, "lui a0, -1"},
		{0x00000063, "beq zero, zero, 0"},
		{0xFFFFFFFF, "???"},
	}

	mem := cpu.NewFlatMemory()
	for _, c := range cases {
		mem.StoreWord(0, c.word)
		line, next := Disassemble(mem, 0)
		if line != c.line {
			t.Errorf("%08X: got '%s', expected '%s'", c.word, line, c.line)
		}
		if next != 4 {
			t.Errorf("%08X: got next %d, expected 4", c.word, next)
		}
	}
}

// Disassembled output uses assembler source syntax, so feeding a line
// back through the assembler must reproduce the original word.
func TestRoundTrip(t *testing.T) {
	words := []uint32{
		0x00500513, 0xFFF50513, 0x06453593, 0x000280E7, 0x00B50633,
		0x40B50633, 0x00B51633, 0x00B54633, 0x00B57633, 0xFFC12503,
		0x00A12423, 0xFEA12E23, 0x00B50463, 0xFE051EE3, 0x00C000EF,
		0xFFDFF06F, 0x00001537, 0x00001517, 0xFFFFF537,
	}

	mem := cpu.NewFlatMemory()
	for _, word := range words {
		mem.StoreWord(0, word)
		line, _ := Disassemble(mem, 0)

		src := line + "\nbeq zero, zero, 0"
		assembly, err := asm.Assemble(strings.NewReader(src), io.Discard, 0)
		if err != nil {
			t.Errorf("%08X: reassembly of '%s' failed: %v", word, line, err)
			continue
		}
		if assembly.Code[0] != word {
			t.Errorf("'%s': got %08X, expected %08X", line, assembly.Code[0], word)
		}
	}
}
