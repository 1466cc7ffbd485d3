// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements an RV32I subset instruction set
// disassembler.
package disasm

import (
	"fmt"

	"github.com/gorv32/gorv32/cpu"
)

// Disassemble the machine code in memory 'm' at address 'addr'. Return
// a 'line' string representing the disassembled instruction in
// assembler source syntax and a 'next' address that starts the
// following line of machine code. Branch and jump offsets are rendered
// relative to the instruction, the way the assembler accepts them.
func Disassemble(m cpu.Memory, addr uint32) (line string, next uint32) {
	word := m.LoadWord(addr)
	next = addr + 4

	inst := cpu.Decode(word)
	if inst == nil {
		return "???", next
	}

	switch inst.Format {
	case cpu.FormatR:
		rd, rs1, rs2 := cpu.DecodeR(word)
		line = fmt.Sprintf("%s %s, %s, %s", inst.Name,
			cpu.RegisterNames[rd], cpu.RegisterNames[rs1], cpu.RegisterNames[rs2])

	case cpu.FormatI:
		rd, rs1, imm := cpu.DecodeI(word)
		if inst.Opcode == cpu.OpcodeLoad {
			line = fmt.Sprintf("%s %s, %d(%s)", inst.Name,
				cpu.RegisterNames[rd], imm, cpu.RegisterNames[rs1])
		} else {
			line = fmt.Sprintf("%s %s, %s, %d", inst.Name,
				cpu.RegisterNames[rd], cpu.RegisterNames[rs1], imm)
		}

	case cpu.FormatS:
		rs1, rs2, imm := cpu.DecodeS(word)
		line = fmt.Sprintf("%s %s, %d(%s)", inst.Name,
			cpu.RegisterNames[rs2], imm, cpu.RegisterNames[rs1])

	case cpu.FormatB:
		rs1, rs2, imm := cpu.DecodeB(word)
		line = fmt.Sprintf("%s %s, %s, %d", inst.Name,
			cpu.RegisterNames[rs1], cpu.RegisterNames[rs2], imm)

	case cpu.FormatJ:
		rd, imm := cpu.DecodeJ(word)
		line = fmt.Sprintf("%s %s, %d", inst.Name, cpu.RegisterNames[rd], imm)

	case cpu.FormatU:
		rd, imm := cpu.DecodeU(word)
		line = fmt.Sprintf("%s %s, %d", inst.Name,
			cpu.RegisterNames[rd], int32(imm)>>12)
	}

	return line, next
}

// GetRegisterString returns a string describing the contents of the
// registers most useful when stepping code: the argument and temporary
// registers plus the stack pointer and return address.
func GetRegisterString(r *cpu.Registers) string {
	return fmt.Sprintf("a0=%08X a1=%08X a2=%08X t0=%08X ra=%08X sp=%08X",
		r.X[10], r.X[11], r.X[12], r.X[5], r.X[1], r.X[2])
}
