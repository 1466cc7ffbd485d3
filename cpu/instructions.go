// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// A Format identifies the encoding layout of an instruction.
type Format byte

// Instruction encoding formats.
const (
	FormatR Format = iota // register-register ALU
	FormatI               // register-immediate, loads, jalr
	FormatS               // stores
	FormatB               // conditional branches
	FormatJ               // jal
	FormatU               // lui, auipc
)

// Base opcodes (bits 6:0) for each instruction group.
const (
	OpcodeLUI    = 0x37
	OpcodeAUIPC  = 0x17
	OpcodeJAL    = 0x6f
	OpcodeJALR   = 0x67
	OpcodeBranch = 0x63
	OpcodeLoad   = 0x03
	OpcodeStore  = 0x23
	OpcodeOpImm  = 0x13
	OpcodeOp     = 0x33
)

// HaltWord is the encoding of "beq zero, zero, 0", the self-branch
// that terminates every program.
const HaltWord uint32 = 0x00000063

type instfunc func(c *CPU, word uint32)

// An Instruction describes one instruction of the supported RV32I
// subset: its name, encoding format, and the fixed field values that
// identify it in a machine word.
type Instruction struct {
	Name   string // lowercase mnemonic
	Format Format // encoding format
	Opcode uint32 // opcode field, bits 6:0
	Funct3 uint32 // funct3 field, bits 14:12 (R, I, S, B only)
	Funct7 uint32 // funct7 field, bits 31:25 (R only)
	fn     instfunc
}

// The complete instruction set. Built once; never mutated.
var instructions = []Instruction{
	{Name: "lui", Format: FormatU, Opcode: OpcodeLUI, fn: (*CPU).lui},
	{Name: "auipc", Format: FormatU, Opcode: OpcodeAUIPC, fn: (*CPU).auipc},
	{Name: "jal", Format: FormatJ, Opcode: OpcodeJAL, fn: (*CPU).jal},
	{Name: "jalr", Format: FormatI, Opcode: OpcodeJALR, Funct3: 0, fn: (*CPU).jalr},
	{Name: "beq", Format: FormatB, Opcode: OpcodeBranch, Funct3: 0, fn: (*CPU).beq},
	{Name: "bne", Format: FormatB, Opcode: OpcodeBranch, Funct3: 1, fn: (*CPU).bne},
	{Name: "blt", Format: FormatB, Opcode: OpcodeBranch, Funct3: 4, fn: (*CPU).blt},
	{Name: "bge", Format: FormatB, Opcode: OpcodeBranch, Funct3: 5, fn: (*CPU).bge},
	{Name: "bltu", Format: FormatB, Opcode: OpcodeBranch, Funct3: 6, fn: (*CPU).bltu},
	{Name: "bgeu", Format: FormatB, Opcode: OpcodeBranch, Funct3: 7, fn: (*CPU).bgeu},
	{Name: "lw", Format: FormatI, Opcode: OpcodeLoad, Funct3: 2, fn: (*CPU).lw},
	{Name: "sw", Format: FormatS, Opcode: OpcodeStore, Funct3: 2, fn: (*CPU).sw},
	{Name: "addi", Format: FormatI, Opcode: OpcodeOpImm, Funct3: 0, fn: (*CPU).addi},
	{Name: "sltiu", Format: FormatI, Opcode: OpcodeOpImm, Funct3: 3, fn: (*CPU).sltiu},
	{Name: "add", Format: FormatR, Opcode: OpcodeOp, Funct3: 0, Funct7: 0x00, fn: (*CPU).add},
	{Name: "sub", Format: FormatR, Opcode: OpcodeOp, Funct3: 0, Funct7: 0x20, fn: (*CPU).sub},
	{Name: "sll", Format: FormatR, Opcode: OpcodeOp, Funct3: 1, Funct7: 0x00, fn: (*CPU).sll},
	{Name: "slt", Format: FormatR, Opcode: OpcodeOp, Funct3: 2, Funct7: 0x00, fn: (*CPU).slt},
	{Name: "sltu", Format: FormatR, Opcode: OpcodeOp, Funct3: 3, Funct7: 0x00, fn: (*CPU).sltu},
	{Name: "xor", Format: FormatR, Opcode: OpcodeOp, Funct3: 4, Funct7: 0x00, fn: (*CPU).xor},
	{Name: "srl", Format: FormatR, Opcode: OpcodeOp, Funct3: 5, Funct7: 0x00, fn: (*CPU).srl},
	{Name: "or", Format: FormatR, Opcode: OpcodeOp, Funct3: 6, Funct7: 0x00, fn: (*CPU).or},
	{Name: "and", Format: FormatR, Opcode: OpcodeOp, Funct3: 7, Funct7: 0x00, fn: (*CPU).and},
}

// An InstructionSet indexes the instruction table by mnemonic (for the
// assembler) and by field signature (for the emulator and the
// disassembler).
type InstructionSet struct {
	byName map[string]*Instruction
	bySig  map[uint32]*Instruction
}

// The signature key packs the fields that uniquely identify an
// instruction: opcode, plus funct3 and funct7 where the format has
// them.
func sigKey(f Format, opcode, funct3, funct7 uint32) uint32 {
	switch f {
	case FormatU, FormatJ:
		return opcode
	case FormatR:
		return opcode | funct3<<7 | funct7<<10
	default:
		return opcode | funct3<<7
	}
}

func newInstructionSet() *InstructionSet {
	set := &InstructionSet{
		byName: make(map[string]*Instruction, len(instructions)),
		bySig:  make(map[uint32]*Instruction, len(instructions)),
	}
	for i := range instructions {
		inst := &instructions[i]
		set.byName[inst.Name] = inst
		set.bySig[sigKey(inst.Format, inst.Opcode, inst.Funct3, inst.Funct7)] = inst
	}
	return set
}

var instSet = newInstructionSet()

// Lookup retrieves the instruction with the requested mnemonic, or nil
// if the mnemonic is not part of the instruction set.
func Lookup(name string) *Instruction {
	return instSet.byName[name]
}

// Decode retrieves the instruction encoded by the machine word, or nil
// if the word does not encode any instruction in the set.
func Decode(word uint32) *Instruction {
	opcode := word & 0x7f
	funct3 := (word >> 12) & 0x7
	funct7 := (word >> 25) & 0x7f

	switch opcode {
	case OpcodeLUI, OpcodeAUIPC, OpcodeJAL:
		return instSet.bySig[opcode]
	case OpcodeOp:
		return instSet.bySig[opcode|funct3<<7|funct7<<10]
	default:
		return instSet.bySig[opcode|funct3<<7]
	}
}

//
// Field extraction helpers. Immediates are returned sign-extended and,
// for B and J, already scaled to byte offsets.
//

// DecodeR extracts R-format fields: rd, rs1, rs2.
func DecodeR(word uint32) (rd, rs1, rs2 int) {
	rd = int((word >> 7) & 0x1f)
	rs1 = int((word >> 15) & 0x1f)
	rs2 = int((word >> 20) & 0x1f)
	return
}

// DecodeI extracts I-format fields: rd, rs1, and the sign-extended
// 12-bit immediate.
func DecodeI(word uint32) (rd, rs1 int, imm int32) {
	rd = int((word >> 7) & 0x1f)
	rs1 = int((word >> 15) & 0x1f)
	imm = int32(word) >> 20
	return
}

// DecodeS extracts S-format fields: rs1, rs2, and the sign-extended
// 12-bit immediate.
func DecodeS(word uint32) (rs1, rs2 int, imm int32) {
	rs1 = int((word >> 15) & 0x1f)
	rs2 = int((word >> 20) & 0x1f)
	raw := (word>>7)&0x1f | (word>>25)<<5
	imm = int32(raw<<20) >> 20
	return
}

// DecodeB extracts B-format fields: rs1, rs2, and the sign-extended
// 13-bit branch offset.
func DecodeB(word uint32) (rs1, rs2 int, imm int32) {
	rs1 = int((word >> 15) & 0x1f)
	rs2 = int((word >> 20) & 0x1f)
	raw := (word>>31)<<12 |
		(word>>25&0x3f)<<5 |
		(word>>8&0xf)<<1 |
		(word>>7&0x1)<<11
	imm = int32(raw<<19) >> 19
	return
}

// DecodeJ extracts J-format fields: rd and the sign-extended 21-bit
// jump offset.
func DecodeJ(word uint32) (rd int, imm int32) {
	rd = int((word >> 7) & 0x1f)
	raw := (word>>31)<<20 |
		(word>>21&0x3ff)<<1 |
		(word>>20&0x1)<<11 |
		(word>>12&0xff)<<12
	imm = int32(raw<<11) >> 11
	return
}

// DecodeU extracts U-format fields: rd and the upper immediate, already
// positioned in bits 31:12.
func DecodeU(word uint32) (rd int, imm uint32) {
	rd = int((word >> 7) & 0x1f)
	imm = word & 0xfffff000
	return
}
