// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements the RV32I subset instruction set and an
// emulator for it. The emulator executes the machine words produced by
// the asm package, detecting the virtual-halt idiom (an unconditional
// branch to itself) as end of program.
package cpu

// CPU represents a single emulated RV32 hart. It contains a reference
// to the memory associated with the CPU.
type CPU struct {
	Reg    Registers // CPU registers
	Mem    Memory    // assigned memory
	Cycles uint64    // total executed instructions
	LastPC uint32    // address of the last executed instruction
	Halted bool      // the virtual halt has been reached

	debugger  *Debugger
	storeWord func(c *CPU, addr uint32, v uint32)
}

// New creates an emulated RV32 CPU bound to the specified memory.
func New(m Memory) *CPU {
	c := &CPU{
		Mem:       m,
		storeWord: (*CPU).storeWordNormal,
	}
	c.Reg.Init()
	return c
}

// SetPC updates the CPU program counter to 'addr'.
func (c *CPU) SetPC(addr uint32) {
	c.Reg.PC = addr
}

// GetInstruction returns the instruction at the requested address, or
// nil if the word there does not decode.
func (c *CPU) GetInstruction(addr uint32) *Instruction {
	return Decode(c.Mem.LoadWord(addr))
}

// AttachDebugger attaches a debugger to the CPU. The debugger receives
// notifications whenever the CPU executes an instruction or stores a
// word to memory.
func (c *CPU) AttachDebugger(debugger *Debugger) {
	c.debugger = debugger
	c.storeWord = (*CPU).storeWordDebugger
}

// DetachDebugger detaches the current debugger from the CPU.
func (c *CPU) DetachDebugger() {
	c.debugger = nil
	c.storeWord = (*CPU).storeWordNormal
}

// Step executes the instruction at the current PC. Once the CPU has
// halted, Step does nothing.
func (c *CPU) Step() {
	if c.Halted {
		return
	}

	word := c.Mem.LoadWord(c.Reg.PC)

	// The virtual halt is a branch to itself; the PC must not advance.
	if word == HaltWord {
		c.Halted = true
		return
	}

	inst := Decode(word)
	if inst == nil {
		// Undecodable memory halts the CPU.
		c.Halted = true
		return
	}

	// Advance the PC, then execute. Branch and jump implementations
	// compute their targets from LastPC.
	c.LastPC = c.Reg.PC
	c.Reg.PC += 4
	inst.fn(c, word)
	c.Cycles++

	if c.debugger != nil {
		c.debugger.onUpdatePC(c, c.Reg.PC)
	}
}

func (c *CPU) storeWordNormal(addr uint32, v uint32) {
	c.Mem.StoreWord(addr, v)
}

func (c *CPU) storeWordDebugger(addr uint32, v uint32) {
	c.debugger.onDataStore(c, addr, v)
	c.Mem.StoreWord(addr, v)
}

func (c *CPU) branch(word uint32, taken bool) {
	if taken {
		_, _, imm := DecodeB(word)
		c.Reg.PC = c.LastPC + uint32(imm)
	}
}

func (c *CPU) lui(word uint32) {
	rd, imm := DecodeU(word)
	c.Reg.SetX(rd, imm)
}

func (c *CPU) auipc(word uint32) {
	rd, imm := DecodeU(word)
	c.Reg.SetX(rd, c.LastPC+imm)
}

func (c *CPU) jal(word uint32) {
	rd, imm := DecodeJ(word)
	c.Reg.SetX(rd, c.LastPC+4)
	c.Reg.PC = c.LastPC + uint32(imm)
}

func (c *CPU) jalr(word uint32) {
	rd, rs1, imm := DecodeI(word)
	target := (c.Reg.X[rs1] + uint32(imm)) &^ 1
	c.Reg.SetX(rd, c.LastPC+4)
	c.Reg.PC = target
}

func (c *CPU) beq(word uint32) {
	rs1, rs2, _ := DecodeB(word)
	c.branch(word, c.Reg.X[rs1] == c.Reg.X[rs2])
}

func (c *CPU) bne(word uint32) {
	rs1, rs2, _ := DecodeB(word)
	c.branch(word, c.Reg.X[rs1] != c.Reg.X[rs2])
}

func (c *CPU) blt(word uint32) {
	rs1, rs2, _ := DecodeB(word)
	c.branch(word, int32(c.Reg.X[rs1]) < int32(c.Reg.X[rs2]))
}

func (c *CPU) bge(word uint32) {
	rs1, rs2, _ := DecodeB(word)
	c.branch(word, int32(c.Reg.X[rs1]) >= int32(c.Reg.X[rs2]))
}

func (c *CPU) bltu(word uint32) {
	rs1, rs2, _ := DecodeB(word)
	c.branch(word, c.Reg.X[rs1] < c.Reg.X[rs2])
}

func (c *CPU) bgeu(word uint32) {
	rs1, rs2, _ := DecodeB(word)
	c.branch(word, c.Reg.X[rs1] >= c.Reg.X[rs2])
}

func (c *CPU) lw(word uint32) {
	rd, rs1, imm := DecodeI(word)
	c.Reg.SetX(rd, c.Mem.LoadWord(c.Reg.X[rs1]+uint32(imm)))
}

func (c *CPU) sw(word uint32) {
	rs1, rs2, imm := DecodeS(word)
	c.storeWord(c, c.Reg.X[rs1]+uint32(imm), c.Reg.X[rs2])
}

func (c *CPU) addi(word uint32) {
	rd, rs1, imm := DecodeI(word)
	c.Reg.SetX(rd, c.Reg.X[rs1]+uint32(imm))
}

func (c *CPU) sltiu(word uint32) {
	rd, rs1, imm := DecodeI(word)
	var v uint32
	if c.Reg.X[rs1] < uint32(imm) {
		v = 1
	}
	c.Reg.SetX(rd, v)
}

func (c *CPU) add(word uint32) {
	rd, rs1, rs2 := DecodeR(word)
	c.Reg.SetX(rd, c.Reg.X[rs1]+c.Reg.X[rs2])
}

func (c *CPU) sub(word uint32) {
	rd, rs1, rs2 := DecodeR(word)
	c.Reg.SetX(rd, c.Reg.X[rs1]-c.Reg.X[rs2])
}

func (c *CPU) sll(word uint32) {
	rd, rs1, rs2 := DecodeR(word)
	c.Reg.SetX(rd, c.Reg.X[rs1]<<(c.Reg.X[rs2]&0x1f))
}

func (c *CPU) slt(word uint32) {
	rd, rs1, rs2 := DecodeR(word)
	var v uint32
	if int32(c.Reg.X[rs1]) < int32(c.Reg.X[rs2]) {
		v = 1
	}
	c.Reg.SetX(rd, v)
}

func (c *CPU) sltu(word uint32) {
	rd, rs1, rs2 := DecodeR(word)
	var v uint32
	if c.Reg.X[rs1] < c.Reg.X[rs2] {
		v = 1
	}
	c.Reg.SetX(rd, v)
}

func (c *CPU) xor(word uint32) {
	rd, rs1, rs2 := DecodeR(word)
	c.Reg.SetX(rd, c.Reg.X[rs1]^c.Reg.X[rs2])
}

func (c *CPU) srl(word uint32) {
	rd, rs1, rs2 := DecodeR(word)
	c.Reg.SetX(rd, c.Reg.X[rs1]>>(c.Reg.X[rs2]&0x1f))
}

func (c *CPU) or(word uint32) {
	rd, rs1, rs2 := DecodeR(word)
	c.Reg.SetX(rd, c.Reg.X[rs1]|c.Reg.X[rs2])
}

func (c *CPU) and(word uint32) {
	rd, rs1, rs2 := DecodeR(word)
	c.Reg.SetX(rd, c.Reg.X[rs1]&c.Reg.X[rs2])
}
