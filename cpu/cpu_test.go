// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu_test

import (
	"io"
	"strings"
	"testing"

	"github.com/gorv32/gorv32/asm"
	"github.com/gorv32/gorv32/cpu"
)

func loadCPU(t *testing.T, asmString string) *cpu.CPU {
	t.Helper()
	assembly, err := asm.Assemble(strings.NewReader(asmString), io.Discard, 0)
	if err != nil {
		t.Error(err)
		return nil
	}

	mem := cpu.NewFlatMemory()
	mem.StoreBytes(0, assembly.Bytes())
	c := cpu.New(mem)
	c.SetPC(0)
	return c
}

func stepCPU(c *cpu.CPU, steps int) {
	for i := 0; i < steps; i++ {
		c.Step()
	}
}

func runCPU(t *testing.T, asmString string, steps int) *cpu.CPU {
	t.Helper()
	c := loadCPU(t, asmString)
	if c != nil {
		stepCPU(c, steps)
	}
	return c
}

func expectPC(t *testing.T, c *cpu.CPU, pc uint32) {
	t.Helper()
	if c.Reg.PC != pc {
		t.Errorf("PC incorrect. exp: %08X, got: %08X", pc, c.Reg.PC)
	}
}

func expectCycles(t *testing.T, c *cpu.CPU, cycles uint64) {
	t.Helper()
	if c.Cycles != cycles {
		t.Errorf("Cycles incorrect. exp: %d, got: %d", cycles, c.Cycles)
	}
}

func expectX(t *testing.T, c *cpu.CPU, reg int, v uint32) {
	t.Helper()
	if c.Reg.X[reg] != v {
		t.Errorf("%s incorrect. exp: %08X, got: %08X",
			cpu.RegisterNames[reg], v, c.Reg.X[reg])
	}
}

func expectMem(t *testing.T, c *cpu.CPU, addr uint32, v uint32) {
	t.Helper()
	got := c.Mem.LoadWord(addr)
	if got != v {
		t.Errorf("Memory at %08X incorrect. exp: %08X, got: %08X", addr, v, got)
	}
}

func TestArithmetic(t *testing.T) {
	asm := `
	addi a0, zero, 5
	addi a1, zero, 7
	add a2, a0, a1
	sub a3, a0, a1
	beq zero, zero, 0`

	c := runCPU(t, asm, 4)
	if c == nil {
		return
	}

	expectPC(t, c, 16)
	expectCycles(t, c, 4)
	expectX(t, c, 12, 12)
	expectX(t, c, 13, 0xFFFFFFFE)
}

func TestLogical(t *testing.T) {
	asm := `
	addi a0, zero, 0x0F
	addi a1, zero, 0x3C
	and a2, a0, a1
	or a3, a0, a1
	xor a4, a0, a1
	beq zero, zero, 0`

	c := runCPU(t, asm, 5)
	if c == nil {
		return
	}

	expectX(t, c, 12, 0x0C)
	expectX(t, c, 13, 0x3F)
	expectX(t, c, 14, 0x33)
}

func TestShifts(t *testing.T) {
	// Shift amounts use only the low 5 bits of rs2.
	asm := `
	addi a0, zero, 1
	addi a1, zero, 33
	sll a2, a0, a1
	srl a3, a2, a0
	beq zero, zero, 0`

	c := runCPU(t, asm, 4)
	if c == nil {
		return
	}

	expectX(t, c, 12, 2)
	expectX(t, c, 13, 1)
}

func TestComparisons(t *testing.T) {
	asm := `
	addi a0, zero, -1
	slt a1, a0, zero
	sltu a2, zero, a0
	sltiu a3, a0, 1
	beq zero, zero, 0`

	c := runCPU(t, asm, 4)
	if c == nil {
		return
	}

	expectX(t, c, 11, 1) // -1 < 0 signed
	expectX(t, c, 12, 1) // 0 < 0xFFFFFFFF unsigned
	expectX(t, c, 13, 0) // 0xFFFFFFFF < 1 unsigned
}

func TestUpperImmediates(t *testing.T) {
	asm := `
	lui a0, 1
	auipc a1, 1
	beq zero, zero, 0`

	c := runCPU(t, asm, 2)
	if c == nil {
		return
	}

	expectX(t, c, 10, 0x1000)
	expectX(t, c, 11, 0x1004) // 0x1000 + address of auipc
}

func TestZeroRegister(t *testing.T) {
	asm := `
	addi zero, zero, 7
	add zero, zero, zero
	beq zero, zero, 0`

	c := runCPU(t, asm, 2)
	if c == nil {
		return
	}

	expectX(t, c, 0, 0)
}

func TestLoadStore(t *testing.T) {
	asm := `
	addi sp, zero, 0x100
	addi a0, zero, 42
	sw a0, -4(sp)
	lw a1, -4(sp)
	beq zero, zero, 0`

	c := runCPU(t, asm, 4)
	if c == nil {
		return
	}

	expectMem(t, c, 0xFC, 42)
	expectX(t, c, 11, 42)
}

func TestBranchLoop(t *testing.T) {
	asm := `
	addi a0, zero, 3
	loop: addi a0, a0, -1
	bne a0, zero, loop
	beq zero, zero, 0`

	c := runCPU(t, asm, 7)
	if c == nil {
		return
	}

	expectPC(t, c, 12)
	expectCycles(t, c, 7)
	expectX(t, c, 10, 0)
}

func TestBranchNotTaken(t *testing.T) {
	asm := `
	addi a0, zero, 1
	beq a0, zero, 8
	addi a1, zero, 2
	beq zero, zero, 0`

	c := runCPU(t, asm, 3)
	if c == nil {
		return
	}

	expectPC(t, c, 12)
	expectX(t, c, 11, 2)
}

func TestJumpAndLink(t *testing.T) {
	asm := `
	jal zero, main
	func: addi a0, zero, 9
	jalr zero, ra, 0
	main: jal ra, func
	add a2, a0, a0
	beq zero, zero, 0`

	c := runCPU(t, asm, 5)
	if c == nil {
		return
	}

	expectPC(t, c, 20)
	expectCycles(t, c, 5)
	expectX(t, c, 1, 16) // return address set by jal ra, func
	expectX(t, c, 10, 9)
	expectX(t, c, 12, 18)
}

func TestHalt(t *testing.T) {
	asm := `
	addi a0, zero, 1
	beq zero, zero, 0`

	c := runCPU(t, asm, 10)
	if c == nil {
		return
	}

	if !c.Halted {
		t.Error("CPU should be halted")
	}
	expectPC(t, c, 4)
	expectCycles(t, c, 1)

	// Stepping a halted CPU changes nothing.
	stepCPU(c, 3)
	expectPC(t, c, 4)
	expectCycles(t, c, 1)
}

func TestUndecodableHalts(t *testing.T) {
	mem := cpu.NewFlatMemory()
	mem.StoreWord(0, 0xFFFFFFFF)
	c := cpu.New(mem)

	c.Step()
	if !c.Halted {
		t.Error("CPU should halt on an undecodable word")
	}
	expectPC(t, c, 0)
}

func TestBreakpoint(t *testing.T) {
	asm := `
	addi a0, zero, 1
	addi a1, zero, 2
	addi a2, zero, 3
	beq zero, zero, 0`

	c := loadCPU(t, asm)
	if c == nil {
		return
	}

	h := &testHandler{}
	d := cpu.NewDebugger(h)
	c.AttachDebugger(d)
	d.AddBreakpoint(8)

	stepCPU(c, 3)
	if h.breakpoints != 1 {
		t.Errorf("got %d breakpoint hits, expected 1", h.breakpoints)
	}
}

func TestDataBreakpoint(t *testing.T) {
	asm := `
	addi a0, zero, 42
	sw a0, 8(zero)
	beq zero, zero, 0`

	c := loadCPU(t, asm)
	if c == nil {
		return
	}

	h := &testHandler{}
	d := cpu.NewDebugger(h)
	c.AttachDebugger(d)
	d.AddDataBreakpoint(8)

	stepCPU(c, 2)
	if h.dataBreakpoints != 1 {
		t.Errorf("got %d data breakpoint hits, expected 1", h.dataBreakpoints)
	}
	expectMem(t, c, 8, 42)
}

type testHandler struct {
	breakpoints     int
	dataBreakpoints int
}

func (h *testHandler) OnBreakpoint(c *cpu.CPU, b *cpu.Breakpoint) {
	h.breakpoints++
}

func (h *testHandler) OnDataBreakpoint(c *cpu.CPU, b *cpu.DataBreakpoint) {
	h.dataBreakpoints++
}
