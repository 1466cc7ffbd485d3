// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func assemble(code string) (*Assembly, error) {
	return Assemble(strings.NewReader(code), io.Discard, 0)
}

func checkASM(t *testing.T, asm string, expected ...uint32) {
	t.Helper()
	assembly, err := assemble(asm)
	if err != nil {
		t.Error(err)
		return
	}
	if len(assembly.Code) != len(expected) {
		t.Errorf("got %d words, expected %d", len(assembly.Code), len(expected))
		return
	}
	for i, word := range assembly.Code {
		if word != expected[i] {
			t.Errorf("word %d: got %08X, expected %08X", i, word, expected[i])
		}
	}
}

func checkASMError(t *testing.T, asm string, expected error) {
	t.Helper()
	_, err := assemble(asm)
	if err == nil {
		t.Errorf("expected error on %s, didn't get one", asm)
		return
	}
	if !errors.Is(err, expected) {
		t.Errorf("expected '%v', got '%v'", expected, err)
	}
}

const halt = "beq zero, zero, 0"

func TestFormatR(t *testing.T) {
	asm := `
	add a2, a0, a1
	sub a2, a0, a1
	sll a2, a0, a1
	slt a2, a0, a1
	sltu a2, a0, a1
	xor a2, a0, a1
	srl a2, a0, a1
	or a2, a0, a1
	and a2, a0, a1
	` + halt

	checkASM(t, asm,
		0x00B50633, 0x40B50633, 0x00B51633, 0x00B52633, 0x00B53633,
		0x00B54633, 0x00B55633, 0x00B56633, 0x00B57633, 0x00000063)
}

func TestFormatI(t *testing.T) {
	asm := `
	addi a0, zero, 5
	addi a0, a0, -1
	addi a0, zero, 0x10
	sltiu a1, a0, 100
	jalr ra, t0, 0
	` + halt

	checkASM(t, asm,
		0x00500513, 0xFFF50513, 0x01000513, 0x06453593, 0x000280E7,
		0x00000063)
}

func TestLoadStore(t *testing.T) {
	asm := `
	lw a0, -4(sp)
	sw a0, 8(sp)
	sw a0, -4(sp)
	` + halt

	checkASM(t, asm, 0xFFC12503, 0x00A12423, 0xFEA12E23, 0x00000063)
}

func TestFormatU(t *testing.T) {
	asm := `
	lui a0, 1
	auipc a0, 1
	lui a0, -1
	` + halt

	checkASM(t, asm, 0x00001537, 0x00001517, 0xFFFFF537, 0x00000063)
}

func TestBranches(t *testing.T) {
	asm := `
	beq a0, a1, 8
	bne a0, a1, 8
	blt a0, a1, 8
	bge a0, a1, 8
	bltu a0, a1, 8
	bgeu a0, a1, 8
	` + halt

	checkASM(t, asm,
		0x00B50463, 0x00B51463, 0x00B54463, 0x00B55463, 0x00B56463,
		0x00B57463, 0x00000063)
}

func TestJumps(t *testing.T) {
	asm := `
	jal ra, 12
	jal zero, -4
	` + halt

	checkASM(t, asm, 0x00C000EF, 0xFFDFF06F, 0x00000063)
}

func TestForwardLabel(t *testing.T) {
	asm := `
	jal ra, end
	addi a0, zero, 1
	addi a1, zero, 2
	end: ` + halt

	checkASM(t, asm, 0x00C000EF, 0x00100513, 0x00200593, 0x00000063)
}

func TestBackwardLabel(t *testing.T) {
	asm := `
	addi a0, zero, 3
	loop: addi a0, a0, -1
	bne a0, zero, loop
	` + halt

	checkASM(t, asm, 0x00300513, 0xFFF50513, 0xFE051EE3, 0x00000063)
}

func TestLabelAddresses(t *testing.T) {
	asm := `
	first:
	addi a0, zero, 1
	second: addi a1, zero, 2
	last:
	` + halt

	stmts, labels, err := Resolve(strings.NewReader(asm))
	if err != nil {
		t.Fatal(err)
	}
	if len(stmts) != 3 {
		t.Errorf("got %d statements, expected 3", len(stmts))
	}
	expected := map[string]uint32{"first": 0, "second": 4, "last": 8}
	for name, addr := range expected {
		if labels[name] != addr {
			t.Errorf("label %s: got address %d, expected %d", name, labels[name], addr)
		}
	}
}

func TestEndToEnd(t *testing.T) {
	asm := `
	start: addi a0, zero, 5
	addi a1, zero, 7
	add a2, a0, a1
	` + halt

	checkASM(t, asm, 0x00500513, 0x00700593, 0x00B50633, 0x00000063)
}

func TestErrors(t *testing.T) {
	checkASMError(t, "", ErrEmptyProgram)
	checkASMError(t, "\n   \n", ErrEmptyProgram)
	checkASMError(t, "addi a0, zero, 1", ErrMissingHalt)
	checkASMError(t, "beq zero, zero, 4", ErrMissingHalt)
	checkASMError(t, "9lives: "+halt, ErrInvalidLabel)
	checkASMError(t, ": "+halt, ErrInvalidLabel)
	checkASMError(t, "x: addi a0, zero, 1\nx: "+halt, ErrDuplicateLabel)
	checkASMError(t, "mul a0, a1, a2\n"+halt, ErrUnknownInstruction)
	checkASMError(t, "add a0, a1\n"+halt, ErrArity)
	checkASMError(t, "add a0, a1, a2, a3\n"+halt, ErrArity)
	checkASMError(t, "lw a0, 4(sp), a1\n"+halt, ErrArity)
	checkASMError(t, "add a0, a1, q9\n"+halt, ErrInvalidRegister)
	checkASMError(t, "lw a0, 4(xy)\n"+halt, ErrInvalidRegister)
	checkASMError(t, "addi a0, zero, banana\n"+halt, ErrInvalidImmediate)
	checkASMError(t, "addi a0, zero, --5\n"+halt, ErrInvalidImmediate)
	checkASMError(t, "addi a0, zero, +-5\n"+halt, ErrInvalidImmediate)
	checkASMError(t, "addi a0, zero, 0x-4\n"+halt, ErrInvalidImmediate)
	checkASMError(t, "addi a0, zero, -0x+4\n"+halt, ErrInvalidImmediate)
	checkASMError(t, "addi a0, zero, 0x\n"+halt, ErrInvalidImmediate)
	checkASMError(t, "addi a0, zero, -\n"+halt, ErrInvalidImmediate)
	checkASMError(t, "lw a0, sp\n"+halt, ErrInvalidImmediate)
	checkASMError(t, "lui a0, target\ntarget: "+halt, ErrInvalidImmediate)
	checkASMError(t, "addi a0, zero, 4096\n"+halt, ErrImmediateRange)
	checkASMError(t, "addi a0, zero, -2049\n"+halt, ErrImmediateRange)
	checkASMError(t, "lui a0, 524288\n"+halt, ErrImmediateRange)
	checkASMError(t, "beq a0, a1, 4096\n"+halt, ErrImmediateRange)
	checkASMError(t, "jal ra, 1048576\n"+halt, ErrImmediateRange)
	checkASMError(t, "beq a0, a1, 3\n"+halt, ErrMisalignedBranch)
	checkASMError(t, "jal ra, 7\n"+halt, ErrMisalignedJump)
}

func TestErrorLine(t *testing.T) {
	_, err := assemble("addi a0, zero, 1\nmul a0, a1, a2\n" + halt)
	if err == nil {
		t.Fatal("expected error, didn't get one")
	}

	var asmErr *Error
	if !errors.As(err, &asmErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if asmErr.Line != 2 {
		t.Errorf("got line %d, expected 2", asmErr.Line)
	}
	if asmErr.Context != "mul" {
		t.Errorf("got context '%s', expected 'mul'", asmErr.Context)
	}
}

func TestImmediateLimits(t *testing.T) {
	checkASM(t, "addi a0, zero, 2047\n"+halt, 0x7FF00513, 0x00000063)
	checkASM(t, "addi a0, zero, -2048\n"+halt, 0x80000513, 0x00000063)
	checkASM(t, "lui a0, 524287\n"+halt, 0x7FFFF537, 0x00000063)
	checkASM(t, "lui a0, -524288\n"+halt, 0x80000537, 0x00000063)
}

func TestToBinary(t *testing.T) {
	cases := []struct {
		v     int64
		bits  uint
		enc   uint32
		valid bool
	}{
		{0, 12, 0x000, true},
		{2047, 12, 0x7FF, true},
		{-2048, 12, 0x800, true},
		{-1, 12, 0xFFF, true},
		{2048, 12, 0, false},
		{-2049, 12, 0, false},
		{4095, 13, 0x0FFF, true},
		{-4096, 13, 0x1000, true},
		{4096, 13, 0, false},
		{524287, 20, 0x7FFFF, true},
		{-524288, 20, 0x80000, true},
		{524288, 20, 0, false},
		{1048575, 21, 0x0FFFFF, true},
		{-1048576, 21, 0x100000, true},
		{1048576, 21, 0, false},
	}
	for _, c := range cases {
		enc, ok := toBinary(c.v, c.bits)
		if ok != c.valid {
			t.Errorf("toBinary(%d, %d): got ok=%v, expected %v", c.v, c.bits, ok, c.valid)
			continue
		}
		if ok && enc != c.enc {
			t.Errorf("toBinary(%d, %d): got %X, expected %X", c.v, c.bits, enc, c.enc)
		}
	}
}

func TestDeterminism(t *testing.T) {
	asm := `
	start: addi a0, zero, 5
	jal ra, start
	` + halt

	a1, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a1.Code {
		if a1.Code[i] != a2.Code[i] {
			t.Errorf("word %d differs between runs", i)
		}
	}
}

func TestSerialization(t *testing.T) {
	asm := "addi a0, zero, 5\n" + halt

	assembly, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := assembly.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	expected := "00000000010100000000010100010011\n" +
		"00000000000000000000000001100011\n"
	if buf.String() != expected {
		t.Errorf("got:\n%sexpected:\n%s", buf.String(), expected)
	}

	var loaded Assembly
	if _, err := loaded.ReadFrom(&buf); err != nil {
		t.Fatal(err)
	}
	if len(loaded.Code) != len(assembly.Code) {
		t.Fatalf("got %d words, expected %d", len(loaded.Code), len(assembly.Code))
	}
	for i := range loaded.Code {
		if loaded.Code[i] != assembly.Code[i] {
			t.Errorf("word %d: got %08X, expected %08X",
				i, loaded.Code[i], assembly.Code[i])
		}
	}
}

func TestReadFromByteCount(t *testing.T) {
	// The byte count must match what was consumed, regardless of line
	// endings or a missing final newline.
	sources := []string{
		"00000000000000000000000001100011\n",
		"00000000000000000000000001100011",
		"00000000010100000000010100010011\r\n" +
			"00000000000000000000000001100011\r\n",
	}
	for _, src := range sources {
		var a Assembly
		n, err := a.ReadFrom(strings.NewReader(src))
		if err != nil {
			t.Errorf("ReadFrom of %q failed: %v", src, err)
			continue
		}
		if n != int64(len(src)) {
			t.Errorf("ReadFrom of %q: got count %d, expected %d", src, n, len(src))
		}
		if a.Code[len(a.Code)-1] != 0x00000063 {
			t.Errorf("ReadFrom of %q: wrong final word %08X", src, a.Code[len(a.Code)-1])
		}
	}
}

func TestBytes(t *testing.T) {
	a := &Assembly{Code: []uint32{0x00500513, 0x00000063}}
	b := a.Bytes()
	expected := []byte{0x13, 0x05, 0x50, 0x00, 0x63, 0x00, 0x00, 0x00}
	if !bytes.Equal(b, expected) {
		t.Errorf("got % X, expected % X", b, expected)
	}
}
