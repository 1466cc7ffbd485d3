// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strconv"
	"strings"

	"github.com/gorv32/gorv32/cpu"
)

// Immediate bit widths accepted by each instruction format. Branch and
// jump offsets carry one extra bit because the low bit is implicit.
const (
	immBitsI = 12
	immBitsS = 12
	immBitsB = 13
	immBitsJ = 21
	immBitsU = 20
)

// Encode produces the 32-bit machine word for a single resolved
// statement. Label operands are translated to offsets relative to the
// statement's own address using the table built by Resolve. Encoding
// one statement never depends on any other statement.
func Encode(st Statement, labels map[string]uint32) (uint32, error) {
	inst := cpu.Lookup(st.Mnemonic)
	if inst == nil {
		return 0, &Error{Line: st.Line, Context: st.Mnemonic, Err: ErrUnknownInstruction}
	}

	e := &encoder{st: st, labels: labels, inst: inst}
	ops := splitOperands(st.Args)

	switch inst.Format {
	case cpu.FormatR:
		return e.encodeR(ops)
	case cpu.FormatI:
		return e.encodeI(ops)
	case cpu.FormatS:
		return e.encodeS(ops)
	case cpu.FormatB:
		return e.encodeB(ops)
	case cpu.FormatJ:
		return e.encodeJ(ops)
	default:
		return e.encodeU(ops)
	}
}

// An encoder holds the context shared by the per-format encoding
// helpers for one statement.
type encoder struct {
	st     Statement
	labels map[string]uint32
	inst   *cpu.Instruction
}

func (e *encoder) fail(err error, context string) error {
	return &Error{Line: e.st.Line, Context: context, Err: err}
}

// reg resolves a bare operand to a register number.
func (e *encoder) reg(op operand) (uint32, error) {
	if !op.mem {
		if i, ok := cpu.RegisterIndex(op.raw); ok {
			return uint32(i), nil
		}
	}
	return 0, e.fail(ErrInvalidRegister, op.raw)
}

// regName resolves a register name appearing inside a memory form.
func (e *encoder) regName(name, context string) (uint32, error) {
	if i, ok := cpu.RegisterIndex(name); ok {
		return uint32(i), nil
	}
	return 0, e.fail(ErrInvalidRegister, context)
}

// imm resolves an immediate token to its signed value. A token that
// parses as an integer literal is taken at face value; otherwise it
// must name a label, and the value is the label's address relative to
// the statement being encoded.
func (e *encoder) imm(tok string) (int64, error) {
	if v, ok := parseInt(tok); ok {
		return v, nil
	}
	if addr, ok := e.labels[tok]; ok {
		return int64(addr) - int64(e.st.Addr), nil
	}
	return 0, e.fail(ErrInvalidImmediate, tok)
}

// pack range-checks a signed immediate against the given bit width and
// returns its two's complement encoding.
func (e *encoder) pack(v int64, bits uint, context string) (uint32, error) {
	enc, ok := toBinary(v, bits)
	if !ok {
		return 0, e.fail(ErrImmediateRange, context)
	}
	return enc, nil
}

func (e *encoder) encodeR(ops []operand) (uint32, error) {
	if len(ops) != 3 {
		return 0, e.fail(ErrArity, e.st.Mnemonic)
	}
	rd, err := e.reg(ops[0])
	if err != nil {
		return 0, err
	}
	rs1, err := e.reg(ops[1])
	if err != nil {
		return 0, err
	}
	rs2, err := e.reg(ops[2])
	if err != nil {
		return 0, err
	}
	return e.inst.Funct7<<25 | rs2<<20 | rs1<<15 | e.inst.Funct3<<12 |
		rd<<7 | e.inst.Opcode, nil
}

func (e *encoder) encodeI(ops []operand) (uint32, error) {
	var rd, rs1 uint32
	var v int64
	var tok string
	var err error

	if e.inst.Opcode == cpu.OpcodeLoad {
		// rd, offset(base)
		if len(ops) != 2 {
			return 0, e.fail(ErrArity, e.st.Mnemonic)
		}
		if !ops[1].mem {
			return 0, e.fail(ErrInvalidImmediate, ops[1].raw)
		}
		if rd, err = e.reg(ops[0]); err != nil {
			return 0, err
		}
		if rs1, err = e.regName(ops[1].base, ops[1].raw); err != nil {
			return 0, err
		}
		tok = ops[1].off
	} else {
		// rd, rs1, imm
		if len(ops) != 3 {
			return 0, e.fail(ErrArity, e.st.Mnemonic)
		}
		if rd, err = e.reg(ops[0]); err != nil {
			return 0, err
		}
		if rs1, err = e.reg(ops[1]); err != nil {
			return 0, err
		}
		if ops[2].mem {
			return 0, e.fail(ErrInvalidImmediate, ops[2].raw)
		}
		tok = ops[2].raw
	}

	if v, err = e.imm(tok); err != nil {
		return 0, err
	}
	enc, err := e.pack(v, immBitsI, tok)
	if err != nil {
		return 0, err
	}
	return enc<<20 | rs1<<15 | e.inst.Funct3<<12 | rd<<7 | e.inst.Opcode, nil
}

func (e *encoder) encodeS(ops []operand) (uint32, error) {
	// rs2, offset(base)
	if len(ops) != 2 {
		return 0, e.fail(ErrArity, e.st.Mnemonic)
	}
	if !ops[1].mem {
		return 0, e.fail(ErrInvalidImmediate, ops[1].raw)
	}
	rs2, err := e.reg(ops[0])
	if err != nil {
		return 0, err
	}
	rs1, err := e.regName(ops[1].base, ops[1].raw)
	if err != nil {
		return 0, err
	}
	v, err := e.imm(ops[1].off)
	if err != nil {
		return 0, err
	}
	enc, err := e.pack(v, immBitsS, ops[1].off)
	if err != nil {
		return 0, err
	}
	return (enc>>5)<<25 | rs2<<20 | rs1<<15 | e.inst.Funct3<<12 |
		(enc&0x1f)<<7 | e.inst.Opcode, nil
}

func (e *encoder) encodeB(ops []operand) (uint32, error) {
	// rs1, rs2, target
	if len(ops) != 3 {
		return 0, e.fail(ErrArity, e.st.Mnemonic)
	}
	rs1, err := e.reg(ops[0])
	if err != nil {
		return 0, err
	}
	rs2, err := e.reg(ops[1])
	if err != nil {
		return 0, err
	}
	if ops[2].mem {
		return 0, e.fail(ErrInvalidImmediate, ops[2].raw)
	}
	v, err := e.imm(ops[2].raw)
	if err != nil {
		return 0, err
	}
	enc, err := e.pack(v, immBitsB, ops[2].raw)
	if err != nil {
		return 0, err
	}
	if enc&1 != 0 {
		return 0, e.fail(ErrMisalignedBranch, ops[2].raw)
	}
	return (enc>>12&0x1)<<31 | (enc>>5&0x3f)<<25 | rs2<<20 | rs1<<15 |
		e.inst.Funct3<<12 | (enc>>1&0xf)<<8 | (enc>>11&0x1)<<7 |
		e.inst.Opcode, nil
}

func (e *encoder) encodeJ(ops []operand) (uint32, error) {
	// rd, target
	if len(ops) != 2 {
		return 0, e.fail(ErrArity, e.st.Mnemonic)
	}
	rd, err := e.reg(ops[0])
	if err != nil {
		return 0, err
	}
	if ops[1].mem {
		return 0, e.fail(ErrInvalidImmediate, ops[1].raw)
	}
	v, err := e.imm(ops[1].raw)
	if err != nil {
		return 0, err
	}
	enc, err := e.pack(v, immBitsJ, ops[1].raw)
	if err != nil {
		return 0, err
	}
	if enc&1 != 0 {
		return 0, e.fail(ErrMisalignedJump, ops[1].raw)
	}
	return (enc>>20&0x1)<<31 | (enc>>1&0x3ff)<<21 | (enc>>11&0x1)<<20 |
		(enc>>12&0xff)<<12 | rd<<7 | e.inst.Opcode, nil
}

func (e *encoder) encodeU(ops []operand) (uint32, error) {
	// rd, imm
	if len(ops) != 2 {
		return 0, e.fail(ErrArity, e.st.Mnemonic)
	}
	rd, err := e.reg(ops[0])
	if err != nil {
		return 0, err
	}

	// Upper immediates are absolute, so labels are not meaningful here
	// and only integer literals are accepted.
	v, ok := parseInt(ops[1].raw)
	if !ok {
		return 0, e.fail(ErrInvalidImmediate, ops[1].raw)
	}
	enc, err := e.pack(v, immBitsU, ops[1].raw)
	if err != nil {
		return 0, err
	}
	return enc<<12 | rd<<7 | e.inst.Opcode, nil
}

// toBinary produces the two's complement encoding of v in the given
// number of bits. It reports false if v lies outside the signed range
// of the width.
func toBinary(v int64, bits uint) (uint32, bool) {
	if v < -(1<<(bits-1)) || v > 1<<(bits-1)-1 {
		return 0, false
	}
	return uint32(v) & (1<<bits - 1), true
}

// parseInt parses an optionally signed integer literal, either decimal
// or hexadecimal with a 0x prefix.
func parseInt(tok string) (int64, bool) {
	s := tok
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}

	// Only digits may remain. ParseInt would accept another sign here,
	// which must not slip through (e.g. '--5' or '0x-4').
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, false
	}

	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}
