// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass assembler for a teaching subset of
// the RV32I instruction set. The first pass scans the source, assigns
// a word-aligned address to each instruction, and collects label
// definitions. The second pass encodes each instruction independently
// into a 32-bit machine word, resolving label operands against the
// table built by the first pass.
package asm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// A Statement is a single instruction awaiting encoding: its source
// line, the byte address assigned to it during label resolution, and
// its text split into mnemonic and operand field.
type Statement struct {
	Line     int    // 1-based source line number
	Addr     uint32 // byte address of the instruction
	Mnemonic string // lowercase instruction mnemonic
	Args     string // raw operand field, may be empty
}

// An Assembly is the result of a successful assembly: the encoded
// machine words in program order and the resolved label table.
type Assembly struct {
	Code   []uint32
	Labels map[string]uint32
}

// Option type used by the Assemble function.
type Option uint

// Options for the Assemble function.
const (
	Verbose Option = 1 << iota // verbose output during assembly
)

// The assembler tracks the output stream used for verbose progress
// reporting.
type assembler struct {
	out     io.Writer
	verbose bool
}

// Resolve runs the first assembly pass. It scans the source, assigning
// each instruction the next word-aligned address starting from zero
// and recording each label definition at the address of the
// instruction that follows it. The source must contain at least one
// instruction and must end with the halting self-branch
// 'beq zero, zero, 0'.
func Resolve(r io.Reader) ([]Statement, map[string]uint32, error) {
	return (&assembler{}).resolve(r)
}

func (a *assembler) resolve(r io.Reader) ([]Statement, map[string]uint32, error) {
	var stmts []Statement
	var addr uint32
	labels := make(map[string]uint32)

	scanner := bufio.NewScanner(r)
	for row := 1; scanner.Scan(); row++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if i := strings.IndexByte(text, ':'); i >= 0 {
			name := strings.TrimSpace(text[:i])
			if name == "" || !alpha(name[0]) {
				return nil, nil, &Error{Line: row, Context: name, Err: ErrInvalidLabel}
			}
			if _, seen := labels[name]; seen {
				return nil, nil, &Error{Line: row, Context: name, Err: ErrDuplicateLabel}
			}
			labels[name] = addr
			a.log("%3d | %08X | label %s", row, addr, name)

			// A label may share its line with an instruction.
			text = strings.TrimSpace(text[i+1:])
			if text == "" {
				continue
			}
		}

		st := newStatement(row, addr, text)
		a.log("%3d | %08X | %s %s", row, addr, st.Mnemonic, st.Args)
		stmts = append(stmts, st)
		addr += 4
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	if len(stmts) == 0 {
		return nil, nil, &Error{Err: ErrEmptyProgram}
	}
	if last := stmts[len(stmts)-1]; !isHalt(last) {
		return nil, nil, &Error{Line: last.Line, Err: ErrMissingHalt}
	}
	return stmts, labels, nil
}

// newStatement splits an instruction's text into its mnemonic and
// operand field.
func newStatement(line int, addr uint32, text string) Statement {
	st := Statement{Line: line, Addr: addr, Mnemonic: text}
	if i := strings.IndexAny(text, " \t"); i >= 0 {
		st.Mnemonic = text[:i]
		st.Args = strings.TrimSpace(text[i+1:])
	}
	return st
}

// isHalt reports whether the statement is the halting self-branch that
// every program must end with.
func isHalt(st Statement) bool {
	return st.Mnemonic == "beq" && stripSpace(st.Args) == "zero,zero,0"
}

// Assemble reads assembly source from the provided stream and encodes
// it into RV32I machine code.
func Assemble(r io.Reader, out io.Writer, options Option) (*Assembly, error) {
	if out == nil {
		out = os.Stdout
	}

	a := &assembler{
		out:     out,
		verbose: (options & Verbose) != 0,
	}

	a.logSection("Resolving labels")
	stmts, labels, err := a.resolve(r)
	if err != nil {
		return nil, err
	}

	a.logSection("Encoding instructions")
	code := make([]uint32, 0, len(stmts))
	for _, st := range stmts {
		word, err := Encode(st, labels)
		if err != nil {
			return nil, err
		}
		a.log("%08X | %032b | %s %s", st.Addr, word, st.Mnemonic, st.Args)
		code = append(code, word)
	}

	return &Assembly{Code: code, Labels: labels}, nil
}

// AssembleFile reads a file containing RV32I assembly code, assembles
// it, and writes the machine code to a .bin file alongside the source.
func AssembleFile(path string, options Option, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}

	inFile, err := os.Open(path)
	if err != nil {
		return err
	}
	defer inFile.Close()

	assembly, err := Assemble(inFile, out, options)
	if err != nil {
		fmt.Fprintln(out, err)
		return err
	}

	ext := filepath.Ext(path)
	binPath := path[:len(path)-len(ext)] + ".bin"
	binFile, err := os.OpenFile(binPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer binFile.Close()

	if _, err = assembly.WriteTo(binFile); err != nil {
		return err
	}

	fmt.Fprintf(out, "Assembled '%s' to produce '%s'.\n",
		filepath.Base(path), filepath.Base(binPath))
	return nil
}

// WriteTo writes the machine code to an output stream, one 32-character
// binary line per instruction word.
func (a *Assembly) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, word := range a.Code {
		nn, err := fmt.Fprintf(w, "%032b\n", word)
		n += int64(nn)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// ReadFrom reads machine code in the format produced by WriteTo,
// replacing the assembly's code. Blank lines are ignored; the label
// table is left untouched since labels are not part of the format.
func (a *Assembly) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	n := int64(len(data))
	if err != nil {
		return n, err
	}

	a.Code = nil
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) != 32 {
			return n, fmt.Errorf("invalid machine code line '%s'", line)
		}
		word, err := strconv.ParseUint(line, 2, 32)
		if err != nil {
			return n, fmt.Errorf("invalid machine code line '%s'", line)
		}
		a.Code = append(a.Code, uint32(word))
	}
	return n, nil
}

// Bytes returns the little-endian byte image of the machine code,
// suitable for storing into the emulated memory.
func (a *Assembly) Bytes() []byte {
	b := make([]byte, 0, len(a.Code)*4)
	for _, word := range a.Code {
		b = binary.LittleEndian.AppendUint32(b, word)
	}
	return b
}

// In verbose mode, log a line of progress output.
func (a *assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log a section header.
func (a *assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}
