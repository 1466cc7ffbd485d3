// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
)

// Failures reported by the assembler. Every error returned from the
// package wraps one of these sentinels, so callers can classify a
// failure with errors.Is.
var (
	ErrInvalidLabel       = errors.New("invalid label")
	ErrDuplicateLabel     = errors.New("duplicate label")
	ErrEmptyProgram       = errors.New("program contains no instructions")
	ErrMissingHalt        = errors.New("last instruction must be 'beq zero, zero, 0'")
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrArity              = errors.New("wrong number of operands")
	ErrInvalidRegister    = errors.New("invalid register")
	ErrInvalidImmediate   = errors.New("invalid immediate")
	ErrImmediateRange     = errors.New("immediate out of range")
	ErrMisalignedBranch   = errors.New("branch target must be even")
	ErrMisalignedJump     = errors.New("jump target must be even")
)

// An Error describes an assembly failure on a specific source line.
type Error struct {
	Line    int    // 1-based source line number, 0 if not line-specific
	Context string // the mnemonic or offending token, may be empty
	Err     error  // one of the sentinel errors above
}

func (e *Error) Error() string {
	switch {
	case e.Line == 0:
		return e.Err.Error()
	case e.Context == "":
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	default:
		return fmt.Sprintf("line %d: %v: '%s'", e.Line, e.Err, e.Context)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
