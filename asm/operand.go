// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strings"

// An operand is a single comma-separated token from an instruction's
// operand field. Loads and stores use the memory form 'offset(base)',
// which is carried as one operand with the offset and base register
// split out. All other operands are bare tokens: a register name, an
// integer literal, or a label.
type operand struct {
	raw  string // the trimmed source token
	mem  bool   // token uses the memory form
	off  string // memory form offset
	base string // memory form base register
}

// splitOperands tokenizes an instruction's operand field. An empty
// field produces no operands.
func splitOperands(args string) []operand {
	args = strings.TrimSpace(args)
	if args == "" {
		return nil
	}

	tokens := strings.Split(args, ",")
	ops := make([]operand, 0, len(tokens))
	for _, t := range tokens {
		ops = append(ops, parseOperand(strings.TrimSpace(t)))
	}
	return ops
}

// parseOperand classifies a single token, recognizing the memory form
// by the presence of a parenthesized base register.
func parseOperand(tok string) operand {
	i := strings.IndexByte(tok, '(')
	if i < 0 || !strings.HasSuffix(tok, ")") {
		return operand{raw: tok}
	}
	return operand{
		raw:  tok,
		mem:  true,
		off:  strings.TrimSpace(tok[:i]),
		base: strings.TrimSpace(tok[i+1 : len(tok)-1]),
	}
}

// stripSpace removes all spaces and tabs from s.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
}

func alpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
