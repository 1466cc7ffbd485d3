// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"strconv"
	"strings"
)

func stringToBool(s string) (bool, error) {
	s = strings.ToLower(s)
	switch s {
	case "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, fmt.Errorf("invalid bool value '%s'", s)
	}
}

// parseUint32 parses an unsigned integer literal, decimal or
// hexadecimal with a 0x or $ prefix.
func parseUint32(s string) (uint32, error) {
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		base = 16
		s = s[2:]
	case strings.HasPrefix(s, "$"):
		base = 16
		s = s[1:]
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value '%s'", s)
	}
	return uint32(v), nil
}

var hexString = "0123456789ABCDEF"

func addrToBuf(addr uint32, b []byte) {
	for i := 7; i >= 0; i-- {
		b[i] = hexString[addr&0xf]
		addr >>= 4
	}
}

func byteToBuf(v byte, b []byte) {
	b[0] = hexString[(v>>4)&0xf]
	b[1] = hexString[v&0xf]
}

func toPrintableChar(v byte) byte {
	if v >= 32 && v < 127 {
		return v
	}
	return '.'
}

func indentWrap(indent int, s string) string {
	var lines []string
	prefix := strings.Repeat(" ", indent)
	for len(s) > 0 {
		n := 78 - indent
		if n >= len(s) {
			lines = append(lines, prefix+s)
			break
		}
		i := strings.LastIndexByte(s[:n], ' ')
		if i < 0 {
			i = n
		}
		lines = append(lines, prefix+strings.TrimRight(s[:i], " "))
		s = strings.TrimLeft(s[i:], " ")
	}
	return strings.Join(lines, "\n")
}
