// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "sort"

// The Debugger intercepts instructions before they are executed on the
// emulated CPU and stores before they reach memory.
type Debugger struct {
	breakpointHandler BreakpointHandler
	breakpoints       map[uint32]*Breakpoint
	dataBreakpoints   map[uint32]*DataBreakpoint
}

// The BreakpointHandler interface should be implemented by any object
// that wishes to receive debugger breakpoint notifications.
type BreakpointHandler interface {
	OnBreakpoint(c *CPU, b *Breakpoint)
	OnDataBreakpoint(c *CPU, b *DataBreakpoint)
}

// A Breakpoint represents an address that will cause the debugger to
// stop code execution when the program counter reaches it.
type Breakpoint struct {
	Address  uint32 // address of execution breakpoint
	Disabled bool   // this breakpoint is currently disabled
	StepOver bool   // this is a transient step-over breakpoint
}

// A DataBreakpoint represents an address that will cause the debugger
// to stop executing code when a word is stored to it.
type DataBreakpoint struct {
	Address     uint32 // breakpoint triggered by stores to this address
	Disabled    bool   // this breakpoint is currently disabled
	Conditional bool   // triggered only when Value is stored
	Value       uint32 // the value that must be stored if conditional
}

// NewDebugger creates a new CPU debugger.
func NewDebugger(breakpointHandler BreakpointHandler) *Debugger {
	return &Debugger{
		breakpointHandler: breakpointHandler,
		breakpoints:       make(map[uint32]*Breakpoint),
		dataBreakpoints:   make(map[uint32]*DataBreakpoint),
	}
}

// GetBreakpoint looks up a breakpoint by address and returns it if
// found. Otherwise it returns nil.
func (d *Debugger) GetBreakpoint(addr uint32) *Breakpoint {
	if b, ok := d.breakpoints[addr]; ok {
		return b
	}
	return nil
}

// GetBreakpoints returns all breakpoints currently set in the
// debugger, ordered by address.
func (d *Debugger) GetBreakpoints() []*Breakpoint {
	var breakpoints []*Breakpoint
	for _, b := range d.breakpoints {
		breakpoints = append(breakpoints, b)
	}
	sort.Slice(breakpoints, func(i, j int) bool {
		return breakpoints[i].Address < breakpoints[j].Address
	})
	return breakpoints
}

// AddBreakpoint adds a new breakpoint address to the debugger. If the
// breakpoint was already set, the request is ignored.
func (d *Debugger) AddBreakpoint(addr uint32) *Breakpoint {
	b := &Breakpoint{Address: addr}
	d.breakpoints[addr] = b
	return b
}

// RemoveBreakpoint removes a breakpoint from the debugger.
func (d *Debugger) RemoveBreakpoint(addr uint32) {
	delete(d.breakpoints, addr)
}

// GetDataBreakpoint looks up a data breakpoint on the provided address
// and returns it if found. Otherwise it returns nil.
func (d *Debugger) GetDataBreakpoint(addr uint32) *DataBreakpoint {
	if b, ok := d.dataBreakpoints[addr]; ok {
		return b
	}
	return nil
}

// GetDataBreakpoints returns all data breakpoints currently set in the
// debugger, ordered by address.
func (d *Debugger) GetDataBreakpoints() []*DataBreakpoint {
	var breakpoints []*DataBreakpoint
	for _, b := range d.dataBreakpoints {
		breakpoints = append(breakpoints, b)
	}
	sort.Slice(breakpoints, func(i, j int) bool {
		return breakpoints[i].Address < breakpoints[j].Address
	})
	return breakpoints
}

// AddDataBreakpoint adds an unconditional data breakpoint on the
// requested address.
func (d *Debugger) AddDataBreakpoint(addr uint32) *DataBreakpoint {
	b := &DataBreakpoint{Address: addr}
	d.dataBreakpoints[addr] = b
	return b
}

// AddConditionalDataBreakpoint adds a conditional data breakpoint on
// the requested address.
func (d *Debugger) AddConditionalDataBreakpoint(addr, value uint32) {
	d.dataBreakpoints[addr] = &DataBreakpoint{
		Address:     addr,
		Conditional: true,
		Value:       value,
	}
}

// RemoveDataBreakpoint removes a (conditional or unconditional) data
// breakpoint at the requested address.
func (d *Debugger) RemoveDataBreakpoint(addr uint32) {
	delete(d.dataBreakpoints, addr)
}

func (d *Debugger) onUpdatePC(c *CPU, addr uint32) {
	if d.breakpointHandler != nil {
		if b, ok := d.breakpoints[addr]; ok && !b.Disabled {
			d.breakpointHandler.OnBreakpoint(c, b)
		}
	}
}

func (d *Debugger) onDataStore(c *CPU, addr uint32, v uint32) {
	if d.breakpointHandler != nil {
		if b, ok := d.dataBreakpoints[addr]; ok && !b.Disabled {
			if !b.Conditional || b.Value == v {
				d.breakpointHandler.OnDataBreakpoint(c, b)
			}
		}
	}
}
