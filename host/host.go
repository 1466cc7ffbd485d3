// Copyright 2025 The gorv32 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host allows you to create a "host" that emulates a computer
// system with an RV32 CPU, 64K of memory, a built-in assembler, a
// built-in debugger, and other useful tools.
//
// Within the host it is possible to assemble and load machine code into
// memory, debug and step through machine code, measure the number of
// instructions executed, set address and data breakpoints, dump the
// contents of memory, disassemble the contents of memory, and
// manipulate CPU registers and memory.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/beevik/cmd"
	"github.com/gorv32/gorv32/asm"
	"github.com/gorv32/gorv32/cpu"
	"github.com/gorv32/gorv32/disasm"
)

var cmds *cmd.Tree

func init() {
	// Create a command tree, where the parameter stored with each command is
	// a host callback capable of handling the command.
	cmds = cmd.NewTree("gorv32", []cmd.Command{
		{
			Name:     "help",
			Shortcut: "?",
			Data:     (*Host).cmdHelp,
		},
		{
			Name:     "assemble",
			Shortcut: "a",
			Brief:    "Assemble a file and load the binary",
			Description: "Run the assembler on the specified file, producing" +
				" a binary file if successful. The machine code is also loaded" +
				" into memory at address 0, and the program's labels become" +
				" available as addresses in other commands.",
			HelpText: "assemble <filename>",
			Data:     (*Host).cmdAssemble,
		},
		{
			Name:     "breakpoint",
			Shortcut: "b",
			Brief:    "Breakpoint commands",
			Subcommands: cmd.NewTree("Breakpoint", []cmd.Command{
				{
					Name:        "list",
					Brief:       "List breakpoints",
					Description: "List all current breakpoints.",
					HelpText:    "breakpoint list",
					Data:        (*Host).cmdBreakpointList,
				},
				{
					Name:  "add",
					Brief: "Add a breakpoint",
					Description: "Add a breakpoint at the specified address." +
						" The breakpoint starts enabled.",
					HelpText: "breakpoint add <address>",
					Data:     (*Host).cmdBreakpointAdd,
				},
				{
					Name:        "remove",
					Brief:       "Remove a breakpoint",
					Description: "Remove a breakpoint at the specified address.",
					HelpText:    "breakpoint remove <address>",
					Data:        (*Host).cmdBreakpointRemove,
				},
				{
					Name:        "enable",
					Brief:       "Enable a breakpoint",
					Description: "Enable a previously added breakpoint.",
					HelpText:    "breakpoint enable <address>",
					Data:        (*Host).cmdBreakpointEnable,
				},
				{
					Name:  "disable",
					Brief: "Disable a breakpoint",
					Description: "Disable a previously added breakpoint. This" +
						" prevents the breakpoint from being hit when running the" +
						" CPU.",
					HelpText: "breakpoint disable <address>",
					Data:     (*Host).cmdBreakpointDisable,
				},
			}),
		},
		{
			Name:     "databreakpoint",
			Shortcut: "db",
			Brief:    "Data breakpoint commands",
			Subcommands: cmd.NewTree("Data breakpoint", []cmd.Command{
				{
					Name:        "list",
					Brief:       "List data breakpoints",
					Description: "List all current data breakpoints.",
					HelpText:    "databreakpoint list",
					Data:        (*Host).cmdDataBreakpointList,
				},
				{
					Name:  "add",
					Brief: "Add a data breakpoint",
					Description: "Add a new data breakpoint at the specified" +
						" memory address. When the CPU stores a word at this" +
						" address, the breakpoint will stop the CPU. Optionally," +
						" a word value may be specified, and the CPU will stop" +
						" only when this value is stored. The data breakpoint" +
						" starts enabled.",
					HelpText: "databreakpoint add <address> [<value>]",
					Data:     (*Host).cmdDataBreakpointAdd,
				},
				{
					Name:  "remove",
					Brief: "Remove a data breakpoint",
					Description: "Remove a previously added data breakpoint at" +
						" the specified memory address.",
					HelpText: "databreakpoint remove <address>",
					Data:     (*Host).cmdDataBreakpointRemove,
				},
				{
					Name:        "enable",
					Brief:       "Enable a data breakpoint",
					Description: "Enable a previously added data breakpoint.",
					HelpText:    "databreakpoint enable <address>",
					Data:        (*Host).cmdDataBreakpointEnable,
				},
				{
					Name:        "disable",
					Brief:       "Disable a data breakpoint",
					Description: "Disable a previously added data breakpoint.",
					HelpText:    "databreakpoint disable <address>",
					Data:        (*Host).cmdDataBreakpointDisable,
				},
			}),
		},
		{
			Name:     "disassemble",
			Shortcut: "d",
			Brief:    "Disassemble code",
			Description: "Disassemble machine code starting at the requested" +
				" address. The number of instructions to disassemble may be" +
				" specified as an option.",
			HelpText: "disassemble <address> [<count>]",
			Data:     (*Host).cmdDisassemble,
		},
		{
			Name:  "labels",
			Brief: "List label addresses",
			Description: "Display a list of all labels defined by the most" +
				" recently assembled program, along with their addresses.",
			HelpText: "labels",
			Data:     (*Host).cmdLabels,
		},
		{
			Name:  "load",
			Brief: "Load a binary file",
			Description: "Load the contents of a binary file into the emulated" +
				" system's memory. The file must contain machine code produced" +
				" by the assembler. The load address may be specified as an" +
				" option; it defaults to 0.",
			HelpText: "load <filename> [<address>]",
			Data:     (*Host).cmdLoad,
		},
		{
			Name:  "memory",
			Brief: "Memory commands",
			Subcommands: cmd.NewTree("Memory", []cmd.Command{
				{
					Name:  "dump",
					Brief: "Dump memory at address",
					Description: "Dump the contents of memory starting from the" +
						" specified address. The number of bytes to dump may be" +
						" specified as an option.",
					HelpText: "memory dump <address> [<bytes>]",
					Data:     (*Host).cmdMemoryDump,
				},
			}),
		},
		{
			Name:        "quit",
			Brief:       "Quit the program",
			Description: "Quit the program.",
			HelpText:    "quit",
			Data:        (*Host).cmdQuit,
		},
		{
			Name:     "registers",
			Shortcut: "r",
			Brief:    "Display register contents",
			Description: "Display the current contents of all CPU registers, and" +
				" disassemble the instruction at the current program counter" +
				" address.",
			HelpText: "registers",
			Data:     (*Host).cmdRegisters,
		},
		{
			Name:  "run",
			Brief: "Run the CPU",
			Description: "Run the CPU until it halts, a breakpoint is hit, or" +
				" the user types Ctrl-C.",
			HelpText: "run [<address>]",
			Data:     (*Host).cmdRun,
		},
		{
			Name:  "set",
			Brief: "Set a register or configuration variable",
			Description: "Set the value of a register or configuration" +
				" variable. Type the set command without a variable name or" +
				" value to display the current values of all configuration" +
				" variables.",
			HelpText: "set <var> <value>",
			Data:     (*Host).cmdSet,
		},
		{
			Name:  "step",
			Brief: "Step the debugger",
			Subcommands: cmd.NewTree("Step", []cmd.Command{
				{
					Name:  "in",
					Brief: "Step into next instruction",
					Description: "Step the CPU by a single instruction. If the" +
						" instruction is a subroutine call, step into the" +
						" subroutine. The number of steps may be specified as an" +
						" option.",
					HelpText: "step in [<count>]",
					Data:     (*Host).cmdStepIn,
				},
				{
					Name:  "over",
					Brief: "Step over next instruction",
					Description: "Step the CPU by a single instruction. If the" +
						" instruction is a subroutine call, step over the" +
						" subroutine. The number of steps may be specified as an" +
						" option.",
					HelpText: "step over [<count>]",
					Data:     (*Host).cmdStepOver,
				},
			}),
		},

		// Aliases for nested commands
		{Name: "ba", Alias: "breakpoint add"},
		{Name: "br", Alias: "breakpoint remove"},
		{Name: "bl", Alias: "breakpoint list"},
		{Name: "be", Alias: "breakpoint enable"},
		{Name: "bd", Alias: "breakpoint disable"},
		{Name: "dbl", Alias: "databreakpoint list"},
		{Name: "dba", Alias: "databreakpoint add"},
		{Name: "dbr", Alias: "databreakpoint remove"},
		{Name: "dbe", Alias: "databreakpoint enable"},
		{Name: "dbd", Alias: "databreakpoint disable"},
		{Name: "m", Alias: "memory dump"},
		{Name: "s", Alias: "step over"},
		{Name: "si", Alias: "step in"},
	})
}

type displayFlags uint8

const (
	displayRegisters displayFlags = 1 << iota
	displayCycles

	displayAll = displayRegisters | displayCycles
)

type state byte

const (
	stateProcessingCommands state = iota
	stateRunning
	stateBreakpoint
	stateStepOverBreakpoint
)

// A Host represents a fully emulated RV32 system, 64K of memory, a
// built-in assembler, a built-in debugger, and other useful tools.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	mem         *cpu.FlatMemory
	cpu         *cpu.CPU
	debugger    *cpu.Debugger
	lastCmd     *cmd.Selection
	state       state
	settings    *settings
	labels      map[string]uint32
}

// New creates a new RV32 host environment.
func New() *Host {
	h := &Host{
		state:    stateProcessingCommands,
		settings: newSettings(),
		labels:   make(map[string]uint32),
	}

	// Create the emulated CPU and memory.
	h.mem = cpu.NewFlatMemory()
	h.cpu = cpu.New(h.mem)

	// Create a CPU debugger and attach it to the CPU.
	h.debugger = cpu.NewDebugger(newDebugHandler(h))
	h.cpu.AttachDebugger(h.debugger)

	return h
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	if interactive {
		h.println()
	}

	h.displayPC()

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c cmd.Selection
		if line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}
		h.lastCmd = &c

		handler := c.Command.Data.(func(*Host, cmd.Selection) error)
		err = handler(h, c)
		if err != nil {
			break
		}
	}
}

// AssembleFile assembles a source file and writes the machine code to
// a .bin file alongside it.
func (h *Host) AssembleFile(filename string) error {
	return asm.AssembleFile(filename, 0, os.Stdout)
}

// Break interrupts a running CPU.
func (h *Host) Break() {
	h.println()

	if h.state == stateRunning {
		h.displayPC()
	}
	if h.state == stateProcessingCommands {
		h.prompt()
	}
	h.state = stateProcessingCommands
}

func (h *Host) print(args ...any) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
		h.flush()
	}
}

func (h *Host) displayPC() {
	if h.interactive {
		d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
		h.println(d)
	}
}

func (h *Host) cmdAssemble(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".asm"
	}

	file, err := os.Open(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		return nil
	}
	defer file.Close()

	assembly, err := asm.Assemble(file, h.output, 0)
	if err != nil {
		h.printf("Failed to assemble '%s':\n", filepath.Base(filename))
		h.println(err)
		return nil
	}

	file.Close()

	ext := filepath.Ext(filename)
	filePrefix := filename[0 : len(filename)-len(ext)]
	binFilename := filePrefix + ".bin"
	file, err = os.OpenFile(binFilename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		h.printf("Failed to create '%s': %v\n", filepath.Base(binFilename), err)
		return nil
	}

	_, err = assembly.WriteTo(file)
	if err != nil {
		h.printf("Failed to save '%s': %v\n", filepath.Base(binFilename), err)
		return nil
	}

	file.Close()

	h.printf("Assembled '%s' to '%s'.\n", filepath.Base(filename), filepath.Base(binFilename))

	// Load the machine code into memory and make the program's labels
	// available to other commands.
	code := assembly.Bytes()
	h.mem.StoreBytes(0, code)
	h.labels = assembly.Labels
	h.cpu.SetPC(0)
	h.printf("Loaded %d instructions at $00000000.\n", len(assembly.Code))

	return nil
}

func (h *Host) cmdBreakpointList(c cmd.Selection) error {
	h.println("Addr      Enabled")
	h.println("--------- -------")
	for _, b := range h.debugger.GetBreakpoints() {
		h.printf("$%08X %v\n", b.Address, !b.Disabled)
	}
	return nil
}

func (h *Host) cmdBreakpointAdd(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.debugger.AddBreakpoint(addr)
	h.printf("Breakpoint added at $%08X.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointRemove(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if h.debugger.GetBreakpoint(addr) == nil {
		h.printf("No breakpoint was set on $%08X.\n", addr)
		return nil
	}

	h.debugger.RemoveBreakpoint(addr)
	h.printf("Breakpoint at $%08X removed.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointEnable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on $%08X.\n", addr)
		return nil
	}

	b.Disabled = false
	h.printf("Breakpoint at $%08X enabled.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointDisable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on $%08X.\n", addr)
		return nil
	}

	b.Disabled = true
	h.printf("Breakpoint at $%08X disabled.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointList(c cmd.Selection) error {
	h.println("Addr      Enabled  Value")
	h.println("--------- -------  -----")
	for _, b := range h.debugger.GetDataBreakpoints() {
		if b.Conditional {
			h.printf("$%08X %-5v    $%08X\n", b.Address, !b.Disabled, b.Value)
		} else {
			h.printf("$%08X %-5v    <none>\n", b.Address, !b.Disabled)
		}
	}
	return nil
}

func (h *Host) cmdDataBreakpointAdd(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if len(c.Args) > 1 {
		value, err := h.parseAddr(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.debugger.AddConditionalDataBreakpoint(addr, value)
		h.printf("Conditional data breakpoint added at $%08X for value $%08X.\n", addr, value)
	} else {
		h.debugger.AddDataBreakpoint(addr)
		h.printf("Data breakpoint added at $%08X.\n", addr)
	}

	return nil
}

func (h *Host) cmdDataBreakpointRemove(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if h.debugger.GetDataBreakpoint(addr) == nil {
		h.printf("No data breakpoint was set on $%08X.\n", addr)
		return nil
	}

	h.debugger.RemoveDataBreakpoint(addr)
	h.printf("Data breakpoint at $%08X removed.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointEnable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on $%08X.\n", addr)
		return nil
	}

	b.Disabled = false
	h.printf("Data breakpoint at $%08X enabled.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointDisable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on $%08X.\n", addr)
		return nil
	}

	b.Disabled = true
	h.printf("Data breakpoint at $%08X disabled.\n", addr)
	return nil
}

func (h *Host) cmdDisassemble(c cmd.Selection) error {
	if len(c.Args) == 0 {
		c.Args = []string{"$"}
	}

	var addr uint32
	switch c.Args[0] {
	case "$":
		addr = h.settings.NextDisasmAddr
		if addr == 0 {
			addr = h.cpu.Reg.PC
		}

	case ".":
		addr = h.cpu.Reg.PC

	default:
		a, err := h.parseAddr(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	lines := h.settings.DisasmLines
	if len(c.Args) > 1 {
		l, err := parseUint32(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = int(l)
	}

	for i := 0; i < lines; i++ {
		d, next := h.disassemble(addr, 0)
		h.println(d)
		addr = next
	}

	h.settings.NextDisasmAddr = addr
	h.lastCmd.Args = []string{"$", fmt.Sprintf("%d", lines)}
	return nil
}

func (h *Host) cmdLabels(c cmd.Selection) error {
	if len(h.labels) == 0 {
		h.println("No labels defined.")
		return nil
	}

	names := make([]string, 0, len(h.labels))
	for name := range h.labels {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return h.labels[names[i]] < h.labels[names[j]]
	})

	for _, name := range names {
		h.printf("%-16s $%08X\n", name, h.labels[name])
	}
	return nil
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	switch {
	case len(c.Args) == 0:
		h.displayCommands(cmds)
	default:
		s, err := cmds.Lookup(strings.Join(c.Args, " "))
		if err != nil {
			h.printf("%v\n", err)
		} else {
			switch {
			case s.Command.Subcommands != nil:
				h.displayCommands(s.Command.Subcommands)
			default:
				if s.Command.HelpText != "" {
					h.printf("Syntax: %s\n\n", s.Command.HelpText)
				}
				switch {
				case s.Command.Description != "":
					h.printf("Description:\n%s\n\n", indentWrap(3, s.Command.Description))
				case s.Command.Brief != "":
					h.printf("Description:\n%s.\n\n", indentWrap(3, s.Command.Brief))
				}
			}
		}
	}
	return nil
}

func (h *Host) cmdLoad(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}

	var loadAddr uint32
	if len(c.Args) >= 2 {
		addr, err := h.parseAddr(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		loadAddr = addr
	}

	return h.load(filename, loadAddr)
}

func (h *Host) cmdMemoryDump(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	var addr uint32
	switch c.Args[0] {
	case "$":
		addr = h.settings.NextMemDumpAddr
		if addr == 0 {
			addr = h.cpu.Reg.PC
		}

	case ".":
		addr = h.cpu.Reg.PC

	default:
		a, err := h.parseAddr(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	bytes := uint32(h.settings.MemDumpBytes)
	if len(c.Args) >= 2 {
		var err error
		bytes, err = parseUint32(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	h.dumpMemory(addr, bytes)

	h.settings.NextMemDumpAddr = addr + bytes
	h.lastCmd.Args = []string{"$", fmt.Sprintf("%d", bytes)}
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errors.New("exiting program")
}

func (h *Host) cmdRegisters(c cmd.Selection) error {
	reg := &h.cpu.Reg
	for i := 0; i < 32; i += 4 {
		h.printf("%-4s=%08X  %-4s=%08X  %-4s=%08X  %-4s=%08X\n",
			cpu.RegisterNames[i], reg.X[i],
			cpu.RegisterNames[i+1], reg.X[i+1],
			cpu.RegisterNames[i+2], reg.X[i+2],
			cpu.RegisterNames[i+3], reg.X[i+3])
	}
	h.printf("pc  =%08X  cycles=%d\n", reg.PC, h.cpu.Cycles)

	d, _ := h.disassemble(reg.PC, 0)
	h.println(d)
	return nil
}

func (h *Host) cmdRun(c cmd.Selection) error {
	if len(c.Args) > 0 {
		pc, err := h.parseAddr(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.cpu.SetPC(pc)
	}

	h.printf("Running from $%08X. Press ctrl-C to break.\n", h.cpu.Reg.PC)

	h.state = stateRunning
	for h.state == stateRunning && !h.cpu.Halted {
		h.step()
	}
	h.state = stateProcessingCommands

	if h.cpu.Halted {
		h.printf("Halted at $%08X after %d cycles.\n", h.cpu.Reg.PC, h.cpu.Cycles)
	}

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayHelpText(c.Command)

	default:
		key, value := strings.ToLower(c.Args[0]), strings.Join(c.Args[1:], " ")
		v, errV := h.parseAddr(value)

		// Setting a register?
		if errV == nil {
			if key == "." || key == "pc" {
				h.cpu.Reg.PC = v
				h.printf("Register pc set to $%08X.\n", v)
				return nil
			}
			if i, ok := cpu.RegisterIndex(key); ok {
				h.cpu.Reg.SetX(i, v)
				h.printf("Register %s set to $%08X.\n", cpu.RegisterNames[i], h.cpu.Reg.X[i])
				return nil
			}
		}

		// Setting a debugger setting?
		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("setting '%s' not found", key)
		case reflect.String:
			err = h.settings.Set(key, value)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			err = errV
			if err == nil {
				err = h.settings.Set(key, v)
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

func (h *Host) cmdStepIn(c cmd.Selection) error {
	// Parse the number of steps.
	count := 1
	if len(c.Args) > 0 {
		n, err := parseUint32(c.Args[0])
		if err == nil {
			count = int(n)
		}
	}

	// Step the CPU count times.
	h.state = stateRunning
	for i := count - 1; i >= 0 && h.state == stateRunning; i-- {
		h.step()
		switch {
		case i == h.settings.MaxStepLines:
			h.println("...")
		case i < h.settings.MaxStepLines:
			h.displayPC()
		}
		if h.cpu.Halted {
			break
		}
	}
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdStepOver(c cmd.Selection) error {
	// Parse the number of steps.
	count := 1
	if len(c.Args) > 0 {
		n, err := parseUint32(c.Args[0])
		if err == nil {
			count = int(n)
		}
	}

	// Step over the next instruction count times.
	h.state = stateRunning
	for i := count - 1; i >= 0 && h.state == stateRunning; i-- {
		h.stepOver()
		switch {
		case i == h.settings.MaxStepLines:
			h.println("...")
		case i < h.settings.MaxStepLines:
			h.displayPC()
		}
		if h.cpu.Halted {
			break
		}
	}
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) load(filename string, addr uint32) error {
	filename, err := filepath.Abs(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		return nil
	}

	file, err := os.Open(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		return nil
	}
	defer file.Close()

	a := &asm.Assembly{}
	_, err = a.ReadFrom(file)
	if err != nil {
		h.printf("Failed to read '%s': %v\n", filepath.Base(filename), err)
		return nil
	}

	file.Close()

	code := a.Bytes()
	h.mem.StoreBytes(addr, code)
	h.printf("Loaded '%s' to $%08X..$%08X\n", filepath.Base(filename),
		addr, addr+uint32(len(code))-1)

	h.cpu.SetPC(addr)
	return nil
}

func (h *Host) step() {
	h.cpu.Step()
}

func (h *Host) stepOver() {
	cpu := h.cpu

	// Subroutine calls need to be handled specially.
	inst := cpu.GetInstruction(cpu.Reg.PC)
	if inst == nil || (inst.Name != "jal" && inst.Name != "jalr") {
		cpu.Step()
		return
	}

	// Place a step-over breakpoint on the instruction following the call.
	// Either modify an already existing breakpoint on that instruction, or
	// create a temporary one.
	next := cpu.Reg.PC + 4
	tmpBreakpointCreated := false
	b := h.debugger.GetBreakpoint(next)
	if b == nil {
		b = h.debugger.AddBreakpoint(next)
		tmpBreakpointCreated = true
	}
	b.StepOver = true

	// Run until interrupted.
	for h.state == stateRunning && !cpu.Halted {
		h.step()
	}
	b.StepOver = false

	// If we were interrupted by the temporary step-over breakpoint,
	// then continue as normal.
	if h.state == stateStepOverBreakpoint {
		h.state = stateRunning
	}

	// Remove the temporarily created breakpoint.
	if tmpBreakpointCreated {
		h.debugger.RemoveBreakpoint(next)
	}
}

// parseAddr resolves an address argument: a label from the most
// recently assembled program, '.' for the current program counter, or
// an integer literal.
func (h *Host) parseAddr(s string) (uint32, error) {
	if addr, ok := h.labels[s]; ok {
		return addr, nil
	}
	if s == "." {
		return h.cpu.Reg.PC, nil
	}
	return parseUint32(s)
}

func (h *Host) disassemble(addr uint32, flags displayFlags) (str string, next uint32) {
	var line string
	line, next = disasm.Disassemble(h.cpu.Mem, addr)

	word := h.cpu.Mem.LoadWord(addr)
	str = fmt.Sprintf("%08X-   %08X    %-24s", addr, word, line)

	if (flags & displayRegisters) != 0 {
		str += " " + disasm.GetRegisterString(&h.cpu.Reg)
	}

	if (flags & displayCycles) != 0 {
		str += fmt.Sprintf(" C=%-12d", h.cpu.Cycles)
	}

	return str, next
}

func (h *Host) dumpMemory(addr0, bytes uint32) {
	if bytes == 0 {
		return
	}

	addr1 := addr0 + bytes - 1
	if addr1 < addr0 {
		addr1 = 0xffffffff
	}

	buf := []byte("        -" + strings.Repeat(" ", 39))

	// Align addr0 and addr1 to 8-byte boundaries.
	start := addr0 &^ 7
	stop := (uint64(addr1) + 8) &^ 7

	a := start
	for r := uint64(start); r < stop; r += 8 {
		addrToBuf(a, buf[0:8])
		for c1, c2 := 10, 36; c1 < 33; c1, c2, a = c1+3, c2+1, a+1 {
			if a >= addr0 && a <= addr1 {
				m := h.cpu.Mem.LoadByte(a)
				byteToBuf(m, buf[c1:c1+2])
				buf[c2] = toPrintableChar(m)
			} else {
				buf[c1] = ' '
				buf[c1+1] = ' '
				buf[c2] = ' '
			}
		}
		h.println(string(buf))
	}
}

func (h *Host) displayHelpText(c *cmd.Command) {
	if c.HelpText != "" {
		h.printf("Syntax: %s\n", c.HelpText)
	} else {
		h.println("<no help text>")
	}
}

func (h *Host) displayCommands(commands *cmd.Tree) {
	h.printf("%s commands:\n", commands.Title)
	for _, c := range commands.Commands {
		if c.Brief != "" {
			h.printf("    %-15s  %s\n", c.Name, c.Brief)
		}
	}
}

func (h *Host) onBreakpoint(cpu *cpu.CPU, b *cpu.Breakpoint) {
	if b.StepOver {
		h.state = stateStepOverBreakpoint
	} else {
		h.state = stateBreakpoint
		h.printf("Breakpoint hit at $%08X.\n", b.Address)
		h.displayPC()
	}
}

func (h *Host) onDataBreakpoint(cpu *cpu.CPU, b *cpu.DataBreakpoint) {
	h.printf("Data breakpoint hit on address $%08X.\n", b.Address)

	h.state = stateBreakpoint

	if cpu.LastPC != cpu.Reg.PC {
		d, _ := h.disassemble(cpu.LastPC, displayAll)
		h.println(d)
	}

	h.displayPC()
}
