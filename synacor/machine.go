// Package synacor implements the Synacor Challenge virtual machine: a
// 15-bit address-space CPU with eight registers, an auxiliary stack, and a
// 22-opcode instruction set. It loads a little-endian program image,
// executes it to completion, and performs character I/O against the
// supplied Terminal.
package synacor

import "bufio"

const (
	numRegisters = 8
	memSize      = 1 << 15 // 32768 15-bit addressable cells
	maxValue     = 1<<15 - 1
	overflow     = 1 << 15
	regBase      = overflow     // first operand word denoting a register
	regLimit     = regBase + numRegisters
)

// stack is an unbounded LIFO of 16-bit values. It is a distinct type, not
// a bare slice field on Machine, so that push/pop/empty are the only ways
// to touch it anywhere in the executor.
type stack struct {
	data []uint16
}

func (s *stack) push(v uint16) {
	s.data = append(s.data, v)
}

func (s *stack) pop() (uint16, bool) {
	if len(s.data) == 0 {
		return 0, false
	}
	top := len(s.data) - 1
	v := s.data[top]
	s.data = s.data[:top]
	return v, true
}

func (s *stack) empty() bool {
	return len(s.data) == 0
}

func (s *stack) depth() int {
	return len(s.data)
}

// Machine is one instance of VM state: memory, registers, stack, program
// counter, and the terminal it talks to. A Machine is owned exclusively by
// whoever calls Run and must not be reused across runs.
type Machine struct {
	mem [memSize]uint16
	reg [numRegisters]uint16
	pc  uint16
	stk stack

	term  Terminal
	out   *bufio.Writer
	in    *bufio.Reader
	inbuf []byte

	tracer Tracer
	steps  uint64 // instructions executed, diagnostics only
}

// New returns a Machine with zeroed memory, registers and stack, ready for
// Load followed by Run. term supplies the character I/O channel; passing
// nil uses StdTerminal.
func New(term Terminal) *Machine {
	if term == nil {
		term = StdTerminal()
	}
	m := &Machine{term: term}
	m.out = bufio.NewWriter(term.Output())
	m.in = bufio.NewReader(term.Input())
	return m
}

// Steps returns the number of instructions executed so far. Diagnostics
// only; it is not part of the architectural state in section 3.
func (m *Machine) Steps() uint64 {
	return m.steps
}

// PC returns the current program counter. Diagnostics only.
func (m *Machine) PC() uint16 {
	return m.pc
}

// Register returns the current value of register i. It is exported for
// tests and for diagnostic tooling; guest programs never call it directly.
func (m *Machine) Register(i int) uint16 {
	return m.reg[i]
}

// MemoryAt returns the value stored at addr.
func (m *Machine) MemoryAt(addr uint16) uint16 {
	return m.mem[addr]
}

// StackDepth returns the number of values currently on the stack.
func (m *Machine) StackDepth() int {
	return m.stk.depth()
}

// StackEmpty reports whether the stack is empty, without mutating it.
func (m *Machine) StackEmpty() bool {
	return m.stk.empty()
}

func (m *Machine) readValue(w uint16) (uint16, error) {
	if w <= maxValue {
		return w, nil
	}
	if w < regLimit {
		return m.reg[w-regBase], nil
	}
	return 0, ErrInvalidOperand
}

func (m *Machine) readRegister(w uint16) (uint16, error) {
	if w >= regBase && w < regLimit {
		return w - regBase, nil
	}
	return 0, ErrExpectedRegister
}
