package synacor

import "context"

// RunStatus is the terminal status of a completed Run.
type RunStatus int

const (
	// StatusHalted means the program executed an explicit halt, or a ret
	// against an empty stack.
	StatusHalted RunStatus = iota
	// StatusEndOfMemory means the program counter walked past the end of
	// the 32768-cell address space without an explicit halt.
	StatusEndOfMemory
	// StatusCanceled means the run was stopped by the caller's context
	// between two instructions; this is outer-loop housekeeping (section
	// 5), not an architectural halt or fault.
	StatusCanceled
)

func (s RunStatus) String() string {
	switch s {
	case StatusHalted:
		return "halted"
	case StatusEndOfMemory:
		return "end-of-memory"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Tracer receives one call per executed instruction when set with
// SetTracer. It exists purely for operator-facing diagnostics (the
// command-line front end's -trace flag); it cannot affect VM state and is
// never exposed to the guest program.
type Tracer interface {
	TraceStep(pc uint16, op Opcode, operands []uint16)
}

// SetTracer installs t to observe every executed instruction. Pass nil to
// disable tracing.
func (m *Machine) SetTracer(t Tracer) {
	m.tracer = t
}

// Run executes instructions until the VM halts, walks off the end of
// memory, faults, or ctx is canceled. It always flushes any buffered
// output before returning, on every exit path.
func (m *Machine) Run(ctx context.Context) (RunStatus, error) {
	defer m.Flush()

	for {
		select {
		case <-ctx.Done():
			return StatusCanceled, nil
		default:
		}

		if m.pc >= memSize {
			return StatusEndOfMemory, nil
		}

		halt, err := m.step()
		if err != nil {
			return 0, err
		}
		if halt {
			return StatusHalted, nil
		}
	}
}

// step executes exactly one instruction. It returns halt=true when the
// program should stop cleanly (halt opcode, or ret against an empty
// stack), and a non-nil error (always a *Fault) on any other terminal
// condition.
func (m *Machine) step() (halt bool, err error) {
	pc := m.pc
	opWord := m.mem[pc]
	op := Opcode(opWord)
	if !op.valid() {
		return false, newFault(ErrUnknownOpcode, pc, opWord)
	}

	n := argCount[op]
	if int(pc)+1+int(n) > memSize {
		return false, newFault(ErrAddressOutOfRange, pc, opWord)
	}
	args := m.mem[pc+1 : pc+1+n]

	if m.tracer != nil {
		m.tracer.TraceStep(pc, op, args)
	}

	m.steps++
	next := pc + 1 + n

	switch op {
	case Halt:
		return true, nil

	case Set:
		r, err := m.readRegister(args[0])
		if err != nil {
			return false, newFault(err, pc, args[0])
		}
		v, err := m.readValue(args[1])
		if err != nil {
			return false, newFault(err, pc, args[1])
		}
		m.reg[r] = v

	case Push:
		v, err := m.readValue(args[0])
		if err != nil {
			return false, newFault(err, pc, args[0])
		}
		m.stk.push(v)

	case Pop:
		r, err := m.readRegister(args[0])
		if err != nil {
			return false, newFault(err, pc, args[0])
		}
		v, ok := m.stk.pop()
		if !ok {
			return false, newFault(ErrStackUnderflow, pc, opWord)
		}
		m.reg[r] = v

	case Eq, Gt:
		r, err := m.readRegister(args[0])
		if err != nil {
			return false, newFault(err, pc, args[0])
		}
		b, err := m.readValue(args[1])
		if err != nil {
			return false, newFault(err, pc, args[1])
		}
		c, err := m.readValue(args[2])
		if err != nil {
			return false, newFault(err, pc, args[2])
		}
		var cond bool
		if op == Eq {
			cond = b == c
		} else {
			cond = b > c
		}
		m.reg[r] = boolWord(cond)

	case Jmp:
		target, err := m.readValue(args[0])
		if err != nil {
			return false, newFault(err, pc, args[0])
		}
		m.pc = target
		return false, nil

	case Jt, Jf:
		b, err := m.readValue(args[0])
		if err != nil {
			return false, newFault(err, pc, args[0])
		}
		// The target is always resolved, even on the branch not taken,
		// per the architecture's uniform value-resolver semantics.
		target, err := m.readValue(args[1])
		if err != nil {
			return false, newFault(err, pc, args[1])
		}
		take := b != 0
		if op == Jf {
			take = b == 0
		}
		if take {
			m.pc = target
			return false, nil
		}

	case Add, Mult, Mod, And, Or:
		r, err := m.readRegister(args[0])
		if err != nil {
			return false, newFault(err, pc, args[0])
		}
		b, err := m.readValue(args[1])
		if err != nil {
			return false, newFault(err, pc, args[1])
		}
		c, err := m.readValue(args[2])
		if err != nil {
			return false, newFault(err, pc, args[2])
		}
		switch op {
		case Add:
			m.reg[r] = uint16((uint32(b) + uint32(c)) % overflow)
		case Mult:
			m.reg[r] = uint16((uint32(b) * uint32(c)) % overflow)
		case Mod:
			if c == 0 {
				return false, newFault(ErrDivideByZero, pc, opWord)
			}
			m.reg[r] = b % c
		case And:
			m.reg[r] = b & c
		case Or:
			m.reg[r] = b | c
		}

	case Not:
		r, err := m.readRegister(args[0])
		if err != nil {
			return false, newFault(err, pc, args[0])
		}
		b, err := m.readValue(args[1])
		if err != nil {
			return false, newFault(err, pc, args[1])
		}
		m.reg[r] = (^b) & maxValue

	case Rmem:
		r, err := m.readRegister(args[0])
		if err != nil {
			return false, newFault(err, pc, args[0])
		}
		addr, err := m.readValue(args[1])
		if err != nil {
			return false, newFault(err, pc, args[1])
		}
		if int(addr) >= memSize {
			return false, newFault(ErrAddressOutOfRange, pc, addr)
		}
		m.reg[r] = m.mem[addr]

	case Wmem:
		addr, err := m.readValue(args[0])
		if err != nil {
			return false, newFault(err, pc, args[0])
		}
		if int(addr) >= memSize {
			return false, newFault(ErrAddressOutOfRange, pc, addr)
		}
		v, err := m.readValue(args[1])
		if err != nil {
			return false, newFault(err, pc, args[1])
		}
		m.mem[addr] = v

	case Call:
		target, err := m.readValue(args[0])
		if err != nil {
			return false, newFault(err, pc, args[0])
		}
		m.stk.push(next)
		m.pc = target
		return false, nil

	case Ret:
		ret, ok := m.stk.pop()
		if !ok {
			return true, nil
		}
		m.pc = ret
		return false, nil

	case Out:
		c, err := m.readValue(args[0])
		if err != nil {
			return false, newFault(err, pc, args[0])
		}
		if err := m.emit(c); err != nil {
			return false, newFault(wrapIOError(err), pc, opWord)
		}

	case In:
		r, err := m.readRegister(args[0])
		if err != nil {
			return false, newFault(err, pc, args[0])
		}
		c, err := m.nextInputChar()
		if err != nil {
			return false, newFault(wrapIOError(err), pc, opWord)
		}
		m.reg[r] = c

	case Noop:
		// advance only

	default:
		return false, newFault(ErrUnknownOpcode, pc, opWord)
	}

	m.pc = next
	return false, nil
}

func boolWord(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
