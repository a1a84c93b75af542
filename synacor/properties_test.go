package synacor

import (
	"bytes"
	"math/rand"
	"testing"
)

// TestArithmeticIsModular checks property 7 from the specification: add and
// mult results equal (b+c) mod 32768 and (b*c) mod 32768 for values drawn
// from the full 15-bit domain.
func TestArithmeticIsModular(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		b := uint16(rng.Intn(overflow))
		c := uint16(rng.Intn(overflow))

		m := New(newMemTerminal(""))
		// add R0, b, c; halt
		mustLoad(t, m, uint16(Add), 32768, b, c, 0)
		if _, err := runToCompletion(t, m); err != nil {
			t.Fatalf("add %d+%d: %v", b, c, err)
		}
		want := uint16((uint32(b) + uint32(c)) % overflow)
		if got := m.Register(0); got != want {
			t.Fatalf("add %d+%d = %d, want %d", b, c, got, want)
		}

		m2 := New(newMemTerminal(""))
		mustLoad(t, m2, uint16(Mult), 32768, b, c, 0)
		if _, err := runToCompletion(t, m2); err != nil {
			t.Fatalf("mult %d*%d: %v", b, c, err)
		}
		want2 := uint16((uint32(b) * uint32(c)) % overflow)
		if got := m2.Register(0); got != want2 {
			t.Fatalf("mult %d*%d = %d, want %d", b, c, got, want2)
		}
	}
}

// TestPushPopRoundTripProperty checks property 5: push v; pop r leaves
// R[r]=v and restores stack depth, for random values and registers.
func TestPushPopRoundTripProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		v := uint16(rng.Intn(overflow))
		r := uint16(rng.Intn(numRegisters))

		m := New(newMemTerminal(""))
		mustLoad(t, m, uint16(Push), v, uint16(Pop), regBase+r, 0)
		depthBefore := m.StackDepth()
		if _, err := runToCompletion(t, m); err != nil {
			t.Fatalf("push/pop: %v", err)
		}
		if got := m.Register(int(r)); got != v {
			t.Fatalf("R[%d] = %d, want %d", r, got, v)
		}
		if m.StackDepth() != depthBefore {
			t.Fatalf("stack depth = %d, want %d", m.StackDepth(), depthBefore)
		}
	}
}

// TestNotInvolutionProperty checks property 6 for random 15-bit values.
func TestNotInvolutionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		v := uint16(rng.Intn(overflow))
		m := New(newMemTerminal(""))
		mustLoad(t, m,
			uint16(Not), 32768, v,
			uint16(Not), 32769, 32768,
			0,
		)
		if _, err := runToCompletion(t, m); err != nil {
			t.Fatalf("not/not: %v", err)
		}
		if got := m.Register(1); got != v {
			t.Fatalf("not(not(%d)) = %d, want %d", v, got, v)
		}
	}
}

// TestCallRetPreservesPCAndStack checks property 8: call immediately
// followed by ret leaves PC at the address after the call and stack depth
// unchanged.
func TestCallRetPreservesPCAndStack(t *testing.T) {
	m := New(newMemTerminal(""))
	// call 4 (the ret at address 4); halt at 2 and 3; at address 4: ret; then halt
	mustLoad(t, m, uint16(Call), 4, 0, 0, uint16(Ret), 0)
	depthBefore := m.StackDepth()
	if _, err := m.step(); err != nil { // executes call
		t.Fatalf("call: %v", err)
	}
	if m.pc != 4 {
		t.Fatalf("pc after call = %d, want 4", m.pc)
	}
	if _, err := m.step(); err != nil { // executes ret
		t.Fatalf("ret: %v", err)
	}
	if m.pc != 2 {
		t.Fatalf("pc after ret = %d, want 2 (address after call)", m.pc)
	}
	if m.StackDepth() != depthBefore {
		t.Fatalf("stack depth = %d, want %d", m.StackDepth(), depthBefore)
	}
}

// TestInvariantValuesStayInDomain checks property 1 across a representative
// run: every register and memory cell written stays within [0, 32768).
func TestInvariantValuesStayInDomain(t *testing.T) {
	m := New(newMemTerminal(""))
	mustLoad(t, m,
		uint16(Not), 32768, 0, // R0 = ~0 & 0x7FFF = 32767
		uint16(Add), 32769, 32768, 32768, // R1 = (R0+R0) mod 32768
		uint16(Wmem), 100, 32769, // MEM[100] = R1
		0,
	)
	if _, err := runToCompletion(t, m); err != nil {
		t.Fatalf("run: %v", err)
	}
	for i := 0; i < numRegisters; i++ {
		if v := m.Register(i); v >= overflow {
			t.Fatalf("R[%d] = %d out of domain", i, v)
		}
	}
	if v := m.MemoryAt(100); v >= overflow {
		t.Fatalf("MEM[100] = %d out of domain", v)
	}
}

func mustLoad(t *testing.T, m *Machine, words ...uint16) {
	t.Helper()
	if err := m.Load(bytes.NewReader(encode(words...))); err != nil {
		t.Fatalf("Load: %v", err)
	}
}
