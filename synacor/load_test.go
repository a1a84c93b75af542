package synacor

import (
	"bytes"
	"errors"
	"testing"
)

func TestLoadOddLengthIsTruncated(t *testing.T) {
	m := New(newMemTerminal(""))
	err := m.Load(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
	if !errors.Is(err, ErrImageTruncated) {
		t.Fatalf("err = %v, want ErrImageTruncated", err)
	}
}

func TestLoadExactlyFullImageSucceeds(t *testing.T) {
	m := New(newMemTerminal(""))
	words := make([]uint16, memSize)
	for i := range words {
		words[i] = uint16(Noop)
	}
	if err := m.Load(bytes.NewReader(encode(words...))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.MemoryAt(memSize - 1) != uint16(Noop) {
		t.Fatalf("last cell = %d, want Noop", m.MemoryAt(memSize-1))
	}
}

func TestLoadOversizeImageFails(t *testing.T) {
	m := New(newMemTerminal(""))
	words := make([]uint16, memSize+1)
	err := m.Load(bytes.NewReader(encode(words...)))
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("err = %v, want ErrImageTooLarge", err)
	}
}

func TestLoadZeroFillsBeyondImage(t *testing.T) {
	m := New(newMemTerminal(""))
	if err := m.Load(bytes.NewReader(encode(19, 65, 0))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.MemoryAt(10) != 0 {
		t.Fatalf("cell 10 = %d, want 0", m.MemoryAt(10))
	}
}
