package synacor

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Load reads a program image as consecutive little-endian 16-bit words and
// installs it starting at address 0. Cells beyond the image remain zero.
// The image must be an even number of bytes and must not exceed memSize
// words; either violation is reported without touching the Machine's
// memory.
func (m *Machine) Load(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	if len(raw)%2 != 0 {
		return ErrImageTruncated
	}
	words := len(raw) / 2
	if words > memSize {
		return fmt.Errorf("%w: image has %d words, max %d", ErrImageTooLarge, words, memSize)
	}

	for i := 0; i < words; i++ {
		m.mem[i] = binary.LittleEndian.Uint16(raw[2*i : 2*i+2])
	}
	for i := words; i < memSize; i++ {
		m.mem[i] = 0
	}
	m.pc = 0
	return nil
}
