package hwreg

import "sync"

// Mem is a RAM-backed register block. It stands in for the peripheral during
// tests and simulated capture runs, and doubles as a scratch model when
// bringing up new register sequences.
type Mem struct {
	mu   sync.Mutex
	regs map[uint32]uint32
	w1c  map[uint32]bool
}

// NewMem returns an empty RAM-backed block; unwritten registers read as zero.
func NewMem() *Mem {
	return &Mem{
		regs: make(map[uint32]uint32),
		w1c:  make(map[uint32]bool),
	}
}

func (m *Mem) Read(offset uint32) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[offset]
}

func (m *Mem) Write(offset uint32, value uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.w1c[offset] {
		m.regs[offset] &^= value
		return
	}
	m.regs[offset] = value
}

// MarkW1C gives offsets write-one-to-clear semantics: a write clears the
// bits set in the value instead of storing it, the way hardware status
// registers acknowledge conditions.
func (m *Mem) MarkW1C(offsets ...uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, off := range offsets {
		m.w1c[off] = true
	}
}

// SetBits ORs value into a register. Test hook for raising status bits the
// way the peripheral would.
func (m *Mem) SetBits(offset uint32, value uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[offset] |= value
}
