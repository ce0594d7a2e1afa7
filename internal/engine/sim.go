package engine

import "github.com/visiona/camrx/internal/hwreg"

// Simulator plays the peripheral's side of the register contract against a
// RAM-backed block: it raises interrupt status bits and exposes the
// programmed state, so the capture pipeline can run end to end with no
// hardware. Used by tests and the demo binary.
type Simulator struct {
	regs *hwreg.Mem
}

// NewSimulator wraps the RAM block the engine under test was built on. The
// status registers get write-one-to-clear semantics so acknowledgment
// behaves the way it does on hardware.
func NewSimulator(regs *hwreg.Mem) *Simulator {
	regs.MarkW1C(regSta, regIsta)
	return &Simulator{regs: regs}
}

// RaiseFrameStart marks a start-of-frame event pending.
func (s *Simulator) RaiseFrameStart() {
	s.regs.SetBits(regSta, staIS)
	s.regs.SetBits(regIsta, istaFS)
}

// RaiseFrameEnd marks an end-of-frame event pending.
func (s *Simulator) RaiseFrameEnd() {
	s.regs.SetBits(regSta, staIS)
	s.regs.SetBits(regIsta, istaFE)
}

// RaiseLineCount marks a line-count event pending.
func (s *Simulator) RaiseLineCount() {
	s.regs.SetBits(regSta, staIS)
	s.regs.SetBits(regIsta, istaLCI)
}

// Enabled reports whether the peripheral enable bit is set.
func (s *Simulator) Enabled() bool {
	return ctrlCPE.Get(s.regs.Read(regCtrl)) != 0
}

// DMAStart returns the programmed image buffer start address.
func (s *Simulator) DMAStart() uint32 {
	return s.regs.Read(regIbsa0)
}

// DMAEnd returns the programmed image buffer end address.
func (s *Simulator) DMAEnd() uint32 {
	return s.regs.Read(regIbea0)
}

// Stride returns the programmed line stride.
func (s *Simulator) Stride() uint32 {
	return s.regs.Read(regIbls)
}

// SetDetectedResolution fills the read-only resolution status registers.
func (s *Simulator) SetDetectedResolution(width, height uint32) {
	s.regs.Write(regIhsta, width)
	s.regs.Write(regIvsta, height)
}
