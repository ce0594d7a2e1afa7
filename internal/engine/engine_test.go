package engine

import (
	"testing"

	"github.com/visiona/camrx/internal/hwreg"
)

func testConfig() Config {
	return Config{
		Bus:         BusPacket,
		ActiveLanes: 2,
		DataType:    0x2b,
		Stride:      1280,
		ImageSize:   1280 * 720,
		Height:      720,
		SampleDepth: 10,
		Repack:      false,
	}
}

func TestStartProgramsReceiver(t *testing.T) {
	regs := hwreg.NewMem()
	gate := hwreg.NewMem()
	e := New(regs, gate, 2)

	e.Start(testConfig(), 0x1000_0000)

	sim := NewSimulator(regs)
	if !sim.Enabled() {
		t.Error("peripheral enable bit not set after Start")
	}
	if got := sim.Stride(); got != 1280 {
		t.Errorf("stride register = %d, want 1280", got)
	}
	if got := sim.DMAStart(); got != 0x1000_0000 {
		t.Errorf("DMA start = %#x, want 0x10000000", got)
	}
	if got := sim.DMAEnd(); got != 0x1000_0000+1280*720 {
		t.Errorf("DMA end = %#x, want start+image size", got)
	}
	if !e.TriggerModeActive() {
		t.Error("receiver should start in triggered capture sub-mode")
	}

	// Two active lanes on a two-lane instance: clock plus both lanes gated on.
	if got := gate.Read(0); got != (clkGatePassword | 0b10101) {
		t.Errorf("lane clock gate = %#x, want %#x", got, clkGatePassword|uint32(0b10101))
	}
}

func TestStartSingleLaneDisablesLane1(t *testing.T) {
	regs := hwreg.NewMem()
	e := New(regs, hwreg.NewMem(), 2)

	cfg := testConfig()
	cfg.ActiveLanes = 1
	e.Start(cfg, 0)

	if regs.Read(regDat0) == 0 {
		t.Error("lane 0 should be enabled")
	}
	if got := regs.Read(regDat1); got != 0 {
		t.Errorf("lane 1 register = %#x, want 0 for single-lane config", got)
	}
}

func TestStartFourLaneInstance(t *testing.T) {
	regs := hwreg.NewMem()
	e := New(regs, hwreg.NewMem(), 4)

	cfg := testConfig()
	cfg.ActiveLanes = 4
	e.Start(cfg, 0)

	for _, reg := range []uint32{regDat0, regDat1, regDat2, regDat3} {
		if regs.Read(reg) == 0 {
			t.Errorf("lane register %#x should be enabled for 4-lane config", reg)
		}
	}
}

func TestStopQuiesces(t *testing.T) {
	regs := hwreg.NewMem()
	gate := hwreg.NewMem()
	e := New(regs, gate, 2)

	e.Start(testConfig(), 0x1000)
	e.Stop()

	sim := NewSimulator(regs)
	if sim.Enabled() {
		t.Error("peripheral still enabled after Stop")
	}
	if got := regs.Read(regDat0); got != 0 {
		t.Errorf("lane 0 register = %#x after Stop, want 0", got)
	}
	if got := gate.Read(0); got != clkGatePassword {
		t.Errorf("lane clocks = %#x after Stop, want all gated off", got)
	}
}

func TestStopNeverStarted(t *testing.T) {
	e := New(hwreg.NewMem(), hwreg.NewMem(), 2)
	// Must not panic and must leave everything off.
	e.Stop()
	e.Stop()
}

func TestIRQStatusClears(t *testing.T) {
	regs := hwreg.NewMem()
	e := New(regs, hwreg.NewMem(), 2)
	sim := NewSimulator(regs)

	sim.RaiseFrameStart()
	sim.RaiseFrameEnd()

	sta, ista := e.IRQStatus()
	if !Serviceable(sta) {
		t.Error("raised interrupt not serviceable")
	}
	fs, fe, _ := FrameBoundary(sta, ista)
	if !fs || !fe {
		t.Errorf("FrameBoundary = (%v, %v, _), want both frame events", fs, fe)
	}

	// Write-back acknowledged everything.
	sta, ista = e.IRQStatus()
	if Serviceable(sta) || ista != 0 {
		t.Errorf("status not cleared: sta=%#x ista=%#x", sta, ista)
	}
}

func TestClearTriggerMode(t *testing.T) {
	regs := hwreg.NewMem()
	e := New(regs, hwreg.NewMem(), 2)

	e.Start(testConfig(), 0)
	if !e.TriggerModeActive() {
		t.Fatal("expected trigger mode after Start")
	}
	e.ClearTriggerMode()
	if e.TriggerModeActive() {
		t.Error("trigger mode still active after ClearTriggerMode")
	}
}

func TestSetPackingRepack(t *testing.T) {
	tests := []struct {
		depth      uint8
		repack     bool
		wantUnpack uint32
		wantPack   uint32
	}{
		{8, false, pumNone, ppmNone},
		{10, false, pumNone, ppmNone},
		{8, true, pumUnpack8, ppmPack16},
		{10, true, pumUnpack10, ppmPack16},
		{12, true, pumUnpack12, ppmPack16},
		{14, true, pumUnpack14, ppmPack16},
		{16, true, pumUnpack16, ppmPack16},
	}

	for _, tt := range tests {
		regs := hwreg.NewMem()
		e := New(regs, hwreg.NewMem(), 2)
		cfg := testConfig()
		cfg.SampleDepth = tt.depth
		cfg.Repack = tt.repack
		e.Start(cfg, 0)

		st := e.ReadStatus()
		if st.UnpackMode != tt.wantUnpack || st.PackMode != tt.wantPack {
			t.Errorf("depth %d repack %v: pum/ppm = %d/%d, want %d/%d",
				tt.depth, tt.repack, st.UnpackMode, st.PackMode, tt.wantUnpack, tt.wantPack)
		}
	}
}

func TestImageID(t *testing.T) {
	regs := hwreg.NewMem()
	e := New(regs, hwreg.NewMem(), 2)

	cfg := testConfig()
	cfg.VirtualChannel = 1
	e.Start(cfg, 0)
	if got := regs.Read(regIdi0); got != 1<<6|0x2b {
		t.Errorf("packet-mode image ID = %#x, want %#x", got, uint32(1<<6|0x2b))
	}

	cfg.Bus = BusStrobe
	e.Start(cfg, 0)
	if got := regs.Read(regIdi0); got != 0x80|0x2b {
		t.Errorf("strobe-mode image ID = %#x, want %#x", got, uint32(0x80|0x2b))
	}
}
