// Package engine programs the capture peripheral's register state: transport
// mode, lane bring-up, packing pipeline, interrupts and the per-frame DMA
// target. It owns no buffers and makes no scheduling decisions; callers hand
// it a Config and addresses and it touches the hardware.
package engine

import (
	"log/slog"
	"time"

	"github.com/visiona/camrx/internal/hwreg"
)

// Bus selects the receiver's transport mode.
type Bus int

const (
	// BusPacket is the packet-based multi-lane transport (CSI-2 D-PHY).
	BusPacket Bus = iota
	// BusStrobe is the strobe-based single-lane legacy transport (CCP2).
	BusStrobe
)

func (b Bus) String() string {
	switch b {
	case BusPacket:
		return "packet"
	case BusStrobe:
		return "strobe"
	default:
		return "unknown"
	}
}

// Config carries everything Start needs to program the receiver for one
// streaming session.
type Config struct {
	Bus             Bus
	ContinuousClock bool   // packet mode: clock lane runs between frames
	StrobeMode      uint32 // strobe mode: data/clock mode bits from the source

	ActiveLanes    int
	DataType       uint8 // transport data type identifier
	VirtualChannel uint8

	Stride    uint32 // programmed line stride, bytes
	ImageSize uint32 // total frame bytes, sets the DMA end address
	Height    uint32 // scheduling hint for the line interrupt frequency

	SampleDepth uint8 // bits per sample on the wire
	Repack      bool  // widen samples to 16bpp on the way to memory
}

// Status is a snapshot of the receiver's live registers, for diagnostics.
type Status struct {
	Stride         uint32
	DetectedWidth  uint32
	DetectedHeight uint32
	WritePointer   uint32
	UnpackMode     uint32
	PackMode       uint32
}

// Engine drives one receiver instance. Not safe for concurrent use; the
// stream lifecycle serializes Start/Stop, and WriteDMAAddress is only called
// between frame boundaries from the interrupt handler.
type Engine struct {
	regs     hwreg.Block
	clkGate  hwreg.Block
	maxLanes int

	imageSize uint32
}

// New wraps a register window and its lane clock gate. maxLanes is the
// number of data lanes the instance is physically wired for; it bounds which
// lane registers exist.
func New(regs, clkGate hwreg.Block, maxLanes int) *Engine {
	return &Engine{regs: regs, clkGate: clkGate, maxLanes: maxLanes}
}

// Start resets the front end and brings the receiver up, leaving it in
// triggered capture sub-mode so the first frame aligns to the source's
// vertical sync. addr is the DMA target for the first frame.
func (e *Engine) Start(cfg Config, addr uint32) {
	e.imageSize = cfg.ImageSize

	lineIntFreq := cfg.Height >> 2
	if lineIntFreq < 128 {
		lineIntFreq = 128
	}

	// Enable lane clocks: two bits per lane, plus the clock lane itself.
	val := uint32(1)
	for i := 0; i < cfg.ActiveLanes; i++ {
		val = val<<2 | 1
	}
	e.clkGate.Write(0, val|clkGatePassword)

	// Basic init: output to memory.
	e.regs.Write(regCtrl, uint32(ctrlMEM))

	// Enable analogue control and leave in reset while the bias trims load.
	val = anaAR.Insert(0, 1)
	val = anaCTATADJ.Insert(val, 7)
	val = anaPTATADJ.Insert(val, 7)
	e.regs.Write(regAna, val)
	time.Sleep(time.Millisecond)

	hwreg.WriteField(e.regs, regAna, anaAR, 0)

	// Peripheral reset.
	hwreg.WriteField(e.regs, regCtrl, ctrlCPR, 1)
	hwreg.WriteField(e.regs, regCtrl, ctrlCPR, 0)

	hwreg.WriteField(e.regs, regCtrl, ctrlCPE, 0)

	// Receiver mode and framer timeouts.
	val = e.regs.Read(regCtrl)
	if cfg.Bus == BusPacket {
		val = ctrlCPM.Insert(val, cpmPacket)
		val = ctrlDCM.Insert(val, dcmStrobe)
	} else {
		val = ctrlCPM.Insert(val, cpmStrobe)
		val = ctrlDCM.Insert(val, cfg.StrobeMode)
	}
	val = ctrlPFT.Insert(val, 0xf)
	val = ctrlOET.Insert(val, 128)
	e.regs.Write(regCtrl, val)

	e.regs.Write(regIhwin, 0)
	e.regs.Write(regIvwin, 0)

	// Bus access QoS.
	val = e.regs.Read(regPri)
	val = priBL.Insert(val, 0)
	val = priBS.Insert(val, 0)
	val = priPP.Insert(val, 0xe)
	val = priNP.Insert(val, 8)
	val = priPT.Insert(val, 2)
	val = priPE.Insert(val, 1)
	e.regs.Write(regPri, val)

	hwreg.WriteField(e.regs, regAna, anaDDL, 0)

	// Frame boundary interrupts, line interrupt, and triggered capture mode
	// so a partial frame already on the wire is not written out.
	val = ictlFSIE.Insert(0, 1)
	val = ictlFEIE.Insert(val, 1)
	val = ictlFCM.Insert(val, 1)
	val = ictlLCIE.Insert(val, lineIntFreq)
	e.regs.Write(regIctl, val)
	e.regs.Write(regSta, staAll)
	e.regs.Write(regIsta, istaAll)

	// Lane timing.
	hwreg.WriteField(e.regs, regClt, cltTermEn, 2)
	hwreg.WriteField(e.regs, regClt, cltSettle, 6)
	hwreg.WriteField(e.regs, regDlt, dltTermEn, 2)
	hwreg.WriteField(e.regs, regDlt, dltSettle, 6)
	hwreg.WriteField(e.regs, regDlt, dltRxEn, 0)

	hwreg.WriteField(e.regs, regCtrl, ctrlSOE, 0)

	// Packet compare setup, required to avoid missing frame ends.
	val = cmpPCE.Insert(0, 1)
	val = cmpGI.Insert(val, 1)
	val = cmpCPH.Insert(val, 1)
	val = cmpPCVC.Insert(val, 0)
	val = cmpPCDT.Insert(val, 1)
	e.regs.Write(regCmp0, val)

	// Clock lane terminations.
	val = laneEnable.Insert(0, 1)
	if cfg.Bus == BusPacket {
		val = laneLPE.Insert(val, 1)
		if cfg.ContinuousClock {
			val = laneTRE.Insert(val, 1)
			val = laneHSE.Insert(val, 1)
		}
	} else {
		val = laneHSE.Insert(val, 1)
		val = laneTRE.Insert(val, 1)
	}
	e.regs.Write(regClk, val)

	// Data lane terminations: the active lanes all take the same value,
	// inactive ones are written as zero.
	val = laneEnable.Insert(0, 1)
	if cfg.Bus == BusPacket {
		val = laneLPE.Insert(val, 1)
		if cfg.ContinuousClock {
			val = laneTRE.Insert(val, 1)
			val = laneHSE.Insert(val, 1)
		}
	} else {
		val = laneHSE.Insert(val, 1)
		val = laneTRE.Insert(val, 1)
	}
	e.regs.Write(regDat0, val)

	if cfg.ActiveLanes == 1 {
		val = 0
	}
	e.regs.Write(regDat1, val)

	if e.maxLanes > 2 {
		// Lane registers 2 and 3 only exist on instances wired for more
		// than two lanes.
		if cfg.ActiveLanes == 2 {
			val = 0
		}
		e.regs.Write(regDat2, val)

		if cfg.ActiveLanes == 3 {
			val = 0
		}
		e.regs.Write(regDat3, val)
	}

	e.regs.Write(regIbls, cfg.Stride)
	e.WriteDMAAddress(addr)
	e.setPacking(cfg)
	e.setImageID(cfg)

	// No embedded data lines.
	e.regs.Write(regDcs, dcsEDL.Insert(0, 0))

	val = e.regs.Read(regMisc)
	val = miscFL0.Insert(val, 1)
	val = miscFL1.Insert(val, 1)
	e.regs.Write(regMisc, val)

	// Enable the peripheral and load the image pointers.
	hwreg.WriteField(e.regs, regCtrl, ctrlCPE, 1)
	hwreg.WriteField(e.regs, regIctl, ictlLIP, 1)

	// Arm the trigger for the first frame only.
	hwreg.WriteField(e.regs, regIctl, ictlTFC, 1)

	slog.Debug("camrx: receiver started",
		"bus", cfg.Bus.String(),
		"lanes", cfg.ActiveLanes,
		"stride", cfg.Stride,
		"image_size", cfg.ImageSize,
		"line_int_freq", lineIntFreq,
	)
}

// Stop quiesces the receiver: lanes down, peripheral reset asserted and
// released, engine and lane clocks off. Safe to call on a receiver that was
// never started.
func (e *Engine) Stop() {
	// Disable the digital lanes at the analogue front end.
	hwreg.WriteField(e.regs, regAna, anaDDL, 1)

	// Stop the output engine.
	hwreg.WriteField(e.regs, regCtrl, ctrlSOE, 1)

	e.regs.Write(regDat0, 0)
	e.regs.Write(regDat1, 0)

	if e.maxLanes > 2 {
		e.regs.Write(regDat2, 0)
		e.regs.Write(regDat3, 0)
	}

	// Peripheral reset.
	hwreg.WriteField(e.regs, regCtrl, ctrlCPR, 1)
	time.Sleep(100 * time.Microsecond)
	hwreg.WriteField(e.regs, regCtrl, ctrlCPR, 0)

	hwreg.WriteField(e.regs, regCtrl, ctrlCPE, 0)

	// All lane clocks off.
	e.clkGate.Write(0, clkGatePassword)
}

// WriteDMAAddress points the receiver's image buffer at addr. Only the
// start and end registers are touched, so this is safe to call between frame
// boundary events while streaming.
func (e *Engine) WriteDMAAddress(addr uint32) {
	slog.Debug("camrx: dma target", "start", addr, "end", addr+e.imageSize)
	e.regs.Write(regIbsa0, addr)
	e.regs.Write(regIbea0, addr+e.imageSize)
}

// IRQStatus reads both status registers and writes the values back, which
// acknowledges every raised condition in one pass.
func (e *Engine) IRQStatus() (sta, ista uint32) {
	sta = e.regs.Read(regSta)
	e.regs.Write(regSta, sta)

	ista = e.regs.Read(regIsta)
	e.regs.Write(regIsta, ista)
	return sta, ista
}

// FrameBoundary reports whether the status words carry a frame-start,
// frame-end or line-count event worth scheduling on.
func FrameBoundary(sta, ista uint32) (frameStart, frameEnd, lineCount bool) {
	frameStart = ista&istaFS != 0
	frameEnd = ista&istaFE != 0 || sta&staPI0 != 0
	lineCount = ista&istaLCI != 0
	return
}

// Serviceable reports whether the interrupt carries anything for us at all.
func Serviceable(sta uint32) bool {
	return sta&(staIS|staPI0) != 0
}

// TriggerModeActive reports whether the receiver is still in the triggered
// first-frame capture sub-mode.
func (e *Engine) TriggerModeActive() bool {
	return hwreg.ReadField(e.regs, regIctl, ictlFCM) != 0
}

// ClearTriggerMode switches the receiver to free-running capture. One-shot,
// called after the first frame boundary.
func (e *Engine) ClearTriggerMode() {
	hwreg.WriteField(e.regs, regIctl, ictlTFC, 1)
	hwreg.WriteField(e.regs, regIctl, ictlFCM, 0)
}

// ReadStatus snapshots live receiver state for diagnostics.
func (e *Engine) ReadStatus() Status {
	ipipe := e.regs.Read(regIpipe)
	return Status{
		Stride:         e.regs.Read(regIbls),
		DetectedWidth:  e.regs.Read(regIhsta),
		DetectedHeight: e.regs.Read(regIvsta),
		WritePointer:   e.regs.Read(regIbwp),
		UnpackMode:     ipipePUM.Get(ipipe),
		PackMode:       ipipePPM.Get(ipipe),
	}
}

// setPacking programs the unpack/pack pipeline. Repacking always widens to
// 16 bits per sample; without it both stages pass data through.
func (e *Engine) setPacking(cfg Config) {
	unpack := uint32(pumNone)
	pack := uint32(ppmNone)

	if cfg.Repack {
		switch cfg.SampleDepth {
		case 8:
			unpack = pumUnpack8
		case 10:
			unpack = pumUnpack10
		case 12:
			unpack = pumUnpack12
		case 14:
			unpack = pumUnpack14
		case 16:
			unpack = pumUnpack16
		}
		pack = ppmPack16
	}

	val := ipipeDEBL.Insert(0, 2)
	val = ipipePUM.Insert(val, unpack)
	val = ipipePPM.Insert(val, pack)
	e.regs.Write(regIpipe, val)
}

// setImageID programs the stream identifier the receiver matches incoming
// data against: virtual channel plus data type for packet mode, a fixed
// channel for strobe mode.
func (e *Engine) setImageID(cfg Config) {
	if cfg.Bus == BusPacket {
		e.regs.Write(regIdi0, uint32(cfg.VirtualChannel)<<6|uint32(cfg.DataType))
	} else {
		e.regs.Write(regIdi0, 0x80|uint32(cfg.DataType))
	}
}
