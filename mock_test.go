package camrx

import (
	"iter"
	"sync"
	"testing"

	"github.com/visiona/camrx/internal/engine"
	"github.com/visiona/camrx/internal/hwreg"
)

// mockSource is a scriptable sensor for tests.
type mockSource struct {
	mu     sync.Mutex
	active MediaFormat
	codes  []MediaBusCode

	lanes   int
	lanesOK bool

	streaming bool
	streamErr error

	// onSetFormat, when set, replaces the default adopt-or-counter logic.
	onSetFormat func(MediaFormat) (MediaFormat, error)

	setFormatCalls []MediaFormat
}

func defaultSource() *mockSource {
	return &mockSource{
		active: MediaFormat{Width: 640, Height: 480, Code: BusCodeYUYV8_2X8},
		codes: []MediaBusCode{
			BusCodeYUYV8_2X8,
			BusCodeUYVY8_1X16,
			BusCodeSBGGR10,
		},
		lanes:   2,
		lanesOK: true,
	}
}

func (s *mockSource) ActiveFormat() (MediaFormat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, nil
}

func (s *mockSource) SetFormat(f MediaFormat) (MediaFormat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setFormatCalls = append(s.setFormatCalls, f)

	if s.onSetFormat != nil {
		got, err := s.onSetFormat(f)
		if err == nil {
			s.active = got
		}
		return got, err
	}

	for _, c := range s.codes {
		if c == f.Code {
			s.active = f
			return f, nil
		}
	}
	f.Code = s.codes[0]
	s.active = f
	return f, nil
}

func (s *mockSource) TransportCodes() iter.Seq[MediaBusCode] {
	return func(yield func(MediaBusCode) bool) {
		for _, c := range s.codes {
			if !yield(c) {
				return
			}
		}
	}
}

func (s *mockSource) Lanes() (int, bool) {
	return s.lanes, s.lanesOK
}

func (s *mockSource) SetStreaming(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on && s.streamErr != nil {
		return s.streamErr
	}
	s.streaming = on
	return nil
}

func (s *mockSource) isStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

// mockClock records transport clock management calls.
type mockClock struct {
	rate       uint64
	enabled    bool
	rateErr    error
	enableErr  error
	disables int
}

func (c *mockClock) SetRate(hz uint64) error {
	if c.rateErr != nil {
		return c.rateErr
	}
	c.rate = hz
	return nil
}

func (c *mockClock) Enable() error {
	if c.enableErr != nil {
		return c.enableErr
	}
	c.enabled = true
	return nil
}

func (c *mockClock) Disable() {
	c.enabled = false
	c.disables++
}

// collector gathers completion callbacks.
type collector struct {
	mu     sync.Mutex
	frames []CompletedFrame
}

func (c *collector) add(f CompletedFrame) {
	c.mu.Lock()
	c.frames = append(c.frames, f)
	c.mu.Unlock()
}

func (c *collector) all() []CompletedFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CompletedFrame, len(c.frames))
	copy(out, c.frames)
	return out
}

func (c *collector) withStatus(st BufferStatus) []CompletedFrame {
	var out []CompletedFrame
	for _, f := range c.all() {
		if f.Status == st {
			out = append(out, f)
		}
	}
	return out
}

func newTestRegs() RegisterBlock { return hwreg.NewMem() }

// rig is a receiver wired to RAM registers and a scripted source.
type rig struct {
	rx    *Receiver
	sim   *engine.Simulator
	src   *mockSource
	clock *mockClock
	done  *collector
}

func newRig(t *testing.T, src *mockSource) *rig {
	t.Helper()
	if src == nil {
		src = defaultSource()
	}
	regs := hwreg.NewMem()
	done := &collector{}
	clock := &mockClock{}

	rx, err := New(Config{
		Regs:       regs,
		ClockGate:  hwreg.NewMem(),
		Clock:      clock,
		Source:     src,
		Bus:        BusPacket,
		MaxLanes:   2,
		OnComplete: done.add,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &rig{
		rx:    rx,
		sim:   engine.NewSimulator(regs),
		src:   src,
		clock: clock,
		done:  done,
	}
}

// frame plays one full frame: start interrupt then end interrupt.
func (r *rig) frame() {
	r.sim.RaiseFrameStart()
	r.rx.HandleInterrupt()
	r.sim.RaiseFrameEnd()
	r.rx.HandleInterrupt()
}

// buf makes a submission-ready buffer big enough for the default session.
func (r *rig) buf(t *testing.T, addr uint32) *Buffer {
	t.Helper()
	return &Buffer{
		DMAAddr: addr,
		Size:    r.rx.ActiveLayout().SizeImage,
	}
}
