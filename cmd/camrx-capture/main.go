//go:build linux

// camrx-capture runs the capture pipeline end to end against a simulated
// sensor and a RAM-backed register block: negotiate a format, submit a ring
// of pinned buffers, pump frame interrupts and print what comes back.
package main

import (
	"flag"
	"fmt"
	"iter"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/visiona/camrx"
	"github.com/visiona/camrx/dmabuf"
	"github.com/visiona/camrx/internal/engine"
	"github.com/visiona/camrx/internal/hwreg"
)

const version = "v0.1.0"

func main() {
	width := flag.Uint("width", 1280, "Frame width in pixels")
	height := flag.Uint("height", 720, "Frame height in pixels")
	format := flag.String("format", "YUYV", "Pixel format four-character code")
	bufferCount := flag.Int("buffers", 4, "Capture ring size")
	maxFrames := flag.Int("max-frames", 50, "Frames to capture before stopping (0 = until Ctrl+C)")
	frameInterval := flag.Duration("frame-interval", 33*time.Millisecond, "Simulated frame period")
	lanes := flag.Int("lanes", 2, "Transport data lanes (1-4)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("camrx-capture %s\n", version)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	pix, err := parseFourCC(*format)
	if err != nil {
		log.Fatalf("Invalid format: %v", err)
	}

	fmt.Printf("\n")
	fmt.Printf("camrx-capture %s\n", version)
	fmt.Printf("  Size:           %dx%d\n", *width, *height)
	fmt.Printf("  Format:         %s\n", pix)
	fmt.Printf("  Buffers:        %d\n", *bufferCount)
	fmt.Printf("  Lanes:          %d\n", *lanes)
	fmt.Printf("  Frame interval: %s\n", *frameInterval)
	fmt.Printf("\n")

	// RAM-backed registers stand in for the memory-mapped peripheral; on
	// real hardware these come from hwreg.MapDevMem.
	regs := hwreg.NewMem()
	clkGate := hwreg.NewMem()
	sim := engine.NewSimulator(regs)

	src := &simSource{
		format: camrx.MediaFormat{
			Width:  uint32(*width),
			Height: uint32(*height),
			Code:   camrx.BusCodeYUYV8_2X8,
		},
		codes: []camrx.MediaBusCode{
			camrx.BusCodeYUYV8_2X8,
			camrx.BusCodeUYVY8_2X8,
			camrx.BusCodeSBGGR10,
		},
		lanes: *lanes,
	}

	frames := make(chan camrx.CompletedFrame, 16)
	rx, err := camrx.New(camrx.Config{
		Regs:      regs,
		ClockGate: clkGate,
		Source:    src,
		Bus:       camrx.BusPacket,
		MaxLanes:  4,
		OnComplete: func(f camrx.CompletedFrame) {
			select {
			case frames <- f:
			default:
				slog.Warn("completion channel full, frame report lost", "seq", f.Sequence)
			}
		},
	})
	if err != nil {
		log.Fatalf("Failed to create receiver: %v", err)
	}

	layout, err := rx.NegotiateFormat(camrx.FrameRequest{
		Width:       uint32(*width),
		Height:      uint32(*height),
		PixelFormat: pix,
	})
	if err != nil {
		log.Fatalf("Format negotiation failed: %v", err)
	}
	slog.Info("negotiated",
		"size", fmt.Sprintf("%dx%d", layout.Width, layout.Height),
		"stride", layout.BytesPerLine,
		"frame_size", layout.SizeImage,
	)

	pool, err := dmabuf.NewPool(*bufferCount, layout.SizeImage)
	if err != nil {
		log.Fatalf("Buffer allocation failed: %v", err)
	}
	defer pool.Close()

	for i, b := range pool.Buffers() {
		buf := &camrx.Buffer{
			DMAAddr: uint32(0x1000_0000 + i*int(b.Size())),
			Size:    b.Size(),
			Data:    b.Bytes(),
		}
		if err := rx.Submit(buf); err != nil {
			log.Fatalf("Submit buffer %d: %v", i, err)
		}
	}

	if err := rx.Start(); err != nil {
		log.Fatalf("Start failed: %v", err)
	}
	sim.SetDetectedResolution(layout.Width, layout.Height)

	// Interrupt pump: play the peripheral, one frame per tick.
	stopPump := make(chan struct{})
	var pumpWG sync.WaitGroup
	pumpWG.Add(1)
	go func() {
		defer pumpWG.Done()
		ticker := time.NewTicker(*frameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stopPump:
				return
			case <-ticker.C:
				if !sim.Enabled() {
					continue
				}
				sim.RaiseFrameStart()
				rx.HandleInterrupt()
				sim.RaiseFrameEnd()
				rx.HandleInterrupt()
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	fmt.Printf("Capturing... press Ctrl+C to stop\n\n")
	startTime := time.Now()
	captured := 0

loop:
	for {
		select {
		case <-sigChan:
			fmt.Printf("\nInterrupted, shutting down...\n")
			break loop

		case f := <-frames:
			if f.Status != camrx.FrameDone {
				slog.Warn("frame returned unfilled",
					"status", f.Status.String(), "trace_id", f.Buffer.TraceID)
				continue
			}
			captured++
			fmt.Printf("[%s] frame #%-5d seq=%-6d size=%6.1f KB trace=%s\n",
				f.Timestamp.Format("15:04:05.000"),
				captured,
				f.Sequence,
				float64(f.Buffer.Size)/1024,
				f.Buffer.TraceID[:8],
			)

			// Recycle straight back into the ring.
			if err := rx.Submit(f.Buffer); err != nil {
				slog.Error("resubmit failed", "error", err)
			}

			if *maxFrames > 0 && captured >= *maxFrames {
				fmt.Printf("\nReached %d frames, stopping...\n", *maxFrames)
				break loop
			}
		}
	}

	close(stopPump)
	pumpWG.Wait()

	if err := rx.Stop(); err != nil {
		slog.Error("stop failed", "error", err)
	}
	rx.LogStatus()

	stats := rx.Stats()
	uptime := time.Since(startTime)
	fmt.Printf("\n")
	fmt.Printf("Final statistics:\n")
	fmt.Printf("  Uptime:           %s\n", uptime.Round(time.Millisecond))
	fmt.Printf("  Frames completed: %d\n", stats.FramesCompleted)
	fmt.Printf("  Frames dropped:   %d\n", stats.FramesDropped)
	if secs := uptime.Seconds(); secs > 0 {
		fmt.Printf("  Average FPS:      %.2f\n", float64(stats.FramesCompleted)/secs)
	}
	fmt.Printf("\n")
}

// simSource is a fixed-capability sensor model.
type simSource struct {
	mu        sync.Mutex
	format    camrx.MediaFormat
	codes     []camrx.MediaBusCode
	lanes     int
	streaming bool
}

func (s *simSource) ActiveFormat() (camrx.MediaFormat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format, nil
}

func (s *simSource) SetFormat(f camrx.MediaFormat) (camrx.MediaFormat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c == f.Code {
			s.format = f
			return f, nil
		}
	}
	// Counter-propose the current code, keeping the requested size.
	f.Code = s.format.Code
	s.format = f
	return f, nil
}

func (s *simSource) TransportCodes() iter.Seq[camrx.MediaBusCode] {
	return func(yield func(camrx.MediaBusCode) bool) {
		for _, c := range s.codes {
			if !yield(c) {
				return
			}
		}
	}
}

func (s *simSource) Lanes() (int, bool) { return s.lanes, true }

func (s *simSource) SetStreaming(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaming = on
	return nil
}

func parseFourCC(s string) (camrx.PixelFormat, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("%q is not a four-character code", s)
	}
	var p camrx.PixelFormat
	for i := 3; i >= 0; i-- {
		p = p<<8 | camrx.PixelFormat(s[i])
	}
	return p, nil
}
