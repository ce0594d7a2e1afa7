//go:build linux

package dmabuf

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestAllocRoundsToPage(t *testing.T) {
	b, err := Alloc(100)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer b.Close()

	if b.Size() < 100 {
		t.Fatalf("size %d, want >= 100", b.Size())
	}
	if b.Size()%uint32(unix.Getpagesize()) != 0 {
		t.Errorf("size %d not page aligned", b.Size())
	}

	// The mapping must be writable end to end.
	mem := b.Bytes()
	for i := range mem {
		mem[i] = byte(i)
	}
}

func TestAllocZero(t *testing.T) {
	if _, err := Alloc(0); err == nil {
		t.Fatal("expected error for zero-sized allocation")
	}
}

func TestCloseIdempotent(t *testing.T) {
	b, err := Alloc(4096)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestPool(t *testing.T) {
	p, err := NewPool(3, 8192)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	if got := len(p.Buffers()); got != 3 {
		t.Fatalf("got %d buffers, want 3", got)
	}
	for i, b := range p.Buffers() {
		if b.Size() < 8192 {
			t.Errorf("buffer %d size %d, want >= 8192", i, b.Size())
		}
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
