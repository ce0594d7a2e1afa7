//go:build linux

// Package dmabuf allocates page-aligned, page-locked frame memory suitable
// for handing to a DMA write engine. Buffers are anonymous private mappings
// pinned with mlock so the physical pages cannot move under an in-flight
// transfer.
package dmabuf

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Buffer is one pinned allocation. Not safe for concurrent Close.
type Buffer struct {
	mem []byte
}

// Alloc returns a pinned buffer of at least size bytes, rounded up to whole
// pages.
func Alloc(size uint32) (*Buffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("dmabuf: zero-sized allocation")
	}
	page := uint32(unix.Getpagesize())
	n := (size + page - 1) &^ (page - 1)

	mem, err := unix.Mmap(-1, 0, int(n),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("dmabuf: mmap %d bytes: %w", n, err)
	}
	if err := unix.Mlock(mem); err != nil {
		unix.Munmap(mem)
		return nil, fmt.Errorf("dmabuf: mlock %d bytes: %w", n, err)
	}
	return &Buffer{mem: mem}, nil
}

// Bytes exposes the mapping. Valid until Close.
func (b *Buffer) Bytes() []byte { return b.mem }

// Size returns the usable length in bytes.
func (b *Buffer) Size() uint32 { return uint32(len(b.mem)) }

// Close unpins and unmaps the buffer. Idempotent.
func (b *Buffer) Close() error {
	if b.mem == nil {
		return nil
	}
	mem := b.mem
	b.mem = nil
	if err := unix.Munlock(mem); err != nil {
		unix.Munmap(mem)
		return fmt.Errorf("dmabuf: munlock: %w", err)
	}
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("dmabuf: munmap: %w", err)
	}
	return nil
}

// Pool allocates a fixed set of equally sized buffers up front, the usual
// shape for a capture ring.
type Pool struct {
	bufs []*Buffer
}

// NewPool allocates count buffers of at least size bytes each. On failure
// everything already allocated is released.
func NewPool(count int, size uint32) (*Pool, error) {
	if count <= 0 {
		return nil, fmt.Errorf("dmabuf: pool needs at least one buffer")
	}
	p := &Pool{bufs: make([]*Buffer, 0, count)}
	for i := 0; i < count; i++ {
		b, err := Alloc(size)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("dmabuf: pool buffer %d: %w", i, err)
		}
		p.bufs = append(p.bufs, b)
	}
	return p, nil
}

// Buffers returns the pool's buffers in allocation order.
func (p *Pool) Buffers() []*Buffer { return p.bufs }

// Close releases every buffer, keeping the first error.
func (p *Pool) Close() error {
	var first error
	for _, b := range p.bufs {
		if err := b.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.bufs = nil
	return first
}
