//go:build linux

package hwreg

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DevMem is a register block memory-mapped from a character device,
// typically /dev/mem at the peripheral's physical base address.
//
// Reads and writes go through 32-bit atomics so each register access is a
// single uncached bus transaction.
type DevMem struct {
	fd   int
	mem  []byte
	size uint32
}

// MapDevMem maps size bytes of the device at the given physical base.
// base and size must be page aligned.
func MapDevMem(path string, base int64, size int) (*DevMem, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("hwreg: open %s: %w", path, err)
	}

	mem, err := unix.Mmap(fd, base, size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("hwreg: mmap %s base %#x size %#x: %w",
			path, base, size, err)
	}

	return &DevMem{fd: fd, mem: mem, size: uint32(size)}, nil
}

func (d *DevMem) Read(offset uint32) uint32 {
	return atomic.LoadUint32(d.reg(offset))
}

func (d *DevMem) Write(offset uint32, value uint32) {
	atomic.StoreUint32(d.reg(offset), value)
}

func (d *DevMem) reg(offset uint32) *uint32 {
	if offset+4 > d.size || offset%4 != 0 {
		panic(fmt.Sprintf("hwreg: register offset %#x outside %#x-byte window", offset, d.size))
	}
	return (*uint32)(unsafe.Pointer(&d.mem[offset]))
}

// Close unmaps the register window and closes the backing device.
func (d *DevMem) Close() error {
	if d.mem == nil {
		return nil
	}
	err := unix.Munmap(d.mem)
	d.mem = nil
	if cerr := unix.Close(d.fd); err == nil {
		err = cerr
	}
	return err
}
