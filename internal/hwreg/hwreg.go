// Package hwreg provides typed access to a flat, address-mapped 32-bit
// register window.
//
// Multi-bit fields are described by their mask only; the shift is derived
// from the mask's lowest set bit, so a field definition is a single constant
// and every access goes through the same read-modify-write primitive.
package hwreg

import "math/bits"

// Block is a window of 32-bit registers addressed by byte offset.
//
// Implementations must perform full 32-bit accesses; the hardware does not
// support byte or half-word register access.
type Block interface {
	Read(offset uint32) uint32
	Write(offset uint32, value uint32)
}

// Field identifies a contiguous bit field within a register by its mask.
type Field uint32

// shift returns the bit position of the field's least significant bit.
func (f Field) shift() uint32 {
	return uint32(bits.TrailingZeros32(uint32(f)))
}

// Get extracts the field value from a full register value.
func (f Field) Get(reg uint32) uint32 {
	return (reg & uint32(f)) >> f.shift()
}

// Insert returns reg with the field replaced by value.
func (f Field) Insert(reg, value uint32) uint32 {
	reg &^= uint32(f)
	reg |= (value << f.shift()) & uint32(f)
	return reg
}

// ReadField reads a register and extracts one field.
func ReadField(b Block, offset uint32, f Field) uint32 {
	return f.Get(b.Read(offset))
}

// WriteField performs a read-modify-write of a single field.
func WriteField(b Block, offset uint32, f Field, value uint32) {
	b.Write(offset, f.Insert(b.Read(offset), value))
}
