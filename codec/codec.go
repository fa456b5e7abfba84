/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package codec implements bounded, offset-based reads and writes of
// fixed-width little-endian integers and IEEE-754 floats against a plain
// byte slice. It backs every tag's byte buffer and every
// protocol frame builder in protocol/eip, protocol/cip, protocol/pccc,
// and protocol/modbus.
package codec

import (
	"math"

	liberr "github/sabouaram/plctag/errors"
)

func boundsCheck(b []byte, offset, width int) liberr.Error {
	if offset < 0 || width < 0 || offset+width > len(b) {
		return ErrorOutOfBounds.Error(nil)
	}
	return nil
}

// ReadUint8 reads one byte at offset.
func ReadUint8(b []byte, offset int) (uint8, liberr.Error) {
	if e := boundsCheck(b, offset, 1); e != nil {
		return 0, e
	}
	return b[offset], nil
}

// WriteUint8 writes one byte at offset.
func WriteUint8(b []byte, offset int, v uint8) liberr.Error {
	if e := boundsCheck(b, offset, 1); e != nil {
		return e
	}
	b[offset] = v
	return nil
}

// ReadUint16LE reads a little-endian u16 at offset.
func ReadUint16LE(b []byte, offset int) (uint16, liberr.Error) {
	if e := boundsCheck(b, offset, 2); e != nil {
		return 0, e
	}
	return uint16(b[offset]) | uint16(b[offset+1])<<8, nil
}

// WriteUint16LE writes a little-endian u16 at offset.
func WriteUint16LE(b []byte, offset int, v uint16) liberr.Error {
	if e := boundsCheck(b, offset, 2); e != nil {
		return e
	}
	b[offset] = byte(v)
	b[offset+1] = byte(v >> 8)
	return nil
}

// ReadUint32LE reads a little-endian u32 at offset.
func ReadUint32LE(b []byte, offset int) (uint32, liberr.Error) {
	if e := boundsCheck(b, offset, 4); e != nil {
		return 0, e
	}
	return uint32(b[offset]) | uint32(b[offset+1])<<8 |
		uint32(b[offset+2])<<16 | uint32(b[offset+3])<<24, nil
}

// WriteUint32LE writes a little-endian u32 at offset.
func WriteUint32LE(b []byte, offset int, v uint32) liberr.Error {
	if e := boundsCheck(b, offset, 4); e != nil {
		return e
	}
	b[offset] = byte(v)
	b[offset+1] = byte(v >> 8)
	b[offset+2] = byte(v >> 16)
	b[offset+3] = byte(v >> 24)
	return nil
}

// ReadUint64LE reads a little-endian u64 at offset.
func ReadUint64LE(b []byte, offset int) (uint64, liberr.Error) {
	if e := boundsCheck(b, offset, 8); e != nil {
		return 0, e
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[offset+i]) << (8 * i)
	}
	return v, nil
}

// WriteUint64LE writes a little-endian u64 at offset.
func WriteUint64LE(b []byte, offset int, v uint64) liberr.Error {
	if e := boundsCheck(b, offset, 8); e != nil {
		return e
	}
	for i := 0; i < 8; i++ {
		b[offset+i] = byte(v >> (8 * i))
	}
	return nil
}

// ReadInt8, ReadInt16LE, ReadInt32LE, ReadInt64LE reinterpret the unsigned
// reads above as signed values with the same bit pattern.

func ReadInt8(b []byte, offset int) (int8, liberr.Error) {
	v, e := ReadUint8(b, offset)
	return int8(v), e
}

func WriteInt8(b []byte, offset int, v int8) liberr.Error {
	return WriteUint8(b, offset, uint8(v))
}

func ReadInt16LE(b []byte, offset int) (int16, liberr.Error) {
	v, e := ReadUint16LE(b, offset)
	return int16(v), e
}

func WriteInt16LE(b []byte, offset int, v int16) liberr.Error {
	return WriteUint16LE(b, offset, uint16(v))
}

func ReadInt32LE(b []byte, offset int) (int32, liberr.Error) {
	v, e := ReadUint32LE(b, offset)
	return int32(v), e
}

func WriteInt32LE(b []byte, offset int, v int32) liberr.Error {
	return WriteUint32LE(b, offset, uint32(v))
}

func ReadInt64LE(b []byte, offset int) (int64, liberr.Error) {
	v, e := ReadUint64LE(b, offset)
	return int64(v), e
}

func WriteInt64LE(b []byte, offset int, v int64) liberr.Error {
	return WriteUint64LE(b, offset, uint64(v))
}

// ReadFloat32LE reads an IEEE-754 single-precision float at offset.
func ReadFloat32LE(b []byte, offset int) (float32, liberr.Error) {
	v, e := ReadUint32LE(b, offset)
	if e != nil {
		return 0, e
	}
	return math.Float32frombits(v), nil
}

// WriteFloat32LE writes an IEEE-754 single-precision float at offset.
func WriteFloat32LE(b []byte, offset int, v float32) liberr.Error {
	return WriteUint32LE(b, offset, math.Float32bits(v))
}

// ReadFloat64LE reads an IEEE-754 double-precision float at offset.
func ReadFloat64LE(b []byte, offset int) (float64, liberr.Error) {
	v, e := ReadUint64LE(b, offset)
	if e != nil {
		return 0, e
	}
	return math.Float64frombits(v), nil
}

// WriteFloat64LE writes an IEEE-754 double-precision float at offset.
func WriteFloat64LE(b []byte, offset int, v float64) liberr.Error {
	return WriteUint64LE(b, offset, math.Float64bits(v))
}

// GetBit reads bit bitIndex (0 = LSB of the first byte, counting up through
// the buffer) from b.
func GetBit(b []byte, bitIndex int) (bool, liberr.Error) {
	byteOff := bitIndex / 8
	if e := boundsCheck(b, byteOff, 1); e != nil {
		return false, e
	}
	mask := byte(1) << uint(bitIndex%8)
	return b[byteOff]&mask != 0, nil
}

// SetBit sets or clears bit bitIndex in b.
func SetBit(b []byte, bitIndex int, v bool) liberr.Error {
	byteOff := bitIndex / 8
	if e := boundsCheck(b, byteOff, 1); e != nil {
		return e
	}
	mask := byte(1) << uint(bitIndex%8)
	if v {
		b[byteOff] |= mask
	} else {
		b[byteOff] &^= mask
	}
	return nil
}
