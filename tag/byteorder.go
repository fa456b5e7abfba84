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

package tag

import (
	"github/sabouaram/plctag/codec"
	liberr "github/sabouaram/plctag/errors"
)

// StringDescriptor carries the str_* attribute family that governs how a
// STRING-typed tag's text is laid out inside the shadow buffer.
type StringDescriptor struct {
	IsCounted        bool
	IsFixedLength    bool
	IsZeroTerminated bool
	IsByteSwapped    bool
	CountWordBytes   int
	PadBytes         int
	MaxCapacity      int
	TotalLength      int
}

// DefaultStringDescriptor matches a Logix-style counted string: a 4-byte
// length word followed by up to 82 characters.
func DefaultStringDescriptor() StringDescriptor {
	return StringDescriptor{
		IsCounted:      true,
		CountWordBytes: 4,
		MaxCapacity:    82,
	}
}

// Buffer wraps the tag's shadow byte buffer with bounds-checked scalar
// accessors. The application's buffer is always little-endian (invariant
// 6); any wire-order translation happens in the protocol codec, not here.
type Buffer struct {
	data []byte
}

// NewBuffer allocates a zeroed shadow buffer of the given size.
func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// Bytes exposes the raw backing slice, e.g. for a protocol codec to copy a
// decoded response directly into it.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len reports the buffer's size in bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

func (b *Buffer) GetUint8(offset int) (uint8, liberr.Error)   { return codec.ReadUint8(b.data, offset) }
func (b *Buffer) SetUint8(offset int, v uint8) liberr.Error   { return codec.WriteUint8(b.data, offset, v) }
func (b *Buffer) GetInt8(offset int) (int8, liberr.Error)     { return codec.ReadInt8(b.data, offset) }
func (b *Buffer) SetInt8(offset int, v int8) liberr.Error     { return codec.WriteInt8(b.data, offset, v) }

func (b *Buffer) GetUint16(offset int) (uint16, liberr.Error) { return codec.ReadUint16LE(b.data, offset) }
func (b *Buffer) SetUint16(offset int, v uint16) liberr.Error {
	return codec.WriteUint16LE(b.data, offset, v)
}
func (b *Buffer) GetInt16(offset int) (int16, liberr.Error) { return codec.ReadInt16LE(b.data, offset) }
func (b *Buffer) SetInt16(offset int, v int16) liberr.Error {
	return codec.WriteInt16LE(b.data, offset, v)
}

func (b *Buffer) GetUint32(offset int) (uint32, liberr.Error) { return codec.ReadUint32LE(b.data, offset) }
func (b *Buffer) SetUint32(offset int, v uint32) liberr.Error {
	return codec.WriteUint32LE(b.data, offset, v)
}
func (b *Buffer) GetInt32(offset int) (int32, liberr.Error) { return codec.ReadInt32LE(b.data, offset) }
func (b *Buffer) SetInt32(offset int, v int32) liberr.Error {
	return codec.WriteInt32LE(b.data, offset, v)
}

func (b *Buffer) GetUint64(offset int) (uint64, liberr.Error) { return codec.ReadUint64LE(b.data, offset) }
func (b *Buffer) SetUint64(offset int, v uint64) liberr.Error {
	return codec.WriteUint64LE(b.data, offset, v)
}
func (b *Buffer) GetInt64(offset int) (int64, liberr.Error) { return codec.ReadInt64LE(b.data, offset) }
func (b *Buffer) SetInt64(offset int, v int64) liberr.Error {
	return codec.WriteInt64LE(b.data, offset, v)
}

func (b *Buffer) GetFloat32(offset int) (float32, liberr.Error) {
	return codec.ReadFloat32LE(b.data, offset)
}
func (b *Buffer) SetFloat32(offset int, v float32) liberr.Error {
	return codec.WriteFloat32LE(b.data, offset, v)
}
func (b *Buffer) GetFloat64(offset int) (float64, liberr.Error) {
	return codec.ReadFloat64LE(b.data, offset)
}
func (b *Buffer) SetFloat64(offset int, v float64) liberr.Error {
	return codec.WriteFloat64LE(b.data, offset, v)
}

func (b *Buffer) GetBit(bitOffset int) (bool, liberr.Error) { return codec.GetBit(b.data, bitOffset) }
func (b *Buffer) SetBit(bitOffset int, v bool) liberr.Error { return codec.SetBit(b.data, bitOffset, v) }
