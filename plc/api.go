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

package plc

import (
	liberr "github/sabouaram/plctag/errors"
	"github/sabouaram/plctag/tag"
)

func lookup(handle int32) (*tag.Tag, liberr.Error) {
	tagsReg, _ := library()
	return tagsReg.Get(handle)
}

// Read blocks up to timeoutMs for a fresh read of handle's tag, or starts it
// asynchronously and returns immediately when timeoutMs <= 0.
func Read(handle int32, timeoutMs int) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Read(timeoutMs)
}

// Write blocks up to timeoutMs for handle's current buffer contents to be
// written back to the PLC, or starts it asynchronously when timeoutMs <= 0.
func Write(handle int32, timeoutMs int) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Write(timeoutMs)
}

// Abort cancels any in-flight read or write for handle and returns the tag
// to idle.
func Abort(handle int32) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Abort()
}

// Status reports handle's current pending/ok/error status.
func Status(handle int32) (tag.Status, liberr.Error) {
	t, err := lookup(handle)
	if err != nil {
		return tag.Status{}, err
	}
	return t.Status(), nil
}

// Destroy aborts and removes handle from the registry, then detaches its tag
// from the shared gateway it was using; the gateway itself is only closed
// once every tag attached to it has detached.
func Destroy(handle int32) liberr.Error {
	tagsReg, gatewaysTbl := library()

	t, err := tagsReg.Get(handle)
	if err != nil {
		return err
	}

	if derr := tagsReg.Destroy(handle); derr != nil {
		return derr
	}
	Metrics().TagsDestroyed.Inc()

	if gu, ok := t.Vtable.(gatewayUser); ok {
		gatewaysTbl.release(gu.gateway().key)
	}
	return nil
}

// getCommonIntAttrib reads the attributes every family shares, handled
// directly against Tag fields rather than delegated to a Vtable.
func getCommonIntAttrib(t *tag.Tag, name string) (int, bool) {
	switch name {
	case "elem_size":
		return t.ElemSize, true
	case "elem_count":
		return t.ElemCount, true
	case "idle_timeout_ms":
		return t.IdleTimeoutMs, true
	case "auto_sync_read_ms":
		return t.AutoSyncReadMs, true
	case "auto_sync_write_ms":
		return t.AutoSyncWriteMs, true
	case "read_cache_ms":
		return t.ReadCacheMs, true
	case "debug":
		return t.DebugLevel, true
	case "allow_packing":
		if t.AllowPacking {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// GetIntAttrib reads a named integer attribute off handle's tag: the common
// attributes every family shares, falling back to the family vtable for
// protocol-specific ones.
func GetIntAttrib(handle int32, name string) (int, liberr.Error) {
	t, err := lookup(handle)
	if err != nil {
		return 0, err
	}
	if v, ok := getCommonIntAttrib(t, name); ok {
		return v, nil
	}
	return t.Vtable.GetAttr(t, name)
}

// SetIntAttrib writes a named integer attribute on handle's tag. elem_size
// and elem_count are fixed at Create time and rejected here since changing
// either would require reallocating the shadow buffer mid-flight.
func SetIntAttrib(handle int32, name string, value int) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}

	switch name {
	case "idle_timeout_ms":
		t.IdleTimeoutMs = value
		return nil
	case "auto_sync_read_ms":
		t.AutoSyncReadMs = value
		return nil
	case "auto_sync_write_ms":
		t.AutoSyncWriteMs = value
		return nil
	case "read_cache_ms":
		t.ReadCacheMs = value
		return nil
	case "debug":
		t.DebugLevel = value
		return nil
	case "allow_packing":
		t.AllowPacking = value != 0
		return nil
	case "elem_size", "elem_count":
		return tag.ErrorBadAttrib.Error(nil)
	default:
		return t.Vtable.SetAttr(t, name, value)
	}
}

// GetUint8/SetUint8 through GetFloat64/SetFloat64, plus GetBit/SetBit, are
// the scalar accessors the public API exposes against a tag's shadow
// buffer: thin, bounds-checked wrappers around tag.Buffer's byte-order-aware
// codec calls, resolved through the handle the same way every other
// operation in this file is.

func GetUint8(handle int32, offset int) (uint8, liberr.Error) {
	t, err := lookup(handle)
	if err != nil {
		return 0, err
	}
	return t.Buf.GetUint8(offset)
}

func SetUint8(handle int32, offset int, v uint8) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Buf.SetUint8(offset, v)
}

func GetInt8(handle int32, offset int) (int8, liberr.Error) {
	t, err := lookup(handle)
	if err != nil {
		return 0, err
	}
	return t.Buf.GetInt8(offset)
}

func SetInt8(handle int32, offset int, v int8) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Buf.SetInt8(offset, v)
}

func GetUint16(handle int32, offset int) (uint16, liberr.Error) {
	t, err := lookup(handle)
	if err != nil {
		return 0, err
	}
	return t.Buf.GetUint16(offset)
}

func SetUint16(handle int32, offset int, v uint16) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Buf.SetUint16(offset, v)
}

func GetInt16(handle int32, offset int) (int16, liberr.Error) {
	t, err := lookup(handle)
	if err != nil {
		return 0, err
	}
	return t.Buf.GetInt16(offset)
}

func SetInt16(handle int32, offset int, v int16) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Buf.SetInt16(offset, v)
}

func GetUint32(handle int32, offset int) (uint32, liberr.Error) {
	t, err := lookup(handle)
	if err != nil {
		return 0, err
	}
	return t.Buf.GetUint32(offset)
}

func SetUint32(handle int32, offset int, v uint32) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Buf.SetUint32(offset, v)
}

func GetInt32(handle int32, offset int) (int32, liberr.Error) {
	t, err := lookup(handle)
	if err != nil {
		return 0, err
	}
	return t.Buf.GetInt32(offset)
}

func SetInt32(handle int32, offset int, v int32) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Buf.SetInt32(offset, v)
}

func GetUint64(handle int32, offset int) (uint64, liberr.Error) {
	t, err := lookup(handle)
	if err != nil {
		return 0, err
	}
	return t.Buf.GetUint64(offset)
}

func SetUint64(handle int32, offset int, v uint64) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Buf.SetUint64(offset, v)
}

func GetInt64(handle int32, offset int) (int64, liberr.Error) {
	t, err := lookup(handle)
	if err != nil {
		return 0, err
	}
	return t.Buf.GetInt64(offset)
}

func SetInt64(handle int32, offset int, v int64) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Buf.SetInt64(offset, v)
}

func GetFloat32(handle int32, offset int) (float32, liberr.Error) {
	t, err := lookup(handle)
	if err != nil {
		return 0, err
	}
	return t.Buf.GetFloat32(offset)
}

func SetFloat32(handle int32, offset int, v float32) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Buf.SetFloat32(offset, v)
}

func GetFloat64(handle int32, offset int) (float64, liberr.Error) {
	t, err := lookup(handle)
	if err != nil {
		return 0, err
	}
	return t.Buf.GetFloat64(offset)
}

func SetFloat64(handle int32, offset int, v float64) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Buf.SetFloat64(offset, v)
}

func GetBit(handle int32, bitOffset int) (bool, liberr.Error) {
	t, err := lookup(handle)
	if err != nil {
		return false, err
	}
	return t.Buf.GetBit(bitOffset)
}

func SetBit(handle int32, bitOffset int, v bool) liberr.Error {
	t, err := lookup(handle)
	if err != nil {
		return err
	}
	return t.Buf.SetBit(bitOffset, v)
}
