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

// Package eip implements the EtherNet/IP encapsulation header that wraps
// every CIP and PCCC frame sent to an Allen-Bradley gateway: a fixed 24-byte
// little-endian header followed by a variable-length payload.
package eip

import (
	"github/sabouaram/plctag/codec"
	liberr "github/sabouaram/plctag/errors"
)

// HeaderSize is the fixed length of the EIP encapsulation header.
const HeaderSize = 24

// Encapsulation commands used by this library.
const (
	CommandNOP              uint16 = 0x0000
	CommandRegisterSession  uint16 = 0x0065
	CommandUnRegisterSess   uint16 = 0x0066
	CommandSendRRData       uint16 = 0x006F
	CommandSendUnitData     uint16 = 0x0070
)

// RegisterSessionEIPVersion is the only EIP protocol version this library
// speaks; RegisterSessionOptionFlags is always zero on request.
const (
	RegisterSessionEIPVersion uint16 = 1
	RegisterSessionOptionFlags uint16 = 0
)

// Header is the 24-byte EtherNet/IP encapsulation header.
type Header struct {
	Command       uint16
	Length        uint16
	SessionHandle uint32
	Status        uint32
	SenderContext uint64
	Options       uint32
}

// Encode writes h into the first HeaderSize bytes of b.
func (h Header) Encode(b []byte) liberr.Error {
	if len(b) < HeaderSize {
		return ErrorBufferTooSmall.Error(nil)
	}
	if e := codec.WriteUint16LE(b, 0, h.Command); e != nil {
		return e
	}
	if e := codec.WriteUint16LE(b, 2, h.Length); e != nil {
		return e
	}
	if e := codec.WriteUint32LE(b, 4, h.SessionHandle); e != nil {
		return e
	}
	if e := codec.WriteUint32LE(b, 8, h.Status); e != nil {
		return e
	}
	if e := codec.WriteUint64LE(b, 12, h.SenderContext); e != nil {
		return e
	}
	if e := codec.WriteUint32LE(b, 20, h.Options); e != nil {
		return e
	}
	return nil
}

// DecodeHeader parses the first HeaderSize bytes of b into a Header.
func DecodeHeader(b []byte) (Header, liberr.Error) {
	var h Header
	if len(b) < HeaderSize {
		return h, ErrorBufferTooSmall.Error(nil)
	}

	var e liberr.Error
	if h.Command, e = codec.ReadUint16LE(b, 0); e != nil {
		return h, e
	}
	if h.Length, e = codec.ReadUint16LE(b, 2); e != nil {
		return h, e
	}
	if h.SessionHandle, e = codec.ReadUint32LE(b, 4); e != nil {
		return h, e
	}
	if h.Status, e = codec.ReadUint32LE(b, 8); e != nil {
		return h, e
	}
	if h.SenderContext, e = codec.ReadUint64LE(b, 12); e != nil {
		return h, e
	}
	if h.Options, e = codec.ReadUint32LE(b, 20); e != nil {
		return h, e
	}
	return h, nil
}

// EncodeRegisterSession builds the 4-byte RegisterSession payload
// (eip_version=1, option_flags=0).
func EncodeRegisterSession() []byte {
	b := make([]byte, 4)
	_ = codec.WriteUint16LE(b, 0, RegisterSessionEIPVersion)
	_ = codec.WriteUint16LE(b, 2, RegisterSessionOptionFlags)
	return b
}

// DecodeRegisterSession parses the RegisterSession reply payload, returning
// the negotiated EIP version and option flags.
func DecodeRegisterSession(b []byte) (version, options uint16, err liberr.Error) {
	if len(b) < 4 {
		return 0, 0, ErrorBufferTooSmall.Error(nil)
	}
	version, err = codec.ReadUint16LE(b, 0)
	if err != nil {
		return 0, 0, err
	}
	options, err = codec.ReadUint16LE(b, 2)
	return version, options, err
}
