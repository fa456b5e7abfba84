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

// Package modbus implements the Modbus-TCP MBAP framing and the subset of
// function codes this library drives: single/multiple coil and register
// reads and writes.
package modbus

import (
	liberr "github/sabouaram/plctag/errors"
)

// HeaderSize is the fixed MBAP header length: transaction id, protocol id,
// length, and unit id.
const HeaderSize = 7

// Header is a decoded MBAP header. Length counts the unit id byte plus the
// PDU that follows, per the Modbus-TCP specification.
type Header struct {
	TransactionID uint16
	ProtocolID    uint16
	Length        uint16
	UnitID        byte
}

// Encode writes the MBAP header, big-endian, into b[0:HeaderSize].
func (h Header) Encode(b []byte) liberr.Error {
	if len(b) < HeaderSize {
		return ErrorBufferTooSmall.Error(nil)
	}

	b[0] = byte(h.TransactionID >> 8)
	b[1] = byte(h.TransactionID)
	b[2] = byte(h.ProtocolID >> 8)
	b[3] = byte(h.ProtocolID)
	b[4] = byte(h.Length >> 8)
	b[5] = byte(h.Length)
	b[6] = h.UnitID

	return nil
}

// DecodeHeader reads an MBAP header from the front of b.
func DecodeHeader(b []byte) (Header, liberr.Error) {
	var h Header
	if len(b) < HeaderSize {
		return h, ErrorBufferTooSmall.Error(nil)
	}

	h.TransactionID = uint16(b[0])<<8 | uint16(b[1])
	h.ProtocolID = uint16(b[2])<<8 | uint16(b[3])
	h.Length = uint16(b[4])<<8 | uint16(b[5])
	h.UnitID = b[6]

	if h.ProtocolID != 0 {
		return h, ErrorBadProtocolID.Error(nil)
	}

	return h, nil
}

// FramePDULength reports how many bytes of PDU follow a decoded header's
// fixed 7-byte prefix: Length covers the unit id byte plus the PDU, so the
// PDU alone is Length-1.
func (h Header) FramePDULength() int {
	if h.Length == 0 {
		return 0
	}
	return int(h.Length) - 1
}

// EncodeFrame stitches an MBAP header and a PDU into one wire frame, setting
// Length from the PDU size.
func EncodeFrame(transactionID uint16, unitID byte, pdu []byte) []byte {
	h := Header{
		TransactionID: transactionID,
		ProtocolID:    0,
		Length:        uint16(len(pdu) + 1),
		UnitID:        unitID,
	}

	out := make([]byte, HeaderSize+len(pdu))
	_ = h.Encode(out)
	copy(out[HeaderSize:], pdu)
	return out
}
