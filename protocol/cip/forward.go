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

package cip

import (
	"github/sabouaram/plctag/codec"
	liberr "github/sabouaram/plctag/errors"
)

// CIP service codes relevant to connected messaging.
const (
	ServiceForwardOpen  byte = 0x54
	ServiceForwardClose byte = 0x4E
)

// ForwardOpenRequest carries the fields needed to open a CIP connection
// our chosen orig_connection_id, a serial number, the
// connection-parameter word, the encoded route, and timeout multipliers.
type ForwardOpenRequest struct {
	OrigConnectionID  uint32
	ConnSerialNumber  uint16
	VendorID          uint16
	OriginatorSerial  uint32
	TimeoutMultiplier byte
	ConnParameters    uint16
	Path              []byte
}

// Encode renders the ForwardOpen service request body (service code and CIP
// header are applied by the caller, matching how this library layers
// protocol/cip under protocol/eip).
func (r ForwardOpenRequest) Encode() ([]byte, liberr.Error) {
	b := make([]byte, 0, 32+len(r.Path))
	b = append(b, 0, 0) // priority/time_tick, timeout_ticks, filled by caller policy

	buf := make([]byte, 4)
	_ = codec.WriteUint32LE(buf, 0, r.OrigConnectionID)
	b = append(b, buf...)

	// targ_connection_id is unknown until the reply; reserve as zero.
	b = append(b, 0, 0, 0, 0)

	sn := make([]byte, 2)
	_ = codec.WriteUint16LE(sn, 0, r.ConnSerialNumber)
	b = append(b, sn...)

	vid := make([]byte, 2)
	_ = codec.WriteUint16LE(vid, 0, r.VendorID)
	b = append(b, vid...)

	osn := make([]byte, 4)
	_ = codec.WriteUint32LE(osn, 0, r.OriginatorSerial)
	b = append(b, osn...)

	b = append(b, r.TimeoutMultiplier, 0, 0, 0)

	cp := make([]byte, 2)
	_ = codec.WriteUint16LE(cp, 0, r.ConnParameters)
	b = append(b, cp...)
	b = append(b, cp...) // identical O->T and T->O parameter word, common case

	b = append(b, byte(len(r.Path)/2))
	b = append(b, r.Path...)

	return b, nil
}

// ForwardOpenReply is the subset of the ForwardOpen response this library
// consumes: the PLC-assigned target connection id.
type ForwardOpenReply struct {
	TargConnectionID uint32
}

// DecodeForwardOpenReply parses targ_connection_id out of a successful
// ForwardOpen response body.
func DecodeForwardOpenReply(b []byte) (ForwardOpenReply, liberr.Error) {
	var reply ForwardOpenReply
	v, err := codec.ReadUint32LE(b, 0)
	if err != nil {
		return reply, err
	}
	reply.TargConnectionID = v
	return reply, nil
}

// ForwardCloseRequest reverses a ForwardOpenRequest.
type ForwardCloseRequest struct {
	ConnSerialNumber uint16
	VendorID         uint16
	OriginatorSerial uint32
	Path             []byte
}

func (r ForwardCloseRequest) Encode() []byte {
	b := make([]byte, 0, 16+len(r.Path))
	b = append(b, 0, 0)

	sn := make([]byte, 2)
	_ = codec.WriteUint16LE(sn, 0, r.ConnSerialNumber)
	b = append(b, sn...)

	vid := make([]byte, 2)
	_ = codec.WriteUint16LE(vid, 0, r.VendorID)
	b = append(b, vid...)

	osn := make([]byte, 4)
	_ = codec.WriteUint32LE(osn, 0, r.OriginatorSerial)
	b = append(b, osn...)

	b = append(b, byte(len(r.Path)/2), 0)
	b = append(b, r.Path...)
	return b
}

// PrependConnSeqNum stamps the 2-byte connected sequence number ahead of a
// connected-messaging payload.
func PrependConnSeqNum(seq uint16, payload []byte) []byte {
	out := make([]byte, 2+len(payload))
	_ = codec.WriteUint16LE(out, 0, seq)
	copy(out[2:], payload)
	return out
}

// CheckConnSeqNum verifies that the leading 2 bytes of a connected reply
// echo the expected sequence number.
func CheckConnSeqNum(expected uint16, payload []byte) ([]byte, liberr.Error) {
	got, err := codec.ReadUint16LE(payload, 0)
	if err != nil {
		return nil, err
	}
	if got != expected {
		return nil, ErrorConnMismatch.Error(nil)
	}
	return payload[2:], nil
}
