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
	liberr "github/sabouaram/plctag/errors"
)

// CIP service codes for native symbolic tag access against Logix-class
// controllers.
const (
	ServiceReadTag  byte = 0x4C
	ServiceWriteTag byte = 0x4D
)

// ServiceReadTagFragmented and ServiceWriteTagFragmented carry a single
// tag's data across multiple request/reply round trips, addressed by the
// same symbolic path as ServiceReadTag/ServiceWriteTag, when the tag does
// not fit within one connection's reply payload budget.
const (
	ServiceReadTagFragmented  byte = 0x52
	ServiceWriteTagFragmented byte = 0x53
)

// Elementary CIP data type codes this library writes; read replies echo
// whichever type code the controller actually stores the tag as.
const (
	TypeBOOL  uint16 = 0xC1
	TypeSINT  uint16 = 0xC2
	TypeINT   uint16 = 0xC3
	TypeDINT  uint16 = 0xC4
	TypeREAL  uint16 = 0xCA
	TypeDWORD uint16 = 0xD3
	TypeLINT  uint16 = 0xC5
)

// EncodeReadTagRequest builds the Read Tag Service service-specific data: the
// number of array elements to read, little endian.
func EncodeReadTagRequest(elementCount uint16) []byte {
	return []byte{byte(elementCount), byte(elementCount >> 8)}
}

// ReadTagReply is the decoded body of a successful Read Tag Service reply.
type ReadTagReply struct {
	DataType uint16
	Data     []byte
}

// DecodeReadTagReply splits the leading 2-byte CIP data-type code from the
// element data that follows.
func DecodeReadTagReply(b []byte) (ReadTagReply, liberr.Error) {
	if len(b) < 2 {
		return ReadTagReply{}, ErrorReplyTooShort.Error(nil)
	}
	return ReadTagReply{
		DataType: uint16(b[0]) | uint16(b[1])<<8,
		Data:     b[2:],
	}, nil
}

// EncodeWriteTagRequest builds the Write Tag Service service-specific data:
// data type, element count, then the raw element bytes.
func EncodeWriteTagRequest(dataType, elementCount uint16, data []byte) []byte {
	out := make([]byte, 0, 4+len(data))
	out = append(out, byte(dataType), byte(dataType>>8), byte(elementCount), byte(elementCount>>8))
	out = append(out, data...)
	return out
}

// EncodeReadTagFragmentedRequest builds the Read Tag Fragmented Service
// service-specific data: the tag's total element count followed by a
// 4-byte byte offset into the tag's data, both little endian. The offset
// lets the request resume where a prior partial reply left off.
func EncodeReadTagFragmentedRequest(elementCount uint16, byteOffset uint32) []byte {
	return []byte{
		byte(elementCount), byte(elementCount >> 8),
		byte(byteOffset), byte(byteOffset >> 8), byte(byteOffset >> 16), byte(byteOffset >> 24),
	}
}

// ReadTagFragmentedReply is the decoded body of one Read Tag Fragmented
// Service reply.
type ReadTagFragmentedReply struct {
	DataType uint16
	Data     []byte
	// More reports whether the controller holds additional data beyond
	// this fragment, signalled by a general status of ReplyPartialTransfer.
	More bool
}

// DecodeReadTagFragmentedReply splits the leading 2-byte CIP data-type code
// from this fragment's element bytes. generalStatus is the status word
// DecodeReplyPartial returned alongside body.
func DecodeReadTagFragmentedReply(generalStatus byte, body []byte) (ReadTagFragmentedReply, liberr.Error) {
	if len(body) < 2 {
		return ReadTagFragmentedReply{}, ErrorReplyTooShort.Error(nil)
	}
	return ReadTagFragmentedReply{
		DataType: uint16(body[0]) | uint16(body[1])<<8,
		Data:     body[2:],
		More:     generalStatus == ReplyPartialTransfer,
	}, nil
}

// EncodeWriteTagFragmentedRequest builds the Write Tag Fragmented Service
// service-specific data for one chunk: data type, the tag's total element
// count, the byte offset this chunk starts at, then the chunk's raw bytes.
// The caller picks chunk boundaries itself; unlike the read direction there
// is no device-reported continuation, so the offset sequence is driven
// entirely by how much of t.Buf has already been sent.
func EncodeWriteTagFragmentedRequest(dataType, elementCount uint16, byteOffset uint32, chunk []byte) []byte {
	out := make([]byte, 0, 8+len(chunk))
	out = append(out, byte(dataType), byte(dataType>>8), byte(elementCount), byte(elementCount>>8))
	out = append(out, byte(byteOffset), byte(byteOffset>>8), byte(byteOffset>>16), byte(byteOffset>>24))
	out = append(out, chunk...)
	return out
}

// pcccObjectPath addresses the PCCC object (class 0x67, instance 1) that
// services Execute-PCCC on a Logix gateway bridging to a PCCC-speaking CPU
// or a DH+ channel.
var pcccObjectPath = []byte{0x20, 0x67, 0x24, 0x01}

// PCCCObjectPath returns the CIP path segment addressing the PCCC object.
func PCCCObjectPath() []byte { return pcccObjectPath }

// ServiceExecutePCCC is the CIP service code that tunnels a raw DF1/PCCC
// command through an EtherNet/IP gateway.
const ServiceExecutePCCC byte = 0x4B

// EncodeExecutePCCCRequest wraps a DF1 command body (as built by the pccc
// package) in the requestor-id envelope the Execute-PCCC service expects:
// a length byte followed by the originator's vendor id and serial number,
// which the gateway substitutes for the DH+ source node when it bridges
// the request onward.
func EncodeExecutePCCCRequest(vendorID uint16, serial uint32, pcccBody []byte) []byte {
	out := make([]byte, 0, 7+len(pcccBody))
	out = append(out, 6, byte(vendorID), byte(vendorID>>8))
	out = append(out, byte(serial), byte(serial>>8), byte(serial>>16), byte(serial>>24))
	out = append(out, pcccBody...)
	return out
}
