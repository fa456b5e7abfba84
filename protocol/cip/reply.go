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

// ReplyOK is the general status value a successful CIP service reply
// carries.
const ReplyOK byte = 0x00

// ReplyPartialTransfer is the general status a Read/Write Tag Fragmented
// Service reply carries when the controller holds more data beyond what
// this reply returned.
const ReplyPartialTransfer byte = 0x06

// ReplyHeader is the fixed 4-byte-or-more prefix every CIP service reply
// carries ahead of its service-specific data: the echoed service code with
// its reply bit set, a reserved byte, the general status, and the count of
// 16-bit words of extended status that follow.
type ReplyHeader struct {
	Service        byte
	GeneralStatus  byte
	ExtendedStatus []byte
}

// DecodeReply splits a CIP service reply into its header and the
// service-specific data that follows, failing with ErrorServiceFailed if
// GeneralStatus is non-zero.
func DecodeReply(b []byte) (ReplyHeader, []byte, liberr.Error) {
	return decodeReply(b, ReplyOK)
}

// DecodeReplyPartial behaves like DecodeReply but additionally accepts
// ReplyPartialTransfer as success, for the Read/Write Tag Fragmented
// services that use it to signal a fragmented transfer is not yet complete.
func DecodeReplyPartial(b []byte) (ReplyHeader, []byte, liberr.Error) {
	return decodeReply(b, ReplyOK, ReplyPartialTransfer)
}

func decodeReply(b []byte, okStatuses ...byte) (ReplyHeader, []byte, liberr.Error) {
	var h ReplyHeader
	if len(b) < 4 {
		return h, nil, ErrorReplyTooShort.Error(nil)
	}

	h.Service = b[0]
	h.GeneralStatus = b[2]
	extWords := int(b[3])
	off := 4 + extWords*2
	if len(b) < off {
		return h, nil, ErrorReplyTooShort.Error(nil)
	}
	h.ExtendedStatus = b[4:off]

	ok := false
	for _, s := range okStatuses {
		if h.GeneralStatus == s {
			ok = true
			break
		}
	}
	if !ok {
		return h, nil, ErrorServiceFailed.Error(nil)
	}
	return h, b[off:], nil
}
