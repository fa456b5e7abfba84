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

package pccc

import (
	liberr "github/sabouaram/plctag/errors"
)

// Typed-command function codes (DF1 command 0x0F) this library drives: the
// "protected typed logical" read/write pair PLC-5 and SLC/MicroLogix
// controllers both answer, addressed by file/element/sub-element rather
// than a byte offset.
const (
	typedCommand byte = 0x0F

	FuncProtectedTypedRead  byte = 0xA2
	FuncProtectedTypedWrite byte = 0xAA
)

// EncodeTypedReadRequest builds a DF1 command body requesting elementCount
// contiguous elements starting at addr: command, status (always 0 on a
// request), transaction sequence number, function code, logical address,
// then the DT-encoded byte count to return.
func EncodeTypedReadRequest(tns uint16, addr Address, elementCount int) []byte {
	out := make([]byte, 0, 12)
	out = append(out, typedCommand, 0x00, byte(tns), byte(tns>>8), FuncProtectedTypedRead)
	out = append(out, addr.EncodePLC5()...)
	out = append(out, EncodeDT(uint32(elementCount*addr.ElementSizeByte))...)
	return out
}

// EncodeTypedWriteRequest builds a DF1 command body writing data (already
// byte-packed in the controller's element order) to addr.
func EncodeTypedWriteRequest(tns uint16, addr Address, data []byte) []byte {
	out := make([]byte, 0, 12+len(data))
	out = append(out, typedCommand, 0x00, byte(tns), byte(tns>>8), FuncProtectedTypedWrite)
	out = append(out, addr.EncodePLC5()...)
	out = append(out, EncodeDT(uint32(len(data)))...)
	out = append(out, data...)
	return out
}

// DecodeReply validates a DF1 reply body against the transaction sequence
// number the request carried and returns the data past the 4-byte
// command/status/TNS header. A non-zero status byte surfaces as
// ErrorStatus, carrying the raw code for the caller to inspect.
func DecodeReply(expectedTNS uint16, reply []byte) ([]byte, liberr.Error) {
	if len(reply) < 4 {
		return nil, ErrorBadParam.Error(nil)
	}

	sts := reply[1]
	tns := uint16(reply[2]) | uint16(reply[3])<<8
	if tns != expectedTNS {
		return nil, ErrorBadParam.Error(nil)
	}
	if sts != 0 {
		return nil, StatusError(sts)
	}
	return reply[4:], nil
}
