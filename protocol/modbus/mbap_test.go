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

package modbus_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/plctag/protocol/modbus"
)

var _ = Describe("MBAP header", func() {
	It("round-trips transaction id, length, and unit id", func() {
		h := modbus.Header{TransactionID: 7, ProtocolID: 0, Length: 6, UnitID: 1}
		buf := make([]byte, modbus.HeaderSize)
		Expect(h.Encode(buf)).To(BeNil())

		got, err := modbus.DecodeHeader(buf)
		Expect(err).To(BeNil())
		Expect(got).To(Equal(h))
	})

	It("rejects a non-zero protocol id", func() {
		buf := []byte{0, 1, 0, 9, 0, 6, 1}
		_, err := modbus.DecodeHeader(buf)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(modbus.ErrorBadProtocolID)).To(BeTrue())
	})

	It("rejects a buffer shorter than the header", func() {
		_, err := modbus.DecodeHeader([]byte{0, 1, 0, 0})
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(modbus.ErrorBufferTooSmall)).To(BeTrue())
	})

	It("stitches a full frame with the correct length field", func() {
		pdu := []byte{0x06, 0x00, 0x00, 0x10, 0x92}
		frame := modbus.EncodeFrame(7, 1, pdu)

		h, err := modbus.DecodeHeader(frame)
		Expect(err).To(BeNil())
		Expect(h.Length).To(Equal(uint16(len(pdu) + 1)))
		Expect(h.FramePDULength()).To(Equal(len(pdu)))
		Expect(frame[modbus.HeaderSize:]).To(Equal(pdu))
	})
})
