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

package eip_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/plctag/protocol/eip"
)

var _ = Describe("Header", func() {
	It("round-trips through Encode/DecodeHeader", func() {
		h := eip.Header{
			Command:       eip.CommandSendRRData,
			Length:        10,
			SessionHandle: 0xDEADBEEF,
			Status:        0,
			SenderContext: 0x0102030405060708,
			Options:       0,
		}
		buf := make([]byte, eip.HeaderSize)
		Expect(h.Encode(buf)).To(BeNil())

		got, err := eip.DecodeHeader(buf)
		Expect(err).To(BeNil())
		Expect(got).To(Equal(h))
	})

	It("rejects encoding into a too-small buffer", func() {
		h := eip.Header{}
		err := h.Encode(make([]byte, 10))
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(eip.ErrorBufferTooSmall)).To(BeTrue())
	})

	It("builds and parses the RegisterSession payload", func() {
		payload := eip.EncodeRegisterSession()
		Expect(payload).To(HaveLen(4))

		version, options, err := eip.DecodeRegisterSession(payload)
		Expect(err).To(BeNil())
		Expect(version).To(Equal(eip.RegisterSessionEIPVersion))
		Expect(options).To(Equal(eip.RegisterSessionOptionFlags))
	})
})
