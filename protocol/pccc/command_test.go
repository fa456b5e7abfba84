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

package pccc_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/plctag/protocol/pccc"
)

var _ = Describe("Typed read/write commands", func() {
	addr, _ := pccc.ParseLogicalAddress("N7:4")

	It("builds a typed read request", func() {
		out := pccc.EncodeTypedReadRequest(0x0001, addr, 2)
		Expect(out[0]).To(Equal(byte(0x0F)))
		Expect(out[1]).To(Equal(byte(0x00)))
		Expect(out[2:4]).To(Equal([]byte{0x01, 0x00}))
		Expect(out[4]).To(Equal(pccc.FuncProtectedTypedRead))
	})

	It("builds a typed write request carrying the payload", func() {
		out := pccc.EncodeTypedWriteRequest(0x0002, addr, []byte{0x2A, 0x00})
		Expect(out[4]).To(Equal(pccc.FuncProtectedTypedWrite))
		Expect(out[len(out)-2:]).To(Equal([]byte{0x2A, 0x00}))
	})

	It("decodes a clean reply and strips its header", func() {
		data, err := pccc.DecodeReply(0x0002, []byte{0x4F, 0x00, 0x02, 0x00, 0x2A, 0x00})
		Expect(err).To(BeNil())
		Expect(data).To(Equal([]byte{0x2A, 0x00}))
	})

	It("rejects a transaction sequence number mismatch", func() {
		_, err := pccc.DecodeReply(0x0003, []byte{0x4F, 0x00, 0x02, 0x00})
		Expect(err).ToNot(BeNil())
	})

	It("surfaces a non-zero status byte", func() {
		_, err := pccc.DecodeReply(0x0002, []byte{0x4F, 0x10, 0x02, 0x00})
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(pccc.ErrorStatus)).To(BeTrue())
	})
})
