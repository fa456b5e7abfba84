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

package cip_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/plctag/protocol/cip"
)

var _ = Describe("Native symbolic tag services", func() {
	It("round-trips a Read Tag Service reply", func() {
		req := cip.EncodeReadTagRequest(3)
		Expect(req).To(Equal([]byte{0x03, 0x00}))

		reply, err := cip.DecodeReadTagReply([]byte{0xC4, 0x00, 0x01, 0x00, 0x00, 0x00})
		Expect(err).To(BeNil())
		Expect(reply.DataType).To(Equal(cip.TypeDINT))
		Expect(reply.Data).To(Equal([]byte{0x01, 0x00, 0x00, 0x00}))
	})

	It("rejects a reply shorter than the type-code header", func() {
		_, err := cip.DecodeReadTagReply([]byte{0xC4})
		Expect(err).ToNot(BeNil())
	})

	It("builds a Write Tag Service request", func() {
		out := cip.EncodeWriteTagRequest(cip.TypeINT, 1, []byte{0x2A, 0x00})
		Expect(out).To(Equal([]byte{0xC3, 0x00, 0x01, 0x00, 0x2A, 0x00}))
	})

	It("wraps a PCCC body in the Execute-PCCC requestor envelope", func() {
		out := cip.EncodeExecutePCCCRequest(0x1234, 0x00112233, []byte{0x0F, 0x00, 0x01, 0x00, 0xA2})
		Expect(out[0]).To(Equal(byte(6)))
		Expect(out[1:3]).To(Equal([]byte{0x34, 0x12}))
		Expect(out[3:7]).To(Equal([]byte{0x33, 0x22, 0x11, 0x00}))
		Expect(out[7:]).To(Equal([]byte{0x0F, 0x00, 0x01, 0x00, 0xA2}))
	})

	It("builds a Read Tag Fragmented Service request with the byte offset trailing the element count", func() {
		out := cip.EncodeReadTagFragmentedRequest(200, 0x1F4)
		Expect(out).To(Equal([]byte{0xC8, 0x00, 0xF4, 0x01, 0x00, 0x00}))
	})

	It("decodes a Read Tag Fragmented reply and reports more data pending on a partial-transfer status", func() {
		reply, err := cip.DecodeReadTagFragmentedReply(cip.ReplyPartialTransfer, []byte{0xC4, 0x00, 0x01, 0x00, 0x00, 0x00})
		Expect(err).To(BeNil())
		Expect(reply.DataType).To(Equal(cip.TypeDINT))
		Expect(reply.Data).To(Equal([]byte{0x01, 0x00, 0x00, 0x00}))
		Expect(reply.More).To(BeTrue())
	})

	It("decodes a Read Tag Fragmented reply and reports no more data pending on an OK status", func() {
		reply, err := cip.DecodeReadTagFragmentedReply(cip.ReplyOK, []byte{0xC4, 0x00, 0x01, 0x00, 0x00, 0x00})
		Expect(err).To(BeNil())
		Expect(reply.More).To(BeFalse())
	})

	It("rejects a Read Tag Fragmented reply shorter than the type-code header", func() {
		_, err := cip.DecodeReadTagFragmentedReply(cip.ReplyOK, []byte{0xC4})
		Expect(err).ToNot(BeNil())
	})

	It("builds a Write Tag Fragmented Service request with type, count, offset then chunk", func() {
		out := cip.EncodeWriteTagFragmentedRequest(cip.TypeDINT, 2, 4, []byte{0x05, 0x00, 0x00, 0x00})
		Expect(out).To(Equal([]byte{0xC4, 0x00, 0x02, 0x00, 0x04, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00}))
	})

	It("accepts ReplyPartialTransfer as success through DecodeReplyPartial", func() {
		_, body, err := cip.DecodeReplyPartial([]byte{0xD2, 0x00, cip.ReplyPartialTransfer, 0x00, 0xAA})
		Expect(err).To(BeNil())
		Expect(body).To(Equal([]byte{0xAA}))
	})

	It("still rejects a genuine failure status through DecodeReplyPartial", func() {
		_, _, err := cip.DecodeReplyPartial([]byte{0xD2, 0x00, 0x05, 0x00})
		Expect(err).ToNot(BeNil())
	})
})
