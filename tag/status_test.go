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

package tag_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/plctag/tag"
)

var _ = Describe("Status", func() {
	It("reports Pending as neither Ok nor carrying an error", func() {
		s := tag.Pending()
		Expect(s.IsPending()).To(BeTrue())
		Expect(s.IsOk()).To(BeFalse())
		Expect(s.Err()).To(BeNil())
		Expect(s.Code()).To(Equal(int32(-1)))
	})

	It("reports Ok with a zero code", func() {
		s := tag.Ok()
		Expect(s.IsPending()).To(BeFalse())
		Expect(s.IsOk()).To(BeTrue())
		Expect(s.Err()).To(BeNil())
		Expect(s.Code()).To(Equal(int32(0)))
	})

	It("renders an error status as a negative code", func() {
		s := tag.ErrStatus(tag.ErrorTimeout.Error(nil))
		Expect(s.IsPending()).To(BeFalse())
		Expect(s.IsOk()).To(BeFalse())
		Expect(s.Err()).ToNot(BeNil())
		Expect(s.Code()).To(BeNumerically("<", 0))
	})
})
