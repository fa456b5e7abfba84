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

package session_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/plctag/session"
)

var _ = Describe("Reconnect backoff policies", func() {
	It("FixedBackoff never changes", func() {
		f := session.FixedBackoff(2 * time.Second)
		Expect(f.Next()).To(Equal(2 * time.Second))
		Expect(f.Next()).To(Equal(2 * time.Second))
		f.Reset()
		Expect(f.Next()).To(Equal(2 * time.Second))
	})

	It("ExponentialBackoff doubles up to Max, then resets to Base", func() {
		e := &session.ExponentialBackoff{Base: 100 * time.Millisecond, Max: 500 * time.Millisecond}
		Expect(e.Next()).To(Equal(100 * time.Millisecond))
		Expect(e.Next()).To(Equal(200 * time.Millisecond))
		Expect(e.Next()).To(Equal(400 * time.Millisecond))
		Expect(e.Next()).To(Equal(500 * time.Millisecond)) // capped
		e.Reset()
		Expect(e.Next()).To(Equal(100 * time.Millisecond))
	})
})
