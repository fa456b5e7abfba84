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

package refcount_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/plctag/refcount"
)

var _ = Describe("Ref", func() {
	It("runs the destructor exactly once when the count reaches zero", func() {
		var ran int
		r := refcount.New(func() { ran++ })

		r.Inc()
		r.Inc()
		Expect(r.Count()).To(Equal(int32(3)))

		Expect(r.Dec()).To(BeFalse())
		Expect(r.Dec()).To(BeFalse())
		Expect(r.Dec()).To(BeTrue())
		Expect(ran).To(Equal(1))
		Expect(r.Count()).To(Equal(int32(0)))

		// Further decrements are no-ops.
		Expect(r.Dec()).To(BeFalse())
		Expect(ran).To(Equal(1))
	})

	It("is safe for concurrent Inc/Dec and fires the destructor exactly once", func() {
		var ran int32
		r := refcount.New(func() { ran++ })

		const n = 50
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			r.Inc()
		}
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				r.Dec()
			}()
		}
		wg.Wait()
		r.Dec() // releases the original New() reference

		Expect(ran).To(Equal(int32(1)))
	})

	It("refuses to resurrect a reference after the destructor has run", func() {
		r := refcount.New(func() {})
		r.Dec()
		Expect(r.Count()).To(Equal(int32(0)))
		r.Inc()
		Expect(r.Count()).To(Equal(int32(0)))
	})
})
