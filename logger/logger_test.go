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

package logger_test

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/plctag/logger"
	loglvl "github/sabouaram/plctag/logger/level"
)

var _ = Describe("Logger", func() {
	It("filters entries below the configured level", func() {
		var buf bytes.Buffer
		l := logger.New()
		l.SetOutput(&buf)
		l.SetLevel(loglvl.WarnLevel)

		l.Debug("should not appear", nil)
		Expect(buf.String()).To(BeEmpty())

		l.Error("should appear", nil)
		Expect(buf.String()).To(ContainSubstring("should appear"))
	})

	It("attaches default fields to every entry", func() {
		var buf bytes.Buffer
		l := logger.New()
		l.SetOutput(&buf)
		l.SetFields(logger.NewFields().Add("component", "session"))

		l.Info("connected", nil)
		Expect(buf.String()).To(ContainSubstring("component=session"))
	})

	It("formats the message with the supplied args", func() {
		var buf bytes.Buffer
		l := logger.New()
		l.SetOutput(&buf)

		l.Info("reconnect attempt %d of %d", nil, 2, 5)
		Expect(buf.String()).To(ContainSubstring("reconnect attempt 2 of 5"))
	})

	It("CheckError logs at the KO level and reports true when err is non-nil", func() {
		var buf bytes.Buffer
		l := logger.New()
		l.SetOutput(&buf)

		found := l.CheckError(loglvl.ErrorLevel, loglvl.InfoLevel, "write failed", errors.New("boom"))
		Expect(found).To(BeTrue())
		Expect(buf.String()).To(ContainSubstring("boom"))
	})

	It("CheckError logs at the OK level and reports false when err is nil", func() {
		var buf bytes.Buffer
		l := logger.New()
		l.SetOutput(&buf)

		found := l.CheckError(loglvl.ErrorLevel, loglvl.InfoLevel, "write ok", nil)
		Expect(found).To(BeFalse())
		Expect(buf.String()).To(ContainSubstring("write ok"))
	})

	It("skips logging entirely at NilLevel via CheckError's success branch", func() {
		var buf bytes.Buffer
		l := logger.New()
		l.SetOutput(&buf)

		l.CheckError(loglvl.ErrorLevel, loglvl.NilLevel, "quiet success", nil)
		Expect(buf.String()).To(BeEmpty())
	})

	It("Entry supports chaining fields and data before Log", func() {
		var buf bytes.Buffer
		l := logger.New()
		l.SetOutput(&buf)

		l.Entry(loglvl.InfoLevel, "tag created").
			Field("handle", 7).
			Data(map[string]int{"elem_count": 3}).
			Log()

		Expect(buf.String()).To(ContainSubstring("handle=7"))
	})

	It("Clone copies level and fields into an independent logger", func() {
		l := logger.New()
		l.SetLevel(loglvl.ErrorLevel)
		l.SetFields(logger.NewFields().Add("gateway", "10.0.0.1"))

		c := l.Clone()
		Expect(c.GetLevel()).To(Equal(loglvl.ErrorLevel))
		Expect(c.GetFields()).To(HaveKeyWithValue("gateway", "10.0.0.1"))

		c.SetLevel(loglvl.DebugLevel)
		Expect(l.GetLevel()).To(Equal(loglvl.ErrorLevel))
	})
})
