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
	"fmt"

	liberr "github/sabouaram/plctag/errors"
)

const (
	ErrorBadParam liberr.CodeError = iota + liberr.MinPkgCIP
	ErrorPathContainsIP
	ErrorDHPNotLast
	ErrorDHPWithNonPLC5
	ErrorNameTooLong
	ErrorConnMismatch
	ErrorReplyTooShort
	ErrorServiceFailed
)

func init() {
	if liberr.ExistInMapMessage(ErrorBadParam) {
		panic(fmt.Errorf("error code collision with package plctag/protocol/cip"))
	}
	liberr.RegisterIdFctMessage(ErrorBadParam, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorBadParam:
		return "cip: malformed symbolic tag name or path"
	case ErrorPathContainsIP:
		return "cip: connection path segment looks like a dotted-quad IP address, rejected explicitly"
	case ErrorDHPNotLast:
		return "cip: DH+ segment must be the last segment of the path"
	case ErrorDHPWithNonPLC5:
		return "cip: DH+ segment combined with a non-PLC5-class CPU"
	case ErrorNameTooLong:
		return "cip: encoded symbolic name exceeds the maximum IOI size"
	case ErrorConnMismatch:
		return "cip: connected sequence number mismatch, reply discarded"
	case ErrorReplyTooShort:
		return "cip: reply shorter than the fixed service/status header"
	case ErrorServiceFailed:
		return "cip: gateway reported a non-zero general status"
	}

	return liberr.NullMessage
}
