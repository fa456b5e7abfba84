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

package eip

import (
	"fmt"

	liberr "github/sabouaram/plctag/errors"
)

const (
	ErrorBufferTooSmall liberr.CodeError = iota + liberr.MinPkgEIP
	ErrorBadStatus
	ErrorSessionNotRegistered
	ErrorBadItemCount
	ErrorUnexpectedItemType
)

func init() {
	if liberr.ExistInMapMessage(ErrorBufferTooSmall) {
		panic(fmt.Errorf("error code collision with package plctag/protocol/eip"))
	}
	liberr.RegisterIdFctMessage(ErrorBufferTooSmall, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorBufferTooSmall:
		return "eip: buffer too small for encapsulation header"
	case ErrorBadStatus:
		return "eip: gateway returned a non-zero encapsulation status"
	case ErrorSessionNotRegistered:
		return "eip: no registered session handle for this request"
	case ErrorBadItemCount:
		return "eip: common packet format item count out of range"
	case ErrorUnexpectedItemType:
		return "eip: common packet format item type did not match what was requested"
	}

	return liberr.NullMessage
}
