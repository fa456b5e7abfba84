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

package tag

import (
	"fmt"

	liberr "github/sabouaram/plctag/errors"
)

const (
	ErrorNotFound liberr.CodeError = iota + liberr.MinPkgTag
	ErrorBadState
	ErrorBadAttrib
	ErrorAborted
	ErrorTimeout
	ErrorUnsupported
)

func init() {
	if liberr.ExistInMapMessage(ErrorNotFound) {
		panic(fmt.Errorf("error code collision with package plctag/tag"))
	}
	liberr.RegisterIdFctMessage(ErrorNotFound, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorNotFound:
		return "tag: handle not found"
	case ErrorBadState:
		return "tag: operation not valid in the current state"
	case ErrorBadAttrib:
		return "tag: unknown or read-only attribute"
	case ErrorAborted:
		return "tag: operation aborted"
	case ErrorTimeout:
		return "tag: blocking call timed out"
	case ErrorUnsupported:
		return "tag: operation unsupported by this PLC family"
	}

	return liberr.NullMessage
}
