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

// Package tag is the core of the library: the per-variable state machine,
// its shadow byte buffer and byte-order descriptor, the PLC-family capability
// dispatch, and the process-wide handle registry.
package tag

import (
	liberr "github/sabouaram/plctag/errors"
)

// Status is a sum type: a tag is Pending, Ok, or carries a terminal Error.
// It deliberately is not a bare integer so that "pending" cannot be confused
// with a real error code at the call site.
type Status struct {
	pending bool
	err     liberr.Error
}

// Pending reports the in-flight, non-terminal status.
func Pending() Status {
	return Status{pending: true}
}

// Ok reports the terminal success status.
func Ok() Status {
	return Status{}
}

// ErrStatus wraps a terminal error as a tag status.
func ErrStatus(err liberr.Error) Status {
	return Status{err: err}
}

// IsPending reports whether the tag has an operation in flight.
func (s Status) IsPending() bool {
	return s.pending
}

// IsOk reports whether the tag's last terminal result was success.
func (s Status) IsOk() bool {
	return !s.pending && s.err == nil
}

// Err returns the terminal error, or nil if the status is Pending or Ok.
func (s Status) Err() liberr.Error {
	return s.err
}

// Code renders the public, integer-facing result: 0 for Ok, a negative
// pending sentinel, or the error's code, matching the "non-negative result
// or negative error code" public contract.
func (s Status) Code() int32 {
	switch {
	case s.pending:
		return codePending
	case s.err != nil:
		return -int32(s.err.GetCode())
	default:
		return 0
	}
}

// codePending is the sentinel returned by Code while a request is in flight;
// it is not itself a liberr.CodeError since "pending" is never a registered
// error message.
const codePending = -1
