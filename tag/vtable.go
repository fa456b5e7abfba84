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
	liberr "github/sabouaram/plctag/errors"
)

// Vtable is the capability set a protocol family implements in place of the
// original per-instance function-pointer table: build/start the two I/O
// operations, cancel them, and translate named attributes.
type Vtable interface {
	// ReadStart builds and submits the protocol-specific read request(s) for
	// this tag against its session/connection.
	ReadStart(t *Tag) liberr.Error

	// WriteStart builds and submits the protocol-specific write request(s),
	// sourcing the outbound payload from the tag's buffer.
	WriteStart(t *Tag) liberr.Error

	// CheckStatus lets the family poll or validate state beyond the generic
	// request-phase bookkeeping the tag state machine already does; most
	// families are a no-op here.
	CheckStatus(t *Tag) liberr.Error

	// Abort cancels any in-flight I/O this family started for the tag.
	Abort(t *Tag) liberr.Error

	// GetAttr / SetAttr back the get_int_attrib/set_int_attrib contract for
	// family-specific attributes beyond the common ones the tag handles
	// itself (elem_size, elem_count, idle_timeout_ms, ...).
	GetAttr(t *Tag, name string) (int, liberr.Error)
	SetAttr(t *Tag, name string, value int) liberr.Error
}
