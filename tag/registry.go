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
	"sync/atomic"

	libatm "github/sabouaram/plctag/atomic"
	liberr "github/sabouaram/plctag/errors"
)

// Registry is the process-wide handle table: strong ownership of every live
// Tag lives here, never inside a session or connection, which only keep the
// integer handle. This is the arena-with-ids resolution of the
// session<->tag<->request cyclic-reference design note.
type Registry struct {
	seq atomic.Int32
	tbl libatm.MapTyped[int32, *Tag]
}

// NewRegistry returns an empty registry; the top-level plc package keeps
// exactly one of these as a lazily-initialised singleton.
func NewRegistry() *Registry {
	return &Registry{tbl: libatm.NewMapTyped[int32, *Tag]()}
}

// Create allocates the next positive handle, stores t under it, and returns
// the handle — matching the public contract's "positive handle or negative
// error" result shape.
func (r *Registry) Create(t *Tag) int32 {
	h := r.seq.Add(1)
	t.Handle = h
	r.tbl.Store(h, t)
	return h
}

// Get looks up a tag by handle.
func (r *Registry) Get(handle int32) (*Tag, liberr.Error) {
	t, ok := r.tbl.Load(handle)
	if !ok {
		return nil, ErrorNotFound.Error(nil)
	}
	return t, nil
}

// Destroy aborts the tag (if live), removes it from the table, and fires the
// DESTROYED callback. Any subsequent Get for this handle returns not-found.
func (r *Registry) Destroy(handle int32) liberr.Error {
	t, ok := r.tbl.LoadAndDelete(handle)
	if !ok {
		return ErrorNotFound.Error(nil)
	}

	_ = t.Abort()
	t.fire(EventDestroyed, t.Status())
	return nil
}

// Len reports how many tags are currently live, e.g. for metrics or to bound
// queued-request accounting per invariant 6.
func (r *Registry) Len() int {
	var n int
	r.tbl.Range(func(_ int32, _ *Tag) bool {
		n++
		return true
	})
	return n
}
