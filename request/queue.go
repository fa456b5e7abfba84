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

package request

import (
	"sync"
	"sync/atomic"

	libatm "github/sabouaram/plctag/atomic"
	liberr "github/sabouaram/plctag/errors"
)

// Queue is the FIFO a session drives its worker from. Requests submitted
// earlier are started no later than requests submitted later; packing
// (outside this package's scope) may combine entries but the queue itself
// never reorders them.
type Queue struct {
	seq   atomic.Uint64
	mu    sync.Mutex
	order []uint64
	byID  libatm.MapTyped[uint64, *Request]
}

// NewQueue returns an empty, ready-to-use Queue.
func NewQueue() *Queue {
	return &Queue{byID: libatm.NewMapTyped[uint64, *Request]()}
}

// Push assigns the request a monotonically increasing session sequence id,
// stamps it on the request, and appends it to the tail of the queue.
func (q *Queue) Push(r *Request) uint64 {
	id := q.seq.Add(1)
	r.SessionSeqID = id

	q.byID.Store(id, r)

	q.mu.Lock()
	q.order = append(q.order, id)
	q.mu.Unlock()

	return id
}

// Remove drops a request from the queue by its session sequence id,
// regardless of its position, per abort/destroy semantics.
func (q *Queue) Remove(id uint64) liberr.Error {
	if _, ok := q.byID.LoadAndDelete(id); !ok {
		return ErrorNotQueued.Error(nil)
	}

	q.mu.Lock()
	for i, v := range q.order {
		if v == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	q.mu.Unlock()

	return nil
}

// Get looks up a queued request by session sequence id, e.g. to correlate an
// unconnected EIP reply by its echoed sender-context.
func (q *Queue) Get(id uint64) (*Request, bool) {
	return q.byID.Load(id)
}

// EligibleFunc reports whether a request is a candidate for the worker to send
// next: not aborted, and if connected, caller-supplied capacity remains.
type EligibleFunc func(r *Request) bool

// Next returns the first non-aborted request in FIFO order for which fn
// reports true, or nil if none currently qualify.
func (q *Queue) Next(fn EligibleFunc) *Request {
	q.mu.Lock()
	order := append([]uint64(nil), q.order...)
	q.mu.Unlock()

	for _, id := range order {
		r, ok := q.byID.Load(id)
		if !ok || r.IsAborted() {
			continue
		}
		if fn == nil || fn(r) {
			return r
		}
	}
	return nil
}

// Len reports how many requests are currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}
