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

// Package refcount is a strong-count wrapper with a registered destructor,
// modeled on the rc_alloc/rc_inc/rc_dec discipline of the original library's
// src/util/rc.h: a session (or a PLC list entry keyed by host+path) is kept
// alive as long as at least one tag holds a reference, and its destructor
// runs exactly once, on whichever goroutine drops the last reference.
// Weak-from-strong references are not required by this module.
package refcount

import "sync/atomic"

// Destructor is called exactly once, when the last reference is released.
type Destructor func()

// Ref is a strong-count wrapper around a cleanup callback.
type Ref struct {
	count int32
	clean Destructor
}

// New creates a Ref with an initial strong count of one and the given
// destructor. The destructor must be idempotent-safe to call exactly once;
// Ref guarantees it is invoked at most once.
func New(destructor Destructor) *Ref {
	return &Ref{count: 1, clean: destructor}
}

// Inc increments the strong count. It must be called before handing out a
// new reference to the owned resource; calling Inc after the count has
// already reached zero is a programming error and is a no-op.
func (r *Ref) Inc() {
	for {
		cur := atomic.LoadInt32(&r.count)
		if cur <= 0 {
			return
		}
		if atomic.CompareAndSwapInt32(&r.count, cur, cur+1) {
			return
		}
	}
}

// Dec decrements the strong count and runs the destructor if it reaches
// zero. Returns true if this call triggered the destructor.
func (r *Ref) Dec() bool {
	for {
		cur := atomic.LoadInt32(&r.count)
		if cur <= 0 {
			return false
		}
		next := cur - 1
		if atomic.CompareAndSwapInt32(&r.count, cur, next) {
			if next == 0 {
				if r.clean != nil {
					r.clean()
				}
				return true
			}
			return false
		}
	}
}

// Count returns the current strong count (0 once the destructor has run).
func (r *Ref) Count() int32 {
	return atomic.LoadInt32(&r.count)
}
