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

package plc

import (
	"sync"

	"github/sabouaram/plctag/request"
)

// inflight tracks the single request a vtable has outstanding for one tag
// at a time (the tag state machine never allows a second Read/Write to
// start before the first completes), so Abort has something to cancel.
type inflight struct {
	mu sync.Mutex
	r  *request.Request
}

func (f *inflight) set(r *request.Request) {
	f.mu.Lock()
	f.r = r
	f.mu.Unlock()
}

// clear drops r only if it is still the tracked request, so a late Notify
// racing a fresh ReadStart/WriteStart never clobbers the new one.
func (f *inflight) clear(r *request.Request) {
	f.mu.Lock()
	if f.r == r {
		f.r = nil
	}
	f.mu.Unlock()
}

func (f *inflight) current() *request.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.r
}

// gatewayUser is implemented by every family vtable so Destroy can find the
// shared gateway to detach from without a type switch per family.
type gatewayUser interface {
	gateway() *sharedGateway
}
