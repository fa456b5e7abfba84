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
	"sync"
	"time"

	liberr "github/sabouaram/plctag/errors"
)

// Tag is the application's handle to a named PLC variable: its shadow
// buffer, byte-order descriptor, family dispatch, and the read/write state
// machine. Tags never hold a strong pointer to their session; SessionHandle
// is an integer looked up through the session registry, per the
// arena-with-ids ownership model.
type Tag struct {
	Handle        int32
	SessionHandle int32
	Family        PlcFamily
	Vtable        Vtable

	Buf *Buffer
	Str StringDescriptor

	ElemSize  int
	ElemCount int

	AllowPacking    bool
	AutoSyncReadMs  int
	AutoSyncWriteMs int
	ReadCacheMs     int
	IdleTimeoutMs   int
	DebugLevel      int

	Callback EventCallback

	// ExternalMu is exposed so an application can batch several buffer
	// accesses without a read tearing under a concurrent write completion.
	ExternalMu sync.Mutex

	mu         sync.Mutex
	state      State
	status     Status
	lastReadAt time.Time
	waiters    []chan struct{}
}

// New constructs an idle tag around an already-sized buffer.
func New(handle int32, family PlcFamily, vt Vtable, buf *Buffer) *Tag {
	return &Tag{
		Handle: handle,
		Family: family,
		Vtable: vt,
		Buf:    buf,
		status: Ok(),
	}
}

func (t *Tag) fire(kind EventKind, status Status) {
	if t.Callback == nil {
		return
	}
	// Invoked out-of-line from the API mutex; the caller already released
	// t.mu before calling fire.
	go t.Callback(t.Handle, kind, status)
}

// Status returns the tag's current status.
func (t *Tag) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// State returns the tag's current state-machine position.
func (t *Tag) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// cacheValid reports whether a prior read is still within read_cache_ms.
func (t *Tag) cacheValid() bool {
	if t.ReadCacheMs <= 0 || t.lastReadAt.IsZero() {
		return false
	}
	return time.Since(t.lastReadAt) < time.Duration(t.ReadCacheMs)*time.Millisecond
}

// Read moves Idle->ReadRequested->ReadInFlight via the vtable, optionally
// blocking up to timeoutMs for a terminal status.
func (t *Tag) Read(timeoutMs int) liberr.Error {
	t.mu.Lock()
	if t.cacheValid() {
		t.mu.Unlock()
		return nil
	}
	if t.state != StateIdle {
		t.mu.Unlock()
		return ErrorBadState.Error(nil)
	}

	t.state = StateReadRequested
	t.status = Pending()
	wait := t.addWaiterLocked()
	t.mu.Unlock()

	t.fire(EventReadStarted, Pending())

	t.mu.Lock()
	t.state = StateReadInFlight
	err := t.Vtable.ReadStart(t)
	if err != nil {
		t.state = StateIdle
		t.status = ErrStatus(err)
		t.mu.Unlock()
		t.fire(EventReadCompleted, ErrStatus(err))
		return err
	}
	t.mu.Unlock()

	if timeoutMs <= 0 {
		return nil
	}
	return t.waitTerminal(wait, timeoutMs)
}

// CompleteRead is called by the session/connection layer once a response has
// been decoded into the tag buffer (or a terminal error occurred).
func (t *Tag) CompleteRead(err liberr.Error) {
	t.mu.Lock()
	if t.state != StateReadInFlight {
		t.mu.Unlock()
		return
	}
	t.state = StateReadResponse
	if err == nil {
		t.lastReadAt = time.Now()
	}
	// The parser has already copied the reply into the buffer by the time
	// CompleteRead runs; ReadResponse is transitional and we land on Idle.
	t.state = StateIdle
	t.status = statusFromErr(err)
	status := t.status
	t.notifyWaitersLocked()
	t.mu.Unlock()

	t.fire(EventReadCompleted, status)
}

// Write marks the buffer dirty and moves Idle->WriteRequested->WriteInFlight
// via the vtable, optionally blocking up to timeoutMs.
func (t *Tag) Write(timeoutMs int) liberr.Error {
	t.mu.Lock()
	if t.state != StateIdle {
		t.mu.Unlock()
		return ErrorBadState.Error(nil)
	}

	t.state = StateWriteRequested
	t.status = Pending()
	wait := t.addWaiterLocked()
	t.mu.Unlock()

	t.fire(EventWriteStarted, Pending())

	t.mu.Lock()
	t.state = StateWriteInFlight
	err := t.Vtable.WriteStart(t)
	if err != nil {
		t.state = StateIdle
		t.status = ErrStatus(err)
		t.mu.Unlock()
		t.fire(EventWriteCompleted, ErrStatus(err))
		return err
	}
	t.mu.Unlock()

	if timeoutMs <= 0 {
		return nil
	}
	return t.waitTerminal(wait, timeoutMs)
}

// CompleteWrite is called by the session/connection layer once the PLC's
// write response has been checked.
func (t *Tag) CompleteWrite(err liberr.Error) {
	t.mu.Lock()
	if t.state != StateWriteInFlight {
		t.mu.Unlock()
		return
	}
	t.state = StateWriteResponse
	t.state = StateIdle // transitional; the response has already been checked
	t.status = statusFromErr(err)
	status := t.status
	t.notifyWaitersLocked()
	t.mu.Unlock()

	t.fire(EventWriteCompleted, status)
}

// Abort cancels any in-flight I/O and returns the tag to Idle. A pending
// blocking Read/Write call observes status Aborted, not Ok.
func (t *Tag) Abort() liberr.Error {
	t.mu.Lock()
	wasIdle := t.state == StateIdle
	t.state = StateIdle
	t.status = ErrStatus(ErrorAborted.Error(nil))
	t.notifyWaitersLocked()
	t.mu.Unlock()

	if wasIdle {
		return nil
	}
	if err := t.Vtable.Abort(t); err != nil {
		return err
	}
	t.fire(EventAborted, t.Status())
	return nil
}

// waitTerminal blocks on wait until the tag leaves its pending phase or
// timeoutMs elapses, returning the resulting terminal error (nil for Ok).
func (t *Tag) waitTerminal(wait chan struct{}, timeoutMs int) liberr.Error {
	select {
	case <-wait:
	case <-time.After(time.Duration(timeoutMs) * time.Millisecond):
		return ErrorTimeout.Error(nil)
	}
	return t.Status().Err()
}

func (t *Tag) addWaiterLocked() chan struct{} {
	ch := make(chan struct{})
	t.waiters = append(t.waiters, ch)
	return ch
}

func (t *Tag) notifyWaitersLocked() {
	for _, ch := range t.waiters {
		close(ch)
	}
	t.waiters = nil
}

func statusFromErr(err liberr.Error) Status {
	if err != nil {
		return ErrStatus(err)
	}
	return Ok()
}
