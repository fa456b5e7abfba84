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

// Package request models the unit of work a tag hands to its session: an
// outbound/inbound buffer pair, correlation keys, and the phase an in-flight
// exchange is in. A Request is owned by the session queue from submission to
// completion or abort; the tag holds it only by handle, never by a strong
// reference back into the session.
package request

import (
	"sync/atomic"
	"time"

	liberr "github/sabouaram/plctag/errors"
)

// Phase is the single active state a queued Request occupies. Exactly one
// phase is set at any instant once the request has entered a session queue.
type Phase int32

const (
	PhaseSendInProgress Phase = iota
	PhaseRecvInProgress
	PhaseRespReceived
	PhaseAborted
)

// DefaultRetries and DefaultRetryInterval match the values new requests are
// built with unless the caller overrides them.
const (
	DefaultRetries       = 5
	DefaultRetryInterval = 900 * time.Millisecond
)

// Buffer pairs a byte slice with its logical size and read/write offset, used
// for both the outbound and inbound sides of a Request.
type Buffer struct {
	Data   []byte
	Size   int
	Offset int
}

// Remaining reports how many bytes are left to move before Offset reaches
// Size.
func (b Buffer) Remaining() int {
	if b.Offset >= b.Size {
		return 0
	}
	return b.Size - b.Offset
}

// Done reports whether the buffer has been fully consumed.
func (b Buffer) Done() bool {
	return b.Offset >= b.Size
}

// Request is the unit the session scheduler multiplexes onto its TCP socket.
type Request struct {
	Out Buffer
	In  Buffer

	// Unconnected correlation: echoed in the EIP sender-context field.
	SessionSeqID uint64

	// Connected-messaging correlation.
	Connected  bool
	OrigConnID uint32
	ConnSeqNum uint16

	phase atomic.Int32

	RetriesRemaining int
	RetryInterval    time.Duration

	SentAt time.Time

	// TagHandle is a back-reference by integer handle only; the request never
	// holds a strong pointer to its owning tag.
	TagHandle int32

	// Notify is called exactly once by the session that owns this request's
	// queue, as soon as a correlated reply has been copied into In (or a
	// terminal error occurred). It lets the vtable that built this request
	// drive its tag's CompleteRead/CompleteWrite without the session needing
	// any protocol-family knowledge.
	Notify func(in []byte, err liberr.Error)
}

// Complete marks the request received and invokes Notify, if set. Safe to
// call at most once; the session calls it from its single receive loop.
func (r *Request) Complete(in []byte, err liberr.Error) {
	if err != nil {
		r.SetPhase(PhaseAborted)
	} else {
		r.SetPhase(PhaseRespReceived)
	}
	if r.Notify != nil {
		r.Notify(in, err)
	}
}

// New builds a Request with the default retry policy and SendInProgress as
// its initial phase, ready to be pushed onto a session queue.
func New(out, in []byte, tagHandle int32) *Request {
	r := &Request{
		Out:              Buffer{Data: out, Size: len(out)},
		In:               Buffer{Data: in},
		RetriesRemaining: DefaultRetries,
		RetryInterval:    DefaultRetryInterval,
		TagHandle:        tagHandle,
	}
	r.phase.Store(int32(PhaseSendInProgress))
	return r
}

// Phase returns the request's current phase.
func (r *Request) Phase() Phase {
	return Phase(r.phase.Load())
}

// SetPhase atomically transitions the request to a new phase.
func (r *Request) SetPhase(p Phase) {
	r.phase.Store(int32(p))
}

// CompareAndSetPhase transitions the request only if it is currently in
// `from`, returning whether the transition took place.
func (r *Request) CompareAndSetPhase(from, to Phase) bool {
	return r.phase.CompareAndSwap(int32(from), int32(to))
}

// Abort marks the request aborted regardless of its current phase. A request
// whose send already completed will still have its receive drained and
// discarded by the session; one not yet sent simply never goes out.
func (r *Request) Abort() {
	r.phase.Store(int32(PhaseAborted))
}

// IsAborted reports whether Abort has been called.
func (r *Request) IsAborted() bool {
	return r.Phase() == PhaseAborted
}

// ShouldRetry reports whether a retry is available after a benign failure,
// consuming one of the remaining attempts if so.
func (r *Request) ShouldRetry() bool {
	if r.RetriesRemaining <= 0 {
		return false
	}
	r.RetriesRemaining--
	return true
}

// EncodeConnectedHeader writes the 2-byte connected sequence number into the
// first two bytes of the outbound buffer, which the caller reserves ahead of
// the payload, when this request targets a CIP connection.
func (r *Request) EncodeConnectedHeader() liberr.Error {
	if !r.Connected {
		return nil
	}
	if r.Out.Size < 2 {
		return ErrorBufferTooSmall.Error(nil)
	}
	r.Out.Data[0] = byte(r.ConnSeqNum)
	r.Out.Data[1] = byte(r.ConnSeqNum >> 8)
	return nil
}
