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

// Package connection layers CIP connected messaging (ForwardOpen/
// ForwardClose) on top of a session.Session: it owns the target connection
// id a successful ForwardOpen hands back, stamps the 2-byte connected
// sequence number onto every connected request, and bounds how many of
// them may be outstanding at once with a fixed-size slot window. A
// Connection never dials its own socket; every request it builds is
// ultimately sent unconnected (ForwardOpen/ForwardClose themselves) or
// connected (everything after) through the session it was built with.
package connection

import (
	"sync"
	"sync/atomic"
	"time"

	liberr "github/sabouaram/plctag/errors"
	"github/sabouaram/plctag/protocol/cip"
	"github/sabouaram/plctag/request"
	"github/sabouaram/plctag/session"
)

// connectionManagerPath addresses the Connection Manager object (class 6,
// instance 1) that services ForwardOpen and ForwardClose.
var connectionManagerPath = []byte{0x20, 0x06, 0x24, 0x01}

// DefaultTimeout bounds how long Open/Close wait for a gateway reply.
const DefaultTimeout = 5 * time.Second

// Params carries the caller-supplied identity and routing a Connection
// needs to open: the vendor/originator-serial pair that must be unique
// enough not to collide with another scanner on the same network, the
// requested timeout multiplier and connection-size parameters, and the
// already-encoded route (cip.EncodeConnectionPath) to the target CPU.
type Params struct {
	VendorID          uint16
	OriginatorSerial  uint32
	TimeoutMultiplier byte
	ConnParameters    uint16
	Path              []byte
}

// Connection is a single CIP connected-messaging session layered over one
// session.Session. Safe for concurrent use.
type Connection struct {
	sess    *session.Session
	params  Params
	timeout time.Duration

	connSerialSeq atomic.Uint32

	mu         sync.Mutex
	connSerial uint16
	origConnID uint32
	connSeq    uint16
	isOpen     bool

	window *slotWindow
	slotOf map[*request.Request]uint
}

// New builds a Connection over sess. Open must be called before any
// connected request is submitted.
func New(sess *session.Session, params Params) *Connection {
	return &Connection{
		sess:    sess,
		params:  params,
		timeout: DefaultTimeout,
		window:  newSlotWindow(DefaultWindowSize),
		slotOf:  make(map[*request.Request]uint),
	}
}

// SetTimeout overrides how long Open/Close wait for a reply before giving
// up; used by tests to shrink the default.
func (c *Connection) SetTimeout(d time.Duration) { c.timeout = d }

// IsOpen reports whether a ForwardOpen has completed and not yet been
// closed.
func (c *Connection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOpen
}

// Open issues ForwardOpen and blocks until the gateway accepts or rejects
// it, or the timeout elapses. Calling Open on an already-open Connection
// re-opens it with a fresh connection serial number.
func (c *Connection) Open() liberr.Error {
	serial := uint16(c.connSerialSeq.Add(1))

	body, err := cip.ForwardOpenRequest{
		OrigConnectionID:  uint32(serial),
		ConnSerialNumber:  serial,
		VendorID:          c.params.VendorID,
		OriginatorSerial:  c.params.OriginatorSerial,
		TimeoutMultiplier: c.params.TimeoutMultiplier,
		ConnParameters:    c.params.ConnParameters,
		Path:              c.params.Path,
	}.Encode()
	if err != nil {
		return err
	}

	out := cip.EncodeServiceRequest(cip.ServiceForwardOpen, connectionManagerPath, body)
	payload, err := c.roundTrip(out)
	if err != nil {
		return err
	}

	_, data, err := cip.DecodeReply(payload)
	if err != nil {
		return ErrorOpenRejected.Error(err)
	}

	reply, err := cip.DecodeForwardOpenReply(data)
	if err != nil {
		return ErrorOpenRejected.Error(err)
	}

	c.mu.Lock()
	c.connSerial = serial
	c.origConnID = reply.TargConnectionID
	c.connSeq = 0
	c.isOpen = true
	c.mu.Unlock()
	return nil
}

// Close issues ForwardClose and marks the Connection no longer open
// regardless of whether the gateway confirms it, matching the destroy-path
// best-effort teardown every caller of this library expects.
func (c *Connection) Close() liberr.Error {
	c.mu.Lock()
	serial := c.connSerial
	c.isOpen = false
	c.mu.Unlock()

	body := cip.ForwardCloseRequest{
		ConnSerialNumber: serial,
		VendorID:         c.params.VendorID,
		OriginatorSerial: c.params.OriginatorSerial,
		Path:             c.params.Path,
	}.Encode()

	out := cip.EncodeServiceRequest(cip.ServiceForwardClose, connectionManagerPath, body)
	payload, err := c.roundTrip(out)
	if err != nil {
		return err
	}

	if _, _, err = cip.DecodeReply(payload); err != nil {
		return ErrorCloseRejected.Error(err)
	}
	return nil
}

// roundTrip submits an unconnected request and blocks for its reply.
func (c *Connection) roundTrip(out []byte) ([]byte, liberr.Error) {
	r := request.New(out, make([]byte, 512), 0)
	result := make(chan struct {
		payload []byte
		err     liberr.Error
	}, 1)
	r.Notify = func(in []byte, err liberr.Error) {
		result <- struct {
			payload []byte
			err     liberr.Error
		}{in, err}
	}

	if err := c.sess.Submit(r); err != nil {
		return nil, err
	}

	select {
	case res := <-result:
		return res.payload, res.err
	case <-time.After(c.timeout):
		c.sess.Abort(r)
		return nil, ErrorOpenFailed.Error(nil)
	}
}

// NewConnectedRequest builds a Request carrying serviceData as a connected
// message over this Connection: the connected sequence number is prepended
// and the target connection id is stamped, but the request is not yet
// submitted. Submit reserves the in-flight slot when it sends the request.
func (c *Connection) NewConnectedRequest(serviceData []byte, in []byte, tagHandle int32) (*request.Request, liberr.Error) {
	c.mu.Lock()
	if !c.isOpen {
		c.mu.Unlock()
		return nil, ErrorNotOpen.Error(nil)
	}
	c.connSeq++
	seq := c.connSeq
	connID := c.origConnID
	c.mu.Unlock()

	out := make([]byte, 2+len(serviceData))
	copy(out[2:], serviceData)

	r := request.New(out, in, tagHandle)
	r.Connected = true
	r.OrigConnID = connID
	r.ConnSeqNum = seq
	if err := r.EncodeConnectedHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

// Acquire reserves one of the fixed in-flight connected-request slots,
// reporting ErrorWindowFull if none remain.
func (c *Connection) Acquire() (uint, liberr.Error) {
	slot, ok := c.window.Acquire()
	if !ok {
		return 0, ErrorWindowFull.Error(nil)
	}
	return slot, nil
}

// Release frees a slot reserved by Acquire. Safe to call once the request
// it was guarding has completed, failed, or been aborted.
func (c *Connection) Release(slot uint) {
	c.window.Release(slot)
}

// InFlight reports how many connected-request slots are currently taken.
func (c *Connection) InFlight() uint {
	return c.window.InUse()
}

// Submit acquires a slot, submits r through the underlying session, and
// wraps r.Notify so the slot is released exactly once the reply (or a
// terminal error) arrives. Returns ErrorWindowFull immediately if the
// window is already full.
func (c *Connection) Submit(r *request.Request) liberr.Error {
	slot, err := c.Acquire()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.slotOf[r] = slot
	c.mu.Unlock()

	inner := r.Notify
	r.Notify = func(in []byte, notifyErr liberr.Error) {
		c.releaseFor(r)
		if inner != nil {
			inner(in, notifyErr)
		}
	}

	if err := c.sess.Submit(r); err != nil {
		c.releaseFor(r)
		return err
	}
	return nil
}

// releaseFor frees r's window slot exactly once, whether that happens via
// its Notify firing or via Abort.
func (c *Connection) releaseFor(r *request.Request) {
	c.mu.Lock()
	slot, ok := c.slotOf[r]
	if ok {
		delete(c.slotOf, r)
	}
	c.mu.Unlock()
	if ok {
		c.Release(slot)
	}
}

// Abort cancels r against the underlying session and releases its window
// slot. Safe to call on a request that already completed or was never
// submitted through this Connection.
func (c *Connection) Abort(r *request.Request) {
	c.sess.Abort(r)
	c.releaseFor(r)
}
