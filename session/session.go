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

// Package session owns the single TCP connection a gateway is reached
// through: one socket shared by every tag that targets it, a FIFO send
// worker and a correlating receive worker running over it, and the
// Connect/Check/Close lifecycle every caller drives the same way regardless
// of which wire family (EtherNet/IP or Modbus-TCP) sits underneath. The
// Connect/Check/Close triad and its atomic.Value-backed connection handle
// are grounded on ftpclient's own client lifecycle; the reconnect backoff
// is grounded on the Modbus PLC driver's fixed retry delay.
package session

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	liberr "github/sabouaram/plctag/errors"
	"github/sabouaram/plctag/logger"
	loglvl "github/sabouaram/plctag/logger/level"
	"github/sabouaram/plctag/request"
)

// DefaultReconnectBackoff is how long the worker waits after a failed dial
// or handshake before trying again; 5 seconds, matching the original
// Modbus driver's fixed PLC_CONNECT_ERR_DELAY.
const DefaultReconnectBackoff = 5 * time.Second

// DefaultTimeout bounds a single write or read against the gateway.
const DefaultTimeout = 5 * time.Second

// DefaultUnconnectedWindow bounds how many unconnected requests (ForwardOpen/
// ForwardClose and any PCCC/CIP service sent without a prior connection) this
// session allows outstanding at once. Connected traffic is bounded instead by
// the owning connection.Connection's own slot window, not by this session.
const DefaultUnconnectedWindow = 16

// Dialer opens the raw TCP connection to a gateway; overridable per Session
// so tests can substitute an in-process listener or net.Pipe.
type Dialer func(gateway string, timeout time.Duration) (net.Conn, error)

func defaultDialer(gateway string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("tcp", gateway, timeout)
}

// Session multiplexes every request targeting one gateway address over one
// TCP connection. It never holds a strong reference to a tag: requests
// carry only a TagHandle and an optional Notify callback wired up by
// whichever family-specific vtable built them.
type Session struct {
	gateway string
	framer  Framer
	dial    Dialer
	timeout time.Duration
	idle    time.Duration
	backoff ReconnectPolicy
	log     logger.Logger

	mu     sync.Mutex
	conn   net.Conn
	queue  *request.Queue
	reply  sync.Map // uint64 correlation key -> *request.Request

	unconnSem *semaphore.Weighted

	lastActivity atomic.Int64
	closing      atomic.Bool
	started      atomic.Bool
	everDialed   atomic.Bool
	wake         chan struct{}
	stop         chan struct{}
	eg           *errgroup.Group

	// OnReconnect, if set, is called after every successful dial+handshake
	// that follows a connection this session had already established once
	// before; the very first connect never triggers it.
	OnReconnect func()
}

// New builds a Session for the given "host:port" gateway and wire Framer.
// The worker goroutines are not started until the first Submit or Connect.
func New(gateway string, framer Framer, log logger.Logger) *Session {
	s := &Session{
		gateway:   gateway,
		framer:    framer,
		dial:      defaultDialer,
		timeout:   DefaultTimeout,
		backoff:   framer.ReconnectPolicy(),
		log:       log,
		queue:     request.NewQueue(),
		unconnSem: semaphore.NewWeighted(DefaultUnconnectedWindow),
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
	s.lastActivity.Store(time.Now().UnixNano())
	return s
}

// SetDialer overrides how the session opens its TCP connection; used by
// tests to point at an in-process listener.
func (s *Session) SetDialer(d Dialer) { s.dial = d }

// SetIdleTimeout configures auto-disconnect: the background worker closes
// an established connection once it has sat idle (no queued or in-flight
// requests) for longer than d. Zero disables auto-disconnect.
func (s *Session) SetIdleTimeout(d time.Duration) { s.idle = d }

func (s *Session) touch() { s.lastActivity.Store(time.Now().UnixNano()) }

func (s *Session) getConn() net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *Session) setConn(c net.Conn) {
	s.mu.Lock()
	s.conn = c
	s.mu.Unlock()
}

// Connect ensures a live, handshaken TCP connection exists, dialing one if
// necessary. An existing connection is trusted without a round trip; use
// Check to additionally validate it.
func (s *Session) Connect() liberr.Error {
	if s.getConn() != nil {
		return nil
	}
	return s.dialAndHandshake()
}

func (s *Session) dialAndHandshake() liberr.Error {
	conn, e := s.dial(s.gateway, s.timeout)
	if e != nil {
		return ErrorDial.Error(e)
	}
	if err := s.framer.Handshake(conn, s.timeout); err != nil {
		_ = conn.Close()
		return err
	}
	s.setConn(conn)
	s.touch()
	s.backoff.Reset()
	s.startWorkersOnce()

	if s.everDialed.Swap(true) && s.OnReconnect != nil {
		s.OnReconnect()
	}
	return nil
}

// Check validates the current connection is still usable, reconnecting if
// it is absent. Modbus/EIP have no in-band NoOp, so this only checks that a
// socket exists; a stale-but-open TCP connection surfaces its failure on
// the next real write.
func (s *Session) Check() liberr.Error {
	if s.getConn() == nil {
		return s.Connect()
	}
	return nil
}

// Close tears down the current connection, if any, and stops the worker
// goroutines. A closed Session is not reused: every later Submit reports
// ErrorClosed.
func (s *Session) Close() {
	s.closing.Store(true)
	if s.started.Load() {
		close(s.stop)
		_ = s.eg.Wait()
	}
	s.closeConnLocked()
}

func (s *Session) closeConnLocked() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		s.framer.Teardown(conn)
		_ = conn.Close()
	}
}

// Submit enqueues r for sending and kicks the worker. The caller is
// responsible for setting r.Notify before submission if it needs to learn
// the outcome.
func (s *Session) Submit(r *request.Request) liberr.Error {
	if s.closing.Load() {
		return ErrorClosed.Error(nil)
	}
	s.queue.Push(r)
	s.startWorkersOnce()
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Abort removes r from the send queue or its pending-reply table and marks
// it aborted, matching the tag-level Abort contract: a request already on
// the wire is left to complete or time out, its reply simply discarded. An
// unconnected request that had already been handed to the wire (and so
// holds one of the session's unconnSem permits) has that permit returned
// here, since recvLoop will never see its reply to do so itself.
func (s *Session) Abort(r *request.Request) {
	heldPermit := !r.Connected && r.Phase() == request.PhaseRecvInProgress
	_ = s.queue.Remove(r.SessionSeqID)
	s.reply.Delete(s.framer.CorrelationKey(r))
	r.Abort()
	if heldPermit {
		s.unconnSem.Release(1)
	}
}

func (s *Session) startWorkersOnce() {
	if s.started.CompareAndSwap(false, true) {
		s.eg = &errgroup.Group{}
		s.eg.Go(s.sendLoop)
		s.eg.Go(s.recvLoop)
	}
}

func (s *Session) sendLoop() error {
	for {
		select {
		case <-s.stop:
			return nil
		case <-s.wake:
		case <-time.After(250 * time.Millisecond):
		}

		for {
			acquired := false
			r := s.queue.Next(func(r *request.Request) bool {
				if r.Phase() != request.PhaseSendInProgress {
					return false
				}
				if r.Connected {
					return true
				}
				if !s.unconnSem.TryAcquire(1) {
					return false
				}
				acquired = true
				return true
			})
			if r == nil {
				break
			}

			if s.getConn() == nil {
				if err := s.dialAndHandshake(); err != nil {
					s.log.CheckError(loglvl.WarnLevel, loglvl.NilLevel, "reconnect attempt failed", err)
					if acquired {
						s.unconnSem.Release(1)
					}
					select {
					case <-time.After(s.backoff.Next()):
					case <-s.stop:
						return nil
					}
					continue
				}
			}

			frame := s.framer.EncodeFrame(r)
			if err := writeAll(s.getConn(), s.timeout, frame); err != nil {
				s.log.CheckError(loglvl.WarnLevel, loglvl.NilLevel, "write failed, dropping connection", err)
				s.closeConnLocked()
				if acquired {
					s.unconnSem.Release(1)
				}
				r.Complete(nil, err)
				_ = s.queue.Remove(r.SessionSeqID)
				continue
			}

			_ = s.queue.Remove(r.SessionSeqID)
			r.SetPhase(request.PhaseRecvInProgress)
			r.SentAt = time.Now()
			s.reply.Store(s.framer.CorrelationKey(r), r)
			s.touch()
		}

		if s.idleExpired() {
			s.closeConnLocked()
		}
	}
}

func (s *Session) idleExpired() bool {
	if s.idle <= 0 || s.queue.Len() > 0 {
		return false
	}
	if s.getConn() == nil {
		return false
	}
	return time.Since(time.Unix(0, s.lastActivity.Load())) >= s.idle
}

func (s *Session) recvLoop() error {
	for {
		select {
		case <-s.stop:
			return nil
		default:
		}

		conn := s.getConn()
		if conn == nil {
			select {
			case <-time.After(50 * time.Millisecond):
			case <-s.stop:
				return nil
			}
			continue
		}

		key, payload, err := s.framer.ReadFrame(conn, s.timeout)
		if err != nil {
			if ne, ok := isTimeout(err); ok && ne {
				continue
			}
			s.closeConnLocked()
			continue
		}

		s.touch()
		if v, ok := s.reply.LoadAndDelete(key); ok {
			r := v.(*request.Request)
			if !r.Connected {
				s.unconnSem.Release(1)
			}
			r.Complete(payload, nil)
		}
	}
}

func isTimeout(err liberr.Error) (bool, bool) {
	if err == nil {
		return false, false
	}
	for _, p := range err.GetParent(false) {
		if ne, ok := p.(net.Error); ok {
			return ne.Timeout(), true
		}
	}
	return false, false
}
