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

package session

import (
	"sync"
	"time"
)

// EIPBackoffBase and EIPBackoffMax bound the exponential backoff an EIP
// session's reconnect loop uses: short at first, capped at the same delay
// the Modbus family uses unconditionally.
const (
	EIPBackoffBase = 250 * time.Millisecond
	EIPBackoffMax  = DefaultReconnectBackoff
)

// ReconnectPolicy decides how long a session's send worker waits between a
// failed dial/handshake and the next attempt.
type ReconnectPolicy interface {
	// Next returns the delay to use for the upcoming attempt.
	Next() time.Duration
	// Reset is called once a connection attempt succeeds, so the next
	// failure starts backing off from the beginning again.
	Reset()
}

// FixedBackoff always waits the same delay, matching the original Modbus
// driver's PLC_CONNECT_ERR_DELAY.
type FixedBackoff time.Duration

func (f FixedBackoff) Next() time.Duration { return time.Duration(f) }
func (f FixedBackoff) Reset()              {}

// ExponentialBackoff doubles the delay on each consecutive failure, capped
// at Max, and resets to Base once a connection attempt succeeds.
type ExponentialBackoff struct {
	Base time.Duration
	Max  time.Duration

	mu  sync.Mutex
	cur time.Duration
}

func (e *ExponentialBackoff) Next() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cur <= 0 {
		e.cur = e.Base
	}
	d := e.cur
	e.cur *= 2
	if e.cur > e.Max {
		e.cur = e.Max
	}
	return d
}

func (e *ExponentialBackoff) Reset() {
	e.mu.Lock()
	e.cur = 0
	e.mu.Unlock()
}
