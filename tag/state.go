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

// State is the tag's position in its read/write life cycle.
type State int

const (
	StateIdle State = iota
	StateReadRequested
	StateReadInFlight
	StateReadResponse
	StateWriteRequested
	StateWriteInFlight
	StateWriteResponse
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReadRequested:
		return "read_requested"
	case StateReadInFlight:
		return "read_in_flight"
	case StateReadResponse:
		return "read_response"
	case StateWriteRequested:
		return "write_requested"
	case StateWriteInFlight:
		return "write_in_flight"
	case StateWriteResponse:
		return "write_response"
	default:
		return "unknown"
	}
}

// EventKind enumerates the callback invocations a tag fires over its
// lifetime, matching the public contract's CREATED/READ_STARTED/... set.
type EventKind int

const (
	EventCreated EventKind = iota
	EventReadStarted
	EventReadCompleted
	EventWriteStarted
	EventWriteCompleted
	EventAborted
	EventDestroyed
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventReadStarted:
		return "read_started"
	case EventReadCompleted:
		return "read_completed"
	case EventWriteStarted:
		return "write_started"
	case EventWriteCompleted:
		return "write_completed"
	case EventAborted:
		return "aborted"
	case EventDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// EventCallback is invoked out-of-line from the tag's API mutex so a handler
// may safely call back into the API; delivery order for one tag is
// preserved because the worker dispatches one event at a time.
type EventCallback func(handle int32, kind EventKind, status Status)
