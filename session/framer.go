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
	"fmt"
	"io"
	"net"
	"time"

	liberr "github/sabouaram/plctag/errors"
	"github/sabouaram/plctag/protocol/eip"
	"github/sabouaram/plctag/protocol/modbus"
	"github/sabouaram/plctag/request"
)

// Framer hides the wire differences between the EtherNet/IP and Modbus-TCP
// families behind one shape the session worker drives identically: a
// one-time handshake, a correlation key stable across the encode/decode
// round trip, and whole-frame encode/read.
type Framer interface {
	// Handshake runs any protocol-level session setup needed once per TCP
	// connection. Modbus has none.
	Handshake(conn net.Conn, timeout time.Duration) liberr.Error

	// Teardown runs a best-effort protocol-level goodbye before the TCP
	// connection itself is closed. Modbus has none.
	Teardown(conn net.Conn)

	// CorrelationKey derives the id a reply will be matched back to this
	// request by. Stable for a given request across EncodeFrame and the
	// value ReadFrame reports for its reply.
	CorrelationKey(r *request.Request) uint64

	// EncodeFrame renders one complete wire frame (headers plus r's
	// already-built service payload) ready for a single Write.
	EncodeFrame(r *request.Request) []byte

	// ReadFrame blocks for exactly one complete protocol frame, returning
	// the sending request's correlation key and the decoded reply payload.
	ReadFrame(conn net.Conn, timeout time.Duration) (correlationKey uint64, payload []byte, err liberr.Error)

	// ReconnectPolicy returns a fresh backoff policy for this wire family's
	// reconnect loop. Called once per Session, not per reconnect attempt.
	ReconnectPolicy() ReconnectPolicy
}

// eipFramer drives Allen-Bradley gateways: a RegisterSession handshake, then
// SendRRData (unconnected) or SendUnitData (connected) per request, wrapped
// in the Common Packet Format.
type eipFramer struct {
	sessionHandle uint32
}

// NewEIPFramer returns a Framer for EtherNet/IP (CIP or PCCC-over-EIP)
// gateways.
func NewEIPFramer() Framer {
	return &eipFramer{}
}

func (f *eipFramer) Handshake(conn net.Conn, timeout time.Duration) liberr.Error {
	payload := eip.EncodeRegisterSession()
	out := make([]byte, eip.HeaderSize+len(payload))
	h := eip.Header{Command: eip.CommandRegisterSession, Length: uint16(len(payload))}
	if e := h.Encode(out); e != nil {
		return e
	}
	copy(out[eip.HeaderSize:], payload)

	if err := writeAll(conn, timeout, out); err != nil {
		return err
	}

	hdr, body, err := readEIPFrame(conn, timeout)
	if err != nil {
		return err
	}
	if hdr.Status != 0 {
		return ErrorBadStatus(hdr.Status)
	}
	if _, _, e := eip.DecodeRegisterSession(body); e != nil {
		return e
	}
	f.sessionHandle = hdr.SessionHandle
	return nil
}

func (f *eipFramer) Teardown(conn net.Conn) {
	out := make([]byte, eip.HeaderSize)
	h := eip.Header{Command: eip.CommandUnRegisterSess, SessionHandle: f.sessionHandle}
	_ = h.Encode(out)
	_ = writeAll(conn, 2*time.Second, out)
}

func (f *eipFramer) CorrelationKey(r *request.Request) uint64 {
	return r.SessionSeqID
}

// ReconnectPolicy gives EIP-family sessions a bounded exponential backoff:
// Allen-Bradley gateways recover quickly from a transient drop, so retrying
// fast at first and backing off only if the gateway stays unreachable beats
// the Modbus family's fixed delay.
func (f *eipFramer) ReconnectPolicy() ReconnectPolicy {
	return &ExponentialBackoff{Base: EIPBackoffBase, Max: EIPBackoffMax}
}

func (f *eipFramer) EncodeFrame(r *request.Request) []byte {
	var body []byte
	var cmd uint16
	if r.Connected {
		body = eip.EncodeSendUnitData(r.OrigConnID, r.Out.Data)
		cmd = eip.CommandSendUnitData
	} else {
		body = eip.EncodeSendRRData(r.Out.Data)
		cmd = eip.CommandSendRRData
	}

	out := make([]byte, eip.HeaderSize+len(body))
	h := eip.Header{
		Command:       cmd,
		Length:        uint16(len(body)),
		SessionHandle: f.sessionHandle,
		SenderContext: r.SessionSeqID,
	}
	_ = h.Encode(out)
	copy(out[eip.HeaderSize:], body)
	return out
}

func (f *eipFramer) ReadFrame(conn net.Conn, timeout time.Duration) (uint64, []byte, liberr.Error) {
	hdr, body, err := readEIPFrame(conn, timeout)
	if err != nil {
		return 0, nil, err
	}
	if hdr.Status != 0 {
		return hdr.SenderContext, nil, ErrorBadStatus(hdr.Status)
	}

	var payload []byte
	if hdr.Command == eip.CommandSendUnitData {
		_, payload, err = eip.DecodeSendUnitData(body)
	} else {
		payload, err = eip.DecodeSendRRData(body)
	}
	return hdr.SenderContext, payload, err
}

func readEIPFrame(conn net.Conn, timeout time.Duration) (eip.Header, []byte, liberr.Error) {
	hdrBuf := make([]byte, eip.HeaderSize)
	if err := readAll(conn, timeout, hdrBuf); err != nil {
		return eip.Header{}, nil, err
	}
	hdr, e := eip.DecodeHeader(hdrBuf)
	if e != nil {
		return hdr, nil, e
	}

	body := make([]byte, hdr.Length)
	if hdr.Length > 0 {
		if err := readAll(conn, timeout, body); err != nil {
			return hdr, nil, err
		}
	}
	return hdr, body, nil
}

// ErrorBadStatus wraps a non-zero encapsulation status as a liberr.Error.
func ErrorBadStatus(status uint32) liberr.Error {
	return eip.ErrorBadStatus.Error(fmt.Errorf("encapsulation status 0x%08X", status))
}

// modbusFramer drives Modbus-TCP gateways: no handshake, MBAP framing, and a
// 16-bit transaction id for correlation.
type modbusFramer struct {
	unitID byte
}

// NewModbusFramer returns a Framer for a Modbus-TCP gateway addressing the
// given unit (slave) id.
func NewModbusFramer(unitID byte) Framer {
	return &modbusFramer{unitID: unitID}
}

func (f *modbusFramer) Handshake(net.Conn, time.Duration) liberr.Error { return nil }
func (f *modbusFramer) Teardown(net.Conn)                              {}

func (f *modbusFramer) CorrelationKey(r *request.Request) uint64 {
	return uint64(uint16(r.SessionSeqID))
}

// ReconnectPolicy gives Modbus-TCP sessions the original driver's fixed
// retry delay.
func (f *modbusFramer) ReconnectPolicy() ReconnectPolicy {
	return FixedBackoff(DefaultReconnectBackoff)
}

func (f *modbusFramer) EncodeFrame(r *request.Request) []byte {
	return modbus.EncodeFrame(uint16(r.SessionSeqID), f.unitID, r.Out.Data)
}

func (f *modbusFramer) ReadFrame(conn net.Conn, timeout time.Duration) (uint64, []byte, liberr.Error) {
	hdrBuf := make([]byte, modbus.HeaderSize)
	if err := readAll(conn, timeout, hdrBuf); err != nil {
		return 0, nil, err
	}
	hdr, e := modbus.DecodeHeader(hdrBuf)
	if e != nil {
		return 0, nil, e
	}

	pdu := make([]byte, hdr.FramePDULength())
	if len(pdu) > 0 {
		if err := readAll(conn, timeout, pdu); err != nil {
			return uint64(hdr.TransactionID), nil, err
		}
	}
	return uint64(hdr.TransactionID), pdu, nil
}

func writeAll(conn net.Conn, timeout time.Duration, b []byte) liberr.Error {
	if timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	if _, e := conn.Write(b); e != nil {
		return ErrorWriteFailed.Error(e)
	}
	return nil
}

func readAll(conn net.Conn, timeout time.Duration, b []byte) liberr.Error {
	if timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
	}
	if _, e := io.ReadFull(conn, b); e != nil {
		return ErrorReadFailed.Error(e)
	}
	return nil
}
