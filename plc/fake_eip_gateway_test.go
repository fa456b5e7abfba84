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

package plc_test

import (
	"io"
	"net"
	"sync"

	"github/sabouaram/plctag/protocol/cip"
	"github/sabouaram/plctag/protocol/eip"
	"github/sabouaram/plctag/protocol/pccc"
)

const fakeTargConnID uint32 = 0x5EED5EED

// fakePLC5Gateway answers ForwardOpen/ForwardClose plus Execute-PCCC
// protected-typed-logical read/write against a single backing N7 register,
// exactly the traffic a FamilyPLC5 tag generates.
type fakePLC5Gateway struct {
	mu       sync.Mutex
	register int16

	// gate, if non-nil, is read from before every connected reply is written,
	// letting a test hold up a reply to race it against Abort.
	gate chan struct{}
}

func (g *fakePLC5Gateway) serve(ln net.Listener) {
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	hdr := readExactlyFake(conn, eip.HeaderSize)
	h, _ := eip.DecodeHeader(hdr)
	_ = readExactlyFake(conn, int(h.Length))

	reply := make([]byte, eip.HeaderSize+4)
	rh := eip.Header{Command: eip.CommandRegisterSession, Length: 4, SessionHandle: 0x9002}
	_ = rh.Encode(reply)
	copy(reply[eip.HeaderSize:], eip.EncodeRegisterSession())
	if _, werr := conn.Write(reply); werr != nil {
		return
	}

	for {
		hdr := readExactlyFake(conn, eip.HeaderSize)
		if hdr == nil {
			return
		}
		ih, e := eip.DecodeHeader(hdr)
		if e != nil {
			return
		}
		body := readExactlyFake(conn, int(ih.Length))
		if body == nil {
			return
		}

		var replyBody []byte
		switch ih.Command {
		case eip.CommandSendRRData:
			req, _ := eip.DecodeSendRRData(body)
			out := g.handleUnconnected(req)
			replyBody = eip.EncodeSendRRData(out)
		case eip.CommandSendUnitData:
			connID, req, _ := eip.DecodeSendUnitData(body)
			out := g.handleConnected(req)
			if g.gate != nil {
				<-g.gate
			}
			replyBody = eip.EncodeSendUnitData(connID, out)
		default:
			return
		}

		out := make([]byte, eip.HeaderSize+len(replyBody))
		oh := eip.Header{Command: ih.Command, Length: uint16(len(replyBody)), SessionHandle: ih.SessionHandle, SenderContext: ih.SenderContext}
		_ = oh.Encode(out)
		copy(out[eip.HeaderSize:], replyBody)
		if _, werr := conn.Write(out); werr != nil {
			return
		}
	}
}

func (g *fakePLC5Gateway) handleUnconnected(req []byte) []byte {
	service := req[0]
	switch service {
	case cip.ServiceForwardOpen:
		connIDBuf := []byte{byte(fakeTargConnID), byte(fakeTargConnID >> 8), byte(fakeTargConnID >> 16), byte(fakeTargConnID >> 24)}
		return append([]byte{service | 0x80, 0x00, 0x00, 0x00}, connIDBuf...)
	case cip.ServiceForwardClose:
		return []byte{service | 0x80, 0x00, 0x00, 0x00}
	}
	return []byte{service | 0x80, 0x00, 0x08, 0x00}
}

func (g *fakePLC5Gateway) handleConnected(req []byte) []byte {
	seq := append([]byte{}, req[0:2]...)
	msg := req[2:]
	service := msg[0]
	pathWords := int(msg[1])
	data := msg[2+2*pathWords:]

	var cipReply []byte
	switch service {
	case cip.ServiceExecutePCCC:
		cipReply = append([]byte{service | 0x80, 0x00, 0x00, 0x00}, g.execPCCC(data)...)
	default:
		cipReply = []byte{service | 0x80, 0x00, 0x08, 0x00}
	}

	return append(seq, cipReply...)
}

func (g *fakePLC5Gateway) execPCCC(envelope []byte) []byte {
	// envelope: len(1) + vendor(2) + serial(4) + pcccBody
	pcccBody := envelope[7:]
	tns := pcccBody[2:4]
	function := pcccBody[4]
	addrBytes := pcccBody[5:9] // file, type, elem(LE16); no sub-element for N7:k
	rest := pcccBody[9:]

	g.mu.Lock()
	defer g.mu.Unlock()

	switch function {
	case pccc.FuncProtectedTypedRead:
		data := []byte{byte(uint16(g.register)), byte(uint16(g.register) >> 8)}
		return append([]byte{0x4F, 0x00, tns[0], tns[1]}, data...)
	case pccc.FuncProtectedTypedWrite:
		size, consumed, derr := pccc.DecodeDT(rest)
		if derr != nil {
			return []byte{0x4F, 0x10, tns[0], tns[1]}
		}
		payload := rest[consumed:][:int(size)]
		_ = addrBytes
		g.register = int16(uint16(payload[0]) | uint16(payload[1])<<8)
		return []byte{0x4F, 0x00, tns[0], tns[1]}
	}
	return []byte{0x4F, 0x10, tns[0], tns[1]}
}

// fakeLogixGateway answers ForwardOpen/ForwardClose plus native Read Tag
// Service/Write Tag Service against a single backing DINT array, exactly the
// traffic a FamilyLogix tag generates.
type fakeLogixGateway struct {
	mu    sync.Mutex
	array []int32
}

func (g *fakeLogixGateway) serve(ln net.Listener) {
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	hdr := readExactlyFake(conn, eip.HeaderSize)
	h, _ := eip.DecodeHeader(hdr)
	_ = readExactlyFake(conn, int(h.Length))

	reply := make([]byte, eip.HeaderSize+4)
	rh := eip.Header{Command: eip.CommandRegisterSession, Length: 4, SessionHandle: 0x9003}
	_ = rh.Encode(reply)
	copy(reply[eip.HeaderSize:], eip.EncodeRegisterSession())
	if _, werr := conn.Write(reply); werr != nil {
		return
	}

	for {
		hdr := readExactlyFake(conn, eip.HeaderSize)
		if hdr == nil {
			return
		}
		ih, e := eip.DecodeHeader(hdr)
		if e != nil {
			return
		}
		body := readExactlyFake(conn, int(ih.Length))
		if body == nil {
			return
		}

		var replyBody []byte
		switch ih.Command {
		case eip.CommandSendRRData:
			req, _ := eip.DecodeSendRRData(body)
			out := g.handleUnconnected(req)
			replyBody = eip.EncodeSendRRData(out)
		case eip.CommandSendUnitData:
			connID, req, _ := eip.DecodeSendUnitData(body)
			out := g.handleConnected(req)
			replyBody = eip.EncodeSendUnitData(connID, out)
		default:
			return
		}

		out := make([]byte, eip.HeaderSize+len(replyBody))
		oh := eip.Header{Command: ih.Command, Length: uint16(len(replyBody)), SessionHandle: ih.SessionHandle, SenderContext: ih.SenderContext}
		_ = oh.Encode(out)
		copy(out[eip.HeaderSize:], replyBody)
		if _, werr := conn.Write(out); werr != nil {
			return
		}
	}
}

func (g *fakeLogixGateway) handleUnconnected(req []byte) []byte {
	service := req[0]
	switch service {
	case cip.ServiceForwardOpen:
		connIDBuf := []byte{byte(fakeTargConnID), byte(fakeTargConnID >> 8), byte(fakeTargConnID >> 16), byte(fakeTargConnID >> 24)}
		return append([]byte{service | 0x80, 0x00, 0x00, 0x00}, connIDBuf...)
	case cip.ServiceForwardClose:
		return []byte{service | 0x80, 0x00, 0x00, 0x00}
	}
	return []byte{service | 0x80, 0x00, 0x08, 0x00}
}

// fakeMaxFragmentPayload mirrors cipVtable's own cipMaxPayload threshold, so
// a test exercising allow_packing against this fake genuinely has to issue
// more than one Read/Write Tag Fragmented round trip rather than getting the
// whole tag back in one reply.
const fakeMaxFragmentPayload = 498

func (g *fakeLogixGateway) handleConnected(req []byte) []byte {
	seq := append([]byte{}, req[0:2]...)
	msg := req[2:]
	service := msg[0]
	pathWords := int(msg[1])
	data := msg[2+2*pathWords:]

	var cipReply []byte
	switch service {
	case cip.ServiceReadTag:
		cipReply = append([]byte{service | 0x80, 0x00, 0x00, 0x00}, g.readTag(data)...)
	case cip.ServiceWriteTag:
		g.writeTag(data)
		cipReply = []byte{service | 0x80, 0x00, 0x00, 0x00}
	case cip.ServiceReadTagFragmented:
		body, more := g.readTagFragmented(data)
		status := byte(0x00)
		if more {
			status = cip.ReplyPartialTransfer
		}
		cipReply = append([]byte{service | 0x80, 0x00, status, 0x00}, body...)
	case cip.ServiceWriteTagFragmented:
		g.writeTagFragmented(data)
		cipReply = []byte{service | 0x80, 0x00, 0x00, 0x00}
	default:
		cipReply = []byte{service | 0x80, 0x00, 0x08, 0x00}
	}

	return append(seq, cipReply...)
}

func (g *fakeLogixGateway) readTag(data []byte) []byte {
	elemCount := int(uint16(data[0]) | uint16(data[1])<<8)

	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]byte, 2, 2+4*elemCount)
	out[0], out[1] = byte(cip.TypeDINT), byte(cip.TypeDINT>>8)
	for i := 0; i < elemCount && i < len(g.array); i++ {
		v := uint32(g.array[i])
		out = append(out, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return out
}

func (g *fakeLogixGateway) writeTag(data []byte) {
	payload := data[4:]

	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i*4+4 <= len(payload) && i < len(g.array); i++ {
		v := uint32(payload[i*4]) | uint32(payload[i*4+1])<<8 | uint32(payload[i*4+2])<<16 | uint32(payload[i*4+3])<<24
		g.array[i] = int32(v)
	}
}

// readTagFragmented serves the DINT array's bytes starting at the request's
// byte offset, capped to fakeMaxFragmentPayload per reply, reporting whether
// further fragments remain beyond what this reply carries.
func (g *fakeLogixGateway) readTagFragmented(data []byte) ([]byte, bool) {
	offset := int(uint32(data[2]) | uint32(data[3])<<8 | uint32(data[4])<<16 | uint32(data[5])<<24)

	g.mu.Lock()
	total := make([]byte, 4*len(g.array))
	for i, v := range g.array {
		u := uint32(v)
		total[i*4], total[i*4+1], total[i*4+2], total[i*4+3] = byte(u), byte(u>>8), byte(u>>16), byte(u>>24)
	}
	g.mu.Unlock()

	if offset > len(total) {
		offset = len(total)
	}
	end := offset + fakeMaxFragmentPayload
	more := end < len(total)
	if end > len(total) {
		end = len(total)
	}

	out := make([]byte, 2, 2+end-offset)
	out[0], out[1] = byte(cip.TypeDINT), byte(cip.TypeDINT>>8)
	out = append(out, total[offset:end]...)
	return out, more
}

// writeTagFragmented applies one chunk of a fragmented write at the
// request's byte offset: data type(2) + element count(2) + byte offset(4) +
// the chunk's raw bytes.
func (g *fakeLogixGateway) writeTagFragmented(data []byte) {
	offset := int(uint32(data[4]) | uint32(data[5])<<8 | uint32(data[6])<<16 | uint32(data[7])<<24)
	chunk := data[8:]

	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i*4+4 <= len(chunk); i++ {
		byteOff := offset + i*4
		elemIdx := byteOff / 4
		if elemIdx >= len(g.array) {
			break
		}
		v := uint32(chunk[i*4]) | uint32(chunk[i*4+1])<<8 | uint32(chunk[i*4+2])<<16 | uint32(chunk[i*4+3])<<24
		g.array[elemIdx] = int32(v)
	}
}

func readExactlyFake(conn net.Conn, n int) []byte {
	b := make([]byte, n)
	if _, err := io.ReadFull(conn, b); err != nil {
		return nil
	}
	return b
}
