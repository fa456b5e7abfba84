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

package eip

import (
	"github/sabouaram/plctag/codec"
	liberr "github/sabouaram/plctag/errors"
)

// Common Packet Format item type IDs, as carried inside the SendRRData and
// SendUnitData encapsulation commands.
const (
	ItemTypeNullAddress      uint16 = 0x0000
	ItemTypeConnectedAddress uint16 = 0x00A1
	ItemTypeUnconnectedData  uint16 = 0x00B2
	ItemTypeConnectedData    uint16 = 0x00B1
)

// cpfHeaderSize is interface_handle(4) + timeout(2) + item_count(2).
const cpfHeaderSize = 8

// EncodeSendRRData wraps an unconnected CIP or PCCC service request (service,
// path, data) in the Common Packet Format body expected by SendRRData: a
// null address item followed by an unconnected-data item carrying payload.
func EncodeSendRRData(payload []byte) []byte {
	b := make([]byte, cpfHeaderSize+4+4+len(payload))
	// interface_handle = 0, timeout = 0
	_ = codec.WriteUint16LE(b, 6, 2) // item_count
	off := cpfHeaderSize
	_ = codec.WriteUint16LE(b, off, ItemTypeNullAddress)
	_ = codec.WriteUint16LE(b, off+2, 0)
	off += 4
	_ = codec.WriteUint16LE(b, off, ItemTypeUnconnectedData)
	_ = codec.WriteUint16LE(b, off+2, uint16(len(payload)))
	off += 4
	copy(b[off:], payload)
	return b
}

// DecodeSendRRData parses a SendRRData reply body, returning the payload
// carried by its unconnected-data item.
func DecodeSendRRData(b []byte) ([]byte, liberr.Error) {
	items, err := decodeCPFItems(b)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.typ == ItemTypeUnconnectedData {
			return it.data, nil
		}
	}
	return nil, ErrorUnexpectedItemType.Error(nil)
}

// EncodeSendUnitData wraps a connected CIP service request (the connection
// sequence number is expected to already occupy the first two bytes of
// payload, as request.Request.EncodeConnectedHeader writes it) in the Common Packet Format
// body expected by SendUnitData: a connected-address item carrying connID
// followed by a connected-data item carrying payload.
func EncodeSendUnitData(connID uint32, payload []byte) []byte {
	b := make([]byte, cpfHeaderSize+4+4+4+len(payload))
	_ = codec.WriteUint16LE(b, 6, 2) // item_count
	off := cpfHeaderSize
	_ = codec.WriteUint16LE(b, off, ItemTypeConnectedAddress)
	_ = codec.WriteUint16LE(b, off+2, 4)
	_ = codec.WriteUint32LE(b, off+4, connID)
	off += 8
	_ = codec.WriteUint16LE(b, off, ItemTypeConnectedData)
	_ = codec.WriteUint16LE(b, off+2, uint16(len(payload)))
	off += 4
	copy(b[off:], payload)
	return b
}

// DecodeSendUnitData parses a SendUnitData reply body, returning the
// connection ID carried by its address item and the payload carried by its
// connected-data item (conn-seq-num still prefixed, per CheckConnSeqNum).
func DecodeSendUnitData(b []byte) (connID uint32, payload []byte, err liberr.Error) {
	items, err := decodeCPFItems(b)
	if err != nil {
		return 0, nil, err
	}
	for _, it := range items {
		if it.typ == ItemTypeConnectedAddress && len(it.data) >= 4 {
			connID, _ = codec.ReadUint32LE(it.data, 0)
		}
	}
	for _, it := range items {
		if it.typ == ItemTypeConnectedData {
			return connID, it.data, nil
		}
	}
	return 0, nil, ErrorUnexpectedItemType.Error(nil)
}

type cpfItem struct {
	typ  uint16
	data []byte
}

func decodeCPFItems(b []byte) ([]cpfItem, liberr.Error) {
	if len(b) < cpfHeaderSize {
		return nil, ErrorBufferTooSmall.Error(nil)
	}
	count, e := codec.ReadUint16LE(b, 6)
	if e != nil {
		return nil, e
	}
	if count == 0 || count > 8 {
		return nil, ErrorBadItemCount.Error(nil)
	}

	items := make([]cpfItem, 0, count)
	off := cpfHeaderSize
	for i := uint16(0); i < count; i++ {
		if off+4 > len(b) {
			return nil, ErrorBufferTooSmall.Error(nil)
		}
		typ, e := codec.ReadUint16LE(b, off)
		if e != nil {
			return nil, e
		}
		ln, e := codec.ReadUint16LE(b, off+2)
		if e != nil {
			return nil, e
		}
		off += 4
		if off+int(ln) > len(b) {
			return nil, ErrorBufferTooSmall.Error(nil)
		}
		items = append(items, cpfItem{typ: typ, data: b[off : off+int(ln)]})
		off += int(ln)
	}
	return items, nil
}
