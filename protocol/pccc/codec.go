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

// Package pccc implements the DF1/PCCC framing used to talk to PLC-5 and
// SLC 5/xx family controllers, either tunneled inside CIP (for ControlLogix
// gateways bridging to a DH+ channel) or carried directly over a DF1 serial
// link. It covers the BCC/CRC-16 checksums, the DT (data-type) byte, tag-name
// encoding, and the logical address grammar.
package pccc

import (
	liberr "github/sabouaram/plctag/errors"
)

// CalculateBCC returns the twos-complement 8-bit checksum of data: the sum of
// all bytes, negated. A DF1 frame is valid when appending this value to the
// frame and summing again yields zero.
func CalculateBCC(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum + 1
}

// crc16Table is the standard reflected CRC-16 table (poly 0xA001) used by
// DF1 framing.
var crc16Table = buildCRC16Table()

func buildCRC16Table() [256]uint16 {
	var table [256]uint16
	for i := 0; i < 256; i++ {
		crc := uint16(i)
		for j := 0; j < 8; j++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
	return table
}

// CalculateCRC16 computes the reflected CRC-16 (poly 0xA001, seed 0) used to
// validate a DF1 frame.
func CalculateCRC16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		idx := byte(crc) ^ b
		crc = (crc >> 8) ^ crc16Table[idx]
	}
	return crc
}

// DT type codes, the high nibble of the DT byte.
const (
	dtTypeByte  = 0
	dtTypeWord  = 1
	dtTypeDWord = 2
)

// EncodeDT packs a data size into a DT byte sequence: the low nibble carries
// the byte count when it fits in 0..6, otherwise the high bit is set and the
// low nibble carries the count of extra length bytes that follow, little
// endian.
func EncodeDT(dataSize uint32) []byte {
	if dataSize <= 6 {
		return []byte{byte(dataSize)}
	}

	switch {
	case dataSize <= 0xFF:
		return []byte{0x81, byte(dataSize)}
	case dataSize <= 0xFFFF:
		return []byte{0x82, byte(dataSize), byte(dataSize >> 8)}
	default:
		return []byte{0x84, byte(dataSize), byte(dataSize >> 8), byte(dataSize >> 16), byte(dataSize >> 24)}
	}
}

// DecodeDT parses a DT byte sequence back into its data size and returns the
// number of bytes the DT sequence itself occupied.
func DecodeDT(data []byte) (size uint32, consumed int, err liberr.Error) {
	if len(data) == 0 {
		return 0, 0, ErrorBadParam.Error(nil)
	}

	first := data[0]
	if first&0x80 == 0 {
		return uint32(first), 1, nil
	}

	extra := int(first & 0x0F)
	if extra == 0 || extra > 4 {
		return 0, 0, ErrorDTOverflow.Error(nil)
	}
	if len(data) < 1+extra {
		return 0, 0, ErrorBadParam.Error(nil)
	}

	var v uint32
	for i := 0; i < extra; i++ {
		v |= uint32(data[1+i]) << (8 * uint(i))
	}

	return v, 1 + extra, nil
}
