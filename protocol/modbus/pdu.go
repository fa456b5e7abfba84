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

package modbus

import (
	liberr "github/sabouaram/plctag/errors"
)

// Function codes this library drives.
const (
	FuncReadCoils            byte = 0x01
	FuncReadDiscreteInputs   byte = 0x02
	FuncReadHoldingRegisters byte = 0x03
	FuncReadInputRegisters   byte = 0x04
	FuncWriteSingleCoil      byte = 0x05
	FuncWriteSingleRegister  byte = 0x06
	FuncWriteMultipleCoils   byte = 0x0F
	FuncWriteMultipleRegs    byte = 0x10

	exceptionBit byte = 0x80
)

// EncodeReadRequest builds the PDU for any of the four read function codes:
// function code, starting address, and quantity, big-endian.
func EncodeReadRequest(function byte, address, quantity uint16) []byte {
	return []byte{
		function,
		byte(address >> 8), byte(address),
		byte(quantity >> 8), byte(quantity),
	}
}

// DecodeReadResponse strips the byte-count prefix from a read response PDU
// and returns the raw register/coil payload.
func DecodeReadResponse(pdu []byte) ([]byte, liberr.Error) {
	if len(pdu) < 2 {
		return nil, ErrorBufferTooSmall.Error(nil)
	}
	if pdu[0]&exceptionBit != 0 {
		return nil, ErrorException.Error(nil)
	}

	byteCount := int(pdu[1])
	if len(pdu) < 2+byteCount {
		return nil, ErrorBufferTooSmall.Error(nil)
	}
	return pdu[2 : 2+byteCount], nil
}

// EncodeWriteSingleRegister builds the function-6 PDU.
func EncodeWriteSingleRegister(address, value uint16) []byte {
	return []byte{
		FuncWriteSingleRegister,
		byte(address >> 8), byte(address),
		byte(value >> 8), byte(value),
	}
}

// EncodeWriteSingleCoil builds the function-5 PDU; Modbus represents an "on"
// coil as 0xFF00 and "off" as 0x0000.
func EncodeWriteSingleCoil(address uint16, on bool) []byte {
	value := uint16(0x0000)
	if on {
		value = 0xFF00
	}
	return []byte{
		FuncWriteSingleCoil,
		byte(address >> 8), byte(address),
		byte(value >> 8), byte(value),
	}
}

// EncodeWriteMultipleRegisters builds the function-16 PDU from a slice of
// already-packed register words.
func EncodeWriteMultipleRegisters(address uint16, words []uint16) []byte {
	pdu := make([]byte, 0, 6+len(words)*2)
	pdu = append(pdu, FuncWriteMultipleRegs,
		byte(address>>8), byte(address),
		byte(len(words)>>8), byte(len(words)),
		byte(len(words)*2))

	for _, w := range words {
		pdu = append(pdu, byte(w>>8), byte(w))
	}
	return pdu
}

// EncodeWriteMultipleCoils builds the function-15 PDU from a slice of coil
// states packed 8 per byte, LSB first.
func EncodeWriteMultipleCoils(address uint16, coils []bool) []byte {
	byteCount := (len(coils) + 7) / 8
	data := make([]byte, byteCount)
	for i, on := range coils {
		if on {
			data[i/8] |= 1 << uint(i%8)
		}
	}

	pdu := make([]byte, 0, 6+byteCount)
	pdu = append(pdu, FuncWriteMultipleCoils,
		byte(address>>8), byte(address),
		byte(len(coils)>>8), byte(len(coils)),
		byte(byteCount))
	pdu = append(pdu, data...)
	return pdu
}

// CheckWriteResponse validates that a write-response PDU echoes the request
// function code without an exception flag.
func CheckWriteResponse(function byte, pdu []byte) liberr.Error {
	if len(pdu) == 0 {
		return ErrorBufferTooSmall.Error(nil)
	}
	if pdu[0]&exceptionBit != 0 {
		return ErrorException.Error(nil)
	}
	if pdu[0] != function {
		return ErrorException.Error(nil)
	}
	return nil
}
