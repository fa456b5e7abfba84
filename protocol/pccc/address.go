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

package pccc

import (
	"strconv"
	"strings"

	liberr "github/sabouaram/plctag/errors"
)

// FileType identifies a PLC-5/SLC data-table file type.
type FileType byte

const (
	FileUnknown FileType = 0x00
	FileASCII   FileType = 0x8e
	FileBCD     FileType = 0x8f
	FileBit     FileType = 0x85
	FileControl FileType = 0x88
	FileCounter FileType = 0x87
	FileFloat   FileType = 0x8a
	FileInput   FileType = 0x8c
	FileInt     FileType = 0x89
	FileLong    FileType = 0x91
	FileMessage FileType = 0x92
	FileOutput  FileType = 0x8b
	FilePID     FileType = 0x93
	FileStatus  FileType = 0x84
	FileString  FileType = 0x8d
	FileTimer   FileType = 0x86
)

var fileTypeLetters = map[byte]FileType{
	'N': FileInt,
	'F': FileFloat,
	'B': FileBit,
	'T': FileTimer,
	'C': FileCounter,
	'R': FileControl,
	'O': FileOutput,
	'I': FileInput,
	'S': FileStatus,
	'A': FileASCII,
	'D': FileBCD,
	'L': FileLong,
	'M': FileMessage,
	'P': FilePID,
	'G': FileString,
}

// elementSizeBytes reports the data-table element width for a file type, used
// to size read/write PCCC requests.
func elementSizeBytes(t FileType) int {
	switch t {
	case FileBit, FileInt, FileCounter, FileTimer, FileControl, FileOutput, FileInput, FileStatus:
		return 2
	case FileFloat, FileLong:
		return 4
	case FileString:
		return 84
	default:
		return 2
	}
}

// Address is a parsed PCCC logical address: file type/number, element, an
// optional sub-element, and an optional bit index.
type Address struct {
	FileType        FileType
	File            int
	Element         int
	SubElement      int
	HasSubElement   bool
	IsBit           bool
	Bit             int
	ElementSizeByte int
}

// ParseLogicalAddress parses the textual PCCC address grammar
// "<file-letter><file-num>:<elem>[.<sub>][/<bit>]", e.g. "N7:0", "F8:3.0",
// "B3:1/4".
func ParseLogicalAddress(s string) (Address, liberr.Error) {
	var addr Address

	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return addr, ErrorBadAddress.Error(nil)
	}

	ft, ok := fileTypeLetters[toUpperASCII(s[0])]
	if !ok {
		return addr, ErrorBadAddress.Error(nil)
	}
	addr.FileType = ft
	addr.ElementSizeByte = elementSizeBytes(ft)

	rest := s[1:]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return addr, ErrorBadAddress.Error(nil)
	}

	fileNum, err := strconv.Atoi(rest[:colon])
	if err != nil {
		return addr, ErrorBadAddress.Error(err)
	}
	addr.File = fileNum

	tail := rest[colon+1:]

	if slash := strings.IndexByte(tail, '/'); slash >= 0 {
		bit, err := strconv.Atoi(tail[slash+1:])
		if err != nil {
			return addr, ErrorBadAddress.Error(err)
		}
		addr.IsBit = true
		addr.Bit = bit
		tail = tail[:slash]
	}

	if dot := strings.IndexByte(tail, '.'); dot >= 0 {
		sub, err := strconv.Atoi(tail[dot+1:])
		if err != nil {
			return addr, ErrorBadAddress.Error(err)
		}
		addr.HasSubElement = true
		addr.SubElement = sub
		tail = tail[:dot]
	}

	elem, err := strconv.Atoi(tail)
	if err != nil {
		return addr, ErrorBadAddress.Error(err)
	}
	addr.Element = elem

	return addr, nil
}

func toUpperASCII(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// EncodePLC5 renders a PLC-5 style address encoding: file number, file type,
// then element (and sub-element when present) as little-endian words.
func (a Address) EncodePLC5() []byte {
	out := make([]byte, 0, 6)
	out = append(out, byte(a.File), byte(a.FileType))
	out = append(out, uint16LE(uint16(a.Element))...)
	if a.HasSubElement {
		out = append(out, uint16LE(uint16(a.SubElement))...)
	}
	return out
}

// EncodeSLC renders an SLC-style encoding, identical field order to PLC-5 for
// the file types this library targets.
func (a Address) EncodeSLC() []byte {
	return a.EncodePLC5()
}

func uint16LE(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}
