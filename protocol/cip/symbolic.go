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

// Package cip implements the CIP symbolic tag-name IOI encoding, the CIP
// connection-path encoding (with optional DH+ tail), and the ForwardOpen/
// ForwardClose request shapes of the "ab2" design — chosen as the canonical
// implementation per the two historical parallel designs in the original
// library (see DESIGN.md).
package cip

import (
	"strconv"
	"strings"

	liberr "github/sabouaram/plctag/errors"
)

type segmentKind int

const (
	segName segmentKind = iota
	segIndex
)

type pathSegment struct {
	kind segmentKind
	name string
	idx  uint32
}

// parseSymbolic tokenizes the grammar:
//
//	name ( ("." name) | ("[" number ("," number)* "]") )*
//
// First character of each name must be a letter, underscore, or colon.
func parseSymbolic(input string) ([]pathSegment, liberr.Error) {
	var segs []pathSegment
	i := 0
	n := len(input)
	expectName := true

	for i < n {
		switch {
		case expectName:
			c := input[i]
			if !(isLetter(c) || c == '_' || c == ':') {
				return nil, ErrorBadParam.Error(nil)
			}
			start := i
			for i < n && isNameChar(input[i]) {
				i++
			}
			segs = append(segs, pathSegment{kind: segName, name: input[start:i]})
			expectName = false

		case i < n && input[i] == '.':
			i++
			expectName = true

		case i < n && input[i] == '[':
			i++
			for {
				start := i
				for i < n && input[i] >= '0' && input[i] <= '9' {
					i++
				}
				if i == start {
					return nil, ErrorBadParam.Error(nil)
				}
				v, err := strconv.ParseUint(input[start:i], 10, 32)
				if err != nil {
					return nil, ErrorBadParam.Error(err)
				}
				segs = append(segs, pathSegment{kind: segIndex, idx: uint32(v)})

				if i < n && input[i] == ',' {
					i++
					continue
				}
				break
			}
			if i >= n || input[i] != ']' {
				return nil, ErrorBadParam.Error(nil)
			}
			i++

		default:
			return nil, ErrorBadParam.Error(nil)
		}
	}

	if len(segs) == 0 {
		return nil, ErrorBadParam.Error(nil)
	}

	return segs, nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// EncodeSymbolicPath encodes name as a leading word-count byte
// followed by the IOI bytes. Malformed input returns a bad-param error.
func EncodeSymbolicPath(name string) ([]byte, liberr.Error) {
	segs, err := parseSymbolic(name)
	if err != nil {
		return nil, err
	}

	body := make([]byte, 0, len(name)+4)
	for _, s := range segs {
		switch s.kind {
		case segName:
			body = append(body, 0x91, byte(len(s.name)))
			body = append(body, s.name...)
			if len(s.name)%2 != 0 {
				body = append(body, 0x00)
			}
		case segIndex:
			switch {
			case s.idx <= 0xFF:
				body = append(body, 0x28, byte(s.idx))
			case s.idx <= 0xFFFF:
				body = append(body, 0x29, 0x00, byte(s.idx), byte(s.idx>>8))
			default:
				body = append(body, 0x2A, 0x00,
					byte(s.idx), byte(s.idx>>8), byte(s.idx>>16), byte(s.idx>>24))
			}
		}
	}

	if len(body)%2 != 0 {
		body = append(body, 0x00)
	}

	wordCount := len(body) / 2
	if wordCount > 0xFF {
		return nil, ErrorNameTooLong.Error(nil)
	}

	out := make([]byte, 0, len(body)+1)
	out = append(out, byte(wordCount))
	out = append(out, body...)
	return out, nil
}

// DecodeSymbolicPath reverses EncodeSymbolicPath, reproducing the canonical
// dotted/bracketed name.
func DecodeSymbolicPath(encoded []byte) (string, liberr.Error) {
	if len(encoded) < 1 {
		return "", ErrorBadParam.Error(nil)
	}
	wordCount := int(encoded[0])
	body := encoded[1:]
	if len(body) < wordCount*2 {
		return "", ErrorBadParam.Error(nil)
	}
	body = body[:wordCount*2]

	var sb strings.Builder
	i := 0
	first := true
	pendingIndices := false

	flushBracketIfOpen := func() {
		if pendingIndices {
			sb.WriteByte(']')
			pendingIndices = false
		}
	}

	for i < len(body) {
		switch body[i] {
		case 0x91:
			flushBracketIfOpen()
			if i+1 >= len(body) {
				return "", ErrorBadParam.Error(nil)
			}
			l := int(body[i+1])
			start := i + 2
			end := start + l
			if end > len(body) {
				return "", ErrorBadParam.Error(nil)
			}
			if !first {
				sb.WriteByte('.')
			}
			sb.WriteString(string(body[start:end]))
			first = false
			i = end
			if l%2 != 0 {
				i++
			}
		case 0x28:
			if i+1 >= len(body) {
				return "", ErrorBadParam.Error(nil)
			}
			writeIndex(&sb, &pendingIndices, uint32(body[i+1]))
			i += 2
		case 0x29:
			if i+3 >= len(body) {
				return "", ErrorBadParam.Error(nil)
			}
			v := uint32(body[i+2]) | uint32(body[i+3])<<8
			writeIndex(&sb, &pendingIndices, v)
			i += 4
		case 0x2A:
			if i+5 >= len(body) {
				return "", ErrorBadParam.Error(nil)
			}
			v := uint32(body[i+2]) | uint32(body[i+3])<<8 | uint32(body[i+4])<<16 | uint32(body[i+5])<<24
			writeIndex(&sb, &pendingIndices, v)
			i += 6
		default:
			return "", ErrorBadParam.Error(nil)
		}
	}
	flushBracketIfOpen()

	return sb.String(), nil
}

func writeIndex(sb *strings.Builder, pending *bool, v uint32) {
	if *pending {
		sb.WriteByte(',')
	} else {
		sb.WriteByte('[')
		*pending = true
	}
	sb.WriteString(strconv.FormatUint(uint64(v), 10))
}
