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
	liberr "github/sabouaram/plctag/errors"
)

// MaxTagNameSize bounds the extended symbolic tag name accepted by
// EncodeTagName.
const MaxTagNameSize = 40

// EncodeTagName renders the extended PCCC symbolic-addressing form used by
// SLC/MicroLogix controllers that expose named tags instead of raw data-table
// files: a leading 0x00 marker byte, an ASCII apostrophe, the tag name, and a
// trailing NUL terminator.
func EncodeTagName(name string) ([]byte, liberr.Error) {
	if len(name) == 0 {
		return nil, ErrorBadParam.Error(nil)
	}
	if len(name) > MaxTagNameSize {
		return nil, ErrorNameTooLong.Error(nil)
	}

	out := make([]byte, 0, len(name)+3)
	out = append(out, 0x00, '\'')
	out = append(out, name...)
	out = append(out, 0x00)
	return out, nil
}

// DecodeTagName reverses EncodeTagName, returning the bare tag name.
func DecodeTagName(b []byte) (string, liberr.Error) {
	if len(b) < 4 || b[0] != 0x00 || b[1] != '\'' || b[len(b)-1] != 0x00 {
		return "", ErrorBadParam.Error(nil)
	}
	return string(b[2 : len(b)-1]), nil
}
