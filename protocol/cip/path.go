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

package cip

import (
	"strconv"
	"strings"

	liberr "github/sabouaram/plctag/errors"
)

// messageRouterTrailer addresses the Message Router object (class 2,
// instance 1) and is appended when the path has no DH+ tail and the target
// CPU is Logix-class.
var messageRouterTrailer = []byte{0x20, 0x02, 0x24, 0x01}

// PathInfo carries the encoded route plus the DH+ routing facts a session
// needs to decide whether connected messaging must cross a DH+ bridge.
type PathInfo struct {
	Encoded    []byte
	HasDHP     bool
	DHPSrc     byte
	DHPDst     byte
	DHPChannel byte
}

// EncodeConnectionPath renders comma-separated byte segments,
// with an optional trailing DH+ segment, an optional Logix Message Router
// trailer, and even-length padding. logixClass controls whether the
// Message Router trailer is appended when no DH+ segment is present;
// plc5Class must be true for a path carrying a DH+ segment to be accepted.
func EncodeConnectionPath(path string, logixClass, plc5Class bool) (PathInfo, liberr.Error) {
	var info PathInfo
	segments := strings.Split(path, ",")

	body := make([]byte, 0, len(segments))

	for i, raw := range segments {
		seg := strings.TrimSpace(raw)
		if seg == "" {
			return PathInfo{}, ErrorBadParam.Error(nil)
		}

		if looksLikeIPv4(seg) {
			return PathInfo{}, ErrorPathContainsIP.Error(nil)
		}

		if ch, src, dst, ok := parseDHPSegment(seg); ok {
			if i != len(segments)-1 {
				return PathInfo{}, ErrorDHPNotLast.Error(nil)
			}
			if !plc5Class {
				return PathInfo{}, ErrorDHPWithNonPLC5.Error(nil)
			}
			chByte, cErr := dhpChannelByte(ch)
			if cErr != nil {
				return PathInfo{}, cErr
			}
			info.HasDHP = true
			info.DHPSrc = src
			info.DHPDst = dst
			info.DHPChannel = chByte
			body = append(body, 0x20, 0xA6, 0x24, chByte, 0x2C, 0x01)
			continue
		}

		v, err := strconv.ParseUint(seg, 10, 8)
		if err != nil {
			return PathInfo{}, ErrorBadParam.Error(err)
		}
		body = append(body, byte(v))
	}

	if !info.HasDHP && logixClass {
		body = append(body, messageRouterTrailer...)
	}

	if len(body)%2 != 0 {
		body = append(body, 0x00)
	}

	info.Encoded = body
	return info, nil
}

// parseDHPSegment recognizes "<ch>:<src>:<dst>" where ch is one of
// A, B, a, b, 2, 3.
func parseDHPSegment(seg string) (ch string, src, dst byte, ok bool) {
	parts := strings.Split(seg, ":")
	if len(parts) != 3 {
		return "", 0, 0, false
	}
	switch parts[0] {
	case "A", "B", "a", "b", "2", "3":
	default:
		return "", 0, 0, false
	}

	s, err1 := strconv.ParseUint(parts[1], 10, 8)
	d, err2 := strconv.ParseUint(parts[2], 10, 8)
	if err1 != nil || err2 != nil {
		return "", 0, 0, false
	}
	return parts[0], byte(s), byte(d), true
}

// dhpChannelByte maps the user-facing channel selector to the byte carried
// in the DH+ routing tail: A/a select channel 1, B/b select channel 2, and
// the numeric spellings 2/3 are passed through unchanged as legacy channel
// codes.
func dhpChannelByte(ch string) (byte, liberr.Error) {
	switch ch {
	case "A", "a":
		return 1, nil
	case "B", "b":
		return 2, nil
	case "2":
		return 2, nil
	case "3":
		return 3, nil
	}
	return 0, ErrorBadParam.Error(nil)
}

// looksLikeIPv4 rejects any bare path segment shaped like a dotted-quad IP
// address rather than silently attempting to route through it — the
// explicit resolution of the original library's unchecked
// path-contains-IP-address FIXME.
func looksLikeIPv4(seg string) bool {
	parts := strings.Split(seg, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil || len(p) == 0 {
			return false
		}
		_ = v
	}
	return true
}
