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
	"fmt"

	liberr "github/sabouaram/plctag/errors"
)

const (
	ErrorBadParam liberr.CodeError = iota + liberr.MinPkgPCCC
	ErrorNameTooLong
	ErrorDTOverflow
	ErrorBadAddress
	ErrorStatus
)

// StatusError wraps a non-zero DF1 reply status byte as a liberr.Error,
// carrying the raw code so a caller can match it against the original
// library's STS code table if needed.
func StatusError(sts byte) liberr.Error {
	return ErrorStatus.Error(fmt.Errorf("pccc status 0x%02X", sts))
}

func init() {
	if liberr.ExistInMapMessage(ErrorBadParam) {
		panic(fmt.Errorf("error code collision with package plctag/protocol/pccc"))
	}
	liberr.RegisterIdFctMessage(ErrorBadParam, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorBadParam:
		return "pccc: malformed frame or argument"
	case ErrorNameTooLong:
		return "pccc: tag name exceeds maximum length"
	case ErrorDTOverflow:
		return "pccc: DT-encoded value exceeds 4 bytes"
	case ErrorBadAddress:
		return "pccc: malformed logical address"
	case ErrorStatus:
		return "pccc: controller returned a non-zero reply status"
	}

	return liberr.NullMessage
}
