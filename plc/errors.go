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

package plc

import (
	"fmt"

	liberr "github/sabouaram/plctag/errors"
)

const (
	ErrorBadAttrib liberr.CodeError = iota + liberr.MinPkgPlc
	ErrorMissingGateway
	ErrorMissingName
	ErrorUnknownProtocol
	ErrorUnknownFamily
	ErrorPayloadTooLarge
)

func init() {
	if liberr.ExistInMapMessage(ErrorBadAttrib) {
		panic(fmt.Errorf("error code collision with package plctag/plc"))
	}
	liberr.RegisterIdFctMessage(ErrorBadAttrib, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorBadAttrib:
		return "plc: malformed or out-of-range attribute value"
	case ErrorMissingGateway:
		return "plc: attribute string is missing a gateway"
	case ErrorMissingName:
		return "plc: attribute string is missing a tag name"
	case ErrorUnknownProtocol:
		return "plc: unrecognised protocol attribute"
	case ErrorUnknownFamily:
		return "plc: unrecognised cpu/plc attribute"
	case ErrorPayloadTooLarge:
		return "plc: tag data exceeds one CIP reply and allow_packing is not set"
	}

	return liberr.NullMessage
}
