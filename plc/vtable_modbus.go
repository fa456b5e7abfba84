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
	"strconv"
	"strings"

	liberr "github/sabouaram/plctag/errors"
	"github/sabouaram/plctag/protocol/modbus"
	"github/sabouaram/plctag/request"
	"github/sabouaram/plctag/tag"
)

// modbusRegKind selects which of the four Modbus data tables a tag name
// addresses.
type modbusRegKind int

const (
	modbusHoldingReg modbusRegKind = iota
	modbusCoil
	modbusDiscreteInput
	modbusInputReg
)

// modbusAddr is a parsed Modbus tag name: a two-letter table prefix (hr/co/
// di/ir, the same mnemonics the original driver's address parser used)
// followed by a decimal starting address.
type modbusAddr struct {
	kind modbusRegKind
	addr uint16
}

func parseModbusName(name string) (modbusAddr, liberr.Error) {
	lower := strings.ToLower(strings.TrimSpace(name))

	var kind modbusRegKind
	var rest string
	switch {
	case strings.HasPrefix(lower, "hr"):
		kind, rest = modbusHoldingReg, lower[2:]
	case strings.HasPrefix(lower, "co"):
		kind, rest = modbusCoil, lower[2:]
	case strings.HasPrefix(lower, "di"):
		kind, rest = modbusDiscreteInput, lower[2:]
	case strings.HasPrefix(lower, "ir"):
		kind, rest = modbusInputReg, lower[2:]
	default:
		return modbusAddr{}, ErrorBadAttrib.Error(nil)
	}

	n, convErr := strconv.ParseUint(rest, 10, 16)
	if convErr != nil {
		return modbusAddr{}, ErrorBadAttrib.Error(convErr)
	}
	return modbusAddr{kind: kind, addr: uint16(n)}, nil
}

// modbusVtable drives a Modbus-TCP tag directly against the shared gateway's
// session: there is no connected-messaging layer in Modbus, so requests are
// unconnected PDUs round-tripped through session.Session.
type modbusVtable struct {
	gw   *sharedGateway
	addr modbusAddr
	inflight
}

func newModbusVtable(gw *sharedGateway, name string) (*modbusVtable, liberr.Error) {
	addr, err := parseModbusName(name)
	if err != nil {
		return nil, err
	}
	return &modbusVtable{gw: gw, addr: addr}, nil
}

func (v *modbusVtable) gateway() *sharedGateway { return v.gw }

func (v *modbusVtable) proto() string { return v.gw.key.protocol }

func (v *modbusVtable) readFunction() (byte, liberr.Error) {
	switch v.addr.kind {
	case modbusHoldingReg:
		return modbus.FuncReadHoldingRegisters, nil
	case modbusCoil:
		return modbus.FuncReadCoils, nil
	case modbusDiscreteInput:
		return modbus.FuncReadDiscreteInputs, nil
	case modbusInputReg:
		return modbus.FuncReadInputRegisters, nil
	default:
		return 0, tag.ErrorBadAttrib.Error(nil)
	}
}

func (v *modbusVtable) ReadStart(t *tag.Tag) liberr.Error {
	Metrics().ReadsStarted.WithLabelValues(v.proto()).Inc()

	function, err := v.readFunction()
	if err != nil {
		Metrics().ReadsFailed.WithLabelValues(v.proto()).Inc()
		return err
	}

	out := modbus.EncodeReadRequest(function, v.addr.addr, uint16(t.ElemCount))
	r := request.New(out, nil, t.Handle)
	v.set(r)

	r.Notify = func(payload []byte, notifyErr liberr.Error) {
		v.clear(r)
		rerr := v.decodeRead(t, payload, notifyErr)
		if rerr != nil {
			Metrics().ReadsFailed.WithLabelValues(v.proto()).Inc()
		} else {
			Metrics().ReadsCompleted.WithLabelValues(v.proto()).Inc()
		}
		t.CompleteRead(rerr)
	}
	if err := v.gw.sess.Submit(r); err != nil {
		Metrics().ReadsFailed.WithLabelValues(v.proto()).Inc()
		return err
	}
	return nil
}

func (v *modbusVtable) decodeRead(t *tag.Tag, pdu []byte, notifyErr liberr.Error) liberr.Error {
	if notifyErr != nil {
		return notifyErr
	}
	data, err := modbus.DecodeReadResponse(pdu)
	if err != nil {
		return err
	}

	if v.addr.kind == modbusCoil || v.addr.kind == modbusDiscreteInput {
		n := len(data)
		if n > t.Buf.Len() {
			n = t.Buf.Len()
		}
		copy(t.Buf.Bytes(), data[:n])
		return nil
	}

	words := len(data) / 2
	if words > t.ElemCount {
		words = t.ElemCount
	}
	for i := 0; i < words; i++ {
		value := uint16(data[i*2])<<8 | uint16(data[i*2+1])
		if err := t.Buf.SetUint16(i*2, value); err != nil {
			return err
		}
	}
	return nil
}

func (v *modbusVtable) WriteStart(t *tag.Tag) liberr.Error {
	Metrics().WritesStarted.WithLabelValues(v.proto()).Inc()

	out, function, err := v.encodeWrite(t)
	if err != nil {
		Metrics().WritesFailed.WithLabelValues(v.proto()).Inc()
		return err
	}

	r := request.New(out, nil, t.Handle)
	v.set(r)

	r.Notify = func(payload []byte, notifyErr liberr.Error) {
		v.clear(r)
		werr := v.decodeWrite(function, payload, notifyErr)
		if werr != nil {
			Metrics().WritesFailed.WithLabelValues(v.proto()).Inc()
		} else {
			Metrics().WritesCompleted.WithLabelValues(v.proto()).Inc()
		}
		t.CompleteWrite(werr)
	}
	if err := v.gw.sess.Submit(r); err != nil {
		Metrics().WritesFailed.WithLabelValues(v.proto()).Inc()
		return err
	}
	return nil
}

func (v *modbusVtable) encodeWrite(t *tag.Tag) ([]byte, byte, liberr.Error) {
	switch v.addr.kind {
	case modbusHoldingReg:
		if t.ElemCount <= 1 {
			value, err := t.Buf.GetUint16(0)
			if err != nil {
				return nil, 0, err
			}
			return modbus.EncodeWriteSingleRegister(v.addr.addr, value), modbus.FuncWriteSingleRegister, nil
		}
		words := make([]uint16, t.ElemCount)
		for i := range words {
			value, err := t.Buf.GetUint16(i * 2)
			if err != nil {
				return nil, 0, err
			}
			words[i] = value
		}
		return modbus.EncodeWriteMultipleRegisters(v.addr.addr, words), modbus.FuncWriteMultipleRegs, nil

	case modbusCoil:
		if t.ElemCount <= 1 {
			on, err := t.Buf.GetBit(0)
			if err != nil {
				return nil, 0, err
			}
			return modbus.EncodeWriteSingleCoil(v.addr.addr, on), modbus.FuncWriteSingleCoil, nil
		}
		coils := make([]bool, t.ElemCount)
		for i := range coils {
			on, err := t.Buf.GetBit(i)
			if err != nil {
				return nil, 0, err
			}
			coils[i] = on
		}
		return modbus.EncodeWriteMultipleCoils(v.addr.addr, coils), modbus.FuncWriteMultipleCoils, nil

	default:
		return nil, 0, tag.ErrorUnsupported.Error(nil)
	}
}

func (v *modbusVtable) decodeWrite(function byte, pdu []byte, notifyErr liberr.Error) liberr.Error {
	if notifyErr != nil {
		return notifyErr
	}
	return modbus.CheckWriteResponse(function, pdu)
}

func (v *modbusVtable) CheckStatus(*tag.Tag) liberr.Error { return nil }

func (v *modbusVtable) Abort(*tag.Tag) liberr.Error {
	if r := v.current(); r != nil {
		v.gw.sess.Abort(r)
	}
	return nil
}

func (v *modbusVtable) GetAttr(*tag.Tag, string) (int, liberr.Error) {
	return 0, tag.ErrorBadAttrib.Error(nil)
}

func (v *modbusVtable) SetAttr(*tag.Tag, string, int) liberr.Error {
	return tag.ErrorBadAttrib.Error(nil)
}

var _ gatewayUser = (*modbusVtable)(nil)
var _ tag.Vtable = (*modbusVtable)(nil)
