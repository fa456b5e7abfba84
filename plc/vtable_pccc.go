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
	"sync/atomic"

	liberr "github/sabouaram/plctag/errors"
	"github/sabouaram/plctag/protocol/cip"
	"github/sabouaram/plctag/protocol/pccc"
	"github/sabouaram/plctag/tag"
)

// pcccVtable drives a PLC-5/SLC/MicroLogix/MLGX800/Logix-with-PCCC tag: DF1
// protected-typed-logical read/write commands, tunnelled through the PCCC
// object's Execute-PCCC CIP service and carried as connected messages over
// the shared gateway's connection, exactly as ab2/pccc.c frames its requests
// once past the EtherNet/IP transport.
type pcccVtable struct {
	gw       *sharedGateway
	addr     pccc.Address
	vendorID uint16
	serial   uint32
	tns      atomic.Uint32
	inflight
}

func newPCCCVtable(gw *sharedGateway, name string) (*pcccVtable, liberr.Error) {
	addr, err := pccc.ParseLogicalAddress(name)
	if err != nil {
		return nil, err
	}
	return &pcccVtable{
		gw:       gw,
		addr:     addr,
		vendorID: cipVendorID,
		serial:   nextOriginatorSerial(),
	}, nil
}

func (v *pcccVtable) gateway() *sharedGateway { return v.gw }

func (v *pcccVtable) nextTNS() uint16 { return uint16(v.tns.Add(1)) }

func (v *pcccVtable) ensureOpen() liberr.Error {
	if v.gw.conn.IsOpen() {
		return nil
	}
	return v.gw.conn.Open()
}

func (v *pcccVtable) proto() string { return v.gw.key.protocol }

func (v *pcccVtable) ReadStart(t *tag.Tag) liberr.Error {
	if err := v.ensureOpen(); err != nil {
		return err
	}
	Metrics().ReadsStarted.WithLabelValues(v.proto()).Inc()

	tns := v.nextTNS()
	pcccBody := pccc.EncodeTypedReadRequest(tns, v.addr, t.ElemCount)
	execBody := cip.EncodeExecutePCCCRequest(v.vendorID, v.serial, pcccBody)
	body := cip.EncodeServiceRequest(cip.ServiceExecutePCCC, cip.PCCCObjectPath(), execBody)

	r, err := v.gw.conn.NewConnectedRequest(body, nil, t.Handle)
	if err != nil {
		Metrics().ReadsFailed.WithLabelValues(v.proto()).Inc()
		return err
	}
	v.set(r)

	seq := r.ConnSeqNum
	r.Notify = func(payload []byte, notifyErr liberr.Error) {
		v.clear(r)
		rerr := v.decodeRead(t, seq, tns, payload, notifyErr)
		if rerr != nil {
			Metrics().ReadsFailed.WithLabelValues(v.proto()).Inc()
		} else {
			Metrics().ReadsCompleted.WithLabelValues(v.proto()).Inc()
		}
		t.CompleteRead(rerr)
	}
	if err := v.gw.conn.Submit(r); err != nil {
		Metrics().ReadsFailed.WithLabelValues(v.proto()).Inc()
		return err
	}
	return nil
}

func (v *pcccVtable) decodeRead(t *tag.Tag, seq, tns uint16, payload []byte, notifyErr liberr.Error) liberr.Error {
	if notifyErr != nil {
		return notifyErr
	}
	stripped, err := cip.CheckConnSeqNum(seq, payload)
	if err != nil {
		return err
	}
	_, body, err := cip.DecodeReply(stripped)
	if err != nil {
		return err
	}
	data, err := pccc.DecodeReply(tns, body)
	if err != nil {
		return err
	}
	n := len(data)
	if n > t.Buf.Len() {
		n = t.Buf.Len()
	}
	copy(t.Buf.Bytes(), data[:n])
	return nil
}

func (v *pcccVtable) WriteStart(t *tag.Tag) liberr.Error {
	if err := v.ensureOpen(); err != nil {
		return err
	}
	Metrics().WritesStarted.WithLabelValues(v.proto()).Inc()

	tns := v.nextTNS()
	pcccBody := pccc.EncodeTypedWriteRequest(tns, v.addr, t.Buf.Bytes())
	execBody := cip.EncodeExecutePCCCRequest(v.vendorID, v.serial, pcccBody)
	body := cip.EncodeServiceRequest(cip.ServiceExecutePCCC, cip.PCCCObjectPath(), execBody)

	r, err := v.gw.conn.NewConnectedRequest(body, nil, t.Handle)
	if err != nil {
		Metrics().WritesFailed.WithLabelValues(v.proto()).Inc()
		return err
	}
	v.set(r)

	seq := r.ConnSeqNum
	r.Notify = func(payload []byte, notifyErr liberr.Error) {
		v.clear(r)
		werr := v.decodeWrite(seq, tns, payload, notifyErr)
		if werr != nil {
			Metrics().WritesFailed.WithLabelValues(v.proto()).Inc()
		} else {
			Metrics().WritesCompleted.WithLabelValues(v.proto()).Inc()
		}
		t.CompleteWrite(werr)
	}
	if err := v.gw.conn.Submit(r); err != nil {
		Metrics().WritesFailed.WithLabelValues(v.proto()).Inc()
		return err
	}
	return nil
}

func (v *pcccVtable) decodeWrite(seq, tns uint16, payload []byte, notifyErr liberr.Error) liberr.Error {
	if notifyErr != nil {
		return notifyErr
	}
	stripped, err := cip.CheckConnSeqNum(seq, payload)
	if err != nil {
		return err
	}
	_, body, err := cip.DecodeReply(stripped)
	if err != nil {
		return err
	}
	_, err = pccc.DecodeReply(tns, body)
	return err
}

func (v *pcccVtable) CheckStatus(*tag.Tag) liberr.Error { return nil }

func (v *pcccVtable) Abort(*tag.Tag) liberr.Error {
	if r := v.current(); r != nil {
		v.gw.conn.Abort(r)
	}
	return nil
}

func (v *pcccVtable) GetAttr(*tag.Tag, string) (int, liberr.Error) {
	return 0, tag.ErrorBadAttrib.Error(nil)
}

func (v *pcccVtable) SetAttr(*tag.Tag, string, int) liberr.Error {
	return tag.ErrorBadAttrib.Error(nil)
}

var _ gatewayUser = (*pcccVtable)(nil)
var _ tag.Vtable = (*pcccVtable)(nil)
