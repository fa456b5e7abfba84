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
	liberr "github/sabouaram/plctag/errors"
	errpool "github/sabouaram/plctag/errors/pool"
	"github/sabouaram/plctag/protocol/cip"
	"github/sabouaram/plctag/tag"
)

// cipVtable drives a Logix-class tag over native CIP symbolic messaging: the
// Read Tag Service / Write Tag Service pair addressed by an ANSI extended
// symbol path, carried as connected messages over a shared gateway's
// connection.Connection. A tag whose data exceeds cipMaxPayload switches to
// the Fragmented variant of each service, looping fragment by fragment until
// the whole transfer completes; allow_packing gates whether that
// fragmentation is attempted at all, matching the attribute a caller sets
// specifically to allow a tag larger than one CIP reply.
type cipVtable struct {
	gw           *sharedGateway
	symbolicPath []byte
	inflight
}

// cipMaxPayload is the service-specific data this library assumes a gateway
// can return in one CIP reply (~504 B on the wire, minus the 4-byte reply
// header and the fragmented reply's own 2-byte data-type field): the threshold past which a Read or
// Write must fragment across several requests.
const cipMaxPayload = 498

func newCIPVtable(gw *sharedGateway, name string) (*cipVtable, liberr.Error) {
	encoded, err := cip.EncodeSymbolicPath(name)
	if err != nil {
		return nil, err
	}
	return &cipVtable{gw: gw, symbolicPath: encoded}, nil
}

func (v *cipVtable) gateway() *sharedGateway { return v.gw }

func (v *cipVtable) ensureOpen() liberr.Error {
	if v.gw.conn.IsOpen() {
		return nil
	}
	return v.gw.conn.Open()
}

func (v *cipVtable) proto() string { return v.gw.key.protocol }

func (v *cipVtable) trackInFlight(delta float64) {
	g := Metrics().ConnectedInFlight.WithLabelValues(v.gw.key.gateway)
	if delta > 0 {
		g.Inc()
	} else {
		g.Dec()
	}
}

// poolResult combines whatever errors a fragmented transfer's sub-requests
// collected into the single liberr.Error CompleteRead/CompleteWrite expect,
// or nil if errs never saw a failure.
func poolResult(errs errpool.Pool) liberr.Error {
	if errs.Len() == 0 {
		return nil
	}
	if le, ok := errs.Error().(liberr.Error); ok {
		return le
	}
	return liberr.UnknownError.Error(errs.Error())
}

func (v *cipVtable) ReadStart(t *tag.Tag) liberr.Error {
	if err := v.ensureOpen(); err != nil {
		return err
	}
	Metrics().ReadsStarted.WithLabelValues(v.proto()).Inc()

	if t.Buf.Len() <= cipMaxPayload {
		return v.readWhole(t)
	}
	if !t.AllowPacking {
		Metrics().ReadsFailed.WithLabelValues(v.proto()).Inc()
		return ErrorPayloadTooLarge.Error(nil)
	}
	v.sendReadFragment(t, 0, errpool.New(), false)
	return nil
}

func (v *cipVtable) readWhole(t *tag.Tag) liberr.Error {
	data := cip.EncodeReadTagRequest(uint16(t.ElemCount))
	body := cip.EncodeServiceRequest(cip.ServiceReadTag, v.symbolicPath, data)

	r, err := v.gw.conn.NewConnectedRequest(body, nil, t.Handle)
	if err != nil {
		Metrics().ReadsFailed.WithLabelValues(v.proto()).Inc()
		return err
	}
	v.set(r)
	v.trackInFlight(1)

	seq := r.ConnSeqNum
	r.Notify = func(payload []byte, notifyErr liberr.Error) {
		v.clear(r)
		v.trackInFlight(-1)
		rerr := v.decodeRead(t, seq, payload, notifyErr)
		if rerr != nil {
			Metrics().ReadsFailed.WithLabelValues(v.proto()).Inc()
		} else {
			Metrics().ReadsCompleted.WithLabelValues(v.proto()).Inc()
		}
		t.CompleteRead(rerr)
	}
	if err := v.gw.conn.Submit(r); err != nil {
		v.trackInFlight(-1)
		Metrics().ReadsFailed.WithLabelValues(v.proto()).Inc()
		return err
	}
	return nil
}

func (v *cipVtable) decodeRead(t *tag.Tag, seq uint16, payload []byte, notifyErr liberr.Error) liberr.Error {
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
	reply, err := cip.DecodeReadTagReply(body)
	if err != nil {
		return err
	}
	n := len(reply.Data)
	if n > t.Buf.Len() {
		n = t.Buf.Len()
	}
	copy(t.Buf.Bytes(), reply.Data[:n])
	return nil
}

// sendReadFragment issues one Read Tag Fragmented Service request starting
// at offset. Its Notify either advances to the next fragment, retries this
// one exactly once on failure, or completes the tag's read once the device
// reports no more data remains. Exactly one fragment is ever in flight at a
// time, since inflight tracks a single *request.Request per vtable.
func (v *cipVtable) sendReadFragment(t *tag.Tag, offset uint32, errs errpool.Pool, isRetry bool) {
	data := cip.EncodeReadTagFragmentedRequest(uint16(t.ElemCount), offset)
	body := cip.EncodeServiceRequest(cip.ServiceReadTagFragmented, v.symbolicPath, data)

	r, err := v.gw.conn.NewConnectedRequest(body, nil, t.Handle)
	if err != nil {
		v.retryOrFailRead(t, offset, errs, isRetry, err)
		return
	}
	v.set(r)
	v.trackInFlight(1)

	seq := r.ConnSeqNum
	r.Notify = func(payload []byte, notifyErr liberr.Error) {
		v.clear(r)
		v.trackInFlight(-1)

		next, more, derr := v.decodeReadFragment(t, offset, seq, payload, notifyErr)
		if derr != nil {
			v.retryOrFailRead(t, offset, errs, isRetry, derr)
			return
		}
		if more {
			v.sendReadFragment(t, next, errs, false)
			return
		}
		Metrics().PackingSuccess.Inc()
		Metrics().ReadsCompleted.WithLabelValues(v.proto()).Inc()
		t.CompleteRead(nil)
	}
	if err := v.gw.conn.Submit(r); err != nil {
		v.trackInFlight(-1)
		v.retryOrFailRead(t, offset, errs, isRetry, err)
	}
}

// retryOrFailRead retries the fragment at offset exactly once; a second
// failure is collected into errs and ends the read with every sub-request
// error this transfer ever saw, combined through errs.
func (v *cipVtable) retryOrFailRead(t *tag.Tag, offset uint32, errs errpool.Pool, isRetry bool, err liberr.Error) {
	errs.Add(err)
	if !isRetry {
		v.sendReadFragment(t, offset, errs, true)
		return
	}
	Metrics().PackingFailure.Inc()
	Metrics().ReadsFailed.WithLabelValues(v.proto()).Inc()
	t.CompleteRead(poolResult(errs))
}

// decodeReadFragment copies one fragment's data into t.Buf at offset and
// reports the byte position the next fragment should resume at (equal to
// offset when this fragment failed) and whether the device signalled more
// data remains.
func (v *cipVtable) decodeReadFragment(t *tag.Tag, offset uint32, seq uint16, payload []byte, notifyErr liberr.Error) (uint32, bool, liberr.Error) {
	if notifyErr != nil {
		return offset, false, notifyErr
	}
	stripped, err := cip.CheckConnSeqNum(seq, payload)
	if err != nil {
		return offset, false, err
	}
	h, body, err := cip.DecodeReplyPartial(stripped)
	if err != nil {
		return offset, false, err
	}
	reply, err := cip.DecodeReadTagFragmentedReply(h.GeneralStatus, body)
	if err != nil {
		return offset, false, err
	}

	end := int(offset) + len(reply.Data)
	if end > t.Buf.Len() {
		end = t.Buf.Len()
	}
	if end > int(offset) {
		copy(t.Buf.Bytes()[offset:end], reply.Data[:end-int(offset)])
	}
	return uint32(end), reply.More && end < t.Buf.Len(), nil
}

func (v *cipVtable) WriteStart(t *tag.Tag) liberr.Error {
	if err := v.ensureOpen(); err != nil {
		return err
	}
	Metrics().WritesStarted.WithLabelValues(v.proto()).Inc()

	if t.Buf.Len() <= cipMaxPayload {
		return v.writeWhole(t)
	}
	if !t.AllowPacking {
		Metrics().WritesFailed.WithLabelValues(v.proto()).Inc()
		return ErrorPayloadTooLarge.Error(nil)
	}
	v.sendWriteFragment(t, 0, errpool.New(), false)
	return nil
}

func (v *cipVtable) writeWhole(t *tag.Tag) liberr.Error {
	dt := cipTypeForElemSize(t.ElemSize)
	data := cip.EncodeWriteTagRequest(dt, uint16(t.ElemCount), t.Buf.Bytes())
	body := cip.EncodeServiceRequest(cip.ServiceWriteTag, v.symbolicPath, data)

	r, err := v.gw.conn.NewConnectedRequest(body, nil, t.Handle)
	if err != nil {
		Metrics().WritesFailed.WithLabelValues(v.proto()).Inc()
		return err
	}
	v.set(r)
	v.trackInFlight(1)

	seq := r.ConnSeqNum
	r.Notify = func(payload []byte, notifyErr liberr.Error) {
		v.clear(r)
		v.trackInFlight(-1)
		werr := v.decodeWrite(seq, payload, notifyErr)
		if werr != nil {
			Metrics().WritesFailed.WithLabelValues(v.proto()).Inc()
		} else {
			Metrics().WritesCompleted.WithLabelValues(v.proto()).Inc()
		}
		t.CompleteWrite(werr)
	}
	if err := v.gw.conn.Submit(r); err != nil {
		v.trackInFlight(-1)
		Metrics().WritesFailed.WithLabelValues(v.proto()).Inc()
		return err
	}
	return nil
}

func (v *cipVtable) decodeWrite(seq uint16, payload []byte, notifyErr liberr.Error) liberr.Error {
	if notifyErr != nil {
		return notifyErr
	}
	stripped, err := cip.CheckConnSeqNum(seq, payload)
	if err != nil {
		return err
	}
	_, _, err = cip.DecodeReply(stripped)
	return err
}

// sendWriteFragment issues one Write Tag Fragmented Service request for the
// chunk of t.Buf starting at offset, sized to cipMaxPayload. Unlike reads,
// the client picks every chunk boundary up front; the device reply carries
// no continuation flag, so completion is driven entirely by offset reaching
// the buffer's end.
func (v *cipVtable) sendWriteFragment(t *tag.Tag, offset uint32, errs errpool.Pool, isRetry bool) {
	total := t.Buf.Len()
	end := int(offset) + cipMaxPayload
	if end > total {
		end = total
	}
	chunk := t.Buf.Bytes()[offset:end]

	dt := cipTypeForElemSize(t.ElemSize)
	data := cip.EncodeWriteTagFragmentedRequest(dt, uint16(t.ElemCount), offset, chunk)
	body := cip.EncodeServiceRequest(cip.ServiceWriteTagFragmented, v.symbolicPath, data)

	r, err := v.gw.conn.NewConnectedRequest(body, nil, t.Handle)
	if err != nil {
		v.retryOrFailWrite(t, offset, errs, isRetry, err)
		return
	}
	v.set(r)
	v.trackInFlight(1)

	seq := r.ConnSeqNum
	next := uint32(end)
	r.Notify = func(payload []byte, notifyErr liberr.Error) {
		v.clear(r)
		v.trackInFlight(-1)

		if werr := v.decodeWrite(seq, payload, notifyErr); werr != nil {
			v.retryOrFailWrite(t, offset, errs, isRetry, werr)
			return
		}
		if int(next) < total {
			v.sendWriteFragment(t, next, errs, false)
			return
		}
		Metrics().PackingSuccess.Inc()
		Metrics().WritesCompleted.WithLabelValues(v.proto()).Inc()
		t.CompleteWrite(nil)
	}
	if err := v.gw.conn.Submit(r); err != nil {
		v.trackInFlight(-1)
		v.retryOrFailWrite(t, offset, errs, isRetry, err)
	}
}

// retryOrFailWrite mirrors retryOrFailRead for the write-fragment loop.
func (v *cipVtable) retryOrFailWrite(t *tag.Tag, offset uint32, errs errpool.Pool, isRetry bool, err liberr.Error) {
	errs.Add(err)
	if !isRetry {
		v.sendWriteFragment(t, offset, errs, true)
		return
	}
	Metrics().PackingFailure.Inc()
	Metrics().WritesFailed.WithLabelValues(v.proto()).Inc()
	t.CompleteWrite(poolResult(errs))
}

func (v *cipVtable) CheckStatus(*tag.Tag) liberr.Error { return nil }

func (v *cipVtable) Abort(*tag.Tag) liberr.Error {
	if r := v.current(); r != nil {
		v.gw.conn.Abort(r)
	}
	return nil
}

func (v *cipVtable) GetAttr(*tag.Tag, string) (int, liberr.Error) {
	return 0, tag.ErrorBadAttrib.Error(nil)
}

func (v *cipVtable) SetAttr(*tag.Tag, string, int) liberr.Error {
	return tag.ErrorBadAttrib.Error(nil)
}

// cipTypeForElemSize infers the elementary CIP data type to tag a write with
// from the tag's configured element size: the attribute string carries no
// explicit type key, and libplctag's own raw-tag write path makes the same
// size-based inference.
func cipTypeForElemSize(size int) uint16 {
	switch size {
	case 1:
		return cip.TypeSINT
	case 2:
		return cip.TypeINT
	case 8:
		return cip.TypeLINT
	default:
		return cip.TypeDINT
	}
}

var _ gatewayUser = (*cipVtable)(nil)
var _ tag.Vtable = (*cipVtable)(nil)
