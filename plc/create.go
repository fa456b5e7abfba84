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
	"github/sabouaram/plctag/attr"
	"github/sabouaram/plctag/connection"
	liberr "github/sabouaram/plctag/errors"
	"github/sabouaram/plctag/protocol/cip"
	"github/sabouaram/plctag/session"
	"github/sabouaram/plctag/tag"
)

// cipVendorID identifies this library to a gateway's ForwardOpen/Execute-PCCC
// requestor-id envelope. Not grounded in a literal source constant; a
// plausible caller-assigned vendor id, documented as an open decision.
const cipVendorID uint16 = 0x4647

// defaultConnParameters is the O->T and T->O connection-size word ForwardOpen
// requests: 504-byte unconnected-message-sized transport class 3 data,
// generous enough for the largest single tag read this library issues.
const defaultConnParameters uint16 = 0x43F8

// defaultTimeoutMultiplier is ForwardOpen's connection timeout multiplier;
// 5 matches a commonly used ~8s inactivity watchdog.
const defaultTimeoutMultiplier byte = 5

// Create parses attrString (the "key=value&key=value" grammar attr.Parse
// accepts), resolves its protocol/cpu attributes onto a shared gateway and
// family-specific tag.Vtable, allocates the tag's shadow buffer, registers
// it, and returns its handle. If timeoutMs > 0, Create additionally blocks
// for the tag's first read to complete before returning, surfacing any
// immediate I/O failure synchronously instead of only through Status or the
// event callback.
func Create(attrString string, timeoutMs int, callback tag.EventCallback) (int32, liberr.Error) {
	bag, err := attr.Parse(attrString)
	if err != nil {
		return 0, err
	}

	name := bag.GetString("name", "")
	if name == "" {
		return 0, ErrorMissingName.Error(nil)
	}

	elemSize := int(bag.GetInt("elem_size", 1))
	elemCount := int(bag.GetInt("elem_count", 1))
	if elemSize < 1 || elemCount < 1 {
		return 0, ErrorBadAttrib.Error(nil)
	}

	tagsReg, gatewaysTbl := library()

	family, vt, verr := resolveVtable(gatewaysTbl, bag, name)
	if verr != nil {
		return 0, verr
	}

	buf := tag.NewBuffer(elemSize * elemCount)
	t := tag.New(0, family, vt, buf)
	t.ElemSize = elemSize
	t.ElemCount = elemCount
	t.AllowPacking = bag.GetBool("allow_packing", false)
	t.AutoSyncReadMs = int(bag.GetInt("auto_sync_read_ms", 0))
	t.AutoSyncWriteMs = int(bag.GetInt("auto_sync_write_ms", 0))
	t.ReadCacheMs = int(bag.GetInt("read_cache_ms", 0))
	t.IdleTimeoutMs = int(bag.GetInt("idle_timeout_ms", 0))
	t.DebugLevel = int(bag.GetInt("debug", 0))
	t.Callback = callback

	handle := tagsReg.Create(t)
	Metrics().TagsCreated.Inc()

	if timeoutMs > 0 {
		if rerr := t.Read(timeoutMs); rerr != nil {
			return handle, rerr
		}
	}
	return handle, nil
}

func resolveVtable(gatewaysTbl *gatewayTable, bag *attr.Bag, name string) (tag.PlcFamily, tag.Vtable, liberr.Error) {
	proto := bag.GetString("protocol", "")

	switch proto {
	case "ab_eip", "ab_eip2":
		return resolveEIPVtable(gatewaysTbl, bag, name)
	case "modbus_tcp":
		return resolveModbusVtable(gatewaysTbl, bag, name)
	default:
		return tag.FamilyUnknown, nil, ErrorUnknownProtocol.Error(nil)
	}
}

func resolveEIPVtable(gatewaysTbl *gatewayTable, bag *attr.Bag, name string) (tag.PlcFamily, tag.Vtable, liberr.Error) {
	proto := bag.GetString("protocol", "")
	host := bag.GetString("gateway", "")
	if host == "" {
		return tag.FamilyUnknown, nil, ErrorMissingGateway.Error(nil)
	}

	cpu := bag.GetString("cpu", bag.GetString("plc", ""))
	family := tag.ParseFamily(cpu)
	if family == tag.FamilyUnknown {
		return tag.FamilyUnknown, nil, ErrorUnknownFamily.Error(nil)
	}

	pathStr := bag.GetString("path", "")
	pathInfo, perr := cip.EncodeConnectionPath(pathStr, family.IsLogixClass(), family.IsPLC5Class())
	if perr != nil {
		return tag.FamilyUnknown, nil, perr
	}

	key := gatewayKey{protocol: proto, gateway: host, path: pathStr}
	entry := gatewaysTbl.acquireEIP(key,
		func() *session.Session {
			sess := session.New(host, session.NewEIPFramer(), log)
			sess.OnReconnect = func() { Metrics().SessionReconnects.WithLabelValues(proto).Inc() }
			return sess
		},
		func(sess *session.Session) *connection.Connection {
			return connection.New(sess, connection.Params{
				VendorID:          cipVendorID,
				OriginatorSerial:  nextOriginatorSerial(),
				TimeoutMultiplier: defaultTimeoutMultiplier,
				ConnParameters:    defaultConnParameters,
				Path:              pathInfo.Encoded,
			})
		})

	var (
		vt  tag.Vtable
		err liberr.Error
	)
	if family.UsesPCCC() {
		vt, err = newPCCCVtable(entry, name)
	} else {
		vt, err = newCIPVtable(entry, name)
	}
	if err != nil {
		gatewaysTbl.release(key)
		return tag.FamilyUnknown, nil, err
	}
	return family, vt, nil
}

func resolveModbusVtable(gatewaysTbl *gatewayTable, bag *attr.Bag, name string) (tag.PlcFamily, tag.Vtable, liberr.Error) {
	host := bag.GetString("gateway", "")
	if host == "" {
		return tag.FamilyUnknown, nil, ErrorMissingGateway.Error(nil)
	}
	unitID := byte(bag.GetInt("path", 0))

	key := gatewayKey{protocol: "modbus_tcp", gateway: host, unitID: unitID}
	entry := gatewaysTbl.acquireModbus(key, func() *session.Session {
		sess := session.New(host, session.NewModbusFramer(unitID), log)
		sess.OnReconnect = func() { Metrics().SessionReconnects.WithLabelValues("modbus_tcp").Inc() }
		return sess
	})

	vt, err := newModbusVtable(entry, name)
	if err != nil {
		gatewaysTbl.release(key)
		return tag.FamilyUnknown, nil, err
	}
	return tag.FamilyModbusTCP, vt, nil
}
