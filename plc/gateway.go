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

// gateway.go is the Go equivalent of the original library's global PLC list:
// pccc_plc_get (src/protocols/ab2/pccc.c) looked up or allocated one shared
// plc_t per (gateway, path), refcounted so the last tag to detach tears the
// connection down. Here the same discipline covers every family: one
// session.Session (and, for connected-messaging families, one
// connection.Connection layered over it) is shared by every tag whose
// attribute string resolves to the same gatewayKey.
package plc

import (
	"fmt"
	"sync"

	"github/sabouaram/plctag/connection"
	"github/sabouaram/plctag/logger"
	"github/sabouaram/plctag/refcount"
	"github/sabouaram/plctag/session"
)

type gatewayKey struct {
	protocol string
	gateway  string
	path     string
	unitID   byte
}

func (k gatewayKey) String() string {
	return fmt.Sprintf("%s://%s/%s#%d", k.protocol, k.gateway, k.path, k.unitID)
}

// sharedGateway is the refcounted resource a tag's vtable attaches to: the
// session every family needs, plus the CIP connection that only the
// connected-messaging families (native Logix symbolic, PCCC-over-EIP)
// establish.
type sharedGateway struct {
	key  gatewayKey
	sess *session.Session
	conn *connection.Connection // nil for Modbus-TCP gateways
	ref  *refcount.Ref
}

// attach increments the shared gateway's strong count so a second tag
// targeting the same key can reuse it; must be paired with exactly one
// detach.
func (g *sharedGateway) attach() *sharedGateway {
	g.ref.Inc()
	return g
}

// detach releases one reference; the last caller to detach tears down the
// connection and session and removes the entry from the table.
func (g *sharedGateway) detach() {
	g.ref.Dec()
}

// gatewayTable is the process-wide (gateway, path)-keyed registry, analogous
// to tag.Registry but for the shared transport resources tags attach to
// rather than the tags themselves.
type gatewayTable struct {
	mu      sync.Mutex
	entries map[gatewayKey]*sharedGateway
	log     logger.Logger
}

func newGatewayTable(log logger.Logger) *gatewayTable {
	return &gatewayTable{entries: make(map[gatewayKey]*sharedGateway), log: log}
}

// acquireEIP returns the shared EIP session+connection for key, building a
// fresh pair via buildSess/buildConn only on the first caller.
func (g *gatewayTable) acquireEIP(key gatewayKey, buildSess func() *session.Session, buildConn func(*session.Session) *connection.Connection) *sharedGateway {
	g.mu.Lock()
	defer g.mu.Unlock()

	if e, ok := g.entries[key]; ok {
		return e.attach()
	}

	sess := buildSess()
	conn := buildConn(sess)
	e := &sharedGateway{key: key, sess: sess, conn: conn}
	e.ref = refcount.New(func() {
		if conn != nil && conn.IsOpen() {
			_ = conn.Close()
		}
		sess.Close()
		g.mu.Lock()
		delete(g.entries, key)
		g.mu.Unlock()
	})
	g.entries[key] = e
	return e
}

// acquireModbus returns the shared Modbus-TCP session for key.
func (g *gatewayTable) acquireModbus(key gatewayKey, build func() *session.Session) *sharedGateway {
	return g.acquireEIP(key, build, func(*session.Session) *connection.Connection { return nil })
}

// release drops one reference to the gateway behind key, if present.
func (g *gatewayTable) release(key gatewayKey) {
	g.mu.Lock()
	e, ok := g.entries[key]
	g.mu.Unlock()
	if ok {
		e.detach()
	}
}

// len reports how many distinct gateways are currently attached; the
// plctag_gateways_active GaugeFunc samples it.
func (g *gatewayTable) len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
