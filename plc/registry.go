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

// Package plc is the public entry point: create/read/write/abort/status/
// destroy against an integer tag handle, exactly the operation set the
// attribute-string-driven C API exposes, resolved here onto one of three
// protocol families (native CIP symbolic, PCCC-over-EIP, Modbus-TCP) and
// layered over the shared session/connection transport. A process holds
// exactly one tag registry and one gateway table, lazily built on first use
// and torn down by Shutdown.
package plc

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github/sabouaram/plctag/logger"
	"github/sabouaram/plctag/plc/metrics"
	"github/sabouaram/plctag/tag"
)

var (
	initOnce sync.Once
	tags     *tag.Registry
	gateways *gatewayTable
	log      logger.Logger
	stats    *metrics.Metrics
)

func library() (*tag.Registry, *gatewayTable) {
	initOnce.Do(func() {
		log = logger.New()
		tags = tag.NewRegistry()
		gateways = newGatewayTable(log)

		reg := prometheus.NewRegistry()
		stats = metrics.New(reg)
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "plctag",
			Name:      "gateways_active",
			Help:      "Current number of distinct shared gateways held by this process.",
		}, func() float64 { return float64(gateways.len()) }))
	})
	return tags, gateways
}

// Metrics returns this process's Prometheus collectors, building the
// registry on first use exactly like library does for the tag/gateway
// tables. Safe to call before any tag has been created.
func Metrics() *metrics.Metrics {
	library()
	return stats
}

// Shutdown unconditionally tears down every gateway this process holds and
// replaces the tag registry with a fresh, empty one. Unlike Destroy it does
// not wait for each gateway's refcount to reach zero on its own; it is
// meant for test teardown and graceful process exit, not routine per-tag
// cleanup.
func Shutdown() {
	library()

	gateways.mu.Lock()
	entries := make([]*sharedGateway, 0, len(gateways.entries))
	for k, e := range gateways.entries {
		entries = append(entries, e)
		delete(gateways.entries, k)
	}
	gateways.mu.Unlock()

	for _, e := range entries {
		if e.conn != nil && e.conn.IsOpen() {
			_ = e.conn.Close()
		}
		e.sess.Close()
	}

	tags = tag.NewRegistry()
}

var vendorSerialSeq atomic.Uint32

// nextOriginatorSerial hands out a process-unique CIP originator serial
// number for ForwardOpen, avoiding any two gateways this process opens
// colliding on the wire.
func nextOriginatorSerial() uint32 {
	return vendorSerialSeq.Add(1)
}
