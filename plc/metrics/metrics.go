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

// Package metrics exposes this library's own operational counters/gauges as
// Prometheus collectors. Every metric is registered against a caller-supplied
// *prometheus.Registry, never the global default, so the library never
// fights an embedding application over registration.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// labels shared by every per-protocol counter.
var protocolLabel = []string{"protocol"}

// Metrics is the set of collectors this library reports against one
// *prometheus.Registry.
type Metrics struct {
	TagsCreated   prometheus.Counter
	TagsDestroyed prometheus.Counter

	ReadsStarted    *prometheus.CounterVec
	ReadsCompleted  *prometheus.CounterVec
	ReadsFailed     *prometheus.CounterVec
	WritesStarted   *prometheus.CounterVec
	WritesCompleted *prometheus.CounterVec
	WritesFailed    *prometheus.CounterVec

	SessionReconnects *prometheus.CounterVec

	ConnectedInFlight *prometheus.GaugeVec

	PackingSuccess prometheus.Counter
	PackingFailure prometheus.Counter
}

// New builds every collector and registers them against reg. reg must not be
// nil; pass prometheus.NewRegistry() for an isolated registry, or an
// application's own registry to merge with its existing metrics.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		TagsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "plctag",
			Name:      "tags_created_total",
			Help:      "Total number of tags created.",
		}),
		TagsDestroyed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "plctag",
			Name:      "tags_destroyed_total",
			Help:      "Total number of tags destroyed.",
		}),
		ReadsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plctag",
			Name:      "reads_started_total",
			Help:      "Total number of read operations started, by protocol.",
		}, protocolLabel),
		ReadsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plctag",
			Name:      "reads_completed_total",
			Help:      "Total number of read operations completed successfully, by protocol.",
		}, protocolLabel),
		ReadsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plctag",
			Name:      "reads_failed_total",
			Help:      "Total number of read operations that ended in error, by protocol.",
		}, protocolLabel),
		WritesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plctag",
			Name:      "writes_started_total",
			Help:      "Total number of write operations started, by protocol.",
		}, protocolLabel),
		WritesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plctag",
			Name:      "writes_completed_total",
			Help:      "Total number of write operations completed successfully, by protocol.",
		}, protocolLabel),
		WritesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plctag",
			Name:      "writes_failed_total",
			Help:      "Total number of write operations that ended in error, by protocol.",
		}, protocolLabel),
		SessionReconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plctag",
			Name:      "session_reconnects_total",
			Help:      "Total number of times a gateway session reconnected after a dropped TCP connection, by protocol.",
		}, protocolLabel),
		ConnectedInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "plctag",
			Name:      "connected_requests_in_flight",
			Help:      "Current number of connected-messaging requests awaiting a reply, by gateway.",
		}, []string{"gateway"}),
		PackingSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "plctag",
			Name:      "cip_packing_success_total",
			Help:      "Total number of allow_packing transfers that completed across Read/Write Tag Fragmented service calls.",
		}),
		PackingFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "plctag",
			Name:      "cip_packing_failure_total",
			Help:      "Total number of allow_packing transfers that gave up after a fragment failed twice.",
		}),
	}

	reg.MustRegister(
		m.TagsCreated,
		m.TagsDestroyed,
		m.ReadsStarted,
		m.ReadsCompleted,
		m.ReadsFailed,
		m.WritesStarted,
		m.WritesCompleted,
		m.WritesFailed,
		m.SessionReconnects,
		m.ConnectedInFlight,
		m.PackingSuccess,
		m.PackingFailure,
	)

	return m
}
