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

package metrics_test

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/plctag/plc/metrics"
)

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	_ = c.Write(&m)
	return m.GetCounter().GetValue()
}

func gaugeValue(g prometheus.Gauge) float64 {
	var m dto.Metric
	_ = g.Write(&m)
	return m.GetGauge().GetValue()
}

var _ = Describe("plc/metrics", func() {
	It("registers every collector against the given registry without panicking", func() {
		reg := prometheus.NewRegistry()
		Expect(func() { metrics.New(reg) }).NotTo(Panic())
	})

	It("counts tags created and destroyed independently", func() {
		m := metrics.New(prometheus.NewRegistry())

		m.TagsCreated.Inc()
		m.TagsCreated.Inc()
		m.TagsDestroyed.Inc()

		Expect(counterValue(m.TagsCreated)).To(Equal(2.0))
		Expect(counterValue(m.TagsDestroyed)).To(Equal(1.0))
	})

	It("buckets reads/writes by protocol label", func() {
		m := metrics.New(prometheus.NewRegistry())

		m.ReadsStarted.WithLabelValues("ab_eip").Inc()
		m.ReadsStarted.WithLabelValues("ab_eip").Inc()
		m.ReadsStarted.WithLabelValues("modbus_tcp").Inc()

		Expect(counterValue(m.ReadsStarted.WithLabelValues("ab_eip"))).To(Equal(2.0))
		Expect(counterValue(m.ReadsStarted.WithLabelValues("modbus_tcp"))).To(Equal(1.0))
	})

	It("tracks in-flight connected requests as a gauge that can go back down", func() {
		m := metrics.New(prometheus.NewRegistry())

		g := m.ConnectedInFlight.WithLabelValues("10.1.2.3:44818")
		g.Inc()
		g.Inc()
		g.Dec()

		Expect(gaugeValue(g)).To(Equal(1.0))
	})

	It("counts CIP packing success and failure separately", func() {
		m := metrics.New(prometheus.NewRegistry())

		m.PackingSuccess.Inc()
		m.PackingFailure.Inc()
		m.PackingFailure.Inc()

		Expect(counterValue(m.PackingSuccess)).To(Equal(1.0))
		Expect(counterValue(m.PackingFailure)).To(Equal(2.0))
	})
})
