// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package subscription

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts flush outcomes and subscriber retirements: every
// observable operation gets a counter, labeled by outcome rather than
// split into many series.
type Metrics struct {
	flushes  *prometheus.CounterVec
	retired  prometheus.Counter
	activeGg prometheus.Gauge
}

// NewMetrics registers subscription counters against reg. reg may be a
// dedicated registry or prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sls_subscription_flushes_total",
			Help: "Count of subscription flushes (a push plus at most one retry) by outcome.",
		}, []string{"outcome"}),
		retired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sls_subscription_retired_total",
			Help: "Count of subscriptions retired after exceeding the consecutive-failure threshold.",
		}),
		activeGg: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sls_subscriptions_active",
			Help: "Number of currently registered subscriptions.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.flushes, m.retired, m.activeGg)
	}
	return m
}

func (m *Metrics) observeFlush(success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.flushes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeRetired() {
	if m == nil {
		return
	}
	m.retired.Inc()
}

func (m *Metrics) setActive(n int) {
	if m == nil {
		return
	}
	m.activeGg.Set(float64(n))
}
