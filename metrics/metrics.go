// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package metrics defines the cache's prometheus instrumentation: one
// named constant per series, a gauge for current occupancy, counters
// for discrete operations, a histogram for latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ActiveLeasesGauge    = "sls_active_leases"
	RegistrationsCounter = "sls_registrations_total"
	RenewalsCounter      = "sls_renewals_total"
	DeletesCounter       = "sls_deletes_total"
	LeaseDenialsCounter  = "sls_lease_denials_total"
	QueryLatencySeconds  = "sls_query_duration_seconds"
	QueryErrorsCounter   = "sls_query_errors_total"
)

// Set holds every metric the cache reports. Pass the zero value's fields
// individually if only a subset is needed (e.g. in tests); New wires the
// full set against a registry.
type Set struct {
	ActiveLeases  prometheus.Gauge
	Registrations prometheus.Counter
	Renewals      prometheus.Counter
	Deletes       prometheus.Counter
	LeaseDenials  prometheus.Counter
	QueryLatency  prometheus.Histogram
	QueryErrors   prometheus.Counter
}

// New builds and registers a Set against reg. reg may be
// prometheus.DefaultRegisterer or a dedicated registry for tests.
func New(reg prometheus.Registerer) *Set {
	s := &Set{
		ActiveLeases: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: ActiveLeasesGauge,
			Help: "Number of leases currently admitted.",
		}),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: RegistrationsCounter,
			Help: "Total successful record registrations.",
		}),
		Renewals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: RenewalsCounter,
			Help: "Total successful record renewals.",
		}),
		Deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: DeletesCounter,
			Help: "Total successful record deletions.",
		}),
		LeaseDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: LeaseDenialsCounter,
			Help: "Total registrations/renewals denied for lack of lease capacity.",
		}),
		QueryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    QueryLatencySeconds,
			Help:    "Query Engine evaluation latency.",
			Buckets: prometheus.DefBuckets,
		}),
		QueryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: QueryErrorsCounter,
			Help: "Total queries rejected as malformed or aimed at an unavailable namespace.",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.ActiveLeases, s.Registrations, s.Renewals, s.Deletes, s.LeaseDenials, s.QueryLatency, s.QueryErrors)
	}
	return s
}

// Every observer method is nil-receiver safe, so a Service built without a
// Set (tests, or a cache that opts out of metrics) can call these
// unconditionally instead of guarding every call site.

func (s *Set) ObserveRegistration() {
	if s == nil {
		return
	}
	s.Registrations.Inc()
}

func (s *Set) ObserveRenewal() {
	if s == nil {
		return
	}
	s.Renewals.Inc()
}

func (s *Set) ObserveDelete() {
	if s == nil {
		return
	}
	s.Deletes.Inc()
}

func (s *Set) ObserveLeaseDenial() {
	if s == nil {
		return
	}
	s.LeaseDenials.Inc()
}

func (s *Set) ObserveQueryError() {
	if s == nil {
		return
	}
	s.QueryErrors.Inc()
}

func (s *Set) ObserveQueryLatency(d time.Duration) {
	if s == nil {
		return
	}
	s.QueryLatency.Observe(d.Seconds())
}

func (s *Set) SetActiveLeases(n int) {
	if s == nil {
		return
	}
	s.ActiveLeases.Set(float64(n))
}
