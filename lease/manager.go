// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package lease implements admission control and TTL bookkeeping for
// records. A Manager is a value, not a singleton: callers construct one
// Manager per cache instance and pass it around explicitly rather than
// reaching for process-wide state.
package lease

import (
	"container/heap"
	"sync"
	"time"

	"github.com/perfsonar/sls/model"
)

// Manager tracks per-record TTL, admits new leases under a capacity
// bound, and processes renewal and expiry.
type Manager struct {
	mu         sync.Mutex
	capacity   int
	defaultTTL time.Duration
	leases     map[string]*expiryEntry
	heap       expiryHeap
	seq        uint64
	now        func() time.Time
}

// New returns a Manager with the given total-lease capacity (0 means
// unbounded) and default TTL applied when a record omits one.
func New(capacity int, defaultTTL time.Duration) *Manager {
	return &Manager{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		leases:     make(map[string]*expiryEntry),
		now:        time.Now,
	}
}

// NewWithClock is New, but the manager's notion of "now" is the supplied
// function, for deterministic tests.
func NewWithClock(capacity int, defaultTTL time.Duration, now func() time.Time) *Manager {
	m := New(capacity, defaultTTL)
	m.now = now
	return m
}

// RequestLease admits or renews the lease for rec.URI. On success it
// stamps rec.TTL and rec.ExpiresAt and returns true. If admitting a brand
// new URI would exceed capacity, it returns false without any side
// effect — the record is left untouched and, for a renewal, the existing
// lease is left in place.
func (m *Manager) RequestLease(rec *model.Record) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, renewal := m.leases[rec.URI]
	if !renewal && m.capacity > 0 && len(m.leases) >= m.capacity {
		return false
	}

	ttl := rec.TTL
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	now := m.now()
	expiresAt := now.Add(ttl)
	m.seq++

	if entry, ok := m.leases[rec.URI]; ok {
		entry.expiresAt = expiresAt
		heap.Fix(&m.heap, entry.index)
	} else {
		entry := &expiryEntry{uri: rec.URI, expiresAt: expiresAt}
		heap.Push(&m.heap, entry)
		m.leases[rec.URI] = entry
	}

	rec.TTL = ttl
	rec.ExpiresAt = expiresAt
	return true
}

// ReleaseLease removes the lease for uri. Idempotent: releasing an
// unknown or already-released URI is a no-op.
func (m *Manager) ReleaseLease(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release(uri)
}

func (m *Manager) release(uri string) {
	entry, ok := m.leases[uri]
	if !ok {
		return
	}
	heap.Remove(&m.heap, entry.index)
	delete(m.leases, uri)
	m.seq++
}

// ActiveCount returns the number of leases currently held.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.leases)
}

// NextExpiry returns the URI and expiry time of the lease due to expire
// soonest, and whether any lease exists at all.
func (m *Manager) NextExpiry() (string, time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.heap) == 0 {
		return "", time.Time{}, false
	}
	return m.heap[0].uri, m.heap[0].expiresAt, true
}

// ExpiredURIs returns every URI whose lease has expired as of now,
// without removing them — the maintenance scheduler decides whether to
// release them after coordinating with the Store.
func (m *Manager) ExpiredURIs(now time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var expired []string
	for _, entry := range m.heap {
		if !entry.expiresAt.After(now) {
			expired = append(expired, entry.uri)
		}
	}
	return expired
}

// Reconcile drops any lease whose URI is no longer present in live,
// re-synchronizing the manager's index with the Store after a prune or
// an out-of-band delete. It returns the number of leases dropped. Meant
// to run as a single background sweep on each maintenance tick.
func (m *Manager) Reconcile(live map[string]struct{}) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stale []string
	for uri := range m.leases {
		if _, ok := live[uri]; !ok {
			stale = append(stale, uri)
		}
	}
	for _, uri := range stale {
		m.release(uri)
	}
	return len(stale)
}
