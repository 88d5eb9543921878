// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package lease

import (
	"testing"
	"time"

	"github.com/perfsonar/sls/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLeaseAppliesDefaultTTL(t *testing.T) {
	m := New(0, time.Hour)
	rec := &model.Record{URI: "u1"}
	granted := m.RequestLease(rec)
	require.True(t, granted)
	assert.Equal(t, time.Hour, rec.TTL)
	assert.False(t, rec.ExpiresAt.IsZero())
}

func TestRequestLeaseDeniedAtCapacity(t *testing.T) {
	m := New(1, time.Hour)
	require.True(t, m.RequestLease(&model.Record{URI: "u1"}))
	assert.False(t, m.RequestLease(&model.Record{URI: "u2"}))
	assert.Equal(t, 1, m.ActiveCount())
}

func TestRenewalOfExistingURIDoesNotCountAgainstCapacity(t *testing.T) {
	m := New(1, time.Hour)
	rec := &model.Record{URI: "u1"}
	require.True(t, m.RequestLease(rec))
	require.True(t, m.RequestLease(rec))
	assert.Equal(t, 1, m.ActiveCount())
}

func TestReleaseLeaseIsIdempotent(t *testing.T) {
	m := New(0, time.Hour)
	m.ReleaseLease("missing")
	rec := &model.Record{URI: "u1"}
	m.RequestLease(rec)
	m.ReleaseLease("u1")
	m.ReleaseLease("u1")
	assert.Equal(t, 0, m.ActiveCount())
}

func TestNextExpiryOrdersByEarliestDeadline(t *testing.T) {
	fixedNow := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewWithClock(0, time.Hour, func() time.Time { return fixedNow })

	m.RequestLease(&model.Record{URI: "late", TTL: 2 * time.Hour})
	m.RequestLease(&model.Record{URI: "early", TTL: 30 * time.Minute})

	uri, _, ok := m.NextExpiry()
	require.True(t, ok)
	assert.Equal(t, "early", uri)
}

func TestReconcileDropsStaleLeases(t *testing.T) {
	m := New(0, time.Hour)
	m.RequestLease(&model.Record{URI: "keep"})
	m.RequestLease(&model.Record{URI: "drop"})

	dropped := m.Reconcile(map[string]struct{}{"keep": {}})
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 1, m.ActiveCount())
}
