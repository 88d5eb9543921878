// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package maintenance

import (
	"testing"
	"time"

	"github.com/perfsonar/sls/lease"
	"github.com/perfsonar/sls/model"
	"github.com/perfsonar/sls/store/inmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPruneArchivesAndReleasesExpiredLeases(t *testing.T) {
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := frozen
	now := func() time.Time { return clock }

	live := inmem.NewWithClock(now)
	archive := inmem.NewWithClock(now)
	leases := lease.NewWithClock(0, time.Hour, now)

	rec := model.Record{URI: "urn:x", Type: "service", Attributes: map[string]model.Value{"name": model.NewStringValue("a")}}
	require.True(t, leases.RequestLease(&rec))
	_, err := live.Insert(rec)
	require.NoError(t, err)

	sched := New(live, archive, leases, nil, time.Minute, time.Minute, time.Minute, nil)
	sched.now = now

	clock = frozen.Add(2 * time.Hour)
	sched.runPrune()

	_, err = live.GetByURI("urn:x")
	assert.Error(t, err, "expired record should be removed from the live store")

	archived, err := archive.GetByURI("urn:x")
	require.NoError(t, err)
	assert.Equal(t, model.StateExpired, archived.State)

	assert.Equal(t, 0, leases.ActiveCount())
}

func TestRunPruneNoExpiredRecordsIsNoop(t *testing.T) {
	live := inmem.New()
	leases := lease.New(0, time.Hour)
	sched := New(live, nil, leases, nil, time.Minute, time.Minute, time.Minute, nil)
	sched.runPrune()
	assert.Equal(t, 0, leases.ActiveCount())
}
