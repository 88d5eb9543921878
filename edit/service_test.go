// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package edit

import (
	"testing"
	"time"

	"github.com/perfsonar/sls/lease"
	"github.com/perfsonar/sls/model"
	"github.com/perfsonar/sls/registration"
	"github.com/perfsonar/sls/slserrors"
	"github.com/perfsonar/sls/store/inmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFixtures(capacity int) (*registration.Service, *Service, *inmem.Store) {
	st := inmem.New()
	archive := inmem.New()
	leases := lease.New(capacity, time.Hour)
	reg := registration.New(st, leases, nil, "test", nil, nil)
	edits := New(st, archive, leases, nil, nil, nil, nil)
	return reg, edits, archive
}

func TestRenewExtendsExpiry(t *testing.T) {
	reg, edits, _ := newTestFixtures(0)
	rec, err := reg.Register(map[string]model.Value{
		"type":       model.NewStringValue("service"),
		"name":       model.NewStringValue("a"),
		model.KeyTTL: model.NewListValue([]string{"PT1H"}),
	})
	require.NoError(t, err)
	firstExpiry := rec.ExpiresAt

	renewed, err := edits.Renew(rec.URI, map[string]model.Value{
		model.KeyTTL: model.NewListValue([]string{"PT2H"}),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StateRenew, renewed.State)
	assert.True(t, renewed.ExpiresAt.After(firstExpiry))
}

func TestRenewMissingRecordNotFound(t *testing.T) {
	_, edits, _ := newTestFixtures(0)
	_, err := edits.Renew("missing", nil)
	var nf slserrors.NotFound
	assert.ErrorAs(t, err, &nf)
}

func TestRenewTokenMismatchForbidden(t *testing.T) {
	reg, edits, _ := newTestFixtures(0)
	rec, err := reg.Register(map[string]model.Value{
		"type":              model.NewStringValue("service"),
		"name":              model.NewStringValue("a"),
		model.KeyClientUUID: model.NewStringValue("secret"),
	})
	require.NoError(t, err)

	_, err = edits.Renew(rec.URI, map[string]model.Value{
		model.KeyClientUUID: model.NewStringValue("wrong"),
	})
	var forbidden slserrors.Forbidden
	assert.ErrorAs(t, err, &forbidden)
}

func TestRenewSucceedsAtLeaseCapacity(t *testing.T) {
	reg, edits, _ := newTestFixtures(1)
	rec, err := reg.Register(map[string]model.Value{
		"type": model.NewStringValue("service"),
		"name": model.NewStringValue("a"),
	})
	require.NoError(t, err)

	// Capacity is 1 and this record already holds the only lease. A
	// renewal of an existing URI does not count against capacity, so it
	// still succeeds.
	renewed, err := edits.Renew(rec.URI, map[string]model.Value{})
	require.NoError(t, err)
	assert.Equal(t, model.StateRenew, renewed.State)
}

func TestDeleteThenQueryArchiveHasTombstone(t *testing.T) {
	reg, edits, archive := newTestFixtures(0)
	rec, err := reg.Register(map[string]model.Value{
		"type": model.NewStringValue("service"),
		"name": model.NewStringValue("a"),
	})
	require.NoError(t, err)

	deleted, err := edits.Delete(rec.URI, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StateDelete, deleted.State)

	archived, err := archive.GetByURI(rec.URI)
	require.NoError(t, err)
	assert.Equal(t, model.StateDelete, archived.State)
}

func TestDeleteMissingRecordNotFound(t *testing.T) {
	_, edits, _ := newTestFixtures(0)
	_, err := edits.Delete("missing", nil)
	var nf slserrors.NotFound
	assert.ErrorAs(t, err, &nf)
}
