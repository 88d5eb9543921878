// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inmem

import (
	"testing"
	"time"

	"github.com/perfsonar/sls/model"
	"github.com/perfsonar/sls/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	store *Store
}

func (s *StoreTestSuite) SetupTest() {
	s.store = New()
}

func (s *StoreTestSuite) TestInsertGetRoundTrip() {
	rec := model.Record{URI: "uri-1", Type: "service", State: model.StateRegister}
	uri, err := s.store.Insert(rec)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "uri-1", uri)

	got, err := s.store.GetByURI("uri-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "service", got.Type)
}

func (s *StoreTestSuite) TestInsertDuplicateFails() {
	rec := model.Record{URI: "uri-1", Type: "service"}
	_, err := s.store.Insert(rec)
	require.NoError(s.T(), err)
	_, err = s.store.Insert(rec)
	assert.ErrorIs(s.T(), err, store.ErrDuplicate)
}

func (s *StoreTestSuite) TestGetMissingFails() {
	_, err := s.store.GetByURI("missing")
	assert.ErrorIs(s.T(), err, store.ErrNotFound)
}

func (s *StoreTestSuite) TestUpdateMissingFails() {
	_, err := s.store.Update("missing", model.Record{})
	assert.ErrorIs(s.T(), err, store.ErrNotFound)
}

func (s *StoreTestSuite) TestDeleteReturnsRecord() {
	rec := model.Record{URI: "uri-1", Type: "service"}
	_, err := s.store.Insert(rec)
	require.NoError(s.T(), err)

	deleted, err := s.store.Delete("uri-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "service", deleted.Type)

	_, err = s.store.GetByURI("uri-1")
	assert.ErrorIs(s.T(), err, store.ErrNotFound)
}

func (s *StoreTestSuite) TestQueryStableOrderAndPaging() {
	for _, uri := range []string{"c", "a", "b"} {
		_, err := s.store.Insert(model.Record{URI: uri, Type: "service"})
		require.NoError(s.T(), err)
	}

	all, err := s.store.Query(nil, 0, 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), []string{"a", "b", "c"}, []string{all[0].URI, all[1].URI, all[2].URI})

	again, err := s.store.Query(nil, 0, 0)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), all, again)

	paged, err := s.store.Query(nil, 1, 1)
	require.NoError(s.T(), err)
	require.Len(s.T(), paged, 1)
	assert.Equal(s.T(), "b", paged[0].URI)

	skipAll, err := s.store.Query(nil, 10, 0)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), skipAll)
}

func (s *StoreTestSuite) TestPruneExpired() {
	fixedNow := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewWithClock(func() time.Time { return fixedNow })

	_, err := st.Insert(model.Record{URI: "expired", ExpiresAt: fixedNow.Add(-time.Hour)})
	require.NoError(s.T(), err)
	_, err = st.Insert(model.Record{URI: "fresh", ExpiresAt: fixedNow.Add(time.Hour)})
	require.NoError(s.T(), err)

	removed, err := st.PruneExpired(fixedNow.UnixMilli(), 0)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, removed)

	_, err = st.GetByURI("expired")
	assert.ErrorIs(s.T(), err, store.ErrNotFound)
	_, err = st.GetByURI("fresh")
	assert.NoError(s.T(), err)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
