// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package inmem is an in-memory indexed-map Store: a mutex-guarded map.
// One Store instance is one flat keyed collection. Reads do not check
// expiry; expired records leave only through PruneExpired or Delete.
package inmem

import (
	"sort"
	"sync"
	"time"

	"github.com/perfsonar/sls/model"
	"github.com/perfsonar/sls/store"
)

// Store is an in-memory Store implementation, safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	data map[string]model.Record
	now  func() time.Time
}

// New returns an empty in-memory Store.
func New() *Store {
	return &Store{
		data: make(map[string]model.Record),
		now:  time.Now,
	}
}

// NewWithClock returns an empty in-memory Store holding now as its clock.
// No Store operation reads that clock: PruneExpired takes the current
// instant as an argument.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

var _ store.Store = (*Store)(nil)

func (s *Store) Insert(rec model.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[rec.URI]; ok {
		return "", store.ErrDuplicate
	}
	s.data[rec.URI] = rec.Clone()
	return rec.URI, nil
}

func (s *Store) GetByURI(uri string) (model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[uri]
	if !ok {
		return model.Record{}, store.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *Store) Update(uri string, rec model.Record) (model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[uri]; !ok {
		return model.Record{}, store.ErrNotFound
	}
	cp := rec.Clone()
	cp.URI = uri
	s.data[uri] = cp
	return cp.Clone(), nil
}

func (s *Store) Delete(uri string) (model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[uri]
	if !ok {
		return model.Record{}, store.ErrNotFound
	}
	delete(s.data, uri)
	return rec, nil
}

// Query returns matches in URI-sorted order, which is stable across
// consecutive calls as long as the store isn't mutated in between.
func (s *Store) Query(matcher store.Matcher, skip, limit int) ([]model.Record, error) {
	s.mu.Lock()
	uris := make([]string, 0, len(s.data))
	for uri := range s.data {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	matched := make([]model.Record, 0, len(uris))
	for _, uri := range uris {
		rec := s.data[uri]
		if matcher == nil || matcher(rec) {
			matched = append(matched, rec.Clone())
		}
	}
	s.mu.Unlock()

	if skip > 0 {
		if skip >= len(matched) {
			return []model.Record{}, nil
		}
		matched = matched[skip:]
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// PruneExpired removes every record whose ExpiresAt+threshold has passed
// and returns the count removed. nowMs and thresholdMs are both
// milliseconds since the Unix epoch / a millisecond duration.
func (s *Store) PruneExpired(nowMs, thresholdMs int64) (int, error) {
	cutoff := time.UnixMilli(nowMs - thresholdMs)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for uri, rec := range s.data {
		if rec.ExpiresAt.IsZero() {
			continue
		}
		if rec.ExpiresAt.Before(cutoff) {
			delete(s.data, uri)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of records currently stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
