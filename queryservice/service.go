// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package queryservice routes a query to the live or archive namespace
// and runs it through the shared query engine.
package queryservice

import (
	"time"

	"github.com/perfsonar/sls/metrics"
	"github.com/perfsonar/sls/model"
	"github.com/perfsonar/sls/query"
	"github.com/perfsonar/sls/slserrors"
	"github.com/perfsonar/sls/store"
)

// Namespace selects which underlying store a query targets.
type Namespace string

const (
	// Live queries the current Store.
	Live Namespace = "live"
	// Archive queries the read-only archive of historical/tombstoned
	// records.
	Archive Namespace = "archive"
)

// Service routes queries to the live or archive store.
type Service struct {
	engine  *query.Engine
	live    store.Store
	archive store.Store
	metrics *metrics.Set
}

// New builds a Query Service over the given live and archive stores.
// archive may be nil if this cache doesn't serve the archive namespace.
// stats may be nil.
func New(engine *query.Engine, live, archive store.Store, stats *metrics.Set) *Service {
	return &Service{engine: engine, live: live, archive: archive, metrics: stats}
}

// Query runs raw against the requested namespace and returns the
// matching records, skip/limit applied.
func (s *Service) Query(ns Namespace, raw map[string]model.Value) ([]model.Record, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveQueryLatency(time.Since(start)) }()

	target, err := s.storeFor(ns)
	if err != nil {
		s.metrics.ObserveQueryError()
		return nil, err
	}

	q, err := s.engine.Parse(raw)
	if err != nil {
		s.metrics.ObserveQueryError()
		return nil, err
	}
	matcher := s.engine.Compile(q)
	return target.Query(matcher, q.Skip, q.MaxResults)
}

// GetByURI fetches a single record from the requested namespace by its
// identity.
func (s *Service) GetByURI(ns Namespace, uri string) (model.Record, error) {
	target, err := s.storeFor(ns)
	if err != nil {
		return model.Record{}, err
	}
	rec, err := target.GetByURI(uri)
	if err == store.ErrNotFound {
		return model.Record{}, slserrors.NotFound{Message: "record not found"}
	}
	if err != nil {
		return model.Record{}, slserrors.Internal{Message: "failed to read record"}
	}
	return rec, nil
}

func (s *Service) storeFor(ns Namespace) (store.Store, error) {
	switch ns {
	case Live:
		return s.live, nil
	case Archive:
		if s.archive == nil {
			return nil, slserrors.NotSupported{Message: "archive namespace is not configured"}
		}
		return s.archive, nil
	default:
		return nil, slserrors.BadRequest{Message: "unknown namespace"}
	}
}
