// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package registration implements record registration: validate, assign
// identity, admit a lease, persist, fan out.
package registration

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/perfsonar/sls/lease"
	"github.com/perfsonar/sls/metrics"
	"github.com/perfsonar/sls/model"
	"github.com/perfsonar/sls/slserrors"
	"github.com/perfsonar/sls/store"
	"go.uber.org/zap"
)

// FanOut is the subscription manager's admission hook: every accepted
// record change is handed off for matcher evaluation against saved
// queries.
type FanOut interface {
	Notify(rec model.Record)
}

// Service is the Registration Service.
type Service struct {
	store     store.Store
	leases    *lease.Manager
	fanout    FanOut
	uriPrefix string
	logger    *zap.Logger
	metrics   *metrics.Set
}

// New builds a Registration Service. uriPrefix is the cache-specific
// namespace prefix every assigned URI carries, combined with a random
// UUID to guarantee uniqueness. stats may be nil.
func New(s store.Store, leases *lease.Manager, fanout FanOut, uriPrefix string, logger *zap.Logger, stats *metrics.Set) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, leases: leases, fanout: fanout, uriPrefix: uriPrefix, logger: logger, metrics: stats}
}

// Register validates, admits, and persists a proposed record, returning
// the stored record (assigned URI and computed expiry included).
func (s *Service) Register(raw map[string]model.Value) (model.Record, error) {
	rec, err := model.RecordFromValues(raw)
	if err != nil {
		return model.Record{}, slserrors.BadRequest{Message: err.Error()}
	}
	if err := validate(rec); err != nil {
		return model.Record{}, err
	}

	rec.State = model.StateRegister
	rec.URI = s.newURI()

	if !s.leases.RequestLease(&rec) {
		s.metrics.ObserveLeaseDenial()
		return model.Record{}, slserrors.Unavailable{Message: "lease capacity exhausted"}
	}

	stored, err := s.store.Insert(rec)
	if err == store.ErrDuplicate {
		s.leases.ReleaseLease(rec.URI)
		rec.URI = s.newURI()
		if !s.leases.RequestLease(&rec) {
			s.metrics.ObserveLeaseDenial()
			return model.Record{}, slserrors.Unavailable{Message: "lease capacity exhausted"}
		}
		stored, err = s.store.Insert(rec)
	}
	if err != nil {
		s.leases.ReleaseLease(rec.URI)
		s.logger.Error("registration failed to persist", zap.Error(err))
		return model.Record{}, slserrors.Internal{Message: "failed to persist record"}
	}
	rec.URI = stored

	s.metrics.ObserveRegistration()
	s.metrics.SetActiveLeases(s.leases.ActiveCount())

	if s.fanout != nil {
		s.fanout.Notify(rec)
	}
	return rec, nil
}

// validate requires a type and at least one identifying payload key.
func validate(rec model.Record) error {
	if rec.Type == "" {
		return slserrors.BadRequest{Message: "record requires a type"}
	}
	if len(rec.Attributes) == 0 {
		return slserrors.BadRequest{Message: "record requires at least one identifying payload key"}
	}
	return nil
}

func (s *Service) newURI() string {
	return fmt.Sprintf("urn:ogf:network:sls:%s:%s", s.uriPrefix, uuid.New().String())
}
