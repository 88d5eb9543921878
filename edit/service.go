// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package edit implements renew and delete against an existing record.
// Both operations gate behind a shape check and an access check: shape
// failures are BAD_REQUEST, access failures are FORBIDDEN.
package edit

import (
	"github.com/perfsonar/sls/lease"
	"github.com/perfsonar/sls/metrics"
	"github.com/perfsonar/sls/model"
	"github.com/perfsonar/sls/slserrors"
	"github.com/perfsonar/sls/store"
	"go.uber.org/zap"
)

// FanOut is the Subscription Manager's admission hook, mirroring
// registration.FanOut so this package doesn't need to import it.
type FanOut interface {
	Notify(rec model.Record)
}

// Authorizer decides whether a renew/delete delta is allowed to act on a
// stored record. TokenAuthorizer is the default implementation.
type Authorizer interface {
	Authorize(stored model.Record, presentedToken string) bool
}

// TokenAuthorizer authorizes by comparing the presented token against the
// token the record was registered with. A record registered without a
// token carries no protection to check, so any caller may act on it;
// a record with a token requires an exact match.
type TokenAuthorizer struct{}

func (TokenAuthorizer) Authorize(stored model.Record, presentedToken string) bool {
	if stored.ClientAccessToken == "" {
		return true
	}
	return stored.ClientAccessToken == presentedToken
}

// Service is the Edit Service.
type Service struct {
	store   store.Store
	archive store.Store
	leases  *lease.Manager
	fanout  FanOut
	authz   Authorizer
	logger  *zap.Logger
	metrics *metrics.Set
}

// New builds an Edit Service. archive may be nil, in which case deleted
// records aren't tombstoned anywhere. stats may be nil.
func New(s store.Store, archive store.Store, leases *lease.Manager, fanout FanOut, authz Authorizer, logger *zap.Logger, stats *metrics.Set) *Service {
	if authz == nil {
		authz = TokenAuthorizer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, archive: archive, leases: leases, fanout: fanout, authz: authz, logger: logger, metrics: stats}
}

// Renew applies delta (expected to carry at most a new TTL and an access
// token) to the record at uri, re-admits its lease, and sets state RENEW.
func (s *Service) Renew(uri string, delta map[string]model.Value) (model.Record, error) {
	stored, err := s.store.GetByURI(uri)
	if err == store.ErrNotFound {
		return model.Record{}, slserrors.NotFound{Message: "record not found"}
	}
	if err != nil {
		return model.Record{}, slserrors.Internal{Message: "failed to read record"}
	}

	deltaRec, err := model.RecordFromValues(delta)
	if err != nil {
		return model.Record{}, slserrors.BadRequest{Message: err.Error()}
	}
	if !s.authz.Authorize(stored, deltaRec.ClientAccessToken) {
		return model.Record{}, slserrors.Forbidden{Message: "access token does not authorize this record"}
	}

	updated := stored
	if deltaRec.TTL > 0 {
		updated.TTL = deltaRec.TTL
	}

	if !s.leases.RequestLease(&updated) {
		s.metrics.ObserveLeaseDenial()
		return model.Record{}, slserrors.Forbidden{Message: "failed to secure lease"}
	}
	updated.State = model.StateRenew

	result, err := s.store.Update(uri, updated)
	if err == store.ErrNotFound {
		// Lost a race with a concurrent delete between our read and our
		// write.
		s.leases.ReleaseLease(uri)
		return model.Record{}, slserrors.NotFound{Message: "record not found"}
	}
	if err != nil {
		s.logger.Error("renew failed to persist", zap.String("uri", uri), zap.Error(err))
		return model.Record{}, slserrors.Internal{Message: "failed to persist renewal"}
	}

	s.metrics.ObserveRenewal()
	s.metrics.SetActiveLeases(s.leases.ActiveCount())

	if s.fanout != nil {
		s.fanout.Notify(result)
	}
	return result, nil
}

// Delete removes the record at uri, sets its returned copy's state to
// DELETE, releases its lease, tombstones it into the archive store (if
// configured), and fans it out to subscriptions.
func (s *Service) Delete(uri string, delta map[string]model.Value) (model.Record, error) {
	stored, err := s.store.GetByURI(uri)
	if err == store.ErrNotFound {
		return model.Record{}, slserrors.NotFound{Message: "record not found"}
	}
	if err != nil {
		return model.Record{}, slserrors.Internal{Message: "failed to read record"}
	}

	deltaRec, err := model.RecordFromValues(delta)
	if err != nil {
		return model.Record{}, slserrors.BadRequest{Message: err.Error()}
	}
	if !s.authz.Authorize(stored, deltaRec.ClientAccessToken) {
		return model.Record{}, slserrors.Forbidden{Message: "access token does not authorize this record"}
	}

	deleted, err := s.store.Delete(uri)
	if err == store.ErrNotFound {
		return model.Record{}, slserrors.NotFound{Message: "record not found"}
	}
	if err != nil {
		s.logger.Error("delete failed", zap.String("uri", uri), zap.Error(err))
		return model.Record{}, slserrors.Internal{Message: "failed to delete record"}
	}

	deleted.State = model.StateDelete
	s.leases.ReleaseLease(uri)

	if s.archive != nil {
		if _, err := s.archive.Insert(deleted); err != nil && err != store.ErrDuplicate {
			s.logger.Warn("failed to archive deleted record", zap.String("uri", uri), zap.Error(err))
		}
	}

	s.metrics.ObserveDelete()
	s.metrics.SetActiveLeases(s.leases.ActiveCount())

	if s.fanout != nil {
		s.fanout.Notify(deleted)
	}
	return deleted, nil
}
