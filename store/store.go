// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package store defines the abstract record store contract. The concrete
// in-memory implementation lives in store/inmem; the query service's
// archive namespace is served by a second instance of that same type.
package store

import (
	"errors"

	"github.com/perfsonar/sls/model"
)

// Sentinel errors a Store implementation returns. Callers at the service
// layer translate these into the slserrors taxonomy; the store itself
// stays agnostic of HTTP status codes.
var (
	// ErrDuplicate is returned by Insert when the record's URI is
	// already present.
	ErrDuplicate = errors.New("record already exists")

	// ErrNotFound is returned by GetByURI, Update, and Delete when the
	// URI is absent.
	ErrNotFound = errors.New("record not found")
)

// Matcher is a predicate over a record, produced by the query engine.
// matcher-only fan-out evaluation (subscription manager) and paged query
// evaluation (query service) share this same type.
type Matcher func(model.Record) bool

// Store is the abstract keyed collection of records. Every operation is
// individually atomic; the store does not guarantee cross-operation
// transactions.
type Store interface {
	// Insert adds a new record and returns its URI. Fails with
	// ErrDuplicate if the URI is already present.
	Insert(rec model.Record) (string, error)

	// GetByURI looks up a record by identity. Returns ErrNotFound if
	// absent.
	GetByURI(uri string) (model.Record, error)

	// Update atomically replaces the stored record at uri. Fails with
	// ErrNotFound if uri is absent.
	Update(uri string, rec model.Record) (model.Record, error)

	// Delete atomically removes and returns the record at uri. Returns
	// ErrNotFound if absent.
	Delete(uri string) (model.Record, error)

	// Query runs matcher over the store's records, in
	// implementation-defined (but stable, for an unmutated store) order,
	// dropping the first skip matches and capping the result at limit
	// (0 = unlimited).
	Query(matcher Matcher, skip, limit int) ([]model.Record, error)

	// PruneExpired removes every record whose ExpiresAt+threshold is
	// before nowMs (nowMs in epoch milliseconds, thresholdMs a duration
	// in milliseconds) and returns the number removed.
	PruneExpired(nowMs, thresholdMs int64) (int, error)
}
