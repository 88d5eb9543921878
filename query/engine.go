// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package query translates a parsed query document into a store.Matcher
// and enforces operator/skip/limit semantics.
package query

import (
	"strconv"

	"github.com/perfsonar/sls/model"
	"github.com/perfsonar/sls/slserrors"
	"github.com/perfsonar/sls/store"
)

// Engine compiles query documents into matchers. It holds no state: every
// method is a pure function of its arguments, so a single Engine can be
// shared freely across the Query Service, the Subscription Manager's
// fan-out evaluation, and tests.
type Engine struct{}

// New returns a ready-to-use Engine.
func New() *Engine { return &Engine{} }

// Parse turns a raw key/value document (already decoded into
// model.Value, whether it arrived as a JSON body or a query string) into
// a model.Query, splitting reserved controls from match clauses and
// validating them, rejecting malformed controls with BAD_REQUEST.
func (e *Engine) Parse(raw map[string]model.Value) (model.Query, error) {
	q := model.Query{
		Operator: model.OperatorAll,
		Clauses:  make(map[string]model.Value, len(raw)),
	}

	for key, val := range raw {
		switch key {
		case model.KeyOperator:
			op, ok := val.First()
			if !ok || (op != model.OperatorAll && op != model.OperatorAny) {
				return model.Query{}, slserrors.BadRequest{Message: "operator must be 'all' or 'any'"}
			}
			q.Operator = op
		case model.KeySkip:
			n, err := nonNegativeInt(val)
			if err != nil {
				return model.Query{}, slserrors.BadRequest{Message: "skip must be a non-negative integer"}
			}
			q.Skip = n
		case model.KeyMaxResults:
			n, err := nonNegativeInt(val)
			if err != nil {
				return model.Query{}, slserrors.BadRequest{Message: "max-results must be a non-negative integer"}
			}
			q.MaxResults = n
		default:
			if !val.Representable() {
				return model.Query{}, slserrors.BadRequest{Message: "unrepresentable value for " + key}
			}
			q.Clauses[key] = val
		}
	}
	return q, nil
}

func nonNegativeInt(v model.Value) (int, error) {
	s, ok := v.First()
	if !ok {
		return 0, errNotInteger
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errNotInteger
	}
	return n, nil
}

var errNotInteger = slserrors.BadRequest{Message: "value is not a non-negative integer"}

// Compile turns a parsed query into a store.Matcher, applying clause
// broadening and all/any combination rules. A query with no clauses
// matches every record.
func (e *Engine) Compile(q model.Query) store.Matcher {
	if len(q.Clauses) == 0 {
		return func(model.Record) bool { return true }
	}

	clauses := make([]func(model.Record) bool, 0, len(q.Clauses))
	for key, want := range q.Clauses {
		key, want := key, want
		clauses = append(clauses, func(rec model.Record) bool {
			return matchesClause(rec, key, want)
		})
	}

	if q.Operator == model.OperatorAny {
		return func(rec model.Record) bool {
			for _, c := range clauses {
				if c(rec) {
					return true
				}
			}
			return false
		}
	}
	return func(rec model.Record) bool {
		for _, c := range clauses {
			if !c(rec) {
				return false
			}
		}
		return true
	}
}

// matchesClause implements per-clause matching: a scalar clause matches
// on equality or set membership; a list clause matches on non-empty
// intersection ("any" is implicit for list values).
func matchesClause(rec model.Record, key string, want model.Value) bool {
	have, ok := rec.Attr(key)
	if !ok {
		return false
	}
	haveSet := make(map[string]struct{})
	for _, s := range have.Strings() {
		haveSet[s] = struct{}{}
	}
	for _, w := range want.Strings() {
		if _, found := haveSet[w]; found {
			return true
		}
	}
	return false
}

// Query runs a matcher against s, applying skip and limit. It never
// returns fewer than min(matches-skip, limit) when that quantity is
// non-negative.
func (e *Engine) Query(s store.Store, matcher store.Matcher, skip, limit int) ([]model.Record, error) {
	return s.Query(matcher, skip, limit)
}
