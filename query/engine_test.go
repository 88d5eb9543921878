// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"testing"

	"github.com/perfsonar/sls/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToAllOperator(t *testing.T) {
	e := New()
	q, err := e.Parse(map[string]model.Value{
		"loc": model.NewStringValue("east"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.OperatorAll, q.Operator)
}

func TestParseRejectsBadOperator(t *testing.T) {
	e := New()
	_, err := e.Parse(map[string]model.Value{
		model.KeyOperator: model.NewStringValue("xor"),
	})
	assert.Error(t, err)
}

func TestParseRejectsNegativeSkip(t *testing.T) {
	e := New()
	_, err := e.Parse(map[string]model.Value{
		model.KeySkip: model.NewStringValue("-1"),
	})
	assert.Error(t, err)
}

func TestEmptyQueryMatchesEverything(t *testing.T) {
	e := New()
	q, err := e.Parse(map[string]model.Value{})
	require.NoError(t, err)
	matcher := e.Compile(q)
	assert.True(t, matcher(model.Record{Type: "service"}))
}

func TestAllVsAnyOperator(t *testing.T) {
	e := New()
	a := model.Record{Type: "service", Attributes: map[string]model.Value{"loc": model.NewStringValue("east")}}
	b := model.Record{Type: "service", Attributes: map[string]model.Value{"loc": model.NewStringValue("west")}}

	allQ, err := e.Parse(map[string]model.Value{
		"type": model.NewStringValue("service"),
		"loc":  model.NewStringValue("east"),
	})
	require.NoError(t, err)
	allMatcher := e.Compile(allQ)
	assert.True(t, allMatcher(a))
	assert.False(t, allMatcher(b))

	anyQ, err := e.Parse(map[string]model.Value{
		"type":            model.NewStringValue("service"),
		"loc":             model.NewListValue([]string{"east", "west"}),
		model.KeyOperator: model.NewStringValue("any"),
	})
	require.NoError(t, err)
	anyMatcher := e.Compile(anyQ)
	assert.True(t, anyMatcher(a))
	assert.True(t, anyMatcher(b))
}

func TestListClauseIntersection(t *testing.T) {
	e := New()
	rec := model.Record{Attributes: map[string]model.Value{
		"tag": model.NewListValue([]string{"x", "y"}),
	}}
	q, err := e.Parse(map[string]model.Value{
		"tag": model.NewListValue([]string{"y", "z"}),
	})
	require.NoError(t, err)
	assert.True(t, e.Compile(q)(rec))
}

func TestClauseMissingKeyDoesNotMatch(t *testing.T) {
	e := New()
	q, err := e.Parse(map[string]model.Value{
		"absent": model.NewStringValue("x"),
	})
	require.NoError(t, err)
	assert.False(t, e.Compile(q)(model.Record{}))
}
