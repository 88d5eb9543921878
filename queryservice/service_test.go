// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package queryservice

import (
	"testing"

	"github.com/perfsonar/sls/model"
	"github.com/perfsonar/sls/query"
	"github.com/perfsonar/sls/slserrors"
	"github.com/perfsonar/sls/store/inmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryServiceAllVsAny(t *testing.T) {
	live := inmem.New()
	_, err := live.Insert(model.Record{URI: "a", Type: "service", Attributes: map[string]model.Value{"loc": model.NewStringValue("east")}})
	require.NoError(t, err)
	_, err = live.Insert(model.Record{URI: "b", Type: "service", Attributes: map[string]model.Value{"loc": model.NewStringValue("west")}})
	require.NoError(t, err)

	svc := New(query.New(), live, nil, nil)

	results, err := svc.Query(Live, map[string]model.Value{
		"type": model.NewStringValue("service"),
		"loc":  model.NewStringValue("east"),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].URI)

	results, err = svc.Query(Live, map[string]model.Value{
		"type":            model.NewStringValue("service"),
		"loc":             model.NewListValue([]string{"east", "west"}),
		model.KeyOperator: model.NewStringValue("any"),
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestQueryServiceArchiveNotConfigured(t *testing.T) {
	svc := New(query.New(), inmem.New(), nil, nil)
	_, err := svc.Query(Archive, map[string]model.Value{})
	var notSupported slserrors.NotSupported
	assert.ErrorAs(t, err, &notSupported)
}
