// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package transporthttp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/perfsonar/sls/model"
	"github.com/perfsonar/sls/query"
	"github.com/perfsonar/sls/slserrors"
)

const (
	slsVarKey = "sls"
	uriVarKey = "uri"
)

var errMissingURIVar = slserrors.BadRequest{Message: "{uri} URL path parameter missing"}

func pathVar(r *http.Request, key string) (string, bool) {
	v, ok := mux.Vars(r)[key]
	return v, ok && v != ""
}

// decodeBodyValues reads the request body as a JSON object of reserved
// and opaque keys into a map[string]model.Value, relying on Value's own
// UnmarshalJSON for per-field shape decoding.
func decodeBodyValues(r *http.Request) (map[string]model.Value, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, slserrors.BadRequest{Message: "failed to read request body"}
	}
	if len(data) == 0 {
		return map[string]model.Value{}, nil
	}
	var raw map[string]model.Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, slserrors.BadRequest{Message: "failed to parse JSON body"}
	}
	return raw, nil
}

// decodeQueryValues turns a URL query string into a map[string]model.Value,
// comma-splitting any multi-valued or comma-bearing parameter into a list
// value and leaving single bare values as scalars.
func decodeQueryValues(r *http.Request) map[string]model.Value {
	out := make(map[string]model.Value)
	for key, values := range r.URL.Query() {
		var parts []string
		for _, v := range values {
			parts = append(parts, strings.Split(v, ",")...)
		}
		if len(parts) == 1 {
			out[key] = model.NewStringValue(parts[0])
		} else {
			out[key] = model.NewListValue(parts)
		}
	}
	return out
}

type registerRequest struct {
	raw map[string]model.Value
}

func decodeRegisterRequest(_ context.Context, r *http.Request) (interface{}, error) {
	raw, err := decodeBodyValues(r)
	if err != nil {
		return nil, err
	}
	return registerRequest{raw: raw}, nil
}

type queryRequest struct {
	raw map[string]model.Value
}

func decodeQueryRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return queryRequest{raw: decodeQueryValues(r)}, nil
}

type getByURIRequest struct {
	uri string
}

func decodeGetByURIRequest(_ context.Context, r *http.Request) (interface{}, error) {
	uri, ok := pathVar(r, uriVarKey)
	if !ok {
		return nil, errMissingURIVar
	}
	return getByURIRequest{uri: uri}, nil
}

type editRequest struct {
	uri   string
	delta map[string]model.Value
}

func decodeEditRequest(_ context.Context, r *http.Request) (interface{}, error) {
	uri, ok := pathVar(r, uriVarKey)
	if !ok {
		return nil, errMissingURIVar
	}
	delta, err := decodeBodyValues(r)
	if err != nil {
		return nil, err
	}
	return editRequest{uri: uri, delta: delta}, nil
}

type subscribeRequest struct {
	spec model.SubscriptionSpec
}

// subscribeWireSpec mirrors the JSON shape of a subscription request.
type subscribeWireSpec struct {
	Endpoint        string                 `json:"endpoint"`
	Query           map[string]model.Value `json:"query"`
	MaxPushEvents   int                    `json:"max-push-events"`
	TimeIntervalSec int                    `json:"time-interval-seconds"`
	AuthHeaderName  string                 `json:"auth-header-name"`
	AuthHeaderVal   string                 `json:"auth-header-value"`
}

// decodeSubscribeRequest runs the saved query through the same engine
// that compiles live queries, so a subscription's operator/clause
// validation matches a regular query's exactly.
func decodeSubscribeRequest(engine *query.Engine) kithttp.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (interface{}, error) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, slserrors.BadRequest{Message: "failed to read request body"}
		}
		var wire subscribeWireSpec
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, slserrors.BadRequest{Message: "failed to parse JSON body"}
		}
		if wire.Endpoint == "" {
			return nil, slserrors.BadRequest{Message: "endpoint is required"}
		}

		q, err := engine.Parse(wire.Query)
		if err != nil {
			return nil, err
		}

		return subscribeRequest{spec: model.SubscriptionSpec{
			Endpoint:       wire.Endpoint,
			Query:          q,
			MaxPushEvents:  wire.MaxPushEvents,
			TimeInterval:   time.Duration(wire.TimeIntervalSec) * time.Second,
			AuthHeaderName: wire.AuthHeaderName,
			AuthHeaderVal:  wire.AuthHeaderVal,
		}}, nil
	}
}
