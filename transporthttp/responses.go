// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package transporthttp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/perfsonar/sls/model"
)

func encodeRecord(_ context.Context, w http.ResponseWriter, response interface{}) error {
	rec := response.(model.Record)
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rec)
}

func encodeRecordList(_ context.Context, w http.ResponseWriter, response interface{}) error {
	recs := response.([]model.Record)
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(recs)
}

func encodeDeleted(_ context.Context, w http.ResponseWriter, response interface{}) error {
	rec := response.(model.Record)
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rec)
}

type subscribeResponse struct {
	ID string `json:"subscription-id"`
}

func encodeSubscribed(_ context.Context, w http.ResponseWriter, response interface{}) error {
	id := response.(string)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(subscribeResponse{ID: id})
}
