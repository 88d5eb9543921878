// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package transporthttp

import (
	"net/http"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the cache's full HTTP surface: record registration,
// query (live and archive), renew, delete, and subscribe, plus a
// Prometheus metrics endpoint.
func NewRouter(deps Dependencies) *mux.Router {
	r := mux.NewRouter()

	recordsPath := "/{" + slsVarKey + "}/records"
	itemPath := recordsPath + "/{" + uriVarKey + "}"

	r.Handle(recordsPath, kithttp.NewServer(
		registerEndpoint(deps),
		decodeRegisterRequest,
		encodeRecord,
		kithttp.ServerErrorEncoder(encodeError),
	)).Methods(http.MethodPost)

	r.Handle(recordsPath, kithttp.NewServer(
		queryLiveEndpoint(deps),
		decodeQueryRequest,
		encodeRecordList,
		kithttp.ServerErrorEncoder(encodeError),
	)).Methods(http.MethodGet)

	r.Handle(itemPath, kithttp.NewServer(
		getByURIEndpoint(deps),
		decodeGetByURIRequest,
		encodeRecord,
		kithttp.ServerErrorEncoder(encodeError),
	)).Methods(http.MethodGet)

	r.Handle(itemPath, kithttp.NewServer(
		renewEndpoint(deps),
		decodeEditRequest,
		encodeRecord,
		kithttp.ServerErrorEncoder(encodeError),
	)).Methods(http.MethodPost)

	r.Handle(itemPath, kithttp.NewServer(
		deleteEndpoint(deps),
		decodeEditRequest,
		encodeDeleted,
		kithttp.ServerErrorEncoder(encodeError),
	)).Methods(http.MethodDelete)

	r.Handle("/{"+slsVarKey+"}/subscribe", kithttp.NewServer(
		subscribeEndpoint(deps),
		decodeSubscribeRequest(deps.Engine),
		encodeSubscribed,
		kithttp.ServerErrorEncoder(encodeError),
	)).Methods(http.MethodPost)

	r.Handle("/lookup/services/archive", kithttp.NewServer(
		queryArchiveEndpoint(deps),
		decodeQueryRequest,
		encodeRecordList,
		kithttp.ServerErrorEncoder(encodeError),
	)).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
