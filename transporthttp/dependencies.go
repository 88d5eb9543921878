// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package transporthttp exposes the cache over HTTP, built on
// gorilla/mux for routing and go-kit's endpoint/transport/http package
// for the decode-endpoint-encode pipeline.
package transporthttp

import (
	"github.com/perfsonar/sls/edit"
	"github.com/perfsonar/sls/query"
	"github.com/perfsonar/sls/queryservice"
	"github.com/perfsonar/sls/registration"
	"github.com/perfsonar/sls/subscription"
	"go.uber.org/zap"
)

// Dependencies are the services the transport layer drives. Nothing
// here reaches for a package-level singleton; every field is supplied
// by the caller (typically an sls.Cache).
type Dependencies struct {
	Engine        *query.Engine
	Registration  *registration.Service
	Edits         *edit.Service
	Queries       *queryservice.Service
	Subscriptions *subscription.Manager
	Logger        *zap.Logger
}

func (d Dependencies) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
