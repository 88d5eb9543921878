// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package transporthttp

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	"github.com/perfsonar/sls/queryservice"
)

func registerEndpoint(deps Dependencies) endpoint.Endpoint {
	return func(_ context.Context, request interface{}) (interface{}, error) {
		req := request.(registerRequest)
		return deps.Registration.Register(req.raw)
	}
}

func queryLiveEndpoint(deps Dependencies) endpoint.Endpoint {
	return func(_ context.Context, request interface{}) (interface{}, error) {
		req := request.(queryRequest)
		return deps.Queries.Query(queryservice.Live, req.raw)
	}
}

func queryArchiveEndpoint(deps Dependencies) endpoint.Endpoint {
	return func(_ context.Context, request interface{}) (interface{}, error) {
		req := request.(queryRequest)
		return deps.Queries.Query(queryservice.Archive, req.raw)
	}
}

func getByURIEndpoint(deps Dependencies) endpoint.Endpoint {
	return func(_ context.Context, request interface{}) (interface{}, error) {
		req := request.(getByURIRequest)
		return deps.Queries.GetByURI(queryservice.Live, req.uri)
	}
}

func renewEndpoint(deps Dependencies) endpoint.Endpoint {
	return func(_ context.Context, request interface{}) (interface{}, error) {
		req := request.(editRequest)
		return deps.Edits.Renew(req.uri, req.delta)
	}
}

func deleteEndpoint(deps Dependencies) endpoint.Endpoint {
	return func(_ context.Context, request interface{}) (interface{}, error) {
		req := request.(editRequest)
		return deps.Edits.Delete(req.uri, req.delta)
	}
}

func subscribeEndpoint(deps Dependencies) endpoint.Endpoint {
	return func(_ context.Context, request interface{}) (interface{}, error) {
		req := request.(subscribeRequest)
		return deps.Subscriptions.Subscribe(req.spec)
	}
}
