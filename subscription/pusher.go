// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/perfsonar/sls/model"
)

var (
	errDoRequestFailed   = errors.New("subscription push: request failed")
	errNonSuccessStatus  = errors.New("subscription push: non-success response")
)

// Pusher delivers a batch of records to a subscriber's endpoint. Adapted
// from the pull-oriented chrysom client's sendRequest into a push: the
// subscriber is the server here, the cache is the client.
type Pusher interface {
	Push(ctx context.Context, spec model.SubscriptionSpec, batch []model.Record) error
}

// pushEnvelope is the wire body delivered to a subscriber on flush.
type pushEnvelope struct {
	SubscriptionID string         `json:"subscription-id"`
	Batch          []model.Record `json:"batch"`
}

// HTTPPusher pushes batches over HTTP POST, carrying the subscriber's
// configured auth header the same way chrysom's client attaches its
// bearer/basic auth header to outbound requests.
type HTTPPusher struct {
	client *http.Client
	logger log.Logger
}

// NewHTTPPusher builds an HTTPPusher using client, or http.DefaultClient
// if client is nil. logger may be nil, in which case push attempts and
// failures go unlogged.
func NewHTTPPusher(client *http.Client, logger log.Logger) *HTTPPusher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &HTTPPusher{client: client, logger: logger}
}

func (p *HTTPPusher) Push(ctx context.Context, spec model.SubscriptionSpec, batch []model.Record) error {
	body, err := json.Marshal(pushEnvelope{SubscriptionID: spec.ID, Batch: batch})
	if err != nil {
		return fmt.Errorf("subscription push: encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, spec.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("subscription push: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if spec.AuthHeaderName != "" {
		req.Header.Set(spec.AuthHeaderName, spec.AuthHeaderVal)
	}

	level.Debug(p.logger).Log("msg", "pushing subscription batch", "subscription-id", spec.ID, "batch-size", len(batch), "endpoint", spec.Endpoint)

	resp, err := p.client.Do(req)
	if err != nil {
		level.Warn(p.logger).Log("msg", "subscription push request failed", "subscription-id", spec.ID, "err", err)
		return fmt.Errorf("%w: %s", errDoRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		level.Warn(p.logger).Log("msg", "subscription push non-success response", "subscription-id", spec.ID, "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d", errNonSuccessStatus, resp.StatusCode)
	}
	return nil
}
