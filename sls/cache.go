// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package sls wires one cache instance together: the live and archive
// stores, the lease manager, the query engine, the registration/edit/query
// services built over them, the subscription manager, and the maintenance
// scheduler that drives pruning and flush. There is no package-level
// singleton here — every field of Cache is a value constructed once by the
// caller (typically cmd/slsd's main) and passed around by reference.
package sls

import (
	"net/http"

	gokitlog "github.com/go-kit/log"
	"github.com/perfsonar/sls/config"
	"github.com/perfsonar/sls/edit"
	"github.com/perfsonar/sls/lease"
	"github.com/perfsonar/sls/maintenance"
	"github.com/perfsonar/sls/metrics"
	"github.com/perfsonar/sls/query"
	"github.com/perfsonar/sls/queryservice"
	"github.com/perfsonar/sls/registration"
	"github.com/perfsonar/sls/store"
	"github.com/perfsonar/sls/store/inmem"
	"github.com/perfsonar/sls/subscription"
	"github.com/perfsonar/sls/transporthttp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Cache holds every service that makes up one running lookup service
// instance.
type Cache struct {
	Config  config.Config
	Logger  *zap.Logger
	Metrics *metrics.Set

	Live    store.Store
	Archive store.Store

	Leases *lease.Manager
	Engine *query.Engine

	Registration  *registration.Service
	Edits         *edit.Service
	Queries       *queryservice.Service
	Subscriptions *subscription.Manager

	Maintenance *maintenance.Scheduler
}

// New builds a Cache from cfg, wiring every subsystem with in-memory
// stores, a zap logger, and a prometheus registry. logger and reg may be
// nil, in which case a no-op logger and prometheus.DefaultRegisterer are
// used respectively.
func New(cfg config.Config, logger *zap.Logger, reg prometheus.Registerer) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	live := inmem.New()
	var archive store.Store
	if cfg.Archive {
		archive = inmem.New()
	}

	leases := lease.New(cfg.Lease.Capacity, cfg.Lease.DefaultTTL)
	engine := query.New()
	stats := metrics.New(reg)

	subMetrics := subscription.NewMetrics(reg)
	pusher := subscription.NewHTTPPusher(&http.Client{Timeout: cfg.Sub.PushTimeout}, gokitlog.NewNopLogger())
	subs := subscription.New(engine, pusher,
		subscription.WithLogger(logger),
		subscription.WithMetrics(subMetrics),
		subscription.WithRetireAfter(cfg.Sub.RetireAfter),
		subscription.WithPushTimeout(cfg.Sub.PushTimeout),
		subscription.WithWorkers(cfg.Sub.Workers),
	)

	regSvc := registration.New(live, leases, subs, cfg.SLSID, logger, stats)
	editSvc := edit.New(live, archive, leases, subs, edit.TokenAuthorizer{}, logger, stats)
	querySvc := queryservice.New(engine, live, archive, stats)

	sched := maintenance.New(live, archive, leases, subs, cfg.Maint.PruneInterval, cfg.Maint.FlushInterval, cfg.Maint.PruneThreshold, logger)

	return &Cache{
		Config:        cfg,
		Logger:        logger,
		Metrics:       stats,
		Live:          live,
		Archive:       archive,
		Leases:        leases,
		Engine:        engine,
		Registration:  regSvc,
		Edits:         editSvc,
		Queries:       querySvc,
		Subscriptions: subs,
		Maintenance:   sched,
	}
}

// Start launches the subscription flush worker pool and the maintenance
// scheduler's background loops. Call once after New, before serving
// traffic.
func (c *Cache) Start() {
	c.Subscriptions.Start()
	c.Maintenance.Start()
}

// Stop drains the subscription worker pool and stops the maintenance
// scheduler's loops. Call during shutdown, after the HTTP server has
// stopped accepting new requests.
func (c *Cache) Stop() {
	c.Maintenance.Stop()
	c.Subscriptions.Close()
}

// Dependencies builds the transporthttp.Dependencies value for this
// Cache's services, for handing to transporthttp.NewRouter.
func (c *Cache) Dependencies() transporthttp.Dependencies {
	return transporthttp.Dependencies{
		Engine:        c.Engine,
		Registration:  c.Registration,
		Edits:         c.Edits,
		Queries:       c.Queries,
		Subscriptions: c.Subscriptions,
		Logger:        c.Logger,
	}
}
