// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package subscription implements saved queries that receive a batched
// push of every record passing through registration, renewal, or
// deletion that matches them: a saved filter, periodic delivery, and a
// consecutive-failure count leading to retirement on sustained delivery
// failure.
package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/perfsonar/sls/model"
	"github.com/perfsonar/sls/query"
	"go.uber.org/zap"
)

const (
	defaultMaxPushEvents  = 10
	defaultTimeInterval   = 30 * time.Second
	defaultRetireAfter    = 3
	defaultPushTimeout    = 8 * time.Second
	defaultWorkers        = 4
	defaultFlushChanDepth = 256
)

// Manager holds every live subscription, evaluates each incoming record
// against their saved queries, and drives delivery through a bounded
// pool of flush workers so a slow or unreachable subscriber cannot
// apply back-pressure to the write path that fans out to it.
type Manager struct {
	mu   sync.RWMutex
	subs map[string]*queue

	engine *query.Engine
	pusher Pusher
	now    func() time.Time
	logger *zap.Logger
	stats  *Metrics

	retireAfter int
	pushTimeout time.Duration
	workers     int

	flushCh chan string
	stop    chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithClock overrides the manager's time source, for deterministic
// tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithMetrics attaches a Metrics collector.
func WithMetrics(stats *Metrics) Option {
	return func(m *Manager) { m.stats = stats }
}

// WithRetireAfter overrides the consecutive-failure count at which a
// subscription is dropped. The default is 3.
func WithRetireAfter(n int) Option {
	return func(m *Manager) { m.retireAfter = n }
}

// WithPushTimeout overrides the per-push context deadline. Each attempt,
// including the retry, gets its own deadline.
func WithPushTimeout(d time.Duration) Option {
	return func(m *Manager) { m.pushTimeout = d }
}

// WithWorkers overrides the size of the flush worker pool.
func WithWorkers(n int) Option {
	return func(m *Manager) { m.workers = n }
}

// New builds a Manager. engine compiles saved queries into matchers;
// pusher delivers flushed batches.
func New(engine *query.Engine, pusher Pusher, opts ...Option) *Manager {
	m := &Manager{
		subs:        make(map[string]*queue),
		engine:      engine,
		pusher:      pusher,
		now:         time.Now,
		logger:      zap.NewNop(),
		retireAfter: defaultRetireAfter,
		pushTimeout: defaultPushTimeout,
		workers:     defaultWorkers,
		flushCh:     make(chan string, defaultFlushChanDepth),
		stop:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the flush worker pool. Call once after New.
func (m *Manager) Start() {
	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go m.runWorker()
	}
}

// Close stops the worker pool and waits for in-flight flushes to drain.
func (m *Manager) Close() {
	close(m.stop)
	m.wg.Wait()
}

// Subscribe registers a saved query for delivery. If spec.ID is empty
// one is assigned. Zero MaxPushEvents/TimeInterval fall back to the
// package defaults (10 events, 30s).
func (m *Manager) Subscribe(spec model.SubscriptionSpec) (string, error) {
	if spec.ID == "" {
		spec.ID = uuid.NewString()
	}
	if spec.MaxPushEvents <= 0 {
		spec.MaxPushEvents = defaultMaxPushEvents
	}
	if spec.TimeInterval <= 0 {
		spec.TimeInterval = defaultTimeInterval
	}

	matcher := m.engine.Compile(spec.Query)
	q := newQueue(spec, matcher, m.now())

	m.mu.Lock()
	m.subs[spec.ID] = q
	active := len(m.subs)
	m.mu.Unlock()
	m.stats.setActive(active)

	return spec.ID, nil
}

// Unsubscribe removes a subscription. Idempotent.
func (m *Manager) Unsubscribe(id string) {
	m.mu.Lock()
	delete(m.subs, id)
	active := len(m.subs)
	m.mu.Unlock()
	m.stats.setActive(active)
}

// Notify evaluates rec against every saved query and enqueues it on
// every match, triggering an async flush for any subscription that has
// reached its size threshold. Satisfies registration.FanOut and
// edit.FanOut.
func (m *Manager) Notify(rec model.Record) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, q := range m.subs {
		if !q.matcher(rec) {
			continue
		}
		q.enqueue(rec)
		if q.dueBySize() {
			m.scheduleFlush(id)
		}
	}
}

// FlushDue is called by the maintenance scheduler on each tick to flush
// every subscription whose time interval has elapsed since its last
// delivery, independent of whether it has reached its size threshold.
func (m *Manager) FlushDue(now time.Time) {
	m.mu.RLock()
	due := make([]string, 0)
	for id, q := range m.subs {
		if q.dueByInterval(now) {
			due = append(due, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range due {
		m.scheduleFlush(id)
	}
}

// scheduleFlush enqueues id for flushing without blocking the caller. If
// the worker pool's queue is saturated the request is dropped with a
// warning log: the next FlushDue tick will pick up the backlog.
func (m *Manager) scheduleFlush(id string) {
	select {
	case m.flushCh <- id:
	default:
		m.logger.Warn("subscription flush queue saturated, deferring", zap.String("subscription_id", id))
	}
}

func (m *Manager) runWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stop:
			return
		case id := <-m.flushCh:
			m.mu.RLock()
			q := m.subs[id]
			m.mu.RUnlock()
			if q != nil {
				m.flushOne(id, q)
			}
		}
	}
}

// flushOne claims and delivers a subscription's current batch, retrying
// once on failure before dropping it and counting the failure. A
// subscription that accumulates retireAfter consecutive failures is
// unsubscribed.
func (m *Manager) flushOne(id string, q *queue) {
	batch, ok := q.beginFlush()
	if !ok {
		return
	}

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), m.pushTimeout)
		err = m.pusher.Push(ctx, q.spec, batch)
		cancel()
		if err == nil {
			break
		}
	}

	m.stats.observeFlush(err == nil)
	retire := q.endFlush(m.now(), err == nil, m.retireAfter)

	if err != nil {
		m.logger.Warn("subscription push failed, batch dropped",
			zap.String("subscription_id", id), zap.Int("batch_size", len(batch)), zap.Error(err))
	}
	if retire {
		m.stats.observeRetired()
		m.logger.Info("subscription retired after repeated failures", zap.String("subscription_id", id))
		m.Unsubscribe(id)
	}
}
