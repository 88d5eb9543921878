// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package maintenance runs the cache's background upkeep: pruning
// expired records, flushing due subscriptions, and reconciling the
// lease manager's index against the live store. Two ticker-driven
// goroutines, one for prune (which also reconciles leases and runs the
// memory-hygiene step) and one for flush, each coalescing a missed tick
// into a single catch-up run instead of queuing redundant work.
package maintenance

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/perfsonar/sls/lease"
	"github.com/perfsonar/sls/model"
	"github.com/perfsonar/sls/store"
	"go.uber.org/zap"
)

// Pusher is the subset of subscription.Manager the scheduler drives.
type Pusher interface {
	FlushDue(now time.Time)
}

// Scheduler owns the two background loops. Construct one per
// sls.Cache instance; it holds no package-level state.
type Scheduler struct {
	live      store.Store
	archive   store.Store
	leases    *lease.Manager
	subs      Pusher
	now       func() time.Time
	logger    *zap.Logger
	threshold time.Duration

	pruneInterval time.Duration
	flushInterval time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

// New builds a Scheduler. archive and subs may be nil if those features
// are not configured; the scheduler simply skips the corresponding work.
func New(live, archive store.Store, leases *lease.Manager, subs Pusher, pruneInterval, flushInterval, threshold time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		live:          live,
		archive:       archive,
		leases:        leases,
		subs:          subs,
		now:           time.Now,
		logger:        logger,
		threshold:     threshold,
		pruneInterval: pruneInterval,
		flushInterval: flushInterval,
		stop:          make(chan struct{}),
	}
}

// Start launches the prune and flush loops. Call once.
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.pruneLoop()
	go s.flushLoop()
}

// Stop signals every loop to exit and waits for them to finish.
func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

// pruneLoop removes expired records from the live store, tombstones
// them into the archive if one is configured, and reconciles the lease
// manager's index against what remains live.
func (s *Scheduler) pruneLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.runPrune()
		}
	}
}

func (s *Scheduler) runPrune() {
	now := s.now()

	expired := s.leases.ExpiredURIs(now)
	for _, uri := range expired {
		rec, err := s.live.GetByURI(uri)
		if err != nil {
			continue
		}
		rec.State = model.StateExpired
		if s.archive != nil {
			if _, err := s.archive.Insert(rec); err != nil && err != store.ErrDuplicate {
				s.logger.Warn("failed to archive expired record", zap.String("uri", uri), zap.Error(err))
			}
		}
		if _, err := s.live.Delete(uri); err != nil && err != store.ErrNotFound {
			s.logger.Warn("failed to delete expired record", zap.String("uri", uri), zap.Error(err))
		}
		s.leases.ReleaseLease(uri)
	}
	if len(expired) > 0 {
		s.logger.Info("pruned expired records", zap.Int("count", len(expired)))
	}

	// Catches records a lease was never admitted for (e.g. restored from
	// an external source) that have still aged past the threshold.
	pruned, err := s.live.PruneExpired(now.UnixMilli(), s.threshold.Milliseconds())
	if err != nil {
		s.logger.Error("store-level prune failed", zap.Error(err))
	} else if pruned > 0 {
		s.logger.Info("store pruned additional stale records", zap.Int("count", pruned))
	}

	dropped := s.leases.Reconcile(s.liveURISet())
	if dropped > 0 {
		s.logger.Info("reconciled lease index", zap.Int("dropped", dropped))
	}

	s.runHygiene()
}

// runHygiene prompts the runtime to return unused heap pages to the OS
// after a prune pass frees up record/lease bookkeeping. Platform- and
// allocator-dependent: on some targets this is a no-op.
func (s *Scheduler) runHygiene() {
	debug.FreeOSMemory()
}

func (s *Scheduler) liveURISet() map[string]struct{} {
	recs, err := s.live.Query(func(model.Record) bool { return true }, 0, 0)
	if err != nil {
		s.logger.Error("failed to list live records for reconciliation", zap.Error(err))
		return nil
	}
	set := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		set[rec.URI] = struct{}{}
	}
	return set
}

// flushLoop drives the subscription manager's time-based flush on a
// fixed interval, independent of each subscription's own cadence.
func (s *Scheduler) flushLoop() {
	defer s.wg.Done()
	if s.subs == nil {
		return
	}
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.subs.FlushDue(s.now())
		}
	}
}
