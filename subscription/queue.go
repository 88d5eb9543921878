// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package subscription

import (
	"sync"
	"time"

	"github.com/perfsonar/sls/model"
	"github.com/perfsonar/sls/store"
)

// queue is the mutable per-subscription state: the pending batch,
// when it was last flushed, whether a flush is in progress, and a
// consecutive-failure counter driving retirement. A single mutex
// enforces single-producer (fan-out), single-consumer (flusher) access.
type queue struct {
	mu            sync.Mutex
	spec          model.SubscriptionSpec
	matcher       store.Matcher
	records       []model.Record
	lastFlushedAt time.Time
	flushing      bool
	failures      int
}

func newQueue(spec model.SubscriptionSpec, matcher store.Matcher, now time.Time) *queue {
	return &queue{spec: spec, matcher: matcher, lastFlushedAt: now}
}

func (q *queue) enqueue(rec model.Record) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records = append(q.records, rec)
}

// dueBySize reports whether the queue has reached its max-push-events
// cap.
func (q *queue) dueBySize() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records) >= q.spec.MaxPushEvents
}

// dueByInterval reports whether the queue has pending records and enough
// time has elapsed since its last flush.
func (q *queue) dueByInterval(now time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records) > 0 && now.Sub(q.lastFlushedAt) >= q.spec.TimeInterval
}

// beginFlush atomically claims the current batch, at most max-push-events
// records in admission order, if no flush is already in progress. Records
// beyond the cap, and further enqueues while a flush is outstanding, stay
// queued for the next flush.
func (q *queue) beginFlush() ([]model.Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.flushing || len(q.records) == 0 {
		return nil, false
	}
	q.flushing = true
	batch := q.records
	if max := q.spec.MaxPushEvents; max > 0 && len(batch) > max {
		batch = batch[:max:max]
		q.records = append([]model.Record(nil), q.records[max:]...)
	} else {
		q.records = nil
	}
	return batch, true
}

// endFlush records the outcome of a flush attempt and reports whether
// the subscription has now crossed the consecutive-failure retirement
// threshold.
func (q *queue) endFlush(now time.Time, success bool, retireThreshold int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.flushing = false
	q.lastFlushedAt = now
	if success {
		q.failures = 0
		return false
	}
	q.failures++
	return q.failures >= retireThreshold
}

// queuedCount reports the number of records currently buffered.
func (q *queue) queuedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}
