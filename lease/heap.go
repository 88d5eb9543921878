// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package lease

import "time"

// expiryEntry is one slot in the manager's min-heap, ordered by
// expiresAt, giving O(log n) discovery of the next expiry.
type expiryEntry struct {
	uri       string
	expiresAt time.Time
	index     int
}

// expiryHeap implements container/heap.Interface. It is not safe for
// concurrent use on its own; the Manager guards it with its own mutex.
type expiryHeap []*expiryEntry

func (h expiryHeap) Len() int { return len(h) }

func (h expiryHeap) Less(i, j int) bool {
	return h[i].expiresAt.Before(h[j].expiresAt)
}

func (h expiryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *expiryHeap) Push(x interface{}) {
	e := x.(*expiryEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *expiryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	e.index = -1
	return e
}
