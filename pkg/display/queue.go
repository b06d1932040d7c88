// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import "sync"

// DefaultMaxQueued bounds the ingestion queue
const DefaultMaxQueued = 4096

// Queue is the FIFO hand-off between receivers and the render task. It has
// its own lock so producers never wait on rendering. When full, the oldest
// payload is dropped.
type Queue struct {
	mu      sync.Mutex
	items   []string
	max     int // 0 = unbounded
	dropped uint64
}

// NewQueue creates a queue holding at most max payloads; zero means unbounded
func NewQueue(max int) *Queue {
	if max < 0 {
		max = 0
	}
	return &Queue{max: max}
}

// Push appends a payload and reports whether an older payload was dropped
// to make room
func (q *Queue) Push(payload string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := false
	if q.max > 0 && len(q.items) >= q.max {
		q.items[0] = ""
		q.items = q.items[1:]
		q.dropped++
		dropped = true
	}
	q.items = append(q.items, payload)
	return dropped
}

// Pop removes and returns the oldest payload
func (q *Queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return "", false
	}
	payload := q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return payload, true
}

// Len returns the number of queued payloads
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many payloads were discarded because the queue was full
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
