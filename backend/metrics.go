// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"sync"
	"sync/atomic"
	"time"
)

const LatencyBuckets = 101
const LatencyBucketSize = 10 * time.Millisecond

type Histogram struct {
	Buckets [LatencyBuckets]uint64 `json:"b"`
	Count   uint64                 `json:"c"`
	Sum     float64                `json:"s"` // Sum of durations in milliseconds
}

func (h *Histogram) Add(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	idx := int(d / LatencyBucketSize)
	if idx >= LatencyBuckets {
		idx = LatencyBuckets - 1
	}
	h.Buckets[idx]++
	h.Count++
	h.Sum += ms
}

// Quantile returns the upper bound of the bucket holding quantile q, in
// milliseconds. The last bucket is open ended.
func (h *Histogram) Quantile(q float64) float64 {
	if h.Count == 0 {
		return 0
	}
	rank := uint64(q * float64(h.Count))
	if rank >= h.Count {
		rank = h.Count - 1
	}
	var seen uint64
	for i, n := range h.Buckets {
		seen += n
		if seen > rank {
			return float64((i+1)*int(LatencyBucketSize)) / float64(time.Millisecond)
		}
	}
	return float64(LatencyBuckets*int(LatencyBucketSize)) / float64(time.Millisecond)
}

// Point represents a single data point in a time series.
type Point[T any] struct {
	Timestamp int64 `json:"t"`
	Value     T     `json:"v"`
}

// RingBuffer is a fixed-size circular buffer for storing time series data.
type RingBuffer[T any] struct {
	Resolution time.Duration `json:"-"`
	Data       []Point[T]    `json:"data"`
	Head       int           `json:"head"` // Points to the *next* write position
}

func NewRingBuffer[T any](resolution time.Duration, buckets int) *RingBuffer[T] {
	return &RingBuffer[T]{
		Resolution: resolution,
		Data:       make([]Point[T], buckets),
	}
}

// Update applies fn to the point of timestamp's resolution slot, starting
// a new point when the slot changed.
func (rb *RingBuffer[T]) Update(timestamp int64, fn func(*T)) {
	resSec := int64(rb.Resolution.Seconds())
	alignedTs := (timestamp / resSec) * resSec

	prevIdx := (rb.Head - 1 + len(rb.Data)) % len(rb.Data)
	if rb.Data[prevIdx].Timestamp == alignedTs {
		fn(&rb.Data[prevIdx].Value)
		return
	}

	var zero T
	rb.Data[rb.Head] = Point[T]{Timestamp: alignedTs, Value: zero}
	fn(&rb.Data[rb.Head].Value)
	rb.Head = (rb.Head + 1) % len(rb.Data)
}

// GetPoints returns the data points sorted by time.
func (rb *RingBuffer[T]) GetPoints() []Point[T] {
	points := make([]Point[T], 0, len(rb.Data))
	for i := 0; i < len(rb.Data); i++ {
		idx := (rb.Head + i) % len(rb.Data)
		if rb.Data[idx].Timestamp > 0 {
			points = append(points, rb.Data[idx])
		}
	}
	return points
}

// Metrics counts server activity. It is safe for concurrent use.
type Metrics struct {
	started time.Time

	mu       sync.Mutex
	latency  Histogram
	requests *RingBuffer[float64] // Requests per minute, last 2 hours

	activeWS   atomic.Int64
	saves      atomic.Int64
	saveErrors atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{
		started:  time.Now(),
		requests: NewRingBuffer[float64](time.Minute, 120),
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(now time.Time, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency.Add(d)
	m.requests.Update(now.Unix(), func(v *float64) { *v++ })
}

func (m *Metrics) observeSave(err error) {
	if err != nil {
		m.saveErrors.Add(1)
		return
	}
	m.saves.Add(1)
}

// StatusPayload is the body of GET /api/status.
type StatusPayload struct {
	Version           string           `json:"version"`
	UptimeSeconds     int64            `json:"uptimeSeconds"`
	OpenScorecards    int              `json:"openScorecards"`
	ActiveWS          int64            `json:"activeWS"`
	Saves             int64            `json:"saves"`
	SaveErrors        int64            `json:"saveErrors"`
	Requests          uint64           `json:"requests"`
	LatencyAvgMS      float64          `json:"latencyAvgMs"`
	LatencyP95MS      float64          `json:"latencyP95Ms"`
	RequestsPerMinute []Point[float64] `json:"requestsPerMinute"`
}

// Status returns a snapshot of the counters.
func (m *Metrics) Status(openScorecards int) StatusPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := StatusPayload{
		Version:           CurrentAppVersion,
		UptimeSeconds:     int64(time.Since(m.started).Seconds()),
		OpenScorecards:    openScorecards,
		ActiveWS:          m.activeWS.Load(),
		Saves:             m.saves.Load(),
		SaveErrors:        m.saveErrors.Load(),
		Requests:          m.latency.Count,
		LatencyP95MS:      m.latency.Quantile(0.95),
		RequestsPerMinute: m.requests.GetPoints(),
	}
	if m.latency.Count > 0 {
		s.LatencyAvgMS = m.latency.Sum / float64(m.latency.Count)
	}
	return s
}
