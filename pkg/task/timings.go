// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package task

import (
	"sync"
	"time"
)

// Record is one timed entry: a task:<name> or layer:<a+b+...> label and its
// duration.
type Record struct {
	Label    string
	Duration time.Duration
}

// TimingsCollector is an append-only, concurrency-safe log of Records,
// written to from multiple tasks running in the same layer.
type TimingsCollector struct {
	mu      sync.Mutex
	records []Record
}

// NewTimingsCollector builds an empty collector.
func NewTimingsCollector() *TimingsCollector {
	return &TimingsCollector{}
}

// Add appends a record. Safe for concurrent use.
func (t *TimingsCollector) Add(label string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, Record{Label: label, Duration: d})
}

// Records returns a snapshot copy of every recorded entry, in insertion order.
func (t *TimingsCollector) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Summary is the derived view over a TimingsCollector: total wall time
// (sum of layer durations), total task time (sum of task durations), and
// effective parallelism = task_time / wall_time.
type Summary struct {
	Layers          int
	WallTime        time.Duration
	TaskTime        time.Duration
	Parallelism     float64
}

// Summarize computes a Summary from the current records. Safe to call only
// after scheduling has completed, matching spec.md's "summary formatting
// reads only after scheduling completes" rule.
func (t *TimingsCollector) Summarize() Summary {
	records := t.Records()
	var s Summary
	for _, r := range records {
		switch {
		case len(r.Label) >= 6 && r.Label[:6] == "layer:":
			s.WallTime += r.Duration
			s.Layers++
		case len(r.Label) >= 5 && r.Label[:5] == "task:":
			s.TaskTime += r.Duration
		}
	}
	if s.WallTime > 0 {
		s.Parallelism = s.TaskTime.Seconds() / s.WallTime.Seconds()
	}
	return s
}
