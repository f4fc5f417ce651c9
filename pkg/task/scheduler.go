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
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	snaperrors "github.com/cmux/snapctl/pkg/errors"
)

// RunResult records the observable outcome of one RunGraph call, used both
// by operational logging and by scheduler-invariant tests.
type RunResult struct {
	Done       []string
	StartTimes map[string]time.Time
	EndTimes   map[string]time.Time
	Layers     int
}

// RunGraph executes every task in registry exactly once, honoring
// dependencies and maximizing intra-layer concurrency (C6). It implements
// the algorithm from spec.md 4.1:
//
//  1. pending = all registered tasks, done = {}
//  2. while pending non-empty: ready = tasks whose deps ⊆ done
//  3. if ready is empty, fail with a CycleError listing the stuck names
//  4. run all ready tasks concurrently; record per-task and per-layer timing
//  5. on any task failure, let the rest of the layer finish (best effort),
//     then stop — no further layers start
func RunGraph(ctx context.Context, registry *Registry, tc *Context) (*RunResult, error) {
	if err := registry.Validate(); err != nil {
		return nil, err
	}

	all := registry.All()
	pending := make(map[string]Definition, len(all))
	for k, v := range all {
		pending[k] = v
	}
	done := make(map[string]bool, len(all))

	result := &RunResult{StartTimes: make(map[string]time.Time), EndTimes: make(map[string]time.Time)}

	for len(pending) > 0 {
		ready := readySet(pending, done)
		if len(ready) == 0 {
			return result, cycleError(pending)
		}
		result.Layers++

		layerStart := time.Now()
		failed, err := runLayer(ctx, ready, tc, result)
		layerDuration := time.Since(layerStart)

		names := make([]string, len(ready))
		for i, d := range ready {
			names[i] = d.Name
		}
		sort.Strings(names)
		if tc.Timings != nil {
			tc.Timings.Add("layer:"+strings.Join(names, "+"), layerDuration)
		}

		for _, d := range ready {
			done[d.Name] = true
			delete(pending, d.Name)
			result.Done = append(result.Done, d.Name)
		}

		if failed {
			return result, err
		}
	}

	return result, nil
}

// readySet returns every pending task whose dependencies are all satisfied,
// in a deterministic (name-sorted) order so layer labels are stable.
func readySet(pending map[string]Definition, done map[string]bool) []Definition {
	var ready []Definition
	for _, def := range pending {
		ok := true
		for _, dep := range def.Dependencies {
			if !done[dep] {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, def)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].Name < ready[j].Name })
	return ready
}

// runLayer fans out every ready task concurrently via errgroup, recording
// start/end timestamps and per-task duration for each. It returns failed =
// true if any task in the layer returned an error; all tasks in the layer
// are still awaited (best effort) before returning.
func runLayer(ctx context.Context, ready []Definition, tc *Context, result *RunResult) (bool, error) {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, def := range ready {
		def := def
		g.Go(func() error {
			mu.Lock()
			result.StartTimes[def.Name] = time.Now()
			mu.Unlock()

			start := time.Now()
			err := def.Func(gctx, tc)
			duration := time.Since(start)

			mu.Lock()
			result.EndTimes[def.Name] = time.Now()
			mu.Unlock()

			if tc.Timings != nil {
				tc.Timings.Add("task:"+def.Name, duration)
			}
			if err != nil {
				slog.Error("task failed", "task", def.Name, "error", err)
				return fmt.Errorf("task %q: %w", def.Name, err)
			}
			return nil
		})
	}

	err := g.Wait()
	return err != nil, err
}

// cycleError builds a CycleError listing every task name still pending when
// no further progress is possible: the members of every cycle plus any task
// that depends, directly or transitively, on a cycle member.
func cycleError(pending map[string]Definition) error {
	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
	}
	sort.Strings(names)
	return snaperrors.NewWithContext(snaperrors.ErrCodeCycle,
		"task graph has a dependency cycle", map[string]any{"stuck_tasks": names})
}
