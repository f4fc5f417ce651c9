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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sleepTask(d time.Duration) Func {
	return func(ctx context.Context, tc *Context) error {
		time.Sleep(d)
		return nil
	}
}

func TestRunGraphEmptyRegistry(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	tc := NewContext()
	tc.Timings = NewTimingsCollector()

	result, err := RunGraph(context.Background(), reg, tc)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Layers)
	assert.Empty(t, result.Done)
}

func TestRunGraphLinearChainOrdersStarts(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{Name: "A", Func: sleepTask(10 * time.Millisecond)}))
	require.NoError(t, reg.Register(Definition{Name: "B", Func: sleepTask(10 * time.Millisecond), Dependencies: []string{"A"}}))
	require.NoError(t, reg.Register(Definition{Name: "C", Func: sleepTask(10 * time.Millisecond), Dependencies: []string{"B"}}))

	tc := NewContext()
	tc.Timings = NewTimingsCollector()
	result, err := RunGraph(context.Background(), reg, tc)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Layers)
	assert.True(t, result.StartTimes["B"].After(result.EndTimes["A"]) || result.StartTimes["B"].Equal(result.EndTimes["A"]))
	assert.True(t, result.StartTimes["C"].After(result.EndTimes["B"]) || result.StartTimes["C"].Equal(result.EndTimes["B"]))

	summary := tc.Timings.Summarize()
	assert.Equal(t, 3, summary.Layers)
	assert.InDelta(t, 1.0, summary.Parallelism, 0.2)
}

func TestRunGraphDiamondRunsMiddleLayerConcurrently(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{Name: "A", Func: sleepTask(5 * time.Millisecond)}))
	require.NoError(t, reg.Register(Definition{Name: "B", Func: sleepTask(20 * time.Millisecond), Dependencies: []string{"A"}}))
	require.NoError(t, reg.Register(Definition{Name: "C", Func: sleepTask(20 * time.Millisecond), Dependencies: []string{"A"}}))
	require.NoError(t, reg.Register(Definition{Name: "D", Func: sleepTask(5 * time.Millisecond), Dependencies: []string{"B", "C"}}))

	tc := NewContext()
	tc.Timings = NewTimingsCollector()
	result, err := RunGraph(context.Background(), reg, tc)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Layers)

	summary := tc.Timings.Summarize()
	assert.Greater(t, summary.Parallelism, 1.0)
}

func TestRunGraphEveryTaskAppearsExactlyOnce(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, reg.Register(Definition{Name: name, Func: sleepTask(time.Millisecond)}))
	}
	tc := NewContext()
	tc.Timings = NewTimingsCollector()
	result, err := RunGraph(context.Background(), reg, tc)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, result.Done)
}

func TestRunGraphCycleDetection(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{Name: "A", Func: sleepTask(0), Dependencies: []string{"B"}}))
	require.NoError(t, reg.Register(Definition{Name: "B", Func: sleepTask(0), Dependencies: []string{"A"}}))

	tc := NewContext()
	tc.Timings = NewTimingsCollector()
	_, err := RunGraph(context.Background(), reg, tc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestRunGraphFailingTaskStopsDownstream(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{Name: "A", Func: sleepTask(time.Millisecond)}))
	require.NoError(t, reg.Register(Definition{
		Name:         "B",
		Dependencies: []string{"A"},
		Func: func(ctx context.Context, tc *Context) error {
			return errors.New("boom")
		},
	}))
	require.NoError(t, reg.Register(Definition{Name: "D", Func: sleepTask(0), Dependencies: []string{"B"}}))

	tc := NewContext()
	tc.Timings = NewTimingsCollector()
	result, err := RunGraph(context.Background(), reg, tc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B")
	assert.Contains(t, err.Error(), "boom")
	assert.ElementsMatch(t, []string{"A", "B"}, result.Done)
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{Name: "A", Func: sleepTask(0)}))
	err := reg.Register(Definition{Name: "A", Func: sleepTask(0)})
	require.Error(t, err)
}

func TestRegistryValidateCatchesUnresolvedDependency(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{Name: "A", Func: sleepTask(0), Dependencies: []string{"ghost"}}))
	err := reg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unregistered")
}

func TestRenderGraphMarksCycles(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{Name: "root", Func: sleepTask(0)}))
	require.NoError(t, reg.Register(Definition{Name: "child", Func: sleepTask(0), Dependencies: []string{"root"}}))
	require.NoError(t, reg.Register(Definition{Name: "x", Func: sleepTask(0), Dependencies: []string{"root", "y"}}))
	require.NoError(t, reg.Register(Definition{Name: "y", Func: sleepTask(0), Dependencies: []string{"x"}}))
	out := RenderGraph(reg)
	assert.Contains(t, out, "root")
	assert.Contains(t, out, "child")
	assert.Contains(t, out, "- x (cycle)")
}
