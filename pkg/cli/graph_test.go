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

package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmux/snapctl/pkg/task"
)

func TestRenderDependencyGraphEmptyRegistry(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", renderDependencyGraph(task.NewRegistry()))
}

func TestRenderDependencyGraphOrdersByLayer(t *testing.T) {
	t.Parallel()
	reg := task.NewRegistry()
	noop := func(ctx context.Context, tc *task.Context) error { return nil }
	require.NoError(t, reg.Register(task.Definition{Name: "a", Func: noop}))
	require.NoError(t, reg.Register(task.Definition{Name: "b", Func: noop, Dependencies: []string{"a"}}))
	require.NoError(t, reg.Register(task.Definition{Name: "c", Func: noop, Dependencies: []string{"a"}}))
	require.NoError(t, reg.Register(task.Definition{Name: "d", Func: noop, Dependencies: []string{"b", "c"}}))

	graph := renderDependencyGraph(reg)
	assert.Contains(t, graph, "4 tasks, 3 layers")
	assert.Contains(t, graph, "layer 0: a")
	assert.Contains(t, graph, "layer 1: b, c")
	assert.Contains(t, graph, "layer 2: d")
}
