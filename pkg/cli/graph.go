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
	"fmt"
	"sort"
	"strings"

	"github.com/cmux/snapctl/pkg/task"
)

// renderDependencyGraph groups reg's tasks into dependency layers (every
// task in a layer depends only on tasks in earlier layers) and renders one
// line per layer, matching how the scheduler (pkg/task) actually executes
// them: everything in a layer runs concurrently.
func renderDependencyGraph(reg *task.Registry) string {
	defs := reg.All()
	if len(defs) == 0 {
		return ""
	}

	layerOf := make(map[string]int, len(defs))
	remaining := make(map[string]task.Definition, len(defs))
	for name, def := range defs {
		remaining[name] = def
	}

	for layer := 0; len(remaining) > 0; layer++ {
		var ready []string
		for name, def := range remaining {
			satisfied := true
			for _, dep := range def.Dependencies {
				if _, pending := remaining[dep]; pending {
					satisfied = false
					break
				}
			}
			if satisfied {
				ready = append(ready, name)
			}
		}
		if len(ready) == 0 {
			// A cycle or unresolved dependency; list whatever remains as one
			// final layer rather than looping forever.
			for name := range remaining {
				layerOf[name] = layer
			}
			break
		}
		for _, name := range ready {
			layerOf[name] = layer
			delete(remaining, name)
		}
	}

	maxLayer := 0
	for _, l := range layerOf {
		if l > maxLayer {
			maxLayer = l
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Task graph (%d tasks, %d layers):\n", len(defs), maxLayer+1)
	for layer := 0; layer <= maxLayer; layer++ {
		var names []string
		for name, l := range layerOf {
			if l == layer {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "  layer %d: %s\n", layer, strings.Join(names, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
