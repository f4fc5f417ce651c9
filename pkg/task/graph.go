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
	"fmt"
	"sort"
	"strings"
)

// RenderGraph prints registry's dependency graph as an indented forest
// rooted at every task with no dependencies. Any path
// that revisits an already-open node is cut short with a cycle marker
// instead of recursing forever.
func RenderGraph(registry *Registry) string {
	all := registry.All()

	children := make(map[string][]string)
	var roots []string
	for name, def := range all {
		if len(def.Dependencies) == 0 {
			roots = append(roots, name)
		}
		for _, dep := range def.Dependencies {
			children[dep] = append(children[dep], name)
		}
	}
	sort.Strings(roots)
	for k := range children {
		sort.Strings(children[k])
	}

	var b strings.Builder
	for _, root := range roots {
		renderNode(&b, root, children, map[string]bool{}, 0)
	}
	return b.String()
}

func renderNode(b *strings.Builder, name string, children map[string][]string, open map[string]bool, depth int) {
	indent := strings.Repeat("  ", depth)
	if open[name] {
		fmt.Fprintf(b, "%s- %s (cycle)\n", indent, name)
		return
	}
	fmt.Fprintf(b, "%s- %s\n", indent, name)

	open[name] = true
	defer delete(open, name)

	for _, child := range children[name] {
		renderNode(b, child, children, open, depth+1)
	}
}
