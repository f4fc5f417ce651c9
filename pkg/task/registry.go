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

// Package task implements the task graph engine (C5 registry, C6
// scheduler, C7 per-VM context): ordinary values registered by name rather
// than decorator-collected closures, so task definitions carry no reflection
// or global registration order.
package task

import (
	"context"
	"fmt"
	"sort"
	"sync"

	snaperrors "github.com/cmux/snapctl/pkg/errors"
)

// Func is a task body: given the run's Context, perform work and return an
// error on failure.
type Func func(ctx context.Context, tc *Context) error

// Definition is one registered task: a unique name, its body, the names of
// tasks it depends on, and an optional human description.
type Definition struct {
	Name         string
	Func         Func
	Dependencies []string
	Description  string
}

// Registry owns a name -> Definition map. Registering a duplicate name is a
// fatal configuration error (ErrCodeConfig), matching spec.md's registration
// contract.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]Definition
	order []string // declaration order, for diagnostics only
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]Definition)}
}

// Register adds def to the registry. It fails if def.Name is already
// registered, or if def.Name is empty.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return snaperrors.New(snaperrors.ErrCodeConfig, "task name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[def.Name]; exists {
		return snaperrors.New(snaperrors.ErrCodeConfig, fmt.Sprintf("duplicate task name %q", def.Name))
	}
	r.tasks[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Get returns the definition registered under name, if any.
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.tasks[name]
	return d, ok
}

// Names returns every registered task name in declaration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns a snapshot copy of every registered Definition.
func (r *Registry) All() map[string]Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Definition, len(r.tasks))
	for k, v := range r.tasks {
		out[k] = v
	}
	return out
}

// Count returns the number of registered tasks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// Validate checks that every dependency named by every task resolves to a
// registered task, returning a ConfigError listing every unresolved
// dependency edge as "task -> dep" (sorted for deterministic output).
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var missing []string
	for name, def := range r.tasks {
		for _, dep := range def.Dependencies {
			if _, ok := r.tasks[dep]; !ok {
				missing = append(missing, fmt.Sprintf("%s -> %s", name, dep))
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return snaperrors.NewWithContext(snaperrors.ErrCodeConfig, "task graph references unregistered dependencies",
		map[string]any{"edges": missing})
}
