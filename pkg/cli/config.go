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

// Package cli implements the top-level driver (C11): flag parsing, preset
// plan construction, the host-side dependency bump step, the dependency
// graph printer, invocation of the preset orchestrator across every preset,
// verification-table rendering, manifest persistence, desktop notification,
// and signal-driven cleanup of unsnapshotted instances.
package cli

import (
	"context"
	"fmt"

	"github.com/cmux/snapctl/pkg/cloud"
	"github.com/cmux/snapctl/pkg/execclient"
	"github.com/cmux/snapctl/pkg/preset"
	"github.com/cmux/snapctl/pkg/provisiontasks"
	"github.com/cmux/snapctl/pkg/task"
)

// ideProviders is the closed set accepted by --ide-provider, matching the
// task bodies provisiontasks.Register actually gates on.
var ideProviders = map[string]bool{
	provisiontasks.IDEProviderCoder:      true,
	provisiontasks.IDEProviderOpenVSCode: true,
	provisiontasks.IDEProviderCmuxCode:   true,
}

// ClientFactory builds the cloud.Client a run boots instances through. The
// cloud SDK itself is an external collaborator outside this module's scope;
// production wiring supplies a real implementation here. DefaultClientFactory
// is the zero-value behavior: a clear error rather than a silent no-op.
type ClientFactory func(ctx context.Context) (cloud.Client, error)

// DefaultClientFactory reports that no cloud.Client implementation is linked
// into this binary. cmd/snapctl is expected to be built with a real
// implementation wired in for production use; this default only serves
// --print-deps and local testing without one.
func DefaultClientFactory(ctx context.Context) (cloud.Client, error) {
	return nil, fmt.Errorf("no cloud.Client implementation is linked into this binary; supply one via Config.ClientFactory")
}

// Config is the fully-parsed, validated form of the CLI surface (spec.md
// §6), ready to drive a run.
type Config struct {
	SnapshotID string
	RepoRoot   string

	Standard preset.HardwareSpec
	Boosted  preset.HardwareSpec

	TTLSeconds    int64
	TTLAction     cloud.TTLAction
	RequireVerify bool
	IDEProvider   string

	PrintDeps   bool
	BumpIDEDeps bool

	ClientFactory ClientFactory
	Console       execclient.Console

	// RegistryBuilder populates the task graph a run executes per preset.
	// Defaults to provisiontasks.Register; tests substitute a lighter
	// registry to exercise the driver's plumbing without running real
	// provisioning shell commands.
	RegistryBuilder func(*task.Registry) error
}

// Validate checks the parts of Config that are not already constrained by
// flag parsing (choice-typed flags): the IDE provider and TTL action.
func (c Config) Validate() error {
	if !ideProviders[c.IDEProvider] {
		return fmt.Errorf("unknown --ide-provider %q", c.IDEProvider)
	}
	switch c.TTLAction {
	case cloud.TTLPause, cloud.TTLStop:
	default:
		return fmt.Errorf("unknown --ttl-action %q", c.TTLAction)
	}
	return nil
}

// Plans builds the standard and boosted preset plans from the parsed
// hardware flags.
func (c Config) Plans() []preset.Plan {
	return preset.StandardPlans(c.Standard, c.Boosted)
}
