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

// Package ocicache caches the cross-compiled cmux-execd binary as an OCI
// artifact, so presets sharing a GOOS/GOARCH target can pull the built
// binary from a registry onto the host instead of each re-running the Go
// toolchain. The binary is still uploaded to every VM.
package ocicache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cmux/snapctl/pkg/execdaemon"
	snaperrors "github.com/cmux/snapctl/pkg/errors"
	"github.com/cmux/snapctl/pkg/oci"
)

// Config points at the registry backing the cache. A zero-value Config
// (empty Registry) means caching is disabled; callers should check Enabled
// before using Fetch/Store.
type Config struct {
	Registry    string
	Repository  string
	PlainHTTP   bool
	InsecureTLS bool
}

// Enabled reports whether a registry has been configured.
func (c Config) Enabled() bool { return c.Registry != "" }

// tag derives the OCI tag identifying a cmux-execd build for goos/goarch.
func tag(goos, goarch string) string {
	return fmt.Sprintf("%s-%s", goos, goarch)
}

// Fetch pulls a previously cached cmux-execd binary for goos/goarch into
// repoRoot/dist/cmux-execd, returning its path. Returns an error the caller
// should treat as a cache miss (fall back to Build) rather than fatal.
func Fetch(ctx context.Context, cfg Config, repoRoot, goos, goarch string) (string, error) {
	if !cfg.Enabled() {
		return "", snaperrors.New(snaperrors.ErrCodeConfig, "oci cache is not configured")
	}

	outputDir := filepath.Join(repoRoot, execdaemon.BuildOutputDir)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", snaperrors.Wrap(snaperrors.ErrCodeBuild, "failed to create build output directory", err)
	}

	result, err := oci.Pull(ctx, oci.PullOptions{
		DestDir:     outputDir,
		Registry:    cfg.Registry,
		Repository:  cfg.Repository,
		Tag:         tag(goos, goarch),
		PlainHTTP:   cfg.PlainHTTP,
		InsecureTLS: cfg.InsecureTLS,
	})
	if err != nil {
		return "", snaperrors.Wrap(snaperrors.ErrCodeTransport, "oci cache fetch failed", err)
	}

	binaryPath := filepath.Join(outputDir, execdaemon.BinaryName)
	if _, statErr := os.Stat(binaryPath); statErr != nil {
		return "", snaperrors.New(snaperrors.ErrCodeBuild,
			fmt.Sprintf("oci artifact %s pulled but %s was not among its contents", result.Digest, binaryPath))
	}
	return binaryPath, nil
}

// Store pushes a freshly built cmux-execd binary for goos/goarch up to the
// cache, for subsequent presets in the same run (or a later run) to Fetch.
// Failures are non-fatal to the caller's provisioning flow; callers should
// log and continue rather than abort a successful build over a push error.
func Store(ctx context.Context, cfg Config, binaryDir, goos, goarch string) error {
	if !cfg.Enabled() {
		return snaperrors.New(snaperrors.ErrCodeConfig, "oci cache is not configured")
	}

	_, err := oci.Push(ctx, oci.PushOptions{
		SourceDir:   binaryDir,
		Registry:    cfg.Registry,
		Repository:  cfg.Repository,
		Tag:         tag(goos, goarch),
		PlainHTTP:   cfg.PlainHTTP,
		InsecureTLS: cfg.InsecureTLS,
	})
	if err != nil {
		return snaperrors.Wrap(snaperrors.ErrCodeTransport, "oci cache store failed", err)
	}
	return nil
}
