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

// Package execdaemon builds and installs the in-VM cmux-execd binary (C3):
// cross-compile on the host, upload with retry, launch over SSH bypassing
// the daemon it is about to start, then gate on /healthz before handing the
// resulting HTTP transport back to the caller.
package execdaemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	snaperrors "github.com/cmux/snapctl/pkg/errors"
)

// BuildTargetEnv is the environment variable selecting the cross-compile
// target, e.g. "linux/arm64". Unset or empty falls back to DefaultBuildTarget.
const BuildTargetEnv = "CMUX_EXEC_TARGET"

// DefaultBuildTarget is used when BuildTargetEnv is unset.
const DefaultBuildTarget = "linux/amd64"

// BinaryName is the name of the built binary, both locally and once
// installed on the VM.
const BinaryName = "cmux-execd"

// BuildOutputDir is the local directory the binary is built into, relative
// to repoRoot.
const BuildOutputDir = "dist"

// EntrypointPath is the package path (relative to repoRoot) containing the
// exec daemon's main package.
const EntrypointPath = "cmd/cmux-execd"

var architectureAliases = map[string]string{
	"x64":    "amd64",
	"x86_64": "amd64",
	"amd64":  "amd64",
	"arm64":  "arm64",
	"aarch64": "arm64",
}

// ParseTarget splits and normalizes a "GOOS/GOARCH" string, aliasing
// x64/x86_64 to amd64 and aarch64 to arm64.
func ParseTarget(target string) (goos, goarch string, err error) {
	normalized := strings.ToLower(strings.TrimSpace(target))
	parts := strings.Split(normalized, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", snaperrors.New(snaperrors.ErrCodeConfig,
			fmt.Sprintf("invalid build target %q, expected GOOS/GOARCH", target))
	}
	goos = parts[0]
	goarch = parts[1]
	if alias, ok := architectureAliases[goarch]; ok {
		goarch = alias
	}
	return goos, goarch, nil
}

// ResolveTarget reads BuildTargetEnv, falling back to DefaultBuildTarget.
func ResolveTarget() (goos, goarch string, err error) {
	target := os.Getenv(BuildTargetEnv)
	if target == "" {
		target = DefaultBuildTarget
	}
	return ParseTarget(target)
}

// Build cross-compiles the exec daemon entrypoint under repoRoot into
// repoRoot/dist/cmux-execd, returning the built binary's absolute path.
func Build(repoRoot string) (string, error) {
	goBin, err := exec.LookPath("go")
	if err != nil {
		return "", snaperrors.Wrap(snaperrors.ErrCodeBuild, "go toolchain not found in PATH", err)
	}

	entryDir := filepath.Join(repoRoot, EntrypointPath)
	if info, statErr := os.Stat(entryDir); statErr != nil || !info.IsDir() {
		return "", snaperrors.New(snaperrors.ErrCodeBuild,
			fmt.Sprintf("exec daemon entrypoint not found at %s", entryDir))
	}

	goos, goarch, err := ResolveTarget()
	if err != nil {
		return "", err
	}

	outputDir := filepath.Join(repoRoot, BuildOutputDir)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", snaperrors.Wrap(snaperrors.ErrCodeBuild, "failed to create build output directory", err)
	}
	binaryPath, err := filepath.Abs(filepath.Join(outputDir, BinaryName))
	if err != nil {
		return "", snaperrors.Wrap(snaperrors.ErrCodeBuild, "failed to resolve binary path", err)
	}

	cmd := exec.Command(goBin, "build", "-o", binaryPath, ".")
	cmd.Dir = entryDir
	cmd.Env = append(os.Environ(), "GOOS="+goos, "GOARCH="+goarch, "CGO_ENABLED=0")
	output, runErr := cmd.CombinedOutput()
	if runErr != nil {
		return "", snaperrors.WrapWithContext(snaperrors.ErrCodeBuild,
			fmt.Sprintf("failed to build %s (GOOS=%s GOARCH=%s)", BinaryName, goos, goarch), runErr,
			map[string]any{"output": string(output)})
	}

	if _, statErr := os.Stat(binaryPath); statErr != nil {
		return "", snaperrors.New(snaperrors.ErrCodeBuild,
			fmt.Sprintf("expected exec binary at %s, but it was not produced", binaryPath))
	}
	return binaryPath, nil
}
