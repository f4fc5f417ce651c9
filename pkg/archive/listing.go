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

// Package archive implements the repo archive & upload subsystem (C4):
// enumerate the repository's tracked files, tar them, upload, and extract
// on the remote VM.
package archive

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ListFiles enumerates repoRoot's files to archive, preferring git's
// tracked+untracked (excluding ignored) listing; if git is unavailable it
// falls back to a filesystem walk that excludes any path containing a
// ".git" segment. Returned paths are relative to repoRoot, then filtered
// through a concurrent exists-check to drop entries raced away by
// concurrent edits.
func ListFiles(ctx context.Context, repoRoot string) ([]string, error) {
	var (
		candidates []string
		err        error
	)
	if candidates, err = gitListFiles(ctx, repoRoot); err != nil {
		candidates, err = walkListFiles(repoRoot)
		if err != nil {
			return nil, err
		}
	}
	return statSkipGroup(ctx, repoRoot, candidates)
}

func gitListFiles(ctx context.Context, repoRoot string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "-z", "--cached", "--others", "--exclude-standard")
	cmd.Dir = repoRoot
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	raw := strings.Split(out.String(), "\x00")
	files := make([]string, 0, len(raw))
	for _, f := range raw {
		if f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

func walkListFiles(repoRoot string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(repoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(repoRoot, path)
		if relErr != nil {
			return relErr
		}
		if strings.Contains(rel, ".git"+string(filepath.Separator)) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// statSkipGroup concurrently confirms each candidate path still exists
// before it is added to the archive list, fanning out one errgroup goroutine
// per candidate (no concurrency limit) so a large tree's stat calls don't
// serialize — the blocking-syscall
// dispatch spec.md §5 calls for.
func statSkipGroup(ctx context.Context, repoRoot string, candidates []string) ([]string, error) {
	kept := make([]bool, len(candidates))
	g, _ := errgroup.WithContext(ctx)
	for i, rel := range candidates {
		i, rel := i, rel
		g.Go(func() error {
			kept[i] = pathExists(filepath.Join(repoRoot, rel))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(candidates))
	for i, rel := range candidates {
		if kept[i] {
			out = append(out, rel)
		}
	}
	return out, nil
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
