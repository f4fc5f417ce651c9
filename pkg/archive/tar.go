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

package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	snaperrors "github.com/cmux/snapctl/pkg/errors"
)

// Create writes an uncompressed tar archive of files (relative to
// repoRoot) to a new temp file and returns its path. Entries the caller
// listed but that no longer exist are silently skipped (a race with
// concurrent edits), matching the original system's tolerance for this.
func Create(repoRoot string, files []string) (path string, err error) {
	f, err := os.CreateTemp("", "cmux-repo-*.tar")
	if err != nil {
		return "", snaperrors.Wrap(snaperrors.ErrCodeInternal, "failed to create archive temp file", err)
	}
	path = f.Name()
	defer func() {
		closeErr := f.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	tw := tar.NewWriter(f)
	defer func() {
		if cerr := tw.Close(); err == nil {
			err = cerr
		}
	}()

	for _, rel := range files {
		abs := filepath.Join(repoRoot, rel)
		info, statErr := os.Lstat(abs)
		if statErr != nil {
			continue // raced away since listing; skip
		}
		if !info.Mode().IsRegular() {
			continue
		}

		hdr, hdrErr := tar.FileInfoHeader(info, "")
		if hdrErr != nil {
			return path, snaperrors.Wrap(snaperrors.ErrCodeInternal, fmt.Sprintf("failed to build tar header for %q", rel), hdrErr)
		}
		hdr.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(hdr); err != nil {
			return path, snaperrors.Wrap(snaperrors.ErrCodeInternal, fmt.Sprintf("failed to write tar header for %q", rel), err)
		}

		if err := copyFileInto(tw, abs); err != nil {
			return path, err
		}
	}

	return path, nil
}

func copyFileInto(w io.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return nil // raced away mid-archive; skip silently, consistent with Create's listing race tolerance
	}
	defer src.Close()
	_, err = io.Copy(w, src)
	if err != nil {
		return snaperrors.Wrap(snaperrors.ErrCodeInternal, fmt.Sprintf("failed to copy %q into archive", path), err)
	}
	return nil
}
