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
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cmux/snapctl/pkg/cloud"
	"github.com/cmux/snapctl/pkg/defaults"
	"github.com/cmux/snapctl/pkg/execclient"
	snaperrors "github.com/cmux/snapctl/pkg/errors"
)

// Sync archives repoRoot's tracked files, uploads the tar to the instance,
// and extracts it over remoteRoot, replacing whatever was there before. The
// local temp archive is removed on every exit path.
func Sync(ctx context.Context, instance cloud.Instance, transport execclient.Transport, repoRoot, remoteRoot string) (err error) {
	files, err := ListFiles(ctx, repoRoot)
	if err != nil {
		return snaperrors.Wrap(snaperrors.ErrCodeInternal, "failed to enumerate repository files", err)
	}

	tarPath, err := Create(repoRoot, files)
	if tarPath != "" {
		defer os.Remove(tarPath)
	}
	if err != nil {
		return err
	}

	if err := instance.UploadFile(ctx, tarPath, defaults.RemoteRepoTar); err != nil {
		return snaperrors.Wrap(snaperrors.ErrCodeTransport, "failed to upload repository archive", err)
	}

	return Extract(ctx, transport, remoteRoot, defaults.RemoteRepoTar)
}

// Extract replaces remoteRoot's contents with the tar at remoteTarPath,
// then removes the remote tar.
func Extract(ctx context.Context, transport execclient.Transport, remoteRoot, remoteTarPath string) error {
	line := fmt.Sprintf(
		"rm -rf %s && mkdir -p %s && tar -xf %s -C %s && rm -f %s",
		shQuote(remoteRoot), shQuote(remoteRoot), shQuote(remoteTarPath), shQuote(remoteRoot), shQuote(remoteTarPath),
	)
	result, err := transport.Run(ctx, "extract-repo", line, defaults.TaskDefaultTimeout)
	if err != nil {
		return snaperrors.Wrap(snaperrors.ErrCodeTransport, "failed to run remote extract command", err)
	}
	if !result.Succeeded() {
		return snaperrors.New(snaperrors.ErrCodeRemoteCommand, fmt.Sprintf("remote extract failed with exit %d: %s", result.ExitCode, result.TrimmedStderr()))
	}
	return nil
}

func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
