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

// Package oci pushes and pulls artifacts to/from OCI-compliant registries
// using ORAS (OCI Registry As Storage). It is used to cache the exec daemon
// binary across provisioning runs: one build gets pushed once per
// architecture, and subsequent runs pull the cached binary instead of
// recompiling it.
//
// # Usage
//
//	ref, err := oci.ParseOutputTarget("oci://ghcr.io/org/cmux-execd:linux-amd64")
//	if err != nil {
//	    return err
//	}
//
//	_, err = oci.Push(ctx, oci.PushOptions{
//	    SourceDir:  binDir,
//	    Registry:   ref.Registry,
//	    Repository: ref.Repository,
//	    Tag:        ref.Tag,
//	})
//
//	_, err = oci.Pull(ctx, oci.PullOptions{
//	    DestDir:    binDir,
//	    Registry:   ref.Registry,
//	    Repository: ref.Repository,
//	    Tag:        ref.Tag,
//	})
//
// # URI Scheme
//
// OCI targets use the "oci://" URI scheme:
//
//	oci://registry/repository:tag
//	oci://ghcr.io/org/cmux-execd:linux-amd64
//
// Plain paths (no oci:// prefix) are treated as local directories by
// ParseOutputTarget, letting callers support both a registry cache and a
// local disk cache behind one flag.
//
// # Authentication
//
// Docker credential helpers are used automatically, loaded from
// ~/.docker/config.json via the ORAS credentials package.
package oci
