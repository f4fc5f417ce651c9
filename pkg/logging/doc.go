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

// Package logging provides structured logging utilities for snapctl components.
//
// It wraps the standard library slog package with project-specific defaults:
// environment-based log level configuration, module/version context injection,
// and source location tracking for debug logs.
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("snapctl", version)
//	    slog.Info("starting", "preset_count", len(plans))
//	}
//
// The LOG_LEVEL environment variable controls verbosity (debug/info/warn/error,
// case-insensitive); it defaults to info when unset or unrecognized. Logs are
// written to stderr as JSON so that a preset's stdout stays reserved for
// human-facing output (verification tables, URLs).
package logging
