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

// Package defaults provides centralized configuration constants for snapctl
// and cmux-execd.
//
// Timeouts, retry counts, backoff bases, and the standard port set are
// organized by the component that owns them: the exec transport (C2), the
// exec daemon installer (C3), the exec daemon's own HTTP server, instance
// lifecycle operations (C9), and task scheduling (C6). Centralizing these
// values keeps tuning a one-file change instead of a grep-and-replace.
package defaults
