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

package preset

// RunResult is what a successful preset run hands back to the top-level
// driver: the captured snapshot plus the URLs an operator would use to
// verify the workspace by hand.
type RunResult struct {
	Preset     Plan
	SnapshotID string
	CapturedAt string
	VSCodeURL  string
	VNCURL     string
	InstanceID string
}

// Outcome pairs a preset's plan with either its RunResult or the error that
// aborted it. RunAll returns one Outcome per plan regardless of whether
// that preset succeeded, since one preset's failure must not hide its
// siblings' results.
type Outcome struct {
	Plan   Plan
	Result *RunResult
	Err    error
}
