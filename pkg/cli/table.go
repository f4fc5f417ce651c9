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

package cli

import (
	"strings"

	"github.com/cmux/snapctl/pkg/preset"
)

// renderVerificationTable lays out one row per successful outcome, columns
// ljust-padded to their widest cell and joined by "  |  ", matching the
// original's plain-text verification table. Failed presets are omitted from
// the table; callers report them separately.
func renderVerificationTable(outcomes []preset.Outcome) string {
	headers := []string{"Preset", "CPU", "Memory", "Disk", "VS Code URL", "VNC URL"}
	rows := [][]string{headers}
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		rows = append(rows, []string{
			o.Plan.PresetID,
			o.Plan.CPUDisplay,
			o.Plan.MemoryDisplay,
			o.Plan.DiskDisplay,
			o.Result.VSCodeURL,
			o.Result.VNCURL,
		})
	}
	if len(rows) == 1 {
		return ""
	}

	widths := make([]int, len(headers))
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	b.WriteString("\nSnapshot verification URLs:\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
		}
		b.WriteString("  " + strings.Join(cells, "  |  ") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
