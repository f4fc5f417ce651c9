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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlanDerivesPresetID(t *testing.T) {
	t.Parallel()
	p := NewPlan("Standard workspace", 4, 16384, 49152)
	assert.Equal(t, "4vcpu_16gb_48gb", p.PresetID)
	assert.Equal(t, "4 vCPU", p.CPUDisplay)
	assert.Equal(t, "16 GB RAM", p.MemoryDisplay)
	assert.Equal(t, "48 GB SSD", p.DiskDisplay)
}

func TestNewPlanRoundsMemoryAndDiskDownToAtLeastOneGB(t *testing.T) {
	t.Parallel()
	p := NewPlan("tiny", 1, 512, 512)
	assert.Equal(t, "1vcpu_1gb_1gb", p.PresetID)
}

func TestStandardPlansBuildsTwoDistinctPresets(t *testing.T) {
	t.Parallel()
	plans := StandardPlans(
		HardwareSpec{VCPUs: 4, MemoryMiB: 16384, DiskSizeMiB: 49152},
		HardwareSpec{VCPUs: 8, MemoryMiB: 32768, DiskSizeMiB: 49152},
	)
	require := assert.New(t)
	require.Len(plans, 2)
	require.NotEqual(plans[0].PresetID, plans[1].PresetID)
	require.Equal("Standard workspace", plans[0].Label)
	require.Equal("Performance workspace", plans[1].Label)
}
