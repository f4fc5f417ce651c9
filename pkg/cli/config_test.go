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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cmux/snapctl/pkg/cloud"
	"github.com/cmux/snapctl/pkg/preset"
	"github.com/cmux/snapctl/pkg/provisiontasks"
)

func validConfig() Config {
	return Config{
		IDEProvider: provisiontasks.IDEProviderCmuxCode,
		TTLAction:   cloud.TTLPause,
		Standard:    preset.HardwareSpec{VCPUs: 4, MemoryMiB: 16384, DiskSizeMiB: 49152},
		Boosted:     preset.HardwareSpec{VCPUs: 8, MemoryMiB: 32768, DiskSizeMiB: 49152},
	}
}

func TestConfigValidateAcceptsDefaults(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfigValidateRejectsUnknownIDEProvider(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.IDEProvider = "vim-remote"
	assert.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsUnknownTTLAction(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.TTLAction = "reboot"
	assert.Error(t, cfg.Validate())
}

func TestConfigPlansBuildsStandardAndBoostedPresets(t *testing.T) {
	t.Parallel()
	plans := validConfig().Plans()
	assert.Len(t, plans, 2)
	assert.Equal(t, "4vcpu_16gb_48gb", plans[0].PresetID)
	assert.Equal(t, "8vcpu_32gb_48gb", plans[1].PresetID)
}

func TestDefaultClientFactoryReportsUnconfigured(t *testing.T) {
	t.Parallel()
	_, err := DefaultClientFactory(nil)
	assert.Error(t, err)
}
