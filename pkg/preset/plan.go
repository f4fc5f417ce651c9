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

// Package preset implements the preset orchestrator (C9): per preset, boot
// a transient VM, expose its standard ports, run the provisioning task
// graph against it, verify it externally, snapshot it, and manage its TTL.
package preset

import "fmt"

// Plan is an immutable hardware preset: a vcpu/memory/disk combination with
// a stable identifier and human-facing display strings.
type Plan struct {
	PresetID      string
	Label         string
	CPUDisplay    string
	MemoryDisplay string
	DiskDisplay   string
	VCPUs         int
	MemoryMiB     int64
	DiskSizeMiB   int64
}

// NewPlan derives PresetID and the display fields from the given hardware,
// matching the original's "{v}vcpu_{m}gb_{d}gb" identifier and
// "{v} vCPU"/"{m} GB RAM"/"{d} GB SSD" display conventions.
func NewPlan(label string, vcpus int, memoryMiB, diskSizeMiB int64) Plan {
	return Plan{
		PresetID:      presetID(vcpus, memoryMiB, diskSizeMiB),
		Label:         label,
		CPUDisplay:    fmt.Sprintf("%d vCPU", vcpus),
		MemoryDisplay: fmt.Sprintf("%d GB RAM", gib(memoryMiB)),
		DiskDisplay:   fmt.Sprintf("%d GB SSD", gib(diskSizeMiB)),
		VCPUs:         vcpus,
		MemoryMiB:     memoryMiB,
		DiskSizeMiB:   diskSizeMiB,
	}
}

func presetID(vcpus int, memoryMiB, diskSizeMiB int64) string {
	return fmt.Sprintf("%dvcpu_%dgb_%dgb", vcpus, gib(memoryMiB), gib(diskSizeMiB))
}

func gib(mib int64) int64 {
	g := mib / 1024
	if g < 1 {
		return 1
	}
	return g
}

// HardwareSpec is one preset's vcpu/memory/disk triple, as parsed from CLI
// flags.
type HardwareSpec struct {
	VCPUs       int
	MemoryMiB   int64
	DiskSizeMiB int64
}

// StandardPlans builds the two plans the top-level driver always runs: the
// standard workspace and the performance ("boosted") workspace.
func StandardPlans(standard, boosted HardwareSpec) []Plan {
	return []Plan{
		NewPlan("Standard workspace", standard.VCPUs, standard.MemoryMiB, standard.DiskSizeMiB),
		NewPlan("Performance workspace", boosted.VCPUs, boosted.MemoryMiB, boosted.DiskSizeMiB),
	}
}
