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

// Package cgroup configures a resource cgroup sized to a preset (C8):
// deriving a default ResourceProfile from vCPU/memory, and rendering the
// shell script that creates and populates the cgroup on either the v2 or
// v1 interface.
package cgroup

// Profile is a named cgroup knob bundle. Any numeric field may be absent
// (nil), in which case the corresponding control file is never written.
type Profile struct {
	Name       string
	CPUQuota   *int64
	CPUPeriod  *int64
	CPUWeight  *int64
	MemoryHigh *int64
	MemoryMax  *int64
	IOWeight   *int64
}

const (
	defaultCPUPeriod = 100_000
	defaultCPUWeight = 80
	defaultIOWeight  = 200
)

// DefaultProfile derives a ResourceProfile from a preset's vcpu count and
// memory size, matching the original provisioning script's formula exactly:
// cpu_quota = max(vcpus*period*0.9, period); memory_high = 90% of memory;
// memory_max = max(95% of memory, memory_high). A non-positive vcpu count
// leaves CPUQuota and CPUPeriod unset.
func DefaultProfile(name string, vcpus int, memoryMiB int64) Profile {
	p := Profile{Name: name, CPUWeight: ptr(int64(defaultCPUWeight)), IOWeight: ptr(int64(defaultIOWeight))}

	if vcpus > 0 {
		period := int64(defaultCPUPeriod)
		quota := int64(float64(vcpus) * float64(period) * 0.9)
		if quota < period {
			quota = period
		}
		p.CPUPeriod = ptr(period)
		p.CPUQuota = ptr(quota)
	}

	memoryBytes := memoryMiB * 1024 * 1024
	high := memoryBytes * 9 / 10
	if high < 1 {
		high = 1
	}
	max := memoryBytes * 95 / 100
	if max < high {
		max = high
	}
	p.MemoryHigh = ptr(high)
	p.MemoryMax = ptr(max)

	return p
}

func ptr[T any](v T) *T { return &v }

// Invariant reports whether the profile satisfies the spec's invariants: if
// CPUQuota is set so is CPUPeriod, and MemoryHigh <= MemoryMax.
func (p Profile) Invariant() bool {
	if p.CPUQuota != nil && p.CPUPeriod == nil {
		return false
	}
	if p.MemoryHigh != nil && p.MemoryMax != nil && *p.MemoryHigh > *p.MemoryMax {
		return false
	}
	return true
}
