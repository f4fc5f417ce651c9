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

package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		{"ExecClientTimeout", ExecClientTimeout, 5 * time.Second, 60 * time.Second},
		{"ServerReadTimeout", ServerReadTimeout, 5 * time.Second, 30 * time.Second},
		{"ServerWriteTimeout", ServerWriteTimeout, 15 * time.Second, 60 * time.Second},
		{"ServerIdleTimeout", ServerIdleTimeout, 30 * time.Second, 300 * time.Second},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 10 * time.Second, 60 * time.Second},
		{"InstanceReadyTimeout", InstanceReadyTimeout, 1 * time.Minute, 30 * time.Minute},
		{"SnapshotTimeout", SnapshotTimeout, 1 * time.Minute, 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) is above maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestServerTimeoutRelationships(t *testing.T) {
	if ServerReadTimeout > ServerWriteTimeout {
		t.Errorf("ServerReadTimeout (%v) should not exceed ServerWriteTimeout (%v)",
			ServerReadTimeout, ServerWriteTimeout)
	}
	if ServerIdleTimeout < ServerWriteTimeout {
		t.Errorf("ServerIdleTimeout (%v) should be at least ServerWriteTimeout (%v)",
			ServerIdleTimeout, ServerWriteTimeout)
	}
}

func TestExecRetryBackoffGrowsExponentially(t *testing.T) {
	prev := time.Duration(0)
	for attempt := 0; attempt < ExecMaxRetries; attempt++ {
		delay := ExecRetryInitialDelay * (1 << attempt)
		if delay <= prev {
			t.Errorf("attempt %d backoff %v did not grow from previous %v", attempt, delay, prev)
		}
		prev = delay
	}
}

func TestStandardPortsAreUniqueAndOrdered(t *testing.T) {
	ports := StandardPorts()
	seen := make(map[int]bool, len(ports))
	for i, p := range ports {
		if seen[p] {
			t.Fatalf("duplicate port %d in StandardPorts()", p)
		}
		seen[p] = true
		if i > 0 && ports[i-1] >= p {
			t.Fatalf("StandardPorts() not strictly increasing at index %d: %d >= %d", i, ports[i-1], p)
		}
	}
}
