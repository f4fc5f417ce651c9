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

package task

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimingsCollectorAddIsConcurrencySafe(t *testing.T) {
	t.Parallel()
	tc := NewTimingsCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tc.Add("task:x", time.Millisecond)
		}(i)
	}
	wg.Wait()
	assert.Len(t, tc.Records(), 50)
}

func TestSummarizeComputesParallelism(t *testing.T) {
	t.Parallel()
	tc := NewTimingsCollector()
	tc.Add("layer:a", 10*time.Second)
	tc.Add("task:a", 10*time.Second)
	tc.Add("layer:b+c", 10*time.Second)
	tc.Add("task:b", 10*time.Second)
	tc.Add("task:c", 10*time.Second)

	s := tc.Summarize()
	assert.Equal(t, 2, s.Layers)
	assert.Equal(t, 20*time.Second, s.WallTime)
	assert.Equal(t, 30*time.Second, s.TaskTime)
	assert.InDelta(t, 1.5, s.Parallelism, 0.001)
}
