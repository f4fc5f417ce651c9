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

package cloud

import (
	"context"
	"fmt"
)

// FakeInstance is an in-memory Instance, for tests and for exercising
// pkg/preset without a live cloud account.
type FakeInstance struct {
	IDValue    string
	Services   map[int]string
	SnapshotID string
	Stopped    bool

	// ExecFunc, if set, backs Exec. The zero value returns exit 0 with no
	// output, enough for tests that only care about the cloud lifecycle.
	ExecFunc func(ctx context.Context, line string) (stdout, stderr string, exitCode int, err error)
}

func (f *FakeInstance) ID() string { return f.IDValue }

func (f *FakeInstance) AwaitReady(ctx context.Context) error { return nil }

func (f *FakeInstance) ExposeHTTPService(ctx context.Context, name string, port int) (string, error) {
	if f.Services == nil {
		f.Services = make(map[int]string)
	}
	url := fmt.Sprintf("https://%s-%d.fake.invalid", name, port)
	f.Services[port] = url
	return url, nil
}

func (f *FakeInstance) SetTTL(ctx context.Context, seconds int64, action TTLAction) error { return nil }

func (f *FakeInstance) UploadFile(ctx context.Context, localPath, remotePath string) error { return nil }

func (f *FakeInstance) Snapshot(ctx context.Context) (string, error) {
	f.SnapshotID = "snap_" + f.IDValue
	return f.SnapshotID, nil
}

func (f *FakeInstance) Stop(ctx context.Context) error {
	f.Stopped = true
	return nil
}

func (f *FakeInstance) DashboardURL() string { return "https://dashboard.fake.invalid/" + f.IDValue }

func (f *FakeInstance) Exec(ctx context.Context, line string) (stdout, stderr string, exitCode int, err error) {
	if f.ExecFunc != nil {
		return f.ExecFunc(ctx, line)
	}
	return "", "", 0, nil
}

// FakeClient boots FakeInstances, assigning sequential ids.
type FakeClient struct {
	next int
}

func (c *FakeClient) Boot(ctx context.Context, spec BootSpec) (Instance, error) {
	c.next++
	return &FakeInstance{IDValue: fmt.Sprintf("inst-%d", c.next)}, nil
}
