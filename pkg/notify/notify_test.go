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

package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	title, message string
	calls          int
}

func (r *recordingSender) Send(ctx context.Context, title, message string) error {
	r.title, r.message = title, message
	r.calls++
	return nil
}

func TestNoopSenderNeverErrors(t *testing.T) {
	t.Parallel()
	require.NoError(t, (noopSender{}).Send(context.Background(), "t", "m"))
}

func TestVerificationReadySendsExpectedTitle(t *testing.T) {
	t.Parallel()
	r := &recordingSender{}
	VerificationReady(context.Background(), r, "Standard", "VS Code: https://x")
	assert.Equal(t, 1, r.calls)
	assert.Equal(t, "Verify cmux workspace – Standard", r.title)
	assert.Contains(t, r.message, "VS Code")
}

func TestRunFailedSendsFixedTitle(t *testing.T) {
	t.Parallel()
	r := &recordingSender{}
	RunFailed(context.Background(), r, "boom")
	assert.Equal(t, "cmux snapshot failed", r.title)
	assert.Equal(t, "boom", r.message)
}

func TestQuoteAppleScriptEscapesQuotesAndBackslashes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `"say \"hi\" \\ ok"`, quoteAppleScript(`say "hi" \ ok`))
}
