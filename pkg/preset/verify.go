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
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	snaperrors "github.com/cmux/snapctl/pkg/errors"
)

const (
	verifyMaxAttempts = 45
	verifyDelay       = 2 * time.Second
	verifyHTTPTimeout = 5 * time.Second
)

// verifyDevTools confirms the CDP endpoint is reachable through its
// publicly exposed URL, not just loopback on the instance, by polling
// GET {cdpBaseURL}/json/version until it returns 200 or the attempt budget
// is exhausted.
func verifyDevTools(ctx context.Context, httpClient *http.Client, cdpBaseURL string, log func(string)) error {
	return pollDevTools(ctx, httpClient, cdpBaseURL, verifyMaxAttempts, verifyDelay, log)
}

// pollDevTools is verifyDevTools with the attempt budget and delay broken
// out, so tests can exercise the retry and exhaustion paths without
// waiting on the production-sized 45-attempt/2s budget.
func pollDevTools(ctx context.Context, httpClient *http.Client, cdpBaseURL string, maxAttempts int, delay time.Duration, log func(string)) error {
	versionURL, err := url.JoinPath(strings.TrimRight(cdpBaseURL, "/")+"/", "json/version")
	if err != nil {
		return snaperrors.Wrap(snaperrors.ErrCodeVerification, "malformed CDP URL", err)
	}

	client := httpClient
	if client == nil {
		client = &http.Client{Timeout: verifyHTTPTimeout}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, versionURL, nil)
		if reqErr != nil {
			return snaperrors.Wrap(snaperrors.ErrCodeVerification, "failed to build verification request", reqErr)
		}
		req.Header.Set("Accept", "application/json")

		resp, doErr := client.Do(req)
		if doErr != nil {
			lastErr = doErr
			if log != nil {
				log("attempt failed to reach DevTools via exposed URL: " + doErr.Error())
			}
		} else {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				if log != nil {
					log("DevTools endpoint is reachable via exposed URL")
				}
				return nil
			}
			lastErr = nil
			if log != nil {
				log("attempt returned unexpected status from DevTools")
			}
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	msg := "DevTools endpoint not reachable via exposed URL after multiple attempts"
	if lastErr != nil {
		return snaperrors.Wrap(snaperrors.ErrCodeVerification, msg, lastErr)
	}
	return snaperrors.New(snaperrors.ErrCodeVerification, msg)
}
