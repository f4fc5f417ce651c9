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

// Command snapctl is the top-level driver: it parses the provisioning
// flags, runs every hardware preset through the orchestrator, and persists
// the resulting snapshot manifest.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cmux/snapctl/pkg/cli"
	"github.com/cmux/snapctl/pkg/logging"
)

func main() {
	logging.SetDefaultStructuredLogger("snapctl", "dev")

	cmd := cli.Command(nil)
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
