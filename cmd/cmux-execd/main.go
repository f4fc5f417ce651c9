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

// Command cmux-execd is the in-VM daemon cmux-execd: it exposes /exec over
// HTTP so the orchestrator can run provisioning commands without an SSH
// round trip per call.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/cmux/snapctl/pkg/defaults"
	execdserver "github.com/cmux/snapctl/pkg/execdaemon/server"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	port := flag.Int("port", defaults.ExecHTTPPort, "port to listen on")
	flag.Parse()

	s := execdserver.New(*port, version)
	if err := s.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
