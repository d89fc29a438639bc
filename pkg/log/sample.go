// Copyright 2018 ETH Zurich
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package log

import (
	"io"

	"github.com/scionproto/diffserv/private/config"
)

const loggingConsoleSample = `
# Console logging level (debug|info|error) (default info)
level = "info"

# Logging format (human|json) (default human)
format = "human"

# Level from which stack traces are included (debug|info|error|none)
# (default none)
stacktrace_level = "none"
`

// Sample writes the sample of the logging configuration.
func (c *Config) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteSample(dst, path, ctx,
		config.StringSampler{Text: loggingConsoleSample, Name: "console"},
	)
}

// ConfigName returns the name of the logging configuration block.
func (c *Config) ConfigName() string {
	return "log"
}
