// Copyright 2019 Anapaya Systems
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

package config

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// CtxMap contains the context for sample generation.
type CtxMap map[string]string

// sampleIndent is prepended to every non-empty line of a table sample.
const sampleIndent = "    "

// WriteSample writes the samples to dst in order. The sample of a
// TableSampler is written below a header built from path and its name, and
// every line of it is indented. Other samples are written as they are.
// WriteSample panics if writing to dst fails.
func WriteSample(dst io.Writer, path Path, ctx CtxMap, samplers ...Sampler) {
	var buf bytes.Buffer
	for _, sampler := range samplers {
		buf.Reset()
		ts, ok := sampler.(TableSampler)
		if !ok {
			sampler.Sample(&buf, path, ctx)
			WriteString(dst, buf.String())
			continue
		}
		sub := path.Extend(ts.ConfigName())
		ts.Sample(&buf, sub, ctx)
		WriteString(dst, "\n["+strings.Join(sub, ".")+"]")
		WriteString(dst, indent(buf.String()))
	}
}

// WriteString writes s to dst. It panics if writing fails.
func WriteString(dst io.Writer, s string) {
	if _, err := io.WriteString(dst, s); err != nil {
		panic(fmt.Sprintf("writing sample: %s", err))
	}
}

// indent indents all non-empty lines of s. Every line of the result ends
// with a newline.
func indent(s string) string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSuffix(line, "\r"); line != "" {
			b.WriteString(sampleIndent)
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
