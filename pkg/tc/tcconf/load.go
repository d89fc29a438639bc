// Copyright 2025 ETH Zurich
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

package tcconf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"

	"github.com/scionproto/diffserv/pkg/private/serrors"
)

// LoadFile reads records from file. The format is chosen by the file
// extension, see Parse.
func LoadFile(file string) ([]Record, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, serrors.Wrap("reading queue configuration", err, "file", file)
	}
	return Parse(bytes.NewReader(raw), filepath.Base(file))
}

// Parse reads records from r. The format is chosen by the extension of
// source: .toml and .yaml/.yml are structured documents, anything else is
// read as text format. The source also prefixes the record positions.
func Parse(r io.Reader, source string) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".toml":
		return ParseTOML(r, source)
	case ".yaml", ".yml":
		return ParseYAML(r, source)
	default:
		return ParseText(r, source)
	}
}

// ParseText reads records in the line based text format. Every non-empty line
// that is not a comment yields one record. Lines with syntax errors yield a
// record with Err set.
func ParseText(r io.Reader, source string) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		rec := parseLine(fields)
		rec.Pos = fmt.Sprintf("%s:%d", source, line)
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, serrors.Wrap("reading queue configuration", err, "source", source)
	}
	return records, nil
}

func parseLine(fields []string) Record {
	switch strings.ToLower(fields[0]) {
	case "queue":
		return parseQueueLine(fields[1:])
	case "filter":
		return parseFilterLine(fields[1:])
	default:
		return Record{Err: serrors.Join(ErrSyntax, nil, "keyword", fields[0])}
	}
}

// parseQueueLine parses: <id> <weight|priority> <max_packets> [default]
func parseQueueLine(args []string) Record {
	bad := func(err error) Record {
		return Record{Class: &ClassRecord{}, Err: err}
	}
	if len(args) != 3 && len(args) != 4 {
		return bad(serrors.Join(ErrSyntax, nil,
			"reason", "queue takes 3 or 4 arguments", "args", len(args)))
	}
	var nums [3]int
	for i, name := range []string{"id", "value", "max_packets"} {
		n, err := strconv.Atoi(args[i])
		if err != nil {
			return bad(serrors.Join(ErrSyntax, err, "field", name))
		}
		nums[i] = n
	}
	id := nums[0]
	c := &ClassRecord{ID: &id, Value: nums[1], Capacity: nums[2]}
	if len(args) == 4 {
		if !strings.EqualFold(args[3], "default") {
			return bad(serrors.Join(ErrSyntax, nil, "unexpected", args[3]))
		}
		c.Default = true
	}
	return Record{Class: c}
}

// parseFilterLine parses: <class> <kind> <value> [<kind> <value>...]
func parseFilterLine(args []string) Record {
	if len(args) < 3 || len(args)%2 != 1 {
		return Record{Err: serrors.Join(ErrSyntax, nil,
			"reason", "filter takes a class and kind value pairs", "args", len(args))}
	}
	class, err := strconv.Atoi(args[0])
	if err != nil {
		return Record{Err: serrors.Join(ErrSyntax, err, "field", "class")}
	}
	f := &FilterRecord{Class: class}
	for i := 1; i < len(args); i += 2 {
		f.Match = append(f.Match, PredicateRecord{Kind: args[i], Value: args[i+1]})
	}
	return Record{Filter: f}
}

// document is the structure of TOML and YAML queue configurations.
type document struct {
	Classes []classEntry  `toml:"classes" yaml:"classes"`
	Filters []filterEntry `toml:"filters" yaml:"filters"`
}

type classEntry struct {
	ID       *int `toml:"id,omitempty" yaml:"id,omitempty"`
	Value    *int `toml:"value" yaml:"value"`
	Capacity int  `toml:"capacity" yaml:"capacity"`
	Default  bool `toml:"default" yaml:"default"`
}

type filterEntry struct {
	Class *int         `toml:"class" yaml:"class"`
	Match []matchEntry `toml:"match" yaml:"match"`
}

type matchEntry struct {
	Kind  string `toml:"kind" yaml:"kind"`
	Value any    `toml:"value" yaml:"value"`
}

// ParseTOML reads records from a TOML document.
//
//	[[classes]]
//	value = 3000
//	capacity = 100
//
//	[[filters]]
//	class = 0
//	match = [{ kind = "dst_port", value = 5000 }]
func ParseTOML(r io.Reader, source string) ([]Record, error) {
	var doc document
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&doc); err != nil {
		return nil, serrors.Wrap("decoding TOML queue configuration", err, "source", source)
	}
	return doc.records(source), nil
}

// ParseYAML reads records from a YAML document with the same structure as the
// TOML document.
func ParseYAML(r io.Reader, source string) ([]Record, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, serrors.Wrap("decoding YAML queue configuration", err, "source", source)
	}
	return doc.records(source), nil
}

// records converts the document into records. Classes come before filters.
func (d document) records(source string) []Record {
	records := make([]Record, 0, len(d.Classes)+len(d.Filters))
	for i, c := range d.Classes {
		rec := Record{
			Pos:   fmt.Sprintf("%s:classes[%d]", source, i),
			Class: &ClassRecord{
				ID:       c.ID,
				Capacity: c.Capacity,
				Default:  c.Default,
			},
		}
		if c.Value == nil {
			rec.Err = serrors.Join(ErrSyntax, nil, "reason", "missing value")
		} else {
			rec.Class.Value = *c.Value
		}
		records = append(records, rec)
	}
	for i, f := range d.Filters {
		rec := Record{Pos: fmt.Sprintf("%s:filters[%d]", source, i)}
		if f.Class == nil {
			rec.Err = serrors.Join(ErrSyntax, nil, "reason", "missing class")
			records = append(records, rec)
			continue
		}
		filter := &FilterRecord{Class: *f.Class}
		for _, m := range f.Match {
			filter.Match = append(filter.Match, PredicateRecord{
				Kind:  m.Kind,
				Value: fmt.Sprint(m.Value),
			})
		}
		rec.Filter = filter
		records = append(records, rec)
	}
	return records
}
