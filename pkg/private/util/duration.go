// Copyright 2018 Anapaya Systems
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

// Package util contains the value types used in diffserv configuration
// files.
package util

import (
	"encoding"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/scionproto/diffserv/pkg/private/serrors"
)

var _ (encoding.TextUnmarshaler) = (*DurWrap)(nil)
var _ (encoding.TextMarshaler) = DurWrap{}
var _ (pflag.Value) = (*DurWrap)(nil)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// durationUnits is ordered from the largest to the smallest unit.
var durationUnits = []struct {
	name string
	d    time.Duration
}{
	{"w", week},
	{"d", day},
	{"h", time.Hour},
	{"m", time.Minute},
	{"s", time.Second},
	{"ms", time.Millisecond},
	{"us", time.Microsecond},
	{"µs", time.Microsecond},
	{"ns", time.Nanosecond},
}

// ParseDuration parses a duration of the form <number><unit>, e.g. "1.5s" or
// "100ms". Supported units are w, d, h, m, s, ms, us (or µs) and ns. The
// number must not be negative.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if i <= 0 {
		return 0, serrors.New("invalid duration", "value", s)
	}
	num, unit := s[:i], s[i:]
	var scale time.Duration
	for _, u := range durationUnits {
		if u.name == unit {
			scale = u.d
			break
		}
	}
	if scale == 0 {
		return 0, serrors.New("unknown duration unit", "value", s, "unit", unit)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, serrors.Wrap("invalid duration", err, "value", s)
	}
	d := n * float64(scale)
	if d > math.MaxInt64 {
		return 0, serrors.New("duration out of range", "value", s)
	}
	return time.Duration(math.Round(d)), nil
}

// FmtDuration formats d with the largest unit that represents it exactly.
// The result is accepted by ParseDuration.
func FmtDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}
	for _, u := range durationUnits {
		if d%u.d == 0 {
			return sign + strconv.FormatInt(int64(d/u.d), 10) + u.name
		}
	}
	return sign + d.String()
}

// DurWrap is a duration that is written as text in the format of
// ParseDuration, e.g., in TOML configuration files.
type DurWrap struct {
	time.Duration
}

func (d *DurWrap) UnmarshalText(text []byte) error {
	return d.Set(string(text))
}

// Set implements pflag.Value.
func (d *DurWrap) Set(text string) error {
	v, err := ParseDuration(text)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Type implements pflag.Value.
func (d *DurWrap) Type() string { return "duration" }

func (d DurWrap) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d DurWrap) String() string {
	return FmtDuration(d.Duration)
}
