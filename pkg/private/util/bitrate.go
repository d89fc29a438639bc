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

var _ (encoding.TextUnmarshaler) = (*Bitrate)(nil)
var _ (encoding.TextMarshaler) = Bitrate(0)
var _ (pflag.Value) = (*Bitrate)(nil)

// Bitrate is a data rate in bits per second.
type Bitrate uint64

const (
	Bps  Bitrate = 1
	Kbps         = 1000 * Bps
	Mbps         = 1000 * Kbps
	Gbps         = 1000 * Mbps
)

// bitrateUnits is ordered from the largest to the smallest unit. Units are
// matched case insensitively.
var bitrateUnits = []struct {
	name string
	r    Bitrate
}{
	{"gbps", Gbps},
	{"mbps", Mbps},
	{"kbps", Kbps},
	{"bps", Bps},
}

// ParseBitrate parses a rate of the form <number><unit>, e.g. "1Mbps" or
// "2.5Gbps". A number without unit is in bits per second.
func ParseBitrate(s string) (Bitrate, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	num, unit := s, ""
	if i >= 0 {
		num, unit = s[:i], strings.ToLower(strings.TrimSpace(s[i:]))
	}
	scale := Bps
	if unit != "" {
		scale = 0
		for _, u := range bitrateUnits {
			if u.name == unit {
				scale = u.r
				break
			}
		}
		if scale == 0 {
			return 0, serrors.New("unknown bitrate unit", "value", s, "unit", unit)
		}
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, serrors.Wrap("invalid bitrate", err, "value", s)
	}
	r := n * float64(scale)
	if r > math.MaxInt64 {
		return 0, serrors.New("bitrate out of range", "value", s)
	}
	return Bitrate(math.Round(r)), nil
}

// CalcBitrate returns the rate at which size bytes are transferred in d.
func CalcBitrate(size int, d time.Duration) Bitrate {
	if d <= 0 {
		return 0
	}
	return Bitrate(math.Round(float64(size) * 8 / d.Seconds()))
}

// TxTime returns the time it takes to serialize size bytes at rate r. It
// returns 0 for a zero rate.
func (r Bitrate) TxTime(size int) time.Duration {
	if r == 0 {
		return 0
	}
	return time.Duration(uint64(size) * 8 * uint64(time.Second) / uint64(r))
}

// Mbps returns the rate in megabits per second.
func (r Bitrate) Mbps() float64 {
	return float64(r) / float64(Mbps)
}

func (r *Bitrate) UnmarshalText(text []byte) error {
	return r.Set(string(text))
}

func (r *Bitrate) Set(text string) error {
	v, err := ParseBitrate(text)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func (r Bitrate) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// String formats the rate with the largest unit that represents it exactly.
func (r Bitrate) String() string {
	for _, u := range []struct {
		name string
		r    Bitrate
	}{{"Gbps", Gbps}, {"Mbps", Mbps}, {"kbps", Kbps}} {
		if r != 0 && r%u.r == 0 {
			return strconv.FormatUint(uint64(r/u.r), 10) + u.name
		}
	}
	return strconv.FormatUint(uint64(r), 10) + "bps"
}

func (r *Bitrate) Type() string {
	return "bitrate"
}
