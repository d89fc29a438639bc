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

package sim

import (
	"bufio"
	"io"
	"strconv"
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"

	"github.com/scionproto/diffserv/pkg/private/serrors"
	"github.com/scionproto/diffserv/pkg/private/util"
)

type throughputWriter struct {
	w   *bufio.Writer
	buf []byte
}

func newThroughputWriter(w io.Writer) *throughputWriter {
	return &throughputWriter{w: bufio.NewWriter(w)}
}

// write appends a "<time> <flow> <Mbps>" line.
func (t *throughputWriter) write(now time.Duration, flow int, rate util.Bitrate) error {
	t.buf = t.buf[:0]
	t.buf = strconv.AppendFloat(t.buf, now.Seconds(), 'f', -1, 64)
	t.buf = append(t.buf, ' ')
	t.buf = strconv.AppendInt(t.buf, int64(flow), 10)
	t.buf = append(t.buf, ' ')
	t.buf = strconv.AppendFloat(t.buf, rate.Mbps(), 'f', -1, 64)
	t.buf = append(t.buf, '\n')
	if _, err := t.w.Write(t.buf); err != nil {
		return serrors.Wrap("writing throughput", err)
	}
	return nil
}

func (t *throughputWriter) flush() error {
	if err := t.w.Flush(); err != nil {
		return serrors.Wrap("writing throughput", err)
	}
	return nil
}

// captureEpoch is the wall clock time of simulated time zero in captures.
var captureEpoch = time.Unix(0, 0).UTC()

// pcapWriter captures raw IP packets.
type pcapWriter struct {
	w *pcapgo.Writer
}

func newPcapWriter(w io.Writer) (*pcapWriter, error) {
	pw := pcapgo.NewWriterNanos(w)
	if err := pw.WriteFileHeader(65536, layers.LinkTypeRaw); err != nil {
		return nil, serrors.Wrap("writing pcap header", err)
	}
	return &pcapWriter{w: pw}, nil
}

func (p *pcapWriter) write(now time.Duration, raw []byte) error {
	ci := gopacket.CaptureInfo{
		Timestamp:     captureEpoch.Add(now),
		CaptureLength: len(raw),
		Length:        len(raw),
	}
	if err := p.w.WritePacket(ci, raw); err != nil {
		return serrors.Wrap("writing pcap packet", err)
	}
	return nil
}
