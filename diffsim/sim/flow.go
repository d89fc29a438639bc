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
	"net"
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"

	"github.com/scionproto/diffserv/diffsim/config"
	"github.com/scionproto/diffserv/pkg/pktcls/layerpkt"
	"github.com/scionproto/diffserv/pkg/private/serrors"
)

// packet is a decoded packet annotated with the flow that sent it.
type packet struct {
	*layerpkt.Packet
	flow int
	sent time.Duration
}

// source is a constant bit rate packet source. Every packet of a flow has the
// same headers, only the IPv4 identification and the TCP sequence number
// change.
type source struct {
	id       int
	cfg      config.Flow
	interval time.Duration
	start    time.Duration
	stop     time.Duration

	buf     gopacket.SerializeBuffer
	decoder *layerpkt.Decoder
	payload []byte
	seq     uint32
}

func newSource(id int, cfg config.Flow, end time.Duration) (*source, error) {
	s := &source{
		id:      id,
		cfg:     cfg,
		start:   cfg.Start.Duration,
		stop:    end,
		buf:     gopacket.NewSerializeBuffer(),
		decoder: layerpkt.NewDecoder(),
		payload: make([]byte, cfg.PayloadSize),
	}
	if cfg.Stop.Duration != 0 && cfg.Stop.Duration < end {
		s.stop = cfg.Stop.Duration
	}
	// The interval is derived from the size of a serialized packet, so that
	// the configured rate holds on the wire.
	pkt, err := s.next(0)
	if err != nil {
		return nil, err
	}
	s.interval = cfg.Rate.TxTime(pkt.Len())
	if s.interval <= 0 {
		return nil, serrors.New("flow rate too high for simulation resolution",
			"flow", cfg.Name, "rate", cfg.Rate)
	}
	s.seq = 0
	return s, nil
}

// next builds the next packet of the flow.
func (s *source) next(now time.Duration) (*packet, error) {
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	var network gopacket.NetworkLayer
	var ipLayer gopacket.SerializableLayer
	proto := layers.IPProtocolUDP
	if s.cfg.Protocol == "tcp" {
		proto = layers.IPProtocolTCP
	}
	src, dst := s.cfg.Src.Unmap(), s.cfg.Dst.Unmap()
	if src.Is4() {
		ip := &layers.IPv4{
			Version:  4,
			TTL:      64,
			Id:       uint16(s.seq),
			Protocol: proto,
			SrcIP:    net.IP(src.AsSlice()),
			DstIP:    net.IP(dst.AsSlice()),
		}
		network, ipLayer = ip, ip
	} else {
		ip := &layers.IPv6{
			Version:    6,
			HopLimit:   64,
			NextHeader: proto,
			SrcIP:      net.IP(src.AsSlice()),
			DstIP:      net.IP(dst.AsSlice()),
		}
		network, ipLayer = ip, ip
	}
	var transport gopacket.SerializableLayer
	switch proto {
	case layers.IPProtocolTCP:
		tcp := &layers.TCP{
			SrcPort: layers.TCPPort(s.cfg.SrcPort),
			DstPort: layers.TCPPort(s.cfg.DstPort),
			Seq:     s.seq * uint32(len(s.payload)),
			ACK:     true,
			PSH:     true,
			Window:  65535,
		}
		if err := tcp.SetNetworkLayerForChecksum(network); err != nil {
			return nil, err
		}
		transport = tcp
	default:
		udp := &layers.UDP{
			SrcPort: layers.UDPPort(s.cfg.SrcPort),
			DstPort: layers.UDPPort(s.cfg.DstPort),
		}
		if err := udp.SetNetworkLayerForChecksum(network); err != nil {
			return nil, err
		}
		transport = udp
	}
	if err := gopacket.SerializeLayers(s.buf, opts,
		ipLayer, transport, gopacket.Payload(s.payload)); err != nil {

		return nil, serrors.Wrap("serializing packet", err, "flow", s.cfg.Name)
	}
	s.seq++
	// The serialize buffer is reused, the queued packet needs its own copy.
	raw := append([]byte(nil), s.buf.Bytes()...)
	decoded, err := s.decoder.Decode(raw)
	if err != nil {
		return nil, serrors.Wrap("decoding packet", err, "flow", s.cfg.Name)
	}
	return &packet{Packet: decoded, flow: s.id, sent: now}, nil
}
