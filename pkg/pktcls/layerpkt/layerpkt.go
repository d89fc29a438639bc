// Copyright 2020 Anapaya Systems
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

// Package layerpkt provides a pktcls.Packet backed by raw IP packet bytes.
// The headers are decoded once with gopacket when the packet is created.
package layerpkt

import (
	"errors"
	"net/netip"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"

	"github.com/scionproto/diffserv/pkg/pktcls"
	"github.com/scionproto/diffserv/pkg/private/serrors"
)

// ErrNotIP is returned for buffers that do not start with an IPv4 or IPv6
// header.
var ErrNotIP = errors.New("not an IP packet")

var _ pktcls.Packet = (*Packet)(nil)

// Packet is an IP packet with its classification fields extracted.
type Packet struct {
	raw   []byte
	src   netip.Addr
	dst   netip.Addr
	sport uint16
	dport uint16
	proto layers.IPProtocol
}

// Decoder decodes raw IP packets. It reuses its layers between calls and
// must not be used concurrently.
type Decoder struct {
	ip4     layers.IPv4
	ip6     layers.IPv6
	tcp     layers.TCP
	udp     layers.UDP
	icmp4   layers.ICMPv4
	icmp6   layers.ICMPv6
	payload gopacket.Payload

	parser4 *gopacket.DecodingLayerParser
	parser6 *gopacket.DecodingLayerParser
	decoded []gopacket.LayerType
}

// NewDecoder returns a decoder for IPv4 and IPv6 packets.
func NewDecoder() *Decoder {
	d := &Decoder{decoded: make([]gopacket.LayerType, 0, 4)}
	d.parser4 = gopacket.NewDecodingLayerParser(layers.LayerTypeIPv4,
		&d.ip4, &d.tcp, &d.udp, &d.icmp4, &d.payload)
	d.parser6 = gopacket.NewDecodingLayerParser(layers.LayerTypeIPv6,
		&d.ip6, &d.tcp, &d.udp, &d.icmp6, &d.payload)
	d.parser4.IgnoreUnsupported = true
	d.parser6.IgnoreUnsupported = true
	return d
}

// Decode extracts the classification fields of raw. The returned packet
// keeps a reference to raw.
func (d *Decoder) Decode(raw []byte) (*Packet, error) {
	if len(raw) == 0 {
		return nil, serrors.Join(ErrNotIP, nil, "len", 0)
	}
	var parser *gopacket.DecodingLayerParser
	switch raw[0] >> 4 {
	case 4:
		parser = d.parser4
	case 6:
		parser = d.parser6
	default:
		return nil, serrors.Join(ErrNotIP, nil, "version", raw[0]>>4)
	}
	if err := parser.DecodeLayers(raw, &d.decoded); err != nil {
		return nil, serrors.Wrap("decoding packet", err, "len", len(raw))
	}
	p := &Packet{raw: raw}
	for _, lt := range d.decoded {
		switch lt {
		case layers.LayerTypeIPv4:
			p.src, _ = netip.AddrFromSlice(d.ip4.SrcIP.To4())
			p.dst, _ = netip.AddrFromSlice(d.ip4.DstIP.To4())
			p.proto = d.ip4.Protocol
		case layers.LayerTypeIPv6:
			p.src, _ = netip.AddrFromSlice(d.ip6.SrcIP)
			p.dst, _ = netip.AddrFromSlice(d.ip6.DstIP)
			p.proto = d.ip6.NextHeader
		case layers.LayerTypeTCP:
			p.sport, p.dport = uint16(d.tcp.SrcPort), uint16(d.tcp.DstPort)
		case layers.LayerTypeUDP:
			p.sport, p.dport = uint16(d.udp.SrcPort), uint16(d.udp.DstPort)
		}
	}
	return p, nil
}

// Decode is a shorthand for NewDecoder().Decode(raw).
func Decode(raw []byte) (*Packet, error) {
	return NewDecoder().Decode(raw)
}

func (p *Packet) Len() int                    { return len(p.raw) }
func (p *Packet) SrcAddr() netip.Addr         { return p.src }
func (p *Packet) DstAddr() netip.Addr         { return p.dst }
func (p *Packet) SrcPort() uint16             { return p.sport }
func (p *Packet) DstPort() uint16             { return p.dport }
func (p *Packet) Protocol() layers.IPProtocol { return p.proto }

// Bytes returns the raw packet.
func (p *Packet) Bytes() []byte { return p.raw }
