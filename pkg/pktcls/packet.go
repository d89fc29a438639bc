// Copyright 2017 ETH Zurich
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

package pktcls

import (
	"net/netip"

	"github.com/gopacket/gopacket/layers"
)

// Packet is the view of a packet used for classification and scheduling.
// Implementations must not change the returned values while the packet is
// held by a queue.
type Packet interface {
	// Len returns the size of the packet in bytes.
	Len() int
	// SrcAddr returns the network layer source address.
	SrcAddr() netip.Addr
	// DstAddr returns the network layer destination address.
	DstAddr() netip.Addr
	// SrcPort returns the transport layer source port. It is only meaningful
	// for TCP and UDP packets.
	SrcPort() uint16
	// DstPort returns the transport layer destination port. It is only
	// meaningful for TCP and UDP packets.
	DstPort() uint16
	// Protocol returns the transport protocol number.
	Protocol() layers.IPProtocol
}

// HasPorts reports whether the packet carries a transport protocol with
// ports.
func HasPorts(p Packet) bool {
	switch p.Protocol() {
	case layers.IPProtocolTCP, layers.IPProtocolUDP:
		return true
	default:
		return false
	}
}

// Fields is a plain Packet implementation that carries the header fields by
// value. It is useful for packets whose headers were parsed elsewhere.
type Fields struct {
	Size  int
	Src   netip.Addr
	Dst   netip.Addr
	Sport uint16
	Dport uint16
	Proto layers.IPProtocol
}

func (f *Fields) Len() int                    { return f.Size }
func (f *Fields) SrcAddr() netip.Addr         { return f.Src }
func (f *Fields) DstAddr() netip.Addr         { return f.Dst }
func (f *Fields) SrcPort() uint16             { return f.Sport }
func (f *Fields) DstPort() uint16             { return f.Dport }
func (f *Fields) Protocol() layers.IPProtocol { return f.Proto }
