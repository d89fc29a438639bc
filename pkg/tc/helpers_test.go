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

package tc_test

import (
	"net/netip"

	"github.com/gopacket/gopacket/layers"

	"github.com/scionproto/diffserv/pkg/pktcls"
	"github.com/scionproto/diffserv/pkg/tc"
)

// pkt returns a UDP packet of the given size to the given destination port.
func pkt(size int, dport uint16) *pktcls.Fields {
	return &pktcls.Fields{
		Size:  size,
		Src:   netip.MustParseAddr("10.1.1.1"),
		Dst:   netip.MustParseAddr("10.2.2.2"),
		Sport: 4000,
		Dport: dport,
		Proto: layers.IPProtocolUDP,
	}
}

func portFilter(port uint16) pktcls.Filter {
	return pktcls.NewFilter(pktcls.MatchDstPort(port))
}

// fill enqueues n packets of the given size directly into c.
func fill(c *tc.Class, n, size int, dport uint16) {
	for i := 0; i < n; i++ {
		c.Enqueue(pkt(size, dport))
	}
}
