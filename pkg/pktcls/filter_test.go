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

package pktcls_test

import (
	"net/netip"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/gopacket/gopacket/layers"
	"github.com/stretchr/testify/assert"

	"github.com/scionproto/diffserv/pkg/pktcls"
	"github.com/scionproto/diffserv/pkg/pktcls/mock_pktcls"
)

func TestFilterEval(t *testing.T) {
	pkt := udpPacket("10.1.1.1", "10.2.2.2", 4000, 5000)
	testCases := map[string]struct {
		Filter   pktcls.Filter
		Expected bool
	}{
		"empty filter matches": {
			Filter:   pktcls.NewFilter(),
			Expected: true,
		},
		"nil filter matches": {
			Filter:   nil,
			Expected: true,
		},
		"all match": {
			Filter: pktcls.NewFilter(
				pktcls.MatchSrcAddr(netip.MustParseAddr("10.1.1.1")),
				pktcls.MatchDstPort(5000),
				pktcls.MatchProtocol(layers.IPProtocolUDP),
			),
			Expected: true,
		},
		"one mismatch": {
			Filter: pktcls.NewFilter(
				pktcls.MatchSrcAddr(netip.MustParseAddr("10.1.1.1")),
				pktcls.MatchDstPort(5001),
			),
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, tc.Filter.Eval(pkt))
		})
	}
}

func TestFilterShortCircuits(t *testing.T) {
	ctrl := gomock.NewController(t)
	pkt := mock_pktcls.NewMockPacket(ctrl)
	pkt.EXPECT().Protocol().Return(layers.IPProtocolICMPv4)
	// The destination address must not be consulted after the first
	// predicate failed.
	f := pktcls.NewFilter(
		pktcls.MatchProtocol(layers.IPProtocolTCP),
		pktcls.MatchDstAddr(netip.MustParseAddr("10.2.2.2")),
	)
	assert.False(t, f.Eval(pkt))
}

func TestNewFilterCopies(t *testing.T) {
	preds := []pktcls.Predicate{pktcls.MatchSrcPort(1)}
	f := pktcls.NewFilter(preds...)
	preds[0] = pktcls.MatchSrcPort(2)
	assert.Equal(t, pktcls.MatchSrcPort(1), f[0])
}

func TestFilterString(t *testing.T) {
	assert.Equal(t, "any", pktcls.Filter(nil).String())
	f := pktcls.NewFilter(
		pktcls.MatchSrcPort(53),
		pktcls.MatchProtocol(layers.IPProtocolUDP),
	)
	assert.Equal(t, "src_port(53) && protocol(17)", f.String())
}
