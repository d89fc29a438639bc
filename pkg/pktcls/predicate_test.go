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

	"github.com/gopacket/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scionproto/diffserv/pkg/pktcls"
)

func udpPacket(src, dst string, sport, dport uint16) *pktcls.Fields {
	return &pktcls.Fields{
		Size:  100,
		Src:   netip.MustParseAddr(src),
		Dst:   netip.MustParseAddr(dst),
		Sport: sport,
		Dport: dport,
		Proto: layers.IPProtocolUDP,
	}
}

func TestPredicateEval(t *testing.T) {
	icmp := &pktcls.Fields{
		Size:  64,
		Src:   netip.MustParseAddr("10.1.1.1"),
		Dst:   netip.MustParseAddr("10.2.2.2"),
		Sport: 4000,
		Dport: 5000,
		Proto: layers.IPProtocolICMPv4,
	}
	v6 := udpPacket("2001:db8::1", "2001:db8:1::2", 4000, 5000)

	testCases := map[string]struct {
		Pred     pktcls.Predicate
		Pkt      pktcls.Packet
		Expected bool
	}{
		"src addr match": {
			Pred:     pktcls.MatchSrcAddr(netip.MustParseAddr("10.1.1.1")),
			Pkt:      udpPacket("10.1.1.1", "10.2.2.2", 1, 2),
			Expected: true,
		},
		"src addr mismatch": {
			Pred: pktcls.MatchSrcAddr(netip.MustParseAddr("10.1.1.2")),
			Pkt:  udpPacket("10.1.1.1", "10.2.2.2", 1, 2),
		},
		"dst addr match": {
			Pred:     pktcls.MatchDstAddr(netip.MustParseAddr("10.2.2.2")),
			Pkt:      udpPacket("10.1.1.1", "10.2.2.2", 1, 2),
			Expected: true,
		},
		"v4 mapped v6 addr matches v4 predicate": {
			Pred:     pktcls.MatchDstAddr(netip.MustParseAddr("10.2.2.2")),
			Pkt:      udpPacket("10.1.1.1", "::ffff:10.2.2.2", 1, 2),
			Expected: true,
		},
		"masked match": {
			Pred: pktcls.MatchDstAddrMask(
				netip.MustParseAddr("10.2.0.0"),
				netip.MustParseAddr("255.255.0.0"),
			),
			Pkt:      udpPacket("10.1.1.1", "10.2.2.2", 1, 2),
			Expected: true,
		},
		"masked mismatch": {
			Pred: pktcls.MatchSrcAddrMask(
				netip.MustParseAddr("10.2.0.0"),
				netip.MustParseAddr("255.255.0.0"),
			),
			Pkt: udpPacket("10.1.1.1", "10.2.2.2", 1, 2),
		},
		"non contiguous mask": {
			Pred: pktcls.MatchSrcAddrMask(
				netip.MustParseAddr("10.0.0.1"),
				netip.MustParseAddr("255.0.0.255"),
			),
			Pkt:      udpPacket("10.7.7.1", "10.2.2.2", 1, 2),
			Expected: true,
		},
		"zero mask matches any v4": {
			Pred: pktcls.MatchSrcAddrMask(
				netip.MustParseAddr("0.0.0.0"),
				netip.MustParseAddr("0.0.0.0"),
			),
			Pkt:      udpPacket("192.0.2.1", "10.2.2.2", 1, 2),
			Expected: true,
		},
		"v4 predicate never matches v6 packet": {
			Pred: pktcls.MatchSrcAddrMask(
				netip.MustParseAddr("0.0.0.0"),
				netip.MustParseAddr("0.0.0.0"),
			),
			Pkt: v6,
		},
		"v6 masked match": {
			Pred: pktcls.MatchDstAddrMask(
				netip.MustParseAddr("2001:db8:1::"),
				netip.MustParseAddr("ffff:ffff:ffff::"),
			),
			Pkt:      v6,
			Expected: true,
		},
		"src port udp": {
			Pred:     pktcls.MatchSrcPort(4000),
			Pkt:      udpPacket("10.1.1.1", "10.2.2.2", 4000, 2),
			Expected: true,
		},
		"dst port tcp": {
			Pred: pktcls.MatchDstPort(80),
			Pkt: &pktcls.Fields{
				Src:   netip.MustParseAddr("10.1.1.1"),
				Dst:   netip.MustParseAddr("10.2.2.2"),
				Dport: 80,
				Proto: layers.IPProtocolTCP,
			},
			Expected: true,
		},
		"src port ignores icmp": {
			Pred: pktcls.MatchSrcPort(4000),
			Pkt:  icmp,
		},
		"dst port ignores icmp": {
			Pred: pktcls.MatchDstPort(5000),
			Pkt:  icmp,
		},
		"protocol icmp": {
			Pred:     pktcls.MatchProtocol(layers.IPProtocolICMPv4),
			Pkt:      icmp,
			Expected: true,
		},
		"protocol mismatch": {
			Pred: pktcls.MatchProtocol(layers.IPProtocolTCP),
			Pkt:  icmp,
		},
		"zero predicate": {
			Pred: pktcls.Predicate{},
			Pkt:  icmp,
		},
		"nil packet": {
			Pred: pktcls.MatchProtocol(layers.IPProtocolTCP),
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, tc.Pred.Eval(tc.Pkt))
			// Evaluation is pure.
			assert.Equal(t, tc.Expected, tc.Pred.Eval(tc.Pkt))
		})
	}
}

func TestParsePredicate(t *testing.T) {
	testCases := map[string]struct {
		Kind      string
		Value     string
		Expected  pktcls.Predicate
		AssertErr assert.ErrorAssertionFunc
	}{
		"src addr": {
			Kind:      "src_addr",
			Value:     "10.1.1.1",
			Expected:  pktcls.MatchSrcAddr(netip.MustParseAddr("10.1.1.1")),
			AssertErr: assert.NoError,
		},
		"dst addr alias": {
			Kind:      "dst_ip",
			Value:     "2001:db8::1",
			Expected:  pktcls.MatchDstAddr(netip.MustParseAddr("2001:db8::1")),
			AssertErr: assert.NoError,
		},
		"prefix length": {
			Kind:  "dst_addr_mask",
			Value: "10.2.0.0/16",
			Expected: pktcls.MatchDstAddrMask(
				netip.MustParseAddr("10.2.0.0"),
				netip.MustParseAddr("255.255.0.0"),
			),
			AssertErr: assert.NoError,
		},
		"v6 prefix length": {
			Kind:  "src_addr_mask",
			Value: "2001:db8::/32",
			Expected: pktcls.MatchSrcAddrMask(
				netip.MustParseAddr("2001:db8::"),
				netip.MustParseAddr("ffff:ffff::"),
			),
			AssertErr: assert.NoError,
		},
		"dotted mask": {
			Kind:  "src_addr_mask",
			Value: "10.0.0.1/255.0.0.255",
			Expected: pktcls.MatchSrcAddrMask(
				netip.MustParseAddr("10.0.0.1"),
				netip.MustParseAddr("255.0.0.255"),
			),
			AssertErr: assert.NoError,
		},
		"port": {
			Kind:      "dst_port",
			Value:     "65535",
			Expected:  pktcls.MatchDstPort(65535),
			AssertErr: assert.NoError,
		},
		"protocol name": {
			Kind:      "protocol",
			Value:     "UDP",
			Expected:  pktcls.MatchProtocol(layers.IPProtocolUDP),
			AssertErr: assert.NoError,
		},
		"protocol number": {
			Kind:      "protocol",
			Value:     "1",
			Expected:  pktcls.MatchProtocol(layers.IPProtocolICMPv4),
			AssertErr: assert.NoError,
		},
		"unknown kind": {
			Kind:  "tos",
			Value: "0x80",
			AssertErr: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, pktcls.ErrUnknownKind)
			},
		},
		"bad addr": {
			Kind:  "src_addr",
			Value: "10.1.1",
			AssertErr: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, pktcls.ErrInvalidValue)
			},
		},
		"port out of range": {
			Kind:      "src_port",
			Value:     "65536",
			AssertErr: assert.Error,
		},
		"negative port": {
			Kind:      "src_port",
			Value:     "-1",
			AssertErr: assert.Error,
		},
		"protocol number is decimal": {
			Kind:      "protocol",
			Value:     "017",
			Expected:  pktcls.MatchProtocol(layers.IPProtocolUDP),
			AssertErr: assert.NoError,
		},
		"hex protocol number": {
			Kind:      "protocol",
			Value:     "0x11",
			AssertErr: assert.Error,
		},
		"protocol out of range": {
			Kind:      "protocol",
			Value:     "256",
			AssertErr: assert.Error,
		},
		"mask missing": {
			Kind:      "dst_addr_mask",
			Value:     "10.0.0.0",
			AssertErr: assert.Error,
		},
		"mask family mismatch": {
			Kind:      "dst_addr_mask",
			Value:     "10.0.0.0/ffff::",
			AssertErr: assert.Error,
		},
		"prefix too long": {
			Kind:      "dst_addr_mask",
			Value:     "10.0.0.0/33",
			AssertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			p, err := pktcls.ParsePredicate(tc.Kind, tc.Value)
			tc.AssertErr(t, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.Expected, p)
		})
	}
}

func TestPredicateValueRoundTrip(t *testing.T) {
	preds := []pktcls.Predicate{
		pktcls.MatchSrcAddr(netip.MustParseAddr("10.1.1.1")),
		pktcls.MatchDstAddrMask(
			netip.MustParseAddr("10.0.0.1"),
			netip.MustParseAddr("255.0.0.255"),
		),
		pktcls.MatchSrcPort(53),
		pktcls.MatchProtocol(layers.IPProtocolTCP),
	}
	for _, p := range preds {
		t.Run(p.String(), func(t *testing.T) {
			parsed, err := pktcls.ParsePredicate(p.Kind.String(), p.Value())
			require.NoError(t, err)
			assert.Equal(t, p, parsed)
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{
		"src_addr", "src_addr_mask", "dst_addr", "dst_addr_mask",
		"src_port", "dst_port", "protocol",
	} {
		k, err := pktcls.ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, k.String())
	}
	k, err := pktcls.ParseKind(" SRC_MASK ")
	require.NoError(t, err)
	assert.Equal(t, pktcls.KindSrcAddrMask, k)
	_, err = pktcls.ParseKind("dscp")
	assert.ErrorIs(t, err, pktcls.ErrUnknownKind)
	assert.Equal(t, "kind(42)", pktcls.Kind(42).String())
}
