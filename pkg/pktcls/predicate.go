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
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/gopacket/gopacket/layers"
	"go4.org/netipx"

	"github.com/scionproto/diffserv/pkg/private/serrors"
)

var (
	// ErrUnknownKind indicates a predicate kind that is not supported.
	ErrUnknownKind = errors.New("unknown predicate kind")
	// ErrInvalidValue indicates a predicate operand that cannot be parsed.
	ErrInvalidValue = errors.New("invalid predicate value")
)

// Kind identifies the packet field a Predicate tests.
type Kind uint8

const (
	KindSrcAddr Kind = iota + 1
	KindSrcAddrMask
	KindDstAddr
	KindDstAddrMask
	KindSrcPort
	KindDstPort
	KindProtocol
)

var kindNames = map[Kind]string{
	KindSrcAddr:     "src_addr",
	KindSrcAddrMask: "src_addr_mask",
	KindDstAddr:     "dst_addr",
	KindDstAddrMask: "dst_addr_mask",
	KindSrcPort:     "src_port",
	KindDstPort:     "dst_port",
	KindProtocol:    "protocol",
}

// kindAliases are accepted in addition to the canonical names. They are the
// keywords of the line based configuration format.
var kindAliases = map[string]Kind{
	"src_ip":   KindSrcAddr,
	"dst_ip":   KindDstAddr,
	"src_mask": KindSrcAddrMask,
	"dst_mask": KindDstAddrMask,
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind parses the textual name of a predicate kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	return 0, serrors.Join(ErrUnknownKind, nil, "kind", s)
}

// Predicate is a single test on one packet field. Which operand is used
// depends on Kind: Addr (and Mask) for address kinds, Port for port kinds and
// Proto for KindProtocol. The zero value matches nothing.
type Predicate struct {
	Kind  Kind
	Addr  netip.Addr
	Mask  netip.Addr
	Port  uint16
	Proto layers.IPProtocol
}

// MatchSrcAddr matches packets whose source address is addr.
func MatchSrcAddr(addr netip.Addr) Predicate {
	return Predicate{Kind: KindSrcAddr, Addr: addr.Unmap()}
}

// MatchSrcAddrMask matches packets whose source address equals addr under
// mask. The mask does not need to be contiguous.
func MatchSrcAddrMask(addr, mask netip.Addr) Predicate {
	return Predicate{Kind: KindSrcAddrMask, Addr: addr.Unmap(), Mask: mask.Unmap()}
}

// MatchDstAddr matches packets whose destination address is addr.
func MatchDstAddr(addr netip.Addr) Predicate {
	return Predicate{Kind: KindDstAddr, Addr: addr.Unmap()}
}

// MatchDstAddrMask matches packets whose destination address equals addr
// under mask.
func MatchDstAddrMask(addr, mask netip.Addr) Predicate {
	return Predicate{Kind: KindDstAddrMask, Addr: addr.Unmap(), Mask: mask.Unmap()}
}

// MatchSrcPort matches TCP and UDP packets with the given source port.
func MatchSrcPort(port uint16) Predicate {
	return Predicate{Kind: KindSrcPort, Port: port}
}

// MatchDstPort matches TCP and UDP packets with the given destination port.
func MatchDstPort(port uint16) Predicate {
	return Predicate{Kind: KindDstPort, Port: port}
}

// MatchProtocol matches packets with the given transport protocol number.
func MatchProtocol(proto layers.IPProtocol) Predicate {
	return Predicate{Kind: KindProtocol, Proto: proto}
}

// Eval returns true if the packet matches the predicate. Eval never fails; a
// test that does not apply to the packet evaluates to false.
func (p Predicate) Eval(pkt Packet) bool {
	if pkt == nil {
		return false
	}
	switch p.Kind {
	case KindSrcAddr:
		return pkt.SrcAddr().Unmap() == p.Addr
	case KindDstAddr:
		return pkt.DstAddr().Unmap() == p.Addr
	case KindSrcAddrMask:
		return matchMasked(pkt.SrcAddr(), p.Addr, p.Mask)
	case KindDstAddrMask:
		return matchMasked(pkt.DstAddr(), p.Addr, p.Mask)
	case KindSrcPort:
		return HasPorts(pkt) && pkt.SrcPort() == p.Port
	case KindDstPort:
		return HasPorts(pkt) && pkt.DstPort() == p.Port
	case KindProtocol:
		return pkt.Protocol() == p.Proto
	default:
		return false
	}
}

func matchMasked(got, want, mask netip.Addr) bool {
	got = got.Unmap()
	if !got.IsValid() || got.BitLen() != want.BitLen() || mask.BitLen() != want.BitLen() {
		return false
	}
	g, w, m := got.AsSlice(), want.AsSlice(), mask.AsSlice()
	for i := range m {
		if g[i]&m[i] != w[i]&m[i] {
			return false
		}
	}
	return true
}

// Value returns the operand of the predicate in the textual form accepted by
// ParsePredicate.
func (p Predicate) Value() string {
	switch p.Kind {
	case KindSrcAddr, KindDstAddr:
		return p.Addr.String()
	case KindSrcAddrMask, KindDstAddrMask:
		return p.Addr.String() + "/" + p.Mask.String()
	case KindSrcPort, KindDstPort:
		return strconv.Itoa(int(p.Port))
	case KindProtocol:
		return strconv.Itoa(int(p.Proto))
	default:
		return ""
	}
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s(%s)", p.Kind, p.Value())
}

// ParsePredicate creates a predicate from the name of its kind and the textual
// form of its operand. Addresses are IPv4 or IPv6 literals. Masked kinds take
// either addr/prefix-length or addr/mask. Ports are decimal numbers, and
// protocols are numbers or one of the names tcp, udp, icmp, icmpv6 and sctp.
func ParsePredicate(kind, value string) (Predicate, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Predicate{}, err
	}
	value = strings.TrimSpace(value)
	switch k {
	case KindSrcAddr, KindDstAddr:
		addr, err := netip.ParseAddr(value)
		if err != nil {
			return Predicate{}, serrors.Join(ErrInvalidValue, err, "kind", k, "value", value)
		}
		if k == KindSrcAddr {
			return MatchSrcAddr(addr), nil
		}
		return MatchDstAddr(addr), nil
	case KindSrcAddrMask, KindDstAddrMask:
		addr, mask, err := parseMasked(value)
		if err != nil {
			return Predicate{}, serrors.Join(ErrInvalidValue, err, "kind", k, "value", value)
		}
		if k == KindSrcAddrMask {
			return MatchSrcAddrMask(addr, mask), nil
		}
		return MatchDstAddrMask(addr, mask), nil
	case KindSrcPort, KindDstPort:
		port, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return Predicate{}, serrors.Join(ErrInvalidValue, err, "kind", k, "value", value)
		}
		if k == KindSrcPort {
			return MatchSrcPort(uint16(port)), nil
		}
		return MatchDstPort(uint16(port)), nil
	default:
		proto, err := ParseProtocol(value)
		if err != nil {
			return Predicate{}, serrors.Join(ErrInvalidValue, err, "kind", k, "value", value)
		}
		return MatchProtocol(proto), nil
	}
}

// parseMasked parses addr/len and addr/mask. The mask must have the same
// address family as the address.
func parseMasked(s string) (netip.Addr, netip.Addr, error) {
	a, m, ok := strings.Cut(s, "/")
	if !ok {
		return netip.Addr{}, netip.Addr{}, serrors.New("missing mask")
	}
	addr, err := netip.ParseAddr(a)
	if err != nil {
		return netip.Addr{}, netip.Addr{}, err
	}
	addr = addr.Unmap()
	if bits, err := strconv.Atoi(m); err == nil {
		prefix, err := addr.Prefix(bits)
		if err != nil {
			return netip.Addr{}, netip.Addr{}, err
		}
		mask, ok := netip.AddrFromSlice(netipx.PrefixIPNet(prefix).Mask)
		if !ok {
			return netip.Addr{}, netip.Addr{}, serrors.New("invalid prefix length", "bits", bits)
		}
		return addr, mask, nil
	}
	mask, err := netip.ParseAddr(m)
	if err != nil {
		return netip.Addr{}, netip.Addr{}, err
	}
	mask = mask.Unmap()
	if mask.BitLen() != addr.BitLen() {
		return netip.Addr{}, netip.Addr{}, serrors.New("mask and address family differ",
			"addr", addr, "mask", mask)
	}
	return addr, mask, nil
}

var protocolNames = map[string]layers.IPProtocol{
	"icmp":   layers.IPProtocolICMPv4,
	"tcp":    layers.IPProtocolTCP,
	"udp":    layers.IPProtocolUDP,
	"icmpv6": layers.IPProtocolICMPv6,
	"sctp":   layers.IPProtocolSCTP,
}

// ParseProtocol parses a protocol name or number.
func ParseProtocol(s string) (layers.IPProtocol, error) {
	if p, ok := protocolNames[strings.ToLower(s)]; ok {
		return p, nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, err
	}
	return layers.IPProtocol(n), nil
}
