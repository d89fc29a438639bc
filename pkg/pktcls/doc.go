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

// Package pktcls implements tools for classifying network packets.
//
// The package works on an abstract Packet that exposes the packet length and
// the header fields used for classification: source and destination address,
// source and destination port and the transport protocol number. The package
// never looks at payload bytes.
//
// A Predicate is a single test on one of these fields. The following kinds are
// supported:
//
//	src_addr        source address equals
//	src_addr_mask   source address equals under a mask
//	dst_addr        destination address equals
//	dst_addr_mask   destination address equals under a mask
//	src_port        TCP/UDP source port equals
//	dst_port        TCP/UDP destination port equals
//	protocol        transport protocol number equals
//
// Port predicates never match packets that are neither TCP nor UDP, and
// address predicates never match across address families.
//
// A Filter is a conjunction of predicates. A Filter without predicates matches
// every packet. Filters are combined into traffic classes by package tc.
//
// Predicates can be built with the Match* constructors, or from their textual
// form with ParsePredicate:
//
//	p, err := pktcls.ParsePredicate("dst_addr_mask", "10.1.0.0/255.255.0.0")
package pktcls
