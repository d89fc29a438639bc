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
	"net/netip"

	"github.com/scionproto/diffserv/diffsim/config"
	"github.com/scionproto/diffserv/pkg/private/util"
)

func testFlow(protocol, dst string) config.Flow {
	d := netip.MustParseAddr(dst)
	src := netip.MustParseAddr("10.0.0.1")
	if d.Is6() {
		src = netip.MustParseAddr("2001:db8::1")
	}
	f := config.Flow{
		Name:     "test",
		Src:      src,
		Dst:      d,
		Protocol: protocol,
		DstPort:  6000,
		Rate:     util.Mbps,
	}
	f.InitDefaults()
	return f
}
