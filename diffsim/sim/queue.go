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
	"context"
	"net/url"
	"path"
	"path/filepath"

	"github.com/scionproto/diffserv/pkg/private/serrors"
	"github.com/scionproto/diffserv/pkg/tc"
	"github.com/scionproto/diffserv/pkg/tc/tcconf"
	"github.com/scionproto/diffserv/private/config"
)

// LoadQueue reads the class configuration at location, a file or an http(s)
// URL, and builds a queue discipline from it. Rejected records are returned
// next to the queue discipline.
func LoadQueue(ctx context.Context, discipline, location string,
	opts ...tc.Option) (*tc.QueueDisc, tcconf.Rejections, error) {

	rc, err := config.LoadResource(ctx, location)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()
	records, err := tcconf.Parse(rc, sourceName(location))
	if err != nil {
		return nil, nil, err
	}
	qd, rejected, err := tcconf.Build(discipline, records, opts...)
	if err != nil {
		return nil, rejected, serrors.Wrap("building queue", err, "location", location)
	}
	return qd, rejected, nil
}

// sourceName returns the last path element of a file path or URL. It selects
// the format and prefixes the record positions.
func sourceName(location string) string {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return path.Base(u.Path)
	}
	return filepath.Base(location)
}
