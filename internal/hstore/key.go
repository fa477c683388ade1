// Copyright 2024 The gohsts Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hstore implements the in-memory map, match engine, RFC 6797
// policy layer, and on-disk persistence for a Known HSTS Hosts
// database. It is internal because none of it is meaningful outside
// of the facade the hsts package exposes.
package hstore

import "strings"

// DefaultHTTPSPort is the implicit port assumed when a Key carries no
// explicit one.
const DefaultHTTPSPort uint16 = 443

// Key identifies a Known HSTS Host: a canonicalised hostname plus an
// explicit port. Port 0 means "the default HTTPS port" both in memory
// and on the wire; it is never rewritten to 443 so that the on-disk
// format can keep omitting it.
type Key struct {
	Host string
	Port uint16
}

// CanonicalizeHost lowercases host and strips a trailing dot, the
// canonicalisation the Key and match-engine invariants require.
func CanonicalizeHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

// NewKey canonicalises host (lowercased, trailing dot stripped) and
// folds port into the 0-means-default-port convention: if port equals
// defaultPort, the explicit port stored is 0.
func NewKey(host string, port, defaultPort uint16) Key {
	h := CanonicalizeHost(host)
	if port == defaultPort {
		port = 0
	}
	return Key{Host: h, Port: port}
}

// PortMatches reports whether a query port satisfies this key's port
// rule: an explicit port of 0 matches any query port, otherwise the
// ports must be equal.
func (k Key) PortMatches(queryPort uint16) bool {
	return k.Port == 0 || k.Port == queryPort
}
