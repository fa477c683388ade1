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

package hsts

import (
	"net"
	"strings"
)

// IsLiteralIP reports whether host is a literal IPv4 or IPv6 address,
// per RFC 6797 §8.1: HSTS policy is never recorded for a host that is
// an IP-literal rather than a DNS name. host may carry the bracketed
// IPv6 form a URL authority uses (e.g. "[::1]").
func IsLiteralIP(host string) bool {
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	return net.ParseIP(host) != nil
}
