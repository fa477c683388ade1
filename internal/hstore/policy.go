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

package hstore

// Record applies the RFC 6797 rules for a freshly received
// Strict-Transport-Security header to m. Eligibility (HTTPS scheme,
// non-IP host) must already have been checked by the caller; key must
// already be canonicalised per NewKey. now is seconds-since-epoch; a
// negative value signals a clock failure and the call is aborted.
//
// Record reports whether a brand-new entry was created.
func Record(m *Map, now int64, key Key, maxAge int64, includeSubDomains bool) bool {
	if now < 0 || maxAge < 0 {
		return false
	}

	existing, ok := m.Get(key)

	if maxAge == 0 {
		if ok {
			m.Remove(key)
		}
		return false
	}

	if ok {
		// Congruent match: refresh in place. A fresh header always
		// updates include_subdomains; created/max_age are refreshed
		// whenever the observation is not older than what is already
		// known, with no requirement that now strictly advance past
		// the existing created (unlike the merge-on-reload path in
		// persist.go's Merge, which only adopts a disk record when it
		// is strictly newer).
		existing.IncludeSubDomains = includeSubDomains
		if now >= existing.Created {
			existing.MaxAge = maxAge
			existing.Created = now
		}
		m.Put(key, existing)
		return false
	}

	e := &Entry{Created: now, MaxAge: maxAge, IncludeSubDomains: includeSubDomains}
	if e.Overflowed() {
		return false
	}
	m.Put(key, e)
	return true
}

// Decide finds the best match for (host, port) at time now, evicting
// it first if expired, and reports whether the caller should rewrite
// the request to HTTPS.
func Decide(m *Map, now int64, host string, port uint16) bool {
	k, e, kind := m.FindBestMatch(host, port)
	if kind == NoMatch {
		return false
	}
	if e.Expired(now) {
		m.Remove(k)
		return false
	}
	switch kind {
	case CongruentMatch:
		return true
	case SuperdomainMatch:
		return e.IncludeSubDomains
	default:
		return false
	}
}
