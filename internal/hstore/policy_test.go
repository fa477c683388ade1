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

import "testing"

func TestRecordCreatesNewEntry(t *testing.T) {
	m := NewMap()
	key := NewKey("www.foo.com", 443, DefaultHTTPSPort)

	created := Record(m, 1000, key, 1234, true)
	if !created {
		t.Fatal("expected Record to report a new entry")
	}
	e, ok := m.Get(key)
	if !ok {
		t.Fatal("entry missing after Record")
	}
	if e.Created != 1000 || e.MaxAge != 1234 || !e.IncludeSubDomains {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestRecordMaxAgeZeroDeletesCongruentEntry(t *testing.T) {
	m := NewMap()
	key := NewKey("www.foo.com", 443, DefaultHTTPSPort)
	m.Put(key, &Entry{Created: 1, MaxAge: 100})

	if created := Record(m, 1000, key, 0, false); created {
		t.Fatal("Record with max_age=0 must not report creation")
	}
	if m.Contains(key) {
		t.Fatal("congruent entry should have been deleted")
	}
}

func TestRecordMaxAgeZeroNoEntryIsNoop(t *testing.T) {
	m := NewMap()
	key := NewKey("www.foo.com", 443, DefaultHTTPSPort)
	if created := Record(m, 1000, key, 0, false); created {
		t.Fatal("Record with max_age=0 and no prior entry must not report creation")
	}
	if m.Count() != 0 {
		t.Fatal("store should remain empty")
	}
}

func TestRecordIdempotence(t *testing.T) {
	m := NewMap()
	key := NewKey("www.foo.com", 443, DefaultHTTPSPort)

	Record(m, 1000, key, 1234, true)
	Record(m, 2000, key, 1234, true)

	if m.Count() != 1 {
		t.Fatalf("expected exactly one entry, got %d", m.Count())
	}
	e, _ := m.Get(key)
	if e.Created != 2000 {
		t.Fatalf("expected refreshed Created=2000, got %d", e.Created)
	}
}

func TestRecordRefreshesDifferingMaxAgeWithinSameClockSecond(t *testing.T) {
	m := NewMap()
	key := NewKey("www.foo.com", 443, DefaultHTTPSPort)

	Record(m, 1000, key, 100, true)
	Record(m, 1000, key, 200, true)

	e, _ := m.Get(key)
	if e.MaxAge != 200 {
		t.Fatalf("expected a fresh, differing max-age to overwrite the stored one even when now hasn't advanced, got %d", e.MaxAge)
	}
	if e.Created != 1000 {
		t.Fatalf("expected Created=1000, got %d", e.Created)
	}
}

func TestRecordNegativeMaxAgeIgnored(t *testing.T) {
	m := NewMap()
	key := NewKey("www.foo.com", 443, DefaultHTTPSPort)
	if created := Record(m, 1000, key, -1, false); created {
		t.Fatal("negative max_age must never create an entry")
	}
	if m.Count() != 0 {
		t.Fatal("store must remain empty")
	}
}

func TestRecordClockFailureAborts(t *testing.T) {
	m := NewMap()
	key := NewKey("www.foo.com", 443, DefaultHTTPSPort)
	if created := Record(m, -1, key, 1234, false); created {
		t.Fatal("negative now must abort Record")
	}
	if m.Count() != 0 {
		t.Fatal("store must remain empty")
	}
}

func TestDecideRewritesOnCongruentMatch(t *testing.T) {
	m := NewMap()
	key := NewKey("www.foo.com", 443, DefaultHTTPSPort)
	Record(m, 1000, key, 1234, true)

	if !Decide(m, 1001, "www.foo.com", 80) {
		t.Fatal("expected rewrite for congruent match")
	}
}

func TestDecideSubdomainRequiresIncludeSubDomains(t *testing.T) {
	m := NewMap()
	Record(m, 1000, NewKey("foo.com", 443, DefaultHTTPSPort), 1234, false)

	if Decide(m, 1001, "www.foo.com", 80) {
		t.Fatal("must not rewrite subdomain when include_subdomains is false")
	}
}

func TestDecideExpiredEntryIsEvicted(t *testing.T) {
	m := NewMap()
	key := NewKey("www.foo.com", 443, DefaultHTTPSPort)
	Record(m, 1000, key, 1, true) // expires at 1001

	if Decide(m, 1011, "www.foo.com", 80) {
		t.Fatal("expired entry must not trigger a rewrite")
	}
	if m.Contains(key) {
		t.Fatal("expired entry must be evicted on match")
	}
}
