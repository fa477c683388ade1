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

func TestFindBestMatchCongruentWinsOverSuperdomain(t *testing.T) {
	m := NewMap()
	m.Put(Key{Host: "foo.com"}, &Entry{Created: 1, MaxAge: 100, IncludeSubDomains: true})
	m.Put(Key{Host: "www.foo.com"}, &Entry{Created: 1, MaxAge: 100})

	_, _, kind := m.FindBestMatch("www.foo.com", 443)
	if kind != CongruentMatch {
		t.Fatalf("want CongruentMatch, got %v", kind)
	}

	_, e, kind := m.FindBestMatch("bar.www.foo.com", 443)
	if kind != SuperdomainMatch {
		t.Fatalf("want SuperdomainMatch, got %v", kind)
	}
	if e.MaxAge != 100 {
		t.Fatalf("expected to match www.foo.com's entry, got max_age=%d", e.MaxAge)
	}
}

func TestFindBestMatchPortScoping(t *testing.T) {
	m := NewMap()
	m.Put(Key{Host: "test.example.com", Port: 8080}, &Entry{Created: 1, MaxAge: 100})

	if _, _, kind := m.FindBestMatch("test.example.com", 443); kind != NoMatch {
		t.Fatalf("wrong port should not match, got %v", kind)
	}
	if _, _, kind := m.FindBestMatch("test.example.com", 8080); kind != CongruentMatch {
		t.Fatalf("want CongruentMatch on matching port, got %v", kind)
	}
}

func TestFindBestMatchDefaultPortMatchesAny(t *testing.T) {
	m := NewMap()
	m.Put(Key{Host: "example.com"}, &Entry{Created: 1, MaxAge: 100}) // Port 0 == default

	for _, port := range []uint16{443, 80, 8443} {
		if _, _, kind := m.FindBestMatch("example.com", port); kind != CongruentMatch {
			t.Errorf("port %d: want CongruentMatch, got %v", port, kind)
		}
	}
}

func TestMapDirty(t *testing.T) {
	m := NewMap()
	if m.Dirty() {
		t.Fatal("empty map should not be dirty")
	}
	m.Put(Key{Host: "foo.com"}, &Entry{Created: 1, MaxAge: 1})
	if !m.Dirty() {
		t.Fatal("map should be dirty after Put")
	}
	m.MarkClean()
	if m.Dirty() {
		t.Fatal("MarkClean should clear dirty flag")
	}
	m.Remove(Key{Host: "foo.com"})
	if !m.Dirty() {
		t.Fatal("map should be dirty after Remove")
	}
}
