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

import "strings"

// Map is the in-memory Known HSTS Hosts table, plus the bookkeeping
// persistence needs to merge safely with other processes sharing the
// same file.
type Map struct {
	entries map[Key]*Entry

	// LastMtime is the file mtime observed the last time this map was
	// loaded from or saved to disk, or 0 if it was never either.
	LastMtime int64

	// dirty is set whenever Put or Remove changes the map, and
	// cleared by the persistence layer after a successful save. It
	// lets a caller skip a save entirely when nothing changed.
	dirty bool
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{entries: make(map[Key]*Entry)}
}

func (m *Map) Get(k Key) (*Entry, bool) {
	e, ok := m.entries[k]
	return e, ok
}

// Put inserts or overwrites the entry for k.
func (m *Map) Put(k Key, e *Entry) {
	m.entries[k] = e
	m.dirty = true
}

// Remove deletes the entry for k, if any.
func (m *Map) Remove(k Key) {
	if _, ok := m.entries[k]; ok {
		delete(m.entries, k)
		m.dirty = true
	}
}

func (m *Map) Contains(k Key) bool {
	_, ok := m.entries[k]
	return ok
}

func (m *Map) Count() int {
	return len(m.entries)
}

// Dirty reports whether any entry was added, overwritten or removed
// since the map was loaded or last marked clean.
func (m *Map) Dirty() bool {
	return m.dirty
}

// MarkClean clears the dirty flag, typically after a successful save.
func (m *Map) MarkClean() {
	m.dirty = false
}

// Iterate calls fn once per entry. fn must not mutate the Map; the
// iteration order is unspecified and stable only for the duration of
// one call to Iterate.
func (m *Map) Iterate(fn func(Key, *Entry)) {
	for k, e := range m.entries {
		fn(k, e)
	}
}

// FindBestMatch applies two-pass match precedence: a congruent entry,
// if one exists, always wins over a superdomain one.
//
// The superdomain pass is a label-stripping lookup: it walks q one
// label at a time (foo.example.com, example.com, com, ...) and does a
// direct map lookup at each step, so cost is O(labels) rather than
// O(entries in the map).
func (m *Map) FindBestMatch(q string, port uint16) (Key, *Entry, MatchKind) {
	if k, e, ok := m.lookupPortAware(q, port); ok {
		return k, e, CongruentMatch
	}

	rest := q
	for {
		i := strings.IndexByte(rest, '.')
		if i < 0 {
			break
		}
		rest = rest[i+1:]
		if rest == "" {
			break
		}
		if k, e, ok := m.lookupPortAware(rest, port); ok {
			return k, e, SuperdomainMatch
		}
	}

	return Key{}, nil, NoMatch
}

// lookupPortAware finds the entry congruent with host (exact string
// match, already canonicalised) whose port rule permits port: either
// a key with an explicit port equal to the query port, or a key whose
// port is 0 (matches any query port).
func (m *Map) lookupPortAware(host string, port uint16) (Key, *Entry, bool) {
	if port != 0 {
		if e, ok := m.entries[Key{Host: host, Port: port}]; ok {
			return Key{Host: host, Port: port}, e, true
		}
	}
	if e, ok := m.entries[Key{Host: host, Port: 0}]; ok {
		return Key{Host: host, Port: 0}, e, true
	}
	return Key{}, nil, false
}
