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

// Entry is the per-host state of a Known HSTS Host.
type Entry struct {
	Created           int64
	MaxAge            int64
	IncludeSubDomains bool
}

// ExpiresAt returns Created+MaxAge.
func (e *Entry) ExpiresAt() int64 {
	return e.Created + e.MaxAge
}

// Expired reports whether now is past this entry's expiry.
func (e *Entry) Expired(now int64) bool {
	return now > e.ExpiresAt()
}

// Overflowed reports whether Created+MaxAge wrapped around, which
// would make ExpiresAt meaningless. Callers must reject the entry
// rather than store it.
func (e *Entry) Overflowed() bool {
	return e.ExpiresAt() < e.Created
}
