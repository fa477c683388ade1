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

// Package hsts maintains a durable set of Known HSTS Hosts for an
// HTTP client and rewrites insecure request URLs to secure ones when
// they match a known host, per RFC 6797.
package hsts

import (
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/go-http-utils/hsts/internal/hstore"
)

// Store is a handle on a Known HSTS Hosts database. A Store is not
// safe for concurrent use: the HTTP client that owns it is expected to
// drive it from a single request/response path.
type Store struct {
	path       string
	clientName string
	clock      func() int64
	log        *zap.Logger
	m          *hstore.Map
}

// Option configures a Store at Open time.
type Option func(*Store)

// WithPath overrides the database file path. The default is
// DefaultPath().
func WithPath(path string) Option {
	return func(s *Store) { s.path = path }
}

// WithClientName sets the name written into the database file's
// preamble comment. Default "gohsts".
func WithClientName(name string) Option {
	return func(s *Store) { s.clientName = name }
}

// WithClock overrides the time source used for Created/expiry
// calculations. clock must return seconds since the Unix epoch, and
// may return a negative value to signal a clock failure. Tests use
// this to control time deterministically.
func WithClock(clock func() int64) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLogger overrides the logger this Store uses; the default is
// Log().
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// DefaultPath returns ${HOME}/.wget-hsts, the conventional location
// for a Known HSTS Hosts database, or the empty string if the home
// directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wget-hsts")
}

// Open allocates a Store and, if a database file is present at its
// path, loads it. A failure to load is not fatal: Open absorbs I/O
// errors into an empty store and only logs them.
func Open(opts ...Option) *Store {
	s := &Store{
		path:       DefaultPath(),
		clientName: "gohsts",
		clock:      func() int64 { return time.Now().Unix() },
		log:        Log(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.m = hstore.NewMap()
	if s.path != "" {
		if err := hstore.Load(s.m, s.path); err != nil {
			s.log.Named("hsts").Warn("failed to load HSTS database",
				zap.String("path", s.path), zap.Error(err))
		}
	}
	return s
}

// Close releases the Store's in-memory state. It does not save.
func (s *Store) Close() {
	s.m = nil
}

// Save persists the Store to its path. Save never returns an error:
// I/O failures are logged and otherwise silent, and a Store with no
// entries is left untouched on disk.
func (s *Store) Save() {
	if s.path == "" {
		return
	}
	if err := hstore.Save(s.m, s.path, s.clientName); err != nil {
		s.log.Named("hsts").Warn("failed to save HSTS database",
			zap.String("path", s.path), zap.Error(err))
	}
}

// Dirty reports whether any entry has been added, refreshed or removed
// since the Store was opened or last saved — a caller can use this to
// skip an unnecessary Save.
func (s *Store) Dirty() bool {
	return s.m.Dirty()
}

// Count returns the number of Known HSTS Hosts currently held.
func (s *Store) Count() int {
	return s.m.Count()
}

// HostRecord is a snapshot of one Known HSTS Host, returned by List.
type HostRecord struct {
	Host              string
	Port              uint16
	Created           int64
	MaxAge            int64
	IncludeSubDomains bool
}

// List returns a snapshot of every Known HSTS Host currently held, in
// unspecified order.
func (s *Store) List() []HostRecord {
	out := make([]HostRecord, 0, s.m.Count())
	s.m.Iterate(func(k hstore.Key, e *hstore.Entry) {
		out = append(out, HostRecord{
			Host:              k.Host,
			Port:              k.Port,
			Created:           e.Created,
			MaxAge:            e.MaxAge,
			IncludeSubDomains: e.IncludeSubDomains,
		})
	})
	return out
}

// Prune removes every entry that is already expired as of the
// Store's clock and reports how many were removed. Expiry is also
// enforced lazily by Match; Prune lets an operator or a periodic
// housekeeping task normalise the database eagerly instead of waiting
// for a matching request to trigger eviction.
func (s *Store) Prune() int {
	now := s.clock()
	var expired []hstore.Key
	s.m.Iterate(func(k hstore.Key, e *hstore.Entry) {
		if e.Expired(now) {
			expired = append(expired, k)
		}
	})
	for _, k := range expired {
		s.m.Remove(k)
	}
	return len(expired)
}

// Record applies an incoming Strict-Transport-Security header to the
// Store. scheme and host come from the response's request URL; port
// is that URL's effective port (443 if unspecified over HTTPS).
// Record reports whether a brand-new entry was created.
//
// Record silently ignores the header (returning false) when scheme is
// not "https" or host is an IP literal, per RFC 6797 §8.1.
func (s *Store) Record(scheme, host string, port uint16, directives STSDirectives) bool {
	if scheme != "https" || IsLiteralIP(host) {
		return false
	}
	if !directives.HasMaxAge {
		return false
	}
	key := hstore.NewKey(host, port, hstore.DefaultHTTPSPort)
	created := hstore.Record(s.m, s.clock(), key, directives.MaxAge, directives.IncludeSubDomains)
	if created {
		s.log.Named("hsts").Debug("recorded new HSTS host",
			zap.String("host", key.Host), zap.Uint16("port", key.Port),
			zap.Int64("max_age", directives.MaxAge),
			zap.Bool("include_subdomains", directives.IncludeSubDomains))
	}
	return created
}

// RecordHeader parses headerValue as a Strict-Transport-Security
// header value and, if it carries a valid max-age, applies it via
// Record.
func (s *Store) RecordHeader(scheme, host string, port uint16, headerValue string) bool {
	return s.Record(scheme, host, port, ParseSTSHeader(headerValue))
}

// Match checks u's host and port against the Store and, if a Known
// HSTS Host applies, rewrites u in place to HTTPS and reports true.
func (s *Store) Match(u *url.URL) bool {
	host := u.Hostname()
	port := effectivePort(u)

	if !hstore.Decide(s.m, s.clock(), hstore.CanonicalizeHost(host), port) {
		return false
	}

	if u.Port() == "80" {
		u.Host = net.JoinHostPort(host, "443")
	}
	u.Scheme = "https"
	return true
}

// effectivePort returns u's explicit port, or the default port for
// u's scheme if none was given.
func effectivePort(u *url.URL) uint16 {
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err == nil {
			return uint16(n)
		}
	}
	return defaultPortOf(u.Scheme)
}

// defaultPortOf returns the conventional default port for scheme.
func defaultPortOf(scheme string) uint16 {
	switch scheme {
	case "https":
		return 443
	case "http":
		return 80
	default:
		return 0
	}
}
