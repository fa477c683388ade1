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

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// preamble builds the three comment lines written at the top of a
// fresh database file.
func preamble(clientName string) []string {
	return []string{
		"# HSTS 1.0 Known Hosts database for " + clientName + ".",
		"# Edit at your own risk.",
		"# <hostname>[:<port>]\tincl. subdomains\tcreated\tmax-age",
	}
}

// parseLine parses one non-comment record line of the form
// "<host>[:<port>]\t<0|1>\t<created>\t<max_age>". It returns ok=false
// on any malformed line rather than an error, so a caller can skip it
// and keep reading the rest of the file.
func parseLine(line string) (key Key, entry *Entry, ok bool) {
	fields := strings.Split(line, "\t")
	if len(fields) != 4 {
		return Key{}, nil, false
	}

	hostPort := fields[0]
	flag := fields[1]
	host := hostPort
	var port uint16
	if i := strings.LastIndexByte(hostPort, ':'); i >= 0 {
		host = hostPort[:i]
		p, err := strconv.ParseUint(hostPort[i+1:], 10, 16)
		if err != nil {
			return Key{}, nil, false
		}
		port = uint16(p)
	}
	if host == "" {
		return Key{}, nil, false
	}

	var includeSubDomains bool
	switch flag {
	case "0":
		includeSubDomains = false
	case "1":
		includeSubDomains = true
	default:
		return Key{}, nil, false
	}

	created, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || created < 0 {
		return Key{}, nil, false
	}
	maxAge, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil || maxAge < 0 {
		return Key{}, nil, false
	}

	e := &Entry{Created: created, MaxAge: maxAge, IncludeSubDomains: includeSubDomains}
	if e.Overflowed() {
		return Key{}, nil, false
	}

	return NewKey(host, port, DefaultHTTPSPort), e, true
}

// formatLine renders one record line, omitting the port entirely when
// it is the default (0).
func formatLine(k Key, e *Entry) string {
	flag := "0"
	if e.IncludeSubDomains {
		flag = "1"
	}
	host := k.Host
	if k.Port != 0 {
		host = fmt.Sprintf("%s:%d", k.Host, k.Port)
	}
	return fmt.Sprintf("%s\t%s\t%d\t%d\n", host, flag, e.Created, e.MaxAge)
}

// readEntries scans path for record lines, skipping comments and
// malformed lines. Duplicates keep the first occurrence.
func readEntries(path string) (map[Key]*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[Key]*Entry)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || trimmed[0] == '#' {
			continue
		}
		k, e, ok := parseLine(line)
		if !ok {
			continue
		}
		if _, exists := out[k]; exists {
			continue // first-wins
		}
		out[k] = e
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Load populates an empty Map from path. If path does not exist, Load
// returns a nil error and leaves m untouched (an empty store is a
// perfectly normal starting state). LastMtime is recorded from the
// file's current mtime on success.
func Load(m *Map, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	entries, err := readEntries(path)
	if err != nil {
		return err
	}
	for k, e := range entries {
		m.Put(k, e)
	}
	m.LastMtime = info.ModTime().Unix()
	m.MarkClean()
	return nil
}

// Merge re-reads path and, for every on-disk record that is congruent
// with an in-memory entry, overwrites the in-memory entry when the
// on-disk Created is newer. On-disk-only records are deliberately not
// inserted: Save is a durability operation for what this process has
// observed, not a way to adopt records written by a process this one
// never saw.
func Merge(m *Map, path string) error {
	onDisk, err := readEntries(path)
	if err != nil {
		return err
	}
	for k, diskEntry := range onDisk {
		existing, ok := m.Get(k)
		if !ok {
			continue
		}
		if diskEntry.Created > existing.Created {
			existing.Created = diskEntry.Created
			existing.MaxAge = diskEntry.MaxAge
			existing.IncludeSubDomains = diskEntry.IncludeSubDomains
		}
	}
	return nil
}

// Save persists m to path: a no-op when m is empty, otherwise
// merge-on-stale-mtime followed by a full rewrite.
func Save(m *Map, path, clientName string) error {
	if m.Count() == 0 {
		return nil
	}

	if info, err := os.Stat(path); err == nil {
		if info.ModTime().Unix() > m.LastMtime {
			if err := Merge(m, path); err != nil {
				return err
			}
		}
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, line := range preamble(clientName) {
		if _, err := w.WriteString(line + "\n"); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	var writeErr error
	m.Iterate(func(k Key, e *Entry) {
		if writeErr != nil {
			return
		}
		_, writeErr = w.WriteString(formatLine(k, e))
	})
	if writeErr == nil {
		writeErr = w.Flush()
	}
	closeErr := f.Close()
	if writeErr != nil {
		os.Remove(tmp)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tmp)
		return closeErr
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	if info, err := os.Stat(path); err == nil {
		m.LastMtime = info.ModTime().Unix()
	}
	m.MarkClean()
	return nil
}
