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
	"sync"

	"go.uber.org/zap"
)

// Log returns the package's current default logger. Components log
// through Log().Named("...") the same way the rest of a surrounding
// HTTP client's structured logging would, so HSTS decisions show up
// in the client's normal log stream instead of going to fmt.Printf.
func Log() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger replaces the package's default logger. Passing nil
// installs a no-op logger.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

var (
	logger, _ = newDefaultLogger()
	loggerMu  sync.RWMutex
)

func newDefaultLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		// A dev logger is the fallback for environments (like tests)
		// where building a production logger can fail.
		return zap.NewDevelopment()
	}
	return l, nil
}
