// Copyright 2025 The Rivaas Authors
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

package codec

import "log/slog"

// Logger is the small surface Core needs from a structured logger,
// mirroring the shape rivaas.dev/logging wraps around log/slog. Only
// Debug is used: synthesis and dynamic-dispatch decisions are useful
// to trace, but Encode/Decode failures are always surfaced as an
// error return, never only logged.
type Logger interface {
	Debug(msg string, args ...any)
}

type slogLogger struct {
	*slog.Logger
}

func defaultLogger() Logger {
	return slogLogger{slog.Default().With("component", "codec")}
}

// WithLogger overrides the Core's logger, which otherwise wraps
// slog.Default().
func WithLogger(logger Logger) Option {
	return func(c *Config) { c.logger = logger }
}
