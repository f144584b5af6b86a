// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texupload

import "log/slog"

// Option configures a Session during creation.
//
// Example:
//
//	sess := texupload.New(ctx, texupload.WithLogger(slog.Default()))
type Option func(*sessionOptions)

// sessionOptions holds optional configuration for Session creation.
type sessionOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger for one session, overriding the package
// default configured with SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *sessionOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
