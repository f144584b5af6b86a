// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texupload

import "errors"

// Sentinel errors returned by Session operations. Wrap with context via
// fmt.Errorf("%w: ...") and test with errors.Is.
var (
	// ErrInvalidFormat indicates caps that could not be resolved into a
	// concrete frame format, or an operation attempted before SetCaps.
	ErrInvalidFormat = errors.New("texupload: invalid format")

	// ErrNoCompatibleStrategy indicates that every candidate strategy
	// rejected the frame during its accept check.
	ErrNoCompatibleStrategy = errors.New("texupload: no compatible upload strategy")

	// ErrUploadFailed indicates that a strategy accepted the frame but
	// failed to execute the upload, with no further candidates left.
	ErrUploadFailed = errors.New("texupload: upload failed")

	// ErrSessionClosed indicates use of a closed session.
	ErrSessionClosed = errors.New("texupload: session closed")
)
