// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texupload

import (
	"github.com/gogpu/texupload/caps"
	"github.com/gogpu/texupload/gpuctx"
	"github.com/gogpu/texupload/media"
)

// result is the outcome of a strategy's perform call.
type result int

const (
	// resultDone means the strategy produced an output frame.
	resultDone result = iota

	// resultUnsharedContext means the input textures belong to a GPU
	// context that cannot share storage with the session's context. This
	// is only discoverable at perform time; the session reacts by
	// jumping straight to the raw copy strategy.
	resultUnsharedContext

	// resultError means the strategy failed for an internal reason
	// (resource exhaustion, driver error). The session advances to the
	// next candidate.
	resultError
)

// strategyFlags describe static properties of a strategy.
type strategyFlags uint32

const (
	// flagCanShareContext marks strategies that pass textures between
	// GPU contexts and therefore depend on context shareability.
	flagCanShareContext strategyFlags = 1 << iota
)

// strategyInstance is the per-session state of one strategy. Instances
// are created lazily when the session tries the strategy and destroyed
// eagerly when it is rejected, fails, or the format changes. All methods
// are called with the owning session's lock held.
type strategyInstance interface {
	// accept is a cheap compatibility check against a concrete frame.
	// It must return false, never fail, on any mismatch. Implementations
	// may cache frame-derived state for the following perform call.
	accept(f *media.Frame, in, out caps.Caps) bool

	// proposeAllocation decorates an allocation query with this
	// strategy's allocator and pool preferences. Best effort.
	proposeAllocation(q *media.AllocationQuery)

	// perform executes the upload. The returned frame is only valid for
	// resultDone.
	perform(f *media.Frame) (*media.Frame, result)

	// free releases instance state. The instance must not be used after.
	free()
}

// strategy is the immutable descriptor of one upload strategy: identity,
// capability flags, the static input caps template, and constructors.
// Descriptors are created at init time and shared read-only by all
// sessions.
type strategy struct {
	name  string
	flags strategyFlags

	// inputTemplate returns the caps this strategy can ingest,
	// independent of any session.
	inputTemplate func() caps.Caps

	// transformCaps maps caps across the upload boundary: given caps
	// describing the dir side, it returns what this strategy accepts or
	// produces on the opposite side. Pure.
	transformCaps func(ctx *gpuctx.Context, dir Direction, c caps.Caps) caps.Caps

	// create builds the per-session instance.
	create func(s *Session) strategyInstance
}

// strategies is the closed upload strategy catalog in priority order:
// the earlier a strategy, the less copying it does. rawUploadStrategy
// must stay last; it is the universal fallback every platform supports
// and the designated target of the unshared-context jump.
var strategies = []*strategy{
	texMemoryStrategy,
	imageImportStrategy,
	callbackUploadStrategy,
	rawUploadStrategy,
}

// maxUploadTextures is the largest texture id array handed to an upload
// callback: all planes of a stereo frame in separated multiview mode.
const maxUploadTextures = media.MaxPlanes * 2

// formatList returns all supported pixel formats as a caps list value.
func formatList() caps.List {
	names := media.PixelFormatNames()
	l := make(caps.List, len(names))
	for i, n := range names {
		l[i] = n
	}
	return l
}

// formatsTemplate builds a template accepting every supported pixel
// format with the given memory feature.
func formatsTemplate(feature caps.Feature) caps.Caps {
	return caps.New(caps.NewStructure(media.MediaTypeRawVideo, feature).
		Set(media.FieldFormat, formatList()))
}

// rgbaTemplate builds a template fixed to packed RGBA with the given
// memory feature. Import-style sources dictate their pixel layout.
func rgbaTemplate(feature caps.Feature) caps.Caps {
	return caps.New(caps.NewStructure(media.MediaTypeRawVideo, feature).
		Set(media.FieldFormat, media.PixelFormatRGBA.String()))
}
