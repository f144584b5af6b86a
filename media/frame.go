// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package media

import (
	"sync/atomic"
	"time"

	"github.com/gogpu/texupload/gpuctx"
)

// FrameFlags carry per-frame marker bits in the metadata envelope.
type FrameFlags uint32

const (
	// FlagKeyframe marks a frame decodable on its own.
	FlagKeyframe FrameFlags = 1 << iota

	// FlagCorrupted marks a frame with known-damaged content.
	FlagCorrupted

	// FlagGap marks a frame inserted to cover a stream gap.
	FlagGap
)

// TextureOrientation describes the texture coordinate orientation a
// producer-driven upload callback writes.
type TextureOrientation uint8

const (
	// OrientationNormal is x-normal, y-normal.
	OrientationNormal TextureOrientation = iota

	// OrientationFlipY is x-normal, y-flipped.
	OrientationFlipY
)

// UploadFunc is a producer-provided callback that populates the given
// destination textures with the frame's content. It is invoked on the
// GPU-context thread and reports whether the upload succeeded.
type UploadFunc func(textures []gpuctx.TextureID) bool

// Meta is a frame's metadata envelope. It is copied independently of the
// payload when an upload produces a new frame.
type Meta struct {
	// PTS is the presentation timestamp.
	PTS time.Duration

	// Duration is the frame duration.
	Duration time.Duration

	// Flags are the frame marker bits.
	Flags FrameFlags

	// Orientation is the texture orientation an Upload callback writes.
	Orientation TextureOrientation

	// Upload, when set, lets the producer populate destination textures
	// itself instead of exposing the frame bytes.
	Upload UploadFunc
}

// Frame is a reference-counted container of 1..N memory regions plus a
// metadata envelope. The number of regions a conforming frame carries is
// dictated by the negotiated Format's ExpectedMemories.
//
// A new frame starts with one reference. Ref and Unref are safe for
// concurrent use; when the count reaches zero each memory's destroy
// notify runs and the frame must not be touched again.
type Frame struct {
	refs atomic.Int32

	mems []*Memory

	// Meta is the metadata envelope.
	Meta Meta

	// PoolTag identifies the buffer pool the frame came from, if any.
	PoolTag string
}

// NewFrame creates a frame holding the given memory regions, with one
// reference.
func NewFrame(mems ...*Memory) *Frame {
	f := &Frame{mems: mems}
	f.refs.Add(1)
	return f
}

// Ref acquires an additional reference and returns the frame.
func (f *Frame) Ref() *Frame {
	if f.refs.Add(1) <= 1 {
		panic("media: Ref on a freed frame")
	}
	return f
}

// Unref drops one reference, freeing the frame's memories when the last
// reference is released.
func (f *Frame) Unref() {
	n := f.refs.Add(-1)
	if n < 0 {
		panic("media: Unref without matching Ref")
	}
	if n == 0 {
		for _, m := range f.mems {
			m.Free()
		}
		f.mems = nil
	}
}

// RefCount returns the current reference count, for tests and logs.
func (f *Frame) RefCount() int { return int(f.refs.Load()) }

// MemoryCount returns the number of memory regions.
func (f *Frame) MemoryCount() int { return len(f.mems) }

// Memory returns the i-th memory region.
func (f *Frame) Memory(i int) *Memory { return f.mems[i] }

// CopyMetaFrom copies the metadata envelope (timing and flags) from src.
// The payload, the upload callback and pool affinity are not copied; they
// belong to the payload side of the frame.
func (f *Frame) CopyMetaFrom(src *Frame) {
	f.Meta.PTS = src.Meta.PTS
	f.Meta.Duration = src.Meta.Duration
	f.Meta.Flags = src.Meta.Flags
}
