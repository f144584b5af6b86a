// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texupload

import (
	"github.com/gogpu/texupload/caps"
	"github.com/gogpu/texupload/gpuctx"
	"github.com/gogpu/texupload/media"
)

// texMemoryStrategy passes through frames whose planes already live in
// GPU textures. Zero copies when the producing context shares storage
// with the session's context; otherwise perform reports the mismatch so
// the session can fall back to raw copy.
var texMemoryStrategy = &strategy{
	name:  "texture-memory",
	flags: flagCanShareContext,
	inputTemplate: func() caps.Caps {
		return formatsTemplate(media.FeatureTextureMemory).
			Merge(formatsTemplate(caps.FeatureSystemMemory))
	},
	transformCaps: func(ctx *gpuctx.Context, dir Direction, c caps.Caps) caps.Caps {
		// Texture frames look the same on both sides of the boundary.
		return c.WithFeature(media.FeatureTextureMemory)
	},
	create: func(s *Session) strategyInstance {
		return &texMemoryUpload{session: s}
	},
}

type texMemoryUpload struct {
	session *Session
}

func (u *texMemoryUpload) accept(f *media.Frame, in, out caps.Caps) bool {
	if !out.HasFeature(media.FeatureTextureMemory) {
		return false
	}
	if !in.HasFeature(media.FeatureTextureMemory) && !in.HasFeature(caps.FeatureSystemMemory) {
		return false
	}
	if f == nil {
		return true
	}

	expected := u.session.inFormat.ExpectedMemories()
	if f.MemoryCount() != expected {
		u.session.log.Debug("memory count mismatch",
			"strategy", texMemoryStrategy.name,
			"have", f.MemoryCount(), "want", expected)
		return false
	}
	for i := 0; i < expected; i++ {
		if f.Memory(i).Origin() != media.OriginTexture {
			return false
		}
	}
	return true
}

func (u *texMemoryUpload) proposeAllocation(q *media.AllocationQuery) {
	q.AddAllocator(media.AllocatorTextureMemory)

	// Only add a pool when none of the proposed pools handles texture
	// hand-off already.
	for i := 0; i < q.NumPools(); i++ {
		if q.Pool(i).HasOption(media.PoolOptionSyncMeta) {
			return
		}
	}
	qf, err := media.FormatFromCaps(q.Caps)
	if err != nil {
		u.session.log.Warn("allocation query caps not resolvable", "err", err)
		return
	}
	target := u.session.outFormat.Target
	q.AddPool(media.PoolConfig{
		Caps:       q.Caps,
		Size:       qf.Size(),
		MinBuffers: 1,
		Options: []string{
			media.PoolOptionSyncMeta,
			media.PoolOptionForTarget(target),
		},
	})
}

func (u *texMemoryUpload) perform(f *media.Frame) (*media.Frame, result) {
	s := u.session
	for i := 0; i < f.MemoryCount(); i++ {
		mem := f.Memory(i)
		if !s.ctx.CanShare(mem.Owner()) {
			return nil, resultUnsharedContext
		}
	}
	// Storage is shared; hand the same frame over with transfers flagged
	// so the consumer inserts a sync point before sampling.
	for i := 0; i < f.MemoryCount(); i++ {
		f.Memory(i).MarkTransferPending()
	}
	return f.Ref(), resultDone
}

func (u *texMemoryUpload) free() {}
