// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texupload

import (
	"github.com/gogpu/texupload/caps"
	"github.com/gogpu/texupload/gpuctx"
	"github.com/gogpu/texupload/media"
)

// callbackUploadStrategy lets the producer populate destination textures
// itself through a frame-attached callback, invoked on the GPU thread.
// Only packed RGBA in normal orientation is supported; anything else
// would force the consumer to undo producer-side sampling choices.
var callbackUploadStrategy = &strategy{
	name: "callback-upload",
	inputTemplate: func() caps.Caps {
		return rgbaTemplate(media.FeatureUploadCallback)
	},
	transformCaps: func(ctx *gpuctx.Context, dir Direction, c caps.Caps) caps.Caps {
		if dir == DirectionOutput {
			return c.WithFeature(media.FeatureUploadCallback).
				SetField(media.FieldFormat, media.PixelFormatRGBA.String()).
				RemoveField(media.FieldTextureTarget)
		}
		return c.WithFeature(media.FeatureTextureMemory)
	},
	create: func(s *Session) strategyInstance {
		return &callbackUpload{session: s}
	},
}

type callbackUpload struct {
	session *Session

	// ids is scratch reused across performs. The callback contract fixes
	// its length so producers can index planes positionally; unused
	// entries stay at InvalidID.
	ids [maxUploadTextures]gpuctx.TextureID
}

func (u *callbackUpload) accept(f *media.Frame, in, out caps.Caps) bool {
	if !in.HasFeature(media.FeatureUploadCallback) || !out.HasFeature(media.FeatureTextureMemory) {
		return false
	}
	if u.session.inFormat.Pixel != media.PixelFormatRGBA {
		u.session.log.Debug("callback upload supports packed RGBA only",
			"format", u.session.inFormat.Pixel)
		return false
	}
	// The id array handed to the callback has a fixed width; formats
	// needing more destination textures cannot use this strategy.
	if u.session.inFormat.ExpectedMemories() > maxUploadTextures {
		u.session.log.Debug("too many planes for callback upload",
			"have", u.session.inFormat.ExpectedMemories(), "max", maxUploadTextures)
		return false
	}
	if f == nil {
		return true
	}
	if f.Meta.Upload == nil {
		return false
	}
	if f.Meta.Orientation != media.OrientationNormal {
		u.session.log.Debug("callback upload requires normal texture orientation")
		return false
	}
	return true
}

func (u *callbackUpload) proposeAllocation(q *media.AllocationQuery) {
	s := u.session
	params := caps.NewStructure("upload-callback", "").
		Set("context-id", s.ctx.ID().String()).
		Set("share-group", s.ctx.ShareGroup().String())
	q.AddMeta(media.MetaUploadCallback, params)
}

func (u *callbackUpload) perform(f *media.Frame) (*media.Frame, result) {
	s := u.session
	n := s.inFormat.ExpectedMemories()
	mems := make([]*media.Memory, 0, n)

	fail := func() (*media.Frame, result) {
		for _, m := range mems {
			m.Free()
		}
		return nil, resultError
	}

	for i := 0; i < n; i++ {
		w, h := s.outFormat.PlaneTextureDims(i % s.outFormat.NumPlanes())
		id, err := s.ctx.CreateTexture(gpuctx.TextureDescriptor{
			Label:  "texupload/callback",
			Width:  uint32(w),
			Height: uint32(h),
			Format: s.outFormat.GPUFormat(i % s.outFormat.NumPlanes()),
		})
		if err != nil {
			s.log.Warn("texture creation failed", "err", err)
			return fail()
		}
		ctx, tex := s.ctx, id
		mems = append(mems, media.NewTextureMemoryWithDestroy(id, s.ctx, func() {
			ctx.DeleteTexture(tex)
		}))
	}

	for i := range u.ids {
		u.ids[i] = gpuctx.InvalidID
	}
	for i, m := range mems {
		u.ids[i] = m.Texture()
	}

	ok := false
	upload := f.Meta.Upload
	if err := s.ctx.Run(func() { ok = upload(u.ids[:]) }); err != nil || !ok {
		s.log.Warn("producer upload callback failed")
		return fail()
	}

	out := media.NewFrame(mems...)
	out.PoolTag = f.PoolTag
	return out, resultDone
}

func (u *callbackUpload) free() {}
