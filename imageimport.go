// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texupload

import (
	"github.com/gogpu/texupload/caps"
	"github.com/gogpu/texupload/gpuctx"
	"github.com/gogpu/texupload/media"
)

// imageImportStrategy binds externally created platform images as GPU
// textures without copying pixel data. Availability depends on the
// backend's import support; the import path also dictates packed RGBA.
var imageImportStrategy = &strategy{
	name: "image-import",
	inputTemplate: func() caps.Caps {
		return rgbaTemplate(media.FeatureImportedImage)
	},
	transformCaps: func(ctx *gpuctx.Context, dir Direction, c caps.Caps) caps.Caps {
		if dir == DirectionOutput {
			// What we can ingest to produce these textures: imported
			// images, always RGBA, with no texture-target constraint on
			// the producer side.
			return c.WithFeature(media.FeatureImportedImage).
				SetField(media.FieldFormat, media.PixelFormatRGBA.String()).
				RemoveField(media.FieldTextureTarget)
		}
		return c.WithFeature(media.FeatureTextureMemory)
	},
	create: func(s *Session) strategyInstance {
		return &imageImportUpload{session: s}
	},
}

type imageImportUpload struct {
	session *Session
}

func (u *imageImportUpload) accept(f *media.Frame, in, out caps.Caps) bool {
	if !u.session.ctx.SupportsImageImport() {
		return false
	}
	if !in.HasFeature(media.FeatureImportedImage) || !out.HasFeature(media.FeatureTextureMemory) {
		return false
	}
	if f == nil {
		return true
	}

	expected := u.session.inFormat.ExpectedMemories()
	if f.MemoryCount() != expected {
		return false
	}
	for i := 0; i < expected; i++ {
		if f.Memory(i).Origin() != media.OriginImportedImage {
			return false
		}
	}
	return true
}

func (u *imageImportUpload) proposeAllocation(q *media.AllocationQuery) {
	if u.session.ctx.SupportsImageImport() {
		q.AddAllocator(media.AllocatorImageImport)
	}
}

func (u *imageImportUpload) perform(f *media.Frame) (*media.Frame, result) {
	s := u.session
	n := f.MemoryCount()
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
			Label:  "texupload/imported-image",
			Width:  uint32(w),
			Height: uint32(h),
			Format: s.outFormat.GPUFormat(i % s.outFormat.NumPlanes()),
		})
		if err != nil {
			s.log.Warn("texture creation failed", "err", err)
			return fail()
		}
		if err := s.ctx.BindImage(f.Memory(i).Image(), id); err != nil {
			s.log.Warn("image bind failed", "err", err)
			s.ctx.DeleteTexture(id)
			return fail()
		}
		ctx, tex := s.ctx, id
		mems = append(mems, media.NewTextureMemoryWithDestroy(id, s.ctx, func() {
			ctx.DeleteTexture(tex)
		}))
	}

	out := media.NewFrame(mems...)
	out.PoolTag = f.PoolTag
	return out, resultDone
}

func (u *imageImportUpload) free() {}
