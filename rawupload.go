// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texupload

import (
	"image"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/texupload/caps"
	"github.com/gogpu/texupload/gpuctx"
	"github.com/gogpu/texupload/media"
)

// rawUploadStrategy copies host memory into freshly created textures.
// It is the universal fallback: every platform supports it and it must
// stay last in the catalog.
var rawUploadStrategy = &strategy{
	name: "raw-copy",
	inputTemplate: func() caps.Caps {
		return formatsTemplate(caps.FeatureSystemMemory)
	},
	transformCaps: func(ctx *gpuctx.Context, dir Direction, c caps.Caps) caps.Caps {
		if dir == DirectionOutput {
			return c.WithFeature(caps.FeatureSystemMemory).
				RemoveField(media.FieldTextureTarget)
		}
		return c.WithFeature(media.FeatureTextureMemory)
	},
	create: func(s *Session) strategyInstance {
		return &rawUpload{session: s}
	},
}

// frameMap is a reference-counted view of a host frame's plane bytes.
// The mapping pins the source frame until every texture created from it
// has been released, so producers cannot recycle the buffer while an
// upload is still draining.
type frameMap struct {
	refs    atomic.Int32
	frame   *media.Frame
	planes  [][]byte
	strides []int
}

// newFrameMap maps a frame into per-plane byte slices. Two layouts are
// accepted: one memory region per plane, or a single region carrying
// all planes at tightly packed offsets recomputed from the format.
// Every region must expose host bytes; texture memories qualify when
// they carry a CPU shadow.
func newFrameMap(f *media.Frame, format media.Format) (*frameMap, bool) {
	expected := format.ExpectedMemories()
	np := format.NumPlanes()
	if expected == 0 {
		return nil, false
	}
	planes := make([][]byte, expected)
	strides := make([]int, expected)

	switch f.MemoryCount() {
	case expected:
		for i := 0; i < expected; i++ {
			m := f.Memory(i)
			if len(m.Bytes()) == 0 {
				return nil, false
			}
			w, h := format.PlaneDims(i % np)
			stride := m.Stride()
			if stride == 0 {
				stride = w
			}
			if stride < w || len(m.Bytes()) < stride*(h-1)+w {
				return nil, false
			}
			planes[i] = m.Bytes()
			strides[i] = stride
		}
	case 1:
		m := f.Memory(0)
		if len(m.Bytes()) == 0 {
			return nil, false
		}
		data := m.Bytes()
		off := 0
		for i := 0; i < expected; i++ {
			w, h := format.PlaneDims(i % np)
			size := w * h
			if off+size > len(data) {
				return nil, false
			}
			planes[i] = data[off : off+size]
			strides[i] = w
			off += size
		}
	default:
		return nil, false
	}

	fm := &frameMap{frame: f.Ref(), planes: planes, strides: strides}
	fm.refs.Store(1)
	return fm, true
}

func (fm *frameMap) ref() { fm.refs.Add(1) }

func (fm *frameMap) unref() {
	if fm.refs.Add(-1) == 0 {
		fm.frame.Unref()
		fm.frame = nil
	}
}

type rawUpload struct {
	session *Session

	// mapped is the frame view prepared by accept for the perform that
	// follows. Re-accepting replaces it.
	mapped *frameMap
}

func (u *rawUpload) accept(f *media.Frame, in, out caps.Caps) bool {
	if !out.HasFeature(media.FeatureTextureMemory) {
		return false
	}
	// Texture caps stay acceptable: frames from an unshareable context
	// fall through to this strategy and are copied from the CPU shadow.
	if !in.HasFeature(caps.FeatureSystemMemory) && !in.HasFeature(media.FeatureTextureMemory) {
		return false
	}
	if u.mapped != nil {
		u.mapped.unref()
		u.mapped = nil
	}
	if f == nil {
		return true
	}
	fm, ok := newFrameMap(f, u.session.inFormat)
	if !ok {
		return false
	}
	u.mapped = fm
	return true
}

func (u *rawUpload) proposeAllocation(q *media.AllocationQuery) {
	// Per-plane layout metadata lets producers hand over padded strides
	// without an intermediate copy on their side.
	if !q.HasMeta(media.MetaVideo) {
		q.AddMeta(media.MetaVideo, nil)
	}
}

func (u *rawUpload) perform(f *media.Frame) (*media.Frame, result) {
	s := u.session
	fm := u.mapped
	if fm == nil {
		return nil, resultError
	}
	u.mapped = nil

	np := s.inFormat.NumPlanes()
	mems := make([]*media.Memory, 0, len(fm.planes))
	fail := func() (*media.Frame, result) {
		for _, m := range mems {
			m.Free()
		}
		fm.unref()
		return nil, resultError
	}

	for i := range fm.planes {
		plane := i % np
		wBytes, rows := s.inFormat.PlaneDims(plane)
		w, h := s.inFormat.PlaneTextureDims(plane)

		id, err := s.ctx.CreateTexture(gpuctx.TextureDescriptor{
			Label:  "texupload/raw-copy",
			Width:  uint32(w),
			Height: uint32(h),
			Format: s.inFormat.GPUFormat(plane),
		})
		if err != nil {
			s.log.Warn("texture creation failed", "err", err)
			return fail()
		}

		// The texture pins the mapping until it is destroyed.
		fm.ref()
		ctx, tex, mapping := s.ctx, id, fm
		mems = append(mems, media.NewTextureMemoryWithDestroy(id, s.ctx, func() {
			ctx.DeleteTexture(tex)
			mapping.unref()
		}))

		data := packPlane(fm.planes[i], fm.strides[i], wBytes, rows, s.inFormat.Pixel)
		err = s.ctx.WriteTexture(id, data, uint32(wBytes), gputypes.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		})
		if err != nil {
			s.log.Warn("texture write failed", "err", err)
			return fail()
		}
	}

	out := media.NewFrame(mems...)
	out.PoolTag = f.PoolTag
	fm.unref()
	return out, resultDone
}

func (u *rawUpload) free() {
	if u.mapped != nil {
		u.mapped.unref()
		u.mapped = nil
	}
}

// packPlane returns h rows of wBytes bytes each, tightly packed.
// Strided sources are repacked through a scratch buffer; tight sources
// are returned as-is.
func packPlane(data []byte, stride, wBytes, h int, pixel media.PixelFormat) []byte {
	if stride == wBytes {
		return data[:wBytes*h]
	}
	tight := make([]byte, wBytes*h)
	switch pixel {
	case media.PixelFormatRGBA, media.PixelFormatBGRA:
		w := wBytes / 4
		src := &image.RGBA{Pix: data, Stride: stride, Rect: image.Rect(0, 0, w, h)}
		dst := &image.RGBA{Pix: tight, Stride: wBytes, Rect: image.Rect(0, 0, w, h)}
		draw.Copy(dst, image.Point{}, src, src.Rect, draw.Src, nil)
	default:
		for y := 0; y < h; y++ {
			copy(tight[y*wBytes:(y+1)*wBytes], data[y*stride:y*stride+wBytes])
		}
	}
	return tight
}
