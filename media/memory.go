// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package media

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/texupload/gpuctx"
)

// MemoryOrigin tags where the bytes of a memory region live.
type MemoryOrigin uint8

const (
	// OriginHost is plain mapped CPU memory.
	OriginHost MemoryOrigin = iota

	// OriginTexture is storage already resident in a GPU texture.
	OriginTexture

	// OriginImportedImage is an externally created platform image handle
	// that a GPU context can bind as a texture.
	OriginImportedImage
)

// String returns a short name for logs.
func (o MemoryOrigin) String() string {
	switch o {
	case OriginTexture:
		return "texture"
	case OriginImportedImage:
		return "imported-image"
	default:
		return "host"
	}
}

// Memory is one plane-sized memory region of a Frame. A Memory is created
// once, attached to a frame, and freed when the frame's reference count
// drops to zero. The accessors valid for a region depend on its origin.
type Memory struct {
	origin MemoryOrigin

	// Host memory.
	data   []byte
	stride int

	// Texture memory.
	tex   gpuctx.TextureID
	owner *gpuctx.Context

	// Imported platform image.
	image gpuctx.ImageHandle

	// transferPending marks texture storage handed to a consuming
	// context; the consumer must synchronize before sampling.
	transferPending atomic.Bool

	destroy     func()
	destroyOnce sync.Once
}

// NewHostMemory wraps mapped CPU bytes with the given row stride.
func NewHostMemory(data []byte, stride int) *Memory {
	return &Memory{origin: OriginHost, data: data, stride: stride}
}

// NewTextureMemory wraps a GPU texture owned by the given context.
func NewTextureMemory(tex gpuctx.TextureID, owner *gpuctx.Context) *Memory {
	return &Memory{origin: OriginTexture, tex: tex, owner: owner}
}

// NewTextureMemoryWithDestroy wraps a GPU texture and runs destroy
// exactly once when the memory is freed. Used for textures whose
// lifetime is tied to the frame, or that pin host storage they read
// from.
func NewTextureMemoryWithDestroy(tex gpuctx.TextureID, owner *gpuctx.Context, destroy func()) *Memory {
	return &Memory{origin: OriginTexture, tex: tex, owner: owner, destroy: destroy}
}

// NewSharedTextureMemory wraps a GPU texture that also exposes a CPU
// shadow of its content. Consumers whose context cannot share the
// owner's storage read the shadow and fall back to a raw copy.
func NewSharedTextureMemory(tex gpuctx.TextureID, owner *gpuctx.Context, data []byte, stride int) *Memory {
	return &Memory{origin: OriginTexture, tex: tex, owner: owner, data: data, stride: stride}
}

// NewImportedImageMemory wraps an externally created platform image.
func NewImportedImageMemory(img gpuctx.ImageHandle) *Memory {
	return &Memory{origin: OriginImportedImage, image: img}
}

// Origin returns the memory's origin tag.
func (m *Memory) Origin() MemoryOrigin { return m.origin }

// Bytes returns the host bytes, or nil for non-host memory.
func (m *Memory) Bytes() []byte { return m.data }

// Stride returns the host row stride in bytes.
func (m *Memory) Stride() int { return m.stride }

// Texture returns the texture id for texture-backed memory.
func (m *Memory) Texture() gpuctx.TextureID { return m.tex }

// Owner returns the context owning texture-backed memory, or nil.
func (m *Memory) Owner() *gpuctx.Context { return m.owner }

// Image returns the platform image handle for imported-image memory.
func (m *Memory) Image() gpuctx.ImageHandle { return m.image }

// MarkTransferPending records that the texture storage has been handed
// to a consuming context and still needs a sync point.
func (m *Memory) MarkTransferPending() { m.transferPending.Store(true) }

// TransferPending reports whether a hand-off sync is outstanding.
func (m *Memory) TransferPending() bool { return m.transferPending.Load() }

// Free runs the destroy notify, once. Called by Frame when the last
// reference drops; safe to call on memories without a destroy notify.
func (m *Memory) Free() {
	if m.destroy == nil {
		return
	}
	m.destroyOnce.Do(m.destroy)
}
