// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpuctx

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// TextureID is an opaque handle to a GPU texture. Each TextureBackend
// maintains the mapping between ids and actual driver resources. IDs are
// uint64 to accommodate various backend handle sizes.
type TextureID uint64

// InvalidID is the zero value, representing an invalid/null texture.
const InvalidID TextureID = 0

// ImageHandle is an opaque reference to an externally created platform
// image (e.g. an imported DMA buffer or EGLImage-style handle). The
// producer of the handle defines its meaning; this package only carries
// it to the backend's BindImage call.
type ImageHandle uintptr

// TextureDescriptor describes parameters for creating a texture.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage
}

// DefaultTextureUsage is the usage applied when a descriptor leaves Usage
// at zero.
const DefaultTextureUsage = gputypes.TextureUsageCopySrc |
	gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding

// TextureBackend performs the driver-level texture operations on behalf
// of a Context. Implementations are only ever called from the context's
// dispatch goroutine, so they need no internal locking.
type TextureBackend interface {
	// CreateTexture allocates a texture and returns its id.
	CreateTexture(desc TextureDescriptor) (TextureID, error)

	// DeleteTexture releases a texture. Unknown ids are ignored.
	DeleteTexture(id TextureID)

	// WriteTexture copies tightly packed pixel rows into the texture.
	WriteTexture(id TextureID, data []byte, bytesPerRow uint32, size gputypes.Extent3D) error

	// BindImage attaches an externally created platform image to the
	// texture, making the texture sample from the imported storage.
	BindImage(img ImageHandle, id TextureID) error

	// SupportsImageImport reports whether BindImage is available on this
	// platform.
	SupportsImageImport() bool
}

// CreateTexture allocates a texture through the installed backend,
// marshaling onto the context thread. Safe to call from any goroutine,
// including from inside a Run closure.
func (c *Context) CreateTexture(desc TextureDescriptor) (TextureID, error) {
	if c.backend == nil {
		return InvalidID, ErrNoBackend
	}
	if desc.Usage == 0 {
		desc.Usage = DefaultTextureUsage
	}
	var (
		id  TextureID
		err error
	)
	if runErr := c.Run(func() { id, err = c.backend.CreateTexture(desc) }); runErr != nil {
		return InvalidID, runErr
	}
	return id, err
}

// DeleteTexture releases a texture on the context thread.
func (c *Context) DeleteTexture(id TextureID) {
	if c.backend == nil {
		return
	}
	_ = c.Run(func() { c.backend.DeleteTexture(id) })
}

// WriteTexture copies pixel data into a texture on the context thread.
func (c *Context) WriteTexture(id TextureID, data []byte, bytesPerRow uint32, size gputypes.Extent3D) error {
	if c.backend == nil {
		return ErrNoBackend
	}
	var err error
	if runErr := c.Run(func() { err = c.backend.WriteTexture(id, data, bytesPerRow, size) }); runErr != nil {
		return runErr
	}
	return err
}

// BindImage attaches a platform image to a texture on the context thread.
func (c *Context) BindImage(img ImageHandle, id TextureID) error {
	if c.backend == nil {
		return ErrNoBackend
	}
	var err error
	if runErr := c.Run(func() { err = c.backend.BindImage(img, id) }); runErr != nil {
		return runErr
	}
	return err
}

// SupportsImageImport reports whether the backend can bind imported
// platform images.
func (c *Context) SupportsImageImport() bool {
	return c.backend != nil && c.backend.SupportsImageImport()
}

// stubTexture tracks one texture allocated by StubBackend.
type stubTexture struct {
	desc  TextureDescriptor
	data  []byte
	bound ImageHandle
}

// StubBackend is an in-memory TextureBackend for tests and for running
// without a GPU. It tracks allocations and records writes and binds so
// callers can assert on them.
//
// Counters are plain fields: StubBackend methods run on the context
// dispatch goroutine only, and tests read the counters after the
// marshaled call has returned.
type StubBackend struct {
	// AllowImport controls SupportsImageImport.
	AllowImport bool

	// FailCreate makes CreateTexture fail, for fault-injection tests.
	FailCreate bool

	// Creates, Deletes, Writes and Binds count the respective calls.
	Creates, Deletes, Writes, Binds int

	next     uint64
	textures map[TextureID]*stubTexture
}

// NewStubBackend creates an empty stub backend with image import enabled.
func NewStubBackend() *StubBackend {
	return &StubBackend{
		AllowImport: true,
		textures:    map[TextureID]*stubTexture{},
	}
}

// CreateTexture implements TextureBackend.
func (b *StubBackend) CreateTexture(desc TextureDescriptor) (TextureID, error) {
	if b.FailCreate {
		return InvalidID, fmt.Errorf("gpuctx: stub create failure")
	}
	if desc.Width == 0 || desc.Height == 0 {
		return InvalidID, fmt.Errorf("gpuctx: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	b.next++
	id := TextureID(b.next)
	b.textures[id] = &stubTexture{desc: desc}
	b.Creates++
	return id, nil
}

// DeleteTexture implements TextureBackend.
func (b *StubBackend) DeleteTexture(id TextureID) {
	if _, ok := b.textures[id]; ok {
		delete(b.textures, id)
		b.Deletes++
	}
}

// WriteTexture implements TextureBackend.
func (b *StubBackend) WriteTexture(id TextureID, data []byte, bytesPerRow uint32, size gputypes.Extent3D) error {
	tex, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("gpuctx: write to unknown texture %v", id)
	}
	tex.data = append(tex.data[:0], data...)
	b.Writes++
	return nil
}

// BindImage implements TextureBackend.
func (b *StubBackend) BindImage(img ImageHandle, id TextureID) error {
	if !b.AllowImport {
		return fmt.Errorf("gpuctx: image import not supported")
	}
	tex, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("gpuctx: bind to unknown texture %v", id)
	}
	tex.bound = img
	b.Binds++
	return nil
}

// SupportsImageImport implements TextureBackend.
func (b *StubBackend) SupportsImageImport() bool { return b.AllowImport }

// Live returns the number of textures currently allocated.
func (b *StubBackend) Live() int { return len(b.textures) }

var _ TextureBackend = (*StubBackend)(nil)
