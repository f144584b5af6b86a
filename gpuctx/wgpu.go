// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpuctx

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrImageImportUnsupported is returned by WGPUBackend.BindImage: the
// portable wgpu HAL has no platform image import entry point. Platform
// backends that do support import provide their own TextureBackend.
var ErrImageImportUnsupported = errors.New("gpuctx: platform image import not supported by wgpu backend")

// WGPUBackend is a TextureBackend over a wgpu HAL device and queue.
// It maintains the id-to-texture mapping; all methods run on the context
// dispatch goroutine.
type WGPUBackend struct {
	device hal.Device
	queue  hal.Queue

	next     uint64
	textures map[TextureID]hal.Texture
}

// NewWGPUBackend creates a backend over the given HAL device and queue.
func NewWGPUBackend(device hal.Device, queue hal.Queue) *WGPUBackend {
	return &WGPUBackend{
		device:   device,
		queue:    queue,
		textures: map[TextureID]hal.Texture{},
	}
}

// CreateTexture implements TextureBackend.
func (b *WGPUBackend) CreateTexture(desc TextureDescriptor) (TextureID, error) {
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return InvalidID, fmt.Errorf("gpuctx: create texture: %w", err)
	}

	b.next++
	id := TextureID(b.next)
	b.textures[id] = tex
	return id, nil
}

// DeleteTexture implements TextureBackend.
func (b *WGPUBackend) DeleteTexture(id TextureID) {
	tex, ok := b.textures[id]
	if !ok {
		return
	}
	delete(b.textures, id)
	b.device.DestroyTexture(tex)
}

// WriteTexture implements TextureBackend.
func (b *WGPUBackend) WriteTexture(id TextureID, data []byte, bytesPerRow uint32, size gputypes.Extent3D) error {
	tex, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("gpuctx: write to unknown texture %d", id)
	}
	b.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: size.Height,
		},
		&hal.Extent3D{
			Width:              size.Width,
			Height:             size.Height,
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

// BindImage implements TextureBackend.
func (b *WGPUBackend) BindImage(img ImageHandle, id TextureID) error {
	return ErrImageImportUnsupported
}

// SupportsImageImport implements TextureBackend.
func (b *WGPUBackend) SupportsImageImport() bool { return false }

var _ TextureBackend = (*WGPUBackend)(nil)
