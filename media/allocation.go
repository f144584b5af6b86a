// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package media

import (
	"github.com/gogpu/texupload/caps"
)

// Allocator names strategies may propose.
const (
	// AllocatorTextureMemory allocates frames backed by GPU textures.
	AllocatorTextureMemory = "texture-memory"

	// AllocatorImageImport allocates importable platform images.
	AllocatorImageImport = "image-import"
)

// Buffer pool options strategies may request.
const (
	// PoolOptionSyncMeta asks the pool to attach hand-off sync state to
	// each buffer.
	PoolOptionSyncMeta = "sync-meta"

	// PoolOptionVideoMeta asks the pool to attach per-plane layout
	// metadata to each buffer.
	PoolOptionVideoMeta = "video-meta"
)

// Metadata APIs strategies may propose on an allocation query.
const (
	// MetaVideo requests per-plane layout metadata on buffers.
	MetaVideo = "VideoMeta"

	// MetaUploadCallback advertises support for producer-driven callback
	// uploads; its params identify the destination GPU context.
	MetaUploadCallback = "TextureUploadCallback"
)

// PoolOptionForTarget returns the pool option requesting textures with
// the given addressing mode.
func PoolOptionForTarget(t TextureTarget) string {
	return "texture-target-" + t.String()
}

// PoolConfig describes one proposed buffer pool.
type PoolConfig struct {
	// Caps the pool's buffers must satisfy.
	Caps caps.Caps

	// Size is the byte size of each buffer.
	Size int

	// MinBuffers and MaxBuffers bound the pool. Zero means unbounded.
	MinBuffers, MaxBuffers int

	// Options are pool behavior requests, see PoolOption constants.
	Options []string
}

// HasOption reports whether the pool config carries the given option.
func (p *PoolConfig) HasOption(opt string) bool {
	for _, o := range p.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// AddOption appends a pool option if not already present.
func (p *PoolConfig) AddOption(opt string) {
	if !p.HasOption(opt) {
		p.Options = append(p.Options, opt)
	}
}

// AllocationMeta is one metadata API proposal attached to a query.
type AllocationMeta struct {
	// API names the metadata kind.
	API string

	// Params carries API-specific parameters, may be nil.
	Params *caps.Structure
}

// AllocationQuery collects allocation preferences during negotiation.
// It is append-only: strategies decorate it, the element that issued the
// query decides. An AllocationQuery is used from a single goroutine.
type AllocationQuery struct {
	// Caps the allocated buffers must satisfy.
	Caps caps.Caps

	allocators []string
	pools      []PoolConfig
	metas      []AllocationMeta
}

// NewAllocationQuery creates a query for buffers matching the given caps.
func NewAllocationQuery(c caps.Caps) *AllocationQuery {
	return &AllocationQuery{Caps: c}
}

// AddAllocator proposes an allocator by name. Duplicates are kept; the
// consumer weighs repeated proposals itself.
func (q *AllocationQuery) AddAllocator(name string) {
	q.allocators = append(q.allocators, name)
}

// Allocators returns the proposed allocator names in proposal order.
func (q *AllocationQuery) Allocators() []string { return q.allocators }

// AddPool proposes a buffer pool configuration.
func (q *AllocationQuery) AddPool(cfg PoolConfig) {
	q.pools = append(q.pools, cfg)
}

// NumPools returns the number of proposed pools.
func (q *AllocationQuery) NumPools() int { return len(q.pools) }

// Pool returns the i-th proposed pool.
func (q *AllocationQuery) Pool(i int) *PoolConfig { return &q.pools[i] }

// AddMeta proposes a metadata API with optional parameters.
func (q *AllocationQuery) AddMeta(api string, params *caps.Structure) {
	q.metas = append(q.metas, AllocationMeta{API: api, Params: params})
}

// Metas returns the proposed metadata APIs in proposal order.
func (q *AllocationQuery) Metas() []AllocationMeta { return q.metas }

// HasMeta reports whether the query already proposes the given API.
func (q *AllocationQuery) HasMeta(api string) bool {
	for _, m := range q.metas {
		if m.API == api {
			return true
		}
	}
	return false
}
