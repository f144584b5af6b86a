// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texupload

import (
	"github.com/gogpu/texupload/caps"
	"github.com/gogpu/texupload/gpuctx"
)

// Direction identifies which side of the upload boundary a set of caps
// describes.
type Direction int

const (
	// DirectionInput means the caps describe the producer side.
	DirectionInput Direction = iota

	// DirectionOutput means the caps describe the GPU consumer side.
	DirectionOutput
)

// String returns a short name for logs.
func (d Direction) String() string {
	if d == DirectionOutput {
		return "output"
	}
	return "input"
}

// InputCaps returns the union of every strategy's input template: all
// caps the catalog can ingest, simplified.
func InputCaps() caps.Caps {
	var merged caps.Caps
	for _, st := range strategies {
		merged = merged.Merge(st.inputTemplate())
	}
	return merged.Simplify()
}

// TransformCaps maps caps across the upload boundary. Given caps
// describing the dir side, it returns the merged caps every strategy
// accepts or produces on the opposite side, intersected with filter when
// filter is non-empty. The filter is applied in filter-first order so
// the caller's preference order survives.
//
// TransformCaps is pure: calling it repeatedly with the same arguments
// yields equal caps.
func TransformCaps(ctx *gpuctx.Context, dir Direction, c caps.Caps, filter caps.Caps) caps.Caps {
	var merged caps.Caps
	for _, st := range strategies {
		merged = merged.Merge(st.transformCaps(ctx, dir, c))
	}
	merged = merged.Simplify()
	if filter.IsEmpty() {
		return merged
	}
	return filter.Intersect(merged)
}
