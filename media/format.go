// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package media models video frames as they travel toward the GPU: a
// resolved Format descriptor, reference-counted Frames made of per-plane
// Memory regions, and the allocation-negotiation query that lets
// downstream elements advertise allocator and pool preferences.
package media

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/texupload/caps"
)

// MediaTypeRawVideo is the structure name for raw video caps.
const MediaTypeRawVideo = "video/x-raw"

// Caps features distinguishing where frame bytes live.
const (
	// FeatureTextureMemory marks frames whose planes are GPU textures.
	FeatureTextureMemory caps.Feature = "memory:TextureMemory"

	// FeatureImportedImage marks frames whose planes are externally
	// created platform images awaiting import.
	FeatureImportedImage caps.Feature = "memory:ImportedImage"

	// FeatureUploadCallback marks frames that carry a producer-provided
	// callback able to populate destination textures itself.
	FeatureUploadCallback caps.Feature = "meta:TextureUploadCallback"
)

// Caps field names used by raw video structures.
const (
	FieldFormat        = "format"
	FieldWidth         = "width"
	FieldHeight        = "height"
	FieldViews         = "views"
	FieldMultiviewMode = "multiview-mode"
	FieldTextureTarget = "texture-target"
)

// ErrInvalidCaps is returned when caps cannot be resolved to a Format.
var ErrInvalidCaps = errors.New("media: caps do not describe a single resolved format")

// MaxPlanes is the largest plane count of any supported pixel format.
const MaxPlanes = 4

// PixelFormat identifies the pixel layout of a frame.
type PixelFormat uint8

const (
	// PixelFormatUnknown is the zero value.
	PixelFormatUnknown PixelFormat = iota

	// PixelFormatRGBA is packed 4-channel 8-bit RGBA, one plane.
	PixelFormatRGBA

	// PixelFormatBGRA is packed 4-channel 8-bit BGRA, one plane.
	PixelFormatBGRA

	// PixelFormatNV12 is 8-bit Y followed by an interleaved half-height
	// UV plane.
	PixelFormatNV12

	// PixelFormatI420 is 8-bit planar YUV 4:2:0, three planes.
	PixelFormatI420
)

// pixelFormatNames is ordered by preference for caps templates.
var pixelFormatNames = []string{"RGBA", "BGRA", "NV12", "I420"}

// String returns the caps name of the format.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGBA:
		return "RGBA"
	case PixelFormatBGRA:
		return "BGRA"
	case PixelFormatNV12:
		return "NV12"
	case PixelFormatI420:
		return "I420"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(f))
	}
}

// ParsePixelFormat resolves a caps format name.
func ParsePixelFormat(name string) (PixelFormat, bool) {
	switch name {
	case "RGBA":
		return PixelFormatRGBA, true
	case "BGRA":
		return PixelFormatBGRA, true
	case "NV12":
		return PixelFormatNV12, true
	case "I420":
		return PixelFormatI420, true
	default:
		return PixelFormatUnknown, false
	}
}

// PixelFormatNames returns the supported caps format names in preference
// order. The slice is shared; callers must not mutate it.
func PixelFormatNames() []string { return pixelFormatNames }

// PlaneCount returns the number of planes the format carries per view.
func (f PixelFormat) PlaneCount() int {
	switch f {
	case PixelFormatRGBA, PixelFormatBGRA:
		return 1
	case PixelFormatNV12:
		return 2
	case PixelFormatI420:
		return 3
	default:
		return 0
	}
}

// MultiviewMode describes how stereo/multiview content is laid out.
type MultiviewMode uint8

const (
	// MultiviewMono is ordinary single-view video.
	MultiviewMono MultiviewMode = iota

	// MultiviewSeparated carries each view in its own set of memory
	// regions, multiplying the per-frame memory count by the view count.
	MultiviewSeparated
)

// String returns the caps name of the mode.
func (m MultiviewMode) String() string {
	if m == MultiviewSeparated {
		return "separated"
	}
	return "mono"
}

// TextureTarget is the preferred GPU texture addressing mode for the
// negotiated output.
type TextureTarget uint8

const (
	// Target2D is the default normalized 2D texture target.
	Target2D TextureTarget = iota

	// TargetRectangle addresses texels by integer coordinates.
	TargetRectangle

	// TargetExternal samples an externally imported image.
	TargetExternal
)

// String returns the caps name of the target.
func (t TextureTarget) String() string {
	switch t {
	case TargetRectangle:
		return "rectangle"
	case TargetExternal:
		return "external"
	default:
		return "2d"
	}
}

// ParseTextureTarget resolves a caps texture-target name, defaulting to
// Target2D for unknown names.
func ParseTextureTarget(name string) TextureTarget {
	switch name {
	case "rectangle":
		return TargetRectangle
	case "external":
		return TargetExternal
	default:
		return Target2D
	}
}

// Format is a fully resolved video format. Formats are immutable values;
// renegotiation replaces them wholesale.
type Format struct {
	// Pixel is the pixel layout.
	Pixel PixelFormat

	// Width and Height are the frame dimensions in pixels.
	Width, Height int

	// Views is the number of views (1 for mono, 2 for stereo).
	Views int

	// Multiview is the multiview layout.
	Multiview MultiviewMode

	// Target is the preferred texture addressing mode for GPU output.
	Target TextureTarget
}

// FormatFromCaps resolves fixed caps into a Format. It fails with
// ErrInvalidCaps when the caps are unfixed or fields are missing.
func FormatFromCaps(c caps.Caps) (Format, error) {
	if !c.IsFixed() {
		return Format{}, fmt.Errorf("%w: %v", ErrInvalidCaps, c)
	}
	s := c.At(0)
	if s.Name != MediaTypeRawVideo {
		return Format{}, fmt.Errorf("%w: media type %q", ErrInvalidCaps, s.Name)
	}

	name, ok := s.GetString(FieldFormat)
	if !ok {
		return Format{}, fmt.Errorf("%w: missing format field", ErrInvalidCaps)
	}
	pixel, ok := ParsePixelFormat(name)
	if !ok {
		return Format{}, fmt.Errorf("%w: unknown format %q", ErrInvalidCaps, name)
	}
	width, ok := s.GetInt(FieldWidth)
	if !ok || width <= 0 {
		return Format{}, fmt.Errorf("%w: missing or invalid width", ErrInvalidCaps)
	}
	height, ok := s.GetInt(FieldHeight)
	if !ok || height <= 0 {
		return Format{}, fmt.Errorf("%w: missing or invalid height", ErrInvalidCaps)
	}

	f := Format{
		Pixel:  pixel,
		Width:  width,
		Height: height,
		Views:  1,
	}
	if v, ok := s.GetInt(FieldViews); ok && v > 0 {
		f.Views = v
	}
	if m, ok := s.GetString(FieldMultiviewMode); ok && m == "separated" {
		f.Multiview = MultiviewSeparated
	}
	if tgt, ok := s.GetString(FieldTextureTarget); ok {
		f.Target = ParseTextureTarget(tgt)
	}
	return f, nil
}

// Caps builds fixed caps describing this format with the given memory
// feature.
func (f Format) Caps(feature caps.Feature) caps.Caps {
	s := caps.NewStructure(MediaTypeRawVideo, feature).
		Set(FieldFormat, f.Pixel.String()).
		Set(FieldWidth, f.Width).
		Set(FieldHeight, f.Height)
	if f.Views > 1 {
		s.Set(FieldViews, f.Views)
	}
	if f.Multiview == MultiviewSeparated {
		s.Set(FieldMultiviewMode, f.Multiview.String())
	}
	return caps.New(s)
}

// IsValid reports whether the format is resolved.
func (f Format) IsValid() bool {
	return f.Pixel != PixelFormatUnknown && f.Width > 0 && f.Height > 0
}

// NumPlanes returns the plane count per view.
func (f Format) NumPlanes() int { return f.Pixel.PlaneCount() }

// ExpectedMemories returns the number of memory regions a conforming
// frame must carry: planes, multiplied by views in separated multiview
// mode.
func (f Format) ExpectedMemories() int {
	n := f.NumPlanes()
	if f.Multiview == MultiviewSeparated && f.Views > 1 {
		n *= f.Views
	}
	return n
}

// PlaneDims returns the byte width and row count of a plane. For planar
// subsampled formats the byte width differs from the pixel width.
func (f Format) PlaneDims(plane int) (width, height int) {
	switch f.Pixel {
	case PixelFormatRGBA, PixelFormatBGRA:
		return f.Width * 4, f.Height
	case PixelFormatNV12:
		if plane == 0 {
			return f.Width, f.Height
		}
		return f.Width, (f.Height + 1) / 2
	case PixelFormatI420:
		if plane == 0 {
			return f.Width, f.Height
		}
		return (f.Width + 1) / 2, (f.Height + 1) / 2
	default:
		return 0, 0
	}
}

// PlaneSize returns the tightly packed byte size of a plane.
func (f Format) PlaneSize(plane int) int {
	w, h := f.PlaneDims(plane)
	return w * h
}

// Size returns the tightly packed byte size of one view of the frame.
func (f Format) Size() int {
	total := 0
	for i := 0; i < f.NumPlanes(); i++ {
		total += f.PlaneSize(i)
	}
	return total
}

// GPUFormat returns the texture format used to hold a plane. Packed
// formats map directly; planar planes upload as single-channel textures
// whose width is the plane byte width.
func (f Format) GPUFormat(plane int) gputypes.TextureFormat {
	switch f.Pixel {
	case PixelFormatRGBA:
		return gputypes.TextureFormatRGBA8Unorm
	case PixelFormatBGRA:
		return gputypes.TextureFormatBGRA8Unorm
	default:
		return gputypes.TextureFormatR8Unorm
	}
}

// PlaneTextureDims returns the texel dimensions of the texture holding a
// plane under GPUFormat. For single-channel planar uploads the texel
// width equals the plane byte width.
func (f Format) PlaneTextureDims(plane int) (width, height int) {
	switch f.Pixel {
	case PixelFormatRGBA, PixelFormatBGRA:
		return f.Width, f.Height
	default:
		return f.PlaneDims(plane)
	}
}

// String renders the format for logs.
func (f Format) String() string {
	return fmt.Sprintf("%s %dx%d views=%d %s target=%s",
		f.Pixel, f.Width, f.Height, f.Views, f.Multiview, f.Target)
}
