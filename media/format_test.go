// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package media

import (
	"errors"
	"testing"

	"github.com/gogpu/texupload/caps"
)

func fixedRawCaps(format string, w, h int) caps.Caps {
	return caps.New(caps.NewStructure(MediaTypeRawVideo, caps.FeatureSystemMemory).
		Set(FieldFormat, format).
		Set(FieldWidth, w).
		Set(FieldHeight, h))
}

// TestFormatFromCaps tests resolving fixed caps into a Format.
func TestFormatFromCaps(t *testing.T) {
	f, err := FormatFromCaps(fixedRawCaps("RGBA", 320, 240))
	if err != nil {
		t.Fatalf("FormatFromCaps failed: %v", err)
	}
	if f.Pixel != PixelFormatRGBA || f.Width != 320 || f.Height != 240 {
		t.Errorf("got %v", f)
	}
	if f.Views != 1 || f.Multiview != MultiviewMono || f.Target != Target2D {
		t.Errorf("defaults not applied: %v", f)
	}
}

// TestFormatFromCapsOptionalFields tests views, multiview and target.
func TestFormatFromCapsOptionalFields(t *testing.T) {
	c := fixedRawCaps("I420", 640, 480)
	c.At(0).Set(FieldViews, 2).
		Set(FieldMultiviewMode, "separated").
		Set(FieldTextureTarget, "rectangle")

	f, err := FormatFromCaps(c)
	if err != nil {
		t.Fatalf("FormatFromCaps failed: %v", err)
	}
	if f.Views != 2 || f.Multiview != MultiviewSeparated || f.Target != TargetRectangle {
		t.Errorf("got %v", f)
	}
}

// TestFormatFromCapsRejectsUnfixed tests the resolved-format requirement.
func TestFormatFromCapsRejectsUnfixed(t *testing.T) {
	c := caps.New(caps.NewStructure(MediaTypeRawVideo, caps.FeatureSystemMemory).
		Set(FieldFormat, caps.List{"RGBA", "BGRA"}).
		Set(FieldWidth, 320).
		Set(FieldHeight, 240))

	if _, err := FormatFromCaps(c); !errors.Is(err, ErrInvalidCaps) {
		t.Errorf("err = %v, want ErrInvalidCaps", err)
	}

	if _, err := FormatFromCaps(caps.NewEmpty()); !errors.Is(err, ErrInvalidCaps) {
		t.Errorf("empty caps err = %v, want ErrInvalidCaps", err)
	}
}

// TestExpectedMemories tests the planes-times-views rule.
func TestExpectedMemories(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		want   int
	}{
		{"rgba mono", Format{Pixel: PixelFormatRGBA, Width: 4, Height: 4, Views: 1}, 1},
		{"i420 mono", Format{Pixel: PixelFormatI420, Width: 4, Height: 4, Views: 1}, 3},
		{"nv12 stereo frame-packed", Format{Pixel: PixelFormatNV12, Width: 4, Height: 4, Views: 2}, 2},
		{"i420 stereo separated", Format{Pixel: PixelFormatI420, Width: 4, Height: 4, Views: 2, Multiview: MultiviewSeparated}, 6},
	}
	for _, tt := range tests {
		if got := tt.format.ExpectedMemories(); got != tt.want {
			t.Errorf("%s: ExpectedMemories = %d, want %d", tt.name, got, tt.want)
		}
	}
}

// TestPlaneGeometry tests plane dimensions and sizes.
func TestPlaneGeometry(t *testing.T) {
	f := Format{Pixel: PixelFormatI420, Width: 640, Height: 480, Views: 1}

	if w, h := f.PlaneDims(0); w != 640 || h != 480 {
		t.Errorf("luma plane = %dx%d", w, h)
	}
	if w, h := f.PlaneDims(1); w != 320 || h != 240 {
		t.Errorf("chroma plane = %dx%d", w, h)
	}
	if got, want := f.Size(), 640*480+2*(320*240); got != want {
		t.Errorf("Size = %d, want %d", got, want)
	}

	packed := Format{Pixel: PixelFormatBGRA, Width: 16, Height: 8, Views: 1}
	if got := packed.PlaneSize(0); got != 16*8*4 {
		t.Errorf("packed plane size = %d, want %d", got, 16*8*4)
	}
}

// TestFormatCapsRoundTrip tests Format.Caps against FormatFromCaps.
func TestFormatCapsRoundTrip(t *testing.T) {
	f := Format{Pixel: PixelFormatNV12, Width: 1920, Height: 1080, Views: 2, Multiview: MultiviewSeparated}

	got, err := FormatFromCaps(f.Caps(caps.FeatureSystemMemory))
	if err != nil {
		t.Fatalf("FormatFromCaps failed: %v", err)
	}
	if got != f {
		t.Errorf("round trip = %v, want %v", got, f)
	}
}
