// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texupload

import (
	"bytes"
	"testing"

	"github.com/gogpu/texupload/media"
)

// TestPackPlaneTight tests that tightly packed planes are passed through
// without copying.
func TestPackPlaneTight(t *testing.T) {
	data := make([]byte, 64)
	got := packPlane(data, 16, 16, 4, media.PixelFormatRGBA)
	if &got[0] != &data[0] {
		t.Error("tight plane must not be copied")
	}
}

// TestPackPlaneStrided tests row repacking for padded sources.
func TestPackPlaneStrided(t *testing.T) {
	const stride, wBytes, h = 24, 16, 4
	data := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		for x := 0; x < wBytes; x++ {
			data[y*stride+x] = byte(y*wBytes + x)
		}
		for x := wBytes; x < stride; x++ {
			data[y*stride+x] = 0xff // padding must not leak through
		}
	}

	for _, pixel := range []media.PixelFormat{media.PixelFormatRGBA, media.PixelFormatI420} {
		got := packPlane(data, stride, wBytes, h, pixel)
		if len(got) != wBytes*h {
			t.Fatalf("%v: packed length = %d, want %d", pixel, len(got), wBytes*h)
		}
		want := make([]byte, wBytes*h)
		for i := range want {
			want[i] = byte(i)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%v: repacked rows differ", pixel)
		}
	}
}

// TestFrameMapPerPlane tests mapping one memory region per plane.
func TestFrameMapPerPlane(t *testing.T) {
	format := media.Format{Pixel: media.PixelFormatNV12, Width: 4, Height: 4, Views: 1}
	f := media.NewFrame(
		media.NewHostMemory(make([]byte, 16), 4),
		media.NewHostMemory(make([]byte, 8), 4),
	)
	defer f.Unref()

	fm, ok := newFrameMap(f, format)
	if !ok {
		t.Fatal("newFrameMap rejected a conforming frame")
	}
	if len(fm.planes) != 2 {
		t.Fatalf("mapped %d planes, want 2", len(fm.planes))
	}
	if f.RefCount() != 2 {
		t.Errorf("mapping must pin the frame, refcount = %d", f.RefCount())
	}
	fm.unref()
	if f.RefCount() != 1 {
		t.Errorf("unref must release the pin, refcount = %d", f.RefCount())
	}
}

// TestFrameMapCombined tests plane offsets recomputed from the format
// for a single combined region.
func TestFrameMapCombined(t *testing.T) {
	format := media.Format{Pixel: media.PixelFormatI420, Width: 4, Height: 4, Views: 1}
	data := make([]byte, format.Size())
	data[0] = 'Y'
	data[16] = 'U'
	data[20] = 'V'
	f := media.NewFrame(media.NewHostMemory(data, 0))
	defer f.Unref()

	fm, ok := newFrameMap(f, format)
	if !ok {
		t.Fatal("newFrameMap rejected a combined-plane frame")
	}
	defer fm.unref()

	if fm.planes[0][0] != 'Y' || fm.planes[1][0] != 'U' || fm.planes[2][0] != 'V' {
		t.Error("recomputed plane offsets wrong")
	}
	if len(fm.planes[1]) != 4 || len(fm.planes[2]) != 4 {
		t.Error("chroma plane sizes wrong")
	}
}

// TestFrameMapRejects tests the layouts the mapper must refuse.
func TestFrameMapRejects(t *testing.T) {
	format := media.Format{Pixel: media.PixelFormatRGBA, Width: 4, Height: 4, Views: 1}

	short := media.NewFrame(media.NewHostMemory(make([]byte, 8), 0))
	defer short.Unref()
	if _, ok := newFrameMap(short, format); ok {
		t.Error("undersized region accepted")
	}

	tex := media.NewFrame(media.NewTextureMemory(3, nil))
	defer tex.Unref()
	if _, ok := newFrameMap(tex, format); ok {
		t.Error("texture memory without CPU shadow accepted")
	}

	i420 := media.Format{Pixel: media.PixelFormatI420, Width: 4, Height: 4, Views: 1}
	two := media.NewFrame(
		media.NewHostMemory(make([]byte, 16), 4),
		media.NewHostMemory(make([]byte, 4), 2),
	)
	defer two.Unref()
	if _, ok := newFrameMap(two, i420); ok {
		t.Error("wrong memory count accepted")
	}
}
