// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texupload

import (
	"testing"

	"github.com/gogpu/texupload/caps"
	"github.com/gogpu/texupload/gpuctx"
	"github.com/gogpu/texupload/media"
)

// TestInputCaps tests the merged catalog templates.
func TestInputCaps(t *testing.T) {
	c := InputCaps()
	if c.IsEmpty() {
		t.Fatal("InputCaps returned empty caps")
	}

	want := []caps.Feature{
		caps.FeatureSystemMemory,
		media.FeatureTextureMemory,
		media.FeatureImportedImage,
		media.FeatureUploadCallback,
	}
	for _, f := range want {
		found := false
		for i := 0; i < c.Len(); i++ {
			if c.At(i).Feature == f {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("InputCaps missing feature %q", f)
		}
	}
}

// TestTransformCapsPure tests that repeated transforms agree.
func TestTransformCapsPure(t *testing.T) {
	ctx := gpuctx.New(nil)
	defer ctx.Close()

	in := caps.New(caps.NewStructure(media.MediaTypeRawVideo, caps.FeatureSystemMemory).
		Set(media.FieldFormat, caps.List{"RGBA", "NV12"}).
		Set(media.FieldWidth, 320).
		Set(media.FieldHeight, 240))

	for _, dir := range []Direction{DirectionInput, DirectionOutput} {
		a := TransformCaps(ctx, dir, in, caps.NewEmpty())
		b := TransformCaps(ctx, dir, a, caps.NewEmpty())
		c := TransformCaps(ctx, dir, b, caps.NewEmpty())
		if !b.Equal(c) {
			t.Errorf("%v transform did not stabilize:\n b=%v\n c=%v", dir, b, c)
		}
	}
}

// TestTransformCapsInput tests producer-to-consumer mapping.
func TestTransformCapsInput(t *testing.T) {
	ctx := gpuctx.New(nil)
	defer ctx.Close()

	in := caps.New(caps.NewStructure(media.MediaTypeRawVideo, caps.FeatureSystemMemory).
		Set(media.FieldFormat, "RGBA").
		Set(media.FieldWidth, 4).
		Set(media.FieldHeight, 4))

	out := TransformCaps(ctx, DirectionInput, in, caps.NewEmpty())
	if !out.HasFeature(media.FeatureTextureMemory) {
		t.Errorf("input transform must offer texture memory, got %v", out)
	}
}

// TestTransformCapsOutput tests consumer-to-producer mapping: every
// ingestible representation must appear.
func TestTransformCapsOutput(t *testing.T) {
	ctx := gpuctx.New(nil)
	defer ctx.Close()

	out := caps.New(caps.NewStructure(media.MediaTypeRawVideo, media.FeatureTextureMemory).
		Set(media.FieldFormat, "RGBA").
		Set(media.FieldWidth, 4).
		Set(media.FieldHeight, 4).
		Set(media.FieldTextureTarget, "rectangle"))

	in := TransformCaps(ctx, DirectionOutput, out, caps.NewEmpty())

	for _, f := range []caps.Feature{
		caps.FeatureSystemMemory,
		media.FeatureImportedImage,
		media.FeatureUploadCallback,
	} {
		found := false
		for i := 0; i < in.Len(); i++ {
			if in.At(i).Feature == f {
				found = true
				if f != caps.FeatureSystemMemory && in.At(i).Has(media.FieldTextureTarget) {
					t.Errorf("%q side must not constrain texture-target", f)
				}
			}
		}
		if !found {
			t.Errorf("output transform missing ingestible feature %q", f)
		}
	}
}

// TestTransformCapsFilter tests filter-first intersection ordering.
func TestTransformCapsFilter(t *testing.T) {
	ctx := gpuctx.New(nil)
	defer ctx.Close()

	in := caps.New(caps.NewStructure(media.MediaTypeRawVideo, caps.FeatureSystemMemory).
		Set(media.FieldFormat, "RGBA").
		Set(media.FieldWidth, 4).
		Set(media.FieldHeight, 4))

	filter := caps.New(caps.NewStructure(media.MediaTypeRawVideo, media.FeatureTextureMemory).
		Set(media.FieldFormat, "RGBA"))

	got := TransformCaps(ctx, DirectionInput, in, filter)
	if got.IsEmpty() {
		t.Fatal("filtered transform came out empty")
	}
	for i := 0; i < got.Len(); i++ {
		if got.At(i).Feature != media.FeatureTextureMemory {
			t.Errorf("filter not honored, structure %d has feature %q", i, got.At(i).Feature)
		}
	}
}
