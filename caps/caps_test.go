// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package caps

import "testing"

func rawStructure(formats any) *Structure {
	return NewStructure("video/x-raw", FeatureSystemMemory).Set("format", formats)
}

// TestIsFixed tests the fixed-format predicate.
func TestIsFixed(t *testing.T) {
	fixed := New(rawStructure("RGBA").Set("width", 320).Set("height", 240))
	if !fixed.IsFixed() {
		t.Error("single structure with scalar fields should be fixed")
	}

	ranged := New(rawStructure(List{"RGBA", "BGRA"}))
	if ranged.IsFixed() {
		t.Error("caps with a list value should not be fixed")
	}

	multi := New(rawStructure("RGBA"), rawStructure("BGRA"))
	if multi.IsFixed() {
		t.Error("caps with two structures should not be fixed")
	}

	if NewEmpty().IsFixed() {
		t.Error("empty caps should not be fixed")
	}
}

// TestIntersectScalars tests intersection of fixed values.
func TestIntersectScalars(t *testing.T) {
	a := New(rawStructure("RGBA").Set("width", 320))
	b := New(rawStructure("RGBA").Set("height", 240))

	got := a.Intersect(b)
	if got.Len() != 1 {
		t.Fatalf("Len = %d, want 1", got.Len())
	}
	s := got.At(0)
	if w, _ := s.GetInt("width"); w != 320 {
		t.Errorf("width = %d, want 320", w)
	}
	if h, _ := s.GetInt("height"); h != 240 {
		t.Errorf("height = %d, want 240", h)
	}
}

// TestIntersectDisjoint tests that incompatible caps yield empty caps.
func TestIntersectDisjoint(t *testing.T) {
	a := New(rawStructure("RGBA"))
	b := New(rawStructure("NV12"))

	if got := a.Intersect(b); !got.IsEmpty() {
		t.Errorf("intersection of disjoint formats = %v, want empty", got)
	}
}

// TestIntersectLists tests list/list and list/scalar intersection.
func TestIntersectLists(t *testing.T) {
	a := New(rawStructure(List{"RGBA", "BGRA", "NV12"}))
	b := New(rawStructure(List{"BGRA", "RGBA"}))

	got := a.Intersect(b)
	if got.Len() != 1 {
		t.Fatalf("Len = %d, want 1", got.Len())
	}
	l, ok := got.At(0).Get("format").(List)
	if !ok || len(l) != 2 {
		t.Fatalf("format = %v, want 2-element list", got.At(0).Get("format"))
	}

	c := New(rawStructure("BGRA"))
	got = a.Intersect(c)
	if f, _ := got.At(0).GetString("format"); f != "BGRA" {
		t.Errorf("format = %q, want BGRA (single survivor collapses to scalar)", f)
	}
}

// TestIntersectFeatureMismatch tests that features partition structures.
func TestIntersectFeatureMismatch(t *testing.T) {
	a := New(NewStructure("video/x-raw", "memory:TextureMemory").Set("format", "RGBA"))
	b := New(rawStructure("RGBA"))

	if got := a.Intersect(b); !got.IsEmpty() {
		t.Errorf("different features should not intersect, got %v", got)
	}
}

// TestMergeSubsumed tests that merge drops structures an existing entry
// already covers.
func TestMergeSubsumed(t *testing.T) {
	wide := New(rawStructure(List{"RGBA", "BGRA"}))
	narrow := New(rawStructure("RGBA"))

	got := wide.Merge(narrow)
	if got.Len() != 1 {
		t.Errorf("Len = %d, want 1 (narrow is subsumed)", got.Len())
	}

	got = narrow.Merge(wide)
	if got.Len() != 2 {
		t.Errorf("Len = %d, want 2 (wide is not subsumed by narrow)", got.Len())
	}
}

// TestSimplify tests duplicate removal and list collapsing.
func TestSimplify(t *testing.T) {
	c := New(
		rawStructure("RGBA"),
		rawStructure("RGBA"),
		rawStructure(List{"BGRA"}),
	)

	got := c.Simplify()
	if got.Len() != 2 {
		t.Fatalf("Len = %d, want 2", got.Len())
	}
	if f, _ := got.At(1).GetString("format"); f != "BGRA" {
		t.Errorf("single-element list should collapse to scalar, got %v", got.At(1).Get("format"))
	}
}

// TestWithFeature tests feature rewriting.
func TestWithFeature(t *testing.T) {
	c := New(rawStructure("RGBA"), rawStructure("BGRA"))
	got := c.WithFeature("memory:TextureMemory")

	for i := 0; i < got.Len(); i++ {
		if got.At(i).feature() != "memory:TextureMemory" {
			t.Errorf("structure %d feature = %q", i, got.At(i).feature())
		}
	}
	// Original is untouched.
	if !c.HasFeature(FeatureSystemMemory) {
		t.Error("WithFeature must not mutate the receiver")
	}
}

// TestSetRemoveField tests whole-caps field editing.
func TestSetRemoveField(t *testing.T) {
	c := New(rawStructure("RGBA").Set("texture-target", "rectangle"))

	got := c.RemoveField("texture-target")
	if got.At(0).Has("texture-target") {
		t.Error("texture-target should be removed")
	}
	if !c.At(0).Has("texture-target") {
		t.Error("RemoveField must not mutate the receiver")
	}

	got = c.SetField("format", "RGBA")
	if f, _ := got.At(0).GetString("format"); f != "RGBA" {
		t.Errorf("format = %q, want RGBA", f)
	}
}

// TestEqual tests structural equality.
func TestEqual(t *testing.T) {
	a := New(rawStructure("RGBA").Set("width", 320))
	b := New(rawStructure("RGBA").Set("width", 320))
	c := New(rawStructure("RGBA").Set("width", 640))

	if !a.Equal(b) {
		t.Error("identical caps should be equal")
	}
	if a.Equal(c) {
		t.Error("caps with different widths should not be equal")
	}
}

// TestCloneIsolation tests that clones do not share field storage.
func TestCloneIsolation(t *testing.T) {
	a := New(rawStructure(List{"RGBA", "BGRA"}))
	b := a.Clone()
	b.At(0).Set("format", "NV12")

	if f, _ := a.At(0).GetString("format"); f == "NV12" {
		t.Error("mutating a clone leaked into the original")
	}
}
