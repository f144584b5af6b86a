// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package caps implements structural capability descriptors used to
// negotiate memory layouts between frame producers and consumers.
//
// A Caps value is an ordered list of Structures. Each Structure names a
// media type (e.g. "video/x-raw"), carries a memory Feature tag describing
// where the frame bytes live, and an open set of fields. A field value is
// either a fixed scalar (string, int, bool) or a List of alternatives.
// Caps with exactly one structure and no List values are "fixed" and
// describe a single concrete format.
//
// Caps values are cheap to copy by Clone; the algebra (Intersect, Merge,
// Simplify) never mutates its operands.
package caps

import (
	"fmt"
	"sort"
	"strings"
)

// Feature tags the memory type a structure applies to.
type Feature string

// FeatureSystemMemory is the default feature: plain host memory.
const FeatureSystemMemory Feature = "memory:SystemMemory"

// List is a set of alternative values for a non-fixed field.
type List []any

// Structure is one media-type entry inside a Caps value.
type Structure struct {
	// Name is the media type, e.g. "video/x-raw".
	Name string

	// Feature is the memory feature tag. The zero value means
	// FeatureSystemMemory.
	Feature Feature

	fields map[string]any
}

// NewStructure creates a structure with the given media type and feature.
func NewStructure(name string, feature Feature) *Structure {
	return &Structure{Name: name, Feature: feature, fields: map[string]any{}}
}

// Set assigns a field value. Accepted values are string, int, bool or List.
func (s *Structure) Set(field string, value any) *Structure {
	if s.fields == nil {
		s.fields = map[string]any{}
	}
	s.fields[field] = value
	return s
}

// Get returns a field value, or nil if the field is absent.
func (s *Structure) Get(field string) any {
	return s.fields[field]
}

// GetString returns the field as a string. The second result reports
// whether the field exists and is a fixed string.
func (s *Structure) GetString(field string) (string, bool) {
	v, ok := s.fields[field].(string)
	return v, ok
}

// GetInt returns the field as an int. The second result reports whether
// the field exists and is a fixed int.
func (s *Structure) GetInt(field string) (int, bool) {
	v, ok := s.fields[field].(int)
	return v, ok
}

// Has reports whether the field is present.
func (s *Structure) Has(field string) bool {
	_, ok := s.fields[field]
	return ok
}

// Remove deletes the given fields if present.
func (s *Structure) Remove(fields ...string) *Structure {
	for _, f := range fields {
		delete(s.fields, f)
	}
	return s
}

// Fields returns the field names in sorted order.
func (s *Structure) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for n := range s.fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the structure.
func (s *Structure) Clone() *Structure {
	c := NewStructure(s.Name, s.Feature)
	for k, v := range s.fields {
		if l, ok := v.(List); ok {
			c.fields[k] = append(List(nil), l...)
			continue
		}
		c.fields[k] = v
	}
	return c
}

// Equal reports whether two structures have the same name, feature and
// fields. List order is significant.
func (s *Structure) Equal(o *Structure) bool {
	if s.Name != o.Name || s.feature() != o.feature() || len(s.fields) != len(o.fields) {
		return false
	}
	for k, v := range s.fields {
		ov, ok := o.fields[k]
		if !ok || !valueEqual(v, ov) {
			return false
		}
	}
	return true
}

// fixed reports whether every field holds a single scalar.
func (s *Structure) fixed() bool {
	for _, v := range s.fields {
		if _, ok := v.(List); ok {
			return false
		}
	}
	return true
}

func (s *Structure) feature() Feature {
	if s.Feature == "" {
		return FeatureSystemMemory
	}
	return s.Feature
}

// String renders the structure in a caps-style notation, mainly for logs.
func (s *Structure) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString("(")
	b.WriteString(string(s.feature()))
	b.WriteString(")")
	for _, f := range s.Fields() {
		fmt.Fprintf(&b, ", %s=%v", f, s.fields[f])
	}
	return b.String()
}

// Caps is an ordered set of structures describing acceptable formats.
// The zero value is empty caps, which match nothing.
type Caps struct {
	structs []*Structure
}

// New creates caps from the given structures. The structures are used
// directly; callers must not mutate them afterwards.
func New(structs ...*Structure) Caps {
	return Caps{structs: structs}
}

// NewEmpty returns caps with no structures.
func NewEmpty() Caps { return Caps{} }

// IsEmpty reports whether the caps contain no structures.
func (c Caps) IsEmpty() bool { return len(c.structs) == 0 }

// Len returns the number of structures.
func (c Caps) Len() int { return len(c.structs) }

// At returns the i-th structure. The caller must not mutate it.
func (c Caps) At(i int) *Structure { return c.structs[i] }

// Clone returns a deep copy.
func (c Caps) Clone() Caps {
	out := make([]*Structure, len(c.structs))
	for i, s := range c.structs {
		out[i] = s.Clone()
	}
	return Caps{structs: out}
}

// IsFixed reports whether the caps describe exactly one concrete format:
// a single structure with only scalar field values.
func (c Caps) IsFixed() bool {
	return len(c.structs) == 1 && c.structs[0].fixed()
}

// Equal reports whether two caps contain equal structures in the same
// order.
func (c Caps) Equal(o Caps) bool {
	if len(c.structs) != len(o.structs) {
		return false
	}
	for i, s := range c.structs {
		if !s.Equal(o.structs[i]) {
			return false
		}
	}
	return true
}

// Merge returns the union of c and o: all structures of c followed by the
// structures of o that are not subsumed by an existing one.
func (c Caps) Merge(o Caps) Caps {
	out := c.Clone()
	for _, s := range o.structs {
		subsumed := false
		for _, have := range out.structs {
			if subsumes(have, s) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			out.structs = append(out.structs, s.Clone())
		}
	}
	return out
}

// Intersect returns caps matched by both c and o. Structure order follows
// c, so when c is a filter its preference order wins.
func (c Caps) Intersect(o Caps) Caps {
	var out Caps
	for _, a := range c.structs {
		for _, b := range o.structs {
			if s, ok := intersectStructure(a, b); ok {
				out.structs = append(out.structs, s)
			}
		}
	}
	return out.Simplify()
}

// Simplify removes structures that are subsumed by an earlier structure
// and collapses single-element lists into scalars.
func (c Caps) Simplify() Caps {
	out := Caps{}
	for _, s := range c.structs {
		sc := s.Clone()
		for k, v := range sc.fields {
			if l, ok := v.(List); ok && len(l) == 1 {
				sc.fields[k] = l[0]
			}
		}
		subsumed := false
		for _, have := range out.structs {
			if subsumes(have, sc) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			out.structs = append(out.structs, sc)
		}
	}
	return out
}

// WithFeature returns a copy of the caps with every structure rewritten
// to carry the given memory feature.
func (c Caps) WithFeature(f Feature) Caps {
	out := c.Clone()
	for _, s := range out.structs {
		s.Feature = f
	}
	return out
}

// HasFeature reports whether the first structure carries the given
// feature. Negotiation conventionally inspects the preferred (first)
// structure only.
func (c Caps) HasFeature(f Feature) bool {
	if len(c.structs) == 0 {
		return false
	}
	return c.structs[0].feature() == f
}

// RemoveField returns a copy with the field removed from every structure.
func (c Caps) RemoveField(field string) Caps {
	out := c.Clone()
	for _, s := range out.structs {
		s.Remove(field)
	}
	return out
}

// SetField returns a copy with the field set on every structure.
func (c Caps) SetField(field string, value any) Caps {
	out := c.Clone()
	for _, s := range out.structs {
		s.Set(field, value)
	}
	return out
}

// String renders the caps for logs.
func (c Caps) String() string {
	if len(c.structs) == 0 {
		return "EMPTY"
	}
	parts := make([]string, len(c.structs))
	for i, s := range c.structs {
		parts[i] = s.String()
	}
	return strings.Join(parts, "; ")
}

// subsumes reports whether structure a accepts every format structure b
// accepts. Fields missing from a are wildcards.
func subsumes(a, b *Structure) bool {
	if a.Name != b.Name || a.feature() != b.feature() {
		return false
	}
	for k, av := range a.fields {
		bv, ok := b.fields[k]
		if !ok {
			return false
		}
		if !valueSubset(bv, av) {
			return false
		}
	}
	return true
}

// intersectStructure computes the common subset of two structures, or
// reports false when they are disjoint.
func intersectStructure(a, b *Structure) (*Structure, bool) {
	if a.Name != b.Name || a.feature() != b.feature() {
		return nil, false
	}
	out := NewStructure(a.Name, a.feature())
	for k, av := range a.fields {
		bv, ok := b.fields[k]
		if !ok {
			out.fields[k] = cloneValue(av)
			continue
		}
		iv, ok := intersectValue(av, bv)
		if !ok {
			return nil, false
		}
		out.fields[k] = iv
	}
	for k, bv := range b.fields {
		if _, ok := a.fields[k]; !ok {
			out.fields[k] = cloneValue(bv)
		}
	}
	return out, true
}

func cloneValue(v any) any {
	if l, ok := v.(List); ok {
		return append(List(nil), l...)
	}
	return v
}

func alternatives(v any) List {
	if l, ok := v.(List); ok {
		return l
	}
	return List{v}
}

func valueEqual(a, b any) bool {
	al, aok := a.(List)
	bl, bok := b.(List)
	if aok != bok {
		return false
	}
	if !aok {
		return a == b
	}
	if len(al) != len(bl) {
		return false
	}
	for i := range al {
		if al[i] != bl[i] {
			return false
		}
	}
	return true
}

// valueSubset reports whether every alternative of a is an alternative
// of b.
func valueSubset(a, b any) bool {
	bs := alternatives(b)
	for _, av := range alternatives(a) {
		found := false
		for _, bv := range bs {
			if av == bv {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// intersectValue returns the alternatives common to a and b, collapsed to
// a scalar when a single alternative remains.
func intersectValue(a, b any) (any, bool) {
	var common List
	bs := alternatives(b)
	for _, av := range alternatives(a) {
		for _, bv := range bs {
			if av == bv {
				common = append(common, av)
				break
			}
		}
	}
	switch len(common) {
	case 0:
		return nil, false
	case 1:
		return common[0], true
	default:
		return common, true
	}
}
