// seehuhn.de/go/feacomp - a library for reading and writing font files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package fea

// MarkClass is a named ClassRec in which every glyph carries its own
// anchor, used by mark-to-base, mark-to-ligature and mark-to-mark rules.
type MarkClass struct {
	Name  string
	Class ClassRec
}

// Registry holds the four disjoint named-object namespaces a feature file
// populates: glyph classes, anchor definitions, value-record definitions
// and mark classes. Lookup is by string key; insertion order is
// irrelevant. Redefining a name fails with a [DuplicateDefinition]
// [CompileError] in every
// namespace except mark classes, whose definitions accumulate glyphs
// across multiple "markClass" statements under the same name.
type Registry struct {
	glyphClasses map[string]*ClassRec
	anchors      map[string]*AnchorMarkInfo
	valueRecords map[string]*MetricsInfo
	markClasses  map[string]*MarkClass
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		glyphClasses: make(map[string]*ClassRec),
		anchors:      make(map[string]*AnchorMarkInfo),
		valueRecords: make(map[string]*MetricsInfo),
		markClasses:  make(map[string]*MarkClass),
	}
}

// DefineGlyphClass registers a named glyph class. It returns a
// [DuplicateDefinition] [CompileError] if the name is already taken.
func (r *Registry) DefineGlyphClass(name string, class *ClassRec) error {
	if _, ok := r.glyphClasses[name]; ok {
		return &CompileError{Kind: DuplicateDefinition, Message: "glyph class @" + name + " already defined"}
	}
	r.glyphClasses[name] = class
	return nil
}

// GlyphClass looks up a named glyph class.
func (r *Registry) GlyphClass(name string) (*ClassRec, bool) {
	c, ok := r.glyphClasses[name]
	return c, ok
}

// DefineAnchor registers a named anchor definition.
func (r *Registry) DefineAnchor(name string, a *AnchorMarkInfo) error {
	if _, ok := r.anchors[name]; ok {
		return &CompileError{Kind: DuplicateDefinition, Message: "anchor " + name + " already defined"}
	}
	r.anchors[name] = a
	return nil
}

// Anchor looks up a named anchor definition.
func (r *Registry) Anchor(name string) (*AnchorMarkInfo, bool) {
	a, ok := r.anchors[name]
	return a, ok
}

// DefineValueRecord registers a named value-record definition.
func (r *Registry) DefineValueRecord(name string, m *MetricsInfo) error {
	if _, ok := r.valueRecords[name]; ok {
		return &CompileError{Kind: DuplicateDefinition, Message: "value record " + name + " already defined"}
	}
	r.valueRecords[name] = m
	return nil
}

// ValueRecord looks up a named value-record definition.
func (r *Registry) ValueRecord(name string) (*MetricsInfo, bool) {
	m, ok := r.valueRecords[name]
	return m, ok
}

// MarkClassByName looks up a mark class, creating an empty one on first use.
func (r *Registry) MarkClassByName(name string) *MarkClass {
	mc, ok := r.markClasses[name]
	if !ok {
		mc = &MarkClass{Name: name}
		r.markClasses[name] = mc
	}
	return mc
}

// AddToMarkClass appends one glyph-and-anchor definition to the named
// mark class. It is an error to call this once the class has been
// referenced by a position rule (RoleUsedMarkClass latched).
func (r *Registry) AddToMarkClass(name string, gid GID, anchor *AnchorMarkInfo) error {
	mc := r.MarkClassByName(name)
	if mc.Class.Role&RoleUsedMarkClass != 0 {
		return &CompileError{Kind: ContextViolation, Message: "mark class @" + name + " used in a position rule before this definition"}
	}
	mc.Class.Glyphs = append(mc.Class.Glyphs, GlyphPos{GID: gid, Anchor: anchor})
	return nil
}

// UseMarkClass latches the RoleUsedMarkClass bit, permanently forbidding
// further glyphs from being added to the named mark class.
func (r *Registry) UseMarkClass(name string) *MarkClass {
	mc := r.MarkClassByName(name)
	mc.Class.Role |= RoleUsedMarkClass
	return mc
}

// AllMarkClasses returns every mark class registered so far, used by GDEF
// assembly (module G) to synthesize a default mark glyph class when none
// was authored explicitly.
func (r *Registry) AllMarkClasses() []*MarkClass {
	out := make([]*MarkClass, 0, len(r.markClasses))
	for _, mc := range r.markClasses {
		out = append(out, mc)
	}
	return out
}
