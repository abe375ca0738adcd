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

import (
	"seehuhn.de/go/feacomp/opentype/classdef"
	"seehuhn.de/go/feacomp/opentype/coverage"
	"seehuhn.de/go/feacomp/opentype/gdef"
)

// GlyphClassDef handles a `table GDEF { GlyphClassDef ...; } GDEF;`
// statement, assigning one of the four GDEF glyph classes to a set of
// glyphs authored directly (rather than inferred from lookup roles).
func (d *Driver) GlyphClassDef(base, ligature, mark, component *ClassRec) {
	d.gFlags.seenGDEFGC = true
	if d.Gdef == nil {
		d.Gdef = &gdef.Table{}
	}
	if d.Gdef.GlyphClass == nil {
		d.Gdef.GlyphClass = make(classdef.Table)
	}
	assign := func(c *ClassRec, class uint16) {
		if c == nil {
			return
		}
		for _, g := range c.Glyphs {
			d.Gdef.GlyphClass[g.GID] = class
		}
	}
	assign(base, gdef.GlyphClassBase)
	assign(ligature, gdef.GlyphClassLigature)
	assign(mark, gdef.GlyphClassMark)
	assign(component, gdef.GlyphClassComponent)
}

// MarkAttachClassDef handles a `table GDEF { MarkAttachClass @C ... N; }`
// statement (also reachable indirectly via `lookupflag
// MarkAttachmentType @C`): glyphs in the named class are assigned mark
// attachment class n.
func (d *Driver) MarkAttachClassDef(class *ClassRec, n uint16) {
	if d.Gdef == nil {
		d.Gdef = &gdef.Table{}
	}
	if d.Gdef.MarkAttachClass == nil {
		d.Gdef.MarkAttachClass = make(classdef.Table)
	}
	for _, g := range class.Glyphs {
		d.Gdef.MarkAttachClass[g.GID] = n
	}
}

// MarkFilterSetDef handles a `table GDEF { MarkFilteringSet @C N; }`
// statement, registering the glyph set a `lookupflag UseMarkFilteringSet
// N` statement refers to by index.
func (d *Driver) MarkFilterSetDef(class *ClassRec, index uint16) {
	if d.Gdef == nil {
		d.Gdef = &gdef.Table{}
	}
	for uint16(len(d.Gdef.MarkGlyphSets)) <= index {
		d.Gdef.MarkGlyphSets = append(d.Gdef.MarkGlyphSets, coverage.Set{})
	}
	set := make(coverage.Set, len(class.Glyphs))
	for _, g := range class.Glyphs {
		set[g.GID] = true
	}
	d.Gdef.MarkGlyphSets[index] = set
	d.gFlags.seenMarkClassFlag = true
}

// finishGDEF synthesizes a default GDEF table from the roles every
// compiled rule already recorded, when the feature file never authored
// an explicit `table GDEF { ... }` block (§4.6's glyph-class-inference
// fallback): any glyph that ever appeared in a [Registry] mark class
// becomes GDEF glyph class 3 (Mark), so mark positioning lookups keep
// working against fonts whose GDEF table this compiler is responsible
// for producing.
func (d *Driver) finishGDEF() {
	if d.gFlags.seenGDEFGC {
		return // author-supplied table GDEF wins outright.
	}
	marks := d.Registry.AllMarkClasses()
	if len(marks) == 0 {
		return
	}
	if d.Gdef == nil {
		d.Gdef = &gdef.Table{}
	}
	if d.Gdef.GlyphClass == nil {
		d.Gdef.GlyphClass = make(classdef.Table)
	}
	for _, mc := range marks {
		for _, g := range mc.Class.Glyphs {
			if _, ok := d.Gdef.GlyphClass[g.GID]; !ok {
				d.Gdef.GlyphClass[g.GID] = gdef.GlyphClassMark
			}
		}
	}
}
