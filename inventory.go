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

package feacomp

import (
	"fmt"

	"seehuhn.de/go/postscript/cid"

	"seehuhn.de/go/feacomp/cff"
	"seehuhn.de/go/feacomp/fea"
	"seehuhn.de/go/feacomp/glyph"
	"seehuhn.de/go/feacomp/sfnt"
)

// FontInventory adapts an *sfnt.Font to [fea.GlyphInventory], the only
// way the feature-file compiler touches font data. It is built once per
// font: glyph-name and CID lookups are backed by reverse indices built
// eagerly, since a feature file typically resolves far more names than
// the font has glyphs.
type FontInventory struct {
	font     *sfnt.Font
	byName   map[string]glyph.ID
	byCID    map[cid.CID]glyph.ID
	isCID    bool
	widths   []float64
}

// NewFontInventory builds an inventory over font. font.EnsureGlyphNames
// should have been called first if the font's outlines do not already
// carry names (TrueType fonts without a post table v2, subsetted CFF
// fonts, etc.) — this compiler does not infer names on its own.
func NewFontInventory(font *sfnt.Font) *FontInventory {
	inv := &FontInventory{
		font:   font,
		byName: make(map[string]glyph.ID),
		widths: font.Widths(),
	}
	for gid := 0; gid < font.NumGlyphs(); gid++ {
		name := font.GlyphName(glyph.ID(gid))
		if name != "" {
			inv.byName[name] = glyph.ID(gid)
		}
	}
	if o, ok := font.Outlines.(*cff.Outlines); ok && o.IsCIDKeyed() {
		inv.isCID = true
		inv.byCID = make(map[cid.CID]glyph.ID, len(o.GIDToCID))
		for gid, c := range o.GIDToCID {
			inv.byCID[c] = glyph.ID(gid)
		}
	}
	return inv
}

// GIDOfName implements [fea.GlyphInventory].
func (inv *FontInventory) GIDOfName(name string, allowNotdef bool) (fea.GID, error) {
	gid, ok := inv.byName[name]
	if !ok {
		return 0, &fea.CompileError{
			Kind:    fea.UnknownGlyph,
			Message: fmt.Sprintf("glyph %q is not present in the font", name),
		}
	}
	if gid == 0 && !allowNotdef {
		return 0, &fea.CompileError{
			Kind:    fea.UnknownGlyph,
			Message: fmt.Sprintf("glyph %q resolves to .notdef", name),
		}
	}
	return fea.GID(gid), nil
}

// GIDOfCID implements [fea.GlyphInventory]. It is only meaningful for
// CID-keyed CFF fonts; any other font reports every CID as unknown.
func (inv *FontInventory) GIDOfCID(c int32) (fea.GID, error) {
	if !inv.isCID {
		return 0, &fea.CompileError{
			Kind:    fea.UnknownGlyph,
			Message: "font is not CID-keyed, CID references cannot be resolved",
		}
	}
	gid, ok := inv.byCID[cid.CID(c)]
	if !ok {
		return 0, &fea.CompileError{
			Kind:    fea.UnknownGlyph,
			Message: fmt.Sprintf("CID %d is not present in the font", c),
		}
	}
	return fea.GID(gid), nil
}

// HAdvance implements [fea.GlyphInventory], returning the glyph's
// horizontal advance width in font design units.
func (inv *FontInventory) HAdvance(gid fea.GID) int16 {
	if int(gid) >= len(inv.widths) {
		return 0
	}
	return int16(inv.widths[gid])
}

// VAdvance implements [fea.GlyphInventory]. The font package this
// compiler was built against carries no vertical-metrics (vmtx/VORG)
// table, so vertical advance is approximated as UnitsPerEm — the
// typical default for CJK vertical writing when no vmtx table is
// present — rather than a per-glyph measurement. Fonts that need exact
// vertical advances must derive them externally and feed them through
// `vpal`/`vrt2` value records instead of relying on this default.
func (inv *FontInventory) VAdvance(gid fea.GID) int16 {
	return int16(inv.font.UnitsPerEm)
}

// GlyphCount implements [fea.GlyphInventory].
func (inv *FontInventory) GlyphCount() uint16 {
	return uint16(inv.font.NumGlyphs())
}
