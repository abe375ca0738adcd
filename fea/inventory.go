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

// GlyphInventory is the glyph-name/CID oracle a host application supplies
// to a [Driver]. It is deliberately the only way the compiler core
// touches font data outside of the rules it is handed; production code
// implements it against a real font (see the top-level inventory.go
// adapter over an *sfnt.Font), tests implement it against a plain map.
type GlyphInventory interface {
	// GIDOfName resolves a glyph name to a GID. When allowNotdef is
	// false, resolving to glyph 0 (.notdef) is treated as "not found" -
	// feature files may reference .notdef explicitly, but accidental
	// typos should not silently succeed against it.
	GIDOfName(name string, allowNotdef bool) (GID, error)

	// GIDOfCID resolves a CID-keyed glyph by its character identifier.
	GIDOfCID(cid int32) (GID, error)

	// HAdvance and VAdvance return the glyph's advance widths in font
	// design units.
	HAdvance(gid GID) int16
	VAdvance(gid GID) int16

	// GlyphCount returns the number of glyphs in the font.
	GlyphCount() uint16
}
