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

import "sort"

// GlyphPos is one glyph within a [ClassRec], together with the anchor it
// carries when the ClassRec is a mark class.
type GlyphPos struct {
	GID    GID
	Anchor *AnchorMarkInfo // nil unless this position is part of a mark class
}

// ClassRec models one position in a glyph pattern: an ordered sequence of
// glyphs together with the role that position plays in the rule it
// belongs to. A GPat holds its positions as a slice of *ClassRec
// pointers in its Classes field.
type ClassRec struct {
	Glyphs        []GlyphPos
	LookupLabels  []Label
	Metrics       *MetricsInfo
	MarkClassName string
	Role          Role
}

// IsGlyph reports whether this position denotes a single glyph authored
// directly (not as a class).
func (c *ClassRec) IsGlyph() bool {
	return len(c.Glyphs) == 1 && c.Role&RoleGClass == 0
}

// IsClass reports whether this position denotes a glyph class.
func (c *ClassRec) IsClass() bool {
	return len(c.Glyphs) > 1 || c.Role&RoleGClass != 0
}

// AddGlyph appends a single glyph to the class. It is an error (reported
// by the caller) to call this after UsedMarkClass has latched.
func (c *ClassRec) AddGlyph(gid GID) {
	c.Glyphs = append(c.Glyphs, GlyphPos{GID: gid})
}

// AddGlyphs appends a run of glyphs, as produced by range expansion.
func (c *ClassRec) AddGlyphs(gids []GID) {
	for _, g := range gids {
		c.Glyphs = append(c.Glyphs, GlyphPos{GID: g})
	}
	if len(c.Glyphs) > 1 {
		c.Role |= RoleGClass
	}
}

// Concat appends other's glyphs to c, as used when flattening a bracketed
// glyph-class expression such as "[A-Z @lower]".
func (c *ClassRec) Concat(other *ClassRec) {
	c.Glyphs = append(c.Glyphs, other.Glyphs...)
	if len(c.Glyphs) > 1 {
		c.Role |= RoleGClass
	}
}

// Sort stably orders the glyphs by GID. Anchors travel with their glyph.
func (c *ClassRec) Sort() {
	sort.SliceStable(c.Glyphs, func(i, j int) bool {
		return c.Glyphs[i].GID < c.Glyphs[j].GID
	})
}

// MakeUnique removes duplicate GIDs after Sort has been called. When
// report is true, the caller-supplied onDuplicate callback is invoked
// once per removed duplicate (used to surface a WARNING diagnostic).
func (c *ClassRec) MakeUnique(report bool, onDuplicate func(GID)) {
	if len(c.Glyphs) < 2 {
		return
	}
	out := c.Glyphs[:1]
	for _, g := range c.Glyphs[1:] {
		if g.GID == out[len(out)-1].GID {
			if report && onDuplicate != nil {
				onDuplicate(g.GID)
			}
			continue
		}
		out = append(out, g)
	}
	c.Glyphs = out
}

// CrossProductIter lazily iterates the Cartesian product of a sequence of
// ClassRec positions, yielding GID tuples in lexicographic index order
// with the first tuple being all index-zero. The iterator is finite and
// not restartable, matching the source's one-shot product generator.
type CrossProductIter struct {
	positions []*ClassRec
	indices   []int
	done      bool
	started   bool
}

// NewCrossProductIter builds an iterator over the Cartesian product of
// positions. A nil or empty positions slice yields no tuples.
func NewCrossProductIter(positions []*ClassRec) *CrossProductIter {
	for _, p := range positions {
		if len(p.Glyphs) == 0 {
			return &CrossProductIter{done: true}
		}
	}
	return &CrossProductIter{
		positions: positions,
		indices:   make([]int, len(positions)),
		done:      len(positions) == 0,
	}
}

// Next advances the iterator and returns the next tuple, or (nil, false)
// once the product is exhausted.
func (it *CrossProductIter) Next() ([]GID, bool) {
	if it.done {
		return nil, false
	}
	if !it.started {
		it.started = true
	} else if !it.advance() {
		it.done = true
		return nil, false
	}
	tuple := make([]GID, len(it.positions))
	for i, p := range it.positions {
		tuple[i] = p.Glyphs[it.indices[i]].GID
	}
	return tuple, true
}

// advance increments indices like an odometer, right-to-left.
func (it *CrossProductIter) advance() bool {
	for i := len(it.indices) - 1; i >= 0; i-- {
		it.indices[i]++
		if it.indices[i] < len(it.positions[i].Glyphs) {
			return true
		}
		it.indices[i] = 0
	}
	return false
}

// GPat is an ordered sequence of ClassRec positions forming one side of a
// rule (the target or the replacement), together with sequence-level
// flags.
type GPat struct {
	Classes      []*ClassRec
	HasMarked    bool
	IgnoreClause bool
	LookupNode   bool
	Enumerate    bool
}

// Backtrack, Input, Lookahead partition the pattern's positions by role,
// in reading order, except that the backtrack slice is returned
// closest-to-input first (the reverse of authoring order), the in-memory
// order that gtab.ChainedSeqContext3 and gtab.Gsub8_1 take (see
// opentype/gtab/context.go).
func (p *GPat) Backtrack() []*ClassRec {
	out := p.byRole(RoleBacktrack)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (p *GPat) Input() []*ClassRec      { return p.byRole(RoleInput) }
func (p *GPat) Lookahead() []*ClassRec  { return p.byRole(RoleLookahead) }
func (p *GPat) Marked() []*ClassRec     { return p.byRole(RoleMarked) }

func (p *GPat) byRole(role Role) []*ClassRec {
	var out []*ClassRec
	for _, c := range p.Classes {
		if c.Role&role != 0 {
			out = append(out, c)
		}
	}
	return out
}

// IsContextual reports whether the pattern carries any backtrack or
// lookahead positions, i.e. whether it needs a Chain Context subtable
// rather than a plain positional rule.
func (p *GPat) IsContextual() bool {
	for _, c := range p.Classes {
		if c.Role&(RoleBacktrack|RoleLookahead) != 0 {
			return true
		}
	}
	return false
}

// FirstGID returns the GID of the first glyph of the first position; used
// to sort ligature/multiple/alternate rules by first-glyph.
func (p *GPat) FirstGID() GID {
	if len(p.Classes) == 0 || len(p.Classes[0].Glyphs) == 0 {
		return GIDUndef
	}
	return p.Classes[0].Glyphs[0].GID
}
