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

// Package fea compiles a feature-file's statements into OpenType GSUB and
// GPOS tables.
//
// The package does not parse feature-file text itself; callers drive a
// [Driver] with a sequence of method calls corresponding to feature-file
// statements (see the Driver methods), resolving glyph names through a
// [GlyphInventory]. This mirrors the split between grammar and semantic
// model used by AFDKO-style compilers: the grammar is an external
// collaborator, the state machine and table emission live here.
package fea

import "seehuhn.de/go/feacomp/glyph"

// GID is a glyph index into the font's glyph store. GIDUndef marks the
// absence of a glyph.
type GID = glyph.ID

// GIDUndef marks "no glyph" where a GID field is optional.
const GIDUndef GID = 0xFFFF

// Tag is a four-character ASCII identifier used for scripts, languages,
// features and axis names throughout OpenType.
type Tag [4]byte

// MakeTag builds a Tag from a string, padding with spaces or truncating to
// four bytes as needed. This mirrors how feature files write under-length
// tags such as "f" for a table name.
func MakeTag(s string) Tag {
	var t Tag
	for i := range t {
		t[i] = ' '
	}
	copy(t[:], s)
	return t
}

func (t Tag) String() string {
	return string(t[:])
}

// TagUndef parks lookups which belong to no real script, language or
// feature (the driver sets its current feature to TagUndef when a
// feature block ends).
var TagUndef = Tag{0xFF, 0xFF, 0xFF, 0xFF}

// TagStandalone marks a lookup referenced only via an explicit "lookup
// NAME;" statement, never bound into any feature's lookup list directly.
var TagStandalone = Tag{0x01, 0x01, 0x01, 0x01}

// TagDFLT and Tagdflt are the reserved default script and language tags.
var (
	TagDFLT = MakeTag("DFLT")
	Tagdflt = MakeTag("dflt")
)

// LabelKind distinguishes the three ways a [Label] can be populated.
type LabelKind byte

const (
	// LabelUndef is the zero value: no lookup is referenced.
	LabelUndef LabelKind = iota
	// LabelNamed identifies a lookup the author gave a name to.
	LabelNamed
	// LabelAnonymous identifies a lookup synthesized by the compiler.
	LabelAnonymous
)

// Label identifies a lookup while the feature file is being compiled.
// Named lookups occupy [0, 0x1FFF], anonymous (compiler-synthesized)
// lookups occupy [0x2000, 0x7FFE]; a Label additionally carries a flag
// marking it as a forward/back *reference* to a lookup defined elsewhere
// (an inline "lookup NAME;" statement) rather than the definition itself.
//
// This plays the role the source's integer-cast label with a high "is
// reference" bit plays, as a proper tagged value instead of a bitmask.
type Label struct {
	Kind      LabelKind
	Value     uint16
	Reference bool
}

// NamedLabelMax and AnonLabelMin/AnonLabelMax bound the two label ranges.
const (
	NamedLabelMax  = 0x1FFF
	AnonLabelMin   = 0x2000
	AnonLabelMax   = 0x7FFE
	labelUndefWire = 0xFFFF
)

// IsUndef reports whether the label identifies no lookup.
func (l Label) IsUndef() bool { return l.Kind == LabelUndef }

// AsReference returns a copy of l marked as a reference to a lookup
// defined elsewhere, corresponding to the source's IS_REF_LAB high bit.
func (l Label) AsReference() Label {
	l.Reference = true
	return l
}

// Role bits describing the part a [ClassRec] plays within a [GPat].
type Role uint16

const (
	RoleMarked Role = 1 << iota
	RoleGClass
	RoleBacktrack
	RoleInput
	RoleLookahead
	RoleBaseNode
	RoleMarkNode
	RoleUsedMarkClass
)

// Has reports whether every bit in mask is set in r.
func (r Role) Has(mask Role) bool { return r&mask == mask }

// AnchorMarkInfo records one anchor point, attached either to a base
// glyph position or to a glyph within a mark class.
//
// Anchors order by (ComponentIndex, MarkClassIndex, Format, X, Y,
// ContourPoint); two anchors compare equal iff every field matches
// (ContourPoint only contributes when Format is 2).
type AnchorMarkInfo struct {
	Format         uint8 // 1, 2 or 3
	X, Y           int16
	ContourPoint   uint16 // only meaningful when Format == 2
	MarkClassIndex int
	ComponentIndex int
	MarkClassName  string
}

// Less implements the anchor total order from the data model.
func (a AnchorMarkInfo) Less(b AnchorMarkInfo) bool {
	if a.ComponentIndex != b.ComponentIndex {
		return a.ComponentIndex < b.ComponentIndex
	}
	if a.MarkClassIndex != b.MarkClassIndex {
		return a.MarkClassIndex < b.MarkClassIndex
	}
	if a.Format != b.Format {
		return a.Format < b.Format
	}
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.ContourPoint < b.ContourPoint
}

// Equal reports whether a and b describe the same anchor point.
func (a AnchorMarkInfo) Equal(b AnchorMarkInfo) bool {
	if a.ComponentIndex != b.ComponentIndex ||
		a.MarkClassIndex != b.MarkClassIndex ||
		a.Format != b.Format ||
		a.X != b.X || a.Y != b.Y {
		return false
	}
	if a.Format == 2 && a.ContourPoint != b.ContourPoint {
		return false
	}
	return true
}

// MetricsInfo is a value record in feature-file notation: 1 value
// (x-advance only), 2 (x-placement, x-advance), 4 (full XY placement and
// advance), or the 10-value form with device-table positions, which this
// compiler records but never emits device tables for.
type MetricsInfo struct {
	Values []int16
}

// Format reports the ValueRecord format implied by the number of values
// recorded (the caller is responsible for choosing 1, 2, 4 or 10 values;
// any other length is a caller error).
func (m MetricsInfo) Format() int { return len(m.Values) }

// XAdvance, XPlacement, YPlacement, YAdvance decode the 1/2/4-value forms.
// They panic if the record does not carry that many values; callers
// should check Format() first.
func (m MetricsInfo) XAdvance() int16 {
	switch len(m.Values) {
	case 1:
		return m.Values[0]
	case 2:
		return m.Values[1]
	case 4, 10:
		return m.Values[2]
	default:
		panic("fea: invalid MetricsInfo")
	}
}

func (m MetricsInfo) XPlacement() int16 {
	switch len(m.Values) {
	case 1:
		return 0
	case 2:
		return m.Values[0]
	case 4, 10:
		return m.Values[0]
	default:
		panic("fea: invalid MetricsInfo")
	}
}

func (m MetricsInfo) YPlacement() int16 {
	switch len(m.Values) {
	case 1, 2:
		return 0
	case 4, 10:
		return m.Values[1]
	default:
		panic("fea: invalid MetricsInfo")
	}
}

func (m MetricsInfo) YAdvance() int16 {
	switch len(m.Values) {
	case 1, 2:
		return 0
	case 4, 10:
		return m.Values[3]
	default:
		panic("fea: invalid MetricsInfo")
	}
}
