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

import "seehuhn.de/go/feacomp/opentype/gtab"

// Table chooses between the GSUB and GPOS tables a rule belongs to.
type Table byte

const (
	GSUBTable Table = iota + 1
	GPOSTable
)

// LkpType is one of the six substitution kinds or eight positioning
// kinds from §4.4/§4.5, tagged by which [Table] it belongs to so a single
// enum can be passed around the driver.
type LkpType int

const (
	LkpSingle LkpType = iota + 1
	LkpMultiple
	LkpAlternate
	LkpLigature
	LkpChainContext
	LkpReverseChain

	LkpPosSingle
	LkpPosPair
	LkpPosCursive
	LkpPosMarkToBase
	LkpPosMarkToLigature
	LkpPosMarkToMark
	LkpPosContext
	LkpPosChainContext
)

// Rule is one target/replacement pair accumulated inside a lookup, in the
// order the feature file authored it.
type Rule struct {
	Targ   *GPat
	Repl   *GPat // nil for rules with no replacement (e.g. ignore clauses)
	Length int   // number of input positions, cached for sorting
}

// Accumulator is the transient unit the driver fills while walking
// statements inside one lookup block; [Driver.closeLookup] compiles it
// into zero or more [gtab.Subtable] values and hands them to the
// [LookupListBuilder].
type Accumulator struct {
	Script, Language, Feature Tag
	Tbl                       Table
	LkpType                   LkpType
	LkpFlag                   gtab.LookupFlags
	MarkSetIndex              uint16
	Label                     Label
	UseExtension              bool

	Rules   []*Rule
	Singles map[GID]GID // dedup map used only by LkpSingle/LkpPosSingle... (GPOS single is by value record, this tracks substitution targets)

	ParentFeatTag Tag // anonymous lookups only: the feature that spawned them

	FeatureParam []byte // ss##/cv## payload, nil otherwise
}

// NewAccumulator returns an empty accumulator for the given context.
func NewAccumulator(script, language, feature Tag, tbl Table, lkpType LkpType, label Label) *Accumulator {
	return &Accumulator{
		Script: script, Language: language, Feature: feature,
		Tbl: tbl, LkpType: lkpType, Label: label,
		Singles: make(map[GID]GID),
	}
}

// AddRule appends a rule in authoring order.
func (a *Accumulator) AddRule(targ, repl *GPat) {
	length := 0
	if targ != nil {
		length = len(targ.Input())
		if length == 0 {
			length = len(targ.Classes)
		}
	}
	a.Rules = append(a.Rules, &Rule{Targ: targ, Repl: repl, Length: length})
}

// matchesAnon reports whether a would-be anonymous accumulator's
// identity fields match the ones a new chain-context inline replacement
// needs, per §4.4.8 ("append to the most recently created anonymous
// accumulator if {lkpType, lkpFlag, markSetIndex, parentFeatTag} match").
func (a *Accumulator) matchesAnon(lkpType LkpType, flag gtab.LookupFlags, markSet uint16, parentFeat Tag) bool {
	return a.LkpType == lkpType && a.LkpFlag == flag &&
		a.MarkSetIndex == markSet && a.ParentFeatTag == parentFeat
}
