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
	"sort"

	"seehuhn.de/go/feacomp/glyph"
	"seehuhn.de/go/feacomp/opentype/anchor"
	"seehuhn.de/go/feacomp/opentype/coverage"
	"seehuhn.de/go/feacomp/opentype/gtab"
	"seehuhn.de/go/feacomp/opentype/markarray"
	"seehuhn.de/go/postscript/funit"
)

// compileGPOS dispatches to the kind-specific compiler (module E).
func (d *Driver) compileGPOS(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	switch acc.LkpType {
	case LkpPosSingle:
		return d.compilePosSingle(acc)
	case LkpPosPair:
		return d.compilePosPair(acc)
	case LkpPosCursive:
		return d.compilePosCursive(acc)
	case LkpPosMarkToBase:
		return d.compilePosMarkToBase(acc)
	case LkpPosMarkToLigature:
		return d.compilePosMarkToLigature(acc)
	case LkpPosMarkToMark:
		return d.compilePosMarkToMark(acc)
	case LkpPosContext, LkpPosChainContext:
		return d.compilePosChainContext(acc)
	default:
		return nil, &CompileError{Kind: PatternShapeMismatch, Message: "unsupported GPOS lookup kind"}
	}
}

func toValueRecord(m *MetricsInfo) *gtab.GposValueRecord {
	vr := &gtab.GposValueRecord{}
	if m == nil {
		return vr
	}
	switch m.Format() {
	case 1:
		vr.XAdvance = funit.Int16(m.XAdvance())
	case 2:
		vr.XPlacement = funit.Int16(m.XPlacement())
		vr.XAdvance = funit.Int16(m.XAdvance())
	case 4, 10:
		vr.XPlacement = funit.Int16(m.XPlacement())
		vr.YPlacement = funit.Int16(m.YPlacement())
		vr.XAdvance = funit.Int16(m.XAdvance())
		vr.YAdvance = funit.Int16(m.YAdvance())
	}
	return vr
}

// compilePosSingle implements §4.5's single adjustment, sharing Gsub1's
// format-1-vs-format-2 choice but keyed on value-record equality instead
// of a constant delta.
func (d *Driver) compilePosSingle(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	type entry struct {
		gid GID
		vr  *gtab.GposValueRecord
	}
	var entries []entry
	seen := map[GID]bool{}
	for _, r := range acc.Rules {
		m := r.Targ.Classes[0].Metrics
		for _, g := range r.Targ.Classes[0].Glyphs {
			if seen[g.GID] {
				continue
			}
			seen[g.GID] = true
			entries = append(entries, entry{gid: g.GID, vr: toValueRecord(m)})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].gid < entries[j].gid })

	cov := make(coverage.Table, len(entries))
	same := true
	for i, e := range entries {
		cov[e.gid] = i
		if i > 0 && *e.vr != *entries[0].vr {
			same = false
		}
	}
	if len(entries) == 0 {
		return nil, nil
	}
	if same {
		return []gtab.Subtable{&gtab.Gpos1_1{Cov: cov, Adjust: entries[0].vr}}, nil
	}
	adjust := make([]*gtab.GposValueRecord, len(entries))
	for i, e := range entries {
		adjust[i] = e.vr
	}
	return []gtab.Subtable{&gtab.Gpos1_2{Cov: cov, Adjust: adjust}}, nil
}

// compilePosPair implements §4.5's pair adjustment: explicit glyph pairs
// compile to format 1 ([gtab.Gpos2_1]), two-class rules to format 2
// ([gtab.Gpos2_2]).
func (d *Driver) compilePosPair(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	classBased := false
	for _, r := range acc.Rules {
		if len(r.Targ.Classes) >= 2 && (r.Targ.Classes[0].IsClass() || r.Targ.Classes[1].IsClass()) {
			classBased = true
			break
		}
	}

	if !classBased {
		pairs := make(gtab.Gpos2_1)
		for _, r := range acc.Rules {
			if len(r.Targ.Classes) < 2 {
				continue
			}
			first := r.Targ.Classes[0]
			second := r.Targ.Classes[1]
			for _, g1 := range first.Glyphs {
				for _, g2 := range second.Glyphs {
					pairs[glyph.Pair{Left: glyph.ID(g1.GID), Right: glyph.ID(g2.GID)}] = &gtab.PairAdjust{
						First:  toValueRecord(first.Metrics),
						Second: toValueRecord(second.Metrics),
					}
				}
			}
		}
		return []gtab.Subtable{pairs}, nil
	}

	cb := NewCoverageBuilder()
	class1 := NewClassBuilder()
	class2 := NewClassBuilder()
	var firstGIDs []GID
	for _, r := range acc.Rules {
		if len(r.Targ.Classes) < 2 {
			continue
		}
		for _, g := range r.Targ.Classes[0].Glyphs {
			firstGIDs = append(firstGIDs, g.GID)
		}
	}
	cov := cb.Build(firstGIDs)
	coverageSet := make(coverage.Set, len(cov))
	for g := range cov {
		coverageSet[g] = true
	}

	type cell struct{ c1, c2 uint16 }
	adjustByCell := map[cell]*gtab.PairAdjust{}
	maxC1, maxC2 := uint16(0), uint16(0)
	for _, r := range acc.Rules {
		if len(r.Targ.Classes) < 2 {
			continue
		}
		first, second := r.Targ.Classes[0], r.Targ.Classes[1]
		var firstGIDsR, secondGIDsR []GID
		for _, g := range first.Glyphs {
			firstGIDsR = append(firstGIDsR, g.GID)
		}
		for _, g := range second.Glyphs {
			secondGIDsR = append(secondGIDsR, g.GID)
		}
		c1 := class1.AddClass(firstGIDsR)
		c2 := class2.AddClass(secondGIDsR)
		if c1 > maxC1 {
			maxC1 = c1
		}
		if c2 > maxC2 {
			maxC2 = c2
		}
		adjustByCell[cell{c1, c2}] = &gtab.PairAdjust{
			First:  toValueRecord(first.Metrics),
			Second: toValueRecord(second.Metrics),
		}
	}

	adjust := make([][]*gtab.PairAdjust, maxC1+1)
	for i := range adjust {
		adjust[i] = make([]*gtab.PairAdjust, maxC2+1)
		for j := range adjust[i] {
			adjust[i][j] = adjustByCell[cell{uint16(i), uint16(j)}]
		}
	}

	return []gtab.Subtable{&gtab.Gpos2_2{
		Cov:    coverageSet,
		Class1: class1.Table(),
		Class2: class2.Table(),
		Adjust: adjust,
	}}, nil
}

// compilePosCursive implements §4.5's cursive attachment, reading the
// entry/exit anchors carried on each glyph position.
func (d *Driver) compilePosCursive(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	type cursiveEntry struct {
		gid        GID
		entry, exit anchor.Table
	}
	var entries []cursiveEntry
	for _, r := range acc.Rules {
		for _, g := range r.Targ.Classes[0].Glyphs {
			var en, ex anchor.Table
			if g.Anchor != nil {
				en = anchor.Table{X: funit.Int16(g.Anchor.X), Y: funit.Int16(g.Anchor.Y)}
			}
			if r.Repl != nil && len(r.Repl.Classes) > 0 {
				for _, rg := range r.Repl.Classes[0].Glyphs {
					if rg.GID == g.GID && rg.Anchor != nil {
						ex = anchor.Table{X: funit.Int16(rg.Anchor.X), Y: funit.Int16(rg.Anchor.Y)}
					}
				}
			}
			entries = append(entries, cursiveEntry{gid: g.GID, entry: en, exit: ex})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].gid < entries[j].gid })

	cov := make(coverage.Table, len(entries))
	records := make([]gtab.EntryExitRecord, len(entries))
	for i, e := range entries {
		cov[e.gid] = i
		records[i] = gtab.EntryExitRecord{Entry: e.entry, Exit: e.exit}
	}
	return []gtab.Subtable{&gtab.Gpos3_1{Cov: cov, Records: records}}, nil
}

// compilePosMarkToBase implements §4.5's mark-to-base attachment.
func (d *Driver) compilePosMarkToBase(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	markCov, markArray, err := buildMarkArray(acc, 0)
	if err != nil {
		return nil, err
	}
	baseCov, baseArray := buildAnchorArray(acc, 1, markClassCount(acc))
	return []gtab.Subtable{&gtab.Gpos4_1{
		MarkCov: markCov, BaseCov: baseCov, MarkArray: markArray, BaseArray: baseArray,
	}}, nil
}

// compilePosMarkToLigature implements §4.5's mark-to-ligature attachment.
func (d *Driver) compilePosMarkToLigature(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	markCov, markArray, err := buildMarkArray(acc, 0)
	if err != nil {
		return nil, err
	}
	classCount := markClassCount(acc)

	type ligEntry struct {
		gid       GID
		perComp   [][]anchor.Table
	}
	var ligs []ligEntry
	for _, r := range acc.Rules {
		if len(r.Targ.Classes) < 2 {
			continue
		}
		base := r.Targ.Classes[1]
		for _, g := range base.Glyphs {
			components := r.Targ.Classes[1:]
			perComp := make([][]anchor.Table, len(components))
			for ci, comp := range components {
				row := make([]anchor.Table, classCount)
				for _, cg := range comp.Glyphs {
					if cg.GID != g.GID || cg.Anchor == nil {
						continue
					}
					row[cg.Anchor.MarkClassIndex] = anchor.Table{
						X: funit.Int16(cg.Anchor.X), Y: funit.Int16(cg.Anchor.Y),
					}
				}
				perComp[ci] = row
			}
			ligs = append(ligs, ligEntry{gid: g.GID, perComp: perComp})
		}
	}
	sort.Slice(ligs, func(i, j int) bool { return ligs[i].gid < ligs[j].gid })

	ligCov := make(coverage.Table, len(ligs))
	ligArray := make([][][]anchor.Table, len(ligs))
	for i, l := range ligs {
		ligCov[l.gid] = i
		ligArray[i] = l.perComp
	}

	return []gtab.Subtable{&gtab.Gpos5_1{
		MarkCov: markCov, LigCov: ligCov, MarkArray: markArray, LigArray: ligArray,
	}}, nil
}

// compilePosMarkToMark implements §4.5's mark-to-mark attachment.
func (d *Driver) compilePosMarkToMark(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	mark1Cov, mark1Array, err := buildMarkArray(acc, 0)
	if err != nil {
		return nil, err
	}
	mark2Cov, mark2Array := buildAnchorArray(acc, 1, markClassCount(acc))
	return []gtab.Subtable{&gtab.Gpos6_1{
		Mark1Cov: mark1Cov, Mark2Cov: mark2Cov, Mark1Array: mark1Array, Mark2Array: mark2Array,
	}}, nil
}

// markClassCount scans every rule's mark position for the highest
// MarkClassIndex referenced, returning count = max+1 (at least 1).
func markClassCount(acc *Accumulator) int {
	max := 0
	for _, r := range acc.Rules {
		for _, c := range r.Targ.Classes {
			for _, g := range c.Glyphs {
				if g.Anchor != nil && g.Anchor.MarkClassIndex > max {
					max = g.Anchor.MarkClassIndex
				}
			}
		}
	}
	return max + 1
}

// buildMarkArray reads the mark position (index posIdx in each rule's
// target classes) and builds the shared MarkCoverage/MarkArray pair used
// by all three mark-attachment lookup kinds.
func buildMarkArray(acc *Accumulator, posIdx int) (coverage.Table, []markarray.Record, *CompileError) {
	type entry struct {
		gid   GID
		class uint16
		a     anchor.Table
	}
	var entries []entry
	for _, r := range acc.Rules {
		if len(r.Targ.Classes) <= posIdx {
			continue
		}
		for _, g := range r.Targ.Classes[posIdx].Glyphs {
			if g.Anchor == nil {
				return nil, nil, &CompileError{Kind: PatternShapeMismatch,
					Message: "mark position is missing an anchor"}
			}
			entries = append(entries, entry{
				gid:   g.GID,
				class: uint16(g.Anchor.MarkClassIndex),
				a:     anchor.Table{X: funit.Int16(g.Anchor.X), Y: funit.Int16(g.Anchor.Y)},
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].gid < entries[j].gid })

	cov := make(coverage.Table, len(entries))
	markArray := make([]markarray.Record, len(entries))
	for i, e := range entries {
		cov[e.gid] = i
		markArray[i] = markarray.Record{Class: e.class, Table: e.a}
	}
	return cov, markArray, nil
}

// buildAnchorArray reads the base/ligature-component position (index
// posIdx) and builds a BaseCoverage/BaseArray (or Mark2 equivalent),
// indexed by coverage order then mark class.
func buildAnchorArray(acc *Accumulator, posIdx int, classCount int) (coverage.Table, [][]anchor.Table) {
	type entry struct {
		gid GID
		row []anchor.Table
	}
	byGID := map[GID][]anchor.Table{}
	var order []GID
	for _, r := range acc.Rules {
		if len(r.Targ.Classes) <= posIdx {
			continue
		}
		for _, g := range r.Targ.Classes[posIdx].Glyphs {
			row, ok := byGID[g.GID]
			if !ok {
				row = make([]anchor.Table, classCount)
				order = append(order, g.GID)
			}
			if g.Anchor != nil {
				row[g.Anchor.MarkClassIndex] = anchor.Table{X: funit.Int16(g.Anchor.X), Y: funit.Int16(g.Anchor.Y)}
			}
			byGID[g.GID] = row
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	cov := make(coverage.Table, len(order))
	baseArray := make([][]anchor.Table, len(order))
	for i, g := range order {
		cov[g] = i
		baseArray[i] = byGID[g]
	}
	return cov, baseArray
}

// compilePosChainContext implements §4.5's contextual/chained-contextual
// positioning, sharing the coverage-set chain-context structure with
// module D's GSUB compiler. Inline value-record adjustments synthesize
// an anonymous single-adjustment sub-lookup, explicit per-position
// `lookup NAME` references resolve to an already (or not yet) compiled
// named lookup's index.
func (d *Driver) compilePosChainContext(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	var out []gtab.Subtable
	for _, r := range acc.Rules {
		sub, err := d.compileOnePosChainContextRule(acc, r)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func (d *Driver) compileOnePosChainContextRule(acc *Accumulator, r *Rule) (gtab.Subtable, *CompileError) {
	backtrack := setsFor(r.Targ.Backtrack())
	input := setsFor(r.Targ.Input())
	lookahead := setsFor(r.Targ.Lookahead())
	if len(input) == 0 {
		return nil, &CompileError{Kind: ContextViolation, Message: "chain context rule has no input positions"}
	}

	var actions []gtab.SeqLookup
	inputPositions := r.Targ.Input()
	for i, pos := range inputPositions {
		if pos.Role&RoleMarked == 0 {
			continue
		}
		if len(pos.LookupLabels) > 0 {
			for _, lbl := range pos.LookupLabels {
				idx := d.Gpos.Reserve(lbl)
				actions = append(actions, gtab.SeqLookup{SequenceIndex: uint16(i), LookupListIndex: idx})
			}
			continue
		}
		if pos.Metrics == nil {
			continue
		}
		anon, idx := d.getOrCreateAnonSub(GPOSTable, LkpPosSingle, acc.LkpFlag, acc.MarkSetIndex, acc.Feature)
		for _, g := range pos.Glyphs {
			targ := &GPat{Classes: []*ClassRec{{Glyphs: []GlyphPos{{GID: g.GID}}, Metrics: pos.Metrics, Role: RoleInput}}}
			anon.AddRule(targ, nil)
		}
		actions = append(actions, gtab.SeqLookup{SequenceIndex: uint16(i), LookupListIndex: idx})
	}

	return &gtab.ChainedSeqContext3{
		Backtrack: backtrack,
		Input:     input,
		Lookahead: lookahead,
		Actions:   actions,
	}, nil
}
