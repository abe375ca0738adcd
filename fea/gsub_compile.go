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
	"seehuhn.de/go/feacomp/opentype/coverage"
	"seehuhn.de/go/feacomp/opentype/gtab"
)

// maxSubtableSize is the automatic-subtable-break threshold (§4.4.2): once
// the running size of a Multiple or Alternate subtable would exceed a
// 16-bit offset, the driver closes it and starts a new one at the
// offending rule.
const maxSubtableSize = 0xFFFF

// validateRule performs the minimal shape checks §7 calls
// PatternShapeMismatch / ContextViolation, common to both tables.
func validateRule(tbl Table, lkpType LkpType, targ, repl *GPat) *CompileError {
	if targ == nil || len(targ.Classes) == 0 {
		return &CompileError{Kind: PatternShapeMismatch, Message: "rule has no target"}
	}
	switch lkpType {
	case LkpSingle, LkpPosSingle:
		if len(targ.Input()) != 1 {
			return &CompileError{Kind: ContextViolation, Message: "single rule must mark exactly one input position"}
		}
	case LkpReverseChain:
		if len(targ.Input()) != 1 {
			return &CompileError{Kind: ContextViolation, Message: "reverse chaining rule allows exactly one input position"}
		}
	}
	return nil
}

// compileGSUB dispatches to the kind-specific compiler (module D).
func (d *Driver) compileGSUB(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	switch acc.LkpType {
	case LkpSingle:
		return d.compileSingle(acc)
	case LkpMultiple:
		return d.compileMultiple(acc)
	case LkpAlternate:
		return d.compileAlternate(acc)
	case LkpLigature:
		return d.compileLigature(acc)
	case LkpChainContext:
		return d.compileChainContext(acc)
	case LkpReverseChain:
		return d.compileReverseChain(acc)
	default:
		return nil, &CompileError{Kind: PatternShapeMismatch, Message: "unsupported GSUB lookup kind"}
	}
}

// compileSingle implements §4.4.1.
func (d *Driver) compileSingle(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	order := make([]GID, 0, len(acc.Rules))
	repl := make(map[GID]GID, len(acc.Rules))
	isVrt2 := acc.Feature == MakeTag("vrt2")

	for _, r := range acc.Rules {
		targGlyphs := r.Targ.Classes[0].Glyphs
		var replGlyphs []GlyphPos
		if r.Repl != nil && len(r.Repl.Classes) > 0 {
			replGlyphs = r.Repl.Classes[0].Glyphs
		}
		for i, tg := range targGlyphs {
			var rg GID
			switch {
			case len(replGlyphs) == len(targGlyphs):
				rg = replGlyphs[i].GID
			case len(replGlyphs) == 1:
				rg = replGlyphs[0].GID
			default:
				return nil, &CompileError{Kind: PatternShapeMismatch,
					Message: "single substitution target/replacement length mismatch"}
			}
			if existing, ok := repl[tg.GID]; ok {
				if existing != rg {
					return nil, &CompileError{Kind: DuplicateDefinition,
						Message: "conflicting single substitution for the same target glyph"}
				}
				continue
			}
			repl[tg.GID] = rg
			order = append(order, tg.GID)

			if isVrt2 {
				h := d.Inv.HAdvance(tg.GID)
				_ = h // read only: no vertical advance is recorded for vrt2 targets
			}
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	delta := glyph.ID(repl[order[0]]) - glyph.ID(order[0])
	constant := true
	for _, g := range order {
		if glyph.ID(repl[g])-glyph.ID(g) != delta {
			constant = false
			break
		}
	}

	cov := make(coverage.Table, len(order))
	for i, g := range order {
		cov[g] = i
	}

	if constant {
		set := make(coverage.Set, len(order))
		for _, g := range order {
			set[g] = true
		}
		return []gtab.Subtable{&gtab.Gsub1_1{Cov: set, Delta: delta}}, nil
	}

	subst := make([]glyph.ID, len(order))
	for i, g := range order {
		subst[i] = repl[g]
	}
	return []gtab.Subtable{&gtab.Gsub1_2{Cov: cov, SubstituteGlyphIDs: subst}}, nil
}

// compileMultiple implements §4.4.2.
func (d *Driver) compileMultiple(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	type entry struct {
		targ GID
		repl []glyph.ID
	}
	entries := make([]entry, 0, len(acc.Rules))
	seen := map[GID]bool{}
	for _, r := range acc.Rules {
		g := r.Targ.Classes[0].Glyphs[0].GID
		if seen[g] {
			return nil, &CompileError{Kind: DuplicateDefinition, Severity: Fatal,
				Message: "duplicate target in multiple substitution"}
		}
		seen[g] = true
		var repl []glyph.ID
		if r.Repl != nil {
			for _, rc := range r.Repl.Classes {
				for _, rg := range rc.Glyphs {
					repl = append(repl, glyph.ID(rg.GID))
				}
			}
		}
		entries = append(entries, entry{targ: g, repl: repl})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].targ < entries[j].targ })

	var out []gtab.Subtable
	build := func(batch []entry) {
		cov := make(coverage.Table, len(batch))
		repl := make([][]glyph.ID, len(batch))
		for i, e := range batch {
			cov[e.targ] = i
			repl[i] = e.repl
		}
		out = append(out, &gtab.Gsub2_1{Cov: cov, Repl: repl})
	}

	var batch []entry
	size := 6
	for _, e := range entries {
		cost := 2 + 2 + 2*len(e.repl) // coverage growth + sequence offset + sequence body
		if size+cost > maxSubtableSize && len(batch) > 0 {
			build(batch)
			batch = nil
			size = 6
		}
		batch = append(batch, e)
		size += cost
	}
	if len(batch) > 0 {
		build(batch)
	}
	return out, nil
}

// compileAlternate implements §4.4.3, sharing Multiple's structure.
func (d *Driver) compileAlternate(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	type entry struct {
		targ GID
		alts []glyph.ID
	}
	entries := make([]entry, 0, len(acc.Rules))
	seen := map[GID]bool{}
	for _, r := range acc.Rules {
		g := r.Targ.Classes[0].Glyphs[0].GID
		if seen[g] {
			return nil, &CompileError{Kind: DuplicateDefinition, Severity: Fatal,
				Message: "duplicate target in alternate substitution"}
		}
		seen[g] = true
		var alts []glyph.ID
		if r.Repl != nil {
			for _, rc := range r.Repl.Classes {
				for _, rg := range rc.Glyphs {
					alts = append(alts, glyph.ID(rg.GID))
				}
			}
		}
		entries = append(entries, entry{targ: g, alts: alts})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].targ < entries[j].targ })

	var out []gtab.Subtable
	build := func(batch []entry) {
		cov := make(coverage.Table, len(batch))
		alt := make([][]glyph.ID, len(batch))
		for i, e := range batch {
			cov[e.targ] = i
			alt[i] = e.alts
		}
		out = append(out, &gtab.Gsub3_1{Cov: cov, Alternates: alt})
	}

	var batch []entry
	size := 6
	for _, e := range entries {
		cost := 2 + 2 + 2*len(e.alts)
		if size+cost > maxSubtableSize && len(batch) > 0 {
			build(batch)
			batch = nil
			size = 6
		}
		batch = append(batch, e)
		size += cost
	}
	if len(batch) > 0 {
		build(batch)
	}
	return out, nil
}

// compileLigature implements §4.4.4, including cross-product expansion
// of multi-glyph input classes.
func (d *Driver) compileLigature(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	type entry struct {
		seq  []GID // full input sequence, including the first glyph
		repl GID
	}
	var entries []entry

	for _, r := range acc.Rules {
		positions := r.Targ.Input()
		if len(positions) == 0 {
			positions = r.Targ.Classes
		}
		if len(positions) < 2 {
			return nil, &CompileError{Kind: PatternShapeMismatch,
				Message: "ligature rule needs at least two input positions"}
		}
		var replGID GID
		if r.Repl != nil && len(r.Repl.Classes) > 0 && len(r.Repl.Classes[0].Glyphs) > 0 {
			replGID = r.Repl.Classes[0].Glyphs[0].GID
		}

		it := NewCrossProductIter(positions)
		for {
			tuple, ok := it.Next()
			if !ok {
				break
			}
			entries = append(entries, entry{seq: tuple, repl: replGID})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.seq[0] != b.seq[0] {
			return a.seq[0] < b.seq[0]
		}
		if len(a.seq) != len(b.seq) {
			return len(a.seq) > len(b.seq) // longest first
		}
		for k := 1; k < len(a.seq); k++ {
			if a.seq[k] != b.seq[k] {
				return a.seq[k] < b.seq[k]
			}
		}
		return false
	})

	// de-duplicate identical (seq, repl); conflicting repl for the same
	// seq is fatal.
	type key struct {
		first GID
		rest  string
	}
	seen := map[string]GID{}
	var dedup []entry
	for _, e := range entries {
		k := ligKey(e.seq)
		if prevRepl, ok := seen[k]; ok {
			if prevRepl != e.repl {
				return nil, &CompileError{Kind: DuplicateDefinition, Severity: Fatal,
					Message: "conflicting ligature substitution for the same input sequence"}
			}
			continue
		}
		seen[k] = e.repl
		dedup = append(dedup, e)
	}

	firstGlyphs := map[GID]bool{}
	order := []GID{}
	byFirst := map[GID][]entry{}
	for _, e := range dedup {
		g := e.seq[0]
		if !firstGlyphs[g] {
			firstGlyphs[g] = true
			order = append(order, g)
		}
		byFirst[g] = append(byFirst[g], e)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	cov := make(coverage.Table, len(order))
	repl := make([][]gtab.Ligature, len(order))
	for i, g := range order {
		cov[g] = i
		var ligs []gtab.Ligature
		for _, e := range byFirst[g] {
			in := make([]glyph.ID, len(e.seq)-1)
			for k := 1; k < len(e.seq); k++ {
				in[k-1] = glyph.ID(e.seq[k])
			}
			ligs = append(ligs, gtab.Ligature{In: in, Out: glyph.ID(e.repl)})
		}
		repl[i] = ligs
	}

	return []gtab.Subtable{&gtab.Gsub4_1{Cov: cov, Repl: repl}}, nil
}

func ligKey(seq []GID) string {
	buf := make([]byte, 0, 2*len(seq))
	for _, g := range seq {
		buf = append(buf, byte(g>>8), byte(g))
	}
	return string(buf)
}

// compileChainContext implements §4.4.5, representing every rule as its
// own coverage-set based [gtab.ChainedSeqContext3] subtable. This keeps
// the common one-rule-per-statement case (the scenario this compiler is
// grounded on) simple to assemble correctly; rules that share backtrack
// and lookahead coverage are not currently folded into shared rule sets.
func (d *Driver) compileChainContext(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	var out []gtab.Subtable
	for _, r := range acc.Rules {
		sub, err := d.compileOneChainContextRule(acc, r)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func (d *Driver) compileOneChainContextRule(acc *Accumulator, r *Rule) (gtab.Subtable, *CompileError) {
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
		switch {
		case len(pos.LookupLabels) > 0:
			for _, lbl := range pos.LookupLabels {
				idx := d.Gsub.Reserve(lbl)
				actions = append(actions, gtab.SeqLookup{SequenceIndex: uint16(i), LookupListIndex: idx})
			}
		case r.Repl != nil:
			replGID := firstReplGID(r.Repl, i, inputPositions)
			anon, idx := d.getOrCreateAnonSub(GSUBTable, LkpSingle, acc.LkpFlag, acc.MarkSetIndex, acc.Feature)
			for _, g := range pos.Glyphs {
				anon.AddRule(singleGPat(g.GID), singleGPat(replGID))
			}
			actions = append(actions, gtab.SeqLookup{SequenceIndex: uint16(i), LookupListIndex: idx})
		}
	}

	return &gtab.ChainedSeqContext3{
		Backtrack: backtrack,
		Input:     input,
		Lookahead: lookahead,
		Actions:   actions,
	}, nil
}

// firstReplGID picks the replacement glyph aligned with the i-th input
// position for an inline replacement rule. Most inline replacements
// mark exactly one position and supply one replacement class, so the
// common case is simply the first (and only) replacement glyph.
func firstReplGID(repl *GPat, i int, inputPositions []*ClassRec) GID {
	if i < len(repl.Classes) && len(repl.Classes[i].Glyphs) > 0 {
		return repl.Classes[i].Glyphs[0].GID
	}
	if len(repl.Classes) > 0 && len(repl.Classes[0].Glyphs) > 0 {
		return repl.Classes[0].Glyphs[0].GID
	}
	return GIDUndef
}

func singleGPat(gid GID) *GPat {
	return &GPat{Classes: []*ClassRec{{Glyphs: []GlyphPos{{GID: gid}}, Role: RoleInput}}}
}

func setsFor(positions []*ClassRec) []coverage.Set {
	out := make([]coverage.Set, len(positions))
	for i, p := range positions {
		s := make(coverage.Set, len(p.Glyphs))
		for _, g := range p.Glyphs {
			s[g.GID] = true
		}
		out[i] = s
	}
	return out
}

// compileReverseChain implements §4.4.6: exactly one input position,
// substitutions array parallel to the sorted input coverage.
func (d *Driver) compileReverseChain(acc *Accumulator) ([]gtab.Subtable, *CompileError) {
	if len(acc.Rules) == 0 {
		return nil, nil
	}
	// Reverse chaining rules are each a single-glyph-in/out statement;
	// every rule in the accumulator is folded into the input coverage of
	// one subtable (this assumes all rules share backtrack/lookahead,
	// which matches how such rules are grouped inside one lookup block).
	r0 := acc.Rules[0]
	backtrack := setsToTables(setsFor(r0.Targ.Backtrack()))
	lookahead := setsToTables(setsFor(r0.Targ.Lookahead()))

	type entry struct {
		targ, repl GID
	}
	var entries []entry
	for _, r := range acc.Rules {
		input := r.Targ.Input()
		if len(input) != 1 {
			return nil, &CompileError{Kind: ContextViolation, Severity: Fatal,
				Message: "reverse chaining substitution allows exactly one input position"}
		}
		if r.Repl == nil || len(r.Repl.Classes) == 0 {
			return nil, &CompileError{Kind: PatternShapeMismatch, Message: "reverse chaining rule has no replacement"}
		}
		targGlyphs := input[0].Glyphs
		replGlyphs := r.Repl.Classes[0].Glyphs
		for i, tg := range targGlyphs {
			rg := replGlyphs[0].GID
			if len(replGlyphs) == len(targGlyphs) {
				rg = replGlyphs[i].GID
			}
			entries = append(entries, entry{targ: tg.GID, repl: rg})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].targ < entries[j].targ })

	input := make(coverage.Table, len(entries))
	subst := make([]glyph.ID, len(entries))
	for i, e := range entries {
		input[e.targ] = i
		subst[i] = glyph.ID(e.repl)
	}

	return []gtab.Subtable{&gtab.Gsub8_1{
		Input:              input,
		Backtrack:          backtrack,
		Lookahead:          lookahead,
		SubstituteGlyphIDs: subst,
	}}, nil
}

func setsToTables(sets []coverage.Set) []coverage.Table {
	out := make([]coverage.Table, len(sets))
	for i, s := range sets {
		out[i] = s.ToTable()
	}
	return out
}
