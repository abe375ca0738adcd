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

// Contextual and chained contextual subtables (GSUB lookup types 5 and 6,
// GPOS lookup types 7 and 8) do not themselves modify the glyph sequence.
// Instead, a match registers a set of nested lookups on ctx.stack, which
// ctx.at (see layout.go) then applies at the matched positions.  This
// mirrors how the reverse-chaining subtable [Gsub8_1] locates its context,
// generalised to forward matching and to the indirection through nested
// lookups.

package gtab

import (
	"seehuhn.de/go/feacomp/glyph"
	"seehuhn.de/go/feacomp/opentype/classdef"
	"seehuhn.de/go/feacomp/opentype/coverage"
	"seehuhn.de/go/feacomp/parser"
)

// matchForwardGlyphs skips glyphs ignored by keep and tries to match n
// consecutive kept glyphs starting at or after start, each tested in turn
// by match.  It returns the matched positions (in increasing order) and
// whether all n positions matched before reaching limit.
func matchForwardGlyphs(seq []glyph.Info, keep *keepFunc, start, limit, n int, match func(i, pos int) bool) ([]int, bool) {
	if n == 0 {
		return nil, true
	}
	positions := make([]int, 0, n)
	p := start
	for i := 0; i < n; i++ {
		for p < limit && !keep.Keep(seq[p].GID) {
			p++
		}
		if p >= limit || !match(i, p) {
			return nil, false
		}
		positions = append(positions, p)
		p++
	}
	return positions, true
}

// matchBackwardGlyphs is the mirror image of matchForwardGlyphs, searching
// backwards from start down to (and including) limit.
func matchBackwardGlyphs(seq []glyph.Info, keep *keepFunc, start, limit, n int, match func(i, pos int) bool) bool {
	p := start
	for i := 0; i < n; i++ {
		for p >= limit && !keep.Keep(seq[p].GID) {
			p--
		}
		if p < limit || !match(i, p) {
			return false
		}
		p--
	}
	return true
}

func reverseGIDs(xs []glyph.ID) []glyph.ID {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
	return xs
}

func reverseUint16s(xs []uint16) []uint16 {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
	return xs
}

func reverseCoverageSets(xs []coverage.Set) []coverage.Set {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
	return xs
}

func readSeqLookupRecords(p *parser.Parser, count int) ([]SeqLookup, error) {
	actions := make([]SeqLookup, count)
	for i := range actions {
		seqIdx, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		lookupIdx, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		actions[i] = SeqLookup{SequenceIndex: seqIdx, LookupListIndex: LookupIndex(lookupIdx)}
	}
	return actions, nil
}

func encodeSeqLookupRecords(actions []SeqLookup) []byte {
	buf := make([]byte, 0, 4*len(actions))
	for _, a := range actions {
		buf = append(buf,
			byte(a.SequenceIndex>>8), byte(a.SequenceIndex),
			byte(a.LookupListIndex>>8), byte(a.LookupListIndex),
		)
	}
	return buf
}

// registerNested pushes the nested lookups of a contextual match onto
// ctx.stack and returns the position after the last matched input glyph,
// skipping any glyphs after it which are ignored by ctx.keep.
func registerNested(ctx *Context, firstPos int, rest []int, actions []SeqLookup) int {
	allPos := make([]int, 0, 1+len(rest))
	allPos = append(allPos, firstPos)
	allPos = append(allPos, rest...)
	end := allPos[len(allPos)-1] + 1
	ctx.stack = append(ctx.stack, &nested{
		InputPos: allPos,
		Actions:  append([]SeqLookup(nil), actions...),
		EndPos:   end,
	})
	next := end
	for next < len(ctx.seq) && !ctx.keep.Keep(ctx.seq[next].GID) {
		next++
	}
	return next
}

// ---------------------------------------------------------------------
// Format 1: glyph-based contextual subtables.
// ---------------------------------------------------------------------

// SeqRule is one rule inside a [SeqContext1] subtable.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-rule-table
type SeqRule struct {
	Input   []glyph.ID // glyphs at positions 1, 2, ... (position 0 comes from Cov)
	Actions []SeqLookup
}

// SeqContext1 is a Sequence Context subtable (format 1), used for GSUB
// lookup type 5 and GPOS lookup type 7.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-context-format-1-simple-glyph-contexts
type SeqContext1 struct {
	Cov   coverage.Table
	Rules [][]*SeqRule // indexed by coverage index of the first input glyph
}

func readSeqRule(p *parser.Parser) (*SeqRule, error) {
	glyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	seqLookupCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	n := 0
	if glyphCount > 0 {
		n = int(glyphCount) - 1
	}
	input := make([]glyph.ID, n)
	for i := range input {
		v, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		input[i] = glyph.ID(v)
	}
	actions, err := readSeqLookupRecords(p, int(seqLookupCount))
	if err != nil {
		return nil, err
	}
	return &SeqRule{Input: input, Actions: actions}, nil
}

func readSeqContext1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	ruleSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}

	rules := make([][]*SeqRule, len(ruleSetOffsets))
	for i, offs := range ruleSetOffsets {
		if offs == 0 {
			continue
		}
		setPos := subtablePos + int64(offs)
		if err := p.SeekPos(setPos); err != nil {
			return nil, err
		}
		ruleOffsets, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
		set := make([]*SeqRule, len(ruleOffsets))
		for j, roffs := range ruleOffsets {
			if err := p.SeekPos(setPos + int64(roffs)); err != nil {
				return nil, err
			}
			rule, err := readSeqRule(p)
			if err != nil {
				return nil, err
			}
			set[j] = rule
		}
		rules[i] = set
	}
	if len(cov) > len(rules) {
		cov.Prune(len(rules))
	} else {
		rules = rules[:len(cov)]
	}

	return &SeqContext1{Cov: cov, Rules: rules}, nil
}

// Apply implements the [Subtable] interface.
func (l *SeqContext1) Apply(ctx *Context, a, b int) int {
	seq := ctx.seq
	keep := ctx.keep

	idx, ok := l.Cov[seq[a].GID]
	if !ok || idx >= len(l.Rules) {
		return -1
	}
	for _, rule := range l.Rules[idx] {
		positions, ok := matchForwardGlyphs(seq, keep, a+1, b, len(rule.Input), func(i, pos int) bool {
			return seq[pos].GID == rule.Input[i]
		})
		if !ok {
			continue
		}
		return registerNested(ctx, a, positions, rule.Actions)
	}
	return -1
}

func (l *SeqContext1) encodeLen() int {
	return len(l.encode())
}

func (l *SeqContext1) encode() []byte {
	total := 6
	coverageOffset := total
	total += l.Cov.EncodeLen()
	total += 2 * len(l.Rules)

	ruleSetOffsets := make([]int, len(l.Rules))
	var ruleSetBufs [][]byte
	for i, set := range l.Rules {
		if len(set) == 0 {
			continue
		}
		ruleSetOffsets[i] = total
		buf := encodeSeqRuleSet(set)
		total += len(buf)
		ruleSetBufs = append(ruleSetBufs, buf)
	}

	res := make([]byte, 0, total)
	res = append(res,
		0, 1, // format
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(len(l.Rules)>>8), byte(len(l.Rules)),
	)
	for _, offs := range ruleSetOffsets {
		res = append(res, byte(offs>>8), byte(offs))
	}
	res = append(res, l.Cov.Encode()...)
	for _, buf := range ruleSetBufs {
		res = append(res, buf...)
	}
	return res
}

func encodeSeqRuleSet(set []*SeqRule) []byte {
	total := 2 + 2*len(set)
	ruleOffsets := make([]int, len(set))
	var ruleBufs [][]byte
	for i, rule := range set {
		ruleOffsets[i] = total
		buf := encodeSeqRule(rule.Input, rule.Actions)
		total += len(buf)
		ruleBufs = append(ruleBufs, buf)
	}
	res := make([]byte, 0, total)
	res = append(res, byte(len(set)>>8), byte(len(set)))
	for _, offs := range ruleOffsets {
		res = append(res, byte(offs>>8), byte(offs))
	}
	for _, buf := range ruleBufs {
		res = append(res, buf...)
	}
	return res
}

func encodeSeqRule(input []glyph.ID, actions []SeqLookup) []byte {
	glyphCount := len(input) + 1
	res := make([]byte, 0, 4+2*len(input)+4*len(actions))
	res = append(res,
		byte(glyphCount>>8), byte(glyphCount),
		byte(len(actions)>>8), byte(len(actions)),
	)
	for _, gid := range input {
		res = append(res, byte(gid>>8), byte(gid))
	}
	res = append(res, encodeSeqLookupRecords(actions)...)
	return res
}

// ---------------------------------------------------------------------
// Format 2: class-based contextual subtables.
// ---------------------------------------------------------------------

// ClassSeqRule is one rule inside a [SeqContext2] subtable.
type ClassSeqRule struct {
	Input   []uint16 // classdef classes at positions 1, 2, ...
	Actions []SeqLookup
}

// SeqContext2 is a Sequence Context subtable (format 2), used for GSUB
// lookup type 5 and GPOS lookup type 7.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-context-format-2-class-based-glyph-contexts
type SeqContext2 struct {
	Cov   coverage.Table
	Input classdef.Table
	Rules [][]*ClassSeqRule // indexed by the Input class of the first matched glyph
}

func readClassSeqRule(p *parser.Parser) (*ClassSeqRule, error) {
	glyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	seqLookupCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	n := 0
	if glyphCount > 0 {
		n = int(glyphCount) - 1
	}
	input := make([]uint16, n)
	for i := range input {
		input[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}
	actions, err := readSeqLookupRecords(p, int(seqLookupCount))
	if err != nil {
		return nil, err
	}
	return &ClassSeqRule{Input: input, Actions: actions}, nil
}

func readSeqContext2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	coverageOffset := int64(buf[0])<<8 | int64(buf[1])
	classDefOffset := int64(buf[2])<<8 | int64(buf[3])

	ruleSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+coverageOffset)
	if err != nil {
		return nil, err
	}
	input, err := classdef.Read(p, subtablePos+classDefOffset)
	if err != nil {
		return nil, err
	}

	rules := make([][]*ClassSeqRule, len(ruleSetOffsets))
	for i, offs := range ruleSetOffsets {
		if offs == 0 {
			continue
		}
		setPos := subtablePos + int64(offs)
		if err := p.SeekPos(setPos); err != nil {
			return nil, err
		}
		ruleOffsets, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
		set := make([]*ClassSeqRule, len(ruleOffsets))
		for j, roffs := range ruleOffsets {
			if err := p.SeekPos(setPos + int64(roffs)); err != nil {
				return nil, err
			}
			rule, err := readClassSeqRule(p)
			if err != nil {
				return nil, err
			}
			set[j] = rule
		}
		rules[i] = set
	}

	return &SeqContext2{Cov: cov, Input: input, Rules: rules}, nil
}

// Apply implements the [Subtable] interface.
func (l *SeqContext2) Apply(ctx *Context, a, b int) int {
	seq := ctx.seq
	keep := ctx.keep

	if _, ok := l.Cov[seq[a].GID]; !ok {
		return -1
	}
	class := l.Input[seq[a].GID]
	if int(class) >= len(l.Rules) {
		return -1
	}
	for _, rule := range l.Rules[class] {
		positions, ok := matchForwardGlyphs(seq, keep, a+1, b, len(rule.Input), func(i, pos int) bool {
			return l.Input[seq[pos].GID] == rule.Input[i]
		})
		if !ok {
			continue
		}
		return registerNested(ctx, a, positions, rule.Actions)
	}
	return -1
}

func (l *SeqContext2) encodeLen() int {
	return len(l.encode())
}

func (l *SeqContext2) encode() []byte {
	total := 8
	coverageOffset := total
	total += l.Cov.EncodeLen()
	classDefOffset := total
	total += l.Input.AppendLen()
	total += 2 * len(l.Rules)

	ruleSetOffsets := make([]int, len(l.Rules))
	var ruleSetBufs [][]byte
	for i, set := range l.Rules {
		if len(set) == 0 {
			continue
		}
		ruleSetOffsets[i] = total
		buf := encodeClassSeqRuleSet(set)
		total += len(buf)
		ruleSetBufs = append(ruleSetBufs, buf)
	}

	res := make([]byte, 0, total)
	res = append(res,
		0, 2, // format
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(classDefOffset>>8), byte(classDefOffset),
		byte(len(l.Rules)>>8), byte(len(l.Rules)),
	)
	for _, offs := range ruleSetOffsets {
		res = append(res, byte(offs>>8), byte(offs))
	}
	res = append(res, l.Cov.Encode()...)
	res = l.Input.Append(res)
	for _, buf := range ruleSetBufs {
		res = append(res, buf...)
	}
	return res
}

func encodeClassSeqRuleSet(set []*ClassSeqRule) []byte {
	total := 2 + 2*len(set)
	ruleOffsets := make([]int, len(set))
	var ruleBufs [][]byte
	for i, rule := range set {
		ruleOffsets[i] = total
		buf := encodeClassSeqRule(rule.Input, rule.Actions)
		total += len(buf)
		ruleBufs = append(ruleBufs, buf)
	}
	res := make([]byte, 0, total)
	res = append(res, byte(len(set)>>8), byte(len(set)))
	for _, offs := range ruleOffsets {
		res = append(res, byte(offs>>8), byte(offs))
	}
	for _, buf := range ruleBufs {
		res = append(res, buf...)
	}
	return res
}

func encodeClassSeqRule(input []uint16, actions []SeqLookup) []byte {
	glyphCount := len(input) + 1
	res := make([]byte, 0, 4+2*len(input)+4*len(actions))
	res = append(res,
		byte(glyphCount>>8), byte(glyphCount),
		byte(len(actions)>>8), byte(len(actions)),
	)
	for _, class := range input {
		res = append(res, byte(class>>8), byte(class))
	}
	res = append(res, encodeSeqLookupRecords(actions)...)
	return res
}

// ---------------------------------------------------------------------
// Format 3: coverage-based contextual subtables.
// ---------------------------------------------------------------------

// SeqContext3 is a Sequence Context subtable (format 3), used for GSUB
// lookup type 5 and GPOS lookup type 7.  Unlike formats 1 and 2, a format 3
// subtable describes a single rule directly, with one coverage set per
// input position.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-context-format-3-coverage-based-glyph-contexts
type SeqContext3 struct {
	Input   []coverage.Set // one set per input position, Input[0] for the first glyph
	Actions []SeqLookup
}

func readSeqContext3(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	glyphCount := int(buf[0])<<8 | int(buf[1])
	seqLookupCount := int(buf[2])<<8 | int(buf[3])

	coverageOffsets := make([]uint16, glyphCount)
	for i := range coverageOffsets {
		coverageOffsets[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}
	actions, err := readSeqLookupRecords(p, seqLookupCount)
	if err != nil {
		return nil, err
	}

	input := make([]coverage.Set, glyphCount)
	for i, offs := range coverageOffsets {
		input[i], err = coverage.ReadSet(p, subtablePos+int64(offs))
		if err != nil {
			return nil, err
		}
	}

	return &SeqContext3{Input: input, Actions: actions}, nil
}

// Apply implements the [Subtable] interface.
func (l *SeqContext3) Apply(ctx *Context, a, b int) int {
	seq := ctx.seq
	keep := ctx.keep

	if len(l.Input) == 0 || !l.Input[0][seq[a].GID] {
		return -1
	}
	positions, ok := matchForwardGlyphs(seq, keep, a+1, b, len(l.Input)-1, func(i, pos int) bool {
		return l.Input[i+1][seq[pos].GID]
	})
	if !ok {
		return -1
	}
	return registerNested(ctx, a, positions, l.Actions)
}

func (l *SeqContext3) encodeLen() int {
	return len(l.encode())
}

func (l *SeqContext3) encode() []byte {
	glyphCount := len(l.Input)
	total := 4 + 2*glyphCount + 4*len(l.Actions)

	coverageOffsets := make([]int, glyphCount)
	var covBufs [][]byte
	for i, set := range l.Input {
		tbl := set.ToTable()
		coverageOffsets[i] = total
		buf := tbl.Encode()
		total += len(buf)
		covBufs = append(covBufs, buf)
	}

	res := make([]byte, 0, total)
	res = append(res,
		0, 3, // format
		byte(glyphCount>>8), byte(glyphCount),
		byte(len(l.Actions)>>8), byte(len(l.Actions)),
	)
	for _, offs := range coverageOffsets {
		res = append(res, byte(offs>>8), byte(offs))
	}
	res = append(res, encodeSeqLookupRecords(l.Actions)...)
	for _, buf := range covBufs {
		res = append(res, buf...)
	}
	return res
}

// ---------------------------------------------------------------------
// Chained contextual subtables, format 1: glyph-based.
// ---------------------------------------------------------------------

// ChainedSeqRule is one rule inside a [ChainedSeqContext1] subtable.
//
// Backtrack is ordered closest-first (Backtrack[0] is the glyph immediately
// before the matched input); Lookahead is ordered closest-first as well
// (Lookahead[0] is the glyph immediately after the matched input).
type ChainedSeqRule struct {
	Backtrack []glyph.ID
	Input     []glyph.ID
	Lookahead []glyph.ID
	Actions   []SeqLookup
}

// ChainedSeqContext1 is a Chained Sequence Context subtable (format 1),
// used for GSUB lookup type 6 and GPOS lookup type 8.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-1-simple-glyph-contexts
type ChainedSeqContext1 struct {
	Cov   coverage.Table
	Rules [][]*ChainedSeqRule // indexed by coverage index of the first input glyph
}

func readChainedSeqRule(p *parser.Parser) (*ChainedSeqRule, error) {
	backtrackGlyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	backtrack := make([]glyph.ID, backtrackGlyphCount)
	for i := range backtrack {
		v, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		backtrack[i] = glyph.ID(v)
	}
	backtrack = reverseGIDs(backtrack) // stored farthest-first; we want closest-first

	inputGlyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	n := 0
	if inputGlyphCount > 0 {
		n = int(inputGlyphCount) - 1
	}
	input := make([]glyph.ID, n)
	for i := range input {
		v, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		input[i] = glyph.ID(v)
	}

	lookaheadGlyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	lookahead := make([]glyph.ID, lookaheadGlyphCount)
	for i := range lookahead {
		v, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		lookahead[i] = glyph.ID(v)
	}

	seqLookupCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	actions, err := readSeqLookupRecords(p, int(seqLookupCount))
	if err != nil {
		return nil, err
	}

	return &ChainedSeqRule{
		Backtrack: backtrack,
		Input:     input,
		Lookahead: lookahead,
		Actions:   actions,
	}, nil
}

func readChainedSeqContext1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	ruleSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}

	rules := make([][]*ChainedSeqRule, len(ruleSetOffsets))
	for i, offs := range ruleSetOffsets {
		if offs == 0 {
			continue
		}
		setPos := subtablePos + int64(offs)
		if err := p.SeekPos(setPos); err != nil {
			return nil, err
		}
		ruleOffsets, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
		set := make([]*ChainedSeqRule, len(ruleOffsets))
		for j, roffs := range ruleOffsets {
			if err := p.SeekPos(setPos + int64(roffs)); err != nil {
				return nil, err
			}
			rule, err := readChainedSeqRule(p)
			if err != nil {
				return nil, err
			}
			set[j] = rule
		}
		rules[i] = set
	}
	if len(cov) > len(rules) {
		cov.Prune(len(rules))
	} else {
		rules = rules[:len(cov)]
	}

	return &ChainedSeqContext1{Cov: cov, Rules: rules}, nil
}

// Apply implements the [Subtable] interface.
func (l *ChainedSeqContext1) Apply(ctx *Context, a, b int) int {
	seq := ctx.seq
	keep := ctx.keep

	idx, ok := l.Cov[seq[a].GID]
	if !ok || idx >= len(l.Rules) {
		return -1
	}
ruleLoop:
	for _, rule := range l.Rules[idx] {
		if !matchBackwardGlyphs(seq, keep, a-1, 0, len(rule.Backtrack), func(i, pos int) bool {
			return seq[pos].GID == rule.Backtrack[i]
		}) {
			continue
		}

		positions, ok := matchForwardGlyphs(seq, keep, a+1, b, len(rule.Input), func(i, pos int) bool {
			return seq[pos].GID == rule.Input[i]
		})
		if !ok {
			continue
		}

		lookaheadStart := a + 1
		if len(positions) > 0 {
			lookaheadStart = positions[len(positions)-1] + 1
		}
		if _, ok := matchForwardGlyphs(seq, keep, lookaheadStart, b, len(rule.Lookahead), func(i, pos int) bool {
			return seq[pos].GID == rule.Lookahead[i]
		}); !ok {
			continue ruleLoop
		}

		return registerNested(ctx, a, positions, rule.Actions)
	}
	return -1
}

func (l *ChainedSeqContext1) encodeLen() int {
	return len(l.encode())
}

func (l *ChainedSeqContext1) encode() []byte {
	total := 6
	coverageOffset := total
	total += l.Cov.EncodeLen()
	total += 2 * len(l.Rules)

	ruleSetOffsets := make([]int, len(l.Rules))
	var ruleSetBufs [][]byte
	for i, set := range l.Rules {
		if len(set) == 0 {
			continue
		}
		ruleSetOffsets[i] = total
		buf := encodeChainedSeqRuleSet(set)
		total += len(buf)
		ruleSetBufs = append(ruleSetBufs, buf)
	}

	res := make([]byte, 0, total)
	res = append(res,
		0, 1, // format
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(len(l.Rules)>>8), byte(len(l.Rules)),
	)
	for _, offs := range ruleSetOffsets {
		res = append(res, byte(offs>>8), byte(offs))
	}
	res = append(res, l.Cov.Encode()...)
	for _, buf := range ruleSetBufs {
		res = append(res, buf...)
	}
	return res
}

func encodeChainedSeqRuleSet(set []*ChainedSeqRule) []byte {
	total := 2 + 2*len(set)
	ruleOffsets := make([]int, len(set))
	var ruleBufs [][]byte
	for i, rule := range set {
		ruleOffsets[i] = total
		buf := encodeChainedSeqRule(rule)
		total += len(buf)
		ruleBufs = append(ruleBufs, buf)
	}
	res := make([]byte, 0, total)
	res = append(res, byte(len(set)>>8), byte(len(set)))
	for _, offs := range ruleOffsets {
		res = append(res, byte(offs>>8), byte(offs))
	}
	for _, buf := range ruleBufs {
		res = append(res, buf...)
	}
	return res
}

func encodeChainedSeqRule(rule *ChainedSeqRule) []byte {
	backtrack := append([]glyph.ID(nil), rule.Backtrack...)
	reverseGIDs(backtrack) // closest-first -> farthest-first on the wire

	glyphCount := len(rule.Input) + 1
	res := make([]byte, 0, 64)
	res = append(res, byte(len(backtrack)>>8), byte(len(backtrack)))
	for _, gid := range backtrack {
		res = append(res, byte(gid>>8), byte(gid))
	}
	res = append(res, byte(glyphCount>>8), byte(glyphCount))
	for _, gid := range rule.Input {
		res = append(res, byte(gid>>8), byte(gid))
	}
	res = append(res, byte(len(rule.Lookahead)>>8), byte(len(rule.Lookahead)))
	for _, gid := range rule.Lookahead {
		res = append(res, byte(gid>>8), byte(gid))
	}
	res = append(res, byte(len(rule.Actions)>>8), byte(len(rule.Actions)))
	res = append(res, encodeSeqLookupRecords(rule.Actions)...)
	return res
}

// ---------------------------------------------------------------------
// Chained contextual subtables, format 2: class-based.
// ---------------------------------------------------------------------

// ChainedClassSeqRule is one rule inside a [ChainedSeqContext2] subtable.
// Backtrack and Lookahead use the same closest-first ordering convention as
// [ChainedSeqRule].
type ChainedClassSeqRule struct {
	Backtrack []uint16
	Input     []uint16
	Lookahead []uint16
	Actions   []SeqLookup
}

// ChainedSeqContext2 is a Chained Sequence Context subtable (format 2),
// used for GSUB lookup type 6 and GPOS lookup type 8.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-2-class-based-glyph-contexts
type ChainedSeqContext2 struct {
	Cov       coverage.Table
	Backtrack classdef.Table
	Input     classdef.Table
	Lookahead classdef.Table
	Rules     [][]*ChainedClassSeqRule // indexed by the Input class of the first matched glyph
}

func readChainedClassSeqRule(p *parser.Parser) (*ChainedClassSeqRule, error) {
	backtrackGlyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	backtrack := make([]uint16, backtrackGlyphCount)
	for i := range backtrack {
		backtrack[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}
	backtrack = reverseUint16s(backtrack)

	inputGlyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	n := 0
	if inputGlyphCount > 0 {
		n = int(inputGlyphCount) - 1
	}
	input := make([]uint16, n)
	for i := range input {
		input[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}

	lookaheadGlyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	lookahead := make([]uint16, lookaheadGlyphCount)
	for i := range lookahead {
		lookahead[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}

	seqLookupCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	actions, err := readSeqLookupRecords(p, int(seqLookupCount))
	if err != nil {
		return nil, err
	}

	return &ChainedClassSeqRule{
		Backtrack: backtrack,
		Input:     input,
		Lookahead: lookahead,
		Actions:   actions,
	}, nil
}

func readChainedSeqContext2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(8)
	if err != nil {
		return nil, err
	}
	coverageOffset := int64(buf[0])<<8 | int64(buf[1])
	backtrackClassDefOffset := int64(buf[2])<<8 | int64(buf[3])
	inputClassDefOffset := int64(buf[4])<<8 | int64(buf[5])
	lookaheadClassDefOffset := int64(buf[6])<<8 | int64(buf[7])

	ruleSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+coverageOffset)
	if err != nil {
		return nil, err
	}
	backtrackClass, err := classdef.Read(p, subtablePos+backtrackClassDefOffset)
	if err != nil {
		return nil, err
	}
	inputClass, err := classdef.Read(p, subtablePos+inputClassDefOffset)
	if err != nil {
		return nil, err
	}
	lookaheadClass, err := classdef.Read(p, subtablePos+lookaheadClassDefOffset)
	if err != nil {
		return nil, err
	}

	rules := make([][]*ChainedClassSeqRule, len(ruleSetOffsets))
	for i, offs := range ruleSetOffsets {
		if offs == 0 {
			continue
		}
		setPos := subtablePos + int64(offs)
		if err := p.SeekPos(setPos); err != nil {
			return nil, err
		}
		ruleOffsets, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
		set := make([]*ChainedClassSeqRule, len(ruleOffsets))
		for j, roffs := range ruleOffsets {
			if err := p.SeekPos(setPos + int64(roffs)); err != nil {
				return nil, err
			}
			rule, err := readChainedClassSeqRule(p)
			if err != nil {
				return nil, err
			}
			set[j] = rule
		}
		rules[i] = set
	}

	return &ChainedSeqContext2{
		Cov:       cov,
		Backtrack: backtrackClass,
		Input:     inputClass,
		Lookahead: lookaheadClass,
		Rules:     rules,
	}, nil
}

// Apply implements the [Subtable] interface.
func (l *ChainedSeqContext2) Apply(ctx *Context, a, b int) int {
	seq := ctx.seq
	keep := ctx.keep

	if _, ok := l.Cov[seq[a].GID]; !ok {
		return -1
	}
	class := l.Input[seq[a].GID]
	if int(class) >= len(l.Rules) {
		return -1
	}
ruleLoop:
	for _, rule := range l.Rules[class] {
		if !matchBackwardGlyphs(seq, keep, a-1, 0, len(rule.Backtrack), func(i, pos int) bool {
			return l.Backtrack[seq[pos].GID] == rule.Backtrack[i]
		}) {
			continue
		}

		positions, ok := matchForwardGlyphs(seq, keep, a+1, b, len(rule.Input), func(i, pos int) bool {
			return l.Input[seq[pos].GID] == rule.Input[i]
		})
		if !ok {
			continue
		}

		lookaheadStart := a + 1
		if len(positions) > 0 {
			lookaheadStart = positions[len(positions)-1] + 1
		}
		if _, ok := matchForwardGlyphs(seq, keep, lookaheadStart, b, len(rule.Lookahead), func(i, pos int) bool {
			return l.Lookahead[seq[pos].GID] == rule.Lookahead[i]
		}); !ok {
			continue ruleLoop
		}

		return registerNested(ctx, a, positions, rule.Actions)
	}
	return -1
}

func (l *ChainedSeqContext2) encodeLen() int {
	return len(l.encode())
}

func (l *ChainedSeqContext2) encode() []byte {
	total := 10
	coverageOffset := total
	total += l.Cov.EncodeLen()
	backtrackClassDefOffset := total
	total += l.Backtrack.AppendLen()
	inputClassDefOffset := total
	total += l.Input.AppendLen()
	lookaheadClassDefOffset := total
	total += l.Lookahead.AppendLen()
	total += 2 * len(l.Rules)

	ruleSetOffsets := make([]int, len(l.Rules))
	var ruleSetBufs [][]byte
	for i, set := range l.Rules {
		if len(set) == 0 {
			continue
		}
		ruleSetOffsets[i] = total
		buf := encodeChainedClassSeqRuleSet(set)
		total += len(buf)
		ruleSetBufs = append(ruleSetBufs, buf)
	}

	res := make([]byte, 0, total)
	res = append(res,
		0, 2, // format
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(backtrackClassDefOffset>>8), byte(backtrackClassDefOffset),
		byte(inputClassDefOffset>>8), byte(inputClassDefOffset),
		byte(lookaheadClassDefOffset>>8), byte(lookaheadClassDefOffset),
		byte(len(l.Rules)>>8), byte(len(l.Rules)),
	)
	for _, offs := range ruleSetOffsets {
		res = append(res, byte(offs>>8), byte(offs))
	}
	res = append(res, l.Cov.Encode()...)
	res = l.Backtrack.Append(res)
	res = l.Input.Append(res)
	res = l.Lookahead.Append(res)
	for _, buf := range ruleSetBufs {
		res = append(res, buf...)
	}
	return res
}

func encodeChainedClassSeqRuleSet(set []*ChainedClassSeqRule) []byte {
	total := 2 + 2*len(set)
	ruleOffsets := make([]int, len(set))
	var ruleBufs [][]byte
	for i, rule := range set {
		ruleOffsets[i] = total
		buf := encodeChainedClassSeqRule(rule)
		total += len(buf)
		ruleBufs = append(ruleBufs, buf)
	}
	res := make([]byte, 0, total)
	res = append(res, byte(len(set)>>8), byte(len(set)))
	for _, offs := range ruleOffsets {
		res = append(res, byte(offs>>8), byte(offs))
	}
	for _, buf := range ruleBufs {
		res = append(res, buf...)
	}
	return res
}

func encodeChainedClassSeqRule(rule *ChainedClassSeqRule) []byte {
	backtrack := append([]uint16(nil), rule.Backtrack...)
	reverseUint16s(backtrack)

	glyphCount := len(rule.Input) + 1
	res := make([]byte, 0, 64)
	res = append(res, byte(len(backtrack)>>8), byte(len(backtrack)))
	for _, class := range backtrack {
		res = append(res, byte(class>>8), byte(class))
	}
	res = append(res, byte(glyphCount>>8), byte(glyphCount))
	for _, class := range rule.Input {
		res = append(res, byte(class>>8), byte(class))
	}
	res = append(res, byte(len(rule.Lookahead)>>8), byte(len(rule.Lookahead)))
	for _, class := range rule.Lookahead {
		res = append(res, byte(class>>8), byte(class))
	}
	res = append(res, byte(len(rule.Actions)>>8), byte(len(rule.Actions)))
	res = append(res, encodeSeqLookupRecords(rule.Actions)...)
	return res
}

// ---------------------------------------------------------------------
// Chained contextual subtables, format 3: coverage-based.
// ---------------------------------------------------------------------

// ChainedSeqContext3 is a Chained Sequence Context subtable (format 3),
// used for GSUB lookup type 6 and GPOS lookup type 8.  Like [SeqContext3],
// a format 3 subtable describes a single rule directly.  Backtrack is
// ordered closest-first.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-3-coverage-based-glyph-contexts
type ChainedSeqContext3 struct {
	Backtrack []coverage.Set
	Input     []coverage.Set
	Lookahead []coverage.Set
	Actions   []SeqLookup
}

func readCoverageSetList(p *parser.Parser, subtablePos int64, count int) ([]coverage.Set, error) {
	offsets := make([]uint16, count)
	for i := range offsets {
		v, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		offsets[i] = v
	}
	sets := make([]coverage.Set, count)
	for i, offs := range offsets {
		set, err := coverage.ReadSet(p, subtablePos+int64(offs))
		if err != nil {
			return nil, err
		}
		sets[i] = set
	}
	return sets, nil
}

func readChainedSeqContext3(p *parser.Parser, subtablePos int64) (Subtable, error) {
	backtrackGlyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	backtrack, err := readCoverageSetList(p, subtablePos, int(backtrackGlyphCount))
	if err != nil {
		return nil, err
	}
	reverseCoverageSets(backtrack)

	inputGlyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	input, err := readCoverageSetList(p, subtablePos, int(inputGlyphCount))
	if err != nil {
		return nil, err
	}

	lookaheadGlyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	lookahead, err := readCoverageSetList(p, subtablePos, int(lookaheadGlyphCount))
	if err != nil {
		return nil, err
	}

	seqLookupCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	actions, err := readSeqLookupRecords(p, int(seqLookupCount))
	if err != nil {
		return nil, err
	}

	return &ChainedSeqContext3{
		Backtrack: backtrack,
		Input:     input,
		Lookahead: lookahead,
		Actions:   actions,
	}, nil
}

// Apply implements the [Subtable] interface.
func (l *ChainedSeqContext3) Apply(ctx *Context, a, b int) int {
	seq := ctx.seq
	keep := ctx.keep

	if len(l.Input) == 0 || !l.Input[0][seq[a].GID] {
		return -1
	}

	if !matchBackwardGlyphs(seq, keep, a-1, 0, len(l.Backtrack), func(i, pos int) bool {
		return l.Backtrack[i][seq[pos].GID]
	}) {
		return -1
	}

	positions, ok := matchForwardGlyphs(seq, keep, a+1, b, len(l.Input)-1, func(i, pos int) bool {
		return l.Input[i+1][seq[pos].GID]
	})
	if !ok {
		return -1
	}

	lookaheadStart := a + 1
	if len(positions) > 0 {
		lookaheadStart = positions[len(positions)-1] + 1
	}
	if _, ok := matchForwardGlyphs(seq, keep, lookaheadStart, b, len(l.Lookahead), func(i, pos int) bool {
		return l.Lookahead[i][seq[pos].GID]
	}); !ok {
		return -1
	}

	return registerNested(ctx, a, positions, l.Actions)
}

func (l *ChainedSeqContext3) encodeLen() int {
	return len(l.encode())
}

func (l *ChainedSeqContext3) encode() []byte {
	total := 6 + 2*len(l.Backtrack) + 2*len(l.Input) + 2*len(l.Lookahead) + 4*len(l.Actions)

	backtrack := append([]coverage.Set(nil), l.Backtrack...)
	reverseCoverageSets(backtrack)

	var bufs [][]byte
	collect := func(sets []coverage.Set) []int {
		offs := make([]int, len(sets))
		for i, set := range sets {
			offs[i] = total
			buf := set.ToTable().Encode()
			total += len(buf)
			bufs = append(bufs, buf)
		}
		return offs
	}
	backtrackOffsets := collect(backtrack)
	inputOffsets := collect(l.Input)
	lookaheadOffsets := collect(l.Lookahead)

	res := make([]byte, 0, total)
	res = append(res,
		0, 3, // format
		byte(len(backtrack)>>8), byte(len(backtrack)),
	)
	for _, offs := range backtrackOffsets {
		res = append(res, byte(offs>>8), byte(offs))
	}
	res = append(res, byte(len(l.Input)>>8), byte(len(l.Input)))
	for _, offs := range inputOffsets {
		res = append(res, byte(offs>>8), byte(offs))
	}
	res = append(res, byte(len(l.Lookahead)>>8), byte(len(l.Lookahead)))
	for _, offs := range lookaheadOffsets {
		res = append(res, byte(offs>>8), byte(offs))
	}
	res = append(res, byte(len(l.Actions)>>8), byte(len(l.Actions)))
	res = append(res, encodeSeqLookupRecords(l.Actions)...)
	for _, buf := range bufs {
		res = append(res, buf...)
	}
	return res
}
