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

package gtab

import (
	"math"

	"seehuhn.de/go/feacomp/glyph"
	"seehuhn.de/go/feacomp/opentype/gdef"
)

// SeqLookup is a nested lookup invocation, as used inside contextual and
// chained contextual subtables (GSUB types 5, 6, GPOS types 7, 8).
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-lookup-record
type SeqLookup struct {
	// SequenceIndex is the position in the input sequence (0-based,
	// relative to the lookup's InputPos) where the nested lookup applies.
	SequenceIndex uint16

	// LookupListIndex is the lookup to apply, as an index into the
	// LookupList of the containing Info.
	LookupListIndex LookupIndex
}

// Context carries the state needed while applying a sequence of lookups to a
// glyph sequence.  A Context is created with [NewContext] and driven with
// [Context.Apply]; Subtable implementations receive it as their first
// argument and use ctx.seq/ctx.keep to inspect and modify the glyph sequence
// currently being processed, and ctx.stack to register nested lookups to be
// applied as a result of a contextual match.
type Context struct {
	ll      LookupList
	gdefTab *gdef.Table
	lookups []LookupIndex

	seq   []glyph.Info
	keep  *keepFunc
	stack []*nested
}

// nested records a pending nested-lookup invocation, produced when a
// contextual or chained contextual subtable matches.
type nested struct {
	InputPos []int // positions of the matched input glyphs, in increasing order
	Actions  []SeqLookup
	EndPos   int // one past the last glyph available to the nested lookups
}

// NewContext creates a Context which applies the given lookups, in order,
// to a glyph sequence.  gdefTab, if non-nil, is used to resolve glyph
// classes for the lookup flags.
func NewContext(ll LookupList, gdefTab *gdef.Table, lookups []LookupIndex) *Context {
	return &Context{ll: ll, gdefTab: gdefTab, lookups: lookups}
}

// NewContext creates a Context which applies the given lookups from ll, in
// order, to a glyph sequence.
func (ll LookupList) NewContext(lookups []LookupIndex, gdefTab *gdef.Table) *Context {
	return NewContext(ll, gdefTab, lookups)
}

// ApplyLookup applies a single lookup to the given glyph sequence.
func (ll LookupList) ApplyLookup(seq []glyph.Info, lookupIndex LookupIndex, gdefTab *gdef.Table) []glyph.Info {
	ctx := NewContext(ll, gdefTab, []LookupIndex{lookupIndex})
	return ctx.Apply(seq)
}

// Apply applies all lookups configured on ctx, in order, to seq and returns
// the resulting sequence.
//
// This is the main entry-point for external users of GSUB and GPOS tables.
func (ctx *Context) Apply(seq []glyph.Info) []glyph.Info {
	for _, lookupIndex := range ctx.lookups {
		if int(lookupIndex) >= len(ctx.ll) {
			continue
		}
		lookup := ctx.ll[lookupIndex]

		ctx.seq = seq
		ctx.keep = newKeepFunc(lookup.Meta, ctx.gdefTab)
		ctx.stack = ctx.stack[:0]

		pos := 0
		// TODO(voss): GSUB 8.1 subtables are applied in reverse order.
		for pos < len(ctx.seq) {
			oldTodo := len(ctx.seq) - pos
			pos = ctx.at(lookup, pos)

			// Make sure that every step makes some progress.
			newTodo := len(ctx.seq) - pos
			if newTodo >= oldTodo {
				pos = len(ctx.seq) - oldTodo + 1
			}
		}
		seq = ctx.seq
	}
	return seq
}

// at applies lookup once at position pos, together with any nested lookups
// triggered by a contextual match, and returns the position to continue
// scanning from.
func (ctx *Context) at(lookup *LookupTable, pos int) int {
	if !ctx.keep.Keep(ctx.seq[pos].GID) {
		return pos + 1
	}

	next := ctx.tryApply(lookup, pos, len(ctx.seq))
	if next < 0 {
		return pos + 1
	}

	numActions := 1
	for len(ctx.stack) > 0 && numActions < 64 {
		k := len(ctx.stack) - 1
		top := ctx.stack[k]
		if len(top.Actions) == 0 {
			ctx.stack = ctx.stack[:k]
			continue
		}

		numActions++

		action := top.Actions[0]
		top.Actions = top.Actions[1:]

		if int(action.SequenceIndex) >= len(top.InputPos) {
			continue
		}
		p := top.InputPos[action.SequenceIndex]
		end := top.EndPos

		if int(action.LookupListIndex) >= len(ctx.ll) {
			continue
		}
		nestedLookup := ctx.ll[action.LookupListIndex]

		savedKeep := ctx.keep
		ctx.keep = newKeepFunc(nestedLookup.Meta, ctx.gdefTab)
		if ctx.keep.Keep(ctx.seq[p].GID) {
			ctx.tryApply(nestedLookup, p, end)
		}
		ctx.keep = savedKeep
	}

	return next
}

// tryApply tries the subtables of lookup in order at position a, stopping
// at the first one which matches.  It returns the new position, or -1 if
// none of the subtables match.
func (ctx *Context) tryApply(lookup *LookupTable, a, b int) int {
	for _, sub := range lookup.Subtables {
		if next := sub.Apply(ctx, a, b); next >= 0 {
			return next
		}
	}
	return -1
}

// fixStackInsert updates the pending nested-lookup actions on ctx.stack
// after a subtable replaced the single glyph at position a with k new
// glyphs (k >= 1).
func (ctx *Context) fixStackInsert(a, k int) {
	if k == 1 {
		return
	}
	fixActionStack(ctx.stack, []int{a}, k)
}

// fixStackMerge updates the pending nested-lookup actions on ctx.stack
// after a subtable merged the glyphs at the given positions into a single
// glyph.
func (ctx *Context) fixStackMerge(matchPos []int) {
	if len(matchPos) == 1 {
		return
	}
	fixActionStack(ctx.stack, matchPos, 1)
}

// fixActionStack adjusts the InputPos and EndPos fields of the given nested
// actions after `remove` (a sorted list of positions) has been replaced by
// numInsert new glyphs, starting at remove[0].
func fixActionStack(actions []*nested, remove []int, numInsert int) {
	if len(actions) == 0 {
		return
	}

	minPos := math.MaxInt
	maxPos := math.MinInt
	for _, action := range actions {
		for _, pos := range action.InputPos {
			if pos < minPos {
				minPos = pos
			}
			if pos > maxPos {
				maxPos = pos
			}
		}
		if action.EndPos > maxPos {
			maxPos = action.EndPos
		}
	}

	insertPos := remove[0]
	lastRemoved := remove[len(remove)-1]

	newPos := make([]int, maxPos-minPos+1)
	for i := range newPos {
		newPos[i] = minPos + i
	}
	for l := len(remove) - 1; l >= 0; l-- {
		i := remove[l]
		if i < insertPos {
			panic("inconsistent insert position")
		}
		start := i + 1
		if i >= minPos {
			newPos[i-minPos] = -1
		} else {
			start = minPos
		}
		for j := start; j <= maxPos; j++ {
			newPos[j-minPos]--
		}
	}

	for _, action := range actions {
		numRemoved := 0
		for _, pos := range remove {
			if pos < action.EndPos {
				numRemoved++
			} else {
				break
			}
		}

		var out []int
		in := action.InputPos
		for len(in) > 0 && in[0] < insertPos {
			out = append(out, in[0])
			in = in[1:]
		}

		// Decide whether or not to add the new glyphs to the input glyph
		// sequence of this action. We try to imitate the behavior of the
		// Windows layout engine, but I failed to reverse engineer the rules
		// completely. The rule we are using here is that we include the
		// new glyphs, if and only if one of the endpoints of the match was
		// included in the original action input sequence.
		addToInput := false
		if len(in) > 0 && in[0] == insertPos {
			addToInput = true
		} else {
			for i := 0; i < len(in); i++ {
				if in[i] == lastRemoved {
					addToInput = true
				}
				if in[i] >= lastRemoved {
					break
				}
			}
		}

		if addToInput {
			for j := 0; j < numInsert; j++ {
				out = append(out, insertPos+j)
			}
		}
		for _, pos := range in {
			pos = newPos[pos-minPos]
			if pos >= 0 {
				out = append(out, pos+numInsert)
			}
		}
		action.InputPos = out
		action.EndPos += numInsert - numRemoved
	}
}

// Match describes the effect of applying a lookup to a glyph sequence, for
// use by callers which work with whole matches rather than splicing
// ctx.seq directly.
type Match struct {
	InputPos []int // in increasing order
	Replace  []glyph.Info
	Actions  []SeqLookup
	Next     int
}

// applyMatch splices the replacement glyphs from m into seq at the
// positions given by m.InputPos, starting the search for the replaced
// glyphs at pos.
func applyMatch(seq []glyph.Info, m *Match, pos int) []glyph.Info {
	matchPos := m.InputPos

	oldLen := len(seq)
	oldTailPos := matchPos[len(matchPos)-1] + 1
	tailLen := oldLen - oldTailPos
	newLen := oldLen - len(matchPos) + len(m.Replace)
	newTailPos := newLen - tailLen

	var newText []rune
	for _, offs := range matchPos {
		newText = append(newText, seq[offs].Text...)
	}

	out := seq

	if newLen > oldLen {
		// In case the sequence got longer, move the tail out of the way first.
		out = append(out, make([]glyph.Info, newLen-oldLen)...)
		copy(out[newTailPos:], out[oldTailPos:])
	}

	// copy the ignored glyphs into position, just before the new tail
	removeListIdx := len(matchPos) - 1
	insertPos := newTailPos - 1
	for i := oldTailPos - 1; i >= pos; i-- {
		if removeListIdx >= 0 && matchPos[removeListIdx] == i {
			removeListIdx--
		} else {
			out[insertPos] = seq[i]
			insertPos--
		}
	}

	// copy the new glyphs into position
	if len(m.Replace) > 0 {
		copy(out[pos:], m.Replace)
		out[pos].Text = newText
	}

	if newLen < oldLen {
		// In case the sequence got shorter, move the tail to the new position now.
		copy(out[newTailPos:], out[oldTailPos:])
		out = out[:newLen]
	}
	return out
}
