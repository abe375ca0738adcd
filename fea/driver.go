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
	"seehuhn.de/go/feacomp/opentype/gdef"
	"seehuhn.de/go/feacomp/opentype/gtab"
)

// gFlags tracks global, whole-file authoring state.
type gFlags struct {
	seenFeature         bool
	seenLangSys         bool
	seenGDEFGC          bool
	seenIgnoreClassFlag bool
	seenMarkClassFlag   bool
	seenNonDFLTScriptLang bool
}

// fFlags tracks per-feature authoring state, reset on feature_begin.
type fFlags struct {
	seenScriptLang bool
	langSysMode    bool
}

// dfltRule is one rule recorded while the current context is (DFLT,
// dflt), kept around so it can be replayed into a later explicit
// (script, language) unless the author requests exclude_dflt.
type dfltRule struct {
	tbl      Table
	lkpType  LkpType
	flag     gtab.LookupFlags
	markSet  uint16
	feature  Tag
	targ     *GPat
	repl     *GPat
}

// aaltRule records one single/alternate substitution rule harvested from
// a non-aalt feature, for later folding into the aalt meta-feature.
type aaltRule struct {
	feature Tag
	targ    GID
	repl    []GID // one element for a single substitution
}

// Driver walks a sequence of feature-file statement callbacks (see the
// methods below), maintaining the authoring state described in §4.3 of
// the accompanying design notes, and emits compiled lookups into its
// Gsub and Gpos builders.
type Driver struct {
	Inv      GlyphInventory
	Registry *Registry

	Gsub *LookupListBuilder
	Gpos *LookupListBuilder
	Gdef *gdef.Table

	HadError    bool
	Diagnostics []*CompileError

	// authoring state
	curScript, curLanguage, curFeature Tag
	curTable                           Table
	curFlag                            gtab.LookupFlags
	curMarkSet                         uint16
	activeNamedLabel                   Label
	excludeDFLT                        bool
	seenOldDFLT                        bool

	gFlags gFlags
	fFlags fFlags

	acc          *Accumulator
	namedLookups map[string]Label
	namedOrder   []string
	nextNamed    uint16
	nextAnon     uint16

	dfltRules map[Table][]*dfltRule

	inAalt       bool
	aaltFeatures []Tag
	aaltRules    []*aaltRule

	anonAccs    []*Accumulator // anonymous accumulators, in creation order
	anonPending map[Label]*Accumulator

	markAttachClasses map[string]uint16 // @C name -> GDEF mark-attachment class, for lookupflag validation
}

// NewDriver returns a driver ready to begin walking a feature file.
func NewDriver(inv GlyphInventory) *Driver {
	return &Driver{
		Inv:          inv,
		Registry:     NewRegistry(),
		Gsub:         NewLookupListBuilder(),
		Gpos:         NewLookupListBuilder(),
		namedLookups: make(map[string]Label),
		dfltRules:    make(map[Table][]*dfltRule),
		anonPending:  make(map[Label]*Accumulator),
		curScript:    TagDFLT,
		curLanguage:  Tagdflt,
	}
}

func (d *Driver) report(err *CompileError) {
	d.Diagnostics = append(d.Diagnostics, err)
	sev := err.Severity
	if sev == 0 {
		sev = err.Kind.DefaultSeverity()
	}
	if sev >= Error {
		d.HadError = true
	}
}

// FeatureBegin opens (or resumes) a `feature TAG { ... }` block.
func (d *Driver) FeatureBegin(tag Tag) {
	d.closeLookup()
	d.curFeature = tag
	d.curScript = TagDFLT
	d.curLanguage = Tagdflt
	d.fFlags = fFlags{}
	d.gFlags.seenFeature = true
	d.excludeDFLT = false

	if tag == MakeTag("aalt") {
		d.inAalt = true
	}
}

// FeatureEnd closes the current feature block.
func (d *Driver) FeatureEnd(tag Tag) {
	d.closeLookup()
	if tag == MakeTag("aalt") {
		d.inAalt = false
	}
	d.curFeature = TagUndef
}

// Script handles a `script S;` statement.
func (d *Driver) Script(tag Tag) {
	d.closeLookup()
	d.curLanguage = Tagdflt
	d.curScript = tag
	if tag != TagDFLT {
		d.gFlags.seenNonDFLTScriptLang = true
	}
}

// Language handles a `language L [exclude_dflt|include_dflt];` statement.
func (d *Driver) Language(tag Tag, excludeDflt bool) {
	d.closeLookup()
	d.curLanguage = tag
	d.excludeDFLT = excludeDflt
	d.fFlags.seenScriptLang = true
	d.gFlags.seenLangSys = true
	if tag != Tagdflt {
		d.gFlags.seenNonDFLTScriptLang = true
	}

	if !excludeDflt {
		d.replayDFLT()
	}
}

// LookupFlag handles a `lookupflag ...;` statement. markSetIndex is only
// meaningful when the UseMarkFilteringSet bit is set.
func (d *Driver) LookupFlag(bits gtab.LookupFlags, markSetIndex uint16) {
	d.curFlag = bits
	d.curMarkSet = markSetIndex
	if bits&gtab.UseMarkFilteringSet != 0 {
		d.gFlags.seenIgnoreClassFlag = true
	}
}

// LookupBegin opens a named lookup block, closing any open implicit
// anonymous lookup first.
func (d *Driver) LookupBegin(name string, useExtension bool, tbl Table, lkpType LkpType) {
	d.closeLookup()

	label, ok := d.namedLookups[name]
	if !ok {
		label = Label{Kind: LabelNamed, Value: d.nextNamed}
		d.nextNamed++
		d.namedLookups[name] = label
		d.namedOrder = append(d.namedOrder, name)
	}
	d.activeNamedLabel = label

	d.acc = NewAccumulator(d.curScript, d.curLanguage, d.curFeature, tbl, lkpType, label)
	d.acc.LkpFlag = d.curFlag
	d.acc.MarkSetIndex = d.curMarkSet
	d.acc.UseExtension = useExtension
}

// LookupEnd closes a named lookup block. name must match the name given
// to the corresponding LookupBegin.
func (d *Driver) LookupEnd(name string) {
	d.closeLookup()
	d.activeNamedLabel = Label{}
}

// LookupRef handles an inline `lookup NAME;` reference: it binds the
// existing named lookup into the current (script, language, feature)
// without opening a new accumulator.
func (d *Driver) LookupRef(name string) {
	label, ok := d.namedLookups[name]
	if !ok {
		d.report(&CompileError{Kind: UnresolvedLookupRef, Severity: Fatal,
			Message: "lookup " + name + " referenced before it is defined"})
		return
	}
	d.bindFeatureLookup(label.AsReference())
}

// GlyphClassAssign handles `@name = pat;`.
func (d *Driver) GlyphClassAssign(name string, pat *ClassRec) {
	if err := d.Registry.DefineGlyphClass(name, pat); err != nil {
		d.report(err.(*CompileError))
	}
}

// AnchorDef handles a top-level `anchorDef` statement.
func (d *Driver) AnchorDef(name string, x, y int16, contourPoint *uint16) {
	a := &AnchorMarkInfo{Format: 1, X: x, Y: y}
	if contourPoint != nil {
		a.Format = 2
		a.ContourPoint = *contourPoint
	}
	if err := d.Registry.DefineAnchor(name, a); err != nil {
		d.report(err.(*CompileError))
	}
}

// ValueRecordDef handles a `valueRecordDef` statement.
func (d *Driver) ValueRecordDef(name string, m *MetricsInfo) {
	if err := d.Registry.DefineValueRecord(name, m); err != nil {
		d.report(err.(*CompileError))
	}
}

// MarkClassAdd handles one glyph-and-anchor entry of a `markClass`
// statement.
func (d *Driver) MarkClassAdd(name string, gid GID, anchor *AnchorMarkInfo) {
	if err := d.Registry.AddToMarkClass(name, gid, anchor); err != nil {
		d.report(err.(*CompileError))
	}
}

// Sub handles a GSUB rule statement (`sub ... by/from ...;`).
func (d *Driver) Sub(targ, repl *GPat, lkpType LkpType) {
	d.prepRule(GSUBTable, lkpType, targ, repl)
}

// Pos handles a GPOS rule statement (`pos ...;`).
func (d *Driver) Pos(targ, repl *GPat, lkpType LkpType) {
	d.prepRule(GPOSTable, lkpType, targ, repl)
}

// prepRule implements the state machine's rule-emission entry point
// (§4.3): close the accumulator if its table/type no longer matches,
// validate, then append.
func (d *Driver) prepRule(tbl Table, lkpType LkpType, targ, repl *GPat) {
	if d.HadError {
		return
	}

	if d.acc == nil {
		// An implicit (unnamed) lookup: the feature file allows bare
		// rules directly inside a feature block.
		d.acc = NewAccumulator(d.curScript, d.curLanguage, d.curFeature, tbl, lkpType, d.nextAnonLabel())
		d.acc.LkpFlag = d.curFlag
		d.acc.MarkSetIndex = d.curMarkSet
		d.bindFeatureLookup(d.acc.Label)
	} else if d.acc.Tbl != tbl || d.acc.LkpType != lkpType {
		d.closeLookup()
		d.acc = NewAccumulator(d.curScript, d.curLanguage, d.curFeature, tbl, lkpType, d.nextAnonLabel())
		d.acc.LkpFlag = d.curFlag
		d.acc.MarkSetIndex = d.curMarkSet
		d.bindFeatureLookup(d.acc.Label)
	}

	if err := validateRule(tbl, lkpType, targ, repl); err != nil {
		d.report(err)
		return
	}

	d.acc.AddRule(targ, repl)

	// aalt harvesting: while compiling a non-aalt feature, record its
	// single/alternate substitutions for later folding (§4.3's "aalt
	// meta-feature"). While *inside* feature aalt itself, the rule is
	// still added to the current lookup above but is not harvested.
	if !d.inAalt && tbl == GSUBTable && (lkpType == LkpSingle || lkpType == LkpAlternate) {
		d.recordAaltSource(targ, repl)
	}

	// DFLT replay bookkeeping.
	if d.curScript == TagDFLT && d.curLanguage == Tagdflt {
		d.dfltRules[tbl] = append(d.dfltRules[tbl], &dfltRule{
			tbl: tbl, lkpType: lkpType, flag: d.curFlag, markSet: d.curMarkSet,
			feature: d.curFeature, targ: targ, repl: repl,
		})
	}
}

func (d *Driver) nextAnonLabel() Label {
	v := d.nextAnon
	d.nextAnon++
	return Label{Kind: LabelAnonymous, Value: AnonLabelMin + v}
}

// FeatureRef handles `feature TAG;` statements inside `feature aalt { }`,
// which name the features aalt should harvest from.
func (d *Driver) FeatureRef(tag Tag) {
	if d.inAalt {
		d.aaltFeatures = append(d.aaltFeatures, tag)
	}
}

func (d *Driver) recordAaltSource(targ, repl *GPat) {
	if targ == nil || repl == nil || len(targ.Classes) == 0 || len(repl.Classes) == 0 {
		return
	}
	for _, g := range targ.Classes[0].Glyphs {
		var out []GID
		for _, rc := range repl.Classes {
			for _, rg := range rc.Glyphs {
				out = append(out, rg.GID)
			}
		}
		if len(out) == 0 {
			continue
		}
		d.aaltRules = append(d.aaltRules, &aaltRule{feature: d.curFeature, targ: g.GID, repl: out})
	}
}

// replayDFLT re-registers rules authored under (DFLT, dflt) into the
// newly activated (script, language), unless exclude_dflt was given.
func (d *Driver) replayDFLT() {
	for tbl, rules := range d.dfltRules {
		for _, r := range rules {
			acc := NewAccumulator(d.curScript, d.curLanguage, r.feature, tbl, r.lkpType, d.nextAnonLabel())
			acc.LkpFlag = r.flag
			acc.MarkSetIndex = r.markSet
			acc.AddRule(r.targ, r.repl)
			d.compileAndAdd(acc)
			d.bindFeatureLookup(acc.Label)
		}
	}
}

// bindFeatureLookup records that label implements the driver's current
// (script, language, feature).
func (d *Driver) bindFeatureLookup(label Label) {
	if d.curFeature == TagUndef {
		return
	}
	builder := d.Gsub
	if d.curTableHint() == GPOSTable {
		builder = d.Gpos
	}
	builder.BindFeature(d.curScript, d.curLanguage, d.curFeature, []Label{label})
}

func (d *Driver) curTableHint() Table {
	if d.acc != nil {
		return d.acc.Tbl
	}
	return GSUBTable
}

// closeLookup compiles the currently open accumulator, if any, and binds
// its lookup into the current (script, language, feature).
func (d *Driver) closeLookup() {
	if d.acc == nil {
		return
	}
	acc := d.acc
	d.acc = nil
	if len(acc.Rules) == 0 {
		return
	}
	d.compileAndAdd(acc)
	if !acc.Label.Reference {
		d.bindFeatureLookupFor(acc)
	}
}

func (d *Driver) bindFeatureLookupFor(acc *Accumulator) {
	if acc.Script == TagUndef && acc.Feature == TagUndef {
		return
	}
	builder := d.Gsub
	if acc.Tbl == GPOSTable {
		builder = d.Gpos
	}
	builder.BindFeature(acc.Script, acc.Language, acc.Feature, []Label{acc.Label})
}

// compileAndAdd runs the kind-specific compiler (module D or E) over the
// accumulator and registers the resulting subtables.
func (d *Driver) compileAndAdd(acc *Accumulator) {
	var subtables []gtab.Subtable
	var err *CompileError
	if acc.Tbl == GSUBTable {
		subtables, err = d.compileGSUB(acc)
	} else {
		subtables, err = d.compileGPOS(acc)
	}
	if err != nil {
		d.report(err)
		return
	}
	meta := &gtab.LookupMetaInfo{
		LookupType:       gsubGposLookupType(acc.Tbl, acc.LkpType),
		LookupFlags:      acc.LkpFlag,
		MarkFilteringSet: acc.MarkSetIndex,
	}
	builder := d.Gsub
	if acc.Tbl == GPOSTable {
		builder = d.Gpos
	}
	builder.AddLookup(acc.Label, meta, subtables)
}

// gsubGposLookupType maps the kind-neutral LkpType enum to the wire
// lookup-type number for its table, so the LookupList can later decide
// extension wrapping (see opentype/gtab/lookup.go's extLookupType
// disambiguation for the shared contextual subtable types).
func gsubGposLookupType(tbl Table, k LkpType) uint16 {
	if tbl == GSUBTable {
		switch k {
		case LkpSingle:
			return 1
		case LkpMultiple:
			return 2
		case LkpAlternate:
			return 3
		case LkpLigature:
			return 4
		case LkpChainContext:
			return 6
		case LkpReverseChain:
			return 8
		}
	} else {
		switch k {
		case LkpPosSingle:
			return 1
		case LkpPosPair:
			return 2
		case LkpPosCursive:
			return 3
		case LkpPosMarkToBase:
			return 4
		case LkpPosMarkToLigature:
			return 5
		case LkpPosMarkToMark:
			return 6
		case LkpPosContext:
			return 7
		case LkpPosChainContext:
			return 8
		}
	}
	return 0
}

// FinishAalt harvests every recorded single/alternate rule from the
// features named inside `feature aalt { ... }` and synthesizes the aalt
// lookup, per §4.3/§8 scenario 5. It must be called once, after every
// other feature has closed.
func (d *Driver) FinishAalt() {
	if len(d.aaltFeatures) == 0 {
		return
	}
	wanted := make(map[Tag]bool, len(d.aaltFeatures))
	for _, f := range d.aaltFeatures {
		wanted[f] = true
	}

	type target struct {
		gid  GID
		alts []GID // authoring order, deduplicated
		seen map[GID]bool
	}
	var order []GID
	byTarg := map[GID]*target{}
	for _, r := range d.aaltRules {
		if !wanted[r.feature] {
			continue
		}
		t, ok := byTarg[r.targ]
		if !ok {
			t = &target{gid: r.targ, seen: map[GID]bool{}}
			byTarg[r.targ] = t
			order = append(order, r.targ)
		}
		for _, a := range r.repl {
			if t.seen[a] {
				continue
			}
			t.seen[a] = true
			t.alts = append(t.alts, a)
		}
	}
	if len(order) == 0 {
		return
	}

	allSingle := true
	for _, g := range order {
		if len(byTarg[g].alts) != 1 {
			allSingle = false
			break
		}
	}

	acc := NewAccumulator(TagDFLT, Tagdflt, MakeTag("aalt"), GSUBTable,
		LkpSingle, d.nextAnonLabel())
	if !allSingle {
		acc.LkpType = LkpAlternate
	}
	for _, g := range order {
		t := byTarg[g]
		targPat := &GPat{Classes: []*ClassRec{{Glyphs: []GlyphPos{{GID: t.gid}}, Role: RoleInput}}}
		replGlyphs := make([]GlyphPos, len(t.alts))
		for i, a := range t.alts {
			replGlyphs[i] = GlyphPos{GID: a}
		}
		replPat := &GPat{Classes: []*ClassRec{{Glyphs: replGlyphs, Role: RoleInput}}}
		acc.AddRule(targPat, replPat)
	}

	d.compileAndAdd(acc)
	d.Gsub.BindFeature(TagDFLT, Tagdflt, MakeTag("aalt"), []Label{acc.Label})
}

// getOrCreateAnonSub implements §4.4.8's anonymous sub-lookup synthesis:
// it reuses the most recently created anonymous accumulator that matches
// {lkpType, lkpFlag, markSetIndex, parentFeatTag}, or reserves a fresh
// lookup index and starts a new one. The accumulator is queued for
// compilation after all named lookups close (§3.6); the returned index
// is already final, so callers can embed it into a SeqLookup right away.
func (d *Driver) getOrCreateAnonSub(tbl Table, lkpType LkpType, flag gtab.LookupFlags, markSet uint16, parentFeat Tag) (*Accumulator, gtab.LookupIndex) {
	builder := d.Gsub
	if tbl == GPOSTable {
		builder = d.Gpos
	}
	if n := len(d.anonAccs); n > 0 {
		last := d.anonAccs[n-1]
		if last.Tbl == tbl && last.matchesAnon(lkpType, flag, markSet, parentFeat) {
			idx := builder.Reserve(last.Label)
			return last, idx
		}
	}
	label := d.nextAnonLabel()
	idx := builder.Reserve(label)
	acc := NewAccumulator(TagStandalone, TagStandalone, parentFeat, tbl, lkpType, label)
	acc.LkpFlag = flag
	acc.MarkSetIndex = markSet
	acc.ParentFeatTag = parentFeat
	d.anonAccs = append(d.anonAccs, acc)
	d.anonPending[label] = acc
	return acc, idx
}

// flushAnon compiles every deferred anonymous accumulator into its
// already-reserved lookup slot.
func (d *Driver) flushAnon() {
	for _, acc := range d.anonAccs {
		if len(acc.Rules) == 0 {
			continue
		}
		var subtables []gtab.Subtable
		var err *CompileError
		builder := d.Gsub
		if acc.Tbl == GPOSTable {
			builder = d.Gpos
			subtables, err = d.compileGPOS(acc)
		} else {
			subtables, err = d.compileGSUB(acc)
		}
		if err != nil {
			d.report(err)
			continue
		}
		meta := &gtab.LookupMetaInfo{
			LookupType:  gsubGposLookupType(acc.Tbl, acc.LkpType),
			LookupFlags: acc.LkpFlag,
		}
		builder.Fill(acc.Label, meta, subtables)
	}
	d.anonAccs = nil
	d.anonPending = make(map[Label]*Accumulator)
}

// Finish closes any still-open lookup, folds aalt if present, and
// assembles the final GSUB/GPOS/GDEF tables.
func (d *Driver) Finish() (gsub, gpos *gtab.Info, gdefTable *gdef.Table, err error) {
	d.closeLookup()
	d.FinishAalt()
	d.flushAnon()
	d.finishGDEF()

	gsub, e1 := d.Gsub.Build()
	if e1 != nil {
		return nil, nil, nil, e1
	}
	gpos, e2 := d.Gpos.Build()
	if e2 != nil {
		return nil, nil, nil, e2
	}
	return gsub, gpos, d.Gdef, nil
}
