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
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"seehuhn.de/go/feacomp/glyph"
	"seehuhn.de/go/feacomp/opentype/classdef"
	"seehuhn.de/go/feacomp/opentype/coverage"
	"seehuhn.de/go/feacomp/opentype/gtab"
)

// ot4Langs maps the handful of OpenType language-system tags this
// compiler recognises to the BCP 47 base language used internally by
// [gtab.ScriptListInfo]; anything else collapses to [language.Und],
// distinguished only by script.
var ot4Langs = map[string]string{
	"ENG": "en",
	"DEU": "de",
	"FRA": "fr",
	"ITA": "it",
	"ESP": "es",
	"NLD": "nl",
	"RUS": "ru",
	"POL": "pl",
	"TRK": "tr",
	"JAN": "ja",
	"ZHS": "zh",
	"KOR": "ko",
}

var ot4Scripts = map[string]string{
	"latn": "Latn",
	"cyrl": "Cyrl",
	"grek": "Grek",
	"arab": "Arab",
	"hebr": "Hebr",
	"deva": "Deva",
	"thai": "Thai",
	"hang": "Hang",
	"hani": "Hani",
	"kana": "Kana",
	"hira": "Hira",
}

// bcp47ForScriptLang derives a best-effort BCP 47 tag for a (script,
// language) pair of OpenType tags, following the same simplification as
// opentype/gtab/scriptlist.go: real script/language disambiguation is an
// external concern (ICU-scale tag tables), so this compiler keeps only
// enough information for [gtab.Info.FindLookups] to round-trip the
// scripts and languages actually authored in a feature file.
func bcp47ForScriptLang(script, lang Tag) language.Tag {
	base := language.Und
	if code, ok := ot4Langs[strings.TrimSpace(lang.String())]; ok {
		if t, err := language.Parse(code); err == nil {
			base = t
		}
	}
	if scriptCode, ok := ot4Scripts[strings.ToLower(strings.TrimSpace(script.String()))]; ok {
		if scr, err := language.ParseScript(scriptCode); err == nil {
			if t, err := language.Compose(base, scr); err == nil {
				return t
			}
		}
	}
	return base
}

// CoverageBuilder deduplicates coverage tables by their glyph set,
// content-addressed via a sorted-GID key, so that repeated rules over
// the same glyph set (e.g. a class reused in several lookups) share one
// underlying [coverage.Table] rather than re-scanning for equality after
// the fact.
type CoverageBuilder struct {
	byKey map[string]coverage.Table
}

// NewCoverageBuilder returns an empty builder.
func NewCoverageBuilder() *CoverageBuilder {
	return &CoverageBuilder{byKey: make(map[string]coverage.Table)}
}

// Build returns the coverage table for the given glyph set, sorting and
// deduplicating gids first. A previously built table with the same set
// of glyphs is reused.
func (b *CoverageBuilder) Build(gids []GID) coverage.Table {
	sorted := append([]GID(nil), gids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	sorted = dedupSortedGIDs(sorted)

	key := coverageKey(sorted)
	if t, ok := b.byKey[key]; ok {
		return t
	}
	t := make(coverage.Table, len(sorted))
	for i, g := range sorted {
		t[g] = i
	}
	b.byKey[key] = t
	return t
}

func dedupSortedGIDs(sorted []GID) []GID {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, g := range sorted[1:] {
		if g != out[len(out)-1] {
			out = append(out, g)
		}
	}
	return out
}

func coverageKey(sorted []GID) string {
	var sb strings.Builder
	for _, g := range sorted {
		sb.WriteByte(byte(g >> 8))
		sb.WriteByte(byte(g))
		sb.WriteByte(0)
	}
	return sb.String()
}

// ClassBuilder assigns class IDs 1..N to authored glyph classes (class 0
// is always the implicit "everything else"), content-addressed the same
// way as [CoverageBuilder]: two classes with the same glyph set receive
// the same class ID.
type ClassBuilder struct {
	byKey   map[string]uint16
	classes map[glyph.ID]uint16
	next    uint16
}

// NewClassBuilder returns an empty builder, with the implicit class 0
// already reserved.
func NewClassBuilder() *ClassBuilder {
	return &ClassBuilder{
		byKey:   make(map[string]uint16),
		classes: make(map[glyph.ID]uint16),
		next:    1,
	}
}

// AddClass registers a glyph set as one class and returns its class ID.
func (b *ClassBuilder) AddClass(gids []GID) uint16 {
	sorted := append([]GID(nil), gids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	sorted = dedupSortedGIDs(sorted)

	key := coverageKey(sorted)
	if id, ok := b.byKey[key]; ok {
		return id
	}
	id := b.next
	b.next++
	b.byKey[key] = id
	for _, g := range sorted {
		b.classes[g] = id
	}
	return id
}

// ClassOf returns the class ID of gid (0 if it was never added to a
// class).
func (b *ClassBuilder) ClassOf(gid GID) uint16 {
	return b.classes[gid]
}

// Table returns the OpenType class definition table built so far.
func (b *ClassBuilder) Table() classdef.Table {
	t := make(classdef.Table, len(b.classes))
	for g, c := range b.classes {
		t[g] = c
	}
	return t
}

// lookupSlot is one compiled lookup, still addressed by [Label] rather
// than by its final [gtab.LookupIndex].
type lookupSlot struct {
	label     Label
	meta      *gtab.LookupMetaInfo
	subtables []gtab.Subtable
	// featureParam holds the raw feature-parameters payload (ss##/cv##).
	// Build does not emit it; the assembled table has no
	// feature-parameter subtables.
	featureParam []byte
}

// featureSlot groups the lookups compiled for one (script, language,
// feature) triple, in authoring order.
type featureSlot struct {
	script, language, feature Tag
	lookups                   []Label
}

// LookupListBuilder assembles the final GSUB or GPOS [gtab.Info] from the
// lookups and feature bindings the driver accumulates, resolving
// [Label] references to [gtab.LookupIndex] values and grouping subtables
// by (script, language, feature) in canonical order.
type LookupListBuilder struct {
	slots       []*lookupSlot
	byLabel     map[Label]*lookupSlot
	features    []*featureSlot
	labelUsed   map[Label]bool
	labelExists map[Label]bool
}

// NewLookupListBuilder returns an empty builder.
func NewLookupListBuilder() *LookupListBuilder {
	return &LookupListBuilder{
		byLabel:     make(map[Label]*lookupSlot),
		labelUsed:   make(map[Label]bool),
		labelExists: make(map[Label]bool),
	}
}

// AddLookup registers a compiled lookup under its label. Calling this
// twice for the same label (e.g. a named lookup reopened later in the
// file) appends the new subtables to the existing slot.
func (b *LookupListBuilder) AddLookup(label Label, meta *gtab.LookupMetaInfo, subtables []gtab.Subtable) {
	if slot, ok := b.byLabel[label]; ok {
		slot.meta = meta
		slot.subtables = append(slot.subtables, subtables...)
		b.labelExists[label] = true
		return
	}
	slot := &lookupSlot{label: label, meta: meta, subtables: subtables}
	b.slots = append(b.slots, slot)
	b.byLabel[label] = slot
	b.labelExists[label] = true
}

// Reserve allocates a stable [gtab.LookupIndex] for label before its
// lookup has actually been compiled. This lets a chain-context or
// reverse-chain rule embed the final index of an anonymous sub-lookup
// into a SubstLookupRecord/PosLookupRecord immediately, even though
// (per §3.6) anonymous lookups are only compiled after every named
// lookup has closed: Fill populates the reserved slot later.
func (b *LookupListBuilder) Reserve(label Label) gtab.LookupIndex {
	if slot, ok := b.byLabel[label]; ok {
		for i, s := range b.slots {
			if s == slot {
				return gtab.LookupIndex(i)
			}
		}
	}
	slot := &lookupSlot{label: label}
	idx := gtab.LookupIndex(len(b.slots))
	b.slots = append(b.slots, slot)
	b.byLabel[label] = slot
	return idx
}

// Fill populates a slot previously created by Reserve.
func (b *LookupListBuilder) Fill(label Label, meta *gtab.LookupMetaInfo, subtables []gtab.Subtable) {
	slot, ok := b.byLabel[label]
	if !ok {
		b.AddLookup(label, meta, subtables)
		return
	}
	slot.meta = meta
	slot.subtables = append(slot.subtables, subtables...)
	b.labelExists[label] = true
}

// BindFeature records that the lookups named by labels implement
// (script, language, feature), in authoring order.
func (b *LookupListBuilder) BindFeature(script, language, feature Tag, labels []Label) {
	for _, l := range labels {
		b.labelUsed[l] = true
	}
	b.features = append(b.features, &featureSlot{
		script: script, language: language, feature: feature, lookups: labels,
	})
}

// scriptOrder returns script tags sorted ascending, except that DFLT
// always sorts first (features authored against the default script
// should end up addressable even if a font also defines named scripts).
func scriptOrder(tags map[Tag]bool) []Tag {
	out := make([]Tag, 0, len(tags))
	for t := range tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i] == TagDFLT {
			return out[j] != TagDFLT
		}
		if out[j] == TagDFLT {
			return false
		}
		return out[i].String() < out[j].String()
	})
	return out
}

// languageOrder returns language tags sorted ascending except that dflt
// always sorts first within a script.
func languageOrder(tags map[Tag]bool) []Tag {
	out := make([]Tag, 0, len(tags))
	for t := range tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i] == Tagdflt {
			return out[j] != Tagdflt
		}
		if out[j] == Tagdflt {
			return false
		}
		return out[i].String() < out[j].String()
	})
	return out
}

// Build resolves every label to a [gtab.LookupIndex] and assembles the
// final table. It returns an [UnresolvedLookupRef] [CompileError] if any
// bound label was never defined with a lookup.
func (b *LookupListBuilder) Build() (*gtab.Info, error) {
	for label := range b.labelUsed {
		label.Reference = false
		if !b.labelExists[label] {
			return nil, &CompileError{Kind: UnresolvedLookupRef, Severity: Fatal,
				Message: "lookup label referenced but never defined"}
		}
	}

	index := make(map[Label]gtab.LookupIndex, len(b.slots))
	ll := make(gtab.LookupList, len(b.slots))
	for i, slot := range b.slots {
		index[slot.label] = gtab.LookupIndex(i)
		ll[i] = &gtab.LookupTable{Meta: slot.meta, Subtables: slot.subtables}
	}

	// Group (script,language) -> feature -> lookups, preserving
	// authoring order of features within a (script,language), and
	// authoring order of lookups within a feature.
	type langKey struct{ script, language Tag }
	byLang := map[langKey][]*featureSlot{}
	scripts := map[Tag]bool{}
	langsByScript := map[Tag]map[Tag]bool{}
	for _, f := range b.features {
		k := langKey{f.script, f.language}
		byLang[k] = append(byLang[k], f)
		scripts[f.script] = true
		if langsByScript[f.script] == nil {
			langsByScript[f.script] = map[Tag]bool{}
		}
		langsByScript[f.script][f.language] = true
	}

	var featureList gtab.FeatureListInfo
	scriptList := make(gtab.ScriptListInfo)

	// featureKey dedups identical (feature tag, lookup set) entries so
	// that e.g. the same feature bound to several languages shares one
	// FeatureList row, matching how real fonts are authored.
	featureIndex := map[string]gtab.FeatureIndex{}

	for _, script := range scriptOrder(scripts) {
		for _, language := range languageOrder(langsByScript[script]) {
			fs := byLang[langKey{script, language}]
			var optional []gtab.FeatureIndex
			for _, f := range fs {
				var lookups []gtab.LookupIndex
				for _, l := range f.lookups {
					l.Reference = false
					if idx, ok := index[l]; ok {
						lookups = append(lookups, idx)
					}
				}
				key := f.feature.String()
				for _, lu := range lookups {
					key += fmt.Sprintf(",%d", lu)
				}
				idx, ok := featureIndex[key]
				if !ok {
					idx = gtab.FeatureIndex(len(featureList))
					featureList = append(featureList, &gtab.FeatureListEntry{
						Tag:     f.feature.String(),
						Lookups: lookups,
					})
					featureIndex[key] = idx
				}
				optional = append(optional, idx)
			}
			bcpTag := bcp47ForScriptLang(script, language)
			scriptList[bcpTag] = &gtab.Features{
				Required: gtab.FeatureIndex(0xFFFF),
				Optional: optional,
			}
		}
	}

	return &gtab.Info{
		ScriptList:  scriptList,
		FeatureList: featureList,
		LookupList:  ll,
	}, nil
}
