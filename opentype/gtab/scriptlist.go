// seehuhn.de/go/feacomp - a library for reading and writing font files
// Copyright (C) 2022  Jochen Voss <voss@seehuhn.de>
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
	"sort"

	"golang.org/x/text/language"
	"seehuhn.de/go/feacomp/parser"
)

// Features lists the features associated with one entry of a
// [ScriptListInfo], i.e. with one OpenType "LangSys" table.
type Features struct {
	// Required is the index into the FeatureList of the feature which must
	// always be applied for this script/language combination.  A value of
	// 0xFFFF (or any index beyond the end of the FeatureList) indicates
	// that there is no required feature.
	Required FeatureIndex

	// Optional lists the indices into the FeatureList of the features
	// which can be selected for this script/language combination.
	Optional []FeatureIndex
}

// noRequiredFeature is the sentinel value used on the wire (and in
// [Features.Required]) to indicate that a LangSys has no required feature.
const noRequiredFeature = 0xFFFF

// ScriptListInfo represents the information from an OpenType "ScriptList"
// table, flattened into a single map from BCP 47 language tags to the
// features available for that script/language combination.
//
// An OpenType ScriptList nests LangSys tables inside Script tables, using
// four-byte OpenType script and language-system tags.  Matching a user's
// request against this is normally done via [golang.org/x/text/language],
// so the scripts and languages are translated into BCP 47 tags once, at
// load time, rather than every time a lookup is performed.
type ScriptListInfo map[language.Tag]*Features

// ot4Tags maps common four-byte OpenType script tags to the corresponding
// ISO 15924 script codes used by BCP 47.  This is not exhaustive; tags
// which are not recognised fall back to [language.Und] with a base
// language derived from the LangSys tag alone.
var ot4Tags = map[string]string{
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

// ot4Langs maps common four-byte OpenType language-system tags to the
// corresponding ISO 639 language codes used by BCP 47.
var ot4Langs = map[string]string{
	"ENG ": "en",
	"DEU ": "de",
	"FRA ": "fr",
	"ITA ": "it",
	"ESP ": "es",
	"NLD ": "nl",
	"RUS ": "ru",
	"POL ": "pl",
	"TRK ": "tr",
	"JAN ": "ja",
	"ZHS ": "zh",
	"KOR ": "ko",
}

// otTagToBCP47 derives a best-effort BCP 47 tag for the given OpenType
// script and language-system tags.  scriptTag is always four bytes;
// langSysTag is empty for a Script's DefaultLangSys.
func otTagToBCP47(scriptTag, langSysTag string) language.Tag {
	base := language.Und
	if code, ok := ot4Langs[langSysTag]; ok {
		if t, err := language.Parse(code); err == nil {
			base = t
		}
	}
	if scriptCode, ok := ot4Tags[scriptTag]; ok {
		if scr, err := language.ParseScript(scriptCode); err == nil {
			if t, err := language.Compose(base, scr); err == nil {
				return t
			}
		}
	}
	return base
}

func tagString(raw uint32) string {
	return string([]byte{
		byte(raw >> 24), byte(raw >> 16), byte(raw >> 8), byte(raw),
	})
}

func readScriptList(p *parser.Parser, pos int64) (ScriptListInfo, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	scriptCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	type scriptRecord struct {
		tag    uint32
		offset uint16
	}
	records := make([]scriptRecord, scriptCount)
	for i := range records {
		buf, err := p.ReadBytes(6)
		if err != nil {
			return nil, err
		}
		records[i].tag = uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
		records[i].offset = uint16(buf[4])<<8 | uint16(buf[5])
	}

	info := make(ScriptListInfo)
	for _, rec := range records {
		scriptTag := tagString(rec.tag)
		scriptPos := pos + int64(rec.offset)
		err = p.SeekPos(scriptPos)
		if err != nil {
			return nil, err
		}

		buf, err := p.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		defaultLangSysOffset := uint16(buf[0])<<8 | uint16(buf[1])
		langSysCount := uint16(buf[2])<<8 | uint16(buf[3])

		if defaultLangSysOffset != 0 {
			features, err := readLangSys(p, scriptPos+int64(defaultLangSysOffset))
			if err != nil {
				return nil, err
			}
			info[otTagToBCP47(scriptTag, "")] = features
		}

		for i := uint16(0); i < langSysCount; i++ {
			buf, err := p.ReadBytes(6)
			if err != nil {
				return nil, err
			}
			langSysTag := tagString(
				uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]))
			langSysOffset := uint16(buf[4])<<8 | uint16(buf[5])

			features, err := readLangSys(p, scriptPos+int64(langSysOffset))
			if err != nil {
				return nil, err
			}
			info[otTagToBCP47(scriptTag, langSysTag)] = features
		}
	}

	return info, nil
}

func readLangSys(p *parser.Parser, pos int64) (*Features, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	buf, err := p.ReadBytes(6)
	if err != nil {
		return nil, err
	}
	// buf[0:2] is the reserved lookupOrder offset, always 0.
	requiredFeatureIndex := uint16(buf[2])<<8 | uint16(buf[3])
	featureIndexCount := uint16(buf[4])<<8 | uint16(buf[5])

	optional := make([]FeatureIndex, featureIndexCount)
	for i := range optional {
		v, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		optional[i] = FeatureIndex(v)
	}

	return &Features{
		Required: FeatureIndex(requiredFeatureIndex),
		Optional: optional,
	}, nil
}

// encode returns the binary representation of a ScriptList table.  Since
// the in-memory representation no longer distinguishes a script's
// DefaultLangSys from its other LangSys entries, every map entry is
// written out as a named LangSys; fonts produced this way have no default
// language, which is permitted by the OpenType spec (clients fall back
// to the first LangSys listed).
func (info ScriptListInfo) encode() []byte {
	if len(info) == 0 {
		return nil
	}

	tags := make([]language.Tag, 0, len(info))
	for tag := range info {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].String() < tags[j].String()
	})

	// Group LangSys entries by OpenType script tag, recovering the
	// script from the base language of each BCP 47 tag.
	type langEntry struct {
		tag      string
		features *Features
	}
	scriptOrder := []string{}
	scriptLangs := map[string][]langEntry{}
	for _, tag := range tags {
		scriptTag := "DFLT"
		if script, conf := tag.Script(); conf == language.Exact {
			if s := script.String(); len(s) == 4 {
				scriptTag = s
			}
		}
		if _, ok := scriptLangs[scriptTag]; !ok {
			scriptOrder = append(scriptOrder, scriptTag)
		}
		scriptLangs[scriptTag] = append(scriptLangs[scriptTag], langEntry{
			tag:      langSysTagFor(tag),
			features: info[tag],
		})
	}
	sort.Strings(scriptOrder)

	headerLen := 2 + 6*len(scriptOrder)
	total := headerLen
	scriptTableOffsets := make([]int, len(scriptOrder))
	langSysOffsets := make([][]int, len(scriptOrder))
	langSysBodies := make([][][]byte, len(scriptOrder))

	for i, scriptTag := range scriptOrder {
		scriptTableOffsets[i] = total
		langs := scriptLangs[scriptTag]
		bodies := make([][]byte, len(langs))
		offs := make([]int, len(langs))
		scriptHeaderLen := 4 + 6*len(langs)
		cursor := scriptHeaderLen
		for j, e := range langs {
			bodies[j] = encodeLangSys(e.features)
			offs[j] = cursor
			cursor += len(bodies[j])
		}
		langSysBodies[i] = bodies
		langSysOffsets[i] = offs
		total += cursor
	}

	buf := make([]byte, 0, total)
	buf = append(buf, byte(len(scriptOrder)>>8), byte(len(scriptOrder)))
	for i, scriptTag := range scriptOrder {
		buf = append(buf, scriptTag...)
		off := scriptTableOffsets[i]
		buf = append(buf, byte(off>>8), byte(off))
	}
	for i, scriptTag := range scriptOrder {
		langs := scriptLangs[scriptTag]
		buf = append(buf, 0, 0) // no DefaultLangSys
		buf = append(buf, byte(len(langs)>>8), byte(len(langs)))
		for j, e := range langs {
			buf = append(buf, e.tag...)
			off := langSysOffsets[i][j]
			buf = append(buf, byte(off>>8), byte(off))
		}
		for _, body := range langSysBodies[i] {
			buf = append(buf, body...)
		}
	}

	return buf
}

func encodeLangSys(f *Features) []byte {
	required := noRequiredFeature
	if int(f.Required) < 0xFFFF {
		required = int(f.Required)
	}
	buf := make([]byte, 0, 6+2*len(f.Optional))
	buf = append(buf,
		0, 0, // reserved lookupOrder
		byte(required>>8), byte(required),
		byte(len(f.Optional)>>8), byte(len(f.Optional)),
	)
	for _, idx := range f.Optional {
		buf = append(buf, byte(idx>>8), byte(idx))
	}
	return buf
}

// langSysTagFor recovers a four-byte OpenType language-system tag for a
// BCP 47 tag, for the handful of languages [ot4Langs] knows about,
// falling back to "dflt" otherwise.
func langSysTagFor(tag language.Tag) string {
	base, _ := tag.Base()
	baseStr := base.String()
	for ot, bcp := range ot4Langs {
		if bcp == baseStr {
			return ot
		}
	}
	return "dflt"
}
