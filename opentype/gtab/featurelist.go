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
	"seehuhn.de/go/feacomp/parser"
)

// FeatureIndex enumerates features.  It is used as an index into a
// [FeatureListInfo].
type FeatureIndex uint16

// FeatureListEntry is one entry of a [FeatureListInfo], corresponding to
// one OpenType "Feature" table together with its four-byte tag.
type FeatureListEntry struct {
	// Tag is the feature's four-byte OpenType tag, for example "liga" or
	// "kern".
	Tag string

	// Lookups lists, in the order they should be applied, the lookups
	// which implement this feature.
	Lookups []LookupIndex
}

// FeatureListInfo contains the information from an OpenType "FeatureList"
// table.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#feature-list-table
type FeatureListInfo []*FeatureListEntry

func readFeatureList(p *parser.Parser, pos int64) (FeatureListInfo, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	featureCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	type featureRecord struct {
		tag    uint32
		offset uint16
	}
	records := make([]featureRecord, featureCount)
	for i := range records {
		buf, err := p.ReadBytes(6)
		if err != nil {
			return nil, err
		}
		records[i].tag = uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
		records[i].offset = uint16(buf[4])<<8 | uint16(buf[5])
	}

	info := make(FeatureListInfo, featureCount)
	for i, rec := range records {
		featurePos := pos + int64(rec.offset)
		err = p.SeekPos(featurePos)
		if err != nil {
			return nil, err
		}

		buf, err := p.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		// buf[0:2] is the feature params offset, not used here.
		lookupIndexCount := uint16(buf[2])<<8 | uint16(buf[3])

		lookups := make([]LookupIndex, lookupIndexCount)
		for j := range lookups {
			v, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			lookups[j] = LookupIndex(v)
		}

		info[i] = &FeatureListEntry{
			Tag:     tagString(rec.tag),
			Lookups: lookups,
		}
	}

	return info, nil
}

// encode returns the binary representation of a FeatureList table.
func (info FeatureListInfo) encode() []byte {
	if len(info) == 0 {
		return nil
	}

	headerLen := 2 + 6*len(info)
	total := headerLen
	bodies := make([][]byte, len(info))
	offsets := make([]int, len(info))
	for i, entry := range info {
		offsets[i] = total
		body := make([]byte, 0, 4+2*len(entry.Lookups))
		body = append(body,
			0, 0, // featureParamsOffset
			byte(len(entry.Lookups)>>8), byte(len(entry.Lookups)),
		)
		for _, l := range entry.Lookups {
			body = append(body, byte(l>>8), byte(l))
		}
		bodies[i] = body
		total += len(body)
	}

	buf := make([]byte, 0, total)
	buf = append(buf, byte(len(info)>>8), byte(len(info)))
	for i, entry := range info {
		tag := entry.Tag
		if len(tag) != 4 {
			// pad or truncate malformed tags to the required width
			padded := [4]byte{' ', ' ', ' ', ' '}
			copy(padded[:], tag)
			tag = string(padded[:])
		}
		buf = append(buf, tag...)
		buf = append(buf, byte(offsets[i]>>8), byte(offsets[i]))
	}
	for _, body := range bodies {
		buf = append(buf, body...)
	}

	return buf
}
