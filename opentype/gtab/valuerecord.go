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
	"seehuhn.de/go/feacomp/glyph"
	"seehuhn.de/go/feacomp/parser"
	"seehuhn.de/go/postscript/funit"
)

// Bits used in the OpenType "valueFormat" field.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
const (
	vrXPlacement uint16 = 1 << iota
	vrYPlacement
	vrXAdvance
	vrYAdvance
	vrXPlaDevice
	vrYPlaDevice
	vrXAdvDevice
	vrYAdvDevice
)

// GposValueRecord describes an adjustment to the placement and advance
// width of a single glyph.  A nil *GposValueRecord represents "no
// adjustment" and is safe to call methods on.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
type GposValueRecord struct {
	XPlacement funit.Int16
	YPlacement funit.Int16
	XAdvance   funit.Int16
	YAdvance   funit.Int16
}

// Apply adds the adjustment to the glyph's layout information.  Apply is
// nil-receiver safe: a nil *GposValueRecord leaves g unchanged.
func (vr *GposValueRecord) Apply(g *glyph.Info) {
	if vr == nil {
		return
	}
	g.XOffset += vr.XPlacement
	g.YOffset += vr.YPlacement
	g.Advance += vr.XAdvance
	_ = vr.YAdvance // TODO(voss): vertical writing mode advances
}

func (vr *GposValueRecord) getFormat() uint16 {
	if vr == nil {
		return 0
	}
	var format uint16
	if vr.XPlacement != 0 {
		format |= vrXPlacement
	}
	if vr.YPlacement != 0 {
		format |= vrYPlacement
	}
	if vr.XAdvance != 0 {
		format |= vrXAdvance
	}
	if vr.YAdvance != 0 {
		format |= vrYAdvance
	}
	return format
}

func (vr *GposValueRecord) encodeLen(format uint16) int {
	n := 0
	for mask := uint16(1); mask <= vrYAdvDevice; mask <<= 1 {
		if format&mask != 0 {
			n += 2
		}
	}
	return n
}

func (vr *GposValueRecord) encode(format uint16) []byte {
	var buf []byte
	put := func(v funit.Int16) {
		buf = append(buf, byte(v>>8), byte(v))
	}
	if format&vrXPlacement != 0 {
		put(vr.xPlacement())
	}
	if format&vrYPlacement != 0 {
		put(vr.yPlacement())
	}
	if format&vrXAdvance != 0 {
		put(vr.xAdvance())
	}
	if format&vrYAdvance != 0 {
		put(vr.yAdvance())
	}
	// Device/variation-index fields (bits 0x0010-0x0080) are written as
	// zero offsets; this library does not emit device tables.
	for mask := vrXPlaDevice; mask <= vrYAdvDevice; mask <<= 1 {
		if format&mask != 0 {
			buf = append(buf, 0, 0)
		}
	}
	return buf
}

func (vr *GposValueRecord) xPlacement() funit.Int16 {
	if vr == nil {
		return 0
	}
	return vr.XPlacement
}

func (vr *GposValueRecord) yPlacement() funit.Int16 {
	if vr == nil {
		return 0
	}
	return vr.YPlacement
}

func (vr *GposValueRecord) xAdvance() funit.Int16 {
	if vr == nil {
		return 0
	}
	return vr.XAdvance
}

func (vr *GposValueRecord) yAdvance() funit.Int16 {
	if vr == nil {
		return 0
	}
	return vr.YAdvance
}

// readValueRecord reads a GPOS ValueRecord using the given valueFormat.
func readValueRecord(p *parser.Parser, valueFormat uint16) (*GposValueRecord, error) {
	if valueFormat == 0 {
		return nil, nil
	}

	vr := &GposValueRecord{}
	read := func(mask uint16, dest *funit.Int16) error {
		if valueFormat&mask == 0 {
			return nil
		}
		x, err := p.ReadUint16()
		if err != nil {
			return err
		}
		*dest = funit.Int16(x)
		return nil
	}
	if err := read(vrXPlacement, &vr.XPlacement); err != nil {
		return nil, err
	}
	if err := read(vrYPlacement, &vr.YPlacement); err != nil {
		return nil, err
	}
	if err := read(vrXAdvance, &vr.XAdvance); err != nil {
		return nil, err
	}
	if err := read(vrYAdvance, &vr.YAdvance); err != nil {
		return nil, err
	}
	for mask := vrXPlaDevice; mask <= vrYAdvDevice; mask <<= 1 {
		if valueFormat&mask != 0 {
			if _, err := p.ReadUint16(); err != nil {
				return nil, err
			}
		}
	}
	return vr, nil
}

// readGIDSlice reads a uint16 count followed by that many glyph IDs.
func readGIDSlice(p *parser.Parser) ([]glyph.ID, error) {
	raw, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	out := make([]glyph.ID, len(raw))
	for i, v := range raw {
		out[i] = glyph.ID(v)
	}
	return out, nil
}
