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
	"seehuhn.de/go/feacomp/opentype/anchor"
	"seehuhn.de/go/feacomp/opentype/coverage"
	"seehuhn.de/go/feacomp/opentype/markarray"
	"seehuhn.de/go/feacomp/parser"
)

// Gpos5_1 is a Mark-to-Ligature Attachment Positioning Subtable (format 1)
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#lookup-type-5-mark-to-ligature-attachment-positioning-subtable
type Gpos5_1 struct {
	MarkCov   coverage.Table
	LigCov    coverage.Table
	MarkArray []markarray.Record // indexed by mark coverage index
	LigArray  [][][]anchor.Table // indexed by (ligature coverage index, ligature component, mark class)
}

func readGpos5_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(10)
	if err != nil {
		return nil, err
	}
	markCoverageOffset := int64(buf[0])<<8 | int64(buf[1])
	ligCoverageOffset := int64(buf[2])<<8 | int64(buf[3])
	markClassCount := int(buf[4])<<8 | int(buf[5])
	markArrayOffset := int64(buf[6])<<8 | int64(buf[7])
	ligArrayOffset := int64(buf[8])<<8 | int64(buf[9])

	markCov, err := coverage.Read(p, subtablePos+markCoverageOffset)
	if err != nil {
		return nil, err
	}
	ligCov, err := coverage.Read(p, subtablePos+ligCoverageOffset)
	if err != nil {
		return nil, err
	}

	markArray, err := markarray.Read(p, subtablePos+markArrayOffset, len(markCov))
	if err != nil {
		return nil, err
	}
	if len(markCov) > len(markArray) {
		markCov.Prune(len(markArray))
	} else {
		markArray = markArray[:len(markCov)]
	}

	ligArrayPos := subtablePos + ligArrayOffset
	err = p.SeekPos(ligArrayPos)
	if err != nil {
		return nil, err
	}

	// Read the "LigatureArray Table"
	ligCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if int(ligCount) > len(ligCov) {
		ligCount = uint16(len(ligCov))
	} else {
		ligCov.Prune(int(ligCount))
	}
	// Array of offsets to LigatureAttach tables.  Offsets are from beginning
	// of LigatureArray table, ordered by ligatureCoverage index.
	ligAttachOffsets := make([]uint16, ligCount)
	for i := range ligAttachOffsets {
		ligAttachOffsets[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}

	ligArray := make([][][]anchor.Table, ligCount)
	for i := range ligArray {
		ligAttachPos := ligArrayPos + int64(ligAttachOffsets[i])
		err = p.SeekPos(ligAttachPos)
		if err != nil {
			return nil, err
		}

		componentCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}

		// Each LigatureAttach table stores componentCount*markClassCount
		// anchor offsets (relative to ligAttachPos), one row of
		// markClassCount offsets per component, read before any of the
		// anchor tables they point to.
		anchorOffsets := make([]uint16, int(componentCount)*markClassCount)
		for k := range anchorOffsets {
			anchorOffsets[k], err = p.ReadUint16()
			if err != nil {
				return nil, err
			}
		}

		ligAttach := make([][]anchor.Table, componentCount)
		for comp := range ligAttach {
			row := make([]anchor.Table, markClassCount)
			for class := range row {
				offs := anchorOffsets[comp*markClassCount+class]
				if offs == 0 {
					continue
				}
				row[class], err = anchor.Read(p, ligAttachPos+int64(offs))
				if err != nil {
					return nil, err
				}
			}
			ligAttach[comp] = row
		}

		ligArray[i] = ligAttach
	}

	return &Gpos5_1{
		MarkCov:   markCov,
		LigCov:    ligCov,
		MarkArray: markArray,
		LigArray:  ligArray,
	}, nil
}

// Apply implements the [Subtable] interface.
//
// The glyph model used by this package does not track which ligature
// component a mark was authored against, so marks are always attached to
// the first ligature component.  This matches the common case of a single
// mark following a ligature (e.g. a combining mark after a fi-ligature).
func (l *Gpos5_1) Apply(ctx *Context, a, b int) int {
	seq := ctx.seq

	markIdx, ok := l.MarkCov[seq[a].GID]
	if !ok {
		return -1
	}
	markRecord := l.MarkArray[markIdx]

	if a == 0 {
		return -1
	}
	p := a - 1
	var ligIdx int
	for p >= 0 {
		ligIdx, ok = l.LigCov[seq[p].GID]
		if ok {
			break
		}
		p--
	}
	if p < 0 {
		return -1
	}

	components := l.LigArray[ligIdx]
	if len(components) == 0 {
		return -1
	}
	const component = 0
	if int(markRecord.Class) >= len(components[component]) {
		return -1
	}
	ligRecord := components[component][markRecord.Class]
	if ligRecord.IsEmpty() {
		return -1
	}

	dx := ligRecord.X - markRecord.Table.X
	dy := ligRecord.Y - markRecord.Table.Y
	for i := p; i < a; i++ {
		dx -= seq[i].Advance
	}
	seq[a].XOffset += dx
	seq[a].YOffset += dy
	return a + 1
}

func (l *Gpos5_1) countMarkClasses() int {
	if len(l.LigArray) > 0 && len(l.LigArray[0]) > 0 {
		return len(l.LigArray[0][0])
	}

	var maxClass uint16
	for _, rec := range l.MarkArray {
		if rec.Class > maxClass {
			maxClass = rec.Class
		}
	}
	return int(maxClass) + 1
}

// encodeLen implements the [Subtable] interface.
func (l *Gpos5_1) encodeLen() int {
	total := 12
	total += l.MarkCov.EncodeLen()
	total += l.LigCov.EncodeLen()
	total += 2 + (4+6)*len(l.MarkArray)

	total += 2 + 2*len(l.LigArray)
	for _, ligAttach := range l.LigArray {
		total += 2
		for _, row := range ligAttach {
			for _, rec := range row {
				total += 2
				if !rec.IsEmpty() {
					total += 6
				}
			}
		}
	}
	return total
}

// encode implements the [Subtable] interface.
func (l *Gpos5_1) encode() []byte {
	markCount := len(l.MarkArray)
	markClassCount := l.countMarkClasses()
	ligCount := len(l.LigArray)

	total := 12
	markCoverageOffset := total
	total += l.MarkCov.EncodeLen()
	ligCoverageOffset := total
	total += l.LigCov.EncodeLen()
	markArrayOffset := total
	total += 2 + (4+6)*markCount
	ligArrayOffset := total

	res := make([]byte, 0, total)

	res = append(res,
		0, 1, // posFormat
		byte(markCoverageOffset>>8), byte(markCoverageOffset),
		byte(ligCoverageOffset>>8), byte(ligCoverageOffset),
		byte(markClassCount>>8), byte(markClassCount),
		byte(markArrayOffset>>8), byte(markArrayOffset),
		byte(ligArrayOffset>>8), byte(ligArrayOffset),
	)

	res = append(res, l.MarkCov.Encode()...)
	res = append(res, l.LigCov.Encode()...)

	res = append(res,
		byte(markCount>>8), byte(markCount),
	)
	offs := 2 + 4*markCount
	for _, rec := range l.MarkArray {
		res = append(res,
			byte(rec.Class>>8), byte(rec.Class),
			byte(offs>>8), byte(offs),
		)
		offs += 6
	}
	for _, rec := range l.MarkArray {
		res = rec.Append(res)
	}

	// LigatureArray table.
	res = append(res,
		byte(ligCount>>8), byte(ligCount),
	)
	ligAttachOffset := 2 + 2*ligCount
	ligAttachLens := make([]int, ligCount)
	for i, ligAttach := range l.LigArray {
		n := 2 + 2*len(ligAttach)*markClassCount
		for _, row := range ligAttach {
			for _, rec := range row {
				if !rec.IsEmpty() {
					n += 6
				}
			}
		}
		ligAttachLens[i] = n
	}
	offs = ligAttachOffset
	for _, n := range ligAttachLens {
		res = append(res, byte(offs>>8), byte(offs))
		offs += n
	}

	for _, ligAttach := range l.LigArray {
		res = append(res,
			byte(len(ligAttach)>>8), byte(len(ligAttach)),
		)
		anchorOffs := 2 + 2*len(ligAttach)*markClassCount
		for _, row := range ligAttach {
			for _, rec := range row {
				if rec.IsEmpty() {
					res = append(res, 0, 0)
					continue
				}
				res = append(res, byte(anchorOffs>>8), byte(anchorOffs))
				anchorOffs += 6
			}
		}
		for _, row := range ligAttach {
			for _, rec := range row {
				if rec.IsEmpty() {
					continue
				}
				res = rec.Append(res)
			}
		}
	}

	return res
}
