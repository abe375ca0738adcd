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

// Package parser provides a small helper for decoding the binary tables
// found inside OpenType/TrueType font files.  It wraps a seekable reader
// with the handful of fixed-width read operations the table decoders in
// this module need, and keeps track of the reader's total size so that
// offsets embedded in the tables can be validated before use.
package parser

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadSeekSizer is the interface a font reader must implement to be used
// with [New].  *os.File and sfnt's own table-fragment readers both satisfy
// this.
type ReadSeekSizer interface {
	io.ReaderAt
	io.ReadSeeker
	Size() int64
}

// Parser reads binary data from an underlying [ReadSeekSizer], keeping
// track of the current read position.
type Parser struct {
	r    ReadSeekSizer
	size int64
}

// New creates a new Parser reading from r.
func New(r ReadSeekSizer) *Parser {
	return &Parser{r: r, size: r.Size()}
}

// Size returns the total length in bytes of the data being read.
func (p *Parser) Size() int64 {
	return p.size
}

// Read implements the [io.Reader] interface, so that a Parser can be used
// directly as the source argument to [encoding/binary.Read].
func (p *Parser) Read(buf []byte) (int, error) {
	return io.ReadFull(p.r, buf)
}

// SeekPos moves the read position to the given byte offset, measured from
// the start of the data.
func (p *Parser) SeekPos(pos int64) error {
	if pos < 0 || pos > p.size {
		return &InvalidFontError{
			SubSystem: "sfnt/parser",
			Reason:    fmt.Sprintf("seek position %d out of range", pos),
		}
	}
	_, err := p.r.Seek(pos, io.SeekStart)
	return err
}

// ReadBytes reads and returns the next n bytes.
func (p *Parser) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := io.ReadFull(p.r, buf)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadUint16 reads a single big-endian uint16.
func (p *Parser) ReadUint16() (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(p.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadUint32 reads a single big-endian uint32.
func (p *Parser) ReadUint32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(p.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadUint16Slice reads a uint16 count, followed by that many big-endian
// uint16 values.  This is the shape used throughout the OpenType layout
// tables for offset arrays (coverage offsets, lookup offsets, and so on).
func (p *Parser) ReadUint16Slice() ([]uint16, error) {
	n, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	out := make([]uint16, n)
	for i := range out {
		out[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// InvalidFontError indicates that the font data being read is malformed in
// a way which prevents a table from being decoded.
type InvalidFontError struct {
	SubSystem string
	Reason    string
}

func (err *InvalidFontError) Error() string {
	return fmt.Sprintf("%s: invalid font: %s", err.SubSystem, err.Reason)
}

// NotSupportedError indicates that the font data uses a feature which this
// library does not (yet) implement.
type NotSupportedError struct {
	SubSystem string
	Feature   string
}

func (err *NotSupportedError) Error() string {
	return fmt.Sprintf("%s: not supported: %s", err.SubSystem, err.Feature)
}
