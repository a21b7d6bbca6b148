// Package seisan decodes SEISAN waveform files.
//
// SEISAN files are written with Fortran unformatted I/O so every write is
// surrounded by compiler dependent record markers.  The byte order, word size
// and version are not stored in the file and have to be inferred from the
// markers around the first 80 character line.
package seisan

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ProbeSize is the number of bytes needed to detect a SEISAN file (12 lines of 80 characters).
const ProbeSize = 12 * 80

// ByteOrder is the byte order of the binary words in a SEISAN file.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = 0
	BigEndian    ByteOrder = 1
)

func (b ByteOrder) String() string {
	switch b {
	case BigEndian:
		return "big-endian"
	default:
		return "little-endian"
	}
}

// Order returns the binary.ByteOrder used to decode integers.
func (b ByteOrder) Order() binary.ByteOrder {
	switch b {
	case BigEndian:
		return binary.BigEndian
	default:
		return binary.LittleEndian
	}
}

// Format describes the on disk layout of a SEISAN file.  It is detected once
// per file and used for every binary read that follows.
type Format struct {
	ByteOrder ByteOrder
	WordSize  int // bits, 32 or 64
	Version   int // 6 or 7
}

// WordBytes returns the width of one binary word in bytes.
func (f Format) WordBytes() int {
	return f.WordSize / 8
}

func (f Format) String() string {
	return fmt.Sprintf("SEISAN v%d %s %d-bit", f.Version, f.ByteOrder, f.WordSize)
}

// the first write of every SEISAN file is 80 characters long so the record
// marker holds the value 80 ('P').
const marker = 'P'

var (
	be32 = []byte{0, 0, 0, marker}
	le32 = []byte{marker, 0, 0, 0}
	be64 = []byte{0, 0, 0, 0, 0, 0, 0, marker}
	le64 = []byte{marker, 0, 0, 0, 0, 0, 0, 0}
)

// Sniff returns the Format for the probe buffer p.  p should hold at least the
// first ProbeSize bytes of the file.  An Error of kind UnrecognizedFormat is returned
// when p does not match any of the known record marker layouts.
//
// The checks are ordered, the Microsoft Fortran ("KP") check only looks at
// three bytes and must run first.
func Sniff(p []byte) (Format, error) {
	if len(p) < ProbeSize {
		return Format{}, Error{Kind: UnrecognizedFormat, Err: fmt.Errorf("probe too short: %d bytes", len(p))}
	}

	switch {
	case p[0] == 'K' && p[1] == 'P' && p[82] == marker:
		return Format{ByteOrder: LittleEndian, WordSize: 32, Version: 6}, nil
	case bytes.Equal(p[0:8], be64) && bytes.Equal(p[88:96], be64):
		return Format{ByteOrder: BigEndian, WordSize: 64, Version: 7}, nil
	case bytes.Equal(p[0:8], le64) && bytes.Equal(p[88:96], be64):
		// the trailing marker is checked against the big-endian pattern.
		return Format{ByteOrder: LittleEndian, WordSize: 64, Version: 7}, nil
	case bytes.Equal(p[0:4], be32) && bytes.Equal(p[84:88], be32):
		return Format{ByteOrder: BigEndian, WordSize: 32, Version: 7}, nil
	case bytes.Equal(p[0:4], le32) && bytes.Equal(p[84:88], le32):
		return Format{ByteOrder: LittleEndian, WordSize: 32, Version: 7}, nil
	}

	return Format{}, Error{Kind: UnrecognizedFormat, Err: errors.New("no record marker match")}
}

// IsSeisan returns true if the source r looks like a SEISAN file.
// r is left positioned at the start.
func IsSeisan(r io.ReadSeeker) bool {
	_, err := sniff(r)
	return err == nil
}

// sniff reads the probe buffer from the start of r and rewinds it.
func sniff(r io.ReadSeeker) (Format, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Format{}, err
	}

	p := make([]byte, ProbeSize)

	n, err := io.ReadFull(r, p)
	switch {
	case err == io.EOF, err == io.ErrUnexpectedEOF:
		p = p[:n]
	case err != nil:
		return Format{}, err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Format{}, err
	}

	return Sniff(p)
}
