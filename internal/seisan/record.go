package seisan

import (
	"fmt"
	"io"
)

// markerSize is the width of the Fortran record markers that are stripped
// from each logical record.
//
// TODO: 64 bit files are documented as using 8 byte markers.  Check the
// record layout against a SEISAN file written on a 64 bit system before
// changing this.
const markerSize = 4

// recordReader reads logical records from Fortran unformatted files.
type recordReader struct {
	r   io.Reader
	buf []byte
}

// read reads one logical record of length payload bytes.  The returned
// slice is only valid until the next call to read.
func (rr *recordReader) read(length int) ([]byte, error) {
	n := length + 2*markerSize

	if cap(rr.buf) < n {
		rr.buf = make([]byte, n)
	}
	b := rr.buf[:n]

	if _, err := io.ReadFull(rr.r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, Error{Kind: TruncatedSource, Err: fmt.Errorf("reading %d byte record: %w", length, err)}
		}
		return nil, err
	}

	return b[markerSize : markerSize+length], nil
}
