package seisan

import (
	"fmt"
	"io"
)

// leadingWords is the number of record bookkeeping words at the start of each sample block.
const leadingWords = 2

// blockSize returns the length in bytes of the sample block for n samples.
func (f Format) blockSize(n int) int64 {
	return int64(n+leadingWords) * int64(f.WordBytes())
}

// readSamples reads the sample block for n samples from r and decodes it
// with the word size and byte order of f.
func readSamples(r io.Reader, f Format, n int) ([]int64, error) {
	b := make([]byte, f.blockSize(n))

	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, Error{Kind: TruncatedSamples, Err: fmt.Errorf("reading %d samples: %w", n, err)}
		}
		return nil, err
	}

	return decodeInts(b[leadingWords*f.WordBytes():], f, n), nil
}

// decodeInts decodes n signed integers from b.  b must hold at least n words.
func decodeInts(b []byte, f Format, n int) []int64 {
	order := f.ByteOrder.Order()
	values := make([]int64, n)

	switch f.WordSize {
	case 64:
		for i := range values {
			values[i] = int64(order.Uint64(b[i*8:]))
		}
	default:
		for i := range values {
			values[i] = int64(int32(order.Uint32(b[i*4:])))
		}
	}

	return values
}
