package seisan

import (
	"fmt"
	"io"
)

// ChannelRecord is one decoded channel.  Samples is nil for a headers only decode.
type ChannelRecord struct {
	ChannelHeader
	Samples []int64
}

// Stream holds the channels of one SEISAN file in file order.
type Stream struct {
	Format   Format
	Channels []ChannelRecord
}

// Decoder reads channels from a SEISAN file one at a time.  The source must
// not be used by anything else while a Decoder is reading from it.
type Decoder struct {
	r           io.ReadSeeker
	rr          recordReader
	format      Format
	headersOnly bool

	size     int64 // total source length.
	channels int
	next     int
}

// NewDecoder detects the format of r and reads the event header.  If headersOnly
// is true the sample blocks are skipped.
func NewDecoder(r io.ReadSeeker, headersOnly bool) (*Decoder, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	f, err := sniff(r)
	if err != nil {
		return nil, err
	}

	d := &Decoder{
		r:           r,
		rr:          recordReader{r: r},
		format:      f,
		headersOnly: headersOnly,
		size:        size,
	}

	if d.channels, err = readEventHeader(&d.rr); err != nil {
		return nil, err
	}

	return d, nil
}

// Format returns the detected file format.
func (d *Decoder) Format() Format {
	return d.format
}

// Channels returns the number of channels declared in the event header.
func (d *Decoder) Channels() int {
	return d.channels
}

// Next decodes the next channel.  It returns io.EOF once all channels have been read.
func (d *Decoder) Next() (ChannelRecord, error) {
	if d.next >= d.channels {
		return ChannelRecord{}, io.EOF
	}

	b, err := d.rr.read(ChannelHeaderSize)
	if err != nil {
		return ChannelRecord{}, err
	}

	h, err := decodeChannelHeader(b)
	if err != nil {
		return ChannelRecord{}, fmt.Errorf("channel %d: %w", d.next+1, err)
	}

	// check the block fits before reading or skipping it.
	pos, err := d.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return ChannelRecord{}, err
	}

	n := d.format.blockSize(h.SampleCount)
	if pos+n > d.size {
		return ChannelRecord{}, Error{
			Kind: TruncatedSamples,
			Err:  fmt.Errorf("channel %d %s: need %d bytes, %d remain", d.next+1, h.SrcName(), n, d.size-pos),
		}
	}

	c := ChannelRecord{ChannelHeader: h}

	switch d.headersOnly {
	case true:
		if _, err = d.r.Seek(n, io.SeekCurrent); err != nil {
			return ChannelRecord{}, err
		}
	default:
		if c.Samples, err = readSamples(d.r, d.format, h.SampleCount); err != nil {
			return ChannelRecord{}, fmt.Errorf("channel %d %s: %w", d.next+1, h.SrcName(), err)
		}
	}

	d.next++

	return c, nil
}

// Decode decodes all channels from the SEISAN file in r.  No Stream is returned
// if any channel fails to decode.
func Decode(r io.ReadSeeker, headersOnly bool) (Stream, error) {
	d, err := NewDecoder(r, headersOnly)
	if err != nil {
		return Stream{}, err
	}

	s := Stream{
		Format:   d.Format(),
		Channels: make([]ChannelRecord, 0, d.Channels()),
	}

	for {
		c, err := d.Next()
		switch {
		case err == io.EOF:
			return s, nil
		case err != nil:
			return Stream{}, err
		}

		s.Channels = append(s.Channels, c)
	}
}
