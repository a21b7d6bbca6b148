// Package seisantest builds SEISAN file images for tests.
package seisantest

import (
	"bytes"
	"fmt"
	"time"

	"github.com/GeoNet/seisan/internal/seisan"
)

const (
	markerSize = 4
	lineLength = 80
)

// Channel is the content of one channel for Build.
type Channel struct {
	Network, Station, Location, Channel string

	SampleRate float64
	Start      time.Time // millisecond precision is kept.
	Samples    []int64
}

// Build returns a SEISAN file image in format f holding channels.  Records are
// framed with 4 byte markers and the detection signature for f is stamped over
// the start of the file.
func Build(f seisan.Format, channels []Channel) []byte {
	var b bytes.Buffer

	line := bytes.Repeat([]byte{' '}, lineLength)
	copy(line[1:], "SEISANTEST EVENT")
	copy(line[30:33], fmt.Sprintf("%3d", len(channels)))
	record(&b, f, line)

	line = bytes.Repeat([]byte{' '}, lineLength)
	copy(line[1:], "seisantest")
	record(&b, f, line)

	for i := 0; i < SummaryLines(len(channels)); i++ {
		record(&b, f, bytes.Repeat([]byte{' '}, lineLength))
	}

	for _, c := range channels {
		record(&b, f, Header(c))
		samples(&b, f, c.Samples)
	}

	out := b.Bytes()
	stamp(f, out)

	return out
}

// Offsets returns the offset of each channel header payload in the image Build returns.
func Offsets(f seisan.Format, channels []Channel) []int {
	o := (2 + SummaryLines(len(channels))) * (lineLength + 2*markerSize)

	var offsets []int
	for _, c := range channels {
		offsets = append(offsets, o+markerSize)
		o += seisan.ChannelHeaderSize + 2*markerSize + (len(c.Samples)+2)*f.WordBytes()
	}

	return offsets
}

// SummaryLines is the number of channel summary lines written for n channels.
func SummaryLines(n int) int {
	l := n / 3
	if n%3 != 0 {
		l++
	}
	if l < 10 {
		l = 10
	}
	return l
}

// Header returns the 1040 byte channel header for c.
func Header(c Channel) []byte {
	h := bytes.Repeat([]byte{' '}, seisan.ChannelHeaderSize)

	sta := pad(c.Station, 5)
	net := pad(c.Network, 2)
	loc := pad(c.Location, 2)
	cha := pad(c.Channel, 3)

	copy(h[0:5], sta)
	h[5], h[6], h[8] = cha[0], cha[1], cha[2]
	h[7], h[12] = loc[0], loc[1]
	h[16], h[19] = net[0], net[1]

	t := c.Start.UTC()
	secs := float64(t.Second()) + float64(t.Nanosecond()/int(time.Millisecond))/1000.0

	copy(h[9:12], fmt.Sprintf("%3d", t.Year()-1900))
	copy(h[17:19], fmt.Sprintf("%2d", int(t.Month())))
	copy(h[20:22], fmt.Sprintf("%2d", t.Day()))
	copy(h[23:25], fmt.Sprintf("%2d", t.Hour()))
	copy(h[26:28], fmt.Sprintf("%2d", t.Minute()))
	copy(h[29:35], fmt.Sprintf("%6.3f", secs))
	copy(h[36:43], fmt.Sprintf("%7.2f", c.SampleRate))
	copy(h[43:50], fmt.Sprintf("%7d", len(c.Samples)))

	return h
}

func record(b *bytes.Buffer, f seisan.Format, payload []byte) {
	var m [markerSize]byte
	f.ByteOrder.Order().PutUint32(m[:], uint32(len(payload)))

	b.Write(m[:])
	b.Write(payload)
	b.Write(m[:])
}

// samples writes the two bookkeeping words and then the samples.
func samples(b *bytes.Buffer, f seisan.Format, values []int64) {
	order := f.ByteOrder.Order()
	w := make([]byte, f.WordBytes())

	put := func(v int64) {
		switch f.WordSize {
		case 64:
			order.PutUint64(w, uint64(v))
		default:
			order.PutUint32(w, uint32(int32(v)))
		}
		b.Write(w)
	}

	n := int64(len(values) * f.WordBytes())
	put(n)
	put(n)

	for _, v := range values {
		put(v)
	}
}

// stamp writes the detection signature for f.
func stamp(f seisan.Format, b []byte) {
	if len(b) < seisan.ProbeSize {
		return
	}

	switch {
	case f.Version == 6:
		copy(b[0:2], "KP")
		b[82] = 'P'
	case f.WordSize == 64 && f.ByteOrder == seisan.BigEndian:
		copy(b[0:8], "\x00\x00\x00\x00\x00\x00\x00P")
		copy(b[88:96], "\x00\x00\x00\x00\x00\x00\x00P")
	case f.WordSize == 64:
		copy(b[0:8], "P\x00\x00\x00\x00\x00\x00\x00")
		copy(b[88:96], "\x00\x00\x00\x00\x00\x00\x00P")
	}
}

func pad(s string, n int) string {
	for len(s) < n {
		s += " "
	}
	return s[:n]
}
