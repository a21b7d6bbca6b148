// holdings is for retrieving data holding information from SEISAN files.
package holdings

import (
	"io"
	"time"

	"github.com/GeoNet/seisan/internal/seisan"
)

type Holding struct {
	Network, Station, Channel, Location string
	Start                               time.Time
	NumSamples                          int
}

// Seisan reads the channel headers from the SEISAN file in r and returns
// a summary for each channel in file order.  The sample blocks are skipped.
func Seisan(r io.ReadSeeker) ([]Holding, error) {
	d, err := seisan.NewDecoder(r, true)
	if err != nil {
		return nil, err
	}

	h := make([]Holding, 0, d.Channels())

	for {
		c, err := d.Next()
		switch {
		case err == io.EOF:
			return merge(h), nil
		case err != nil:
			return nil, err
		}

		h = append(h, Holding{
			Network:    c.Network,
			Station:    c.Station,
			Channel:    c.Channel,
			Location:   c.Location,
			Start:      c.StartTime,
			NumSamples: c.SampleCount,
		})
	}
}

// merge combines repeated streams into one holding with the earliest start
// and the total sample count, keeping the order of first appearance.
func merge(in []Holding) []Holding {
	type nslc struct {
		Network, Station, Channel, Location string
	}

	idx := make(map[nslc]int)

	var out []Holding
	for _, h := range in {
		k := nslc{h.Network, h.Station, h.Channel, h.Location}

		i, ok := idx[k]
		if !ok {
			idx[k] = len(out)
			out = append(out, h)
			continue
		}

		if h.Start.Before(out[i].Start) {
			out[i].Start = h.Start
		}
		out[i].NumSamples += h.NumSamples
	}

	return out
}
