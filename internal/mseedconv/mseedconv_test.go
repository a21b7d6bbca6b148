package mseedconv_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/GeoNet/kit/seis/ms"
	"github.com/GeoNet/seisan/internal/mseedconv"
	"github.com/GeoNet/seisan/internal/seisan"
	"github.com/GeoNet/seisan/internal/seisan/seisantest"
)

var start = time.Date(2016, time.March, 19, 0, 0, 1, 968*int(time.Millisecond), time.UTC)

func channel(n int) seisan.ChannelRecord {
	c := seisan.ChannelRecord{
		ChannelHeader: seisan.ChannelHeader{
			Network: "NZ", Station: "WEL", Location: "10", Channel: "HHZ",
			SampleRate:  100,
			SampleCount: n,
			StartTime:   start,
		},
	}

	for i := 0; i < n; i++ {
		c.Samples = append(c.Samples, int64((i%200-100)*1000))
	}

	return c
}

func TestRecords(t *testing.T) {
	c := channel(300)

	recs, seq, err := mseedconv.Records(c, 7)
	if err != nil {
		t.Fatal(err)
	}

	if len(recs) != 3 {
		t.Fatalf("expected 3 records got %d", len(recs))
	}

	if seq != 10 {
		t.Errorf("expected next sequence 10 got %d", seq)
	}

	var samples []int64

	for i, b := range recs {
		if len(b) != mseedconv.RecordLength {
			t.Errorf("record %d expected length %d got %d", i, mseedconv.RecordLength, len(b))
		}

		r, err := ms.NewRecord(b)
		if err != nil {
			t.Fatalf("record %d: %s", i, err)
		}

		if r.SrcName(false) != "NZ_WEL_10_HHZ" {
			t.Errorf("record %d expected NZ_WEL_10_HHZ got %s", i, r.SrcName(false))
		}

		if r.SeqNumber() != 7+i {
			t.Errorf("record %d expected sequence %d got %d", i, 7+i, r.SeqNumber())
		}

		if r.SampleRate() != 100 {
			t.Errorf("record %d expected sample rate 100 got %g", i, r.SampleRate())
		}

		if r.BlockSize() != mseedconv.RecordLength {
			t.Errorf("record %d expected block size %d got %d", i, mseedconv.RecordLength, r.BlockSize())
		}

		st := start.Add(time.Duration(i*mseedconv.SamplesPerRecord) * 10 * time.Millisecond)
		if !r.StartTime().Equal(st) {
			t.Errorf("record %d expected start %s got %s", i, st, r.StartTime())
		}

		s, err := r.Int32s()
		if err != nil {
			t.Fatalf("record %d: %s", i, err)
		}

		for _, v := range s {
			samples = append(samples, int64(v))
		}
	}

	if len(samples) != len(c.Samples) {
		t.Fatalf("expected %d samples got %d", len(c.Samples), len(samples))
	}

	for i := range samples {
		if samples[i] != c.Samples[i] {
			t.Errorf("sample %d expected %d got %d", i, c.Samples[i], samples[i])
		}
	}
}

func TestRecordsOverflow(t *testing.T) {
	c := channel(3)
	c.Samples[1] = 1 << 40

	if _, _, err := mseedconv.Records(c, 1); err == nil {
		t.Error("expected error for sample overflow")
	}
}

func TestSampleRates(t *testing.T) {
	in := []struct {
		rate float64
		ok   bool
	}{
		{rate: 100, ok: true},
		{rate: 1, ok: true},
		{rate: 0.1, ok: true},
		{rate: 0.5, ok: true},
		{rate: 62.5, ok: true},
		{rate: 0.25, ok: true},
		{rate: 0, ok: false},
		{rate: -1, ok: false},
		{rate: 1.0 / 3.0, ok: true},
		{rate: 0.123456789, ok: false},
	}

	for _, v := range in {
		c := channel(1)
		c.SampleRate = v.rate

		recs, _, err := mseedconv.Records(c, 1)
		switch {
		case v.ok && err != nil:
			t.Errorf("rate %g unexpected error %s", v.rate, err)
			continue
		case !v.ok && err == nil:
			t.Errorf("rate %g expected error", v.rate)
			continue
		case !v.ok:
			continue
		}

		r, err := ms.NewRecord(recs[0])
		if err != nil {
			t.Fatal(err)
		}

		if r.SampleRate() != v.rate {
			t.Errorf("expected sample rate %g got %g", v.rate, r.SampleRate())
		}
	}
}

// decode a SEISAN image and write it as miniSEED.
func TestWrite(t *testing.T) {
	f := seisan.Format{ByteOrder: seisan.LittleEndian, WordSize: 32, Version: 7}

	img := seisantest.Build(f, []seisantest.Channel{
		{Network: "NZ", Station: "WEL", Location: "10", Channel: "HHZ", SampleRate: 100, Start: start, Samples: make([]int64, 200)},
		{Network: "NZ", Station: "WEL", Location: "10", Channel: "HHN", SampleRate: 100, Start: start, Samples: make([]int64, 10)},
	})

	s, err := seisan.Decode(bytes.NewReader(img), false)
	if err != nil {
		t.Fatal(err)
	}

	var b bytes.Buffer

	n, err := mseedconv.Write(&b, s.Channels)
	if err != nil {
		t.Fatal(err)
	}

	if n != 3 {
		t.Errorf("expected 3 records got %d", n)
	}

	if b.Len() != 3*mseedconv.RecordLength {
		t.Errorf("expected %d bytes got %d", 3*mseedconv.RecordLength, b.Len())
	}

	r, err := ms.NewRecord(b.Bytes()[2*mseedconv.RecordLength:])
	if err != nil {
		t.Fatal(err)
	}

	if r.Channel() != "HHN" || r.SampleCount() != 10 || r.SeqNumber() != 3 {
		t.Errorf("unexpected last record %s", r)
	}
}
