// Package mseedconv converts decoded SEISAN channels into miniSEED records.
package mseedconv

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/GeoNet/kit/seis/ms"
	"github.com/GeoNet/seisan/internal/seisan"
)

const (
	// RecordLength is the length of each miniSEED record written.
	RecordLength = 512
	// recordLengthExp is log2(RecordLength) for blockette 1000.
	recordLengthExp = 9

	blocketteOffset = ms.RecordHeaderSize
	dataOffset      = 64

	// SamplesPerRecord is the number of INT32 samples that fit in one record.
	SamplesPerRecord = (RecordLength - dataOffset) / 4
)

// Records converts c into miniSEED records with INT32 big-endian encoding.
// seq is the sequence number of the first record and the next free sequence
// number is returned.
func Records(c seisan.ChannelRecord, seq int) ([][]byte, int, error) {
	factor, multiplier, err := rateFactors(c.SampleRate)
	if err != nil {
		return nil, seq, fmt.Errorf("%s: %w", c.SrcName(), err)
	}

	for i, v := range c.Samples {
		if v > math.MaxInt32 || v < math.MinInt32 {
			return nil, seq, fmt.Errorf("%s: sample %d value %d overflows int32", c.SrcName(), i, v)
		}
	}

	var out [][]byte

	for i := 0; i < len(c.Samples); i += SamplesPerRecord {
		j := i + SamplesPerRecord
		if j > len(c.Samples) {
			j = len(c.Samples)
		}

		var hdr ms.RecordHeader

		hdr.SetSeqNumber(seq % 1000000)
		hdr.DataQualityIndicator = 'D'
		hdr.ReservedByte = ' '
		hdr.SetNetwork(c.Network)
		hdr.SetStation(c.Station)
		hdr.SetLocation(c.Location)
		hdr.SetChannel(c.Channel)
		hdr.SetStartTime(sampleTime(c.ChannelHeader, i))
		hdr.SetCorrection(0, true)
		hdr.NumberOfSamples = uint16(j - i) //nolint:gosec
		hdr.SampleRateFactor = factor
		hdr.SampleRateMultiplier = multiplier
		hdr.NumberOfBlockettesThatFollow = 1
		hdr.BeginningOfData = dataOffset
		hdr.FirstBlockette = blocketteOffset

		out = append(out, record(hdr, c.Samples[i:j]))
		seq++
	}

	return out, seq, nil
}

// Write writes the miniSEED records for each channel in s to w.
func Write(w io.Writer, s []seisan.ChannelRecord) (int, error) {
	var n int
	seq := 1

	for _, c := range s {
		recs, next, err := Records(c, seq)
		if err != nil {
			return n, err
		}
		seq = next

		for _, r := range recs {
			if _, err := w.Write(r); err != nil {
				return n, err
			}
			n++
		}
	}

	return n, nil
}

func record(hdr ms.RecordHeader, samples []int64) []byte {
	b := make([]byte, RecordLength)

	copy(b[0:], ms.EncodeRecordHeader(hdr))
	copy(b[blocketteOffset:], ms.EncodeBlocketteHeader(ms.BlocketteHeader{BlocketteType: 1000}))
	copy(b[blocketteOffset+ms.BlocketteHeaderSize:], ms.EncodeBlockette1000(ms.Blockette1000{
		Encoding:     uint8(ms.EncodingInt32),
		WordOrder:    uint8(ms.BigEndian),
		RecordLength: recordLengthExp,
	}))

	for i, v := range samples {
		binary.BigEndian.PutUint32(b[dataOffset+i*4:], uint32(int32(v))) //nolint:gosec
	}

	return b
}

// sampleTime returns the time of sample i.  BTime only holds 1/10000 s so
// sub 100 microsecond offsets are lost.
func sampleTime(h seisan.ChannelHeader, i int) time.Time {
	if i == 0 || h.SampleRate <= 0 {
		return h.StartTime
	}
	return h.StartTime.Add(time.Duration(math.Round(float64(i) / h.SampleRate * float64(time.Second))))
}

// rateFactors converts a sample rate in Hz into SEED rate factor and multiplier.
func rateFactors(rate float64) (int16, int16, error) {
	switch {
	case rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0):
		return 0, 0, fmt.Errorf("invalid sample rate %g", rate)
	case rate >= 1 && rate == math.Trunc(rate) && rate <= math.MaxInt16:
		return int16(rate), 1, nil
	case rate < 1 && 1/rate == math.Trunc(1/rate) && 1/rate <= math.MaxInt16:
		// negative factor is seconds per sample.
		return -int16(1 / rate), 1, nil
	}

	// samples per second as factor / -multiplier.
	for m := 10.0; m <= 10000; m *= 10 {
		f := math.Round(rate * m)
		if f <= math.MaxInt16 && math.Abs(f/m-rate) < 1e-9 {
			return int16(f), -int16(m), nil
		}
	}

	return 0, 0, fmt.Errorf("sample rate %g has no SEED representation", rate)
}
