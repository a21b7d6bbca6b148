package seisan

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ChannelHeaderSize is the length of the channel header record.
const ChannelHeaderSize = 1040

// ChannelHeader is the decoded SEISAN channel header.
type ChannelHeader struct {
	Network, Station, Location, Channel string

	SampleRate  float64 // Hz
	SampleCount int
	StartTime   time.Time
}

// SrcName returns the stream name as NET_STA_LOC_CHA.
func (h ChannelHeader) SrcName() string {
	return strings.Join([]string{h.Network, h.Station, h.Location, h.Channel}, "_")
}

// EndTime returns the time of the last sample.
func (h ChannelHeader) EndTime() time.Time {
	if h.SampleCount < 1 || h.SampleRate <= 0 {
		return h.StartTime
	}
	return h.StartTime.Add(time.Duration(math.Round(float64(h.SampleCount-1) / h.SampleRate * float64(time.Second))))
}

// decodeChannelHeader decodes the fixed column channel header in b.
// The codes are spread over non adjacent columns.
func decodeChannelHeader(b []byte) (ChannelHeader, error) {
	if len(b) < ChannelHeaderSize {
		return ChannelHeader{}, Error{Kind: MalformedChannelHeader, Err: fmt.Errorf("short header: %d bytes", len(b))}
	}

	h := ChannelHeader{
		Station:  strings.TrimSpace(string(b[0:5])),
		Network:  strings.TrimSpace(string([]byte{b[16], b[19]})),
		Channel:  strings.TrimSpace(string([]byte{b[5], b[6], b[8]})),
		Location: strings.TrimSpace(string([]byte{b[7], b[12]})),
	}

	f := fields{b: b}

	h.SampleRate = f.float("sample rate", 36, 43)
	h.SampleCount = f.int("sample count", 43, 50)

	year := f.int("year", 9, 12) + 1900
	month := f.int("month", 17, 19)
	day := f.int("day", 20, 22)
	hour := f.int("hour", 23, 25)
	minute := f.int("minute", 26, 28)
	seconds := f.float("seconds", 29, 35)

	if f.err != nil {
		return ChannelHeader{}, Error{Kind: MalformedChannelHeader, Err: f.err}
	}

	if h.SampleCount < 0 {
		return ChannelHeader{}, Error{Kind: MalformedChannelHeader, Err: fmt.Errorf("negative sample count %d", h.SampleCount)}
	}

	if !finite(h.SampleRate) {
		return ChannelHeader{}, Error{Kind: MalformedChannelHeader, Err: fmt.Errorf("sample rate %g", h.SampleRate)}
	}

	// time.Date normalises out of range fields, they have to be rejected first.
	switch {
	case month < 1 || month > 12:
		f.err = fmt.Errorf("month %d", month)
	case day < 1 || day > daysIn(year, month):
		f.err = fmt.Errorf("day %d for %d-%02d", day, year, month)
	case hour < 0 || hour > 23:
		f.err = fmt.Errorf("hour %d", hour)
	case minute < 0 || minute > 59:
		f.err = fmt.Errorf("minute %d", minute)
	case !finite(seconds) || seconds < 0:
		f.err = fmt.Errorf("seconds %g", seconds)
	}

	if f.err != nil {
		return ChannelHeader{}, Error{Kind: MalformedChannelHeader, Err: f.err}
	}

	// seconds are added to the whole minute so the fractional part is kept.
	h.StartTime = time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC).
		Add(time.Duration(math.Round(seconds * float64(time.Second))))

	return h, nil
}

// fields parses fixed column numbers from b, keeping the first error.
type fields struct {
	b   []byte
	err error
}

func (f *fields) int(name string, from, to int) int {
	if f.err != nil {
		return 0
	}

	s := string(f.b[from:to])

	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		f.err = fmt.Errorf("%s %q: %w", name, s, err)
	}

	return i
}

func (f *fields) float(name string, from, to int) float64 {
	if f.err != nil {
		return 0
	}

	s := string(f.b[from:to])

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		f.err = fmt.Errorf("%s %q: %w", name, s, err)
	}

	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// daysIn returns the number of days in month of year.
func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
