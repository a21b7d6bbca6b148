// package fdsn selects SEISAN channels with Federation of Digital Seismic Networks dataselect parameters.
package fdsn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/GeoNet/seisan/internal/seisan"
	"github.com/gorilla/schema"
)

var decoder = schema.NewDecoder()

// dataselect abbreviations
var abbreviations = map[string]string{
	"net":   "network",
	"sta":   "station",
	"loc":   "location",
	"cha":   "channel",
	"start": "starttime",
	"end":   "endtime",
}

var dataSelectNotSupported = map[string]bool{
	"quality":       true,
	"minimumlength": true,
	"longestonly":   true,
}

// nslcReg: FDSN spec allows all ascii, but we'll only allow alpha, number, _, ?, *, "," and "--" (exactly 2 hyphens only)
var nslcReg = regexp.MustCompile(`^([\w*?,]+|--)$`)

type DataSelect struct {
	StartTime Time     `schema:"starttime"` // limit to data on or after the specified start time.
	EndTime   Time     `schema:"endtime"`   // limit to data on or before the specified end time.
	Network   []string `schema:"network"`   // network name of data to query
	Station   []string `schema:"station"`   // station name of data to query
	Location  []string `schema:"location"`  // location name of data to query
	Channel   []string `schema:"channel"`   // channel number of data to query
}

type Time struct {
	time.Time
}

// Selector matches decoded channel headers against a set of DataSelect.
// The zero Selector matches everything.
type Selector struct {
	searches []search
}

type search struct {
	start, end                          time.Time
	network, station, location, channel *regexp.Regexp
}

func init() {
	// Handle comma separated parameters (eg: net, sta, loc, cha, etc)
	decoder.RegisterConverter([]string{}, func(input string) reflect.Value {
		return reflect.ValueOf(strings.Split(input, ","))
	})
}

/*
parses the time in text as per the FDSN spec.  Pads text for parsing with
time.RFC3339Nano.  Accepted formats are (UTC):
   YYYY-MM-DDTHH:MM:SS.ssssss
   YYYY-MM-DDTHH:MM:SS
   YYYY-MM-DD

Implements the encoding.TextUnmarshaler interface.
*/
func (t *Time) UnmarshalText(text []byte) (err error) {
	s := string(text)
	l := len(s)
	if len(s) < 10 {
		return fmt.Errorf("invalid time format: %s", s)
	}

	if l >= 19 && l <= 26 && l != 20 { // length 20: "YYYY-MM-DDTHH:MM:SS." invalid
		s = s + ".000000000Z"[(l-19):] // "YYYY-MM-DDTHH:MM:SS" append to nano
	} else if l == 10 {
		s = s + "T00:00:00.000000000Z" // YYYY-MM-DD
	} else {
		return fmt.Errorf("invalid time format: %s", s)
	}
	t.Time, err = time.Parse(time.RFC3339Nano, s)
	return
}

// ParseDataSelectPost parses selection lines from r in the FDSN dataselect POST format:
//
//	NET STA LOC CHA STARTTIME ENDTIME
//
// Lines holding "=" are parameters, none of which are used for SEISAN selection.
func ParseDataSelectPost(r io.Reader, d *[]DataSelect) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// ignore any blank lines or lines with "=", we don't use any of these parameters
		if len(line) == 0 || strings.Contains(line, "=") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 6 {
			return fmt.Errorf("incorrect number of fields in dataselect line, expected 6 but observed: %d", len(fields))
		}

		startTime := Time{}
		if err := startTime.UnmarshalText([]byte(fields[4])); err != nil {
			return err
		}

		endTime := Time{}
		if err := endTime.UnmarshalText([]byte(fields[5])); err != nil {
			return err
		}

		*d = append(*d,
			DataSelect{
				StartTime: startTime,
				EndTime:   endTime,
				Network:   []string{fields[0]},
				Station:   []string{fields[1]},
				Location:  []string{fields[2]},
				Channel:   []string{fields[3]},
			})
	}

	return scanner.Err()
}

// ParseDataSelectGet parses the FDSN dataselect parameters in v.  Missing
// network, station, location or channel parameters match everything and
// missing times leave the selection open ended.
func ParseDataSelectGet(v url.Values) (DataSelect, error) {
	var e DataSelect

	// convert all abbreviated params to their expanded form
	for abbrev, expanded := range abbreviations {
		if val, ok := v[abbrev]; ok {
			v[expanded] = val
			delete(v, abbrev)
		}
	}

	for key, val := range v {
		if _, ok := dataSelectNotSupported[key]; ok {
			return DataSelect{}, fmt.Errorf("\"%s\" is not supported", key)
		}
		if len(val) == 0 || len(val[0]) == 0 {
			return DataSelect{}, fmt.Errorf("Invalid %s value", key)
		}
	}

	if err := decoder.Decode(&e, v); err != nil {
		return DataSelect{}, err
	}

	if len(e.Network) == 0 {
		e.Network = []string{"*"}
	}
	if len(e.Station) == 0 {
		e.Station = []string{"*"}
	}
	if len(e.Location) == 0 {
		e.Location = []string{"*"}
	}
	if len(e.Channel) == 0 {
		e.Channel = []string{"*"}
	}

	if !e.StartTime.IsZero() && !e.EndTime.IsZero() && e.EndTime.Before(e.StartTime.Time) {
		return DataSelect{}, errors.New("endtime must be after starttime")
	}

	return e, nil
}

// ParseDataSelect parses a dataselect query string e.g., "net=NZ&sta=WEL&cha=HH?".
func ParseDataSelect(query string) (DataSelect, error) {
	v, err := url.ParseQuery(query)
	if err != nil {
		return DataSelect{}, err
	}

	return ParseDataSelectGet(v)
}

// NewSelector compiles d into a Selector that matches any of d.
func NewSelector(d ...DataSelect) (Selector, error) {
	var s Selector

	for _, v := range d {
		ne, err := toRegexp(v.Network, false)
		if err != nil {
			return Selector{}, fmt.Errorf("Invalid network parameter: %s", err.Error())
		}

		st, err := toRegexp(v.Station, false)
		if err != nil {
			return Selector{}, fmt.Errorf("Invalid station parameter: %s", err.Error())
		}

		lo, err := toRegexp(v.Location, true)
		if err != nil {
			return Selector{}, fmt.Errorf("Invalid location parameter: %s", err.Error())
		}

		ch, err := toRegexp(v.Channel, false)
		if err != nil {
			return Selector{}, fmt.Errorf("Invalid channel parameter: %s", err.Error())
		}

		s.searches = append(s.searches, search{
			start:    v.StartTime.Time,
			end:      v.EndTime.Time,
			network:  ne,
			station:  st,
			location: lo,
			channel:  ch,
		})
	}

	return s, nil
}

// Match returns true if h is selected.
func (s Selector) Match(h seisan.ChannelHeader) bool {
	if len(s.searches) == 0 {
		return true
	}

	for _, v := range s.searches {
		if v.match(h) {
			return true
		}
	}

	return false
}

// Select returns the channels in c matched by s, keeping their order.
func (s Selector) Select(c []seisan.ChannelRecord) []seisan.ChannelRecord {
	var out []seisan.ChannelRecord
	for _, v := range c {
		if s.Match(v.ChannelHeader) {
			out = append(out, v)
		}
	}
	return out
}

func (v search) match(h seisan.ChannelHeader) bool {
	switch {
	case !v.network.MatchString(h.Network):
		return false
	case !v.station.MatchString(h.Station):
		return false
	case !v.location.MatchString(h.Location):
		return false
	case !v.channel.MatchString(h.Channel):
		return false
	case !v.start.IsZero() && h.EndTime().Before(v.start):
		return false
	case !v.end.IsZero() && h.StartTime.After(v.end):
		return false
	}

	return true
}

func toRegexp(params []string, emptyDash bool) (*regexp.Regexp, error) {
	p, err := GenRegex(params, emptyDash)
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		p = []string{"^.*$"}
	}
	return regexp.Compile(strings.Join(p, `|`))
}

// GenRegex converts the '*', '?' and '--' characters in input to their regular expression equivalents.
func GenRegex(input []string, emptyDash bool) ([]string, error) {
	if len(input) == 0 {
		return nil, nil
	}

	// FDSN spec: all ASCII chars are allowed, and only ? and * has special meaning.
	result := make([]string, 0)
	for _, s := range input {
		if s == "" {
			continue
		}

		if !nslcReg.MatchString(s) {
			return nil, fmt.Errorf("Invalid parameter:'%s'", s)
		}
		var r string

		if emptyDash && s == "--" {
			// "--" represents the blank location, SEISAN location codes are trimmed.
			r = `^$`
		} else {
			s = strings.Replace(s, "*", ".*", -1)
			s = strings.Replace(s, "?", ".", -1)
			r = "^" + s + "$"
		}

		result = append(result, r)
	}

	return result, nil
}
