package seisan_test

import (
	"bytes"
	"io"
	"runtime"
	"strconv"
	"testing"

	"github.com/GeoNet/seisan/internal/seisan"
)

func probe(head []byte, at int, tail []byte) []byte {
	p := bytes.Repeat([]byte{' '}, seisan.ProbeSize)
	copy(p, head)
	copy(p[at:], tail)
	return p
}

func TestSniff(t *testing.T) {
	in := []struct {
		id string
		p  []byte
		f  seisan.Format
	}{
		{id: l(), p: probe([]byte("KP"), 82, []byte("P")), f: seisan.Format{ByteOrder: seisan.LittleEndian, WordSize: 32, Version: 6}},
		{id: l(), p: probe([]byte("\x00\x00\x00\x00\x00\x00\x00P"), 88, []byte("\x00\x00\x00\x00\x00\x00\x00P")), f: seisan.Format{ByteOrder: seisan.BigEndian, WordSize: 64, Version: 7}},
		{id: l(), p: probe([]byte("P\x00\x00\x00\x00\x00\x00\x00"), 88, []byte("\x00\x00\x00\x00\x00\x00\x00P")), f: seisan.Format{ByteOrder: seisan.LittleEndian, WordSize: 64, Version: 7}},
		{id: l(), p: probe([]byte("\x00\x00\x00P"), 84, []byte("\x00\x00\x00P")), f: seisan.Format{ByteOrder: seisan.BigEndian, WordSize: 32, Version: 7}},
		{id: l(), p: probe([]byte("P\x00\x00\x00"), 84, []byte("P\x00\x00\x00")), f: seisan.Format{ByteOrder: seisan.LittleEndian, WordSize: 32, Version: 7}},
	}

	for _, v := range in {
		f, err := seisan.Sniff(v.p)
		if err != nil {
			t.Errorf("%s unexpected error %s", v.id, err)
			continue
		}

		if f != v.f {
			t.Errorf("%s expected %s got %s", v.id, v.f, f)
		}
	}
}

func TestSniffUnrecognized(t *testing.T) {
	in := []struct {
		id string
		p  []byte
	}{
		{id: l(), p: probe(nil, 0, nil)},
		{id: l(), p: probe([]byte("KP"), 82, []byte("Q"))},
		{id: l(), p: probe([]byte("\x00\x00\x00P"), 84, []byte("P\x00\x00\x00"))},
		{id: l(), p: probe([]byte("P\x00\x00\x00"), 84, []byte("\x00\x00\x00P"))},
		{id: l(), p: probe([]byte("\x00\x00\x00\x00\x00\x00\x00P"), 88, []byte("P\x00\x00\x00\x00\x00\x00\x00"))},
		{id: l(), p: probe([]byte("\x00\x00\x00P"), 0, nil)[:seisan.ProbeSize-1]},
		{id: l(), p: []byte("KP")},
		{id: l(), p: nil},
	}

	for _, v := range in {
		_, err := seisan.Sniff(v.p)
		if !seisan.IsKind(err, seisan.UnrecognizedFormat) {
			t.Errorf("%s expected unrecognized format error got %v", v.id, err)
		}
	}
}

// every probe shorter than ProbeSize is rejected, even when the signature is present.
func TestSniffShort(t *testing.T) {
	full := probe([]byte("P\x00\x00\x00"), 84, []byte("P\x00\x00\x00"))

	for n := 0; n < seisan.ProbeSize; n++ {
		if _, err := seisan.Sniff(full[:n]); !seisan.IsKind(err, seisan.UnrecognizedFormat) {
			t.Fatalf("length %d expected unrecognized format error got %v", n, err)
		}
	}
}

func TestIsSeisan(t *testing.T) {
	for _, f := range formats {
		r := bytes.NewReader(build(f))

		if !seisan.IsSeisan(r) {
			t.Errorf("%s expected IsSeisan true", f)
		}

		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			t.Fatal(err)
		}
		if pos != 0 {
			t.Errorf("%s expected source at 0 got %d", f, pos)
		}
	}

	if seisan.IsSeisan(bytes.NewReader([]byte("not a seisan file"))) {
		t.Error("expected IsSeisan false for short input")
	}

	if seisan.IsSeisan(bytes.NewReader(bytes.Repeat([]byte{0}, 2*seisan.ProbeSize))) {
		t.Error("expected IsSeisan false for zeros")
	}
}

func TestFormat(t *testing.T) {
	f := seisan.Format{ByteOrder: seisan.BigEndian, WordSize: 64, Version: 7}

	if f.WordBytes() != 8 {
		t.Errorf("expected 8 got %d", f.WordBytes())
	}

	if f.String() != "SEISAN v7 big-endian 64-bit" {
		t.Errorf("unexpected string %s", f.String())
	}

	b := []byte{0, 0, 0, 1}
	if f.ByteOrder.Order().Uint32(b) != 1 {
		t.Error("expected big-endian byte order")
	}
}

// l returns the line of code it was called from.
func l() (loc string) {
	_, _, l, _ := runtime.Caller(1)
	return "L" + strconv.Itoa(l)
}
