//go:build integration
// +build integration

package main

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/GeoNet/kit/aws/s3"
	"github.com/GeoNet/seisan/internal/platform/cfg"
	"github.com/GeoNet/seisan/internal/seisan"
	"github.com/GeoNet/seisan/internal/seisan/seisantest"
)

// Needs a postgres DB with etc/ddl/seisan.ddl loaded and DB_* env vars set.
// go test -tags integration -v -run TestSaveAll
func TestSaveAll(t *testing.T) {
	setup(t)
	defer teardown()

	start := time.Date(2016, time.March, 19, 0, 0, 1, 968000000, time.UTC)

	b := seisantest.Build(seisan.Format{ByteOrder: seisan.BigEndian, WordSize: 32, Version: 7}, []seisantest.Channel{
		{Network: "NZ", Station: "WEL", Location: "10", Channel: "HHZ", SampleRate: 100, Start: start, Samples: []int64{1, 2, 3}},
		{Network: "NZ", Station: "WEL", Location: "10", Channel: "HHN", SampleRate: 100, Start: start, Samples: []int64{4, 5}},
	})

	h, err := holdingBytes("2016/03/2016-03-19-0000-01S.NZ___003", b)
	if err != nil {
		t.Fatal(err)
	}

	// saving twice replaces the rows for the key.
	for i := 0; i < 2; i++ {
		if err := saveAll("2016/03/2016-03-19-0000-01S.NZ___003", h); err != nil {
			t.Fatal(err)
		}
	}

	var n, samples int
	err = db.QueryRow(`SELECT count(*), sum(numsamples) FROM seisan.holdings WHERE key = $1`,
		"2016/03/2016-03-19-0000-01S.NZ___003").Scan(&n, &samples)
	if err != nil {
		t.Fatal(err)
	}

	if n != 2 {
		t.Errorf("expected 2 holdings got %d", n)
	}

	if samples != 5 {
		t.Errorf("expected 5 samples got %d", samples)
	}

	var st time.Time
	err = db.QueryRow(`SELECT start_time FROM seisan.holdings JOIN seisan.stream USING (streamPK)
		WHERE channel = 'HHZ' AND key = $1`, "2016/03/2016-03-19-0000-01S.NZ___003").Scan(&st)
	if err != nil {
		t.Fatal(err)
	}

	if !st.Equal(start) {
		t.Errorf("expected start %s got %s", start, st)
	}
}

// Needs AWS credentials and a SEISAN file in S3_BUCKET.
// go test -tags integration -v -run TestHoldingS3
func TestHoldingS3(t *testing.T) {
	var err error

	s3Client, err = s3.New()
	if err != nil {
		t.Fatal(err)
	}

	h, err := holdingS3(os.Getenv("S3_BUCKET"), os.Getenv("S3_KEY"))
	if err != nil {
		t.Fatal(err)
	}

	if len(h) == 0 {
		t.Error("expected at least one holding")
	}

	for _, v := range h {
		if v.Station == "" || v.NumSamples == 0 {
			t.Errorf("unexpected holding %+v", v)
		}
	}
}

func setup(t *testing.T) {
	p, err := cfg.PostgresEnv()
	if err != nil {
		t.Fatal(err)
	}

	db, err = sql.Open("postgres", p.Connection())
	if err != nil {
		t.Fatal(err)
	}

	if err = db.Ping(); err != nil {
		t.Fatal(err)
	}

	if _, err = db.Exec(`DELETE FROM seisan.stream`); err != nil {
		t.Fatal(err)
	}

	saveHoldings, err = db.Prepare(saveHoldingsSQL)
	if err != nil {
		t.Fatal(err)
	}
}

func teardown() {
	saveHoldings.Close()
	db.Close()
}
