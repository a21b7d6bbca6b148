// seisan-holdings-loader indexes SEISAN waveform files stored in AWS S3.
//
// The object keys to index are read from KEYS_FILE, one per line.  Use the aws cli
// to create the listing.  Each object is fetched from SEISAN_BUCKET, the channel
// headers are decoded and one holdings row per stream is saved to the database.
package main

import (
	"database/sql"
	"encoding/csv"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GeoNet/kit/aws/s3"
	"github.com/GeoNet/kit/metrics"
	"github.com/GeoNet/seisan/internal/platform/cfg"
	_ "github.com/lib/pq"
)

var (
	bucket = os.Getenv("SEISAN_BUCKET")
	file   = os.Getenv("KEYS_FILE")

	db           *sql.DB
	saveHoldings *sql.Stmt
	s3Client     s3.S3
)

func main() {
	if bucket == "" {
		log.Fatal("SEISAN_BUCKET env var not set")
	}

	p, err := cfg.PostgresEnv()
	if err != nil {
		log.Fatalf("error reading DB config from the environment vars: %s", err)
	}

	db, err = sql.Open("postgres", p.Connection())
	if err != nil {
		log.Fatalf("error with DB config: %s", err)
	}
	defer db.Close()

	db.SetMaxIdleConns(p.MaxIdle)
	db.SetMaxOpenConns(p.MaxOpen)

ping:
	for {
		err = db.Ping()
		if err != nil {
			log.Printf("problem pinging DB - is it up and contactable: %s", err.Error())
			log.Print("sleeping and waiting for DB")
			time.Sleep(time.Second * 10)
			continue ping
		}
		break ping
	}

	saveHoldings, err = db.Prepare(saveHoldingsSQL)
	if err != nil {
		log.Fatalf("preparing saveHoldings statement: %s", err)
	}
	defer saveHoldings.Close()

	s3Client, err = s3.NewWithMaxRetries(3)
	if err != nil {
		log.Fatalf("creating S3 client: %s", err)
	}

	f, err := os.Open(file)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 1

	input, err := r.ReadAll()
	if err != nil {
		log.Fatal(err)
	}

	ok, failed := index(input, workers(p.MaxOpen), &loader{})

	log.Printf("indexed %d keys, %d failed", ok, failed)
}

// defaultWorkers is used when the DB connection pool is unbounded.
const defaultWorkers = 10

// workers returns the number of indexing workers for a pool of maxOpen DB connections.
func workers(maxOpen int) int {
	if maxOpen <= 0 {
		return defaultWorkers
	}
	return maxOpen
}

// loader implements metrics.Processor for a S3 object key.
type loader struct{}

// index runs the keys in input through p with n workers and returns the
// number of keys processed and failed.
func index(input [][]string, n int, p metrics.Processor) (int64, int64) {
	if n <= 0 {
		n = defaultWorkers
	}

	keys := make(chan string)

	go func() {
		defer close(keys)

		for _, v := range input {
			if len(v) > 0 && v[0] != "" {
				keys <- v[0]
			}
		}
	}()

	var ok, failed atomic.Int64

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			procKeys(keys, p, &ok, &failed)
		}()
	}
	wg.Wait()

	return ok.Load(), failed.Load()
}

func procKeys(keys <-chan string, p metrics.Processor, ok, failed *atomic.Int64) {
	for k := range keys {
		if err := metrics.DoProcess(p, []byte(k)); err != nil {
			log.Printf("ERROR: indexing %s: %s", k, err)
			failed.Add(1)
			continue
		}
		ok.Add(1)
	}
}

// Process decodes the holdings for the object key in b and saves them.
func (l *loader) Process(b []byte) error {
	key := string(b)

	h, err := holdingS3(bucket, key)
	if err != nil {
		return err
	}

	return saveAll(key, h)
}
