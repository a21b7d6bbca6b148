package main

import (
	"bytes"
	"database/sql"
	"errors"

	"github.com/GeoNet/seisan/internal/holdings"
	"github.com/lib/pq"
)

// http://www.postgresql.org/docs/9.4/static/errcodes-appendix.html
const (
	errorUniqueViolation pq.ErrorCode = "23505"
)

const saveHoldingsSQL = `INSERT INTO seisan.holdings (streamPK, start_time, numsamples, key)
	SELECT streamPK, $5, $6, $7
	FROM seisan.stream
	WHERE network = $1
	AND station = $2
	AND channel = $3
	AND location = $4
	ON CONFLICT (streamPK, key) DO UPDATE SET
	start_time = EXCLUDED.start_time,
	numsamples = EXCLUDED.numsamples`

type holding struct {
	holdings.Holding
	key string // the S3 bucket key
}

// saveAll replaces the holdings for key with h in one transaction.
func saveAll(key string, h []holding) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if _, err = tx.Exec(`DELETE FROM seisan.holdings WHERE key = $1`, key); err != nil {
		return rollback(tx, err)
	}

	for i := range h {
		if err = h[i].save(tx); err != nil {
			return rollback(tx, err)
		}
	}

	return tx.Commit()
}

func rollback(tx *sql.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		return errors.Join(err, rerr)
	}
	return err
}

func (h *holding) save(tx *sql.Tx) error {
	r, err := h.saveHoldings(tx)

	switch {
	case err != nil:
		return err
	case r == 1:
		return nil
	}

	// the stream is new.
	_, err = h.saveStream(tx)
	if err != nil {
		return err
	}

	r, err = h.saveHoldings(tx)
	if err != nil {
		return err
	}

	if r != 1 {
		return errors.New("no holdings saved for " + h.key)
	}

	return nil
}

func (h *holding) saveHoldings(tx *sql.Tx) (int64, error) {
	r, err := tx.Stmt(saveHoldings).Exec(h.Network, h.Station, h.Channel, h.Location, h.Start, h.NumSamples, h.key)
	if err != nil {
		return 0, err
	}

	return r.RowsAffected()
}

func (h *holding) saveStream(tx *sql.Tx) (int64, error) {
	// a savepoint keeps the transaction usable after a unique violation.
	if _, err := tx.Exec(`SAVEPOINT stream`); err != nil {
		return 0, err
	}

	r, err := tx.Exec(`INSERT INTO seisan.stream (network, station, channel, location) VALUES($1, $2, $3, $4)`,
		h.Network, h.Station, h.Channel, h.Location)
	if err != nil {
		if u, ok := err.(*pq.Error); ok && u.Code == errorUniqueViolation {
			_, err = tx.Exec(`ROLLBACK TO SAVEPOINT stream`)
			return 1, err
		}
		return 0, err
	}

	if _, err := tx.Exec(`RELEASE SAVEPOINT stream`); err != nil {
		return 0, err
	}

	return r.RowsAffected()
}

// holdingS3 fetches the SEISAN object key from bucket and returns its holdings.
func holdingS3(bucket, key string) ([]holding, error) {
	var b bytes.Buffer

	if err := s3Client.Get(bucket, key, "", &b); err != nil {
		return nil, err
	}

	return holdingBytes(key, b.Bytes())
}

func holdingBytes(key string, b []byte) ([]holding, error) {
	h, err := holdings.Seisan(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	out := make([]holding, len(h))
	for i := range h {
		out[i] = holding{Holding: h[i], key: key}
	}

	return out, nil
}
