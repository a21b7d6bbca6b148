// Package cfg reads application configuration from environment variables.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Postgres is the database connection configuration.
type Postgres struct {
	Host     string
	User     string
	Passwd   string
	Name     string
	SSLMode  string
	Timeout  int // connect timeout in seconds.
	MaxIdle  int
	MaxOpen  int
	Settings []string // extra connection settings e.g., statement_timeout=600000
}

// PostgresEnv returns Postgres configured from the DB_* environment variables.
// All variables must be set; the error names the first missing one.
func PostgresEnv() (Postgres, error) {
	var p Postgres
	var err error

	for _, v := range []struct {
		key string
		s   *string
	}{
		{"DB_HOST", &p.Host},
		{"DB_USER", &p.User},
		{"DB_PASSWD", &p.Passwd},
		{"DB_NAME", &p.Name},
		{"DB_SSLMODE", &p.SSLMode},
	} {
		if *v.s, err = env(v.key); err != nil {
			return Postgres{}, err
		}
	}

	for _, v := range []struct {
		key string
		i   *int
	}{
		{"DB_CONN_TIMEOUT", &p.Timeout},
		{"DB_MAX_IDLE_CONNS", &p.MaxIdle},
		{"DB_MAX_OPEN_CONNS", &p.MaxOpen},
	} {
		if *v.i, err = envInt(v.key); err != nil {
			return Postgres{}, err
		}
	}

	if s := os.Getenv("DB_SETTINGS"); s != "" {
		p.Settings = strings.Fields(s)
	}

	return p, nil
}

// Connection returns the connection string for lib/pq.
func (p Postgres) Connection() string {
	c := fmt.Sprintf("host=%s connect_timeout=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Timeout, p.User, p.Passwd, p.Name, p.SSLMode)

	if len(p.Settings) > 0 {
		c += " " + strings.Join(p.Settings, " ")
	}

	return c
}

func env(key string) (string, error) {
	s := os.Getenv(key)
	if s == "" {
		return "", fmt.Errorf("%s env var not set", key)
	}
	return s, nil
}

func envInt(key string) (int, error) {
	s, err := env(key)
	if err != nil {
		return 0, err
	}

	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s invalid value %q: %w", key, s, err)
	}

	return i, nil
}
