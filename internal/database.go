// Package internal provides the top-level Database facade: it owns the
// open query.DB for one file and is the thing cmd/ talks to.
package internal

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rowiddb/rowiddb/internal/query"
)

var ErrDatabaseClosed = errors.New("rowiddb: database is closed")

// Database wraps one open database file behind a mutex, matching the
// engine's no-concurrency, no-page-cache design: every call takes the
// lock for its whole duration.
type Database struct {
	mu     sync.Mutex
	db     *query.DB
	path   string
	closed bool
}

// Open opens path if it exists, or creates it fresh with pageSize
// otherwise.
func Open(path string, pageSize int) (*Database, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		db, err := query.Create(path, pageSize)
		if err != nil {
			return nil, fmt.Errorf("database: create %s: %w", path, err)
		}
		return &Database{db: db, path: path}, nil
	}

	db, err := query.Open(path)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", path, err)
	}
	return &Database{db: db, path: path}, nil
}

func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDatabaseClosed
	}
	d.closed = true
	return d.db.Close()
}

// Exec runs one SQL statement (CREATE TABLE, INSERT, or SELECT) and
// returns its result.
func (d *Database) Exec(sql string) (*query.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDatabaseClosed
	}
	return d.db.Exec(sql)
}

func (d *Database) Path() string { return d.path }
