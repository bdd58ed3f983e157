// Package `db` keeps a journal of benchmark runs.
package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/lambdcalculus/fibq/internal/bench"
)

// Represents a connection to the database. Used for database operations.
type Database struct {
	db *sql.DB
	mu sync.Mutex
}

// A recorded benchmark run.
type Run struct {
	RunID   int
	Created time.Time
	bench.Result
}

// Opens a connection to the database, creating it and initializing the tables if necessary.
func Init(path string) (*Database, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("db: Couldn't connect to database (%w).", err)
	}

	_, err = db.Exec(`
    CREATE TABLE IF NOT EXISTS runs(
        run_id     INTEGER PRIMARY KEY,
        seed       INTEGER NOT NULL,
        ops        INTEGER NOT NULL,
        enqueues   INTEGER NOT NULL,
        dequeues   INTEGER NOT NULL,
        links      INTEGER NOT NULL,
        peak       INTEGER NOT NULL,
        bound      REAL    NOT NULL,
        elapsed_ns INTEGER NOT NULL,
        created    INTEGER NOT NULL
    )`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("db: Couldn't create runs table (%w).", err)
	}

	return &Database{db: db}, nil
}

// Records a benchmark result and returns the ID it was stored under.
func (d *Database) AddRun(res bench.Result) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, err := d.db.Exec(`
    INSERT INTO runs
        (seed, ops, enqueues, dequeues, links, peak, bound, elapsed_ns, created)
    VALUES
        (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Seed, res.Ops, res.Enqueues, res.Dequeues, res.Links, int64(res.Peak),
		res.Bound, int64(res.Elapsed), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("db: Couldn't insert run (%w).", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("db: Couldn't get run ID (%w).", err)
	}
	return int(id), nil
}

// Gets the latest `limit` runs, newest first. A non-positive limit gets all of them.
func (d *Database) Runs(limit int) ([]Run, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := d.db.Query(`
    SELECT run_id, seed, ops, enqueues, dequeues, links, peak, bound, elapsed_ns, created
    FROM runs
    ORDER BY run_id DESC
    LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("db: Couldn't query database (%w).", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var peak, elapsed, created int64
		if err := rows.Scan(&run.RunID, &run.Seed, &run.Ops, &run.Enqueues, &run.Dequeues,
			&run.Links, &peak, &run.Bound, &elapsed, &created); err != nil {
			return runs, fmt.Errorf("db: Error scanning row (%w).", err)
		}
		run.Peak = uint(peak)
		run.Elapsed = time.Duration(elapsed)
		run.Created = time.Unix(created, 0)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return runs, fmt.Errorf("db: Error reading rows (%w).", err)
	}
	return runs, nil
}

// Closes the database connection.
func (d *Database) Close() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("db: Error closing database (%w).", err)
	}
	return nil
}
