package metadata

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps snapshots in a SQLite table, one row per run and
// iteration. Several runs can share a database file.
type SQLiteStore struct {
	db     *sql.DB
	runID  string
	mu     sync.Mutex
	closed bool
}

// OpenSQLite opens or creates the database at path. An empty runID gets a
// fresh random one.
func OpenSQLite(path, runID string) (*SQLiteStore, error) {
	if runID == "" {
		runID = uuid.NewString()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT NOT NULL,
		iteration INTEGER NOT NULL,
		data BLOB NOT NULL,
		PRIMARY KEY (run_id, iteration)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &SQLiteStore{db: db, runID: runID}, nil
}

// RunID returns the run the store reads and writes.
func (s *SQLiteStore) RunID() string { return s.runID }

// Insert encodes value and stores it at iteration for this run.
func (s *SQLiteStore) Insert(iteration int, value any) error {
	data, err := Marshal(value)
	if err != nil {
		return &StoreError{Op: "insert", Iteration: iteration, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &StoreError{Op: "insert", Iteration: iteration, Err: ErrClosed}
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO snapshots (run_id, iteration, data) VALUES (?, ?, ?)",
		s.runID, iteration, data,
	)
	if err != nil {
		return &StoreError{Op: "insert", Iteration: iteration, Err: err}
	}
	return nil
}

// Get decodes the value stored at iteration for this run into out.
func (s *SQLiteStore) Get(iteration int, out any) (bool, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return false, &StoreError{Op: "get", Iteration: iteration, Err: ErrClosed}
	}

	var data []byte
	err := s.db.QueryRow(
		"SELECT data FROM snapshots WHERE run_id = ? AND iteration = ?",
		s.runID, iteration,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, &StoreError{Op: "get", Iteration: iteration, Err: err}
	}

	if err := Unmarshal(data, out); err != nil {
		return false, &StoreError{Op: "get", Iteration: iteration, Err: err}
	}
	return true, nil
}

// Iterations returns the stored iteration indexes for this run in order.
func (s *SQLiteStore) Iterations() ([]int, error) {
	rows, err := s.db.Query(
		"SELECT iteration FROM snapshots WHERE run_id = ? ORDER BY iteration",
		s.runID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing iterations: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var it int
		if err := rows.Scan(&it); err != nil {
			return nil, fmt.Errorf("scanning iteration: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
