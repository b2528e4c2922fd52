package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDSN keeps the journal in memory for the life of the process.
const DefaultDSN = ":memory:"

// Store is the session fetch journal. It records what was requested and how
// it went; it never holds weather data.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens and migrates a journal at dsn.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if dsn != DefaultDSN {
		db.Exec("PRAGMA journal_mode=WAL")
		db.Exec("PRAGMA busy_timeout=5000")
	}

	st := New(db)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return st, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Fetch is one provider request made by the fetch sequence.
type Fetch struct {
	ID           int64
	Kind         string // "location", "reverse", "weather", "onecall"
	Target       sql.NullString
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	HTTPStatus   sql.NullInt64
	Records      sql.NullInt64
	Success      bool
	ErrorMessage sql.NullString
}

// StartFetch records the start of a request and returns it.
func (s *Store) StartFetch(kind, target string) (*Fetch, error) {
	f := &Fetch{
		Kind:      kind,
		StartedAt: time.Now().UTC(),
	}
	if target != "" {
		f.Target = sql.NullString{String: target, Valid: true}
	}

	result, err := s.db.Exec(`
		INSERT INTO fetches (kind, target, started_at, success)
		VALUES (?, ?, ?, FALSE)
	`, f.Kind, f.Target, f.StartedAt)
	if err != nil {
		return nil, err
	}

	f.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return f, nil
}

// CompleteFetch stores the outcome of f.
func (s *Store) CompleteFetch(f *Fetch) error {
	if f == nil {
		return nil
	}

	f.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	_, err := s.db.Exec(`
		UPDATE fetches SET
			finished_at = ?,
			http_status = ?,
			records = ?,
			success = ?,
			error_message = ?
		WHERE id = ?
	`, f.FinishedAt, f.HTTPStatus, f.Records, f.Success, f.ErrorMessage, f.ID)
	return err
}

// RecentFetches returns the newest fetches first.
func (s *Store) RecentFetches(limit int) ([]Fetch, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, target, started_at, finished_at, http_status, records, success, error_message
		FROM fetches
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Fetch
	for rows.Next() {
		var f Fetch
		if err := rows.Scan(&f.ID, &f.Kind, &f.Target, &f.StartedAt, &f.FinishedAt,
			&f.HTTPStatus, &f.Records, &f.Success, &f.ErrorMessage); err != nil {
			return nil, err
		}
		results = append(results, f)
	}
	return results, rows.Err()
}

// FetchSummary counts fetches of one kind.
type FetchSummary struct {
	Kind    string `json:"kind"`
	Total   int    `json:"total"`
	Success int    `json:"success"`
	Failed  int    `json:"failed"`
	Pending int    `json:"pending"`
}

// Summaries groups the journal by kind.
func (s *Store) Summaries() ([]FetchSummary, error) {
	rows, err := s.db.Query(`
		SELECT
			kind,
			COUNT(*),
			SUM(CASE WHEN success THEN 1 ELSE 0 END),
			SUM(CASE WHEN NOT success AND finished_at IS NOT NULL THEN 1 ELSE 0 END),
			SUM(CASE WHEN finished_at IS NULL THEN 1 ELSE 0 END)
		FROM fetches
		GROUP BY kind
		ORDER BY kind
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []FetchSummary
	for rows.Next() {
		var fs FetchSummary
		if err := rows.Scan(&fs.Kind, &fs.Total, &fs.Success, &fs.Failed, &fs.Pending); err != nil {
			return nil, err
		}
		results = append(results, fs)
	}
	return results, rows.Err()
}
