// Package store persists pending candidates and analysis reports in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spigell/prospector/internal/prospect"
)

// ErrNotFound is returned when a record with the requested id does not exist.
var ErrNotFound = errors.New("record not found")

const schema = `
CREATE TABLE IF NOT EXISTS candidates (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	name              TEXT NOT NULL,
	headline          TEXT NOT NULL DEFAULT '',
	profile_url       TEXT NOT NULL,
	connection_degree TEXT NOT NULL DEFAULT '',
	created_at        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS candidates_profile_url ON candidates (profile_url);

CREATE TABLE IF NOT EXISTS reports (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	name               TEXT NOT NULL,
	headline           TEXT NOT NULL DEFAULT '',
	profile_url        TEXT NOT NULL,
	connection_degree  TEXT NOT NULL DEFAULT '',
	captured_at        INTEGER NOT NULL,
	goal               TEXT NOT NULL,
	score              INTEGER NOT NULL,
	grade              TEXT NOT NULL,
	justification      TEXT NOT NULL DEFAULT '',
	connection_message TEXT NOT NULL DEFAULT '',
	analyzed_at        INTEGER NOT NULL
);
`

// SQLiteStore keeps candidates and reports in a single SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// InsertCandidates stores all candidates in one transaction and fills their ids.
// Candidates without CreatedAt get the current time.
func (s *SQLiteStore) InsertCandidates(ctx context.Context, candidates []*prospect.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin candidates tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO candidates
		(name, headline, profile_url, connection_degree, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare candidate insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range candidates {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = s.now()
		}
		res, err := stmt.ExecContext(ctx, c.Name, c.Headline, c.ProfileURL, c.ConnectionDegree, c.CreatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("inserting candidate %s: %w", c.ProfileURL, err)
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading candidate id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit candidates tx: %w", err)
	}
	return nil
}

// ListCandidates returns every pending candidate, newest first.
func (s *SQLiteStore) ListCandidates(ctx context.Context) (*prospect.Candidates, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, headline, profile_url, connection_degree, created_at
		FROM candidates ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	defer rows.Close()

	result := &prospect.Candidates{}
	for rows.Next() {
		var (
			c       prospect.Candidate
			created int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Headline, &c.ProfileURL, &c.ConnectionDegree, &created); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		c.CreatedAt = time.Unix(0, created)
		result.Items = append(result.Items, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}
	return result, nil
}

// DeleteCandidate removes one pending candidate. Deleting a missing id is a no-op.
func (s *SQLiteStore) DeleteCandidate(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM candidates WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting candidate %d: %w", id, err)
	}
	return nil
}

// ClearCandidates removes every pending candidate and returns how many were removed.
func (s *SQLiteStore) ClearCandidates(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM candidates")
	if err != nil {
		return 0, fmt.Errorf("clearing candidates: %w", err)
	}
	return res.RowsAffected()
}

// InsertReport stores a report and returns its id.
func (s *SQLiteStore) InsertReport(ctx context.Context, r *prospect.Report) (int64, error) {
	if r.AnalyzedAt.IsZero() {
		r.AnalyzedAt = s.now()
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO reports
		(name, headline, profile_url, connection_degree, captured_at, goal, score, grade, justification, connection_message, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Name, r.Headline, r.ProfileURL, r.ConnectionDegree, r.CapturedAt.UnixNano(),
		r.Goal, r.Score, r.Grade, r.Justification, r.ConnectionMessage, r.AnalyzedAt.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting report for %s: %w", r.ProfileURL, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading report id: %w", err)
	}
	r.ID = id
	return id, nil
}

const reportColumns = `id, name, headline, profile_url, connection_degree, captured_at,
	goal, score, grade, justification, connection_message, analyzed_at`

// GetReport returns the report with the given id or ErrNotFound.
func (s *SQLiteStore) GetReport(ctx context.Context, id int64) (*prospect.Report, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+reportColumns+" FROM reports WHERE id = ?", id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading report %d: %w", id, err)
	}
	return r, nil
}

// ListReports returns every report, newest first.
func (s *SQLiteStore) ListReports(ctx context.Context) ([]*prospect.Report, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+reportColumns+" FROM reports ORDER BY analyzed_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []*prospect.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return reports, nil
}

// ReportedURLs returns the profile urls that already have a report.
func (s *SQLiteStore) ReportedURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT profile_url FROM reports")
	if err != nil {
		return nil, fmt.Errorf("listing reported urls: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scanning reported url: %w", err)
		}
		urls[url] = struct{}{}
	}
	return urls, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*prospect.Report, error) {
	var (
		r                  prospect.Report
		captured, analyzed int64
	)
	err := row.Scan(&r.ID, &r.Name, &r.Headline, &r.ProfileURL, &r.ConnectionDegree, &captured,
		&r.Goal, &r.Score, &r.Grade, &r.Justification, &r.ConnectionMessage, &analyzed)
	if err != nil {
		return nil, err
	}
	r.CapturedAt = time.Unix(0, captured)
	r.AnalyzedAt = time.Unix(0, analyzed)
	return &r, nil
}
