// Package store persists completed validation runs to SQLite so decisions
// can be audited and re-served after a restart.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/SyedShahbaaz02/LOA-Validator-System-sub000/internal/loacheck"
)

var ErrRunNotFound = errors.New("validation run not found")

// Run is one persisted validation: the request identity, the decision, and
// the full response envelope as JSON.
type Run struct {
	RunID     string    `json:"run_id" db:"run_id"`
	CaseID    string    `json:"case_id" db:"case_id"`
	Region    string    `json:"region" db:"region"`
	State     string    `json:"state" db:"state"`
	UDC       string    `json:"udc" db:"udc"`
	Decision  string    `json:"decision" db:"decision"`
	CreatedAt time.Time `json:"created_at" db:"-"`

	Response loacheck.ResponseEnvelope `json:"response" db:"-"`
}

type Store struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS validation_runs (
	run_id      TEXT PRIMARY KEY,
	case_id     TEXT NOT NULL,
	region      TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL DEFAULT '',
	udc         TEXT NOT NULL DEFAULT '',
	decision    TEXT NOT NULL,
	response    TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_validation_runs_case ON validation_runs (case_id, created_at);
`

func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun assigns a run ID and persists the request identity plus the full
// response envelope.
func (s *Store) SaveRun(ctx context.Context, req loacheck.RequestEnvelope, env loacheck.ResponseEnvelope) (Run, error) {
	run := Run{
		RunID:     uuid.NewString(),
		CaseID:    env.CaseID,
		Region:    req.Region,
		State:     req.State,
		UDC:       req.UDC,
		Decision:  string(env.Decision),
		CreatedAt: time.Now().UTC(),
		Response:  env,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return Run{}, fmt.Errorf("marshal response: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO validation_runs (run_id, case_id, region, state, udc, decision, response, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.CaseID, run.Region, run.State, run.UDC, run.Decision,
		string(body), run.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, case_id, region, state, udc, decision, response, created_at
		FROM validation_runs WHERE run_id = ?`, strings.TrimSpace(runID))
	return scanRun(row)
}

// ListRuns returns the newest runs first, optionally filtered by case ID.
func (s *Store) ListRuns(ctx context.Context, caseID string, limit int) ([]Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `SELECT run_id, case_id, region, state, udc, decision, response, created_at
		FROM validation_runs`
	args := []any{}
	if strings.TrimSpace(caseID) != "" {
		query += " WHERE case_id = ?"
		args = append(args, strings.TrimSpace(caseID))
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var responseJSON, createdAt string
	err := row.Scan(&run.RunID, &run.CaseID, &run.Region, &run.State, &run.UDC, &run.Decision, &responseJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, err
	}
	if uerr := json.Unmarshal([]byte(responseJSON), &run.Response); uerr != nil {
		return Run{}, fmt.Errorf("unmarshal response: %w", uerr)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return run, nil
}
