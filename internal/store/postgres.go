package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"transplan/internal/results"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	p := &Postgres{db: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Postgres) ensureSchema() error {
	_, err := p.db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
    id            text PRIMARY KEY,
    scenario_name text NOT NULL DEFAULT '',
    status        text NOT NULL,
    error         text NOT NULL DEFAULT '',
    vars          integer NOT NULL DEFAULT 0,
    constraints   integer NOT NULL DEFAULT 0,
    objective     double precision NOT NULL DEFAULT 0,
    created_at    timestamptz NOT NULL DEFAULT now(),
    updated_at    timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS run_results (
    run_id  text PRIMARY KEY REFERENCES runs(id) ON DELETE CASCADE,
    payload jsonb NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) CreateRun(ctx context.Context, run Run) error {
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO runs (id, scenario_name, status, error, vars, constraints, objective, created_at, updated_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		run.ID, run.ScenarioName, string(run.Status), run.Error, run.Vars, run.Constraints, run.Objective, run.CreatedAt, now)
	return err
}

func (p *Postgres) GetRun(ctx context.Context, id string) (Run, error) {
	var r Run
	var status string
	err := p.db.QueryRowContext(ctx,
		`SELECT id, scenario_name, status, error, vars, constraints, objective, created_at, updated_at FROM runs WHERE id=$1`, id).
		Scan(&r.ID, &r.ScenarioName, &status, &r.Error, &r.Vars, &r.Constraints, &r.Objective, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}
	r.Status = RunStatus(status)
	return r, nil
}

func (p *Postgres) ListRuns(ctx context.Context, cursor string, limit int) ([]Run, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if cursor != "" {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id, scenario_name, status, error, vars, constraints, objective, created_at, updated_at
             FROM runs WHERE id > $1 ORDER BY id LIMIT $2`, cursor, limit)
	} else {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id, scenario_name, status, error, vars, constraints, objective, created_at, updated_at
             FROM runs ORDER BY id LIMIT $1`, limit)
	}
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := []Run{}
	var last string
	for rows.Next() {
		var r Run
		var status string
		if err := rows.Scan(&r.ID, &r.ScenarioName, &status, &r.Error, &r.Vars, &r.Constraints, &r.Objective, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, "", err
		}
		r.Status = RunStatus(status)
		out = append(out, r)
		last = r.ID
	}
	var next string
	if len(out) == limit {
		next = last
	}
	return out, next, rows.Err()
}

func (p *Postgres) UpdateRun(ctx context.Context, run Run) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE runs SET status=$2, error=$3, vars=$4, constraints=$5, objective=$6, updated_at=now() WHERE id=$1`,
		run.ID, string(run.Status), run.Error, run.Vars, run.Constraints, run.Objective)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveResult(ctx context.Context, runID string, r *results.Result) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("store: encode result: %w", err)
	}
	res, err := p.db.ExecContext(ctx,
		`INSERT INTO run_results (run_id, payload) VALUES ($1, $2)
         ON CONFLICT (run_id) DO UPDATE SET payload = EXCLUDED.payload`, runID, payload)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) GetResult(ctx context.Context, runID string) (*results.Result, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM run_results WHERE run_id=$1`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var r results.Result
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("store: decode result: %w", err)
	}
	return &r, nil
}

func (p *Postgres) Close() error { return p.db.Close() }
