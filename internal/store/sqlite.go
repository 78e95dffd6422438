package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements PlanStore on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS plans (
        id TEXT PRIMARY KEY,
        source TEXT NOT NULL,
        user_id TEXT NOT NULL DEFAULT '',
        created_at TEXT NOT NULL,
        report_uri TEXT NOT NULL DEFAULT '',
        clinical TEXT NOT NULL,
        diet TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_plans_user_created ON plans(user_id, created_at);
    `
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SavePlan inserts or replaces a plan.
func (s *SQLiteStore) SavePlan(ctx context.Context, plan *StoredPlan) error {
	if plan.ID == "" {
		return fmt.Errorf("plan id is required")
	}
	query := `
        INSERT OR REPLACE INTO plans (id, source, user_id, created_at, report_uri, clinical, diet)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	_, err := s.db.ExecContext(ctx, query,
		plan.ID, string(plan.Source), plan.UserID,
		plan.CreatedAt.UTC().Format(timeLayout), plan.ReportURI,
		string(plan.Clinical), string(plan.Diet))
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return nil
}

const planColumns = `id, source, user_id, created_at, report_uri, clinical, diet`

// GetPlan loads a plan by id.
func (s *SQLiteStore) GetPlan(ctx context.Context, id string) (*StoredPlan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = ?`, id)
	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", id, err)
	}
	return plan, nil
}

// ListPlans returns up to limit plans owned by userID, newest first.
func (s *SQLiteStore) ListPlans(ctx context.Context, userID string, limit int) ([]*StoredPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM plans WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	plans := []*StoredPlan{}
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (*StoredPlan, error) {
	var (
		plan                   StoredPlan
		source, createdAt      string
		clinicalJSON, dietJSON string
	)
	if err := row.Scan(&plan.ID, &source, &plan.UserID, &createdAt, &plan.ReportURI, &clinicalJSON, &dietJSON); err != nil {
		return nil, err
	}

	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	plan.Source = Source(source)
	plan.CreatedAt = ts
	plan.Clinical = []byte(clinicalJSON)
	plan.Diet = []byte(dietJSON)
	return &plan, nil
}
