// Package store persists generated plans so clients can fetch them again.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is returned when a plan id does not exist.
var ErrNotFound = errors.New("plan not found")

// DefaultListLimit caps ListPlans when no limit is given.
const DefaultListLimit = 20

// Source records which endpoint produced a plan.
type Source string

const (
	SourcePDF    Source = "pdf"
	SourceManual Source = "manual"
)

// StoredPlan is a generated plan with the clinical insight it was built
// from. Clinical and Diet hold the response JSON verbatim.
type StoredPlan struct {
	ID        string          `json:"id"`
	Source    Source          `json:"source"`
	UserID    string          `json:"user_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	ReportURI string          `json:"report_uri,omitempty"`
	Clinical  json.RawMessage `json:"clinical"`
	Diet      json.RawMessage `json:"diet"`
}

// PlanStore defines the persistence operations used by the service.
type PlanStore interface {
	SavePlan(ctx context.Context, plan *StoredPlan) error
	GetPlan(ctx context.Context, id string) (*StoredPlan, error)
	// ListPlans returns a user's plans, newest first.
	ListPlans(ctx context.Context, userID string, limit int) ([]*StoredPlan, error)
	Close() error
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
