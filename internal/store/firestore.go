package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const plansCollection = "plans"

// FirestoreStore implements PlanStore using Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// planDoc is the Firestore document shape. Payloads are kept as JSON text
// so documents mirror the HTTP response exactly.
type planDoc struct {
	Source    string    `firestore:"source"`
	UserID    string    `firestore:"userId"`
	CreatedAt time.Time `firestore:"createdAt"`
	ReportURI string    `firestore:"reportUri,omitempty"`
	Clinical  string    `firestore:"clinical"`
	Diet      string    `firestore:"diet"`
}

func toDoc(p *StoredPlan) planDoc {
	return planDoc{
		Source:    string(p.Source),
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
		ReportURI: p.ReportURI,
		Clinical:  string(p.Clinical),
		Diet:      string(p.Diet),
	}
}

func fromDoc(id string, d planDoc) *StoredPlan {
	return &StoredPlan{
		ID:        id,
		Source:    Source(d.Source),
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt,
		ReportURI: d.ReportURI,
		Clinical:  []byte(d.Clinical),
		Diet:      []byte(d.Diet),
	}
}

// SavePlan writes the plan document, replacing any existing one.
func (s *FirestoreStore) SavePlan(ctx context.Context, plan *StoredPlan) error {
	if plan.ID == "" {
		return fmt.Errorf("plan id is required")
	}
	_, err := s.client.Collection(plansCollection).Doc(plan.ID).Set(ctx, toDoc(plan))
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// GetPlan loads a plan by id.
func (s *FirestoreStore) GetPlan(ctx context.Context, id string) (*StoredPlan, error) {
	doc, err := s.client.Collection(plansCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	var d planDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	return fromDoc(doc.Ref.ID, d), nil
}

// ListPlans returns up to limit plans owned by userID, newest first. The
// query needs a composite index on (userId, createdAt desc).
func (s *FirestoreStore) ListPlans(ctx context.Context, userID string, limit int) ([]*StoredPlan, error) {
	docs, err := s.client.Collection(plansCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Limit(listLimit(limit)).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	plans := make([]*StoredPlan, 0, len(docs))
	for _, doc := range docs {
		var d planDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to parse plan: %w", err)
		}
		plans = append(plans, fromDoc(doc.Ref.ID, d))
	}
	return plans, nil
}

// Close closes the Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
