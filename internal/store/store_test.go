package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlan(userID string, created time.Time) *StoredPlan {
	return &StoredPlan{
		ID:        uuid.NewString(),
		Source:    SourceManual,
		UserID:    userID,
		CreatedAt: created,
		Clinical:  json.RawMessage(`{"conditions":["General Health Maintenance"]}`),
		Diet:      json.RawMessage(`{"medical_reasoning":"ok"}`),
	}
}

// runPlanStoreTests exercises the behaviour every PlanStore must share.
func runPlanStoreTests(t *testing.T, s PlanStore) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("save and get", func(t *testing.T) {
		p := testPlan("user-a", base)
		p.ReportURI = "gs://reports/reports/x.pdf"
		require.NoError(t, s.SavePlan(ctx, p))

		got, err := s.GetPlan(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.Equal(t, SourceManual, got.Source)
		assert.Equal(t, "user-a", got.UserID)
		assert.Equal(t, p.ReportURI, got.ReportURI)
		assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
		assert.JSONEq(t, string(p.Clinical), string(got.Clinical))
		assert.JSONEq(t, string(p.Diet), string(got.Diet))
	})

	t.Run("missing plan", func(t *testing.T) {
		_, err := s.GetPlan(ctx, "does-not-exist")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list empty is not nil", func(t *testing.T) {
		got, err := s.ListPlans(ctx, "user-without-plans", 0)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got)

		body, err := json.Marshal(got)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(body))
	})

	t.Run("id required", func(t *testing.T) {
		p := testPlan("user-a", base)
		p.ID = ""
		assert.Error(t, s.SavePlan(ctx, p))
	})

	t.Run("save replaces", func(t *testing.T) {
		p := testPlan("user-c", base)
		require.NoError(t, s.SavePlan(ctx, p))
		p.Diet = json.RawMessage(`{"medical_reasoning":"updated"}`)
		require.NoError(t, s.SavePlan(ctx, p))

		got, err := s.GetPlan(ctx, p.ID)
		require.NoError(t, err)
		assert.JSONEq(t, `{"medical_reasoning":"updated"}`, string(got.Diet))
	})

	t.Run("list newest first", func(t *testing.T) {
		var ids []string
		for i := 0; i < 3; i++ {
			p := testPlan("user-b", base.Add(time.Duration(i)*time.Hour))
			require.NoError(t, s.SavePlan(ctx, p))
			ids = append(ids, p.ID)
		}
		require.NoError(t, s.SavePlan(ctx, testPlan("someone-else", base)))

		got, err := s.ListPlans(ctx, "user-b", 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, ids[2], got[0].ID)
		assert.Equal(t, ids[0], got[2].ID)

		limited, err := s.ListPlans(ctx, "user-b", 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})
}

func TestMemoryStore(t *testing.T) {
	runPlanStoreTests(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	p := testPlan("user-a", time.Now())
	require.NoError(t, s.SavePlan(context.Background(), p))

	p.UserID = "mutated"
	got, err := s.GetPlan(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-a", got.UserID)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	runPlanStoreTests(t, s)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	p := testPlan("", time.Now())
	require.NoError(t, s.SavePlan(context.Background(), p))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetPlan(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestFirestoreStore(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "nutricare-test")
	require.NoError(t, err)

	s := NewFirestoreStore(client)
	t.Cleanup(func() { s.Close() })

	runPlanStoreTests(t, s)
}
