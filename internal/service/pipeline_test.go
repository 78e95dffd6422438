package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-nutricare/backend/internal/auth"
	"github.com/ai-nutricare/backend/internal/extraction"
	"github.com/ai-nutricare/backend/internal/features"
	"github.com/ai-nutricare/backend/internal/gemini"
	"github.com/ai-nutricare/backend/internal/planner"
	"github.com/ai-nutricare/backend/internal/store"
)

func TestPDFPatient(t *testing.T) {
	age := "58"
	withAge := extraction.NewParameterSet(map[extraction.Biomarker]*string{extraction.Age: &age})

	assert.Equal(t, planner.Patient{Name: PatientFromPDF, Age: "58"}, PDFPatient(withAge))
	assert.Equal(t, planner.Patient{Name: PatientFromPDF, Age: "45"}, PDFPatient(extraction.NewParameterSet(nil)))
}

func TestManualPatient(t *testing.T) {
	assert.Equal(t, planner.Patient{Name: PatientManual, Age: "45"}, ManualPatient(0))
	assert.Equal(t, planner.Patient{Name: PatientManual, Age: "71"}, ManualPatient(71))
}

type failingRisk struct{}

func (failingRisk) Predict(context.Context, features.Tensor) (float64, error) {
	return 0, errors.New("weights corrupted")
}

func TestAssess_PropagatesModelError(t *testing.T) {
	p := NewPipeline(Dependencies{Risk: failingRisk{}, Stats: features.IdentityStats()})

	_, err := p.Assess(context.Background(), extraction.NewParameterSet(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "predict risk")
}

func TestAssess_ScoresAndReasons(t *testing.T) {
	p := NewPipeline(Dependencies{Risk: constantModel(t, 2), Stats: features.IdentityStats()})

	glucose := "180"
	a, err := p.Assess(context.Background(), extraction.NewParameterSet(map[extraction.Biomarker]*string{extraction.Glucose: &glucose}))
	require.NoError(t, err)

	// sigmoid(2) is above the high-risk boundary.
	assert.InDelta(t, 0.8808, a.Risk, 1e-4)
	assert.Equal(t, 180.0, a.Vector.Get(features.Glucose))
	require.NotEmpty(t, a.Insight.Conditions)
	assert.Equal(t, "Critical Stability Risk", a.Insight.Conditions[0])
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"planner missing", ErrPlannerUnavailable, http.StatusServiceUnavailable, CodePlannerUnavailable},
		{"cancelled", fmt.Errorf("generate day 2: %w", context.Canceled), http.StatusServiceUnavailable, CodeCancelled},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, CodeCancelled},
		{"not found", store.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"unauthenticated", auth.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, CodeTooLarge},
		{"bad request", badRequest("nope"), http.StatusBadRequest, CodeBadRequest},
		{"wrapped gemini", fmt.Errorf("generate day 5: %w", &gemini.Error{Code: gemini.ErrRejected, Status: 400}), http.StatusBadGateway, string(gemini.ErrRejected)},
		{"gemini not configured", &gemini.Error{Code: gemini.ErrNotConfigured, Message: "Gemini API key is not configured"}, http.StatusServiceUnavailable, string(gemini.ErrNotConfigured)},
		{"other", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := mapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Detail)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequestLogger(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		RequestLogger(next).ServeHTTP(w, req)
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	})
}
