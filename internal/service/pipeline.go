// Package service exposes the diet-planning pipeline over HTTP: report
// text to biomarkers, biomarkers to a risk score and clinical insight, and
// the insight to a seven-day meal plan.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ai-nutricare/backend/internal/archive"
	"github.com/ai-nutricare/backend/internal/clinical"
	"github.com/ai-nutricare/backend/internal/extraction"
	"github.com/ai-nutricare/backend/internal/features"
	"github.com/ai-nutricare/backend/internal/foods"
	"github.com/ai-nutricare/backend/internal/logging"
	"github.com/ai-nutricare/backend/internal/planner"
	"github.com/ai-nutricare/backend/internal/store"
)

var logger = logging.Logger(logging.SourceHTTP)

// ErrPlannerUnavailable is returned by plan operations when no generator
// is configured.
var ErrPlannerUnavailable = errors.New("meal plan generation is not configured")

// Patient names recorded in plan prompts.
const (
	PatientFromPDF = "From PDF"
	PatientManual  = "Manual Entry"
)

// ResponseDigits is the rounding applied to plan nutrition before it is
// returned.
const ResponseDigits = 0

// RiskPredictor scores a standardized feature tensor.
type RiskPredictor interface {
	Predict(ctx context.Context, t features.Tensor) (float64, error)
}

// Dependencies are built once at startup and shared by every request.
type Dependencies struct {
	Text    *extraction.TextExtractor
	Risk    RiskPredictor
	Stats   features.Stats
	Foods   *foods.Selector
	Planner *planner.Planner // nil disables plan generation
	Store   store.PlanStore  // nil disables persistence
	Archive archive.Archive  // nil disables report archiving
}

// Pipeline runs the assessment and planning stages.
type Pipeline struct {
	text    *extraction.TextExtractor
	risk    RiskPredictor
	stats   features.Stats
	foods   *foods.Selector
	planner *planner.Planner
	store   store.PlanStore
	archive archive.Archive
	now     func() time.Time
	newID   func() string
}

// NewPipeline creates a Pipeline. A nil text extractor gets one without OCR
// and a nil selector draws from an empty knowledge base.
func NewPipeline(d Dependencies) *Pipeline {
	text := d.Text
	if text == nil {
		text = extraction.NewTextExtractor(nil)
	}
	selector := d.Foods
	if selector == nil {
		selector = foods.NewSelector(foods.NewKnowledgeBase(nil), nil)
	}
	return &Pipeline{
		text:    text,
		risk:    d.Risk,
		stats:   d.Stats,
		foods:   selector,
		planner: d.Planner,
		store:   d.Store,
		archive: d.Archive,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// CanPlan reports whether a generator is configured.
func (p *Pipeline) CanPlan() bool {
	return p.planner != nil
}

// Persists reports whether generated plans are stored.
func (p *Pipeline) Persists() bool {
	return p.store != nil
}

// Assessment is the clinical half of a plan response.
type Assessment struct {
	Parameters extraction.ParameterSet
	Vector     features.Vector
	Risk       float64
	Insight    clinical.Insight
}

// Assess vectorizes the parameters, scores them and derives the insight.
func (p *Pipeline) Assess(ctx context.Context, params extraction.ParameterSet) (*Assessment, error) {
	v := features.Vectorize(params)
	risk, err := p.risk.Predict(ctx, p.stats.Tensor(v))
	if err != nil {
		return nil, fmt.Errorf("predict risk: %w", err)
	}
	return &Assessment{
		Parameters: params,
		Vector:     v,
		Risk:       risk,
		Insight:    clinical.Reason(risk, v, params),
	}, nil
}

// Report is the outcome of reading an uploaded lab report.
type Report struct {
	Parameters extraction.ParameterSet `json:"parameters"`
	Found      int                     `json:"found"`
	PageCount  int                     `json:"page_count"`
	Source     extraction.TextSource   `json:"text_source"`
	TextLength int                     `json:"text_length"`
}

// ReadReport extracts text and biomarkers from PDF bytes.
func (p *Pipeline) ReadReport(ctx context.Context, pdf []byte) Report {
	tr := p.text.ExtractWithInfo(ctx, pdf)
	params := extraction.ExtractAll(tr.Text)
	return Report{
		Parameters: params,
		Found:      params.FoundCount(),
		PageCount:  tr.PageCount,
		Source:     tr.Source,
		TextLength: len(tr.Text),
	}
}

// PlanRequest carries everything needed to plan one week.
type PlanRequest struct {
	Source      store.Source
	Parameters  extraction.ParameterSet
	Patient     planner.Patient
	Preferences foods.Preferences
	Report      []byte // the uploaded PDF, archived when an archive is configured
	UserID      string
}

// PlanResponse is the body returned by the plan endpoints.
type PlanResponse struct {
	Clinical clinical.Insight `json:"clinical"`
	Diet     *planner.Result  `json:"diet"`
	PlanID   string           `json:"plan_id,omitempty"`
}

// Plan assesses the patient, selects candidate foods and generates the
// week. Persistence failures are logged and do not fail the request.
func (p *Pipeline) Plan(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	if p.planner == nil {
		return nil, ErrPlannerUnavailable
	}

	a, err := p.Assess(ctx, req.Parameters)
	if err != nil {
		return nil, err
	}

	candidates := p.foods.Select(a.Insight, req.Preferences)
	logger.Info("assessment complete",
		"source", req.Source,
		"risk", a.Risk,
		"conditions", len(a.Insight.Conditions),
		"candidates", len(candidates))

	result, err := p.planner.Generate(ctx, req.Patient, a.Insight, candidates, req.Preferences)
	if err != nil {
		return nil, err
	}

	resp := &PlanResponse{
		Clinical: a.Insight,
		Diet:     planner.Round(result, ResponseDigits),
	}
	resp.PlanID = p.persist(ctx, req, resp)
	return resp, nil
}

// persist archives the report and stores the plan, returning the plan id
// or "" when nothing was stored.
func (p *Pipeline) persist(ctx context.Context, req PlanRequest, resp *PlanResponse) string {
	if p.store == nil {
		return ""
	}

	plan := &store.StoredPlan{
		ID:        p.newID(),
		Source:    req.Source,
		UserID:    req.UserID,
		CreatedAt: p.now().UTC(),
	}

	if p.archive != nil && len(req.Report) > 0 {
		uri, err := p.archive.Put(ctx, plan.ID, req.Report)
		if err != nil {
			logger.Warn("report archive failed", "plan_id", plan.ID, "err", err)
		} else {
			plan.ReportURI = uri
		}
	}

	var err error
	if plan.Clinical, err = json.Marshal(resp.Clinical); err != nil {
		logger.Error("encode clinical insight", "err", err)
		return ""
	}
	if plan.Diet, err = json.Marshal(resp.Diet); err != nil {
		logger.Error("encode diet plan", "err", err)
		return ""
	}

	if err := p.store.SavePlan(ctx, plan); err != nil {
		logger.Error("save plan failed", "plan_id", plan.ID, "err", err)
		return ""
	}
	return plan.ID
}

// GetPlan returns a stored plan. Plans owned by another user are reported
// as not found.
func (p *Pipeline) GetPlan(ctx context.Context, id, userID string) (*store.StoredPlan, error) {
	if p.store == nil {
		return nil, store.ErrNotFound
	}
	plan, err := p.store.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.UserID != "" && plan.UserID != userID {
		return nil, store.ErrNotFound
	}
	return plan, nil
}

// ListPlans returns the user's most recent plans.
func (p *Pipeline) ListPlans(ctx context.Context, userID string, limit int) ([]*store.StoredPlan, error) {
	if p.store == nil {
		return []*store.StoredPlan{}, nil
	}
	return p.store.ListPlans(ctx, userID, limit)
}

// PDFPatient names the patient for an uploaded report. The age comes from
// the report when present.
func PDFPatient(params extraction.ParameterSet) planner.Patient {
	age, ok := params.Value(extraction.Age)
	if !ok || age == "" {
		age = planner.DefaultAge
	}
	return planner.Patient{Name: PatientFromPDF, Age: age}
}

// ManualPatient names the patient for manually entered values.
func ManualPatient(age int) planner.Patient {
	if age == 0 {
		return planner.Patient{Name: PatientManual, Age: planner.DefaultAge}
	}
	return planner.Patient{Name: PatientManual, Age: strconv.Itoa(age)}
}
