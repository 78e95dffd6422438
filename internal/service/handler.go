package service

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ai-nutricare/backend/internal/auth"
	"github.com/ai-nutricare/backend/internal/extraction"
	"github.com/ai-nutricare/backend/internal/foods"
	"github.com/ai-nutricare/backend/internal/store"
)

// DefaultMaxUploadBytes applies when NewHandler is given no limit.
const DefaultMaxUploadBytes = 20 << 20

const (
	reportField     = "report"
	pdfContentType  = "application/pdf"
	multipartMemory = 8 << 20
)

// Handler serves the REST API.
type Handler struct {
	pipeline  *Pipeline
	maxUpload int64
}

// NewHandler creates a Handler. maxUploadBytes bounds report uploads.
func NewHandler(p *Pipeline, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{pipeline: p, maxUpload: maxUploadBytes}
}

// RegisterRoutes sets up all API routes.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/plan-diet", h.handlePlanDiet).Methods(http.MethodPost)
	r.HandleFunc("/plan-diet-manual", h.handlePlanDietManual).Methods(http.MethodPost)
	r.HandleFunc("/extract", h.handleExtract).Methods(http.MethodPost)
	r.HandleFunc("/plans", h.handleListPlans).Methods(http.MethodGet)
	r.HandleFunc("/plans/{id}", h.handleGetPlan).Methods(http.MethodGet)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"plan_generation": h.pipeline.CanPlan(),
		"persistence":     h.pipeline.Persists(),
	})
}

// handlePlanDiet plans a week from an uploaded PDF report.
func (h *Handler) handlePlanDiet(w http.ResponseWriter, r *http.Request) {
	prefs, err := queryPreferences(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	data, err := h.readReport(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	report := h.pipeline.ReadReport(r.Context(), data)
	logger.Info("report read",
		"pages", report.PageCount,
		"text_source", report.Source,
		"found", report.Found)

	userID, _ := auth.GetUserID(r.Context())
	resp, err := h.pipeline.Plan(r.Context(), PlanRequest{
		Source:      store.SourcePDF,
		Parameters:  report.Parameters,
		Patient:     PDFPatient(report.Parameters),
		Preferences: prefs,
		Report:      data,
		UserID:      userID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// handlePlanDietManual plans a week from typed-in biomarkers.
func (h *Handler) handlePlanDietManual(w http.ResponseWriter, r *http.Request) {
	var body ManualRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	values, prefs, err := body.Validate()
	if err != nil {
		respondError(w, r, err)
		return
	}

	userID, _ := auth.GetUserID(r.Context())
	resp, err := h.pipeline.Plan(r.Context(), PlanRequest{
		Source:      store.SourceManual,
		Parameters:  values.ParameterSet(),
		Patient:     ManualPatient(values.Age),
		Preferences: prefs,
		UserID:      userID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleExtract reads a report without planning.
func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	data, err := h.readReport(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.pipeline.ReadReport(r.Context(), data))
}

func (h *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserID(r.Context())
	plan, err := h.pipeline.GetPlan(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondError(w, r, unprocessable("limit must be a non-negative integer", "limit"))
			return
		}
	}

	plans, err := h.pipeline.ListPlans(r.Context(), claims.UID, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

// readReport returns the bytes of the multipart "report" file after
// checking its declared content type.
func (h *Handler) readReport(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, badRequest("expected a multipart form with a report file")
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(reportField)
	if err != nil {
		return nil, unprocessable("report file is required", reportField)
	}
	defer file.Close()

	mediaType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if mediaType != pdfContentType {
		return nil, badRequest("Only PDF files are supported")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	if !extraction.LooksLikePDF(data) {
		logger.Warn("upload declared as PDF has no PDF header", "bytes", len(data))
	}
	return data, nil
}

// queryPreferences reads diet_type and region from the query string.
func queryPreferences(r *http.Request) (foods.Preferences, error) {
	q := r.URL.Query()
	dt, err := foods.ParseDietType(strings.TrimSpace(q.Get("diet_type")))
	if err != nil {
		return foods.Preferences{}, unprocessable(err.Error(), "diet_type")
	}
	return foods.Preferences{DietType: dt, Region: strings.TrimSpace(q.Get("region"))}, nil
}
