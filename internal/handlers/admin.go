package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/response"
)

type AssessmentService interface {
	AssessExpired(ctx context.Context) (int, error)
	RecalculateRankBonuses(ctx context.Context) (int, error)
}

type InsightService interface {
	PredictGold(ctx context.Context, ticker string) (*dto.GoldInsight, error)
}

type adminHandlers struct {
	ResponseHandler response.ResponseHandler
	AssessmentSvc   AssessmentService
	InsightSvc      InsightService
}

func NewAdminHandlers(deps *Deps) *adminHandlers {
	return &adminHandlers{
		ResponseHandler: deps.ResponseHandler,
		AssessmentSvc:   deps.AssessmentSvc,
		InsightSvc:      deps.InsightSvc,
	}
}

func (h *adminHandlers) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/assess", h.Assess)
	r.Post("/recalculate-analytics", h.RecalculateAnalytics)
	r.Post("/predict-gold", h.PredictGold)
	return r
}

type sweepResult struct {
	Processed int `json:"processed"`
}

// Assess runs one assessment sweep on demand, outside the scheduled cycle.
func (h *adminHandlers) Assess(w http.ResponseWriter, r *http.Request) {
	n, err := h.AssessmentSvc.AssessExpired(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, sweepResult{Processed: n})
}

func (h *adminHandlers) RecalculateAnalytics(w http.ResponseWriter, r *http.Request) {
	n, err := h.AssessmentSvc.RecalculateRankBonuses(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, sweepResult{Processed: n})
}

func (h *adminHandlers) PredictGold(w http.ResponseWriter, r *http.Request) {
	var req dto.GoldInsightRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
			return
		}
	}
	insight, err := h.InsightSvc.PredictGold(r.Context(), req.Ticker)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, insight)
}
