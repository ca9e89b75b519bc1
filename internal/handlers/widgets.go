package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/response"
)

type WidgetService interface {
	Dashboard(ctx context.Context) *dto.DashboardViewModel
	HourlyWinners(ctx context.Context) ([]dto.HourlyWinner, error)
	DailyLeaders(ctx context.Context) ([]dto.LeaderEntry, error)
	LongTermLeaders(ctx context.Context) ([]dto.LeaderEntry, error)
	KeyAssets(ctx context.Context) ([]dto.KeyAsset, error)
	FamousStocks(ctx context.Context) (dto.FamousStocksSlice, error)
}

type widgetHandlers struct {
	ResponseHandler response.ResponseHandler
	WidgetSvc       WidgetService
}

func NewWidgetHandlers(deps *Deps) *widgetHandlers {
	return &widgetHandlers{
		ResponseHandler: deps.ResponseHandler,
		WidgetSvc:       deps.WidgetSvc,
	}
}

func (h *widgetHandlers) WidgetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/hourly-winners", h.HourlyWinners)
	r.Get("/daily-leaders", h.DailyLeaders)
	r.Get("/long-term-leaders", h.LongTermLeaders)
	r.Get("/famous-stocks", h.FamousStocks)
	return r
}

// Dashboard is the consolidated read: every section fetched concurrently,
// always a 200, per-section availability in the payload.
func (h *widgetHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	vm := h.WidgetSvc.Dashboard(r.Context())
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, vm)
}

func (h *widgetHandlers) HourlyWinners(w http.ResponseWriter, r *http.Request) {
	winners, err := h.WidgetSvc.HourlyWinners(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, winners)
}

func (h *widgetHandlers) DailyLeaders(w http.ResponseWriter, r *http.Request) {
	leaders, err := h.WidgetSvc.DailyLeaders(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, leaders)
}

func (h *widgetHandlers) LongTermLeaders(w http.ResponseWriter, r *http.Request) {
	leaders, err := h.WidgetSvc.LongTermLeaders(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, leaders)
}

func (h *widgetHandlers) KeyAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.WidgetSvc.KeyAssets(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, assets)
}

func (h *widgetHandlers) FamousStocks(w http.ResponseWriter, r *http.Request) {
	famous, err := h.WidgetSvc.FamousStocks(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, famous)
}
