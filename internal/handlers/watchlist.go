package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/middleware"
	"github.com/stockpredictorai/prediction-backend/internal/response"
)

type WatchlistService interface {
	Bundle(ctx context.Context, uid string) (*dto.WatchlistBundle, error)
	Update(ctx context.Context, uid string, req dto.UpdateWatchlistRequest) (*dto.WatchlistBundle, error)
	Reorder(ctx context.Context, uid string, tickers []string) (*dto.WatchlistResponse, error)
}

type watchlistHandlers struct {
	ResponseHandler response.ResponseHandler
	WatchlistSvc    WatchlistService
}

func NewWatchlistHandlers(deps *Deps) *watchlistHandlers {
	return &watchlistHandlers{
		ResponseHandler: deps.ResponseHandler,
		WatchlistSvc:    deps.WatchlistSvc,
	}
}

func (h *watchlistHandlers) WatchlistRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetBundle)
	r.Put("/", h.Update)
	r.Put("/order", h.Reorder)
	return r
}

func (h *watchlistHandlers) GetBundle(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	bundle, err := h.WatchlistSvc.Bundle(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, bundle)
}

func (h *watchlistHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	bundle, err := h.WatchlistSvc.Update(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, bundle)
}

func (h *watchlistHandlers) Reorder(w http.ResponseWriter, r *http.Request) {
	var req dto.ReorderWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	res, err := h.WatchlistSvc.Reorder(r.Context(), uid, req.Tickers)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, res)
}
