package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/middleware"
	"github.com/stockpredictorai/prediction-backend/internal/models"
	"github.com/stockpredictorai/prediction-backend/internal/response"
)

type PredictionService interface {
	Create(ctx context.Context, uid string, req dto.CreatePredictionRequest) (*models.Prediction, error)
	Edit(ctx context.Context, uid, predictionID string, req dto.EditPredictionRequest) (*models.Prediction, error)
	Get(ctx context.Context, predictionID, viewerID string) (*dto.PredictionView, error)
	Feed(ctx context.Context, viewerID string, f dto.FeedFilter) (*dto.FeedPage, error)
	ActiveByTicker(ctx context.Context, ticker, viewerID string) ([]dto.PredictionView, error)
	ByUser(ctx context.Context, userID, viewerID string) ([]dto.PredictionView, error)
}

type VoteService interface {
	Vote(ctx context.Context, predictionID, voterID, direction string) (*dto.VoteResponse, error)
	MyVote(ctx context.Context, predictionID, voterID string) (string, error)
}

type SentimentService interface {
	ForTicker(ctx context.Context, ticker string) (dto.SentimentMap, error)
}

type predictionHandlers struct {
	ResponseHandler response.ResponseHandler
	PredictionSvc   PredictionService
	VoteSvc         VoteService
	SentimentSvc    SentimentService
}

func NewPredictionHandlers(deps *Deps) *predictionHandlers {
	return &predictionHandlers{
		ResponseHandler: deps.ResponseHandler,
		PredictionSvc:   deps.PredictionSvc,
		VoteSvc:         deps.VoteSvc,
		SentimentSvc:    deps.SentimentSvc,
	}
}

// PredictionRoutes are the read-and-vote routes; guests may call them.
func (h *predictionHandlers) PredictionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Feed)
	r.Get("/{predictionId}", h.Get)
	r.Post("/{predictionId}/vote", h.Vote)
	r.Get("/{predictionId}/vote", h.MyVote)
	return r
}

// StockRoutes expose per-ticker reads.
func (h *predictionHandlers) StockRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{ticker}/predictions", h.ByTicker)
	r.Get("/{ticker}/sentiment", h.Sentiment)
	return r
}

func (h *predictionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	p, err := h.PredictionSvc.Create(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, p)
}

func (h *predictionHandlers) Edit(w http.ResponseWriter, r *http.Request) {
	predictionID := chi.URLParam(r, "predictionId")
	var req dto.EditPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	p, err := h.PredictionSvc.Edit(r.Context(), uid, predictionID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, p)
}

func (h *predictionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	predictionID := chi.URLParam(r, "predictionId")
	view, err := h.PredictionSvc.Get(r.Context(), predictionID, middleware.Voter(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, view)
}

func (h *predictionHandlers) Feed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := dto.FeedFilter{
		Status:         q.Get("status"),
		Ticker:         q.Get("ticker"),
		PredictionType: models.PredictionType(q.Get("type")),
		SortBy:         q.Get("sortBy"),
		VerifiedOnly:   q.Get("verifiedOnly") == "true",
		Page:           intQuery(q.Get("page")),
		Limit:          intQuery(q.Get("limit")),
	}
	page, err := h.PredictionSvc.Feed(r.Context(), middleware.Voter(r.Context()), filter)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, page)
}

func (h *predictionHandlers) ByTicker(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	views, err := h.PredictionSvc.ActiveByTicker(r.Context(), ticker, middleware.Voter(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, views)
}

// Mine lists the authenticated user's own predictions.
func (h *predictionHandlers) Mine(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	views, err := h.PredictionSvc.ByUser(r.Context(), uid, uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, views)
}

func (h *predictionHandlers) Sentiment(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	sentiment, err := h.SentimentSvc.ForTicker(r.Context(), ticker)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, sentiment)
}

type voteRequest struct {
	Direction string `json:"direction"`
}

func (h *predictionHandlers) Vote(w http.ResponseWriter, r *http.Request) {
	predictionID := chi.URLParam(r, "predictionId")
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	res, err := h.VoteSvc.Vote(r.Context(), predictionID, middleware.Voter(r.Context()), req.Direction)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, res)
}

func (h *predictionHandlers) MyVote(w http.ResponseWriter, r *http.Request) {
	predictionID := chi.URLParam(r, "predictionId")
	direction, err := h.VoteSvc.MyVote(r.Context(), predictionID, middleware.Voter(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dto.VoteResponse{
		PredictionID: predictionID,
		Direction:    direction,
	})
}

func intQuery(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
