package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/middleware"
	"github.com/stockpredictorai/prediction-backend/internal/models"
	"github.com/stockpredictorai/prediction-backend/internal/response"
)

type UserService interface {
	EnsureUser(ctx context.Context, uid, email, username string) (*models.User, error)
	Get(ctx context.Context, uid string) (*models.User, error)
	UpdateProfile(ctx context.Context, uid string, username, avatar, about *string) (*models.User, error)
	Follow(ctx context.Context, followerUID, followeeUID string) error
	Unfollow(ctx context.Context, followerUID, followeeUID string) error
}

type LeaderboardService interface {
	Scoreboard(ctx context.Context, f dto.ScoreboardFilter) (*dto.ScoreboardPage, error)
	RatingLeaderboard(ctx context.Context) (*dto.RatingLeaderboard, error)
}

type userHandlers struct {
	ResponseHandler response.ResponseHandler
	UserSvc         UserService
	LeaderboardSvc  LeaderboardService
	PredictionSvc   PredictionService
}

func NewUserHandlers(deps *Deps) *userHandlers {
	return &userHandlers{
		ResponseHandler: deps.ResponseHandler,
		UserSvc:         deps.UserSvc,
		LeaderboardSvc:  deps.LeaderboardSvc,
		PredictionSvc:   deps.PredictionSvc,
	}
}

func (h *userHandlers) UserRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.EnsureUser)
	r.Put("/me", h.UpdateProfile)
	r.Get("/{uid}", h.Get)
	r.Get("/{uid}/predictions", h.Predictions)
	r.Post("/{uid}/follow", h.Follow)
	r.Delete("/{uid}/follow", h.Unfollow)
	return r
}

type ensureUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

func (h *userHandlers) EnsureUser(w http.ResponseWriter, r *http.Request) {
	var req ensureUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	user, err := h.UserSvc.EnsureUser(r.Context(), uid, req.Email, req.Username)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, user)
}

func (h *userHandlers) Get(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	user, err := h.UserSvc.Get(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, user)
}

type updateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	About    *string `json:"about,omitempty"`
}

func (h *userHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	user, err := h.UserSvc.UpdateProfile(r.Context(), uid, req.Username, req.Avatar, req.About)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, user)
}

func (h *userHandlers) Predictions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uid")
	views, err := h.PredictionSvc.ByUser(r.Context(), userID, middleware.Voter(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, views)
}

func (h *userHandlers) Follow(w http.ResponseWriter, r *http.Request) {
	follower := middleware.UID(r.Context())
	followee := chi.URLParam(r, "uid")
	if err := h.UserSvc.Follow(r.Context(), follower, followee); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *userHandlers) Unfollow(w http.ResponseWriter, r *http.Request) {
	follower := middleware.UID(r.Context())
	followee := chi.URLParam(r, "uid")
	if err := h.UserSvc.Unfollow(r.Context(), follower, followee); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *userHandlers) Scoreboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := dto.ScoreboardFilter{
		PredictionType: models.PredictionType(q.Get("type")),
		Ticker:         q.Get("ticker"),
		Page:           intQuery(q.Get("page")),
		Limit:          intQuery(q.Get("limit")),
	}
	page, err := h.LeaderboardSvc.Scoreboard(r.Context(), filter)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, page)
}

func (h *userHandlers) RatingLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.LeaderboardSvc.RatingLeaderboard(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, board)
}
