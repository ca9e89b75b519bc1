package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/models"
	"github.com/stockpredictorai/prediction-backend/internal/store"
	"github.com/stockpredictorai/prediction-backend/internal/window"
	"github.com/stockpredictorai/prediction-backend/pkg/logger"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// predictionStore is the Firestore storage interface for predictions.
type predictionStore interface {
	Create(ctx context.Context, p *models.Prediction) error
	Get(ctx context.Context, predictionID string) (*models.Prediction, error)
	Update(ctx context.Context, p *models.Prediction) error
	List(ctx context.Context, f store.PredictionFilter) ([]*models.Prediction, error)
	Count(ctx context.Context, f store.PredictionFilter) (int, error)
	HasActive(ctx context.Context, userID, ticker string, t models.PredictionType) (bool, error)
	IncrementViews(ctx context.Context, predictionID string) error
	GetVote(ctx context.Context, predictionID, voterID string) (string, error)
}

// predictionUserStore is the user storage interface used by predictionService.
type predictionUserStore interface {
	Get(ctx context.Context, uid string) (*models.User, error)
	GetMany(ctx context.Context, uids []string) ([]*models.User, error)
	RecordPrediction(ctx context.Context, uid string, at time.Time) error
}

// quoteClient fetches live quotes from the market data provider.
type quoteClient interface {
	GetQuote(ctx context.Context, symbol string) (dto.Quote, error)
}

// tickerNotifier is told when a ticker's active predictions changed, so
// sentiment can be recomputed and published.
type tickerNotifier interface {
	TickerChanged(ctx context.Context, ticker string)
}

type predictionService struct {
	store     predictionStore
	users     predictionUserStore
	market    quoteClient
	notifier  tickerNotifier
	maxPerDay int
	now       func() time.Time
}

func NewPredictionService(st predictionStore, users predictionUserStore, market quoteClient, notifier tickerNotifier, maxPerDay int) *predictionService {
	return &predictionService{
		store:     st,
		users:     users,
		market:    market,
		notifier:  notifier,
		maxPerDay: maxPerDay,
		now:       time.Now,
	}
}

// Create validates and persists a new prediction. The submission window for
// the type must be open, the user must not already hold an active
// prediction of that type on the ticker, and the daily cap must not be hit.
func (s *predictionService) Create(ctx context.Context, uid string, req dto.CreatePredictionRequest) (*models.Prediction, error) {
	if req.Ticker == "" {
		return nil, errs.NewValidationError("ticker is required")
	}
	if req.TargetPrice <= 0 {
		return nil, errs.NewValidationError("target price must be positive")
	}
	if !req.PredictionType.Valid() {
		return nil, errs.NewValidationError(fmt.Sprintf("invalid prediction type: %s", req.PredictionType))
	}

	now := s.now()
	status := window.Evaluate(req.PredictionType, now)
	if !status.IsOpen {
		return nil, errs.NewWindowClosedError(status.Message)
	}

	user, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if s.maxPerDay > 0 && sameDay(user.LastPredictionDate, now) && user.DailyPredictionCount >= s.maxPerDay {
		return nil, errs.NewLimitExceededError(fmt.Sprintf("daily prediction limit of %d reached", s.maxPerDay))
	}

	exists, err := s.store.HasActive(ctx, uid, req.Ticker, req.PredictionType)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.NewAlreadyExistsError(
			fmt.Sprintf("you already have an active %s prediction for %s", req.PredictionType, req.Ticker))
	}

	p := &models.Prediction{
		PredictionID:          uuid.New().String(),
		UserID:                uid,
		Ticker:                req.Ticker,
		TargetPrice:           req.TargetPrice,
		TargetPriceAtCreation: req.TargetPrice,
		PredictionType:        req.PredictionType,
		Deadline:              status.Deadline,
		Status:                models.StatusActive,
		Currency:              "USD",
		Description:           req.Description,
	}

	// A quote failure must not block submission; the assessor only needs
	// the price at creation for display.
	quote, err := s.market.GetQuote(ctx, req.Ticker)
	if err != nil {
		logger.FromContext(ctx).Warn("quote unavailable at creation",
			slog.String("ticker", req.Ticker), slog.String("error", err.Error()))
	} else {
		p.PriceAtCreation = quote.Price
		if quote.Currency != "" {
			p.Currency = quote.Currency
		}
	}

	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	if err := s.users.RecordPrediction(ctx, uid, now); err != nil {
		logger.FromContext(ctx).Error("failed to record daily prediction count",
			slog.String("uid", uid), slog.String("error", err.Error()))
	}
	if s.notifier != nil {
		s.notifier.TickerChanged(ctx, p.Ticker)
	}
	return p, nil
}

// Edit revises an active prediction's target price, appending the previous
// target to the revision history. Only the author may edit, and only while
// the prediction is active.
func (s *predictionService) Edit(ctx context.Context, uid, predictionID string, req dto.EditPredictionRequest) (*models.Prediction, error) {
	if req.NewTargetPrice <= 0 {
		return nil, errs.NewValidationError("target price must be positive")
	}
	p, err := s.store.Get(ctx, predictionID)
	if err != nil {
		return nil, err
	}
	if p.UserID != uid {
		return nil, errs.NewForbiddenError("only the author can edit a prediction")
	}
	if p.Status != models.StatusActive {
		return nil, errs.NewValidationError("only active predictions can be edited")
	}

	revision := models.TargetRevision{
		PreviousTargetPrice: p.TargetPrice,
		NewTargetPrice:      req.NewTargetPrice,
		Reason:              req.Reason,
		RevisedAt:           s.now(),
	}
	if quote, err := s.market.GetQuote(ctx, p.Ticker); err == nil {
		revision.PriceAtRevision = quote.Price
	}

	p.TargetPrice = req.NewTargetPrice
	p.History = append(p.History, revision)
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.TickerChanged(ctx, p.Ticker)
	}
	return p, nil
}

// Get returns a single prediction enriched for display and bumps its view
// counter.
func (s *predictionService) Get(ctx context.Context, predictionID, viewerID string) (*dto.PredictionView, error) {
	p, err := s.store.Get(ctx, predictionID)
	if err != nil {
		return nil, err
	}
	if err := s.store.IncrementViews(ctx, predictionID); err != nil {
		logger.FromContext(ctx).Warn("failed to increment views",
			slog.String("predictionId", predictionID), slog.String("error", err.Error()))
	}
	views, err := s.buildViews(ctx, []*models.Prediction{p}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Feed returns one page of the explore feed.
func (s *predictionService) Feed(ctx context.Context, viewerID string, f dto.FeedFilter) (*dto.FeedPage, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	filter := store.PredictionFilter{
		Status:         f.Status,
		Ticker:         f.Ticker,
		PredictionType: f.PredictionType,
		Desc:           true,
	}
	switch f.SortBy {
	case "votes":
		filter.OrderBy = "likeCount"
	case "performance":
		filter.OrderBy = "rating"
	default:
		filter.OrderBy = "createdAt"
	}

	var total int
	var views []dto.PredictionView
	if f.VerifiedOnly {
		// The verified flag lives on the author, not the prediction, so it
		// cannot be pushed into the query. Filter the whole result set first
		// and paginate in memory so the page math reflects what is shown.
		preds, err := s.store.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all, err := s.buildViews(ctx, preds, viewerID)
		if err != nil {
			return nil, err
		}
		filtered := all[:0]
		for _, v := range all {
			if v.Author != nil && v.Author.IsVerified {
				filtered = append(filtered, v)
			}
		}
		total = len(filtered)
		start := (page - 1) * limit
		if start > total {
			start = total
		}
		end := start + limit
		if end > total {
			end = total
		}
		views = filtered[start:end]
	} else {
		filter.Offset = (page - 1) * limit
		filter.Limit = limit
		var err error
		total, err = s.store.Count(ctx, filter)
		if err != nil {
			return nil, err
		}
		preds, err := s.store.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		views, err = s.buildViews(ctx, preds, viewerID)
		if err != nil {
			return nil, err
		}
	}

	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	return &dto.FeedPage{
		Predictions: views,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// ActiveByTicker returns a ticker's active predictions enriched for display.
func (s *predictionService) ActiveByTicker(ctx context.Context, ticker, viewerID string) ([]dto.PredictionView, error) {
	preds, err := s.store.List(ctx, store.PredictionFilter{
		Ticker:  ticker,
		Status:  models.StatusActive,
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, preds, viewerID)
}

// ByUser returns all of one user's predictions, newest first.
func (s *predictionService) ByUser(ctx context.Context, userID, viewerID string) ([]dto.PredictionView, error) {
	preds, err := s.store.List(ctx, store.PredictionFilter{
		UserID:  userID,
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, preds, viewerID)
}

// buildViews joins predictions with their authors and, when a viewer is
// known, the viewer's vote direction.
func (s *predictionService) buildViews(ctx context.Context, preds []*models.Prediction, viewerID string) ([]dto.PredictionView, error) {
	uidSet := make(map[string]struct{}, len(preds))
	uids := make([]string, 0, len(preds))
	for _, p := range preds {
		if _, ok := uidSet[p.UserID]; !ok {
			uidSet[p.UserID] = struct{}{}
			uids = append(uids, p.UserID)
		}
	}
	authors, err := s.users.GetMany(ctx, uids)
	if err != nil {
		return nil, err
	}
	byUID := make(map[string]*models.User, len(authors))
	for _, u := range authors {
		byUID[u.UID] = u
	}

	views := make([]dto.PredictionView, 0, len(preds))
	for _, p := range preds {
		v := dto.PredictionView{Prediction: *p}
		if u, ok := byUID[p.UserID]; ok {
			v.Author = &dto.AuthorSummary{
				UserID:         u.UID,
				Username:       u.Username,
				Avatar:         u.Avatar,
				IsGoldenMember: u.IsGoldenMember,
				IsVerified:     u.IsVerified,
				AvgRating:      u.AvgRating,
				TotalRating:    u.AnalystRating.Total,
			}
		}
		if viewerID != "" {
			direction, err := s.store.GetVote(ctx, p.PredictionID, viewerID)
			if err == nil {
				v.MyVote = direction
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
