package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/models"
	"github.com/stockpredictorai/prediction-backend/internal/store"
)

const recommendedPerTicker = 3

// watchlistUserStore is the user storage interface for the watchlist.
type watchlistUserStore interface {
	Get(ctx context.Context, uid string) (*models.User, error)
	GetMany(ctx context.Context, uids []string) ([]*models.User, error)
	AddToWatchlist(ctx context.Context, uid, ticker string) error
	RemoveFromWatchlist(ctx context.Context, uid, ticker string) error
	SetWatchlistOrder(ctx context.Context, uid string, tickers []string) error
}

// watchlistPredictionStore reads predictions for watched tickers.
type watchlistPredictionStore interface {
	List(ctx context.Context, f store.PredictionFilter) ([]*models.Prediction, error)
}

// quotesClient fetches a batch of quotes.
type quotesClient interface {
	GetQuotes(ctx context.Context, symbols []string) ([]dto.Quote, error)
}

type watchlistService struct {
	users       watchlistUserStore
	predictions watchlistPredictionStore
	market      quotesClient
}

func NewWatchlistService(users watchlistUserStore, predictions watchlistPredictionStore, market quotesClient) *watchlistService {
	return &watchlistService{users: users, predictions: predictions, market: market}
}

// MoveTicker relocates the element at from to to, preserving the relative
// order of everything else. Out-of-range indexes return the input unchanged.
func MoveTicker(tickers []string, from, to int) []string {
	if from < 0 || from >= len(tickers) || to < 0 || to >= len(tickers) {
		return tickers
	}
	out := make([]string, 0, len(tickers))
	out = append(out, tickers[:from]...)
	out = append(out, tickers[from+1:]...)
	out = append(out[:to], append([]string{tickers[from]}, out[to:]...)...)
	return out
}

// Update adds or removes a ticker and returns the refreshed bundle, because
// an added ticker needs server-computed data the client cannot derive.
func (s *watchlistService) Update(ctx context.Context, uid string, req dto.UpdateWatchlistRequest) (*dto.WatchlistBundle, error) {
	if req.Ticker == "" {
		return nil, errs.NewValidationError("ticker is required")
	}
	switch req.Action {
	case dto.WatchlistAdd:
		if err := s.users.AddToWatchlist(ctx, uid, req.Ticker); err != nil {
			return nil, err
		}
	case dto.WatchlistRemove:
		if err := s.users.RemoveFromWatchlist(ctx, uid, req.Ticker); err != nil {
			return nil, err
		}
	default:
		return nil, errs.NewValidationError(fmt.Sprintf("invalid action: %s", req.Action))
	}
	return s.Bundle(ctx, uid)
}

// Reorder persists a full reordering of the user's watchlist. The new list
// must be a permutation of the current one; there is no rollback path on
// failure, the error response is the client's cue to refetch.
func (s *watchlistService) Reorder(ctx context.Context, uid string, tickers []string) (*dto.WatchlistResponse, error) {
	user, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !samePermutation(user.Watchlist, tickers) {
		return nil, errs.NewValidationError("reordered list must contain exactly the current watchlist tickers")
	}
	if err := s.users.SetWatchlistOrder(ctx, uid, tickers); err != nil {
		return nil, err
	}
	return &dto.WatchlistResponse{Watchlist: tickers}, nil
}

// Bundle assembles the authoritative watchlist read: quotes in the user's
// order, active predictions per ticker, and recommended analysts per
// ticker. The three legs run concurrently; any one failing fails the read.
func (s *watchlistService) Bundle(ctx context.Context, uid string) (*dto.WatchlistBundle, error) {
	user, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	bundle := &dto.WatchlistBundle{
		Quotes:           []dto.Quote{},
		Predictions:      map[string][]dto.PredictionView{},
		RecommendedUsers: map[string][]dto.RecommendedAnalyst{},
	}
	if len(user.Watchlist) == 0 {
		return bundle, nil
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		quotes, err := s.market.GetQuotes(ctx, user.Watchlist)
		if err != nil {
			return err
		}
		mu.Lock()
		bundle.Quotes = orderQuotes(user.Watchlist, quotes)
		mu.Unlock()
		return nil
	})

	for _, ticker := range user.Watchlist {
		g.Go(func() error {
			preds, err := s.predictions.List(ctx, store.PredictionFilter{
				Ticker:  ticker,
				Status:  models.StatusActive,
				OrderBy: "createdAt",
				Desc:    true,
			})
			if err != nil {
				return err
			}
			views := make([]dto.PredictionView, 0, len(preds))
			for _, p := range preds {
				views = append(views, dto.PredictionView{Prediction: *p})
			}
			recommended, err := s.recommendAnalysts(ctx, preds)
			if err != nil {
				return err
			}
			mu.Lock()
			bundle.Predictions[ticker] = views
			bundle.RecommendedUsers[ticker] = recommended
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// recommendAnalysts picks the highest-rated authors among a ticker's active
// predictions.
func (s *watchlistService) recommendAnalysts(ctx context.Context, preds []*models.Prediction) ([]dto.RecommendedAnalyst, error) {
	seen := make(map[string]struct{}, len(preds))
	uids := make([]string, 0, len(preds))
	for _, p := range preds {
		if _, ok := seen[p.UserID]; !ok {
			seen[p.UserID] = struct{}{}
			uids = append(uids, p.UserID)
		}
	}
	users, err := s.users.GetMany(ctx, uids)
	if err != nil {
		return nil, err
	}
	sortUsersByAvgRating(users)
	if len(users) > recommendedPerTicker {
		users = users[:recommendedPerTicker]
	}
	out := make([]dto.RecommendedAnalyst, 0, len(users))
	for _, u := range users {
		out = append(out, dto.RecommendedAnalyst{
			UserID:                  u.UID,
			Username:                u.Username,
			Avatar:                  u.Avatar,
			IsGoldenMember:          u.IsGoldenMember,
			IsVerified:              u.IsVerified,
			AvgRating:               u.AvgRating,
			GoldenMemberPrice:       u.GoldenMemberPrice,
			AcceptingNewSubscribers: u.AcceptingNewSubscribers,
		})
	}
	return out, nil
}

// orderQuotes returns quotes in watchlist order, dropping tickers the
// provider did not resolve.
func orderQuotes(watchlist []string, quotes []dto.Quote) []dto.Quote {
	bySymbol := make(map[string]dto.Quote, len(quotes))
	for _, q := range quotes {
		bySymbol[q.Symbol] = q
	}
	out := make([]dto.Quote, 0, len(watchlist))
	for _, t := range watchlist {
		if q, ok := bySymbol[t]; ok {
			out = append(out, q)
		}
	}
	return out
}

func sortUsersByAvgRating(users []*models.User) {
	sort.Slice(users, func(i, j int) bool {
		return users[i].AvgRating > users[j].AvgRating
	})
}

func samePermutation(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, t := range a {
		counts[t]++
	}
	for _, t := range b {
		counts[t]--
		if counts[t] < 0 {
			return false
		}
	}
	return true
}
