package services

import (
	"context"
	"sort"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/models"
	"github.com/stockpredictorai/prediction-backend/internal/store"
)

const (
	defaultScoreboardLimit = 20
	ratingLeaderboardSize  = 100
)

// leaderboardUserStore is the user storage interface for leaderboards.
type leaderboardUserStore interface {
	GetMany(ctx context.Context, uids []string) ([]*models.User, error)
	TopByAnalystRating(ctx context.Context, limit int) ([]*models.User, error)
	TotalAnalystRating(ctx context.Context) (float64, error)
}

type leaderboardService struct {
	predictions widgetPredictionStore
	users       leaderboardUserStore
}

func NewLeaderboardService(predictions widgetPredictionStore, users leaderboardUserStore) *leaderboardService {
	return &leaderboardService{predictions: predictions, users: users}
}

// Scoreboard ranks users by average rating over their assessed
// predictions, optionally narrowed to one type or ticker, and returns the
// requested page.
func (s *leaderboardService) Scoreboard(ctx context.Context, f dto.ScoreboardFilter) (*dto.ScoreboardPage, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultScoreboardLimit
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	preds, err := s.predictions.List(ctx, store.PredictionFilter{
		Status:         models.StatusAssessed,
		PredictionType: f.PredictionType,
		Ticker:         f.Ticker,
		OrderBy:        "assessedAt",
		Desc:           true,
	})
	if err != nil {
		return nil, err
	}

	sums := map[string]float64{}
	counts := map[string]int{}
	for _, p := range preds {
		sums[p.UserID] += p.Rating
		counts[p.UserID]++
	}
	type row struct {
		uid    string
		rating float64
		count  int
	}
	rows := make([]row, 0, len(sums))
	for uid, sum := range sums {
		rows = append(rows, row{uid: uid, rating: sum / float64(counts[uid]), count: counts[uid]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].rating != rows[j].rating {
			return rows[i].rating > rows[j].rating
		}
		return rows[i].count > rows[j].count
	})

	totalPages := (len(rows) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	start := (page - 1) * limit
	if start > len(rows) {
		start = len(rows)
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	rows = rows[start:end]

	uids := make([]string, len(rows))
	for i, r := range rows {
		uids[i] = r.uid
	}
	users, err := s.users.GetMany(ctx, uids)
	if err != nil {
		return nil, err
	}
	byUID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byUID[u.UID] = u
	}

	entries := make([]dto.ScoreboardEntry, 0, len(rows))
	for _, r := range rows {
		e := dto.ScoreboardEntry{
			UserID:          r.uid,
			AvgRating:       r.rating,
			PredictionCount: r.count,
		}
		if u, ok := byUID[r.uid]; ok {
			e.Username = u.Username
			e.Avatar = u.Avatar
			e.IsGoldenMember = u.IsGoldenMember
			e.IsVerified = u.IsVerified
			e.GoldenMemberPrice = u.GoldenMemberPrice
			e.AcceptingNewSubscribers = u.AcceptingNewSubscribers
		}
		entries = append(entries, e)
	}
	return &dto.ScoreboardPage{
		Users:       entries,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// RatingLeaderboard returns the top users by total analyst rating plus the
// global total, which the client uses to render each user's share.
func (s *leaderboardService) RatingLeaderboard(ctx context.Context) (*dto.RatingLeaderboard, error) {
	users, err := s.users.TopByAnalystRating(ctx, ratingLeaderboardSize)
	if err != nil {
		return nil, err
	}
	total, err := s.users.TotalAnalystRating(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.RatingLeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, dto.RatingLeaderboardEntry{
			UserID:        u.UID,
			Username:      u.Username,
			Avatar:        u.Avatar,
			AnalystRating: u.AnalystRating,
		})
	}
	return &dto.RatingLeaderboard{
		Users:              entries,
		TotalAnalystRating: total,
	}, nil
}
