package services

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/stockpredictorai/prediction-backend/internal/models"
	"github.com/stockpredictorai/prediction-backend/internal/store"
	"github.com/stockpredictorai/prediction-backend/pkg/logger"
)

// A prediction within this error fraction of the actual price earns a
// nonzero proximity rating; at or beyond it the rating is zero.
const maxErrorFraction = 0.20

// assessmentUserStore is the user storage interface used during assessment.
type assessmentUserStore interface {
	ApplyAssessment(ctx context.Context, uid string, rating, accuracyPoints, targetHitPoints float64) error
	SetRankBonus(ctx context.Context, uid string, points float64) error
	AddRankBonus(ctx context.Context, uid string, points float64) error
}

type assessmentService struct {
	predictions predictionStore
	users       assessmentUserStore
	market      quoteClient
	notifier    tickerNotifier
	now         func() time.Time
}

func NewAssessmentService(predictions predictionStore, users assessmentUserStore, market quoteClient, notifier tickerNotifier) *assessmentService {
	return &assessmentService{
		predictions: predictions,
		users:       users,
		market:      market,
		notifier:    notifier,
		now:         time.Now,
	}
}

// ProximityRating scores a settled prediction from 0 to 100. A prediction
// that called the wrong direction scores zero regardless of distance;
// otherwise the score falls linearly from 100 at a perfect call to 0 at a
// 20% relative error.
func ProximityRating(target, priceAtCreation, actual float64) float64 {
	if actual <= 0 {
		return 0
	}
	predictedUp := target >= priceAtCreation
	actualUp := actual >= priceAtCreation
	if predictedUp != actualUp {
		return 0
	}
	errFraction := math.Abs(actual-target) / actual
	if errFraction >= maxErrorFraction {
		return 0
	}
	return 100 * (1 - errFraction/maxErrorFraction)
}

// accuracyPoints converts a proximity rating into analyst points.
func accuracyPoints(rating float64) float64 {
	switch {
	case rating >= 90:
		return 10
	case rating >= 80:
		return 5
	case rating >= 70:
		return 2
	}
	return 0
}

// typeWeight scales target-hit points by how far out the call was made.
func typeWeight(t models.PredictionType) float64 {
	switch t {
	case models.TypeHourly:
		return 0.5
	case models.TypeDaily:
		return 1
	case models.TypeWeekly:
		return 2
	case models.TypeMonthly:
		return 4
	case models.TypeQuarterly:
		return 6
	case models.TypeYearly:
		return 10
	}
	return 0
}

// targetHit reports whether the actual price reached or passed the target
// in the predicted direction.
func targetHit(target, priceAtCreation, actual float64) bool {
	if target >= priceAtCreation {
		return actual >= target
	}
	return actual <= target
}

// targetHitPoints is the base award for a hit target, before type
// weighting.
const targetHitBase = 5

// AssessExpired settles every active prediction whose deadline has
// passed: fetch the closing quote, score it, credit the author, and
// publish the ticker's refreshed sentiment. One failing prediction is
// logged and skipped; the sweep carries on.
func (s *assessmentService) AssessExpired(ctx context.Context) (int, error) {
	preds, err := s.predictions.List(ctx, store.PredictionFilter{
		Status:         models.StatusActive,
		DeadlineBefore: s.now(),
		OrderBy:        "deadline",
	})
	if err != nil {
		return 0, err
	}

	log := logger.FromContext(ctx)
	assessed := 0
	for _, p := range preds {
		if err := s.assessOne(ctx, p); err != nil {
			log.Error("failed to assess prediction",
				slog.String("predictionId", p.PredictionID),
				slog.String("ticker", p.Ticker),
				slog.String("error", err.Error()))
			continue
		}
		assessed++
	}
	return assessed, nil
}

func (s *assessmentService) assessOne(ctx context.Context, p *models.Prediction) error {
	quote, err := s.market.GetQuote(ctx, p.Ticker)
	if err != nil {
		return err
	}

	p.ActualPrice = quote.Price
	p.Rating = ProximityRating(p.TargetPrice, p.PriceAtCreation, quote.Price)
	p.Status = models.StatusAssessed
	p.AssessedAt = s.now()
	if err := s.predictions.Update(ctx, p); err != nil {
		return err
	}

	hitPoints := 0.0
	if targetHit(p.TargetPrice, p.PriceAtCreation, quote.Price) {
		hitPoints = targetHitBase * typeWeight(p.PredictionType)
	}
	if err := s.users.ApplyAssessment(ctx, p.UserID, p.Rating, accuracyPoints(p.Rating), hitPoints); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.TickerChanged(ctx, p.Ticker)
	}
	return nil
}

// Rank bonus tiers and the participation weight brackets they are scaled
// by.
func rankBonus(rank int) float64 {
	switch {
	case rank == 1:
		return 100
	case rank <= 10:
		return 50
	case rank <= 50:
		return 10
	case rank <= 100:
		return 5
	}
	return 0
}

func competitionWeight(participants int) float64 {
	switch {
	case participants > 100:
		return 1.5
	case participants > 20:
		return 1.0
	}
	return 0.5
}

// rankBonusTotals computes, per user, the tier award they currently earn
// across the per-type leaderboards.
func (s *assessmentService) rankBonusTotals(ctx context.Context) (map[string]float64, error) {
	preds, err := s.predictions.List(ctx, store.PredictionFilter{
		Status:  models.StatusAssessed,
		OrderBy: "assessedAt",
		Desc:    true,
	})
	if err != nil {
		return nil, err
	}

	bonuses := map[string]float64{}
	for _, t := range models.PredictionTypes {
		standings := standingsFor(preds, t)
		weight := competitionWeight(len(standings))
		for rank, uid := range standings {
			bonuses[uid] += rankBonus(rank+1) * weight
		}
	}
	return bonuses, nil
}

// RecalculateRankBonuses rebuilds every user's rank bonus from scratch by
// ranking assessed performance per prediction type and summing the tier
// awards across those competitions.
func (s *assessmentService) RecalculateRankBonuses(ctx context.Context) (int, error) {
	bonuses, err := s.rankBonusTotals(ctx)
	if err != nil {
		return 0, err
	}

	log := logger.FromContext(ctx)
	updated := 0
	for uid, bonus := range bonuses {
		if err := s.users.SetRankBonus(ctx, uid, bonus); err != nil {
			log.Error("failed to set rank bonus",
				slog.String("uid", uid), slog.String("error", err.Error()))
			continue
		}
		updated++
	}
	return updated, nil
}

// AwardRankBonuses runs on the assessor's schedule and credits each ranked
// user their current tier award on top of the running total, so holding a
// leaderboard spot keeps paying out over time. The admin recalculation is
// the overwrite counterpart that resets the accumulated total.
func (s *assessmentService) AwardRankBonuses(ctx context.Context) (int, error) {
	bonuses, err := s.rankBonusTotals(ctx)
	if err != nil {
		return 0, err
	}

	log := logger.FromContext(ctx)
	credited := 0
	for uid, bonus := range bonuses {
		if bonus == 0 {
			continue
		}
		if err := s.users.AddRankBonus(ctx, uid, bonus); err != nil {
			log.Error("failed to credit rank bonus",
				slog.String("uid", uid), slog.String("error", err.Error()))
			continue
		}
		credited++
	}
	return credited, nil
}

// standingsFor ranks users by average rating over their assessed
// predictions of one type, best first.
func standingsFor(preds []*models.Prediction, t models.PredictionType) []string {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, p := range preds {
		if p.PredictionType != t {
			continue
		}
		sums[p.UserID] += p.Rating
		counts[p.UserID]++
	}
	type standing struct {
		uid    string
		rating float64
	}
	standings := make([]standing, 0, len(sums))
	for uid, sum := range sums {
		standings = append(standings, standing{uid: uid, rating: sum / float64(counts[uid])})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].rating != standings[j].rating {
			return standings[i].rating > standings[j].rating
		}
		return standings[i].uid < standings[j].uid
	})
	out := make([]string, len(standings))
	for i, s := range standings {
		out[i] = s.uid
	}
	return out
}
