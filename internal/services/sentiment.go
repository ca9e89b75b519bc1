package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/models"
	"github.com/stockpredictorai/prediction-backend/internal/store"
	"github.com/stockpredictorai/prediction-backend/pkg/logger"
)

// sentimentPublisher pushes sentiment updates onto the realtime channel.
type sentimentPublisher interface {
	Publish(ctx context.Context, update dto.SentimentUpdate)
}

type sentimentService struct {
	predictions widgetPredictionStore
	publisher   sentimentPublisher
	now         func() time.Time
}

func NewSentimentService(predictions widgetPredictionStore, publisher sentimentPublisher) *sentimentService {
	return &sentimentService{
		predictions: predictions,
		publisher:   publisher,
		now:         time.Now,
	}
}

// ForTicker aggregates a ticker's active predictions into per-type average
// targets and counts.
func (s *sentimentService) ForTicker(ctx context.Context, ticker string) (dto.SentimentMap, error) {
	preds, err := s.predictions.List(ctx, store.PredictionFilter{
		Ticker: ticker,
		Status: models.StatusActive,
	})
	if err != nil {
		return nil, err
	}
	sentiment := sentimentFor(preds, ticker)
	if sentiment == nil {
		sentiment = dto.SentimentMap{}
	}
	return sentiment, nil
}

// TickerChanged recomputes and publishes a ticker's sentiment after its
// active predictions changed. Failures are logged, never surfaced; the
// realtime channel is best effort.
func (s *sentimentService) TickerChanged(ctx context.Context, ticker string) {
	sentiment, err := s.ForTicker(ctx, ticker)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to recompute sentiment",
			slog.String("ticker", ticker), slog.String("error", err.Error()))
		return
	}
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, dto.SentimentUpdate{
		Ticker:    ticker,
		Sentiment: sentiment,
		UpdatedAt: s.now(),
	})
}
