package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/errs"
)

const goldTicker = "GC=F"

const insightSystemPrompt = "You are a market analyst for a stock prediction community. " +
	"Given a live quote and the community's aggregated price targets, write a short, " +
	"balanced outlook for the asset. Two paragraphs at most. No investment advice disclaimers."

// generativeClient produces text from a system instruction and a prompt.
type generativeClient interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// sentimentReader exposes community sentiment to the insight prompt.
type sentimentReader interface {
	ForTicker(ctx context.Context, ticker string) (dto.SentimentMap, error)
}

type insightService struct {
	vertex    generativeClient
	market    quoteClient
	sentiment sentimentReader
	now       func() time.Time
}

func NewInsightService(vertex generativeClient, market quoteClient, sentiment sentimentReader) *insightService {
	return &insightService{
		vertex:    vertex,
		market:    market,
		sentiment: sentiment,
		now:       time.Now,
	}
}

// PredictGold generates a Golden insight for a ticker, defaulting to the
// gold future. The prompt carries the live quote and the community's
// per-horizon average targets.
func (s *insightService) PredictGold(ctx context.Context, ticker string) (*dto.GoldInsight, error) {
	if ticker == "" {
		ticker = goldTicker
	}

	quote, err := s.market.GetQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}
	sentiment, err := s.sentiment.ForTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Asset: %s (%s)\n", quote.Name, quote.Symbol)
	fmt.Fprintf(&b, "Current price: %.2f %s (%+.2f%% today)\n", quote.Price, quote.Currency, quote.ChangePercent)
	if len(sentiment) == 0 {
		b.WriteString("Community sentiment: no active predictions.\n")
	} else {
		b.WriteString("Community average targets by horizon:\n")
		for t, ts := range sentiment {
			fmt.Fprintf(&b, "- %s: %.2f over %d predictions\n", t, ts.AverageTarget, ts.PredictionCount)
		}
	}

	summary, err := s.vertex.Generate(ctx, insightSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}
	if summary == "" {
		return nil, errs.NewExternalServiceError("vertex", "model returned an empty insight", true, nil)
	}
	return &dto.GoldInsight{
		Ticker:      ticker,
		Summary:     summary,
		Model:       s.vertex.Model(),
		GeneratedAt: s.now(),
	}, nil
}
