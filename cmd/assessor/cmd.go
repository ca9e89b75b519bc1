package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockpredictorai/prediction-backend/internal/bootstrap"
	marketclient "github.com/stockpredictorai/prediction-backend/internal/client/market"
	"github.com/stockpredictorai/prediction-backend/internal/config"
	"github.com/stockpredictorai/prediction-backend/internal/events"
	"github.com/stockpredictorai/prediction-backend/internal/services"
	"github.com/stockpredictorai/prediction-backend/internal/store"
	"github.com/stockpredictorai/prediction-backend/pkg/logger"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

// The assessor sweeps for expired predictions on a fixed interval, scores
// them, credits their authors, and publishes refreshed sentiment.
func main() {
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.ToContext(ctx, bs.Log)

	// stores
	sstore := store.NewSecretsStore(bs.Secrets, cfg.ProjectID)
	pstore := store.NewPredictionStore(bs.Firestore)
	ustore := store.NewUserStore(bs.Firestore)

	marketKey, err := sstore.GetSecret(ctx, cfg.MarketKeySecret)
	exitOnError("failed to load market API key", err, bs.Log)
	market := marketclient.NewAdapter(cfg.MarketAPIURL, marketKey)

	publisher := events.NewSentimentPublisher(cfg.Brokers, cfg.SentimentTopic, bs.Log)
	defer publisher.Close()

	senserv := services.NewSentimentService(pstore, publisher)
	aserv := services.NewAssessmentService(pstore, ustore, market, senserv)

	bs.Log.Info("assessor started",
		"interval", cfg.AssessInterval.String(),
		"rankAwardInterval", cfg.RankAwardInterval.String())

	ticker := time.NewTicker(cfg.AssessInterval)
	defer ticker.Stop()
	rankTicker := time.NewTicker(cfg.RankAwardInterval)
	defer rankTicker.Stop()
	for {
		n, err := aserv.AssessExpired(ctx)
		if err != nil {
			bs.Log.Error("assessment sweep failed", "error", err)
		} else if n > 0 {
			bs.Log.Info("assessment sweep complete", "assessed", n)
		}

		select {
		case <-ctx.Done():
			bs.Log.Info("assessor stopping")
			return
		case <-rankTicker.C:
			n, err := aserv.AwardRankBonuses(ctx)
			if err != nil {
				bs.Log.Error("rank bonus award failed", "error", err)
			} else if n > 0 {
				bs.Log.Info("rank bonuses credited", "users", n)
			}
		case <-ticker.C:
		}
	}
}
