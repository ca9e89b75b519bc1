package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/stockpredictorai/prediction-backend/internal/bootstrap"
	marketclient "github.com/stockpredictorai/prediction-backend/internal/client/market"
	"github.com/stockpredictorai/prediction-backend/internal/config"
	"github.com/stockpredictorai/prediction-backend/internal/events"
	"github.com/stockpredictorai/prediction-backend/internal/handlers"
	"github.com/stockpredictorai/prediction-backend/internal/middleware"
	"github.com/stockpredictorai/prediction-backend/internal/response"
	"github.com/stockpredictorai/prediction-backend/internal/router"
	"github.com/stockpredictorai/prediction-backend/internal/services"
	"github.com/stockpredictorai/prediction-backend/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	ctx := context.Background()

	// stores
	sstore := store.NewSecretsStore(bs.Secrets, cfg.ProjectID)
	pstore := store.NewPredictionStore(bs.Firestore)
	ustore := store.NewUserStore(bs.Firestore)

	// market data adapter; the provider key lives in Secret Manager
	marketKey, err := sstore.GetSecret(ctx, cfg.MarketKeySecret)
	exitOnError("failed to load market API key", err, bs.Log)
	market := marketclient.NewAdapter(cfg.MarketAPIURL, marketKey)

	// realtime sentiment channel
	publisher := events.NewSentimentPublisher(cfg.Brokers, cfg.SentimentTopic, bs.Log)
	defer publisher.Close()

	// services
	senserv := services.NewSentimentService(pstore, publisher)
	pserv := services.NewPredictionService(pstore, ustore, market, senserv, cfg.MaxPredictionsPerDay)
	voteserv := services.NewVoteService(pstore)
	wlserv := services.NewWatchlistService(ustore, pstore, market)
	widserv := services.NewWidgetService(pstore, ustore, market, cfg.WidgetTimeout)
	lserv := services.NewLeaderboardService(pstore, ustore)
	userv := services.NewUserService(ustore)
	aserv := services.NewAssessmentService(pstore, ustore, market, senserv)
	iserv := services.NewInsightService(bs.Vertex, market, senserv)

	// sentiment pushes from other instances land in the famous stocks
	// snapshot
	consumer := events.NewSentimentConsumer(cfg.Brokers, cfg.SentimentTopic, cfg.SentimentGroup, widserv, bs.Log)
	go consumer.Run(ctx)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.PredictionSvc = pserv
	deps.VoteSvc = voteserv
	deps.WatchlistSvc = wlserv
	deps.WidgetSvc = widserv
	deps.LeaderboardSvc = lserv
	deps.UserSvc = userv
	deps.SentimentSvc = senserv
	deps.AssessmentSvc = aserv
	deps.InsightSvc = iserv

	mw := middleware.NewMiddleware(bs.Firebase, ustore)

	// router
	r := router.NewRouter(deps, mw)
	err = http.ListenAndServe(":8080", r)
	exitOnError("server start failed", err, bs.Log)
}
