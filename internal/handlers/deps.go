package handlers

import (
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/stockpredictorai/prediction-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Firebase        *auth.Client

	PredictionSvc  PredictionService
	VoteSvc        VoteService
	WatchlistSvc   WatchlistService
	WidgetSvc      WidgetService
	LeaderboardSvc LeaderboardService
	UserSvc        UserService
	SentimentSvc   SentimentService
	AssessmentSvc  AssessmentService
	InsightSvc     InsightService
}
