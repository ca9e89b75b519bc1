package dto

import (
	"time"

	"github.com/stockpredictorai/prediction-backend/internal/models"
)

// Widget source names, used as keys in DashboardViewModel.Sections.
const (
	SourceHourlyWinners   = "hourlyWinners"
	SourceDailyLeaders    = "dailyLeaders"
	SourceLongTermLeaders = "longTermLeaders"
	SourceMarketAssets    = "marketAssets"
	SourceFamousStocks    = "famousStocks"
)

// HourlyWinner is one row of the hourly winners widget.
type HourlyWinner struct {
	PredictionID   string  `json:"predictionId"`
	UserID         string  `json:"userId"`
	Username       string  `json:"username"`
	Avatar         string  `json:"avatar,omitempty"`
	IsGoldenMember bool    `json:"isGoldenMember"`
	IsVerified     bool    `json:"isVerified"`
	Ticker         string  `json:"ticker"`
	Rating         float64 `json:"rating"`
}

// LeaderEntry is one row of the daily or long-term leaders widgets.
type LeaderEntry struct {
	UserID         string  `json:"userId"`
	Username       string  `json:"username"`
	Avatar         string  `json:"avatar,omitempty"`
	IsGoldenMember bool    `json:"isGoldenMember"`
	IsVerified     bool    `json:"isVerified"`
	AvgRating      float64 `json:"avgRating"`
}

// TypeSentiment aggregates active predictions of one type for a ticker.
type TypeSentiment struct {
	AverageTarget   float64 `json:"averageTarget"`
	PredictionCount int     `json:"predictionCount"`
}

// SentimentMap is sentiment keyed by prediction type.
type SentimentMap map[models.PredictionType]TypeSentiment

// FamousStock is one entry of the famous stocks widget: a heavily-predicted
// ticker with its live quote and community sentiment.
type FamousStock struct {
	Ticker      string       `json:"ticker"`
	Predictions int          `json:"predictions"`
	Quote       *Quote       `json:"quote,omitempty"`
	Sentiment   SentimentMap `json:"sentiment,omitempty"`
}

// FamousStocksSlice is the famous stocks section plus its provenance flag
// (historical fallback when no predictions were created today).
type FamousStocksSlice struct {
	Stocks       []FamousStock `json:"stocks"`
	IsHistorical bool          `json:"isHistorical"`
}

// DashboardViewModel is the merged result of all widget sources. Sections
// maps each source name to whether it resolved; a false entry means that
// section carries its empty state.
type DashboardViewModel struct {
	HourlyWinners   []HourlyWinner    `json:"hourlyWinners"`
	DailyLeaders    []LeaderEntry     `json:"dailyLeaders"`
	LongTermLeaders []LeaderEntry     `json:"longTermLeaders"`
	MarketAssets    []KeyAsset        `json:"marketAssets"`
	FamousStocks    FamousStocksSlice `json:"famousStocks"`
	Sections        map[string]bool   `json:"sections"`
}

// SentimentUpdate is the payload published on the sentiment topic whenever a
// ticker's active predictions change.
type SentimentUpdate struct {
	Ticker    string       `json:"ticker"`
	Sentiment SentimentMap `json:"sentiment"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
