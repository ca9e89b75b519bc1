package dto

import "github.com/stockpredictorai/prediction-backend/internal/models"

// ScoreboardEntry is one row of the paginated scoreboard.
type ScoreboardEntry struct {
	UserID                  string  `json:"userId"`
	Username                string  `json:"username"`
	Avatar                  string  `json:"avatar,omitempty"`
	IsGoldenMember          bool    `json:"isGoldenMember"`
	IsVerified              bool    `json:"isVerified"`
	AvgRating               float64 `json:"avgRating"`
	PredictionCount         int     `json:"predictionCount"`
	GoldenMemberPrice       float64 `json:"goldenMemberPrice,omitempty"`
	AcceptingNewSubscribers bool    `json:"acceptingNewSubscribers"`
}

// ScoreboardFilter narrows the scoreboard to a type and/or ticker.
type ScoreboardFilter struct {
	PredictionType models.PredictionType // empty means overall
	Ticker         string
	Page           int
	Limit          int
}

// ScoreboardPage is one page of the scoreboard.
type ScoreboardPage struct {
	Users       []ScoreboardEntry `json:"users"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
}

// RatingLeaderboardEntry is one row of the analyst-rating leaderboard.
type RatingLeaderboardEntry struct {
	UserID        string               `json:"userId"`
	Username      string               `json:"username"`
	Avatar        string               `json:"avatar,omitempty"`
	AnalystRating models.AnalystRating `json:"analystRating"`
}

// RatingLeaderboard is the top-100 by total analyst rating, plus the global
// total used to render relative share bars.
type RatingLeaderboard struct {
	Users              []RatingLeaderboardEntry `json:"users"`
	TotalAnalystRating float64                  `json:"totalAnalystRating"`
}
