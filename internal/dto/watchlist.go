package dto

// Watchlist update actions.
const (
	WatchlistAdd    = "add"
	WatchlistRemove = "remove"
)

// UpdateWatchlistRequest is the body of PUT /api/watchlist.
type UpdateWatchlistRequest struct {
	Ticker string `json:"ticker"`
	Action string `json:"action"`
}

// ReorderWatchlistRequest is the body of PUT /api/watchlist/order: the full
// ticker list in its new order.
type ReorderWatchlistRequest struct {
	Tickers []string `json:"tickers"`
}

// WatchlistResponse echoes the persisted order.
type WatchlistResponse struct {
	Watchlist []string `json:"watchlist"`
}

// RecommendedAnalyst is a top predictor for a watched ticker.
type RecommendedAnalyst struct {
	UserID                  string  `json:"userId"`
	Username                string  `json:"username"`
	Avatar                  string  `json:"avatar,omitempty"`
	IsGoldenMember          bool    `json:"isGoldenMember"`
	IsVerified              bool    `json:"isVerified"`
	AvgRating               float64 `json:"avgRating"`
	GoldenMemberPrice       float64 `json:"goldenMemberPrice,omitempty"`
	AcceptingNewSubscribers bool    `json:"acceptingNewSubscribers"`
}

// WatchlistBundle is the authoritative watchlist read: live quotes in the
// user's order plus per-ticker active predictions and recommended analysts.
type WatchlistBundle struct {
	Quotes           []Quote                         `json:"quotes"`
	Predictions      map[string][]PredictionView     `json:"predictions"`
	RecommendedUsers map[string][]RecommendedAnalyst `json:"recommendedUsers"`
}
