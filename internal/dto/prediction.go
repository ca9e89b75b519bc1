package dto

import (
	"github.com/stockpredictorai/prediction-backend/internal/models"
)

// CreatePredictionRequest is the body of POST /api/predict.
type CreatePredictionRequest struct {
	Ticker         string                `json:"ticker"`
	TargetPrice    float64               `json:"targetPrice"`
	PredictionType models.PredictionType `json:"predictionType"`
	Description    string                `json:"description,omitempty"`
}

// EditPredictionRequest is the body of PUT /api/predict/{id}.
type EditPredictionRequest struct {
	NewTargetPrice float64 `json:"newTargetPrice"`
	Reason         string  `json:"reason,omitempty"`
}

// AuthorSummary is the slice of a user embedded in prediction views.
type AuthorSummary struct {
	UserID         string  `json:"userId"`
	Username       string  `json:"username"`
	Avatar         string  `json:"avatar,omitempty"`
	IsGoldenMember bool    `json:"isGoldenMember"`
	IsVerified     bool    `json:"isVerified"`
	AvgRating      float64 `json:"avgRating"`
	TotalRating    float64 `json:"totalRating"`
}

// PredictionView is a prediction enriched for display: author details, the
// live price where relevant, and the requesting voter's current direction.
type PredictionView struct {
	models.Prediction
	Author       *AuthorSummary `json:"author,omitempty"`
	CurrentPrice float64        `json:"currentPrice,omitempty"`
	MyVote       string         `json:"myVote,omitempty"`
}

// FeedFilter narrows the explore feed.
type FeedFilter struct {
	Status         string
	Ticker         string
	PredictionType models.PredictionType
	SortBy         string // "date", "votes", "performance"
	VerifiedOnly   bool
	Page           int
	Limit          int
}

// FeedPage is one page of the explore feed.
type FeedPage struct {
	Predictions []PredictionView `json:"predictions"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
}
