package models

import "time"

// PredictionType is the submission-interval category governing window and
// deadline rules.
type PredictionType string

const (
	TypeHourly    PredictionType = "Hourly"
	TypeDaily     PredictionType = "Daily"
	TypeWeekly    PredictionType = "Weekly"
	TypeMonthly   PredictionType = "Monthly"
	TypeQuarterly PredictionType = "Quarterly"
	TypeYearly    PredictionType = "Yearly"
)

// PredictionTypes lists every valid type in display order.
var PredictionTypes = []PredictionType{
	TypeHourly, TypeDaily, TypeWeekly, TypeMonthly, TypeQuarterly, TypeYearly,
}

func (t PredictionType) Valid() bool {
	switch t {
	case TypeHourly, TypeDaily, TypeWeekly, TypeMonthly, TypeQuarterly, TypeYearly:
		return true
	}
	return false
}

// Prediction statuses.
const (
	StatusActive   = "Active"
	StatusAssessed = "Assessed"
)

// Prediction is a user's price call on a ticker, stored in Firestore under
// the predictions collection. Vote counts are denormalized here and kept in
// sync with the votes subcollection transactionally.
type Prediction struct {
	PredictionID          string           `firestore:"predictionId" json:"predictionId"`
	UserID                string           `firestore:"userId" json:"userId"`
	Ticker                string           `firestore:"ticker" json:"ticker"`
	TargetPrice           float64          `firestore:"targetPrice" json:"targetPrice"`
	TargetPriceAtCreation float64          `firestore:"targetPriceAtCreation" json:"targetPriceAtCreation"`
	PredictionType        PredictionType   `firestore:"predictionType" json:"predictionType"`
	Deadline              time.Time        `firestore:"deadline" json:"deadline"`
	Status                string           `firestore:"status" json:"status"`
	Rating                float64          `firestore:"rating" json:"rating"`
	ActualPrice           float64          `firestore:"actualPrice,omitempty" json:"actualPrice,omitempty"`
	PriceAtCreation       float64          `firestore:"priceAtCreation,omitempty" json:"priceAtCreation,omitempty"`
	Currency              string           `firestore:"currency" json:"currency"`
	Description           string           `firestore:"description,omitempty" json:"description,omitempty"`
	LikeCount             int              `firestore:"likeCount" json:"likeCount"`
	DislikeCount          int              `firestore:"dislikeCount" json:"dislikeCount"`
	Views                 int              `firestore:"views" json:"views"`
	History               []TargetRevision `firestore:"history,omitempty" json:"history,omitempty"`
	CreatedAt             time.Time        `firestore:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time        `firestore:"updatedAt" json:"updatedAt"`
	AssessedAt            time.Time        `firestore:"assessedAt,omitempty" json:"assessedAt,omitempty"`
}

// TargetRevision records one edit of an active prediction's target price.
type TargetRevision struct {
	PreviousTargetPrice float64   `firestore:"previousTargetPrice" json:"previousTargetPrice"`
	NewTargetPrice      float64   `firestore:"newTargetPrice" json:"newTargetPrice"`
	Reason              string    `firestore:"reason,omitempty" json:"reason,omitempty"`
	PriceAtRevision     float64   `firestore:"priceAtRevision,omitempty" json:"priceAtRevision,omitempty"`
	RevisedAt           time.Time `firestore:"revisedAt" json:"revisedAt"`
}

// Vote directions.
const (
	VoteNone    = "none"
	VoteLike    = "like"
	VoteDislike = "dislike"
)

// Vote is one voter's current stance on a prediction, stored in the votes
// subcollection keyed by voter id. Toggle-off sets Direction to none; vote
// documents are never deleted.
type Vote struct {
	VoterID   string    `firestore:"voterId" json:"voterId"`
	Direction string    `firestore:"direction" json:"direction"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}
