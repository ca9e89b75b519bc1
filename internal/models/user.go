package models

import "time"

// AnalystRating is the accumulated reputation of a user, broken down by
// source so the leaderboard can show where points came from.
type AnalystRating struct {
	Total     float64 `firestore:"total" json:"total"`
	Accuracy  float64 `firestore:"accuracy" json:"accuracy"`
	TargetHit float64 `firestore:"targetHit" json:"targetHit"`
	RankBonus float64 `firestore:"rankBonus" json:"rankBonus"`
}

type User struct {
	UID                     string        `firestore:"uid" json:"uid"`
	Username                string        `firestore:"username" json:"username"`
	Email                   string        `firestore:"email" json:"email"`
	Avatar                  string        `firestore:"avatar,omitempty" json:"avatar,omitempty"`
	About                   string        `firestore:"about,omitempty" json:"about,omitempty"`
	IsAdmin                 bool          `firestore:"isAdmin" json:"isAdmin"`
	IsVerified              bool          `firestore:"isVerified" json:"isVerified"`
	IsGoldenMember          bool          `firestore:"isGoldenMember" json:"isGoldenMember"`
	GoldenMemberPrice       float64       `firestore:"goldenMemberPrice,omitempty" json:"goldenMemberPrice,omitempty"`
	AcceptingNewSubscribers bool          `firestore:"acceptingNewSubscribers" json:"acceptingNewSubscribers"`
	AnalystRating           AnalystRating `firestore:"analystRating" json:"analystRating"`
	AvgRating               float64       `firestore:"avgRating" json:"avgRating"`
	AssessedCount           int           `firestore:"assessedCount" json:"assessedCount"`
	Watchlist               []string      `firestore:"watchlist" json:"watchlist"`
	Followers               []string      `firestore:"followers" json:"followers"`
	Following               []string      `firestore:"following" json:"following"`
	DailyPredictionCount    int           `firestore:"dailyPredictionCount" json:"dailyPredictionCount"`
	LastPredictionDate      time.Time     `firestore:"lastPredictionDate,omitempty" json:"lastPredictionDate,omitempty"`
	CreatedAt               time.Time     `firestore:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time     `firestore:"updatedAt" json:"updatedAt"`
}
