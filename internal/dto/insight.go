package dto

import "time"

// GoldInsightRequest is the body of POST /api/admin/predict-gold.
type GoldInsightRequest struct {
	Ticker string `json:"ticker"`
}

// GoldInsight is a model-generated Golden analysis of a ticker, built from
// its live quote and community sentiment.
type GoldInsight struct {
	Ticker      string    `json:"ticker"`
	Summary     string    `json:"summary"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generatedAt"`
}
