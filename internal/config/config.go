package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ProjectID       string
	Region          string
	LogLevel        string
	Brokers         []string
	SentimentTopic  string
	SentimentGroup  string
	MarketAPIURL    string
	MarketKeySecret string
	VertexModel     string

	// Per-widget-source fetch deadline. A source that misses it degrades to
	// its empty state instead of blocking the dashboard.
	WidgetTimeout time.Duration

	// Maximum predictions a user may create per calendar day.
	MaxPredictionsPerDay int

	// How often the assessor sweeps for expired predictions.
	AssessInterval time.Duration

	// How often the assessor credits leaderboard rank bonuses.
	RankAwardInterval time.Duration
}

func New() *Config {
	return &Config{
		ProjectID:            os.Getenv("PROJECTID"),
		Region:               os.Getenv("REGION"),
		LogLevel:             os.Getenv("LOGLEVEL"),
		Brokers:              splitList(os.Getenv("BROKERS")),
		SentimentTopic:       envOr("SENTIMENTTOPIC", "sentiment-updates"),
		SentimentGroup:       envOr("SENTIMENTGROUP", "prediction-backend"),
		MarketAPIURL:         os.Getenv("MARKETAPIURL"),
		MarketKeySecret:      envOr("MARKETKEYSECRET", "market-api-key"),
		VertexModel:          os.Getenv("VERTEXMODEL"),
		WidgetTimeout:        envDuration("WIDGETTIMEOUT", 10*time.Second),
		MaxPredictionsPerDay: envInt("MAXPREDICTIONSPERDAY", 10),
		AssessInterval:       envDuration("ASSESSINTERVAL", time.Minute),
		RankAwardInterval:    envDuration("RANKAWARDINTERVAL", 24*time.Hour),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
