// Package marketclient talks to the quote provider and normalizes its
// responses into dto.Quote. Every failure is reported as an
// errs.ExternalServiceError so callers can degrade instead of crashing.
package marketclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/errs"
)

const serviceName = "market-data"

// defaultTimeout bounds every quote request; a hung provider degrades the
// requesting widget, never the page.
const defaultTimeout = 10 * time.Second

type Adapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewAdapter(baseURL, apiKey string) *Adapter {
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// providerQuote mirrors the provider's wire format.
type providerQuote struct {
	Symbol         string  `json:"symbol"`
	ShortName      string  `json:"shortName"`
	Price          float64 `json:"regularMarketPrice"`
	ChangeAbsolute float64 `json:"regularMarketChange"`
	ChangePercent  float64 `json:"regularMarketChangePercent"`
	Currency       string  `json:"currency"`
	MarketState    string  `json:"marketState"`
}

// GetQuotes fetches quotes for the given symbols in one round trip. Symbols
// the provider does not know are simply absent from the result.
func (a *Adapter) GetQuotes(ctx context.Context, symbols []string) ([]dto.Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/v1/quote?symbols=%s", a.baseURL, url.QueryEscape(strings.Join(symbols, ",")))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errs.NewExternalServiceError(serviceName, "failed to build quote request", false, err)
	}
	req.Header.Set("Accept", "application/json")
	if a.apiKey != "" {
		req.Header.Set("X-Api-Key", a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errs.NewExternalServiceError(serviceName, "quote request failed", true, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, errs.NewExternalServiceError(serviceName,
			fmt.Sprintf("quote provider returned %d", resp.StatusCode), true, nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errs.NewExternalServiceError(serviceName,
			fmt.Sprintf("quote provider returned %d", resp.StatusCode), false, nil)
	}

	var raw struct {
		Quotes []providerQuote `json:"quotes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errs.NewExternalServiceError(serviceName, "failed to decode quote response", false, err)
	}

	quotes := make([]dto.Quote, 0, len(raw.Quotes))
	for _, q := range raw.Quotes {
		quotes = append(quotes, dto.Quote{
			Symbol:         q.Symbol,
			Name:           q.ShortName,
			Price:          q.Price,
			ChangeAbsolute: q.ChangeAbsolute,
			ChangePercent:  q.ChangePercent,
			Currency:       orUSD(q.Currency),
			MarketState:    q.MarketState,
		})
	}
	return quotes, nil
}

// GetQuote fetches a single symbol's quote.
func (a *Adapter) GetQuote(ctx context.Context, symbol string) (dto.Quote, error) {
	quotes, err := a.GetQuotes(ctx, []string{symbol})
	if err != nil {
		return dto.Quote{}, err
	}
	for _, q := range quotes {
		if q.Symbol == symbol {
			return q, nil
		}
	}
	return dto.Quote{}, errs.NewNotFoundError("no quote for " + symbol)
}

func orUSD(currency string) string {
	if currency == "" {
		return "USD"
	}
	return currency
}
