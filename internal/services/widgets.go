package services

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/models"
	"github.com/stockpredictorai/prediction-backend/internal/store"
	"github.com/stockpredictorai/prediction-backend/pkg/logger"
)

const (
	widgetTopN       = 3
	famousStockCount = 5
)

// Fixed assets of the market overview widget, plus the mega-cap pool the
// top movers are picked from.
var (
	keyAssetSymbols = []string{"GC=F", "BTC-USD", "ETH-USD", "EURUSD=X"}
	megaCapSymbols  = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA"}
)

// widgetPredictionStore reads predictions for the dashboard widgets.
type widgetPredictionStore interface {
	List(ctx context.Context, f store.PredictionFilter) ([]*models.Prediction, error)
}

// widgetUserStore joins widget rows with their users.
type widgetUserStore interface {
	GetMany(ctx context.Context, uids []string) ([]*models.User, error)
}

type widgetService struct {
	predictions widgetPredictionStore
	users       widgetUserStore
	market      quotesClient
	timeout     time.Duration
	now         func() time.Time

	// Famous stocks snapshot, replaced wholesale by sentiment pushes.
	// Last write wins.
	mu     sync.Mutex
	famous dto.FamousStocksSlice
}

func NewWidgetService(predictions widgetPredictionStore, users widgetUserStore, market quotesClient, timeout time.Duration) *widgetService {
	return &widgetService{
		predictions: predictions,
		users:       users,
		market:      market,
		timeout:     timeout,
		now:         time.Now,
	}
}

// Dashboard fetches every widget source concurrently and waits for all of
// them to settle. A failed or slow source marks its section unavailable;
// it never fails the dashboard or cancels its siblings.
func (s *widgetService) Dashboard(ctx context.Context) *dto.DashboardViewModel {
	vm := &dto.DashboardViewModel{
		HourlyWinners:   []dto.HourlyWinner{},
		DailyLeaders:    []dto.LeaderEntry{},
		LongTermLeaders: []dto.LeaderEntry{},
		MarketAssets:    []dto.KeyAsset{},
		FamousStocks:    dto.FamousStocksSlice{Stocks: []dto.FamousStock{}},
		Sections:        map[string]bool{},
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	run := func(source string, fetch func(ctx context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			err := fetch(sctx)
			mu.Lock()
			vm.Sections[source] = err == nil
			mu.Unlock()
			if err != nil {
				logger.FromContext(ctx).Warn("widget source unavailable",
					slog.String("source", source), slog.String("error", err.Error()))
			}
		}()
	}

	run(dto.SourceHourlyWinners, func(ctx context.Context) error {
		winners, err := s.hourlyWinners(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		vm.HourlyWinners = winners
		mu.Unlock()
		return nil
	})
	run(dto.SourceDailyLeaders, func(ctx context.Context) error {
		leaders, err := s.dailyLeaders(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		vm.DailyLeaders = leaders
		mu.Unlock()
		return nil
	})
	run(dto.SourceLongTermLeaders, func(ctx context.Context) error {
		leaders, err := s.longTermLeaders(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		vm.LongTermLeaders = leaders
		mu.Unlock()
		return nil
	})
	run(dto.SourceMarketAssets, func(ctx context.Context) error {
		assets, err := s.keyAssets(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		vm.MarketAssets = assets
		mu.Unlock()
		return nil
	})
	run(dto.SourceFamousStocks, func(ctx context.Context) error {
		famous, err := s.famousStocks(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.famous = famous
		s.mu.Unlock()
		mu.Lock()
		vm.FamousStocks = famous
		mu.Unlock()
		return nil
	})

	wg.Wait()
	return vm
}

// HourlyWinners serves GET /api/widgets/hourly-winners.
func (s *widgetService) HourlyWinners(ctx context.Context) ([]dto.HourlyWinner, error) {
	return s.hourlyWinners(ctx)
}

// DailyLeaders serves GET /api/widgets/daily-leaders.
func (s *widgetService) DailyLeaders(ctx context.Context) ([]dto.LeaderEntry, error) {
	return s.dailyLeaders(ctx)
}

// LongTermLeaders serves GET /api/widgets/long-term-leaders.
func (s *widgetService) LongTermLeaders(ctx context.Context) ([]dto.LeaderEntry, error) {
	return s.longTermLeaders(ctx)
}

// KeyAssets serves GET /api/market/key-assets.
func (s *widgetService) KeyAssets(ctx context.Context) ([]dto.KeyAsset, error) {
	return s.keyAssets(ctx)
}

// ApplySentimentUpdate merges a pushed sentiment update into the famous
// stocks snapshot without touching the other sections. The merge is
// copy-on-write: view models handed out earlier alias the current backing
// array and may still be encoding while the consumer pushes.
func (s *widgetService) ApplySentimentUpdate(update dto.SentimentUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.famous.Stocks {
		if s.famous.Stocks[i].Ticker != update.Ticker {
			continue
		}
		stocks := make([]dto.FamousStock, len(s.famous.Stocks))
		copy(stocks, s.famous.Stocks)
		stocks[i].Sentiment = update.Sentiment
		s.famous.Stocks = stocks
		return
	}
}

// FamousStocks returns the current snapshot, including any pushed
// sentiment merged since the last full fetch.
func (s *widgetService) FamousStocks(ctx context.Context) (dto.FamousStocksSlice, error) {
	famous, err := s.famousStocks(ctx)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.famous.Stocks) > 0 {
			return s.famous, nil
		}
		return dto.FamousStocksSlice{Stocks: []dto.FamousStock{}}, err
	}
	s.mu.Lock()
	s.famous = famous
	s.mu.Unlock()
	return famous, nil
}

func (s *widgetService) hourlyWinners(ctx context.Context) ([]dto.HourlyWinner, error) {
	preds, err := s.predictions.List(ctx, store.PredictionFilter{
		Status:        models.StatusAssessed,
		AssessedSince: s.now().Add(-time.Hour),
		OrderBy:       "assessedAt",
		Desc:          true,
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(preds, func(i, j int) bool { return preds[i].Rating > preds[j].Rating })
	if len(preds) > widgetTopN {
		preds = preds[:widgetTopN]
	}

	users, err := s.userIndex(ctx, preds)
	if err != nil {
		return nil, err
	}
	winners := make([]dto.HourlyWinner, 0, len(preds))
	for _, p := range preds {
		w := dto.HourlyWinner{
			PredictionID: p.PredictionID,
			UserID:       p.UserID,
			Ticker:       p.Ticker,
			Rating:       p.Rating,
		}
		if u, ok := users[p.UserID]; ok {
			w.Username = u.Username
			w.Avatar = u.Avatar
			w.IsGoldenMember = u.IsGoldenMember
			w.IsVerified = u.IsVerified
		}
		winners = append(winners, w)
	}
	return winners, nil
}

func (s *widgetService) dailyLeaders(ctx context.Context) ([]dto.LeaderEntry, error) {
	preds, err := s.predictions.List(ctx, store.PredictionFilter{
		Status:        models.StatusAssessed,
		AssessedSince: s.now().Add(-24 * time.Hour),
		OrderBy:       "assessedAt",
		Desc:          true,
	})
	if err != nil {
		return nil, err
	}
	return s.leadersFrom(ctx, preds)
}

func (s *widgetService) longTermLeaders(ctx context.Context) ([]dto.LeaderEntry, error) {
	preds, err := s.predictions.List(ctx, store.PredictionFilter{
		Status:  models.StatusAssessed,
		Types:   []models.PredictionType{models.TypeQuarterly, models.TypeYearly},
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		return nil, err
	}
	return s.leadersFrom(ctx, preds)
}

// leadersFrom averages each user's ratings over the given assessed
// predictions and returns the top users by that average.
func (s *widgetService) leadersFrom(ctx context.Context, preds []*models.Prediction) ([]dto.LeaderEntry, error) {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, p := range preds {
		sums[p.UserID] += p.Rating
		counts[p.UserID]++
	}
	type avg struct {
		uid    string
		rating float64
	}
	avgs := make([]avg, 0, len(sums))
	for uid, sum := range sums {
		avgs = append(avgs, avg{uid: uid, rating: sum / float64(counts[uid])})
	}
	sort.Slice(avgs, func(i, j int) bool { return avgs[i].rating > avgs[j].rating })
	if len(avgs) > widgetTopN {
		avgs = avgs[:widgetTopN]
	}

	uids := make([]string, len(avgs))
	for i, a := range avgs {
		uids[i] = a.uid
	}
	users, err := s.users.GetMany(ctx, uids)
	if err != nil {
		return nil, err
	}
	byUID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byUID[u.UID] = u
	}

	leaders := make([]dto.LeaderEntry, 0, len(avgs))
	for _, a := range avgs {
		e := dto.LeaderEntry{UserID: a.uid, AvgRating: a.rating}
		if u, ok := byUID[a.uid]; ok {
			e.Username = u.Username
			e.Avatar = u.Avatar
			e.IsGoldenMember = u.IsGoldenMember
			e.IsVerified = u.IsVerified
		}
		leaders = append(leaders, e)
	}
	return leaders, nil
}

// keyAssets returns the fixed overview assets plus the two biggest
// mega-cap movers of the day.
func (s *widgetService) keyAssets(ctx context.Context) ([]dto.KeyAsset, error) {
	symbols := append(append([]string{}, keyAssetSymbols...), megaCapSymbols...)
	quotes, err := s.market.GetQuotes(ctx, symbols)
	if err != nil {
		return nil, err
	}
	bySymbol := make(map[string]dto.Quote, len(quotes))
	for _, q := range quotes {
		bySymbol[q.Symbol] = q
	}

	assets := make([]dto.KeyAsset, 0, len(keyAssetSymbols)+2)
	for _, sym := range keyAssetSymbols {
		if q, ok := bySymbol[sym]; ok {
			assets = append(assets, toKeyAsset(q))
		}
	}

	movers := make([]dto.Quote, 0, len(megaCapSymbols))
	for _, sym := range megaCapSymbols {
		if q, ok := bySymbol[sym]; ok {
			movers = append(movers, q)
		}
	}
	sort.Slice(movers, func(i, j int) bool {
		return math.Abs(movers[i].ChangePercent) > math.Abs(movers[j].ChangePercent)
	})
	if len(movers) > 2 {
		movers = movers[:2]
	}
	for _, q := range movers {
		assets = append(assets, toKeyAsset(q))
	}
	return assets, nil
}

// famousStocks ranks today's most-predicted tickers; when nothing was
// created today it falls back to the all-time ranking and flags the result
// as historical.
func (s *widgetService) famousStocks(ctx context.Context) (dto.FamousStocksSlice, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	preds, err := s.predictions.List(ctx, store.PredictionFilter{
		CreatedSince: midnight,
		OrderBy:      "createdAt",
		Desc:         true,
	})
	if err != nil {
		return dto.FamousStocksSlice{}, err
	}
	historical := false
	if len(preds) == 0 {
		historical = true
		preds, err = s.predictions.List(ctx, store.PredictionFilter{
			OrderBy: "createdAt",
			Desc:    true,
		})
		if err != nil {
			return dto.FamousStocksSlice{}, err
		}
	}

	counts := map[string]int{}
	for _, p := range preds {
		counts[p.Ticker]++
	}
	type ranked struct {
		ticker string
		count  int
	}
	ranking := make([]ranked, 0, len(counts))
	for t, c := range counts {
		ranking = append(ranking, ranked{ticker: t, count: c})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].count != ranking[j].count {
			return ranking[i].count > ranking[j].count
		}
		return ranking[i].ticker < ranking[j].ticker
	})
	if len(ranking) > famousStockCount {
		ranking = ranking[:famousStockCount]
	}

	stocks := make([]dto.FamousStock, 0, len(ranking))
	symbols := make([]string, 0, len(ranking))
	for _, r := range ranking {
		symbols = append(symbols, r.ticker)
		stocks = append(stocks, dto.FamousStock{
			Ticker:      r.ticker,
			Predictions: r.count,
			Sentiment:   sentimentFor(preds, r.ticker),
		})
	}

	// Quotes decorate the section; a provider failure degrades to counts
	// and sentiment only.
	if quotes, err := s.market.GetQuotes(ctx, symbols); err == nil {
		bySymbol := make(map[string]dto.Quote, len(quotes))
		for _, q := range quotes {
			bySymbol[q.Symbol] = q
		}
		for i := range stocks {
			if q, ok := bySymbol[stocks[i].Ticker]; ok {
				stocks[i].Quote = &q
			}
		}
	}

	return dto.FamousStocksSlice{Stocks: stocks, IsHistorical: historical}, nil
}

// sentimentFor aggregates a ticker's active predictions into per-type
// average targets.
func sentimentFor(preds []*models.Prediction, ticker string) dto.SentimentMap {
	sums := map[models.PredictionType]float64{}
	counts := map[models.PredictionType]int{}
	for _, p := range preds {
		if p.Ticker != ticker || p.Status != models.StatusActive {
			continue
		}
		sums[p.PredictionType] += p.TargetPrice
		counts[p.PredictionType]++
	}
	if len(counts) == 0 {
		return nil
	}
	out := make(dto.SentimentMap, len(counts))
	for t, c := range counts {
		out[t] = dto.TypeSentiment{
			AverageTarget:   sums[t] / float64(c),
			PredictionCount: c,
		}
	}
	return out
}

func (s *widgetService) userIndex(ctx context.Context, preds []*models.Prediction) (map[string]*models.User, error) {
	seen := make(map[string]struct{}, len(preds))
	uids := make([]string, 0, len(preds))
	for _, p := range preds {
		if _, ok := seen[p.UserID]; !ok {
			seen[p.UserID] = struct{}{}
			uids = append(uids, p.UserID)
		}
	}
	users, err := s.users.GetMany(ctx, uids)
	if err != nil {
		return nil, err
	}
	byUID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byUID[u.UID] = u
	}
	return byUID, nil
}

func toKeyAsset(q dto.Quote) dto.KeyAsset {
	return dto.KeyAsset{
		Ticker:        q.Symbol,
		Name:          q.Name,
		Price:         q.Price,
		Currency:      q.Currency,
		PercentChange: q.ChangePercent,
		IsUp:          q.ChangePercent >= 0,
	}
}
