package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/models"
	"github.com/stockpredictorai/prediction-backend/internal/store"
)

// --- Fakes shared by the service tests ---

var errTest = errors.New("test error")

type fakePredictionStore struct {
	predictions map[string]*models.Prediction
	votes       map[string]map[string]*models.Vote // predictionID -> voterID -> vote
	createErr   error
	getErr      error
	updateErr   error
	listErr     error
	viewsErr    error
	voteErr     error
}

func newFakePredictionStore() *fakePredictionStore {
	return &fakePredictionStore{
		predictions: map[string]*models.Prediction{},
		votes:       map[string]map[string]*models.Vote{},
	}
}

func (f *fakePredictionStore) Create(_ context.Context, p *models.Prediction) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.predictions[p.PredictionID]; ok {
		return errs.NewAlreadyExistsError("prediction already exists")
	}
	f.predictions[p.PredictionID] = p
	return nil
}

func (f *fakePredictionStore) Get(_ context.Context, predictionID string) (*models.Prediction, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.predictions[predictionID]
	if !ok {
		return nil, errs.NewNotFoundError("prediction not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakePredictionStore) Update(_ context.Context, p *models.Prediction) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.predictions[p.PredictionID] = p
	return nil
}

func (f *fakePredictionStore) List(_ context.Context, filter store.PredictionFilter) ([]*models.Prediction, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*models.Prediction{}
	for _, p := range f.predictions {
		if matches(p, filter) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sortPredictions(out, filter)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*models.Prediction{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakePredictionStore) Count(ctx context.Context, filter store.PredictionFilter) (int, error) {
	filter.Offset = 0
	filter.Limit = 0
	preds, err := f.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(preds), nil
}

func (f *fakePredictionStore) HasActive(_ context.Context, userID, ticker string, t models.PredictionType) (bool, error) {
	for _, p := range f.predictions {
		if p.UserID == userID && p.Ticker == ticker && p.PredictionType == t && p.Status == models.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePredictionStore) IncrementViews(_ context.Context, predictionID string) error {
	if f.viewsErr != nil {
		return f.viewsErr
	}
	if p, ok := f.predictions[predictionID]; ok {
		p.Views++
	}
	return nil
}

func (f *fakePredictionStore) ApplyVote(_ context.Context, predictionID, voterID, direction string) (*models.Vote, int, int, error) {
	if f.voteErr != nil {
		return nil, 0, 0, f.voteErr
	}
	p, ok := f.predictions[predictionID]
	if !ok {
		return nil, 0, 0, errs.NewNotFoundError("prediction not found")
	}
	if f.votes[predictionID] == nil {
		f.votes[predictionID] = map[string]*models.Vote{}
	}
	current := models.VoteNone
	if v, ok := f.votes[predictionID][voterID]; ok {
		current = v.Direction
	}
	next := direction
	if current == direction {
		next = models.VoteNone
	}
	switch current {
	case models.VoteLike:
		p.LikeCount--
	case models.VoteDislike:
		p.DislikeCount--
	}
	switch next {
	case models.VoteLike:
		p.LikeCount++
	case models.VoteDislike:
		p.DislikeCount++
	}
	vote := &models.Vote{VoterID: voterID, Direction: next, UpdatedAt: time.Now()}
	f.votes[predictionID][voterID] = vote
	return vote, p.LikeCount, p.DislikeCount, nil
}

func (f *fakePredictionStore) GetVote(_ context.Context, predictionID, voterID string) (string, error) {
	if v, ok := f.votes[predictionID][voterID]; ok {
		return v.Direction, nil
	}
	return models.VoteNone, nil
}

func matches(p *models.Prediction, f store.PredictionFilter) bool {
	if f.UserID != "" && p.UserID != f.UserID {
		return false
	}
	if f.Ticker != "" && p.Ticker != f.Ticker {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.PredictionType != "" && p.PredictionType != f.PredictionType {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if p.PredictionType == t {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if !f.CreatedSince.IsZero() && p.CreatedAt.Before(f.CreatedSince) {
		return false
	}
	if !f.AssessedSince.IsZero() && p.AssessedAt.Before(f.AssessedSince) {
		return false
	}
	if !f.DeadlineBefore.IsZero() && !p.Deadline.Before(f.DeadlineBefore) {
		return false
	}
	if !f.DeadlineAfter.IsZero() && !p.Deadline.After(f.DeadlineAfter) {
		return false
	}
	return true
}

func sortPredictions(preds []*models.Prediction, f store.PredictionFilter) {
	less := func(i, j int) bool { return preds[i].CreatedAt.Before(preds[j].CreatedAt) }
	switch f.OrderBy {
	case "rating":
		less = func(i, j int) bool { return preds[i].Rating < preds[j].Rating }
	case "likeCount":
		less = func(i, j int) bool { return preds[i].LikeCount < preds[j].LikeCount }
	case "deadline":
		less = func(i, j int) bool { return preds[i].Deadline.Before(preds[j].Deadline) }
	case "assessedAt":
		less = func(i, j int) bool { return preds[i].AssessedAt.Before(preds[j].AssessedAt) }
	}
	if f.Desc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(preds, less)
}

type fakeUserStore struct {
	users       map[string]*models.User
	getErr      error
	updateErr   error
	reorderErr  error
	assessErr   error
	lastOrder   []string
	assessments []appliedAssessment
	rankBonuses map[string]float64
}

type appliedAssessment struct {
	uid             string
	rating          float64
	accuracyPoints  float64
	targetHitPoints float64
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{
		users:       map[string]*models.User{},
		rankBonuses: map[string]float64{},
	}
	for _, u := range users {
		f.users[u.UID] = u
	}
	return f
}

func (f *fakeUserStore) Get(_ context.Context, uid string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[uid]
	if !ok {
		return nil, errs.NewNotFoundError("user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetMany(_ context.Context, uids []string) ([]*models.User, error) {
	out := []*models.User{}
	for _, uid := range uids {
		if u, ok := f.users[uid]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	if _, ok := f.users[u.UID]; ok {
		return errs.NewAlreadyExistsError("user already exists")
	}
	f.users[u.UID] = u
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, u *models.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.users[u.UID] = u
	return nil
}

func (f *fakeUserStore) AddToWatchlist(_ context.Context, uid, ticker string) error {
	u, ok := f.users[uid]
	if !ok {
		return errs.NewNotFoundError("user not found")
	}
	for _, t := range u.Watchlist {
		if t == ticker {
			return nil
		}
	}
	u.Watchlist = append(u.Watchlist, ticker)
	return nil
}

func (f *fakeUserStore) RemoveFromWatchlist(_ context.Context, uid, ticker string) error {
	u, ok := f.users[uid]
	if !ok {
		return errs.NewNotFoundError("user not found")
	}
	out := u.Watchlist[:0]
	for _, t := range u.Watchlist {
		if t != ticker {
			out = append(out, t)
		}
	}
	u.Watchlist = out
	return nil
}

func (f *fakeUserStore) SetWatchlistOrder(_ context.Context, uid string, tickers []string) error {
	if f.reorderErr != nil {
		return f.reorderErr
	}
	u, ok := f.users[uid]
	if !ok {
		return errs.NewNotFoundError("user not found")
	}
	u.Watchlist = tickers
	f.lastOrder = tickers
	return nil
}

func (f *fakeUserStore) Follow(_ context.Context, followerUID, followeeUID string) error {
	follower, ok := f.users[followerUID]
	if !ok {
		return errs.NewNotFoundError("user not found")
	}
	followee, ok := f.users[followeeUID]
	if !ok {
		return errs.NewNotFoundError("user not found")
	}
	follower.Following = append(follower.Following, followeeUID)
	followee.Followers = append(followee.Followers, followerUID)
	return nil
}

func (f *fakeUserStore) Unfollow(_ context.Context, followerUID, followeeUID string) error {
	follower, ok := f.users[followerUID]
	if !ok {
		return errs.NewNotFoundError("user not found")
	}
	followee, ok := f.users[followeeUID]
	if !ok {
		return errs.NewNotFoundError("user not found")
	}
	follower.Following = remove(follower.Following, followeeUID)
	followee.Followers = remove(followee.Followers, followerUID)
	return nil
}

func remove(list []string, item string) []string {
	out := list[:0]
	for _, v := range list {
		if v != item {
			out = append(out, v)
		}
	}
	return out
}

func (f *fakeUserStore) RecordPrediction(_ context.Context, uid string, at time.Time) error {
	u, ok := f.users[uid]
	if !ok {
		return errs.NewNotFoundError("user not found")
	}
	ay, am, ad := u.LastPredictionDate.Date()
	by, bm, bd := at.Date()
	if ay == by && am == bm && ad == bd {
		u.DailyPredictionCount++
	} else {
		u.DailyPredictionCount = 1
	}
	u.LastPredictionDate = at
	return nil
}

func (f *fakeUserStore) ApplyAssessment(_ context.Context, uid string, rating, accuracyPoints, targetHitPoints float64) error {
	if f.assessErr != nil {
		return f.assessErr
	}
	u, ok := f.users[uid]
	if !ok {
		return errs.NewNotFoundError("user not found")
	}
	newCount := u.AssessedCount + 1
	u.AvgRating = (u.AvgRating*float64(u.AssessedCount) + rating) / float64(newCount)
	u.AssessedCount = newCount
	u.AnalystRating.Accuracy += accuracyPoints
	u.AnalystRating.TargetHit += targetHitPoints
	u.AnalystRating.Total = u.AnalystRating.Accuracy + u.AnalystRating.TargetHit + u.AnalystRating.RankBonus
	f.assessments = append(f.assessments, appliedAssessment{uid, rating, accuracyPoints, targetHitPoints})
	return nil
}

func (f *fakeUserStore) SetRankBonus(_ context.Context, uid string, points float64) error {
	u, ok := f.users[uid]
	if !ok {
		return errs.NewNotFoundError("user not found")
	}
	u.AnalystRating.RankBonus = points
	u.AnalystRating.Total = u.AnalystRating.Accuracy + u.AnalystRating.TargetHit + u.AnalystRating.RankBonus
	f.rankBonuses[uid] = points
	return nil
}

func (f *fakeUserStore) AddRankBonus(_ context.Context, uid string, points float64) error {
	u, ok := f.users[uid]
	if !ok {
		return errs.NewNotFoundError("user not found")
	}
	u.AnalystRating.RankBonus += points
	u.AnalystRating.Total = u.AnalystRating.Accuracy + u.AnalystRating.TargetHit + u.AnalystRating.RankBonus
	f.rankBonuses[uid] = u.AnalystRating.RankBonus
	return nil
}

func (f *fakeUserStore) TopByAnalystRating(_ context.Context, limit int) ([]*models.User, error) {
	out := []*models.User{}
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AnalystRating.Total > out[j].AnalystRating.Total
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUserStore) TotalAnalystRating(_ context.Context) (float64, error) {
	var total float64
	for _, u := range f.users {
		total += u.AnalystRating.Total
	}
	return total, nil
}

type fakeMarket struct {
	quotes    map[string]dto.Quote
	err       error
	callCount int
}

func newFakeMarket(quotes ...dto.Quote) *fakeMarket {
	f := &fakeMarket{quotes: map[string]dto.Quote{}}
	for _, q := range quotes {
		f.quotes[q.Symbol] = q
	}
	return f
}

func (f *fakeMarket) GetQuote(_ context.Context, symbol string) (dto.Quote, error) {
	f.callCount++
	if f.err != nil {
		return dto.Quote{}, f.err
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return dto.Quote{}, errs.NewNotFoundError("symbol not found")
	}
	return q, nil
}

func (f *fakeMarket) GetQuotes(_ context.Context, symbols []string) ([]dto.Quote, error) {
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	out := []dto.Quote{}
	for _, sym := range symbols {
		if q, ok := f.quotes[sym]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	tickers []string
}

func (f *fakeNotifier) TickerChanged(_ context.Context, ticker string) {
	f.tickers = append(f.tickers, ticker)
}

type fakePublisher struct {
	updates []dto.SentimentUpdate
}

func (f *fakePublisher) Publish(_ context.Context, update dto.SentimentUpdate) {
	f.updates = append(f.updates, update)
}

type fakeVertex struct {
	response string
	err      error
}

func (f *fakeVertex) Generate(_ context.Context, _, _ string) (string, error) {
	return f.response, f.err
}

func (f *fakeVertex) Model() string { return "gemini-test" }
