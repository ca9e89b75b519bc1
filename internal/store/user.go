package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/models"
)

type userStore struct {
	client *firestore.Client
}

func NewUserStore(client *firestore.Client) *userStore {
	return &userStore{client: client}
}

func (s *userStore) collection() *firestore.CollectionRef {
	return s.client.Collection("users")
}

func (s *userStore) Get(ctx context.Context, uid string) (*models.User, error) {
	doc, err := s.collection().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("user not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get user", err)
	}
	var u models.User
	if err := doc.DataTo(&u); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse user data", err)
	}
	return &u, nil
}

func (s *userStore) GetMany(ctx context.Context, uids []string) ([]*models.User, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	refs := make([]*firestore.DocumentRef, len(uids))
	for i, uid := range uids {
		refs[i] = s.collection().Doc(uid)
	}
	docs, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to get users", err)
	}
	out := make([]*models.User, 0, len(docs))
	for _, d := range docs {
		if !d.Exists() {
			continue
		}
		var u models.User
		if err := d.DataTo(&u); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse user data", err)
		}
		out = append(out, &u)
	}
	return out, nil
}

func (s *userStore) Create(ctx context.Context, u *models.User) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if _, err := s.collection().Doc(u.UID).Create(ctx, u); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewAlreadyExistsError("user already exists")
		}
		return errs.NewDatabaseError("create", "failed to create user", err)
	}
	return nil
}

func (s *userStore) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now()
	if _, err := s.collection().Doc(u.UID).Set(ctx, u); err != nil {
		return errs.NewDatabaseError("update", "failed to update user", err)
	}
	return nil
}

// AddToWatchlist appends the ticker if absent; ArrayUnion makes the call
// idempotent.
func (s *userStore) AddToWatchlist(ctx context.Context, uid, ticker string) error {
	_, err := s.collection().Doc(uid).Update(ctx, []firestore.Update{
		{Path: "watchlist", Value: firestore.ArrayUnion(ticker)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("user not found")
		}
		return errs.NewDatabaseError("update", "failed to add to watchlist", err)
	}
	return nil
}

func (s *userStore) RemoveFromWatchlist(ctx context.Context, uid, ticker string) error {
	_, err := s.collection().Doc(uid).Update(ctx, []firestore.Update{
		{Path: "watchlist", Value: firestore.ArrayRemove(ticker)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("user not found")
		}
		return errs.NewDatabaseError("update", "failed to remove from watchlist", err)
	}
	return nil
}

// SetWatchlistOrder replaces the whole watchlist array with the given
// ordering.
func (s *userStore) SetWatchlistOrder(ctx context.Context, uid string, tickers []string) error {
	_, err := s.collection().Doc(uid).Update(ctx, []firestore.Update{
		{Path: "watchlist", Value: tickers},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("user not found")
		}
		return errs.NewDatabaseError("update", "failed to reorder watchlist", err)
	}
	return nil
}

// Follow links both sides of the relationship in one batch so the follower
// and followee lists cannot drift.
func (s *userStore) Follow(ctx context.Context, followerUID, followeeUID string) error {
	batch := s.client.Batch()
	now := time.Now()
	batch.Update(s.collection().Doc(followerUID), []firestore.Update{
		{Path: "following", Value: firestore.ArrayUnion(followeeUID)},
		{Path: "updatedAt", Value: now},
	})
	batch.Update(s.collection().Doc(followeeUID), []firestore.Update{
		{Path: "followers", Value: firestore.ArrayUnion(followerUID)},
		{Path: "updatedAt", Value: now},
	})
	if _, err := batch.Commit(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("user not found")
		}
		return errs.NewDatabaseError("update", "failed to follow user", err)
	}
	return nil
}

func (s *userStore) Unfollow(ctx context.Context, followerUID, followeeUID string) error {
	batch := s.client.Batch()
	now := time.Now()
	batch.Update(s.collection().Doc(followerUID), []firestore.Update{
		{Path: "following", Value: firestore.ArrayRemove(followeeUID)},
		{Path: "updatedAt", Value: now},
	})
	batch.Update(s.collection().Doc(followeeUID), []firestore.Update{
		{Path: "followers", Value: firestore.ArrayRemove(followerUID)},
		{Path: "updatedAt", Value: now},
	})
	if _, err := batch.Commit(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("user not found")
		}
		return errs.NewDatabaseError("update", "failed to unfollow user", err)
	}
	return nil
}

// ApplyAssessment folds one assessed prediction's outcome into the user's
// running rating. The average and the point totals are read-modify-write,
// so it runs in a transaction.
func (s *userStore) ApplyAssessment(ctx context.Context, uid string, rating, accuracyPoints, targetHitPoints float64) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := s.collection().Doc(uid)
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errs.NewNotFoundError("user not found")
			}
			return err
		}
		var u models.User
		if err := snap.DataTo(&u); err != nil {
			return err
		}

		newCount := u.AssessedCount + 1
		newAvg := (u.AvgRating*float64(u.AssessedCount) + rating) / float64(newCount)

		u.AnalystRating.Accuracy += accuracyPoints
		u.AnalystRating.TargetHit += targetHitPoints
		u.AnalystRating.Total = u.AnalystRating.Accuracy + u.AnalystRating.TargetHit + u.AnalystRating.RankBonus

		return tx.Update(ref, []firestore.Update{
			{Path: "assessedCount", Value: newCount},
			{Path: "avgRating", Value: newAvg},
			{Path: "analystRating", Value: u.AnalystRating},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		switch err.(type) {
		case *errs.NotFoundError:
			return err
		}
		return errs.NewDatabaseError("update", "failed to apply assessment", err)
	}
	return nil
}

// SetRankBonus replaces the user's scoreboard rank points. Recalculation
// recomputes every competition from scratch, so the bonus is overwritten,
// not accumulated.
func (s *userStore) SetRankBonus(ctx context.Context, uid string, points float64) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := s.collection().Doc(uid)
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errs.NewNotFoundError("user not found")
			}
			return err
		}
		var u models.User
		if err := snap.DataTo(&u); err != nil {
			return err
		}
		u.AnalystRating.RankBonus = points
		u.AnalystRating.Total = u.AnalystRating.Accuracy + u.AnalystRating.TargetHit + u.AnalystRating.RankBonus
		return tx.Update(ref, []firestore.Update{
			{Path: "analystRating", Value: u.AnalystRating},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		switch err.(type) {
		case *errs.NotFoundError:
			return err
		}
		return errs.NewDatabaseError("update", "failed to set rank bonus", err)
	}
	return nil
}

// AddRankBonus credits scoreboard rank points on top of whatever the user
// already earned.
func (s *userStore) AddRankBonus(ctx context.Context, uid string, points float64) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := s.collection().Doc(uid)
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errs.NewNotFoundError("user not found")
			}
			return err
		}
		var u models.User
		if err := snap.DataTo(&u); err != nil {
			return err
		}
		u.AnalystRating.RankBonus += points
		u.AnalystRating.Total = u.AnalystRating.Accuracy + u.AnalystRating.TargetHit + u.AnalystRating.RankBonus
		return tx.Update(ref, []firestore.Update{
			{Path: "analystRating", Value: u.AnalystRating},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		switch err.(type) {
		case *errs.NotFoundError:
			return err
		}
		return errs.NewDatabaseError("update", "failed to add rank bonus", err)
	}
	return nil
}

// RecordPrediction bumps the daily counter, resetting it when the calendar
// day has rolled over since the last submission.
func (s *userStore) RecordPrediction(ctx context.Context, uid string, at time.Time) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := s.collection().Doc(uid)
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errs.NewNotFoundError("user not found")
			}
			return err
		}
		var u models.User
		if err := snap.DataTo(&u); err != nil {
			return err
		}
		count := u.DailyPredictionCount + 1
		if !sameDay(u.LastPredictionDate, at) {
			count = 1
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "dailyPredictionCount", Value: count},
			{Path: "lastPredictionDate", Value: at},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		switch err.(type) {
		case *errs.NotFoundError:
			return err
		}
		return errs.NewDatabaseError("update", "failed to record prediction", err)
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TopByAnalystRating returns the highest-rated users for the rating
// leaderboard.
func (s *userStore) TopByAnalystRating(ctx context.Context, limit int) ([]*models.User, error) {
	docs, err := s.collection().
		OrderBy("analystRating.total", firestore.Desc).
		Limit(limit).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list top users", err)
	}
	out := make([]*models.User, 0, len(docs))
	for _, d := range docs {
		var u models.User
		if err := d.DataTo(&u); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse user data", err)
		}
		out = append(out, &u)
	}
	return out, nil
}

// TotalAnalystRating sums rating points over all users. The user base is
// small enough to walk the collection.
func (s *userStore) TotalAnalystRating(ctx context.Context) (float64, error) {
	iter := s.collection().Select("analystRating").Documents(ctx)
	defer iter.Stop()

	var total float64
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, errs.NewDatabaseError("read", "failed to sum analyst ratings", err)
		}
		var u models.User
		if err := doc.DataTo(&u); err != nil {
			return 0, errs.NewDatabaseError("read", "failed to parse user data", err)
		}
		total += u.AnalystRating.Total
	}
	return total, nil
}
