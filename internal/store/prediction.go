package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/models"
)

type predictionStore struct {
	client *firestore.Client
}

func NewPredictionStore(client *firestore.Client) *predictionStore {
	return &predictionStore{client: client}
}

func (s *predictionStore) collection() *firestore.CollectionRef {
	return s.client.Collection("predictions")
}

func (s *predictionStore) voteDoc(predictionID, voterID string) *firestore.DocumentRef {
	return s.collection().Doc(predictionID).Collection("votes").Doc(voterID)
}

func (s *predictionStore) Create(ctx context.Context, p *models.Prediction) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if _, err := s.collection().Doc(p.PredictionID).Create(ctx, p); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewAlreadyExistsError("prediction already exists")
		}
		return errs.NewDatabaseError("create", "failed to create prediction", err)
	}
	return nil
}

func (s *predictionStore) Get(ctx context.Context, predictionID string) (*models.Prediction, error) {
	doc, err := s.collection().Doc(predictionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("prediction not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get prediction", err)
	}
	var p models.Prediction
	if err := doc.DataTo(&p); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse prediction data", err)
	}
	return &p, nil
}

func (s *predictionStore) Update(ctx context.Context, p *models.Prediction) error {
	p.UpdatedAt = time.Now()
	if _, err := s.collection().Doc(p.PredictionID).Set(ctx, p); err != nil {
		return errs.NewDatabaseError("update", "failed to update prediction", err)
	}
	return nil
}

// PredictionFilter narrows List queries. Zero fields are ignored.
type PredictionFilter struct {
	UserID         string
	Ticker         string
	Status         string
	PredictionType models.PredictionType
	Types          []models.PredictionType
	CreatedSince   time.Time
	AssessedSince  time.Time
	DeadlineBefore time.Time
	DeadlineAfter  time.Time
	OrderBy        string // firestore field path; default "createdAt"
	Desc           bool
	Offset         int
	Limit          int
}

func (s *predictionStore) query(f PredictionFilter) firestore.Query {
	q := s.collection().Query
	if f.UserID != "" {
		q = q.Where("userId", "==", f.UserID)
	}
	if f.Ticker != "" {
		q = q.Where("ticker", "==", f.Ticker)
	}
	if f.Status != "" {
		q = q.Where("status", "==", f.Status)
	}
	if f.PredictionType != "" {
		q = q.Where("predictionType", "==", string(f.PredictionType))
	}
	if len(f.Types) > 0 {
		values := make([]string, len(f.Types))
		for i, t := range f.Types {
			values[i] = string(t)
		}
		q = q.Where("predictionType", "in", values)
	}
	if !f.CreatedSince.IsZero() {
		q = q.Where("createdAt", ">=", f.CreatedSince)
	}
	if !f.AssessedSince.IsZero() {
		q = q.Where("assessedAt", ">=", f.AssessedSince)
	}
	if !f.DeadlineBefore.IsZero() {
		q = q.Where("deadline", "<", f.DeadlineBefore)
	}
	if !f.DeadlineAfter.IsZero() {
		q = q.Where("deadline", ">", f.DeadlineAfter)
	}
	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = "createdAt"
	}
	dir := firestore.Asc
	if f.Desc {
		dir = firestore.Desc
	}
	q = q.OrderBy(orderBy, dir)
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return q
}

func (s *predictionStore) List(ctx context.Context, f PredictionFilter) ([]*models.Prediction, error) {
	docs, err := s.query(f).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list predictions", err)
	}
	out := make([]*models.Prediction, 0, len(docs))
	for _, d := range docs {
		var p models.Prediction
		if err := d.DataTo(&p); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse prediction data", err)
		}
		out = append(out, &p)
	}
	return out, nil
}

func (s *predictionStore) Count(ctx context.Context, f PredictionFilter) (int, error) {
	f.Offset = 0
	f.Limit = 0
	docs, err := s.query(f).Documents(ctx).GetAll()
	if err != nil {
		return 0, errs.NewDatabaseError("read", "failed to count predictions", err)
	}
	return len(docs), nil
}

// HasActive reports whether the user already holds an active prediction of
// this type on this ticker.
func (s *predictionStore) HasActive(ctx context.Context, userID, ticker string, t models.PredictionType) (bool, error) {
	docs, err := s.collection().
		Where("userId", "==", userID).
		Where("ticker", "==", ticker).
		Where("predictionType", "==", string(t)).
		Where("status", "==", models.StatusActive).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return false, errs.NewDatabaseError("read", "failed to check active prediction", err)
	}
	return len(docs) > 0, nil
}

// IncrementViews bumps the view counter without rewriting the document.
func (s *predictionStore) IncrementViews(ctx context.Context, predictionID string) error {
	_, err := s.collection().Doc(predictionID).Update(ctx, []firestore.Update{
		{Path: "views", Value: firestore.Increment(1)},
	})
	if err != nil {
		return errs.NewDatabaseError("update", "failed to increment views", err)
	}
	return nil
}

// ApplyVote runs one vote transition inside a Firestore transaction: the
// vote document and both denormalized counters move together, and
// concurrent clicks on the same (voter, prediction) pair serialize, so the
// second click observes the first's result instead of double-counting.
func (s *predictionStore) ApplyVote(ctx context.Context, predictionID, voterID, direction string) (*models.Vote, int, int, error) {
	var (
		vote         models.Vote
		likeCount    int
		dislikeCount int
	)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		predRef := s.collection().Doc(predictionID)
		predSnap, err := tx.Get(predRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errs.NewNotFoundError("prediction not found")
			}
			return err
		}
		var p models.Prediction
		if err := predSnap.DataTo(&p); err != nil {
			return err
		}

		voteRef := s.voteDoc(predictionID, voterID)
		current := models.VoteNone
		createdAt := time.Now()
		voteSnap, err := tx.Get(voteRef)
		switch {
		case err == nil:
			var existing models.Vote
			if err := voteSnap.DataTo(&existing); err != nil {
				return err
			}
			current = existing.Direction
			createdAt = existing.CreatedAt
		case status.Code(err) == codes.NotFound:
			// First vote by this voter.
		default:
			return err
		}

		next := transition(current, direction)

		// Adjust denormalized counters for the delta.
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

		vote = models.Vote{
			VoterID:   voterID,
			Direction: next,
			CreatedAt: createdAt,
			UpdatedAt: time.Now(),
		}
		if err := tx.Set(voteRef, vote); err != nil {
			return err
		}
		if err := tx.Update(predRef, []firestore.Update{
			{Path: "likeCount", Value: p.LikeCount},
			{Path: "dislikeCount", Value: p.DislikeCount},
			{Path: "updatedAt", Value: time.Now()},
		}); err != nil {
			return err
		}

		likeCount = p.LikeCount
		dislikeCount = p.DislikeCount
		return nil
	})
	if err != nil {
		switch err.(type) {
		case *errs.NotFoundError:
			return nil, 0, 0, err
		}
		return nil, 0, 0, errs.NewDatabaseError("update", "failed to apply vote", err)
	}
	return &vote, likeCount, dislikeCount, nil
}

// transition implements the vote state machine: same direction toggles off,
// the other direction replaces.
func transition(current, clicked string) string {
	if current == clicked {
		return models.VoteNone
	}
	return clicked
}

// GetVote returns the voter's current direction on a prediction; VoteNone
// when the voter has never voted.
func (s *predictionStore) GetVote(ctx context.Context, predictionID, voterID string) (string, error) {
	doc, err := s.voteDoc(predictionID, voterID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.VoteNone, nil
		}
		return "", errs.NewDatabaseError("read", "failed to get vote", err)
	}
	var v models.Vote
	if err := doc.DataTo(&v); err != nil {
		return "", errs.NewDatabaseError("read", "failed to parse vote data", err)
	}
	return v.Direction, nil
}
