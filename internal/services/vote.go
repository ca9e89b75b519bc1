package services

import (
	"context"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/models"
)

// voteStore is the storage interface for the vote ledger.
type voteStore interface {
	ApplyVote(ctx context.Context, predictionID, voterID, direction string) (*models.Vote, int, int, error)
	GetVote(ctx context.Context, predictionID, voterID string) (string, error)
}

type voteService struct {
	store voteStore
}

func NewVoteService(store voteStore) *voteService {
	return &voteService{store: store}
}

// Vote applies one like/dislike click for a voter. Clicking the direction
// the voter already holds toggles it off; clicking the other direction
// replaces it. The response carries the authoritative counts so the client
// can reconcile its optimistic state.
func (s *voteService) Vote(ctx context.Context, predictionID, voterID, direction string) (*dto.VoteResponse, error) {
	if voterID == "" {
		return nil, errs.NewUnauthorizedError("a voter identity is required")
	}
	if direction != models.VoteLike && direction != models.VoteDislike {
		return nil, errs.NewValidationError("direction must be like or dislike")
	}
	vote, likes, dislikes, err := s.store.ApplyVote(ctx, predictionID, voterID, direction)
	if err != nil {
		return nil, err
	}
	return &dto.VoteResponse{
		PredictionID: predictionID,
		Direction:    vote.Direction,
		LikeCount:    likes,
		DislikeCount: dislikes,
	}, nil
}

// MyVote returns the voter's current direction on a prediction.
func (s *voteService) MyVote(ctx context.Context, predictionID, voterID string) (string, error) {
	if voterID == "" {
		return models.VoteNone, nil
	}
	return s.store.GetVote(ctx, predictionID, voterID)
}
