package services

import (
	"errors"
	"testing"

	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/models"
	"github.com/stockpredictorai/prediction-backend/pkg/helpers"
)

func voteFixture() (*voteService, *fakePredictionStore) {
	preds := newFakePredictionStore()
	preds.predictions["p1"] = &models.Prediction{PredictionID: "p1", UserID: "author"}
	return NewVoteService(preds), preds
}

func TestVoteStateMachine(t *testing.T) {
	svc, _ := voteFixture()
	ctx := helpers.TestCtx()

	steps := []struct {
		click        string
		direction    string
		likeCount    int
		dislikeCount int
	}{
		{models.VoteLike, models.VoteLike, 1, 0},       // NONE -> LIKED
		{models.VoteLike, models.VoteNone, 0, 0},       // toggle off
		{models.VoteDislike, models.VoteDislike, 0, 1}, // NONE -> DISLIKED
		{models.VoteLike, models.VoteLike, 1, 0},       // switch
		{models.VoteDislike, models.VoteDislike, 0, 1}, // switch back
		{models.VoteDislike, models.VoteNone, 0, 0},    // toggle off
	}
	for i, step := range steps {
		res, err := svc.Vote(ctx, "p1", "guest:tok", step.click)
		if err != nil {
			t.Fatalf("step %d: Vote returned error: %v", i, err)
		}
		if res.Direction != step.direction {
			t.Errorf("step %d: direction = %q, want %q", i, res.Direction, step.direction)
		}
		if res.LikeCount != step.likeCount || res.DislikeCount != step.dislikeCount {
			t.Errorf("step %d: counts = %d/%d, want %d/%d",
				i, res.LikeCount, res.DislikeCount, step.likeCount, step.dislikeCount)
		}
	}
}

func TestVoteTwoVotersIndependent(t *testing.T) {
	svc, _ := voteFixture()
	ctx := helpers.TestCtx()

	if _, err := svc.Vote(ctx, "p1", "uid-1", models.VoteLike); err != nil {
		t.Fatalf("Vote returned error: %v", err)
	}
	res, err := svc.Vote(ctx, "p1", "guest:tok", models.VoteLike)
	if err != nil {
		t.Fatalf("Vote returned error: %v", err)
	}
	if res.LikeCount != 2 {
		t.Errorf("likeCount = %d, want 2", res.LikeCount)
	}

	// One voter toggling off must not clear the other's vote.
	res, err = svc.Vote(ctx, "p1", "uid-1", models.VoteLike)
	if err != nil {
		t.Fatalf("Vote returned error: %v", err)
	}
	if res.LikeCount != 1 {
		t.Errorf("likeCount = %d, want 1", res.LikeCount)
	}
}

func TestVoteValidation(t *testing.T) {
	svc, _ := voteFixture()
	ctx := helpers.TestCtx()

	if _, err := svc.Vote(ctx, "p1", "", models.VoteLike); err == nil {
		t.Error("expected error for missing voter identity")
	} else {
		var ue *errs.UnauthorizedError
		if !errors.As(err, &ue) {
			t.Errorf("error = %v, want UnauthorizedError", err)
		}
	}

	if _, err := svc.Vote(ctx, "p1", "uid-1", "upvote"); err == nil {
		t.Error("expected error for invalid direction")
	} else {
		var ve *errs.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("error = %v, want ValidationError", err)
		}
	}
}

func TestVoteUnknownPrediction(t *testing.T) {
	svc, _ := voteFixture()

	_, err := svc.Vote(helpers.TestCtx(), "missing", "uid-1", models.VoteLike)
	var nfe *errs.NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}

func TestMyVote(t *testing.T) {
	svc, preds := voteFixture()
	preds.votes["p1"] = map[string]*models.Vote{
		"uid-1": {VoterID: "uid-1", Direction: models.VoteDislike},
	}

	direction, err := svc.MyVote(helpers.TestCtx(), "p1", "uid-1")
	if err != nil {
		t.Fatalf("MyVote returned error: %v", err)
	}
	if direction != models.VoteDislike {
		t.Errorf("direction = %q, want dislike", direction)
	}

	direction, err = svc.MyVote(helpers.TestCtx(), "p1", "")
	if err != nil {
		t.Fatalf("MyVote returned error: %v", err)
	}
	if direction != models.VoteNone {
		t.Errorf("direction = %q, want none for anonymous caller", direction)
	}
}
