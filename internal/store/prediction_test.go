package store

import (
	"testing"

	"github.com/stockpredictorai/prediction-backend/internal/models"
)

func TestVoteTransition(t *testing.T) {
	cases := []struct {
		current, clicked, want string
	}{
		{models.VoteNone, models.VoteLike, models.VoteLike},
		{models.VoteNone, models.VoteDislike, models.VoteDislike},
		{models.VoteLike, models.VoteLike, models.VoteNone},
		{models.VoteLike, models.VoteDislike, models.VoteDislike},
		{models.VoteDislike, models.VoteDislike, models.VoteNone},
		{models.VoteDislike, models.VoteLike, models.VoteLike},
	}
	for _, tc := range cases {
		if got := transition(tc.current, tc.clicked); got != tc.want {
			t.Errorf("transition(%s, %s) = %s, want %s", tc.current, tc.clicked, got, tc.want)
		}
	}
}
