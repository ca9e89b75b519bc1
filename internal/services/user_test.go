package services

import (
	"errors"
	"testing"

	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/models"
	"github.com/stockpredictorai/prediction-backend/pkg/helpers"
)

func TestEnsureUserCreatesOnce(t *testing.T) {
	users := newFakeUserStore()
	svc := NewUserService(users)
	ctx := helpers.TestCtx()

	created, err := svc.EnsureUser(ctx, "u1", "alice@example.com", "alice")
	if err != nil {
		t.Fatalf("EnsureUser returned error: %v", err)
	}
	if created.Username != "alice" {
		t.Errorf("username = %q, want alice", created.Username)
	}
	if !created.AcceptingNewSubscribers {
		t.Error("new users should accept subscribers by default")
	}

	again, err := svc.EnsureUser(ctx, "u1", "alice@example.com", "renamed")
	if err != nil {
		t.Fatalf("second EnsureUser returned error: %v", err)
	}
	if again.Username != "alice" {
		t.Errorf("username = %q, want existing profile untouched", again.Username)
	}
	if len(users.users) != 1 {
		t.Errorf("users = %d, want 1", len(users.users))
	}
}

func TestUpdateProfile(t *testing.T) {
	users := newFakeUserStore(&models.User{UID: "u1", Username: "alice"})
	svc := NewUserService(users)

	about := "long-horizon tech analyst"
	updated, err := svc.UpdateProfile(helpers.TestCtx(), "u1", nil, nil, &about)
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.Username != "alice" {
		t.Errorf("username = %q, want unchanged", updated.Username)
	}
	if updated.About != about {
		t.Errorf("about = %q, want %q", updated.About, about)
	}

	empty := ""
	if _, err := svc.UpdateProfile(helpers.TestCtx(), "u1", &empty, nil, nil); err == nil {
		t.Error("expected error for empty username")
	}
}

func TestFollow(t *testing.T) {
	users := newFakeUserStore(
		&models.User{UID: "u1"},
		&models.User{UID: "u2"},
	)
	svc := NewUserService(users)
	ctx := helpers.TestCtx()

	if err := svc.Follow(ctx, "u1", "u2"); err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}
	if len(users.users["u1"].Following) != 1 || users.users["u1"].Following[0] != "u2" {
		t.Errorf("following = %v, want [u2]", users.users["u1"].Following)
	}
	if len(users.users["u2"].Followers) != 1 || users.users["u2"].Followers[0] != "u1" {
		t.Errorf("followers = %v, want [u1]", users.users["u2"].Followers)
	}

	if err := svc.Unfollow(ctx, "u1", "u2"); err != nil {
		t.Fatalf("Unfollow returned error: %v", err)
	}
	if len(users.users["u1"].Following) != 0 {
		t.Errorf("following = %v, want empty", users.users["u1"].Following)
	}
}

func TestFollowSelf(t *testing.T) {
	svc := NewUserService(newFakeUserStore(&models.User{UID: "u1"}))

	err := svc.Follow(helpers.TestCtx(), "u1", "u1")
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}
