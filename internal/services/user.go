package services

import (
	"context"
	"time"

	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/models"
	"github.com/stockpredictorai/prediction-backend/pkg/logger"
)

// userUSStore is the user storage interface for profile operations.
type userUSStore interface {
	Get(ctx context.Context, uid string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Follow(ctx context.Context, followerUID, followeeUID string) error
	Unfollow(ctx context.Context, followerUID, followeeUID string) error
}

type userService struct {
	store userUSStore
}

func NewUserService(store userUSStore) *userService {
	return &userService{store: store}
}

// EnsureUser creates the Firestore profile on first login; repeat calls
// return the existing profile.
func (s *userService) EnsureUser(ctx context.Context, uid, email, username string) (*models.User, error) {
	user, err := s.store.Get(ctx, uid)
	if err == nil {
		return user, nil
	}
	if _, ok := err.(*errs.NotFoundError); !ok {
		return nil, err
	}

	user = &models.User{
		UID:                     uid,
		Email:                   email,
		Username:                username,
		AcceptingNewSubscribers: true,
		Watchlist:               []string{},
		Followers:               []string{},
		Following:               []string{},
		CreatedAt:               time.Now(),
	}
	if err := s.store.Create(ctx, user); err != nil {
		if _, ok := err.(*errs.AlreadyExistsError); ok {
			return s.store.Get(ctx, uid)
		}
		return nil, err
	}
	logger.FromContext(ctx).Info("user profile created", "username", username)
	return user, nil
}

func (s *userService) Get(ctx context.Context, uid string) (*models.User, error) {
	return s.store.Get(ctx, uid)
}

// UpdateProfile applies the editable profile fields.
func (s *userService) UpdateProfile(ctx context.Context, uid string, username, avatar, about *string) (*models.User, error) {
	user, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if username != nil {
		if *username == "" {
			return nil, errs.NewValidationError("username cannot be empty")
		}
		user.Username = *username
	}
	if avatar != nil {
		user.Avatar = *avatar
	}
	if about != nil {
		user.About = *about
	}
	if err := s.store.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Follow subscribes the caller to another user's predictions.
func (s *userService) Follow(ctx context.Context, followerUID, followeeUID string) error {
	if followerUID == followeeUID {
		return errs.NewValidationError("you cannot follow yourself")
	}
	return s.store.Follow(ctx, followerUID, followeeUID)
}

func (s *userService) Unfollow(ctx context.Context, followerUID, followeeUID string) error {
	if followerUID == followeeUID {
		return errs.NewValidationError("you cannot unfollow yourself")
	}
	return s.store.Unfollow(ctx, followerUID, followeeUID)
}
