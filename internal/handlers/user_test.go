package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/middleware"
	"github.com/stockpredictorai/prediction-backend/internal/models"
)

type stubResponseHandler struct {
	writeSuccessCalled bool
	writeSuccessStatus int
	writeSuccessData   any

	handleErrorCalled bool
	handleError       error

	writeErrorCalled bool
	writeErrorStatus int
	writeErrorCode   string
	writeErrorMsg    string
}

func (s *stubResponseHandler) WriteSuccess(w http.ResponseWriter, _ *http.Request, status int, data any) {
	s.writeSuccessCalled = true
	s.writeSuccessStatus = status
	s.writeSuccessData = data

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":true}`))
}

func (s *stubResponseHandler) WriteError(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	s.writeErrorCalled = true
	s.writeErrorStatus = status
	s.writeErrorCode = code
	s.writeErrorMsg = message
	w.WriteHeader(status)
}

func (s *stubResponseHandler) HandleError(w http.ResponseWriter, _ *http.Request, err error) {
	s.handleErrorCalled = true
	s.handleError = err
	w.WriteHeader(http.StatusInternalServerError)
}

// withUID injects a Firebase UID into the request context.
func withUID(r *http.Request, uid string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UIDKey, uid)
	ctx = context.WithValue(ctx, middleware.VoterKey, uid)
	return r.WithContext(ctx)
}

// withVoter injects only a voter identity, as the guest middleware would.
func withVoter(r *http.Request, voter string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.VoterKey, voter)
	return r.WithContext(ctx)
}

// withChiParam injects a chi URL parameter into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

type stubUserService struct {
	ensureCalled   bool
	uid            string
	email          string
	username       string
	user           *models.User
	err            error
	lastFollower   string
	lastFollowee   string
	unfollowCalled bool
}

func (s *stubUserService) EnsureUser(_ context.Context, uid, email, username string) (*models.User, error) {
	s.ensureCalled = true
	s.uid = uid
	s.email = email
	s.username = username
	return s.user, s.err
}

func (s *stubUserService) Get(_ context.Context, uid string) (*models.User, error) {
	s.uid = uid
	return s.user, s.err
}

func (s *stubUserService) UpdateProfile(_ context.Context, uid string, username, _, _ *string) (*models.User, error) {
	s.uid = uid
	if username != nil {
		s.username = *username
	}
	return s.user, s.err
}

func (s *stubUserService) Follow(_ context.Context, follower, followee string) error {
	s.lastFollower = follower
	s.lastFollowee = followee
	return s.err
}

func (s *stubUserService) Unfollow(_ context.Context, follower, followee string) error {
	s.unfollowCalled = true
	s.lastFollower = follower
	s.lastFollowee = followee
	return s.err
}

type stubLeaderboardService struct {
	lastFilter dto.ScoreboardFilter
	page       *dto.ScoreboardPage
	board      *dto.RatingLeaderboard
	err        error
}

func (s *stubLeaderboardService) Scoreboard(_ context.Context, f dto.ScoreboardFilter) (*dto.ScoreboardPage, error) {
	s.lastFilter = f
	return s.page, s.err
}

func (s *stubLeaderboardService) RatingLeaderboard(_ context.Context) (*dto.RatingLeaderboard, error) {
	return s.board, s.err
}

func TestEnsureUserSuccess(t *testing.T) {
	svc := &stubUserService{user: &models.User{UID: "uid-1", Username: "jane"}}
	resp := &stubResponseHandler{}
	h := NewUserHandlers(&Deps{ResponseHandler: resp, UserSvc: svc})

	body := `{"email":"jane@example.com","username":"jane"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req = withUID(req, "uid-1")
	rr := httptest.NewRecorder()
	h.EnsureUser(rr, req)

	if !svc.ensureCalled {
		t.Fatalf("expected EnsureUser to be called on service")
	}
	if svc.uid != "uid-1" || svc.email != "jane@example.com" || svc.username != "jane" {
		t.Fatalf("service received wrong args: uid=%s email=%s username=%s", svc.uid, svc.email, svc.username)
	}
	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("WriteSuccess not called with status 200")
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected response status: %d", rr.Code)
	}
}

func TestEnsureUserInvalidJSON(t *testing.T) {
	svc := &stubUserService{}
	resp := &stubResponseHandler{}
	h := NewUserHandlers(&Deps{ResponseHandler: resp, UserSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("not-json"))
	req = withUID(req, "uid-1")
	rr := httptest.NewRecorder()
	h.EnsureUser(rr, req)

	if svc.ensureCalled {
		t.Fatalf("service should not be called on a malformed body")
	}
	if !resp.handleErrorCalled {
		t.Fatalf("expected HandleError to be called")
	}
	var verr *errs.ValidationError
	if !errors.As(resp.handleError, &verr) {
		t.Fatalf("expected a validation error, got %v", resp.handleError)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := &stubUserService{user: &models.User{UID: "uid-1", Username: "newname"}}
	resp := &stubResponseHandler{}
	h := NewUserHandlers(&Deps{ResponseHandler: resp, UserSvc: svc})

	body := `{"username":"newname"}`
	req := httptest.NewRequest(http.MethodPut, "/users/me", strings.NewReader(body))
	req = withUID(req, "uid-1")
	rr := httptest.NewRecorder()
	h.UpdateProfile(rr, req)

	if svc.uid != "uid-1" || svc.username != "newname" {
		t.Fatalf("service received wrong args: uid=%s username=%s", svc.uid, svc.username)
	}
	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("WriteSuccess not called with status 200")
	}
}

func TestFollowUsesPathParam(t *testing.T) {
	svc := &stubUserService{}
	resp := &stubResponseHandler{}
	h := NewUserHandlers(&Deps{ResponseHandler: resp, UserSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/users/uid-2/follow", nil)
	req = withUID(req, "uid-1")
	req = withChiParam(req, "uid", "uid-2")
	rr := httptest.NewRecorder()
	h.Follow(rr, req)

	if svc.lastFollower != "uid-1" || svc.lastFollowee != "uid-2" {
		t.Fatalf("follow called with %s -> %s", svc.lastFollower, svc.lastFollowee)
	}
	if !resp.writeSuccessCalled {
		t.Fatalf("expected WriteSuccess")
	}
}

func TestUnfollowServiceError(t *testing.T) {
	svc := &stubUserService{err: errs.NewNotFoundError("user not found")}
	resp := &stubResponseHandler{}
	h := NewUserHandlers(&Deps{ResponseHandler: resp, UserSvc: svc})

	req := httptest.NewRequest(http.MethodDelete, "/users/uid-2/follow", nil)
	req = withUID(req, "uid-1")
	req = withChiParam(req, "uid", "uid-2")
	rr := httptest.NewRecorder()
	h.Unfollow(rr, req)

	if !svc.unfollowCalled {
		t.Fatalf("expected Unfollow to be called")
	}
	if !resp.handleErrorCalled {
		t.Fatalf("expected HandleError on service failure")
	}
}

func TestScoreboardQueryParams(t *testing.T) {
	svc := &stubLeaderboardService{page: &dto.ScoreboardPage{}}
	resp := &stubResponseHandler{}
	h := NewUserHandlers(&Deps{ResponseHandler: resp, LeaderboardSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/scoreboard?type=Daily&ticker=AAPL&page=3&limit=10", nil)
	rr := httptest.NewRecorder()
	h.Scoreboard(rr, req)

	f := svc.lastFilter
	if f.PredictionType != models.TypeDaily || f.Ticker != "AAPL" || f.Page != 3 || f.Limit != 10 {
		t.Fatalf("filter not parsed from query: %+v", f)
	}
	if !resp.writeSuccessCalled {
		t.Fatalf("expected WriteSuccess")
	}
}

func TestRatingLeaderboardError(t *testing.T) {
	svc := &stubLeaderboardService{err: errs.NewDatabaseError("read", "users unavailable", errors.New("boom"))}
	resp := &stubResponseHandler{}
	h := NewUserHandlers(&Deps{ResponseHandler: resp, LeaderboardSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/leaderboard/rating", nil)
	rr := httptest.NewRecorder()
	h.RatingLeaderboard(rr, req)

	if !resp.handleErrorCalled {
		t.Fatalf("expected HandleError on service failure")
	}
	if resp.writeSuccessCalled {
		t.Fatalf("WriteSuccess should not be called after an error")
	}
}
