package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"

	"github.com/stockpredictorai/prediction-backend/internal/models"
)

const guestCookie = "guest_session"

// userReader looks up profiles for the admin check.
type userReader interface {
	Get(ctx context.Context, uid string) (*models.User, error)
}

type Middleware struct {
	AuthClient *auth.Client
	Users      userReader
}

func NewMiddleware(client *auth.Client, users userReader) *Middleware {
	return &Middleware{AuthClient: client, Users: users}
}

// context keys
type contextKey string

const (
	UIDKey   contextKey = "uid"
	VoterKey contextKey = "voter"
)

// FirebaseAuth requires a valid bearer token and puts the UID in the
// context. The voter identity of an authenticated request is the UID.
func (m *Middleware) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := m.verifyBearer(r)
		if !ok {
			http.Error(w, "invalid or missing Authorization header", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), UIDKey, uid)
		ctx = context.WithValue(ctx, VoterKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GuestAuth resolves a voter identity for endpoints that accept anonymous
// callers. A valid bearer token wins; otherwise the guest session cookie is
// used, minted on first contact so a guest's votes survive reloads.
func (m *Middleware) GuestAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if uid, ok := m.verifyBearer(r); ok {
			ctx = context.WithValue(ctx, UIDKey, uid)
			ctx = context.WithValue(ctx, VoterKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		token := ""
		if c, err := r.Cookie(guestCookie); err == nil && c.Value != "" {
			token = c.Value
		} else {
			token = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     guestCookie,
				Value:    token,
				Path:     "/",
				Expires:  time.Now().AddDate(1, 0, 0),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx = context.WithValue(ctx, VoterKey, "guest:"+token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates admin endpoints. It must run after FirebaseAuth.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := UID(r.Context())
		if uid == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		user, err := m.Users.Get(r.Context(), uid)
		if err != nil || !user.IsAdmin {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) verifyBearer(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token, err := m.AuthClient.VerifyIDToken(r.Context(), parts[1])
	if err != nil {
		return "", false
	}
	return token.UID, true
}

// UID extracts the authenticated user id; empty for guests.
func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}

// Voter extracts the voter identity: a UID for authenticated callers, a
// guest token otherwise.
func Voter(ctx context.Context) string {
	voter, _ := ctx.Value(VoterKey).(string)
	return voter
}
