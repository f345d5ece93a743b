package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eaas-dev/eaas-backend/internal/types"
)

type SessionState string

const (
	SessionStateAnonymous     SessionState = "anonymous"
	SessionStateAuthenticated SessionState = "authenticated"
)

// GoogleSignInResult carries either an immediate session or a browser
// redirect, depending on the regime.
type GoogleSignInResult struct {
	Session     *types.Session
	RedirectURL string
}

// SessionService is the identity boundary. Exactly one implementation is
// selected at startup; handlers never branch on the regime.
type SessionService interface {
	SignIn(ctx context.Context, email, password string) (*types.Session, error)
	SignUp(ctx context.Context, email, password, name string) (*types.User, error)
	SignInWithGoogle(ctx context.Context, redirectTo string) (*GoogleSignInResult, error)
	CompleteOAuth(ctx context.Context, code string) (*types.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	Validate(ctx context.Context, token string) (*types.Session, error)
	State() SessionState
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func mintAccessToken(secret []byte, user *types.User, ttl time.Duration, now time.Time) (string, int64, error) {
	expiresAt := now.Add(ttl)
	name := ""
	if v, ok := user.Metadata["name"].(string); ok {
		name = v
	}
	claims := sessionClaims{
		Email: user.Email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", 0, err
	}
	return token, expiresAt.Unix(), nil
}

func parseAccessToken(secret []byte, token string) (*sessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func emailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

// stateTracker is the shared anonymous/authenticated flip both regimes use.
type stateTracker struct {
	mu    sync.RWMutex
	state SessionState
}

func newStateTracker() *stateTracker {
	return &stateTracker{state: SessionStateAnonymous}
}

func (s *stateTracker) set(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *stateTracker) get() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
