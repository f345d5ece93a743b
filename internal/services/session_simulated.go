package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/store"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

const authUserKeyPrefix = "eaas_auth_user:"

// Demo identity activated by the Google button in the simulated regime.
const (
	demoGoogleEmail = "demo.google@example.com"
	demoGoogleName  = "Demo Google User"
)

type SimulatedSessionConfig struct {
	JWTSecret string
	AccessTTL time.Duration
}

// simulatedSession accepts any non-empty credentials and synthesizes
// identities locally. When the store is unreachable it keeps going with
// in-memory records so sign-in never hard-fails on storage.
type simulatedSession struct {
	kv       store.KV
	log      *logger.Logger
	profiles ProfileService
	verify   VerificationService
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	state    *stateTracker

	mu       sync.Mutex
	fallback map[string]types.User
}

func NewSimulatedSessionService(
	kv store.KV,
	log *logger.Logger,
	profiles ProfileService,
	verify VerificationService,
	cfg SimulatedSessionConfig,
) (SessionService, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("missing JWT secret")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	return &simulatedSession{
		kv:       kv,
		log:      log.With("service", "SessionService", "mode", "simulated"),
		profiles: profiles,
		verify:   verify,
		secret:   []byte(cfg.JWTSecret),
		ttl:      cfg.AccessTTL,
		now:      time.Now,
		state:    newStateTracker(),
		fallback: map[string]types.User{},
	}, nil
}

// userID is stable per email so profiles and collections survive repeated
// sign-ins.
func simulatedUserID(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "user_" + hex.EncodeToString(sum[:6])
}

func (ss *simulatedSession) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password required")
	}

	user := ss.loadOrCreateUser(ctx, email, emailLocalPart(email))
	if ss.profiles != nil {
		types.MergeProfile(user, ss.profiles.Get(ctx, user.ID))
	}

	session, err := ss.mint(user)
	if err != nil {
		return nil, err
	}
	ss.state.set(SessionStateAuthenticated)
	ss.log.Info("Simulated sign-in", "user_id", user.ID, "email", user.Email)
	return session, nil
}

func (ss *simulatedSession) SignUp(ctx context.Context, email, password, name string) (*types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password required")
	}
	if name == "" {
		name = emailLocalPart(email)
	}

	user := ss.loadOrCreateUser(ctx, email, name)

	if ss.verify != nil {
		if err := ss.verify.SendVerification(ctx, email); err != nil {
			ss.log.Warn("Verification email not sent", "email", email, "error", err)
		}
	}
	// Sign-up never establishes a session; the caller signs in afterwards.
	return user, nil
}

func (ss *simulatedSession) SignInWithGoogle(ctx context.Context, _ string) (*GoogleSignInResult, error) {
	user := ss.loadOrCreateUser(ctx, demoGoogleEmail, demoGoogleName)
	if ss.profiles != nil {
		types.MergeProfile(user, ss.profiles.Get(ctx, user.ID))
	}
	session, err := ss.mint(user)
	if err != nil {
		return nil, err
	}
	ss.state.set(SessionStateAuthenticated)
	return &GoogleSignInResult{Session: session}, nil
}

func (ss *simulatedSession) CompleteOAuth(context.Context, string) (*types.Session, error) {
	return nil, fmt.Errorf("oauth callback not available in simulated mode")
}

func (ss *simulatedSession) SignOut(ctx context.Context, accessToken string) error {
	claims, err := parseAccessToken(ss.secret, accessToken)
	if err == nil {
		if rmErr := ss.kv.Remove(ctx, authUserKeyPrefix+claims.Subject); rmErr != nil {
			ss.log.Warn("Auth record not removed", "user_id", claims.Subject, "error", rmErr)
		}
		ss.mu.Lock()
		delete(ss.fallback, claims.Subject)
		ss.mu.Unlock()
	}
	ss.state.set(SessionStateAnonymous)
	return nil
}

func (ss *simulatedSession) Validate(ctx context.Context, token string) (*types.Session, error) {
	claims, err := parseAccessToken(ss.secret, token)
	if err != nil {
		return nil, err
	}

	user := ss.loadUser(ctx, claims.Subject)
	if user == nil {
		// Claims carry enough to reconstruct the identity.
		user = &types.User{
			ID:       claims.Subject,
			Email:    claims.Email,
			Metadata: map[string]interface{}{"name": claims.Name},
		}
	}
	if ss.profiles != nil {
		types.MergeProfile(user, ss.profiles.Get(ctx, user.ID))
	}

	return &types.Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   claims.ExpiresAt.Unix(),
		User:        user,
	}, nil
}

func (ss *simulatedSession) State() SessionState {
	return ss.state.get()
}

func (ss *simulatedSession) mint(user *types.User) (*types.Session, error) {
	token, expiresAt, err := mintAccessToken(ss.secret, user, ss.ttl, ss.now())
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}
	return &types.Session{
		AccessToken:  token,
		RefreshToken: uuid.NewString(),
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
		User:         user,
	}, nil
}

func (ss *simulatedSession) loadOrCreateUser(ctx context.Context, email, name string) *types.User {
	id := simulatedUserID(email)
	if user := ss.loadUser(ctx, id); user != nil {
		return user
	}

	user := &types.User{
		ID:        id,
		Email:     email,
		Metadata:  map[string]interface{}{"name": name},
		CreatedAt: types.Timestamp(ss.now()),
	}
	raw, err := json.Marshal(user)
	if err == nil {
		err = ss.kv.Set(ctx, authUserKeyPrefix+id, string(raw))
	}
	if err != nil {
		ss.log.Warn("Auth record not persisted, continuing in memory", "user_id", id, "error", err)
		ss.mu.Lock()
		ss.fallback[id] = *user
		ss.mu.Unlock()
	}
	return user
}

func (ss *simulatedSession) loadUser(ctx context.Context, id string) *types.User {
	raw, ok, err := ss.kv.Get(ctx, authUserKeyPrefix+id)
	if err != nil {
		ss.log.Warn("Auth record read failed, trying in-memory state", "user_id", id, "error", err)
		ss.mu.Lock()
		defer ss.mu.Unlock()
		if user, found := ss.fallback[id]; found {
			copied := user
			return &copied
		}
		return nil
	}
	if !ok {
		return nil
	}
	var user types.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		ss.log.Warn("Auth record unparseable", "user_id", id, "error", err)
		return nil
	}
	return &user
}
