package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/platform/identity"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

// delegatedSession hands every operation to the external identity provider.
// It holds a state-change subscription for the process lifetime so OAuth
// completions flip the tracked state even though they arrive out of band.
type delegatedSession struct {
	provider    identity.Client
	log         *logger.Logger
	state       *stateTracker
	unsubscribe func()
}

func NewDelegatedSessionService(provider identity.Client, log *logger.Logger) SessionService {
	ds := &delegatedSession{
		provider: provider,
		log:      log.With("service", "SessionService", "mode", "delegated"),
		state:    newStateTracker(),
	}
	ds.unsubscribe = provider.Subscribe(func(change identity.StateChange) {
		switch change.Event {
		case identity.EventSignedIn:
			ds.state.set(SessionStateAuthenticated)
		case identity.EventSignedOut:
			ds.state.set(SessionStateAnonymous)
		}
	})
	return ds
}

func (ds *delegatedSession) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	session, err := ds.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	ds.log.Info("Delegated sign-in", "email", email)
	return session, nil
}

func (ds *delegatedSession) SignUp(ctx context.Context, email, password, name string) (*types.User, error) {
	var metadata map[string]interface{}
	if name = strings.TrimSpace(name); name != "" {
		metadata = map[string]interface{}{"name": name}
	}
	// The provider owns verification mail for delegated accounts.
	return ds.provider.SignUp(ctx, email, password, metadata)
}

func (ds *delegatedSession) SignInWithGoogle(_ context.Context, redirectTo string) (*GoogleSignInResult, error) {
	return &GoogleSignInResult{
		RedirectURL: ds.provider.AuthorizeURL("google", redirectTo),
	}, nil
}

func (ds *delegatedSession) CompleteOAuth(ctx context.Context, code string) (*types.Session, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("authorization code required")
	}
	return ds.provider.ExchangeCode(ctx, code)
}

func (ds *delegatedSession) SignOut(ctx context.Context, accessToken string) error {
	if err := ds.provider.SignOut(ctx, accessToken); err != nil {
		return err
	}
	ds.state.set(SessionStateAnonymous)
	return nil
}

func (ds *delegatedSession) Validate(ctx context.Context, token string) (*types.Session, error) {
	user, err := ds.provider.GetUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return &types.Session{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

func (ds *delegatedSession) State() SessionState {
	return ds.state.get()
}
