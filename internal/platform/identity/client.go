package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

// Event names emitted to subscribers when the provider session changes.
const (
	EventSignedIn  = "signed_in"
	EventSignedOut = "signed_out"
)

type StateChange struct {
	Event   string
	Session *types.Session
}

// Client talks to an external GoTrue-compatible identity provider. All
// credential checks happen on the provider side; this client only moves
// tokens.
type Client interface {
	SignInWithPassword(ctx context.Context, email, password string) (*types.Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*types.User, error)
	AuthorizeURL(provider, redirectTo string) string
	ExchangeCode(ctx context.Context, code string) (*types.Session, error)
	GetUser(ctx context.Context, accessToken string) (*types.User, error)
	SignOut(ctx context.Context, accessToken string) error
	Subscribe(fn func(StateChange)) func()
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL: strings.TrimSpace(os.Getenv("IDENTITY_PROVIDER_URL")),
		APIKey:  strings.TrimSpace(os.Getenv("IDENTITY_PROVIDER_KEY")),
	}
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("missing IDENTITY_PROVIDER_URL")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing IDENTITY_PROVIDER_KEY")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &client{
		log:        log.With("client", "IdentityClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client

	mu          sync.Mutex
	nextSub     int
	subscribers map[int]func(StateChange)
}

// --- provider wire types ---

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	User         *providerUser `json:"user"`
}

type providerUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	CreatedAt    string                 `json:"created_at"`
}

type providerError struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Code             int    `json:"code"`
}

func (u *providerUser) toUser() *types.User {
	if u == nil {
		return nil
	}
	return &types.User{
		ID:        u.ID,
		Email:     u.Email,
		Metadata:  u.UserMetadata,
		CreatedAt: u.CreatedAt,
	}
}

func (tr *tokenResponse) toSession(now time.Time) *types.Session {
	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	return &types.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tokenType,
		ExpiresAt:    now.Add(time.Duration(tr.ExpiresIn) * time.Second).Unix(),
		User:         tr.User.toUser(),
	}
}

func (c *client) SignInWithPassword(ctx context.Context, email, password string) (*types.Session, error) {
	var tr tokenResponse
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", map[string]string{
		"email":    email,
		"password": password,
	}, &tr)
	if err != nil {
		return nil, err
	}
	session := tr.toSession(time.Now())
	c.notify(StateChange{Event: EventSignedIn, Session: session})
	return session, nil
}

func (c *client) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*types.User, error) {
	var pu providerUser
	err := c.do(ctx, http.MethodPost, "/signup", "", map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     metadata,
	}, &pu)
	if err != nil {
		return nil, err
	}
	return pu.toUser(), nil
}

// AuthorizeURL builds the browser redirect for an OAuth provider flow.
func (c *client) AuthorizeURL(provider, redirectTo string) string {
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.cfg.BaseURL + "/authorize?" + q.Encode()
}

func (c *client) ExchangeCode(ctx context.Context, code string) (*types.Session, error) {
	var tr tokenResponse
	err := c.do(ctx, http.MethodPost, "/token?grant_type=authorization_code", "", map[string]string{
		"code": code,
	}, &tr)
	if err != nil {
		return nil, err
	}
	session := tr.toSession(time.Now())
	c.notify(StateChange{Event: EventSignedIn, Session: session})
	return session, nil
}

func (c *client) GetUser(ctx context.Context, accessToken string) (*types.User, error) {
	var pu providerUser
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &pu); err != nil {
		return nil, err
	}
	return pu.toUser(), nil
}

func (c *client) SignOut(ctx context.Context, accessToken string) error {
	err := c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
	if err != nil {
		return err
	}
	c.notify(StateChange{Event: EventSignedOut})
	return nil
}

// Subscribe registers a state-change listener and returns its unsubscribe
// function.
func (c *client) Subscribe(fn func(StateChange)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscribers == nil {
		c.subscribers = map[int]func(StateChange){}
	}
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

func (c *client) notify(change StateChange) {
	c.mu.Lock()
	fns := make([]func(StateChange), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(change)
	}
}

func (c *client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pe providerError
		_ = json.Unmarshal(raw, &pe)
		msg := pe.Message
		if msg == "" {
			msg = pe.ErrorDescription
		}
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return fmt.Errorf("identity provider http %d: %s", resp.StatusCode, msg)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
