package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eaas-dev/eaas-backend/internal/platform/mailer"
	"github.com/eaas-dev/eaas-backend/internal/store"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("store offline")
}
func (brokenKV) Set(context.Context, string, string) error { return errors.New("store offline") }
func (brokenKV) Remove(context.Context, string) error      { return errors.New("store offline") }

func newTestSessionService(t *testing.T, kv store.KV) SessionService {
	t.Helper()
	log := testLogger(t)
	svc, err := NewSimulatedSessionService(
		kv,
		log,
		NewProfileService(kv, log),
		NewVerificationService(kv, log, mailer.NewLogClient(log), "http://localhost:8080"),
		SimulatedSessionConfig{JWTSecret: "test-secret", AccessTTL: time.Hour},
	)
	if err != nil {
		t.Fatalf("NewSimulatedSessionService: %v", err)
	}
	return svc
}

func TestSimulatedSignIn(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t, store.NewMemoryKV())

	session, err := svc.SignIn(ctx, "jordan@example.com", "anything")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatalf("session missing tokens: %+v", session)
	}
	if session.User == nil || session.User.Email != "jordan@example.com" {
		t.Fatalf("session user = %+v", session.User)
	}
	if name := session.User.Metadata["name"]; name != "jordan" {
		t.Fatalf("synthesized name = %v, want email local part", name)
	}
	if svc.State() != SessionStateAuthenticated {
		t.Fatalf("state = %q after sign-in", svc.State())
	}
}

func TestSimulatedSignInRejectsEmptyCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t, store.NewMemoryKV())

	for _, tc := range []struct{ email, password string }{
		{"", "pw"},
		{"a@b.com", ""},
		{"", ""},
	} {
		if _, err := svc.SignIn(ctx, tc.email, tc.password); err == nil {
			t.Fatalf("SignIn(%q, %q) succeeded, want error", tc.email, tc.password)
		}
	}
	if svc.State() != SessionStateAnonymous {
		t.Fatalf("state = %q after failed sign-ins", svc.State())
	}
}

func TestSimulatedIdentityStableAcrossSignIns(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t, store.NewMemoryKV())

	first, err := svc.SignIn(ctx, "jordan@example.com", "pw")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	second, err := svc.SignIn(ctx, "Jordan@Example.com", "other-pw")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if first.User.ID != second.User.ID {
		t.Fatalf("user ids differ across sign-ins: %q vs %q", first.User.ID, second.User.ID)
	}
}

func TestSimulatedValidateRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t, store.NewMemoryKV())

	session, err := svc.SignIn(ctx, "jordan@example.com", "pw")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	got, err := svc.Validate(ctx, session.AccessToken)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.User.ID != session.User.ID || got.User.Email != "jordan@example.com" {
		t.Fatalf("validated user = %+v", got.User)
	}

	if _, err := svc.Validate(ctx, session.AccessToken+"tampered"); err == nil {
		t.Fatal("Validate accepted a tampered token")
	}
	if _, err := svc.Validate(ctx, ""); err == nil {
		t.Fatal("Validate accepted an empty token")
	}
}

func TestSimulatedProfileMergeOnRestore(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	log := testLogger(t)
	profiles := NewProfileService(kv, log)
	svc, err := NewSimulatedSessionService(kv, log, profiles, nil,
		SimulatedSessionConfig{JWTSecret: "test-secret"})
	if err != nil {
		t.Fatalf("NewSimulatedSessionService: %v", err)
	}

	session, err := svc.SignIn(ctx, "jordan@example.com", "pw")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if _, err := profiles.Save(ctx, session.User.ID, types.Profile{Name: "Jordan R.", Bio: "evals"}); err != nil {
		t.Fatalf("profiles.Save: %v", err)
	}

	restored, err := svc.Validate(ctx, session.AccessToken)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if restored.User.Metadata["name"] != "Jordan R." {
		t.Fatalf("profile name not merged: %v", restored.User.Metadata)
	}
	if restored.User.Metadata["bio"] != "evals" {
		t.Fatalf("profile bio not merged: %v", restored.User.Metadata)
	}
}

func TestSimulatedSignUpEstablishesNoSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t, store.NewMemoryKV())

	user, err := svc.SignUp(ctx, "new@example.com", "pw", "New User")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if user.Metadata["name"] != "New User" {
		t.Fatalf("sign-up metadata = %v", user.Metadata)
	}
	if svc.State() != SessionStateAnonymous {
		t.Fatalf("state = %q after sign-up, want anonymous", svc.State())
	}
}

func TestSimulatedGoogleDemoIdentity(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t, store.NewMemoryKV())

	res, err := svc.SignInWithGoogle(ctx, "")
	if err != nil {
		t.Fatalf("SignInWithGoogle: %v", err)
	}
	if res.Session == nil || res.RedirectURL != "" {
		t.Fatalf("result = %+v, want immediate session", res)
	}
	if !strings.Contains(res.Session.User.Email, "demo.google") {
		t.Fatalf("google user = %+v, want demo identity", res.Session.User)
	}
}

func TestSimulatedSignOut(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t, store.NewMemoryKV())

	session, err := svc.SignIn(ctx, "jordan@example.com", "pw")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := svc.SignOut(ctx, session.AccessToken); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if svc.State() != SessionStateAnonymous {
		t.Fatalf("state = %q after sign-out", svc.State())
	}
}

func TestSimulatedSignInSurvivesBrokenStore(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t, brokenKV{})

	session, err := svc.SignIn(ctx, "jordan@example.com", "pw")
	if err != nil {
		t.Fatalf("SignIn with broken store: %v", err)
	}
	if session.User == nil {
		t.Fatal("no user despite in-memory fallback")
	}
	if _, err := svc.Validate(ctx, session.AccessToken); err != nil {
		t.Fatalf("Validate with broken store: %v", err)
	}
}

type recordingKV struct {
	store.KV
	lastKey string
}

func (r *recordingKV) Set(ctx context.Context, key, value string) error {
	r.lastKey = key
	return r.KV.Set(ctx, key, value)
}

func TestVerificationTokenSingleUse(t *testing.T) {
	ctx := context.Background()
	kv := &recordingKV{KV: store.NewMemoryKV()}
	log := testLogger(t)
	vs := NewVerificationService(kv, log, mailer.NewLogClient(log), "http://localhost:8080")

	if err := vs.SendVerification(ctx, "new@example.com"); err != nil {
		t.Fatalf("SendVerification: %v", err)
	}

	// Recover the issued token straight from the store key.
	token := strings.TrimPrefix(kv.lastKey, verifyKeyPrefix)

	email, ok := vs.Verify(ctx, token)
	if !ok || email != "new@example.com" {
		t.Fatalf("Verify = %q, %v", email, ok)
	}
	if _, ok := vs.Verify(ctx, token); ok {
		t.Fatal("token accepted twice")
	}
	if _, ok := vs.Verify(ctx, "no-such-token"); ok {
		t.Fatal("unknown token accepted")
	}
}
