package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/platform/mailer"
	"github.com/eaas-dev/eaas-backend/internal/store"
)

const verifyKeyPrefix = "eaas_verify:"

// VerificationService issues single-use email verification tokens and
// dispatches the verification message.
type VerificationService interface {
	SendVerification(ctx context.Context, email string) error
	Verify(ctx context.Context, token string) (string, bool)
}

type verificationService struct {
	kv      store.KV
	log     *logger.Logger
	mail    mailer.Client
	baseURL string
}

func NewVerificationService(kv store.KV, log *logger.Logger, mail mailer.Client, baseURL string) VerificationService {
	return &verificationService{
		kv:      kv,
		log:     log.With("service", "VerificationService"),
		mail:    mail,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (vs *verificationService) SendVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email required")
	}

	token := uuid.NewString()
	if err := vs.kv.Set(ctx, verifyKeyPrefix+token, email); err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}

	verifyURL := vs.baseURL + "/api/auth/verify-email?token=" + token
	if _, err := vs.mail.Send(ctx, mailer.VerificationEmail(email, verifyURL)); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	vs.log.Info("Verification email dispatched", "email", email)
	return nil
}

// Verify consumes the token. A second call with the same token fails.
func (vs *verificationService) Verify(ctx context.Context, token string) (string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	email, ok, err := vs.kv.Get(ctx, verifyKeyPrefix+token)
	if err != nil {
		vs.log.Warn("Verification token read failed", "error", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	if err := vs.kv.Remove(ctx, verifyKeyPrefix+token); err != nil {
		vs.log.Warn("Verification token not removed", "error", err)
	}
	return email, true
}
