package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/email"
	"github.com/kipusaplus/kipus-api/internal/metrics"
	"github.com/kipusaplus/kipus-api/internal/repository"
	"github.com/kipusaplus/kipus-api/internal/token"
)

// mailTimeout bounds a reset email sent after the request has returned.
const mailTimeout = 30 * time.Second

const (
	stageRequest  = "request"
	stageVerify   = "verify"
	stageComplete = "complete"
)

// PasswordResetUsecase drives a reset attempt through
// requested -> verified -> completed.
type PasswordResetUsecase struct {
	users   repository.UserRepository
	codes   repository.ResetCodeRepository
	mailer  email.Sender
	tokens  *token.Service
	logger  *slog.Logger
	now      func() time.Time
	newCode  func() (string, error)
	dispatch func(func())
}

type ResetOption func(*PasswordResetUsecase)

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) ResetOption {
	return func(u *PasswordResetUsecase) { u.now = now }
}

func WithCodeGenerator(gen func() (string, error)) ResetOption {
	return func(u *PasswordResetUsecase) { u.newCode = gen }
}

// WithMailDispatch replaces the goroutine that delivers reset emails.
func WithMailDispatch(dispatch func(func())) ResetOption {
	return func(u *PasswordResetUsecase) { u.dispatch = dispatch }
}

func NewPasswordResetUsecase(
	users repository.UserRepository,
	codes repository.ResetCodeRepository,
	mailer email.Sender,
	tokens *token.Service,
	logger *slog.Logger,
	opts ...ResetOption,
) *PasswordResetUsecase {
	u := &PasswordResetUsecase{
		users:   users,
		codes:   codes,
		mailer:  mailer,
		tokens:  tokens,
		logger:  logger.With("component", "password_reset"),
		now:      time.Now,
		newCode:  GenerateResetCode,
		dispatch: func(f func()) { go f() },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

var codeSpan = big.NewInt(900000)

// GenerateResetCode draws a code uniformly from 100000..999999.
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

func validCodeFormat(code string) bool {
	if len(code) != domain.ResetCodeDigits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Request issues and mails a code when the email belongs to a user. The
// caller gets the same nil result either way, and delivery happens after
// Request returns so response time does not depend on the mail provider.
// A failed send is logged and swallowed.
func (u *PasswordResetUsecase) Request(ctx context.Context, emailAddr string) error {
	emailAddr = NormalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.Invalid("email", "is required")
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			u.logger.DebugContext(ctx, "reset requested for unknown email")
			metrics.PasswordResetTotal.WithLabelValues(stageRequest, metrics.OutcomeRejected).Inc()
			return nil
		}
		metrics.PasswordResetTotal.WithLabelValues(stageRequest, metrics.OutcomeError).Inc()
		return fmt.Errorf("find user: %w", err)
	}

	code, err := u.newCode()
	if err != nil {
		metrics.PasswordResetTotal.WithLabelValues(stageRequest, metrics.OutcomeError).Inc()
		return err
	}

	rc, err := u.codes.Create(ctx, user.ID, code, u.now().Add(domain.ResetCodeTTL))
	if err != nil {
		metrics.PasswordResetTotal.WithLabelValues(stageRequest, metrics.OutcomeError).Inc()
		return fmt.Errorf("store reset code: %w", err)
	}

	subject, body, err := email.ResetCodeMessage(user.Name, code, domain.ResetCodeTTL)
	if err != nil {
		u.logger.WarnContext(ctx, "reset code email not rendered",
			"user_id", user.ID, "reset_id", rc.ID, "error", err)
	} else {
		sendCtx := context.WithoutCancel(ctx)
		u.dispatch(func() {
			ctx, cancel := context.WithTimeout(sendCtx, mailTimeout)
			defer cancel()
			if err := u.mailer.Send(ctx, user.Email, subject, body); err != nil {
				u.logger.WarnContext(ctx, "reset code email not delivered",
					"user_id", user.ID, "reset_id", rc.ID, "error", err)
			}
		})
	}

	metrics.PasswordResetTotal.WithLabelValues(stageRequest, metrics.OutcomeSuccess).Inc()
	u.logger.InfoContext(ctx, "reset code issued", "user_id", user.ID, "reset_id", rc.ID)
	return nil
}

// Verify spends a requested code and returns a reset token bound to it. Every
// failure is ErrInvalidResetCode.
func (u *PasswordResetUsecase) Verify(ctx context.Context, emailAddr, code string) (string, error) {
	emailAddr = NormalizeEmail(emailAddr)
	if emailAddr == "" || code == "" {
		return "", domain.Invalid("", "email and codigo are required")
	}

	tok, reason, err := u.verify(ctx, emailAddr, code)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidResetCode) {
			u.logger.InfoContext(ctx, "reset code rejected", "reason", reason)
			metrics.PasswordResetTotal.WithLabelValues(stageVerify, metrics.OutcomeRejected).Inc()
			return "", domain.ErrInvalidResetCode
		}
		metrics.PasswordResetTotal.WithLabelValues(stageVerify, metrics.OutcomeError).Inc()
		return "", err
	}
	metrics.PasswordResetTotal.WithLabelValues(stageVerify, metrics.OutcomeSuccess).Inc()
	return tok, nil
}

// verify returns a log-only reason alongside ErrInvalidResetCode.
func (u *PasswordResetUsecase) verify(ctx context.Context, emailAddr, code string) (string, string, error) {
	if !validCodeFormat(code) {
		return "", "malformed code", domain.ErrInvalidResetCode
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", "unknown email", domain.ErrInvalidResetCode
		}
		return "", "", fmt.Errorf("find user: %w", err)
	}

	rc, err := u.codes.FindRequested(ctx, user.ID, code)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidResetCode) {
			return "", "no matching code", err
		}
		return "", "", fmt.Errorf("find reset code: %w", err)
	}
	if !rc.Redeemable(u.now()) {
		return "", "expired", domain.ErrInvalidResetCode
	}

	if err := u.codes.Transition(ctx, rc.ID, domain.ResetRequested, domain.ResetVerified); err != nil {
		if errors.Is(err, domain.ErrInvalidResetCode) {
			return "", "already used", err
		}
		return "", "", fmt.Errorf("mark code verified: %w", err)
	}

	tok, err := u.tokens.IssueReset(user.ID, user.Email, rc.ID)
	if err != nil {
		return "", "", err
	}
	return tok, "", nil
}

// Complete sets the new password under a reset token. The token's attempt is
// finished in the same transaction, so the token works once.
func (u *PasswordResetUsecase) Complete(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" {
		return domain.ErrMissingToken
	}
	if err := validatePassword("nuevaPassword", newPassword); err != nil {
		return err
	}

	id, err := u.tokens.VerifyPurpose(rawToken, domain.PurposePasswordReset)
	if err != nil {
		u.logger.InfoContext(ctx, "reset token rejected", "error", err)
		metrics.PasswordResetTotal.WithLabelValues(stageComplete, metrics.OutcomeRejected).Inc()
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		metrics.PasswordResetTotal.WithLabelValues(stageComplete, metrics.OutcomeError).Inc()
		return err
	}

	if err := u.codes.Complete(ctx, id.ResetID, id.UserID, hash); err != nil {
		if errors.Is(err, domain.ErrInvalidResetCode) || errors.Is(err, domain.ErrUserNotFound) {
			u.logger.InfoContext(ctx, "reset token already spent", "user_id", id.UserID, "reset_id", id.ResetID)
			metrics.PasswordResetTotal.WithLabelValues(stageComplete, metrics.OutcomeRejected).Inc()
			return domain.ErrTokenInvalid
		}
		metrics.PasswordResetTotal.WithLabelValues(stageComplete, metrics.OutcomeError).Inc()
		return fmt.Errorf("complete reset: %w", err)
	}

	metrics.PasswordResetTotal.WithLabelValues(stageComplete, metrics.OutcomeSuccess).Inc()
	u.logger.InfoContext(ctx, "password changed via reset", "user_id", id.UserID)
	return nil
}
