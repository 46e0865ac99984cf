package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/metrics"
	"github.com/kipusaplus/kipus-api/internal/repository"
	"github.com/kipusaplus/kipus-api/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor for stored passwords.
const HashCost = 10

type AuthUsecase struct {
	users  repository.UserRepository
	tokens *token.Service
	logger *slog.Logger
	// dummyHash is compared against when the email is unknown so both login
	// failures cost one bcrypt comparison.
	dummyHash []byte
}

func NewAuthUsecase(users repository.UserRepository, tokens *token.Service, logger *slog.Logger) *AuthUsecase {
	dummy, err := bcrypt.GenerateFromPassword([]byte("kipus-timing-equalizer"), HashCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return &AuthUsecase{
		users:     users,
		tokens:    tokens,
		logger:    logger.With("component", "auth"),
		dummyHash: dummy,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	Region    string
	Commune   string
	Occupants int
	Area1     float64
	Area2     float64
}

// Session is what a successful registration or login hands back.
type Session struct {
	User  *domain.User
	Token string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(field, password string) error {
	if len(password) < domain.MinPasswordLen {
		return domain.Invalid(field, fmt.Sprintf("must be at least %d characters", domain.MinPasswordLen))
	}
	// bcrypt only looks at the first 72 bytes.
	if len(password) > 72 {
		return domain.Invalid(field, "must be at most 72 bytes")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (in *RegisterInput) validate() error {
	if err := checkEmail("email", in.Email); err != nil {
		return err
	}
	switch {
	case strings.TrimSpace(in.Name) == "":
		return domain.Invalid("nombre", "is required")
	case strings.TrimSpace(in.Region) == "":
		return domain.Invalid("region", "is required")
	case strings.TrimSpace(in.Commune) == "":
		return domain.Invalid("comuna", "is required")
	case in.Occupants < 1:
		return domain.Invalid("personas", "must be at least 1")
	case in.Area1 <= 0:
		return domain.Invalid("superficie1", "must be greater than 0")
	case in.Area2 < 0:
		return domain.Invalid("superficie2", "must not be negative")
	}
	return validatePassword("password", in.Password)
}

// Register validates the input, hashes the password and creates the user with
// its dwelling atomically, then opens a session.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = NormalizeEmail(in.Email)
	if err := in.validate(); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	user, err := u.users.Register(ctx, repository.RegisterInput{
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Region:       strings.TrimSpace(in.Region),
		Commune:      strings.TrimSpace(in.Commune),
		Occupants:    in.Occupants,
		Area1:        in.Area1,
		Area2:        in.Area2,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) ||
			errors.Is(err, domain.ErrUnknownRegion) ||
			errors.Is(err, domain.ErrUnknownCommune) {
			metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			return nil, err
		}
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("register user: %w", err)
	}

	tok, err := u.tokens.IssueSession(user.ID, user.Email, user.Role)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	u.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return &Session{User: user, Token: tok}, nil
}

// Login fails with the same ErrInvalidCredentials for an unknown email and a
// wrong password.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, domain.Invalid("", "correo and contraseña are required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(u.dummyHash, []byte(password))
			u.logger.DebugContext(ctx, "login failed", "reason", "unknown email")
			metrics.LoginsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		u.logger.DebugContext(ctx, "login failed", "reason", "password mismatch", "user_id", user.ID)
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, domain.ErrInvalidCredentials
	}

	tok, err := u.tokens.IssueSession(user.ID, user.Email, user.Role)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return &Session{User: user, Token: tok}, nil
}

func (u *AuthUsecase) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
