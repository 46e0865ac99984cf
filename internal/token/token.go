// Package token issues and verifies the HS256 bearer tokens used for sessions
// and password resets.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kipusaplus/kipus-api/internal/domain"
)

const issuer = "kipus-api"

type claims struct {
	Email   string              `json:"email"`
	Role    domain.Role         `json:"role,omitempty"`
	Purpose domain.TokenPurpose `json:"purpose"`
	ResetID int64               `json:"rid,omitempty"`
	jwt.RegisteredClaims
}

type Service struct {
	key []byte
	now func() time.Time
}

// NewService returns a Service signing with key. A nil now uses time.Now.
func NewService(key []byte, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{key: key, now: now}
}

func (s *Service) IssueSession(userID int64, email string, role domain.Role) (string, error) {
	return s.sign(claims{
		Email:   email,
		Role:    role,
		Purpose: domain.PurposeSession,
	}, userID, domain.SessionTokenTTL)
}

// IssueReset binds the token to one verified reset attempt so it can be spent once.
func (s *Service) IssueReset(userID int64, email string, resetID int64) (string, error) {
	return s.sign(claims{
		Email:   email,
		Purpose: domain.PurposePasswordReset,
		ResetID: resetID,
	}, userID, domain.ResetTokenTTL)
}

func (s *Service) sign(c claims, userID int64, ttl time.Duration) (string, error) {
	now := s.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry and returns the identity the
// token proves. It does not check purpose; see VerifyPurpose.
func (s *Service) Verify(raw string) (*domain.Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, domain.ErrTokenInvalid
	}

	id := &domain.Identity{
		UserID:  userID,
		Email:   c.Email,
		Role:    c.Role,
		Purpose: c.Purpose,
		ResetID: c.ResetID,
	}
	switch c.Purpose {
	case domain.PurposeSession:
		if !c.Role.Valid() {
			return nil, domain.ErrTokenInvalid
		}
	case domain.PurposePasswordReset:
		if c.ResetID <= 0 {
			return nil, domain.ErrTokenInvalid
		}
	default:
		return nil, domain.ErrTokenInvalid
	}
	return id, nil
}

// VerifyPurpose is Verify plus a purpose check. A valid token of the other
// flavor fails with ErrWrongTokenPurpose.
func (s *Service) VerifyPurpose(raw string, want domain.TokenPurpose) (*domain.Identity, error) {
	id, err := s.Verify(raw)
	if err != nil {
		return nil, err
	}
	if id.Purpose != want {
		return nil, domain.ErrWrongTokenPurpose
	}
	return id, nil
}
