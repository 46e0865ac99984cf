package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/token"
)

const testKey = "token-test-secret-at-least-32-chars!"

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService() (*token.Service, *clock) {
	c := &clock{t: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	return token.NewService([]byte(testKey), c.now), c
}

func TestIssueSession_RoundTrip(t *testing.T) {
	svc, _ := newService()

	raw, err := svc.IssueSession(42, "a@x.com", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	id, err := svc.VerifyPurpose(raw, domain.PurposeSession)
	if err != nil {
		t.Fatalf("VerifyPurpose: %v", err)
	}
	if id.UserID != 42 || id.Email != "a@x.com" || id.Role != domain.RoleAdmin {
		t.Errorf("identity = %+v", id)
	}
	if !id.IsAdmin() {
		t.Error("expected admin identity")
	}
}

func TestSessionToken_ExpiresAfterSevenDays(t *testing.T) {
	svc, clk := newService()
	raw, _ := svc.IssueSession(1, "a@x.com", domain.RoleUser)

	clk.t = clk.t.Add(domain.SessionTokenTTL - time.Minute)
	if _, err := svc.Verify(raw); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	clk.t = clk.t.Add(2 * time.Minute)
	if _, err := svc.Verify(raw); err != domain.ErrTokenExpired {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestResetToken_ExpiresAfterFifteenMinutes(t *testing.T) {
	svc, clk := newService()
	raw, _ := svc.IssueReset(1, "a@x.com", 9)

	clk.t = clk.t.Add(domain.ResetTokenTTL + time.Second)
	if _, err := svc.Verify(raw); err != domain.ErrTokenExpired {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestResetToken_CarriesAttemptAndPurpose(t *testing.T) {
	svc, _ := newService()
	raw, _ := svc.IssueReset(7, "a@x.com", 9)

	id, err := svc.VerifyPurpose(raw, domain.PurposePasswordReset)
	if err != nil {
		t.Fatalf("VerifyPurpose: %v", err)
	}
	if id.ResetID != 9 || id.UserID != 7 {
		t.Errorf("identity = %+v", id)
	}
}

func TestPurposes_AreNotInterchangeable(t *testing.T) {
	svc, _ := newService()
	session, _ := svc.IssueSession(1, "a@x.com", domain.RoleUser)
	reset, _ := svc.IssueReset(1, "a@x.com", 3)

	if _, err := svc.VerifyPurpose(reset, domain.PurposeSession); err != domain.ErrWrongTokenPurpose {
		t.Errorf("reset as session: err = %v, want ErrWrongTokenPurpose", err)
	}
	if _, err := svc.VerifyPurpose(session, domain.PurposePasswordReset); err != domain.ErrWrongTokenPurpose {
		t.Errorf("session as reset: err = %v, want ErrWrongTokenPurpose", err)
	}
}

func TestVerify_RejectsForeignOrMalformedTokens(t *testing.T) {
	svc, clk := newService()
	other := token.NewService([]byte("a-completely-different-secret-key!!"), clk.now)
	foreign, _ := other.IssueSession(1, "a@x.com", domain.RoleUser)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1", "iss": "kipus-api", "purpose": "session", "role": "usuario",
		"exp": clk.t.Add(time.Hour).Unix(),
	})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	noPurpose := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1", "iss": "kipus-api", "role": "usuario",
		"exp": clk.t.Add(time.Hour).Unix(),
	})
	legacy, _ := noPurpose.SignedString([]byte(testKey))

	cases := map[string]string{
		"garbage":      "not-a-jwt",
		"wrong key":    foreign,
		"alg none":     unsigned,
		"no purpose":   legacy,
		"empty string": "",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Verify(raw); err != domain.ErrTokenInvalid {
				t.Errorf("err = %v, want ErrTokenInvalid", err)
			}
		})
	}
}
