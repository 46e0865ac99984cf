package domain_test

import (
	"testing"
	"time"

	"github.com/kipusaplus/kipus-api/internal/domain"
)

func TestResetState_Transitions(t *testing.T) {
	tests := []struct {
		from, to domain.ResetState
		want     bool
	}{
		{domain.ResetRequested, domain.ResetVerified, true},
		{domain.ResetRequested, domain.ResetRevoked, true},
		{domain.ResetVerified, domain.ResetCompleted, true},
		{domain.ResetRequested, domain.ResetCompleted, false},
		{domain.ResetVerified, domain.ResetRequested, false},
		{domain.ResetVerified, domain.ResetRevoked, false},
		{domain.ResetCompleted, domain.ResetVerified, false},
		{domain.ResetRevoked, domain.ResetVerified, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestResetCode_Redeemable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		code domain.ResetCode
		want bool
	}{
		{"future expiry", domain.ResetCode{State: domain.ResetRequested, ExpiresAt: now.Add(time.Second)}, true},
		{"expires exactly now", domain.ResetCode{State: domain.ResetRequested, ExpiresAt: now}, false},
		{"already expired", domain.ResetCode{State: domain.ResetRequested, ExpiresAt: now.Add(-time.Minute)}, false},
		{"already verified", domain.ResetCode{State: domain.ResetVerified, ExpiresAt: now.Add(time.Minute)}, false},
		{"revoked", domain.ResetCode{State: domain.ResetRevoked, ExpiresAt: now.Add(time.Minute)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.Redeemable(now); got != tt.want {
				t.Errorf("Redeemable() = %v, want %v", got, tt.want)
			}
		})
	}
}
