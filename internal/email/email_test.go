package email_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kipusaplus/kipus-api/internal/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNewSender_PicksProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     any
	}{
		{"log", &email.LogSender{}},
		{"resend", &email.ResendSender{}},
		{"smtp", &email.SMTPSender{}},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			s, err := email.NewSender(email.Config{
				Provider:     tt.provider,
				From:         "Kipus <no-reply@kipus.test>",
				ResendAPIKey: "re_test",
				SMTPHost:     "smtp.kipus.test",
				SMTPPort:     587,
			}, discard)
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestNewSender_UnknownProvider(t *testing.T) {
	_, err := email.NewSender(email.Config{Provider: "pigeon"}, discard)
	require.Error(t, err)
}

func TestLogSender_NeverFails(t *testing.T) {
	s, _ := email.NewSender(email.Config{Provider: "log"}, discard)
	require.NoError(t, s.Send(context.Background(), "a@x.com", "s", "b"))
}

func TestSMTPSender_CancelledContextSkipsDial(t *testing.T) {
	s, _ := email.NewSender(email.Config{Provider: "smtp", SMTPHost: "127.0.0.1", SMTPPort: 1}, discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Send(ctx, "a@x.com", "s", "b")
	require.ErrorIs(t, err, context.Canceled)
}

func TestResetCodeMessage(t *testing.T) {
	subject, body, err := email.ResetCodeMessage(`Ana <script>`, "482913", 15*time.Minute)
	require.NoError(t, err)

	assert.Contains(t, subject, "Kipus A+")
	assert.Contains(t, body, "482913")
	assert.Contains(t, body, "Válido por 15 minutos")
	assert.Contains(t, body, "Universidad de Talca")
	assert.Contains(t, body, "Ana &lt;script&gt;")
	assert.NotContains(t, body, "<script>")
}
