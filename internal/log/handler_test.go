package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/kipusaplus/kipus-api/internal/requestid"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return m
}

func TestContextHandler_StampsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := requestid.WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, 42)
	logger.InfoContext(ctx, "hello")

	m := decodeLine(t, &buf)
	if m["request_id"] != "req-1" {
		t.Errorf("request_id = %v", m["request_id"])
	}
	if m["user_id"] != float64(42) {
		t.Errorf("user_id = %v", m["user_id"])
	}
}

func TestContextHandler_NoValuesNoAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).With("component", "x")

	logger.InfoContext(context.Background(), "hello")

	m := decodeLine(t, &buf)
	if _, ok := m["request_id"]; ok {
		t.Error("unexpected request_id")
	}
	if _, ok := m["user_id"]; ok {
		t.Error("unexpected user_id")
	}
	if m["component"] != "x" {
		t.Errorf("WithAttrs lost: %v", m)
	}
}
