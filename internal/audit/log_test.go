package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dspedroborges/store-api/internal/auth"
	"github.com/dspedroborges/store-api/internal/obs"
)

func TestLogEventIncludesContext(t *testing.T) {
	logger := obs.Logger()
	origWriter := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(origWriter)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = auth.ContextWithPrincipal(ctx, auth.Principal{UserID: "user-1", Role: auth.RoleCustomer})

	if err := LogEvent(ctx, "auth.refresh.replay", map[string]any{"fingerprint": "abc"}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log is not valid JSON: %v", err)
	}
	if entry["event"] != "auth.refresh.replay" {
		t.Fatalf("unexpected event: %v", entry["event"])
	}
	if entry["request_id"] != "req-1" {
		t.Fatalf("missing request id: %v", entry["request_id"])
	}
	if entry["user_id"] != "user-1" {
		t.Fatalf("missing user id: %v", entry["user_id"])
	}
}

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
}
