package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected logger to be enabled")
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	output := buf.String()
	if output == "" {
		t.Error("Expected log output, got empty string")
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected output to contain 'test message', got: %s", output)
	}
}

func TestWithContext(t *testing.T) {
	log := New()
	ctx := context.Background()

	ctxWithLogger := WithContext(ctx, log)

	if ctxWithLogger.Value(LoggerKey) == nil {
		t.Error("Expected logger in context, got nil")
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	testLog := NewWithWriter(buf)
	ctx := WithContext(context.Background(), testLog)

	retrievedLog := FromContext(ctx)
	retrievedLog.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	ctx := context.Background()

	// Should return a default logger when none is in context
	log := FromContext(ctx)

	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected default logger to be enabled")
	}
}

func TestForSession(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	sessionLog := ForSession(log, "abc123")
	sessionLog.Info().Msg("scoped")

	output := buf.String()
	if !strings.Contains(output, "session_id") || !strings.Contains(output, "abc123") {
		t.Errorf("Expected output to contain session_id field, got: %s", output)
	}
}

func TestForStage(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	stageLog := ForStage(log, "categorizing")
	stageLog.Info().Msg("scoped")

	output := buf.String()
	if !strings.Contains(output, "categorizing") {
		t.Errorf("Expected output to contain stage field, got: %s", output)
	}
}
