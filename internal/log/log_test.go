package log

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		"warn":     slog.LevelWarn,
		"error":    slog.LevelError,
		"info":     slog.LevelInfo,
		"":         slog.LevelInfo,
		"nonsense": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_DistinctLoggersRespectLevel(t *testing.T) {
	errorLogger, metricsLogger := New(slog.LevelWarn)
	if errorLogger == nil || metricsLogger == nil {
		t.Fatal("New returned a nil logger")
	}
	if errorLogger.Handler().Enabled(context.Background(), slog.LevelInfo) {
		t.Error("errorLogger should not be enabled for Info when built at Warn level")
	}
	if !errorLogger.Handler().Enabled(context.Background(), slog.LevelError) {
		t.Error("errorLogger should be enabled for Error when built at Warn level")
	}
	if !metricsLogger.Handler().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("metricsLogger should be enabled for Warn when built at Warn level")
	}
}
