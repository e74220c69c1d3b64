package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	base := zap.New(core)
	return &loggerImpl{base: base, sugared: base.Sugar()}, logs
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want *zapcore.Level
	}{
		{"debug", levelPtr(zapcore.DebugLevel)},
		{" INFO ", levelPtr(zapcore.InfoLevel)},
		{"warn", levelPtr(zapcore.WarnLevel)},
		{"error", levelPtr(zapcore.ErrorLevel)},
		{"verbose", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseLevel(tt.in)
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func levelPtr(l zapcore.Level) *zapcore.Level { return &l }

func TestWith(t *testing.T) {
	log, logs := observed(zapcore.InfoLevel)

	child := With(log, String("user", "u1"))
	child.Info("snapshot applied", Int64("revision", 7))
	child.Debug("dropped")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["user"] != "u1" || fields["revision"] != int64(7) {
		t.Errorf("fields = %v", fields)
	}
}

func TestWithForeignLogger(t *testing.T) {
	var l Logger = fakeLogger{Logger: Nop()}
	if got := With(l, String("k", "v")); got != l {
		t.Error("With should return unknown implementations unchanged")
	}
}

type fakeLogger struct{ Logger }
