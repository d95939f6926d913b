package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/natefinch/lumberjack.v2"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "solrctl", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line, got nothing")
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, line)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestJSONOutput_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "debug").WithComponent("httpadapter")

	l.Debug("request sent", Fields(FieldMethod, "GET", FieldStatus, 200))

	m := decodeLine(t, &buf)
	if m["message"] != "request sent" {
		t.Errorf("unexpected message %v", m["message"])
	}
	if m[FieldComponent] != "httpadapter" {
		t.Errorf("expected component field, got %v", m[FieldComponent])
	}
	if m[FieldMethod] != "GET" {
		t.Errorf("expected method field, got %v", m[FieldMethod])
	}
	if m["service"] != "solrctl" {
		t.Errorf("expected service field, got %v", m["service"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "warn")

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %s", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected warn message to be written")
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "loud")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Error("expected debug to be filtered at fallback info level")
	}
	l.Info("shown")
	if buf.Len() == 0 {
		t.Error("expected info to be written")
	}
}

func TestWithContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info")

	ctx := ContextWithRequestID(context.Background(), "req-42")
	l.WithContext(ctx).Info("hello")

	m := decodeLine(t, &buf)
	if m[FieldRequestID] != "req-42" {
		t.Errorf("expected request_id field, got %v", m[FieldRequestID])
	}
}

func TestWithContext_NoRequestID(t *testing.T) {
	l := NewDefault("x")
	if got := l.WithContext(context.Background()); got != l {
		t.Error("expected the same logger when context carries no request id")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info")
	l.WithError(context.Canceled).Error("failed")

	m := decodeLine(t, &buf)
	if m["error"] != "context canceled" {
		t.Errorf("expected error field, got %v", m["error"])
	}
}

func TestNop(t *testing.T) {
	Nop().Error("dropped", Fields("k", "v"))
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "solrctl", &buf)
	l.Info("ready")
	out := buf.String()
	if !strings.Contains(out, "[SOL][INF]") {
		t.Errorf("expected service and level tags, got %q", out)
	}
	if !strings.Contains(out, "ready") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestOutputWriter(t *testing.T) {
	file := filepath.Join(t.TempDir(), "solr.log")
	cfg := &Config{Output: file, MaxSize: 5, MaxBackups: 2, MaxAge: 1}

	w, ok := outputWriter(cfg).(*lumberjack.Logger)
	if !ok {
		t.Fatalf("expected lumberjack writer for file output, got %T", outputWriter(cfg))
	}
	if w.Filename != file || w.MaxSize != 5 || w.MaxBackups != 2 {
		t.Errorf("rotation settings not propagated: %+v", w)
	}
	if !cfg.IsFile() {
		t.Error("expected IsFile for a path output")
	}
	if (&Config{Output: OutputStderr}).IsFile() {
		t.Error("stderr is not a file output")
	}
}

func TestGlobalLogger(t *testing.T) {
	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger to be created")
	}

	custom := Nop()
	SetGlobalLogger(custom)
	if GetGlobalLogger() != custom {
		t.Error("expected SetGlobalLogger to set the global logger")
	}

	Init(Config{Level: "debug", Format: "json", Output: OutputStderr})
	if GetGlobalLogger() == custom {
		t.Error("expected Init to replace the global logger")
	}
	if WithComponent("client") == nil {
		t.Error("expected component logger")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != OutputStdout {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if cfg.MaxSize != 100 || cfg.MaxBackups != 3 || cfg.MaxAge != 28 {
		t.Errorf("unexpected rotation defaults: %+v", cfg)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"valid console", Config{Level: "debug", Format: "console"}, false},
		{"valid pretty", Config{Level: "trace", Format: "pretty"}, false},
		{"invalid level", Config{Level: "bad", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "xml"}, true},
		{"negative rotation", Config{Level: "info", Format: "json", MaxAge: -1}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in   string
		keep int
		want string
	}{
		{"", 3, ""},
		{"ab", 3, "***"},
		{"s3cr3t-token", 3, "s3c***"},
		{"anything", 0, "***"},
	}
	for _, tt := range tests {
		if got := MaskSecret(tt.in, tt.keep); got != tt.want {
			t.Errorf("MaskSecret(%q, %d) = %q, want %q", tt.in, tt.keep, got, tt.want)
		}
	}
}
