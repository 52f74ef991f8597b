package loghandler

import (
	"bytes"
	"log/slog"
	"regexp"
	"strings"
	"testing"
)

var timestampPrefix = regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2} `)

func TestCompactHandler_TagAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo))

	logger.Info("connected to Postgres", "tag", "storage", "pool", 4)

	line := buf.String()
	if !timestampPrefix.MatchString(line) {
		t.Fatalf("missing timestamp prefix: %q", line)
	}
	rest := timestampPrefix.ReplaceAllString(line, "")
	if rest != "[storage] connected to Postgres pool=4\n" {
		t.Errorf("unexpected line body %q", rest)
	}
}

func TestCompactHandler_LevelMarkerAndFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Warn("slow query", "tag", "storage")
	logger.Error("insert failed")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	if !strings.Contains(out, "WARN [storage] slow query") {
		t.Errorf("expected warn marker before tag, got %q", out)
	}
	if !strings.Contains(out, "ERROR insert failed") {
		t.Errorf("expected error marker, got %q", out)
	}
}

func TestCompactHandler_WithAttrsCarriesTag(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelDebug)).With("tag", "api")

	logger.WithGroup("req").Info("handled", "status", 200)

	rest := timestampPrefix.ReplaceAllString(buf.String(), "")
	if rest != "[api] handled req.status=200\n" {
		t.Errorf("unexpected line body %q", rest)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
