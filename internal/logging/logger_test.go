package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"equalmedia/internal/config"
	"equalmedia/internal/logging"
	"equalmedia/internal/services"
)

func TestNewFromConfigWritesJSONLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("daemon started", logging.String("socket", "/tmp/x.sock"))

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("log file should hold JSON lines: %v (%q)", err, content)
	}
	if record["msg"] != "daemon started" || record["level"] != "info" {
		t.Fatalf("unexpected record: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", OutputPaths: []string{filepath.Join(t.TempDir(), "x.log")}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerHighlightsComponentAndFeature(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWriterLogger(&buf, "console", "info")
	if err != nil {
		t.Fatalf("NewWriterLogger: %v", err)
	}
	ctx := services.WithFeature(services.WithRequestID(context.Background(), "req-1"), "captions")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "documentproxy")).
		Info("captions inserted", logging.Int("inserted", 3), logging.String("note", "two words"))

	line := buf.String()
	for _, want := range []string{
		" INFO documentproxy: captions inserted",
		"[feature=captions]",
		"correlation_id=req-1",
		"inserted=3",
		`note="two words"`,
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestWarnWithContextFillsRequiredFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWriterLogger(&buf, "json", "info")
	if err != nil {
		t.Fatalf("NewWriterLogger: %v", err)
	}
	logging.WarnWithContext(logger, "caption insert failed", "caption_insert_failed",
		logging.String(logging.FieldImpact, "caption 2 missing from document"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[logging.FieldEventType] != "caption_insert_failed" {
		t.Fatalf("unexpected event type: %v", record)
	}
	if record[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default hint: %v", record)
	}
	if record[logging.FieldImpact] != "caption 2 missing from document" {
		t.Fatalf("explicit impact should be preserved: %v", record)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should be disabled at every level")
	}
	logging.WarnWithContext(nil, "ignored", "noop")
}
