package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewReleaseEmitsStructuredJSON(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "orders.log"})
	log.Info("tracking_updated",
		zap.String("packing_id", "PKG-TECADD0001"),
		zap.String("status", "in_transit"),
	)
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "orders.log"))
	if err != nil {
		t.Fatalf("read log file failed: %v", err)
	}
	line := strings.SplitN(strings.TrimSpace(string(content)), "\n", 2)[0]

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v (line=%s)", err, line)
	}
	if entry["message"] != "tracking_updated" {
		t.Fatalf("unexpected message field: %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", entry["level"])
	}
	if entry["packing_id"] != "PKG-TECADD0001" || entry["status"] != "in_transit" {
		t.Fatalf("expected structured fields in entry, got %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Fatalf("expected time field in entry, got %v", entry)
	}
}

func TestResolveLogFilePathCreatesNestedDir(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "var", "log", "mercato")

	got, err := resolveLogFilePath(Options{Dir: dir})
	if err != nil {
		t.Fatalf("resolve log path failed: %v", err)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("expected default filename, got %s", filepath.Base(got))
	}
	if _, err := os.Stat(got); err != nil {
		t.Fatalf("expected log file touched: %v", err)
	}
}

func TestResolveLogFilePathFailsWhenDirIsFile(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "logs")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("write blocker failed: %v", err)
	}

	if _, err := resolveLogFilePath(Options{Dir: blocker}); err == nil {
		t.Fatalf("expected error when log dir path is a regular file")
	}
}

func TestDebugModeLeavesLogDirEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{Dir: tmpDir, Filename: "debug.log"})
	log.Debug("console-only")
	log.Info("console-only")
	_ = log.Sync()

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("read dir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("debug mode should not touch the log dir, found %d entries", len(entries))
	}
}

func TestNormalizePositiveInt(t *testing.T) {
	cases := []struct {
		value    int
		fallback int
		want     int
	}{
		{0, 7, 7},
		{-3, 7, 7},
		{12, 7, 12},
	}
	for _, tc := range cases {
		if got := normalizePositiveInt(tc.value, tc.fallback); got != tc.want {
			t.Fatalf("normalizePositiveInt(%d, %d) = %d, want %d", tc.value, tc.fallback, got, tc.want)
		}
	}
}
