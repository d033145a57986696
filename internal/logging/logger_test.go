// Package logging includes tests for the zap logger helpers.
package logging

import (
	"strings"
	"testing"
	"time"
)

// TestNewLevels confirms each CLI level builds a logger.
func TestNewLevels(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"DEBUG", "info", "WARNING", "error", ""} {
		logger, err := New(level, false)
		if err != nil {
			t.Fatalf("New(%q) error = %v", level, err)
		}
		if logger == nil {
			t.Fatalf("expected logger for level %q", level)
		}
		defer logger.Sync() //nolint:errcheck // best-effort flush
	}
}

// TestNewRejectsUnknownLevel ensures bad levels surface an error.
func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := New("LOUD", false); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

// TestLogFileName checks the timestamped file naming scheme.
func TestLogFileName(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	name := LogFileName(now)
	if !strings.HasPrefix(name, "filehound_20240309_140506") || !strings.HasSuffix(name, ".log") {
		t.Fatalf("unexpected log file name %q", name)
	}
}
