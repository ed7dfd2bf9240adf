package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWithOutputWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prospector.log")

	logger, err := NewWithOutput(true, true, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug("written to file")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	if !strings.Contains(string(data), `"step":"written to file"`) {
		t.Fatalf("expected json entry with step key, got %s", data)
	}
}
