package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	defer zap.ReplaceGlobals(zap.NewNop())

	logger, err := New("debug", "json")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !logger.Desugar().Core().Enabled(zap.DebugLevel) {
		t.Error("expected debug level enabled")
	}

	logger, err = New("warn", "console")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if logger.Desugar().Core().Enabled(zap.InfoLevel) {
		t.Error("expected info level disabled")
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("loud", "json"); err == nil {
		t.Error("expected error for bad level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Error("expected error for bad format")
	}
}
