package main

import (
	"bytes"
	"testing"

	"github.com/stellarlinkco/hotpot-eval/internal/config"
)

func captureStderr(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stderrWriter
	stderrWriter = &buf
	t.Cleanup(func() { stderrWriter = old })
	return &buf
}

func TestRunMain_BadFlag(t *testing.T) {
	captureStderr(t)
	if got := runMain([]string{"--no-such-flag"}); got != 2 {
		t.Fatalf("exit: got %d want 2", got)
	}
}

func TestRunMain_Help(t *testing.T) {
	captureStderr(t)
	if got := runMain([]string{"--help"}); got != 0 {
		t.Fatalf("exit: got %d want 0", got)
	}
}

func TestRunMain_BadConfigPath(t *testing.T) {
	buf := captureStderr(t)
	if got := runMain([]string{"--config", "/nonexistent/config.yaml"}); got != 1 {
		t.Fatalf("exit: got %d want 1", got)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected error output")
	}
}

func TestOpenHistoryStore(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Type = "memory"

	st, err := openHistoryStore(cfg)
	if err != nil {
		t.Fatalf("openHistoryStore: %v", err)
	}
	defer st.Close()

	cfg.Storage.Type = "postgres"
	if _, err := openHistoryStore(cfg); err == nil {
		t.Fatalf("expected error for unsupported storage type")
	}
}
