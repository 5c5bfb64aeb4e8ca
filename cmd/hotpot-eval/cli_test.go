package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stellarlinkco/hotpot-eval/internal/config"
)

func TestScoreCmd(t *testing.T) {
	root := newRootCmd()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"score", "The Cat", "cat"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "exact_match=1") {
		t.Fatalf("output: %q", text)
	}
	if !strings.Contains(text, `normalized prediction:   "cat"`) {
		t.Fatalf("output: %q", text)
	}
}

func TestScoreCmd_ArgCount(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"score", "only-one"})

	if err := root.Execute(); err == nil {
		t.Fatalf("expected arg error")
	}
}

func TestRunCmd_RejectsBadFlags(t *testing.T) {
	st := &cliState{cfg: config.Default()}

	if err := runBenchmark(newRunCmd(st), st, &runOptions{queries: -1}); err == nil {
		t.Fatalf("expected error for negative queries")
	}
	if err := runBenchmark(newRunCmd(st), st, &runOptions{fraction: 1.5}); err == nil {
		t.Fatalf("expected error for fraction > 1")
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

	cfg.Storage.Type = "bolt"
	if _, err := openHistoryStore(cfg); err == nil {
		t.Fatalf("expected error for unsupported storage type")
	}

	if _, err := openHistoryStore(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestResolveProvider(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Providers = map[string]config.ProviderConfig{
		"claude": {APIKey: "k", Model: "claude-model"},
	}

	p, model, err := resolveProvider(cfg, "", "")
	if err != nil {
		t.Fatalf("resolveProvider: %v", err)
	}
	if p.Name() != "claude" || model != "claude-model" {
		t.Fatalf("got %q / %q", p.Name(), model)
	}

	_, model, err = resolveProvider(cfg, "claude", "override-model")
	if err != nil {
		t.Fatalf("resolveProvider: %v", err)
	}
	if model != "override-model" {
		t.Fatalf("model: got %q", model)
	}

	if _, _, err := resolveProvider(cfg, "nonexistent", ""); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestResolveProvider_AnthropicAlias(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Providers = map[string]config.ProviderConfig{
		"claude": {APIKey: "k", Model: "claude-model"},
	}

	// The alias must resolve to the same config entry as "claude",
	// including when a model override is applied.
	p, model, err := resolveProvider(cfg, "anthropic", "override-model")
	if err != nil {
		t.Fatalf("resolveProvider: %v", err)
	}
	if p.Name() != "claude" {
		t.Fatalf("provider: got %q", p.Name())
	}
	if model != "override-model" {
		t.Fatalf("model: got %q", model)
	}
	if got := cfg.LLM.Providers["claude"].Model; got != "override-model" {
		t.Fatalf("claude config model: got %q", got)
	}
	if _, ok := cfg.LLM.Providers["anthropic"]; ok {
		t.Fatalf("override written under alias key")
	}

	p, model, err = resolveProvider(cfg, "anthropic", "")
	if err != nil {
		t.Fatalf("resolveProvider: %v", err)
	}
	if p.Name() != "claude" || model != "override-model" {
		t.Fatalf("got %q / %q", p.Name(), model)
	}
}
