package llm

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stellarlinkco/hotpot-eval/internal/config"
)

// FromConfig builds the provider named by cfg.LLM.DefaultProvider.
func FromConfig(cfg *config.Config) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}

	name := CanonicalProviderName(cfg.LLM.DefaultProvider)
	if name == "" {
		name = "claude"
	}
	return Named(cfg, name)
}

// Named builds the provider with the given name from cfg.
func Named(cfg *config.Config, name string) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}

	key := CanonicalProviderName(name)
	pcfg, ok := cfg.LLM.Providers[key]
	if !ok {
		available := make([]string, 0, len(cfg.LLM.Providers))
		for k := range cfg.LLM.Providers {
			available = append(available, k)
		}
		sort.Strings(available)
		return nil, fmt.Errorf("llm: provider %q not configured (available: %s)", key, strings.Join(available, ", "))
	}

	switch key {
	case "claude":
		return NewClaudeProvider(pcfg.APIKey, pcfg.BaseURL, pcfg.Model), nil
	case "openai":
		return NewOpenAIProvider(pcfg.APIKey, pcfg.BaseURL, pcfg.Model), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", key)
	}
}

// CanonicalProviderName maps provider aliases to the configuration
// key the factory looks up ("anthropic" is an alias for "claude").
func CanonicalProviderName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "anthropic" {
		return "claude"
	}
	return name
}
