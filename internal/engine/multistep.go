package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/stellarlinkco/hotpot-eval/internal/llm"
)

const refineSystemPrompt = "You rewrite multi-hop questions into a single self-contained question " +
	"that is easier to answer from retrieved passages. Reply with the rewritten question only."

// MultiStepEngine wraps an inner engine and asks the provider to
// rewrite the question before delegating. The retrieval stage lives in
// the innermost engine; substitution reaches it through Inner /
// WithInner.
type MultiStepEngine struct {
	Engine   QueryEngine
	Provider llm.Provider
}

func (e *MultiStepEngine) Inner() QueryEngine {
	if e == nil {
		return nil
	}
	return e.Engine
}

// WithInner returns a copy wrapping the given engine.
func (e *MultiStepEngine) WithInner(inner QueryEngine) QueryEngine {
	if e == nil {
		return &MultiStepEngine{Engine: inner}
	}
	out := *e
	out.Engine = inner
	return &out
}

func (e *MultiStepEngine) Query(ctx context.Context, question string) (string, error) {
	if e == nil {
		return "", errors.New("engine: nil multistep engine")
	}
	if ctx == nil {
		return "", errors.New("engine: nil context")
	}
	if e.Engine == nil {
		return "", errors.New("engine: multistep has no inner engine")
	}

	refined := question
	if e.Provider != nil {
		resp, err := e.Provider.Complete(ctx, &llm.Request{
			System:      refineSystemPrompt,
			Messages:    []llm.Message{{Role: "user", Content: question}},
			MaxTokens:   256,
			Temperature: 0,
		})
		if err != nil {
			return "", err
		}
		if resp != nil && strings.TrimSpace(resp.Text) != "" {
			refined = strings.TrimSpace(resp.Text)
		}
	}

	return e.Engine.Query(ctx, refined)
}
