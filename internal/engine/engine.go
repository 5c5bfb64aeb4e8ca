// Package engine defines the query-engine collaborators that the
// benchmark drives: a retriever-backed engine that synthesizes answers
// from retrieved passages, and a multi-step wrapper that refines the
// question before delegating. Retriever substitution walks engine
// composition through small capability interfaces instead of concrete
// type switches.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stellarlinkco/hotpot-eval/internal/llm"
	"github.com/stellarlinkco/hotpot-eval/internal/retrieve"
)

// QueryEngine answers a natural-language question.
type QueryEngine interface {
	Query(ctx context.Context, question string) (string, error)
}

// RetrieverBacked is implemented by engines whose retrieval stage can
// be swapped out. WithRetriever returns a copy; the receiver is left
// untouched.
type RetrieverBacked interface {
	QueryEngine
	WithRetriever(r retrieve.Retriever) QueryEngine
}

// Composite is implemented by engines that wrap an inner engine.
type Composite interface {
	QueryEngine
	Inner() QueryEngine
	WithInner(inner QueryEngine) QueryEngine
}

// ReplaceRetriever returns a copy of e with its innermost retrieval
// stage replaced by r, recursing through Composite wrappers. An engine
// implementing neither capability is an error.
func ReplaceRetriever(e QueryEngine, r retrieve.Retriever) (QueryEngine, error) {
	if e == nil {
		return nil, errors.New("engine: nil query engine")
	}
	if r == nil {
		return nil, errors.New("engine: nil retriever")
	}

	switch v := e.(type) {
	case RetrieverBacked:
		return v.WithRetriever(r), nil
	case Composite:
		inner, err := ReplaceRetriever(v.Inner(), r)
		if err != nil {
			return nil, err
		}
		return v.WithInner(inner), nil
	default:
		return nil, fmt.Errorf("engine: %T does not support retriever substitution", e)
	}
}

const answerSystemPrompt = "You answer questions using only the provided context passages. " +
	"Reply with the shortest answer span that is correct; answer yes or no for yes/no questions. " +
	"Do not explain."

// RetrieverEngine retrieves passages for the question and asks the
// provider for a concise answer grounded in them.
type RetrieverEngine struct {
	Retriever retrieve.Retriever
	Provider  llm.Provider
	MaxTokens int
}

// WithRetriever returns a copy using r as the retrieval stage.
func (e *RetrieverEngine) WithRetriever(r retrieve.Retriever) QueryEngine {
	if e == nil {
		return &RetrieverEngine{Retriever: r}
	}
	out := *e
	out.Retriever = r
	return &out
}

func (e *RetrieverEngine) Query(ctx context.Context, question string) (string, error) {
	if e == nil {
		return "", errors.New("engine: nil retriever engine")
	}
	if ctx == nil {
		return "", errors.New("engine: nil context")
	}
	if e.Retriever == nil {
		return "", errors.New("engine: no retriever configured")
	}
	if e.Provider == nil {
		return "", errors.New("engine: no llm provider configured")
	}

	nodes, err := e.Retriever.Retrieve(ctx, question)
	if err != nil {
		return "", err
	}

	maxTokens := e.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}

	resp, err := e.Provider.Complete(ctx, &llm.Request{
		System:      answerSystemPrompt,
		Messages:    []llm.Message{{Role: "user", Content: buildAnswerPrompt(question, nodes)}},
		MaxTokens:   maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("engine: nil llm response")
	}
	return strings.TrimSpace(resp.Text), nil
}

func buildAnswerPrompt(question string, nodes []retrieve.Node) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	for _, n := range nodes {
		if title := strings.TrimSpace(n.Title); title != "" {
			sb.WriteString("## ")
			sb.WriteString(title)
			sb.WriteByte('\n')
		}
		sb.WriteString(n.Text)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\nAnswer:")
	return sb.String()
}
