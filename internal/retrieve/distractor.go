package retrieve

import (
	"context"
	"errors"
	"fmt"

	"github.com/stellarlinkco/hotpot-eval/internal/hotpot"
)

// DistractorRetriever serves the pre-supplied context paragraphs of the
// HotpotQA distractor setting, keyed by exact question text. It only
// answers for questions it was built from; anything else is a lookup
// failure, never a fallback.
type DistractorRetriever struct {
	byQuestion map[string]hotpot.Question
}

// NewDistractorRetriever indexes the given questions by question text.
func NewDistractorRetriever(questions []hotpot.Question) (*DistractorRetriever, error) {
	if len(questions) == 0 {
		return nil, errors.New("retrieve: no questions to index")
	}

	byQuestion := make(map[string]hotpot.Question, len(questions))
	for _, q := range questions {
		byQuestion[q.Question] = q
	}
	return &DistractorRetriever{byQuestion: byQuestion}, nil
}

// Retrieve returns one node per context paragraph of the matching
// question, each with score 1.0.
func (r *DistractorRetriever) Retrieve(ctx context.Context, query string) ([]Node, error) {
	if r == nil || r.byQuestion == nil {
		return nil, errors.New("retrieve: nil distractor retriever")
	}
	if ctx == nil {
		return nil, errors.New("retrieve: nil context")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, ok := r.byQuestion[query]
	if !ok {
		return nil, fmt.Errorf("retrieve: question %q not in preloaded set", query)
	}

	nodes := make([]Node, 0, len(q.Context))
	for _, p := range q.Context {
		nodes = append(nodes, Node{
			Title: p.Title,
			Text:  p.Text(),
			Score: 1.0,
		})
	}
	return nodes, nil
}
