// Package retrieve defines the retrieval stage contract and the two
// retrievers used for HotpotQA evaluation: a deterministic lookup over
// pre-supplied supporting facts (distractor setting) and a remote
// ColBERTv2 Wikipedia endpoint (fullwiki setting).
package retrieve

import "context"

// Node is one retrieved passage with its relevance score.
type Node struct {
	Title string
	Text  string
	Score float64
}

// Retriever produces scored passages for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Node, error)
}
