package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stellarlinkco/hotpot-eval/internal/llm"
	"github.com/stellarlinkco/hotpot-eval/internal/retrieve"
)

type fakeRetriever struct {
	nodes []retrieve.Node
	err   error
	last  string
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string) ([]retrieve.Node, error) {
	f.last = query
	return f.nodes, f.err
}

type fakeProvider struct {
	text string
	err  error
	last *llm.Request
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Text: f.text}, nil
}

// bareEngine supports neither substitution capability.
type bareEngine struct{}

func (bareEngine) Query(ctx context.Context, question string) (string, error) {
	return "", nil
}

func TestRetrieverEngine_Query(t *testing.T) {
	r := &fakeRetriever{nodes: []retrieve.Node{
		{Title: "Doc", Text: "Alice wrote the book.", Score: 1.0},
	}}
	p := &fakeProvider{text: " Alice \n"}

	e := &RetrieverEngine{Retriever: r, Provider: p}

	got, err := e.Query(context.Background(), "Who wrote the book?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got != "Alice" {
		t.Fatalf("answer: got %q", got)
	}
	if r.last != "Who wrote the book?" {
		t.Fatalf("retriever query: got %q", r.last)
	}

	prompt := p.last.Messages[0].Content
	if !strings.Contains(prompt, "Alice wrote the book.") {
		t.Fatalf("prompt missing context: %q", prompt)
	}
	if !strings.Contains(prompt, "## Doc") {
		t.Fatalf("prompt missing title: %q", prompt)
	}
}

func TestRetrieverEngine_RetrieverError(t *testing.T) {
	wantErr := errors.New("boom")
	e := &RetrieverEngine{
		Retriever: &fakeRetriever{err: wantErr},
		Provider:  &fakeProvider{},
	}

	_, err := e.Query(context.Background(), "q")
	if !errors.Is(err, wantErr) {
		t.Fatalf("err=%v", err)
	}
}

func TestRetrieverEngine_MissingCollaborators(t *testing.T) {
	e := &RetrieverEngine{Provider: &fakeProvider{}}
	if _, err := e.Query(context.Background(), "q"); err == nil {
		t.Fatalf("expected error without retriever")
	}

	e = &RetrieverEngine{Retriever: &fakeRetriever{}}
	if _, err := e.Query(context.Background(), "q"); err == nil {
		t.Fatalf("expected error without provider")
	}
}

func TestReplaceRetriever_Direct(t *testing.T) {
	orig := &RetrieverEngine{Retriever: &fakeRetriever{}, Provider: &fakeProvider{text: "x"}}
	sub := &fakeRetriever{nodes: []retrieve.Node{{Text: "ctx"}}}

	replaced, err := ReplaceRetriever(orig, sub)
	if err != nil {
		t.Fatalf("ReplaceRetriever: %v", err)
	}

	re, ok := replaced.(*RetrieverEngine)
	if !ok {
		t.Fatalf("got %T", replaced)
	}
	if re.Retriever != retrieve.Retriever(sub) {
		t.Fatalf("retriever not substituted")
	}
	if orig.Retriever == retrieve.Retriever(sub) {
		t.Fatalf("original engine mutated")
	}
}

func TestReplaceRetriever_ThroughMultiStep(t *testing.T) {
	inner := &RetrieverEngine{Retriever: &fakeRetriever{}, Provider: &fakeProvider{text: "x"}}
	wrapped := &MultiStepEngine{Engine: &MultiStepEngine{Engine: inner}}
	sub := &fakeRetriever{}

	replaced, err := ReplaceRetriever(wrapped, sub)
	if err != nil {
		t.Fatalf("ReplaceRetriever: %v", err)
	}

	outer, ok := replaced.(*MultiStepEngine)
	if !ok {
		t.Fatalf("got %T", replaced)
	}
	mid, ok := outer.Inner().(*MultiStepEngine)
	if !ok {
		t.Fatalf("inner: got %T", outer.Inner())
	}
	re, ok := mid.Inner().(*RetrieverEngine)
	if !ok {
		t.Fatalf("innermost: got %T", mid.Inner())
	}
	if re.Retriever != retrieve.Retriever(sub) {
		t.Fatalf("innermost retriever not substituted")
	}
	if inner.Retriever == retrieve.Retriever(sub) {
		t.Fatalf("original inner engine mutated")
	}
}

func TestReplaceRetriever_UnsupportedType(t *testing.T) {
	_, err := ReplaceRetriever(bareEngine{}, &fakeRetriever{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "bareEngine") {
		t.Fatalf("error should identify the type: %q", err.Error())
	}
}

func TestReplaceRetriever_NilInputs(t *testing.T) {
	if _, err := ReplaceRetriever(nil, &fakeRetriever{}); err == nil {
		t.Fatalf("expected error for nil engine")
	}
	if _, err := ReplaceRetriever(bareEngine{}, nil); err == nil {
		t.Fatalf("expected error for nil retriever")
	}
}

func TestMultiStepEngine_RefinesQuestion(t *testing.T) {
	r := &fakeRetriever{nodes: []retrieve.Node{{Text: "ctx"}}}
	inner := &RetrieverEngine{Retriever: r, Provider: &fakeProvider{text: "answer"}}
	e := &MultiStepEngine{Engine: inner, Provider: &fakeProvider{text: "rewritten question"}}

	got, err := e.Query(context.Background(), "original question")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got != "answer" {
		t.Fatalf("answer: got %q", got)
	}
	if r.last != "rewritten question" {
		t.Fatalf("inner query: got %q", r.last)
	}
}

func TestMultiStepEngine_NoProviderPassesThrough(t *testing.T) {
	r := &fakeRetriever{nodes: []retrieve.Node{{Text: "ctx"}}}
	inner := &RetrieverEngine{Retriever: r, Provider: &fakeProvider{text: "answer"}}
	e := &MultiStepEngine{Engine: inner}

	if _, err := e.Query(context.Background(), "as asked"); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if r.last != "as asked" {
		t.Fatalf("inner query: got %q", r.last)
	}
}
