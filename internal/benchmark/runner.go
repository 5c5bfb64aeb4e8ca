// Package benchmark orchestrates HotpotQA evaluation: it downloads and
// loads the dataset, swaps the engine's retrieval stage for the
// dataset-appropriate retriever, runs every question through the
// engine, and averages exact-match and F1 over the batch.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stellarlinkco/hotpot-eval/internal/engine"
	"github.com/stellarlinkco/hotpot-eval/internal/history"
	"github.com/stellarlinkco/hotpot-eval/internal/hotpot"
	"github.com/stellarlinkco/hotpot-eval/internal/retrieve"
	"github.com/stellarlinkco/hotpot-eval/internal/scoring"
)

// Runner evaluates a query engine against HotpotQA datasets.
type Runner struct {
	Engine   engine.QueryEngine
	CacheDir string

	// Client is used for dataset downloads and fullwiki retrieval.
	Client *http.Client

	// ColbertEndpoint and TopK configure the fullwiki retriever.
	ColbertEndpoint string
	TopK            int

	// Store, when set, records the aggregate of each run.
	Store *history.Store
	Model string

	// Out receives progress and per-question output; defaults to
	// io.Discard.
	Out        io.Writer
	ShowResult bool
}

// Params selects what to evaluate. Fraction, when positive, overrides
// Queries.
type Params struct {
	Dataset  string
	Queries  int
	Fraction float64
}

// Result is the scored outcome of one dataset run.
type Result struct {
	Dataset    string
	ExactMatch float64
	F1         float64
	Questions  []QuestionResult
}

// QuestionResult is the per-question breakdown.
type QuestionResult struct {
	ID         string
	Question   string
	Response   string
	Answer     string
	ExactMatch bool
	F1         float64
	Precision  float64
	Recall     float64
}

// ScoreMap returns the aggregate scores in the conventional
// {"exact_match", "f1"} form.
func (r *Result) ScoreMap() map[string]float64 {
	if r == nil {
		return nil
	}
	return map[string]float64{
		"exact_match": r.ExactMatch,
		"f1":          r.F1,
	}
}

// Run evaluates one dataset and returns the aggregate result. All
// failures are fatal to the run; nothing is retried.
func (r *Runner) Run(ctx context.Context, p Params) (*Result, error) {
	if r == nil {
		return nil, errors.New("benchmark: nil runner")
	}
	if ctx == nil {
		return nil, errors.New("benchmark: nil context")
	}
	if r.Engine == nil {
		return nil, errors.New("benchmark: nil query engine")
	}

	name := strings.TrimSpace(p.Dataset)
	if !hotpot.Supported(name) {
		return nil, fmt.Errorf("benchmark: dataset %q is not supported (expected %s or %s)",
			name, hotpot.DatasetDistractor, hotpot.DatasetFullwiki)
	}

	out := r.Out
	if out == nil {
		out = io.Discard
	}
	fmt.Fprintf(out, "Evaluating on dataset: %s\n", name)
	fmt.Fprintln(out, "-------------------------------------")

	dl := &hotpot.Downloader{CacheDir: r.CacheDir, Client: r.Client}
	path, err := dl.Download(ctx, name)
	if err != nil {
		return nil, err
	}

	questions, stats, err := hotpot.Load(path, p.Queries, p.Fraction)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Loading %d queries out of %d (fraction: %g)\n",
		stats.Loaded, stats.Total, stats.Fraction)

	retriever, err := r.retrieverFor(name, questions)
	if err != nil {
		return nil, err
	}

	eng, err := engine.ReplaceRetriever(r.Engine, retriever)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Dataset:   name,
		Questions: make([]QuestionResult, 0, len(questions)),
	}

	var sumEM, sumF1 float64
	for _, q := range questions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		response, err := eng.Query(ctx, q.Question)
		if err != nil {
			return nil, fmt.Errorf("benchmark: query %q: %w", q.Question, err)
		}

		em := scoring.ExactMatch(response, q.Answer)
		f1, precision, recall := scoring.F1(response, q.Answer)

		if em {
			sumEM++
		}
		sumF1 += f1

		res.Questions = append(res.Questions, QuestionResult{
			ID:         q.ID,
			Question:   q.Question,
			Response:   response,
			Answer:     q.Answer,
			ExactMatch: em,
			F1:         f1,
			Precision:  precision,
			Recall:     recall,
		})

		if r.ShowResult {
			fmt.Fprintf(out, "Question: %s\n", q.Question)
			fmt.Fprintf(out, "Response: %s\n", response)
			fmt.Fprintf(out, "Correct answer: %s\n", q.Answer)
			fmt.Fprintf(out, "EM: %d F1: %.4f\n", boolToInt(em), f1)
			fmt.Fprintln(out, "-------------------------------------")
		}
	}

	n := float64(len(res.Questions))
	if n > 0 {
		res.ExactMatch = sumEM / n
		res.F1 = sumF1 / n
	}
	fmt.Fprintf(out, "Scores: {\"exact_match\": %.4f, \"f1\": %.4f}\n", res.ExactMatch, res.F1)

	if r.Store != nil {
		run := &history.Run{
			Dataset:    name,
			Model:      strings.TrimSpace(r.Model),
			Queries:    len(res.Questions),
			ExactMatch: res.ExactMatch,
			F1:         res.F1,
			EvalDate:   time.Now().UTC(),
		}
		if err := r.Store.Save(ctx, run); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// RunAll evaluates each dataset in order, mirroring the batch form of
// the benchmark where several settings are scored in one invocation.
func (r *Runner) RunAll(ctx context.Context, datasets []string, queries int, fraction float64) ([]*Result, error) {
	if len(datasets) == 0 {
		return nil, errors.New("benchmark: no datasets given")
	}

	out := make([]*Result, 0, len(datasets))
	for _, ds := range datasets {
		res, err := r.Run(ctx, Params{Dataset: ds, Queries: queries, Fraction: fraction})
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *Runner) retrieverFor(dataset string, questions []hotpot.Question) (retrieve.Retriever, error) {
	switch dataset {
	case hotpot.DatasetDistractor:
		return retrieve.NewDistractorRetriever(questions)
	case hotpot.DatasetFullwiki:
		return &retrieve.ColbertRetriever{
			Endpoint: r.ColbertEndpoint,
			TopK:     r.TopK,
			Client:   r.Client,
		}, nil
	default:
		return nil, fmt.Errorf("benchmark: no retriever for dataset %q", dataset)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
