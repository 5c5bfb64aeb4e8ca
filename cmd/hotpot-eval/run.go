package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/hotpot-eval/internal/benchmark"
	"github.com/stellarlinkco/hotpot-eval/internal/config"
	"github.com/stellarlinkco/hotpot-eval/internal/engine"
	"github.com/stellarlinkco/hotpot-eval/internal/history"
	"github.com/stellarlinkco/hotpot-eval/internal/llm"
)

type runOptions struct {
	datasets   []string
	queries    int
	fraction   float64
	showResult bool
	cacheDir   string
	provider   string
	model      string
	multiStep  bool
	noSave     bool
}

func newRunCmd(st *cliState) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the HotpotQA benchmark against the configured pipeline",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return st.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, st, &opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.datasets, "dataset", []string{"dev_distractor"}, "dataset to evaluate (repeatable): dev_distractor|dev_fullwiki")
	cmd.Flags().IntVar(&opts.queries, "queries", 0, "number of questions to load (0 = config default)")
	cmd.Flags().Float64Var(&opts.fraction, "fraction", 0, "fraction of the dataset to load (overrides --queries)")
	cmd.Flags().BoolVar(&opts.showResult, "show-result", false, "print each question, response, and score")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "dataset cache directory (overrides config)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "llm provider name (overrides config)")
	cmd.Flags().StringVar(&opts.model, "model", "", "model name (overrides config)")
	cmd.Flags().BoolVar(&opts.multiStep, "multistep", false, "wrap the engine in a question-refining step")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "do not record the run in history")

	return cmd
}

func runBenchmark(cmd *cobra.Command, st *cliState, opts *runOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("run: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("run: nil options")
	}
	if opts.queries < 0 {
		return fmt.Errorf("run: --queries must be >= 0 (got %d)", opts.queries)
	}
	if opts.fraction < 0 || opts.fraction > 1 {
		return fmt.Errorf("run: --fraction must be in [0,1] (got %g)", opts.fraction)
	}

	provider, modelName, err := resolveProvider(st.cfg, opts.provider, opts.model)
	if err != nil {
		return err
	}

	var eng engine.QueryEngine = &engine.RetrieverEngine{Provider: provider}
	if opts.multiStep {
		eng = &engine.MultiStepEngine{Engine: eng, Provider: provider}
	}

	var store *history.Store
	if !opts.noSave {
		store, err = openHistoryStore(st.cfg)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	cacheDir := strings.TrimSpace(opts.cacheDir)
	if cacheDir == "" {
		cacheDir = st.cfg.Evaluation.CacheDir
	}
	queries := opts.queries
	if queries == 0 {
		queries = st.cfg.Evaluation.Queries
	}
	fraction := opts.fraction
	if fraction == 0 {
		fraction = st.cfg.Evaluation.Fraction
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &benchmark.Runner{
		Engine:          eng,
		CacheDir:        cacheDir,
		ColbertEndpoint: st.cfg.Retrieval.ColbertEndpoint,
		TopK:            st.cfg.Retrieval.TopK,
		Store:           store,
		Model:           modelName,
		Out:             cmd.OutOrStdout(),
		ShowResult:      opts.showResult || st.cfg.Evaluation.ShowResult,
	}

	_, err = r.RunAll(ctx, opts.datasets, queries, fraction)
	return err
}

func resolveProvider(cfg *config.Config, providerFlag, modelFlag string) (llm.Provider, string, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("run: missing config")
	}

	if model := strings.TrimSpace(modelFlag); model != "" {
		name := strings.TrimSpace(providerFlag)
		if name == "" {
			name = cfg.LLM.DefaultProvider
		}
		key := llm.CanonicalProviderName(name)
		pcfg := cfg.LLM.Providers[key]
		pcfg.Model = model
		cfg.LLM.Providers[key] = pcfg
	}

	var (
		provider llm.Provider
		err      error
	)
	if name := strings.TrimSpace(providerFlag); name != "" {
		provider, err = llm.Named(cfg, name)
	} else {
		provider, err = llm.FromConfig(cfg)
	}
	if err != nil {
		return nil, "", err
	}

	modelName := strings.TrimSpace(modelFlag)
	if modelName == "" {
		name := strings.TrimSpace(providerFlag)
		if name == "" {
			name = cfg.LLM.DefaultProvider
		}
		modelName = strings.TrimSpace(cfg.LLM.Providers[llm.CanonicalProviderName(name)].Model)
	}
	if modelName == "" {
		modelName = "default"
	}

	return provider, modelName, nil
}

func openHistoryStore(cfg *config.Config) (*history.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("history: missing config")
	}

	storageType := strings.ToLower(strings.TrimSpace(cfg.Storage.Type))
	if storageType == "" {
		storageType = "sqlite"
	}

	switch storageType {
	case "sqlite":
		path := strings.TrimSpace(cfg.Storage.Path)
		if path == "" {
			path = history.DefaultSQLitePath
		}
		return history.NewStore(path)
	case "memory":
		return history.NewStore(":memory:")
	default:
		return nil, fmt.Errorf("history: unsupported storage type %q", storageType)
	}
}
