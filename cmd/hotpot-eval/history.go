package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type historyOptions struct {
	dataset string
	limit   int
}

func newHistoryCmd(st *cliState) *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded benchmark runs",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return st.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.dataset, "dataset", "", "filter by dataset name")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "maximum runs to list (0 = default)")

	return cmd
}

func runHistory(cmd *cobra.Command, st *cliState, opts *historyOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("history: missing config (internal error)")
	}
	if opts.limit < 0 {
		return fmt.Errorf("history: --limit must be >= 0 (got %d)", opts.limit)
	}

	store, err := openHistoryStore(st.cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(context.Background(), opts.dataset, opts.limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no recorded runs")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(out, "id=%d date=%s dataset=%s model=%s queries=%d exact_match=%.4f f1=%.4f\n",
			r.ID,
			r.EvalDate.Format("2006-01-02 15:04"),
			r.Dataset,
			strings.TrimSpace(r.Model),
			r.Queries,
			r.ExactMatch,
			r.F1,
		)
	}
	return nil
}
