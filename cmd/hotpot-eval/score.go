package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/hotpot-eval/internal/scoring"
)

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <prediction> <ground-truth>",
		Short: "Score a single prediction against a ground-truth answer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prediction, groundTruth := args[0], args[1]

			em := scoring.ExactMatch(prediction, groundTruth)
			f1, precision, recall := scoring.F1(prediction, groundTruth)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "normalized prediction:   %q\n", scoring.Normalize(prediction))
			fmt.Fprintf(out, "normalized ground truth: %q\n", scoring.Normalize(groundTruth))
			fmt.Fprintf(out, "exact_match=%d f1=%.4f precision=%.4f recall=%.4f\n",
				boolToInt(em), f1, precision, recall)
			return nil
		},
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
