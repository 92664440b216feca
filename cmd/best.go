package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flocksim/flocksim/sim/sweep"
)

// bestCmd prints the best row of a sweep results file
var bestCmd = &cobra.Command{
	Use:   "best <results.csv>",
	Short: "Print the gain vector with the highest average coverage",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		best, err := sweep.FindBest(args[0])
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Best gains: k_coh=%v, k_ali=%v, k_col=%v\n",
			best.Gains.Cohesion, best.Gains.Alignment, best.Gains.Separation)
		fmt.Fprintf(out, "Average coverage: %.2f%%\n", best.Average)
	},
}

func init() {
	rootCmd.AddCommand(bestCmd)
}
