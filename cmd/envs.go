package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/flocksim/flocksim/sim"
)

// envsCmd lists the built-in environments
var envsCmd = &cobra.Command{
	Use:   "envs",
	Short: "List built-in environments",
	Run: func(cmd *cobra.Command, args []string) {
		listEnvironments(cmd.OutOrStdout(), sim.DefaultArena())
	},
}

func listEnvironments(out io.Writer, arena sim.Arena) {
	for _, name := range sim.EnvironmentNames() {
		env, err := sim.LookupEnvironment(name, arena)
		if err != nil {
			continue
		}
		fmt.Fprintf(out, "%-16s %-16s %3d obstacles\n", name, env.Name, len(env.Obstacles))
	}
}

func init() {
	rootCmd.AddCommand(envsCmd)
}
