// evolve-cli runs hypothesis evolution against a built-in demonstration task
// and manages the report archive.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "evolve-cli",
	Short: "Genetic search over candidate hypotheses",
	Long: `evolve-cli evolves a population of hypotheses that try to explain an
input-to-output transformation. Each generation is scored on accuracy,
generalizability, simplicity, consistency, novelty and explanatory power,
then recombined through elitism, tournament selection, crossover and
mutation.

Runs produce a JSON report; with an archive database configured the report
is stored under its run ID for later inspection.`,
	Version: "0.1.0",
}

func main() {
	rootCmd.AddCommand(newRunCmd(), newListCmd(), newShowCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
