package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evolve-go/pkg/storage"
)

func newListCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived evolution runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewSQLiteReportStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runIDs, err := store.List()
			if err != nil {
				return err
			}
			if len(runIDs) == 0 {
				fmt.Println("no archived runs")
				return nil
			}
			for _, runID := range runIDs {
				fmt.Println(runID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dbPath, "db", "d", "evolve.db", "report archive path")
	return cmd
}

func newShowCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the archived report for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewSQLiteReportStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := store.Get(args[0])
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(report)
		},
	}

	cmd.Flags().StringVarP(&dbPath, "db", "d", "evolve.db", "report archive path")
	return cmd
}
