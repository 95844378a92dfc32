package main

import (
	"encoding/json"
	"fmt"

	"github.com/leeaandrob/stockcal/internal/models"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent regeneration runs",
	Long: `List the newest entries of the run ledger, newest first.

History is only kept across invocations when MONGO_URI is set.

Examples:
  stockcal-gen runs
  stockcal-gen runs --kind strategies --limit 20
  stockcal-gen runs --json`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().String("kind", "", "only show runs for this dataset")
	runsCmd.Flags().Int("limit", 10, "maximum number of runs")
	runsCmd.Flags().Bool("json", false, "output as JSON")
}

func runRuns(cmd *cobra.Command, args []string) error {
	kindName, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var kind models.Kind
	if kindName != "" {
		k, err := models.ParseKind(kindName)
		if err != nil {
			return err
		}
		kind = k
	}
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	ledger, closeLedger, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeLedger()

	runs, err := ledger.GetRecentRuns(cmd.Context(), kind, limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if runs == nil {
			runs = []models.RunRecord{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		line := fmt.Sprintf("%s  %-12s %-16s %s items=%d",
			r.StartedAt.Format("2006-01-02 15:04"), r.Kind, r.Status, r.Trigger, r.Items)
		if r.Commit != "" {
			line += " commit=" + shortCommit(r.Commit)
		}
		if r.Error != "" {
			line += " error=" + r.Error
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
