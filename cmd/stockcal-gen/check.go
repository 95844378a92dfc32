package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/leeaandrob/stockcal/internal/dataset"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether each dataset file is servable",
	Long: `Load every dataset file and report its record count and updatedAt.

For the events calendar, events dated outside the current three-month
window are counted as stale. Nothing is modified. Exits non-zero when a
dataset would be served as unavailable.

Examples:
  stockcal-gen check
  stockcal-gen check --json`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("json", false, "output as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	statuses := dataset.NewStore(cfg.DataDir).Check(time.Now().In(loc))

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(statuses); err != nil {
			return err
		}
	} else {
		for _, st := range statuses {
			if !st.OK {
				fmt.Fprintf(out, "%-12s UNAVAILABLE  %s\n", st.Kind, st.Error)
				continue
			}
			line := fmt.Sprintf("%-12s ok           updatedAt=%s records=%d", st.Kind, st.UpdatedAt, st.Records)
			if st.Stale > 0 {
				line += fmt.Sprintf(" stale=%d", st.Stale)
			}
			fmt.Fprintln(out, line)
		}
	}

	var unavailable int
	for _, st := range statuses {
		if !st.OK {
			unavailable++
		}
	}
	if unavailable > 0 {
		return fmt.Errorf("%d of %d datasets unavailable", unavailable, len(statuses))
	}
	return nil
}
