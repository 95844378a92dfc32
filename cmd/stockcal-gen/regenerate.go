package main

import (
	"fmt"
	"strings"

	"github.com/leeaandrob/stockcal/internal/models"
	"github.com/leeaandrob/stockcal/internal/update"
	"github.com/spf13/cobra"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Regenerate datasets from the AI model and publish them",
	Long: `Regenerate the hot-trends and strategies datasets, then commit and push
the rewritten files.

A dataset whose generation fails keeps its previous file. The command exits
non-zero if any dataset or the publish step failed.

Examples:
  stockcal-gen regenerate                      # Both datasets
  stockcal-gen regenerate --kind hot-trends    # One dataset
  stockcal-gen regenerate --no-publish         # Skip git
  stockcal-gen regenerate --no-push            # Commit locally only`,
	Args: cobra.NoArgs,
	RunE: runRegenerate,
}

func init() {
	rootCmd.AddCommand(regenerateCmd)

	regenerateCmd.Flags().String("kind", "all", "comma-separated datasets to regenerate (hot-trends, strategies, all)")
	regenerateCmd.Flags().Bool("no-publish", false, "write the files without committing")
	regenerateCmd.Flags().Bool("no-push", false, "commit without pushing")
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	kindList, _ := cmd.Flags().GetString("kind")
	noPublish, _ := cmd.Flags().GetBool("no-publish")
	noPush, _ := cmd.Flags().GetBool("no-push")

	kinds, err := parseGeneratedKinds(strings.Split(kindList, ","))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	updater, closeLedger, err := newUpdater(ctx, cfg.PublishEnabled && !noPublish, !noPush)
	if err != nil {
		return err
	}
	defer closeLedger()

	report, runErr := updater.Run(ctx, "manual", kinds...)
	if report != nil {
		printReport(cmd, report)
	}
	return runErr
}

// parseGeneratedKinds resolves --kind values. "all" expands to every
// AI-generated dataset; events are rejected.
func parseGeneratedKinds(names []string) ([]models.Kind, error) {
	var kinds []models.Kind
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if name == "all" {
			kinds = append(kinds, models.GeneratedKinds...)
			continue
		}
		kind, err := models.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if !kind.Generated() {
			return nil, fmt.Errorf("%s is edited by hand and cannot be regenerated", kind)
		}
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no datasets selected")
	}
	return kinds, nil
}

func printReport(cmd *cobra.Command, report *update.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s\n", report.RunID)
	for _, rec := range report.Records {
		line := fmt.Sprintf("  %-12s %-16s items=%d", rec.Kind, rec.Status, rec.Items)
		if rec.Error != "" {
			line += " error=" + rec.Error
		}
		fmt.Fprintln(out, line)
	}
	if p := report.Publish; p != nil {
		switch {
		case !p.Changed:
			fmt.Fprintln(out, "  publish: nothing changed")
		case p.Pushed:
			fmt.Fprintf(out, "  publish: %s pushed\n", shortCommit(p.Commit))
		default:
			fmt.Fprintf(out, "  publish: %s committed\n", shortCommit(p.Commit))
		}
	}
}

func shortCommit(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
