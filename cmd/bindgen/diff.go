package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/bindgen"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old-run> <new-run>",
	Short: "Compare two persisted runs declaration by declaration",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	e, err := newStoreEngine(cmd)
	if err != nil {
		return outputError(w, "diff", err)
	}
	defer e.Close()

	d, err := e.Diff(args[0], args[1])
	if err != nil {
		return outputError(w, "diff", err)
	}
	return outputResult(w, CLIResult{Command: "diff", Results: diffToCLI(d)})
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs")
}

func runRuns(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	e, err := newStoreEngine(cmd)
	if err != nil {
		return outputError(w, "runs", err)
	}
	defer e.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := e.Runs(limit)
	if err != nil {
		return outputError(w, "runs", err)
	}
	out := make([]CLIRun, 0, len(runs))
	for _, r := range runs {
		out = append(out, CLIRun{
			ID:             r.ID,
			Module:         r.Module,
			ImplicitExport: r.ImplicitExport,
			CreatedAt:      r.CreatedAt,
			ErrorCount:     r.ErrorCount,
			WarningCount:   r.WarningCount,
		})
	}
	return outputResult(w, CLIResult{Command: "runs", Results: out, TotalCount: intPtr(len(out))})
}

// newStoreEngine is newEngine for commands that only make sense with a
// database.
func newStoreEngine(cmd *cobra.Command) (*bindgen.Engine, error) {
	if cfg.DB == "" {
		return nil, fmt.Errorf("no database: pass --db or set db in %s", flagConfig)
	}
	return newEngine(cmd)
}

func diffToCLI(d *bindgen.RunDiff) CLIDiff {
	conv := func(entries []bindgen.DiffEntry) []CLIDiffEntry {
		out := make([]CLIDiffEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, CLIDiffEntry{QName: e.QName, Kind: e.Kind, Key: e.Key})
		}
		return out
	}
	return CLIDiff{
		Old:     d.OldRunID,
		New:     d.NewRunID,
		Added:   conv(d.Added),
		Removed: conv(d.Removed),
		Changed: conv(d.Changed),
	}
}
