package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/bindgen"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the resolved model",
	Long:  "Resolves the configured sources (reusing a cached run when a database is configured) and answers questions about the model.",
}

func init() {
	queryCmd.PersistentFlags().String("run", "", "query a persisted run instead of resolving")
	queryCmd.PersistentFlags().StringSlice("source", nil, "inputs to resolve (default: config sources)")

	queryCmd.AddCommand(summaryCmd)
	queryCmd.AddCommand(depsCmd)
	queryCmd.AddCommand(dependentsCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Count declarations by kind",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		res, done, err := queryResult(cmd)
		if err != nil {
			return outputError(w, "summary", err)
		}
		defer done()
		return outputResult(w, CLIResult{Command: "summary", Results: res.Query().Summary()})
	},
}

var depsCmd = &cobra.Command{
	Use:   "deps <qname>",
	Short: "List the declarations a declaration's types reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		res, done, err := queryResult(cmd)
		if err != nil {
			return outputError(w, "deps", err)
		}
		defer done()
		names, err := res.Query().Dependencies(args[0])
		if err != nil {
			return outputError(w, "deps", err)
		}
		return outputResult(w, CLIResult{Command: "deps", Results: CLINames(names), TotalCount: intPtr(len(names))})
	},
}

var dependentsCmd = &cobra.Command{
	Use:   "dependents <qname>",
	Short: "List the declarations whose types reference a declaration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		res, done, err := queryResult(cmd)
		if err != nil {
			return outputError(w, "dependents", err)
		}
		defer done()
		names, err := res.Query().Dependents(args[0])
		if err != nil {
			return outputError(w, "dependents", err)
		}
		return outputResult(w, CLIResult{Command: "dependents", Results: CLINames(names), TotalCount: intPtr(len(names))})
	},
}

// queryResult resolves --source (or the config sources) or loads --run. The
// returned func closes the engine.
func queryResult(cmd *cobra.Command) (*bindgen.Result, func(), error) {
	e, err := newEngine(cmd)
	if err != nil {
		return nil, nil, err
	}
	sources, _ := cmd.Flags().GetStringSlice("source")
	res, err := resolveArgs(cmd, e, sources)
	if err != nil {
		e.Close()
		return nil, nil, err
	}
	return res, func() { e.Close() }, nil
}
