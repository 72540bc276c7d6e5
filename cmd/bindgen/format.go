package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/jward/bindgen"
)

// formatModuleText prints the declaration text, then diagnostics.
func formatModuleText(w io.Writer, m CLIModule) {
	fmt.Fprint(w, m.Text)
	if len(m.Diagnostics) > 0 {
		fmt.Fprintln(w)
		for _, d := range m.Diagnostics {
			fmt.Fprintf(w, "%s: %s: %s [%s]\n", d.Location, d.Severity, d.Message, d.Kind)
		}
	}
}

// formatSummaryText formats a module summary as readable text.
func formatSummaryText(w io.Writer, s bindgen.Summary) {
	fmt.Fprintln(w, "Module Summary")
	fmt.Fprintln(w, "==============")
	fmt.Fprintf(w, "Module: %s\n", s.Module)
	fmt.Fprintf(w, "Files: %d\n", s.Files)
	fmt.Fprintf(w, "Declarations: %d (%d top-level)\n", s.Declarations, s.TopLevel)

	if len(s.ByKind) > 0 {
		kinds := make([]string, 0, len(s.ByKind))
		for k := range s.ByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "By kind:")
		for _, k := range kinds {
			fmt.Fprintf(w, "  %s: %d\n", k, s.ByKind[k])
		}
	}
}

// formatRunsText formats runs as aligned columns.
func formatRunsText(w io.Writer, runs []CLIRun) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMODULE\tCREATED\tERRORS\tWARNINGS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n",
			r.ID, r.Module, r.CreatedAt.Format("2006-01-02 15:04:05"), r.ErrorCount, r.WarningCount)
	}
	tw.Flush()
}

// formatDiffText prints one line per difference, prefixed +, - or ~.
func formatDiffText(w io.Writer, d CLIDiff) {
	for _, group := range []struct {
		mark    string
		entries []CLIDiffEntry
	}{{"+", d.Added}, {"-", d.Removed}, {"~", d.Changed}} {
		for _, e := range group.entries {
			fmt.Fprintf(w, "%s %s %s\n", group.mark, e.Kind, e.QName)
		}
	}
}

// formatEmittedText lists written files, one per line.
func formatEmittedText(w io.Writer, emitted []CLIEmitted) {
	for _, em := range emitted {
		for _, f := range em.Files {
			fmt.Fprintln(w, f)
		}
	}
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case CLIModule:
		formatModuleText(w, v)
	case bindgen.Summary:
		formatSummaryText(w, v)
	case CLINames:
		for _, n := range v {
			fmt.Fprintln(w, n)
		}
	case []CLIRun:
		formatRunsText(w, v)
	case CLIDiff:
		formatDiffText(w, v)
	case []CLIEmitted:
		formatEmittedText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

// outputResult writes a CLIResult to w in the selected format.
func outputResult(w io.Writer, result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(w, result)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to w as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(w io.Writer, command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}

func intPtr(n int) *int { return &n }
