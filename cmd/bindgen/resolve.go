package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/bindgen"
	"github.com/jward/bindgen/internal/emit"
	"github.com/jward/bindgen/internal/model"
)

// errDiagnostics makes the process exit non-zero after the model has been
// printed.
var errDiagnostics = errors.New("resolution reported errors")

var resolveCmd = &cobra.Command{
	Use:   "resolve [paths...]",
	Short: "Resolve the export closure and print the model",
	Long:  "Resolves the given files and directories (or the configured sources) and prints the model. Exits non-zero when any error diagnostic is reported.",
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().String("run", "", "print a persisted run instead of resolving")
}

func runResolve(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	e, err := newEngine(cmd)
	if err != nil {
		return outputError(w, "resolve", err)
	}
	defer e.Close()

	res, err := resolveArgs(cmd, e, args)
	if err != nil {
		return outputError(w, "resolve", err)
	}

	m := moduleToCLI(res)
	if err := outputResult(w, CLIResult{Command: "resolve", Results: m, TotalCount: intPtr(len(m.Declarations))}); err != nil {
		return err
	}
	if n := res.Diagnostics.ErrorCount(); n > 0 {
		return fmt.Errorf("%w: %d error(s)", errDiagnostics, n)
	}
	return nil
}

// moduleToCLI flattens a result for output.
func moduleToCLI(res *bindgen.Result) CLIModule {
	p := emit.NewPrinter()
	out := CLIModule{
		RunID:        res.RunID,
		Cached:       res.Cached,
		Module:       res.Module.Name,
		Files:        []string{},
		Declarations: []CLIDeclaration{},
		Diagnostics:  []CLIDiagnostic{},
		Text:         bindgen.Declarations(res.Module),
	}
	for _, f := range res.Module.Files {
		out.Files = append(out.Files, f.Path)
	}
	for _, d := range res.Module.Declarations() {
		out.Declarations = append(out.Declarations, declarationToCLI(res.Module, p, d))
	}
	for _, d := range res.Diagnostics.Items() {
		cd := CLIDiagnostic{
			Kind:     string(d.Kind),
			Severity: string(d.Severity),
			Name:     d.Name,
			Message:  d.Message,
		}
		if !d.Location.IsZero() {
			cd.Location = d.Location.String()
		}
		out.Diagnostics = append(out.Diagnostics, cd)
	}
	return out
}

func declarationToCLI(m *model.Module, p *emit.Printer, d model.Declaration) CLIDeclaration {
	b := d.Common()
	return CLIDeclaration{
		ID:        b.ID,
		ParentID:  b.ParentID,
		QName:     m.QualifiedName(b.ID),
		Kind:      d.Kind().String(),
		Flags:     b.Flags.Names(),
		Signature: p.Signature(d),
		Doc:       b.Doc,
		File:      b.File,
		Line:      b.Location.Line,
		Col:       b.Location.Col,
	}
}
