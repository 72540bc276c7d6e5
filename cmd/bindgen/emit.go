package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/bindgen"
	"github.com/jward/bindgen/internal/config"
)

var (
	flagScript string
	flagOut    string
)

var emitCmd = &cobra.Command{
	Use:   "emit [paths...]",
	Short: "Run emitters over the resolved model and write their files",
	Long: "Resolves the inputs, then runs --script (\"dts\", an embedded emitter name such as \"manifest\", or a .risor path) " +
		"or every [[emit]] entry of the config, writing output under --out.",
	RunE: runEmit,
}

func init() {
	emitCmd.Flags().StringVar(&flagScript, "script", "", "emitter to run (overrides config [[emit]])")
	emitCmd.Flags().StringVar(&flagOut, "out", "out", "output directory for --script")
	emitCmd.Flags().String("run", "", "emit from a persisted run instead of resolving")
}

func runEmit(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	jobs := cfg.Emit
	if flagScript != "" {
		script := flagScript
		if strings.HasSuffix(script, ".risor") {
			abs, err := filepath.Abs(script)
			if err != nil {
				return outputError(w, "emit", err)
			}
			script = abs
		}
		jobs = []config.Emit{{Script: script, Out: flagOut}}
	}
	if len(jobs) == 0 {
		return outputError(w, "emit", fmt.Errorf("no emitter: pass --script or add [[emit]] to %s", flagConfig))
	}

	e, err := newEngine(cmd)
	if err != nil {
		return outputError(w, "emit", err)
	}
	defer e.Close()

	res, err := resolveArgs(cmd, e, args)
	if err != nil {
		return outputError(w, "emit", err)
	}
	if err := res.Err(); err != nil {
		return outputError(w, "emit", err)
	}

	var emitted []CLIEmitted
	for _, job := range jobs {
		written, err := runEmitter(cmd.Context(), e, res, job)
		if err != nil {
			return outputError(w, "emit", err)
		}
		emitted = append(emitted, CLIEmitted{Script: job.Script, Out: job.Out, Files: written})
	}
	return outputResult(w, CLIResult{Command: "emit", Results: emitted})
}

// runEmitter runs one emitter and writes its files under job.Out, returning
// the written paths in sorted order.
func runEmitter(ctx context.Context, e *bindgen.Engine, res *bindgen.Result, job config.Emit) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	files, err := e.Emit(ctx, res, job.Script)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(job.Out, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, []byte(files[name]), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}
