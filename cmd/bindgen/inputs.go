package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/bindgen"
)

// collectInputs expands sources into input files. Directories are
// discovered, files are kept in the order given, duplicates are dropped.
func collectInputs(e *bindgen.Engine, sources []string) ([]string, error) {
	seen := map[string]bool{}
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for _, src := range sources {
		abs, err := filepath.Abs(src)
		if err != nil {
			return nil, fmt.Errorf("resolving path %q: %w", src, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("source not found: %s", abs)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}
		found, err := e.Discover(abs)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no TypeScript inputs found")
	}
	return paths, nil
}

// resolveArgs resolves the given paths, or the configured sources when none
// are given. With --run set and a store configured, that run is loaded
// instead.
func resolveArgs(cmd *cobra.Command, e *bindgen.Engine, args []string) (*bindgen.Result, error) {
	if runID, _ := cmd.Flags().GetString("run"); runID != "" {
		return e.LoadRun(runID)
	}
	sources := args
	if len(sources) == 0 {
		sources = cfg.Sources
	}
	paths, err := collectInputs(e, sources)
	if err != nil {
		return nil, err
	}
	return e.Resolve(context.Background(), paths)
}
