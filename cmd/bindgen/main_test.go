package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/bindgen"
)

const pointSrc = `
export interface Point {
  x: number;
}

export function move(p: Point, dx: number): Point {
  return p;
}
`

// resetFlags restores every flag of cmd and its children to its default so
// that commands can be executed more than once per process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the CLI with args and returns what it wrote to stdout.
// The config file defaults to a path that does not exist.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	errorHandled = false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.toml")}, args...))
	err := rootCmd.Execute()
	return stdout.String(), err
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func decodeResult(t *testing.T, out string, results any) CLIResult {
	t.Helper()
	var env struct {
		CLIResult
		Results json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	if results != nil {
		require.NoError(t, json.Unmarshal(env.Results, results))
	}
	return env.CLIResult
}

// =============================================================================
// Helpers
// =============================================================================

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	err := validateFormat("yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json or text")
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := newLogger(&buf, "warn")
	assert.Equal(t, log.WarnLevel, l.GetLevel())
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	assert.Equal(t, log.InfoLevel, newLogger(&buf, "bogus").GetLevel())
	assert.Equal(t, log.DebugLevel, newLogger(&buf, "DEBUG").GetLevel())
}

func TestCollectInputs(t *testing.T) {
	t.Parallel()
	root := writeProject(t, map[string]string{
		"a.ts":                    "export let a: number;",
		"lib/b.d.ts":              "export declare let b: number;",
		"notes.txt":               "skip",
		"lib/c.tsx":               "export let c: number;",
		"node_modules/x/index.ts": "export let x: number;",
	})
	e, err := bindgen.New(bindgen.WithLogger(log.New(&bytes.Buffer{})))
	require.NoError(t, err)
	defer e.Close()

	paths, err := collectInputs(e, []string{root, filepath.Join(root, "a.ts")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "lib/b.d.ts"),
		filepath.Join(root, "a.ts"),
		filepath.Join(root, "lib/c.tsx"),
	}, paths, "declaration files first, duplicates dropped")

	_, err = collectInputs(e, []string{filepath.Join(root, "missing")})
	assert.Error(t, err)

	_, err = collectInputs(e, []string{filepath.Join(root, "node_modules")})
	assert.Error(t, err, "a directory without inputs")
}

// =============================================================================
// Commands
// =============================================================================

func TestResolveCommand_JSON(t *testing.T) {
	root := writeProject(t, map[string]string{"src/point.ts": pointSrc})

	out, err := execute(t, "resolve", root, "--module", "geo")
	require.NoError(t, err)

	var m CLIModule
	env := decodeResult(t, out, &m)
	assert.Equal(t, "resolve", env.Command)
	assert.Equal(t, "geo", m.Module)
	require.Len(t, m.Files, 1)

	byName := map[string]CLIDeclaration{}
	for _, d := range m.Declarations {
		byName[d.QName] = d
	}
	require.Contains(t, byName, "move")
	assert.Equal(t, "function", byName["move"].Kind)
	assert.Equal(t, "move(p: Point, dx: number): Point", byName["move"].Signature)
	assert.Equal(t, "interface", byName["Point"].Kind)
	assert.Empty(t, m.Diagnostics)
}

func TestResolveCommand_Text(t *testing.T) {
	root := writeProject(t, map[string]string{"point.ts": pointSrc})

	out, err := execute(t, "resolve", root, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "interface Point {\n    x: number;\n}\n")
	assert.Contains(t, out, "declare function move(p: Point, dx: number): Point;\n")
}

func TestResolveCommand_CachedWithDB(t *testing.T) {
	root := writeProject(t, map[string]string{"point.ts": pointSrc})
	db := filepath.Join(t.TempDir(), "runs.db")

	out, err := execute(t, "resolve", root, "--db", db)
	require.NoError(t, err)
	var first CLIModule
	decodeResult(t, out, &first)
	require.NotEmpty(t, first.RunID)
	assert.False(t, first.Cached)

	out, err = execute(t, "resolve", root, "--db", db)
	require.NoError(t, err)
	var second CLIModule
	decodeResult(t, out, &second)
	assert.True(t, second.Cached)
	assert.Equal(t, first.RunID, second.RunID)

	out, err = execute(t, "runs", "--db", db)
	require.NoError(t, err)
	var runs []CLIRun
	decodeResult(t, out, &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, first.RunID, runs[0].ID)
}

func TestResolveCommand_MissingSource(t *testing.T) {
	out, err := execute(t, "resolve", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	env := decodeResult(t, out, nil)
	assert.Contains(t, env.Error, "source not found")
}

func TestEmitCommand(t *testing.T) {
	root := writeProject(t, map[string]string{"point.ts": pointSrc})
	outDir := t.TempDir()

	out, err := execute(t, "emit", root, "--script", "manifest", "--out", outDir)
	require.NoError(t, err)
	var emitted []CLIEmitted
	decodeResult(t, out, &emitted)
	require.Len(t, emitted, 1)
	assert.Equal(t, []string{filepath.Join(outDir, "manifest.txt")}, emitted[0].Files)

	data, err := os.ReadFile(filepath.Join(outDir, "manifest.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "function move(p: Point, dx: number): Point\n")
}

func TestEmitCommand_FromConfig(t *testing.T) {
	root := writeProject(t, map[string]string{"src/point.ts": pointSrc})
	confPath := filepath.Join(root, "bindgen.toml")
	require.NoError(t, os.WriteFile(confPath, []byte(`
module = "geo"
sources = ["src"]

[[emit]]
script = "dts"
out = "gen"
`), 0o644))

	out, err := execute(t, "--config", confPath, "emit")
	require.NoError(t, err)
	var emitted []CLIEmitted
	decodeResult(t, out, &emitted)
	require.Len(t, emitted, 1)

	data, err := os.ReadFile(filepath.Join(root, "gen", "geo.d.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "declare function move")
}

func TestEmitCommand_NoEmitter(t *testing.T) {
	root := writeProject(t, map[string]string{"point.ts": pointSrc})
	_, err := execute(t, "emit", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no emitter")
}

func TestQueryCommands(t *testing.T) {
	root := writeProject(t, map[string]string{"point.ts": pointSrc})

	out, err := execute(t, "query", "deps", "move", "--source", root)
	require.NoError(t, err)
	var deps []string
	decodeResult(t, out, &deps)
	assert.Equal(t, []string{"Point"}, deps)

	out, err = execute(t, "query", "dependents", "Point", "--source", root)
	require.NoError(t, err)
	decodeResult(t, out, &deps)
	assert.Equal(t, []string{"move"}, deps)

	out, err = execute(t, "query", "summary", "--source", root)
	require.NoError(t, err)
	var s bindgen.Summary
	decodeResult(t, out, &s)
	assert.Equal(t, 3, s.Declarations)
	assert.Equal(t, 2, s.TopLevel)

	out, err = execute(t, "query", "deps", "Nope", "--source", root)
	require.Error(t, err)
	assert.Contains(t, decodeResult(t, out, nil).Error, "not found")
}

func TestDiffCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	root := writeProject(t, map[string]string{"point.ts": pointSrc})

	out, err := execute(t, "resolve", root, "--db", db)
	require.NoError(t, err)
	var before CLIModule
	decodeResult(t, out, &before)

	require.NoError(t, os.WriteFile(filepath.Join(root, "point.ts"),
		[]byte(pointSrc+"\nexport function origin(): Point { return { x: 0 }; }\n"), 0o644))
	out, err = execute(t, "resolve", root, "--db", db)
	require.NoError(t, err)
	var after CLIModule
	decodeResult(t, out, &after)
	require.NotEqual(t, before.RunID, after.RunID)

	out, err = execute(t, "diff", before.RunID, after.RunID, "--db", db, "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, "+ function origin\n", out)
}

func TestDiffCommand_NoDB(t *testing.T) {
	_, err := execute(t, "diff", "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database")
}
