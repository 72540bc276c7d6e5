// Package runtime embeds a Risor VM that runs emitter scripts over a
// resolved module.
package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/bindgen/internal/diag"
	"github.com/jward/bindgen/internal/model"
)

// Runtime loads Risor scripts from disk or an fs.FS and evaluates them
// with the module globals.
type Runtime struct {
	logger     *log.Logger
	scriptsDir string
	fsys       fs.FS
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS serves relative script paths and imports from fsys, usually
// the embedded scripts.FS.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithRuntimeLogger sets the logger behind the scripts' log object.
func WithRuntimeLogger(l *log.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a Runtime that resolves relative script paths against
// scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		logger:     log.Default(),
		scriptsDir: scriptsDir,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript evaluates the script at scriptPath with the log global and
// extraGlobals.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, extraGlobals map[string]any) error {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return err
	}
	return r.eval(ctx, src, scriptPath, extraGlobals)
}

// RunSource is RunScript for inline source.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) error {
	return r.eval(ctx, source, "<inline>", extraGlobals)
}

// RunEmitter runs an emitter script against m and returns the files it
// emitted, keyed by relative path.
func (r *Runtime) RunEmitter(ctx context.Context, scriptPath string, m *model.Module, diags *diag.Diagnostics) (map[string]string, error) {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	return r.runEmitter(ctx, src, scriptPath, m, diags)
}

// RunEmitterSource is RunEmitter for inline script source.
func (r *Runtime) RunEmitterSource(ctx context.Context, source string, m *model.Module, diags *diag.Diagnostics) (map[string]string, error) {
	return r.runEmitter(ctx, source, "<inline>", m, diags)
}

func (r *Runtime) runEmitter(ctx context.Context, source, label string, m *model.Module, diags *diag.Diagnostics) (map[string]string, error) {
	out := newOutputs()
	globals := map[string]any{
		"module":      ModuleObject(m),
		"diagnostics": DiagnosticsObject(diags),
		"emit":        makeEmitFn(out),
	}
	if err := r.eval(ctx, source, label, globals); err != nil {
		return nil, err
	}
	r.logger.Debug("emitter finished", "script", label, "files", len(out.files))
	return out.files, nil
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) error {
	globals := r.buildGlobals(extraGlobals)

	opts := make([]risor.Option, 0, len(globals)+1)
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}
	if _, err := risor.Eval(ctx, source, opts...); err != nil {
		return fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return nil
}

// buildImporter lets emitter scripts import helper modules from the same
// place the scripts come from. Imported modules see the same globals.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: names,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: names,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript returns the source of a script. Relative paths come from the
// configured fs.FS, or from scriptsDir on disk; absolute paths always come
// from disk, so user scripts work next to the embedded ones.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil && !isDiskPath(path) {
		name := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, name)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", name, err)
		}
		return string(data), nil
	}

	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(r.scriptsDir, full)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", full, err)
	}
	return string(data), nil
}

// isDiskPath reports whether an absolute path names an existing file on
// disk rather than a rooted name inside the fs.FS.
func isDiskPath(path string) bool {
	if !filepath.IsAbs(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EmitterScriptPath returns the path of a named emitter script.
func EmitterScriptPath(name string) string {
	if strings.HasSuffix(name, ".risor") {
		return name
	}
	return filepath.Join("emit", name+".risor")
}

// buildGlobals adds the log object to extra. Caller globals win.
func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"log": mustProxy(&logObject{logger: r.logger.WithPrefix("script")}),
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
