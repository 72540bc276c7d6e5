package bindgen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/jward/bindgen/internal/diag"
	"github.com/jward/bindgen/internal/emit"
	"github.com/jward/bindgen/internal/facts"
	"github.com/jward/bindgen/internal/frontend"
	"github.com/jward/bindgen/internal/model"
	"github.com/jward/bindgen/internal/resolve"
	"github.com/jward/bindgen/internal/runtime"
	"github.com/jward/bindgen/internal/store"
)

// DeclarationsEmitter names the built-in emitter that prints the module as
// TypeScript declaration text instead of running a script.
const DeclarationsEmitter = "dts"

// ErrNoStore is returned by operations that need a run store when the
// Engine was created without WithStore.
var ErrNoStore = errors.New("bindgen: no store configured")

// Engine orchestrates the pipeline: input discovery, resolution through a
// fact source, run caching in SQLite, emitters and queries.
type Engine struct {
	logger         *log.Logger
	implicitExport bool
	moduleName     string

	source   facts.Source
	files    map[string]string
	readFile func(string) ([]byte, error)

	dbPath string
	store  *store.Store
	mu     sync.Mutex // serializes store access

	scriptsDir string
	scriptsFS  fs.FS
	runtime    *runtime.Runtime
}

// Option configures an Engine.
type Option func(*Engine)

// WithImplicitExport treats every top-level declaration as a root, not
// only explicitly exported ones.
func WithImplicitExport(implicit bool) Option {
	return func(e *Engine) {
		e.implicitExport = implicit
	}
}

// WithModuleName names the produced module.
func WithModuleName(name string) Option {
	return func(e *Engine) {
		e.moduleName = name
	}
}

// WithLogger routes all logging to l.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithSource resolves through src instead of the TypeScript frontend.
// Run caching is disabled unless the input files are also readable from
// disk.
func WithSource(src facts.Source) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithFiles serves input files from memory, keyed by path.
func WithFiles(files map[string]string) Option {
	return func(e *Engine) {
		e.files = files
		e.readFile = func(p string) ([]byte, error) {
			src, ok := files[p]
			if !ok {
				return nil, fs.ErrNotExist
			}
			return []byte(src), nil
		}
	}
}

// WithStore persists runs in a SQLite database at dbPath and reuses the
// latest run whose inputs are unchanged.
func WithStore(dbPath string) Option {
	return func(e *Engine) {
		e.dbPath = dbPath
	}
}

// WithScriptsFS loads emitter scripts from fsys, typically scripts.FS.
// When set, WithScriptsDir is ignored.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.scriptsFS = fsys
	}
}

// WithScriptsDir loads emitter scripts relative to dir on disk.
func WithScriptsDir(dir string) Option {
	return func(e *Engine) {
		e.scriptsDir = dir
	}
}

// New creates an Engine. With WithStore the database is opened and
// migrated here.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:     log.Default(),
		moduleName: resolve.DefaultModuleName,
		readFile:   os.ReadFile,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.dbPath != "" {
		s, err := store.NewStore(e.dbPath)
		if err != nil {
			return nil, fmt.Errorf("bindgen: create store: %w", err)
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, fmt.Errorf("bindgen: migrate: %w", err)
		}
		e.store = s
	}

	rtOpts := []runtime.RuntimeOption{runtime.WithRuntimeLogger(e.logger)}
	if e.scriptsFS != nil {
		rtOpts = append(rtOpts, runtime.WithRuntimeFS(e.scriptsFS))
	}
	e.runtime = runtime.NewRuntime(e.scriptsDir, rtOpts...)
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Store returns the underlying run store, or nil.
func (e *Engine) Store() *Store {
	return e.store
}

// Result is the outcome of one Resolve call.
type Result struct {
	// RunID identifies the persisted run; empty without a store.
	RunID       string
	Module      *Module
	Diagnostics *Diagnostics
	// Cached reports that the run was reloaded rather than recomputed.
	Cached bool
}

// Err returns a summary error when the run produced error diagnostics.
func (r *Result) Err() error {
	return r.Diagnostics.Err()
}

// Query returns a QueryBuilder over the result's module.
func (r *Result) Query() *QueryBuilder {
	return Query(r.Module)
}

// Resolve computes the API model of the given input files, in order. With
// a store, a previous run over identical inputs is returned instead.
func (e *Engine) Resolve(ctx context.Context, paths []string) (*Result, error) {
	hash := ""
	digests, err := e.digestFiles(ctx, paths)
	if err != nil {
		e.logger.Debug("input hashing failed, caching disabled", "err", err)
	} else {
		hash = store.InputHash(e.moduleName, e.implicitExport, paths, digests)
	}

	if e.store != nil && hash != "" {
		res, err := e.cachedRun(hash)
		if err != nil {
			return nil, err
		}
		if res != nil {
			e.logger.Info("inputs unchanged, reusing run", "run", res.RunID)
			return res, nil
		}
	}

	src := e.source
	if src == nil {
		fopts := []frontend.Option{frontend.WithContext(ctx), frontend.WithLogger(e.logger)}
		if e.files != nil {
			fopts = append(fopts, frontend.WithFiles(e.files))
		}
		ts := frontend.New(fopts...)
		defer ts.Close()
		src = ts
	}

	m, diags, err := resolve.Resolve(src, paths, e.implicitExport,
		resolve.WithModuleName(e.moduleName),
		resolve.WithLogger(e.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("bindgen: %w", err)
	}
	diags.Log(e.logger)

	res := &Result{Module: m, Diagnostics: diags}
	if e.store != nil {
		run := &store.Run{Module: e.moduleName, InputHash: hash, ImplicitExport: e.implicitExport}
		e.mu.Lock()
		err := e.store.SaveRun(run, m, diags, digests)
		e.mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("bindgen: %w", err)
		}
		res.RunID = run.ID
	}
	e.logger.Info("resolved", "declarations", m.Len(), "errors", diags.ErrorCount(), "warnings", diags.WarningCount())
	return res, nil
}

func (e *Engine) cachedRun(hash string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	run, err := e.store.LatestRunByHash(hash)
	if err != nil || run == nil {
		return nil, err
	}
	return e.loadRunLocked(run.ID, true)
}

// LoadRun reloads a persisted run.
func (e *Engine) LoadRun(runID string) (*Result, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadRunLocked(runID, false)
}

func (e *Engine) loadRunLocked(runID string, cached bool) (*Result, error) {
	m, err := e.store.LoadModule(runID)
	if err != nil {
		return nil, fmt.Errorf("bindgen: %w", err)
	}
	diags, err := e.store.Diagnostics(runID)
	if err != nil {
		return nil, fmt.Errorf("bindgen: %w", err)
	}
	return &Result{RunID: runID, Module: m, Diagnostics: diags, Cached: cached}, nil
}

// ResolveDirectory resolves every TypeScript file under root.
func (e *Engine) ResolveDirectory(ctx context.Context, root string) (*Result, error) {
	paths, err := e.Discover(root)
	if err != nil {
		return nil, err
	}
	return e.Resolve(ctx, paths)
}

// Discover lists the TypeScript inputs under root, declaration files first.
// Inside a git repository, git ls-files decides which files count. A root
// that is itself a skipped directory such as node_modules has no inputs.
func (e *Engine) Discover(root string) ([]string, error) {
	if excludedRoot(root) {
		e.logger.Debug("root is a skipped directory", "root", root)
		return nil, nil
	}
	paths, err := e.gitListFiles(root)
	if err == nil {
		return paths, nil
	}
	e.logger.Debug("git listing unavailable, walking directory", "root", root, "err", err)
	return e.walkListFiles(root)
}

// Emit runs an emitter over a result and returns the files it produced,
// keyed by relative path. name is DeclarationsEmitter, the name of an
// embedded script such as "manifest", or a script path.
func (e *Engine) Emit(ctx context.Context, res *Result, name string) (map[string]string, error) {
	if name == DeclarationsEmitter {
		return map[string]string{res.Module.Name + ".d.ts": emit.NewPrinter().Module(res.Module)}, nil
	}
	files, err := e.runtime.RunEmitter(ctx, runtime.EmitterScriptPath(name), res.Module, res.Diagnostics)
	if err != nil {
		return nil, fmt.Errorf("bindgen: emit %s: %w", name, err)
	}
	return files, nil
}

// Diff compares two persisted runs declaration by declaration.
func (e *Engine) Diff(oldRunID, newRunID string) (*RunDiff, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.store.DiffRuns(oldRunID, newRunID)
	if err != nil {
		return nil, fmt.Errorf("bindgen: %w", err)
	}
	return d, nil
}

// Runs lists persisted runs, newest first.
func (e *Engine) Runs(limit int) ([]*Run, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Runs(limit)
}

// Declarations renders m as TypeScript declaration text.
func Declarations(m *model.Module) string {
	return emit.NewPrinter().Module(m)
}

// OfKind returns the diagnostics of one kind.
func (r *Result) OfKind(kind diag.Kind) []diag.Diagnostic {
	return r.Diagnostics.OfKind(kind)
}
