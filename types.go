package bindgen

import (
	"github.com/jward/bindgen/internal/diag"
	"github.com/jward/bindgen/internal/model"
	"github.com/jward/bindgen/internal/store"
)

// Public aliases for the internal types that appear in the Engine and
// QueryBuilder API.

type Module = model.Module
type Declaration = model.Declaration
type Diagnostics = diag.Diagnostics
type Diagnostic = diag.Diagnostic
type Store = store.Store
type Run = store.Run
type RunDiff = store.RunDiff
type DiffEntry = store.DiffEntry
