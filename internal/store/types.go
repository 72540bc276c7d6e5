package store

import "time"

// Run is one persisted resolve call.
type Run struct {
	ID             string
	Module         string
	InputHash      string
	ImplicitExport bool
	CreatedAt      time.Time
	ErrorCount     int
	WarningCount   int
}

// File is one source file of a run's canonical tree, in module order.
type File struct {
	ID      int64
	RunID   string
	Path    string
	Ordinal int
	Hash    string
}

// Declaration is the row form of one canonical declaration. DeclID and
// ParentID are the module arena IDs at save time; Payload holds the
// kind-specific fields as JSON.
type Declaration struct {
	ID            int64
	RunID         string
	DeclID        int
	ParentID      int
	QName         string
	OverloadKey   string
	Kind          string
	Name          string
	Flags         []string
	Doc           string
	File          string
	LocFile       string
	Line          int
	Col           int
	Payload       string
	SignatureHash string
}

// DiffEntry names one declaration that differs between two runs.
type DiffEntry struct {
	Key   string
	QName string
	Kind  string
}

// RunDiff is the declaration-level difference between two runs. Entries
// in each list are sorted by key.
type RunDiff struct {
	OldRunID string
	NewRunID string
	Added    []DiffEntry
	Removed  []DiffEntry
	Changed  []DiffEntry
}

// Empty reports whether the runs declare the same API.
func (d *RunDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}
