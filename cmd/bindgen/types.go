package main

import "time"

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIModule is the JSON form of a resolved module.
type CLIModule struct {
	RunID        string           `json:"run_id,omitempty"`
	Cached       bool             `json:"cached"`
	Module       string           `json:"module"`
	Files        []string         `json:"files"`
	Declarations []CLIDeclaration `json:"declarations"`
	Diagnostics  []CLIDiagnostic  `json:"diagnostics"`
	// Text is the declaration rendering, used by the text format.
	Text string `json:"-"`
}

// CLIDeclaration is a flat, JSON-friendly declaration.
type CLIDeclaration struct {
	ID        int      `json:"id"`
	ParentID  int      `json:"parent_id,omitempty"`
	QName     string   `json:"qname"`
	Kind      string   `json:"kind"`
	Flags     []string `json:"flags,omitempty"`
	Signature string   `json:"signature"`
	Doc       string   `json:"doc,omitempty"`
	File      string   `json:"file"`
	Line      int      `json:"line"`
	Col       int      `json:"col"`
}

// CLIDiagnostic is a JSON-friendly diagnostic.
type CLIDiagnostic struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Name     string `json:"name,omitempty"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

// CLIRun is a JSON-friendly persisted run.
type CLIRun struct {
	ID             string    `json:"id"`
	Module         string    `json:"module"`
	ImplicitExport bool      `json:"implicit_export"`
	CreatedAt      time.Time `json:"created_at"`
	ErrorCount     int       `json:"error_count"`
	WarningCount   int       `json:"warning_count"`
}

// CLIDiff is the JSON form of a run diff.
type CLIDiff struct {
	Old     string         `json:"old"`
	New     string         `json:"new"`
	Added   []CLIDiffEntry `json:"added"`
	Removed []CLIDiffEntry `json:"removed"`
	Changed []CLIDiffEntry `json:"changed"`
}

// CLIDiffEntry names one declaration in a diff.
type CLIDiffEntry struct {
	QName string `json:"qname"`
	Kind  string `json:"kind"`
	Key   string `json:"key"`
}

// CLIEmitted lists the files one emitter wrote.
type CLIEmitted struct {
	Script string   `json:"script"`
	Out    string   `json:"out"`
	Files  []string `json:"files"`
}

// CLINames is a plain list of qualified names (deps, dependents).
type CLINames []string
