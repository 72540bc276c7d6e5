package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jward/bindgen/internal/diag"
	"github.com/jward/bindgen/internal/model"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// declarationColumns is the number of columns bound per declaration row.
const declarationColumns = 15

// declarationBatch bounds a multi-row insert below SQLite's variable limit.
const declarationBatch = 60

// SaveRun persists a resolved module and its diagnostics in one
// transaction. An empty run.ID is filled with a fresh UUID; CreatedAt and
// the diagnostic counts are filled in from the arguments. digests maps
// file paths to content hashes and may be nil.
func (s *Store) SaveRun(run *Run, m *model.Module, diags *diag.Diagnostics, digests map[string]string) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if diags != nil {
		run.ErrorCount = diags.ErrorCount()
		run.WarningCount = diags.WarningCount()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save run: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, module, input_hash, implicit_export, created_at, error_count, warning_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Module, run.InputHash, run.ImplicitExport, run.CreatedAt, run.ErrorCount, run.WarningCount,
	)
	if err != nil {
		return fmt.Errorf("save run: insert run: %w", err)
	}

	for i, f := range m.Files {
		if _, err := tx.Exec(
			`INSERT INTO files (run_id, path, ordinal, hash) VALUES (?, ?, ?, ?)`,
			run.ID, f.Path, i, digests[f.Path],
		); err != nil {
			return fmt.Errorf("save run: file %s: %w", f.Path, err)
		}
	}

	rows, err := declarationRows(m)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if err := insertDeclarations(tx, run.ID, rows); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	if diags != nil {
		for i, d := range diags.Items() {
			related, _ := json.Marshal(encodeLocations(d.Related))
			if _, err := tx.Exec(
				`INSERT INTO diagnostics (run_id, ordinal, kind, severity, name, message, file, line, col, related)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				run.ID, i, string(d.Kind), string(d.Severity), d.Name, d.Message,
				d.Location.File, d.Location.Line, d.Location.Col, string(related),
			); err != nil {
				return fmt.Errorf("save run: diagnostic: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run: commit: %w", err)
	}
	return nil
}

// declarationRows flattens an indexed module into rows in arena order.
func declarationRows(m *model.Module) ([]*Declaration, error) {
	var rows []*Declaration
	var firstErr error
	model.WalkModule(m, func(d model.Declaration) {
		if firstErr != nil {
			return
		}
		b := d.Common()
		payload, err := encodePayload(d)
		if err != nil {
			firstErr = err
			return
		}
		qname := m.QualifiedName(b.ID)
		rows = append(rows, &Declaration{
			DeclID:        b.ID,
			ParentID:      b.ParentID,
			QName:         qname,
			OverloadKey:   qname + " " + model.OverloadKey(d),
			Kind:          d.Kind().String(),
			Name:          b.Name,
			Flags:         b.Flags.Names(),
			Doc:           b.Doc,
			File:          b.File,
			LocFile:       b.Location.File,
			Line:          b.Location.Line,
			Col:           b.Location.Col,
			Payload:       payload,
			SignatureHash: ComputeSignatureHash(d),
		})
	})
	return rows, firstErr
}

func insertDeclarations(tx *sql.Tx, runID string, rows []*Declaration) error {
	for start := 0; start < len(rows); start += declarationBatch {
		end := min(start+declarationBatch, len(rows))
		chunk := rows[start:end]
		args := make([]any, 0, len(chunk)*declarationColumns)
		for _, r := range chunk {
			args = append(args,
				runID, r.DeclID, r.ParentID, r.QName, r.OverloadKey, r.Kind, r.Name,
				marshalFlags(r.Flags), r.Doc, r.File, r.LocFile, r.Line, r.Col, r.Payload, r.SignatureHash,
			)
		}
		_, err := tx.Exec(
			`INSERT INTO declarations (run_id, decl_id, parent_id, qname, overload_key, kind, name,
			   flags, doc, file, loc_file, line, col, payload, signature_hash)
			 VALUES `+valuesList(len(chunk), declarationColumns),
			args...,
		)
		if err != nil {
			return fmt.Errorf("insert declarations: %w", err)
		}
	}
	return nil
}

const runColumns = `id, module, input_hash, implicit_export, created_at, error_count, warning_count`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	r := &Run{}
	err := row.Scan(&r.ID, &r.Module, &r.InputHash, &r.ImplicitExport, &r.CreatedAt, &r.ErrorCount, &r.WarningCount)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// RunByID returns one run.
func (s *Store) RunByID(id string) (*Run, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	return r, nil
}

// LatestRunByHash returns the newest run with the given input hash, or
// nil when there is none.
func (s *Store) LatestRunByHash(hash string) (*Run, error) {
	r, err := scanRun(s.db.QueryRow(
		`SELECT `+runColumns+` FROM runs WHERE input_hash = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, hash,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return r, nil
}

// Runs lists runs newest first. A limit <= 0 returns all of them.
func (s *Store) Runs(limit int) ([]*Run, error) {
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("runs: %w", err)
	}
	defer rows.Close()
	var out []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("runs: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and everything recorded for it.
func (s *Store) DeleteRun(id string) error {
	res, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// Files returns the module files of a run in order.
func (s *Store) Files(runID string) ([]*File, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, path, ordinal, COALESCE(hash, '') FROM files WHERE run_id = ? ORDER BY ordinal`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()
	var out []*File
	for rows.Next() {
		f := &File{}
		if err := rows.Scan(&f.ID, &f.RunID, &f.Path, &f.Ordinal, &f.Hash); err != nil {
			return nil, fmt.Errorf("files: scan: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Declarations returns the declaration rows of a run in arena order.
func (s *Store) Declarations(runID string) ([]*Declaration, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, decl_id, parent_id, qname, overload_key, kind, name, COALESCE(flags, ''),
		   COALESCE(doc, ''), file, COALESCE(loc_file, ''), COALESCE(line, 0), COALESCE(col, 0),
		   COALESCE(payload, ''), signature_hash
		 FROM declarations WHERE run_id = ? ORDER BY decl_id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("declarations: %w", err)
	}
	defer rows.Close()
	var out []*Declaration
	for rows.Next() {
		d := &Declaration{}
		var flags string
		if err := rows.Scan(
			&d.ID, &d.RunID, &d.DeclID, &d.ParentID, &d.QName, &d.OverloadKey, &d.Kind, &d.Name, &flags,
			&d.Doc, &d.File, &d.LocFile, &d.Line, &d.Col, &d.Payload, &d.SignatureHash,
		); err != nil {
			return nil, fmt.Errorf("declarations: scan: %w", err)
		}
		d.Flags = unmarshalFlags(flags)
		out = append(out, d)
	}
	return out, rows.Err()
}

// LoadModule rebuilds the canonical tree saved for a run. Rows are stored
// in pre-order, so re-indexing reproduces the saved arena IDs and every
// Declared type target stays valid.
func (s *Store) LoadModule(runID string) (*model.Module, error) {
	run, err := s.RunByID(runID)
	if err != nil {
		return nil, fmt.Errorf("load module: %w", err)
	}
	files, err := s.Files(runID)
	if err != nil {
		return nil, fmt.Errorf("load module: %w", err)
	}
	rows, err := s.Declarations(runID)
	if err != nil {
		return nil, fmt.Errorf("load module: %w", err)
	}

	m := model.NewModule(run.Module)
	for _, f := range files {
		m.File(f.Path)
	}
	byID := make(map[int]model.Declaration, len(rows))
	for _, r := range rows {
		d, err := decodeDeclaration(r)
		if err != nil {
			return nil, fmt.Errorf("load module: %w", err)
		}
		byID[r.DeclID] = d
		if r.ParentID == 0 {
			sf := m.File(r.File)
			sf.Declarations = append(sf.Declarations, d)
			continue
		}
		parent, ok := byID[r.ParentID].(model.Container)
		if !ok {
			return nil, fmt.Errorf("load module: %s: parent %d is not a container", r.QName, r.ParentID)
		}
		members := parent.MemberList()
		*members = append(*members, d)
	}
	m.Index()
	return m, nil
}

// Diagnostics returns the diagnostics recorded for a run in report order.
func (s *Store) Diagnostics(runID string) (*diag.Diagnostics, error) {
	rows, err := s.db.Query(
		`SELECT kind, COALESCE(name, ''), message, COALESCE(file, ''), COALESCE(line, 0), COALESCE(col, 0),
		   COALESCE(related, '')
		 FROM diagnostics WHERE run_id = ? ORDER BY ordinal`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: %w", err)
	}
	defer rows.Close()
	out := diag.New()
	for rows.Next() {
		var d diag.Diagnostic
		var kind, related string
		if err := rows.Scan(&kind, &d.Name, &d.Message, &d.Location.File, &d.Location.Line, &d.Location.Col, &related); err != nil {
			return nil, fmt.Errorf("diagnostics: scan: %w", err)
		}
		d.Kind = diag.Kind(kind)
		if related != "" {
			var locs []locationJSON
			if err := json.Unmarshal([]byte(related), &locs); err != nil {
				return nil, fmt.Errorf("diagnostics: related: %w", err)
			}
			d.Related = decodeLocations(locs)
		}
		out.Report(d)
	}
	return out, rows.Err()
}

func encodeLocations(locs []model.Location) []locationJSON {
	out := make([]locationJSON, 0, len(locs))
	for _, l := range locs {
		out = append(out, locationJSON{File: l.File, Line: l.Line, Col: l.Col})
	}
	return out
}

func decodeLocations(locs []locationJSON) []model.Location {
	var out []model.Location
	for _, l := range locs {
		out = append(out, model.Location{File: l.File, Line: l.Line, Col: l.Col})
	}
	return out
}
