package store

import (
	"fmt"
	"sort"
)

type diffRow struct {
	qname string
	kind  string
	hash  string
}

func (s *Store) diffRows(runID string) (map[string]diffRow, error) {
	if _, err := s.RunByID(runID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT overload_key, qname, kind, signature_hash FROM declarations WHERE run_id = ?`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]diffRow)
	for rows.Next() {
		var key string
		var r diffRow
		if err := rows.Scan(&key, &r.qname, &r.kind, &r.hash); err != nil {
			return nil, err
		}
		out[key] = r
	}
	return out, rows.Err()
}

// DiffRuns compares the declarations of two runs. Declarations are matched
// by qualified name plus overload key and compared by signature hash.
func (s *Store) DiffRuns(oldRunID, newRunID string) (*RunDiff, error) {
	oldRows, err := s.diffRows(oldRunID)
	if err != nil {
		return nil, fmt.Errorf("diff runs: %w", err)
	}
	newRows, err := s.diffRows(newRunID)
	if err != nil {
		return nil, fmt.Errorf("diff runs: %w", err)
	}

	d := &RunDiff{OldRunID: oldRunID, NewRunID: newRunID}
	for key, n := range newRows {
		o, ok := oldRows[key]
		switch {
		case !ok:
			d.Added = append(d.Added, DiffEntry{Key: key, QName: n.qname, Kind: n.kind})
		case o.hash != n.hash:
			d.Changed = append(d.Changed, DiffEntry{Key: key, QName: n.qname, Kind: n.kind})
		}
	}
	for key, o := range oldRows {
		if _, ok := newRows[key]; !ok {
			d.Removed = append(d.Removed, DiffEntry{Key: key, QName: o.qname, Kind: o.kind})
		}
	}
	for _, list := range [][]DiffEntry{d.Added, d.Removed, d.Changed} {
		sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	}
	return d, nil
}
