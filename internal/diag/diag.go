// Package diag holds the diagnostics accumulated by one resolve call.
//
// Recoverable problems (unresolved references, unsupported type shapes) are
// warnings; merge conflicts are errors. A non-zero error count is the
// build-failure signal even though a partial model was produced.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/jward/bindgen/internal/model"
)

// Kind classifies a diagnostic.
type Kind string

const (
	UnresolvedType  Kind = "unresolved-type"
	UnsupportedType Kind = "unsupported-type"
	MergeConflict   Kind = "merge-conflict"
	MemberConflict  Kind = "member-conflict"
)

// Severity is the weight of a diagnostic.
type Severity string

const (
	Warning Severity = "warning"
	Error   Severity = "error"
)

// SeverityOf returns the fixed severity for a kind.
func SeverityOf(k Kind) Severity {
	if k == MergeConflict {
		return Error
	}
	return Warning
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Name     string // offending qualified name or type shape
	Message  string
	Location model.Location
	Related  []model.Location
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Severity, d.Message)
}

func (d Diagnostic) key() string {
	var rel []string
	for _, l := range d.Related {
		rel = append(rel, l.String())
	}
	return string(d.Kind) + "|" + d.Location.String() + "|" + d.Name + "|" + strings.Join(rel, ",")
}

// Diagnostics accumulates problems in report order. Reporting the same
// problem at the same location twice keeps one entry.
type Diagnostics struct {
	items []Diagnostic
	seen  map[string]bool
}

// New returns an empty collection.
func New() *Diagnostics {
	return &Diagnostics{seen: make(map[string]bool)}
}

// Report records d, filling in its severity from its kind. Reports that
// duplicate an earlier entry are dropped.
func (c *Diagnostics) Report(d Diagnostic) {
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	d.Severity = SeverityOf(d.Kind)
	k := d.key()
	if c.seen[k] {
		return
	}
	c.seen[k] = true
	c.items = append(c.items, d)
}

// Reportf is a shorthand for Report with a formatted message.
func (c *Diagnostics) Reportf(kind Kind, name string, loc model.Location, format string, args ...any) {
	c.Report(Diagnostic{Kind: kind, Name: name, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// Items returns the diagnostics in report order.
func (c *Diagnostics) Items() []Diagnostic {
	return c.items
}

// OfKind returns the diagnostics of one kind.
func (c *Diagnostics) OfKind(k Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.items {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of diagnostics.
func (c *Diagnostics) Len() int { return len(c.items) }

// ErrorCount returns the number of error-severity diagnostics.
func (c *Diagnostics) ErrorCount() int {
	n := 0
	for _, d := range c.items {
		if d.Severity == Error {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity diagnostics.
func (c *Diagnostics) WarningCount() int {
	return len(c.items) - c.ErrorCount()
}

// Counts returns per-kind totals.
func (c *Diagnostics) Counts() map[Kind]int {
	out := make(map[Kind]int)
	for _, d := range c.items {
		out[d.Kind]++
	}
	return out
}

// SortedKinds returns the kinds present, sorted by name.
func (c *Diagnostics) SortedKinds() []Kind {
	counts := c.Counts()
	kinds := make([]Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Err returns nil when there are no errors, otherwise an error summarizing
// the first one.
func (c *Diagnostics) Err() error {
	n := c.ErrorCount()
	if n == 0 {
		return nil
	}
	for _, d := range c.items {
		if d.Severity == Error {
			return fmt.Errorf("%d error(s), first: %s", n, d)
		}
	}
	return nil
}

// Log writes every diagnostic to l at warn or error level.
func (c *Diagnostics) Log(l *log.Logger) {
	for _, d := range c.items {
		kv := []any{"kind", d.Kind, "at", d.Location.String()}
		if d.Name != "" {
			kv = append(kv, "name", d.Name)
		}
		if d.Severity == Error {
			l.Error(d.Message, kv...)
		} else {
			l.Warn(d.Message, kv...)
		}
	}
}
