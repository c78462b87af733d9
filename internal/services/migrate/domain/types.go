// Package domain holds the types and ports of the migrate service
package domain

import (
	"io/fs"
	"time"

	"evqmigrate/internal/core/jsondoc"
	perr "evqmigrate/internal/platform/errors"
)

// DefaultKey is the field stripped from every entry unless configured otherwise
const DefaultKey = "event_origin"

// Status is the result of migrating one path
type Status string

// Path statuses
const (
	StatusMigrated     Status = "migrated"
	StatusWouldMigrate Status = "would_migrate" // dry run / check
	StatusUnchanged    Status = "unchanged"
	StatusFailed       Status = "failed"
	StatusSkipped      Status = "skipped"
)

// Target is one file to migrate after argument expansion
type Target struct {
	Path string
	Err  error
}

// File is one input file as read from storage
type File struct {
	Path string
	Raw  []byte
	Mode fs.FileMode
}

// Outcome reports what happened to one path. Paths listed twice get one
// Outcome per occurrence
type Outcome struct {
	Path    string          `json:"path" yaml:"path"`
	Status  Status          `json:"status" yaml:"status"`
	Entries int             `json:"entries" yaml:"entries"`
	Removed int             `json:"removed" yaml:"removed"`
	Changed bool            `json:"changed" yaml:"changed"`
	Written bool            `json:"written" yaml:"written"`
	Error   *perr.Wire      `json:"error,omitempty" yaml:"error,omitempty"`
	Issues  []jsondoc.Issue `json:"issues,omitempty" yaml:"issues,omitempty"`

	Err error `json:"-" yaml:"-"`
}

// OK reports whether the path finished without error
func (o Outcome) OK() bool {
	return o.Status != StatusFailed && o.Status != StatusSkipped
}

// Totals summarises a Report
type Totals struct {
	Files        int `json:"files" yaml:"files"`
	Migrated     int `json:"migrated" yaml:"migrated"`
	WouldMigrate int `json:"would_migrate" yaml:"would_migrate"`
	Unchanged    int `json:"unchanged" yaml:"unchanged"`
	Failed       int `json:"failed" yaml:"failed"`
	Skipped      int `json:"skipped" yaml:"skipped"`
	Removed      int `json:"removed" yaml:"removed"`
}

// Report is the result of one run, outcomes in argument order
type Report struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Keys       []string  `json:"keys" yaml:"keys"`
	DryRun     bool      `json:"dry_run" yaml:"dry_run"`
	Check      bool      `json:"check" yaml:"check"`
	Outcomes   []Outcome `json:"outcomes" yaml:"outcomes"`
	Totals     Totals    `json:"totals" yaml:"totals"`
}

// Tally recomputes Totals from Outcomes
func (r *Report) Tally() {
	t := Totals{Files: len(r.Outcomes)}
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusMigrated:
			t.Migrated++
		case StatusWouldMigrate:
			t.WouldMigrate++
		case StatusUnchanged:
			t.Unchanged++
		case StatusFailed:
			t.Failed++
		case StatusSkipped:
			t.Skipped++
		}
		t.Removed += o.Removed
	}
	r.Totals = t
}

// Failed reports whether any path failed or was skipped
func (r Report) Failed() bool { return r.Totals.Failed+r.Totals.Skipped > 0 }

// Drift reports whether a dry run found files that would change
func (r Report) Drift() bool { return r.Totals.WouldMigrate > 0 }
