// Package report renders a migrate run report as text, json or yaml
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	perr "evqmigrate/internal/platform/errors"
	"evqmigrate/internal/services/migrate/domain"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Render writes rep to w in the given format
func Render(w io.Writer, format string, rep domain.Report) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return renderText(w, rep)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return perr.Wrap(err, perr.ErrorCodeIO, "render json report")
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return perr.Wrap(err, perr.ErrorCodeIO, "render yaml report")
		}
		if err := enc.Close(); err != nil {
			return perr.Wrap(err, perr.ErrorCodeIO, "render yaml report")
		}
		return nil
	default:
		return perr.WithField(perr.InvalidArgf("unknown report format %q (want text, json or yaml)", format), "report")
	}
}

// palette is bound to the destination writer so colour is dropped when w
// is not a terminal
type palette struct {
	status map[domain.Status]lipgloss.Style
	dim    lipgloss.Style
	bold   lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	col := func(c string) lipgloss.Style { return r.NewStyle().Width(14).Foreground(lipgloss.Color(c)) }
	return palette{
		status: map[domain.Status]lipgloss.Style{
			domain.StatusMigrated:     col("42"),
			domain.StatusWouldMigrate: col("220"),
			domain.StatusUnchanged:    col("240"),
			domain.StatusFailed:       col("196"),
			domain.StatusSkipped:      col("208"),
		},
		dim:  r.NewStyle().Foreground(lipgloss.Color("240")),
		bold: r.NewStyle().Bold(true),
	}
}

func renderText(w io.Writer, rep domain.Report) error {
	p := newPalette(w)
	var b strings.Builder

	for _, o := range rep.Outcomes {
		b.WriteString(p.status[o.Status].Render(string(o.Status)))
		b.WriteString(o.Path)
		switch {
		case o.Error != nil:
			fmt.Fprintf(&b, "  %s", p.dim.Render(o.Error.Kind+": "+o.Error.Message))
		case o.Status != domain.StatusUnchanged || o.Removed > 0:
			fmt.Fprintf(&b, "  %s", p.dim.Render(fmt.Sprintf("(%d entries, %d removed)", o.Entries, o.Removed)))
		}
		b.WriteByte('\n')
		for _, is := range o.Issues {
			if is.Index < 0 {
				fmt.Fprintf(&b, "    top-level: %s\n", is.Kind)
				continue
			}
			fmt.Fprintf(&b, "    entry %d: %s\n", is.Index, is.Kind)
		}
	}

	t := rep.Totals
	summary := fmt.Sprintf("%d files: %d migrated, %d would migrate, %d unchanged, %d failed, %d skipped; %d keys removed",
		t.Files, t.Migrated, t.WouldMigrate, t.Unchanged, t.Failed, t.Skipped, t.Removed)
	if rep.DryRun {
		summary += " (dry run)"
	}
	b.WriteString(p.bold.Render(summary))
	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "render text report")
	}
	return nil
}
