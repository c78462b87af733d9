// Package module implements the migrate module
package module

import (
	"slices"
	"strings"

	"evqmigrate/internal/modkit"
	perr "evqmigrate/internal/platform/errors"
	"evqmigrate/internal/services/migrate/domain"
	"evqmigrate/internal/services/migrate/repo"
	"evqmigrate/internal/services/migrate/service"
)

// Ports exposed by the migrate module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

var _ modkit.Module = (*Module)(nil)

// New constructs the migrate module. Settings come from EVQ_MIGRATE_* with
// overrides layered on top; the local filesystem is used unless
// WithPorts(domain.Ports) supplies another FileStore
func New(deps modkit.Deps, overrides Overrides, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("migrate"),
	}, opts...)...)

	ports := domain.Ports{Files: repo.NewFS()}
	if b.Ports != nil {
		p, ok := b.Ports.(domain.Ports)
		if !ok {
			return nil, perr.InvalidArgf("migrate module: expected WithPorts(migrate/domain.Ports), got %T", b.Ports)
		}
		if p.Files != nil {
			ports.Files = p.Files
		}
	}

	// Merge config + overrides
	cfg := overrides.merge(FromConfig(deps.Cfg))
	if !slices.Contains(ReportFormats, cfg.Report) {
		return nil, perr.WithField(
			perr.Newf(perr.ErrorCodeValidation, "report must be one of %s", strings.Join(ReportFormats, ", ")),
			"report",
		)
	}

	log := deps.Log.With().Str("component", b.Name).Logger()
	runner, err := service.New(ports.Files, log, service.Config{
		Keys:           cfg.Keys,
		Workers:        cfg.Workers,
		DryRun:         cfg.DryRun,
		Check:          cfg.Check,
		FailFast:       cfg.FailFast,
		EscapeNonASCII: cfg.ASCII,
	})
	if err != nil {
		return nil, err
	}

	return &Module{
		deps:  deps,
		opts:  cfg,
		ports: Ports{Runner: runner},
	}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "migrate" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Options returns the effective settings after config and overrides merged
func (m *Module) Options() Options { return m.opts }
