// Package service implements the migrate runner
package service

import (
	"bytes"
	"context"
	"time"

	"evqmigrate/internal/core/jsondoc"
	perr "evqmigrate/internal/platform/errors"
	"evqmigrate/internal/platform/files"
	"evqmigrate/internal/platform/logger"
	"evqmigrate/internal/platform/validate"
	"evqmigrate/internal/services/migrate/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Config for the migrate service
type Config struct {
	Keys           []string `json:"keys" validate:"required,min=1,dive,keyname"`
	Workers        int      `json:"workers" validate:"min=1,max=64"`
	DryRun         bool     `json:"dry_run"`
	Check          bool     `json:"check"` // dry run; callers fail when anything would change
	FailFast       bool     `json:"fail_fast"`
	EscapeNonASCII bool     `json:"escape_non_ascii"`
}

// Service implements domain.RunnerPort
type Service struct {
	Files domain.FileStore
	Log   logger.Logger
	Cfg   Config
}

// seams
var (
	now   = func() time.Time { return time.Now().UTC() }
	newID = uuid.NewString
)

// New validates cfg and constructs the service
func New(store domain.FileStore, log logger.Logger, cfg Config) (*Service, error) {
	if store == nil {
		return nil, perr.InvalidArgf("migrate service: nil file store")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, perr.WithOp(err, "migrate.config")
	}
	cfg.Keys = append([]string(nil), cfg.Keys...)
	return &Service{Files: store, Log: log, Cfg: cfg}, nil
}

func (s *Service) dryRun() bool { return s.Cfg.DryRun || s.Cfg.Check }

// Run migrates every path (after expansion) and returns the run report
func (s *Service) Run(ctx context.Context, paths []string) (domain.Report, error) {
	ctx = logger.WithRun(ctx, newID())
	log := logger.From(ctx, s.Log)

	rep := domain.Report{
		RunID:     logger.RunID(ctx),
		StartedAt: now(),
		Keys:      s.Cfg.Keys,
		DryRun:    s.dryRun(),
		Check:     s.Cfg.Check,
	}

	targets, err := s.Files.Expand(ctx, paths)
	if err != nil {
		rep.FinishedAt = now()
		return rep, perr.WithOp(err, "expand")
	}
	log.Debug().Int("args", len(paths)).Int("files", len(targets)).Strs("keys", s.Cfg.Keys).
		Bool("dry_run", rep.DryRun).Msg("migration started")

	out := make([]domain.Outcome, len(targets))
	if s.sequential(targets) {
		s.runSequential(ctx, targets, out)
	} else {
		s.runParallel(ctx, targets, out)
	}

	rep.Outcomes = out
	rep.FinishedAt = now()
	rep.Tally()

	log.Info().
		Int("files", rep.Totals.Files).
		Int("migrated", rep.Totals.Migrated).
		Int("would_migrate", rep.Totals.WouldMigrate).
		Int("unchanged", rep.Totals.Unchanged).
		Int("failed", rep.Totals.Failed).
		Int("skipped", rep.Totals.Skipped).
		Int("removed", rep.Totals.Removed).
		Dur("elapsed", rep.FinishedAt.Sub(rep.StartedAt)).
		Msg("migration finished")
	return rep, nil
}

// sequential reports whether targets must be handled one at a time: a single
// worker, fail-fast, or a path listed twice (the later pass has to see the
// earlier write)
func (s *Service) sequential(targets []domain.Target) bool {
	if s.Cfg.Workers <= 1 || s.Cfg.FailFast || len(targets) < 2 {
		return true
	}
	seen := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if _, dup := seen[t.Path]; dup {
			return true
		}
		seen[t.Path] = struct{}{}
	}
	return false
}

func (s *Service) runSequential(ctx context.Context, targets []domain.Target, out []domain.Outcome) {
	var abort error
	for i, t := range targets {
		if err := ctx.Err(); err != nil {
			out[i] = skipped(t.Path, perr.Wrap(err, perr.ErrorCodeCanceled, "run canceled"))
			continue
		}
		if abort != nil {
			out[i] = skipped(t.Path, abort)
			continue
		}
		out[i] = s.migrateOne(ctx, t)
		if s.Cfg.FailFast && out[i].Status == domain.StatusFailed {
			abort = perr.Canceledf("skipped after %s failed", t.Path)
		}
	}
}

func (s *Service) runParallel(ctx context.Context, targets []domain.Target, out []domain.Outcome) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Cfg.Workers)
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i] = skipped(t.Path, perr.Wrap(err, perr.ErrorCodeCanceled, "run canceled"))
				return nil
			}
			out[i] = s.migrateOne(gctx, t)
			return nil
		})
	}
	_ = g.Wait()
}

// migrateOne runs read, strip, encode, write for a single path. Nothing is
// written unless every earlier step succeeded
func (s *Service) migrateOne(ctx context.Context, t domain.Target) domain.Outcome {
	path := t.Path
	log := logger.From(ctx, s.Log).With().Str("path", path).Logger()

	if t.Err != nil {
		return s.fail(&log, path, perr.WithOp(t.Err, "expand"))
	}

	f, err := s.Files.Read(ctx, path)
	if err != nil {
		return s.fail(&log, path, perr.WithOp(err, "read"))
	}
	text, err := files.DecodeUTF8(f.Raw)
	if err != nil {
		return s.fail(&log, path, perr.WithOp(err, "decode"))
	}
	doc, err := jsondoc.Parse(text)
	if err != nil {
		return s.fail(&log, path, perr.WithOp(err, "parse"))
	}

	o := domain.Outcome{Path: path, Entries: len(doc)}
	o.Removed = doc.Strip(s.Cfg.Keys...)

	enc, err := doc.Encode(jsondoc.EncodeOptions{EscapeNonASCII: s.Cfg.EscapeNonASCII})
	if err != nil {
		return s.fail(&log, path, perr.WithOp(err, "encode"))
	}
	o.Changed = !bytes.Equal(enc, f.Raw)

	switch {
	case !o.Changed:
		o.Status = domain.StatusUnchanged
	case s.dryRun():
		o.Status = domain.StatusWouldMigrate
	default:
		if err := s.Files.Write(ctx, path, enc, f.Mode); err != nil {
			failed := s.fail(&log, path, perr.WithOp(err, "write"))
			failed.Entries, failed.Removed, failed.Changed = o.Entries, o.Removed, o.Changed
			return failed
		}
		o.Written = true
		o.Status = domain.StatusMigrated
	}

	log.Debug().Str("status", string(o.Status)).Int("entries", o.Entries).Int("removed", o.Removed).Msg("path done")
	return o
}

// fail turns err into a failed Outcome. Cancellation that lands mid-path
// (e.g. the store noticed ctx) counts as skipped, not failed
func (s *Service) fail(log *logger.Logger, path string, err error) domain.Outcome {
	if perr.IsCode(err, perr.ErrorCodeCanceled) {
		log.Debug().Err(err).Msg("path skipped")
		return skipped(path, err)
	}
	log.Warn().Err(err).Str("kind", perr.Kind(perr.CodeOf(err))).Msg("path failed")
	w := perr.WireFrom(err)
	return domain.Outcome{
		Path:   path,
		Status: domain.StatusFailed,
		Error:  &w,
		Issues: jsondoc.IssuesOf(err),
		Err:    err,
	}
}

func skipped(path string, err error) domain.Outcome {
	w := perr.WireFrom(err)
	return domain.Outcome{Path: path, Status: domain.StatusSkipped, Error: &w, Err: err}
}
