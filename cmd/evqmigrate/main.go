// Command evqmigrate strips retired keys from input event queue fixtures and
// rewrites each file with sorted keys and 4-space indentation
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"evqmigrate/internal/core/version"
	"evqmigrate/internal/modkit"
	mmodule "evqmigrate/internal/modkit/module"
	"evqmigrate/internal/platform/config"
	perr "evqmigrate/internal/platform/errors"
	"evqmigrate/internal/platform/logger"
	"evqmigrate/internal/services/migrate/domain"
	migratemod "evqmigrate/internal/services/migrate/module"
	"evqmigrate/internal/services/migrate/report"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and returns the process exit status
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	code := 0
	cmd := newRootCmd(config.New(), &code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "evqmigrate:", err)
		return perr.ExitCode(perr.CodeOf(err))
	}
	return code
}

func newRootCmd(cfg config.Conf, code *int) *cobra.Command {
	// flag defaults come from EVQ_MIGRATE_*
	opts := migratemod.FromConfig(cfg)
	var quiet bool

	cmd := &cobra.Command{
		Use:   "evqmigrate [flags] PATH...",
		Short: "Remove retired keys from event queue JSON files",
		Long: `evqmigrate loads each JSON file (an array of objects), deletes the target
key from every top-level object, and rewrites the file with sorted keys and
4-space indentation. Directories expand to the *.json files inside them.

A failing path does not stop the others; the run exits 1 if any path failed
or, with --check, if any file would change.`,
		Version:       version.Info().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := *logger.Named("cli")
			if quiet {
				log = log.Level(zerolog.ErrorLevel)
			}

			mod, err := migratemod.New(modkit.Deps{Log: log, Cfg: cfg}, overrides(cmd, opts))
			if err != nil {
				return err
			}
			runner := mmodule.MustPortsOf[domain.RunnerPort](mod)

			rep, err := runner.Run(cmd.Context(), args)
			if err != nil {
				return err
			}
			if err := report.Render(cmd.OutOrStdout(), mod.Options().Report, rep); err != nil {
				return err
			}

			if rep.Failed() || (rep.Check && rep.Drift()) {
				*code = 1
			}
			return nil
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "usage")
	})

	f := cmd.Flags()
	f.StringArrayVarP(&opts.Keys, "key", "k", opts.Keys, "top-level key to remove (repeatable)")
	f.IntVarP(&opts.Workers, "workers", "w", opts.Workers, "files processed in parallel")
	f.BoolVarP(&opts.DryRun, "dry-run", "n", opts.DryRun, "report changes without writing")
	f.BoolVar(&opts.Check, "check", opts.Check, "dry run that exits 1 when any file would change")
	f.BoolVar(&opts.FailFast, "fail-fast", opts.FailFast, "stop at the first failing path")
	f.BoolVar(&opts.ASCII, "ascii", opts.ASCII, `escape non-ASCII characters as \uXXXX`)
	f.StringVarP(&opts.Report, "report", "r", opts.Report, "report format: text, json, yaml")
	f.BoolVarP(&quiet, "quiet", "q", false, "only log errors")

	return cmd
}

// overrides passes on only the flags given on the command line, so an
// explicit zero or false still reaches validation
func overrides(cmd *cobra.Command, opts migratemod.Options) migratemod.Overrides {
	f := cmd.Flags()
	var o migratemod.Overrides
	if f.Changed("key") {
		o.Keys = opts.Keys
	}
	if f.Changed("workers") {
		o.Workers = &opts.Workers
	}
	if f.Changed("dry-run") {
		o.DryRun = &opts.DryRun
	}
	if f.Changed("check") {
		o.Check = &opts.Check
	}
	if f.Changed("fail-fast") {
		o.FailFast = &opts.FailFast
	}
	if f.Changed("ascii") {
		o.ASCII = &opts.ASCII
	}
	if f.Changed("report") {
		o.Report = &opts.Report
	}
	return o
}
