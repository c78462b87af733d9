package module

import (
	"strings"

	"evqmigrate/internal/platform/config"
	"evqmigrate/internal/services/migrate/domain"
)

// ReportFormats lists the accepted report renderer formats
var ReportFormats = []string{"text", "json", "yaml"}

// Options holds configuration settings for the migrate module
type Options struct {
	Keys     []string
	Workers  int
	DryRun   bool
	Check    bool
	FailFast bool
	ASCII    bool
	Report   string
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	mc := cfg.Prefix("EVQ_MIGRATE_")
	return Options{
		Keys:     mc.MayCSV("KEYS", []string{domain.DefaultKey}),
		Workers:  mc.MayInt("WORKERS", 1),
		DryRun:   mc.MayBool("DRY_RUN", false),
		Check:    mc.MayBool("CHECK", false),
		FailFast: mc.MayBool("FAIL_FAST", false),
		ASCII:    mc.MayBool("ASCII", true),
		Report:   strings.ToLower(mc.MayString("REPORT", "text")),
	}
}

// Overrides are caller-supplied settings layered over FromConfig. Nil
// fields keep the configured value; set fields win even when zero
type Overrides struct {
	Keys     []string
	Workers  *int
	DryRun   *bool
	Check    *bool
	FailFast *bool
	ASCII    *bool
	Report   *string
}

// merge applies o on top of base
func (o Overrides) merge(base Options) Options {
	if len(o.Keys) > 0 {
		base.Keys = o.Keys
	}
	if o.Workers != nil {
		base.Workers = *o.Workers
	}
	if o.DryRun != nil {
		base.DryRun = *o.DryRun
	}
	if o.Check != nil {
		base.Check = *o.Check
	}
	if o.FailFast != nil {
		base.FailFast = *o.FailFast
	}
	if o.ASCII != nil {
		base.ASCII = *o.ASCII
	}
	if o.Report != nil {
		base.Report = strings.ToLower(*o.Report)
	}
	return base
}
