package domain

import (
	"context"
	"io/fs"
)

// RunnerPort is the public port of the migrate module
type RunnerPort interface {
	// Run migrates paths in order and reports one Outcome per path.
	// Per-path failures live in the Report; the error is for run-level problems
	Run(ctx context.Context, paths []string) (Report, error)
}

// FileStore is where documents are read from and written back to
type FileStore interface {
	// Expand resolves arguments (e.g. directories) into the ordered list of
	// files to migrate. An argument that cannot be resolved comes back as a
	// Target carrying Err; the returned error is for run-level problems
	Expand(ctx context.Context, paths []string) ([]Target, error)

	// Read loads one file
	Read(ctx context.Context, path string) (File, error)

	// Write replaces the content of path, keeping mode
	Write(ctx context.Context, path string, data []byte, mode fs.FileMode) error
}

// Ports are dependencies that can be injected into the migrate module
type Ports struct {
	Files FileStore
}
