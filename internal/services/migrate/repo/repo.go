// Package repo implements the migrate FileStore on the local filesystem
package repo

import (
	"context"
	"io/fs"

	perr "evqmigrate/internal/platform/errors"
	"evqmigrate/internal/platform/files"
	"evqmigrate/internal/services/migrate/domain"
)

// FS is a domain.FileStore backed by the local filesystem
type FS struct{}

// NewFS returns the filesystem store
func NewFS() *FS { return &FS{} }

var _ domain.FileStore = (*FS)(nil)

// Expand replaces directory arguments with the *.json files inside them
func (s *FS) Expand(ctx context.Context, paths []string) ([]domain.Target, error) {
	if err := ctx.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeCanceled, "expand paths")
	}
	found := files.Expand(paths)
	out := make([]domain.Target, len(found))
	for i, t := range found {
		out[i] = domain.Target{Path: t.Path, Err: t.Err}
	}
	return out, nil
}

// Read loads path with its permission bits
func (s *FS) Read(ctx context.Context, path string) (domain.File, error) {
	if err := ctx.Err(); err != nil {
		return domain.File{}, perr.Wrap(err, perr.ErrorCodeCanceled, "read "+path)
	}
	raw, mode, err := files.Read(path)
	if err != nil {
		return domain.File{}, err
	}
	return domain.File{Path: path, Raw: raw, Mode: mode}, nil
}

// Write atomically replaces path
func (s *FS) Write(ctx context.Context, path string, data []byte, mode fs.FileMode) error {
	if err := ctx.Err(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeCanceled, "write "+path)
	}
	return files.WriteAtomic(path, data, mode)
}
