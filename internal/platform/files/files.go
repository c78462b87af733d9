// Package files reads and atomically rewrites the files a migration touches
package files

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	perr "evqmigrate/internal/platform/errors"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// seams
var (
	rename    = os.Rename
	syncFile  = func(f *os.File) error { return f.Sync() }
	createTmp = os.CreateTemp
	readDir   = os.ReadDir
)

// Read returns the raw bytes and permission bits of path
func Read(path string) ([]byte, fs.FileMode, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, 0, ioErr(err, "stat", path)
	}
	if fi.IsDir() {
		return nil, 0, perr.WithField(perr.Newf(perr.ErrorCodeIO, "%s is a directory", path), path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, ioErr(err, "read", path)
	}
	return b, fi.Mode().Perm(), nil
}

// DecodeUTF8 returns b as UTF-8 text with a leading byte order mark removed.
// Invalid UTF-8 is an ErrorCodeJSON error; bytes are never replaced, and
// UTF-16 input is rejected rather than transcoded
func DecodeUTF8(b []byte) ([]byte, error) {
	if off := invalidUTF8(b); off >= 0 {
		return nil, perr.JSONErrf("invalid UTF-8 at offset %d", off)
	}
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), b)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode utf-8")
	}
	return out, nil
}

// invalidUTF8 returns the offset of the first byte that does not start a valid
// UTF-8 sequence, or -1
func invalidUTF8(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, n := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && n <= 1 {
			return i
		}
		i += n
	}
	return -1
}

// WriteAtomic replaces path with data. The bytes go to a temp file in the
// same directory which is synced and renamed over path, so readers see the
// old content or the new content, never a truncated file
func WriteAtomic(path string, data []byte, mode fs.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := createTmp(dir, "."+base+".*.tmp")
	if err != nil {
		return ioErr(err, "create temp for", path)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return ioErr(err, "write", tmpName)
	}
	if mode != 0 {
		if err := tmp.Chmod(mode); err != nil {
			_ = tmp.Close()
			cleanup()
			return ioErr(err, "chmod", tmpName)
		}
	}
	if err := syncFile(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return ioErr(err, "sync", tmpName)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return ioErr(err, "close", tmpName)
	}
	if err := rename(tmpName, path); err != nil {
		cleanup()
		return ioErr(err, "rename over", path)
	}
	return nil
}

// Target is one expanded argument. Err is set when a directory argument
// could not be listed; the run reports it as that argument's failure
type Target struct {
	Path string
	Err  error
}

// Expand replaces every directory in paths with the *.json files directly
// inside it, in lexical order. Other entries pass through untouched, so
// missing paths surface later as per-path errors
func Expand(paths []string) []Target {
	out := make([]Target, 0, len(paths))
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil || !fi.IsDir() {
			out = append(out, Target{Path: p})
			continue
		}
		ents, err := readDir(p)
		if err != nil {
			out = append(out, Target{Path: p, Err: ioErr(err, "read dir", p)})
			continue
		}
		var found []string
		for _, e := range ents {
			if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
				continue
			}
			found = append(found, filepath.Join(p, e.Name()))
		}
		slices.Sort(found)
		for _, f := range found {
			out = append(out, Target{Path: f})
		}
	}
	return out
}

func ioErr(err error, op, path string) error {
	code := perr.ErrorCodeIO
	if errors.Is(err, fs.ErrNotExist) {
		code = perr.ErrorCodeNotFound
	}
	return perr.Wrapf(err, code, "%s %s", op, path)
}
