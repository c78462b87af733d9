package testkit

import (
	"path/filepath"
	"testing"
)

func TestMustPanic(t *testing.T) {
	t.Parallel()

	MustPanic(t, func() {
		panic("boom")
	})
}

func TestMustContain(t *testing.T) {
	t.Parallel()

	MustContain(t, "alpha beta gamma", "beta")
}

func TestWriteReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := WriteFile(t, dir, "nested/a.json", "[]")
	if p != filepath.Join(dir, "nested", "a.json") {
		t.Fatalf("unexpected path %s", p)
	}
	if got := ReadFile(t, p); got != "[]" {
		t.Fatalf("ReadFile = %q", got)
	}
	MustEqualFile(t, p, "[]")
}
