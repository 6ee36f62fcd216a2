package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths describes the runtime folder layout under the database path:
// the KV store itself, crash dumps, and scratch space.
type Paths struct {
	Store string
	Crash string
	Tmp   string
}

// Layout returns the canonical paths under dbPath without creating them.
func Layout(dbPath string) Paths {
	statePath := filepath.Join(dbPath, "state")
	return Paths{
		Store: filepath.Join(dbPath, "store"),
		Crash: filepath.Join(statePath, "crash"),
		Tmp:   filepath.Join(statePath, "tmp"),
	}
}

// Ensure creates the runtime layout under dbPath. Symlinked or
// group/other-writable directories are rejected; each directory must be
// writable by this process.
func Ensure(dbPath string) (Paths, error) {
	p := Layout(dbPath)
	for _, dir := range []string{p.Store, p.Crash, p.Tmp} {
		if err := ensureDir(dir); err != nil {
			return Paths{}, err
		}
	}
	return p, nil
}

func ensureDir(p string) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("cannot create parent for %s: %w", p, err)
	}
	if fi, err := os.Lstat(p); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("path is a symlink: %s", p)
		}
		if !fi.IsDir() {
			return fmt.Errorf("path exists and is not a directory: %s", p)
		}
		if fi.Mode().Perm()&0o022 != 0 {
			return fmt.Errorf("path has permissive mode (group/other write): %s", p)
		}
	}
	if err := os.MkdirAll(p, 0o700); err != nil {
		return fmt.Errorf("cannot create path %s: %w", p, err)
	}

	// writability check: create and remove a temp file
	tmp, err := os.CreateTemp(p, ".validate-*")
	if err != nil {
		return fmt.Errorf("path not writable: %s: %w", p, err)
	}
	tmp.Close()
	_ = os.Remove(tmp.Name())
	return nil
}
