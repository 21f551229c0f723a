// Package workspace manages the per-session scratch directory.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace is one scratch directory owned by a single session
type Workspace struct {
	id  string
	dir string
}

// New allocates a fresh empty scratch directory under root, or the system
// temp dir when root is empty.
func New(root string) (*Workspace, error) {
	id := uuid.NewString()

	dir, err := os.MkdirTemp(root, fmt.Sprintf("pdf-parser-%s-", id[:8]))
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}

	return &Workspace{id: id, dir: dir}, nil
}

// ID returns the session ID the directory was named after
func (w *Workspace) ID() string { return w.id }

// Dir returns the scratch directory path
func (w *Workspace) Dir() string { return w.dir }

// Path joins elem onto the scratch directory.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.dir}, elem...)...)
}

// Subdir creates (if needed) and returns a directory inside the workspace.
func (w *Workspace) Subdir(name string) (string, error) {
	dir := w.Path(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	return dir, nil
}

// Remove deletes the scratch directory recursively. Removing a directory
// that is already gone returns an error wrapping os.ErrNotExist.
func (w *Workspace) Remove() error {
	if _, err := os.Stat(w.dir); err != nil {
		return fmt.Errorf("scratch directory %s: %w", w.dir, err)
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("remove scratch directory %s: %w", w.dir, err)
	}
	return nil
}
