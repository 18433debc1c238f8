// Package host is the file system boundary of the CLI. Reads and writes go
// through an afero.Fs so tests can run against memory, and every successful
// write is reported to a Notifier on a best-effort basis.
package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/kiesman99/spritepack/internal/logging"
)

// sidecarExt marks editor metadata files that are never treated as inputs.
const sidecarExt = ".meta"

// FS reads and writes files on behalf of the pack and unpack commands.
type FS struct {
	fs       afero.Fs
	notifier Notifier
}

// New wraps fs. A nil notifier disables notifications.
func New(fs afero.Fs, notifier Notifier) *FS {
	if notifier == nil {
		notifier = Nop{}
	}
	return &FS{fs: fs, notifier: notifier}
}

// OS returns an FS backed by the operating system.
func OS(notifier Notifier) *FS {
	return New(afero.NewOsFs(), notifier)
}

// Fs exposes the underlying file system.
func (h *FS) Fs() afero.Fs {
	return h.fs
}

// Read returns the contents of path.
func (h *FS) Read(path string) ([]byte, error) {
	data, err := afero.ReadFile(h.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Write stores data at path, creating parent directories. A failing
// notification is logged and does not fail the write.
func (h *FS) Write(ctx context.Context, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := h.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(h.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := h.notifier.Notify(ctx, path); err != nil {
		logging.FromContext(ctx).Warn("Index notification failed", "path", path, "err", err)
	}
	return nil
}

// Exists reports whether path exists.
func (h *FS) Exists(path string) (bool, error) {
	return afero.Exists(h.fs, path)
}

// IsDir reports whether path is an existing directory.
func (h *FS) IsDir(path string) (bool, error) {
	ok, err := afero.IsDir(h.fs, path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return ok, err
}

// List returns the regular files directly inside dir, sorted by name.
// Hidden files and sidecar files are skipped.
func (h *FS) List(dir string) ([]string, error) {
	entries, err := afero.ReadDir(h.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.EqualFold(filepath.Ext(name), sidecarExt) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}
