// Package shim manages the filesystem links under bin/ that intercept
// platform-tool and package-binary invocations. A shim is a
// symlink (a copy on platforms without symlink support) pointing at the
// single shim executable; the executable inspects its own invoked name
// (os.Args[0]) to recover which tool it is standing in for.
package shim

import (
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/voltajs/volta/src/internal/constants"
	"github.com/voltajs/volta/src/internal/errs"
	"github.com/voltajs/volta/src/internal/layout"
)

// Manager creates and removes shim links under a Layout's bin/ directory,
// all pointing at the same target shim executable.
type Manager struct {
	layout *layout.Layout
	target string // path to the shim executable every link points at
}

// NewManager builds a Manager over l, resolving the shim executable's path
// relative to the currently running binary (same directory, name
// "volta-shim").
func NewManager(l *layout.Layout) (*Manager, error) {
	target, err := shimExecutablePath()
	if err != nil {
		return nil, err
	}
	return &Manager{layout: l, target: target}, nil
}

// NewManagerWithTarget builds a Manager that links every shim at an
// explicit target, bypassing shimExecutablePath's self-discovery. Used by
// tests.
func NewManagerWithTarget(l *layout.Layout, target string) *Manager {
	return &Manager{layout: l, target: target}
}

func shimExecutablePath() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", errs.New(errs.Filesystem, "locate shim executable", err)
	}
	name := "volta-shim"
	if runtime.GOOS == constants.OSWindows {
		name += constants.ExtExe
	}
	return filepath.Join(filepath.Dir(execPath), name), nil
}

// Create links name under bin/ to the shim executable, replacing any
// existing link or file at that path. The link is created under a
// temporary name in the same directory and renamed into place, so a
// concurrent reader never observes a partially created shim.
func (m *Manager) Create(name string) error {
	dest := m.layout.ShimPath(name)
	tmp, err := os.CreateTemp(m.layout.Bin, ".shim-*")
	if err != nil {
		return errs.New(errs.Filesystem, "create shim", err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	_ = os.Remove(tmpName) // we only wanted a unique name

	if err := link(m.target, tmpName); err != nil {
		return errs.New(errs.Filesystem, "create shim", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return errs.New(errs.Filesystem, "create shim", err)
	}
	return nil
}

// CreateAll links every name in names.
func (m *Manager) CreateAll(names []string) error {
	for _, name := range names {
		if err := m.Create(name); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes the shim link for name, if present. Removing a shim that
// does not exist is not an error.
func (m *Manager) Remove(name string) error {
	if err := os.Remove(m.layout.ShimPath(name)); err != nil && !os.IsNotExist(err) {
		return errs.New(errs.Filesystem, "remove shim", err)
	}
	return nil
}

// RemoveAll deletes the shim links for every name in names, continuing past
// individual not-found errors and returning the first other error seen.
func (m *Manager) RemoveAll(names []string) error {
	var firstErr error
	for _, name := range names {
		if err := m.Remove(name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// List returns the base names of every shim currently linked under bin/.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.layout.Bin)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.New(errs.Filesystem, "list shims", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if runtime.GOOS == constants.OSWindows {
			name = name[:len(name)-len(filepath.Ext(name))]
		}
		names = append(names, name)
	}
	return names, nil
}

// link creates a symlink on platforms that support it; where they don't
// (historically, some Windows configurations without developer mode or
// SeCreateSymbolicLinkPrivilege), it falls back to a plain file copy, which
// still lets the shim executable dispatch on argv[0] the same way.
func link(target, dest string) error {
	if err := os.Symlink(target, dest); err != nil {
		if runtime.GOOS == constants.OSWindows {
			return copyFile(target, dest)
		}
		return err
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
