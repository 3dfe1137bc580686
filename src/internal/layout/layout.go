// Package layout defines Volta's rigid on-disk directory tree under a home
// root. All other components obtain their paths here; no other
// package synthesizes a path under the Volta root itself.
package layout

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/voltajs/volta/src/internal/constants"
)

// CurrentLayoutVersion is the on-disk layout schema version this binary
// writes and expects. A mismatch is handled by an external migrator, not by
// this package.
const CurrentLayoutVersion = 1

// Layout holds every directory and fixed file Volta reads or writes.
type Layout struct {
	Root string // home root, overridable by VOLTA_HOME

	Bin            string // bin/: shim links
	Tmp            string // tmp/: staging area
	ToolsInventory string // tools/inventory/<kind>/: downloaded archives
	ToolsImage     string // tools/image/<kind>/<version>/: unpacked trees
	ToolsUser      string // tools/user/: default platform & package records

	HooksFile        string // hooks.json
	LayoutStampFile  string // layout.v<n>, the layout version stamp
	DefaultImageFile string // tools/user/default.json
	PackagesDir      string // tools/user/packages/<name>/
}

var (
	defaultLayout *Layout
	layoutOnce    sync.Once
)

// Default returns the process-wide default Layout, computed once.
func Default() *Layout {
	layoutOnce.Do(func() {
		defaultLayout = New(rootDir())
	})
	return defaultLayout
}

// New builds a Layout rooted at the given directory.
func New(root string) *Layout {
	tools := filepath.Join(root, "tools")
	toolsUser := filepath.Join(tools, "user")
	return &Layout{
		Root:             root,
		Bin:              filepath.Join(root, "bin"),
		Tmp:              filepath.Join(root, "tmp"),
		ToolsInventory:   filepath.Join(tools, "inventory"),
		ToolsImage:       filepath.Join(tools, "image"),
		ToolsUser:        toolsUser,
		HooksFile:        filepath.Join(root, "hooks.json"),
		LayoutStampFile:  filepath.Join(root, stampName()),
		DefaultImageFile: filepath.Join(toolsUser, "default.json"),
		PackagesDir:      filepath.Join(toolsUser, "packages"),
	}
}

func stampName() string {
	return "layout.v" + itoa(CurrentLayoutVersion)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// rootDir resolves the Volta home root: VOLTA_HOME env var, else
// $HOME/.volta.
func rootDir() string {
	if root := os.Getenv(constants.EnvVoltaHome); root != "" {
		return root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".volta"
	}
	return filepath.Join(home, ".volta")
}

// EnsureDirectories creates every directory this Layout names, along with
// the layout version stamp if absent.
func (l *Layout) EnsureDirectories() error {
	dirs := []string{
		l.Root,
		l.Bin,
		l.Tmp,
		l.ToolsInventory,
		l.ToolsImage,
		l.ToolsUser,
		l.PackagesDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if _, err := os.Stat(l.LayoutStampFile); os.IsNotExist(err) {
		if err := os.WriteFile(l.LayoutStampFile, nil, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// ShimPath returns the path to a shim link, with a .exe suffix on Windows.
func (l *Layout) ShimPath(name string) string {
	if runtime.GOOS == constants.OSWindows {
		name += constants.ExtExe
	}
	return filepath.Join(l.Bin, name)
}

// PackageDir returns the private install prefix for a globally installed
// third-party package.
func (l *Layout) PackageDir(name string) string {
	return filepath.Join(l.PackagesDir, name)
}

// ResetCache discards the cached Default() singleton; used by tests that
// need to point at a fresh VOLTA_HOME.
func ResetCache() {
	layoutOnce = sync.Once{}
	defaultLayout = nil
}

// WriteFileAtomic writes data to path by writing to a sibling temp file in
// the same directory and renaming it over the destination, so readers never
// observe a partially-written file. Used for every config write in Volta
// (hooks.json, default.json, package records, project manifests).
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
