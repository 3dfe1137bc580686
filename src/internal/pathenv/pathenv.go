// Package pathenv manipulates the PATH environment variable: membership
// checks used by the `setup` command, and the prepend/strip operations the
// Executor (§4.H) and the bypass path use to reshape a child's PATH.
package pathenv

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/voltajs/volta/src/internal/constants"
)

func separator() string {
	if runtime.GOOS == constants.OSWindows {
		return ";"
	}
	return ":"
}

// Split splits a PATH-style string into its component directories.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, separator())
}

// Join reassembles directories into a PATH-style string.
func Join(dirs []string) string {
	return strings.Join(dirs, separator())
}

// IsInPath reports whether dir is present (after Clean) in the current
// process's PATH.
func IsInPath(dir string) bool {
	dir = filepath.Clean(dir)
	for _, p := range Split(os.Getenv("PATH")) {
		if filepath.Clean(p) == dir {
			return true
		}
	}
	return false
}

// Prepend returns a new PATH string with dirs inserted at the front, ahead
// of base, in the given order (dirs[0] ends up first).
func Prepend(base string, dirs ...string) string {
	combined := make([]string, 0, len(dirs)+1)
	combined = append(combined, dirs...)
	if base != "" {
		combined = append(combined, base)
	}
	return Join(combined)
}

// Remove returns a new PATH string with every entry equal (after Clean) to
// one of the given directories removed. Used by the bypass path to strip
// Volta-owned shim/image directories before exec'ing the real tool.
func Remove(path string, dirs ...string) string {
	remove := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		remove[filepath.Clean(d)] = true
	}

	var kept []string
	for _, p := range Split(path) {
		if remove[filepath.Clean(p)] {
			continue
		}
		kept = append(kept, p)
	}
	return Join(kept)
}

// HasPrefixDir reports whether dir is the same as or nested under prefix.
func HasPrefixDir(dir, prefix string) bool {
	dir = filepath.Clean(dir)
	prefix = filepath.Clean(prefix)
	if dir == prefix {
		return true
	}
	return strings.HasPrefix(dir, prefix+string(os.PathSeparator))
}
