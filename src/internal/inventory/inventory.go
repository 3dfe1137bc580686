// Package inventory implements Volta's content-addressed tool cache
// Entries are keyed by (ToolKind, Version); an unpacked root
// is only observable once its ready marker exists, and concurrent stagers
// for the same key never race to publish.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/voltajs/volta/src/internal/errs"
	"github.com/voltajs/volta/src/internal/toolkind"
)

const readyMarkerName = ".ready"

// pollInterval and maxPollInterval bound the backoff used while waiting on a
// peer's in-flight publish.
const (
	pollInterval    = 50 * time.Millisecond
	maxPollInterval = 2 * time.Second
)

// publishTimeout bounds how long Stage waits on a peer's in-flight publish
// before giving up. Declared as a var, not a const,
// so tests can shrink it.
var publishTimeout = 120 * time.Second

// Store is the inventory spanning a Layout's tools/inventory (archives) and
// tools/image (unpacked trees) directories.
type Store struct {
	archiveRoot string // e.g. <volta-root>/tools/inventory
	imageRoot   string // e.g. <volta-root>/tools/image
	tmp         string // e.g. <volta-root>/tmp
}

// New builds a Store over the given archive root, image (unpacked) root,
// and staging (tmp) dir.
func New(archiveRoot, imageRoot, tmp string) *Store {
	return &Store{archiveRoot: archiveRoot, imageRoot: imageRoot, tmp: tmp}
}

func (s *Store) unpackedRoot(kind toolkind.Kind, version string) string {
	return filepath.Join(s.imageRoot, kind.String(), version)
}

// ArchivePath returns where a downloaded archive for (kind, version) is
// cached, independent of whether it has been unpacked. Used to avoid
// re-download.
func (s *Store) ArchivePath(kind toolkind.Kind, version, ext string) string {
	return filepath.Join(s.archiveRoot, kind.String(), version+ext)
}

func (s *Store) readyMarker(kind toolkind.Kind, version string) string {
	return filepath.Join(s.unpackedRoot(kind, version), readyMarkerName)
}

// Has reports whether a ready marker exists for (kind, version).
func (s *Store) Has(kind toolkind.Kind, version string) bool {
	_, err := os.Stat(s.readyMarker(kind, version))
	return err == nil
}

// UnpackedRoot returns the published unpacked root for (kind, version). The
// caller must have already confirmed Has returns true.
func (s *Store) UnpackedRoot(kind toolkind.Kind, version string) string {
	return s.unpackedRoot(kind, version)
}

// ListVersions returns every version of kind that is fully published
// (ready marker present) in the local inventory.
func (s *Store) ListVersions(kind toolkind.Kind) []string {
	entries, err := os.ReadDir(filepath.Join(s.imageRoot, kind.String()))
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if s.Has(kind, e.Name()) {
			out = append(out, e.Name())
		}
	}
	return out
}

// Handle is a reservation for an in-progress fetch, exclusive to the
// caller that created it until Publish or Abort is called.
type Handle struct {
	store      *Store
	kind       toolkind.Kind
	version    string
	stagingDir string
	lockDir    string
}

// Dir is the staging directory the caller should unpack the archive into.
func (h *Handle) Dir() string {
	return h.stagingDir
}

// Stage reserves a staging directory for (kind, version). If another
// process already holds the lock for this key, Stage polls with bounded
// backoff for that peer's publish to complete (observed via the ready
// marker) rather than colliding. If the peer publishes, Stage returns
// (nil, nil) and the caller should use Has/UnpackedRoot directly.
func (s *Store) Stage(ctx context.Context, kind toolkind.Kind, version string) (*Handle, error) {
	if s.Has(kind, version) {
		return nil, nil
	}

	lockDir := filepath.Join(s.tmp, "locks", kind.String(), version)
	if err := os.MkdirAll(filepath.Dir(lockDir), 0o755); err != nil {
		return nil, errs.New(errs.Filesystem, "stage", err).WithTool(kind.String(), version)
	}

	deadline := time.Now().Add(publishTimeout)
	backoff := pollInterval
	for {
		err := os.Mkdir(lockDir, 0o755)
		if err == nil {
			// The lock may have been released by a peer that just published.
			if s.Has(kind, version) {
				_ = os.Remove(lockDir)
				return nil, nil
			}
			break
		}
		if !os.IsExist(err) {
			return nil, errs.New(errs.Filesystem, "stage", err).WithTool(kind.String(), version)
		}

		// A peer holds the lock. Wait for it to either publish or vanish.
		if s.Has(kind, version) {
			return nil, nil
		}
		if time.Now().After(deadline) {
			return nil, errs.New(errs.ConcurrentFetchTimeout, "stage", fmt.Errorf("timed out waiting for peer publish of %s %s", kind, version)).
				WithTool(kind.String(), version)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxPollInterval {
			backoff = maxPollInterval
		}
	}

	stagingDir := filepath.Join(s.tmp, "staging", kind.String(), version)
	if err := os.RemoveAll(stagingDir); err != nil {
		_ = os.Remove(lockDir)
		return nil, errs.New(errs.Filesystem, "stage", err).WithTool(kind.String(), version)
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		_ = os.Remove(lockDir)
		return nil, errs.New(errs.Filesystem, "stage", err).WithTool(kind.String(), version)
	}

	return &Handle{store: s, kind: kind, version: version, stagingDir: stagingDir, lockDir: lockDir}, nil
}

// Publish atomically renames the staging directory to the final unpacked
// root, then creates the ready marker last. Readers that observe the root
// without the marker must treat the entry as absent.
func (h *Handle) Publish() error {
	final := h.store.unpackedRoot(h.kind, h.version)
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return errs.New(errs.Filesystem, "publish", err).WithTool(h.kind.String(), h.version)
	}

	// Clear any stale partial directory left by a prior interrupted publish
	// (it never reached the marker, so it is garbage).
	if _, err := os.Stat(final); err == nil {
		if err := os.RemoveAll(final); err != nil {
			return errs.New(errs.Filesystem, "publish", err).WithTool(h.kind.String(), h.version)
		}
	}

	if err := os.Rename(h.stagingDir, final); err != nil {
		return errs.New(errs.Filesystem, "publish", err).WithTool(h.kind.String(), h.version)
	}

	marker := filepath.Join(final, readyMarkerName)
	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		return errs.New(errs.Filesystem, "publish", err).WithTool(h.kind.String(), h.version)
	}

	return os.Remove(h.lockDir)
}

// Abort discards a staging directory after a failed fetch, releasing the
// lock for the next caller.
func (h *Handle) Abort() error {
	var errOut error
	if err := os.RemoveAll(h.stagingDir); err != nil {
		errOut = errors.Join(errOut, err)
	}
	if err := os.Remove(h.lockDir); err != nil && !os.IsNotExist(err) {
		errOut = errors.Join(errOut, err)
	}
	return errOut
}
