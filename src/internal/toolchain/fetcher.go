package toolchain

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/voltajs/volta/src/internal/download"
	"github.com/voltajs/volta/src/internal/errs"
	"github.com/voltajs/volta/src/internal/hooks"
	"github.com/voltajs/volta/src/internal/inventory"
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/ui"
)

const (
	retryAttempts = 3
	retryBase     = 500 * time.Millisecond
)

// Fetcher materializes a (ToolKind, Version) into the Inventory (spec
// §4.C): resolve a download URL via Hooks, download with retry, verify, and
// unpack into the staging handle before publishing.
type Fetcher struct {
	inv      *inventory.Store
	hooks    *hooks.Config
	registry *Registry
}

// NewFetcher builds a Fetcher over inv, the session's Hooks, and the
// Provider registry.
func NewFetcher(inv *inventory.Store, hc *hooks.Config, registry *Registry) *Fetcher {
	return &Fetcher{inv: inv, hooks: hc, registry: registry}
}

// Fetch ensures kind@version is present in the inventory, downloading and
// unpacking it if necessary. It is a no-op if the version is already
// published.
func (f *Fetcher) Fetch(ctx context.Context, kind toolkind.Kind, version string) error {
	if f.inv.Has(kind, version) {
		return nil
	}

	provider, err := f.registry.Get(kind)
	if err != nil {
		return errs.New(errs.Unsupported, "fetch", err).WithTool(kind.String(), version)
	}

	url, ext, sha256sum, err := f.resolveURL(kind, version, provider)
	if err != nil {
		return err
	}

	archivePath := f.inv.ArchivePath(kind, version, ext)
	if _, err := os.Stat(archivePath); err != nil {
		ui.Progress("Downloading %s %s", kind, version)
		if err := f.downloadWithRetry(ctx, url, archivePath); err != nil {
			return errs.New(errs.NetworkError, "fetch", err).WithTool(kind.String(), version)
		}
		if sha256sum != "" {
			if verr := download.VerifyFile(archivePath, sha256sum); verr != nil {
				_ = os.Remove(archivePath)
				return errs.New(errs.DownloadCorrupt, "fetch", verr).WithTool(kind.String(), version)
			}
		}
	}

	handle, err := f.inv.Stage(ctx, kind, version)
	if err != nil {
		return err
	}
	if handle == nil {
		return nil // a peer published while we were downloading
	}

	if err := extractArchive(archivePath, handle.Dir(), ext, provider); err != nil {
		_ = handle.Abort()
		return errs.New(errs.ArchiveCorrupt, "fetch", err).WithTool(kind.String(), version)
	}
	if err := provider.PostExtract(handle.Dir()); err != nil {
		_ = handle.Abort()
		return errs.New(errs.ArchiveCorrupt, "fetch", err).WithTool(kind.String(), version)
	}

	return handle.Publish()
}

// resolveURL prefers the distro hook, falling back to the provider's
// built-in default.
func (f *Fetcher) resolveURL(kind toolkind.Kind, version string, provider Provider) (url, ext, sha256sum string, err error) {
	if th := f.toolHooks(kind); th != nil && th.Distro != nil {
		filename := kind.String() + "-" + version
		resolved, herr := hooks.Resolve(th.Distro, hooks.Placeholders{Version: version, Filename: filename, OS: goosName(), Arch: archName()})
		if herr == nil {
			return resolved, extOf(resolved), "", nil
		}
		ui.Debug("distro hook for %s failed, falling back to default URL: %v", kind, herr)
	}

	u, ext, derr := provider.DefaultDownloadURL(version)
	if derr != nil {
		return "", "", "", errs.New(errs.Unsupported, "resolve download url", derr).WithTool(kind.String(), version)
	}
	return u, ext, "", nil
}

func (f *Fetcher) toolHooks(kind toolkind.Kind) *hooks.ToolHooks {
	if f.hooks == nil {
		return nil
	}
	return f.hooks.For(kind)
}

func extOf(url string) string {
	switch {
	case strings.HasSuffix(url, ".tar.gz"):
		return ".tar.gz"
	case strings.HasSuffix(url, ".tgz"):
		return ".tgz"
	case strings.HasSuffix(url, ".zip"):
		return ".zip"
	case strings.HasSuffix(url, ".7z"):
		return ".7z"
	case strings.HasSuffix(url, ".msi"):
		return ".msi"
	default:
		return ".bin"
	}
}

func extractArchive(archivePath, destDir, ext string, provider Provider) error {
	switch ext {
	case ".tar.gz", ".tgz":
		return download.ExtractTarGz(archivePath, destDir)
	case ".zip":
		return download.ExtractZip(archivePath, destDir)
	case ".7z":
		return download.Extract7z(archivePath, destDir)
	default:
		// Not an archive: some tools (e.g. pnpm's standalone binary) ship
		// as a bare executable. Place it directly at the provider's
		// expected executable path.
		return copyAsExecutable(archivePath, filepath.Join(destDir, provider.ExecutableRelPath()))
	}
}

func copyAsExecutable(srcPath, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	defer func() { _ = dst.Close() }()

	_, err = io.Copy(dst, src)
	return err
}

// downloadWithRetry retries transient network errors with exponential
// backoff up to retryAttempts; non-transient 4xx HTTP statuses are not
// retried.
func (f *Fetcher) downloadWithRetry(ctx context.Context, url, destPath string) error {
	var lastErr error
	backoff := retryBase

	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err := download.File(ctx, nil, url, destPath)
		if err == nil {
			return nil
		}
		lastErr = err

		if he, ok := err.(*download.HTTPStatusError); ok && he.StatusCode >= 400 && he.StatusCode < 500 {
			return err // not retried
		}
		if attempt == retryAttempts {
			break
		}
		ui.Debug("download attempt %d/%d failed: %v, retrying in %s", attempt, retryAttempts, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return lastErr
}

func goosName() string {
	key := PlatformKey()
	return strings.SplitN(key, "-", 2)[0]
}
