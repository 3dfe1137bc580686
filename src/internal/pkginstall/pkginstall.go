// Package pkginstall implements installation of third-party packages (spec
// §4.G's Package lifecycle): resolving a package's version against the
// public npm registry (or the registry base URL an index hook names; a
// distro hook is not consulted for packages), running the package's own
// installer inside a temporary Image scoped to a private prefix, and
// recording the binaries it exposes as shim links.
package pkginstall

import (
	"context"
	"crypto/sha1" //nolint:gosec // npm's own tarball integrity field is sha1, not a security boundary Volta controls
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/voltajs/volta/src/internal/download"
	"github.com/voltajs/volta/src/internal/errs"
	"github.com/voltajs/volta/src/internal/hooks"
	"github.com/voltajs/volta/src/internal/image"
	"github.com/voltajs/volta/src/internal/inventory"
	"github.com/voltajs/volta/src/internal/layout"
	"github.com/voltajs/volta/src/internal/shim"
	"github.com/voltajs/volta/src/internal/toolchain"
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/voltajs/volta/src/internal/version"
)

const registryBase = "https://registry.npmjs.org"

// Record is the persisted state of an installed package: the
// version installed, the platform Image it was installed with (needed to
// re-invoke its binaries later), and the binary names it exposed.
type Record struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Image   RecordImage `json:"image"`
	Shims   []string    `json:"shims"`
}

// RecordImage is the minimal, serializable slice of an Image a Package
// record needs to remember: just the exact versions, not their Source.
type RecordImage struct {
	Runtime string `json:"node"`
	Npm     string `json:"npm,omitempty"`
	Pnpm    string `json:"pnpm,omitempty"`
	Yarn    string `json:"yarn,omitempty"`
}

// Installer runs the seven-step Package install algorithm.
type Installer struct {
	layout   *layout.Layout
	inv      *inventory.Store
	hooks    *hooks.Config
	fetcher  *toolchain.Fetcher
	registry *toolchain.Registry
	client   *http.Client
}

// New builds an Installer over l, using inv to fetch the Image's platform
// tools and hc to resolve any index/distro hook configured for Package.
func New(l *layout.Layout, inv *inventory.Store, hc *hooks.Config, registry *toolchain.Registry) *Installer {
	return &Installer{
		layout:   l,
		inv:      inv,
		hooks:    hc,
		fetcher:  toolchain.NewFetcher(inv, hc, registry),
		registry: registry,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Install runs the full algorithm for name@spec inside img, returning the
// Record written on success. img must already have its Runtime and Npm
// slots resolved; Install does not itself consult the Resolver.
func (in *Installer) Install(ctx context.Context, name string, spec version.Spec, img image.Image) (*Record, error) {
	npmSourced, ok := img.Get(toolkind.Npm)
	if !ok {
		return nil, errs.New(errs.PackageInstallFailed, "install package", fmt.Errorf("image has no npm to run the installer with")).WithTool(name, "")
	}

	// Step 1: resolve the package version via the public registry or a hook.
	resolvedVersion, tarballURL, shasum, err := in.resolveVersion(ctx, name, spec)
	if err != nil {
		return nil, errs.New(errs.PackageInstallFailed, "install package", err).WithTool(name, spec.String())
	}

	// Ensure the image's own runtime/npm are materialized before we shell
	// out to them.
	runtimeSourced, _ := img.Get(toolkind.Runtime)
	if err := in.fetcher.Fetch(ctx, toolkind.Runtime, runtimeSourced.Value.String()); err != nil {
		return nil, err
	}
	if err := in.fetcher.Fetch(ctx, toolkind.Npm, npmSourced.Value.String()); err != nil {
		return nil, err
	}

	// Step 2: fetch the package tarball into staging.
	tarballPath := filepath.Join(in.layout.Tmp, fmt.Sprintf("%s-%s.tgz", sanitizeName(name), resolvedVersion.String()))
	if err := in.downloadTarball(ctx, tarballURL, shasum, tarballPath); err != nil {
		return nil, errs.New(errs.PackageInstallFailed, "install package", err).WithTool(name, resolvedVersion.String())
	}
	defer func() { _ = os.Remove(tarballPath) }()

	// Step 3: img is the ephemeral Image the caller constructed (default
	// platform, or a user-specified one).
	prefix := in.layout.PackageDir(name)

	// From here on, any failure must roll back the partial install prefix
	// and any shim links already created (step 7).
	if err := in.runInstall(ctx, img, tarballPath, prefix); err != nil {
		_ = os.RemoveAll(prefix)
		return nil, errs.New(errs.PackageInstallFailed, "install package", err).WithTool(name, resolvedVersion.String())
	}

	// Step 5: read the installed package's manifest to enumerate binaries.
	binaries, err := readExposedBinaries(prefix, name)
	if err != nil {
		_ = os.RemoveAll(prefix)
		return nil, errs.New(errs.PackageInstallFailed, "install package", err).WithTool(name, resolvedVersion.String())
	}

	record := &Record{
		Name:    name,
		Version: resolvedVersion.String(),
		Image:   recordImageOf(img),
		Shims:   binaries,
	}

	// Step 6: write the Package record, then create shim links atomically.
	if err := in.writeRecord(record); err != nil {
		_ = os.RemoveAll(prefix)
		return nil, errs.New(errs.PackageInstallFailed, "install package", err).WithTool(name, resolvedVersion.String())
	}

	shimMgr, err := shim.NewManager(in.layout)
	if err != nil {
		_ = os.RemoveAll(prefix)
		_ = os.Remove(in.recordPath(name))
		return nil, errs.New(errs.PackageInstallFailed, "install package", err).WithTool(name, resolvedVersion.String())
	}
	if err := shimMgr.CreateAll(binaries); err != nil {
		_ = shimMgr.RemoveAll(binaries)
		_ = os.RemoveAll(prefix)
		_ = os.Remove(in.recordPath(name))
		return nil, errs.New(errs.PackageInstallFailed, "install package", err).WithTool(name, resolvedVersion.String())
	}

	ui.Success("installed %s %s", name, resolvedVersion.String())
	return record, nil
}

// Layout returns the Layout this Installer was constructed with.
func (in *Installer) Layout() *layout.Layout {
	return in.layout
}

// FindOwner returns the Package record that exposes binaryName as one of
// its shims, or (nil, nil) if no installed package owns it.
func (in *Installer) FindOwner(binaryName string) (*Record, error) {
	entries, err := os.ReadDir(in.layout.PackagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.New(errs.Filesystem, "find package owner", err).WithTool(binaryName, "")
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		record, err := in.ReadRecord(name[:len(name)-len(".json")])
		if err != nil || record == nil {
			continue
		}
		for _, shimName := range record.Shims {
			if shimName == binaryName {
				return record, nil
			}
		}
	}
	return nil, nil
}

// ListInstalled returns the Record for every installed package, in no
// particular order.
func (in *Installer) ListInstalled() ([]*Record, error) {
	entries, err := os.ReadDir(in.layout.PackagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.New(errs.Filesystem, "list installed packages", err)
	}

	var records []*Record
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		record, err := in.ReadRecord(name[:len(name)-len(".json")])
		if err != nil || record == nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Uninstall removes name's install prefix, Package record, and every shim
// link it owns.
func (in *Installer) Uninstall(name string) error {
	record, err := in.ReadRecord(name)
	if err != nil {
		return err
	}

	shimMgr, err := shim.NewManager(in.layout)
	if err != nil {
		return err
	}
	if record != nil {
		if err := shimMgr.RemoveAll(record.Shims); err != nil {
			return err
		}
	}
	if err := os.RemoveAll(in.layout.PackageDir(name)); err != nil {
		return errs.New(errs.Filesystem, "uninstall package", err).WithTool(name, "")
	}
	if err := os.Remove(in.recordPath(name)); err != nil && !os.IsNotExist(err) {
		return errs.New(errs.Filesystem, "uninstall package", err).WithTool(name, "")
	}
	return nil
}

// recordPath returns where a package's Record is persisted, a sibling of
// its install prefix rather than inside it (so the prefix itself mirrors
// exactly what the installer wrote).
func (in *Installer) recordPath(name string) string {
	return in.layout.PackageDir(name) + ".json"
}

func (in *Installer) writeRecord(r *Record) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return layout.WriteFileAtomic(in.recordPath(r.Name), append(data, '\n'), 0o644)
}

// ReadRecord loads name's Package record, returning (nil, nil) if no such
// package is installed.
func (in *Installer) ReadRecord(name string) (*Record, error) {
	data, err := os.ReadFile(in.recordPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.New(errs.Filesystem, "read package record", err).WithTool(name, "")
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errs.New(errs.Filesystem, "read package record", err).WithTool(name, "")
	}
	return &r, nil
}

func recordImageOf(img image.Image) RecordImage {
	ri := RecordImage{Runtime: img.Runtime.Value.String()}
	if img.Npm != nil {
		ri.Npm = img.Npm.Value.String()
	}
	if img.Pnpm != nil {
		ri.Pnpm = img.Pnpm.Value.String()
	}
	if img.Yarn != nil {
		ri.Yarn = img.Yarn.Value.String()
	}
	return ri
}

// runInstall executes npm's own install command against the fetched
// tarball, scoped to prefix via --prefix and --global so npm writes into
// prefix/lib/node_modules rather than anywhere shared.
func (in *Installer) runInstall(ctx context.Context, img image.Image, tarballPath, prefix string) error {
	runtimeSourced, _ := img.Get(toolkind.Runtime)
	npmSourced, _ := img.Get(toolkind.Npm)

	nodeProvider, err := in.registry.Get(toolkind.Runtime)
	if err != nil {
		return err
	}
	npmProvider, err := in.registry.Get(toolkind.Npm)
	if err != nil {
		return err
	}

	nodeRoot := in.inv.UnpackedRoot(toolkind.Runtime, runtimeSourced.Value.String())
	npmRoot := in.inv.UnpackedRoot(toolkind.Npm, npmSourced.Value.String())
	npmBin := filepath.Join(npmRoot, npmProvider.ExecutableRelPath())
	nodeBin := filepath.Join(nodeRoot, nodeProvider.ExecutableRelPath())

	if err := os.MkdirAll(prefix, 0o755); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, npmBin, "install", "--global", "--prefix", prefix, tarballPath)
	cmd.Env = append(os.Environ(), "PATH="+filepath.Dir(nodeBin)+string(os.PathListSeparator)+os.Getenv("PATH"))
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// readExposedBinaries reads prefix/lib/node_modules/<name>/package.json's
// "bin" field, which is either a bare string (the package name is the only
// exposed binary) or a map of binary name to script path.
func readExposedBinaries(prefix, name string) ([]string, error) {
	pkgJSONPath := filepath.Join(prefix, "lib", "node_modules", name, "package.json")
	data, err := os.ReadFile(pkgJSONPath)
	if err != nil {
		return nil, fmt.Errorf("read installed package manifest: %w", err)
	}

	var pkg struct {
		Name string          `json:"name"`
		Bin  json.RawMessage `json:"bin"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parse installed package manifest: %w", err)
	}

	if len(pkg.Bin) == 0 {
		return []string{name}, nil
	}

	var asString string
	if err := json.Unmarshal(pkg.Bin, &asString); err == nil {
		baseName := pkg.Name
		if baseName == "" {
			baseName = name
		}
		return []string{baseName}, nil
	}

	var asMap map[string]string
	if err := json.Unmarshal(pkg.Bin, &asMap); err != nil {
		return nil, fmt.Errorf("parse installed package manifest \"bin\" field: %w", err)
	}
	binaries := make([]string, 0, len(asMap))
	for binName := range asMap {
		binaries = append(binaries, binName)
	}
	return binaries, nil
}

func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '/' || r == '@' {
			out = append(out, '-')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// downloadTarball fetches url into destPath, verifying shasum (npm's sha1
// dist.shasum field) if non-empty.
func (in *Installer) downloadTarball(ctx context.Context, url, shasum, destPath string) error {
	if shasum == "" {
		return download.File(ctx, in.client, url, destPath)
	}
	return download.FileVerified(ctx, in.client, sha1.New, url, destPath, shasum) //nolint:gosec // matches npm's own dist.shasum algorithm
}
