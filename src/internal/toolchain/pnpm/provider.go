// Package pnpm implements the pnpm package-manager Provider.
package pnpm

import (
	"fmt"
	goruntime "runtime"

	"github.com/voltajs/volta/src/internal/constants"
	"github.com/voltajs/volta/src/internal/manifest"
	"github.com/voltajs/volta/src/internal/toolchain"
	"github.com/voltajs/volta/src/internal/toolkind"
)

// Provider implements toolchain.Provider for pnpm.
type Provider struct{}

// NewProvider builds a pnpm Provider.
func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Kind() toolkind.Kind { return toolkind.Pnpm }

func (p *Provider) Shims() []string {
	return []string{"pnpm", "pnpx"}
}

func (p *Provider) ExecutableRelPath() string {
	if goruntime.GOOS == constants.OSWindows {
		return "pnpm.exe"
	}
	return "pnpm"
}

// DefaultDownloadURL consults the bundled pnpm manifest. pnpm's official
// releases are standalone, statically linked binaries, not archives.
func (p *Provider) DefaultDownloadURL(version string) (string, string, error) {
	m, err := manifest.DefaultSource().GetManifest(toolkind.Pnpm.String())
	if err != nil {
		return "", "", fmt.Errorf("pnpm: failed to load manifest: %w", err)
	}
	dl := m.GetDownload(version, manifest.CurrentPlatform())
	if dl == nil {
		return "", "", fmt.Errorf("pnpm %s is not available for %s", version, manifest.CurrentPlatform())
	}
	return dl.URL, ".bin", nil
}

// PostExtract is a no-op: a bare-executable download is placed directly by
// the Fetcher, with no archive to unpack.
func (p *Provider) PostExtract(unpackedDir string) error {
	return nil
}

func init() {
	if err := toolchain.Register(NewProvider()); err != nil {
		panic(fmt.Sprintf("pnpm: failed to register provider: %v", err))
	}
}
