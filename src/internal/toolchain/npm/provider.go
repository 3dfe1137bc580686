// Package npm implements the npm package-manager Provider. npm's own
// version is independently resolvable from Platform.Npm even
// though a default copy ships bundled inside every Node.js distribution.
package npm

import (
	"fmt"

	"github.com/voltajs/volta/src/internal/download"
	"github.com/voltajs/volta/src/internal/manifest"
	"github.com/voltajs/volta/src/internal/toolchain"
	"github.com/voltajs/volta/src/internal/toolkind"
)

// Provider implements toolchain.Provider for npm.
type Provider struct{}

// NewProvider builds an npm Provider.
func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Kind() toolkind.Kind { return toolkind.Npm }

func (p *Provider) Shims() []string {
	return []string{"npm", "npx"}
}

func (p *Provider) ExecutableRelPath() string {
	return "bin/npm"
}

// DefaultDownloadURL consults the bundled npm manifest (the registry
// tarball, keyed by the current platform like every other manifest-backed
// tool) since npm has no dedicated per-platform release artifact of its
// own: registry.npmjs.org serves the same tarball for every platform.
func (p *Provider) DefaultDownloadURL(version string) (string, string, error) {
	m, err := manifest.DefaultSource().GetManifest(toolkind.Npm.String())
	if err != nil {
		return "", "", fmt.Errorf("npm: failed to load manifest: %w", err)
	}
	dl := m.GetDownload(version, manifest.CurrentPlatform())
	if dl == nil {
		return "", "", fmt.Errorf("npm %s is not available for %s", version, manifest.CurrentPlatform())
	}
	return dl.URL, ".tgz", nil
}

// PostExtract strips the registry tarball's single top-level package/
// directory.
func (p *Provider) PostExtract(unpackedDir string) error {
	return download.StripTopLevelDir(unpackedDir)
}

func init() {
	if err := toolchain.Register(NewProvider()); err != nil {
		panic(fmt.Sprintf("npm: failed to register provider: %v", err))
	}
}
