// Package yarn implements the yarn package-manager Provider.
package yarn

import (
	"fmt"
	goruntime "runtime"

	"github.com/voltajs/volta/src/internal/constants"
	"github.com/voltajs/volta/src/internal/download"
	"github.com/voltajs/volta/src/internal/manifest"
	"github.com/voltajs/volta/src/internal/toolchain"
	"github.com/voltajs/volta/src/internal/toolkind"
)

// Provider implements toolchain.Provider for yarn. It targets the classic
// (1.x) release line, which ships as a plain tarball; yarn berry (2.x+)
// is distributed per project via the "packageManager" mechanism and is out
// of scope here (spec's Non-goals exclude per-project package-manager
// self-installation).
type Provider struct{}

// NewProvider builds a yarn Provider.
func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Kind() toolkind.Kind { return toolkind.Yarn }

func (p *Provider) Shims() []string {
	return []string{"yarn", "yarnpkg"}
}

func (p *Provider) ExecutableRelPath() string {
	if goruntime.GOOS == constants.OSWindows {
		return "bin/yarn.cmd"
	}
	return "bin/yarn"
}

// DefaultDownloadURL consults the bundled yarn manifest. On Windows the
// upstream release is an .msi installer rather than an archive this binary
// knows how to unpack; a distro hook pointing at a zip mirror is the
// supported path there.
func (p *Provider) DefaultDownloadURL(version string) (string, string, error) {
	m, err := manifest.DefaultSource().GetManifest(toolkind.Yarn.String())
	if err != nil {
		return "", "", fmt.Errorf("yarn: failed to load manifest: %w", err)
	}
	dl := m.GetDownload(version, manifest.CurrentPlatform())
	if dl == nil {
		return "", "", fmt.Errorf("yarn %s is not available for %s", version, manifest.CurrentPlatform())
	}
	if goruntime.GOOS == constants.OSWindows {
		return "", "", fmt.Errorf("yarn: no built-in extractor for the Windows .msi release; configure a distro hook")
	}
	return dl.URL, ".tar.gz", nil
}

// PostExtract strips the archive's single top-level yarn-vX.Y.Z/ directory.
func (p *Provider) PostExtract(unpackedDir string) error {
	return download.StripTopLevelDir(unpackedDir)
}

func init() {
	if err := toolchain.Register(NewProvider()); err != nil {
		panic(fmt.Sprintf("yarn: failed to register provider: %v", err))
	}
}
