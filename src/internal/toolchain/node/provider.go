// Package node implements the Node.js runtime Provider.
package node

import (
	"fmt"
	goruntime "runtime"

	"github.com/voltajs/volta/src/internal/constants"
	"github.com/voltajs/volta/src/internal/download"
	"github.com/voltajs/volta/src/internal/toolchain"
	"github.com/voltajs/volta/src/internal/toolkind"
)

// Provider implements toolchain.Provider for the Node.js runtime.
type Provider struct{}

// NewProvider builds a Node.js Provider.
func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Kind() toolkind.Kind { return toolkind.Runtime }

// Shims lists the binaries Node.js itself exposes. npm ships bundled inside
// the Node archive, but its own version is resolved independently (spec
// §3's Platform.Npm slot), so npm is not listed here.
func (p *Provider) Shims() []string {
	return []string{"node"}
}

func (p *Provider) ExecutableRelPath() string {
	if goruntime.GOOS == constants.OSWindows {
		return "node.exe"
	}
	return "bin/node"
}

// DefaultDownloadURL mirrors nodejs.org's dist layout: one archive per
// version, platform, and architecture.
func (p *Provider) DefaultDownloadURL(version string) (string, string, error) {
	arch := goruntime.GOARCH
	nodeArch := arch
	switch arch {
	case constants.ArchAMD64:
		nodeArch = "x64"
	case constants.ArchARM64:
		nodeArch = "arm64"
	default:
		return "", "", fmt.Errorf("node: unsupported architecture %s", arch)
	}

	var archiveName, ext string
	switch goruntime.GOOS {
	case constants.OSWindows:
		ext = ".zip"
		archiveName = fmt.Sprintf("node-v%s-win-%s%s", version, nodeArch, ext)
	case "darwin":
		ext = ".tar.gz"
		archiveName = fmt.Sprintf("node-v%s-darwin-%s%s", version, nodeArch, ext)
	case "linux":
		ext = ".tar.gz"
		archiveName = fmt.Sprintf("node-v%s-linux-%s%s", version, nodeArch, ext)
	default:
		return "", "", fmt.Errorf("node: unsupported platform %s", goruntime.GOOS)
	}

	url := fmt.Sprintf("https://nodejs.org/dist/v%s/%s", version, archiveName)
	return url, ext, nil
}

// PostExtract strips the archive's single top-level node-vX.Y.Z/ directory
// so the unpacked root's layout matches ExecutableRelPath directly.
func (p *Provider) PostExtract(unpackedDir string) error {
	return download.StripTopLevelDir(unpackedDir)
}

func init() {
	if err := toolchain.Register(NewProvider()); err != nil {
		panic(fmt.Sprintf("node: failed to register provider: %v", err))
	}
}
