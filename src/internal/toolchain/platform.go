package toolchain

import (
	goruntime "runtime"

	"github.com/voltajs/volta/src/internal/constants"
)

// PlatformKey returns the "<os>-<arch>" key used to index into a manifest's
// per-version platform map.
func PlatformKey() string {
	return goruntime.GOOS + "-" + archName()
}

func archName() string {
	switch goruntime.GOARCH {
	case constants.ArchAMD64:
		return "amd64"
	case constants.ArchARM64:
		return "arm64"
	default:
		return goruntime.GOARCH
	}
}
