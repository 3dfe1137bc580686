//go:build windows

package pathenv

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"unsafe"

	"github.com/voltajs/volta/src/internal/constants"
	"github.com/voltajs/volta/src/internal/ui"
	"golang.org/x/sys/windows/registry"
)

var (
	moduser32              = syscall.NewLazyDLL("user32.dll")
	procSendMessageTimeout = moduser32.NewProc("SendMessageTimeoutW")
)

const (
	hwndBroadcast   = 0xffff
	wmSettingChange = 0x001A
	smtoAbortIfHung = 0x0002
)

// Setup adds binDir to the user's registry PATH and broadcasts the change
// to running processes.
func Setup(binDir string) error {
	if IsInPath(binDir) {
		ui.Info("%s is already in your PATH", binDir)
		return nil
	}

	ui.Header("PATH Setup")
	ui.Info("Directory: %s", ui.Highlight(binDir))
	fmt.Printf("\nProceed? [Y/n]: ")

	var response string
	_, _ = fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	if response != "" && response != constants.ResponseY && response != constants.ResponseYes {
		ui.Warning("PATH not modified. Run 'volta setup' again later.")
		return nil
	}

	key, err := registry.OpenKey(registry.CURRENT_USER, `Environment`, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open registry key: %w", err)
	}
	defer func() { _ = key.Close() }()

	currentPath, _, err := key.GetStringValue("Path")
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("read current PATH: %w", err)
	}

	for _, p := range strings.Split(currentPath, ";") {
		if strings.EqualFold(strings.TrimSpace(p), binDir) {
			ui.Info("%s is already in your registry PATH", binDir)
			return nil
		}
	}

	newPath := binDir
	if currentPath != "" {
		newPath += ";" + currentPath
	}
	if err := key.SetStringValue("Path", newPath); err != nil {
		return fmt.Errorf("update PATH in registry: %w", err)
	}

	broadcastSettingChange()

	ui.Success("Added %s to your PATH", binDir)
	ui.Warning("Restart your terminal for the change to take effect")
	return nil
}

func broadcastSettingChange() {
	env := syscall.StringToUTF16Ptr("Environment")
	_, _, _ = procSendMessageTimeout.Call(
		uintptr(hwndBroadcast),
		uintptr(wmSettingChange),
		0,
		uintptr(unsafe.Pointer(env)),
		uintptr(smtoAbortIfHung),
		5000,
		0,
	)
}

// IsSetxAvailable reports whether the setx fallback tool is on PATH.
func IsSetxAvailable() bool {
	_, err := exec.LookPath("setx")
	return err == nil
}

// DetectShell always reports "cmd", for log messages only; Windows has no
// shell profile file to edit.
func DetectShell() string {
	return "cmd"
}
