//go:build !windows

package pathenv

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/voltajs/volta/src/internal/constants"
	"github.com/voltajs/volta/src/internal/ui"
)

// DetectShell returns the user's shell name (bash, zsh, fish), or "unknown".
func DetectShell() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		return "unknown"
	}
	return filepath.Base(shell)
}

// ShellConfigFile returns the profile file Volta should append to for the
// given shell.
func ShellConfigFile(shell string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch shell {
	case "bash":
		bashrc := filepath.Join(home, ".bashrc")
		if _, err := os.Stat(bashrc); err == nil {
			return bashrc
		}
		return filepath.Join(home, ".bash_profile")
	case "zsh":
		return filepath.Join(home, ".zshrc")
	case constants.ShellFish:
		return filepath.Join(home, ".config", "fish", "config.fish")
	default:
		return filepath.Join(home, ".profile")
	}
}

// Setup appends a PATH export for binDir to the detected shell's profile,
// unless it is already in PATH or the profile already contains the line.
func Setup(binDir string) error {
	shell := DetectShell()
	if shell == "unknown" {
		return fmt.Errorf("could not detect shell - add %s to your PATH manually", binDir)
	}

	configFile := ShellConfigFile(shell)
	if configFile == "" {
		return fmt.Errorf("could not determine a profile file for shell %s", shell)
	}

	if IsInPath(binDir) {
		ui.Info("%s is already in your PATH", binDir)
		return nil
	}

	if containsMarker(configFile, binDir) {
		ui.Warning("PATH entry already present in %s, but not active in this shell", configFile)
		ui.Info("Restart your terminal or run: source %s", configFile)
		return nil
	}

	var exportLine string
	if shell == constants.ShellFish {
		exportLine = fmt.Sprintf("\n# Added by volta\nset -gx PATH \"%s\" $PATH\n", binDir)
	} else {
		exportLine = fmt.Sprintf("\n# Added by volta\nexport PATH=\"%s:$PATH\"\n", binDir)
	}

	ui.Header("PATH Setup")
	ui.Info("Shell: %s", ui.Highlight(shell))
	ui.Info("Profile: %s", ui.Highlight(configFile))
	ui.Info("Will append: %s", ui.Highlight(strings.TrimSpace(exportLine)))
	fmt.Printf("\nProceed? [Y/n]: ")

	var response string
	_, _ = fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	if response != "" && response != constants.ResponseY && response != constants.ResponseYes {
		ui.Warning("PATH not modified. Add this manually to %s:", configFile)
		ui.Info("%s", strings.TrimSpace(exportLine))
		return nil
	}

	if shell == constants.ShellFish {
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
			return fmt.Errorf("create profile directory: %w", err)
		}
	}

	f, err := os.OpenFile(configFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open profile: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(exportLine); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}

	ui.Success("Added %s to PATH in %s", binDir, configFile)
	ui.Warning("Restart your terminal or run: source %s", configFile)
	return nil
}

func containsMarker(configFile, binDir string) bool {
	f, err := os.Open(configFile)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, binDir) && (strings.Contains(line, "PATH") || strings.Contains(line, "path")) {
			return true
		}
	}
	return false
}
