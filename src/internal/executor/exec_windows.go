//go:build windows

package executor

import (
	"errors"
	"os"
	"os/exec"
	"os/signal"

	"github.com/voltajs/volta/src/internal/ui"
)

// execReplace has no true process-replace primitive on Windows, so it
// spawns execPath as a child and forwards its exit status
// step 7's "otherwise spawn and forward exit status and signals faithfully".
func execReplace(execPath string, argv []string, env []string) int {
	cmd := &exec.Cmd{
		Path:   execPath,
		Args:   argv,
		Env:    env,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	if err := cmd.Start(); err != nil {
		ui.Error("start %s: %v", execPath, err)
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			_ = cmd.Process.Kill()
		}
	}()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		ui.Error("run %s: %v", execPath, err)
		return 1
	}
	return 0
}
