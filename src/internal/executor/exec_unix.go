//go:build !windows

package executor

import (
	"errors"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/voltajs/volta/src/internal/ui"
)

// execReplace exec-replaces the current process on unix, matching spec
// §4.H step 7's "on a platform where exec replaces the current process, use
// it". unix.Exec never returns on success; a returned error means execPath
// couldn't be invoked at all (not found, not executable), so we fall back
// to spawning a child and forwarding its exit status.
func execReplace(execPath string, argv []string, env []string) int {
	if err := unix.Exec(execPath, argv, env); err != nil {
		ui.Debug("exec %s failed, falling back to a spawned child: %v", execPath, err)
		return spawnAndWait(execPath, argv, env)
	}
	return 0
}

func spawnAndWait(execPath string, argv []string, env []string) int {
	cmd := &exec.Cmd{
		Path:   execPath,
		Args:   argv,
		Env:    env,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		ui.Error("run %s: %v", execPath, err)
		return 1
	}
	return 0
}
