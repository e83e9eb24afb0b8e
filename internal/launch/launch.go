// Package launch starts user-configured programs detached from the window
// manager process.
package launch

import (
	"fmt"
	"os/exec"
	"syscall"
)

// Run starts the given shell command in its own session so it outlives the
// manager and never becomes a zombie child.
func Run(command string) error {
	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn %q: %w", command, err)
	}
	// Do not wait; launched programs are long-lived.
	return cmd.Process.Release()
}
