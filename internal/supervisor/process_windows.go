//go:build windows

package supervisor

import (
	"io"
	"os"
	"os/exec"
	"time"
)

// isolate is a no-op on Windows; there is no process group to join.
func isolate(cmd *exec.Cmd, stdin io.Reader) (restore func()) {
	return func() {}
}

func terminate(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}

func reap(p *os.Process, deadline time.Time) {}

func interrupted(state *os.ProcessState) bool { return false }
