//go:build !windows

package supervisor

import (
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// isolate puts the child in its own process group so that it, and anything
// it spawns (uv starts the interpreter as a grandchild), can be signalled as
// one. When stdin is a terminal the group is made the terminal's foreground
// group; the returned func hands the terminal back to this process.
func isolate(cmd *exec.Cmd, stdin io.Reader) (restore func()) {
	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		return func() {}
	}

	fd := int(f.Fd())
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:    true,
		Foreground: true,
		Ctty:       fd,
	}
	return func() { reclaimTerminal(fd) }
}

// reclaimTerminal makes this process's group the foreground group of fd
// again. SIGTTOU is ignored meanwhile, since a background group changing the
// foreground group would otherwise be stopped.
func reclaimTerminal(fd int) {
	signal.Ignore(syscall.SIGTTOU)
	defer signal.Reset(syscall.SIGTTOU)
	unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, unix.Getpgrp())
}

func terminate(p *os.Process) error {
	return signalGroup(p, unix.SIGTERM)
}

// reap waits until the child's process group is gone or deadline passes,
// then kills whatever is left of it.
func reap(p *os.Process, deadline time.Time) {
	if p == nil {
		return
	}
	for time.Now().Before(deadline) {
		if unix.Kill(-p.Pid, 0) == unix.ESRCH {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	signalGroup(p, unix.SIGKILL)
}

func signalGroup(p *os.Process, sig unix.Signal) error {
	if p == nil {
		return nil
	}
	if err := unix.Kill(-p.Pid, sig); err != nil && err != unix.ESRCH {
		return err
	}
	return nil
}

// interrupted reports whether the child died from SIGINT, either directly or
// through a wrapper such as uv that exits with 128+SIGINT.
func interrupted(state *os.ProcessState) bool {
	if state == nil {
		return false
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ws.Signal() == syscall.SIGINT
	}
	return state.ExitCode() == 128+int(syscall.SIGINT)
}
