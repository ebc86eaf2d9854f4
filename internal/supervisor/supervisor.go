// Package supervisor runs generated programs as child processes.
//
// A payload is executed twice at most. The first pass is attached to the
// terminal so an interactive program can draw on it. Only when that pass
// fails is the same file run again with stderr captured, to get diagnostic
// text for the repair step. Side effects of the generated program therefore
// happen twice on failure, and the second pass is not guaranteed to fail
// the same way as the first.
package supervisor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// LaunchFailed is the exit code reported when the child could not be started.
const LaunchFailed = -1

// ErrInterrupted is returned when the attached pass was stopped with Ctrl-C.
// The child owns the terminal while it runs, so the interrupt reaches it
// rather than this process.
var ErrInterrupted = fmt.Errorf("interrupted from terminal: %w", context.Canceled)

// Config holds the supervisor configuration.
type Config struct {
	// Command is the runner invoked with the payload path appended
	// (default: uv run)
	Command []string

	// Ext is the payload file extension (default: .py)
	Ext string

	// Dir is the child's working directory (default: current directory)
	Dir string

	// Env is appended to the parent's environment for both passes
	Env []string

	// Terminal streams for the first pass (default: os.Stdin/Stdout/Stderr)
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// KillGrace is how long a child gets to exit after SIGTERM before it is
	// killed (default: 3s)
	KillGrace time.Duration
}

// Result describes the outcome of Run.
type Result struct {
	// ExitCode of the first pass; 0 is the only success value
	ExitCode int

	// Stderr captured by the second pass (or the launch error text)
	Stderr string

	// Captured reports whether the second pass ran
	Captured bool

	// Path is the temporary payload file; it no longer exists when Run returns
	Path string
}

// Success reports whether the payload exited cleanly.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Supervisor executes payloads.
type Supervisor struct {
	config Config
}

// New creates a supervisor, filling in defaults.
func New(config Config) *Supervisor {
	if len(config.Command) == 0 {
		config.Command = []string{"uv", "run"}
	}
	if config.Ext == "" {
		config.Ext = ".py"
	}
	if config.Stdin == nil {
		config.Stdin = os.Stdin
	}
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}
	if config.Stderr == nil {
		config.Stderr = os.Stderr
	}
	if config.KillGrace == 0 {
		config.KillGrace = 3 * time.Second
	}
	return &Supervisor{config: config}
}

// Run materializes payload to a private temporary file and executes it. The
// file is removed before Run returns on every path, including cancellation.
//
// A child that cannot be launched is reported as a failed Result with
// ExitCode LaunchFailed, not as an error. Errors are returned only for
// cancellation (including ErrInterrupted) and for failures to create the
// payload file.
func (s *Supervisor) Run(ctx context.Context, payload string) (Result, error) {
	path, err := writePayload(payload, s.config.Ext)
	if err != nil {
		return Result{ExitCode: LaunchFailed, Stderr: err.Error()}, err
	}
	defer os.Remove(path)

	res := Result{Path: path}

	code, err := s.exec(ctx, path, false, nil)
	if ctx.Err() != nil {
		res.ExitCode = code
		return res, ctx.Err()
	}
	if errors.Is(err, ErrInterrupted) {
		res.ExitCode = code
		return res, err
	}
	if err != nil {
		res.ExitCode = LaunchFailed
		res.Stderr = err.Error()
		return res, nil
	}
	res.ExitCode = code
	if code == 0 {
		return res, nil
	}

	var stderr bytes.Buffer
	if _, err := s.exec(ctx, path, true, &stderr); err != nil && ctx.Err() == nil {
		stderr.WriteString(err.Error())
	}
	res.Stderr = stderr.String()
	res.Captured = true
	return res, ctx.Err()
}

func writePayload(payload, ext string) (string, error) {
	f, err := os.CreateTemp("", "hacker-dash-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create payload file: %w", err)
	}
	path := f.Name()

	if _, err := f.WriteString(payload); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write payload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close payload file: %w", err)
	}
	return path, nil
}

// exec runs the configured command on path. A non-zero exit is reported
// through the exit code; err is only set when the child could not be started
// or, on the attached pass, when it was interrupted from the terminal.
//
// The child always runs in its own process group and cancellation signals
// the whole group, so grandchildren (uv's interpreter) do not outlive it.
// When capture is set the child is detached from the terminal, with stderr
// written to the given buffer.
func (s *Supervisor) exec(ctx context.Context, path string, capture bool, stderr io.Writer) (int, error) {
	args := append(append([]string{}, s.config.Command[1:]...), path)
	cmd := exec.CommandContext(ctx, s.config.Command[0], args...)
	cmd.Dir = s.config.Dir
	if len(s.config.Env) > 0 {
		cmd.Env = append(os.Environ(), s.config.Env...)
	}

	restore := func() {}
	if capture {
		cmd.Stdout = io.Discard
		cmd.Stderr = stderr
		isolate(cmd, nil)
	} else {
		cmd.Stdin = s.config.Stdin
		cmd.Stdout = s.config.Stdout
		cmd.Stderr = s.config.Stderr
		restore = isolate(cmd, s.config.Stdin)
	}

	grace := s.config.KillGrace
	var deadline time.Time
	cmd.Cancel = func() error {
		deadline = time.Now().Add(grace)
		return terminate(cmd.Process)
	}
	cmd.WaitDelay = grace

	err := cmd.Run()
	restore()
	// Wait synchronizes with the goroutine that calls Cancel, so deadline is
	// settled here.
	if !deadline.IsZero() {
		reap(cmd.Process, deadline)
	}
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if !capture && ctx.Err() == nil && interrupted(exitErr.ProcessState) {
			return exitErr.ExitCode(), ErrInterrupted
		}
		// -1 when the child was killed by a signal.
		return exitErr.ExitCode(), nil
	}
	if ctx.Err() != nil {
		return LaunchFailed, nil
	}
	return LaunchFailed, fmt.Errorf("launch %s: %w", s.config.Command[0], err)
}
