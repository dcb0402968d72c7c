package session

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"syscall"
	"time"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/logging"
)

var procLog = logging.ForComponent(logging.CompSession)

// LaunchError means the target executable could not be spawned (not found,
// permission denied). Fatal for the EnsureWindow call; never retried.
type LaunchError struct {
	Executable string
	Err        error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching %s: %v", e.Executable, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ProcessHandle is the slice of *Process the terminator needs. Satisfied by
// *Process; tests substitute fakes.
type ProcessHandle interface {
	// Alive reports whether the process is still running.
	Alive() bool

	// Terminate requests graceful shutdown (SIGTERM).
	Terminate() error

	// Kill forcibly ends the process.
	Kill() error

	// WaitExit blocks until the process exits, the timeout elapses, or
	// ctx is cancelled. True iff the process is confirmed gone.
	WaitExit(ctx context.Context, timeout time.Duration) bool

	// Owned reports whether this program spawned the process. Only owned
	// processes may be signalled by handle; a discovered instance is
	// reachable solely through kill-by-name as last resort.
	Owned() bool
}

// Process tracks a child process this program spawned.
type Process struct {
	executable string
	cmd        *exec.Cmd
	done       chan struct{}
	waitErr    error
}

// Launch starts the executable asynchronously. The caller polls the window
// directory afterward; Launch itself never waits for a window.
func Launch(executable string, args ...string) (*Process, error) {
	cmd := exec.Command(executable, args...)
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Executable: executable, Err: err}
	}

	p := &Process{executable: executable, cmd: cmd, done: make(chan struct{})}
	// Reap the child as soon as it exits so it never lingers as a zombie.
	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	procLog.Debug("launched", slog.String("executable", executable), slog.Int("pid", cmd.Process.Pid))
	return p, nil
}

// Pid returns the child's process id.
func (p *Process) Pid() int { return p.cmd.Process.Pid }

// Owned is always true for a Process created by Launch.
func (p *Process) Owned() bool { return true }

// Alive reports whether the child is still running.
func (p *Process) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Terminate asks the child to exit gracefully. On platforms without
// SIGTERM delivery the error is surfaced and the caller escalates.
func (p *Process) Terminate() error {
	if !p.Alive() {
		return nil
	}
	return p.cmd.Process.Signal(syscall.SIGTERM)
}

// Kill forcibly ends the child.
func (p *Process) Kill() error {
	if !p.Alive() {
		return nil
	}
	return p.cmd.Process.Kill()
}

// WaitExit blocks until the child exits or the timeout/context expires.
func (p *Process) WaitExit(ctx context.Context, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-p.done:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// KillByName force-kills every process with the given executable name.
// Collateral damage is documented and accepted: this is the last resort for
// a single-instance utility application, reached only when the polite close
// and the owned-handle kill both failed.
func KillByName(executable string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("taskkill", "/f", "/im", executable)
	default:
		cmd = exec.Command("pkill", "-x", executable)
	}
	procLog.Info("kill_by_name", slog.String("executable", executable))
	return cmd.Run()
}
