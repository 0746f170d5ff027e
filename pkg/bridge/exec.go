package bridge

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
)

// termGrace is how long a terminated child gets to exit before the
// launcher stops waiting on its pipes.
const termGrace = 5 * time.Second

// Launcher spawns the planned process with the bridged environment,
// forwards the three standard streams live, and reports the outcome.
type Launcher struct {
	// Stdin, when set, is forwarded to the child. Stdout and Stderr
	// default to the launcher process's own streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Encoding names the console codec child output is decoded from.
	Encoding string

	// Interactive attaches the caller's streams directly instead of
	// forwarding through pipes, for REPLs and TUI children.
	Interactive bool

	Logger *log.Logger
}

// Run creates the child process and blocks for its full lifetime.
// Output and error streams are drained continuously while input
// forwarding runs alongside, so a chatty child never blocks on a full
// pipe. Inability to create the process is a LaunchFailureError; once
// running, the child's own exit status is passed through verbatim.
func (l *Launcher) Run(ctx context.Context, plan LaunchPlan, env BridgedEnv) (Outcome, error) {
	if err := ValidateEncoding(l.Encoding); err != nil {
		return Outcome{}, err
	}

	cmd := exec.CommandContext(ctx, plan.ExecPath, plan.Args...)
	cmd.Dir = env.Dir
	cmd.Env = env.Env
	cmd.WaitDelay = termGrace

	if l.Interactive {
		// The attached child stays in the caller's process group so the
		// terminal keeps delivering its signals directly.
		cmd.Cancel = func() error {
			return cmd.Process.Signal(unix.SIGTERM)
		}
		return l.runAttached(cmd, plan)
	}

	// A forwarded child gets its own process group and termination is
	// signaled group-wide: interpreters fork, and an orphaned grandchild
	// would otherwise survive and hold the pipes open.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGTERM)
	}
	return l.runForwarded(ctx, cmd, plan)
}

// runAttached hands the caller's streams straight to the child.
func (l *Launcher) runAttached(cmd *exec.Cmd, plan LaunchPlan) (Outcome, error) {
	cmd.Stdin = l.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = l.stdout()
	cmd.Stderr = l.stderr()

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Outcome{}, &LaunchFailureError{Program: plan.Program, Err: err}
	}
	return outcomeFromWait(cmd, cmd.Wait(), time.Since(start), plan)
}

// runForwarded pipes the three streams and drains them concurrently
// with the child's execution.
func (l *Launcher) runForwarded(ctx context.Context, cmd *exec.Cmd, plan LaunchPlan) (Outcome, error) {
	outPipe, err := cmd.StdoutPipe()
	if err != nil {
		return Outcome{}, &LaunchFailureError{Program: plan.Program, Err: err}
	}
	errPipe, err := cmd.StderrPipe()
	if err != nil {
		return Outcome{}, &LaunchFailureError{Program: plan.Program, Err: err}
	}

	var inPipe io.WriteCloser
	if l.Stdin != nil {
		if inPipe, err = cmd.StdinPipe(); err != nil {
			return Outcome{}, &LaunchFailureError{Program: plan.Program, Err: err}
		}
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Outcome{}, &LaunchFailureError{Program: plan.Program, Err: err}
	}

	if inPipe != nil {
		go func() {
			defer inPipe.Close()
			_, _ = io.Copy(inPipe, l.Stdin)
		}()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go l.forward(&wg, l.stdout(), outPipe)
	go l.forward(&wg, l.stderr(), errPipe)

	// Pipes must be fully drained before Wait reaps the child. On
	// cancellation the drain is bounded by the grace period: whatever
	// still holds the write ends after that gets its read ends closed
	// out from under it.
	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		select {
		case <-drained:
		case <-time.After(termGrace):
			outPipe.Close()
			errPipe.Close()
			<-drained
		}
	}
	return outcomeFromWait(cmd, cmd.Wait(), time.Since(start), plan)
}

// forward streams one child pipe to the caller, decoding on the fly.
// The console reader is built here rather than before Start because
// BOM sniffing blocks until the child writes.
func (l *Launcher) forward(wg *sync.WaitGroup, dst io.Writer, src io.Reader) {
	defer wg.Done()
	if _, err := io.Copy(dst, newConsoleReader(src, l.Encoding)); err != nil && l.Logger != nil {
		l.Logger.Debug("stream forwarding ended", "err", err)
	}
}

func (l *Launcher) stdout() io.Writer {
	if l.Stdout != nil {
		return l.Stdout
	}
	return os.Stdout
}

func (l *Launcher) stderr() io.Writer {
	if l.Stderr != nil {
		return l.Stderr
	}
	return os.Stderr
}

// outcomeFromWait converts cmd.Wait's result into an Outcome. A child
// that ran and exited non-zero is not an error, and neither is a child
// terminated through cancellation; only a wait-level failure (which
// means the process never ran properly) is.
func outcomeFromWait(cmd *exec.Cmd, waitErr error, dur time.Duration, plan LaunchPlan) (Outcome, error) {
	out := Outcome{Duration: dur}
	if waitErr == nil {
		return out, nil
	}

	// After a successful Cancel, Wait may surface the context error
	// instead of an exit status; the run still completed.
	canceled := errors.Is(waitErr, context.Canceled) ||
		errors.Is(waitErr, context.DeadlineExceeded) ||
		errors.Is(waitErr, exec.ErrWaitDelay)

	var exitErr *exec.ExitError
	if !canceled && !errors.As(waitErr, &exitErr) {
		return out, &LaunchFailureError{Program: plan.Program, Err: waitErr}
	}

	// ProcessState carries how the child actually ended regardless of
	// which error form Wait chose.
	if state := cmd.ProcessState; state != nil {
		out.ExitCode = state.ExitCode()
		if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			out.Signal = int(ws.Signal())
		}
	}
	return out, nil
}
