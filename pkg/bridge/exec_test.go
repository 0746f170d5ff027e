package bridge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func shellPlan(script string) LaunchPlan {
	return LaunchPlan{
		Kind:     LaunchDirectNative,
		Program:  "sh",
		ExecPath: "/bin/sh",
		Args:     []string{"-c", script},
	}
}

func TestRun_ExitCodePassthrough(t *testing.T) {
	l := &Launcher{Stdout: io.Discard, Stderr: io.Discard, Logger: log.New(io.Discard)}

	outcome, err := l.Run(context.Background(), shellPlan("exit 7"), BridgedEnv{})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", outcome.ExitCode)
	}
}

func TestRun_LaunchFailure(t *testing.T) {
	l := &Launcher{Stdout: io.Discard, Stderr: io.Discard, Logger: log.New(io.Discard)}
	plan := LaunchPlan{Kind: LaunchDirectNative, Program: `C:\gone.exe`, ExecPath: "/no/such/binary"}

	_, err := l.Run(context.Background(), plan, BridgedEnv{})
	var launch *LaunchFailureError
	if !errors.As(err, &launch) {
		t.Fatalf("error = %v, want LaunchFailureError", err)
	}
	if code := BridgeExitCode(err); code != ExitLaunchFailure {
		t.Errorf("BridgeExitCode = %d, want %d", code, ExitLaunchFailure)
	}
}

// A child that floods both output streams before touching stdin must
// be drained fully, with no deadlock: forwarding is concurrent, never
// read-all-then-write-all.
func TestRun_ConcurrentStreamDraining(t *testing.T) {
	const n = 256 * 1024 // well past any single pipe buffer

	var stdout, stderr bytes.Buffer
	l := &Launcher{
		Stdin:  strings.NewReader("go\n"),
		Stdout: &stdout,
		Stderr: &stderr,
		Logger: log.New(io.Discard),
	}

	script := "head -c 262144 /dev/zero; head -c 262144 /dev/zero 1>&2; read line"
	done := make(chan struct{})
	var outcome Outcome
	var runErr error
	go func() {
		outcome, runErr = l.Run(context.Background(), shellPlan(script), BridgedEnv{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("deadlocked: streams were not drained concurrently")
	}
	if runErr != nil {
		t.Fatal(runErr)
	}
	if outcome.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", outcome.ExitCode)
	}
	if stdout.Len() != n {
		t.Errorf("stdout = %d bytes, want %d", stdout.Len(), n)
	}
	if stderr.Len() != n {
		t.Errorf("stderr = %d bytes, want %d", stderr.Len(), n)
	}
}

func TestRun_StdinForwarded(t *testing.T) {
	var stdout bytes.Buffer
	l := &Launcher{
		Stdin:  strings.NewReader("ping\n"),
		Stdout: &stdout,
		Stderr: io.Discard,
		Logger: log.New(io.Discard),
	}

	outcome, err := l.Run(context.Background(), shellPlan("read line; echo got-$line"), BridgedEnv{})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.ExitCode != 0 {
		t.Fatalf("ExitCode = %d", outcome.ExitCode)
	}
	if got := strings.TrimSpace(stdout.String()); got != "got-ping" {
		t.Errorf("stdout = %q, want got-ping", got)
	}
}

func TestRun_SignalExitReported(t *testing.T) {
	l := &Launcher{Stdout: io.Discard, Stderr: io.Discard, Logger: log.New(io.Discard)}

	outcome, err := l.Run(context.Background(), shellPlan("kill -TERM $$"), BridgedEnv{})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Signal != 15 {
		t.Errorf("Signal = %d, want 15 (SIGTERM)", outcome.Signal)
	}
	if outcome.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1 for signaled child", outcome.ExitCode)
	}
}

// Cancelling the invocation context terminates the child instead of
// orphaning it.
func TestRun_CancelTerminatesChild(t *testing.T) {
	l := &Launcher{Stdout: io.Discard, Stderr: io.Discard, Logger: log.New(io.Discard)}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	outcome, err := l.Run(ctx, shellPlan("sleep 30"), BridgedEnv{})
	if err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("child not terminated on cancel (took %s)", elapsed)
	}
	if outcome.Signal != 15 {
		t.Errorf("Signal = %d, want 15 (SIGTERM)", outcome.Signal)
	}
}

// Interpreters fork: termination must reach the whole process group,
// or the orphaned grandchild keeps the pipes open and Run never
// returns.
func TestRun_CancelTerminatesProcessTree(t *testing.T) {
	l := &Launcher{Stdout: io.Discard, Stderr: io.Discard, Logger: log.New(io.Discard)}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	outcome, err := l.Run(ctx, shellPlan("sleep 30 & wait"), BridgedEnv{})
	if err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("process tree not terminated on cancel (took %s)", elapsed)
	}
	if outcome.Signal != 15 {
		t.Errorf("Signal = %d, want 15 (SIGTERM)", outcome.Signal)
	}
}

func TestRun_RejectsUnknownEncoding(t *testing.T) {
	l := &Launcher{Stdout: io.Discard, Stderr: io.Discard, Encoding: "ebcdic", Logger: log.New(io.Discard)}

	if _, err := l.Run(context.Background(), shellPlan("true"), BridgedEnv{}); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}
