package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/sibikrish3000/winvoke/internal/wsl"
	"github.com/sibikrish3000/winvoke/pkg/bridge"
	"github.com/sibikrish3000/winvoke/pkg/workerpool"
)

// Build-time variables, injected via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagEnv         []string
	flagTunnelEnv   bool
	flagTimeout     time.Duration
	flagEncoding    string
	flagInteractive bool
	flagConcurrency int
	flagVerbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "winvoke [flags] -- <command> [args...]",
	Short: "Run Windows executables from WSL as local commands",
	Long: `winvoke bridges process invocation from WSL to the cohosted Windows
installation: path translation, environment bridging, argument
re-quoting for the native command-line parse, and live stdio streaming.

Examples:
  winvoke -- cmd.exe /c echo hello
  winvoke -- setup.bat install
  winvoke --encoding cp1252 -- cmd.exe /c chcp
  winvoke --env MY_VAR=hello --tunnel-env -- cmd.exe /c echo %MY_VAR%
  winvoke --timeout 30s -- powershell.exe -Command Get-Process
  winvoke shim install docker.exe --as docker`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The exit code is carried out of the handler so deferred
		// cleanup inside the invocation still runs.
		exitCode = runInvocation(args[0], args[1:])
		return nil
	},
}

// exitCode is the process exit status recorded by the root handler and
// applied once Execute has fully unwound.
var exitCode int

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s, go: %s)",
		version, commit, date, runtime.Version())

	f := rootCmd.Flags()
	// Anything after the first positional belongs to the child.
	f.SetInterspersed(false)
	f.StringArrayVar(&flagEnv, "env", nil, "set environment variable as KEY=VAL (repeatable)")
	f.BoolVar(&flagTunnelEnv, "tunnel-env", false, "add a WSLENV entry for --env vars")
	f.DurationVar(&flagTimeout, "timeout", 0, "max execution time (e.g. 30s, 5m)")
	f.StringVar(&flagEncoding, "encoding", "", "console output encoding: utf8, cp1252, cp850, utf16le, utf16be, auto")
	f.BoolVarP(&flagInteractive, "interactive", "i", false, "attach stdio directly (REPLs, TUI apps)")
	f.IntVar(&flagConcurrency, "concurrency", runtime.NumCPU(), "max concurrent executions")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(shimCmd)
}

func execute() int {
	if err := rootCmd.Execute(); err != nil {
		newLogger().Error(err.Error())
		return bridge.ExitBridgeError
	}
	return exitCode
}

// runShimmed bridges an invocation that arrived through a shim
// symlink: argv[0] names the command, everything else passes through.
func runShimmed(name string, args []string) int {
	if entry, ok := openRegistryQuiet().Lookup(name); ok {
		name = entry.Target
	}
	return runInvocation(name, args)
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "winvoke"})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// runInvocation executes one bridged command and returns the process
// exit code: the child's own code when it ran, a bridge-level code when
// it could not be started.
func runInvocation(command string, args []string) int {
	logger := newLogger()

	info := wsl.Probe()
	if !info.WSL {
		logger.Error("winvoke must run inside a WSL environment")
		return bridge.ExitBridgeError
	}
	logger.Debug("WSL environment detected", "version", int(info.Version), "distro", info.Distro)

	cfg, err := bridge.LoadConfig()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		return bridge.ExitBridgeError
	}

	extraEnv := make(map[string]string, len(flagEnv))
	for _, e := range flagEnv {
		k, v, ok := strings.Cut(e, "=")
		if !ok {
			logger.Error("invalid --env value, expected KEY=VAL", "value", e)
			return bridge.ExitBridgeError
		}
		extraEnv[k] = v
	}

	cwd, err := os.Getwd()
	if err != nil {
		logger.Error("cannot determine working directory", "err", err)
		return bridge.ExitBridgeError
	}

	req := bridge.Request{
		Command: command,
		Args:    args,
		Dir:     cwd,
		Environ: environMap(),
	}

	interactive := flagInteractive
	if !interactive && term.IsTerminal(int(os.Stdin.Fd())) && looksInteractive(command) {
		interactive = true
		logger.Debug("auto-detected interactive mode")
	}

	b := bridge.New(cfg, logger)
	b.Interactive = interactive
	b.Encoding = flagEncoding
	b.Timeout = flagTimeout
	b.ExtraEnv = extraEnv
	b.TunnelEnv = flagTunnelEnv
	if interactive || !term.IsTerminal(int(os.Stdin.Fd())) {
		b.Stdin = os.Stdin
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warn("received signal, terminating child", "signal", sig)
		cancel() // child gets SIGTERM via the launcher's Cancel hook

		select {
		case <-sigCh:
			logger.Warn("second signal, forcing exit")
			os.Exit(130)
		case <-time.After(5 * time.Second):
			logger.Warn("grace period expired, forcing exit")
			os.Exit(130)
		}
	}()

	pool := workerpool.New(flagConcurrency, func(_ context.Context, r bridge.Request) (bridge.Outcome, error) {
		return b.Invoke(ctx, r)
	})
	pool.Submit(req)
	pool.Shutdown()

	exitCode := 0
	for res := range pool.Results() {
		if res.Err != nil {
			logger.Error(res.Err.Error())
			exitCode = bridge.BridgeExitCode(res.Err)
			continue
		}
		logger.Debug("command completed",
			"command", res.Request.Command,
			"exit", res.Outcome.ExitCode,
			"duration", res.Outcome.Duration.Round(time.Millisecond))
		if res.Outcome.Signal != 0 {
			exitCode = 128 + res.Outcome.Signal
		} else {
			exitCode = res.Outcome.ExitCode
		}
	}
	return exitCode
}

// looksInteractive reports whether a command is a known REPL worth
// attaching a terminal to.
func looksInteractive(command string) bool {
	c := strings.ToLower(command)
	for _, repl := range []string{"python", "node", "mysql", "psql", "irb", "pwsh", "powershell"} {
		if strings.Contains(c, repl) {
			return true
		}
	}
	return false
}

func environMap() map[string]string {
	env := os.Environ()
	m := make(map[string]string, len(env))
	for _, e := range env {
		if k, v, ok := strings.Cut(e, "="); ok {
			m[k] = v
		}
	}
	return m
}
