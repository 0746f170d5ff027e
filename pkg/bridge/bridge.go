package bridge

import (
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
)

// Bridge wires the translator, resolver, environment bridge and
// launcher into one invocation pipeline. Every Invoke resolves from
// scratch; nothing is cached between invocations, so a target replaced
// on disk is re-classified the next time it is named.
type Bridge struct {
	cfg      Config
	logger   *log.Logger
	trans    *Translator
	resolver *Resolver
	envb     *EnvBridge

	// Stdio overrides; nil means the process's own streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive attaches stdio directly instead of forwarding.
	Interactive bool

	// Encoding names the console codec for child output.
	Encoding string

	// Timeout bounds the child's lifetime; zero means none.
	Timeout time.Duration

	// ExtraEnv is merged over the request's environment.
	ExtraEnv map[string]string

	// TunnelEnv adds a WSLENV entry for ExtraEnv so the interop layer
	// carries those variables across to the Win32 side.
	TunnelEnv bool
}

// New builds a bridge from configuration. The logger receives
// translation warnings; it must not be nil.
func New(cfg Config, logger *log.Logger) *Bridge {
	trans := NewTranslator(cfg, logger)
	return &Bridge{
		cfg:      cfg,
		logger:   logger,
		trans:    trans,
		resolver: NewResolver(cfg, trans),
		envb:     NewEnvBridge(trans, logger),
	}
}

// Translator exposes the bridge's path translator.
func (b *Bridge) Translator() *Translator { return b.trans }

// Invoke runs one request end to end: resolve, classify, encode,
// bridge the environment, launch, and report the child's outcome.
// Errors other than EnvironmentTranslation warnings are fatal to the
// invocation and never produce a launch.
func (b *Bridge) Invoke(ctx context.Context, req Request) (Outcome, error) {
	target, err := b.resolver.Resolve(req.Command)
	if err != nil {
		return Outcome{}, err
	}

	kind, err := Classify(target, b.cfg)
	if err != nil {
		return Outcome{}, err
	}

	plan, err := b.Plan(target, kind, req.Args)
	if err != nil {
		return Outcome{}, err
	}

	environ := req.Environ
	if len(b.ExtraEnv) > 0 {
		merged := make(map[string]string, len(environ)+len(b.ExtraEnv))
		for k, v := range environ {
			merged[k] = v
		}
		for k, v := range b.ExtraEnv {
			merged[k] = v
		}
		environ = merged
	}

	benv := b.envb.Bridge(environ, req.Dir, target)
	if b.TunnelEnv {
		benv.Env = appendWSLENV(benv.Env, b.ExtraEnv)
	}

	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	launcher := &Launcher{
		Stdin:       b.Stdin,
		Stdout:      b.Stdout,
		Stderr:      b.Stderr,
		Encoding:    b.Encoding,
		Interactive: b.Interactive,
		Logger:      b.logger,
	}

	b.logger.Debug("launching",
		"program", plan.Program, "kind", plan.Kind, "origin", target.Origin,
		"workdir", benv.WindowsDir)

	return launcher.Run(ctx, plan, benv)
}

// Plan builds the launch plan for a classified target: the program
// path, and the argument vector encoded for the strategy's re-parse.
func (b *Bridge) Plan(target ResolvedTarget, kind LaunchKind, args []string) (LaunchPlan, error) {
	switch kind {
	case LaunchInterpreterWrapped:
		interpPath, err := exec.LookPath(b.cfg.Interpreter)
		if err != nil {
			// No interpreter means process creation cannot happen.
			return LaunchPlan{}, &LaunchFailureError{Program: b.cfg.Interpreter, Err: err}
		}
		program := b.cfg.Interpreter
		if win, _, werr := b.trans.ToWindows(interpPath); werr == nil {
			program = win
		}
		return LaunchPlan{
			Kind:     kind,
			Program:  program,
			ExecPath: interpPath,
			Args:     EncodeArgs(kind, target.WindowsPath, args),
		}, nil
	default:
		return LaunchPlan{
			Kind:     kind,
			Program:  target.WindowsPath,
			ExecPath: target.LinuxPath,
			Args:     EncodeArgs(kind, target.WindowsPath, args),
		}, nil
	}
}
