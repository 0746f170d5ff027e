// Package bridge implements the invocation bridge between a WSL
// environment and the cohosted Windows installation: it resolves a
// command to its Windows-side location, classifies how it must be
// launched, re-encodes arguments for the native command-line re-parse,
// bridges environment variables and the working directory, and spawns
// the child with live stdio streaming.
package bridge

import "time"

// Request describes one invocation as handed over by the caller.
// It is never mutated by the bridge.
type Request struct {
	// Command is the command token or path exactly as supplied.
	Command string

	// Args are the logical arguments, already free of the calling
	// shell's own quoting.
	Args []string

	// Dir is the caller's working directory (Linux form).
	Dir string

	// Environ is the caller's environment variable mapping.
	Environ map[string]string
}

// PathOrigin tags how a resolved target's native path was derived.
type PathOrigin int

const (
	// OriginMountedDrive means the path reduced to a drive-letter mount
	// and maps losslessly to <Letter>:\... form.
	OriginMountedDrive PathOrigin = iota

	// OriginUNCOrOther means the path lives outside any mounted drive
	// and is addressed from the Windows side via the UNC convention
	// (or a configured external converter).
	OriginUNCOrOther
)

func (o PathOrigin) String() string {
	switch o {
	case OriginMountedDrive:
		return "mounted-drive"
	case OriginUNCOrOther:
		return "unc-or-other"
	default:
		return "unknown"
	}
}

// ResolvedTarget is the outcome of command resolution: where the target
// lives on both sides of the boundary.
type ResolvedTarget struct {
	// WindowsPath is the native absolute path of the target.
	WindowsPath string

	// LinuxPath is the Linux-visible location the target was found at.
	LinuxPath string

	Origin PathOrigin
}

// LaunchKind selects the low-level launch strategy for a target.
type LaunchKind int

const (
	// LaunchDirectNative executes the target binary itself.
	LaunchDirectNative LaunchKind = iota

	// LaunchInterpreterWrapped runs the target through the command
	// interpreter with its run-and-terminate flag.
	LaunchInterpreterWrapped
)

func (k LaunchKind) String() string {
	switch k {
	case LaunchDirectNative:
		return "direct-native"
	case LaunchInterpreterWrapped:
		return "interpreter-wrapped"
	default:
		return "unknown"
	}
}

// LaunchPlan is the concrete program and argument vector handed to
// process creation. For LaunchInterpreterWrapped the first two argv
// slots are the interpreter's run flag and the (re-quoted) target path;
// the target itself is never the program in that case.
type LaunchPlan struct {
	Kind LaunchKind

	// Program is the native-form path of what actually runs, kept for
	// reporting.
	Program string

	// ExecPath is the Linux-visible path handed to the spawn call; the
	// interop layer is entered from the Linux side.
	ExecPath string

	// Args is the encoded argument vector, excluding argv[0].
	Args []string
}

// BridgedEnv is the environment and working directory prepared for the
// child process.
type BridgedEnv struct {
	// Env holds KEY=VALUE entries with path-like values translated to
	// their native form.
	Env []string

	// Dir is the Linux-visible working directory for the spawn call.
	Dir string

	// WindowsDir is the native form of the working directory.
	WindowsDir string
}

// Outcome reports how the child process ended. A launch that failed
// outright is reported as an error, never as an Outcome.
type Outcome struct {
	// ExitCode is the child's exit status, passed through verbatim.
	// It is -1 when the child died on a signal; Signal then carries
	// the signal number.
	ExitCode int

	Signal int

	Duration time.Duration
}
