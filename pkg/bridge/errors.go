package bridge

import (
	"errors"
	"fmt"
)

// Bridge-level exit codes, disjoint from common child exit codes so a
// caller can tell "the bridge could not start your program" from "your
// program ran and failed". They follow the shell conventions for
// command-not-found and not-executable.
const (
	ExitResolutionFailure = 127
	ExitUnsupportedTarget = 126
	ExitLaunchFailure     = 126
	ExitAmbiguousPath     = 125
	ExitBridgeError       = 1
)

// PathResolutionError means the named command or path does not exist on
// either side of the boundary.
type PathResolutionError struct {
	Path string
	Err  error
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("command %q not found", e.Path)
}

func (e *PathResolutionError) Unwrap() error { return e.Err }

// AmbiguousPathError means a path could not be reduced to a
// mounted-drive form and the configured fallback conversion was
// unavailable or failed.
type AmbiguousPathError struct {
	Path string
	Err  error
}

func (e *AmbiguousPathError) Error() string {
	return fmt.Sprintf("path %q has no native representation: %v", e.Path, e.Err)
}

func (e *AmbiguousPathError) Unwrap() error { return e.Err }

// UnsupportedTargetError means the target's filename suffix identifies
// neither a native executable nor a supported script form. The bridge
// never sniffs file content; extension association is the rule.
type UnsupportedTargetError struct {
	Path   string
	Suffix string
}

func (e *UnsupportedTargetError) Error() string {
	if e.Suffix == "" {
		return fmt.Sprintf("target %q has no filename suffix; cannot choose a launch strategy", e.Path)
	}
	return fmt.Sprintf("target %q has unsupported suffix %q", e.Path, e.Suffix)
}

// LaunchFailureError means process creation itself failed after a valid
// launch plan was built. Launch failures are not retried.
type LaunchFailureError struct {
	Program string
	Err     error
}

func (e *LaunchFailureError) Error() string {
	return fmt.Sprintf("failed to launch %q: %v", e.Program, e.Err)
}

func (e *LaunchFailureError) Unwrap() error { return e.Err }

// BridgeExitCode maps a bridge error to the exit status the invoking
// process should report.
func BridgeExitCode(err error) int {
	var (
		resolution  *PathResolutionError
		ambiguous   *AmbiguousPathError
		unsupported *UnsupportedTargetError
		launch      *LaunchFailureError
	)
	switch {
	case errors.As(err, &resolution):
		return ExitResolutionFailure
	case errors.As(err, &ambiguous):
		return ExitAmbiguousPath
	case errors.As(err, &unsupported):
		return ExitUnsupportedTarget
	case errors.As(err, &launch):
		return ExitLaunchFailure
	case err != nil:
		return ExitBridgeError
	}
	return 0
}
