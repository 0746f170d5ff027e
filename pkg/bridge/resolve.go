package bridge

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Resolver locates the Windows-side target for a command token.
type Resolver struct {
	cfg   Config
	trans *Translator

	// lookPath and stat are split out for tests.
	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
}

// NewResolver returns a resolver using the given translator.
func NewResolver(cfg Config, trans *Translator) *Resolver {
	return &Resolver{
		cfg:      cfg,
		trans:    trans,
		lookPath: exec.LookPath,
		stat:     os.Stat,
	}
}

// Resolve turns the request's command into a ResolvedTarget.
//
// A token containing a path separator is treated as a path and
// translated directly. A bare token with a suffix is searched on PATH
// as-is. A bare token without a suffix is probed as <cmd>.exe,
// <cmd>.bat, <cmd>.cmd in that order, matching how the Windows shell
// itself would associate it.
func (r *Resolver) Resolve(command string) (ResolvedTarget, error) {
	if command == "" {
		return ResolvedTarget{}, &PathResolutionError{Path: command}
	}

	if strings.ContainsRune(command, '/') {
		return r.resolvePath(command)
	}

	if pathSuffix(command) != "" {
		found, err := r.lookPath(command)
		if err != nil {
			return ResolvedTarget{}, &PathResolutionError{Path: command, Err: err}
		}
		return r.resolvePath(found)
	}

	for _, suffix := range r.candidateSuffixes() {
		found, err := r.lookPath(command + suffix)
		if err != nil {
			continue
		}
		return r.resolvePath(found)
	}
	return ResolvedTarget{}, &PathResolutionError{Path: command}
}

// candidateSuffixes is the probe order for bare command tokens: the
// native binary first, then the configured batch suffixes.
func (r *Resolver) candidateSuffixes() []string {
	return append([]string{".exe"}, r.cfg.BatchSuffixes...)
}

func (r *Resolver) resolvePath(path string) (ResolvedTarget, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ResolvedTarget{}, &PathResolutionError{Path: path, Err: err}
	}
	if _, err := r.stat(abs); err != nil {
		return ResolvedTarget{}, &PathResolutionError{Path: path, Err: err}
	}

	win, origin, err := r.trans.ToWindows(abs)
	if err != nil {
		return ResolvedTarget{}, err
	}
	return ResolvedTarget{WindowsPath: win, LinuxPath: abs, Origin: origin}, nil
}
