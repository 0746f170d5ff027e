package bridge

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// WSLENV flags, per the documented sharing mechanism between WSL and
// Win32 processes.
const (
	wslenvFlagPath     = "/p"
	wslenvFlagPathList = "/l"
	wslenvFlagUnixWin  = "/u"
)

// EnvBridge derives the child's environment and working directory from
// the caller's, translating path-valued entries to the native view.
type EnvBridge struct {
	trans  *Translator
	logger *log.Logger
}

// NewEnvBridge returns an environment bridge using the given
// translator for path conversion.
func NewEnvBridge(trans *Translator, logger *log.Logger) *EnvBridge {
	return &EnvBridge{trans: trans, logger: logger}
}

// Bridge produces the child environment. Path-like values are
// translated to native form, search-path lists are re-joined with the
// native delimiter, and everything else crosses untouched — the bridge
// never prunes the environment. A value that cannot be translated is a
// warning, not a failure: it passes through verbatim.
//
// The working directory is translated the same way; if that fails the
// target's own directory is used instead, since a mismatched cwd is
// survivable where a refused launch is not.
func (b *EnvBridge) Bridge(environ map[string]string, dir string, target ResolvedTarget) BridgedEnv {
	keys := make([]string, 0, len(environ))
	for k := range environ {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+b.bridgeValue(k, environ[k]))
	}

	out := BridgedEnv{Env: env}
	if win, _, err := b.trans.ToWindows(dir); err == nil {
		out.Dir = dir
		out.WindowsDir = win
	} else {
		b.logger.Warn("working directory not translatable; using target directory",
			"dir", dir, "err", err)
		out.Dir = filepath.Dir(target.LinuxPath)
		out.WindowsDir = windowsDir(target.WindowsPath)
	}
	return out
}

// bridgeValue translates one variable's value when it resembles a path
// or a path list.
func (b *EnvBridge) bridgeValue(key, value string) string {
	if isPathList(value) {
		parts := strings.Split(value, ":")
		translated := 0
		for i, p := range parts {
			if !looksLikePath(p) {
				continue
			}
			win, _, err := b.trans.ToWindows(p)
			if err != nil {
				b.logger.Warn("environment path list element not translatable; passing through",
					"var", key, "element", p, "err", err)
				continue
			}
			parts[i] = win
			translated++
		}
		// Switching the delimiter is only correct for a value that really
		// was a search path. If nothing translated, the list reading was
		// wrong (URLs and host:path strings also contain colons) and the
		// value crosses untouched.
		if translated == 0 {
			return value
		}
		return strings.Join(parts, ";")
	}

	if looksLikePath(value) {
		win, _, err := b.trans.ToWindows(value)
		if err != nil {
			b.logger.Warn("environment value not translatable; passing through",
				"var", key, "err", err)
			return value
		}
		return win
	}

	return value
}

// looksLikePath reports whether a value plausibly names a Linux-side
// filesystem location.
func looksLikePath(s string) bool {
	// A double slash is a URL authority fragment left over from
	// splitting "scheme://..." on colons, not a filesystem location.
	if strings.HasPrefix(s, "//") {
		return false
	}
	return strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "./") ||
		strings.HasPrefix(s, "../")
}

// isPathList reports whether a value is a colon-delimited search path:
// it contains a colon and at least half of its segments look like
// paths.
func isPathList(s string) bool {
	if !strings.Contains(s, ":") {
		return false
	}
	segments := strings.Split(s, ":")
	pathish := 0
	for _, seg := range segments {
		if looksLikePath(strings.TrimSpace(seg)) {
			pathish++
		}
	}
	return pathish > 0 && pathish*2 >= len(segments)
}

// BuildWSLENV formats the WSLENV tunneling variable for the given
// caller-supplied variables, inferring the flag from both the key name
// and the value shape.
//
// Example output: "GOPATH/p:MY_DIRS/l:MY_VAR/u"
func BuildWSLENV(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+inferWSLEnvFlag(k, vars[k]))
	}
	return strings.Join(parts, ":")
}

// wellKnownPathKeys are variable names that conventionally hold paths
// even when the current value does not look like one.
var wellKnownPathKeys = map[string]bool{
	"PATH":         true,
	"HOME":         true,
	"GOPATH":       true,
	"GOROOT":       true,
	"TMPDIR":       true,
	"TEMP":         true,
	"TMP":          true,
	"USERPROFILE":  true,
	"APPDATA":      true,
	"LOCALAPPDATA": true,
}

func inferWSLEnvFlag(key, value string) string {
	if isPathList(value) {
		return wslenvFlagPathList
	}
	if looksLikePath(value) || wellKnownPathKeys[strings.ToUpper(key)] {
		return wslenvFlagPath
	}
	return wslenvFlagUnixWin
}

// appendWSLENV merges a WSLENV entry for the tunneled vars into an
// existing environment slice, extending any WSLENV already present.
func appendWSLENV(env []string, vars map[string]string) []string {
	wslenv := BuildWSLENV(vars)
	if wslenv == "" {
		return env
	}
	for i, e := range env {
		if existing, ok := strings.CutPrefix(e, "WSLENV="); ok {
			if existing != "" {
				wslenv = existing + ":" + wslenv
			}
			env[i] = "WSLENV=" + wslenv
			return env
		}
	}
	return append(env, "WSLENV="+wslenv)
}
