package bridge

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/sibikrish3000/winvoke/internal/wsl"
)

// FallbackConverter turns a Linux path that does not reduce to a
// mounted drive into its native representation. It is the pluggable
// half of the translator: the built-in UNC algorithm and the external
// wslpath delegation are interchangeable behind it.
type FallbackConverter interface {
	ToWindows(linuxPath string) (string, error)
}

// UNCConverter addresses the Linux filesystem from the Windows side via
// the \\wsl.localhost\<distro>\... convention.
type UNCConverter struct {
	Distro string
}

func (c UNCConverter) ToWindows(linuxPath string) (string, error) {
	if c.Distro == "" {
		return "", fmt.Errorf("distro name unknown; cannot build UNC path")
	}
	rest := strings.TrimPrefix(linuxPath, "/")
	return `\\wsl.localhost\` + c.Distro + `\` + strings.ReplaceAll(rest, "/", `\`), nil
}

// WslpathConverter delegates conversion to the wslpath utility shipped
// with WSL.
type WslpathConverter struct {
	// run executes the conversion command. Defaults to exec.Command;
	// replaceable in tests.
	run func(name string, args ...string) (string, error)
}

func (c WslpathConverter) ToWindows(linuxPath string) (string, error) {
	run := c.run
	if run == nil {
		run = runCommand
	}
	out, err := run("wslpath", "-w", linuxPath)
	if err != nil {
		return "", fmt.Errorf("wslpath -w %q: %w", linuxPath, err)
	}
	return out, nil
}

func runCommand(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Translator converts paths between the Linux mount-based view and the
// native Windows view. It holds the mount table snapshot for one
// invocation; nothing is cached across invocations.
type Translator struct {
	mountRoot string
	distro    string
	mounts    []wsl.Mount
	fallback  FallbackConverter
	logger    *log.Logger

	// stat and realpath are split out for tests.
	stat     func(string) (os.FileInfo, error)
	realpath func(string) (string, error)
}

// NewTranslator builds a translator for one invocation.
func NewTranslator(cfg Config, logger *log.Logger) *Translator {
	distro := cfg.Distro
	if distro == "" {
		distro = wsl.Probe().Distro
	}

	var fallback FallbackConverter
	switch cfg.PathStrategy {
	case StrategyWslpath:
		fallback = WslpathConverter{}
	default:
		fallback = UNCConverter{Distro: distro}
	}

	return &Translator{
		mountRoot: strings.TrimRight(cfg.MountRoot, "/"),
		distro:    distro,
		mounts:    wsl.MountTable(),
		fallback:  fallback,
		logger:    logger,
		stat:      os.Stat,
		realpath:  filepath.EvalSymlinks,
	}
}

// ToWindows translates a path in either representation to its native
// form. Input that is already native (drive-letter rooted or UNC) is
// recognized and passed through normalized.
//
// A mounted-drive path converts deterministically with no filesystem
// lookup. Anything else is ambiguous: it must exist, its canonical
// location (symlinks followed) is re-checked against the mounted-drive
// rule, and only then does the configured fallback converter produce a
// native form with OriginUNCOrOther.
func (t *Translator) ToWindows(path string) (string, PathOrigin, error) {
	if path == "" {
		return "", 0, &PathResolutionError{Path: path}
	}

	if isNativePath(path) {
		return normalizeNative(path)
	}

	abs := path
	if !filepath.IsAbs(abs) {
		var err error
		if abs, err = filepath.Abs(abs); err != nil {
			return "", 0, &PathResolutionError{Path: path, Err: err}
		}
	}
	abs = filepath.Clean(abs)

	if win, ok := t.mountedToWindows(abs); ok {
		return win, OriginMountedDrive, nil
	}

	if _, err := t.stat(abs); err != nil {
		return "", 0, &PathResolutionError{Path: path, Err: err}
	}

	// The path may be a symlink back into a drive mount.
	if real, err := t.realpath(abs); err == nil {
		if win, ok := t.mountedToWindows(real); ok {
			return win, OriginMountedDrive, nil
		}
		abs = real
	}

	win, err := t.fallback.ToWindows(abs)
	if err != nil {
		return "", 0, &AmbiguousPathError{Path: path, Err: err}
	}
	return win, OriginUNCOrOther, nil
}

// mountedToWindows applies the mounted-drive rule: the mount table
// first, then the automount convention <root>/<letter>/....
func (t *Translator) mountedToWindows(path string) (string, bool) {
	for _, m := range t.mounts {
		if path == m.Point {
			return m.Drive + `:\`, true
		}
		if rest, ok := strings.CutPrefix(path, m.Point+"/"); ok {
			return m.Drive + `:\` + strings.ReplaceAll(rest, "/", `\`), true
		}
	}

	rest, ok := strings.CutPrefix(path, t.mountRoot+"/")
	if !ok || rest == "" {
		return "", false
	}
	letter := rest[0]
	if !isASCIIAlpha(letter) || (len(rest) > 1 && rest[1] != '/') {
		return "", false
	}
	drive := strings.ToUpper(string(letter))
	if len(rest) <= 2 {
		return drive + `:\`, true
	}
	return drive + `:\` + strings.ReplaceAll(rest[2:], "/", `\`), true
}

// ToLinux translates a native path back to the Linux view, best effort.
// It reports false when the path has no Linux-side representation; the
// caller passes such values through verbatim.
func (t *Translator) ToLinux(winPath string) (string, bool) {
	if len(winPath) >= 2 && winPath[1] == ':' && isASCIIAlpha(winPath[0]) {
		rest := strings.ReplaceAll(winPath[2:], `\`, "/")
		rest = strings.TrimPrefix(rest, "/")
		point := t.mountPointFor(winPath[0])
		if rest == "" {
			return point, true
		}
		return point + "/" + rest, true
	}

	for _, prefix := range []string{`\\wsl.localhost\`, `\\wsl$\`} {
		rest, ok := strings.CutPrefix(winPath, prefix)
		if !ok {
			continue
		}
		// Strip the distro segment; the remainder is rooted at /.
		_, sub, found := strings.Cut(rest, `\`)
		if !found {
			return "/", true
		}
		return "/" + strings.ReplaceAll(sub, `\`, "/"), true
	}

	return "", false
}

func (t *Translator) mountPointFor(letter byte) string {
	upper := strings.ToUpper(string(letter))
	for _, m := range t.mounts {
		if m.Drive == upper {
			return m.Point
		}
	}
	return t.mountRoot + "/" + strings.ToLower(string(letter))
}

// isNativePath reports whether a path is already in the native form:
// drive-letter rooted or UNC.
func isNativePath(s string) bool {
	if len(s) >= 2 && s[1] == ':' && isASCIIAlpha(s[0]) {
		return true
	}
	return strings.HasPrefix(s, `\\`)
}

// normalizeNative passes a native input through with separators and the
// drive letter normalized.
func normalizeNative(path string) (string, PathOrigin, error) {
	if strings.HasPrefix(path, `\\`) {
		return path, OriginUNCOrOther, nil
	}
	win := strings.ToUpper(path[:1]) + strings.ReplaceAll(path[1:], "/", `\`)
	if len(win) == 2 {
		win += `\`
	}
	return win, OriginMountedDrive, nil
}

func isASCIIAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// windowsDir returns the directory portion of a native path.
func windowsDir(winPath string) string {
	idx := strings.LastIndexAny(winPath, `\/`)
	if idx <= 0 {
		return winPath
	}
	// Keep the backslash on drive roots like C:\.
	if idx == 2 && winPath[1] == ':' {
		return winPath[:3]
	}
	return winPath[:idx]
}
