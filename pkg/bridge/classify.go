package bridge

import "strings"

// nativeSuffixes identify binaries the interop layer executes directly.
var nativeSuffixes = []string{".exe", ".com"}

// Classify picks the launch strategy for a resolved target from its
// filename suffix, case-insensitively. Content sniffing is deliberately
// absent; the native OS associates launchers by extension and so does
// the bridge.
func Classify(target ResolvedTarget, cfg Config) (LaunchKind, error) {
	suffix := pathSuffix(target.WindowsPath)

	for _, s := range nativeSuffixes {
		if strings.EqualFold(s, suffix) {
			return LaunchDirectNative, nil
		}
	}
	if cfg.isBatchSuffix(suffix) {
		return LaunchInterpreterWrapped, nil
	}
	return 0, &UnsupportedTargetError{Path: target.WindowsPath, Suffix: suffix}
}

// pathSuffix extracts the filename suffix from a path in either
// separator convention. filepath.Ext is wrong here: on Linux it treats
// backslashes as ordinary characters, so a dotted directory name would
// leak into the extension.
func pathSuffix(path string) string {
	base := path
	if idx := strings.LastIndexAny(path, `\/`); idx >= 0 {
		base = path[idx+1:]
	}
	if dot := strings.LastIndexByte(base, '.'); dot > 0 {
		return base[dot:]
	}
	return ""
}
