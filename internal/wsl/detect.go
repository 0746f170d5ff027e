// Package wsl probes the Windows Subsystem for Linux environment the
// bridge runs in: the WSL version, the distribution name, and the drive
// mounts exposed by the interop layer.
package wsl

import (
	"os"
	"strings"
	"sync"
)

// Version identifies the WSL generation.
type Version int

const (
	VersionNone Version = iota
	Version1
	Version2
)

// Info describes the detected WSL environment.
type Info struct {
	WSL     bool
	Version Version
	Distro  string
}

var (
	probeOnce sync.Once
	probed    Info
)

// readProcVersion reads /proc/version. Overridable in tests.
var readProcVersion = func() (string, error) {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Probe reports the WSL environment. The kernel banner is read once;
// subsequent calls return the memoized result.
func Probe() Info {
	probeOnce.Do(func() {
		probed = probe()
	})
	return probed
}

func probe() Info {
	content, err := readProcVersion()
	if err != nil {
		return Info{}
	}

	banner := strings.ToLower(content)
	if !strings.Contains(banner, "microsoft") {
		return Info{}
	}

	info := Info{
		WSL:    true,
		Distro: os.Getenv("WSL_DISTRO_NAME"),
	}

	// WSL2 kernels advertise "microsoft-standard-wsl"; plain
	// "Microsoft" banners belong to WSL1.
	if strings.Contains(banner, "microsoft-standard-wsl") {
		info.Version = Version2
	} else {
		info.Version = Version1
	}
	return info
}

// resetProbe clears the memoized detection state. Test use only.
func resetProbe() {
	probeOnce = sync.Once{}
	probed = Info{}
}
