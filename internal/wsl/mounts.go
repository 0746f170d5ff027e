package wsl

import (
	"os"
	"sort"
	"strings"
)

// Mount maps a Windows drive letter to its Linux mount point.
type Mount struct {
	Drive string // single uppercase letter
	Point string // e.g. /mnt/c
}

// readMountTable reads /proc/mounts. Overridable in tests.
var readMountTable = func() (string, error) {
	data, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MountTable returns the drive mounts currently exposed by the interop
// layer. The table is re-read on every call; drive mounts can change
// between invocations and correctness wins over speed here.
func MountTable() []Mount {
	content, err := readMountTable()
	if err != nil {
		return nil
	}
	return parseMountTable(content)
}

// parseMountTable extracts drvfs drive mounts from /proc/mounts
// content. A drive mount has a device of the form `C:\` (or `C:`) and a
// drvfs-backed filesystem (drvfs directly, or 9p with a drvfs aname on
// WSL2).
func parseMountTable(content string) []Mount {
	var mounts []Mount
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		device, point, fstype, opts := fields[0], fields[1], fields[2], fields[3]

		switch fstype {
		case "drvfs":
		case "9p":
			if !strings.Contains(opts, "drvfs") {
				continue
			}
		default:
			continue
		}

		letter, ok := driveLetter(device)
		if !ok {
			continue
		}
		mounts = append(mounts, Mount{Drive: letter, Point: unescapeMountPoint(point)})
	}

	// Longest mount point first so prefix matching picks the most
	// specific entry.
	sort.SliceStable(mounts, func(i, j int) bool {
		return len(mounts[i].Point) > len(mounts[j].Point)
	})
	return mounts
}

// driveLetter extracts the drive letter from a device field like `C:\`.
func driveLetter(device string) (string, bool) {
	device = strings.TrimSuffix(device, `\`)
	if len(device) != 2 || device[1] != ':' {
		return "", false
	}
	c := device[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'Z' {
		return "", false
	}
	return string(c), true
}

// unescapeMountPoint undoes the octal escapes /proc/mounts applies to
// spaces and other special characters in mount points.
func unescapeMountPoint(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && isOctal(s[i+1]) && isOctal(s[i+2]) && isOctal(s[i+3]) {
			b.WriteByte((s[i+1]-'0')<<6 | (s[i+2]-'0')<<3 | (s[i+3] - '0'))
			i += 3
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isOctal(c byte) bool { return c >= '0' && c <= '7' }
