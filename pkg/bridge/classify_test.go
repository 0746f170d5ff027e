package bridge

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name    string
		path    string
		want    LaunchKind
		wantErr bool
	}{
		{"exe", `C:\tools\foo.exe`, LaunchDirectNative, false},
		{"exe uppercase", `C:\tools\FOO.EXE`, LaunchDirectNative, false},
		{"com", `C:\legacy\edit.com`, LaunchDirectNative, false},
		{"bat", `C:\tools\setup.bat`, LaunchInterpreterWrapped, false},
		{"cmd", `C:\tools\deploy.CMD`, LaunchInterpreterWrapped, false},
		{"unc bat", `\\wsl.localhost\Ubuntu\home\u\run.bat`, LaunchInterpreterWrapped, false},
		{"unknown suffix", `C:\tools\script.ps1`, 0, true},
		{"no suffix", `C:\tools\foo`, 0, true},
		{"dotted dir no suffix", `C:\tools.d\foo`, 0, true},
		{"dotfile", `\\wsl.localhost\Ubuntu\home\u\.profile`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(ResolvedTarget{WindowsPath: tt.path}, cfg)
			if tt.wantErr {
				var unsupported *UnsupportedTargetError
				if !errors.As(err, &unsupported) {
					t.Fatalf("Classify(%q) error = %v, want UnsupportedTargetError", tt.path, err)
				}
				if code := BridgeExitCode(err); code != ExitUnsupportedTarget {
					t.Errorf("BridgeExitCode = %d, want %d", code, ExitUnsupportedTarget)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify(%q) error: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestClassify_ExtendedBatchSuffixes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSuffixes = append(cfg.BatchSuffixes, ".btm")

	got, err := Classify(ResolvedTarget{WindowsPath: `C:\tools\x.btm`}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got != LaunchInterpreterWrapped {
		t.Errorf("got %v, want %v", got, LaunchInterpreterWrapped)
	}
}

func TestPathSuffix(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{`C:\tools\foo.exe`, ".exe"},
		{`C:\tools.d\foo`, ""},
		{`/mnt/c/a.d/b`, ""},
		{"setup.bat", ".bat"},
		{"noext", ""},
		{".hidden", ""},
	}
	for _, tt := range tests {
		if got := pathSuffix(tt.path); got != tt.want {
			t.Errorf("pathSuffix(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
