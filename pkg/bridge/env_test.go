package bridge

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func testEnvBridge() *EnvBridge {
	return NewEnvBridge(testTranslator(), log.New(io.Discard))
}

func TestBridge_TranslatesPathValues(t *testing.T) {
	eb := testEnvBridge()
	target := ResolvedTarget{WindowsPath: `C:\tools\foo.exe`, LinuxPath: "/mnt/c/tools/foo.exe"}

	environ := map[string]string{
		"PROJECT_DIR": "/mnt/c/Users/dev/project",
		"GREETING":    "hello",
		"LIB_DIRS":    "/mnt/c/lib:/mnt/d/lib",
		"CONN":        "host:port",
	}

	benv := eb.Bridge(environ, "/mnt/c/Users/dev", target)

	want := map[string]string{
		"PROJECT_DIR": `C:\Users\dev\project`,
		"GREETING":    "hello",
		"LIB_DIRS":    `C:\lib;D:\lib`,
		"CONN":        "host:port",
	}
	got := envToMap(benv.Env)
	for k, v := range want {
		if got[k] != v {
			t.Errorf("env[%s] = %q, want %q", k, got[k], v)
		}
	}
	if benv.Dir != "/mnt/c/Users/dev" {
		t.Errorf("Dir = %q, want /mnt/c/Users/dev", benv.Dir)
	}
	if benv.WindowsDir != `C:\Users\dev` {
		t.Errorf("WindowsDir = %q, want C:\\Users\\dev", benv.WindowsDir)
	}
}

func TestBridge_URLAndHostValuesUntouched(t *testing.T) {
	eb := testEnvBridge()
	target := ResolvedTarget{WindowsPath: `C:\tools\foo.exe`, LinuxPath: "/mnt/c/tools/foo.exe"}

	environ := map[string]string{
		"API_URL":  "https://example.com/api",
		"DB_URL":   "postgres://user@db.internal:5432/app",
		"RSYNC_TO": "backup-host:/no/such/data",
		"PROXY":    "http://proxy:3128,https://proxy:3129",
	}
	benv := eb.Bridge(environ, "/mnt/c", target)

	got := envToMap(benv.Env)
	for k, v := range environ {
		if got[k] != v {
			t.Errorf("env[%s] = %q, want %q untouched", k, got[k], v)
		}
	}
}

func TestBridge_UntranslatableValuePassesThrough(t *testing.T) {
	eb := testEnvBridge()
	target := ResolvedTarget{WindowsPath: `C:\tools\foo.exe`, LinuxPath: "/mnt/c/tools/foo.exe"}

	environ := map[string]string{
		"MISSING_DIR": "/no/such/dir/exists/here",
	}
	benv := eb.Bridge(environ, "/mnt/c", target)

	if got := envToMap(benv.Env)["MISSING_DIR"]; got != "/no/such/dir/exists/here" {
		t.Errorf("untranslatable value = %q, want verbatim passthrough", got)
	}
}

func TestBridge_WorkdirFallsBackToTargetDir(t *testing.T) {
	eb := testEnvBridge()
	target := ResolvedTarget{WindowsPath: `C:\tools\foo.exe`, LinuxPath: "/mnt/c/tools/foo.exe"}

	benv := eb.Bridge(nil, "/no/such/cwd", target)

	if benv.Dir != "/mnt/c/tools" {
		t.Errorf("Dir = %q, want /mnt/c/tools", benv.Dir)
	}
	if benv.WindowsDir != `C:\tools` {
		t.Errorf("WindowsDir = %q, want C:\\tools", benv.WindowsDir)
	}
}

func TestInferWSLEnvFlag(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"single path", "MY_DIR", "/home/user/project", wslenvFlagPath},
		{"relative path", "CONF", "./config/app.yaml", wslenvFlagPath},
		{"path list", "SEARCH_DIRS", "/usr/bin:/usr/local/bin", wslenvFlagPathList},
		{"mixed list", "LIB_PATH", "/usr/lib:./local/lib", wslenvFlagPathList},
		{"known key plain value", "GOPATH", "", wslenvFlagPath},
		{"plain value", "MY_VAR", "hello", wslenvFlagUnixWin},
		{"colon but no paths", "CONN_STR", "host:port", wslenvFlagUnixWin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferWSLEnvFlag(tt.key, tt.value); got != tt.want {
				t.Errorf("inferWSLEnvFlag(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
			}
		})
	}
}

func TestBuildWSLENV(t *testing.T) {
	vars := map[string]string{
		"MY_VAR":   "hello",
		"MY_PATH":  "/home/user/data",
		"LIB_DIRS": "/usr/lib:/usr/local/lib",
	}
	want := "LIB_DIRS/l:MY_PATH/p:MY_VAR/u"
	if got := BuildWSLENV(vars); got != want {
		t.Errorf("BuildWSLENV = %q, want %q", got, want)
	}

	if got := BuildWSLENV(nil); got != "" {
		t.Errorf("BuildWSLENV(nil) = %q, want empty", got)
	}
}

func TestAppendWSLENV(t *testing.T) {
	env := []string{"A=1"}
	env = appendWSLENV(env, map[string]string{"MY_VAR": "x"})
	if got := envToMap(env)["WSLENV"]; got != "MY_VAR/u" {
		t.Errorf("WSLENV = %q, want MY_VAR/u", got)
	}

	// An existing WSLENV is extended, not replaced.
	env = []string{"WSLENV=OLD/u"}
	env = appendWSLENV(env, map[string]string{"NEW_PATH": "/tmp/x"})
	if got := envToMap(env)["WSLENV"]; got != "OLD/u:NEW_PATH/p" {
		t.Errorf("WSLENV = %q, want OLD/u:NEW_PATH/p", got)
	}
}

func envToMap(env []string) map[string]string {
	m := make(map[string]string, len(env))
	for _, e := range env {
		if k, v, ok := strings.Cut(e, "="); ok {
			m[k] = v
		}
	}
	return m
}
