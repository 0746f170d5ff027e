package bridge

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Path conversion strategy names accepted by Config.PathStrategy.
const (
	StrategyBuiltin = "builtin"
	StrategyWslpath = "wslpath"
)

// Config holds the bridge's tuning knobs. All of them are delivered via
// environment variables so shims and the CLI share one mechanism.
type Config struct {
	// BatchSuffixes are the filename suffixes launched through the
	// command interpreter.
	BatchSuffixes []string `env:"WINVOKE_BATCH_SUFFIXES" envSeparator:"," envDefault:".bat,.cmd"`

	// PathStrategy selects the converter used for paths that do not
	// reduce to a mounted drive: "builtin" for the UNC algorithm,
	// "wslpath" to delegate to the wslpath utility.
	PathStrategy string `env:"WINVOKE_PATH_STRATEGY" envDefault:"builtin"`

	// Interpreter is the command interpreter used for batch targets.
	Interpreter string `env:"WINVOKE_INTERPRETER" envDefault:"cmd.exe"`

	// MountRoot is the drive automount root.
	MountRoot string `env:"WINVOKE_MOUNT_ROOT" envDefault:"/mnt"`

	// Distro overrides the distribution name used in UNC paths.
	// Defaults to WSL_DISTRO_NAME.
	Distro string `env:"WINVOKE_DISTRO"`
}

// LoadConfig reads configuration from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the configuration used when no environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		BatchSuffixes: []string{".bat", ".cmd"},
		PathStrategy:  StrategyBuiltin,
		Interpreter:   "cmd.exe",
		MountRoot:     "/mnt",
	}
}

func (c Config) validate() error {
	switch c.PathStrategy {
	case StrategyBuiltin, StrategyWslpath:
	default:
		return fmt.Errorf("unknown path strategy %q (supported: %s, %s)",
			c.PathStrategy, StrategyBuiltin, StrategyWslpath)
	}
	for _, s := range c.BatchSuffixes {
		if !strings.HasPrefix(s, ".") {
			return fmt.Errorf("batch suffix %q must start with a dot", s)
		}
	}
	return nil
}

// isBatchSuffix reports whether suffix is in the configured batch list,
// case-insensitively.
func (c Config) isBatchSuffix(suffix string) bool {
	for _, s := range c.BatchSuffixes {
		if strings.EqualFold(s, suffix) {
			return true
		}
	}
	return false
}
