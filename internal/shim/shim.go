// Package shim manages symlink shims that make a Windows tool
// invocable as a bare Linux command. A shim is a symlink to the winvoke
// binary; winvoke recognizes being called under a different name and
// bridges that name instead. The set of installed shims is persisted as
// a YAML registry so shims survive reinstalls and can be listed.
package shim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const registryFile = "shims.yaml"

// Entry records one installed shim.
type Entry struct {
	// Name is the bare command the shim answers to.
	Name string `yaml:"name"`

	// Target is the Windows command the shim bridges to.
	Target string `yaml:"target"`

	InstalledAt time.Time `yaml:"installed_at"`
}

// Registry is the on-disk shim registry plus the directory symlinks
// are installed into.
type Registry struct {
	path    string
	binDir  string
	entries []Entry
}

// Open loads (or initializes) the registry under configDir, installing
// symlinks into binDir.
func Open(configDir, binDir string) (*Registry, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return nil, fmt.Errorf("create shim bin dir: %w", err)
	}

	r := &Registry{path: filepath.Join(configDir, registryFile), binDir: binDir}
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read shim registry: %w", err)
	}
	if err := yaml.Unmarshal(data, &r.entries); err != nil {
		return nil, fmt.Errorf("parse shim registry: %w", err)
	}
	return r, nil
}

// Entries lists installed shims.
func (r *Registry) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Install creates a symlink named name pointing at the winvoke binary
// and records the target it bridges to. An existing shim of the same
// name is replaced.
func (r *Registry) Install(name, target, winvokePath string) error {
	if name == "" || target == "" {
		return fmt.Errorf("shim name and target must be non-empty")
	}

	link := filepath.Join(r.binDir, name)
	if err := os.Remove(link); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("replace shim %q: %w", name, err)
	}
	if err := os.Symlink(winvokePath, link); err != nil {
		return fmt.Errorf("install shim %q: %w", name, err)
	}

	r.remove(name)
	r.entries = append(r.entries, Entry{Name: name, Target: target, InstalledAt: time.Now().UTC()})
	return r.save()
}

// Remove deletes a shim's symlink and registry entry.
func (r *Registry) Remove(name string) error {
	if !r.remove(name) {
		return fmt.Errorf("shim %q is not installed", name)
	}
	link := filepath.Join(r.binDir, name)
	if err := os.Remove(link); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove shim %q: %w", name, err)
	}
	return r.save()
}

// Lookup returns the target a shim name bridges to.
func (r *Registry) Lookup(name string) (Entry, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

func (r *Registry) remove(name string) bool {
	for i, e := range r.entries {
		if e.Name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry) save() error {
	data, err := yaml.Marshal(r.entries)
	if err != nil {
		return fmt.Errorf("encode shim registry: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write shim registry: %w", err)
	}
	return nil
}
