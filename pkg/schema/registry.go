package schema

import (
	"fmt"
	"sort"
)

// DefaultVersion is the schema version shipped for every built-in core.
const DefaultVersion = 1.1

// DefaultCores lists the cores sir indexes out of the box.
var DefaultCores = []string{
	"annotation", "area", "artist", "cdstub", "editor", "event",
	"instrument", "label", "place", "recording", "release",
	"release-group", "series", "tag", "url", "work",
}

// Registry maps a core name to the schema version the application expects.
// It is read-only once built.
type Registry struct {
	versions map[string]float64
}

// NewRegistry copies versions into a new Registry.
func NewRegistry(versions map[string]float64) *Registry {
	m := make(map[string]float64, len(versions))
	for k, v := range versions {
		m[k] = v
	}
	return &Registry{versions: m}
}

// Default returns the built-in registry with overrides applied on top.
// Overrides may also add cores that are not built in.
func Default(overrides map[string]float64) *Registry {
	m := make(map[string]float64, len(DefaultCores)+len(overrides))
	for _, c := range DefaultCores {
		m[c] = DefaultVersion
	}
	for k, v := range overrides {
		m[k] = v
	}
	return &Registry{versions: m}
}

// Version returns the expected version for core.
func (r *Registry) Version(core string) (float64, bool) {
	v, ok := r.versions[core]
	return v, ok
}

// Cores returns all known core names, sorted.
func (r *Registry) Cores() []string {
	out := make([]string, 0, len(r.versions))
	for k := range r.versions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Validate returns an error naming the first core in cores that is unknown.
func (r *Registry) Validate(cores []string) error {
	for _, c := range cores {
		if _, ok := r.versions[c]; !ok {
			return fmt.Errorf("unknown core %q", c)
		}
	}
	return nil
}
