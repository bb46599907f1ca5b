// Package language holds the static registry of language profiles.
//
// A profile maps a language identifier to the container image, source
// file extension, and command line used to run a submission. Profiles
// are registered at init time and never mutated afterwards.
package language

// Profile describes how one language is executed inside the sandbox.
type Profile struct {
	Name      string
	Image     string
	Extension string

	// Env is set in the container for toolchains that need writable
	// scratch outside the read-only rootfs (caches, HOME). Values are
	// profile constants, never request data.
	Env []string

	// CompileCommand, when non-empty, runs before RunCommand inside the
	// container. Both reference the materialized source file by its
	// basename; the workspace is the container working directory.
	CompileCommand []string
	RunCommand     []string
}

// SourceFile returns the name the source is materialized under for
// this profile.
func (p Profile) SourceFile() string {
	return "code." + p.Extension
}

var registry = map[string]Profile{}

// Register adds a profile to the registry. Called from init functions.
func Register(p Profile) {
	registry[p.Name] = p
}

// Resolve returns the profile for the given identifier. Unrecognized
// identifiers resolve to the generic shell profile rather than failing,
// so callers never have to handle a missing language.
func Resolve(name string) Profile {
	if p, ok := registry[name]; ok {
		return p
	}
	return Generic
}

// Supported reports whether the identifier has a dedicated profile.
func Supported(name string) bool {
	_, ok := registry[name]
	return ok
}

// All returns every registered profile, the generic fallback included.
func All() []Profile {
	profiles := make([]Profile, 0, len(registry)+1)
	for _, p := range registry {
		profiles = append(profiles, p)
	}
	return append(profiles, Generic)
}
