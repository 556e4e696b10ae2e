// Package common holds types shared by the naming and storage subsystems
// that are not themselves tied to the RPC transport.
package common

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidPath is returned when a path string does not parse: missing
	// leading slash, an empty component, or a component containing a
	// reserved character.
	ErrInvalidPath = errors.New("common: invalid path")

	// ErrNoParent is returned by Parent when called on the root path.
	ErrNoParent = errors.New("common: root has no parent")

	// ErrNoLastComponent is returned by Last when called on the root path.
	ErrNoLastComponent = errors.New("common: root has no last component")
)

// Path is an immutable, ordered sequence of non-empty components. The root
// path has zero components and renders as "/". A non-root path renders as
// "/" followed by its components joined with "/".
//
// Path wraps a single rendered string rather than a component slice so that
// it is directly usable as a map key and comparable with ==.
type Path struct {
	rendered string
}

// Root returns the zero-component root path.
func Root() Path {
	return Path{rendered: "/"}
}

// New parses s into a Path. s must start with "/"; every component between
// slashes must be non-empty and must not contain "/" or ":". "/" itself
// parses to Root().
func New(s string) (Path, error) {
	if s == "" || s[0] != '/' {
		return Path{}, ErrInvalidPath
	}
	if s == "/" {
		return Root(), nil
	}

	parts := strings.Split(s[1:], "/")
	for _, c := range parts {
		if err := validateComponent(c); err != nil {
			return Path{}, err
		}
	}

	return Path{rendered: "/" + strings.Join(parts, "/")}, nil
}

func validateComponent(c string) error {
	if c == "" || strings.ContainsAny(c, "/:") {
		return ErrInvalidPath
	}
	return nil
}

// IsZero reports whether p is the zero-value Path, used as the "no path"
// sentinel distinct from Root.
func (p Path) IsZero() bool {
	return p.rendered == ""
}

// IsRoot reports whether p is the root path.
func (p Path) IsRoot() bool {
	return p.rendered == "/"
}

// String returns the canonical wire form of p.
func (p Path) String() string {
	return p.rendered
}

// Components returns p's components in order. The root path returns an
// empty, non-nil slice.
func (p Path) Components() []string {
	if p.IsRoot() || p.IsZero() {
		return []string{}
	}
	return strings.Split(p.rendered[1:], "/")
}

// Join returns the path formed by appending name as a new final component.
// name must satisfy the same constraints as a parsed component.
func (p Path) Join(name string) (Path, error) {
	if err := validateComponent(name); err != nil {
		return Path{}, err
	}
	if p.IsRoot() || p.IsZero() {
		return Path{rendered: "/" + name}, nil
	}
	return Path{rendered: p.rendered + "/" + name}, nil
}

// Parent returns p's parent path. It fails with ErrNoParent on the root
// path.
func (p Path) Parent() (Path, error) {
	components := p.Components()
	if len(components) == 0 {
		return Path{}, ErrNoParent
	}
	if len(components) == 1 {
		return Root(), nil
	}
	return Path{rendered: "/" + strings.Join(components[:len(components)-1], "/")}, nil
}

// Last returns p's final component. It fails with ErrNoLastComponent on the
// root path.
func (p Path) Last() (string, error) {
	components := p.Components()
	if len(components) == 0 {
		return "", ErrNoLastComponent
	}
	return components[len(components)-1], nil
}

// Equal reports whether p and other denote the same path.
func (p Path) Equal(other Path) bool {
	return p.rendered == other.rendered
}

// StrictPrefixOf reports whether p's component sequence is a proper
// (shorter) prefix of other's. Equal paths are never strict prefixes of
// each other.
func (p Path) StrictPrefixOf(other Path) bool {
	pc := p.Components()
	oc := other.Components()
	if len(pc) >= len(oc) {
		return false
	}
	for i, c := range pc {
		if oc[i] != c {
			return false
		}
	}
	return true
}
