// Package version implements SemVer 2.0.0 versions: parsing, precedence
// ordering, and bumping.
//
// A Version is an immutable value. It is created by Parse, New, or by
// bumping an existing Version, and none of its methods modify it.
package version

import (
	"slices"
	"strconv"
	"strings"
)

// Version represents a semantic version: a major.minor.patch core, optional
// pre-release identifiers and optional build identifiers.
type Version struct {
	major uint64
	minor uint64
	patch uint64
	pre   []Identifier
	build []Identifier
}

// Zero returns the zero version (0.0.0).
func Zero() Version {
	return Version{}
}

// New returns the version major.minor.patch without pre-release or build
// identifiers.
func New(major, minor, patch uint64) Version {
	return Version{major: major, minor: minor, patch: patch}
}

// Major returns the major version number.
func (v Version) Major() uint64 { return v.major }

// Minor returns the minor version number.
func (v Version) Minor() uint64 { return v.minor }

// Patch returns the patch version number.
func (v Version) Patch() uint64 { return v.patch }

// PreRelease returns a copy of the pre-release identifiers.
func (v Version) PreRelease() []Identifier { return slices.Clone(v.pre) }

// Build returns a copy of the build identifiers.
func (v Version) Build() []Identifier { return slices.Clone(v.build) }

// IsPreRelease reports whether v has pre-release identifiers.
func (v Version) IsPreRelease() bool { return len(v.pre) > 0 }

// Core returns v without pre-release and build identifiers.
func (v Version) Core() Version {
	return New(v.major, v.minor, v.patch)
}

// String returns the canonical form major.minor.patch[-pre][+build],
// reproducing identifiers exactly as they were parsed.
func (v Version) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(v.major, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatUint(v.minor, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatUint(v.patch, 10))
	if len(v.pre) > 0 {
		b.WriteByte('-')
		b.WriteString(joinIdentifiers(v.pre))
	}
	if len(v.build) > 0 {
		b.WriteByte('+')
		b.WriteString(joinIdentifiers(v.build))
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler using the canonical form.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It is the only way to
// overwrite a Version in place and exists so versions can be decoded from
// JSON and YAML documents.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
