package version

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// BumpKind selects which part of a version a bump changes.
type BumpKind int

const (
	BumpMajor BumpKind = iota + 1
	BumpMinor
	BumpPatch
	BumpPreRelease
	BumpBuild
)

var bumpKindNames = map[BumpKind]string{
	BumpMajor:      "major",
	BumpMinor:      "minor",
	BumpPatch:      "patch",
	BumpPreRelease: "prerelease",
	BumpBuild:      "build",
}

// String returns the lower-case name of the kind.
func (k BumpKind) String() string {
	if name, ok := bumpKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("BumpKind(%d)", int(k))
}

// ParseBumpKind parses "major", "minor", "patch", "prerelease" (also
// "pre-release" and "pre") or "build", ignoring case.
func ParseBumpKind(s string) (BumpKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return BumpMajor, nil
	case "minor":
		return BumpMinor, nil
	case "patch":
		return BumpPatch, nil
	case "prerelease", "pre-release", "pre":
		return BumpPreRelease, nil
	case "build":
		return BumpBuild, nil
	}
	return 0, fmt.Errorf("unknown bump kind %q (expected major, minor, patch, prerelease or build)", s)
}

// BumpRequest describes a bump. Label is only used by pre-release and build
// bumps; an empty Label means no label was given.
type BumpRequest struct {
	Kind  BumpKind
	Label string
}

// Major requests a major bump.
func Major() BumpRequest { return BumpRequest{Kind: BumpMajor} }

// Minor requests a minor bump.
func Minor() BumpRequest { return BumpRequest{Kind: BumpMinor} }

// Patch requests a patch bump.
func Patch() BumpRequest { return BumpRequest{Kind: BumpPatch} }

// PreRelease requests a pre-release bump, optionally onto the track named
// by label (for example "rc" or "beta.1").
func PreRelease(label string) BumpRequest {
	return BumpRequest{Kind: BumpPreRelease, Label: label}
}

// Build requests a build metadata bump, optionally to label.
func Build(label string) BumpRequest {
	return BumpRequest{Kind: BumpBuild, Label: label}
}

// String renders the request as "kind" or "kind:label".
func (r BumpRequest) String() string {
	if r.Label == "" {
		return r.Kind.String()
	}
	return r.Kind.String() + ":" + r.Label
}

// Bump returns the version obtained by applying req to current. The
// current version is never modified.
//
//   - Major, Minor and Patch increment their component, zero the lower
//     components and clear pre-release and build identifiers.
//   - PreRelease on a release sets the pre-release to the label (or "0")
//     and keeps the core. On a pre-release it increments the trailing
//     numeric identifier, appending ".1" when the trailing identifier is
//     alphanumeric. A label must then be a prefix of the current
//     pre-release; the track is never restarted.
//   - Build replaces the build identifiers with the label, or with the
//     previous trailing build number plus one ("0" if there was none).
//     A digit token with a leading zero, such as "007", is not a number.
//
// Pre-release and build bumps clear or replace build identifiers
// respectively. Errors are of kind KindInvalidBumpLabel,
// KindArithmeticOverflow or, for a zero or unknown Kind,
// KindInvalidBumpRequest.
func Bump(current Version, req BumpRequest) (Version, error) {
	switch req.Kind {
	case BumpMajor:
		if current.major == math.MaxUint64 {
			return Version{}, overflow(current.String(), "major version")
		}
		return New(current.major+1, 0, 0), nil

	case BumpMinor:
		if current.minor == math.MaxUint64 {
			return Version{}, overflow(current.String(), "minor version")
		}
		return New(current.major, current.minor+1, 0), nil

	case BumpPatch:
		if current.patch == math.MaxUint64 {
			return Version{}, overflow(current.String(), "patch version")
		}
		return New(current.major, current.minor, current.patch+1), nil

	case BumpPreRelease:
		return bumpPreRelease(current, req.Label)

	case BumpBuild:
		return bumpBuild(current, req.Label)
	}
	return Version{}, &Error{
		Kind:   KindInvalidBumpRequest,
		Input:  req.String(),
		Offset: -1,
		Reason: "unknown bump kind",
	}
}

// Bump applies req to v. See Bump.
func (v Version) Bump(req BumpRequest) (Version, error) {
	return Bump(v, req)
}

func bumpPreRelease(current Version, label string) (Version, error) {
	next := current.Core()

	var track []Identifier
	if label != "" {
		ids, err := ParseIdentifiers(label)
		if err != nil {
			return Version{}, err
		}
		track = ids
	}

	if len(current.pre) == 0 {
		if track == nil {
			track = []Identifier{Numeric(0)}
		}
		next.pre = track
		return next, nil
	}
	if track != nil && !hasPrefix(current.pre, track) {
		return Version{}, &Error{
			Kind:   KindInvalidBumpLabel,
			Input:  label,
			Offset: -1,
			Reason: fmt.Sprintf("label does not continue the pre-release %s of %s", joinIdentifiers(current.pre), current),
		}
	}

	pre := slices.Clone(current.pre)
	last := pre[len(pre)-1]
	if !last.IsNumeric() {
		next.pre = append(pre, Numeric(1))
		return next, nil
	}
	if last.Num() == math.MaxUint64 {
		return Version{}, overflow(current.String(), "pre-release number")
	}
	pre[len(pre)-1] = Numeric(last.Num() + 1)
	next.pre = pre
	return next, nil
}

func bumpBuild(current Version, label string) (Version, error) {
	next := current.Core()
	next.pre = slices.Clone(current.pre)

	if label != "" {
		ids, err := ParseBuildIdentifiers(label)
		if err != nil {
			return Version{}, err
		}
		next.build = ids
		return next, nil
	}

	n := uint64(0)
	if len(current.build) > 0 {
		if last := current.build[len(current.build)-1]; last.IsNumeric() {
			if last.Num() == math.MaxUint64 {
				return Version{}, overflow(current.String(), "build number")
			}
			n = last.Num() + 1
		}
	}
	next.build = []Identifier{Numeric(n)}
	return next, nil
}

// hasPrefix reports whether ids starts with the identifiers of prefix.
func hasPrefix(ids, prefix []Identifier) bool {
	if len(prefix) > len(ids) {
		return false
	}
	for i := range prefix {
		if ids[i].String() != prefix[i].String() {
			return false
		}
	}
	return true
}
