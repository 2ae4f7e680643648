package version

import (
	"cmp"
	"slices"
)

// Compare returns -1, 0 or +1 depending on whether a has lower, equal or
// higher precedence than b. Build metadata is ignored, so two versions that
// differ only in build identifiers compare as 0; use EqualsLiteral to tell
// them apart.
func Compare(a, b Version) int {
	if c := cmp.Compare(a.major, b.major); c != 0 {
		return c
	}
	if c := cmp.Compare(a.minor, b.minor); c != 0 {
		return c
	}
	if c := cmp.Compare(a.patch, b.patch); c != 0 {
		return c
	}

	// A release outranks any of its pre-releases.
	switch {
	case len(a.pre) == 0 && len(b.pre) == 0:
		return 0
	case len(a.pre) == 0:
		return 1
	case len(b.pre) == 0:
		return -1
	}

	for i := 0; i < len(a.pre) && i < len(b.pre); i++ {
		if c := a.pre[i].Compare(b.pre[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a.pre), len(b.pre))
}

// EqualsLiteral reports whether a and b are structurally identical,
// including build metadata.
func EqualsLiteral(a, b Version) bool {
	return a.major == b.major &&
		a.minor == b.minor &&
		a.patch == b.patch &&
		slices.Equal(a.pre, b.pre) &&
		slices.Equal(a.build, b.build)
}

// Compare compares v to other by precedence. See Compare.
func (v Version) Compare(other Version) int {
	return Compare(v, other)
}

// Equal reports literal equality with other, build metadata included.
func (v Version) Equal(other Version) bool {
	return EqualsLiteral(v, other)
}

// LessThan reports whether v has lower precedence than other.
func (v Version) LessThan(other Version) bool {
	return Compare(v, other) < 0
}

// GreaterThan reports whether v has higher precedence than other.
func (v Version) GreaterThan(other Version) bool {
	return Compare(v, other) > 0
}

// Sort sorts versions in ascending precedence. Versions of equal
// precedence keep their relative order.
func Sort(versions []Version) {
	slices.SortStableFunc(versions, Compare)
}

// Max returns the version with the highest precedence, or false if
// versions is empty. Among versions of equal precedence the first wins.
func Max(versions ...Version) (Version, bool) {
	if len(versions) == 0 {
		return Version{}, false
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if Compare(v, best) > 0 {
			best = v
		}
	}
	return best, true
}
