package version

import (
	"cmp"
	"strconv"
	"strings"
)

// Identifier is a single dot-separated segment of a pre-release or build
// component. It is either numeric or alphanumeric; the kind is decided once
// when the identifier is created.
type Identifier struct {
	numeric bool
	num     uint64
	str     string
}

// Numeric returns a numeric identifier.
func Numeric(n uint64) Identifier {
	return Identifier{numeric: true, num: n, str: strconv.FormatUint(n, 10)}
}

// Alphanumeric returns an alphanumeric identifier. The caller is
// responsible for s being a valid identifier; use ParseIdentifiers for
// untrusted input.
func Alphanumeric(s string) Identifier {
	return Identifier{str: s}
}

// Classify decides whether token is numeric or alphanumeric. Token must
// already match [0-9A-Za-z-]+. All-digit tokens are numeric unless they
// have a leading zero or do not fit a uint64; those are returned as
// alphanumeric so a numeric identifier always renders as its value.
func Classify(token string) Identifier {
	if !allDigits(token) || len(token) > 1 && token[0] == '0' {
		return Alphanumeric(token)
	}
	n, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return Alphanumeric(token)
	}
	return Identifier{numeric: true, num: n, str: token}
}

// IsNumeric reports whether the identifier is numeric.
func (id Identifier) IsNumeric() bool { return id.numeric }

// Num returns the numeric value. It is zero for alphanumeric identifiers.
func (id Identifier) Num() uint64 { return id.num }

// String returns the identifier exactly as written.
func (id Identifier) String() string { return id.str }

// Compare orders identifiers by precedence: numeric identifiers compare
// numerically and sort before alphanumeric ones, alphanumeric identifiers
// compare in ASCII order.
func (id Identifier) Compare(other Identifier) int {
	switch {
	case id.numeric && other.numeric:
		return cmp.Compare(id.num, other.num)
	case id.numeric:
		return -1
	case other.numeric:
		return 1
	}
	return strings.Compare(id.str, other.str)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentChar(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '-'
}

func joinIdentifiers(ids []Identifier) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(id.str)
	}
	return b.String()
}
