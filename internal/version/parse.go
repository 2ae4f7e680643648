package version

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLength is the longest input Parse accepts, in bytes. Longer strings are
// rejected before scanning.
const MaxLength = 256

// Parse parses a SemVer 2.0.0 version string such as "1.2.3",
// "1.0.0-rc.1" or "2.0.0-beta+exp.sha.5114f85". A single leading "v" or "V"
// is tolerated and stripped. Parsing is all-or-nothing: on failure the
// returned error is a *Error of kind KindMalformedVersion.
func Parse(s string) (Version, error) {
	if len(s) > MaxLength {
		return Version{}, malformed(s[:MaxLength]+"...", -1, "input exceeds %d bytes", MaxLength)
	}
	if strings.TrimSpace(s) == "" {
		return Version{}, malformed(s, -1, "version string is empty")
	}

	p := &parser{input: s}
	if p.peek() == 'v' || p.peek() == 'V' {
		p.pos++
	}

	var v Version
	var err error
	if v.major, err = p.number("major"); err != nil {
		return Version{}, err
	}
	if err = p.delimiter("major"); err != nil {
		return Version{}, err
	}
	if v.minor, err = p.number("minor"); err != nil {
		return Version{}, err
	}
	if err = p.delimiter("minor"); err != nil {
		return Version{}, err
	}
	if v.patch, err = p.number("patch"); err != nil {
		return Version{}, err
	}

	if p.peek() == '-' {
		p.pos++
		if v.pre, err = p.identifiers(false); err != nil {
			return Version{}, err
		}
	}
	if p.peek() == '+' {
		p.pos++
		if v.build, err = p.identifiers(true); err != nil {
			return Version{}, err
		}
	}
	if !p.atEnd() {
		return Version{}, p.unexpected()
	}
	return v, nil
}

// MustParse is like Parse but panics on error. Use it for hardcoded
// versions and tests only.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic("version: MustParse: " + err.Error())
	}
	return v
}

// ParseIdentifiers parses a dot-separated pre-release identifier sequence
// such as "rc.1". Numeric identifiers must not have leading zeros.
// Errors are of kind KindInvalidBumpLabel.
func ParseIdentifiers(label string) ([]Identifier, error) {
	return parseLabel(label, false)
}

// ParseBuildIdentifiers parses a dot-separated build identifier sequence
// such as "exp.sha.5114f85". Leading zeros are allowed.
// Errors are of kind KindInvalidBumpLabel.
func ParseBuildIdentifiers(label string) ([]Identifier, error) {
	return parseLabel(label, true)
}

func parseLabel(label string, build bool) ([]Identifier, error) {
	p := &parser{input: label}
	ids, err := p.identifiers(build)
	if err == nil && !p.atEnd() {
		err = p.unexpected()
	}
	if err != nil {
		e := err.(*Error)
		e.Kind = KindInvalidBumpLabel
		return nil, e
	}
	return ids, nil
}

// parser is a single left-to-right scan over the input. Offsets in errors
// are byte offsets into the full input, including any stripped "v".
type parser struct {
	input string
	pos   int
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.input)
}

// peek returns the next byte, or 0 at end of input.
func (p *parser) peek() byte {
	if p.atEnd() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) number(name string) (uint64, error) {
	start := p.pos
	for !p.atEnd() && isDigit(p.peek()) {
		p.pos++
	}
	digits := p.input[start:p.pos]
	if digits == "" {
		return 0, malformed(p.input, start, "expected %s version number", name)
	}
	if len(digits) > 1 && digits[0] == '0' {
		return 0, malformed(p.input, start+1, "%s version number cannot start with zero", name)
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, malformed(p.input, start, "%s version number %s exceeds the uint64 range", name, digits)
	}
	return n, nil
}

func (p *parser) delimiter(after string) error {
	if p.peek() != '.' {
		return malformed(p.input, p.pos, "expected '.' after %s version number", after)
	}
	p.pos++
	return nil
}

func (p *parser) identifiers(build bool) ([]Identifier, error) {
	section := "pre-release"
	if build {
		section = "build"
	}

	var ids []Identifier
	for {
		start := p.pos
		for !p.atEnd() && isIdentChar(p.peek()) {
			p.pos++
		}
		if p.pos == start {
			if p.nonLatin() {
				return nil, p.unexpected()
			}
			return nil, malformed(p.input, start, "expected %s identifier", section)
		}

		id, err := p.identifier(p.input[start:p.pos], start, build)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)

		if p.peek() != '.' {
			return ids, nil
		}
		p.pos++
	}
}

// identifier classifies token. Build metadata allows any digit string, so
// an all-digit build token that has a leading zero or does not fit a uint64
// is kept verbatim as an alphanumeric identifier.
func (p *parser) identifier(token string, offset int, build bool) (Identifier, error) {
	if !allDigits(token) {
		return Alphanumeric(token), nil
	}
	if len(token) > 1 && token[0] == '0' {
		if build {
			return Alphanumeric(token), nil
		}
		return Identifier{}, malformed(p.input, offset+1, "numeric pre-release identifier %s cannot start with zero", token)
	}
	id := Classify(token)
	if !id.IsNumeric() && !build {
		return Identifier{}, malformed(p.input, offset, "numeric pre-release identifier %s exceeds the uint64 range", token)
	}
	return id, nil
}

func (p *parser) nonLatin() bool {
	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
	return r >= utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsNumber(r))
}

func (p *parser) unexpected() *Error {
	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
	if p.nonLatin() {
		return malformed(p.input, p.pos, "unexpected alphanumeric character %q (SemVer is latin alphabet only)", r)
	}
	return malformed(p.input, p.pos, "unexpected character %q", r)
}
