// Package commit reads conventional commit messages and decides which
// version bump they call for.
package commit

import (
	"regexp"
	"strings"

	"github.com/jimdowning-cyclops/version-buddy-go/internal/version"
)

// Commit represents a parsed conventional commit.
type Commit struct {
	Hash        string
	Type        string
	Scope       string
	Description string
	Breaking    bool
}

// Rules map conventional commit types to the bump they trigger.
type Rules map[string]version.BumpKind

// DefaultRules bump minor for "feat" and patch for "fix".
func DefaultRules() Rules {
	return Rules{
		"feat": version.BumpMinor,
		"fix":  version.BumpPatch,
	}
}

// header matches "type(scope)!: description"; scope and "!" are optional.
var header = regexp.MustCompile(`^(\w+)(?:\(([^)]+)\))?(!)?\s*:\s*(.*)$`)

var breakingFooters = []string{"BREAKING CHANGE:", "BREAKING-CHANGE:"}

// Parse parses a conventional commit from subject and body.
// A commit is breaking if its header carries "!" before the colon or its
// body contains a "BREAKING CHANGE:" (or "BREAKING-CHANGE:") footer, in any
// case. Subjects that are not conventional commits yield a Commit with
// only the Description set.
func Parse(subject, body string) Commit {
	m := header.FindStringSubmatch(subject)
	if m == nil {
		return Commit{Description: subject}
	}

	c := Commit{
		Type:        m[1],
		Scope:       m[2],
		Breaking:    m[3] == "!",
		Description: m[4],
	}
	if !c.Breaking {
		upper := strings.ToUpper(body)
		for _, footer := range breakingFooters {
			if strings.Contains(upper, footer) {
				c.Breaking = true
				break
			}
		}
	}
	return c
}

// DetermineBump returns the highest bump the commits call for, and false
// when none of them warrants a release. Types are matched against rules
// case-insensitively; a breaking commit of a type that has a rule is a
// major bump, other types are ignored even when breaking.
func DetermineBump(commits []Commit, rules Rules) (version.BumpRequest, bool) {
	best := version.BumpKind(0)

	for _, c := range commits {
		kind, ok := rules[strings.ToLower(c.Type)]
		if !ok {
			continue
		}
		if c.Breaking {
			return version.Major(), true
		}
		if best == 0 || rank(kind) > rank(best) {
			best = kind
		}
	}

	if best == 0 {
		return version.BumpRequest{}, false
	}
	return version.BumpRequest{Kind: best}, true
}

func rank(kind version.BumpKind) int {
	switch kind {
	case version.BumpMajor:
		return 3
	case version.BumpMinor:
		return 2
	case version.BumpPatch:
		return 1
	}
	return 0
}
