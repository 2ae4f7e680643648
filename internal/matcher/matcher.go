package matcher

import (
	"github.com/gobwas/glob"

	"github.com/jimdowning-cyclops/version-buddy-go/internal/config"
)

// Matcher classifies branch names against the release-branch and channel
// globs of a config.
type Matcher struct {
	release  []glob.Glob
	channels []channel
}

type channel struct {
	pattern glob.Glob
	label   string
}

// NewMatcher creates a new Matcher with the given config.
// Globs are compiled once, with "/" as the separator so that "*" stays
// within a single path segment.
func NewMatcher(cfg *config.Config) (*Matcher, error) {
	m := &Matcher{}

	for _, pattern := range cfg.ReleaseBranches {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		m.release = append(m.release, g)
	}

	for _, rule := range cfg.Channels {
		g, err := glob.Compile(rule.Branch, '/')
		if err != nil {
			return nil, err
		}
		m.channels = append(m.channels, channel{pattern: g, label: rule.Label})
	}

	return m, nil
}

// IsReleaseBranch reports whether branch matches any release-branch glob.
func (m *Matcher) IsReleaseBranch(branch string) bool {
	for _, g := range m.release {
		if g.Match(branch) {
			return true
		}
	}
	return false
}

// Channel returns the pre-release label of the first channel rule whose
// glob matches branch.
func (m *Matcher) Channel(branch string) (string, bool) {
	for _, c := range m.channels {
		if c.pattern.Match(branch) {
			return c.label, true
		}
	}
	return "", false
}
