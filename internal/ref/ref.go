// Package ref extracts version and branch information from source-control
// reference strings such as "refs/tags/v1.2.3" or "refs/heads/release/1.2".
//
// Extraction never fails. Input that is not recognised degrades to a
// Result with no version and the input (minus any known prefix) as branch.
package ref

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jimdowning-cyclops/version-buddy-go/internal/config"
	"github.com/jimdowning-cyclops/version-buddy-go/internal/matcher"
	"github.com/jimdowning-cyclops/version-buddy-go/internal/version"
)

// Kind is the shape of a ref, as hinted by its prefix.
type Kind int

const (
	// KindUnknown is a ref without a recognised prefix, e.g. "v1.2.3" or "main".
	KindUnknown Kind = iota
	// KindTag is a "refs/tags/" ref.
	KindTag
	// KindBranch is a "refs/heads/" ref.
	KindBranch
	// KindRemote is a "refs/remotes/<remote>/" ref.
	KindRemote
)

// String returns a lower-case name for the kind.
func (k Kind) String() string {
	switch k {
	case KindTag:
		return "tag"
	case KindBranch:
		return "branch"
	case KindRemote:
		return "remote"
	}
	return "unknown"
}

const (
	tagsPrefix    = "refs/tags/"
	headsPrefix   = "refs/heads/"
	remotesPrefix = "refs/remotes/"
)

// Result is what Extract learned from a ref.
type Result struct {
	// Version is nil when the ref carries no version.
	Version *version.Version
	// Branch is the branch name or tag channel; empty when there is none.
	Branch string
	Kind   Kind
	// Raw is the ref exactly as given.
	Raw string
}

// HasVersion reports whether a version was extracted.
func (r Result) HasVersion() bool { return r.Version != nil }

// HasBranch reports whether a branch or channel was extracted.
func (r Result) HasBranch() bool { return r.Branch != "" }

// releaseShorthand matches the version part of a release branch name:
// "1.2", "v1.2", "1.2.x" or "1.2.3", at the end of the name and after a
// "/" or "-" when not at the start.
var releaseShorthand = regexp.MustCompile(`(?:^|[/-])v?(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)(?:\.(0|[1-9][0-9]*|x))?$`)

// Extractor extracts versions from refs using the tag prefix, channel
// separator and release-branch globs of a config. It is safe for
// concurrent use.
type Extractor struct {
	tagPrefix  string
	channelSep string
	matcher    *matcher.Matcher
}

// NewExtractor creates an Extractor for cfg.
func NewExtractor(cfg *config.Config) (*Extractor, error) {
	m, err := matcher.NewMatcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to compile branch patterns: %w", err)
	}
	return &Extractor{
		tagPrefix:  cfg.TagPrefix,
		channelSep: cfg.ChannelSeparator,
		matcher:    m,
	}, nil
}

var defaultExtractor = func() *Extractor {
	ex, err := NewExtractor(config.Default())
	if err != nil {
		panic(err)
	}
	return ex
}()

// Extract extracts a version and branch from ref using the default
// configuration.
func Extract(ref string) Result {
	return defaultExtractor.Extract(ref)
}

// TagPrefix returns the tag prefix the extractor strips.
func (e *Extractor) TagPrefix() string {
	return e.tagPrefix
}

// Extract extracts a version and branch from ref.
func (e *Extractor) Extract(ref string) Result {
	res := Result{Raw: ref}

	kind, name := splitPrefix(strings.TrimSpace(ref))
	res.Kind = kind
	if name == "" {
		return res
	}

	switch kind {
	case KindTag:
		v, channel, ok := e.tagVersion(name)
		if !ok {
			res.Branch = name
			return res
		}
		res.Version = &v
		res.Branch = channel

	case KindBranch, KindRemote:
		res.Branch = name
		res.Version = e.releaseVersion(name)

	default:
		if v, channel, ok := e.tagVersion(name); ok {
			res.Version = &v
			res.Branch = channel
			return res
		}
		res.Branch = name
		res.Version = e.releaseVersion(name)
	}
	return res
}

func splitPrefix(ref string) (Kind, string) {
	if name, ok := strings.CutPrefix(ref, tagsPrefix); ok {
		return KindTag, name
	}
	if name, ok := strings.CutPrefix(ref, headsPrefix); ok {
		return KindBranch, name
	}
	if rest, ok := strings.CutPrefix(ref, remotesPrefix); ok {
		_, name, _ := strings.Cut(rest, "/")
		return KindRemote, name
	}
	return KindUnknown, ref
}

// tagVersion parses a tag name of the form <prefix>[v]<version>[<sep><channel>].
func (e *Extractor) tagVersion(name string) (version.Version, string, bool) {
	s, ok := strings.CutPrefix(name, e.tagPrefix)
	if !ok {
		return version.Version{}, "", false
	}

	var channel string
	if e.channelSep != "" {
		var found bool
		s, channel, found = strings.Cut(s, e.channelSep)
		if found && channel == "" {
			return version.Version{}, "", false
		}
	}

	v, err := version.Parse(s)
	if err != nil {
		return version.Version{}, "", false
	}
	return v, channel, true
}

// releaseVersion returns the version a release branch stands for, with the
// patch defaulting to 0 for "1.2" and "1.2.x" shorthands. It returns nil
// unless branch matches a release-branch glob.
func (e *Extractor) releaseVersion(branch string) *version.Version {
	if !e.matcher.IsReleaseBranch(branch) {
		return nil
	}
	m := releaseShorthand.FindStringSubmatch(branch)
	if m == nil {
		return nil
	}

	patch := m[3]
	if patch == "" || patch == "x" {
		patch = "0"
	}
	v, err := version.Parse(m[1] + "." + m[2] + "." + patch)
	if err != nil {
		return nil
	}
	return &v
}
