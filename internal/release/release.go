// Package release plans the next version of a repository from its release
// tags, current branch and the conventional commits since the last release.
package release

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jimdowning-cyclops/version-buddy-go/internal/commit"
	"github.com/jimdowning-cyclops/version-buddy-go/internal/config"
	"github.com/jimdowning-cyclops/version-buddy-go/internal/git"
	"github.com/jimdowning-cyclops/version-buddy-go/internal/matcher"
	"github.com/jimdowning-cyclops/version-buddy-go/internal/ref"
	"github.com/jimdowning-cyclops/version-buddy-go/internal/version"
)

// Bump values reported in a Plan besides the bump kind names.
const (
	// BumpNone means no commit since the last release warrants a new one.
	BumpNone = "none"
	// BumpInitial means a release branch has no release yet and its first
	// version is the one the branch name carries.
	BumpInitial = "initial"
)

// Source is where a Planner reads repository state from. *git.Repo
// satisfies it.
type Source interface {
	CurrentRef() (string, error)
	Releases(ex *ref.Extractor) ([]git.Tag, error)
	CommitsSince(tag string) ([]git.CommitInfo, error)
}

// Plan is the outcome of planning a release.
type Plan struct {
	// Tag is the last release tag; empty when there is none.
	Tag     string          `json:"tag"`
	Current version.Version `json:"current"`
	Next    version.Version `json:"next"`
	// Bump is the bump kind applied, BumpNone or BumpInitial.
	Bump    string `json:"bump"`
	Branch  string `json:"branch,omitempty"`
	Channel string `json:"channel,omitempty"`
	Commits int    `json:"commits"`
}

// Planner computes release plans.
type Planner struct {
	src       Source
	cfg       *config.Config
	extractor *ref.Extractor
	matcher   *matcher.Matcher
	rules     commit.Rules
	log       *zap.Logger
}

// NewPlanner creates a Planner reading from src. A nil logger disables
// logging.
func NewPlanner(src Source, cfg *config.Config, log *zap.Logger) (*Planner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ex, err := ref.NewExtractor(cfg)
	if err != nil {
		return nil, err
	}
	m, err := matcher.NewMatcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create matcher: %w", err)
	}
	return &Planner{
		src:       src,
		cfg:       cfg,
		extractor: ex,
		matcher:   m,
		rules:     commit.Rules(cfg.BumpKinds()),
		log:       log,
	}, nil
}

// Plan computes the next version.
//
// The last release is the highest release tag. Pre-release tags only count
// on a channel branch, and only when they are on that channel's label. On a
// release branch only tags of the branch's major.minor line count, and
// minor or major bumps degrade to patch. On a channel branch the next
// version gets the channel label as pre-release, continuing the current
// pre-release when it is already on that label.
func (p *Planner) Plan() (Plan, error) {
	head, err := p.src.CurrentRef()
	if err != nil {
		return Plan{}, fmt.Errorf("failed to resolve current ref: %w", err)
	}

	var plan Plan
	res := p.extractor.Extract(head)
	if res.Kind == ref.KindBranch || res.Kind == ref.KindRemote {
		plan.Branch = res.Branch
	}

	var line *version.Version
	if plan.Branch != "" && res.HasVersion() {
		line = res.Version
	}
	if label, ok := p.matcher.Channel(plan.Branch); ok && plan.Branch != "" {
		plan.Channel = label
	}

	log := p.log.With(zap.String("ref", head), zap.String("branch", plan.Branch))
	if line != nil {
		log = log.With(zap.Stringer("line", line.Core()))
	}
	if plan.Channel != "" {
		log = log.With(zap.String("channel", plan.Channel))
	}

	tags, err := p.src.Releases(p.extractor)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to list releases: %w", err)
	}

	last, found := p.lastRelease(tags, line, plan.Channel)
	if found {
		plan.Tag = last.Name
		plan.Current = last.Version
		log.Debug("found last release", zap.String("tag", last.Name), zap.Stringer("version", last.Version))
	} else {
		plan.Current = p.cfg.InitialVersion
		log.Debug("no release tag found", zap.Stringer("initial", p.cfg.InitialVersion))
	}

	infos, err := p.src.CommitsSince(plan.Tag)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to get commits: %w", err)
	}
	commits := make([]commit.Commit, 0, len(infos))
	for _, ci := range infos {
		c := commit.Parse(ci.Subject, ci.Body)
		c.Hash = ci.Hash
		commits = append(commits, c)
	}
	plan.Commits = len(commits)
	log.Debug("read commits", zap.Int("commits", len(commits)), zap.Strings("types", p.cfg.CommitTypes()))

	if line != nil && !found {
		plan.Bump = BumpInitial
		plan.Next = *line
		if plan.Channel != "" {
			if plan.Next, err = plan.Next.Bump(version.PreRelease(plan.Channel)); err != nil {
				return Plan{}, err
			}
		}
		p.logPlan(log, plan)
		return plan, nil
	}

	req, ok := commit.DetermineBump(commits, p.rules)
	if !ok {
		plan.Bump = BumpNone
		plan.Next = plan.Current
		p.logPlan(log, plan)
		return plan, nil
	}
	if line != nil && (req.Kind == version.BumpMajor || req.Kind == version.BumpMinor) {
		log.Debug("release branch only ships patches", zap.Stringer("requested", req.Kind))
		req = version.Patch()
	}
	plan.Bump = req.Kind.String()

	next, err := p.next(plan.Current, req, plan.Channel)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to bump %s: %w", plan.Current, err)
	}
	plan.Next = next

	p.logPlan(log, plan)
	return plan, nil
}

// next applies req to current, then the channel label when there is one.
func (p *Planner) next(current version.Version, req version.BumpRequest, channel string) (version.Version, error) {
	if channel == "" {
		return current.Bump(req)
	}
	if onTrack(current, channel) {
		return current.Bump(version.PreRelease(channel))
	}
	core, err := current.Bump(req)
	if err != nil {
		return version.Version{}, err
	}
	return core.Bump(version.PreRelease(channel))
}

// lastRelease returns the highest tag eligible on the current branch. tags
// must be in ascending precedence.
func (p *Planner) lastRelease(tags []git.Tag, line *version.Version, channel string) (git.Tag, bool) {
	for i := len(tags) - 1; i >= 0; i-- {
		t := tags[i]
		if line != nil && (t.Version.Major() != line.Major() || t.Version.Minor() != line.Minor()) {
			continue
		}
		if t.Version.IsPreRelease() && (channel == "" || !onTrack(t.Version, channel)) {
			continue
		}
		return t, true
	}
	return git.Tag{}, false
}

func (p *Planner) logPlan(log *zap.Logger, plan Plan) {
	log.Info("planned release",
		zap.String("tag", plan.Tag),
		zap.Stringer("current", plan.Current),
		zap.Stringer("next", plan.Next),
		zap.String("bump", plan.Bump),
		zap.Int("commits", plan.Commits),
	)
}

// onTrack reports whether the pre-release of v starts with the identifiers
// of label.
func onTrack(v version.Version, label string) bool {
	ids, err := version.ParseIdentifiers(label)
	if err != nil {
		return false
	}
	pre := v.PreRelease()
	if len(ids) > len(pre) {
		return false
	}
	for i, id := range ids {
		if pre[i].String() != id.String() {
			return false
		}
	}
	return true
}
