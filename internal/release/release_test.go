package release

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jimdowning-cyclops/version-buddy-go/internal/config"
	"github.com/jimdowning-cyclops/version-buddy-go/internal/git"
	"github.com/jimdowning-cyclops/version-buddy-go/internal/ref"
	"github.com/jimdowning-cyclops/version-buddy-go/internal/version"
)

// fakeSource serves fixed repository state. Releases extracts its tag
// names the way git.Repo does.
type fakeSource struct {
	head    string
	tags    []string
	commits []git.CommitInfo

	sinceTag string
	err      error
}

func (f *fakeSource) CurrentRef() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.head, nil
}

func (f *fakeSource) Releases(ex *ref.Extractor) ([]git.Tag, error) {
	var tags []git.Tag
	for _, name := range f.tags {
		res := ex.Extract("refs/tags/" + name)
		if !res.HasVersion() || res.HasBranch() {
			continue
		}
		tags = append(tags, git.Tag{Name: name, Version: *res.Version})
	}
	// tests list tags in ascending order already
	return tags, nil
}

func (f *fakeSource) CommitsSince(tag string) ([]git.CommitInfo, error) {
	f.sinceTag = tag
	return f.commits, nil
}

func commits(subjects ...string) []git.CommitInfo {
	infos := make([]git.CommitInfo, len(subjects))
	for i, s := range subjects {
		infos[i] = git.CommitInfo{Hash: "abc1234", Subject: s}
	}
	return infos
}

func channelConfig() *config.Config {
	cfg := config.Default()
	cfg.Channels = []config.ChannelRule{
		{Branch: "develop", Label: "beta"},
		{Branch: "feature/*", Label: "alpha"},
	}
	return cfg
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		src      *fakeSource
		wantTag  string
		wantCur  string
		wantNext string
		wantBump string
		wantChan string
	}{
		{
			name:     "no tags uses initial version",
			src:      &fakeSource{head: "refs/heads/main", commits: commits("feat: first")},
			wantCur:  "0.0.0",
			wantNext: "0.1.0",
			wantBump: "minor",
		},
		{
			name:     "fix bumps patch",
			src:      &fakeSource{head: "refs/heads/main", tags: []string{"v1.0.0", "v1.2.0"}, commits: commits("fix: bug", "chore: deps")},
			wantTag:  "v1.2.0",
			wantCur:  "1.2.0",
			wantNext: "1.2.1",
			wantBump: "patch",
		},
		{
			name:     "feature bumps minor",
			src:      &fakeSource{head: "refs/heads/main", tags: []string{"v1.2.0"}, commits: commits("fix: bug", "feat: thing")},
			wantTag:  "v1.2.0",
			wantCur:  "1.2.0",
			wantNext: "1.3.0",
			wantBump: "minor",
		},
		{
			name:     "breaking change bumps major",
			src:      &fakeSource{head: "refs/heads/main", tags: []string{"v1.2.0"}, commits: commits("feat!: new api")},
			wantTag:  "v1.2.0",
			wantCur:  "1.2.0",
			wantNext: "2.0.0",
			wantBump: "major",
		},
		{
			name:     "no releasable commits",
			src:      &fakeSource{head: "refs/heads/main", tags: []string{"v1.2.0"}, commits: commits("docs: readme", "chore: ci")},
			wantTag:  "v1.2.0",
			wantCur:  "1.2.0",
			wantNext: "1.2.0",
			wantBump: BumpNone,
		},
		{
			name:     "pre-release tags ignored off channel",
			src:      &fakeSource{head: "refs/heads/main", tags: []string{"v1.2.0", "v1.3.0-beta.1"}, commits: commits("fix: bug")},
			wantTag:  "v1.2.0",
			wantCur:  "1.2.0",
			wantNext: "1.2.1",
			wantBump: "patch",
		},
		{
			name:     "channel tags ignored",
			src:      &fakeSource{head: "refs/heads/main", tags: []string{"v1.2.0", "v1.5.0_internal"}, commits: commits("fix: bug")},
			wantTag:  "v1.2.0",
			wantCur:  "1.2.0",
			wantNext: "1.2.1",
			wantBump: "patch",
		},
		{
			name:     "release branch degrades minor to patch",
			src:      &fakeSource{head: "refs/heads/release/1.2", tags: []string{"v1.2.0", "v1.2.1", "v1.3.0"}, commits: commits("feat: backport")},
			wantTag:  "v1.2.1",
			wantCur:  "1.2.1",
			wantNext: "1.2.2",
			wantBump: "patch",
		},
		{
			name:     "release branch degrades major to patch",
			src:      &fakeSource{head: "refs/heads/release-1.2", tags: []string{"v1.2.0"}, commits: commits("fix!: breaking")},
			wantTag:  "v1.2.0",
			wantCur:  "1.2.0",
			wantNext: "1.2.1",
			wantBump: "patch",
		},
		{
			name:     "release branch without releases",
			src:      &fakeSource{head: "refs/heads/release/2.0", tags: []string{"v1.2.0"}, commits: commits("feat: new")},
			wantCur:  "0.0.0",
			wantNext: "2.0.0",
			wantBump: BumpInitial,
		},
		{
			name:     "remote release branch",
			src:      &fakeSource{head: "refs/remotes/origin/1.2.x", tags: []string{"v1.2.0", "v1.3.0"}, commits: commits("fix: bug")},
			wantTag:  "v1.2.0",
			wantCur:  "1.2.0",
			wantNext: "1.2.1",
			wantBump: "patch",
		},
		{
			name:     "channel starts a pre-release",
			cfg:      channelConfig(),
			src:      &fakeSource{head: "refs/heads/develop", tags: []string{"v1.2.0"}, commits: commits("feat: thing")},
			wantTag:  "v1.2.0",
			wantCur:  "1.2.0",
			wantNext: "1.3.0-beta",
			wantBump: "minor",
			wantChan: "beta",
		},
		{
			name:     "channel continues its pre-release",
			cfg:      channelConfig(),
			src:      &fakeSource{head: "refs/heads/develop", tags: []string{"v1.2.0", "v1.3.0-beta", "v1.3.0-beta.1"}, commits: commits("fix: bug")},
			wantTag:  "v1.3.0-beta.1",
			wantCur:  "1.3.0-beta.1",
			wantNext: "1.3.0-beta.2",
			wantBump: "patch",
			wantChan: "beta",
		},
		{
			name:     "channel ignores other labels",
			cfg:      channelConfig(),
			src:      &fakeSource{head: "refs/heads/feature/login", tags: []string{"v1.2.0", "v1.3.0-beta.4"}, commits: commits("fix: bug")},
			wantTag:  "v1.2.0",
			wantCur:  "1.2.0",
			wantNext: "1.2.1-alpha",
			wantBump: "patch",
			wantChan: "alpha",
		},
		{
			name:     "stable release newer than channel pre-release",
			cfg:      channelConfig(),
			src:      &fakeSource{head: "refs/heads/develop", tags: []string{"v1.3.0-beta.2", "v1.3.0"}, commits: commits("feat: next")},
			wantTag:  "v1.3.0",
			wantCur:  "1.3.0",
			wantNext: "1.4.0-beta",
			wantBump: "minor",
			wantChan: "beta",
		},
		{
			name:     "detached head",
			cfg:      channelConfig(),
			src:      &fakeSource{head: "HEAD", tags: []string{"v1.2.0"}, commits: commits("fix: bug")},
			wantTag:  "v1.2.0",
			wantCur:  "1.2.0",
			wantNext: "1.2.1",
			wantBump: "patch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if cfg == nil {
				cfg = config.Default()
			}
			p, err := NewPlanner(tt.src, cfg, zaptest.NewLogger(t))
			require.NoError(t, err)

			plan, err := p.Plan()
			require.NoError(t, err)

			assert.Equal(t, tt.wantTag, plan.Tag)
			assert.Equal(t, tt.wantTag, tt.src.sinceTag)
			assert.Equal(t, tt.wantCur, plan.Current.String())
			assert.Equal(t, tt.wantNext, plan.Next.String())
			assert.Equal(t, tt.wantBump, plan.Bump)
			assert.Equal(t, tt.wantChan, plan.Channel)
			assert.Equal(t, len(tt.src.commits), plan.Commits)
		})
	}
}

func TestPlan_ConfiguredRules(t *testing.T) {
	cfg, err := config.Parse(`tag_prefix: mobile-
bump_rules:
  perf: patch
  fix: none
initial_version: 1.0.0
`)
	require.NoError(t, err)

	src := &fakeSource{
		head:    "refs/heads/main",
		tags:    []string{"web-v3.0.0"},
		commits: commits("perf: faster", "fix: ignored"),
	}
	p, err := NewPlanner(src, cfg, nil)
	require.NoError(t, err)

	plan, err := p.Plan()
	require.NoError(t, err)
	assert.Empty(t, plan.Tag)
	assert.Equal(t, "1.0.0", plan.Current.String())
	assert.Equal(t, "1.0.1", plan.Next.String())
	assert.Equal(t, "main", plan.Branch)
}

func TestPlan_Overflow(t *testing.T) {
	src := &fakeSource{
		head:    "refs/heads/main",
		tags:    []string{"v18446744073709551615.0.0"},
		commits: commits("feat!: too far"),
	}
	p, err := NewPlanner(src, config.Default(), nil)
	require.NoError(t, err)

	_, err = p.Plan()
	require.Error(t, err)
	assert.ErrorIs(t, err, version.ErrArithmeticOverflow)
}

func TestPlan_SourceError(t *testing.T) {
	p, err := NewPlanner(&fakeSource{err: errors.New("boom")}, config.Default(), nil)
	require.NoError(t, err)

	_, err = p.Plan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve current ref")
}

func TestNewPlanner_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Channels = []config.ChannelRule{{Branch: "[invalid", Label: "beta"}}

	_, err := NewPlanner(&fakeSource{}, cfg, nil)
	assert.Error(t, err)
}

func TestPlan_JSON(t *testing.T) {
	plan := Plan{
		Tag:     "v1.2.0",
		Current: version.MustParse("1.2.0"),
		Next:    version.MustParse("1.3.0-beta"),
		Bump:    "minor",
		Branch:  "develop",
		Channel: "beta",
		Commits: 3,
	}
	data, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tag":"v1.2.0","current":"1.2.0","next":"1.3.0-beta","bump":"minor","branch":"develop","channel":"beta","commits":3}`, string(data))
}

func TestOnTrack(t *testing.T) {
	assert.True(t, onTrack(version.MustParse("1.0.0-beta.1"), "beta"))
	assert.True(t, onTrack(version.MustParse("1.0.0-beta"), "beta"))
	assert.True(t, onTrack(version.MustParse("1.0.0-rc.1.2"), "rc.1"))
	assert.False(t, onTrack(version.MustParse("1.0.0-alpha.1"), "beta"))
	assert.False(t, onTrack(version.MustParse("1.0.0"), "beta"))
	assert.False(t, onTrack(version.MustParse("1.0.0-beta"), "beta.1"))
	assert.False(t, onTrack(version.MustParse("1.0.0-beta"), "not valid"))
}

// *git.Repo must satisfy Source.
var _ Source = (*git.Repo)(nil)
