// Package git reads tags, the current ref and commit history from a git
// repository by running the git binary.
package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jimdowning-cyclops/version-buddy-go/internal/ref"
	"github.com/jimdowning-cyclops/version-buddy-go/internal/version"
)

// CommitInfo holds the raw commit data from git log.
type CommitInfo struct {
	Hash    string
	Subject string
	Body    string
}

// Tag is a release tag and the version it carries.
type Tag struct {
	Name    string
	Version version.Version
}

// Repo runs git commands in a working tree.
type Repo struct {
	dir string
	log *zap.Logger
}

// Open returns a Repo for the git working tree at dir. A nil logger
// disables logging.
func Open(dir string, log *zap.Logger) (*Repo, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Repo{dir: dir, log: log.With(zap.String("repo", dir))}
	if _, err := r.run("rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("%s is not a git repository: %w", dir, err)
	}
	return r, nil
}

// run runs git with args and returns its trimmed standard output.
func (r *Repo) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug("running git", zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// HasCommits checks if the repository has any commits.
func (r *Repo) HasCommits() bool {
	_, err := r.run("rev-parse", "--verify", "-q", "HEAD")
	return err == nil
}

// Tags lists tag names matching the glob pattern ("" lists all tags).
func (r *Repo) Tags(pattern string) ([]string, error) {
	args := []string{"tag", "--list"}
	if pattern != "" {
		args = append(args, pattern)
	}
	out, err := r.run(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return splitLines(out), nil
}

// CurrentRef returns the full ref HEAD points to, e.g. "refs/heads/main",
// or "HEAD" when HEAD is detached.
func (r *Repo) CurrentRef() (string, error) {
	out, err := r.run("symbolic-ref", "-q", "HEAD")
	if err == nil {
		return out, nil
	}
	// symbolic-ref fails on a detached HEAD; tell that apart from a broken repo.
	if _, verr := r.run("rev-parse", "--verify", "-q", "HEAD"); verr != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return "HEAD", nil
}

// Releases returns the tags that extract to a version without a channel
// suffix, in ascending precedence. Tags of equal precedence are ordered by
// name.
func (r *Repo) Releases(ex *ref.Extractor) ([]Tag, error) {
	names, err := r.Tags(ex.TagPrefix() + "*")
	if err != nil {
		return nil, err
	}

	var tags []Tag
	for _, name := range names {
		res := ex.Extract("refs/tags/" + name)
		switch {
		case !res.HasVersion():
			r.log.Debug("skipping tag without version", zap.String("tag", name))
			continue
		case res.HasBranch():
			r.log.Debug("skipping channel tag", zap.String("tag", name), zap.String("channel", res.Branch))
			continue
		}
		tags = append(tags, Tag{Name: name, Version: *res.Version})
	}

	slices.SortStableFunc(tags, func(a, b Tag) int {
		if c := version.Compare(a.Version, b.Version); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return tags, nil
}

// CommitsSince returns all commits since the given tag (or all commits if
// tag is empty), newest first. Returns nil if there are no commits.
func (r *Repo) CommitsSince(tag string) ([]CommitInfo, error) {
	if !r.HasCommits() {
		return nil, nil
	}

	// Separators that won't appear in commit messages.
	const commitSep = "---COMMIT-SEP---"
	const fieldSep = "---FIELD-SEP---"

	args := []string{"log", "--format=%H" + fieldSep + "%s" + fieldSep + "%b" + commitSep}
	if tag != "" {
		args = append(args, tag+"..HEAD")
	}

	out, err := r.run(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get git log: %w", err)
	}
	return parseCommits(out, commitSep, fieldSep), nil
}

// parseCommits parses git log output written with the given separators.
func parseCommits(output, commitSep, fieldSep string) []CommitInfo {
	var commits []CommitInfo
	for _, raw := range strings.Split(output, commitSep) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		parts := strings.SplitN(raw, fieldSep, 3)
		if len(parts) < 2 {
			continue
		}

		c := CommitInfo{
			Hash:    strings.TrimSpace(parts[0]),
			Subject: strings.TrimSpace(parts[1]),
		}
		if len(parts) > 2 {
			c.Body = strings.TrimSpace(parts[2])
		}
		commits = append(commits, c)
	}
	return commits
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
