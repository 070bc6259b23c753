package vcs

import (
	"regexp"
	"strings"

	git "gopkg.in/src-d/go-git.v4"

	"github.com/fossas/mkrelease/errors"
	"github.com/fossas/mkrelease/exec"
	"github.com/fossas/mkrelease/files"
	"github.com/fossas/mkrelease/urls"
)

var (
	gitVersionRegex = regexp.MustCompile(`git version (\d+\.\d+\S*)`)

	gitSchemes = []string{"git", "git+ssh", "ssh", "rsync", "http", "https", "file"}
)

// Git rules for `git status --porcelain` lines `XY path` and `git branch`.
const (
	gitDirtyIndex    = "MADRC"
	gitDirtyWorktree = "MD"
	gitUnmerged      = 'U'

	gitBranchMarker  = "* "
	gitNothingToDo   = "nothing to commit"
	gitNothingAdded  = "nothing added to commit"
	gitDetachedStart = "("
)

// GitBackend is a distributed backend. Branches and tags are bare ref names.
type GitBackend struct {
	tool
}

// NewGit returns the Git backend.
func NewGit(r exec.Runner) *GitBackend {
	return &GitBackend{tool: newTool(Git, r)}
}

func (g *GitBackend) Kind() Kind   { return Git }
func (g *GitBackend) Name() string { return Git.Name() }

func (g *GitBackend) Version() string {
	return g.version(gitVersionRegex)
}

func (g *GitBackend) IsValidURL(url string) bool {
	return hasScheme(url, gitSchemes) || urls.IsSSHURL(url)
}

func (g *GitBackend) IsValidSandbox(dir string) bool {
	return files.IsFolder(dir) && g.ok(dir, "status", "--porcelain")
}

func (g *GitBackend) status(dir string) ([]string, error) {
	return g.query(dir, "status", "status", "--porcelain")
}

func (g *GitBackend) IsDirtySandbox(dir string) (bool, error) {
	lines, err := g.status(dir)
	if err != nil {
		return false, err
	}
	return gitStatusDirty(lines), nil
}

func (g *GitBackend) IsUncleanSandbox(dir string) (bool, error) {
	lines, err := g.status(dir)
	if err != nil {
		return false, err
	}
	return gitStatusUnclean(lines), nil
}

func gitStatusDirty(lines []string) bool {
	for _, line := range lines {
		if len(line) < 2 || line[:2] == "??" || line[:2] == "!!" {
			continue
		}
		if strings.IndexByte(gitDirtyIndex, line[0]) >= 0 || strings.IndexByte(gitDirtyWorktree, line[1]) >= 0 {
			return true
		}
	}
	return false
}

func gitStatusUnclean(lines []string) bool {
	if gitStatusDirty(lines) {
		return true
	}
	for _, line := range lines {
		if len(line) < 2 {
			continue
		}
		if line[0] == gitUnmerged || line[1] == gitUnmerged || line[:2] == "AA" || line[:2] == "DD" {
			return true
		}
	}
	return false
}

func (g *GitBackend) RootFromSandbox(dir string) (string, error) {
	lines, err := g.query(dir, "top-level directory", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return firstLine(lines), nil
}

// BranchFromSandbox returns the branch marked `* ` by `git branch`. A
// detached HEAD has no branch to tag from and is an error.
func (g *GitBackend) BranchFromSandbox(dir string) (string, error) {
	lines, err := g.query(dir, "branch", "branch")
	if err != nil {
		return "", err
	}
	branch, ok := prefixed(lines, gitBranchMarker)
	if !ok {
		return "", errors.New(errors.Query, "could not get branch from %s", dir)
	}
	if strings.HasPrefix(branch, gitDetachedStart) {
		return "", errors.New(errors.Invariant, "not on a branch in %s: %s", dir, branch)
	}
	return branch, nil
}

// remote returns the remote tracked by the current branch, or "".
func (g *GitBackend) remote(dir string) string {
	branch, err := g.BranchFromSandbox(dir)
	if err != nil {
		return ""
	}
	result, err := g.run(dir, "config", "--get", "branch."+branch+".remote")
	if err != nil || !result.OK() {
		return ""
	}
	return firstLine(result.Stdout)
}

func (g *GitBackend) URLFromSandbox(dir string) (string, error) {
	remote := g.remote(dir)
	if remote == "" {
		remote = "origin"
	}
	lines, err := g.query(dir, "URL of remote "+remote, "config", "--get", "remote."+remote+".url")
	if err != nil {
		return "", err
	}
	return firstLine(lines), nil
}

func (g *GitBackend) IsRemoteSandbox(dir string) bool {
	return g.remote(dir) != ""
}

func (g *GitBackend) CommitSandbox(dir, name, version string, push bool) error {
	result, err := g.run(dir, "commit", "-a", "-m", commitMessage(name, version))
	if err != nil {
		return err
	}
	if !result.OK() && !(result.Contains(gitNothingToDo) || result.Contains(gitNothingAdded)) {
		return failure(errors.Command, result, "could not commit in %s", dir)
	}
	if !push {
		return nil
	}
	remote := g.remote(dir)
	if remote == "" {
		return nil
	}
	branch, err := g.BranchFromSandbox(dir)
	if err != nil {
		return err
	}
	_, err = g.mutate(dir, "push to "+remote, "push", remote, branch)
	return err
}

func (g *GitBackend) CloneURL(url, dir string) error {
	_, err := g.mutate("", "clone "+url, "clone", url, dir)
	return err
}

func (g *GitBackend) MakeBranchID(dir, name string) (string, error) {
	if name == "" {
		return "", errors.New(errors.Invariant, "empty branch name")
	}
	return name, nil
}

func (g *GitBackend) MakeTagID(dir, version string) (string, error) {
	if version == "" {
		return "", errors.New(errors.Invariant, "empty tag name")
	}
	return version, nil
}

func (g *GitBackend) BranchExists(dir, branchid string) bool {
	return g.ok(dir, "rev-parse", "--verify", "--quiet", branchid)
}

func (g *GitBackend) TagExists(dir, tagid string) bool {
	result, err := g.run(dir, "tag", "-l")
	if err != nil || !result.OK() {
		return false
	}
	for _, line := range result.Stdout {
		if strings.TrimSpace(line) == tagid {
			return true
		}
	}
	return false
}

func (g *GitBackend) SwitchBranch(dir, branchid string) error {
	current, err := g.BranchFromSandbox(dir)
	if err == nil && current == branchid {
		return nil
	}
	if err := CheckBranchExists(g, dir, branchid); err != nil {
		return err
	}
	_, err = g.mutate(dir, "check out "+branchid, "checkout", branchid)
	return err
}

func (g *GitBackend) CreateTag(dir, tagid, name, version string, push bool) error {
	if _, err := g.mutate(dir, "create tag "+tagid, "tag", "-m", tagMessage(name, version), tagid); err != nil {
		return err
	}
	if !push {
		return nil
	}
	remote := g.remote(dir)
	if remote == "" {
		return nil
	}
	_, err := g.mutate(dir, "push tag "+tagid, "push", remote, "tag", tagid)
	return err
}

// Head reads HEAD directly from the repository.
func (g *GitBackend) Head(dir string) (Revision, error) {
	r, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Revision{}, errors.Wrap(err, errors.Query, "could not open repository at %s", dir)
	}
	ref, err := r.Head()
	if err != nil {
		return Revision{}, errors.Wrap(err, errors.Query, "could not read HEAD of %s", dir)
	}
	return Revision{
		Branch:     ref.Name().Short(),
		RevisionID: ref.Hash().String(),
	}, nil
}
