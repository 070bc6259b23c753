package vcs

import (
	"regexp"
	"strings"

	"github.com/fossas/mkrelease/errors"
	"github.com/fossas/mkrelease/exec"
	"github.com/fossas/mkrelease/files"
	"github.com/fossas/mkrelease/urls"
)

var (
	hgVersionRegex = regexp.MustCompile(`\(version (\d+\.\d+[^)\s]*)\)`)

	hgSchemes = []string{"ssh", "http", "https", "file", "static-http"}
)

// Mercurial status rules: the first column is the status code.
const (
	hgDirty   = "MAR"
	hgUnclean = "MAR!"

	hgNothingChanged = "nothing changed"
	hgNoChanges      = "no changes found"
)

// MercurialBackend is a distributed backend. Branches and tags are bare
// names.
type MercurialBackend struct {
	tool
}

// NewMercurial returns the Mercurial backend.
func NewMercurial(r exec.Runner) *MercurialBackend {
	return &MercurialBackend{tool: newTool(Mercurial, r)}
}

func (m *MercurialBackend) Kind() Kind   { return Mercurial }
func (m *MercurialBackend) Name() string { return Mercurial.Name() }

func (m *MercurialBackend) Version() string {
	return m.version(hgVersionRegex)
}

func (m *MercurialBackend) IsValidURL(url string) bool {
	return hasScheme(url, hgSchemes) || urls.IsSSHURL(url)
}

func (m *MercurialBackend) IsValidSandbox(dir string) bool {
	return files.IsFolder(dir) && m.ok(dir, "status", "-q")
}

func (m *MercurialBackend) IsDirtySandbox(dir string) (bool, error) {
	lines, err := m.query(dir, "status", "status")
	if err != nil {
		return false, err
	}
	return hgStatusMatches(lines, hgDirty), nil
}

func (m *MercurialBackend) IsUncleanSandbox(dir string) (bool, error) {
	lines, err := m.query(dir, "status", "status")
	if err != nil {
		return false, err
	}
	return hgStatusMatches(lines, hgUnclean), nil
}

func hgStatusMatches(lines []string, codes string) bool {
	for _, line := range lines {
		if line != "" && strings.IndexByte(codes, line[0]) >= 0 {
			return true
		}
	}
	return false
}

func (m *MercurialBackend) RootFromSandbox(dir string) (string, error) {
	lines, err := m.query(dir, "root", "root")
	if err != nil {
		return "", err
	}
	return firstLine(lines), nil
}

func (m *MercurialBackend) BranchFromSandbox(dir string) (string, error) {
	lines, err := m.query(dir, "branch", "branch")
	if err != nil {
		return "", err
	}
	branch := firstLine(lines)
	if branch == "" {
		return "", errors.New(errors.Query, "could not get branch from %s", dir)
	}
	return branch, nil
}

func (m *MercurialBackend) URLFromSandbox(dir string) (string, error) {
	lines, err := m.query(dir, "default path", "paths", "default")
	if err != nil {
		return "", err
	}
	return firstLine(lines), nil
}

func (m *MercurialBackend) IsRemoteSandbox(dir string) bool {
	result, err := m.run(dir, "paths", "default")
	return err == nil && result.OK() && firstLine(result.Stdout) != ""
}

func (m *MercurialBackend) CommitSandbox(dir, name, version string, push bool) error {
	result, err := m.run(dir, "commit", "-m", commitMessage(name, version))
	if err != nil {
		return err
	}
	if !result.OK() && !(result.ExitCode == 1 && result.Contains(hgNothingChanged)) {
		return failure(errors.Command, result, "could not commit in %s", dir)
	}
	if push && m.IsRemoteSandbox(dir) {
		return m.push(dir)
	}
	return nil
}

func (m *MercurialBackend) push(dir string) error {
	result, err := m.run(dir, "push")
	if err != nil {
		return err
	}
	if !result.OK() && !(result.ExitCode == 1 && result.Contains(hgNoChanges)) {
		return failure(errors.Command, result, "could not push from %s", dir)
	}
	return nil
}

func (m *MercurialBackend) CloneURL(url, dir string) error {
	_, err := m.mutate("", "clone "+url, "clone", url, dir)
	return err
}

func (m *MercurialBackend) MakeBranchID(dir, name string) (string, error) {
	if name == "" {
		return "", errors.New(errors.Invariant, "empty branch name")
	}
	return name, nil
}

func (m *MercurialBackend) MakeTagID(dir, version string) (string, error) {
	if version == "" {
		return "", errors.New(errors.Invariant, "empty tag name")
	}
	return version, nil
}

func (m *MercurialBackend) BranchExists(dir, branchid string) bool {
	if m.TagExists(dir, branchid) {
		return true
	}
	result, err := m.run(dir, "branches")
	if err != nil || !result.OK() {
		return false
	}
	return hgFirstFieldIs(result.Stdout, branchid)
}

// TagExists looks tagid up in `hg tags`, whose lines are `<name> <rev>:<node>`.
func (m *MercurialBackend) TagExists(dir, tagid string) bool {
	result, err := m.run(dir, "tags")
	if err != nil || !result.OK() {
		return false
	}
	return hgFirstFieldIs(result.Stdout, tagid)
}

func hgFirstFieldIs(lines []string, name string) bool {
	for _, line := range lines {
		if fields := strings.Fields(line); len(fields) > 0 && fields[0] == name {
			return true
		}
	}
	return false
}

func (m *MercurialBackend) SwitchBranch(dir, branchid string) error {
	current, err := m.BranchFromSandbox(dir)
	if err != nil {
		return err
	}
	if current == branchid {
		return nil
	}
	if err := CheckBranchExists(m, dir, branchid); err != nil {
		return err
	}
	_, err = m.mutate(dir, "update to "+branchid, "update", branchid)
	return err
}

func (m *MercurialBackend) CreateTag(dir, tagid, name, version string, push bool) error {
	if _, err := m.mutate(dir, "create tag "+tagid, "tag", "-m", tagMessage(name, version), tagid); err != nil {
		return err
	}
	if push && m.IsRemoteSandbox(dir) {
		return m.push(dir)
	}
	return nil
}

func (m *MercurialBackend) Head(dir string) (Revision, error) {
	branch, err := m.BranchFromSandbox(dir)
	if err != nil {
		return Revision{}, err
	}
	lines, err := m.query(dir, "revision", "log", "-l", "1", "-r", ".", "--template", "{node}")
	if err != nil {
		return Revision{}, err
	}
	return Revision{
		Branch:     branch,
		RevisionID: firstLine(lines),
	}, nil
}
