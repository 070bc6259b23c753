// Package vcs implements the Subversion, Mercurial and Git backends used to
// commit and tag a release, and the Registry that picks one for a URL or
// sandbox.
//
// Backends never change the process working directory: every command runs
// with exec.Cmd.Dir set to the sandbox it concerns.
package vcs

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/apex/log"
	"github.com/blang/semver"

	"github.com/fossas/mkrelease/errors"
	"github.com/fossas/mkrelease/exec"
)

// Backend is the interface implemented by the Subversion, Mercurial and Git
// backends.
//
// Predicates documented as best-effort (IsValidSandbox, IsRemoteSandbox,
// TagExists, BranchExists) return false when the underlying query fails. All
// other operations return an *errors.Error when the tool fails, because the
// true sandbox state cannot be guessed.
type Backend interface {
	Kind() Kind
	Name() string

	// Version is the version of the installed tool, or "" if it cannot be
	// determined.
	Version() string

	IsValidURL(url string) bool
	IsValidSandbox(dir string) bool

	// IsDirtySandbox reports modified, added, removed or renamed files.
	IsDirtySandbox(dir string) (bool, error)
	// IsUncleanSandbox reports dirty sandboxes as well as conflicted, missing
	// or obstructed files.
	IsUncleanSandbox(dir string) (bool, error)

	RootFromSandbox(dir string) (string, error)
	BranchFromSandbox(dir string) (string, error)
	URLFromSandbox(dir string) (string, error)
	IsRemoteSandbox(dir string) bool

	CommitSandbox(dir, name, version string, push bool) error
	CloneURL(url, dir string) error

	MakeBranchID(dir, name string) (string, error)
	MakeTagID(dir, version string) (string, error)
	BranchExists(dir, branchid string) bool
	TagExists(dir, tagid string) bool
	SwitchBranch(dir, branchid string) error
	CreateTag(dir, tagid, name, version string, push bool) error

	Head(dir string) (Revision, error)
}

// New returns the backend for k.
func New(k Kind, r exec.Runner) Backend {
	switch k {
	case Subversion:
		return NewSubversion(r)
	case Mercurial:
		return NewMercurial(r)
	case Git:
		return NewGit(r)
	default:
		panic(fmt.Sprintf("vcs: unknown kind %d", k))
	}
}

// tool runs one VCS binary.
type tool struct {
	runner exec.Runner
	binary string
}

func newTool(k Kind, r exec.Runner) tool {
	binary := os.Getenv(BinaryEnv(k))
	if binary == "" {
		binary = k.Name()
	}
	return tool{runner: r, binary: binary}
}

func (t tool) run(dir string, argv ...string) (exec.Result, error) {
	return t.runner.Run(exec.Cmd{
		Name: t.binary,
		Argv: argv,
		Dir:  dir,
	})
}

// ok runs a command and reports whether it started and exited 0.
func (t tool) ok(dir string, argv ...string) bool {
	result, err := t.run(dir, argv...)
	if err != nil {
		log.WithError(err).Debug("check failed")
		return false
	}
	return result.OK()
}

// query runs a command whose output describes sandbox or repository state.
func (t tool) query(dir, what string, argv ...string) ([]string, error) {
	result, err := t.run(dir, argv...)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, failure(errors.Query, result, "could not get %s from %s", what, dir)
	}
	return result.Stdout, nil
}

// mutate runs a command that changes sandbox or repository state.
func (t tool) mutate(dir, what string, argv ...string) (exec.Result, error) {
	result, err := t.run(dir, argv...)
	if err != nil {
		return result, err
	}
	if !result.OK() {
		return result, failure(errors.Command, result, "could not %s in %s", what, dir)
	}
	return result, nil
}

// version runs `<binary> --version` and extracts the version with pattern.
func (t tool) version(pattern *regexp.Regexp) string {
	result, err := t.run("", "--version")
	if err != nil || !result.OK() {
		return ""
	}
	return ParseVersion(result.Output(), pattern)
}

func failure(typ errors.Type, result exec.Result, format string, args ...interface{}) *errors.Error {
	e := errors.New(typ, format, args...)
	if output := result.Output(); len(output) > 0 {
		e.Troubleshooting = "The command reported:\n" + strings.Join(output, "\n")
	}
	return e
}

// ParseVersion finds the first line matching pattern and returns its first
// submatch, normalized to semver form when it parses as one.
func ParseVersion(lines []string, pattern *regexp.Regexp) string {
	for _, line := range lines {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if v, err := semver.ParseTolerant(m[1]); err == nil {
			return v.String()
		}
		return m[1]
	}
	return ""
}

// VersionAtLeast reports whether version v is at least min. Versions that do
// not parse compare as false.
func VersionAtLeast(v, min string) bool {
	have, err := semver.ParseTolerant(v)
	if err != nil {
		return false
	}
	want, err := semver.ParseTolerant(min)
	if err != nil {
		return false
	}
	return have.GTE(want)
}

// firstLine returns the first non-empty line.
func firstLine(lines []string) string {
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}

// prefixed returns the rest of the first line starting with prefix.
func prefixed(lines []string, prefix string) (string, bool) {
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", false
}

func commitMessage(name, version string) string {
	return fmt.Sprintf("Prepare %s %s.", name, version)
}

func tagMessage(name, version string) string {
	return fmt.Sprintf("Tagged %s %s.", name, version)
}
