package release_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fossas/mkrelease/errors"
	"github.com/fossas/mkrelease/exec"
	"github.com/fossas/mkrelease/exec/exectest"
	"github.com/fossas/mkrelease/location"
	"github.com/fossas/mkrelease/release"
	"github.com/fossas/mkrelease/test/testtools"
	"github.com/fossas/mkrelease/vcs"
)

// gitSandbox returns a Git working copy holding a setup.py.
func gitSandbox(t *testing.T) string {
	dir := t.TempDir()
	_, err := testtools.InitGit(dir, map[string]string{"setup.py": "from setuptools import setup\n"})
	require.NoError(t, err)
	return dir
}

// scripted answers like git, hg, python, twine and scp would for a dirty Git
// sandbox containing jarn.foo 1.0.
type scripted struct {
	*exectest.Runner
	committed  bool
	failCommit bool
	tags       []string
	// remote is tracked by the main branch. Empty means none.
	remote string
}

func script() *scripted {
	s := &scripted{Runner: exectest.New()}
	s.On("hg status", exectest.Fail(255, "abort: no repository found"))
	s.On("git --version", exectest.OK("git version 2.39.2"))
	s.Handle("git status", func(cmd exec.Cmd) (exec.Result, error) {
		if s.committed {
			return exectest.OK(), nil
		}
		return exectest.OK(" M setup.py"), nil
	})
	s.Handle("git rev-parse --show-toplevel", func(cmd exec.Cmd) (exec.Result, error) {
		return exectest.OK(cmd.Dir), nil
	})
	s.On("git branch", exectest.OK("* main"))
	s.Handle("git config --get branch.main.remote", func(exec.Cmd) (exec.Result, error) {
		if s.remote == "" {
			return exectest.Fail(1), nil
		}
		return exectest.OK(s.remote), nil
	})
	s.On("git push", exectest.OK())
	s.Handle("git commit", func(exec.Cmd) (exec.Result, error) {
		if s.failCommit {
			return exectest.Fail(128, "fatal: Unable to create '.git/index.lock': File exists."), nil
		}
		s.committed = true
		return exectest.OK("[main 1a2b3c4] Prepare jarn.foo 1.0."), nil
	})
	s.Handle("git tag -l", func(exec.Cmd) (exec.Result, error) {
		return exectest.OK(s.tags...), nil
	})
	s.Handle("git tag", func(cmd exec.Cmd) (exec.Result, error) {
		s.tags = append(s.tags, cmd.Argv[len(cmd.Argv)-1])
		return exectest.OK(), nil
	})
	s.Handle("git clone", func(cmd exec.Cmd) (exec.Result, error) {
		if err := os.MkdirAll(filepath.Join(cmd.Argv[2], ".git"), 0755); err != nil {
			return exectest.Fail(128, err.Error()), nil
		}
		s.committed = true
		return exectest.OK(), nil
	})
	s.Handle("python setup.py", setupPy("jarn.foo", "1.0"))
	s.On("twine", exectest.OK())
	s.On("scp", exectest.OK())
	return s
}

func releaser(r exec.Runner) *release.Releaser {
	resolver := &location.Resolver{Servers: []string{"pypi"}}
	return &release.Releaser{
		Registry: vcs.NewRegistry(r),
		Resolver: resolver,
		Packager: &release.Packager{Runner: r, PythonCmd: "python", GPGCmd: "gpg"},
		Uploader: release.NewUploader(r, "", resolver.IsServer),
	}
}

func fullRelease(target string) release.Options {
	return release.Options{
		Target:    target,
		Commit:    true,
		Tag:       true,
		Upload:    true,
		Locations: []string{"pypi", "jarn.com:/var/dist/public"},
	}
}

func TestRunCommitsTagsAndUploads(t *testing.T) {
	dir := gitSandbox(t)
	s := script()
	var messages []string
	rel := releaser(s)
	rel.Progress = func(m string) { messages = append(messages, m) }

	require.NoError(t, rel.Run(fullRelease(dir)))

	assert.True(t, s.Ran("git commit"))
	assert.Equal(t, []string{"1.0"}, s.tags)
	require.True(t, s.Ran("twine upload -r pypi"))
	require.True(t, s.Ran("scp"))

	var uploaded []string
	for _, c := range s.Calls {
		if c.Name == "scp" {
			uploaded = c.Argv
		}
	}
	require.Len(t, uploaded, 2)
	assert.Equal(t, "jarn.foo-1.0.tar.gz", filepath.Base(uploaded[0]))
	assert.Equal(t, "jarn.com:/var/dist/public", uploaded[1])
	assert.False(t, exists(filepath.Dir(uploaded[0])), "dist dir is removed")

	for _, c := range s.Calls {
		if c.Name == "git" && len(c.Argv) > 0 && c.Argv[0] != "--version" {
			assert.Equal(t, dir, c.Dir, c.String())
		}
	}
	assert.Contains(t, messages, "Tagging 1.0")
	assert.Contains(t, messages, "Uploading to pypi")
}

func TestRunOrder(t *testing.T) {
	s := script()
	require.NoError(t, releaser(s).Run(fullRelease(gitSandbox(t))))

	index := func(prefix string) int {
		for i, line := range s.Lines() {
			if strings.HasPrefix(line, prefix) {
				return i
			}
		}
		return -1
	}
	commit, tag, twine, scp := index("git commit"), index("git tag -m"), index("twine upload"), index("scp")
	require.True(t, commit >= 0 && tag >= 0 && twine >= 0 && scp >= 0, "%v", s.Lines())
	assert.True(t, commit < tag)
	assert.True(t, tag < twine)
	assert.True(t, twine < scp)
}

func TestRunDryRun(t *testing.T) {
	s := script()
	opts := fullRelease(gitSandbox(t))
	opts.DryRun = true

	require.NoError(t, releaser(s).Run(opts))
	assert.False(t, s.Ran("git commit"))
	assert.False(t, s.Ran("git tag -m"))
	assert.False(t, s.Ran("twine"))
	assert.False(t, s.Ran("scp"))
	assert.Empty(t, s.tags)
}

func TestRunSkippingSteps(t *testing.T) {
	s := script()
	s.committed = true
	opts := fullRelease(gitSandbox(t))
	opts.Commit = false
	opts.Upload = false
	opts.Locations = nil

	require.NoError(t, releaser(s).Run(opts))
	assert.False(t, s.Ran("git commit"))
	assert.Equal(t, []string{"1.0"}, s.tags)
	assert.False(t, s.Ran("twine"))
}

func TestRunRefusesDirtySandboxWithoutCommit(t *testing.T) {
	s := script()
	opts := fullRelease(gitSandbox(t))
	opts.Commit = false

	err := releaser(s).Run(opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.User))
	assert.Empty(t, s.tags)
}

func TestRunFromURL(t *testing.T) {
	s := script()
	opts := release.Options{
		Target: "git@github.com:jarn/foo.git",
		Commit: true,
		Tag:    true,
	}

	require.NoError(t, releaser(s).Run(opts))
	assert.False(t, s.Ran("git commit"))
	assert.Equal(t, []string{"1.0"}, s.tags)

	var checkout string
	for _, c := range s.Calls {
		if c.Name == "git" && len(c.Argv) == 3 && c.Argv[0] == "clone" {
			assert.Equal(t, "git@github.com:jarn/foo.git", c.Argv[1])
			checkout = c.Argv[2]
		}
	}
	require.NotEmpty(t, checkout)
	assert.False(t, exists(filepath.Dir(checkout)), "checkout is removed")
}

func TestRunStopsWhenTagExists(t *testing.T) {
	s := script()
	s.tags = []string{"0.9", "1.0"}

	err := releaser(s).Run(fullRelease(gitSandbox(t)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tag exists: 1.0")
	assert.False(t, s.Ran("git tag -m"))
	assert.False(t, s.Ran("twine"))
}

func TestRunStopsWhenCommitFails(t *testing.T) {
	s := script()
	s.failCommit = true

	err := releaser(s).Run(fullRelease(gitSandbox(t)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.Command))
	assert.False(t, s.Ran("git tag -m"))
	assert.False(t, s.Ran("twine"))
}

func TestRunPushes(t *testing.T) {
	s := script()
	s.remote = "origin"
	opts := fullRelease(gitSandbox(t))
	opts.Push = true

	require.NoError(t, releaser(s).Run(opts))
	assert.True(t, s.Ran("git push origin main"))
	assert.True(t, s.Ran("git push origin tag 1.0"))
}

func TestRunPushRequiresRemote(t *testing.T) {
	s := script()
	opts := fullRelease(gitSandbox(t))
	opts.Push = true

	err := releaser(s).Run(opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.User))
	assert.Contains(t, err.Error(), "no remote configured")
	assert.False(t, s.Ran("git commit"))
	assert.False(t, s.Ran("git push"))
	assert.Empty(t, s.tags)
}

func TestRunRequiresLocations(t *testing.T) {
	s := script()
	opts := fullRelease(gitSandbox(t))
	opts.Locations = nil

	err := releaser(s).Run(opts)
	require.Error(t, err)
	assert.Empty(t, s.Calls)
}

func TestRunRejectsUnknownLocation(t *testing.T) {
	s := script()
	opts := fullRelease(gitSandbox(t))
	opts.Locations = []string{"pipy"}

	err := releaser(s).Run(opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.User))
	assert.Contains(t, errors.Report(err), `"pypi"`)
	assert.Empty(t, s.Calls)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
