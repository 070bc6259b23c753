package vcs_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fossas/mkrelease/errors"
	"github.com/fossas/mkrelease/exec"
	"github.com/fossas/mkrelease/exec/exectest"
	"github.com/fossas/mkrelease/files"
	"github.com/fossas/mkrelease/vcs"
)

const simSvnTrunk = "https://svn.jarn.com/public/foo/trunk"

// sim stands in for the svn, hg and git binaries. Sandboxes are recognized
// by their metadata folders. Tags and branches are kept in memory.
type sim struct {
	*exectest.Runner
	tags     map[string]bool
	branches map[string]bool
}

func simulate() *sim {
	s := &sim{Runner: exectest.New(), tags: map[string]bool{}, branches: map[string]bool{}}

	inSandbox := func(cmd exec.Cmd, folder string) bool {
		_, err := files.FindUp(cmd.Dir, folder)
		return err == nil
	}
	status := func(k vcs.Kind, code int, msg string) exectest.Handler {
		return func(cmd exec.Cmd) (exec.Result, error) {
			if inSandbox(cmd, vcs.MetadataFolder(k)) {
				return exectest.OK(), nil
			}
			return exectest.Fail(code, msg), nil
		}
	}
	tag := func(cmd exec.Cmd) (exec.Result, error) {
		s.tags[cmd.Argv[len(cmd.Argv)-1]] = true
		return exectest.OK(), nil
	}

	s.Handle("svn status", status(vcs.Subversion, 1, "svn: E155007: not a working copy"))
	s.On("svn info", exectest.OK("Path: .", "URL: "+simSvnTrunk))
	s.Handle("svn ls", func(cmd exec.Cmd) (exec.Result, error) {
		if s.tags[cmd.Argv[1]] || s.branches[cmd.Argv[1]] {
			return exectest.OK("setup.py"), nil
		}
		return exectest.Fail(1, "svn: E200009: Could not list all targets because some targets don't exist"), nil
	})
	s.Handle("svn copy", tag)
	s.On("svn switch", exectest.OK())

	s.Handle("hg status", status(vcs.Mercurial, 255, "abort: no repository found"))
	s.Handle("hg tags", func(exec.Cmd) (exec.Result, error) {
		lines := []string{"tip                                3:9f4a7c2e1d3b"}
		for t := range s.tags {
			lines = append(lines, fmt.Sprintf("%-34s 2:1a2b3c4d5e6f", t))
		}
		return exectest.OK(lines...), nil
	})
	s.Handle("hg tag", tag)
	s.On("hg paths default", exectest.Fail(1, "not found!"))
	s.On("hg branch", exectest.OK("default"))
	s.Handle("hg branches", func(exec.Cmd) (exec.Result, error) {
		lines := []string{"default                            3:9f4a7c2e1d3b"}
		for b := range s.branches {
			lines = append(lines, fmt.Sprintf("%-34s 1:0a1b2c3d4e5f", b))
		}
		return exectest.OK(lines...), nil
	})
	s.On("hg update", exectest.OK())

	s.Handle("git status", status(vcs.Git, 128, "fatal: not a git repository (or any of the parent directories): .git"))
	s.Handle("git tag -l", func(exec.Cmd) (exec.Result, error) {
		var lines []string
		for t := range s.tags {
			lines = append(lines, t)
		}
		return exectest.OK(lines...), nil
	})
	s.Handle("git tag", tag)
	s.On("git branch", exectest.OK("* main"))
	s.On("git config", exectest.Fail(1))
	s.Handle("git rev-parse --verify --quiet", func(cmd exec.Cmd) (exec.Result, error) {
		if s.branches[cmd.Argv[len(cmd.Argv)-1]] {
			return exectest.OK("4d5e6f7a8b9c"), nil
		}
		return exectest.Fail(1), nil
	})
	s.On("git checkout", exectest.OK())

	return s
}

func TestIsValidSandboxFollowsMetadata(t *testing.T) {
	for _, k := range vcs.Kinds {
		t.Run(k.Name(), func(t *testing.T) {
			b := vcs.New(k, simulate())
			dir := t.TempDir()
			meta := filepath.Join(dir, vcs.MetadataFolder(k))

			require.NoError(t, os.Mkdir(meta, 0755))
			assert.True(t, b.IsValidSandbox(dir))

			require.NoError(t, os.RemoveAll(meta))
			assert.False(t, b.IsValidSandbox(dir))
			assert.Error(t, vcs.CheckValidSandbox(b, dir))
		})
	}
}

func TestIsValidSandboxMissingDirectory(t *testing.T) {
	for _, k := range vcs.Kinds {
		t.Run(k.Name(), func(t *testing.T) {
			b := vcs.New(k, simulate())
			assert.False(t, b.IsValidSandbox(filepath.Join(t.TempDir(), "missing")))
		})
	}
}

func TestCreateTagMakesTagExist(t *testing.T) {
	for _, k := range vcs.Kinds {
		t.Run(k.Name(), func(t *testing.T) {
			b := vcs.New(k, simulate())
			dir := t.TempDir()

			tagid, err := b.MakeTagID(dir, "1.0")
			require.NoError(t, err)
			assert.False(t, b.TagExists(dir, tagid))
			assert.NoError(t, vcs.CheckTagExists(b, dir, tagid))

			require.NoError(t, b.CreateTag(dir, tagid, "foo", "1.0", false))
			assert.True(t, b.TagExists(dir, tagid))
			assert.Error(t, vcs.CheckTagExists(b, dir, tagid))
		})
	}
}

func TestMakeTagID(t *testing.T) {
	expected := map[vcs.Kind]string{
		vcs.Subversion: "https://svn.jarn.com/public/foo/tags/1.0",
		vcs.Mercurial:  "1.0",
		vcs.Git:        "1.0",
	}
	for _, k := range vcs.Kinds {
		tagid, err := vcs.New(k, simulate()).MakeTagID("/sandbox", "1.0")
		require.NoError(t, err)
		assert.Equal(t, expected[k], tagid, k.Name())
	}
}

func TestCommandsRunInSandbox(t *testing.T) {
	for _, k := range vcs.Kinds {
		t.Run(k.Name(), func(t *testing.T) {
			s := simulate()
			dir := t.TempDir()
			b := vcs.New(k, s)
			b.IsValidSandbox(dir)
			b.TagExists(dir, "1.0")

			require.NotEmpty(t, s.Calls)
			for _, cmd := range s.Calls {
				assert.Equal(t, dir, cmd.Dir, cmd.String())
			}
		})
	}
}

func TestSwitchBranchRequiresExistingBranch(t *testing.T) {
	branchid := map[vcs.Kind]string{
		vcs.Subversion: "https://svn.jarn.com/public/foo/branches/stable",
		vcs.Mercurial:  "stable",
		vcs.Git:        "stable",
	}
	switchCmd := map[vcs.Kind]string{
		vcs.Subversion: "svn switch",
		vcs.Mercurial:  "hg update",
		vcs.Git:        "git checkout",
	}
	for _, k := range vcs.Kinds {
		t.Run(k.Name(), func(t *testing.T) {
			s := simulate()
			b := vcs.New(k, s)
			dir := t.TempDir()

			err := b.SwitchBranch(dir, branchid[k])
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.User))
			assert.Contains(t, err.Error(), "no such branch or tag")
			assert.False(t, s.Ran(switchCmd[k]))

			s.branches[branchid[k]] = true
			require.NoError(t, b.SwitchBranch(dir, branchid[k]))
			assert.True(t, s.Ran(switchCmd[k]+" "+branchid[k]))
		})
	}
}
