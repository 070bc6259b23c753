package exec_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fossas/mkrelease/exec"
	"github.com/fossas/mkrelease/exec/exectest"
)

func TestSetEnv(t *testing.T) {
	c, err := exec.BuildExec(exec.Cmd{
		Name: "example",
		Env: map[string]string{
			"foo": "bar",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"foo=bar"}, c.Env)
	assert.Len(t, c.Env, 1)
}

func TestAppendEnv(t *testing.T) {
	os.Setenv("alice", "bob")
	c, err := exec.BuildExec(exec.Cmd{
		Name: "example",
		WithEnv: map[string]string{
			"foo": "bar",
		},
	})
	require.NoError(t, err)

	assert.Contains(t, c.Env, "foo=bar")
	assert.Contains(t, c.Env, "alice=bob")
}

func TestDefaultEnv(t *testing.T) {
	os.Setenv("alice", "bob")
	c, err := exec.BuildExec(exec.Cmd{
		Name: "example",
	})
	require.NoError(t, err)
	assert.Contains(t, c.Env, "alice=bob")
}

func TestBuildExecSetsDir(t *testing.T) {
	c, err := exec.BuildExec(exec.Cmd{Name: "example", Dir: "/tmp/sandbox"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/sandbox", c.Dir)
}

func TestBuildExecShellCommand(t *testing.T) {
	c, err := exec.BuildExec(exec.Cmd{Command: "echo hi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-c", "echo hi"}, c.Args[1:])
}

func TestBuildExecWithoutCommandFails(t *testing.T) {
	_, err := exec.BuildExec(exec.Cmd{})
	assert.Error(t, err)
}

func TestLines(t *testing.T) {
	assert.Nil(t, exec.Lines(""))
	assert.Equal(t, []string{"a", "b"}, exec.Lines("a\r\nb\n"))
	assert.Equal(t, []string{"a", "", "b"}, exec.Lines("a\n\nb"))
}

func TestSystemRunReportsExitCode(t *testing.T) {
	if testing.Short() {
		t.Skip("Skip integration test")
	}

	result, err := exec.System{}.Run(exec.Cmd{Command: "echo out; echo err 1>&2; exit 3"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, []string{"out"}, result.Stdout)
	assert.Equal(t, []string{"err"}, result.Stderr)
}

func TestSystemRunMissingBinary(t *testing.T) {
	_, err := exec.System{}.Run(exec.Cmd{Name: "mkrelease-no-such-binary"})
	assert.Error(t, err)
}

func TestResultContains(t *testing.T) {
	r := exec.Result{ExitCode: 1, Stdout: []string{"On branch main", "nothing to commit, working tree clean"}}
	assert.False(t, r.OK())
	assert.True(t, r.Contains("nothing to commit"))
	assert.False(t, r.Contains("conflict"))
}

func TestWhichSkipsFailingCandidates(t *testing.T) {
	r := exectest.New().
		On("python3 --version", exectest.Fail(127, "not found")).
		On("python --version", exectest.OK("Python 3.11.4"))

	cmd, version, err := exec.Which(r, "--version", "", "python3", "python")
	require.NoError(t, err)
	assert.Equal(t, "python", cmd)
	assert.Equal(t, "Python 3.11.4", version)
}

func TestWhichNoCandidates(t *testing.T) {
	r := exectest.New()
	_, _, err := exec.Which(r, "--version", "python3")
	assert.Error(t, err)
}
