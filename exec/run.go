// Package exec runs external commands and captures their output as lines.
//
// Commands run in the directory given by Cmd.Dir. Nothing in this package
// changes the process working directory.
package exec

import (
	"bytes"
	"os"
	"os/exec"
	"strings"

	"github.com/apex/log"

	"github.com/fossas/mkrelease/errors"
)

// Cmd represents a single command. If Name and Argv are set, this is treated as
// an executable. If Command is set, this is treated as a shell command.
type Cmd struct {
	Name    string   // Executable name.
	Argv    []string // Executable arguments.
	Command string   // Shell command.

	Dir string // The Command's working directory.

	// If neither Env nor WithEnv are set, the environment is inherited from os.Environ().
	Env     map[string]string // If set, the command's environment is _set_ to Env.
	WithEnv map[string]string // If set, the command's environment is _added_ to WithEnv.
}

// String returns the command line, for logs and error messages.
func (c Cmd) String() string {
	if c.Command != "" {
		return c.Command
	}
	return strings.Join(append([]string{c.Name}, c.Argv...), " ")
}

// Result is the outcome of a command that started. A nonzero ExitCode is a
// normal result, not an error.
type Result struct {
	ExitCode int
	Stdout   []string
	Stderr   []string
}

// OK is true if the command exited 0.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Output returns stdout followed by stderr.
func (r Result) Output() []string {
	out := make([]string, 0, len(r.Stdout)+len(r.Stderr))
	out = append(out, r.Stdout...)
	return append(out, r.Stderr...)
}

// Contains reports whether any line of stdout or stderr contains s.
func (r Result) Contains(s string) bool {
	for _, line := range r.Output() {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

// Runner runs commands. Implementations return an error only when the
// command could not be started at all.
type Runner interface {
	Run(cmd Cmd) (Result, error)
}

// System is the Runner backed by os/exec.
type System struct{}

// Run executes a `Cmd`.
func (System) Run(cmd Cmd) (Result, error) {
	xc, err := BuildExec(cmd)
	if err != nil {
		return Result{}, err
	}

	log.WithFields(log.Fields{
		"cmd": cmd.String(),
		"dir": xc.Dir,
	}).Debug("running command")

	var stdoutBuffer, stderrBuffer bytes.Buffer
	xc.Stdout = &stdoutBuffer
	xc.Stderr = &stderrBuffer

	err = xc.Run()
	result := Result{
		Stdout: Lines(stdoutBuffer.String()),
		Stderr: Lines(stderrBuffer.String()),
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		err = nil
	}

	log.WithFields(log.Fields{
		"exit":   result.ExitCode,
		"stdout": result.Stdout,
		"stderr": result.Stderr,
	}).Debug("done running")

	if err != nil {
		return result, errors.Wrap(err, errors.Exec, "could not run `%s`", cmd)
	}
	return result, nil
}

// BuildExec builds the *exec.Cmd for cmd without starting it.
func BuildExec(cmd Cmd) (*exec.Cmd, error) {
	name, argv := cmd.Name, cmd.Argv
	if cmd.Command != "" {
		name = os.Getenv("SHELL")
		if name == "" {
			name = "/bin/sh"
		}
		argv = []string{"-c", cmd.Command}
	}
	if name == "" {
		return nil, errors.New(errors.Exec, "no command to run")
	}

	xc := exec.Command(name, argv...)
	if cmd.Dir != "" {
		xc.Dir = cmd.Dir
	}

	if cmd.Env != nil {
		xc.Env = toEnv(cmd.Env)
	} else if cmd.WithEnv != nil {
		xc.Env = append(xc.Env, os.Environ()...)
		xc.Env = append(xc.Env, toEnv(cmd.WithEnv)...)
	} else {
		xc.Env = os.Environ()
	}
	return xc, nil
}

// Lines splits output into lines, dropping the trailing empty line and any
// carriage returns.
func Lines(output string) []string {
	if output == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func toEnv(env map[string]string) []string {
	var out []string
	for key, val := range env {
		out = append(out, key+"="+val)
	}
	return out
}
