// Package exectest provides a scripted exec.Runner for tests.
//
// Responses are matched against the command line (name plus arguments) either
// exactly or as a whole-word prefix, in registration order. Commands that
// match nothing fail as if they could not be started, so tests notice
// unexpected invocations.
package exectest

import (
	"fmt"
	"strings"

	"github.com/fossas/mkrelease/exec"
)

// Handler computes a response for a matched command.
type Handler func(cmd exec.Cmd) (exec.Result, error)

type response struct {
	pattern string
	handler Handler
	once    bool
	used    bool
}

// Runner is a scripted exec.Runner. The zero value has no responses.
type Runner struct {
	Calls     []exec.Cmd
	responses []*response
}

// New returns an empty Runner.
func New() *Runner {
	return &Runner{}
}

// On responds to every command matching pattern with result.
func (r *Runner) On(pattern string, result exec.Result) *Runner {
	return r.Handle(pattern, func(exec.Cmd) (exec.Result, error) { return result, nil })
}

// Once responds to the next command matching pattern with result. Once
// responses registered for the same pattern are used in order, and take
// precedence over On responses registered later.
func (r *Runner) Once(pattern string, result exec.Result) *Runner {
	r.responses = append(r.responses, &response{
		pattern: pattern,
		handler: func(exec.Cmd) (exec.Result, error) { return result, nil },
		once:    true,
	})
	return r
}

// Handle responds to commands matching pattern with h.
func (r *Runner) Handle(pattern string, h Handler) *Runner {
	r.responses = append(r.responses, &response{pattern: pattern, handler: h})
	return r
}

// Run implements exec.Runner.
func (r *Runner) Run(cmd exec.Cmd) (exec.Result, error) {
	r.Calls = append(r.Calls, cmd)
	line := cmd.String()
	for _, resp := range r.responses {
		if resp.used || !matches(line, resp.pattern) {
			continue
		}
		if resp.once {
			resp.used = true
		}
		return resp.handler(cmd)
	}
	return exec.Result{}, fmt.Errorf("exectest: unexpected command: %s", line)
}

// Lines returns the command lines run so far.
func (r *Runner) Lines() []string {
	var lines []string
	for _, c := range r.Calls {
		lines = append(lines, c.String())
	}
	return lines
}

// Ran reports whether a command matching pattern was run.
func (r *Runner) Ran(pattern string) bool {
	for _, c := range r.Calls {
		if matches(c.String(), pattern) {
			return true
		}
	}
	return false
}

// OK is a successful result with the given stdout lines.
func OK(stdout ...string) exec.Result {
	return exec.Result{Stdout: stdout}
}

// Fail is a failed result with the given exit code and stderr lines.
func Fail(code int, stderr ...string) exec.Result {
	return exec.Result{ExitCode: code, Stderr: stderr}
}

func matches(line, pattern string) bool {
	return line == pattern || strings.HasPrefix(line, pattern+" ")
}
