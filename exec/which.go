package exec

import (
	"github.com/apex/log"

	"github.com/fossas/mkrelease/errors"
)

// Which picks the first candidate command that runs successfully with arg.
// Empty candidates are skipped, so an unset override can be listed first.
func Which(r Runner, arg string, cmds ...string) (cmd string, output string, err error) {
	return WhichArgs(r, []string{arg}, cmds...)
}

// WhichArgs is `Which` but passes multiple arguments to each candidate.
func WhichArgs(r Runner, argv []string, cmds ...string) (cmd string, output string, err error) {
	return WhichWithResolver(cmds, func(cmd string) (string, bool, error) {
		result, err := r.Run(Cmd{
			Name: cmd,
			Argv: argv,
		})
		if err != nil {
			return "", false, err
		}
		if !result.OK() {
			return "", false, nil
		}
		if len(result.Stdout) == 0 && len(result.Stderr) > 0 {
			return result.Stderr[0], true, nil
		}
		if len(result.Stdout) == 0 {
			return "", true, nil
		}
		return result.Stdout[0], true, nil
	})
}

// A WhichResolver takes a candidate command and returns whether to choose it.
type WhichResolver func(cmd string) (output string, ok bool, err error)

// WhichWithResolver is `Which` with a custom resolution strategy.
func WhichWithResolver(cmds []string, resolve WhichResolver) (string, string, error) {
	for _, cmd := range cmds {
		if cmd == "" {
			continue
		}
		version, ok, err := resolve(cmd)
		if ok {
			return cmd, version, nil
		}
		log.WithError(err).WithFields(log.Fields{
			"cmd":     cmd,
			"version": version,
		}).Debug("skipping command candidate")
	}
	return "", "", errors.New(errors.Exec, "could not resolve command among %v", cmds)
}
