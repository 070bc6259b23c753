package config

import (
	"os"

	isatty "github.com/mattn/go-isatty"

	"github.com/fossas/mkrelease/cmd/mkrelease/flags"
	"github.com/fossas/mkrelease/errors"
	"github.com/fossas/mkrelease/location"
)

/**** Global configuration keys ****/

// Interactive is true if the user desires interactive output.
func Interactive() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) && !ctx.Bool(flags.NoAnsiFlagName)
}

// Debug is true if the user has requested debug-level logging.
func Debug() bool {
	return ctx.Bool(flags.DebugFlagName)
}

// Quiet suppresses the output of packaging tools.
func Quiet() bool {
	return ctx.Bool(flags.QuietFlagName) || defaults.Quiet
}

// Filepath is the configuration file path, or "" if none was read.
func Filepath() string {
	return filename
}

/**** Release steps ****/

func Commit() bool {
	return !ctx.Bool(flags.NoCommitFlagName)
}

func Tag() bool {
	return !ctx.Bool(flags.NoTagFlagName)
}

func Upload() bool {
	return !ctx.Bool(flags.NoUploadFlagName)
}

func DryRun() bool {
	return ctx.Bool(flags.DryRunFlagName)
}

/**** SCM configuration keys ****/

// SCMType is the SCM type forced on the command line, or "".
func SCMType() (string, error) {
	var chosen []string
	for _, name := range []string{flags.SubversionFlag, flags.MercurialFlag, flags.GitFlag} {
		if ctx.Bool(name) {
			chosen = append(chosen, name)
		}
	}
	switch len(chosen) {
	case 0:
		return "", nil
	case 1:
		return chosen[0], nil
	default:
		return "", errors.New(errors.User, "conflicting SCM flags: --%s and --%s", chosen[0], chosen[1])
	}
}

// Target is the sandbox or URL to release, defaulting to the current
// directory.
func Target() (string, error) {
	switch ctx.NArg() {
	case 0:
		return ".", nil
	case 1:
		return ctx.Args().First(), nil
	default:
		return "", errors.New(errors.User, "expected at most one scm-url or scm-sandbox, got %d", ctx.NArg())
	}
}

func Push() bool {
	return ctx.Bool(flags.PushFlagName) || defaults.Push
}

/**** Distribution configuration keys ****/

// Identity is the GnuPG identity to sign with.
func Identity() string {
	return TryStrings(ctx.String(flags.IdentityFlagName), defaults.Identity)
}

// Sign is true if the distribution should be signed. Passing an identity
// implies signing.
func Sign() bool {
	return ctx.Bool(flags.SignFlagName) || ctx.String(flags.IdentityFlagName) != "" || defaults.Sign
}

// Formats are the sdist formats to build, plus "wheel" for a wheel.
func Formats() []string {
	var chosen []string
	if ctx.Bool(flags.ZipFlagName) {
		chosen = append(chosen, "zip")
	}
	if ctx.Bool(flags.GztarFlagName) {
		chosen = append(chosen, "gztar")
	}
	formats := TryStringSlices(chosen, defaults.Formats)
	if ctx.Bool(flags.WheelFlagName) && !contains(formats, "wheel") {
		formats = append(formats, "wheel")
	}
	return formats
}

func Develop() bool {
	return ctx.Bool(flags.DevelopFlagName) || defaults.Develop
}

func Register() bool {
	return defaults.Register
}

func Python() string {
	return defaults.Python
}

func Twine() string {
	return defaults.Twine
}

// Resolver resolves dist-locations against the configured aliases and index
// servers.
func Resolver() *location.Resolver {
	return defaults.Resolver()
}

// Locations are the resolved upload targets: every -d location, or the
// configured distdefault.
func Locations() ([]string, error) {
	r := Resolver()
	names := ctx.StringSlice(flags.DistLocationFlagName)
	if len(names) == 0 {
		return r.Default()
	}
	var locations []string
	for _, name := range names {
		resolved, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		locations = append(locations, resolved...)
	}
	return locations, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
