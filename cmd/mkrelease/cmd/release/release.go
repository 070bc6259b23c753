// Package release implements the default `mkrelease` action.
package release

import (
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli"

	"github.com/fossas/mkrelease/cmd/mkrelease/cmd/locations"
	"github.com/fossas/mkrelease/cmd/mkrelease/display"
	"github.com/fossas/mkrelease/cmd/mkrelease/flags"
	"github.com/fossas/mkrelease/cmd/mkrelease/setup"
	"github.com/fossas/mkrelease/config"
	"github.com/fossas/mkrelease/exec"
	mkrelease "github.com/fossas/mkrelease/release"
	"github.com/fossas/mkrelease/vcs"
)

// Cmd describes the release action. The app runs it as its default action.
var Cmd = cli.Command{
	Name:      "release",
	Usage:     "Commit, tag, build and upload a Python package",
	ArgsUsage: "[scm-url|scm-sandbox]",
	Action:    Run,
	Flags:     flags.Combine(flags.Steps, flags.SCM, flags.Dist, flags.WithGlobalFlags(nil)),
}

var _ cli.ActionFunc = Run

func Run(ctx *cli.Context) error {
	err := setup.SetContext(ctx)
	if err != nil {
		return err
	}

	if ctx.Bool(flags.ListLocationsName) {
		return locations.Print(os.Stdout, config.Resolver())
	}

	opts, err := Options()
	if err != nil {
		return err
	}
	r, err := New(exec.System{})
	if err != nil {
		return err
	}

	defer display.ClearProgress()
	log.WithFields(log.Fields{"target": opts.Target, "locations": opts.Locations}).Debug("starting release")
	return r.Run(opts)
}

// Options reads release options from the configuration context.
func Options() (mkrelease.Options, error) {
	scm, err := config.SCMType()
	if err != nil {
		return mkrelease.Options{}, err
	}
	target, err := config.Target()
	if err != nil {
		return mkrelease.Options{}, err
	}

	opts := mkrelease.Options{
		SCMType:  scm,
		Target:   target,
		Commit:   config.Commit(),
		Tag:      config.Tag(),
		Upload:   config.Upload(),
		DryRun:   config.DryRun(),
		Push:     config.Push(),
		Sign:     config.Sign(),
		Identity: config.Identity(),
	}
	// Locations are only resolved for uploads.
	if opts.Upload {
		opts.Locations, err = config.Locations()
		if err != nil {
			return mkrelease.Options{}, err
		}
	}
	return opts, nil
}

// New wires a Releaser from the configuration context.
func New(runner exec.Runner) (*mkrelease.Releaser, error) {
	resolver := config.Resolver()

	packager, err := mkrelease.NewPackager(runner, config.Python(), config.Formats())
	if err != nil {
		return nil, err
	}
	packager.Develop = config.Develop()
	packager.Quiet = config.Quiet()

	uploader := mkrelease.NewUploader(runner, config.Twine(), resolver.IsServer)
	uploader.Register = config.Register()

	return &mkrelease.Releaser{
		Registry: vcs.NewRegistry(runner),
		Resolver: resolver,
		Packager: packager,
		Uploader: uploader,
		Progress: display.InProgress,
	}, nil
}
