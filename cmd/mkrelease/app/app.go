package app

import (
	"github.com/urfave/cli"

	"github.com/fossas/mkrelease/cmd/mkrelease/cmd/locations"
	"github.com/fossas/mkrelease/cmd/mkrelease/cmd/release"
	"github.com/fossas/mkrelease/cmd/mkrelease/version"
)

func New() *cli.App {
	return &cli.App{
		Name:      "mkrelease",
		Usage:     "Release sdists and wheels to index servers and SSH locations (https://github.com/fossas/mkrelease/)",
		UsageText: "mkrelease [options] [scm-url|scm-sandbox]",
		ArgsUsage: release.Cmd.ArgsUsage,
		Version:   version.String(),
		Action:    release.Run,
		Flags:     release.Cmd.Flags,
		Commands: []cli.Command{
			locations.Cmd,
		},
	}
}
