// Package setup implements initialization for all application packages.
package setup

import (
	"github.com/apex/log"
	"github.com/urfave/cli"

	"github.com/fossas/mkrelease/cmd/mkrelease/display"
	"github.com/fossas/mkrelease/cmd/mkrelease/version"
	"github.com/fossas/mkrelease/config"
)

// SetContext initializes all application-level packages.
func SetContext(ctx *cli.Context) error {
	// Set up configuration.
	err := config.SetContext(ctx)
	if err != nil {
		return err
	}

	// Set up logging.
	display.SetInteractive(config.Interactive())
	display.SetDebug(config.Debug())

	log.WithFields(log.Fields{
		"version": version.ShortString(),
		"config":  config.Filepath(),
		"logfile": display.File(),
	}).Debug("initialized")
	return nil
}
