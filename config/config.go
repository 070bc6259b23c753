// Package config implements application-level configuration functionality.
//
// It works by loading configuration sources (CLI flags, the defaults file
// ~/.mkrelease and the index servers of ~/.pypirc) and providing functions
// which compute relevant configuration values from these sources.
//
// This design is intended to make how a particular value is computed very
// clear. All values can have their computation strategy modified independently
// of all other values. It should also be easy to determine which source set a
// particular configuration value.
package config

import (
	"github.com/apex/log"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/fossas/mkrelease/cmd/mkrelease/flags"
	"github.com/fossas/mkrelease/errors"
)

const (
	// DefaultsFile is the defaults file read when --config is not given.
	DefaultsFile = "~/.mkrelease"
	// PypircFile holds the index server definitions.
	PypircFile = "~/.pypirc"
)

var (
	ctx      *cli.Context
	defaults = Builtin()
	filename string
)

// SetContext initializes application-level configuration from the CLI
// context and the configuration files on disk.
func SetContext(c *cli.Context) error {
	return SetContextWithFs(c, afero.NewOsFs())
}

// SetContextWithFs is SetContext reading configuration files from fs.
func SetContextWithFs(c *cli.Context, fs afero.Fs) error {
	// First, set the CLI flags.
	ctx = c

	// Second, find and load the defaults file. An explicit --config must exist.
	fname, err := defaultsPath(fs, c.String(flags.ConfigFlagName))
	if err != nil {
		return err
	}
	pypirc, err := homedir.Expand(PypircFile)
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "could not find home directory")
	}
	if ok, _ := afero.Exists(fs, pypirc); !ok {
		pypirc = ""
	}

	d, err := Load(fs, fname, pypirc)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"filename": fname, "pypirc": pypirc}).Debug("loaded configuration")

	defaults = d
	filename = fname
	return nil
}

func defaultsPath(fs afero.Fs, flag string) (string, error) {
	if flag != "" {
		path, err := homedir.Expand(flag)
		if err != nil {
			return "", errors.Wrap(err, errors.User, "invalid config path: %s", flag)
		}
		if _, err := TryFiles(fs, path); err != nil {
			return "", errors.New(errors.User, "config file not found: %s", flag)
		}
		return path, nil
	}

	path, err := homedir.Expand(DefaultsFile)
	if err != nil {
		return "", errors.Wrap(err, errors.Unknown, "could not find home directory")
	}
	path, err = TryFiles(fs, path)
	if err == ErrFileNotFound {
		return "", nil
	}
	return path, err
}
