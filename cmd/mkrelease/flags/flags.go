// Package flags defines the command-line flags of mkrelease.
package flags

import (
	"fmt"

	"github.com/urfave/cli"
)

func abbr(short, fullname string) string {
	return fmt.Sprintf("%s, %s", fullname, short)
}

// Combine merges flag lists, dropping exact duplicates. Two different flags
// with the same name are a programming error.
func Combine(lists ...[]cli.Flag) []cli.Flag {
	seen := make(map[string]cli.Flag)
	var combined []cli.Flag
	for _, list := range lists {
		for _, f := range list {
			prev, ok := seen[f.GetName()]
			if !ok {
				seen[f.GetName()] = f
				combined = append(combined, f)
				continue
			}
			if fmt.Sprintf("%#v", prev) != fmt.Sprintf("%#v", f) {
				panic(fmt.Sprintf("flags: conflicting definitions of %q", f.GetName()))
			}
		}
	}
	return combined
}

func WithGlobalFlags(f []cli.Flag) []cli.Flag {
	return append(f, Global...)
}

var (
	Global         = []cli.Flag{Config, Quiet, NoAnsi, Debug}
	ConfigFlagName = "config"
	Config         = cli.StringFlag{Name: abbr("c", ConfigFlagName), Usage: "use config file `FILE` instead of ~/.mkrelease"}
	QuietFlagName  = "quiet"
	Quiet          = cli.BoolFlag{Name: abbr("q", QuietFlagName), Usage: "suppress output of setuptools commands"}
	NoAnsiFlagName = "no-ansi"
	NoAnsi         = cli.BoolFlag{Name: NoAnsiFlagName, Usage: "do not use interactive mode (ANSI codes)"}
	DebugFlagName  = "debug"
	Debug          = cli.BoolFlag{Name: DebugFlagName, Usage: "print debug information to stderr"}
)

var (
	Steps            = []cli.Flag{NoCommit, NoTag, NoUpload, DryRun}
	NoCommitFlagName = "no-commit"
	NoCommit         = cli.BoolFlag{Name: abbr("C", NoCommitFlagName), Usage: "skip the commit step"}
	NoTagFlagName    = "no-tag"
	NoTag            = cli.BoolFlag{Name: abbr("T", NoTagFlagName), Usage: "skip the tag step"}
	NoUploadFlagName = "no-upload"
	NoUpload         = cli.BoolFlag{Name: abbr("S", NoUploadFlagName), Usage: "skip the upload step"}
	DryRunFlagName   = "dry-run"
	DryRun           = cli.BoolFlag{Name: abbr("n", DryRunFlagName), Usage: "dry-run; show what would be committed, tagged and uploaded"}
)

var (
	SCM            = []cli.Flag{Subversion, Mercurial, Git, Push}
	SubversionFlag = "svn"
	Subversion     = cli.BoolFlag{Name: SubversionFlag, Usage: "force the SCM type to Subversion"}
	MercurialFlag  = "hg"
	Mercurial      = cli.BoolFlag{Name: MercurialFlag, Usage: "force the SCM type to Mercurial"}
	GitFlag        = "git"
	Git            = cli.BoolFlag{Name: GitFlag, Usage: "force the SCM type to Git"}
	PushFlagName   = "push"
	Push           = cli.BoolFlag{Name: abbr("p", PushFlagName), Usage: "push commits and tags upstream (hg, git)"}
)

var (
	Dist                 = []cli.Flag{Sign, Identity, DistLocation, Zip, Gztar, Wheel, Develop, ListLocations}
	SignFlagName         = "sign"
	Sign                 = cli.BoolFlag{Name: abbr("s", SignFlagName), Usage: "sign the release with GnuPG"}
	IdentityFlagName     = "identity"
	Identity             = cli.StringFlag{Name: abbr("i", IdentityFlagName), Usage: "the GnuPG identity to sign with (implies -s)"}
	DistLocationFlagName = "dist-location"
	DistLocation         = cli.StringSliceFlag{Name: abbr("d", DistLocationFlagName), Usage: "upload the distribution to `LOCATION` (may be repeated)"}
	ZipFlagName          = "zip"
	Zip                  = cli.BoolFlag{Name: abbr("z", ZipFlagName), Usage: "create a zip archive"}
	GztarFlagName        = "gztar"
	Gztar                = cli.BoolFlag{Name: abbr("g", GztarFlagName), Usage: "create a gzipped tar archive"}
	WheelFlagName        = "wheel"
	Wheel                = cli.BoolFlag{Name: abbr("w", WheelFlagName), Usage: "create a wheel in addition to the source distribution"}
	DevelopFlagName      = "develop"
	Develop              = cli.BoolFlag{Name: abbr("e", DevelopFlagName), Usage: "allow version number extensions from setup.cfg"}
	ListLocationsName    = "list-locations"
	ListLocations        = cli.BoolFlag{Name: abbr("l", ListLocationsName), Usage: "list known dist-locations and exit"}
)
