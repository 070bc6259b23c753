package release

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/bmatcuk/doublestar"

	"github.com/fossas/mkrelease/errors"
	"github.com/fossas/mkrelease/exec"
)

// Wheel is the format name that requests a wheel next to the sdist.
const Wheel = "wheel"

// Metadata identifies the package being released.
type Metadata struct {
	Name    string
	Version string
}

// Packager builds and signs distributions with setuptools and GnuPG.
type Packager struct {
	Runner    exec.Runner
	PythonCmd string
	GPGCmd    string

	Formats []string
	// Develop keeps version number extensions (tag_build) from setup.cfg.
	Develop bool
	Quiet   bool
}

// NewPackager resolves the Python interpreter, preferring the configured
// python over the python3 and python commands.
func NewPackager(r exec.Runner, python string, formats []string) (*Packager, error) {
	cmd, version, err := exec.Which(r, "--version", python, "python3", "python")
	if err != nil {
		return nil, errors.Wrap(err, errors.User, "could not find Python").
			WithTroubleshooting("mkrelease runs setup.py with Python. Install Python 3 or set `python` in the [mkrelease] section of ~/.mkrelease.")
	}
	log.WithFields(log.Fields{"python": cmd, "version": version}).Debug("resolved python")
	return &Packager{
		Runner:    r,
		PythonCmd: cmd,
		GPGCmd:    "gpg",
		Formats:   formats,
	}, nil
}

func (p *Packager) setup(root string, argv ...string) (exec.Result, error) {
	return p.Runner.Run(exec.Cmd{
		Name: p.PythonCmd,
		Argv: append([]string{"setup.py"}, argv...),
		Dir:  root,
	})
}

// Metadata reads the package name and version from setup.py in root.
func (p *Packager) Metadata(root string) (Metadata, error) {
	result, err := p.setup(root, "--name", "--version")
	if err != nil {
		return Metadata{}, err
	}
	if !result.OK() {
		return Metadata{}, errors.New(errors.Command, "could not read package metadata in %s", root).
			WithTroubleshooting("`setup.py --name --version` failed:\n%s", strings.Join(result.Output(), "\n"))
	}

	// setuptools may print warnings before the values.
	var lines []string
	for _, line := range result.Stdout {
		if s := strings.TrimSpace(line); s != "" {
			lines = append(lines, s)
		}
	}
	if len(lines) < 2 {
		return Metadata{}, errors.New(errors.Command, "could not read package metadata in %s", root)
	}
	return Metadata{
		Name:    lines[len(lines)-2],
		Version: lines[len(lines)-1],
	}, nil
}

// Build creates the distributions in distDir and returns their paths.
func (p *Packager) Build(root, distDir string) ([]string, error) {
	var sdist []string
	wheel := false
	for _, f := range p.Formats {
		if f == Wheel {
			wheel = true
			continue
		}
		sdist = append(sdist, f)
	}

	var argv []string
	if p.Quiet {
		argv = append(argv, "-q")
	}
	if !p.Develop {
		argv = append(argv, "egg_info", "-RDb", "")
	}
	argv = append(argv, "sdist")
	if len(sdist) > 0 {
		argv = append(argv, "--formats="+strings.Join(sdist, ","))
	}
	argv = append(argv, "--dist-dir", distDir)
	if wheel {
		argv = append(argv, "bdist_wheel", "--dist-dir", distDir)
	}

	result, err := p.setup(root, argv...)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, errors.New(errors.Command, "could not build distribution in %s", root).
			WithTroubleshooting("setup.py failed:\n%s", strings.Join(result.Output(), "\n"))
	}

	artifacts, err := doublestar.Glob(filepath.Join(distDir, "*.{zip,tar.gz,tar.bz2,tar,whl}"))
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "could not list distributions in %s", distDir)
	}
	if len(artifacts) == 0 {
		return nil, errors.New(errors.Invariant, "setup.py created no distributions in %s", distDir)
	}
	sort.Strings(artifacts)
	log.WithField("artifacts", artifacts).Debug("built distributions")
	return artifacts, nil
}

// Sign creates a detached ASCII-armored signature for every artifact and
// returns the signature paths.
func (p *Packager) Sign(artifacts []string, identity string) ([]string, error) {
	var signatures []string
	for _, artifact := range artifacts {
		argv := []string{"--detach-sign", "-a"}
		if identity != "" {
			argv = append(argv, "-u", identity)
		}
		argv = append(argv, artifact)

		result, err := p.Runner.Run(exec.Cmd{Name: p.GPGCmd, Argv: argv})
		if err != nil {
			return nil, err
		}
		if !result.OK() {
			return nil, errors.New(errors.Command, "could not sign %s", filepath.Base(artifact)).
				WithTroubleshooting("gpg failed:\n%s", strings.Join(result.Output(), "\n"))
		}
		signatures = append(signatures, artifact+".asc")
	}
	return signatures, nil
}
