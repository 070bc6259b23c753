// Package release sequences a release: commit, tag, build and upload.
//
// Each step runs only if the previous one succeeded. Failures abort the
// release without rolling back earlier steps.
package release

import (
	"path/filepath"

	"github.com/apex/log"
	"github.com/spf13/afero"

	"github.com/fossas/mkrelease/errors"
	"github.com/fossas/mkrelease/files"
	"github.com/fossas/mkrelease/location"
	"github.com/fossas/mkrelease/urls"
	"github.com/fossas/mkrelease/vcs"
)

// Options select what a release does.
type Options struct {
	// SCMType forces a backend by name. Empty means detect.
	SCMType string
	// Target is a sandbox directory or a repository URL.
	Target string

	Commit bool
	Tag    bool
	Upload bool
	DryRun bool
	Push   bool

	Sign     bool
	Identity string

	// Locations are resolved upload targets.
	Locations []string
}

// Releaser runs releases.
type Releaser struct {
	Registry *vcs.Registry
	Resolver *location.Resolver
	Packager *Packager
	Uploader *Uploader
	// Fs holds temporary directories. Nil means the OS filesystem.
	Fs afero.Fs

	// Progress, if set, is called with a message before each long step.
	Progress func(message string)
}

func (r *Releaser) progress(message string) {
	log.Debug(message)
	if r.Progress != nil {
		r.Progress(message)
	}
}

func (r *Releaser) tempDir(prefix string) (string, func(), error) {
	fs := r.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	dir, err := afero.TempDir(fs, "", prefix)
	if err != nil {
		return "", nil, errors.Wrap(err, errors.Unknown, "could not create temporary directory")
	}
	return dir, func() {
		if err := fs.RemoveAll(dir); err != nil {
			log.WithError(err).WithField("dir", dir).Warn("could not remove temporary directory")
		}
	}, nil
}

// Run performs a release. Temporary directories are removed before it
// returns.
func (r *Releaser) Run(opts Options) error {
	if opts.Upload {
		if err := r.Resolver.CheckEmpty(opts.Locations); err != nil {
			return err
		}
		if err := r.Resolver.CheckValid(opts.Locations); err != nil {
			return err
		}
	}

	b, err := r.Registry.Get(opts.SCMType, opts.Target)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"scm": b.Name(), "version": b.Version()}).Debug("selected backend")

	dir := opts.Target
	commit := opts.Commit
	if isRemote(opts.Target) {
		if err := vcs.CheckValidURL(b, opts.Target); err != nil {
			return err
		}
		tmp, cleanup, err := r.tempDir("mkrelease-")
		if err != nil {
			return err
		}
		defer cleanup()

		dir = filepath.Join(tmp, "checkout")
		r.progress("Checking out " + opts.Target)
		if err := b.CloneURL(opts.Target, dir); err != nil {
			return err
		}
		// A fresh checkout has nothing to commit.
		commit = false
	}

	if err := vcs.CheckValidSandbox(b, dir); err != nil {
		return err
	}
	root, err := b.RootFromSandbox(dir)
	if err != nil {
		return err
	}
	meta, err := r.Packager.Metadata(root)
	if err != nil {
		return err
	}
	log.Infof("Releasing %s %s", meta.Name, meta.Version)

	if opts.Push && (commit || opts.Tag) {
		if err := vcs.CheckRemoteSandbox(b, root); err != nil {
			return err
		}
	}

	pendingCommit := false
	if !commit {
		if err := vcs.CheckDirtySandbox(b, root); err != nil {
			return err
		}
	} else {
		dirty, err := b.IsDirtySandbox(root)
		if err != nil {
			return err
		}
		if dirty {
			if opts.DryRun {
				log.Infof("Would commit %s", root)
				pendingCommit = true
			} else {
				r.progress("Committing " + root)
				if err := b.CommitSandbox(root, meta.Name, meta.Version, opts.Push); err != nil {
					return err
				}
			}
		}
	}

	if !pendingCommit {
		if err := vcs.CheckUncleanSandbox(b, root); err != nil {
			return err
		}
	}

	if opts.Tag {
		if err := r.tag(b, root, meta, opts); err != nil {
			return err
		}
	}

	if !opts.Upload {
		return nil
	}

	distDir, cleanup, err := r.tempDir("mkrelease-dist-")
	if err != nil {
		return err
	}
	defer cleanup()

	r.progress("Building " + meta.Name + " " + meta.Version)
	artifacts, err := r.Packager.Build(root, distDir)
	if err != nil {
		return err
	}
	if opts.Sign {
		r.progress("Signing distributions")
		signatures, err := r.Packager.Sign(artifacts, opts.Identity)
		if err != nil {
			return err
		}
		artifacts = append(artifacts, signatures...)
	}

	for _, loc := range opts.Locations {
		if opts.DryRun {
			log.Infof("Would upload %d files to %s", len(artifacts), loc)
			continue
		}
		r.progress("Uploading to " + loc)
		if err := r.Uploader.Upload(loc, artifacts); err != nil {
			return err
		}
		log.Infof("Uploaded to %s", loc)
	}
	return nil
}

func (r *Releaser) tag(b vcs.Backend, root string, meta Metadata, opts Options) error {
	tagid, err := b.MakeTagID(root, meta.Version)
	if err != nil {
		return err
	}
	if err := vcs.CheckTagExists(b, root, tagid); err != nil {
		return err
	}

	head, err := b.Head(root)
	if err != nil {
		log.WithError(err).Debug("could not read head revision")
	} else {
		log.WithFields(log.Fields{"branch": head.Branch, "revision": head.RevisionID}).Debug("tagging head")
	}

	if opts.DryRun {
		log.Infof("Would tag %s as %s", root, tagid)
		return nil
	}
	r.progress("Tagging " + tagid)
	if err := b.CreateTag(root, tagid, meta.Name, meta.Version, opts.Push); err != nil {
		return err
	}
	log.Infof("Tagged %s", tagid)
	return nil
}

// isRemote reports whether target names a repository rather than a local
// sandbox.
func isRemote(target string) bool {
	if urls.IsURL(target) {
		return true
	}
	return !files.IsFolder(target) && urls.IsSSHURL(target)
}
