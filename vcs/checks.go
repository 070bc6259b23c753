package vcs

import (
	"github.com/fossas/mkrelease/errors"
)

// The Check functions turn backend predicates into fatal, user-facing errors.

// CheckValidURL fails if b does not accept url.
func CheckValidURL(b Backend, url string) error {
	if !b.IsValidURL(url) {
		return errors.New(errors.User, "invalid %s URL: %s", b.Name(), url)
	}
	return nil
}

// CheckValidSandbox fails if dir is not a working copy of b.
func CheckValidSandbox(b Backend, dir string) error {
	if !b.IsValidSandbox(dir) {
		return errors.New(errors.User, "not a %s sandbox: %s", b.Name(), dir)
	}
	return nil
}

// CheckDirtySandbox fails if dir has uncommitted changes.
func CheckDirtySandbox(b Backend, dir string) error {
	dirty, err := b.IsDirtySandbox(dir)
	if err != nil {
		return err
	}
	if dirty {
		return errors.New(errors.User, "uncommitted changes in %s", dir).
			WithTroubleshooting("Commit the changes, or run without --no-commit to let mkrelease commit them.")
	}
	return nil
}

// CheckUncleanSandbox fails if dir is dirty or in a conflicted or otherwise
// inconsistent state.
func CheckUncleanSandbox(b Backend, dir string) error {
	unclean, err := b.IsUncleanSandbox(dir)
	if err != nil {
		return err
	}
	if unclean {
		return errors.New(errors.User, "uncommitted changes or conflicts in %s", dir).
			WithTroubleshooting("Commit or revert local changes and resolve conflicts before releasing. Run `%s status` in the sandbox to see them.", b.Name())
	}
	return nil
}

// CheckTagExists fails if tagid already exists. It is the assertion run right
// before a tag is created.
func CheckTagExists(b Backend, dir, tagid string) error {
	if b.TagExists(dir, tagid) {
		return errors.New(errors.User, "tag exists: %s", tagid).
			WithTroubleshooting("Bump the package version, or remove the existing tag if it was created by mistake.")
	}
	return nil
}

// CheckBranchExists fails if branchid does not exist.
func CheckBranchExists(b Backend, dir, branchid string) error {
	if !b.BranchExists(dir, branchid) {
		return errors.New(errors.User, "no such branch or tag: %s", branchid)
	}
	return nil
}

// CheckRemoteSandbox fails if dir has no remote to push to.
func CheckRemoteSandbox(b Backend, dir string) error {
	if !b.IsRemoteSandbox(dir) {
		return errors.New(errors.User, "no remote configured for %s", dir).
			WithTroubleshooting("Configure a default push location for the sandbox, or run without --push.")
	}
	return nil
}
