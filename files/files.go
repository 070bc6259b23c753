// Package files implements utility routines for finding and reading files.
package files

import (
	"os"
	"path/filepath"

	"github.com/apex/log"
)

func fileMode(elem ...string) (os.FileMode, error) {
	file, err := os.Stat(filepath.Join(elem...))
	if err != nil {
		return 0, err
	}

	return file.Mode(), nil
}

func Exists(pathElems ...string) (bool, error) {
	mode, err := fileMode(pathElems...)
	if notExistErr(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return mode.IsRegular(), nil
}

func ExistsFolder(pathElems ...string) (bool, error) {
	mode, err := fileMode(pathElems...)
	if notExistErr(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return mode.IsDir(), nil
}

// IsFolder is ExistsFolder for callers that treat errors as absence.
func IsFolder(pathElems ...string) bool {
	ok, err := ExistsFolder(pathElems...)
	if err != nil {
		log.WithError(err).WithField("path", filepath.Join(pathElems...)).Debug("could not stat folder")
	}
	return ok && err == nil
}

// IsFile is Exists for callers that treat errors as absence.
func IsFile(pathElems ...string) bool {
	ok, err := Exists(pathElems...)
	return ok && err == nil
}

// os.IsNotExist doesn't handle non-existent parent directories e.g.
// stat /some/path/without/a/parent.json: not a directory
func notExistErr(err error) bool {
	if os.IsNotExist(err) {
		return true
	}
	if _, ok := err.(*os.PathError); ok {
		return true
	}
	return false
}

func Rm(pathElems ...string) error {
	return os.RemoveAll(filepath.Join(pathElems...))
}
