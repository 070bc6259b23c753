package files

import (
	"errors"
	"path/filepath"
)

// ErrNotFound is returned when no ancestor holds the folder being looked for.
var ErrNotFound = errors.New("folder not found in any parent directory")

// FindUp returns the nearest of dir and its ancestors that contains a folder
// called name.
func FindUp(dir, name string) (string, error) {
	for _, d := range ancestors(dir) {
		if IsFolder(d, name) {
			return d, nil
		}
	}
	return "", ErrNotFound
}

// FindTop returns the outermost directory of the unbroken chain of dir and
// its ancestors that all contain a folder called name. It fails if dir itself
// does not contain one.
func FindTop(dir, name string) (string, error) {
	top := ""
	for _, d := range ancestors(dir) {
		if !IsFolder(d, name) {
			break
		}
		top = d
	}
	if top == "" {
		return "", ErrNotFound
	}
	return top, nil
}

// ancestors lists the absolute form of dir followed by each of its parents,
// ending at the filesystem root.
func ancestors(dir string) []string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil
	}
	dirs := []string{abs}
	for abs != filepath.Dir(abs) {
		abs = filepath.Dir(abs)
		dirs = append(dirs, abs)
	}
	return dirs
}
