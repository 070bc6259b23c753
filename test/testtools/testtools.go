// Package testtools builds repository fixtures for tests.
package testtools

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"time"

	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
	"gopkg.in/src-d/go-git.v4/plumbing/object"
)

// Author signs fixture commits.
var Author = object.Signature{Name: "Stefan", Email: "stefan@example.com"}

// InitGit creates a Git repository in dir and commits files, keyed by
// slash-separated path, on master. It returns the hash of the commit.
func InitGit(dir string, files map[string]string) (plumbing.Hash, error) {
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return plumbing.ZeroHash, err
		}
		if err := ioutil.WriteFile(path, []byte(files[name]), 0644); err != nil {
			return plumbing.ZeroHash, err
		}
		if _, err := wt.Add(name); err != nil {
			return plumbing.ZeroHash, err
		}
	}

	author := Author
	author.When = time.Now()
	return wt.Commit("Initial.", &git.CommitOptions{Author: &author})
}
