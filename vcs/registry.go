package vcs

import (
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/apex/log"

	"github.com/fossas/mkrelease/errors"
	"github.com/fossas/mkrelease/exec"
	"github.com/fossas/mkrelease/files"
	"github.com/fossas/mkrelease/urls"
)

// Registry selects the backend for a type name, URL or sandbox.
type Registry struct {
	backends []Backend
}

// NewRegistry returns a Registry whose backends run commands with r.
func NewRegistry(r exec.Runner) *Registry {
	var backends []Backend
	for _, k := range Kinds {
		backends = append(backends, New(k, r))
	}
	return &Registry{backends: backends}
}

// Backends returns every backend, in Kinds order.
func (reg *Registry) Backends() []Backend {
	return reg.backends
}

func (reg *Registry) backend(k Kind) Backend {
	for _, b := range reg.backends {
		if b.Kind() == k {
			return b
		}
	}
	panic("vcs: registry has no backend for " + k.Name())
}

// Get is the entry point: an explicit type name wins, then URLs and SSH
// shorthand go through FromURL and existing directories through FromSandbox.
func (reg *Registry) Get(typeName, urlOrDir string) (Backend, error) {
	if typeName != "" {
		return reg.FromType(typeName)
	}
	if urls.IsURL(urlOrDir) {
		return reg.FromURL(urlOrDir)
	}
	if files.IsFolder(urlOrDir) {
		return reg.FromSandbox(urlOrDir)
	}
	if urls.IsSSHURL(urlOrDir) {
		return reg.FromURL(urlOrDir)
	}
	return nil, errors.New(errors.User, "no such file or directory: %s", urlOrDir)
}

// FromType looks a backend up by its canonical name.
func (reg *Registry) FromType(name string) (Backend, error) {
	var names []string
	for _, b := range reg.backends {
		if b.Name() == name {
			return b, nil
		}
		names = append(names, b.Name())
	}

	err := errors.New(errors.User, "unsupported SCM type: %s", name)
	if guess := closest(name, names); guess != "" {
		return nil, err.WithTroubleshooting("Did you mean %q? Supported types are %s.", guess, strings.Join(names, ", "))
	}
	return nil, err.WithTroubleshooting("Supported types are %s.", strings.Join(names, ", "))
}

// FromURL picks a backend by URL scheme. Schemes shared by several backends
// are resolved with host (`hg.`), path (`/hg/`) and suffix (`.git`)
// conventions, in that order; if none applies the URL is ambiguous.
func (reg *Registry) FromURL(url string) (Backend, error) {
	scheme := urls.Scheme(url)
	switch scheme {
	case "svn", "svn+ssh":
		return reg.backend(Subversion), nil
	case "git", "git+ssh", "rsync":
		return reg.backend(Git), nil
	case "static-http":
		return reg.backend(Mercurial), nil
	case "file":
		found, err := reg.fromRepository(urls.Split(urls.Abspath(url)).LocalPath())
		if found != nil || err != nil {
			return found, err
		}
	}

	host, path := hostAndPath(url)
	if scheme == "" && urls.IsSSHURL(url) && strings.HasSuffix(path, ".git") {
		return reg.backend(Git), nil
	}

	var candidates []Backend
	for _, b := range reg.backends {
		if b.IsValidURL(url) {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New(errors.User, "unsupported URL: %s", url)
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	if b := guessFromURL(candidates, host, path); b != nil {
		log.WithFields(log.Fields{"url": url, "scm": b.Name()}).Debug("guessed backend from URL")
		return b, nil
	}
	return nil, ambiguous(candidates, "cannot determine SCM type from URL: %s", url)
}

func hostAndPath(url string) (string, string) {
	if urls.IsURL(url) {
		p := urls.Split(url)
		return p.Host, p.Path
	}
	if urls.IsSSHURL(url) {
		i := strings.Index(url, ":")
		host := url[:i]
		if at := strings.LastIndex(host, "@"); at >= 0 {
			host = host[at+1:]
		}
		return host, "/" + strings.TrimPrefix(url[i+1:], "/")
	}
	return "", url
}

func guessFromURL(candidates []Backend, host, path string) Backend {
	find := func(match func(k Kind) bool) Backend {
		for _, b := range candidates {
			if match(b.Kind()) {
				return b
			}
		}
		return nil
	}
	if b := find(func(k Kind) bool { return strings.HasPrefix(host, k.Name()+".") }); b != nil {
		return b
	}
	if b := find(func(k Kind) bool { return strings.HasPrefix(path, "/"+k.Name()+"/") }); b != nil {
		return b
	}
	return find(func(k Kind) bool { return k == Git && strings.HasSuffix(strings.TrimSuffix(path, "/"), ".git") })
}

// fromRepository recognizes local repositories named by file: URLs.
func (reg *Registry) fromRepository(dir string) (Backend, error) {
	if !files.IsFolder(dir) {
		return nil, nil
	}
	var matches []Backend
	for _, k := range Kinds {
		if isRepository(k, dir) {
			matches = append(matches, reg.backend(k))
		}
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, ambiguous(matches, "cannot determine SCM type from repository: %s", dir)
	}
}

func isRepository(k Kind, dir string) bool {
	switch k {
	case Subversion:
		return files.IsFile(dir, "format") && files.IsFolder(dir, "db")
	case Mercurial:
		return files.IsFolder(dir, MetadataFolder(Mercurial))
	case Git:
		return files.IsFolder(dir, MetadataFolder(Git)) ||
			(files.IsFile(dir, "HEAD") && files.IsFolder(dir, "objects"))
	default:
		return false
	}
}

// FromSandbox asks every backend. A directory can hold the metadata of
// more than one VCS, in which case the caller has to pick.
func (reg *Registry) FromSandbox(dir string) (Backend, error) {
	var matches []Backend
	for _, b := range reg.backends {
		if b.IsValidSandbox(dir) {
			matches = append(matches, b)
		}
	}
	switch len(matches) {
	case 0:
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}
		return nil, errors.New(errors.User, "not a sandbox: %s", abs).
			WithTroubleshooting("Run mkrelease inside a Subversion, Mercurial or Git working copy, or pass a repository URL.")
	case 1:
		return matches[0], nil
	default:
		return nil, ambiguous(matches, "cannot determine SCM type from sandbox: %s", dir)
	}
}

func ambiguous(matches []Backend, format string, args ...interface{}) *errors.Error {
	var names, flags []string
	for _, b := range matches {
		names = append(names, b.Name())
		flags = append(flags, b.Kind().Flag())
	}
	err := errors.New(errors.Ambiguity, format, args...)
	err.Message += " (matches " + strings.Join(names, ", ") + "; specify " + orList(flags) + ")"
	return err.WithTroubleshooting("More than one SCM type fits. Please specify %s.", orList(flags))
}

func orList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " or " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
	}
}

// closest returns the candidate within edit distance 2 of s, if any.
func closest(s string, candidates []string) string {
	best, bestDist := "", 3
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(s, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
