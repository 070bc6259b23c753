// Package location expands upload destination names into concrete targets.
//
// A name is an alias, an index server from ~/.pypirc, a URL, an scp-style
// `[user@]host:path`, or a bare path joined onto the configured distbase.
// Aliases may refer to other aliases and expand depth-first, left to right,
// with duplicates kept.
package location

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/apex/log"

	"github.com/fossas/mkrelease/errors"
	"github.com/fossas/mkrelease/urls"
)

// MaxAliasDepth is the default bound on nested alias expansion.
const MaxAliasDepth = 23

// PyPI is the name of the Python Package Index server.
const PyPI = "pypi"

var uploadSchemes = []string{"scp", "sftp", "ssh"}

// Resolver resolves location names against configured aliases and servers.
type Resolver struct {
	Aliases     map[string][]string
	Servers     []string
	DistBase    string
	DistDefault []string

	// MaxAliasDepth bounds alias nesting. Zero means the package default.
	MaxAliasDepth int
}

// Entry is one alias or server, as listed by `mkrelease --list-locations`.
type Entry struct {
	Name    string
	Kind    string
	Targets []string
}

// Get resolves name into a list of upload targets.
func (r *Resolver) Get(name string) ([]string, error) {
	return r.get(name, nil)
}

func (r *Resolver) get(name string, path []string) ([]string, error) {
	if name == "" {
		return nil, nil
	}

	if targets, ok := r.Aliases[name]; ok {
		for _, seen := range path {
			if seen == name {
				return nil, errors.New(errors.Recursion, "alias cycle: %s", strings.Join(append(path, name), " -> ")).
					WithTroubleshooting("Alias %q refers back to itself. Check the [aliases] section of your configuration.", name)
			}
		}
		if len(path) >= r.maxDepth() {
			return nil, errors.New(errors.Recursion, "maximum alias depth exceeded: %s", name).
				WithTroubleshooting("Aliases nest more than %d levels deep. Raise maxaliasdepth or flatten the [aliases] section.", r.maxDepth())
		}

		log.WithFields(log.Fields{"alias": name, "targets": targets}).Debug("expanding alias")
		path = append(path, name)
		var locations []string
		for _, target := range targets {
			expanded, err := r.get(target, path)
			if err != nil {
				return nil, err
			}
			locations = append(locations, expanded...)
		}
		return locations, nil
	}

	switch {
	case r.IsServer(name):
		return []string{name}, nil
	case name == PyPI:
		return nil, errors.New(errors.User, "no index server named %s", PyPI).
			WithTroubleshooting("Add %s to the index-servers of the [distutils] section in ~/.pypirc.", PyPI)
	case urls.IsURL(name), r.HasHost(name):
		return []string{name}, nil
	case r.DistBase != "":
		return []string{r.Join(r.DistBase, name)}, nil
	default:
		return []string{name}, nil
	}
}

func (r *Resolver) maxDepth() int {
	if r.MaxAliasDepth > 0 {
		return r.MaxAliasDepth
	}
	return MaxAliasDepth
}

// Default resolves every distdefault entry.
func (r *Resolver) Default() ([]string, error) {
	var locations []string
	for _, name := range r.DistDefault {
		expanded, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		locations = append(locations, expanded...)
	}
	return locations, nil
}

// IsServer reports whether name is a configured index server.
func (r *Resolver) IsServer(name string) bool {
	for _, s := range r.Servers {
		if s == name {
			return true
		}
	}
	return false
}

// HasHost reports whether location starts with a `host:` prefix.
func (r *Resolver) HasHost(location string) bool {
	return urls.HasHost(location)
}

// Join appends name to base, adding a slash unless base ends in `/` or `:`.
func (r *Resolver) Join(base, name string) string {
	if strings.HasSuffix(base, "/") || strings.HasSuffix(base, ":") {
		return base + name
	}
	return base + "/" + name
}

// CheckValid fails on the first location that is not an index server, an
// scp-style destination, or an scp://, sftp:// or ssh:// URL.
func (r *Resolver) CheckValid(locations []string) error {
	for _, location := range locations {
		if r.valid(location) {
			continue
		}
		err := errors.New(errors.User, "unknown location: %s", location)
		if guess := r.closest(location); guess != "" {
			return err.WithTroubleshooting("Did you mean %q? Run `mkrelease --list-locations` to see configured locations.", guess)
		}
		return err.WithTroubleshooting("Run `mkrelease --list-locations` to see configured locations.")
	}
	return nil
}

func (r *Resolver) valid(location string) bool {
	if r.IsServer(location) {
		return true
	}
	if scheme := urls.Scheme(location); scheme != "" {
		for _, s := range uploadSchemes {
			if scheme == s {
				return true
			}
		}
		return false
	}
	return r.HasHost(location)
}

// closest returns the alias or server name within edit distance 2 of s.
func (r *Resolver) closest(s string) string {
	best, bestDist := "", 3
	for _, e := range r.List() {
		if d := levenshtein.ComputeDistance(s, e.Name); d < bestDist {
			best, bestDist = e.Name, d
		}
	}
	return best
}

// CheckEmpty fails if there is nowhere to upload to.
func (r *Resolver) CheckEmpty(locations []string) error {
	if len(locations) == 0 {
		return errors.New(errors.User, "no upload locations").
			WithTroubleshooting("Pass a location with -d, set distdefault in ~/.mkrelease, or skip the upload with -S.")
	}
	return nil
}

// List returns every alias followed by every server, each sorted by name.
func (r *Resolver) List() []Entry {
	var aliases []Entry
	for name, targets := range r.Aliases {
		aliases = append(aliases, Entry{Name: name, Kind: "alias", Targets: targets})
	}
	sort.Slice(aliases, func(i, j int) bool { return aliases[i].Name < aliases[j].Name })

	servers := append([]string(nil), r.Servers...)
	sort.Strings(servers)

	entries := aliases
	for _, s := range servers {
		entries = append(entries, Entry{Name: s, Kind: "server"})
	}
	return entries
}
