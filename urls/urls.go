// Package urls classifies repository and location identifiers without
// consulting any VCS.
//
// Every function is total: input without a scheme yields the unclassified
// result (an empty scheme, or Parts with only Path set) instead of an error.
// Paths, queries and fragments are kept percent-encoded.
package urls

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mitchellh/go-homedir"
)

var schemeRegex = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.-]*)://`)

// Parts are the components of a URL.
type Parts struct {
	Scheme   string
	User     string
	Host     string
	Path     string
	Query    string
	Fragment string
}

// Scheme returns the lower-cased scheme of s, or "" if s is not a URL.
// `file:` is recognized with or without `//`.
func Scheme(s string) string {
	if m := schemeRegex.FindStringSubmatch(s); m != nil {
		return strings.ToLower(m[1])
	}
	if strings.HasPrefix(strings.ToLower(s), "file:") {
		return "file"
	}
	return ""
}

// IsURL reports whether s has a scheme. Strings are not trimmed.
func IsURL(s string) bool {
	return Scheme(s) != ""
}

// Split decomposes s. Strings without a scheme return Parts{Path: s}. URLs
// that net/url rejects, such as ones with a bad percent escape, are split on
// their delimiters instead.
func Split(s string) Parts {
	scheme := Scheme(s)
	if scheme == "" {
		return Parts{Path: s}
	}

	u, err := url.Parse(s)
	if err != nil {
		return splitRaw(s, scheme)
	}

	p := Parts{
		Scheme:   scheme,
		Host:     u.Host,
		Path:     u.EscapedPath(),
		Query:    u.RawQuery,
		Fragment: u.EscapedFragment(),
	}
	if u.Opaque != "" {
		// file:relative/path
		p.Path = u.Opaque
	}
	if u.User != nil {
		p.User = u.User.String()
	}
	return p
}

func splitRaw(s, scheme string) Parts {
	p := Parts{Scheme: scheme}
	rest := s[strings.Index(s, ":")+1:]
	hierarchical := strings.HasPrefix(rest, "//")
	if hierarchical {
		rest = rest[2:]
	}

	if i := strings.Index(rest, "#"); i >= 0 {
		rest, p.Fragment = rest[:i], rest[i+1:]
	}
	if i := strings.Index(rest, "?"); i >= 0 {
		rest, p.Query = rest[:i], rest[i+1:]
	}
	if !hierarchical {
		p.Path = rest
		return p
	}

	authority := rest
	if i := strings.Index(rest, "/"); i >= 0 {
		authority, p.Path = rest[:i], rest[i:]
	}
	if at := strings.LastIndex(authority, "@"); at >= 0 {
		p.User, authority = authority[:at], authority[at+1:]
	}
	p.Host = authority
	return p
}

// LocalPath is the decoded path, for use on a filesystem. A path with a bad
// escape is returned as is.
func (p Parts) LocalPath() string {
	path, err := url.PathUnescape(p.Path)
	if err != nil {
		return p.Path
	}
	return path
}

// Join is the inverse of Split for URLs with a scheme.
func Join(p Parts) string {
	if p.Scheme == "" {
		return p.Path
	}
	var b strings.Builder
	b.WriteString(p.Scheme)
	b.WriteString("://")
	if p.User != "" {
		b.WriteString(p.User)
		b.WriteString("@")
	}
	b.WriteString(p.Host)
	if p.Path != "" && !strings.HasPrefix(p.Path, "/") && p.Host != "" {
		b.WriteString("/")
	}
	b.WriteString(p.Path)
	if p.Query != "" {
		b.WriteString("?")
		b.WriteString(p.Query)
	}
	if p.Fragment != "" {
		b.WriteString("#")
		b.WriteString(p.Fragment)
	}
	return b.String()
}

// Abspath makes local file: URLs absolute. `~` is expanded and relative
// paths are resolved against the current working directory. Anything other
// than a file: URL with an empty or `localhost` host is returned unchanged.
func Abspath(s string) string {
	p := Split(s)
	if p.Scheme != "file" || (p.Host != "" && p.Host != "localhost") {
		return s
	}

	path := p.LocalPath()
	if strings.HasPrefix(path, "/~") {
		path = path[1:]
	}
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return s
	}
	p.Path = (&url.URL{Path: filepath.ToSlash(abs)}).EscapedPath()
	p.User = ""
	return Join(p)
}

// HasHost reports whether s starts with a `host:` prefix, i.e. has a colon
// past the first character that is not preceded by a slash.
func HasHost(s string) bool {
	colon := strings.Index(s, ":")
	slash := strings.Index(s, "/")
	return colon > 0 && (slash < 0 || slash > colon)
}

// IsSSHURL reports whether s is in scp-style `[user@]host:path` form.
func IsSSHURL(s string) bool {
	return Scheme(s) == "" && HasHost(s)
}

// ToSSHURL rewrites ssh://, scp:// and sftp:// URLs into `[user@]host:path`
// form, returning the original scheme. Ports are dropped and a leading `/~`
// becomes `~`. Other strings, including ones already in shorthand form, are
// returned unchanged along with their scheme.
func ToSSHURL(s string) (string, string) {
	scheme := Scheme(s)
	switch scheme {
	case "ssh", "scp", "sftp":
	default:
		return scheme, s
	}

	p := Split(s)
	if p.Host == "" {
		return scheme, s
	}

	host := p.Host
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.HasSuffix(host, "]") {
		host = host[:i]
	}
	user := ""
	if p.User != "" {
		user = p.User + "@"
	}
	path := p.LocalPath()
	if strings.HasPrefix(path, "/~") {
		path = path[1:]
	}
	return scheme, user + host + ":" + path
}
