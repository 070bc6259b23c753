package vcs

import (
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/apex/log"

	"github.com/fossas/mkrelease/errors"
	"github.com/fossas/mkrelease/exec"
	"github.com/fossas/mkrelease/files"
	"github.com/fossas/mkrelease/urls"
)

var (
	svnVersionRegex = regexp.MustCompile(`svn, version (\d+\.\d+\S*)`)

	// svnLayoutRegex splits a URL at its first trunk, branches/X or tags/X
	// segment.
	svnLayoutRegex = regexp.MustCompile(`^(.*?)/(trunk|branches/[^/]+|tags/[^/]+)(/.*)?$`)

	svnSchemes = []string{"svn", "svn+ssh", "http", "https", "file"}
)

// Subversion status rules. Column 1 is the item state, column 2 the property
// state and column 7 the tree-conflict flag.
const (
	svnDirtyItem     = "ADMR"
	svnDirtyProps    = "M"
	svnUncleanItem   = "ACDMR!~"
	svnUncleanProps  = "CM"
	svnTreeConflict  = 'C'
	svnURLPrefix     = "URL: "
	svnRootPrefix    = "Working Copy Root Path: "
	svnMinRootInInfo = "1.7"
)

// SubversionBackend is the URL-addressed backend. Branches and tags are
// full URLs following the trunk/branches/tags layout.
type SubversionBackend struct {
	tool
}

// NewSubversion returns the Subversion backend.
func NewSubversion(r exec.Runner) *SubversionBackend {
	return &SubversionBackend{tool: newTool(Subversion, r)}
}

func (s *SubversionBackend) Kind() Kind   { return Subversion }
func (s *SubversionBackend) Name() string { return Subversion.Name() }

func (s *SubversionBackend) Version() string {
	return s.version(svnVersionRegex)
}

func (s *SubversionBackend) IsValidURL(url string) bool {
	return hasScheme(url, svnSchemes)
}

// IsValidSandbox checks for a .svn folder in dir or any ancestor, since
// Subversion 1.7 and later only keep one at the working copy root.
func (s *SubversionBackend) IsValidSandbox(dir string) bool {
	if !files.IsFolder(dir) {
		return false
	}
	_, err := files.FindUp(dir, MetadataFolder(Subversion))
	return err == nil
}

func (s *SubversionBackend) IsDirtySandbox(dir string) (bool, error) {
	lines, err := s.query(dir, "status", "status")
	if err != nil {
		return false, err
	}
	return svnStatusDirty(lines), nil
}

func (s *SubversionBackend) IsUncleanSandbox(dir string) (bool, error) {
	lines, err := s.query(dir, "status", "status")
	if err != nil {
		return false, err
	}
	return svnStatusUnclean(lines), nil
}

func svnStatusDirty(lines []string) bool {
	for _, line := range lines {
		if len(line) < 2 {
			continue
		}
		if strings.IndexByte(svnDirtyItem, line[0]) >= 0 || strings.IndexByte(svnDirtyProps, line[1]) >= 0 {
			return true
		}
	}
	return false
}

func svnStatusUnclean(lines []string) bool {
	for _, line := range lines {
		if len(line) < 2 {
			continue
		}
		if strings.IndexByte(svnUncleanItem, line[0]) >= 0 || strings.IndexByte(svnUncleanProps, line[1]) >= 0 {
			return true
		}
		if len(line) > 6 && line[6] == svnTreeConflict {
			return true
		}
	}
	return false
}

func (s *SubversionBackend) info(dir string) ([]string, error) {
	return s.query(dir, "info", "info")
}

func (s *SubversionBackend) RootFromSandbox(dir string) (string, error) {
	lines, err := s.info(dir)
	if err != nil {
		return "", err
	}
	if root, ok := prefixed(lines, svnRootPrefix); ok {
		return root, nil
	}

	// Older clients keep .svn in every directory and don't report the root.
	if v := s.Version(); v != "" && VersionAtLeast(v, svnMinRootInInfo) {
		return "", errors.New(errors.Query, "could not get working copy root from %s", dir)
	}
	root, err := files.FindTop(dir, MetadataFolder(Subversion))
	if err != nil {
		return dir, nil
	}
	return root, nil
}

func (s *SubversionBackend) URLFromSandbox(dir string) (string, error) {
	lines, err := s.info(dir)
	if err != nil {
		return "", err
	}
	url, ok := prefixed(lines, svnURLPrefix)
	if !ok {
		return "", errors.New(errors.Query, "could not get URL from %s", dir)
	}
	return url, nil
}

// BranchFromSandbox returns the URL up to and including the trunk,
// branches/X or tags/X segment.
func (s *SubversionBackend) BranchFromSandbox(dir string) (string, error) {
	url, err := s.URLFromSandbox(dir)
	if err != nil {
		return "", err
	}
	base, segment, err := svnSplitLayout(url)
	if err != nil {
		return "", err
	}
	return base + "/" + segment, nil
}

func svnSplitLayout(url string) (base, segment string, err error) {
	m := svnLayoutRegex.FindStringSubmatch(url)
	if m == nil {
		return "", "", errors.New(errors.Invariant, "URL must point to trunk, a branch, or a tag: %s", url).
			WithTroubleshooting("The tag location is derived from the trunk/branches/tags layout of the repository. Switch the sandbox to trunk or a branch, or pass a URL that contains one.")
	}
	return m[1], m[2], nil
}

// IsRemoteSandbox is always true: every Subversion commit goes to the server.
func (s *SubversionBackend) IsRemoteSandbox(dir string) bool {
	return true
}

// CommitSandbox commits to the repository. push has no meaning here.
func (s *SubversionBackend) CommitSandbox(dir, name, version string, push bool) error {
	_, err := s.mutate(dir, "commit", "commit", "-m", commitMessage(name, version))
	return err
}

func (s *SubversionBackend) CloneURL(url, dir string) error {
	_, err := s.mutate("", "check out "+url, "checkout", url, dir)
	return err
}

func (s *SubversionBackend) MakeBranchID(dir, name string) (string, error) {
	url, err := s.URLFromSandbox(dir)
	if err != nil {
		return "", err
	}
	base, _, err := svnSplitLayout(url)
	if err != nil {
		return "", err
	}
	if name == "trunk" {
		return base + "/trunk", nil
	}
	return base + "/branches/" + name, nil
}

func (s *SubversionBackend) MakeTagID(dir, version string) (string, error) {
	url, err := s.URLFromSandbox(dir)
	if err != nil {
		return "", err
	}
	base, _, err := svnSplitLayout(url)
	if err != nil {
		return "", err
	}
	return base + "/tags/" + version, nil
}

func (s *SubversionBackend) BranchExists(dir, branchid string) bool {
	return s.ok(dir, "ls", branchid)
}

func (s *SubversionBackend) TagExists(dir, tagid string) bool {
	return s.ok(dir, "ls", tagid)
}

func (s *SubversionBackend) SwitchBranch(dir, branchid string) error {
	current, err := s.URLFromSandbox(dir)
	if err != nil {
		return err
	}
	if strings.TrimSuffix(current, "/") == strings.TrimSuffix(branchid, "/") {
		return nil
	}
	if err := CheckBranchExists(s, dir, branchid); err != nil {
		return err
	}
	_, err = s.mutate(dir, "switch to "+branchid, "switch", branchid)
	return err
}

// CreateTag copies the current branch to tagid.
//
// `svn copy` into an existing directory succeeds by copying into a
// subdirectory of it, so the existence of tagid is checked first and an
// existing tag is an error.
func (s *SubversionBackend) CreateTag(dir, tagid, name, version string, push bool) error {
	if err := CheckTagExists(s, dir, tagid); err != nil {
		return err
	}
	branch, err := s.BranchFromSandbox(dir)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"from": branch, "tag": tagid}).Debug("copying branch to tag")
	_, err = s.mutate(dir, "create tag "+tagid, "copy", "-m", tagMessage(name, version), branch, tagid)
	return err
}

func (s *SubversionBackend) Head(dir string) (Revision, error) {
	result, err := s.run(dir, "info", "--xml")
	if err != nil {
		return Revision{}, err
	}
	if !result.OK() {
		return Revision{}, failure(errors.Query, result, "could not get info from %s", dir)
	}
	var info svnInfo
	if err := info.unmarshalXML([]byte(strings.Join(result.Stdout, "\n"))); err != nil {
		return Revision{}, errors.Wrap(err, errors.Query, "could not parse info from %s", dir)
	}
	return Revision{
		Branch:     svnBranchFromInfo(&info),
		RevisionID: info.Entry.Revision,
	}, nil
}

// svnBranchFromInfo extracts the name of the branch from the info provided.
func svnBranchFromInfo(info *svnInfo) string {
	relativeURL := strings.TrimPrefix(info.Entry.RelativeURL, "^")

	// trimmed has just what follows the path of the URL locating the project.
	trimmed := strings.TrimPrefix(
		strings.TrimPrefix(info.Entry.URL, info.Entry.Repository.Root),
		relativeURL,
	)

	for _, prefix := range []string{"/branches/", "/tags/"} {
		if strings.HasPrefix(trimmed, prefix) {
			trimmed = strings.TrimPrefix(trimmed, prefix)
			return strings.SplitN(trimmed, "/", 2)[0]
		}
	}
	if m := svnLayoutRegex.FindStringSubmatch(info.Entry.URL); m != nil {
		if m[2] == "trunk" {
			return "trunk"
		}
		return m[2][strings.Index(m[2], "/")+1:]
	}

	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed != "" {
		return trimmed
	}
	return "trunk"
}

// The svnInfo type represents the result of running `svn info --xml`.
type svnInfo struct {
	Entry infoEntry `xml:"entry"`
}

type infoEntry struct {
	Path string `xml:"path,attr"`

	// Revision is the latest revision ID, a numeric string.
	Revision string `xml:"revision,attr"`
	Kind     string `xml:"kind,attr"`

	// URL is the remote location from which the repo can be downloaded.
	URL         string `xml:"url"`
	RelativeURL string `xml:"relative-url"`
	Repository  struct {
		Root string `xml:"root"`
		UUID string `xml:"uuid"`
	} `xml:"repository"`
	WcInfo struct {
		WcrootAbspath string `xml:"wcroot-abspath"`
		Schedule      string `xml:"schedule"`
		Depth         string `xml:"depth"`
	} `xml:"wc-info"`
}

func (s *svnInfo) unmarshalXML(data []byte) error {
	return xml.Unmarshal(data, s)
}

func hasScheme(url string, schemes []string) bool {
	scheme := urls.Scheme(url)
	for _, s := range schemes {
		if scheme == s {
			return true
		}
	}
	return false
}
