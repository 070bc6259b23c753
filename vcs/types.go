package vcs

// Kind is a type of version control system.
type Kind int

const (
	_ Kind = iota
	Subversion
	Mercurial
	Git
)

// Kinds has every supported Kind, in the order backends are tried and listed.
var Kinds = [3]Kind{
	Subversion,
	Mercurial,
	Git,
}

// Name is the canonical short name, as accepted by Registry.FromType.
func (k Kind) Name() string {
	switch k {
	case Subversion:
		return "svn"
	case Mercurial:
		return "hg"
	case Git:
		return "git"
	default:
		return ""
	}
}

func (k Kind) String() string {
	return k.Name()
}

// Flag is the command-line flag that selects k.
func (k Kind) Flag() string {
	if k.Name() == "" {
		return ""
	}
	return "--" + k.Name()
}

// MetadataFolder is the folder a working copy of k keeps its metadata in.
func MetadataFolder(k Kind) string {
	switch k {
	case Subversion:
		return ".svn"
	case Mercurial:
		return ".hg"
	case Git:
		return ".git"
	default:
		return ""
	}
}

// BinaryEnv is the environment variable that overrides the binary of k.
func BinaryEnv(k Kind) string {
	switch k {
	case Subversion:
		return "SVN_BINARY"
	case Mercurial:
		return "HG_BINARY"
	case Git:
		return "GIT_BINARY"
	default:
		return ""
	}
}

// Revision identifies the head of a sandbox.
type Revision struct {
	Branch     string
	RevisionID string
}
