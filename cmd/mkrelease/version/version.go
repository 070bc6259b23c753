// Package version reports the build metadata set by linker flags.
package version

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blang/semver"
)

var (
	BuildType string
	Version   string
	Commit    string
	GoVersion string
)

var errDevelopment = errors.New("development builds have no release version")

func IsDevelopment() bool {
	return BuildType == "development"
}

// String is printed by `mkrelease --version`. Release builds show their
// normalized semantic version.
func String() string {
	if IsDevelopment() {
		return fmt.Sprintf("development build (revision %s compiled with %s)", Commit, GoVersion)
	}
	v, err := Semver()
	if err != nil {
		if Version == "" {
			return "unknown"
		}
		return Version
	}
	if Commit == "" {
		return v.String()
	}
	return fmt.Sprintf("%s (revision %s)", v, Commit)
}

// ShortString is a single word identifying the build.
func ShortString() string {
	if IsDevelopment() {
		return Commit
	}
	return Version
}

// Semver parses Version, which may carry a leading "v".
func Semver() (semver.Version, error) {
	if IsDevelopment() {
		return semver.Version{}, errDevelopment
	}
	return semver.Parse(strings.TrimPrefix(Version, "v"))
}
