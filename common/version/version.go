// Package version implements prngkit software and report format versioning.
package version

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Version is a semantic version.
type Version struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
	Patch uint16 `json:"patch"`
}

// String returns the version as a string.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// MajorMinor extracts major and minor segments of the Version only.
//
// Report readers ignore the patch segment when checking compatibility.
func (v Version) MajorMinor() Version {
	return Version{
		Major: v.Major,
		Minor: v.Minor,
	}
}

var (
	// SoftwareVersion represents the prngkit software version and is
	// overridden at link time.
	SoftwareVersion = "0.0-unset"

	// ReportFormat versions the structure of reports written by the CLI.
	//
	// NOTE: Any change in the major or minor versions are considered
	//       breaking changes for report consumers.
	ReportFormat = Version{Major: 1, Minor: 0, Patch: 0}

	// Toolchain is the version of the Go compiler/standard library.
	Toolchain = parseSemVerStr(strings.TrimPrefix(runtime.Version(), "go"))
)

// Versions contains all known versions.
var Versions = struct {
	ReportFormat Version
	Toolchain    Version
}{
	ReportFormat,
	Toolchain,
}

// FromString parses a "major.minor[.patch]" version string.
func FromString(s string) (Version, error) {
	split := strings.Split(s, ".")
	if len(split) < 2 || len(split) > 3 {
		return Version{}, fmt.Errorf("version: malformed version: '%s'", s)
	}

	var semVers [3]uint16
	for i, v := range split {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return Version{}, fmt.Errorf("version: failed to parse '%s': %w", s, err)
		}
		semVers[i] = uint16(n)
	}

	return Version{Major: semVers[0], Minor: semVers[1], Patch: semVers[2]}, nil
}

func parseSemVerStr(s string) Version {
	// Development toolchains report things like "devel go1.22-abcdef".
	if i := strings.IndexAny(s, " -+"); i >= 0 {
		s = s[:i]
	}
	v, err := FromString(s)
	if err != nil {
		return Version{}
	}
	return v
}
