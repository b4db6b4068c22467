package internal

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Set at build time with -ldflags.
var (
	Version    = "0.4.0"
	Prerelease = ""
	Metadata   = "dev"
	Commit     = ""
	Date       = ""
)

// FullVersion returns the semver version of the build. Development builds
// report the next patch version, so they compare newer than the release they
// were built from.
func FullVersion() string {
	v, err := semver.NewVersion(Version)
	if err != nil {
		panic(fmt.Sprintf("invalid version %v: %v", Version, err))
	}

	if Metadata == "dev" {
		*v = v.IncPatch()
	}

	*v, _ = v.SetPrerelease(Prerelease)
	*v, _ = v.SetMetadata(Metadata)

	return v.String()
}
