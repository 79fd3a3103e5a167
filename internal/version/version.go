package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the service version. It is also the target schema version the
// migrator upgrades a database to.
var Version = "0.3.0"

// DevVersion is the suffix used in dev mode.
var DevVersion = Version + "-dev"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}

// GetSchemaVersion strips any prerelease suffix; schema versions are plain
// MAJOR.MINOR.PATCH strings.
func GetSchemaVersion(version string) string {
	if idx := strings.Index(version, "-"); idx >= 0 {
		version = version[:idx]
	}
	return version
}

func canonical(version string) string {
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}

// IsVersionGreaterThan returns true if version is greater than target.
func IsVersionGreaterThan(version, target string) bool {
	return semver.Compare(canonical(version), canonical(target)) > 0
}

// IsVersionGreaterOrEqualThan returns true if version is greater than or equal to target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(canonical(version), canonical(target)) >= 0
}
