package component

import (
	"fmt"

	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/models"
)

// DebianUpdate is the security update counter put in Debian package versions
const DebianUpdate = 1

// artifactFunc describes the file built for p on distribution d. version
// and release are the component defaults, used when the package does not
// carry its own.
type artifactFunc func(p models.Package, version, release string, d dist.Distribution) (models.Artifact, bool)

// RPMArtifact describes the RPM built for p. The release carries the
// distribution tag, as in the package header. It reports false when no
// version is known.
func RPMArtifact(p models.Package, version, release string, d dist.Distribution) (models.Artifact, bool) {
	version, release = packageVersion(p, version, release)
	if version == "" {
		return models.Artifact{}, false
	}
	if release == "" {
		release = "1"
	}
	return models.Artifact{
		Name:     p.Name,
		Version:  version,
		Release:  release + "." + d.Name,
		Arch:     p.Arch(),
		Filename: RPMNVR(p.Name, version, release, d.Name, p.Arch()),
	}, true
}

// DebArtifact describes the Debian package built for p. Version is the full
// Debian version. It reports false when no version is known or d is not a
// Debian release.
func DebArtifact(p models.Package, version, release string, d dist.Distribution) (models.Artifact, bool) {
	version, release = packageVersion(p, version, release)
	if version == "" {
		return models.Artifact{}, false
	}
	major, ok := d.Version()
	if !ok || !d.IsDeb() {
		return models.Artifact{}, false
	}

	full := version
	if release != "" {
		full += "-" + release
	}
	return models.Artifact{
		Name:     p.Name,
		Version:  fmt.Sprintf("%s+deb%du%d", full, major, DebianUpdate),
		Arch:     p.Arch(),
		Filename: DebNVU(p.Name, version, release, major, p.Arch(), DebianUpdate),
	}, true
}

// RPMNVR formats an RPM file name. An empty release defaults to "1".
func RPMNVR(name, version, release, distName, arch string) string {
	if release == "" {
		release = "1"
	}
	return fmt.Sprintf("%s-%s-%s.%s.%s.rpm", name, version, release, distName, arch)
}

// DebNVU formats a Debian file name
func DebNVU(name, version, release string, debianMajor int, arch string, update int) string {
	if release != "" {
		return fmt.Sprintf("%s_%s-%s+deb%du%d_%s.deb", name, version, release, debianMajor, update, arch)
	}
	return fmt.Sprintf("%s_%s+deb%du%d_%s.deb", name, version, debianMajor, update, arch)
}

func packageVersion(p models.Package, version, release string) (string, string) {
	if p.Version != "" {
		return p.Version, p.Release
	}
	return version, release
}
