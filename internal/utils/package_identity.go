package utils

import (
	"fmt"

	"github.com/ralt/buildmeta/internal/models"
)

// ArtifactKey identifies an artifact regardless of its version
func ArtifactKey(name, arch string) string {
	return fmt.Sprintf("%s:%s", name, arch)
}

// ArtifactIdentity returns a unique identifier for a built artifact
func ArtifactIdentity(a models.Artifact) string {
	if a.Release == "" {
		return fmt.Sprintf("%s:%s:%s", a.Name, a.Version, a.Arch)
	}
	return fmt.Sprintf("%s:%s:%s:%s", a.Name, a.Version, a.Release, a.Arch)
}

// LatestArtifacts indexes artifacts by ArtifactKey, keeping for each key the
// artifact newer reports as the most recent
func LatestArtifacts(artifacts []models.Artifact, newer func(a, b models.Artifact) bool) map[string]models.Artifact {
	latest := make(map[string]models.Artifact, len(artifacts))
	for _, a := range artifacts {
		key := ArtifactKey(a.Name, a.Arch)
		if cur, ok := latest[key]; !ok || newer(a, cur) {
			latest[key] = a
		}
	}
	return latest
}
