// Package extractor defines how binary package lists are read out of a
// component's native packaging metadata.
package extractor

import (
	"context"

	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/models"
)

// Extractor returns the binary packages a component declares for a
// distribution and package set
type Extractor interface {
	// Extract lists the packages declared in the packaging metadata found
	// under sourcePath. Malformed metadata is reported as an error.
	Extract(ctx context.Context, sourcePath string, d dist.Distribution, set models.PackageSet) ([]models.Package, error)

	// Family returns the packaging family this extractor handles
	Family() dist.Family
}

// Names returns the package names of pkgs, preserving order
func Names(pkgs []models.Package) []string {
	names := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		names = append(names, p.Name)
	}
	return names
}

// FilterArches returns the entries of arches that are in allowed, in
// declaration order and without duplicates. rename maps an architecture to
// the name it is recorded under.
func FilterArches(arches []string, allowed map[string]bool, rename map[string]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, a := range arches {
		if !allowed[a] {
			continue
		}
		if r, ok := rename[a]; ok {
			a = r
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
