package registry

import (
	"fmt"
	"strings"

	"github.com/ralt/buildmeta/internal/models"
)

// Field is one token of a raw output format
type Field string

const (
	FieldComponent    Field = "component"
	FieldRelease      Field = "release"
	FieldPlatform     Field = "platform"
	FieldDistribution Field = "distribution"
	FieldPackages     Field = "packages"
)

var fieldAliases = map[string]Field{
	"component":     FieldComponent,
	"release":       FieldRelease,
	"qubes_release": FieldRelease,
	"platform":      FieldPlatform,
	"package_set":   FieldPlatform,
	"distribution":  FieldDistribution,
	"dist":          FieldDistribution,
	"packages":      FieldPackages,
}

// DefaultFormat is used for raw output when no format is given
var DefaultFormat = []Field{FieldPackages}

// ParseFormat parses a colon separated list of format tokens
func ParseFormat(s string) ([]Field, error) {
	var fields []Field
	for _, tok := range strings.Split(s, ":") {
		f, ok := fieldAliases[tok]
		if !ok {
			return nil, &models.BuildError{
				Type: models.ErrInvalidConfig,
				Err:  fmt.Errorf("unsupported format %q", tok),
			}
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// PackagesQuery selects and shapes package lists
type PackagesQuery struct {
	Components []string          // name filter, "all" accepted
	Dists      []string          // keep only these distributions when set
	PackageSet models.PackageSet // keep only this package set when set
	Release    string            // keep only this release when set
	WithNVR    bool              // package file names instead of bare names
	PURL       bool              // package URLs instead of names, one line each
	Namespace  string            // package URL namespace
	SkipEmpty  bool              // drop empty lists
	Format     []Field           // raw line layout, DefaultFormat when empty
}

// PackagesTree maps component → release → package set → distribution →
// packages
type PackagesTree map[string]map[string]models.PackageTable

// PackagesList is the result of a packages query, as a tree and as
// formatted lines
type PackagesList struct {
	Tree  PackagesTree
	Lines []string
}

// GetComponentsPackagesList collects the package lists matching q
func (r *Registry) GetComponentsPackagesList(q PackagesQuery) (*PackagesList, error) {
	format := q.Format
	if len(format) == 0 {
		format = DefaultFormat
	}
	if q.PackageSet != "" && !q.PackageSet.Valid() {
		return nil, &models.BuildError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("invalid package set %q", q.PackageSet),
		}
	}

	wantDist := make(map[string]bool, len(q.Dists))
	for _, d := range q.Dists {
		wantDist[d] = true
	}
	keep := func(d string, pkgs []string) bool {
		if len(wantDist) > 0 && !wantDist[d] {
			return false
		}
		return !q.SkipEmpty || len(pkgs) > 0
	}

	out := &PackagesList{Tree: PackagesTree{}, Lines: []string{}}
	for _, c := range r.ComponentsFromName(q.Components) {
		out.Tree[c.Name] = map[string]models.PackageTable{}

		for _, id := range c.Releases() {
			if q.Release != "" && id != q.Release {
				continue
			}

			var table models.PackageTable
			var err error
			switch {
			case q.PURL:
				table, err = c.PackageURLs(id, q.Namespace)
			case q.WithNVR:
				table, err = c.NVRPackagesList(id)
			default:
				table, err = c.PackagesList(id)
			}
			if err != nil {
				return nil, err
			}

			filtered := models.PackageTable{}
			for _, set := range models.PackageSets {
				if q.PackageSet != "" && set != q.PackageSet {
					continue
				}
				for _, d := range table.Dists(set) {
					pkgs := table[set][d]
					if !keep(d, pkgs) {
						continue
					}
					if filtered[set] == nil {
						filtered[set] = map[string][]string{}
					}
					filtered[set][d] = pkgs
					if !q.PURL {
						out.Lines = append(out.Lines, formatLine(format, c.Name, id, set, d, pkgs))
						continue
					}
					for _, purl := range pkgs {
						out.Lines = append(out.Lines, formatLine(format, c.Name, id, set, d, []string{purl}))
					}
				}
			}
			out.Tree[c.Name][id] = filtered
		}
	}
	return out, nil
}

func formatLine(format []Field, name, release string, set models.PackageSet, d string, pkgs []string) string {
	parts := make([]string, 0, len(format))
	for _, f := range format {
		switch f {
		case FieldComponent:
			parts = append(parts, name)
		case FieldRelease:
			parts = append(parts, release)
		case FieldPlatform:
			parts = append(parts, string(set))
		case FieldDistribution:
			parts = append(parts, d)
		case FieldPackages:
			parts = append(parts, strings.Join(pkgs, " "))
		}
	}
	return strings.Join(parts, ":")
}

// ExpectedArtifacts returns the package files the components matching
// filter should produce for release id on distribution d of set, as
// computed by the last update. Components without the release are skipped.
func (r *Registry) ExpectedArtifacts(filter []string, id string, set models.PackageSet, d string) []models.Artifact {
	var out []models.Artifact
	for _, c := range r.ComponentsFromName(filter) {
		rel, err := c.Release(id)
		if err != nil {
			continue
		}
		out = append(out, rel.Artifacts(set, d)...)
	}
	return out
}
