// Package verify compares the package files found in a build output
// directory with the files a release is expected to produce.
package verify

import (
	"context"
	"sort"

	debversion "github.com/knqyf263/go-deb-version"
	rpmversion "github.com/knqyf263/go-rpm-version"
	"github.com/sirupsen/logrus"

	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/models"
	"github.com/ralt/buildmeta/internal/scanner"
	"github.com/ralt/buildmeta/internal/utils"
)

// Status is the verdict for one expected artifact
type Status string

const (
	// StatusPresent means a build with the expected version, or a newer
	// one, was found
	StatusPresent Status = "present"
	// StatusMissing means no build of the package was found
	StatusMissing Status = "missing"
	// StatusOutdated means only older builds of the package were found
	StatusOutdated Status = "outdated"
)

// Result is the verdict for one expected artifact
type Result struct {
	Expected models.Artifact
	Found    *models.Artifact // newest build of the same package, if any
	Status   Status
}

// Report lists the verdicts in expected order
type Report struct {
	Results []Result
}

// Count returns the number of results with status s
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// OK reports whether every expected artifact is present
func (r *Report) OK() bool {
	return r.Count(StatusPresent) == len(r.Results)
}

// Verifier inventories build output directories
type Verifier struct {
	scanner scanner.Scanner
}

// NewVerifier creates a Verifier using s to find package files
func NewVerifier(s scanner.Scanner) *Verifier {
	return &Verifier{scanner: s}
}

// Inventory reads every package file of the given family under dir.
// Unreadable files are skipped with a warning.
func (v *Verifier) Inventory(ctx context.Context, dir string, family dist.Family) ([]models.Artifact, error) {
	scanned, err := v.scanner.Scan(ctx, dir, family)
	if err != nil {
		return nil, &models.BuildError{Type: models.ErrVerify, Err: err}
	}

	var artifacts []models.Artifact
	for _, s := range scanned {
		var a models.Artifact
		switch s.Family {
		case dist.FamilyRPM:
			a, err = ReadRPM(s.Path)
		case dist.FamilyDeb:
			a, err = ReadDeb(s.Path)
		default:
			continue
		}
		if err != nil {
			logrus.Warnf("Skipping %s: %v", s.Path, err)
			continue
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// Verify inventories dir and compares it with expected
func (v *Verifier) Verify(ctx context.Context, dir string, expected []models.Artifact, family dist.Family) (*Report, error) {
	found, err := v.Inventory(ctx, dir, family)
	if err != nil {
		return nil, err
	}
	return Compare(expected, found, family), nil
}

// Compare matches expected artifacts with found ones by package name and
// architecture, using the version ordering of family
func Compare(expected, found []models.Artifact, family dist.Family) *Report {
	normalized := make([]models.Artifact, len(found))
	for i, a := range found {
		a.Arch = normalizeArch(a.Arch, family)
		normalized[i] = a
	}
	latest := utils.LatestArtifacts(normalized, func(a, b models.Artifact) bool {
		return compareVersions(a, b, family) > 0
	})

	report := &Report{Results: make([]Result, 0, len(expected))}
	for _, want := range expected {
		res := Result{Expected: want, Status: StatusMissing}

		got, ok := latest[utils.ArtifactKey(want.Name, normalizeArch(want.Arch, family))]
		if ok {
			res.Found = &got
			if compareVersions(got, want, family) >= 0 {
				res.Status = StatusPresent
			} else {
				res.Status = StatusOutdated
			}
		}
		report.Results = append(report.Results, res)
	}
	return report
}

// normalizeArch maps Debian architecture wildcards to the built architecture
func normalizeArch(arch string, family dist.Family) string {
	if family == dist.FamilyDeb && (arch == "any" || arch == "all") {
		return "amd64"
	}
	return arch
}

// compareVersions returns -1, 0 or 1 as a is older than, as old as, or
// newer than b
func compareVersions(a, b models.Artifact, family dist.Family) int {
	switch family {
	case dist.FamilyRPM:
		return rpmversion.NewVersion(rpmEVR(a)).Compare(rpmversion.NewVersion(rpmEVR(b)))
	case dist.FamilyDeb:
		va, errA := debversion.NewVersion(a.Version)
		vb, errB := debversion.NewVersion(b.Version)
		if errA == nil && errB == nil {
			switch {
			case va.LessThan(vb):
				return -1
			case va.GreaterThan(vb):
				return 1
			}
			return 0
		}
	}
	return compareStrings(a.Version+"-"+a.Release, b.Version+"-"+b.Release)
}

func rpmEVR(a models.Artifact) string {
	if a.Release == "" {
		return a.Version
	}
	return a.Version + "-" + a.Release
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Sorted returns the results ordered by status then file name
func (r *Report) Sorted() []Result {
	out := append([]Result{}, r.Results...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		return out[i].Expected.Filename < out[j].Expected.Filename
	})
	return out
}
