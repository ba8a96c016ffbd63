// Package component tracks the branches and binary packages of one
// component across releases and distributions.
package component

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/extractor"
	"github.com/ralt/buildmeta/internal/models"
	"github.com/ralt/buildmeta/internal/vcs"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBranch is used when neither the caller nor the component file
	// names a branch
	DefaultBranch = "master"

	// TemplateBuilder is the template-only meta-build; it never produces
	// packages of its own
	TemplateBuilder = "linux-template-builder"
)

// Toolchain holds the external collaborators used by Update
type Toolchain struct {
	VCS vcs.VCS
	RPM extractor.Extractor
	Deb extractor.Extractor
}

// extractorFor returns the extractor handling the packaging family of d and
// the matching file naming, or nil when none does
func (t Toolchain) extractorFor(d dist.Distribution) (extractor.Extractor, artifactFunc) {
	for _, e := range []extractor.Extractor{t.RPM, t.Deb} {
		if e == nil || e.Family() != d.Family() {
			continue
		}
		switch e.Family() {
		case dist.FamilyRPM:
			return e, RPMArtifact
		case dist.FamilyDeb:
			return e, DebArtifact
		}
	}
	return nil, nil
}

// Release is the state of a component for one release
type Release struct {
	Branch        string
	Version       string // from the "version" file of the checkout
	ReleaseNumber string // from the "rel" file of the checkout

	Packages    models.PackageTable // bare package names
	NVRPackages models.PackageTable // package file names

	extracted map[models.PackageSet]map[string][]models.Package
	artifacts map[models.PackageSet]map[string][]models.Artifact
}

func newRelease(branch string) *Release {
	return &Release{
		Branch:      branch,
		Packages:    models.NewPackageTable(),
		NVRPackages: models.NewPackageTable(),
		extracted: map[models.PackageSet]map[string][]models.Package{
			models.Dom0: {},
			models.VM:   {},
		},
		artifacts: map[models.PackageSet]map[string][]models.Artifact{
			models.Dom0: {},
			models.VM:   {},
		},
	}
}

// Component is one buildable source component
type Component struct {
	Name       string
	SourcePath string
	Options    Options

	releases  map[string]*Release
	toolchain Toolchain
}

// New creates a component without any release
func New(name, sourcePath string, tc Toolchain) *Component {
	return &Component{
		Name:       name,
		SourcePath: sourcePath,
		releases:   make(map[string]*Release),
		toolchain:  tc,
	}
}

// FromFile creates a component from the content of its file
func FromFile(name, sourcePath string, f *File, tc Toolchain) *Component {
	c := New(name, sourcePath, tc)
	c.Options = f.Options

	for id, entry := range f.Releases {
		r := newRelease(entry.Branch)
		for d, pkgs := range entry.Dom0 {
			r.Packages[models.Dom0][d] = append([]string{}, pkgs...)
			r.NVRPackages[models.Dom0][d] = []string{}
		}
		for d, pkgs := range entry.VM {
			r.Packages[models.VM][d] = append([]string{}, pkgs...)
			r.NVRPackages[models.VM][d] = []string{}
		}
		c.releases[id] = r
	}
	return c
}

// ToFile returns the persisted shape of the component: its options and, for
// every release, the branch and the bare package names
func (c *Component) ToFile() *File {
	f := &File{
		Releases: make(map[string]ReleaseEntry, len(c.releases)),
		Options:  c.Options,
	}
	for id, r := range c.releases {
		tables := r.Packages.Clone()
		f.Releases[id] = ReleaseEntry{
			Branch: r.Branch,
			Dom0:   tables[models.Dom0],
			VM:     tables[models.VM],
		}
	}
	return f
}

// Encode serializes the component the way it is stored on disk
func (c *Component) Encode() ([]byte, error) {
	return EncodeFile(c.Name, c.ToFile())
}

func (c *Component) String() string {
	return c.Name
}

// Maintainers returns the maintainers allowed to build the component
func (c *Component) Maintainers() []string {
	return c.Options.Maintainers
}

// IsPlugin reports whether the component is a builder plugin
func (c *Component) IsPlugin() bool {
	return c.Options.Plugin.Set()
}

// IsISOComponent reports whether the component is only used to build the
// installation image
func (c *Component) IsISOComponent() bool {
	return c.Options.ISOComponent.Set()
}

// IsWindows reports whether the component targets Windows guests
func (c *Component) IsWindows() bool {
	return strings.Contains(c.Name, "windows")
}

// Releases returns the releases the component participates in, sorted
func (c *Component) Releases() []string {
	ids := make([]string, 0, len(c.releases))
	for id := range c.releases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasRelease reports whether the component participates in release id
func (c *Component) HasRelease(id string) bool {
	_, ok := c.releases[id]
	return ok
}

// Branch returns the branch recorded for release id
func (c *Component) Branch(id string) (string, bool) {
	r, ok := c.releases[id]
	if !ok {
		return "", false
	}
	return r.Branch, true
}

// Release returns the state of release id
func (c *Component) Release(id string) (*Release, error) {
	r, ok := c.releases[id]
	if !ok {
		return nil, c.lookupError(id)
	}
	return r, nil
}

// PackagesList returns the bare package names of release id
func (c *Component) PackagesList(id string) (models.PackageTable, error) {
	r, ok := c.releases[id]
	if !ok {
		return nil, c.lookupError(id)
	}
	return r.Packages.Clone(), nil
}

// NVRPackagesList returns the package file names of release id
func (c *Component) NVRPackagesList(id string) (models.PackageTable, error) {
	r, ok := c.releases[id]
	if !ok {
		return nil, c.lookupError(id)
	}
	return r.NVRPackages.Clone(), nil
}

func (c *Component) lookupError(id string) error {
	return &models.BuildError{
		Type:      models.ErrLookup,
		Component: c.Name,
		Err:       fmt.Errorf("release %q not found", id),
	}
}

// Update checks out the component branch for release id and fetches its
// package lists for the dom0 distribution and every vm distribution.
//
// A missing checkout or a failed branch switch leaves the component
// untouched and is not an error. Extraction errors are returned.
func (c *Component) Update(ctx context.Context, id string, dom0 dist.Distribution, vms []dist.Distribution, branch string) error {
	r := c.releases[id]
	if branch == "" {
		if r != nil && r.Branch != "" {
			branch = r.Branch
		} else {
			branch = DefaultBranch
		}
	}

	if _, err := os.Stat(c.SourcePath); err != nil {
		logrus.Warnf("Skipping %s (%s): source not found at %s", c.Name, id, c.SourcePath)
		return nil
	}

	if err := c.toolchain.VCS.Checkout(ctx, c.SourcePath, branch); err != nil {
		logrus.Warnf("Skipping %s (%s): %v", c.Name, id, &models.BuildError{
			Type:      models.ErrCheckout,
			Component: c.Name,
			Err:       err,
		})
		return nil
	}

	if r == nil {
		r = newRelease(branch)
		c.releases[id] = r
	}
	r.Branch = branch

	var err error
	if r.Version, err = readFirstLine(filepath.Join(c.SourcePath, "version")); err != nil {
		return err
	}
	if r.ReleaseNumber, err = readFirstLine(filepath.Join(c.SourcePath, "rel")); err != nil {
		return err
	}

	if c.Name == TemplateBuilder {
		logrus.Debugf("%s produces no packages", c.Name)
		return nil
	}

	if dom0.Name != "" {
		pkgs, err := c.toolchain.RPM.Extract(ctx, c.SourcePath, dom0, models.Dom0)
		if err != nil {
			return err
		}
		r.record(models.Dom0, dom0, pkgs, RPMArtifact)
	}

	for _, vm := range vms {
		e, format := c.toolchain.extractorFor(vm)
		if e == nil {
			logrus.Debugf("No packaging support for %s, skipping %s", vm, c.Name)
			r.record(models.VM, vm, nil, nil)
			continue
		}
		pkgs, err := e.Extract(ctx, c.SourcePath, vm, models.VM)
		if err != nil {
			return err
		}
		r.record(models.VM, vm, pkgs, format)
	}

	return nil
}

// record stores the packages fetched for one distribution. Other
// distributions of the release are kept as they are.
func (r *Release) record(set models.PackageSet, d dist.Distribution, pkgs []models.Package, format artifactFunc) {
	r.extracted[set][d.Name] = pkgs
	r.Packages[set][d.Name] = extractor.Names(pkgs)

	nvrs := []string{}
	artifacts := []models.Artifact{}
	if format != nil {
		for _, p := range pkgs {
			if a, ok := format(p, r.Version, r.ReleaseNumber, d); ok {
				nvrs = append(nvrs, a.Filename)
				artifacts = append(artifacts, a)
			}
		}
	}
	r.NVRPackages[set][d.Name] = nvrs
	r.artifacts[set][d.Name] = artifacts
}

// Extracted returns the packages fetched for set and distribution d by the
// last Update
func (r *Release) Extracted(set models.PackageSet, d string) []models.Package {
	return r.extracted[set][d]
}

// Artifacts returns the package files expected for set and distribution d
// after the last Update
func (r *Release) Artifacts(set models.PackageSet, d string) []models.Artifact {
	return r.artifacts[set][d]
}

func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", &models.BuildError{Type: models.ErrFileOp, Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", scanner.Err()
}
