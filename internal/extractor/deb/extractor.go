// Package deb extracts binary package lists from Debian control files.
package deb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/extractor"
	"github.com/ralt/buildmeta/internal/extractor/makefile"
	"github.com/ralt/buildmeta/internal/models"
	"github.com/sirupsen/logrus"
)

// Arches kept from control files
var Arches = map[string]bool{
	"any":   true,
	"all":   true,
	"amd64": true,
}

// archRename normalizes architecture-independent packages
var archRename = map[string]string{
	"all": "amd64",
}

// Extractor implements extractor.Extractor for Debian control files
type Extractor struct {
	resolver makefile.Resolver
}

// NewExtractor creates a new Debian extractor
func NewExtractor(r makefile.Resolver) *Extractor {
	return &Extractor{resolver: r}
}

// Family implements extractor.Extractor
func (e *Extractor) Family() dist.Family {
	return dist.FamilyDeb
}

// Extract implements extractor.Extractor. Debian packages are only built for
// the vm package set, so set is ignored.
func (e *Extractor) Extract(ctx context.Context, sourcePath string, d dist.Distribution, set models.PackageSet) ([]models.Package, error) {
	control, err := e.ControlFile(ctx, sourcePath, d)
	if err != nil {
		return nil, extractError(sourcePath, err)
	}
	if control == "" {
		logrus.Debugf("No Debian build directory in %s for %s", sourcePath, d)
		return nil, nil
	}

	data, err := os.ReadFile(filepath.Join(sourcePath, control))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logrus.Warnf("Control file %s does not exist in %s", control, sourcePath)
			return nil, nil
		}
		return nil, extractError(sourcePath, err)
	}

	paragraphs, err := ParseControl(data)
	if err != nil {
		return nil, extractError(sourcePath, fmt.Errorf("failed to parse %s: %w", control, err))
	}

	var packages []models.Package
	for _, p := range paragraphs {
		if pkg, ok := packageFromParagraph(p); ok {
			packages = append(packages, pkg)
		}
	}

	logrus.Debugf("Found %d Debian packages in %s for %s", len(packages), sourcePath, d)
	return packages, nil
}

// ControlFile returns the control file path (relative to sourcePath) of the
// first Debian build directory, or "" when the component has none
func (e *Extractor) ControlFile(ctx context.Context, sourcePath string, d dist.Distribution) (string, error) {
	env := makefile.Env(map[string]string{
		"PACKAGE_SET":  string(models.VM),
		"DISTRIBUTION": "debian",
		"DIST":         d.Name,
	})

	dirs, err := e.resolver.Value(ctx, sourcePath, "DEBIAN_BUILD_DIRS", env)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(dirs)
	if len(fields) == 0 {
		return "", nil
	}
	return filepath.Join(fields[0], "control"), nil
}

// packageFromParagraph keeps binary package paragraphs that build for a
// supported architecture
func packageFromParagraph(p Paragraph) (models.Package, bool) {
	name := p["package"]
	arch := p["architecture"]
	if name == "" || arch == "" {
		return models.Package{}, false
	}

	arches := extractor.FilterArches(strings.Fields(arch), Arches, archRename)
	if len(arches) == 0 {
		return models.Package{}, false
	}

	return models.Package{Name: name, Arches: arches}, true
}

func extractError(sourcePath string, err error) error {
	return &models.BuildError{
		Type:      models.ErrExtract,
		Component: filepath.Base(sourcePath),
		Err:       err,
	}
}

var _ extractor.Extractor = (*Extractor)(nil)
