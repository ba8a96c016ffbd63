// Package rpm extracts binary package lists from RPM spec files.
package rpm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/extractor"
	"github.com/ralt/buildmeta/internal/extractor/makefile"
	"github.com/ralt/buildmeta/internal/models"
	"github.com/sirupsen/logrus"
)

// queryFormat makes rpmspec print one JSON object per binary package
const queryFormat = `{"name": "%{name}","arch": "%{arch}"}\n`

// Arches kept from spec files
var Arches = map[string]bool{
	"noarch": true,
	"x86_64": true,
}

// Extractor implements extractor.Extractor for RPM spec files
type Extractor struct {
	resolver makefile.Resolver
	rpmspec  string
}

// NewExtractor creates a new RPM extractor
func NewExtractor(r makefile.Resolver) *Extractor {
	return &Extractor{
		resolver: r,
		rpmspec:  "/usr/bin/rpmspec",
	}
}

// Family implements extractor.Extractor
func (e *Extractor) Family() dist.Family {
	return dist.FamilyRPM
}

// Extract implements extractor.Extractor
func (e *Extractor) Extract(ctx context.Context, sourcePath string, d dist.Distribution, set models.PackageSet) ([]models.Package, error) {
	specs, err := e.SpecFiles(ctx, sourcePath, d, set)
	if err != nil {
		return nil, extractError(sourcePath, err)
	}

	var packages []models.Package
	for _, spec := range specs {
		pkgs, err := e.parseSpec(ctx, filepath.Join(sourcePath, spec))
		if err != nil {
			return nil, extractError(sourcePath, fmt.Errorf("failed to parse %s: %w", spec, err))
		}
		packages = append(packages, pkgs...)
	}

	logrus.Debugf("Found %d RPM packages in %s for %s/%s", len(packages), sourcePath, set, d)
	return packages, nil
}

// SpecFiles returns the spec files (relative to sourcePath) the component
// builds for d and set
func (e *Extractor) SpecFiles(ctx context.Context, sourcePath string, d dist.Distribution, set models.PackageSet) ([]string, error) {
	distribution := "fedora"
	if strings.HasPrefix(d.Name, "centos") {
		distribution = "centos"
	}

	env := makefile.Env(map[string]string{
		"COMPONENT":    filepath.Base(sourcePath),
		"PACKAGE_SET":  string(set),
		"DISTRIBUTION": distribution,
		"DIST":         d.Name,
	})

	value, err := e.resolver.Value(ctx, sourcePath, "RPM_SPEC_FILES", env)
	if err != nil {
		return nil, err
	}
	return strings.Fields(value), nil
}

func (e *Extractor) parseSpec(ctx context.Context, spec string) ([]models.Package, error) {
	if _, err := os.Stat(spec + ".in"); err == nil {
		spec += ".in"
	}

	content, err := os.ReadFile(spec)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logrus.Warnf("Spec file %s does not exist", spec)
			return nil, nil
		}
		return nil, err
	}

	dir := filepath.Dir(spec)
	tmp, err := os.CreateTemp(dir, ".buildmeta-*.spec")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(RenderSpec(strings.TrimSpace(string(content)))); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.rpmspec, "-q", "--qf", queryFormat, tmp.Name())
	cmd.Dir = dir
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		logrus.Debugf("rpmspec stderr: %s", stderr.String())
		return nil, fmt.Errorf("rpmspec failed: %w", err)
	}

	return ParseQueryOutput(out)
}

// ParseQueryOutput decodes rpmspec query output and keeps packages built
// for a supported architecture
func ParseQueryOutput(out []byte) ([]models.Package, error) {
	var packages []models.Package

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw struct {
			Name string `json:"name"`
			Arch string `json:"arch"`
		}
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, fmt.Errorf("invalid rpmspec output %q: %w", line, err)
		}

		if !Arches[raw.Arch] {
			continue
		}
		packages = append(packages, models.Package{
			Name:   raw.Name,
			Arches: []string{raw.Arch},
		})
	}

	return packages, scanner.Err()
}

// RenderSpec substitutes the placeholders used by templated spec files
func RenderSpec(content string) string {
	pairs := []string{
		"@VERSION@", "1.0.0",
		"@REL@", "1",
		"@CHANGELOG@", "",
		"@BACKEND_VMM@", "xen",
	}
	for i := 1; i < 8; i++ {
		pairs = append(pairs,
			fmt.Sprintf("@VERSION%d@", i), "1.0.0",
			fmt.Sprintf("@REL%d@", i), "1",
		)
	}
	return strings.NewReplacer(pairs...).Replace(content)
}

func extractError(sourcePath string, err error) error {
	return &models.BuildError{
		Type:      models.ErrExtract,
		Component: filepath.Base(sourcePath),
		Err:       err,
	}
}

var _ extractor.Extractor = (*Extractor)(nil)
