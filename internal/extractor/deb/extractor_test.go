package deb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/models"
)

type staticResolver map[string]string

func (r staticResolver) Value(_ context.Context, _, variable string, _ []string) (string, error) {
	return r[variable], nil
}

const control = `Source: qubes-core-agent
Section: admin
Priority: extra
Maintainer: Builder <builder@example.org>
Build-Depends:
 debhelper,
 libxen-dev
Standards-Version: 4.4.0.1

Package: qubes-core-agent
Architecture: any
Description: Qubes core agent
 This package includes various daemons necessary
 for qubes domU support.

# transitional package
Package: qubes-core-agent-doc
Architecture: all
Description: documentation

Package: qubes-core-agent-arm
Architecture: arm64 armhf
Description: not built

Package: qubes-core-agent-multi
Architecture: amd64 all any
`

func writeControl(t *testing.T, content string) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "core-agent-linux")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "debian"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "debian", "control"), []byte(content), 0o644))
	return src
}

func TestExtract(t *testing.T) {
	src := writeControl(t, control)
	e := NewExtractor(staticResolver{"DEBIAN_BUILD_DIRS": "debian"})

	pkgs, err := e.Extract(context.Background(), src, dist.New("bookworm"), models.VM)
	require.NoError(t, err)

	assert.Equal(t, []models.Package{
		{Name: "qubes-core-agent", Arches: []string{"any"}},
		{Name: "qubes-core-agent-doc", Arches: []string{"amd64"}},
		{Name: "qubes-core-agent-multi", Arches: []string{"amd64", "any"}},
	}, pkgs)
}

func TestExtractNoBuildDir(t *testing.T) {
	src := writeControl(t, control)
	e := NewExtractor(staticResolver{})

	pkgs, err := e.Extract(context.Background(), src, dist.New("bookworm"), models.VM)
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}

func TestExtractMissingControl(t *testing.T) {
	e := NewExtractor(staticResolver{"DEBIAN_BUILD_DIRS": "debian-pkg/debian"})

	pkgs, err := e.Extract(context.Background(), t.TempDir(), dist.New("bullseye"), models.VM)
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}

func TestExtractMalformed(t *testing.T) {
	src := writeControl(t, "Package: foo\nthis is not a field\n")
	e := NewExtractor(staticResolver{"DEBIAN_BUILD_DIRS": "debian"})

	_, err := e.Extract(context.Background(), src, dist.New("bullseye"), models.VM)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrExtract))
}

func TestParseControl(t *testing.T) {
	paragraphs, err := ParseControl([]byte(control))
	require.NoError(t, err)
	require.Len(t, paragraphs, 5)

	assert.Equal(t, "qubes-core-agent", paragraphs[0]["source"])
	assert.Equal(t, "debhelper,\nlibxen-dev", paragraphs[0]["build-depends"])
	assert.Equal(t, "Qubes core agent\nThis package includes various daemons necessary\nfor qubes domU support.",
		paragraphs[1]["description"])
}
