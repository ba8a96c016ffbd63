package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/buildmeta/internal/config"
	"github.com/ralt/buildmeta/internal/models"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultFile)
	content := `
release_file: release.json
components_dir: /srv/components
fetch_url: "git::https://example.org/{{ .Component }}"
purl_namespace: qubes-os
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "release.json"), f.ReleaseFile)
	assert.Equal(t, "/srv/components", f.ComponentsDir)
	assert.Empty(t, f.SourcesDir)
	assert.Equal(t, "git::https://example.org/{{ .Component }}", f.FetchURL)
	assert.Equal(t, "qubes-os", f.PURLNamespace)
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	f, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &config.File{}, f)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), config.DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("release_file: [unterminated"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestResolve(t *testing.T) {
	t.Parallel()

	f := &config.File{ComponentsDir: "/srv/components", SourcesDir: "/srv/src"}
	cfg := config.Resolve(f, models.Config{SourcesDir: "/tmp/src"}, "/work")

	assert.Equal(t, &models.Config{
		ReleaseFile:   "/work/release.json",
		ComponentsDir: "/srv/components",
		SourcesDir:    "/tmp/src",
		FetchURL:      config.DefaultFetchURL,
		PURLNamespace: config.DefaultNamespace,
	}, cfg)
}
