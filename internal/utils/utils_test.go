package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/buildmeta/internal/models"
)

func TestWriteFileIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "component.json")

	outcome, err := WriteFileIfChanged(path, []byte("one"), 0644)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	outcome, err = WriteFileIfChanged(path, []byte("one"), 0644)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)

	outcome, err = WriteFileIfChanged(path, []byte("two"), 0644)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestFileDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0644))

	sum, size, err := FileDigest(path)
	require.NoError(t, err)
	assert.Equal(t, Digest([]byte("payload")), sum)
	assert.EqualValues(t, 7, size)
	assert.Len(t, sum, 64)
}

func TestCompressionRoundTrip(t *testing.T) {
	data := []byte(`{"releases": {}}`)
	for _, name := range []string{"distfile.json.gz", "distfile.json.xz", "distfile.json.zst"} {
		packed, err := Compress(name, data)
		require.NoError(t, err, name)
		assert.NotEqual(t, data, packed, name)

		unpacked, err := Decompress(name, packed)
		require.NoError(t, err, name)
		assert.Equal(t, string(data), string(unpacked), name)
	}
}

func TestCompressPlain(t *testing.T) {
	packed, err := Compress("distfile.json", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(packed))
	assert.Equal(t, CompressionNone, CompressionFor("control.tar"))
	assert.Equal(t, CompressionZstd, CompressionFor("control.tar.zst"))
}

func TestLatestArtifacts(t *testing.T) {
	artifacts := []models.Artifact{
		{Name: "qubes-core-agent", Version: "4.2.9", Arch: "x86_64"},
		{Name: "qubes-core-agent", Version: "4.2.10", Arch: "x86_64"},
		{Name: "qubes-core-agent", Version: "4.2.8", Arch: "noarch"},
	}
	// lexical comparison is enough for this fixture
	latest := LatestArtifacts(artifacts, func(a, b models.Artifact) bool {
		return len(a.Version) > len(b.Version) || (len(a.Version) == len(b.Version) && a.Version > b.Version)
	})

	require.Len(t, latest, 2)
	assert.Equal(t, "4.2.10", latest[ArtifactKey("qubes-core-agent", "x86_64")].Version)
	assert.Equal(t, "4.2.8", latest[ArtifactKey("qubes-core-agent", "noarch")].Version)
	assert.Equal(t, "qubes-core-agent:4.2.10:x86_64", ArtifactIdentity(latest[ArtifactKey("qubes-core-agent", "x86_64")]))
}
