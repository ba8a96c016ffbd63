// Package config handles the optional buildmeta.yaml configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ralt/buildmeta/internal/models"
)

// DefaultFile is the configuration file looked up in the working directory
const DefaultFile = "buildmeta.yaml"

// Defaults used when neither a flag nor the configuration file set a value
const (
	DefaultReleaseFile   = "release.json"
	DefaultComponentsDir = "components"
	DefaultSourcesDir    = "qubes-src"
	DefaultFetchURL      = "git::https://github.com/QubesOS/qubes-{{ .Component }}"
	DefaultNamespace     = "qubes"
)

// File is the content of a configuration file
type File struct {
	ReleaseFile     string `yaml:"release_file"`
	ComponentsDir   string `yaml:"components_dir"`
	SourcesDir      string `yaml:"sources_dir"`
	FetchURL        string `yaml:"fetch_url"`
	BuilderTemplate string `yaml:"builder_template"`
	PURLNamespace   string `yaml:"purl_namespace"`
}

// Load reads the configuration file at path.
// If the file doesn't exist, it returns a zero-value config (no error).
func Load(path string) (*File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}

		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// relative paths in the file are relative to the file
	base := filepath.Dir(path)
	for _, p := range []*string{&f.ReleaseFile, &f.ComponentsDir, &f.SourcesDir, &f.BuilderTemplate} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	return &f, nil
}

// Resolve builds the runtime configuration. Values set in overrides win
// over the file, which wins over the defaults relative to dir.
func Resolve(f *File, overrides models.Config, dir string) *models.Config {
	pick := func(values ...string) string {
		for _, v := range values {
			if v != "" {
				return v
			}
		}
		return ""
	}

	return &models.Config{
		ReleaseFile:     pick(overrides.ReleaseFile, f.ReleaseFile, filepath.Join(dir, DefaultReleaseFile)),
		ComponentsDir:   pick(overrides.ComponentsDir, f.ComponentsDir, filepath.Join(dir, DefaultComponentsDir)),
		SourcesDir:      pick(overrides.SourcesDir, f.SourcesDir, filepath.Join(dir, DefaultSourcesDir)),
		FetchURL:        pick(overrides.FetchURL, f.FetchURL, DefaultFetchURL),
		BuilderTemplate: pick(overrides.BuilderTemplate, f.BuilderTemplate),
		PURLNamespace:   pick(overrides.PURLNamespace, f.PURLNamespace, DefaultNamespace),
	}
}
