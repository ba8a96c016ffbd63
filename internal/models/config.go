package models

import "path/filepath"

// Config contains the resolved runtime configuration
type Config struct {
	// Inputs
	ReleaseFile   string // release definition ("release.json")
	ComponentsDir string // one "<component>.json" file per component
	SourcesDir    string // checkouts, one directory per component

	// Source fetching
	FetchURL string // URL template for missing sources, e.g. "git::https://github.com/QubesOS/qubes-{{ .Component }}"

	// Builder configuration
	BuilderTemplate string // optional template overriding the embedded one

	PURLNamespace string // namespace of generated package URLs
}

// ComponentFile returns the path of the metadata file for a component
func (c *Config) ComponentFile(name string) string {
	return filepath.Join(c.ComponentsDir, name+".json")
}

// SourcePath returns the checkout location of a component
func (c *Config) SourcePath(name string) string {
	return filepath.Join(c.SourcesDir, name)
}
