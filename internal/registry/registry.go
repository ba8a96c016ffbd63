package registry

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ralt/buildmeta/internal/component"
	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/models"
	"github.com/ralt/buildmeta/internal/utils"
)

// All selects every loaded component in a name filter
const All = "all"

// Registry holds the release definition and the components it lists
type Registry struct {
	config    *models.Config
	toolchain component.Toolchain

	definition *Definition
	dom0       map[string][]dist.Distribution
	vm         map[string][]dist.Distribution
	components []*component.Component
}

// New creates a registry. Nothing is read until Load is called.
func New(cfg *models.Config, tc component.Toolchain) *Registry {
	return &Registry{
		config:    cfg,
		toolchain: tc,
	}
}

// Load reads the release definition and every component file it lists.
// Components without a file are skipped.
func (r *Registry) Load() error {
	def, err := LoadDefinition(r.config.ReleaseFile)
	if err != nil {
		return err
	}
	r.definition = def
	r.dom0, r.vm = distributions(def)

	r.components = nil
	for _, name := range def.Components {
		path := r.config.ComponentFile(name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logrus.Debugf("No component file for %s", name)
				continue
			}
			return &models.BuildError{Type: models.ErrFileOp, Component: name, Err: err}
		}

		f, err := component.Decode(name, data)
		if err != nil {
			return &models.BuildError{
				Type:      models.ErrInvalidConfig,
				Component: name,
				Err:       fmt.Errorf("parsing %s: %w", path, err),
			}
		}
		r.components = append(r.components, component.FromFile(name, r.config.SourcePath(name), f, r.toolchain))
	}

	logrus.Debugf("Loaded %d components from %s", len(r.components), r.config.ReleaseFile)
	return nil
}

// Definition returns the release definition read by Load
func (r *Registry) Definition() *Definition {
	return r.definition
}

// Components returns the loaded components in release definition order
func (r *Registry) Components() []*component.Component {
	return r.components
}

// Component returns the loaded component called name, or nil
func (r *Registry) Component(name string) *component.Component {
	for _, c := range r.components {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ComponentNames returns the names of the loaded components
func (r *Registry) ComponentNames() []string {
	names := make([]string, 0, len(r.components))
	for _, c := range r.components {
		names = append(names, c.Name)
	}
	return names
}

// ComponentsFromName resolves a name filter. "all" anywhere in the filter
// selects every loaded component; otherwise known names are returned in
// filter order and unknown ones are dropped.
func (r *Registry) ComponentsFromName(filter []string) []*component.Component {
	for _, name := range filter {
		if name == All {
			return r.components
		}
	}

	var out []*component.Component
	for _, name := range filter {
		if c := r.Component(name); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Dom0 returns the dom0 distributions of release id
func (r *Registry) Dom0(id string) []dist.Distribution {
	return r.dom0[id]
}

// VM returns the vm distributions of release id
func (r *Registry) VM(id string) []dist.Distribution {
	return r.vm[id]
}

// IsDevel reports whether release id is a development release
func (r *Registry) IsDevel(id string) bool {
	return r.definition != nil && r.definition.Releases[id].IsDevel()
}

// UpdateComponents refreshes the package lists of the components matching
// filter, for every release they declare, and writes each component file
// right after its update. The first error stops the batch; components
// already written stay written.
func (r *Registry) UpdateComponents(ctx context.Context, filter []string) error {
	for _, c := range r.ComponentsFromName(filter) {
		logrus.Infof("Updating %s", c.Name)

		for _, id := range c.Releases() {
			if _, ok := r.definition.Releases[id]; !ok {
				logrus.Warnf("Skipping %s (%s): release not in %s", c.Name, id, r.config.ReleaseFile)
				continue
			}

			var dom0 dist.Distribution
			if ds := r.dom0[id]; len(ds) > 0 {
				dom0 = ds[0]
			}
			if err := c.Update(ctx, id, dom0, r.vm[id], ""); err != nil {
				return fmt.Errorf("updating %s (%s): %w", c.Name, id, err)
			}
		}

		if err := r.save(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) save(c *component.Component) error {
	data, err := c.Encode()
	if err != nil {
		return &models.BuildError{Type: models.ErrFileOp, Component: c.Name, Err: err}
	}

	path := r.config.ComponentFile(c.Name)
	outcome, err := utils.WriteFileIfChanged(path, data, 0644)
	if err != nil {
		return &models.BuildError{Type: models.ErrFileOp, Component: c.Name, Err: err}
	}
	logrus.Debugf("%s: %s", path, outcome)
	return nil
}

// AddComponent writes a skeleton file for a new component with one entry
// per known release. An existing file is never overwritten.
func (r *Registry) AddComponent(name string) (string, error) {
	path := r.config.ComponentFile(name)
	if utils.Exists(path) {
		return "", &models.BuildError{
			Type:      models.ErrFileOp,
			Component: name,
			Err:       fmt.Errorf("%s already exists", path),
		}
	}

	f := &component.File{Releases: make(map[string]component.ReleaseEntry, len(r.definition.Releases))}
	for id, info := range r.definition.Releases {
		f.Releases[id] = component.ReleaseEntry{Branch: info.DefaultBranch(id)}
	}

	data, err := component.EncodeFile(name, f)
	if err != nil {
		return "", &models.BuildError{Type: models.ErrFileOp, Component: name, Err: err}
	}
	if err := utils.WriteFile(path, data, 0644); err != nil {
		return "", &models.BuildError{Type: models.ErrFileOp, Component: name, Err: err}
	}

	logrus.Infof("Created %s", path)
	return path, nil
}
