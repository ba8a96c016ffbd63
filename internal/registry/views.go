package registry

import (
	"fmt"
	"strings"

	"github.com/ralt/buildmeta/internal/component"
	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/models"
)

// BranchOverride is a component built from another branch than the one
// expected for the release
type BranchOverride struct {
	Component string
	Branch    string
}

// Variable returns the builder variable name of the override
func (b BranchOverride) Variable() string {
	return "BRANCH_" + strings.ReplaceAll(b.Component, "-", "_")
}

// MaintainerComponents lists the components a maintainer may build
type MaintainerComponents struct {
	Maintainer string
	Components []string
}

// BuilderConf is everything a builder configuration needs to know about
// one release
type BuilderConf struct {
	Release string
	Devel   bool
	Dom0    []dist.Distribution
	VM      []dist.Distribution

	Branches    []BranchOverride
	Maintainers []MaintainerComponents

	Plugins       []string
	ISOComponents []string
	Windows       []string
	Components    []string // everything not in the three lists above

	TemplateLabels  []string
	TemplateAliases []string
}

// BuilderConf computes the builder configuration views of release id from
// the loaded components
func (r *Registry) BuilderConf(id string) (*BuilderConf, error) {
	info, ok := r.definition.Releases[id]
	if !ok {
		return nil, &models.BuildError{
			Type: models.ErrLookup,
			Err:  fmt.Errorf("release %q not found in %s", id, r.config.ReleaseFile),
		}
	}

	conf := &BuilderConf{
		Release: id,
		Devel:   info.IsDevel(),
		Dom0:    r.dom0[id],
		VM:      r.vm[id],
	}

	maintainers := map[string]int{}
	for _, c := range r.components {
		if !c.HasRelease(id) {
			continue
		}

		if branch, _ := c.Branch(id); branch != "release"+id {
			if !(branch == component.DefaultBranch && conf.Devel) {
				conf.Branches = append(conf.Branches, BranchOverride{Component: c.Name, Branch: branch})
			}
		}

		for _, m := range c.Maintainers() {
			i, seen := maintainers[m]
			if !seen {
				i = len(conf.Maintainers)
				maintainers[m] = i
				conf.Maintainers = append(conf.Maintainers, MaintainerComponents{Maintainer: m})
			}
			conf.Maintainers[i].Components = append(conf.Maintainers[i].Components, c.Name)
		}

		other := true
		if c.IsPlugin() {
			conf.Plugins = append(conf.Plugins, c.Name)
			other = false
		}
		if c.IsISOComponent() {
			conf.ISOComponents = append(conf.ISOComponents, c.Name)
			other = false
		}
		if c.IsWindows() {
			conf.Windows = append(conf.Windows, c.Name)
			other = false
		}
		if other {
			conf.Components = append(conf.Components, c.Name)
		}
	}

	for _, d := range append(append([]dist.Distribution{}, conf.Dom0...), conf.VM...) {
		conf.TemplateLabels = append(conf.TemplateLabels, d.Labels()...)
	}
	for _, d := range conf.VM {
		conf.TemplateAliases = append(conf.TemplateAliases, d.Aliases()...)
	}
	return conf, nil
}
