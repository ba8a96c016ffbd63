package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/ralt/buildmeta/internal/component"
	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/models"
)

// ReleaseInfo describes one release in the release definition
type ReleaseInfo struct {
	Devel component.Flag `json:"devel"`
	Dom0  []string       `json:"dom0"`
	VM    []string       `json:"vm"`
}

// IsDevel reports whether the release is under development
func (r ReleaseInfo) IsDevel() bool {
	return r.Devel.Set()
}

// DefaultBranch returns the branch a component is expected to build from
// for release id
func (r ReleaseInfo) DefaultBranch(id string) string {
	if r.IsDevel() {
		return component.DefaultBranch
	}
	return "release" + id
}

// Definition is the release definition: the known releases with their
// distributions, and the ordered list of components
type Definition struct {
	Releases   map[string]ReleaseInfo `json:"releases"`
	Components []string               `json:"components"`
}

// ReleaseIDs returns the known release identifiers, sorted
func (d *Definition) ReleaseIDs() []string {
	ids := make([]string, 0, len(d.Releases))
	for id := range d.Releases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadDefinition reads the release definition at path
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &models.BuildError{
				Type: models.ErrInvalidConfig,
				Err:  fmt.Errorf("cannot find release file %s", path),
			}
		}
		return nil, &models.BuildError{Type: models.ErrFileOp, Err: err}
	}

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, &models.BuildError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("parsing release file %s: %w", path, err),
		}
	}
	if def.Releases == nil {
		def.Releases = map[string]ReleaseInfo{}
	}
	return &def, nil
}

// distributions turns the names of the release definition into descriptors
func distributions(def *Definition) (dom0, vm map[string][]dist.Distribution) {
	dom0 = make(map[string][]dist.Distribution, len(def.Releases))
	vm = make(map[string][]dist.Distribution, len(def.Releases))
	for id, info := range def.Releases {
		dom0[id] = dist.FromNames(info.Dom0)
		vm[id] = dist.FromNames(info.VM)
	}
	return dom0, vm
}
