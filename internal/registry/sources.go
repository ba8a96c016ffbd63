package registry

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ralt/buildmeta/internal/component"
)

// SourceFetcher downloads a component checkout
type SourceFetcher interface {
	Fetch(ctx context.Context, component, dest, ref string) (bool, error)
}

// FetchSources downloads the missing checkouts of the components matching
// filter, at the branch they use for release (master when the component
// does not know the release). The first error stops the batch.
func (r *Registry) FetchSources(ctx context.Context, f SourceFetcher, filter []string, release string) error {
	fetched := 0
	for _, c := range r.ComponentsFromName(filter) {
		ref, ok := c.Branch(release)
		if !ok || ref == "" {
			ref = component.DefaultBranch
		}

		done, err := f.Fetch(ctx, c.Name, c.SourcePath, ref)
		if err != nil {
			return err
		}
		if done {
			fetched++
		}
	}
	logrus.Infof("Fetched %d components", fetched)
	return nil
}
