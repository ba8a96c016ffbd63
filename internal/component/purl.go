package component

import (
	"github.com/package-url/packageurl-go"

	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/models"
)

// PackageURLs returns a package URL for every package fetched for release id
// whose version is known, grouped like the package tables
func (c *Component) PackageURLs(id, namespace string) (models.PackageTable, error) {
	r, ok := c.releases[id]
	if !ok {
		return nil, c.lookupError(id)
	}

	out := models.NewPackageTable()
	for _, set := range models.PackageSets {
		for _, name := range r.Packages.Dists(set) {
			d := dist.New(name)
			purls := []string{}
			for _, p := range r.Extracted(set, name) {
				if purl, ok := packageURL(p, r.Version, r.ReleaseNumber, d, namespace); ok {
					purls = append(purls, purl)
				}
			}
			out[set][name] = purls
		}
	}
	return out, nil
}

func packageURL(p models.Package, version, release string, d dist.Distribution, namespace string) (string, bool) {
	version, release = packageVersion(p, version, release)
	if version == "" {
		return "", false
	}

	var purlType string
	switch {
	case d.IsRPM():
		purlType = packageurl.TypeRPM
		if release == "" {
			release = "1"
		}
	case d.IsDeb():
		purlType = packageurl.TypeDebian
	default:
		return "", false
	}

	if release != "" {
		version += "-" + release
	}

	qualifiers := packageurl.Qualifiers{
		{Key: "arch", Value: p.Arch()},
		{Key: "distro", Value: d.Name},
	}
	return packageurl.NewPackageURL(purlType, namespace, p.Name, version, qualifiers, "").ToString(), true
}
