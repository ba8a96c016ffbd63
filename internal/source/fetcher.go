// Package source fetches component sources that are missing locally.
package source

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	getter "github.com/hashicorp/go-getter/v2"
	"github.com/sirupsen/logrus"

	"github.com/ralt/buildmeta/internal/models"
	"github.com/ralt/buildmeta/internal/utils"
)

// Fetcher downloads component sources with go-getter
type Fetcher struct {
	client *getter.Client
	url    *template.Template
}

// NewFetcher creates a Fetcher. urlTemplate is a text/template rendered
// with .Component set to the component name, using go-getter URL syntax.
func NewFetcher(urlTemplate string) (*Fetcher, error) {
	tmpl, err := template.New("fetch_url").Option("missingkey=error").Parse(urlTemplate)
	if err != nil {
		return nil, &models.BuildError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("parsing fetch url %q: %w", urlTemplate, err),
		}
	}

	return &Fetcher{
		client: &getter.Client{
			DisableSymlinks: true,
		},
		url: tmpl,
	}, nil
}

// URL returns the go-getter source of a component at ref
func (f *Fetcher) URL(component, ref string) (string, error) {
	var buf bytes.Buffer
	if err := f.url.Execute(&buf, map[string]string{"Component": component}); err != nil {
		return "", &models.BuildError{Type: models.ErrInvalidConfig, Component: component, Err: err}
	}

	src := buf.String()
	if ref != "" {
		sep := "?"
		if strings.Contains(src, "?") {
			sep = "&"
		}
		src += sep + "ref=" + ref
	}
	return src, nil
}

// Fetch downloads a component into dest at ref. An existing dest is left
// alone; the returned bool reports whether anything was downloaded.
func (f *Fetcher) Fetch(ctx context.Context, component, dest, ref string) (bool, error) {
	if utils.Exists(dest) {
		logrus.Debugf("%s already present at %s", component, dest)
		return false, nil
	}

	src, err := f.URL(component, ref)
	if err != nil {
		return false, err
	}
	logrus.Infof("Fetching %s from %s", component, src)

	req := &getter.Request{
		Src:             src,
		Dst:             dest,
		GetMode:         getter.ModeDir,
		DisableSymlinks: true,
	}
	if _, err := f.client.Get(ctx, req); err != nil {
		return false, &models.BuildError{
			Type:      models.ErrFetch,
			Component: component,
			Err:       fmt.Errorf("fetching %s: %w", src, err),
		}
	}
	return true, nil
}
