// Package builderconf renders the builder configuration of a release.
package builderconf

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/registry"
)

//go:embed builder.conf.tmpl
var defaultTemplate string

// Renderer renders builder configurations with text/template
type Renderer struct {
	funcMap template.FuncMap
}

// NewRenderer creates a Renderer with the builder configuration functions
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: FuncMap(),
	}
}

// FuncMap returns the functions available to builder configuration templates
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"join":  strings.Join,
		"first": first,
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Vars returns the template variables of conf
func Vars(conf *registry.BuilderConf) map[string]any {
	branches := make([]string, 0, len(conf.Branches))
	for _, b := range conf.Branches {
		branches = append(branches, fmt.Sprintf("%s = %s", b.Variable(), b.Branch))
	}

	maintainers := make([]string, 0, len(conf.Maintainers))
	for _, m := range conf.Maintainers {
		maintainers = append(maintainers, fmt.Sprintf("ALLOWED_COMPONENTS_%s = %s", m.Maintainer, strings.Join(m.Components, " ")))
	}

	return map[string]any{
		"release":            conf.Release,
		"devel":              conf.Devel,
		"dist_dom0":          dist.Names(conf.Dom0),
		"dists_vm":           dist.Names(conf.VM),
		"builder_plugins":    conf.Plugins,
		"iso_components":     conf.ISOComponents,
		"windows_components": conf.Windows,
		"components":         conf.Components,
		"template_labels":    conf.TemplateLabels,
		"template_aliases":   conf.TemplateAliases,
		"branches":           branches,
		"maintainers":        maintainers,
	}
}

// Render renders conf with the template at tmplPath, or with the built-in
// template when tmplPath is empty
func (r *Renderer) Render(conf *registry.BuilderConf, tmplPath string) ([]byte, error) {
	name, text := "builder.conf", defaultTemplate
	if tmplPath != "" {
		data, err := os.ReadFile(tmplPath)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", tmplPath, err)
		}
		name, text = filepath.Base(tmplPath), string(data)
	}
	return r.render(name, text, Vars(conf))
}

func (r *Renderer) render(name, text string, vars map[string]any) ([]byte, error) {
	tmpl, err := template.New(name).
		Funcs(r.funcMap).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return nil, fmt.Errorf("executing template %q: %w", name, err)
	}

	return buf.Bytes(), nil
}
