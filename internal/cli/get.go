package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ralt/buildmeta/internal/models"
	"github.com/ralt/buildmeta/internal/registry"
)

type getOptions struct {
	components []string
	withNVR    bool
	raw        bool
	format     string
	skipEmpty  bool
	dists      []string
	packageSet string
	release    string
	purl       bool
}

func newGetCmd(opts *globalOptions) *cobra.Command {
	var o getOptions

	cmd := &cobra.Command{
		Use:   "get [component...]",
		Short: "Show package lists",
		Long: `Prints the package lists of the selected components as JSON, or one
line per distribution with --raw. Available format fields: component,
release (qubes_release), platform (package_set), distribution (dist),
packages.

--with-nvr and --purl refresh the package lists from the sources first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := o.query(args)
			if err != nil {
				return err
			}

			r, cfg, err := opts.loadRegistry()
			if err != nil {
				return err
			}
			query.Namespace = cfg.PURLNamespace

			if o.withNVR || o.purl {
				if err := r.UpdateComponents(cmd.Context(), query.Components); err != nil {
					return err
				}
			}

			list, err := r.GetComponentsPackagesList(query)
			if err != nil {
				return err
			}
			if o.raw {
				return printLines(cmd.OutOrStdout(), list.Lines)
			}
			return printJSON(cmd.OutOrStdout(), list.Tree)
		},
	}

	cmd.Flags().StringSliceVar(&o.components, "packages-list", nil, "Components to show, \"all\" is accepted")
	cmd.Flags().BoolVar(&o.withNVR, "with-nvr", false, "Output package file names with version and release")
	cmd.Flags().BoolVar(&o.raw, "raw", false, "Raw output, see --format")
	cmd.Flags().StringVar(&o.format, "format", "", "Colon separated output fields for --raw (default \"packages\")")
	cmd.Flags().BoolVar(&o.skipEmpty, "skip-empty", false, "Skip empty package lists")
	cmd.Flags().StringSliceVar(&o.dists, "dist", nil, "Filter distributions")
	cmd.Flags().StringVar(&o.packageSet, "package-set", "", "Filter package set (dom0 or vm)")
	cmd.Flags().StringVar(&o.release, "release", "", "Filter release")
	cmd.Flags().BoolVar(&o.purl, "purl", false, "Output package URLs")

	return cmd
}

// query validates the flags and builds the registry query
func (o *getOptions) query(args []string) (registry.PackagesQuery, error) {
	q := registry.PackagesQuery{
		Components: componentArgs(append(o.components, args...)),
		Dists:      o.dists,
		PackageSet: models.PackageSet(o.packageSet),
		Release:    o.release,
		WithNVR:    o.withNVR,
		PURL:       o.purl,
		SkipEmpty:  o.skipEmpty,
	}

	if q.PackageSet != "" && !q.PackageSet.Valid() {
		return q, &models.BuildError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("invalid package set %q", o.packageSet),
		}
	}

	if o.format != "" {
		format, err := registry.ParseFormat(o.format)
		if err != nil {
			return q, err
		}
		q.Format = format
	}
	return q, nil
}

// printJSON writes v indented, leaving '&' and '<' of package URLs as is
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

func printLines(w io.Writer, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
