package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/buildmeta/internal/builderconf"
	"github.com/ralt/buildmeta/internal/models"
	"github.com/ralt/buildmeta/internal/registry"
	"github.com/ralt/buildmeta/internal/utils"
)

type generateOptions struct {
	builderConf string
	release     string
	template    string
	skeleton    string
	distfile    string
}

func newGenerateCmd(opts *globalOptions) *cobra.Command {
	var o generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate builder configuration, component skeletons and distribution files",
		Long: `Generates, depending on the flags given:
  --builder-conf        the builder configuration of --release
  --component-skeleton  an empty component file for a new component
  --distfile            the release file with every component file inlined
                        (gzip-compressed when the name ends in .gz)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.builderConf == "" && o.skeleton == "" && o.distfile == "" {
				return &models.BuildError{
					Type: models.ErrInvalidConfig,
					Err:  fmt.Errorf("nothing to generate, see --help"),
				}
			}
			if o.builderConf != "" && o.release == "" {
				return &models.BuildError{
					Type: models.ErrInvalidConfig,
					Err:  fmt.Errorf("--builder-conf requires --release"),
				}
			}

			r, cfg, err := opts.loadRegistry()
			if err != nil {
				return err
			}

			if o.builderConf != "" {
				tmpl := o.template
				if tmpl == "" {
					tmpl = cfg.BuilderTemplate
				}
				if err := writeBuilderConf(r, o.release, tmpl, o.builderConf); err != nil {
					return err
				}
			}

			if o.skeleton != "" {
				if _, err := r.AddComponent(o.skeleton); err != nil {
					return err
				}
			}

			if o.distfile != "" {
				if err := r.CreateDistfile(o.distfile); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&o.builderConf, "builder-conf", "", "Destination of the builder configuration file")
	cmd.Flags().StringVar(&o.release, "release", "", "Release to generate the builder configuration for")
	cmd.Flags().StringVar(&o.template, "template", "", "Builder configuration template (default: built-in)")
	cmd.Flags().StringVar(&o.skeleton, "component-skeleton", "", "Add a component skeleton file in the components folder")
	cmd.Flags().StringVar(&o.distfile, "distfile", "", "Create a distribution file with all the components info")

	return cmd
}

func writeBuilderConf(r *registry.Registry, release, tmpl, dest string) error {
	conf, err := r.BuilderConf(release)
	if err != nil {
		return err
	}

	data, err := builderconf.NewRenderer().Render(conf, tmpl)
	if err != nil {
		return &models.BuildError{Type: models.ErrInvalidConfig, Err: err}
	}

	outcome, err := utils.WriteFileIfChanged(dest, data, 0644)
	if err != nil {
		return &models.BuildError{Type: models.ErrFileOp, Err: err}
	}
	logrus.Infof("Builder configuration for %s %s: %s", release, outcome, dest)
	return nil
}
