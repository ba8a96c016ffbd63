package cli

import (
	"github.com/spf13/cobra"

	"github.com/ralt/buildmeta/internal/models"
	"github.com/ralt/buildmeta/internal/registry"
	"github.com/ralt/buildmeta/internal/source"
	"github.com/ralt/buildmeta/internal/utils"
)

func newFetchCmd(opts *globalOptions) *cobra.Command {
	var release string

	cmd := &cobra.Command{
		Use:   "fetch [component...]",
		Short: "Download missing component sources",
		Long: `Downloads the sources of the selected components that are not present
in the sources folder, at the branch they use for --release. The source URL
comes from fetch_url in the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve()
			if err != nil {
				return err
			}
			if err := utils.EnsureDir(cfg.SourcesDir); err != nil {
				return &models.BuildError{Type: models.ErrFileOp, Err: err}
			}

			fetcher, err := source.NewFetcher(cfg.FetchURL)
			if err != nil {
				return err
			}

			r, _, err := opts.loadRegistry()
			if err != nil {
				return err
			}
			return r.FetchSources(cmd.Context(), fetcher, componentArgs(args), release)
		},
	}

	cmd.Flags().StringVar(&release, "release", "", "Release whose branches are fetched (default: master)")

	return cmd
}

var _ registry.SourceFetcher = (*source.Fetcher)(nil)
