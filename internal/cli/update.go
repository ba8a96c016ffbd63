package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newUpdateCmd(opts *globalOptions) *cobra.Command {
	var components []string

	cmd := &cobra.Command{
		Use:   "update [component...]",
		Short: "Refresh package lists from the component sources",
		Long: `Checks out every selected component at the branch it uses for each
release, extracts its package lists for the release distributions and
rewrites its component file. "all" selects every component.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := opts.loadRegistry()
			if err != nil {
				return err
			}

			filter := componentArgs(append(components, args...))
			logrus.Info("Starting packages list update...")
			return r.UpdateComponents(cmd.Context(), filter)
		},
	}

	cmd.Flags().StringSliceVar(&components, "packages-list", nil, "Components to update, \"all\" is accepted")

	return cmd
}
