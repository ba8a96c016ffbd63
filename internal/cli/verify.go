package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/models"
	"github.com/ralt/buildmeta/internal/scanner"
	"github.com/ralt/buildmeta/internal/utils"
	"github.com/ralt/buildmeta/internal/verify"
)

type verifyOptions struct {
	dir        string
	release    string
	dist       string
	packageSet string
}

func newVerifyCmd(opts *globalOptions) *cobra.Command {
	var o verifyOptions

	cmd := &cobra.Command{
		Use:   "verify [component...]",
		Short: "Check built packages against the expected package files",
		Long: `Refreshes the package lists of the selected components, then scans
--dir for RPM or Debian packages and reports, for every package file the
components should produce for --release and --dist, whether it is present,
missing or outdated. Exits with an error unless everything is present.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.dir == "" || o.release == "" || o.dist == "" {
				return &models.BuildError{
					Type: models.ErrInvalidConfig,
					Err:  fmt.Errorf("--dir, --release and --dist are required"),
				}
			}
			set := models.PackageSet(o.packageSet)
			if !set.Valid() {
				return &models.BuildError{
					Type: models.ErrInvalidConfig,
					Err:  fmt.Errorf("invalid package set %q", o.packageSet),
				}
			}
			d := dist.New(o.dist)
			if d.Family() != dist.FamilyRPM && d.Family() != dist.FamilyDeb {
				return &models.BuildError{
					Type: models.ErrInvalidConfig,
					Err:  fmt.Errorf("no package verification for %s", d),
				}
			}

			r, _, err := opts.loadRegistry()
			if err != nil {
				return err
			}

			filter := componentArgs(args)
			if err := r.UpdateComponents(cmd.Context(), filter); err != nil {
				return err
			}

			expected := r.ExpectedArtifacts(filter, o.release, set, d.Name)
			logrus.Infof("Verifying %d packages in %s", len(expected), o.dir)

			report, err := verify.NewVerifier(scanner.NewFileSystemScanner()).Verify(cmd.Context(), o.dir, expected, d.Family())
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report)
			if !report.OK() {
				return &models.BuildError{
					Type: models.ErrVerify,
					Err: fmt.Errorf("%d missing, %d outdated",
						report.Count(verify.StatusMissing), report.Count(verify.StatusOutdated)),
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&o.dir, "dir", "", "Build output directory to scan")
	cmd.Flags().StringVar(&o.release, "release", "", "Release to verify")
	cmd.Flags().StringVar(&o.dist, "dist", "", "Distribution to verify")
	cmd.Flags().StringVar(&o.packageSet, "package-set", string(models.VM), "Package set (dom0 or vm)")

	return cmd
}

func printReport(w io.Writer, report *verify.Report) {
	for _, res := range report.Sorted() {
		if res.Found != nil && res.Status != verify.StatusPresent {
			fmt.Fprintf(w, "%-8s %s (found %s in %s)\n", res.Status, res.Expected.Filename,
				utils.ArtifactIdentity(*res.Found), res.Found.Filename)
			continue
		}
		fmt.Fprintf(w, "%-8s %s\n", res.Status, res.Expected.Filename)
	}
}
