package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/buildmeta/internal/component"
	"github.com/ralt/buildmeta/internal/config"
	"github.com/ralt/buildmeta/internal/extractor/deb"
	"github.com/ralt/buildmeta/internal/extractor/makefile"
	"github.com/ralt/buildmeta/internal/extractor/rpm"
	"github.com/ralt/buildmeta/internal/models"
	"github.com/ralt/buildmeta/internal/registry"
	"github.com/ralt/buildmeta/internal/utils"
	"github.com/ralt/buildmeta/internal/vcs"
)

// globalOptions are the flags shared by every subcommand
type globalOptions struct {
	configFile string
	overrides  models.Config

	// toolchain builds the collaborators of the registry; replaced in tests
	toolchain func() component.Toolchain
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globalOptions{toolchain: defaultToolchain})
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "buildmeta",
		Short: "Manage per-component build metadata of a multi-distribution release",
		Long: `Buildmeta keeps, for every component of a release, the source branch
and the binary packages it produces for each target distribution.

Package lists are extracted from the component checkouts:
  - RPM spec files (dom0 and Fedora/CentOS templates)
  - Debian control files (Debian templates)`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&opts.configFile, "config", config.DefaultFile, "Configuration file")
	flags.StringVar(&opts.overrides.ReleaseFile, "releasefile", "", "Release file (default \"release.json\")")
	flags.StringVar(&opts.overrides.ComponentsDir, "components-folder", "", "Components folder, one <component>.json per component (default \"./components\")")
	flags.StringVar(&opts.overrides.SourcesDir, "sources", "", "Local path of component sources (default \"./qubes-src\")")

	// Add subcommands
	rootCmd.AddCommand(
		newUpdateCmd(opts),
		newGetCmd(opts),
		newGenerateCmd(opts),
		newVerifyCmd(opts),
		newFetchCmd(opts),
	)

	return rootCmd
}

func defaultToolchain() component.Toolchain {
	resolver := makefile.NewMakeResolver()
	return component.Toolchain{
		VCS: vcs.NewGit(),
		RPM: rpm.NewExtractor(resolver),
		Deb: deb.NewExtractor(resolver),
	}
}

// resolve merges flags, configuration file and defaults
func (o *globalOptions) resolve() (*models.Config, error) {
	f, err := config.Load(o.configFile)
	if err != nil {
		return nil, &models.BuildError{Type: models.ErrInvalidConfig, Err: err}
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, &models.BuildError{Type: models.ErrFileOp, Err: err}
	}

	cfg := config.Resolve(f, o.overrides, wd)
	logrus.Debugf("Configuration: %+v", *cfg)
	return cfg, nil
}

// loadRegistry resolves the configuration, checks it and loads the registry
func (o *globalOptions) loadRegistry() (*registry.Registry, *models.Config, error) {
	cfg, err := o.resolve()
	if err != nil {
		return nil, nil, err
	}
	if err := validateConfig(cfg); err != nil {
		return nil, nil, err
	}

	r := registry.New(cfg, o.toolchain())
	if err := r.Load(); err != nil {
		return nil, nil, err
	}
	return r, cfg, nil
}

func validateConfig(cfg *models.Config) error {
	if !utils.Exists(cfg.ReleaseFile) {
		return &models.BuildError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("cannot find release file %s", cfg.ReleaseFile),
		}
	}

	if !utils.Exists(cfg.ComponentsDir) {
		return &models.BuildError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("cannot find components folder %s", cfg.ComponentsDir),
		}
	}

	if !utils.Exists(cfg.SourcesDir) {
		return &models.BuildError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("cannot find sources folder %s", cfg.SourcesDir),
		}
	}

	return nil
}

// componentArgs returns the component filter of a command, "all" when empty
func componentArgs(args []string) []string {
	if len(args) == 0 {
		return []string{registry.All}
	}
	return args
}
