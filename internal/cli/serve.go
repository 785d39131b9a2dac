package cli

import (
	"college_survey_backend/internal/app"
	"college_survey_backend/pkg/logger"
	"path/filepath"

	"github.com/spf13/cobra"
)

type ServeOptions struct {
	*RootOptions
	Migrate bool
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until SIGINT or SIGTERM.

The schema is migrated automatically outside release mode. In release mode
pass --migrate to migrate before serving.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			cfg.ForceMigrate = opts.Migrate

			application, err := app.NewApp(cfg)
			if err != nil {
				return err
			}
			defer logger.Log.Sync()

			application.ConfigPath = filepath.Join(opts.ConfigDir, "config.yaml")
			return application.Run()
		},
	}

	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "migrate the schema before serving, also in release mode")

	return cmd
}
