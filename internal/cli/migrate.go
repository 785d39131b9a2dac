package cli

import (
	"college_survey_backend/internal/app"
	"college_survey_backend/pkg/database"
	"college_survey_backend/pkg/logger"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Migrate the schema and create the bootstrap superuser",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			logger.InitLogger(cfg)
			defer logger.Log.Sync()

			db, err := database.InitDB(&cfg.Database, false)
			if err != nil {
				return err
			}
			if err := app.Prepare(db, cfg); err != nil {
				return err
			}
			cmd.Println("migration completed")
			return nil
		},
	}
}
