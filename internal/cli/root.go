package cli

import (
	"college_survey_backend/internal/config"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigDir string
}

func (o *RootOptions) loadConfig() (*config.Config, error) {
	return config.LoadConfig(o.ConfigDir)
}

// NewRootCommand creates the survey command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "survey",
		Short: "College survey backend",
		Long:  "Serves the college survey API and runs its maintenance tasks.",
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config", "configs", "directory containing config.yaml")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}
