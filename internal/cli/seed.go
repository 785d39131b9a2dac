package cli

import (
	"college_survey_backend/internal/app"
	"college_survey_backend/internal/service"
	"college_survey_backend/pkg/database"
	"college_survey_backend/pkg/logger"
	"fmt"

	"github.com/spf13/cobra"
)

type SeedOptions struct {
	*RootOptions
	Colleges  int
	Students  int
	Questions int
	Clear     bool
	Seed      int64
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo data",
		Long: `Create demo colleges, each with a subjective "Campus Life Feedback" and an
objective "General Aptitude Test" category, students with random answers,
and their computed marks.

Example:
  survey seed --colleges 5 --students 100 --questions 10 --clear`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Colleges < 0 || opts.Students < 0 || opts.Questions < 0 {
				return fmt.Errorf("counts must not be negative")
			}

			cfg, err := opts.loadConfig()
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

			summary, err := service.NewSeedService(db).Seed(service.SeedOptions{
				Colleges:            opts.Colleges,
				StudentsPerCollege:  opts.Students,
				QuestionsPerSection: opts.Questions,
				Clear:               opts.Clear,
				Seed:                opts.Seed,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Seeding complete")
			fmt.Fprintf(out, "Colleges:  %d\n", summary.Colleges)
			fmt.Fprintf(out, "Students:  %d\n", summary.Students)
			fmt.Fprintf(out, "Questions: %d\n", summary.Questions)
			fmt.Fprintf(out, "Responses: %d\n", summary.Responses)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Colleges, "colleges", 5, "number of colleges")
	cmd.Flags().IntVar(&opts.Students, "students", 100, "students per college")
	cmd.Flags().IntVar(&opts.Questions, "questions", 10, "questions per section")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "delete existing survey data first")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed, 0 for a time based one")

	return cmd
}
