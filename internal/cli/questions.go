package cli

import (
	"errors"
	"fmt"

	"millionaire-service/internal/app"
	"millionaire-service/internal/config"
	"millionaire-service/internal/importer"
	"millionaire-service/internal/infra/postgres"
	redisinfra "millionaire-service/internal/infra/redis"
	"millionaire-service/internal/logger"

	"github.com/spf13/cobra"
)

// NewQuestionsCmd manages the question bank.
func NewQuestionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Manage the question bank",
	}

	var file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import questions from a YAML or XLSX file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errors.New("postgres url not configured")
			}
			questions, err := importer.ReadFile(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			log := logger.New("millionaire")
			if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
				return err
			}
			db := postgres.Open(cfg.Postgres.URL)
			defer db.Close()

			service := app.NewQuestionService(postgres.NewStore(db), log)
			report, err := service.Import(ctx, questions)
			if err != nil {
				return err
			}
			for _, invalid := range report.Invalid {
				fmt.Fprintln(cmd.ErrOrStderr(), "skipped:", invalid)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, duplicates %d, invalid %d\n",
				report.Created, report.Duplicates, len(report.Invalid))

			if client := newRedisClient(cfg); client != nil {
				defer client.Close()
				if err := redisinfra.NewQuestionRepository(client, nil, 0).Invalidate(ctx); err != nil {
					log.Entry().WithError(err).Warn("drop cached question pools")
				}
			}

			missing, err := service.MissingLevels(ctx)
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "levels without questions: %v\n", missing)
			}
			return nil
		},
	}
	importCmd.Flags().StringVar(&file, "file", "", "question file (.yaml, .yml or .xlsx)")
	_ = importCmd.MarkFlagRequired("file")

	cmd.AddCommand(importCmd)
	return cmd
}
