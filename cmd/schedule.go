package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/bot"
	"github.com/spigell/job-bot/internal/logger"
	"github.com/spigell/job-bot/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Apply to jobs on a cron schedule until interrupted",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}
		defer logger.Sync()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		deps, err := setup(ctx, config, logger, true)
		if err != nil {
			logger.Fatal("setting up", zap.Error(err))
		}
		defer deps.Close(logger)

		opts := bot.ApplyOptions{
			RequireSalary: viper.GetBool("schedule-salary"),
			Freshness:     viper.GetString("schedule-freshness"),
			DryRun:        viper.GetBool("schedule-dry-run"),
		}

		job := func(ctx context.Context) error {
			report, err := deps.bot.ApplyAll(ctx, opts)
			if report != nil {
				logger.Info("application run finished",
					zap.Int("attempted", len(report.Results)),
					zap.Int("succeeded", report.Succeeded()),
					zap.Int("failed", report.Failed()),
					zap.Int("skipped", report.Skipped()),
				)
				logger.Debug(report.String())
			}
			return err
		}

		s, err := scheduler.New(config.Schedule, job, logger)
		if err != nil {
			logger.Fatal("creating scheduler", zap.Error(err))
		}

		immediately, _ := cmd.Flags().GetBool("immediately")
		if err := s.Run(ctx, immediately); err != nil {
			logger.Fatal("running scheduler", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().String("cron", "", "cron expression, e.g. \"0 9 * * 1-5\" or \"@every 6h\"")
	scheduleCmd.Flags().Bool("immediately", false, "run once right away before waiting for the schedule")
	scheduleCmd.Flags().Bool("dry-run", false, "build prompts without submitting applications")
	scheduleCmd.Flags().Bool("salary", false, "only apply to jobs with a salary range")
	scheduleCmd.Flags().String("freshness", "", "LinkedIn job freshness: 1h, 24h, 7d or 30d")

	viper.BindPFlag("schedule", scheduleCmd.Flags().Lookup("cron"))
	viper.BindPFlag("schedule-dry-run", scheduleCmd.Flags().Lookup("dry-run"))
	viper.BindPFlag("schedule-salary", scheduleCmd.Flags().Lookup("salary"))
	viper.BindPFlag("schedule-freshness", scheduleCmd.Flags().Lookup("freshness"))
}
