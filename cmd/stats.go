package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/logger"
	"github.com/spigell/job-bot/internal/tracking"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print application statistics and rate limit status",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}
		defer logger.Sync()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		tracker, backend, err := openTracker(config)
		if err != nil {
			logger.Fatal("opening tracker", zap.Error(err))
		}
		defer backend.Close()

		if err := printStats(tracker.Summary, cmd.OutOrStdout()); err != nil {
			logger.Fatal("reading stats", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func printStats(summary func() (*tracking.Summary, error), out io.Writer) error {
	s, err := summary()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "APPLICATION STATS")
	fmt.Fprintln(out, s.String())
	return nil
}
