package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/logger"
	"github.com/spigell/job-bot/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the job scoring and cover letter tools over MCP stdio",
	Run: func(_ *cobra.Command, _ []string) {
		// stdout belongs to the protocol
		logger, err := logger.NewStderr(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}
		defer logger.Sync()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		deps, err := setup(context.Background(), config, logger, false)
		if err != nil {
			logger.Fatal("setting up", zap.Error(err))
		}
		defer deps.Close(logger)

		server := mcpserver.New(app, version, deps.tools, logger)
		logger.Info("serving tools over stdio", zap.Int("tools", len(deps.tools)))

		if err := mcpserver.Serve(server); err != nil {
			logger.Fatal("serving mcp", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
