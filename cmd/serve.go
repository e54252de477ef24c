package cmd

import (
	"os/signal"
	"syscall"

	"lessonreel/internal/app"
	"lessonreel/internal/server"
	"lessonreel/pkg/config"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP generation service",
	Long: `Serve the lesson video generator over HTTP until interrupted.
Generated videos are uploaded and recorded in the database.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}

	return server.New(service).Run(ctx)
}
