package cmd

import (
	"fmt"

	"lessonreel/internal/app"
	"lessonreel/pkg/config"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove leftover work directories",
	Long:  `Remove session work directories left behind by interrupted generation runs.`,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	removed, err := app.CleanSessions(cfg.Video.OutputDir)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d leftover work dir(s) from %s\n", removed, cfg.Video.OutputDir)
	return nil
}
