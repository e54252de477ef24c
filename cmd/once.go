package cmd

import (
	"log/slog"

	"lessonreel/internal/app"
	"lessonreel/pkg/config"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	onceTopic   string
	onceRole    string
	onceLength  int
	oncePublish bool
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Generate a single lesson video",
	Long: `Generate a single narrated lesson video for a topic and audience role.
Without --publish the video is kept in the output directory.`,
	RunE: runOnce,
}

func init() {
	onceCmd.Flags().StringVarP(&onceTopic, "topic", "t", "", "Lesson topic")
	onceCmd.Flags().StringVarP(&onceRole, "role", "r", "", "Audience role the lesson addresses")
	onceCmd.Flags().IntVarP(&onceLength, "length", "l", app.DefaultLengthSeconds, "Target video length in seconds")
	onceCmd.Flags().BoolVarP(&oncePublish, "publish", "p", false, "Upload the video and record it in the database")
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	if err := promptMissingLessonInput(); err != nil {
		return err
	}

	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}

	pipeline := app.NewPipeline(service)

	slog.Info("Generating lesson video...", "topic", onceTopic, "role", onceRole)
	result, err := pipeline.Generate(ctx, app.GenerateRequest{
		Topic:         onceTopic,
		Role:          onceRole,
		LengthSeconds: onceLength,
		Publish:       oncePublish,
	})
	if err != nil {
		return err
	}

	slog.Info("Lesson video ready",
		"title", result.Title,
		"duration", result.DurationSeconds,
	)

	if oncePublish {
		slog.Info("Video published", "url", result.VideoURL)
		if result.InsertErr != nil {
			slog.Warn("Database insert failed", "error", result.InsertErr)
		}
		return nil
	}

	slog.Info("Video kept locally", "path", result.VideoPath)
	return nil
}

func promptMissingLessonInput() error {
	if onceTopic != "" && onceRole != "" {
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Lesson topic").
				Placeholder("Newton's laws of motion").
				Value(&onceTopic).
				Validate(required("Topic")),
			huh.NewInput().
				Title("Audience role").
				Placeholder("Student").
				Value(&onceRole).
				Validate(required("Role")),
		),
	)
	return form.Run()
}
