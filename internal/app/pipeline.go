package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"lessonreel/internal/app/model"
	"lessonreel/internal/lesson"
	"lessonreel/internal/publish"
	"lessonreel/internal/video"
)

// DefaultLengthSeconds is the guideline video length when the caller does not
// ask for one.
const DefaultLengthSeconds = 45

type Pipeline struct {
	service *Service
}

type GenerateRequest struct {
	Topic         string
	Role          string
	LengthSeconds int
	Publish       bool
}

type GenerateResult struct {
	Title           string
	Script          string
	Quiz            []lesson.QuizItem
	VideoURL        string
	VideoPath       string
	Record          *model.VideoRecord
	InsertErr       error
	DurationSeconds int
}

func NewPipeline(service *Service) *Pipeline {
	return &Pipeline{service: service}
}

// Generate runs the full lesson pipeline: script and quiz generation,
// narration, video composition, and publishing. The scratch directory is
// removed before it returns, whatever the outcome. With req.Publish unset the
// rendered video is kept in the output directory instead of uploaded.
func (p *Pipeline) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	cfg := p.service.Config()

	if req.LengthSeconds <= 0 {
		req.LengthSeconds = DefaultLengthSeconds
	}

	sess, err := newSession(cfg.Video.OutputDir)
	if err != nil {
		return nil, err
	}
	defer sess.Cleanup()

	slog.Info("Generating lesson...", "topic", req.Topic, "role", req.Role, "length_seconds", req.LengthSeconds)
	payload, err := p.service.Generator().Generate(ctx, req.Topic, req.Role, req.LengthSeconds)
	if err != nil {
		return nil, fmt.Errorf("generate lesson: %w", err)
	}

	slog.Info("Synthesizing narration...", "script_length", len(payload.Script))
	audio, err := p.service.TTS().GenerateSpeech(ctx, payload.Script)
	if err != nil {
		return nil, fmt.Errorf("synthesize narration: %w", err)
	}
	if err := os.WriteFile(sess.audioPath(), audio, 0644); err != nil {
		return nil, fmt.Errorf("save narration: %w", err)
	}

	slog.Info("Composing video...", "title", payload.Title)
	composed, err := p.service.Composer().Compose(ctx, video.ComposeRequest{
		AudioPath:        sess.audioPath(),
		Title:            payload.Title,
		OutputPath:       sess.videoPath(),
		GuidelineSeconds: req.LengthSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("compose video: %w", err)
	}

	result := &GenerateResult{
		Title:           payload.Title,
		Script:          payload.Script,
		Quiz:            payload.Quiz,
		DurationSeconds: composed.DurationSeconds,
	}

	if !req.Publish {
		kept := filepath.Join(cfg.Video.OutputDir, keepName(payload.Title))
		if err := os.Rename(composed.OutputPath, kept); err != nil {
			return nil, fmt.Errorf("keep video: %w", err)
		}
		result.VideoPath = kept
		return result, nil
	}

	slog.Info("Publishing video...", "duration_seconds", composed.DurationSeconds)
	published, err := p.service.Publisher().Publish(ctx, publish.Request{
		VideoPath: composed.OutputPath,
		Title:     payload.Title,
		Role:      req.Role,
		Quiz:      payload.Quiz,
	})
	if err != nil {
		return nil, fmt.Errorf("publish video: %w", err)
	}
	if published.InsertErr != nil {
		slog.Warn("Video published but metadata insert failed", "error", published.InsertErr)
	}

	result.VideoURL = published.VideoURL
	result.Record = published.Record
	result.InsertErr = published.InsertErr

	return result, nil
}
