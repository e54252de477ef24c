package app

import (
	"context"
	"log/slog"
	"strings"

	"lessonreel/internal/db"
	"lessonreel/internal/lesson"
	"lessonreel/internal/llm"
	"lessonreel/internal/publish"
	"lessonreel/internal/storage"
	"lessonreel/internal/tts"
	"lessonreel/internal/video"
	"lessonreel/pkg/config"
	"lessonreel/pkg/prompts"
)

const localStorePrefix = "local:"

// BuildService wires every pipeline dependency from the loaded configuration.
// Clients are constructed once here and shared across requests.
func BuildService(ctx context.Context, cfg *config.Config) (*Service, error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLMClient(cfg, p)
	if err != nil {
		return nil, err
	}

	ttsProvider := buildTTSProvider(cfg)

	composer := video.NewComposer(video.ComposerOptions{
		FFmpegPath:  cfg.FFmpegBin,
		FFprobePath: cfg.FFprobeBin(),
		Resolution:  cfg.Video.Resolution,
		Background:  cfg.Video.Background,
		FontFile:    cfg.Video.FontFile,
		FontSize:    cfg.Video.FontSize,
	})

	store, err := buildObjectStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	gormDB, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		slog.Warn("Auto migration failed, continuing with existing schema", "error", err)
	}

	return NewService(ServiceOptions{
		Config:    cfg,
		Generator: lesson.NewGenerator(llmClient, p),
		TTS:       ttsProvider,
		Composer:  composer,
		Publisher: publish.NewPublisher(store, gormDB),
		DB:        gormDB,
	}), nil
}

func buildLLMClient(cfg *config.Config, p *prompts.Prompts) (llm.Client, error) {
	switch cfg.Inference.Provider {
	case config.ProviderGroq:
		return llm.NewGroqClient(cfg.GroqAPIKey, cfg.Groq.Model, p.System.Default)
	default:
		return llm.NewHuggingFaceClient(cfg.InferenceAPIKey, cfg.Inference.Model), nil
	}
}

func buildTTSProvider(cfg *config.Config) tts.Provider {
	switch cfg.TTS.Provider {
	case config.TTSElevenLabs:
		return tts.NewElevenLabsClient(cfg.ElevenLabsAPIKey, tts.ElevenLabsOptions{
			VoiceID:    cfg.ElevenLabs.VoiceID,
			Model:      cfg.ElevenLabs.Model,
			Stability:  cfg.ElevenLabs.Stability,
			Similarity: cfg.ElevenLabs.Similarity,
		})
	case config.TTSStub:
		return tts.NewStubProvider(0)
	default:
		return tts.NewGTranslateClient(cfg.TTS.Language)
	}
}

// buildObjectStore picks the bucket implementation. A "local:<dir>" value in
// STORAGE_CREDENTIALS swaps in the filesystem store for development.
func buildObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	if dir, ok := strings.CutPrefix(cfg.StorageCredentials, localStorePrefix); ok {
		return storage.NewLocalStore(dir), nil
	}

	return storage.NewGCSStore(ctx, storage.GCSOptions{
		Bucket:      cfg.StorageBucket,
		Credentials: cfg.StorageCredentials,
		Endpoint:    cfg.StorageEndpoint,
	})
}
