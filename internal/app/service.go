package app

import (
	"context"

	"gorm.io/gorm"

	"lessonreel/internal/lesson"
	"lessonreel/internal/publish"
	"lessonreel/internal/tts"
	"lessonreel/internal/video"
	"lessonreel/pkg/config"
)

// VideoComposer renders the final clip for a lesson.
type VideoComposer interface {
	Compose(ctx context.Context, req video.ComposeRequest) (*video.ComposeResult, error)
}

// Publisher pushes a rendered video to storage and records its metadata.
type Publisher interface {
	Publish(ctx context.Context, req publish.Request) (*publish.Result, error)
}

type Service struct {
	cfg       *config.Config
	generator *lesson.Generator
	tts       tts.Provider
	composer  VideoComposer
	publisher Publisher
	db        *gorm.DB
}

type ServiceOptions struct {
	Config    *config.Config
	Generator *lesson.Generator
	TTS       tts.Provider
	Composer  VideoComposer
	Publisher Publisher
	DB        *gorm.DB
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:       opts.Config,
		generator: opts.Generator,
		tts:       opts.TTS,
		composer:  opts.Composer,
		publisher: opts.Publisher,
		db:        opts.DB,
	}
}

func (s *Service) Config() *config.Config       { return s.cfg }
func (s *Service) Generator() *lesson.Generator { return s.generator }
func (s *Service) TTS() tts.Provider            { return s.tts }
func (s *Service) Composer() VideoComposer      { return s.composer }
func (s *Service) Publisher() Publisher         { return s.publisher }
func (s *Service) DB() *gorm.DB                 { return s.db }
