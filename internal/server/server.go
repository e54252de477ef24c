package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lessonreel/internal/app"
	"lessonreel/internal/lesson"
	"lessonreel/internal/llm"
)

const (
	shutdownTimeout       = 10 * time.Second
	fallbackMaxConcurrent = 2
)

// Server exposes the lesson pipeline over HTTP. Generation runs are capped by
// a semaphore so a burst of requests cannot pile up ffmpeg processes.
type Server struct {
	pipeline *app.Pipeline
	server   *http.Server
	slots    chan struct{}
}

type generateRequest struct {
	Topic         string `json:"topic" binding:"required"`
	Role          string `json:"role" binding:"required"`
	LengthSeconds *int   `json:"length_seconds"`
}

type generateResponse struct {
	OK       bool              `json:"ok"`
	Title    string            `json:"title"`
	VideoURL string            `json:"video_url"`
	Quiz     []lesson.QuizItem `json:"quiz"`
	Meta     gin.H             `json:"meta"`
}

func New(service *app.Service) *Server {
	cfg := service.Config()

	maxConcurrent := cfg.Server.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = fallbackMaxConcurrent
	}

	s := &Server{
		pipeline: app.NewPipeline(service),
		slots:    make(chan struct{}, maxConcurrent),
	}

	s.server = &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: s.router(),
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	slog.Info("Server listening", "addr", s.server.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", s.handleHealthz)
	router.POST("/generate", s.handleGenerate)

	return router
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lengthSeconds := app.DefaultLengthSeconds
	if req.LengthSeconds != nil {
		lengthSeconds = *req.LengthSeconds
	}

	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-c.Request.Context().Done():
		return
	}

	result, err := s.pipeline.Generate(c.Request.Context(), app.GenerateRequest{
		Topic:         req.Topic,
		Role:          req.Role,
		LengthSeconds: lengthSeconds,
		Publish:       true,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	meta := gin.H{"video_url": result.VideoURL}
	if result.InsertErr != nil {
		meta["insert_error"] = result.InsertErr.Error()
	} else {
		meta["db_result"] = result.Record
	}

	c.JSON(http.StatusOK, generateResponse{
		OK:       true,
		Title:    result.Title,
		VideoURL: result.VideoURL,
		Quiz:     result.Quiz,
		Meta:     meta,
	})
}

// statusFor maps generation-stage failures to 502, since they mean the
// inference upstream misbehaved, and everything downstream to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, llm.ErrUpstreamUnavailable),
		errors.Is(err, lesson.ErrUnparsableOutput),
		errors.Is(err, lesson.ErrIncompleteOutput):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond).String(),
		)
	}
}
