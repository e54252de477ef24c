package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const sessionPrefix = "ai_video_"

// session owns the scratch directory for one generation run. Everything the
// pipeline writes lands in dir so Cleanup can remove it in one call.
type session struct {
	dir string
}

func newSession(baseDir string) (*session, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	dir, err := os.MkdirTemp(baseDir, sessionPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	return &session{dir: dir}, nil
}

func (s *session) audioPath() string { return filepath.Join(s.dir, "audio.mp3") }
func (s *session) videoPath() string { return filepath.Join(s.dir, "video.mp4") }

func (s *session) Cleanup() {
	_ = os.RemoveAll(s.dir)
}

// CleanSessions removes session directories left behind by interrupted runs
// and returns how many were removed.
func CleanSessions(baseDir string) (int, error) {
	dirs, err := filepath.Glob(filepath.Join(baseDir, sessionPrefix+"*"))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			return removed, fmt.Errorf("remove %s: %w", dir, err)
		}
		removed++
	}
	return removed, nil
}
