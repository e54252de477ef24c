package tts

import "context"

// Provider defines the interface for text-to-speech engines. The returned
// bytes are a complete audio file in whatever container the engine emits
// (MP3 for the hosted engines, WAV for the stub).
type Provider interface {
	GenerateSpeech(ctx context.Context, text string) ([]byte, error)
}
