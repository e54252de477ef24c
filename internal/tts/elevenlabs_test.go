package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lessonreel/pkg/httputil"
)

func fastRetryClient(c *http.Client) *httputil.RetryClient {
	return httputil.NewRetryClient(c, httputil.RetryConfig{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	})
}

func TestElevenLabsGenerateSpeech(t *testing.T) {
	fakeAudio := []byte("fake mp3 bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("xi-api-key") != "test-key" {
			t.Error("missing or incorrect API key header")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("missing Content-Type header")
		}
		if r.URL.Path != "/test-voice" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req elevenlabsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Text != "Hello world" {
			t.Errorf("text = %q, want Hello world", req.Text)
		}
		if req.ModelID != "eleven_flash_v2_5" {
			t.Errorf("model_id = %q, want eleven_flash_v2_5", req.ModelID)
		}
		if req.VoiceSettings.Stability != 0.5 {
			t.Errorf("stability = %f, want 0.5", req.VoiceSettings.Stability)
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(fakeAudio)
	}))
	defer server.Close()

	client := NewElevenLabsClient("test-key", ElevenLabsOptions{
		VoiceID:    "test-voice",
		Model:      "eleven_flash_v2_5",
		Stability:  0.5,
		Similarity: 0.5,
	})
	client.baseURL = server.URL

	audio, err := client.GenerateSpeech(context.Background(), "Hello world")
	if err != nil {
		t.Fatalf("GenerateSpeech() error = %v", err)
	}

	if string(audio) != "fake mp3 bytes" {
		t.Errorf("audio = %q, want 'fake mp3 bytes'", string(audio))
	}
}

func TestElevenLabsAPIErrorWithDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": {"message": "invalid api key"}}`))
	}))
	defer server.Close()

	client := NewElevenLabsClient("bad-key", ElevenLabsOptions{VoiceID: "test-voice"})
	client.baseURL = server.URL

	_, err := client.GenerateSpeech(context.Background(), "Hello")
	if err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("error = %v, want the API detail message", err)
	}
}

func TestElevenLabsAPIErrorWithoutDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer server.Close()

	client := NewElevenLabsClient("test-key", ElevenLabsOptions{VoiceID: "test-voice"})
	client.baseURL = server.URL
	client.httpClient = fastRetryClient(server.Client())

	_, err := client.GenerateSpeech(context.Background(), "Hello")
	if err == nil {
		t.Fatal("expected error for throttled request")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error = %v, want the HTTP status", err)
	}
}

func TestElevenLabsEmptyAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewElevenLabsClient("test-key", ElevenLabsOptions{VoiceID: "test-voice"})
	client.baseURL = server.URL

	_, err := client.GenerateSpeech(context.Background(), "Hello")
	if err == nil || !strings.Contains(err.Error(), "empty audio") {
		t.Errorf("error = %v, want empty audio error", err)
	}
}
