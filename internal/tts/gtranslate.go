package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"lessonreel/pkg/httputil"
)

const (
	gtranslateBaseURL = "https://translate.google.com"
	gtranslateTimeout = 60 * time.Second
	// The endpoint rejects long q values; gTTS-style clients stay around
	// this size per request.
	maxChunkRunes = 200

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// GTranslateClient synthesizes speech through the public Google Translate
// TTS endpoint, the engine behind gTTS. Long scripts are split into chunks
// the endpoint accepts and the resulting MP3 frames are concatenated.
// The endpoint rate-limits aggressively, so requests retry with backoff.
type GTranslateClient struct {
	httpClient *httputil.RetryClient
	language   string
	baseURL    string
}

func NewGTranslateClient(language string) *GTranslateClient {
	return &GTranslateClient{
		httpClient: httputil.NewRetryClient(&http.Client{Timeout: gtranslateTimeout}, httputil.DefaultRetryConfig()),
		language:   language,
		baseURL:    gtranslateBaseURL,
	}
}

func (c *GTranslateClient) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text to speak")
	}

	var audio []byte
	for _, chunk := range splitChunks(text, maxChunkRunes) {
		data, err := c.fetchChunk(ctx, chunk)
		if err != nil {
			return nil, err
		}
		audio = append(audio, data...)
	}

	return audio, nil
}

func (c *GTranslateClient) fetchChunk(ctx context.Context, chunk string) ([]byte, error) {
	u := fmt.Sprintf("%s/translate_tts?ie=UTF-8&client=tw-ob&tl=%s&q=%s",
		c.baseURL, url.QueryEscape(c.language), url.QueryEscape(chunk))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// The endpoint serves browsers; default Go user agents get rejected.
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translate tts: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return data, nil
}

// splitChunks breaks text into chunks of at most limit runes without cutting
// words. A single word longer than the limit becomes its own chunk.
func splitChunks(text string, limit int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)
		if currentLen > 0 && currentLen+1+wordLen > limit {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
