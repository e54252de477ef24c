package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"lessonreel/pkg/httputil"
)

const (
	hfBaseURL = "https://api-inference.huggingface.co/models"
	// Cold models can take a long time to spin up with wait_for_model.
	hfTimeout       = 120 * time.Second
	maxErrorSnippet = 300
)

var _ Client = (*HuggingFaceClient)(nil)

// HuggingFaceClient calls the hosted Inference API for a single
// text-generation model. Requests retry with backoff since the API answers
// 503 while a cold model loads.
type HuggingFaceClient struct {
	apiKey     string
	httpClient *httputil.RetryClient
	model      string
	baseURL    string
}

type hfRequest struct {
	Inputs  string    `json:"inputs"`
	Options hfOptions `json:"options"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

func NewHuggingFaceClient(apiKey, model string) *HuggingFaceClient {
	return &HuggingFaceClient{
		apiKey:     apiKey,
		httpClient: httputil.NewRetryClient(&http.Client{Timeout: hfTimeout}, httputil.DefaultRetryConfig()),
		model:      model,
		baseURL:    hfBaseURL,
	}
}

// Complete posts the prompt to the model endpoint and reduces whatever shape
// the API answers with to a single text blob.
func (c *HuggingFaceClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := hfRequest{
		Inputs: prompt,
		Options: hfOptions{
			WaitForModel: true,
			UseCache:     false,
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: huggingface returned %d: %s",
			ErrUpstreamUnavailable, resp.StatusCode, truncate(string(body), maxErrorSnippet))
	}

	return normalizeOutput(body), nil
}

// normalizeOutput flattens the Inference API's response variants to text.
// Models commonly answer [{"generated_text": ...}], some use "text", some
// return a single object or a bare value. Anything without a recognized text
// field is kept as compact JSON so downstream extraction still has a chance.
func normalizeOutput(body []byte) string {
	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return string(body)
	}

	if list, ok := out.([]any); ok && len(list) > 0 {
		if first, ok := list[0].(map[string]any); ok {
			if text, present := first["generated_text"]; present {
				return asText(text)
			}
			if text, present := first["text"]; present {
				return asText(text)
			}
			return compactJSON(first)
		}
		return asText(list[0])
	}

	if obj, ok := out.(map[string]any); ok {
		if text, present := obj["generated_text"]; present {
			return asText(text)
		}
	}

	return asText(out)
}

func asText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return compactJSON(v)
}

func compactJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
