package lesson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lessonreel/internal/llm"
	"lessonreel/pkg/prompts"
)

const (
	maxRawSnippet  = 1000
	maxJSONSnippet = 800
)

// Generator turns a topic and audience role into a validated lesson.
type Generator struct {
	client  llm.Client
	prompts *prompts.Prompts
}

func NewGenerator(client llm.Client, p *prompts.Prompts) *Generator {
	return &Generator{
		client:  client,
		prompts: p,
	}
}

// Generate renders the lesson prompt, asks the model and parses the reply.
// Models often wrap the requested JSON in commentary; parsing tolerates that.
// A blank title is replaced with "{topic} for {role}".
func (g *Generator) Generate(ctx context.Context, topic, role string, lengthSeconds int) (*Payload, error) {
	prompt, err := g.prompts.RenderLesson(prompts.LessonParams{
		Topic:         topic,
		Role:          role,
		LengthSeconds: lengthSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	text, err := g.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	payload, err := parsePayload(text)
	if err != nil {
		return nil, err
	}

	if payload.Title == "" {
		payload.Title = fmt.Sprintf("%s for %s", topic, role)
	}

	return payload, nil
}

// parsePayload recovers the lesson JSON from raw model text. It tries the
// first balanced object, then the whole text, and reports the first failure
// with a snippet of the raw reply when neither parses.
func parsePayload(text string) (*Payload, error) {
	var raw map[string]json.RawMessage

	candidate, found := ExtractObject(text)
	firstErr := errors.New("no JSON object found in model output")
	if found {
		err := json.Unmarshal([]byte(candidate), &raw)
		if err == nil {
			return buildPayload(raw)
		}
		firstErr = err
	}

	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v | raw: %s", ErrUnparsableOutput, firstErr, truncate(text, maxRawSnippet))
	}

	return buildPayload(raw)
}

func buildPayload(raw map[string]json.RawMessage) (*Payload, error) {
	data, _ := json.Marshal(raw)

	for _, key := range []string{"title", "script", "quiz"} {
		if _, present := raw[key]; !present {
			return nil, fmt.Errorf("%w: missing keys, raw: %s", ErrIncompleteOutput, truncate(string(data), maxJSONSnippet))
		}
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v, raw: %s", ErrIncompleteOutput, err, truncate(string(data), maxJSONSnippet))
	}

	if err := payload.Validate(); err != nil {
		return nil, err
	}

	return &payload, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
